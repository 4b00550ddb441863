package model

import "time"

// Customer is a shop-scoped loyalty member.  The subscription flag is
// set at registration and decides which prize pool the customer draws
// from; it is not editable through the wheel API afterwards.  This
// struct corresponds to a row in the `customers` table.
//
// Fields:
//  ID           – primary key identifier.
//  UserID       – account the customer signs in with.
//  BarbershopID – owning tenant.
//  Name         – display name.
//  IsSubscriber – picks the SUBSCRIBER or NON_SUBSCRIBER pool.
//  CreatedAt    – timestamp of registration.
type Customer struct {
    ID           uint64    // customers.id
    UserID       uint64    // customers.user_id
    BarbershopID uint64    // customers.barbershop_id
    Name         string    // customers.name
    IsSubscriber bool      // customers.is_subscriber
    CreatedAt    time.Time // customers.created_at
}
