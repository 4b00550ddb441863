package model

import "time"

// Barbershop is a tenant account.  Each shop owns its own customers,
// prize catalog and play history; nothing is shared between shops.
// This struct corresponds to a row in the `barbershops` table.
//
// Fields:
//  ID             – primary key identifier.
//  OwnerID        – user ID of the admin who created the shop.
//  Name           – display name shown to customers.
//  Slug           – unique URL-friendly identifier.
//  ContactChannel – phone/WhatsApp shown on won-prize notifications.
//  ValidityDays   – how many days a won prize stays redeemable.
//  PlaysPerMonth  – allowed draws per customer per month (currently 1).
//  CreatedAt      – timestamp when the shop was created.
//  UpdatedAt      – timestamp of last update.
type Barbershop struct {
    ID             uint64    // barbershops.id
    OwnerID        uint64    // barbershops.owner_id
    Name           string    // barbershops.name
    Slug           string    // barbershops.slug
    ContactChannel string    // barbershops.contact_channel
    ValidityDays   int       // barbershops.validity_days
    PlaysPerMonth  int       // barbershops.plays_per_month
    CreatedAt      time.Time // barbershops.created_at
    UpdatedAt      time.Time // barbershops.updated_at
}

// DefaultValidityDays is applied when a shop is created without an
// explicit redemption window.
const DefaultValidityDays = 30
