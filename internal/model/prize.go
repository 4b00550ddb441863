package model

import "time"

// Prize is one slice of a shop's wheel.  The chance column is a
// percentage with two decimal places; across all active prizes of one
// (shop, audience) pool the chances may never sum past 100.  BOTH-
// audience prizes are counted into the subscriber and the non-subscriber
// pool alike.  This struct corresponds to a row in the `prizes` table.
//
// Fields:
//  ID           – primary key identifier.
//  BarbershopID – owning tenant.
//  Title        – short prize name shown on the wheel.
//  Description  – longer text shown after a win.
//  Code         – redemption code handed to the barber in store.
//  Chance       – win probability in percent, 0 < chance ≤ 100.
//  Audience     – which customer segment may win this prize.
//  Active       – inactive prizes are invisible to draws and sum checks.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Prize struct {
    ID           uint64    // prizes.id
    BarbershopID uint64    // prizes.barbershop_id
    Title        string    // prizes.title
    Description  string    // prizes.description
    Code         string    // prizes.code
    Chance       float64   // prizes.chance (DECIMAL(5,2))
    Audience     Segment   // prizes.audience
    Active       bool      // prizes.active
    CreatedAt    time.Time // prizes.created_at
    UpdatedAt    time.Time // prizes.updated_at
}
