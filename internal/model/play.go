package model

import "time"

// Play state values as reported by Status.  Only REDEEMED is ever
// written to the database; ACTIVE and EXPIRED are derived from the
// clock at read time so that no background job is needed to expire
// coupons.
const (
    PlayStatusActive   = "ACTIVE"
    PlayStatusRedeemed = "REDEEMED"
    PlayStatusExpired  = "EXPIRED"
)

// Play records one spin of the wheel.  The winning prize's display
// fields are snapshotted at draw time, so deleting the prize later
// never corrupts a customer's coupon history.  MonthKey is the UTC
// YYYY-MM bucket of the draw; together with the customer and shop it is
// unique, which is what enforces one play per customer per month.
// This struct corresponds to a row in the `plays` table.
//
// Fields:
//  ID               – primary key identifier.
//  CustomerID       – who spun the wheel.
//  BarbershopID     – owning tenant.
//  PrizeID          – prize reference at draw time (not FK-enforced).
//  PrizeTitle       – snapshot of the prize title.
//  PrizeDescription – snapshot of the prize description.
//  PrizeCode        – snapshot of the redemption code.
//  MonthKey         – UTC month bucket, e.g. "2026-01".
//  Redeemed         – terminal flag set by the redemption desk.
//  RedeemedAt       – when the coupon was redeemed (null until then).
//  ExpiresAt        – created_at + the shop's validity window, frozen.
//  CreatedAt        – draw timestamp.
type Play struct {
    ID               uint64     // plays.id
    CustomerID       uint64     // plays.customer_id
    BarbershopID     uint64     // plays.barbershop_id
    PrizeID          uint64     // plays.prize_id
    PrizeTitle       string     // plays.prize_title
    PrizeDescription string     // plays.prize_description
    PrizeCode        string     // plays.prize_code
    MonthKey         string     // plays.month_key
    Redeemed         bool       // plays.redeemed
    RedeemedAt       *time.Time // plays.redeemed_at (nullable)
    ExpiresAt        time.Time  // plays.expires_at
    CreatedAt        time.Time  // plays.created_at
}

// Status derives the lifecycle state at the given instant.  Redeemed
// wins over expiry: a coupon redeemed in time stays REDEEMED forever.
func (p *Play) Status(now time.Time) string {
    if p.Redeemed {
        return PlayStatusRedeemed
    }
    if now.After(p.ExpiresAt) {
        return PlayStatusExpired
    }
    return PlayStatusActive
}

// MonthKeyOf formats the UTC month bucket for a timestamp.
func MonthKeyOf(t time.Time) string {
    return t.UTC().Format("2006-01")
}

// FirstOfMonth returns midnight UTC on the first day of t's month.
// Eligibility compares play timestamps against this instant.
func FirstOfMonth(t time.Time) time.Time {
    u := t.UTC()
    return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}
