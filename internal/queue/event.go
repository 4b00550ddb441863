// Package queue defines message payloads exchanged over the message broker.
package queue

// PrizeWonEvent is published after a play commits.  It carries enough
// information for the mailer to compose the congratulation message
// without querying the primary database.  Publishing is best-effort:
// the draw has already committed when this goes out, and a broker
// failure never rolls the play back.
type PrizeWonEvent struct {
    PlayID           uint64 `json:"play_id"`
    CustomerID       uint64 `json:"customer_id"`
    CustomerEmail    string `json:"customer_email"`
    BarbershopID     uint64 `json:"barbershop_id"`
    ShopName         string `json:"shop_name"`
    ShopContact      string `json:"shop_contact"`
    PrizeTitle       string `json:"prize_title"`
    PrizeDescription string `json:"prize_description"`
    PrizeCode        string `json:"prize_code"`
    ExpiresAt        string `json:"expires_at"`
    WonAt            string `json:"won_at"`
}
