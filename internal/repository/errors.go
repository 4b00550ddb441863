// Package repository defines error values that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. All of
// them describe expected, recoverable conditions: a draw against an
// empty pool, a second spin in the same month, a coupon past its
// window. Storage-layer failures are passed through untranslated and
// surface as generic 500 responses.
package repository

import (
    "errors"
    "fmt"

    "github.com/barbergo/loyalty-wheel/internal/model"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidChance is returned when a prize chance falls outside the
// half-open interval (0, 100].
var ErrInvalidChance = errors.New("chance must be greater than 0 and at most 100")

// ErrChancePoolExceeded is the sentinel matched by errors.Is when a
// catalog write would push an audience pool's active chance sum past
// 100%. The concrete error is a ChancePoolError carrying the headroom.
var ErrChancePoolExceeded = errors.New("chance pool exceeded")

// ErrPrizeNotFound is returned when a prize does not exist or belongs
// to a different barbershop.
var ErrPrizeNotFound = errors.New("prize not found")

// ErrShopNotFound is returned when a barbershop does not exist.
var ErrShopNotFound = errors.New("barbershop not found")

// ErrCustomerNotFound is returned when no customer profile exists for
// the authenticated user.
var ErrCustomerNotFound = errors.New("customer not found")

// ErrNoPrizesAvailable is returned when the active, segment-filtered
// prize pool of a shop is empty and therefore nothing can be drawn.
var ErrNoPrizesAvailable = errors.New("no prizes available")

// ErrAlreadyPlayed is returned when a customer already has a play
// recorded in the current calendar month. The existing play is loaded
// separately so the caller can show it instead of erroring.
var ErrAlreadyPlayed = errors.New("already played this month")

// ErrPlayNotFound is returned when a play does not exist or belongs to
// a different barbershop.
var ErrPlayNotFound = errors.New("play not found")

// ErrAlreadyRedeemed is returned when redeeming a play that is already
// in its terminal redeemed state.
var ErrAlreadyRedeemed = errors.New("play already redeemed")

// ErrPlayExpired is returned when redeeming a play past its expires_at.
var ErrPlayExpired = errors.New("play expired")

// ChancePoolError reports which audience pool a rejected catalog write
// would overflow and how much headroom is left, so the admin UI can
// display "only N% available".
type ChancePoolError struct {
    Pool     model.Segment // pool whose sum would exceed 100
    Headroom float64       // 100 - current active sum, never negative
}

func (e *ChancePoolError) Error() string {
    return fmt.Sprintf("chance pool %s exceeded: %.2f%% headroom left", e.Pool, e.Headroom)
}

// Unwrap lets errors.Is(err, ErrChancePoolExceeded) match.
func (e *ChancePoolError) Unwrap() error { return ErrChancePoolExceeded }
