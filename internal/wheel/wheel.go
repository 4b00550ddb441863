// Package wheel implements the weighted prize selection at the heart of
// the loyalty program.  It is pure arithmetic: persistence, eligibility
// and the month-bucket race all live in the repository and handler
// layers, which keeps this package trivially testable with a fixed
// random value.
package wheel

import (
    "errors"
    "math/rand"
    "sync"
    "time"

    "github.com/barbergo/loyalty-wheel/internal/model"
)

// ErrEmptyWheel is returned when a draw is attempted against an empty
// prize list.
var ErrEmptyWheel = errors.New("no prizes on the wheel")

// Source yields uniform random values in [0, 100), one per spin.
type Source interface {
    Spin() float64
}

// randSource is the production Source backed by math/rand.  The mutex
// makes it safe for concurrent draw requests sharing one instance.
type randSource struct {
    mu sync.Mutex
    r  *rand.Rand
}

// NewSource returns a Source seeded from the wall clock.
func NewSource() Source {
    return &randSource{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (s *randSource) Spin() float64 {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.r.Float64() * 100
}

// Pick selects one prize from the list for the drawn value r.  The list
// must already be filtered to the customer's active pool and ordered in
// stable catalog order; the walk accumulates each prize's chance and the
// first prize whose cumulative total reaches r wins.  Chance sums are
// validated to stay at or under 100 at catalog-write time, not here, so
// the walk tolerates any positive sum.  When r lands past the cumulative
// total (sum under 100, or rounding at the edge), the first prize in the
// list wins; that tail policy is deliberate and documented, and it means
// an under-subscribed pool hands its first prize the leftover
// probability.
func Pick(prizes []model.Prize, r float64) (model.Prize, error) {
    if len(prizes) == 0 {
        return model.Prize{}, ErrEmptyWheel
    }
    cumulative := 0.0
    for _, p := range prizes {
        cumulative += p.Chance
        if r <= cumulative {
            return p, nil
        }
    }
    return prizes[0], nil
}

// Draw spins the source once and picks the winner.
func Draw(prizes []model.Prize, src Source) (model.Prize, error) {
    return Pick(prizes, src.Spin())
}
