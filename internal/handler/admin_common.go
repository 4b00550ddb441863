package handler // handler defines http handlers

import (
	"github.com/barbergo/loyalty-wheel/internal/model"
	"github.com/barbergo/loyalty-wheel/internal/repository"
)

// AdminHandler bundles repositories for shop admins to manage their
// prize catalog, redemption desk and shop configuration.  Every method
// reads the tenant from the shop_id claim; cross-shop access is
// impossible by construction.
type AdminHandler struct {
	ShopRepo  *repository.BarbershopRepo
	PrizeRepo *repository.PrizeRepo
	PlayRepo  *repository.PlayRepo
}

// NewAdminHandler constructs a new AdminHandler and panics if any dependency is nil.
func NewAdminHandler(shopRepo *repository.BarbershopRepo, prizeRepo *repository.PrizeRepo, playRepo *repository.PlayRepo) *AdminHandler {
	if shopRepo == nil || prizeRepo == nil || playRepo == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{ShopRepo: shopRepo, PrizeRepo: prizeRepo, PlayRepo: playRepo}
}

// poolUsage summarizes one audience pool: how much of the 100% budget
// active prizes consume and how much headroom remains for new prizes.
type poolUsage struct {
	Pool     string  `json:"pool"`
	Used     float64 `json:"used"`
	Headroom float64 `json:"headroom"`
}

// poolUsageOf computes usage for both customer-facing pools from a full
// catalog listing.  BOTH-audience prizes count toward each pool, the
// same double-counting the write-time validation applies.
func poolUsageOf(prizes []model.Prize) []poolUsage {
	sums := map[model.Segment]float64{
		model.SegmentSubscriber:    0,
		model.SegmentNonSubscriber: 0,
	}
	for _, p := range prizes {
		if !p.Active {
			continue
		}
		for _, pool := range p.Audience.Pools() {
			sums[pool] += p.Chance
		}
	}
	out := make([]poolUsage, 0, 2)
	for _, pool := range []model.Segment{model.SegmentSubscriber, model.SegmentNonSubscriber} {
		used := sums[pool]
		headroom := 100 - used
		if headroom < 0 {
			headroom = 0
		}
		out = append(out, poolUsage{Pool: string(pool), Used: used, Headroom: headroom})
	}
	return out
}
