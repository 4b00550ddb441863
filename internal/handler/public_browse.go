// Package handler exposes HTTP handlers for both authenticated and public
// endpoints.  This file defines the public browsing API: unauthenticated
// users can list barbershops running the loyalty wheel and preview a
// shop's wheel before signing up.  Sensitive fields (owner IDs,
// redemption codes, timestamps) are filtered from responses.

package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/barbergo/loyalty-wheel/internal/model"
	"github.com/barbergo/loyalty-wheel/internal/repository"
)

// PublicHandler aggregates repositories needed for unauthenticated
// browsing.  It produces sanitized responses suitable for public
// consumption; these routes sit behind the Redis response cache.
type PublicHandler struct {
	ShopRepo  *repository.BarbershopRepo
	PrizeRepo *repository.PrizeRepo
}

// PublicShop represents a barbershop exposed via the public API.  It
// contains only safe fields.
type PublicShop struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// PublicShopDetail adds the branding a signup page needs, including the
// validity window prizes are redeemable for.
type PublicShopDetail struct {
	ID             uint64       `json:"id"`
	Name           string       `json:"name"`
	Slug           string       `json:"slug"`
	ContactChannel string       `json:"contact_channel"`
	ValidityDays   int          `json:"validity_days"`
	Wheel          []wheelPrize `json:"wheel"`
}

// ListShops returns the shop directory for unauthenticated users.
// Response JSON contains an "items" array of PublicShop.
func (h *PublicHandler) ListShops(c echo.Context) error {
	ctx := c.Request().Context()
	shops, err := h.ShopRepo.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicShop, 0, len(shops))
	for _, s := range shops {
		out = append(out, PublicShop{ID: s.ID, Name: s.Name, Slug: s.Slug})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetShop returns one shop's branding and a preview of its wheel.  The
// optional ?segment=SUBSCRIBER|NON_SUBSCRIBER parameter picks which
// pool to preview; it defaults to the non-subscriber pool a walk-in
// would see.  Redemption codes are never included.
func (h *PublicHandler) GetShop(c echo.Context) error {
	ctx := c.Request().Context()
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slug"})
	}
	s, err := h.ShopRepo.GetBySlug(ctx, slug)
	if err != nil {
		if err == repository.ErrShopNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "shop not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	segment := model.SegmentNonSubscriber
	if q := c.QueryParam("segment"); q != "" {
		parsed, err := model.ParseSegment(q)
		if err != nil || parsed == model.SegmentBoth {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid segment"})
		}
		segment = parsed
	}
	prizes, err := h.PrizeRepo.ListActive(ctx, s.ID, segment)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	preview := make([]wheelPrize, 0, len(prizes))
	for _, p := range prizes {
		preview = append(preview, wheelPrize{Title: p.Title, Description: p.Description, Chance: p.Chance})
	}
	return c.JSON(http.StatusOK, PublicShopDetail{
		ID:             s.ID,
		Name:           s.Name,
		Slug:           s.Slug,
		ContactChannel: s.ContactChannel,
		ValidityDays:   s.ValidityDays,
		Wheel:          preview,
	})
}
