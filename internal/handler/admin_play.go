package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/barbergo/loyalty-wheel/internal/model"
	"github.com/barbergo/loyalty-wheel/internal/repository"
)

// ListPlays handles GET /v1/admin/plays.  It returns the shop's plays
// newest first, optionally filtered by derived status with
// ?status=ACTIVE|REDEEMED|EXPIRED.  Status is computed against the
// request clock, so a coupon that lapsed a second ago already lists as
// EXPIRED with no background job involved.
func (h *AdminHandler) ListPlays(c echo.Context) error {
	shopID, err := getShopID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	statusFilter := strings.ToUpper(strings.TrimSpace(c.QueryParam("status")))
	switch statusFilter {
	case "", model.PlayStatusActive, model.PlayStatusRedeemed, model.PlayStatusExpired:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status filter"})
	}

	plays, err := h.PlayRepo.ListByShop(c.Request().Context(), shopID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	now := time.Now().UTC()
	items := make([]playView, 0, len(plays))
	for i := range plays {
		v := toPlayView(&plays[i], now)
		if statusFilter != "" && v.Status != statusFilter {
			continue
		}
		items = append(items, v)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetPlay handles GET /v1/admin/plays/:id.
func (h *AdminHandler) GetPlay(c echo.Context) error {
	shopID, err := getShopID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	playID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || playID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid play id"})
	}
	p, err := h.PlayRepo.GetByID(c.Request().Context(), playID, shopID)
	if err != nil {
		if errors.Is(err, repository.ErrPlayNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "play not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toPlayView(p, time.Now().UTC()))
}

// RedeemPlay handles POST /v1/admin/plays/:id/redeem.  The desk marks a
// coupon redeemed; a second redemption answers 409 and a coupon past
// its expiry answers 410.  The decision is made under a row lock in the
// repository so two clerks cannot both succeed.
func (h *AdminHandler) RedeemPlay(c echo.Context) error {
	shopID, err := getShopID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	playID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || playID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid play id"})
	}
	now := time.Now().UTC()
	p, err := h.PlayRepo.Redeem(c.Request().Context(), playID, shopID, now)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrPlayNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "play not found"})
		case errors.Is(err, repository.ErrAlreadyRedeemed):
			return c.JSON(http.StatusConflict, echo.Map{"error": "already redeemed"})
		case errors.Is(err, repository.ErrPlayExpired):
			return c.JSON(http.StatusGone, echo.Map{"error": "play expired"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
	}
	return c.JSON(http.StatusOK, toPlayView(p, now))
}
