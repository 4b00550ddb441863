package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/barbergo/loyalty-wheel/internal/model"
	"github.com/barbergo/loyalty-wheel/internal/repository"
)

type shopConfigReq struct {
	Name           string `json:"name"`
	ContactChannel string `json:"contact_channel"`
	ValidityDays   int    `json:"validity_days"`
}

type shopView struct {
	ID             uint64 `json:"id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	ContactChannel string `json:"contact_channel"`
	ValidityDays   int    `json:"validity_days"`
	PlaysPerMonth  int    `json:"plays_per_month"`
}

func toShopView(s model.Barbershop) shopView {
	return shopView{
		ID:             s.ID,
		Name:           s.Name,
		Slug:           s.Slug,
		ContactChannel: s.ContactChannel,
		ValidityDays:   s.ValidityDays,
		PlaysPerMonth:  s.PlaysPerMonth,
	}
}

// GetShop handles GET /v1/admin/shop: the admin's own shop settings.
func (h *AdminHandler) GetShop(c echo.Context) error {
	shopID, err := getShopID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	s, err := h.ShopRepo.GetByID(c.Request().Context(), shopID)
	if err != nil {
		if errors.Is(err, repository.ErrShopNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "shop not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toShopView(s))
}

// UpdateShop handles PUT /v1/admin/shop.  Changing validity_days only
// affects plays drawn after the update; existing coupons keep the
// expiry frozen at their draw time.
func (h *AdminHandler) UpdateShop(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	shopID, err := getShopID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req shopConfigReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	ctx := c.Request().Context()
	if err := h.ShopRepo.UpdateConfig(ctx, shopID, userID, req.Name, req.ContactChannel, req.ValidityDays); err != nil {
		switch {
		case errors.Is(err, repository.ErrShopNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "shop not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
	}
	s, err := h.ShopRepo.GetByID(ctx, shopID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toShopView(s))
}
