package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/barbergo/loyalty-wheel/internal/model"
	"github.com/barbergo/loyalty-wheel/internal/repository"
	"github.com/barbergo/loyalty-wheel/internal/utils"
)

// prizeReq is the request body for creating and updating prizes.
// Active defaults to true on create when omitted.
type prizeReq struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Code        string  `json:"code"`
	Chance      float64 `json:"chance"`
	Audience    string  `json:"audience"` // SUBSCRIBER | NON_SUBSCRIBER | BOTH
	Active      *bool   `json:"active"`
}

type prizeView struct {
	ID          uint64  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Code        string  `json:"code"`
	Chance      float64 `json:"chance"`
	Audience    string  `json:"audience"`
	Active      bool    `json:"active"`
}

func toPrizeView(p model.Prize) prizeView {
	return prizeView{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Code:        p.Code,
		Chance:      p.Chance,
		Audience:    string(p.Audience),
		Active:      p.Active,
	}
}

// prizeWriteError maps catalog write failures to HTTP responses.  A
// chance-pool overflow answers 422 with the pool that overflowed and
// the headroom still available, so the admin UI can tell the user
// exactly how much budget is left.
func prizeWriteError(c echo.Context, err error) error {
	var poolErr *repository.ChancePoolError
	switch {
	case errors.As(err, &poolErr):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":    "chance pool exceeded",
			"pool":     string(poolErr.Pool),
			"headroom": poolErr.Headroom,
		})
	case errors.Is(err, repository.ErrInvalidChance):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "chance must be in (0, 100]"})
	case errors.Is(err, model.ErrInvalidSegment):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid audience"})
	case errors.Is(err, repository.ErrPrizeNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "prize not found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}

// CreatePrize handles POST /v1/admin/prizes.  The new prize's chance is
// validated against the remaining headroom of every pool its audience
// feeds before the row is written.
func (h *AdminHandler) CreatePrize(c echo.Context) error {
	shopID, err := getShopID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req prizeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	// A prize without an explicit code gets a generated one; the desk
	// needs something to type in at redemption.
	if req.Code == "" {
		req.Code = utils.NewRedemptionCode()
	}
	p := model.Prize{
		BarbershopID: shopID,
		Title:        req.Title,
		Description:  req.Description,
		Code:         req.Code,
		Chance:       req.Chance,
		Audience:     model.Segment(req.Audience),
		Active:       active,
	}
	if err := h.PrizeRepo.Create(c.Request().Context(), &p); err != nil {
		return prizeWriteError(c, err)
	}
	return c.JSON(http.StatusCreated, toPrizeView(p))
}

// UpdatePrize handles PUT /v1/admin/prizes/:id.  The edited prize's own
// chance is excluded from the pool sum so lowering a chance always
// succeeds; deactivating removes it from the sum entirely.
func (h *AdminHandler) UpdatePrize(c echo.Context) error {
	shopID, err := getShopID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	prizeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || prizeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid prize id"})
	}
	var req prizeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	p := model.Prize{
		ID:           prizeID,
		BarbershopID: shopID,
		Title:        req.Title,
		Description:  req.Description,
		Code:         req.Code,
		Chance:       req.Chance,
		Audience:     model.Segment(req.Audience),
		Active:       active,
	}
	if err := h.PrizeRepo.Update(c.Request().Context(), &p); err != nil {
		return prizeWriteError(c, err)
	}
	return c.JSON(http.StatusOK, toPrizeView(p))
}

// DeletePrize handles DELETE /v1/admin/prizes/:id.  Past plays keep
// their snapshot of the prize, so deletion is always allowed.
func (h *AdminHandler) DeletePrize(c echo.Context) error {
	shopID, err := getShopID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	prizeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || prizeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid prize id"})
	}
	if err := h.PrizeRepo.Delete(c.Request().Context(), prizeID, shopID); err != nil {
		if errors.Is(err, repository.ErrPrizeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "prize not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListPrizes handles GET /v1/admin/prizes.  Returns the full catalog in
// stable order plus per-pool usage so the admin can see remaining
// headroom at a glance.
func (h *AdminHandler) ListPrizes(c echo.Context) error {
	shopID, err := getShopID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	prizes, err := h.PrizeRepo.ListByShop(c.Request().Context(), shopID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	items := make([]prizeView, 0, len(prizes))
	for _, p := range prizes {
		items = append(items, toPrizeView(p))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items": items,
		"pools": poolUsageOf(prizes),
	})
}

// GetPrize handles GET /v1/admin/prizes/:id.
func (h *AdminHandler) GetPrize(c echo.Context) error {
	shopID, err := getShopID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	prizeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || prizeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid prize id"})
	}
	p, err := h.PrizeRepo.GetByID(c.Request().Context(), prizeID, shopID)
	if err != nil {
		if errors.Is(err, repository.ErrPrizeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "prize not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toPrizeView(p))
}
