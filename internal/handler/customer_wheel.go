package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/barbergo/loyalty-wheel/internal/model"
	"github.com/barbergo/loyalty-wheel/internal/queue"
	"github.com/barbergo/loyalty-wheel/internal/repository"
	queue_publisher "github.com/barbergo/loyalty-wheel/internal/service"
	"github.com/barbergo/loyalty-wheel/internal/wheel"
)

// CustomerHandler groups the dependencies of the wheel endpoints.  All
// methods assume JWT authentication and role validation have already
// been performed by middleware; the shop and subscriber claims identify
// the prize pool the customer draws from.  The draw itself runs inside
// a transaction so catalog reads and the play insert see one snapshot.
type CustomerHandler struct {
	ShopRepo     *repository.BarbershopRepo
	CustomerRepo *repository.CustomerRepo
	PrizeRepo    *repository.PrizeRepo
	PlayRepo     *repository.PlayRepo
	UserRepo     *repository.UserRepo
	AMQPURL      string // broker for the prize.won publisher; empty selects the local broker
	Rand         wheel.Source
}

// NewCustomerHandler constructs a new CustomerHandler with the provided
// repositories.  All dependencies except amqpURL must be non-nil.
func NewCustomerHandler(shopRepo *repository.BarbershopRepo, customerRepo *repository.CustomerRepo, prizeRepo *repository.PrizeRepo, playRepo *repository.PlayRepo, userRepo *repository.UserRepo, amqpURL string, rnd wheel.Source) *CustomerHandler {
	if shopRepo == nil || customerRepo == nil || prizeRepo == nil || playRepo == nil || userRepo == nil || rnd == nil {
		panic("nil dependency passed to NewCustomerHandler")
	}
	return &CustomerHandler{
		ShopRepo:     shopRepo,
		CustomerRepo: customerRepo,
		PrizeRepo:    prizeRepo,
		PlayRepo:     playRepo,
		UserRepo:     userRepo,
		AMQPURL:      amqpURL,
		Rand:         rnd,
	}
}

// wheelPrize is the sanitized prize shape shown on the wheel itself.
// Redemption codes stay hidden until a prize is actually won.
type wheelPrize struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Chance      float64 `json:"chance"`
}

// profile loads the customer profile behind the current claims.
func (h *CustomerHandler) profile(c echo.Context) (model.Customer, error) {
	userID, err := getUserID(c)
	if err != nil {
		return model.Customer{}, err
	}
	shopID, err := getShopID(c)
	if err != nil {
		return model.Customer{}, err
	}
	return h.CustomerRepo.GetByUserAndShop(c.Request().Context(), userID, shopID)
}

// poolOpen returns ErrNoPrizesAvailable when the customer's active,
// segment-filtered pool has nothing to land on.
func (h *CustomerHandler) poolOpen(ctx context.Context, cust model.Customer) error {
	prizes, err := h.PrizeRepo.ListActive(ctx, cust.BarbershopID, model.SegmentFor(cust.IsSubscriber))
	if err != nil {
		return err
	}
	if len(prizes) == 0 {
		return repository.ErrNoPrizesAvailable
	}
	return nil
}

// GetWheel handles GET /v1/wheel.  It returns the prizes the current
// customer's pool can land on, in the same stable order the draw walks.
func (h *CustomerHandler) GetWheel(c echo.Context) error {
	cust, err := h.profile(c)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "customer profile not found"})
		}
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	segment := model.SegmentFor(cust.IsSubscriber)
	prizes, err := h.PrizeRepo.ListActive(c.Request().Context(), cust.BarbershopID, segment)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	items := make([]wheelPrize, 0, len(prizes))
	for _, p := range prizes {
		items = append(items, wheelPrize{Title: p.Title, Description: p.Description, Chance: p.Chance})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Eligibility handles GET /v1/wheel/eligibility.  Three outcomes: the
// customer may draw; they already played this month (the response then
// carries that play and the instant eligibility resets, midnight UTC on
// the first of next month); or their prize pool is empty, in which case
// a draw would be pointless and the UI should not offer the spin.
func (h *CustomerHandler) Eligibility(c echo.Context) error {
	cust, err := h.profile(c)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "customer profile not found"})
		}
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	now := time.Now().UTC()
	play, err := h.PlayRepo.FindForMonth(c.Request().Context(), cust.ID, cust.BarbershopID, model.MonthKeyOf(now))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if play == nil {
		if err := h.poolOpen(c.Request().Context(), cust); err != nil {
			if errors.Is(err, repository.ErrNoPrizesAvailable) {
				return c.JSON(http.StatusOK, echo.Map{
					"eligible": false,
					"reason":   repository.ErrNoPrizesAvailable.Error(),
				})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		return c.JSON(http.StatusOK, echo.Map{"eligible": true})
	}
	nextMonth := model.FirstOfMonth(now).AddDate(0, 1, 0)
	v := toPlayView(play, now)
	return c.JSON(http.StatusOK, echo.Map{
		"eligible":         false,
		"current_play":     v,
		"next_eligible_at": nextMonth,
	})
}

// Draw handles POST /v1/wheel/draw, the spin itself.  One clock reading
// drives the month bucket, the expiry window and the play timestamp.
// The selection and the play insert share a transaction; the unique
// month bucket in the plays table settles any race, so a customer who
// double-clicks gets exactly one prize.  The winner notification is
// published after commit and never affects the response.
func (h *CustomerHandler) Draw(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	cust, err := h.profile(c)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "customer profile not found"})
		}
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	now := time.Now().UTC()
	monthKey := model.MonthKeyOf(now)

	// Cheap pre-check so the common repeat case skips the transaction.
	if existing, err := h.PlayRepo.FindForMonth(ctx, cust.ID, cust.BarbershopID, monthKey); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	} else if existing != nil {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":        "already played this month",
			"current_play": toPlayView(existing, now),
		})
	}

	shop, err := h.ShopRepo.GetByID(ctx, cust.BarbershopID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	tx, err := h.PlayRepo.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	segment := model.SegmentFor(cust.IsSubscriber)
	prizes, err := h.PrizeRepo.ListActiveTx(ctx, tx, cust.BarbershopID, segment)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	won, err := wheel.Draw(prizes, h.Rand)
	if err != nil {
		if errors.Is(err, wheel.ErrEmptyWheel) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "no prizes available"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "draw failed"})
	}

	play := model.Play{
		CustomerID:       cust.ID,
		BarbershopID:     cust.BarbershopID,
		PrizeID:          won.ID,
		PrizeTitle:       won.Title,
		PrizeDescription: won.Description,
		PrizeCode:        won.Code,
		MonthKey:         monthKey,
		ExpiresAt:        now.AddDate(0, 0, shop.ValidityDays),
		CreatedAt:        now,
	}
	if err := h.PlayRepo.CreateTx(ctx, tx, &play); err != nil {
		if errors.Is(err, repository.ErrAlreadyPlayed) {
			// Lost a race with a concurrent draw; report the winner of it.
			_ = tx.Rollback()
			if existing, ferr := h.PlayRepo.FindForMonth(ctx, cust.ID, cust.BarbershopID, monthKey); ferr == nil && existing != nil {
				return c.JSON(http.StatusConflict, echo.Map{
					"error":        "already played this month",
					"current_play": toPlayView(existing, now),
				})
			}
			return c.JSON(http.StatusConflict, echo.Map{"error": "already played this month"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record play"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	// Notify after commit; a broker failure never undoes the play.
	go h.publishWin(userID, shop, play)

	return c.JSON(http.StatusCreated, toPlayView(&play, now))
}

// publishWin sends the prize.won event on a detached context.
func (h *CustomerHandler) publishWin(userID uint64, shop model.Barbershop, play model.Play) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	email := ""
	if u, err := h.UserRepo.GetByID(ctx, userID); err == nil {
		email = u.Email
	}
	_ = queue_publisher.PublishPrizeWon(ctx, h.AMQPURL, queue.PrizeWonEvent{
		PlayID:           play.ID,
		CustomerID:       play.CustomerID,
		CustomerEmail:    email,
		BarbershopID:     play.BarbershopID,
		ShopName:         shop.Name,
		ShopContact:      shop.ContactChannel,
		PrizeTitle:       play.PrizeTitle,
		PrizeDescription: play.PrizeDescription,
		PrizeCode:        play.PrizeCode,
		ExpiresAt:        play.ExpiresAt.Format(time.RFC3339),
		WonAt:            play.CreatedAt.Format(time.RFC3339),
	})
}

// ListPlays handles GET /v1/my-plays: the customer's coupon history,
// newest first, with derived statuses.
func (h *CustomerHandler) ListPlays(c echo.Context) error {
	cust, err := h.profile(c)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "customer profile not found"})
		}
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	plays, err := h.PlayRepo.ListByCustomer(c.Request().Context(), cust.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	now := time.Now().UTC()
	items := make([]playView, 0, len(plays))
	for i := range plays {
		items = append(items, toPlayView(&plays[i], now))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
