package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barbergo/loyalty-wheel/internal/model"
	"github.com/barbergo/loyalty-wheel/internal/repository"
)

// fixedSource returns a constant spin value so draws are deterministic.
type fixedSource struct{ v float64 }

func (f fixedSource) Spin() float64 { return f.v }

func newDrawHandler(t *testing.T, spin float64) (sqlmock.Sqlmock, *CustomerHandler, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	h := NewCustomerHandler(
		repository.NewBarbershopRepo(db),
		repository.NewCustomerRepo(db),
		repository.NewPrizeRepo(db),
		repository.NewPlayRepo(db),
		repository.NewUserRepo(db),
		"", // no broker in tests; the publish goroutine swallows the dial failure
		fixedSource{v: spin},
	)
	return mock, h, func() { db.Close() }
}

func drawContext(e *echo.Echo) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/v1/wheel/draw", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(42))
	c.Set("shop_id", uint64(7))
	c.Set("subscriber", false)
	return c, rec
}

func customerRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "barbershop_id", "name", "is_subscriber", "created_at"}).
		AddRow(3, 42, 7, "Sam", false, time.Now().UTC())
}

func shopRow() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "owner_id", "name", "slug", "contact_channel",
		"validity_days", "plays_per_month", "created_at", "updated_at",
	}).AddRow(7, 1, "Fade Factory", "fade-factory", "mail@fade.example", 30, 1, now, now)
}

func prizeRows() *sqlmock.Rows {
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "barbershop_id", "title", "description", "code",
		"chance", "audience", "active", "created_at", "updated_at",
	})
	rows.AddRow(1, 7, "Free haircut", "One free cut", "CUT123", 40.0, "NON_SUBSCRIBER", true, now, now)
	rows.AddRow(2, 7, "Beard trim", "", "TRIM456", 30.0, "BOTH", true, now, now)
	return rows
}

func TestDrawRecordsPlayAndFreezesExpiry(t *testing.T) {
	mock, h, done := newDrawHandler(t, 10) // lands on the first prize
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM customers").
		WithArgs(uint64(42), uint64(7)).
		WillReturnRows(customerRow())
	mock.ExpectQuery("SELECT (.+) FROM plays").
		WillReturnRows(sqlmock.NewRows([]string{"id"})) // no play this month
	mock.ExpectQuery("SELECT (.+) FROM barbershops").
		WithArgs(uint64(7)).
		WillReturnRows(shopRow())
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM prizes").
		WithArgs(uint64(7), "NON_SUBSCRIBER").
		WillReturnRows(prizeRows())
	mock.ExpectExec("INSERT INTO plays").
		WillReturnResult(sqlmock.NewResult(100, 1))
	mock.ExpectCommit()

	c, rec := drawContext(echo.New())
	require.NoError(t, h.Draw(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		ID     uint64 `json:"id"`
		Status string `json:"status"`
		Prize  struct {
			Title string `json:"title"`
			Code  string `json:"code"`
		} `json:"prize"`
		ExpiresAt time.Time `json:"expires_at"`
		CreatedAt time.Time `json:"created_at"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(100), resp.ID)
	assert.Equal(t, model.PlayStatusActive, resp.Status)
	assert.Equal(t, "Free haircut", resp.Prize.Title)
	assert.Equal(t, "CUT123", resp.Prize.Code)
	// Expiry is frozen at draw time from the shop's 30-day window.
	assert.Equal(t, resp.CreatedAt.AddDate(0, 0, 30), resp.ExpiresAt)
}

func TestDrawSecondSpinSameMonthConflicts(t *testing.T) {
	mock, h, done := newDrawHandler(t, 10)
	defer done()

	now := time.Now().UTC()
	existing := sqlmock.NewRows([]string{
		"id", "customer_id", "barbershop_id", "prize_id", "prize_title",
		"prize_description", "prize_code", "month_key", "redeemed",
		"redeemed_at", "expires_at", "created_at",
	}).AddRow(50, 3, 7, 1, "Free haircut", "", "CUT123",
		model.MonthKeyOf(now), false, nil, now.AddDate(0, 0, 29), now.AddDate(0, 0, -1))

	mock.ExpectQuery("SELECT (.+) FROM customers").
		WithArgs(uint64(42), uint64(7)).
		WillReturnRows(customerRow())
	mock.ExpectQuery("SELECT (.+) FROM plays").
		WillReturnRows(existing)

	c, rec := drawContext(echo.New())
	require.NoError(t, h.Draw(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already played this month")
	assert.Contains(t, rec.Body.String(), "current_play")
}

func TestEligibilityEmptyPoolNotEligible(t *testing.T) {
	mock, h, done := newDrawHandler(t, 10)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM customers").
		WithArgs(uint64(42), uint64(7)).
		WillReturnRows(customerRow())
	mock.ExpectQuery("SELECT (.+) FROM plays").
		WillReturnRows(sqlmock.NewRows([]string{"id"})) // no play this month
	mock.ExpectQuery("SELECT (.+) FROM prizes").
		WithArgs(uint64(7), "NON_SUBSCRIBER").
		WillReturnRows(sqlmock.NewRows([]string{"id"})) // nothing to land on

	c, rec := drawContext(echo.New())
	require.NoError(t, h.Eligibility(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"eligible":false`)
	assert.Contains(t, rec.Body.String(), "no prizes available")
}

func TestEligibilityOpenPool(t *testing.T) {
	mock, h, done := newDrawHandler(t, 10)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM customers").
		WithArgs(uint64(42), uint64(7)).
		WillReturnRows(customerRow())
	mock.ExpectQuery("SELECT (.+) FROM plays").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("SELECT (.+) FROM prizes").
		WithArgs(uint64(7), "NON_SUBSCRIBER").
		WillReturnRows(prizeRows())

	c, rec := drawContext(echo.New())
	require.NoError(t, h.Eligibility(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"eligible":true`)
}

func TestDrawEmptyPoolRejected(t *testing.T) {
	mock, h, done := newDrawHandler(t, 10)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM customers").
		WithArgs(uint64(42), uint64(7)).
		WillReturnRows(customerRow())
	mock.ExpectQuery("SELECT (.+) FROM plays").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("SELECT (.+) FROM barbershops").
		WithArgs(uint64(7)).
		WillReturnRows(shopRow())
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM prizes").
		WithArgs(uint64(7), "NON_SUBSCRIBER").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	c, rec := drawContext(echo.New())
	require.NoError(t, h.Draw(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
