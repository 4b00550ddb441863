package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barbergo/loyalty-wheel/internal/model"
)

func newPlayMock(t *testing.T) (sqlmock.Sqlmock, *PlayRepo, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return mock, NewPlayRepo(db), func() { db.Close() }
}

func playRowColumns() []string {
	return []string{
		"id", "customer_id", "barbershop_id", "prize_id", "prize_title",
		"prize_description", "prize_code", "month_key", "redeemed",
		"redeemed_at", "expires_at", "created_at",
	}
}

func TestPlayCreateTxDuplicateMonthBucket(t *testing.T) {
	mock, repo, done := newPlayMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO plays").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry '3-1-2026-08' for key 'uniq_customer_shop_month'"))
	mock.ExpectRollback()

	ctx := context.Background()
	tx, err := repo.DB.BeginTx(ctx, nil)
	require.NoError(t, err)

	now := time.Now().UTC()
	p := model.Play{
		CustomerID:   3,
		BarbershopID: 1,
		PrizeID:      7,
		PrizeTitle:   "Free haircut",
		MonthKey:     model.MonthKeyOf(now),
		ExpiresAt:    now.AddDate(0, 0, 30),
		CreatedAt:    now,
	}
	err = repo.CreateTx(ctx, tx, &p)
	assert.ErrorIs(t, err, ErrAlreadyPlayed)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlayCreateTxAssignsID(t *testing.T) {
	mock, repo, done := newPlayMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO plays").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := repo.DB.BeginTx(ctx, nil)
	require.NoError(t, err)

	now := time.Now().UTC()
	p := model.Play{
		CustomerID:   3,
		BarbershopID: 1,
		PrizeID:      7,
		PrizeTitle:   "Free haircut",
		MonthKey:     model.MonthKeyOf(now),
		ExpiresAt:    now.AddDate(0, 0, 30),
		CreatedAt:    now,
	}
	require.NoError(t, repo.CreateTx(ctx, tx, &p))
	require.NoError(t, tx.Commit())
	assert.Equal(t, uint64(42), p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlayFindForMonthNoneIsNotAnError(t *testing.T) {
	mock, repo, done := newPlayMock(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM plays").
		WithArgs(uint64(3), uint64(1), "2026-08").
		WillReturnRows(sqlmock.NewRows(playRowColumns()))

	p, err := repo.FindForMonth(context.Background(), 3, 1, "2026-08")
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlayRedeemHappyPath(t *testing.T) {
	mock, repo, done := newPlayMock(t)
	defer done()

	now := time.Now().UTC()
	created := now.Add(-24 * time.Hour)
	expires := now.Add(24 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM plays").
		WithArgs(uint64(10), uint64(1)).
		WillReturnRows(sqlmock.NewRows(playRowColumns()).
			AddRow(10, 3, 1, 7, "Free haircut", "One free cut", "CODE123",
				"2026-08", false, nil, expires, created))
	mock.ExpectExec("UPDATE plays SET redeemed = 1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p, err := repo.Redeem(context.Background(), 10, 1, now)
	require.NoError(t, err)
	assert.True(t, p.Redeemed)
	require.NotNil(t, p.RedeemedAt)
	assert.Equal(t, now, *p.RedeemedAt)
	assert.Equal(t, model.PlayStatusRedeemed, p.Status(now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlayRedeemTwiceFails(t *testing.T) {
	mock, repo, done := newPlayMock(t)
	defer done()

	now := time.Now().UTC()
	redeemedAt := now.Add(-time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM plays").
		WithArgs(uint64(10), uint64(1)).
		WillReturnRows(sqlmock.NewRows(playRowColumns()).
			AddRow(10, 3, 1, 7, "Free haircut", "", "CODE123",
				"2026-08", true, redeemedAt, now.Add(24*time.Hour), now.Add(-48*time.Hour)))
	mock.ExpectRollback()

	_, err := repo.Redeem(context.Background(), 10, 1, now)
	assert.ErrorIs(t, err, ErrAlreadyRedeemed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlayRedeemExpiredFails(t *testing.T) {
	mock, repo, done := newPlayMock(t)
	defer done()

	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM plays").
		WithArgs(uint64(10), uint64(1)).
		WillReturnRows(sqlmock.NewRows(playRowColumns()).
			AddRow(10, 3, 1, 7, "Free haircut", "", "CODE123",
				"2026-07", false, nil, now.Add(-time.Minute), now.AddDate(0, 0, -31)))
	mock.ExpectRollback()

	_, err := repo.Redeem(context.Background(), 10, 1, now)
	assert.ErrorIs(t, err, ErrPlayExpired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlayRedeemUnknownPlay(t *testing.T) {
	mock, repo, done := newPlayMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM plays").
		WithArgs(uint64(99), uint64(1)).
		WillReturnRows(sqlmock.NewRows(playRowColumns()))
	mock.ExpectRollback()

	_, err := repo.Redeem(context.Background(), 99, 1, time.Now().UTC())
	assert.ErrorIs(t, err, ErrPlayNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
