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

func newMock(t *testing.T) (sqlmock.Sqlmock, *PrizeRepo, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return mock, NewPrizeRepo(db), func() { db.Close() }
}

func TestPrizeCreateWithinBudget(t *testing.T) {
	mock, repo, done := newMock(t)
	defer done()

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(uint64(1), "SUBSCRIBER", uint64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(55.0))
	mock.ExpectExec("INSERT INTO prizes").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery("SELECT created_at, updated_at").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	p := model.Prize{
		BarbershopID: 1,
		Title:        "Free haircut",
		Chance:       40,
		Audience:     model.SegmentSubscriber,
		Active:       true,
	}
	require.NoError(t, repo.Create(context.Background(), &p))
	assert.Equal(t, uint64(7), p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrizeCreatePoolExceededReportsHeadroom(t *testing.T) {
	mock, repo, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(uint64(1), "SUBSCRIBER", uint64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(80.0))
	mock.ExpectRollback()

	p := model.Prize{
		BarbershopID: 1,
		Title:        "Beard trim",
		Chance:       30,
		Audience:     model.SegmentSubscriber,
		Active:       true,
	}
	err := repo.Create(context.Background(), &p)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrChancePoolExceeded)

	var poolErr *ChancePoolError
	require.True(t, errors.As(err, &poolErr))
	assert.Equal(t, model.SegmentSubscriber, poolErr.Pool)
	assert.InDelta(t, 20.0, poolErr.Headroom, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrizeCreateBothCountsTowardBothPools(t *testing.T) {
	mock, repo, done := newMock(t)
	defer done()

	// BOTH validates against the subscriber pool first, then the
	// non-subscriber pool.  The second pool is the full one here.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(uint64(1), "SUBSCRIBER", uint64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(10.0))
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(uint64(1), "NON_SUBSCRIBER", uint64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(95.0))
	mock.ExpectRollback()

	p := model.Prize{
		BarbershopID: 1,
		Title:        "Discount voucher",
		Chance:       20,
		Audience:     model.SegmentBoth,
		Active:       true,
	}
	err := repo.Create(context.Background(), &p)
	require.Error(t, err)

	var poolErr *ChancePoolError
	require.True(t, errors.As(err, &poolErr))
	assert.Equal(t, model.SegmentNonSubscriber, poolErr.Pool)
	assert.InDelta(t, 5.0, poolErr.Headroom, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrizeCreateExactlyHundredAllowed(t *testing.T) {
	mock, repo, done := newMock(t)
	defer done()

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(uint64(1), "NON_SUBSCRIBER", uint64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(60.0))
	mock.ExpectExec("INSERT INTO prizes").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectQuery("SELECT created_at, updated_at").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	p := model.Prize{
		BarbershopID: 1,
		Title:        "Hot towel shave",
		Chance:       40,
		Audience:     model.SegmentNonSubscriber,
		Active:       true,
	}
	require.NoError(t, repo.Create(context.Background(), &p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrizeCreateInactiveSkipsPoolCheck(t *testing.T) {
	mock, repo, done := newMock(t)
	defer done()

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO prizes").
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectQuery("SELECT created_at, updated_at").
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	p := model.Prize{
		BarbershopID: 1,
		Title:        "Seasonal special",
		Chance:       90, // would overflow any pool if it were active
		Audience:     model.SegmentSubscriber,
		Active:       false,
	}
	require.NoError(t, repo.Create(context.Background(), &p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrizeCreateRejectsInvalidChance(t *testing.T) {
	_, repo, done := newMock(t)
	defer done()

	for _, chance := range []float64{0, -5, 100.5} {
		p := model.Prize{BarbershopID: 1, Title: "x", Chance: chance, Audience: model.SegmentBoth, Active: true}
		assert.ErrorIs(t, repo.Create(context.Background(), &p), ErrInvalidChance)
	}
}

func TestPrizeUpdateExcludesOwnChance(t *testing.T) {
	mock, repo, done := newMock(t)
	defer done()

	// Raising a prize from 30 to 40 in a pool already at 90 total must
	// pass because its own 30 is excluded from the sum.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM prizes").
		WithArgs(uint64(5), uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(uint64(1), "SUBSCRIBER", uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(60.0))
	mock.ExpectExec("UPDATE prizes").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p := model.Prize{
		ID:           5,
		BarbershopID: 1,
		Title:        "Free haircut",
		Chance:       40,
		Audience:     model.SegmentSubscriber,
		Active:       true,
	}
	require.NoError(t, repo.Update(context.Background(), &p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrizeUpdateWrongShopNotFound(t *testing.T) {
	mock, repo, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM prizes").
		WithArgs(uint64(5), uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	p := model.Prize{ID: 5, BarbershopID: 2, Title: "x", Chance: 10, Audience: model.SegmentBoth, Active: true}
	assert.ErrorIs(t, repo.Update(context.Background(), &p), ErrPrizeNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrizeDeleteNotFound(t *testing.T) {
	mock, repo, done := newMock(t)
	defer done()

	mock.ExpectExec("DELETE FROM prizes").
		WithArgs(uint64(99), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 99, 1), ErrPrizeNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
