package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/barbergo/loyalty-wheel/internal/model"
)

// PlayRepo persists play records, the outcome of wheel spins.  The
// plays table carries a unique key over (customer_id, barbershop_id,
// month_key); that constraint, not application-level locking, is what
// guarantees at most one play per customer per calendar month even when
// two draw requests race.  All timestamp fields are stored in UTC.
type PlayRepo struct {
    DB *sql.DB
}

// NewPlayRepo returns a new PlayRepo bound to the given database.
func NewPlayRepo(db *sql.DB) *PlayRepo { return &PlayRepo{DB: db} }

const playColumns = `id, customer_id, barbershop_id, prize_id, prize_title, prize_description,
                     prize_code, month_key, redeemed, redeemed_at, expires_at, created_at`

// CreateTx inserts a new play within the scope of an existing
// transaction.  CreatedAt, ExpiresAt and MonthKey must already be set
// by the caller; the draw computes them from one shared clock reading
// so the expiry window is exact.  A duplicate month bucket surfaces as
// ErrAlreadyPlayed (MySQL duplicate-key error 1062), which is how a
// lost race is reported.  The caller must commit or rollback.
func (r *PlayRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Play) error {
    const q = `INSERT INTO plays
               (customer_id, barbershop_id, prize_id, prize_title, prize_description,
                prize_code, month_key, expires_at, created_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q,
        p.CustomerID, p.BarbershopID, p.PrizeID, p.PrizeTitle, p.PrizeDescription,
        p.PrizeCode, p.MonthKey, p.ExpiresAt, p.CreatedAt)
    if err != nil {
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return ErrAlreadyPlayed
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    p.ID = uint64(id)
    return nil
}

// FindForMonth returns the customer's play for the given month bucket,
// or (nil, nil) when none exists.  The eligibility check uses this as
// an advisory read; the unique key in CreateTx is the real gate.
func (r *PlayRepo) FindForMonth(ctx context.Context, customerID, shopID uint64, monthKey string) (*model.Play, error) {
    const q = `SELECT ` + playColumns + ` FROM plays
               WHERE customer_id = ? AND barbershop_id = ? AND month_key = ? LIMIT 1`
    p, err := r.scanOne(r.DB.QueryRowContext(ctx, q, customerID, shopID, monthKey))
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, nil
        }
        return nil, err
    }
    return p, nil
}

// GetByID loads a single play scoped to a shop.
func (r *PlayRepo) GetByID(ctx context.Context, playID, shopID uint64) (*model.Play, error) {
    const q = `SELECT ` + playColumns + ` FROM plays
               WHERE id = ? AND barbershop_id = ? LIMIT 1`
    p, err := r.scanOne(r.DB.QueryRowContext(ctx, q, playID, shopID))
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, ErrPlayNotFound
        }
        return nil, err
    }
    return p, nil
}

// Redeem marks a play as redeemed at the given instant.  The state
// machine is one-way: redeeming twice fails with ErrAlreadyRedeemed and
// redeeming past the expiry window fails with ErrPlayExpired.  Expiry is
// evaluated against the clock here, never against a stored flag.  The
// row is locked while the decision is made so two desk clerks cannot
// both redeem the same coupon.
func (r *PlayRepo) Redeem(ctx context.Context, playID, shopID uint64, now time.Time) (*model.Play, error) {
    tx, err := r.DB.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    const sel = `SELECT ` + playColumns + ` FROM plays
                 WHERE id = ? AND barbershop_id = ? FOR UPDATE`
    p, err := r.scanOne(tx.QueryRowContext(ctx, sel, playID, shopID))
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, ErrPlayNotFound
        }
        return nil, err
    }
    if p.Redeemed {
        return nil, ErrAlreadyRedeemed
    }
    if now.After(p.ExpiresAt) {
        return nil, ErrPlayExpired
    }
    redeemedAt := now.UTC()
    const upd = `UPDATE plays SET redeemed = 1, redeemed_at = ? WHERE id = ?`
    if _, err := tx.ExecContext(ctx, upd, redeemedAt, p.ID); err != nil {
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    p.Redeemed = true
    p.RedeemedAt = &redeemedAt
    return p, nil
}

// ListByCustomer returns a customer's plays, newest first.
func (r *PlayRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]model.Play, error) {
    const q = `SELECT ` + playColumns + ` FROM plays
               WHERE customer_id = ? ORDER BY created_at DESC`
    rows, err := r.DB.QueryContext(ctx, q, customerID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return r.scanMany(rows)
}

// ListByShop returns every play of a shop, newest first.  The
// redemption desk filters by derived status on top of this.
func (r *PlayRepo) ListByShop(ctx context.Context, shopID uint64) ([]model.Play, error) {
    const q = `SELECT ` + playColumns + ` FROM plays
               WHERE barbershop_id = ? ORDER BY created_at DESC`
    rows, err := r.DB.QueryContext(ctx, q, shopID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return r.scanMany(rows)
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
    Scan(dest ...interface{}) error
}

func (r *PlayRepo) scanOne(row rowScanner) (*model.Play, error) {
    var p model.Play
    var redeemedAt sql.NullTime
    err := row.Scan(
        &p.ID, &p.CustomerID, &p.BarbershopID, &p.PrizeID, &p.PrizeTitle,
        &p.PrizeDescription, &p.PrizeCode, &p.MonthKey, &p.Redeemed,
        &redeemedAt, &p.ExpiresAt, &p.CreatedAt,
    )
    if err != nil {
        return nil, err
    }
    if redeemedAt.Valid {
        t := redeemedAt.Time
        p.RedeemedAt = &t
    }
    return &p, nil
}

func (r *PlayRepo) scanMany(rows *sql.Rows) ([]model.Play, error) {
    out := make([]model.Play, 0)
    for rows.Next() {
        p, err := r.scanOne(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *p)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}
