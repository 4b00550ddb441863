package repository

import (
    "context"
    "database/sql"
    "math"
    "strings"

    "github.com/barbergo/loyalty-wheel/internal/model"
)

// PrizeRepo provides CRUD operations over a shop's prize catalog.  Every
// write re-validates the chance-sum invariant: for each (shop, audience)
// pool the chances of active prizes may not sum past 100%.  The sum is
// computed inside the same transaction as the write, with the pool rows
// locked, so two concurrent admin edits cannot both slip under the limit
// and a draw never observes a half-applied edit.
type PrizeRepo struct {
    DB *sql.DB
}

// NewPrizeRepo returns a new PrizeRepo bound to the given database.
func NewPrizeRepo(db *sql.DB) *PrizeRepo { return &PrizeRepo{DB: db} }

// chanceEpsilon absorbs float artifacts when DECIMAL(5,2) sums are
// compared against 100 (e.g. 60+40 scanning to 100.00000000000001).
const chanceEpsilon = 1e-9

// poolSumTx returns the summed chance of active prizes counting toward
// the given customer-facing pool, excluding excludeID (0 excludes
// nothing).  BOTH-audience prizes are included in either pool.  The
// selected rows are locked until the transaction ends.
func poolSumTx(ctx context.Context, tx *sql.Tx, shopID uint64, pool model.Segment, excludeID uint64) (float64, error) {
    const q = `SELECT COALESCE(SUM(chance), 0)
               FROM prizes
               WHERE barbershop_id = ? AND active = 1
                 AND (audience = ? OR audience = 'BOTH')
                 AND id <> ?
               FOR UPDATE`
    var sum float64
    err := tx.QueryRowContext(ctx, q, shopID, string(pool), excludeID).Scan(&sum)
    return sum, err
}

// checkPoolsTx validates that adding `chance` to every pool the audience
// contributes to keeps each pool at or under 100%.  excludeID removes
// the prize being edited from its own sum.
func checkPoolsTx(ctx context.Context, tx *sql.Tx, shopID uint64, audience model.Segment, chance float64, excludeID uint64) error {
    for _, pool := range audience.Pools() {
        sum, err := poolSumTx(ctx, tx, shopID, pool, excludeID)
        if err != nil {
            return err
        }
        if sum+chance > 100+chanceEpsilon {
            headroom := math.Round((100-sum)*100) / 100
            if headroom < 0 {
                headroom = 0
            }
            return &ChancePoolError{Pool: pool, Headroom: headroom}
        }
    }
    return nil
}

// Create validates and inserts a new prize.  The prize is active by
// default unless the caller cleared the flag.  On success the generated
// ID and timestamps are populated on the passed struct.
func (r *PrizeRepo) Create(ctx context.Context, p *model.Prize) error {
    if p.Chance <= 0 || p.Chance > 100 {
        return ErrInvalidChance
    }
    if _, err := model.ParseSegment(string(p.Audience)); err != nil {
        return err
    }
    tx, err := r.DB.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if p.Active {
        if err := checkPoolsTx(ctx, tx, p.BarbershopID, p.Audience, p.Chance, 0); err != nil {
            return err
        }
    }
    const ins = `INSERT INTO prizes (barbershop_id, title, description, code, chance, audience, active)
                 VALUES (?, ?, ?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, ins,
        p.BarbershopID, p.Title, p.Description, p.Code, p.Chance, string(p.Audience), p.Active)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    p.ID = uint64(id)
    // Query back timestamps set by the database.
    const sel = `SELECT created_at, updated_at FROM prizes WHERE id = ?`
    if err := tx.QueryRowContext(ctx, sel, p.ID).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// Update rewrites an existing prize after re-validating the chance-sum
// invariant with the prize's own current chance excluded.  Deactivating
// a prize removes it from the sum check entirely.  Returns
// ErrPrizeNotFound when the prize does not belong to the shop.
func (r *PrizeRepo) Update(ctx context.Context, p *model.Prize) error {
    if p.Chance <= 0 || p.Chance > 100 {
        return ErrInvalidChance
    }
    if _, err := model.ParseSegment(string(p.Audience)); err != nil {
        return err
    }
    tx, err := r.DB.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    // Ownership check; also locks the row being edited.
    const own = `SELECT id FROM prizes WHERE id = ? AND barbershop_id = ? FOR UPDATE`
    var id uint64
    if err := tx.QueryRowContext(ctx, own, p.ID, p.BarbershopID).Scan(&id); err != nil {
        if err == sql.ErrNoRows {
            return ErrPrizeNotFound
        }
        return err
    }
    if p.Active {
        if err := checkPoolsTx(ctx, tx, p.BarbershopID, p.Audience, p.Chance, p.ID); err != nil {
            return err
        }
    }
    const upd = `UPDATE prizes
                 SET title = ?, description = ?, code = ?, chance = ?, audience = ?, active = ?
                 WHERE id = ? AND barbershop_id = ?`
    if _, err := tx.ExecContext(ctx, upd,
        p.Title, p.Description, p.Code, p.Chance, string(p.Audience), p.Active,
        p.ID, p.BarbershopID); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// Delete hard-deletes a prize.  Historical plays keep their snapshot of
// the prize fields, so no referential check is needed here.  Returns
// ErrPrizeNotFound when the prize does not belong to the shop.
func (r *PrizeRepo) Delete(ctx context.Context, prizeID, shopID uint64) error {
    const q = `DELETE FROM prizes WHERE id = ? AND barbershop_id = ?`
    res, err := r.DB.ExecContext(ctx, q, prizeID, shopID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrPrizeNotFound
    }
    return nil
}

// GetByID loads a single prize scoped to a shop.
func (r *PrizeRepo) GetByID(ctx context.Context, prizeID, shopID uint64) (model.Prize, error) {
    const q = `SELECT id, barbershop_id, title, description, code, chance, audience, active, created_at, updated_at
               FROM prizes WHERE id = ? AND barbershop_id = ? LIMIT 1`
    var p model.Prize
    var audience string
    err := r.DB.QueryRowContext(ctx, q, prizeID, shopID).Scan(
        &p.ID, &p.BarbershopID, &p.Title, &p.Description, &p.Code,
        &p.Chance, &audience, &p.Active, &p.CreatedAt, &p.UpdatedAt,
    )
    if err != nil {
        if err == sql.ErrNoRows {
            return model.Prize{}, ErrPrizeNotFound
        }
        return model.Prize{}, err
    }
    p.Audience = model.Segment(audience)
    return p, nil
}

// ListByShop returns every prize of a shop, active or not, in catalog
// order.  Used by the admin catalog screen.
func (r *PrizeRepo) ListByShop(ctx context.Context, shopID uint64) ([]model.Prize, error) {
    const q = `SELECT id, barbershop_id, title, description, code, chance, audience, active, created_at, updated_at
               FROM prizes WHERE barbershop_id = ? ORDER BY id`
    rows, err := r.DB.QueryContext(ctx, q, shopID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return scanPrizes(rows)
}

// ListActive returns the active prizes visible to a customer of the
// given segment: audience matches or is BOTH.  Catalog order (ascending
// id) is the stable order the draw walk depends on.
func (r *PrizeRepo) ListActive(ctx context.Context, shopID uint64, segment model.Segment) ([]model.Prize, error) {
    rows, err := r.DB.QueryContext(ctx, activePoolQuery, shopID, string(segment))
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return scanPrizes(rows)
}

// ListActiveTx is ListActive inside an existing transaction; the draw
// uses it so selection and play insertion see the same catalog snapshot.
func (r *PrizeRepo) ListActiveTx(ctx context.Context, tx *sql.Tx, shopID uint64, segment model.Segment) ([]model.Prize, error) {
    rows, err := tx.QueryContext(ctx, activePoolQuery, shopID, string(segment))
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return scanPrizes(rows)
}

const activePoolQuery = `SELECT id, barbershop_id, title, description, code, chance, audience, active, created_at, updated_at
                         FROM prizes
                         WHERE barbershop_id = ? AND active = 1
                           AND (audience = ? OR audience = 'BOTH')
                         ORDER BY id`

// scanPrizes drains a prize result set into a slice.
func scanPrizes(rows *sql.Rows) ([]model.Prize, error) {
    out := make([]model.Prize, 0)
    for rows.Next() {
        var p model.Prize
        var audience string
        if err := rows.Scan(
            &p.ID, &p.BarbershopID, &p.Title, &p.Description, &p.Code,
            &p.Chance, &audience, &p.Active, &p.CreatedAt, &p.UpdatedAt,
        ); err != nil {
            return nil, err
        }
        p.Audience = model.Segment(strings.ToUpper(audience))
        out = append(out, p)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}
