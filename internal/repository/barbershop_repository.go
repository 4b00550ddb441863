package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"

    "github.com/barbergo/loyalty-wheel/internal/model"
)

// BarbershopRepo provides persistence for tenant accounts and their
// wheel configuration.  A shop's validity window is read at draw time
// to freeze each play's expires_at; later config edits never touch
// plays that already exist.
type BarbershopRepo struct {
    DB *sql.DB
}

// NewBarbershopRepo returns a new BarbershopRepo bound to the given database.
func NewBarbershopRepo(db *sql.DB) *BarbershopRepo { return &BarbershopRepo{DB: db} }

// ErrSlugExists is returned when creating a shop with a taken slug.
var ErrSlugExists = errors.New("slug already exists")

const shopColumns = `id, owner_id, name, slug, contact_channel, validity_days, plays_per_month, created_at, updated_at`

// Create inserts a new shop and populates the generated ID.  The
// validity window defaults to 30 days when the caller passes zero.
func (r *BarbershopRepo) Create(ctx context.Context, s *model.Barbershop) error {
    if s.ValidityDays <= 0 {
        s.ValidityDays = model.DefaultValidityDays
    }
    if s.PlaysPerMonth <= 0 {
        s.PlaysPerMonth = 1
    }
    s.Slug = strings.ToLower(strings.TrimSpace(s.Slug))
    const q = `INSERT INTO barbershops (owner_id, name, slug, contact_channel, validity_days, plays_per_month)
               VALUES (?, ?, ?, ?, ?, ?)`
    res, err := r.DB.ExecContext(ctx, q,
        s.OwnerID, s.Name, s.Slug, s.ContactChannel, s.ValidityDays, s.PlaysPerMonth)
    if err != nil {
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return ErrSlugExists
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    s.ID = uint64(id)
    return nil
}

// GetByID fetches a shop by id.
func (r *BarbershopRepo) GetByID(ctx context.Context, id uint64) (model.Barbershop, error) {
    const q = `SELECT ` + shopColumns + ` FROM barbershops WHERE id = ? LIMIT 1`
    return r.scanOne(r.DB.QueryRowContext(ctx, q, id))
}

// GetBySlug fetches a shop by its URL slug.
func (r *BarbershopRepo) GetBySlug(ctx context.Context, slug string) (model.Barbershop, error) {
    const q = `SELECT ` + shopColumns + ` FROM barbershops WHERE slug = ? LIMIT 1`
    return r.scanOne(r.DB.QueryRowContext(ctx, q, strings.ToLower(strings.TrimSpace(slug))))
}

// GetByOwner fetches the shop run by the given admin user.
func (r *BarbershopRepo) GetByOwner(ctx context.Context, ownerID uint64) (model.Barbershop, error) {
    const q = `SELECT ` + shopColumns + ` FROM barbershops WHERE owner_id = ? LIMIT 1`
    return r.scanOne(r.DB.QueryRowContext(ctx, q, ownerID))
}

// List returns every shop for the public directory, ordered by name.
func (r *BarbershopRepo) List(ctx context.Context) ([]model.Barbershop, error) {
    const q = `SELECT ` + shopColumns + ` FROM barbershops ORDER BY name`
    rows, err := r.DB.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Barbershop, 0)
    for rows.Next() {
        var s model.Barbershop
        if err := rows.Scan(
            &s.ID, &s.OwnerID, &s.Name, &s.Slug, &s.ContactChannel,
            &s.ValidityDays, &s.PlaysPerMonth, &s.CreatedAt, &s.UpdatedAt,
        ); err != nil {
            return nil, err
        }
        out = append(out, s)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// UpdateConfig rewrites a shop's branding and wheel configuration on
// behalf of its owner.  Editing validity_days only affects plays drawn
// after the update.  Returns ErrShopNotFound when the shop does not
// exist and ErrForbidden when it belongs to a different owner.
func (r *BarbershopRepo) UpdateConfig(ctx context.Context, shopID, ownerID uint64, name, contactChannel string, validityDays int) error {
    if validityDays <= 0 {
        validityDays = model.DefaultValidityDays
    }
    const own = `SELECT owner_id FROM barbershops WHERE id = ?`
    var actualOwner uint64
    if err := r.DB.QueryRowContext(ctx, own, shopID).Scan(&actualOwner); err != nil {
        if err == sql.ErrNoRows {
            return ErrShopNotFound
        }
        return err
    }
    if actualOwner != ownerID {
        return ErrForbidden
    }
    const upd = `UPDATE barbershops SET name = ?, contact_channel = ?, validity_days = ? WHERE id = ?`
    _, err := r.DB.ExecContext(ctx, upd, name, contactChannel, validityDays, shopID)
    return err
}

func (r *BarbershopRepo) scanOne(row *sql.Row) (model.Barbershop, error) {
    var s model.Barbershop
    err := row.Scan(
        &s.ID, &s.OwnerID, &s.Name, &s.Slug, &s.ContactChannel,
        &s.ValidityDays, &s.PlaysPerMonth, &s.CreatedAt, &s.UpdatedAt,
    )
    if err != nil {
        if err == sql.ErrNoRows {
            return model.Barbershop{}, ErrShopNotFound
        }
        return model.Barbershop{}, err
    }
    return s, nil
}
