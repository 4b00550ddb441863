package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"

    "github.com/barbergo/loyalty-wheel/internal/model"
)

// CustomerRepo persists shop-scoped customer profiles.  One account may
// hold one profile per shop; the subscription flag recorded here decides
// which prize pool the customer's draws read from and is frozen after
// registration.
type CustomerRepo struct {
    DB *sql.DB
}

// NewCustomerRepo returns a new CustomerRepo bound to the given database.
func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{DB: db} }

const customerColumns = `id, user_id, barbershop_id, name, is_subscriber, created_at`

// Create inserts a customer profile and populates the generated ID.
// A duplicate (user, shop) pair maps to ErrAlreadyRegistered.
func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer) error {
    const q = `INSERT INTO customers (user_id, barbershop_id, name, is_subscriber)
               VALUES (?, ?, ?, ?)`
    res, err := r.DB.ExecContext(ctx, q, c.UserID, c.BarbershopID, c.Name, c.IsSubscriber)
    if err != nil {
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return ErrAlreadyRegistered
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    c.ID = uint64(id)
    return nil
}

// ErrAlreadyRegistered is returned when a user already has a customer
// profile at the same shop.
var ErrAlreadyRegistered = errors.New("customer already registered at this shop")

// GetByUserAndShop fetches the profile an account holds at a shop.
func (r *CustomerRepo) GetByUserAndShop(ctx context.Context, userID, shopID uint64) (model.Customer, error) {
    const q = `SELECT ` + customerColumns + ` FROM customers
               WHERE user_id = ? AND barbershop_id = ? LIMIT 1`
    return r.scanOne(r.DB.QueryRowContext(ctx, q, userID, shopID))
}

// GetByUser fetches the profile for an account.  Accounts are created
// per shop, so at most one profile exists per user; login and token
// refresh use this to rebuild the shop and subscriber claims.
func (r *CustomerRepo) GetByUser(ctx context.Context, userID uint64) (model.Customer, error) {
    const q = `SELECT ` + customerColumns + ` FROM customers
               WHERE user_id = ? ORDER BY id LIMIT 1`
    return r.scanOne(r.DB.QueryRowContext(ctx, q, userID))
}

// GetByID fetches a customer profile by id.
func (r *CustomerRepo) GetByID(ctx context.Context, id uint64) (model.Customer, error) {
    const q = `SELECT ` + customerColumns + ` FROM customers WHERE id = ? LIMIT 1`
    return r.scanOne(r.DB.QueryRowContext(ctx, q, id))
}

func (r *CustomerRepo) scanOne(row *sql.Row) (model.Customer, error) {
    var c model.Customer
    err := row.Scan(&c.ID, &c.UserID, &c.BarbershopID, &c.Name, &c.IsSubscriber, &c.CreatedAt)
    if err != nil {
        if err == sql.ErrNoRows {
            return model.Customer{}, ErrCustomerNotFound
        }
        return model.Customer{}, err
    }
    return c, nil
}
