package repos

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"shopfront/internal/domain"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

// CartLine is a cart item joined with its product for display. A product may
// have been deleted since it was added; ProductOK marks whether the reference
// still resolves.
type CartLine struct {
	ProductID string          `db:"product_id"`
	Qty       decimal.Decimal `db:"qty"`
	Name      string          `db:"name"`
	Price     decimal.Decimal `db:"price"`
	ProductOK bool            `db:"product_ok"`
}

func (l CartLine) Subtotal() decimal.Decimal { return l.Price.Mul(l.Qty) }

// ID returns the user's cart id, or ErrCartNotFound.
func (r *CartRepo) ID(userID string) (string, error) {
	var cartID string
	err := r.db.Get(&cartID, `SELECT id FROM carts WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrCartNotFound
	}
	return cartID, err
}

// Ensure returns the user's cart id, creating the cart lazily.
func (r *CartRepo) Ensure(userID string) (string, error) {
	cartID, err := r.ID(userID)
	if err == nil {
		return cartID, nil
	}
	if !errors.Is(err, ErrCartNotFound) {
		return "", err
	}
	cartID = uuid.NewString()
	_, err = r.db.Exec(`INSERT INTO carts(id,user_id,updated_at) VALUES(?,?,CURRENT_TIMESTAMP)`,
		cartID, userID)
	return cartID, err
}

// AddOne increments the line for productID by one, appending a new line of
// quantity one when the product is not in the cart yet.
func (r *CartRepo) AddOne(cartID, productID string) error {
	_, err := r.db.Exec(`
		INSERT INTO cart_items(id,cart_id,product_id,qty,created_at)
		VALUES(?,?,?,1,CURRENT_TIMESTAMP)
		ON CONFLICT(cart_id,product_id) DO UPDATE
		SET qty = qty + 1, updated_at = CURRENT_TIMESTAMP
	`, uuid.NewString(), cartID, productID)
	return err
}

// RemoveItem deletes the line for productID. A product that is not in the
// cart is a silent no-op, not an error.
func (r *CartRepo) RemoveItem(cartID, productID string) error {
	_, err := r.db.Exec(`DELETE FROM cart_items WHERE cart_id = ? AND product_id = ?`,
		cartID, productID)
	return err
}

func (r *CartRepo) Items(cartID string) ([]domain.CartItem, error) {
	var out []domain.CartItem
	err := r.db.Select(&out, `
	  SELECT id, cart_id, product_id, qty
	  FROM cart_items WHERE cart_id = ?
	  ORDER BY created_at
	`, cartID)
	return out, err
}

// Lines returns the cart joined with current product data for display.
func (r *CartRepo) Lines(cartID string) ([]CartLine, error) {
	var out []CartLine
	err := r.db.Select(&out, `
	  SELECT ci.product_id, ci.qty,
	         COALESCE(p.name,'')  AS name,
	         COALESCE(p.price,0)  AS price,
	         p.id IS NOT NULL     AS product_ok
	  FROM cart_items ci LEFT JOIN products p ON p.id = ci.product_id
	  WHERE ci.cart_id = ?
	  ORDER BY ci.created_at
	`, cartID)
	return out, err
}

// DeleteForUserTx removes the user's cart and all its lines inside the
// caller's transaction. Lines are deleted explicitly rather than trusting
// cascade configuration.
func (r *CartRepo) DeleteForUserTx(tx *sqlx.Tx, userID string) error {
	var cartID string
	err := tx.Get(&cartID, `SELECT id FROM carts WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM cart_items WHERE cart_id = ?`, cartID); err != nil {
		return err
	}
	_, err = tx.Exec(`DELETE FROM carts WHERE id = ?`, cartID)
	return err
}
