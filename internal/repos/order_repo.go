package repos

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"shopfront/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

type OrderRow struct {
	ID          string `db:"id"`
	UserID      string `db:"user_id"`
	OrderDate   string `db:"order_date"`
	ShipStreet  string `db:"ship_street"`
	ShipCity    string `db:"ship_city"`
	ShipPostal  string `db:"ship_postal"`
	ShipCountry string `db:"ship_country"`
}

type OrderItemRow struct {
	ProductID string          `db:"product_id"`
	Name      string          `db:"name"`
	Qty       decimal.Decimal `db:"qty"`
	Price     decimal.Decimal `db:"price"`
}

func (i OrderItemRow) Subtotal() decimal.Decimal { return i.Price.Mul(i.Qty) }

// CreateTx inserts the order header and its lines inside the caller's
// transaction. Items carry the price snapshot taken at checkout.
func (r *OrderRepo) CreateTx(tx *sqlx.Tx, o domain.Order) error {
	_, err := tx.Exec(`
	  INSERT INTO orders(id,user_id,order_date,ship_street,ship_city,ship_postal,ship_country)
	  VALUES(?,?,?,?,?,?,?)
	`, o.ID, o.UserID, o.OrderDate.UTC().Format(time.RFC3339),
		o.Shipping.Street, o.Shipping.City, o.Shipping.PostalCode, o.Shipping.Country)
	if err != nil {
		return err
	}
	for _, it := range o.Items {
		if _, err := tx.Exec(`
		  INSERT INTO order_items(id,order_id,product_id,qty,price)
		  VALUES(?,?,?,?,?)
		`, it.ID, o.ID, it.ProductID, it.Qty, it.Price); err != nil {
			return err
		}
	}
	return nil
}

// GetForUser loads one order scoped to its owner. An order that does not
// exist and an order owned by someone else are the same ErrOrderNotFound.
func (r *OrderRepo) GetForUser(userID, orderID string) (OrderRow, []OrderItemRow, error) {
	var o OrderRow
	err := r.db.Get(&o, `
	  SELECT id, user_id, order_date, ship_street, ship_city, ship_postal, ship_country
	  FROM orders WHERE id = ? AND user_id = ?
	`, orderID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return OrderRow{}, nil, ErrOrderNotFound
	}
	if err != nil {
		return OrderRow{}, nil, err
	}

	items, err := r.itemsFor(orderID)
	if err != nil {
		return OrderRow{}, nil, err
	}
	return o, items, nil
}

// ListByUser returns the user's order history, newest first, with items and
// their products eagerly loaded.
func (r *OrderRepo) ListByUser(userID string) ([]OrderRow, map[string][]OrderItemRow, error) {
	var orders []OrderRow
	err := r.db.Select(&orders, `
	  SELECT id, user_id, order_date, ship_street, ship_city, ship_postal, ship_country
	  FROM orders
	  WHERE user_id = ?
	  ORDER BY datetime(order_date) DESC
	`, userID)
	if err != nil {
		return nil, nil, err
	}

	itemsByOrder := make(map[string][]OrderItemRow, len(orders))
	for _, o := range orders {
		items, err := r.itemsFor(o.ID)
		if err != nil {
			return nil, nil, err
		}
		itemsByOrder[o.ID] = items
	}
	return orders, itemsByOrder, nil
}

func (r *OrderRepo) itemsFor(orderID string) ([]OrderItemRow, error) {
	var items []OrderItemRow
	err := r.db.Select(&items, `
	  SELECT oi.product_id, p.name, oi.qty, oi.price
	  FROM order_items oi JOIN products p ON p.id = oi.product_id
	  WHERE oi.order_id = ?
	  ORDER BY p.name
	`, orderID)
	return items, err
}

// CountForUser reports how many orders the user owns.
func (r *OrderRepo) CountForUser(userID string) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM orders WHERE user_id = ?`, userID)
	return n, err
}
