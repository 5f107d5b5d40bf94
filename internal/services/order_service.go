package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"shopfront/internal/domain"
	"shopfront/internal/repos"
)

var (
	ErrEmptyCart    = errors.New("cart is empty")
	ErrInvalidDraft = errors.New("invalid order draft")
)

// OrderService drives the one-directional cart-to-order transition:
// non-empty cart -> draft order -> finalized order, cart gone.
type OrderService struct {
	DB     *sqlx.DB
	Carts  *repos.CartRepo
	Prods  *repos.ProductRepo
	Orders *repos.OrderRepo
}

func NewOrderService(db *sqlx.DB, carts *repos.CartRepo, prods *repos.ProductRepo, orders *repos.OrderRepo) *OrderService {
	return &OrderService{DB: db, Carts: carts, Prods: prods, Orders: orders}
}

// BeginCheckout builds an in-memory draft order from the user's cart: one
// item per cart line, price snapshotted from the product's current price at
// this instant. Nothing is persisted. A missing or empty cart yields
// (nil, nil) so the caller can send the user back to the catalog. A cart
// line whose product no longer resolves fails with ErrProductNotFound.
func (s *OrderService) BeginCheckout(userID string) (*domain.Order, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	cartID, err := s.Carts.ID(userID)
	if errors.Is(err, repos.ErrCartNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	items, err := s.Carts.Items(cartID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	draft := &domain.Order{UserID: userID}
	for _, it := range items {
		p, err := s.Prods.Get(it.ProductID)
		if err != nil {
			return nil, err
		}
		draft.Items = append(draft.Items, domain.OrderItem{
			ProductID: it.ProductID,
			Qty:       it.Qty,
			Price:     p.Price,
		})
	}
	return draft, nil
}

// Finalize persists the draft as one atomic unit: every product reference is
// re-resolved, the order with its shipping address and item snapshots is
// inserted, and the user's entire cart is deleted in the same transaction.
// Any failure rolls everything back; partial orders never exist.
func (s *OrderService) Finalize(ctx context.Context, userID string, draft domain.Order) (string, error) {
	if userID == "" {
		return "", ErrNotAuthenticated
	}
	if len(draft.Items) == 0 {
		return "", ErrEmptyCart
	}

	order := domain.Order{
		ID:        uuid.NewString(),
		UserID:    userID,
		OrderDate: time.Now().UTC(),
		Shipping:  draft.Shipping,
	}
	for _, it := range draft.Items {
		if it.ProductID == "" || !it.Qty.IsPositive() {
			return "", ErrInvalidDraft
		}
		order.Items = append(order.Items, domain.OrderItem{
			ID:        uuid.NewString(),
			OrderID:   order.ID,
			ProductID: it.ProductID,
			Qty:       it.Qty,
			Price:     it.Price,
		})
	}

	err := repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		for _, it := range order.Items {
			ok, err := s.Prods.ExistsTx(tx, it.ProductID)
			if err != nil {
				return err
			}
			if !ok {
				return repos.ErrProductNotFound
			}
		}
		if err := s.Orders.CreateTx(tx, order); err != nil {
			return err
		}
		return s.Carts.DeleteForUserTx(tx, userID)
	})
	if err != nil {
		return "", err
	}
	return order.ID, nil
}

type OrderDetail struct {
	Order repos.OrderRow
	Items []repos.OrderItemRow
	Total decimal.Decimal
}

// Get loads one order for its owner; anyone else's order is not found.
func (s *OrderService) Get(userID, orderID string) (OrderDetail, error) {
	if userID == "" {
		return OrderDetail{}, ErrNotAuthenticated
	}
	o, items, err := s.Orders.GetForUser(userID, orderID)
	if err != nil {
		return OrderDetail{}, err
	}
	return OrderDetail{Order: o, Items: items, Total: sumItems(items)}, nil
}

// History lists the user's orders, newest first.
func (s *OrderService) History(userID string) ([]OrderDetail, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	orders, itemsByOrder, err := s.Orders.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	out := make([]OrderDetail, 0, len(orders))
	for _, o := range orders {
		items := itemsByOrder[o.ID]
		out = append(out, OrderDetail{Order: o, Items: items, Total: sumItems(items)})
	}
	return out, nil
}

func sumItems(items []repos.OrderItemRow) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}
