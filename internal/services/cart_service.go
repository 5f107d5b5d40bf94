package services

import (
	"errors"

	"github.com/shopspring/decimal"

	"shopfront/internal/repos"
)

type CartService struct {
	Carts *repos.CartRepo
	Prods *repos.ProductRepo
}

func NewCartService(carts *repos.CartRepo, prods *repos.ProductRepo) *CartService {
	return &CartService{Carts: carts, Prods: prods}
}

// Add puts one unit of the product in the user's cart, creating the cart
// lazily and incrementing the line if the product is already there.
func (s *CartService) Add(userID, productID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	if _, err := s.Prods.Get(productID); err != nil {
		return err
	}
	cartID, err := s.Carts.Ensure(userID)
	if err != nil {
		return err
	}
	return s.Carts.AddOne(cartID, productID)
}

func (s *CartService) Remove(userID, productID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	cartID, err := s.Carts.ID(userID)
	if err != nil {
		return err
	}
	return s.Carts.RemoveItem(cartID, productID)
}

type CartView struct {
	Lines []repos.CartLine
	Total decimal.Decimal
}

func (v CartView) Empty() bool { return len(v.Lines) == 0 }

// View renders the cart contents. A user without a cart sees an empty one.
func (s *CartService) View(userID string) (CartView, error) {
	if userID == "" {
		return CartView{}, ErrNotAuthenticated
	}
	cartID, err := s.Carts.ID(userID)
	if errors.Is(err, repos.ErrCartNotFound) {
		return CartView{}, nil
	}
	if err != nil {
		return CartView{}, err
	}
	lines, err := s.Carts.Lines(cartID)
	if err != nil {
		return CartView{}, err
	}
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return CartView{Lines: lines, Total: total}, nil
}
