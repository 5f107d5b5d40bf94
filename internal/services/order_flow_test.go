package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"shopfront/internal/domain"
	"shopfront/internal/repos"
	"shopfront/internal/services"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	return db
}

type fixture struct {
	db       *sqlx.DB
	carts    *repos.CartRepo
	prods    *repos.ProductRepo
	orders   *repos.OrderRepo
	cartSvc  *services.CartService
	orderSvc *services.OrderService
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := memdb(t)
	carts := repos.NewCartRepo(db)
	prods := repos.NewProductRepo(db)
	orders := repos.NewOrderRepo(db)
	return fixture{
		db:       db,
		carts:    carts,
		prods:    prods,
		orders:   orders,
		cartSvc:  services.NewCartService(carts, prods),
		orderSvc: services.NewOrderService(db, carts, prods, orders),
	}
}

func shipTo() domain.ShippingAddress {
	return domain.ShippingAddress{Street: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"}
}

func TestAddCreatesOneCartWithOneLine(t *testing.T) {
	f := setup(t)

	if err := f.cartSvc.Add("u-alice", "walnut-desk"); err != nil {
		t.Fatal(err)
	}

	var cartCount int
	if err := f.db.Get(&cartCount, `SELECT COUNT(*) FROM carts WHERE user_id='u-alice'`); err != nil {
		t.Fatal(err)
	}
	if cartCount != 1 {
		t.Fatalf("want exactly one cart, got %d", cartCount)
	}

	cv, err := f.cartSvc.View("u-alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(cv.Lines) != 1 {
		t.Fatalf("want one line, got %d", len(cv.Lines))
	}
	if !cv.Lines[0].Qty.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("want qty 1, got %s", cv.Lines[0].Qty)
	}
}

func TestRepeatedAddIncrementsQuantity(t *testing.T) {
	f := setup(t)

	for i := 0; i < 3; i++ {
		if err := f.cartSvc.Add("u-alice", "walnut-desk"); err != nil {
			t.Fatal(err)
		}
	}

	cv, err := f.cartSvc.View("u-alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(cv.Lines) != 1 {
		t.Fatalf("want one line after repeated adds, got %d", len(cv.Lines))
	}
	if !cv.Lines[0].Qty.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("want qty 3, got %s", cv.Lines[0].Qty)
	}
}

func TestAddRequiresAuthAndRealProduct(t *testing.T) {
	f := setup(t)

	if err := f.cartSvc.Add("", "walnut-desk"); !errors.Is(err, services.ErrNotAuthenticated) {
		t.Fatalf("want ErrNotAuthenticated, got %v", err)
	}
	if err := f.cartSvc.Add("u-alice", "no-such-product"); !errors.Is(err, repos.ErrProductNotFound) {
		t.Fatalf("want ErrProductNotFound, got %v", err)
	}
}

func TestRemoveMissingProductIsNoop(t *testing.T) {
	f := setup(t)

	if err := f.cartSvc.Add("u-alice", "walnut-desk"); err != nil {
		t.Fatal(err)
	}
	if err := f.cartSvc.Remove("u-alice", "oak-chair"); err != nil {
		t.Fatalf("remove of absent product should be silent, got %v", err)
	}
	cv, err := f.cartSvc.View("u-alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(cv.Lines) != 1 || !cv.Lines[0].Qty.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("cart changed by no-op removal: %+v", cv.Lines)
	}
}

func TestRemoveWithoutCartFails(t *testing.T) {
	f := setup(t)

	if err := f.cartSvc.Remove("u-alice", "walnut-desk"); !errors.Is(err, repos.ErrCartNotFound) {
		t.Fatalf("want ErrCartNotFound, got %v", err)
	}
}

func TestBeginCheckoutEmptyCart(t *testing.T) {
	f := setup(t)

	// no cart at all
	draft, err := f.orderSvc.BeginCheckout("u-alice")
	if err != nil || draft != nil {
		t.Fatalf("missing cart should yield nil draft, got %v / %v", draft, err)
	}

	// cart exists but has zero lines
	if err := f.cartSvc.Add("u-alice", "walnut-desk"); err != nil {
		t.Fatal(err)
	}
	if err := f.cartSvc.Remove("u-alice", "walnut-desk"); err != nil {
		t.Fatal(err)
	}
	draft, err = f.orderSvc.BeginCheckout("u-alice")
	if err != nil || draft != nil {
		t.Fatalf("empty cart should yield nil draft, got %v / %v", draft, err)
	}
}

func TestFinalizeEmptyDraftCreatesNothing(t *testing.T) {
	f := setup(t)

	_, err := f.orderSvc.Finalize(context.Background(), "u-alice", domain.Order{Shipping: shipTo()})
	if !errors.Is(err, services.ErrEmptyCart) {
		t.Fatalf("want ErrEmptyCart, got %v", err)
	}
	n, err := f.orders.CountForUser("u-alice")
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("no order may exist, got %d", n)
	}
}

func TestCheckoutSnapshotsPriceAndClearsCart(t *testing.T) {
	f := setup(t)

	// cart = [{walnut-desk, 349.00, qty 2}]
	if err := f.cartSvc.Add("u-alice", "walnut-desk"); err != nil {
		t.Fatal(err)
	}
	if err := f.cartSvc.Add("u-alice", "walnut-desk"); err != nil {
		t.Fatal(err)
	}

	draft, err := f.orderSvc.BeginCheckout("u-alice")
	if err != nil {
		t.Fatal(err)
	}
	if draft == nil || len(draft.Items) != 1 {
		t.Fatalf("bad draft: %+v", draft)
	}
	if !draft.Items[0].Price.Equal(decimal.RequireFromString("349")) {
		t.Fatalf("draft price snapshot wrong: %s", draft.Items[0].Price)
	}

	// catalog price changes between draft and finalize
	p, err := f.prods.Get("walnut-desk")
	if err != nil {
		t.Fatal(err)
	}
	p.Price = decimal.RequireFromString("999.99")
	if err := f.prods.Update(p); err != nil {
		t.Fatal(err)
	}

	draft.Shipping = shipTo()
	oid, err := f.orderSvc.Finalize(context.Background(), "u-alice", *draft)
	if err != nil {
		t.Fatal(err)
	}
	if oid == "" {
		t.Fatal("no order id")
	}

	detail, err := f.orderSvc.Get("u-alice", oid)
	if err != nil {
		t.Fatal(err)
	}
	if len(detail.Items) != 1 {
		t.Fatalf("want one order item, got %d", len(detail.Items))
	}
	it := detail.Items[0]
	if it.ProductID != "walnut-desk" || !it.Qty.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("bad order item: %+v", it)
	}
	if !it.Price.Equal(decimal.RequireFromString("349")) {
		t.Fatalf("order price must stay at the snapshot, got %s", it.Price)
	}

	// cart is gone in the same unit of work
	cv, err := f.cartSvc.View("u-alice")
	if err != nil {
		t.Fatal(err)
	}
	if !cv.Empty() {
		t.Fatalf("cart must be empty after checkout: %+v", cv.Lines)
	}

	// exactly one order
	n, err := f.orders.CountForUser("u-alice")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("want exactly one order, got %d", n)
	}
}

func TestFinalizeFailsWholesaleWhenProductDeleted(t *testing.T) {
	f := setup(t)

	if err := f.cartSvc.Add("u-alice", "brass-lamp"); err != nil {
		t.Fatal(err)
	}
	draft, err := f.orderSvc.BeginCheckout("u-alice")
	if err != nil {
		t.Fatal(err)
	}

	// product disappears before finalize; no order references it yet so the
	// catalog delete goes through and the cart line dangles
	if err := f.prods.Delete("brass-lamp"); err != nil {
		t.Fatal(err)
	}

	draft.Shipping = shipTo()
	_, err = f.orderSvc.Finalize(context.Background(), "u-alice", *draft)
	if !errors.Is(err, repos.ErrProductNotFound) {
		t.Fatalf("want ErrProductNotFound, got %v", err)
	}

	n, err := f.orders.CountForUser("u-alice")
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("no order may be created, got %d", n)
	}

	// cart left untouched
	cartID, err := f.carts.ID("u-alice")
	if err != nil {
		t.Fatal(err)
	}
	items, err := f.carts.Items(cartID)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("cart must be untouched after failed finalize, got %d lines", len(items))
	}
}

func TestBeginCheckoutFailsOnDanglingLine(t *testing.T) {
	f := setup(t)

	if err := f.cartSvc.Add("u-alice", "brass-lamp"); err != nil {
		t.Fatal(err)
	}
	if err := f.prods.Delete("brass-lamp"); err != nil {
		t.Fatal(err)
	}
	_, err := f.orderSvc.BeginCheckout("u-alice")
	if !errors.Is(err, repos.ErrProductNotFound) {
		t.Fatalf("want ErrProductNotFound for dangling cart line, got %v", err)
	}
}

func TestOrdersScopedToOwner(t *testing.T) {
	f := setup(t)

	if err := f.cartSvc.Add("u-alice", "oak-chair"); err != nil {
		t.Fatal(err)
	}
	draft, err := f.orderSvc.BeginCheckout("u-alice")
	if err != nil {
		t.Fatal(err)
	}
	draft.Shipping = shipTo()
	oid, err := f.orderSvc.Finalize(context.Background(), "u-alice", *draft)
	if err != nil {
		t.Fatal(err)
	}

	// bob sees nothing
	bobOrders, err := f.orderSvc.History("u-bob")
	if err != nil {
		t.Fatal(err)
	}
	if len(bobOrders) != 0 {
		t.Fatalf("u-bob must not see u-alice's orders: %+v", bobOrders)
	}

	// another user's order reads as not-found, never forbidden
	if _, err := f.orderSvc.Get("u-bob", oid); !errors.Is(err, repos.ErrOrderNotFound) {
		t.Fatalf("want ErrOrderNotFound for foreign order, got %v", err)
	}

	aliceOrders, err := f.orderSvc.History("u-alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(aliceOrders) != 1 || aliceOrders[0].Order.ID != oid {
		t.Fatalf("owner must see the order: %+v", aliceOrders)
	}
}
