package repos_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"shopfront/internal/domain"
	"shopfront/internal/repos"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	return db
}

func TestProductGetNotFound(t *testing.T) {
	r := repos.NewProductRepo(memdb(t))
	if _, err := r.Get("missing"); !errors.Is(err, repos.ErrProductNotFound) {
		t.Fatalf("want ErrProductNotFound, got %v", err)
	}
}

func TestProductDeleteRestrictedByOrders(t *testing.T) {
	db := memdb(t)
	prods := repos.NewProductRepo(db)
	orders := repos.NewOrderRepo(db)

	order := domain.Order{
		ID:        uuid.NewString(),
		UserID:    "u-alice",
		OrderDate: time.Now().UTC(),
		Shipping:  domain.ShippingAddress{Street: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"},
		Items: []domain.OrderItem{{
			ID:        uuid.NewString(),
			ProductID: "oak-chair",
			Qty:       decimal.NewFromInt(1),
			Price:     decimal.RequireFromString("89.50"),
		}},
	}
	err := repos.WithTx(context.Background(), db, func(tx *sqlx.Tx) error {
		return orders.CreateTx(tx, order)
	})
	if err != nil {
		t.Fatal(err)
	}

	// an ordered product must not be deletable
	if err := prods.Delete("oak-chair"); !errors.Is(err, repos.ErrProductInUse) {
		t.Fatalf("want ErrProductInUse, got %v", err)
	}
	if _, err := prods.Get("oak-chair"); err != nil {
		t.Fatalf("product must survive the blocked delete: %v", err)
	}

	// an unordered product deletes fine
	if err := prods.Delete("brass-lamp"); err != nil {
		t.Fatal(err)
	}
	if _, err := prods.Get("brass-lamp"); !errors.Is(err, repos.ErrProductNotFound) {
		t.Fatalf("want ErrProductNotFound after delete, got %v", err)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db := memdb(t)
	boom := errors.New("boom")

	err := repos.WithTx(context.Background(), db, func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(`INSERT INTO users(id,email,name,password_hash) VALUES('u-x','x@x.test','X','h')`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("want wrapped boom, got %v", err)
	}

	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM users WHERE id='u-x'`); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatal("insert must be rolled back")
	}
}
