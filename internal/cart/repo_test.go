package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/countryharvest/storefront-backend/pkg/db/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Hand-written schema: sqlite cannot parse the Postgres column
	// defaults carried by the model tags.
	carts := `
CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  user_id TEXT UNIQUE,
  session_id TEXT UNIQUE,
  coupon TEXT,
  subtotal NUMERIC NOT NULL DEFAULT 0,
  tax NUMERIC NOT NULL DEFAULT 0,
  shipping NUMERIC NOT NULL DEFAULT 0,
  discount NUMERIC NOT NULL DEFAULT 0,
  total NUMERIC NOT NULL DEFAULT 0,
  tax_rate NUMERIC NOT NULL DEFAULT 0,
  version INTEGER NOT NULL DEFAULT 0,
  expires_at DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	items := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  variant_id TEXT,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  display_name TEXT NOT NULL,
  image_ref TEXT,
  saved_for_later INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	for _, ddl := range []string{carts, items} {
		if err := conn.Exec(ddl).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return conn
}

func seedCart(t *testing.T, repo Repository) *models.Cart {
	t.Helper()
	sessionID := "sess-" + uuid.NewString()
	cart, err := repo.Create(context.Background(), &models.Cart{
		ID:        uuid.New(),
		SessionID: &sessionID,
		TaxRate:   decimal.RequireFromString("0.10"),
		ExpiresAt: time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("create cart: %v", err)
	}
	return cart
}

func TestSaveReplacesItems(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	cart := seedCart(t, repo)
	cart.Items = []models.CartItem{
		{
			ID:          uuid.New(),
			CartID:      cart.ID,
			ProductID:   uuid.New(),
			Quantity:    2,
			UnitPrice:   decimal.RequireFromString("25.00"),
			DisplayName: "Orchard Apples 10kg",
		},
	}
	if err := repo.Save(ctx, cart); err != nil {
		t.Fatalf("save with item: %v", err)
	}

	cart.Items = nil
	if err := repo.Save(ctx, cart); err != nil {
		t.Fatalf("save without items: %v", err)
	}

	reloaded, err := repo.FindByID(ctx, cart.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(reloaded.Items) != 0 {
		t.Fatalf("expected item rows replaced, got %d", len(reloaded.Items))
	}
	if reloaded.Version != 2 {
		t.Fatalf("expected version 2 after two saves, got %d", reloaded.Version)
	}
}

func TestSaveDetectsConcurrentModification(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	cart := seedCart(t, repo)

	first, err := repo.FindByID(ctx, cart.ID)
	if err != nil {
		t.Fatalf("load first: %v", err)
	}
	second, err := repo.FindByID(ctx, cart.ID)
	if err != nil {
		t.Fatalf("load second: %v", err)
	}

	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("first save: %v", err)
	}

	err = repo.Save(ctx, second)
	if !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}
}

func TestFindBySessionAndUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	if _, err := repo.Create(ctx, &models.Cart{
		ID:        uuid.New(),
		UserID:    &userID,
		TaxRate:   decimal.RequireFromString("0.10"),
		ExpiresAt: time.Now().Add(time.Hour),
	}); err != nil {
		t.Fatalf("create user cart: %v", err)
	}

	byUser, err := repo.FindByUser(ctx, userID)
	if err != nil {
		t.Fatalf("find by user: %v", err)
	}
	if byUser.UserID == nil || *byUser.UserID != userID {
		t.Fatal("wrong cart returned")
	}

	if _, err := repo.FindBySession(ctx, "missing"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}
