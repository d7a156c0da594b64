package wishlist

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/atino-shop/atino-backend/internal/products"
	"github.com/atino-shop/atino-backend/pkg/db/models"
	pkgerrors "github.com/atino-shop/atino-backend/pkg/errors"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}, &models.Product{}, &models.Wishlist{}, &models.WishlistItem{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return conn
}

func mustWishlistService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		WishlistRepo: NewRepository(conn),
		ProductRepo:  products.NewRepository(conn),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func mustProduct(t *testing.T, conn *gorm.DB, name string) *models.Product {
	t.Helper()
	product := &models.Product{Name: name, Price: 150000, Category: "tops", InStock: true}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func TestGetCreatesEmptyWishlist(t *testing.T) {
	conn := openTestDB(t)
	svc := mustWishlistService(t, conn)
	ctx := context.Background()
	userID := uuid.New()

	dto, err := svc.Get(ctx, userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if dto.UserID != userID || len(dto.Items) != 0 {
		t.Fatalf("expected empty wishlist for %s, got %+v", userID, dto)
	}

	// Repeated access returns the same wishlist.
	again, err := svc.Get(ctx, userID)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if again.ID != dto.ID {
		t.Fatalf("expected stable wishlist id, got %s then %s", dto.ID, again.ID)
	}
}

func TestAddItemIdempotent(t *testing.T) {
	conn := openTestDB(t)
	svc := mustWishlistService(t, conn)
	ctx := context.Background()
	userID := uuid.New()
	product := mustProduct(t, conn, "Denim Jacket")

	dto, err := svc.AddItem(ctx, userID, product.ID)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(dto.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(dto.Items))
	}
	if dto.Items[0].Product == nil || dto.Items[0].Product.Name != "Denim Jacket" {
		t.Fatalf("expected product resolved on item, got %+v", dto.Items[0])
	}

	// Adding the same product again does not duplicate it.
	dto, err = svc.AddItem(ctx, userID, product.ID)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if len(dto.Items) != 1 {
		t.Fatalf("expected 1 item after duplicate add, got %d", len(dto.Items))
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	conn := openTestDB(t)
	svc := mustWishlistService(t, conn)

	_, err := svc.AddItem(context.Background(), uuid.New(), uuid.New())
	if apiErr := pkgerrors.As(err); apiErr == nil || apiErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRemoveItemIdempotent(t *testing.T) {
	conn := openTestDB(t)
	svc := mustWishlistService(t, conn)
	ctx := context.Background()
	userID := uuid.New()
	first := mustProduct(t, conn, "Denim Jacket")
	second := mustProduct(t, conn, "Wool Scarf")

	if _, err := svc.AddItem(ctx, userID, first.ID); err != nil {
		t.Fatalf("add first: %v", err)
	}
	if _, err := svc.AddItem(ctx, userID, second.ID); err != nil {
		t.Fatalf("add second: %v", err)
	}

	dto, err := svc.RemoveItem(ctx, userID, first.ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(dto.Items) != 1 || dto.Items[0].Product.Name != "Wool Scarf" {
		t.Fatalf("expected only the scarf to remain, got %+v", dto.Items)
	}

	// Removing a product that is not saved is a no-op.
	dto, err = svc.RemoveItem(ctx, userID, first.ID)
	if err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if len(dto.Items) != 1 {
		t.Fatalf("expected 1 item after repeated remove, got %d", len(dto.Items))
	}
}

func TestClearAndCount(t *testing.T) {
	conn := openTestDB(t)
	svc := mustWishlistService(t, conn)
	ctx := context.Background()
	userID := uuid.New()

	for _, name := range []string{"Denim Jacket", "Wool Scarf", "Canvas Belt"} {
		product := mustProduct(t, conn, name)
		if _, err := svc.AddItem(ctx, userID, product.ID); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}

	count, err := svc.Count(ctx, userID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 items, got %d", count)
	}

	if err := svc.Clear(ctx, userID); err != nil {
		t.Fatalf("clear: %v", err)
	}

	count, err = svc.Count(ctx, userID)
	if err != nil {
		t.Fatalf("count after clear: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty wishlist, got %d items", count)
	}
}

func TestContains(t *testing.T) {
	conn := openTestDB(t)
	svc := mustWishlistService(t, conn)
	ctx := context.Background()
	userID := uuid.New()
	product := mustProduct(t, conn, "Denim Jacket")

	has, err := svc.Contains(ctx, userID, product.ID)
	if err != nil {
		t.Fatalf("contains: %v", err)
	}
	if has {
		t.Fatal("expected product absent")
	}

	if _, err := svc.AddItem(ctx, userID, product.ID); err != nil {
		t.Fatalf("add: %v", err)
	}

	has, err = svc.Contains(ctx, userID, product.ID)
	if err != nil {
		t.Fatalf("contains after add: %v", err)
	}
	if !has {
		t.Fatal("expected product present")
	}
}
