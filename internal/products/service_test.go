package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atino-shop/atino-backend/pkg/db/models"
	pkgerrors "github.com/atino-shop/atino-backend/pkg/errors"
	"github.com/atino-shop/atino-backend/pkg/pagination"
)

type stubRepo struct {
	products map[uuid.UUID]*models.Product

	listRows  []models.Product
	listTotal int64
	listErr   error

	categories []string

	created *models.Product
	updated *models.Product
	deleted []uuid.UUID
}

func newStubRepo() *stubRepo {
	return &stubRepo{products: make(map[uuid.UUID]*models.Product)}
}

func (s *stubRepo) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	product.ID = uuid.New()
	s.created = product
	s.products[product.ID] = product
	return product, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *product
	return &copied, nil
}

func (s *stubRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if product, ok := s.products[id]; ok {
			out = append(out, *product)
		}
	}
	return out, nil
}

func (s *stubRepo) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Product, int64, error) {
	return s.listRows, s.listTotal, s.listErr
}

func (s *stubRepo) ListCategories(ctx context.Context) ([]string, error) {
	return s.categories, nil
}

func (s *stubRepo) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	s.updated = product
	s.products[product.ID] = product
	return product, nil
}

func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.products[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.deleted = append(s.deleted, id)
	delete(s.products, id)
	return nil
}

func (s *stubRepo) UpdateRating(ctx context.Context, tx *gorm.DB, id uuid.UUID, rating float64, numReviews int) error {
	return nil
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestDiscountPercent(t *testing.T) {
	orig := func(v int64) *int64 { return &v }

	tests := []struct {
		name     string
		price    int64
		original *int64
		want     int
	}{
		{"no original price", 100000, nil, 0},
		{"original equals price", 100000, orig(100000), 0},
		{"original below price", 100000, orig(90000), 0},
		{"half off", 100000, orig(200000), 50},
		{"rounds to nearest", 74000, orig(99000), 25},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DiscountPercent(tc.price, tc.original); got != tc.want {
				t.Fatalf("expected %d%%, got %d%%", tc.want, got)
			}
		})
	}
}

func TestServiceList(t *testing.T) {
	repo := newStubRepo()
	repo.listRows = []models.Product{
		{ID: uuid.New(), Name: "Basic Tee", Price: 150000},
		{ID: uuid.New(), Name: "Hoodie", Price: 450000},
	}
	repo.listTotal = 25
	svc := newTestService(t, repo)

	page, err := svc.List(context.Background(), pagination.Params{Page: 2, Limit: 10}, ListFilters{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(page.Products))
	}
	if page.Pagination.Pages != 3 {
		t.Fatalf("expected 3 pages, got %d", page.Pagination.Pages)
	}
	if page.Pagination.Page != 2 {
		t.Fatalf("expected page 2, got %d", page.Pagination.Page)
	}
}

func TestServiceGetByID(t *testing.T) {
	repo := newStubRepo()
	orig := int64(200000)
	product := &models.Product{ID: uuid.New(), Name: "Jacket", Price: 100000, OriginalPrice: &orig}
	repo.products[product.ID] = product
	svc := newTestService(t, repo)

	dto, err := svc.GetByID(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if dto.DiscountPercent != 50 {
		t.Fatalf("expected 50%% discount, got %d", dto.DiscountPercent)
	}

	_, err = svc.GetByID(context.Background(), uuid.New())
	if apiErr := pkgerrors.As(err); apiErr == nil || apiErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestServiceCreateRejectsBadOriginalPrice(t *testing.T) {
	svc := newTestService(t, newStubRepo())

	orig := int64(90000)
	_, err := svc.Create(context.Background(), CreateProductInput{
		Name:          "Tee",
		Price:         100000,
		OriginalPrice: &orig,
		Category:      "tops",
	})
	if apiErr := pkgerrors.As(err); apiErr == nil || apiErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceUpdatePartial(t *testing.T) {
	repo := newStubRepo()
	product := &models.Product{ID: uuid.New(), Name: "Jacket", Price: 100000, Category: "outerwear"}
	repo.products[product.ID] = product
	svc := newTestService(t, repo)

	newName := "Winter Jacket"
	dto, err := svc.Update(context.Background(), product.ID, UpdateProductInput{Name: &newName})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if dto.Name != "Winter Jacket" {
		t.Fatalf("expected renamed product, got %s", dto.Name)
	}
	if dto.Price != 100000 {
		t.Fatalf("untouched fields must survive, got price %d", dto.Price)
	}
	if dto.Category != "outerwear" {
		t.Fatalf("untouched category must survive, got %s", dto.Category)
	}
}

func TestServiceDelete(t *testing.T) {
	repo := newStubRepo()
	product := &models.Product{ID: uuid.New(), Name: "Jacket"}
	repo.products[product.ID] = product
	svc := newTestService(t, repo)

	if err := svc.Delete(context.Background(), product.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	err := svc.Delete(context.Background(), product.ID)
	if apiErr := pkgerrors.As(err); apiErr == nil || apiErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}
