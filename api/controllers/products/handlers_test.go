package products

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	productsvc "github.com/atino-shop/atino-backend/internal/products"
	pkgerrors "github.com/atino-shop/atino-backend/pkg/errors"
	"github.com/atino-shop/atino-backend/pkg/pagination"
)

type stubProductService struct {
	list       productsvc.ProductListDTO
	product    productsvc.ProductDTO
	categories []string
	err        error

	gotParams  pagination.Params
	gotFilters productsvc.ListFilters
}

func (s *stubProductService) List(ctx context.Context, params pagination.Params, filters productsvc.ListFilters) (productsvc.ProductListDTO, error) {
	s.gotParams = params
	s.gotFilters = filters
	return s.list, s.err
}

func (s *stubProductService) GetByID(ctx context.Context, id uuid.UUID) (productsvc.ProductDTO, error) {
	return s.product, s.err
}

func (s *stubProductService) Categories(ctx context.Context) ([]string, error) {
	return s.categories, s.err
}

func (s *stubProductService) Create(ctx context.Context, input productsvc.CreateProductInput) (productsvc.ProductDTO, error) {
	return s.product, s.err
}

func (s *stubProductService) Update(ctx context.Context, id uuid.UUID, input productsvc.UpdateProductInput) (productsvc.ProductDTO, error) {
	return s.product, s.err
}

func (s *stubProductService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.err
}

func TestProductListParsesFilters(t *testing.T) {
	svc := &stubProductService{
		list: productsvc.ProductListDTO{
			Products:   []productsvc.ProductDTO{},
			Pagination: pagination.Meta{Page: 2, Limit: 12, Total: 40, Pages: 4},
		},
	}
	handler := List(svc, nil)

	target := "/api/products?page=2&limit=12&category=shoes&search=runner&isSale=true&priceMin=10000&priceMax=50000&sort=price_asc"
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, target, nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.gotParams.Page != 2 || svc.gotParams.Limit != 12 {
		t.Fatalf("unexpected pagination %+v", svc.gotParams)
	}
	if svc.gotFilters.Category != "shoes" || svc.gotFilters.Search != "runner" || svc.gotFilters.Sort != "price_asc" {
		t.Fatalf("unexpected filters %+v", svc.gotFilters)
	}
	if svc.gotFilters.IsSale == nil || !*svc.gotFilters.IsSale {
		t.Fatalf("isSale filter not forwarded")
	}
	if svc.gotFilters.PriceMin == nil || *svc.gotFilters.PriceMin != 10000 {
		t.Fatalf("priceMin filter not forwarded")
	}
	if svc.gotFilters.PriceMax == nil || *svc.gotFilters.PriceMax != 50000 {
		t.Fatalf("priceMax filter not forwarded")
	}

	var envelope struct {
		Pagination *pagination.Meta `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Pagination == nil || envelope.Pagination.Total != 40 {
		t.Fatalf("pagination envelope missing: %+v", envelope.Pagination)
	}
}

func TestProductListRejectsBadPrice(t *testing.T) {
	handler := List(&stubProductService{}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/products?priceMin=abc", nil))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestProductCategories(t *testing.T) {
	svc := &stubProductService{categories: []string{"shoes", "shirts"}}
	handler := Categories(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/products/categories", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data struct {
			Categories []string `json:"categories"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Categories) != 2 {
		t.Fatalf("unexpected categories %v", envelope.Data.Categories)
	}
}

func TestProductCreateRejectsUnknownField(t *testing.T) {
	handler := Create(&stubProductService{}, nil)

	body := `{"name":"Runner","price":129900,"category":"shoes","stockQuantity":5,"bogus":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestProductFetchNotFound(t *testing.T) {
	svc := &stubProductService{err: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/products/"+uuid.NewString(), nil)
	router := chi.NewRouter()
	router.Get("/api/products/{id}", Fetch(svc, nil))
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
