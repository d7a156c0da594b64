package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/atino-shop/atino-backend/api/middleware"
	cartsvc "github.com/atino-shop/atino-backend/internal/cart"
	"github.com/atino-shop/atino-backend/pkg/enums"
	pkgerrors "github.com/atino-shop/atino-backend/pkg/errors"
)

type stubCartService struct {
	cart cartsvc.CartDTO
	err  error

	gotUserID    uuid.UUID
	gotProductID uuid.UUID
	gotAdd       cartsvc.AddItemInput
	gotUpdate    cartsvc.UpdateItemInput
	gotRemove    cartsvc.RemoveItemInput
}

func (s *stubCartService) GetCart(ctx context.Context, userID uuid.UUID) (cartsvc.CartDTO, error) {
	s.gotUserID = userID
	return s.cart, s.err
}

func (s *stubCartService) AddItem(ctx context.Context, userID uuid.UUID, input cartsvc.AddItemInput) (cartsvc.CartDTO, error) {
	s.gotUserID = userID
	s.gotAdd = input
	return s.cart, s.err
}

func (s *stubCartService) UpdateItem(ctx context.Context, userID, productID uuid.UUID, input cartsvc.UpdateItemInput) (cartsvc.CartDTO, error) {
	s.gotUserID = userID
	s.gotProductID = productID
	s.gotUpdate = input
	return s.cart, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID, input cartsvc.RemoveItemInput) (cartsvc.CartDTO, error) {
	s.gotUserID = userID
	s.gotProductID = productID
	s.gotRemove = input
	return s.cart, s.err
}

func (s *stubCartService) Clear(ctx context.Context, userID uuid.UUID) (cartsvc.CartDTO, error) {
	s.gotUserID = userID
	return s.cart, s.err
}

func authedRequest(method, target, body string, userID uuid.UUID) *http.Request {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	ctx := middleware.WithIdentity(req.Context(), userID, enums.UserRoleUser, "access-1")
	return req.WithContext(ctx)
}

func TestCartFetch(t *testing.T) {
	userID := uuid.New()
	svc := &stubCartService{cart: cartsvc.CartDTO{ID: uuid.New(), UserID: userID, ItemCount: 2}}
	handler := Fetch(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/cart", "", userID))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.gotUserID != userID {
		t.Fatalf("service called with user %s, want %s", svc.gotUserID, userID)
	}

	var envelope struct {
		Data cartsvc.CartDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ItemCount != 2 {
		t.Fatalf("unexpected item count %d", envelope.Data.ItemCount)
	}
}

func TestCartAddRejectsBadBody(t *testing.T) {
	handler := Add(&stubCartService{}, nil)

	resp := httptest.NewRecorder()
	body := `{"productId":"` + uuid.NewString() + `","quantity":0}`
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/cart", body, uuid.New()))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartAddPassesInput(t *testing.T) {
	productID := uuid.New()
	svc := &stubCartService{}
	handler := Add(svc, nil)

	resp := httptest.NewRecorder()
	body := `{"productId":"` + productID.String() + `","quantity":3,"selectedSize":"M","selectedColor":"Black"}`
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/cart", body, uuid.New()))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.gotAdd.ProductID != productID || svc.gotAdd.Quantity != 3 || svc.gotAdd.SelectedSize != "M" || svc.gotAdd.SelectedColor != "Black" {
		t.Fatalf("unexpected input forwarded: %+v", svc.gotAdd)
	}
}

func TestCartAddRequiresVariant(t *testing.T) {
	handler := Add(&stubCartService{}, nil)

	resp := httptest.NewRecorder()
	body := `{"productId":"` + uuid.NewString() + `","quantity":1,"selectedSize":"M"}`
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/cart", body, uuid.New()))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing color got %d", resp.Code)
	}
}

func TestCartUpdateItemRoutesProductID(t *testing.T) {
	productID := uuid.New()
	svc := &stubCartService{}

	router := chi.NewRouter()
	router.Put("/api/cart/{productId}", UpdateItem(svc, nil))

	resp := httptest.NewRecorder()
	body := `{"quantity":5,"selectedSize":"M","selectedColor":"Black"}`
	req := authedRequest(http.MethodPut, "/api/cart/"+productID.String(), body, uuid.New())
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.gotProductID != productID {
		t.Fatalf("service called with product %s, want %s", svc.gotProductID, productID)
	}
	if svc.gotUpdate.SelectedSize != "M" || svc.gotUpdate.SelectedColor != "Black" || svc.gotUpdate.Quantity != 5 {
		t.Fatalf("unexpected input forwarded: %+v", svc.gotUpdate)
	}
}

func TestCartUpdateItemRejectsBadID(t *testing.T) {
	router := chi.NewRouter()
	router.Put("/api/cart/{productId}", UpdateItem(&stubCartService{}, nil))

	resp := httptest.NewRecorder()
	body := `{"quantity":5,"selectedSize":"M","selectedColor":"Black"}`
	req := authedRequest(http.MethodPut, "/api/cart/not-a-uuid", body, uuid.New())
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartUpdateItemRequiresVariant(t *testing.T) {
	router := chi.NewRouter()
	router.Put("/api/cart/{productId}", UpdateItem(&stubCartService{}, nil))

	resp := httptest.NewRecorder()
	req := authedRequest(http.MethodPut, "/api/cart/"+uuid.NewString(), `{"quantity":5}`, uuid.New())
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing size/color got %d", resp.Code)
	}
}

func TestCartRemoveItemNotFound(t *testing.T) {
	svc := &stubCartService{err: pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")}

	router := chi.NewRouter()
	router.Delete("/api/cart/{productId}", RemoveItem(svc, nil))

	resp := httptest.NewRecorder()
	body := `{"selectedSize":"M","selectedColor":"Black"}`
	req := authedRequest(http.MethodDelete, "/api/cart/"+uuid.NewString(), body, uuid.New())
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestCartRemoveItemForwardsVariant(t *testing.T) {
	productID := uuid.New()
	svc := &stubCartService{}

	router := chi.NewRouter()
	router.Delete("/api/cart/{productId}", RemoveItem(svc, nil))

	resp := httptest.NewRecorder()
	body := `{"selectedSize":"L","selectedColor":"White"}`
	req := authedRequest(http.MethodDelete, "/api/cart/"+productID.String(), body, uuid.New())
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.gotProductID != productID {
		t.Fatalf("service called with product %s, want %s", svc.gotProductID, productID)
	}
	if svc.gotRemove.SelectedSize != "L" || svc.gotRemove.SelectedColor != "White" {
		t.Fatalf("unexpected input forwarded: %+v", svc.gotRemove)
	}
}

func TestCartCount(t *testing.T) {
	svc := &stubCartService{cart: cartsvc.CartDTO{ItemCount: 7}}
	handler := Count(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/cart/count", "", uuid.New()))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data map[string]int `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data["count"] != 7 {
		t.Fatalf("unexpected count %d", envelope.Data["count"])
	}
}

func TestCartNilService(t *testing.T) {
	handler := Fetch(nil, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/cart", "", uuid.New()))

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}
