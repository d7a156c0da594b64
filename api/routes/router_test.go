package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	pkgauth "github.com/atino-shop/atino-backend/pkg/auth"
	"github.com/atino-shop/atino-backend/pkg/config"
	"github.com/atino-shop/atino-backend/pkg/enums"
	"github.com/atino-shop/atino-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "atino-test",
			ExpirationMinutes: 15,
			RefreshTTL:        time.Hour,
		},
	}
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "router-test", Level: zerolog.Disabled, Output: io.Discard})
	return NewRouter(Deps{
		Cfg:    testConfig(),
		Logg:   logg,
		DB:     stubPinger{},
		Verify: stubSessionChecker{},
	})
}

func mintToken(t *testing.T, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(testConfig().JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthRoute(t *testing.T) {
	router := testRouter(t)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAuthedRoutesRejectAnonymous(t *testing.T) {
	router := testRouter(t)

	paths := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/api/cart"},
		{http.MethodGet, "/api/orders"},
		{http.MethodGet, "/api/wishlist"},
		{http.MethodGet, "/api/auth/me"},
		{http.MethodPut, "/api/blog/" + uuid.NewString() + "/like"},
	}
	for _, p := range paths {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(p.method, p.target, nil))
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 got %d", p.method, p.target, resp.Code)
		}
	}
}

func TestAdminRoutesRejectCustomers(t *testing.T) {
	router := testRouter(t)
	token := mintToken(t, enums.UserRoleUser)

	paths := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/api/admin/users"},
		{http.MethodGet, "/api/orders/admin/all"},
		{http.MethodPost, "/api/products"},
		{http.MethodDelete, "/api/blog/" + uuid.NewString()},
	}
	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.target, nil)
		req.Header.Set("Authorization", "Bearer "+token)

		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusForbidden {
			t.Fatalf("%s %s: expected 403 got %d", p.method, p.target, resp.Code)
		}
	}
}

func TestPublicRoutesSkipAuth(t *testing.T) {
	router := testRouter(t)

	// Services are not wired in this test, so reaching the controller
	// yields its internal "service unavailable" error rather than 401.
	paths := []string{
		"/api/products",
		"/api/products/categories",
		"/api/blog",
		"/api/comments/" + uuid.NewString(),
	}
	for _, target := range paths {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, target, nil))
		if resp.Code != http.StatusInternalServerError {
			t.Fatalf("GET %s: expected 500 got %d", target, resp.Code)
		}
	}
}

func TestUnknownRoute(t *testing.T) {
	router := testRouter(t)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/nope", nil))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
