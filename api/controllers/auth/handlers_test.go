package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/atino-shop/atino-backend/api/middleware"
	authsvc "github.com/atino-shop/atino-backend/internal/auth"
	"github.com/atino-shop/atino-backend/internal/users"
	pkgauth "github.com/atino-shop/atino-backend/pkg/auth"
	"github.com/atino-shop/atino-backend/pkg/config"
	"github.com/atino-shop/atino-backend/pkg/enums"
)

type stubAuthService struct {
	auth authsvc.AuthDTO
	user users.UserDTO
	err  error

	gotIP       string
	gotUserID   uuid.UUID
	gotAccessID string
	loggedOut   []string
}

func (s *stubAuthService) Register(ctx context.Context, input authsvc.RegisterInput, clientIP string) (authsvc.AuthDTO, error) {
	s.gotIP = clientIP
	return s.auth, s.err
}

func (s *stubAuthService) Login(ctx context.Context, input authsvc.LoginInput, clientIP string) (authsvc.AuthDTO, error) {
	s.gotIP = clientIP
	return s.auth, s.err
}

func (s *stubAuthService) Refresh(ctx context.Context, userID uuid.UUID, accessID string, input authsvc.RefreshInput) (authsvc.AuthDTO, error) {
	s.gotUserID = userID
	s.gotAccessID = accessID
	return s.auth, s.err
}

func (s *stubAuthService) Logout(ctx context.Context, accessID string) error {
	s.loggedOut = append(s.loggedOut, accessID)
	return s.err
}

func (s *stubAuthService) Me(ctx context.Context, userID uuid.UUID) (users.UserDTO, error) {
	s.gotUserID = userID
	return s.user, s.err
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, input authsvc.UpdateProfileInput) (users.UserDTO, error) {
	s.gotUserID = userID
	return s.user, s.err
}

func (s *stubAuthService) ChangePassword(ctx context.Context, userID uuid.UUID, input authsvc.ChangePasswordInput) error {
	s.gotUserID = userID
	return s.err
}

var testJWT = config.JWTConfig{
	Secret:            "controller-test-secret",
	Issuer:            "atino-test",
	ExpirationMinutes: 15,
	RefreshTTL:        time.Hour,
}

func TestRegisterForwardsClientIP(t *testing.T) {
	svc := &stubAuthService{}
	handler := Register(svc, nil)

	body := `{"name":"Maya","email":"maya@example.com","password":"secret1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.gotIP != "203.0.113.9" {
		t.Fatalf("unexpected client ip %q", svc.gotIP)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	handler := Register(&stubAuthService{}, nil)

	body := `{"name":"Maya","email":"maya@example.com","password":"abc"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestRefreshAcceptsExpiredAccessToken(t *testing.T) {
	userID := uuid.New()
	accessID := uuid.NewString()

	// Minted two hours ago with a 15 minute TTL, so long expired.
	token, err := pkgauth.MintAccessToken(testJWT, time.Now().Add(-2*time.Hour), pkgauth.AccessTokenPayload{
		UserID: userID,
		Role:   enums.UserRoleUser,
		JTI:    accessID,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	svc := &stubAuthService{}
	handler := Refresh(svc, testJWT, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", strings.NewReader(`{"refreshToken":"rt-1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.gotUserID != userID || svc.gotAccessID != accessID {
		t.Fatalf("claims not forwarded: user %s access %s", svc.gotUserID, svc.gotAccessID)
	}
}

func TestRefreshRejectsMissingToken(t *testing.T) {
	handler := Refresh(&stubAuthService{}, testJWT, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", strings.NewReader(`{"refreshToken":"rt-1"}`))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestRefreshRejectsForgedToken(t *testing.T) {
	forged := config.JWTConfig{Secret: "other-secret", Issuer: testJWT.Issuer, ExpirationMinutes: 15}
	token, err := pkgauth.MintAccessToken(forged, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleUser,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	handler := Refresh(&stubAuthService{}, testJWT, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", strings.NewReader(`{"refreshToken":"rt-1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestLogoutRevokesContextSession(t *testing.T) {
	svc := &stubAuthService{}
	handler := Logout(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	ctx := middleware.WithIdentity(req.Context(), uuid.New(), enums.UserRoleUser, "access-42")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req.WithContext(ctx))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(svc.loggedOut) != 1 || svc.loggedOut[0] != "access-42" {
		t.Fatalf("unexpected logout calls %v", svc.loggedOut)
	}
}

func TestMeUsesContextIdentity(t *testing.T) {
	userID := uuid.New()
	svc := &stubAuthService{user: users.UserDTO{ID: userID, Name: "Maya"}}
	handler := Me(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	ctx := middleware.WithIdentity(req.Context(), userID, enums.UserRoleUser, "access-1")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req.WithContext(ctx))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.gotUserID != userID {
		t.Fatalf("service called with %s, want %s", svc.gotUserID, userID)
	}
}
