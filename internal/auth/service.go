package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atino-shop/atino-backend/internal/users"
	"github.com/atino-shop/atino-backend/pkg/auth"
	"github.com/atino-shop/atino-backend/pkg/auth/session"
	"github.com/atino-shop/atino-backend/pkg/config"
	"github.com/atino-shop/atino-backend/pkg/db"
	"github.com/atino-shop/atino-backend/pkg/db/models"
	"github.com/atino-shop/atino-backend/pkg/enums"
	pkgerrors "github.com/atino-shop/atino-backend/pkg/errors"
	"github.com/atino-shop/atino-backend/pkg/security"
)

const minPasswordLen = 6

// Credentials are rejected with the same message whether the email is
// unknown or the password is wrong.
const msgBadCredentials = "invalid email or password"

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// ServiceParams groups dependencies for the auth service.
type ServiceParams struct {
	UserRepo users.Repository
	Sessions sessionManager

	// Limiter is optional; when nil, login and register are not
	// rate limited.
	Limiter   rateLimiter
	JWT       config.JWTConfig
	Password  config.PasswordConfig
	RateLimit config.AuthRateLimitConfig

	// Now is the clock used for token issuance and last_login_at.
	// Defaults to time.Now.
	Now func() time.Time
}

// Service exposes registration, login, and self-service account operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput, clientIP string) (AuthDTO, error)
	Login(ctx context.Context, input LoginInput, clientIP string) (AuthDTO, error)
	Refresh(ctx context.Context, userID uuid.UUID, accessID string, input RefreshInput) (AuthDTO, error)
	Logout(ctx context.Context, accessID string) error
	Me(ctx context.Context, userID uuid.UUID) (users.UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (users.UserDTO, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error
}

type service struct {
	userRepo  users.Repository
	sessions  sessionManager
	limiter   rateLimiter
	jwt       config.JWTConfig
	password  config.PasswordConfig
	rateLimit config.AuthRateLimitConfig
	now       func() time.Time
}

// NewService builds an auth service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user repo is required")
	}
	if params.Sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session manager is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		userRepo:  params.UserRepo,
		sessions:  params.Sessions,
		limiter:   params.Limiter,
		jwt:       params.JWT,
		password:  params.Password,
		rateLimit: params.RateLimit,
		now:       now,
	}, nil
}

// Register creates an account and signs the new user in.
func (s *service) Register(ctx context.Context, input RegisterInput, clientIP string) (AuthDTO, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if name == "" {
		return AuthDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := validateEmail(email); err != nil {
		return AuthDTO{}, err
	}
	if len(input.Password) < minPasswordLen {
		return AuthDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 6 characters")
	}

	if err := s.allow(ctx, "register:email:"+email, int64(s.rateLimit.RegisterEmailLimit), s.rateLimit.RegisterWindow); err != nil {
		return AuthDTO{}, err
	}
	if err := s.allow(ctx, "register:ip:"+clientIP, int64(s.rateLimit.RegisterIPLimit), s.rateLimit.RegisterWindow); err != nil {
		return AuthDTO{}, err
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return AuthDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         enums.UserRoleUser,
		IsActive:     true,
	}
	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return AuthDTO{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email is already registered")
		}
		return AuthDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	return s.issue(ctx, created)
}

// Login verifies credentials and opens a session.
func (s *service) Login(ctx context.Context, input LoginInput, clientIP string) (AuthDTO, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return AuthDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	if err := s.allow(ctx, "login:email:"+email, int64(s.rateLimit.LoginEmailLimit), s.rateLimit.LoginWindow); err != nil {
		return AuthDTO{}, err
	}
	if err := s.allow(ctx, "login:ip:"+clientIP, int64(s.rateLimit.LoginIPLimit), s.rateLimit.LoginWindow); err != nil {
		return AuthDTO{}, err
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if db.IsNotFound(err) {
			return AuthDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, msgBadCredentials)
		}
		return AuthDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return AuthDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return AuthDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, msgBadCredentials)
	}
	if !user.IsActive {
		return AuthDTO{}, pkgerrors.New(pkgerrors.CodeForbidden, "account is deactivated")
	}

	loginAt := s.now().UTC()
	if err := s.userRepo.UpdateFields(ctx, user.ID, map[string]any{"last_login_at": loginAt}); err != nil {
		return AuthDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record login")
	}
	user.LastLoginAt = &loginAt

	return s.issue(ctx, user)
}

// Refresh rotates the caller's refresh token and issues a new access
// token. The caller identity comes from the expired access token's
// claims, which the transport layer parses without enforcing expiry.
func (s *service) Refresh(ctx context.Context, userID uuid.UUID, accessID string, input RefreshInput) (AuthDTO, error) {
	if userID == uuid.Nil || strings.TrimSpace(accessID) == "" || strings.TrimSpace(input.RefreshToken) == "" {
		return AuthDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return AuthDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "session user no longer exists")
		}
		return AuthDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !user.IsActive {
		return AuthDTO{}, pkgerrors.New(pkgerrors.CodeForbidden, "account is deactivated")
	}

	newAccessID, refreshToken, err := s.sessions.Rotate(ctx, accessID, input.RefreshToken)
	if err != nil {
		if isInvalidRefresh(err) {
			return AuthDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return AuthDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	accessToken, err := auth.MintAccessToken(s.jwt, s.now(), auth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    newAccessID,
	})
	if err != nil {
		return AuthDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return AuthDTO{
		User:         users.ToDTO(*user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwt.Expiration().Seconds()),
	}, nil
}

// Logout revokes the caller's session.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

// Me returns the caller's own account.
func (s *service) Me(ctx context.Context, userID uuid.UUID) (users.UserDTO, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return users.UserDTO{}, err
	}
	return users.ToDTO(*user), nil
}

// UpdateProfile applies the non-nil fields to the caller's account.
func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (users.UserDTO, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return users.UserDTO{}, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return users.UserDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		user.Name = name
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}
	if input.Address != nil {
		user.Address = input.Address
	}
	if input.Avatar != nil {
		user.Avatar = input.Avatar
	}

	updated, err := s.userRepo.Update(ctx, user)
	if err != nil {
		return users.UserDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}
	return users.ToDTO(*updated), nil
}

// ChangePassword verifies the current password and stores a new hash.
func (s *service) ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error {
	if len(input.NewPassword) < minPasswordLen {
		return pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 6 characters")
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := security.VerifyPassword(input.CurrentPassword, user.PasswordHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "current password is incorrect")
	}

	hash, err := security.HashPassword(input.NewPassword, s.password)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.userRepo.UpdateFields(ctx, user.ID, map[string]any{"password_hash": hash}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update password")
	}
	return nil
}

func (s *service) issue(ctx context.Context, user *models.User) (AuthDTO, error) {
	accessID := session.NewAccessID()
	accessToken, err := auth.MintAccessToken(s.jwt, s.now(), auth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		return AuthDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	refreshToken, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return AuthDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open session")
	}

	return AuthDTO{
		User:         users.ToDTO(*user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwt.Expiration().Seconds()),
	}, nil
}

func (s *service) allow(ctx context.Context, scope string, limit int64, window time.Duration) error {
	if s.limiter == nil || limit <= 0 || window <= 0 {
		return nil
	}
	allowed, _, err := s.limiter.FixedWindowAllow(ctx, scope, limit, window)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limit check")
	}
	if !allowed {
		return pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later")
	}
	return nil
}

func (s *service) findUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is not valid")
	}
	return nil
}

func isInvalidRefresh(err error) bool {
	return errors.Is(err, session.ErrInvalidRefreshToken)
}
