package users

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atino-shop/atino-backend/internal/orders"
	"github.com/atino-shop/atino-backend/pkg/db"
	"github.com/atino-shop/atino-backend/pkg/db/models"
	pkgerrors "github.com/atino-shop/atino-backend/pkg/errors"
	"github.com/atino-shop/atino-backend/pkg/pagination"
)

const recentOrderCount = 5

// ServiceParams groups dependencies for the back-office user service.
type ServiceParams struct {
	UserRepo  Repository
	OrderRepo orders.Repository

	// RootAdminEmail marks the bootstrap account exempt from role and
	// status changes.
	RootAdminEmail string

	// Now is the clock used for the monthly stats window. Defaults to
	// time.Now.
	Now func() time.Time
}

// Service exposes the back-office user management operations.
type Service interface {
	List(ctx context.Context, params pagination.Params, filters ListFilters) (UserListDTO, error)
	Get(ctx context.Context, userID uuid.UUID) (UserDetailDTO, error)
	Stats(ctx context.Context) (UserStatsDTO, error)
	UpdateStatus(ctx context.Context, userID uuid.UUID, input UpdateStatusInput) (UserDTO, error)
	UpdateRole(ctx context.Context, userID uuid.UUID, input UpdateRoleInput) (UserDTO, error)
}

type service struct {
	userRepo       Repository
	orderRepo      orders.Repository
	rootAdminEmail string
	now            func() time.Time
}

// NewService builds a back-office user service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user repo is required")
	}
	if params.OrderRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order repo is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		userRepo:       params.UserRepo,
		orderRepo:      params.OrderRepo,
		rootAdminEmail: strings.ToLower(strings.TrimSpace(params.RootAdminEmail)),
		now:            now,
	}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (UserListDTO, error) {
	params = pagination.Normalize(params)
	if filters.Role != "" && !filters.Role.IsValid() {
		return UserListDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown role filter")
	}

	rows, total, err := s.userRepo.List(ctx, params, filters)
	if err != nil {
		return UserListDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}

	dtos := make([]AdminUserDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, AdminUserDTO{UserDTO: ToDTO(row.User), OrderCount: row.OrderCount})
	}
	return UserListDTO{
		Users:      dtos,
		Pagination: pagination.NewMeta(params, total),
	}, nil
}

// Get returns one account with its recent orders.
func (s *service) Get(ctx context.Context, userID uuid.UUID) (UserDetailDTO, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return UserDetailDTO{}, err
	}

	orderCount, err := s.userRepo.CountOrders(ctx, user.ID)
	if err != nil {
		return UserDetailDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}

	recent, _, err := s.orderRepo.ListByUser(ctx, user.ID, pagination.Params{Page: 1, Limit: recentOrderCount})
	if err != nil {
		return UserDetailDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recent orders")
	}

	recentDTOs := make([]orders.OrderDTO, 0, len(recent))
	for _, order := range recent {
		recentDTOs = append(recentDTOs, orders.ToDTO(order))
	}

	return UserDetailDTO{
		UserDTO:      ToDTO(*user),
		OrderCount:   orderCount,
		RecentOrders: recentDTOs,
	}, nil
}

func (s *service) Stats(ctx context.Context) (UserStatsDTO, error) {
	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	stats, err := s.userRepo.Stats(ctx, monthStart)
	if err != nil {
		return UserStatsDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "compute user stats")
	}
	return stats, nil
}

// UpdateStatus activates or deactivates an account. The root admin
// cannot be deactivated.
func (s *service) UpdateStatus(ctx context.Context, userID uuid.UUID, input UpdateStatusInput) (UserDTO, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return UserDTO{}, err
	}
	if s.isRootAdmin(user) && !input.IsActive {
		return UserDTO{}, pkgerrors.New(pkgerrors.CodeForbidden, "the root admin account cannot be deactivated")
	}

	if err := s.userRepo.UpdateFields(ctx, user.ID, map[string]any{"is_active": input.IsActive}); err != nil {
		return UserDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update status")
	}
	user.IsActive = input.IsActive
	return ToDTO(*user), nil
}

// UpdateRole promotes or demotes an account. The root admin's role is
// fixed.
func (s *service) UpdateRole(ctx context.Context, userID uuid.UUID, input UpdateRoleInput) (UserDTO, error) {
	if !input.Role.IsValid() {
		return UserDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown role")
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return UserDTO{}, err
	}
	if s.isRootAdmin(user) && input.Role != user.Role {
		return UserDTO{}, pkgerrors.New(pkgerrors.CodeForbidden, "the root admin role cannot be changed")
	}

	if err := s.userRepo.UpdateFields(ctx, user.ID, map[string]any{"role": input.Role}); err != nil {
		return UserDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update role")
	}
	user.Role = input.Role
	return ToDTO(*user), nil
}

func (s *service) isRootAdmin(user *models.User) bool {
	return s.rootAdminEmail != "" && strings.EqualFold(user.Email, s.rootAdminEmail)
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
