package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/atino-shop/atino-backend/internal/orders"
	"github.com/atino-shop/atino-backend/pkg/db/models"
	"github.com/atino-shop/atino-backend/pkg/enums"
	"github.com/atino-shop/atino-backend/pkg/pagination"
)

// UserDTO is the public projection of an account. The password hash
// never leaves the package.
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Phone       *string        `json:"phone,omitempty"`
	Address     *string        `json:"address,omitempty"`
	Avatar      *string        `json:"avatar,omitempty"`
	Role        enums.UserRole `json:"role"`
	IsActive    bool           `json:"isActive"`
	LastLoginAt *time.Time     `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// AdminUserDTO is a user row in the back-office listing.
type AdminUserDTO struct {
	UserDTO
	OrderCount int64 `json:"orderCount"`
}

// UserListDTO is a page of back-office user rows.
type UserListDTO struct {
	Users      []AdminUserDTO  `json:"users"`
	Pagination pagination.Meta `json:"-"`
}

// UserDetailDTO is the back-office drill-down for one account.
type UserDetailDTO struct {
	UserDTO
	OrderCount   int64             `json:"orderCount"`
	RecentOrders []orders.OrderDTO `json:"recentOrders"`
}

// UserStatsDTO summarises the customer base for the dashboard.
type UserStatsDTO struct {
	TotalUsers    int64 `json:"totalUsers"`
	ActiveUsers   int64 `json:"activeUsers"`
	InactiveUsers int64 `json:"inactiveUsers"`
	AdminUsers    int64 `json:"adminUsers"`
	NewThisMonth  int64 `json:"newThisMonth"`
}

// ListFilters narrows the back-office user listing.
type ListFilters struct {
	Role     enums.UserRole
	IsActive *bool
	Search   string
}

// UpdateStatusInput toggles an account.
type UpdateStatusInput struct {
	IsActive bool `json:"isActive"`
}

// UpdateRoleInput changes an account's role.
type UpdateRoleInput struct {
	Role enums.UserRole `json:"role" validate:"required,oneof=user admin"`
}

// ToDTO converts the storage model into the API projection.
func ToDTO(user models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Phone:       user.Phone,
		Address:     user.Address,
		Avatar:      user.Avatar,
		Role:        user.Role,
		IsActive:    user.IsActive,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}
