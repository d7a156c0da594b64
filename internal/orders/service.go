package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atino-shop/atino-backend/pkg/db"
	"github.com/atino-shop/atino-backend/pkg/db/models"
	"github.com/atino-shop/atino-backend/pkg/enums"
	pkgerrors "github.com/atino-shop/atino-backend/pkg/errors"
	"github.com/atino-shop/atino-backend/pkg/pagination"
)

// ServiceParams groups dependencies for the order service.
type ServiceParams struct {
	Repo Repository
	Now  func() time.Time
}

// Service exposes order lifecycle operations.
type Service interface {
	ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (OrderListDTO, error)
	GetByID(ctx context.Context, actorID uuid.UUID, isAdmin bool, orderID uuid.UUID) (OrderDTO, error)
	AdminList(ctx context.Context, params pagination.Params, filters ListFilters) (OrderListDTO, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, input UpdateStatusInput) (OrderDTO, error)
	Cancel(ctx context.Context, actorID uuid.UUID, isAdmin bool, orderID uuid.UUID) (OrderDTO, error)
	Stats(ctx context.Context) (StatsDTO, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order repo is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, now: now}, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (OrderListDTO, error) {
	if userID == uuid.Nil {
		return OrderListDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	rows, total, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return OrderListDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return toListDTO(rows, params, total), nil
}

// GetByID returns the order when the actor owns it or is an admin. Unknown
// and foreign orders both read as not found so order IDs stay unguessable.
func (s *service) GetByID(ctx context.Context, actorID uuid.UUID, isAdmin bool, orderID uuid.UUID) (OrderDTO, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return OrderDTO{}, err
	}
	if !isAdmin && order.UserID != actorID {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return ToDTO(*order), nil
}

func (s *service) AdminList(ctx context.Context, params pagination.Params, filters ListFilters) (OrderListDTO, error) {
	if filters.Status != "" && !filters.Status.IsValid() {
		return OrderListDTO{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order status %q", filters.Status))
	}
	rows, total, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return OrderListDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return toListDTO(rows, params, total), nil
}

// UpdateStatus applies the admin transition. Repeating the current status is
// a no-op success so retries stay safe. delivered_at is written exactly once,
// on the first transition into delivered.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, input UpdateStatusInput) (OrderDTO, error) {
	if !input.Status.IsValid() {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order status %q", input.Status))
	}

	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return OrderDTO{}, err
	}

	if !order.OrderStatus.CanTransitionTo(input.Status) {
		return OrderDTO{}, pkgerrors.New(
			pkgerrors.CodeInvalidState,
			fmt.Sprintf("cannot move order from %s to %s", order.OrderStatus, input.Status),
		).WithDetails(map[string]any{
			"from": order.OrderStatus,
			"to":   input.Status,
		})
	}

	updates := map[string]any{"order_status": input.Status}
	if input.TrackingNumber != nil {
		// Tracking only exists once a parcel does: alongside the shipped
		// transition or later.
		if !shippedPhase(input.Status) && !shippedPhase(order.OrderStatus) {
			return OrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "tracking number can only be set when the order ships")
		}
		updates["tracking_number"] = *input.TrackingNumber
	}
	if input.Status == enums.OrderStatusDelivered && order.DeliveredAt == nil {
		updates["is_delivered"] = true
		updates["delivered_at"] = s.now().UTC()
	}

	if err := s.repo.UpdateStatusFields(ctx, order.ID, updates); err != nil {
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}

	updated, err := s.findOrder(ctx, orderID)
	if err != nil {
		return OrderDTO{}, err
	}
	return ToDTO(*updated), nil
}

// Cancel moves the order to cancelled when it hasn't shipped yet.
func (s *service) Cancel(ctx context.Context, actorID uuid.UUID, isAdmin bool, orderID uuid.UUID) (OrderDTO, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return OrderDTO{}, err
	}
	if !isAdmin && order.UserID != actorID {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	if order.OrderStatus == enums.OrderStatusCancelled {
		return ToDTO(*order), nil
	}
	if !order.OrderStatus.IsCancellable() {
		return OrderDTO{}, pkgerrors.New(
			pkgerrors.CodeInvalidState,
			fmt.Sprintf("order in status %s can no longer be cancelled", order.OrderStatus),
		).WithDetails(map[string]any{"status": order.OrderStatus})
	}

	updates := map[string]any{"order_status": enums.OrderStatusCancelled}
	if err := s.repo.UpdateStatusFields(ctx, order.ID, updates); err != nil {
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
	}

	updated, err := s.findOrder(ctx, orderID)
	if err != nil {
		return OrderDTO{}, err
	}
	return ToDTO(*updated), nil
}

func (s *service) Stats(ctx context.Context) (StatsDTO, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return StatsDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order stats")
	}
	return stats, nil
}

func (s *service) findOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func shippedPhase(status enums.OrderStatus) bool {
	return status == enums.OrderStatusShipped || status == enums.OrderStatusDelivered
}

func toListDTO(rows []models.Order, params pagination.Params, total int64) OrderListDTO {
	dtos := make([]OrderDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, ToDTO(row))
	}
	return OrderListDTO{
		Orders:     dtos,
		Pagination: pagination.NewMeta(params, total),
	}
}
