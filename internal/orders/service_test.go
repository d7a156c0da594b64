package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/atino-shop/atino-backend/pkg/db/models"
	"github.com/atino-shop/atino-backend/pkg/enums"
	pkgerrors "github.com/atino-shop/atino-backend/pkg/errors"
	"github.com/atino-shop/atino-backend/pkg/pagination"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return conn
}

func mustCreateOrder(t *testing.T, conn *gorm.DB, userID uuid.UUID, status enums.OrderStatus) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNumber: fmt.Sprintf("ATN-%s", uuid.NewString()[:8]),
		UserID:      userID,
		ShippingAddress: models.ShippingAddress{
			FullName: "Nguyen Van A",
			Phone:    "0900000000",
			Email:    "a@example.com",
			Address:  "1 Le Loi",
			City:     "Da Nang",
		},
		PaymentMethod: enums.PaymentMethodCOD,
		ItemsPrice:    200000,
		ShippingPrice: 30000,
		TotalPrice:    230000,
		OrderStatus:   status,
		OrderItems: []models.OrderItem{
			{ProductID: uuid.New(), Name: "Basic Tee", Price: 100000, Quantity: 2},
		},
	}
	if err := conn.Create(order).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}

func mustOrderService(t *testing.T, conn *gorm.DB, now func() time.Time) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: NewRepository(conn), Now: now})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestUpdateStatusFollowsTransitions(t *testing.T) {
	conn := openTestDB(t)
	svc := mustOrderService(t, conn, nil)
	ctx := context.Background()
	order := mustCreateOrder(t, conn, uuid.New(), enums.OrderStatusPending)

	dto, err := svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{Status: enums.OrderStatusProcessing})
	if err != nil {
		t.Fatalf("pending -> processing: %v", err)
	}
	if dto.OrderStatus != enums.OrderStatusProcessing {
		t.Fatalf("expected processing, got %s", dto.OrderStatus)
	}

	// Skipping ahead is rejected.
	_, err = svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{Status: enums.OrderStatusDelivered})
	if apiErr := pkgerrors.As(err); apiErr == nil || apiErr.Code() != pkgerrors.CodeInvalidState {
		t.Fatalf("expected invalid state for processing -> delivered, got %v", err)
	}

	tracking := "VN123456"
	dto, err = svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{Status: enums.OrderStatusShipped, TrackingNumber: &tracking})
	if err != nil {
		t.Fatalf("processing -> shipped: %v", err)
	}
	if dto.TrackingNumber == nil || *dto.TrackingNumber != tracking {
		t.Fatalf("expected tracking number stored")
	}

	// Moving backwards is rejected.
	_, err = svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{Status: enums.OrderStatusPending})
	if apiErr := pkgerrors.As(err); apiErr == nil || apiErr.Code() != pkgerrors.CodeInvalidState {
		t.Fatalf("expected invalid state for shipped -> pending, got %v", err)
	}
}

func TestUpdateStatusRejectsEarlyTrackingNumber(t *testing.T) {
	conn := openTestDB(t)
	svc := mustOrderService(t, conn, nil)
	ctx := context.Background()
	order := mustCreateOrder(t, conn, uuid.New(), enums.OrderStatusPending)

	tracking := "VN123456"
	_, err := svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{Status: enums.OrderStatusProcessing, TrackingNumber: &tracking})
	if apiErr := pkgerrors.As(err); apiErr == nil || apiErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for tracking before shipped, got %v", err)
	}

	// The rejected transition leaves the order untouched.
	dto, err := svc.GetByID(ctx, order.UserID, false, order.ID)
	if err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if dto.OrderStatus != enums.OrderStatusPending || dto.TrackingNumber != nil {
		t.Fatalf("order mutated by rejected transition: %+v", dto)
	}

	// Once shipped, tracking can still be corrected.
	if _, err := svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{Status: enums.OrderStatusProcessing}); err != nil {
		t.Fatalf("pending -> processing: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{Status: enums.OrderStatusShipped}); err != nil {
		t.Fatalf("processing -> shipped: %v", err)
	}
	updated, err := svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{Status: enums.OrderStatusShipped, TrackingNumber: &tracking})
	if err != nil {
		t.Fatalf("set tracking after shipped: %v", err)
	}
	if updated.TrackingNumber == nil || *updated.TrackingNumber != tracking {
		t.Fatalf("expected tracking number stored after shipped")
	}
}

func TestUpdateStatusSetsDeliveredAtOnce(t *testing.T) {
	conn := openTestDB(t)
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := first
	svc := mustOrderService(t, conn, func() time.Time { return clock })
	ctx := context.Background()
	order := mustCreateOrder(t, conn, uuid.New(), enums.OrderStatusShipped)

	dto, err := svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{Status: enums.OrderStatusDelivered})
	if err != nil {
		t.Fatalf("shipped -> delivered: %v", err)
	}
	if !dto.IsDelivered || dto.DeliveredAt == nil {
		t.Fatalf("expected delivered flag and timestamp")
	}
	if !dto.DeliveredAt.Equal(first) {
		t.Fatalf("expected delivered at %v, got %v", first, dto.DeliveredAt)
	}

	// Repeating the delivered transition keeps the original timestamp.
	clock = first.Add(48 * time.Hour)
	dto, err = svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{Status: enums.OrderStatusDelivered})
	if err != nil {
		t.Fatalf("delivered -> delivered: %v", err)
	}
	if !dto.DeliveredAt.Equal(first) {
		t.Fatalf("delivered_at must be written once, got %v", dto.DeliveredAt)
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	conn := openTestDB(t)
	svc := mustOrderService(t, conn, nil)
	order := mustCreateOrder(t, conn, uuid.New(), enums.OrderStatusPending)

	_, err := svc.UpdateStatus(context.Background(), order.ID, UpdateStatusInput{Status: "returned"})
	if apiErr := pkgerrors.As(err); apiErr == nil || apiErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCancelRules(t *testing.T) {
	conn := openTestDB(t)
	svc := mustOrderService(t, conn, nil)
	ctx := context.Background()
	userID := uuid.New()

	pending := mustCreateOrder(t, conn, userID, enums.OrderStatusPending)
	dto, err := svc.Cancel(ctx, userID, false, pending.ID)
	if err != nil {
		t.Fatalf("cancel pending: %v", err)
	}
	if dto.OrderStatus != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", dto.OrderStatus)
	}

	// Cancelling twice stays a success.
	dto, err = svc.Cancel(ctx, userID, false, pending.ID)
	if err != nil {
		t.Fatalf("repeat cancel: %v", err)
	}
	if dto.OrderStatus != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", dto.OrderStatus)
	}

	shipped := mustCreateOrder(t, conn, userID, enums.OrderStatusShipped)
	_, err = svc.Cancel(ctx, userID, false, shipped.ID)
	if apiErr := pkgerrors.As(err); apiErr == nil || apiErr.Code() != pkgerrors.CodeInvalidState {
		t.Fatalf("expected invalid state for shipped cancel, got %v", err)
	}

	// Another user's order reads as not found.
	other := mustCreateOrder(t, conn, uuid.New(), enums.OrderStatusPending)
	_, err = svc.Cancel(ctx, userID, false, other.ID)
	if apiErr := pkgerrors.As(err); apiErr == nil || apiErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign order, got %v", err)
	}

	// Admins can cancel on behalf of the user.
	adminTarget := mustCreateOrder(t, conn, uuid.New(), enums.OrderStatusProcessing)
	dto, err = svc.Cancel(ctx, uuid.New(), true, adminTarget.ID)
	if err != nil {
		t.Fatalf("admin cancel: %v", err)
	}
	if dto.OrderStatus != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", dto.OrderStatus)
	}
}

func TestGetByIDOwnership(t *testing.T) {
	conn := openTestDB(t)
	svc := mustOrderService(t, conn, nil)
	ctx := context.Background()
	owner := uuid.New()
	order := mustCreateOrder(t, conn, owner, enums.OrderStatusPending)

	if _, err := svc.GetByID(ctx, owner, false, order.ID); err != nil {
		t.Fatalf("owner read: %v", err)
	}
	if _, err := svc.GetByID(ctx, uuid.New(), true, order.ID); err != nil {
		t.Fatalf("admin read: %v", err)
	}

	_, err := svc.GetByID(ctx, uuid.New(), false, order.ID)
	if apiErr := pkgerrors.As(err); apiErr == nil || apiErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign reader, got %v", err)
	}
}

func TestListMineAndAdminList(t *testing.T) {
	conn := openTestDB(t)
	svc := mustOrderService(t, conn, nil)
	ctx := context.Background()
	userID := uuid.New()

	mustCreateOrder(t, conn, userID, enums.OrderStatusPending)
	mustCreateOrder(t, conn, userID, enums.OrderStatusDelivered)
	mustCreateOrder(t, conn, uuid.New(), enums.OrderStatusPending)

	mine, err := svc.ListMine(ctx, userID, pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(mine.Orders) != 2 || mine.Pagination.Total != 2 {
		t.Fatalf("expected 2 own orders, got %d (total %d)", len(mine.Orders), mine.Pagination.Total)
	}

	all, err := svc.AdminList(ctx, pagination.Params{Page: 1, Limit: 10}, ListFilters{})
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if all.Pagination.Total != 3 {
		t.Fatalf("expected 3 orders total, got %d", all.Pagination.Total)
	}

	pendingOnly, err := svc.AdminList(ctx, pagination.Params{Page: 1, Limit: 10}, ListFilters{Status: enums.OrderStatusPending})
	if err != nil {
		t.Fatalf("admin list filtered: %v", err)
	}
	if pendingOnly.Pagination.Total != 2 {
		t.Fatalf("expected 2 pending orders, got %d", pendingOnly.Pagination.Total)
	}

	_, err = svc.AdminList(ctx, pagination.Params{}, ListFilters{Status: "refunded"})
	if apiErr := pkgerrors.As(err); apiErr == nil || apiErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for unknown status filter, got %v", err)
	}
}

func TestStatsCountsDeliveredRevenue(t *testing.T) {
	conn := openTestDB(t)
	svc := mustOrderService(t, conn, nil)
	ctx := context.Background()

	mustCreateOrder(t, conn, uuid.New(), enums.OrderStatusPending)
	mustCreateOrder(t, conn, uuid.New(), enums.OrderStatusDelivered)
	mustCreateOrder(t, conn, uuid.New(), enums.OrderStatusDelivered)

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalOrders != 3 {
		t.Fatalf("expected 3 orders, got %d", stats.TotalOrders)
	}
	if stats.TotalRevenue != 460000 {
		t.Fatalf("expected revenue from delivered orders only, got %d", stats.TotalRevenue)
	}
	if stats.CountsByStatus[enums.OrderStatusDelivered] != 2 {
		t.Fatalf("expected 2 delivered, got %d", stats.CountsByStatus[enums.OrderStatusDelivered])
	}
}

func TestHasDeliveredOrderWithProduct(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()

	order := &models.Order{
		OrderNumber:   fmt.Sprintf("ATN-%s", uuid.NewString()[:8]),
		UserID:        userID,
		PaymentMethod: enums.PaymentMethodCOD,
		OrderStatus:   enums.OrderStatusPending,
		OrderItems: []models.OrderItem{
			{ProductID: productID, Name: "Basic Tee", Price: 100000, Quantity: 1},
		},
	}
	if err := conn.Create(order).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}

	ok, err := repo.HasDeliveredOrderWithProduct(ctx, userID, productID)
	if err != nil {
		t.Fatalf("check eligibility: %v", err)
	}
	if ok {
		t.Fatal("pending order must not grant eligibility")
	}

	if err := conn.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("order_status", enums.OrderStatusDelivered).Error; err != nil {
		t.Fatalf("mark delivered: %v", err)
	}

	ok, err = repo.HasDeliveredOrderWithProduct(ctx, userID, productID)
	if err != nil {
		t.Fatalf("check eligibility: %v", err)
	}
	if !ok {
		t.Fatal("delivered order must grant eligibility")
	}

	ok, err = repo.HasDeliveredOrderWithProduct(ctx, uuid.New(), productID)
	if err != nil {
		t.Fatalf("check other user: %v", err)
	}
	if ok {
		t.Fatal("other users must not be eligible")
	}
}
