package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/countryharvest/storefront-backend/pkg/db/models"
	"github.com/countryharvest/storefront-backend/pkg/enums"
	pkgerrors "github.com/countryharvest/storefront-backend/pkg/errors"
	"github.com/countryharvest/storefront-backend/pkg/pagination"
	"github.com/countryharvest/storefront-backend/pkg/types"
)

type stubOrdersRepo struct {
	orders    map[uuid.UUID]*models.Order
	savedWith [][]string
}

func newStubOrdersRepo() *stubOrdersRepo {
	return &stubOrdersRepo{orders: make(map[uuid.UUID]*models.Order)}
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (s *stubOrdersRepo) FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	for _, order := range s.orders {
		if order.OrderNumber == orderNumber {
			return order, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrdersRepo) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error) {
	list := &OrderList{}
	for _, order := range s.orders {
		if order.UserID != nil && *order.UserID == userID {
			list.Orders = append(list.Orders, *order)
		}
	}
	return list, nil
}

func (s *stubOrdersRepo) List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	list := &OrderList{}
	for _, order := range s.orders {
		if filters.Status != nil && order.Status != *filters.Status {
			continue
		}
		list.Orders = append(list.Orders, *order)
	}
	return list, nil
}

func (s *stubOrdersRepo) Save(ctx context.Context, order *models.Order, fields ...string) error {
	s.orders[order.ID] = order
	s.savedWith = append(s.savedWith, fields)
	return nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type spyNotifier struct {
	statusUpdates []*models.Order
}

func (s *spyNotifier) SendStatusUpdate(ctx context.Context, order *models.Order) {
	s.statusUpdates = append(s.statusUpdates, order)
}

func seedOrder(repo *stubOrdersRepo, status enums.OrderStatus) *models.Order {
	userID := uuid.New()
	order := &models.Order{
		ID:          uuid.New(),
		OrderNumber: "CH-20250815-0001",
		UserID:      &userID,
		Status:      status,
		StatusHistory: types.StatusHistory{
			{Status: enums.OrderStatusPending, Timestamp: time.Now().Add(-time.Hour), Note: "Order placed"},
		},
	}
	repo.orders[order.ID] = order
	return order
}

func newOrdersService(t *testing.T, repo Repository, notifier statusNotifier) Service {
	t.Helper()
	svc, err := NewService(repo, fakeTxRunner{}, notifier)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCancelPendingOrder(t *testing.T) {
	t.Parallel()

	repo := newStubOrdersRepo()
	notifier := &spyNotifier{}
	order := seedOrder(repo, enums.OrderStatusPending)
	svc := newOrdersService(t, repo, notifier)

	updated, err := svc.Cancel(context.Background(), order.ID, Actor{UserID: order.UserID}, "changed my mind")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if updated.Status != enums.OrderStatusCancelled {
		t.Fatalf("status: %s", updated.Status)
	}
	if len(updated.StatusHistory) != 2 {
		t.Fatalf("expected appended history entry, got %d", len(updated.StatusHistory))
	}
	last := updated.StatusHistory[len(updated.StatusHistory)-1]
	if last.Status != enums.OrderStatusCancelled || last.Note != "changed my mind" {
		t.Fatalf("unexpected history entry: %+v", last)
	}
	if len(notifier.statusUpdates) != 1 {
		t.Fatal("expected a status notification")
	}
}

func TestCancelShippedOrderRejected(t *testing.T) {
	t.Parallel()

	repo := newStubOrdersRepo()
	order := seedOrder(repo, enums.OrderStatusShipped)
	svc := newOrdersService(t, repo, &spyNotifier{})

	_, err := svc.Cancel(context.Background(), order.ID, Actor{Admin: true}, "")
	if !pkgerrors.HasReason(err, pkgerrors.ReasonInvalidStatusTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestCancelForeignOrderForbidden(t *testing.T) {
	t.Parallel()

	repo := newStubOrdersRepo()
	order := seedOrder(repo, enums.OrderStatusPending)
	svc := newOrdersService(t, repo, &spyNotifier{})

	stranger := uuid.New()
	_, err := svc.Cancel(context.Background(), order.ID, Actor{UserID: &stranger}, "")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestUpdateStatusAppendsHistoryAndNotifies(t *testing.T) {
	t.Parallel()

	repo := newStubOrdersRepo()
	notifier := &spyNotifier{}
	order := seedOrder(repo, enums.OrderStatusPending)
	svc := newOrdersService(t, repo, notifier)

	updated, err := svc.UpdateStatus(context.Background(), order.ID, UpdateStatusInput{
		Status: "processing",
		Note:   "picking started",
	})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != enums.OrderStatusProcessing {
		t.Fatalf("status: %s", updated.Status)
	}
	if len(updated.StatusHistory) != 2 {
		t.Fatalf("expected history append, got %d entries", len(updated.StatusHistory))
	}
	if len(notifier.statusUpdates) != 1 {
		t.Fatal("expected one notification")
	}
}

func TestUpdateStatusSameStatusIsNoOp(t *testing.T) {
	t.Parallel()

	repo := newStubOrdersRepo()
	notifier := &spyNotifier{}
	order := seedOrder(repo, enums.OrderStatusPending)
	svc := newOrdersService(t, repo, notifier)

	updated, err := svc.UpdateStatus(context.Background(), order.ID, UpdateStatusInput{Status: "pending"})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if len(updated.StatusHistory) != 1 {
		t.Fatal("repeating the current status must not append history")
	}
	if len(notifier.statusUpdates) != 0 {
		t.Fatal("no notification expected for a no-op")
	}
}

func TestUpdateStatusDeliveredStampsDeliveryDate(t *testing.T) {
	t.Parallel()

	repo := newStubOrdersRepo()
	order := seedOrder(repo, enums.OrderStatusShipped)
	svc := newOrdersService(t, repo, &spyNotifier{})

	updated, err := svc.UpdateStatus(context.Background(), order.ID, UpdateStatusInput{Status: "delivered"})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.ActualDeliveryDate == nil {
		t.Fatal("expected actual delivery date to be set")
	}
}

func TestUpdateStatusTerminalRejected(t *testing.T) {
	t.Parallel()

	repo := newStubOrdersRepo()
	order := seedOrder(repo, enums.OrderStatusDelivered)
	svc := newOrdersService(t, repo, &spyNotifier{})

	_, err := svc.UpdateStatus(context.Background(), order.ID, UpdateStatusInput{Status: "processing"})
	if !pkgerrors.HasReason(err, pkgerrors.ReasonInvalidStatusTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	t.Parallel()

	repo := newStubOrdersRepo()
	order := seedOrder(repo, enums.OrderStatusPending)
	svc := newOrdersService(t, repo, &spyNotifier{})
	ctx := context.Background()

	if _, err := svc.Get(ctx, order.ID, Actor{UserID: order.UserID}); err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if _, err := svc.Get(ctx, order.ID, Actor{Admin: true}); err != nil {
		t.Fatalf("admin get: %v", err)
	}

	stranger := uuid.New()
	_, err := svc.Get(ctx, order.ID, Actor{UserID: &stranger})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	_, err = svc.Get(ctx, uuid.New(), Actor{Admin: true})
	if !pkgerrors.HasReason(err, pkgerrors.ReasonOrderNotFound) {
		t.Fatalf("expected order not found, got %v", err)
	}
}
