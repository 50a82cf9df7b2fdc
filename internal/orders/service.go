package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/countryharvest/storefront-backend/pkg/db/models"
	"github.com/countryharvest/storefront-backend/pkg/enums"
	pkgerrors "github.com/countryharvest/storefront-backend/pkg/errors"
	"github.com/countryharvest/storefront-backend/pkg/pagination"
	"github.com/countryharvest/storefront-backend/pkg/types"
)

type statusNotifier interface {
	SendStatusUpdate(ctx context.Context, order *models.Order)
}

// Actor identifies who is asking for an order operation.
type Actor struct {
	UserID *uuid.UUID
	Admin  bool
}

func (a Actor) owns(order *models.Order) bool {
	return a.UserID != nil && order.UserID != nil && *a.UserID == *order.UserID
}

// Service exposes order reads and lifecycle transitions. Item lists and
// monetary fields are immutable after creation; only status, tracking and
// delivery estimates change here.
type Service interface {
	Get(ctx context.Context, orderID uuid.UUID, actor Actor) (*models.Order, error)
	GetByNumber(ctx context.Context, orderNumber string, actor Actor) (*models.Order, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error)
	ListAll(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error)
	Cancel(ctx context.Context, orderID uuid.UUID, actor Actor, note string) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, input UpdateStatusInput) (*models.Order, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	notifier statusNotifier
	now      func() time.Time
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// NewService builds an orders service with the required dependencies.
func NewService(repo Repository, tx txRunner, notifier statusNotifier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("status notifier required")
	}
	return &service{repo: repo, tx: tx, notifier: notifier, now: time.Now}, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID, actor Actor) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.Admin && !actor.owns(order) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to requester")
	}
	return order, nil
}

func (s *service) GetByNumber(ctx context.Context, orderNumber string, actor Actor) (*models.Order, error) {
	if orderNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number required")
	}
	order, err := s.repo.FindByNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, orderNotFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order by number")
	}
	if !actor.Admin && !actor.owns(order) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to requester")
	}
	return order, nil
}

func (s *service) ListUserOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	list, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list user orders")
	}
	return list, nil
}

func (s *service) ListAll(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

// Cancel moves a pending or processing order to cancelled. Stock is not
// returned automatically; restocking is a manual follow-up for staff.
func (s *service) Cancel(ctx context.Context, orderID uuid.UUID, actor Actor, note string) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadWith(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if !actor.Admin && !actor.owns(order) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to requester")
		}
		if !CanTransition(order.Status, enums.OrderStatusCancelled) {
			return invalidTransition(order.Status, enums.OrderStatusCancelled)
		}

		if note == "" {
			note = "Order cancelled"
		}
		order.Status = enums.OrderStatusCancelled
		order.StatusHistory = append(order.StatusHistory, types.StatusChange{
			Status:    enums.OrderStatusCancelled,
			Timestamp: s.now(),
			Note:      note,
		})
		if err := repo.Save(ctx, order, "status", "status_history"); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cancelled order")
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.SendStatusUpdate(ctx, updated)
	return updated, nil
}

// UpdateStatus applies an admin transition. A history entry is appended only
// when the status actually changes; repeating the current status is a no-op.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, input UpdateStatusInput) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	target, err := enums.ParseOrderStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	var updated *models.Order
	changed := false
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadWith(ctx, repo, orderID)
		if err != nil {
			return err
		}

		fields := make([]string, 0, 6)
		if input.TrackingNumber != nil {
			order.TrackingNumber = input.TrackingNumber
			fields = append(fields, "tracking_number")
		}
		if input.Carrier != nil {
			order.Carrier = input.Carrier
			fields = append(fields, "carrier")
		}

		if target != order.Status {
			if !CanTransition(order.Status, target) {
				return invalidTransition(order.Status, target)
			}
			order.Status = target
			order.StatusHistory = append(order.StatusHistory, types.StatusChange{
				Status:    target,
				Timestamp: s.now(),
				Note:      input.Note,
			})
			fields = append(fields, "status", "status_history")
			if target == enums.OrderStatusDelivered {
				now := s.now()
				order.ActualDeliveryDate = &now
				fields = append(fields, "actual_delivery_date")
			}
			changed = true
		}

		if len(fields) > 0 {
			if err := repo.Save(ctx, order, fields...); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order status")
			}
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.notifier.SendStatusUpdate(ctx, updated)
	}
	return updated, nil
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.loadWith(ctx, s.repo, orderID)
}

func (s *service) loadWith(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, orderNotFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func orderNotFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "order not found").
		WithReason(pkgerrors.ReasonOrderNotFound)
}

func invalidTransition(from, to enums.OrderStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "order status transition not allowed").
		WithReason(pkgerrors.ReasonInvalidStatusTransition).
		WithDetails(map[string]any{"from": from.String(), "to": to.String()})
}
