package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"gorm.io/gorm"

	"github.com/countryharvest/storefront-backend/internal/cart"
	"github.com/countryharvest/storefront-backend/internal/catalog"
	"github.com/countryharvest/storefront-backend/internal/coupons"
	"github.com/countryharvest/storefront-backend/internal/orders"
	"github.com/countryharvest/storefront-backend/internal/pricing"
	"github.com/countryharvest/storefront-backend/internal/shipping"
	"github.com/countryharvest/storefront-backend/internal/tax"
	"github.com/countryharvest/storefront-backend/pkg/db"
	"github.com/countryharvest/storefront-backend/pkg/db/models"
	"github.com/countryharvest/storefront-backend/pkg/enums"
	pkgerrors "github.com/countryharvest/storefront-backend/pkg/errors"
	"github.com/countryharvest/storefront-backend/pkg/metrics"
	"github.com/countryharvest/storefront-backend/pkg/types"
)

const (
	orderNumberAttempts = 3
	orderNumberBackoff  = 25 * time.Millisecond
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type confirmationNotifier interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order)
}

// Service converts a cart into an order. The whole conversion runs in one
// database transaction: every line is validated and every stock decrement
// applied conditionally, so a cart with any unfulfillable line produces no
// order and no stock movement.
type Service interface {
	Execute(ctx context.Context, owner cart.Owner, input Input) (*models.Order, error)
}

type service struct {
	tx          txRunner
	cartRepo    cart.Repository
	catalogRepo catalog.Repository
	couponsRepo coupons.Repository
	ordersRepo  orders.Repository
	taxSvc      tax.Service
	shippingSvc shipping.Service
	notifier    confirmationNotifier
	checkoutMet *metrics.CheckoutMetrics
	logger      zerolog.Logger
	now         func() time.Time
	newNumber   func(time.Time) string
}

// NewService builds the checkout orchestrator.
func NewService(
	tx txRunner,
	cartRepo cart.Repository,
	catalogRepo catalog.Repository,
	couponsRepo coupons.Repository,
	ordersRepo orders.Repository,
	taxSvc tax.Service,
	shippingSvc shipping.Service,
	notifier confirmationNotifier,
	checkoutMet *metrics.CheckoutMetrics,
	logger zerolog.Logger,
) (Service, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "tx runner required")
	}
	if cartRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "cart repository required")
	}
	if catalogRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog repository required")
	}
	if couponsRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "coupons repository required")
	}
	if ordersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "orders repository required")
	}
	if taxSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "tax service required")
	}
	if shippingSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shipping service required")
	}
	if notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifier required")
	}
	return &service{
		tx:          tx,
		cartRepo:    cartRepo,
		catalogRepo: catalogRepo,
		couponsRepo: couponsRepo,
		ordersRepo:  ordersRepo,
		taxSvc:      taxSvc,
		shippingSvc: shippingSvc,
		notifier:    notifier,
		checkoutMet: checkoutMet,
		logger:      logger,
		now:         time.Now,
		newNumber:   newOrderNumber,
	}, nil
}

func (s *service) Execute(ctx context.Context, owner cart.Owner, input Input) (*models.Order, error) {
	started := s.now()

	order, err := s.execute(ctx, owner, input)
	if err != nil {
		reason := "internal"
		if typed := pkgerrors.As(err); typed != nil && typed.Reason() != "" {
			reason = string(typed.Reason())
		}
		s.checkoutMet.IncFailure(reason)
		s.checkoutMet.ObserveDuration("failure", s.now().Sub(started))
		return nil, err
	}

	s.checkoutMet.IncSuccess()
	s.checkoutMet.ObserveDuration("success", s.now().Sub(started))

	// Confirmation mail is best-effort and happens after commit; a dead
	// relay must never undo a placed order.
	s.notifier.SendOrderConfirmation(ctx, order)

	s.logger.Info().
		Str("order_number", order.OrderNumber).
		Str("total", order.Total.StringFixed(2)).
		Int("items", len(order.Items)).
		Msg("checkout completed")
	return order, nil
}

func (s *service) execute(ctx context.Context, owner cart.Owner, input Input) (*models.Order, error) {
	if owner.UserID == nil && input.GuestEmail == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "guest checkout requires an email address").
			WithReason(pkgerrors.ReasonGuestEmailRequired)
	}
	if field := input.ShippingAddress.Validate(); field != "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address incomplete").
			WithDetails(map[string]any{"missing_field": field})
	}
	if input.BillingAddress != nil {
		if field := input.BillingAddress.Validate(); field != "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "billing address incomplete").
				WithDetails(map[string]any{"missing_field": field})
		}
	}
	paymentMethod, err := enums.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unsupported payment method")
	}

	var order *models.Order
	backoff := retry.WithMaxRetries(orderNumberAttempts, retry.NewConstant(orderNumberBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		order = nil
		txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			created, err := s.placeOrder(ctx, tx, owner, input, paymentMethod)
			if err != nil {
				return err
			}
			order = created
			return nil
		})
		if db.IsUniqueViolation(txErr, "idx_orders_order_number") {
			s.logger.Warn().Msg("order number collision, retrying with a fresh number")
			return retry.RetryableError(txErr)
		}
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) placeOrder(ctx context.Context, tx *gorm.DB, owner cart.Owner, input Input, paymentMethod enums.PaymentMethod) (*models.Order, error) {
	cartRepo := s.cartRepo.WithTx(tx)
	catalogRepo := s.catalogRepo.WithTx(tx)
	couponsRepo := s.couponsRepo.WithTx(tx)
	ordersRepo := s.ordersRepo.WithTx(tx)

	record, err := s.loadCart(ctx, cartRepo, owner)
	if err != nil {
		return nil, err
	}
	active := record.ActiveItems()
	if len(active) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart contains no purchasable items").
			WithReason(pkgerrors.ReasonEmptyCart)
	}

	// Validate every line before touching stock so a failure on the last
	// line cannot leave earlier decrements behind.
	for _, item := range active {
		listing, err := catalog.Resolve(ctx, catalogRepo, item.ProductID, item.VariantID)
		if err != nil {
			return nil, err
		}
		if err := catalog.EnsureStock(listing, item.Quantity); err != nil {
			return nil, err
		}
	}

	for _, item := range active {
		ok, err := catalogRepo.DecrementStock(ctx, item.ProductID, item.VariantID, item.Quantity)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
		}
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
				WithReason(pkgerrors.ReasonInsufficientStock).
				WithDetails(map[string]any{
					"product_id": item.ProductID.String(),
					"requested":  item.Quantity,
				})
		}
	}

	subtotal := pricing.Subtotal(active)
	method, err := s.shippingSvc.Quote(input.ShippingMethodID, subtotal)
	if err != nil {
		return nil, err
	}
	taxRate := s.taxSvc.RateFor(input.ShippingAddress)
	totals := pricing.Compute(active, record.Coupon, taxRate, method.Price)

	var couponCode *string
	if record.Coupon != nil {
		if err := s.redeemCoupon(ctx, couponsRepo, record.Coupon.Code); err != nil {
			return nil, err
		}
		code := record.Coupon.Code
		couponCode = &code
	}

	order, err := s.createOrder(ctx, ordersRepo, record, active, owner, input, paymentMethod, method, totals, couponCode)
	if err != nil {
		return nil, err
	}

	if err := s.clearPurchased(ctx, cartRepo, record); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) loadCart(ctx context.Context, repo cart.Repository, owner cart.Owner) (*models.Cart, error) {
	var (
		record *models.Cart
		err    error
	)
	switch {
	case owner.UserID != nil:
		record, err = repo.FindByUser(ctx, *owner.UserID)
	case owner.SessionID != nil:
		record, err = repo.FindBySession(ctx, *owner.SessionID)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner required")
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart contains no purchasable items").
				WithReason(pkgerrors.ReasonEmptyCart)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return record, nil
}

// redeemCoupon burns one use of the applied coupon. The increment is
// conditional on the stored usage limit so two concurrent checkouts cannot
// both take the last redemption.
func (s *service) redeemCoupon(ctx context.Context, repo coupons.Repository, code string) error {
	coupon, err := repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeConflict, "applied coupon no longer exists").
				WithReason(pkgerrors.ReasonCouponNotFound)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	ok, err := repo.IncrementUsage(ctx, coupon.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redeem coupon")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeConflict, "coupon usage limit reached").
			WithReason(pkgerrors.ReasonCouponUsageLimitReached)
	}
	return nil
}

func (s *service) createOrder(
	ctx context.Context,
	repo orders.Repository,
	record *models.Cart,
	active []models.CartItem,
	owner cart.Owner,
	input Input,
	paymentMethod enums.PaymentMethod,
	method *types.ShippingMethod,
	totals pricing.Totals,
	couponCode *string,
) (*models.Order, error) {
	now := s.now()

	billing := input.ShippingAddress
	if input.BillingAddress != nil {
		billing = *input.BillingAddress
	}

	items := make([]models.OrderItem, 0, len(active))
	for _, item := range active {
		items = append(items, models.OrderItem{
			ID:          uuid.New(),
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			DisplayName: item.DisplayName,
			ImageRef:    item.ImageRef,
		})
	}

	var guestEmail *string
	if input.GuestEmail != "" {
		email := input.GuestEmail
		guestEmail = &email
	}

	var estimated *time.Time
	if method.EstimatedDays > 0 {
		eta := now.AddDate(0, 0, method.EstimatedDays)
		estimated = &eta
	}

	order := &models.Order{
		ID:              uuid.New(),
		OrderNumber:     s.newNumber(now),
		UserID:          owner.UserID,
		GuestEmail:      guestEmail,
		Items:           items,
		ShippingAddress: input.ShippingAddress,
		BillingAddress:  billing,
		PaymentInfo: types.PaymentInfo{
			Method:   paymentMethod,
			Status:   enums.PaymentStatusPending,
			Amount:   totals.Total,
			Currency: "USD",
		},
		ShippingMethod: *method,
		Subtotal:       totals.Subtotal,
		Tax:            totals.Tax,
		Shipping:       totals.Shipping,
		Discount:       totals.Discount,
		Total:          totals.Total,
		CouponCode:     couponCode,
		Status:         enums.OrderStatusPending,
		StatusHistory: types.StatusHistory{
			{Status: enums.OrderStatusPending, Timestamp: now, Note: "Order placed"},
		},
		EstimatedDeliveryDate: estimated,
	}
	created, err := repo.Create(ctx, order)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// clearPurchased removes the bought lines and the coupon while keeping any
// saved-for-later items on the cart. The optimistic version check makes a
// concurrent cart edit fail the whole checkout rather than silently losing
// the edit.
func (s *service) clearPurchased(ctx context.Context, repo cart.Repository, record *models.Cart) error {
	record.Items = record.SavedItems()
	record.Coupon = nil
	pricing.Recalculate(record, s.shippingSvc.DefaultCost(pricing.Subtotal(record.Items)))

	if err := repo.Save(ctx, record); err != nil {
		if errors.Is(err, cart.ErrVersionConflict) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cart was modified during checkout").
				WithReason(pkgerrors.ReasonCartModified)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return nil
}
