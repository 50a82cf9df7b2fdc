package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/countryharvest/storefront-backend/pkg/db/models"
	"github.com/countryharvest/storefront-backend/pkg/enums"
	pkgerrors "github.com/countryharvest/storefront-backend/pkg/errors"
)

// Service sends customer-facing order emails. Every call is best-effort:
// failures are logged and written to the audit table, never returned to
// the caller, so a broken relay can never fail a checkout.
type Service interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order)
	SendStatusUpdate(ctx context.Context, order *models.Order)
}

type service struct {
	repo   Repository
	sender Sender
	logger zerolog.Logger
}

// NewService wires notification dependencies.
func NewService(repo Repository, sender Sender, logger zerolog.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if sender == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification sender required")
	}
	return &service{repo: repo, sender: sender, logger: logger}, nil
}

func (s *service) SendOrderConfirmation(ctx context.Context, order *models.Order) {
	subject := fmt.Sprintf("Order %s confirmed", order.OrderNumber)
	s.deliver(ctx, order, enums.NotificationKindOrderConfirmation, subject, confirmationBody(order))
}

func (s *service) SendStatusUpdate(ctx context.Context, order *models.Order) {
	subject := fmt.Sprintf("Order %s is now %s", order.OrderNumber, order.Status)
	s.deliver(ctx, order, enums.NotificationKindOrderStatusUpdate, subject, statusBody(order))
}

func (s *service) deliver(ctx context.Context, order *models.Order, kind enums.NotificationKind, subject, body string) {
	recipient := order.RecipientEmail()
	if recipient == "" {
		s.logger.Debug().
			Str("order_number", order.OrderNumber).
			Str("kind", kind.String()).
			Msg("no recipient email on order, skipping notification")
		return
	}

	row := &models.Notification{
		Kind:      kind,
		Recipient: recipient,
		OrderID:   &order.ID,
		Status:    enums.NotificationStatusSent,
	}

	if err := s.sender.Send(ctx, recipient, subject, body); err != nil {
		msg := err.Error()
		row.Status = enums.NotificationStatusFailed
		row.Error = &msg
		s.logger.Error().Err(err).
			Str("order_number", order.OrderNumber).
			Str("kind", kind.String()).
			Msg("notification send failed")
	}

	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error().Err(err).
			Str("order_number", order.OrderNumber).
			Msg("notification audit write failed")
	}
}

func confirmationBody(order *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thanks for your order, %s.\n\n", order.ShippingAddress.FullName)
	fmt.Fprintf(&b, "Order number: %s\n\n", order.OrderNumber)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "  %dx %s @ %s\n", item.Quantity, item.DisplayName, item.UnitPrice.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nSubtotal: %s\n", order.Subtotal.StringFixed(2))
	if order.Discount.IsPositive() {
		fmt.Fprintf(&b, "Discount: -%s\n", order.Discount.StringFixed(2))
	}
	fmt.Fprintf(&b, "Tax: %s\nShipping: %s\nTotal: %s\n", order.Tax.StringFixed(2), order.Shipping.StringFixed(2), order.Total.StringFixed(2))
	return b.String()
}

func statusBody(order *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your order %s is now %s.\n", order.OrderNumber, order.Status)
	if order.TrackingNumber != nil {
		carrier := ""
		if order.Carrier != nil {
			carrier = " via " + *order.Carrier
		}
		fmt.Fprintf(&b, "Tracking%s: %s\n", carrier, *order.TrackingNumber)
	}
	return b.String()
}
