package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/countryharvest/storefront-backend/pkg/db/models"
	"github.com/countryharvest/storefront-backend/pkg/enums"
)

type stubSender struct {
	sent []string
	err  error
}

func (s *stubSender) Send(ctx context.Context, to, subject, body string) error {
	s.sent = append(s.sent, to)
	return s.err
}

type stubNotificationsRepo struct {
	rows []*models.Notification
}

func (s *stubNotificationsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubNotificationsRepo) Create(ctx context.Context, notification *models.Notification) error {
	s.rows = append(s.rows, notification)
	return nil
}

func (s *stubNotificationsRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Notification, error) {
	panic("not implemented")
}

func guestOrder() *models.Order {
	email := "buyer@harvestkitchen.example"
	return &models.Order{
		ID:          uuid.New(),
		OrderNumber: "CH-20250815-0042",
		GuestEmail:  &email,
		Status:      enums.OrderStatusPending,
		Subtotal:    decimal.RequireFromString("50.00"),
		Total:       decimal.RequireFromString("55.99"),
	}
}

func TestSendOrderConfirmationRecordsSent(t *testing.T) {
	t.Parallel()

	sender := &stubSender{}
	repo := &stubNotificationsRepo{}
	svc, err := NewService(repo, sender, zerolog.Nop())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	svc.SendOrderConfirmation(context.Background(), guestOrder())

	if len(sender.sent) != 1 || sender.sent[0] != "buyer@harvestkitchen.example" {
		t.Fatalf("unexpected sends: %v", sender.sent)
	}
	if len(repo.rows) != 1 {
		t.Fatalf("expected one audit row, got %d", len(repo.rows))
	}
	row := repo.rows[0]
	if row.Status != enums.NotificationStatusSent || row.Kind != enums.NotificationKindOrderConfirmation {
		t.Fatalf("unexpected audit row: %+v", row)
	}
}

func TestSendFailureIsRecordedNotPropagated(t *testing.T) {
	t.Parallel()

	sender := &stubSender{err: errors.New("relay down")}
	repo := &stubNotificationsRepo{}
	svc, err := NewService(repo, sender, zerolog.Nop())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	svc.SendStatusUpdate(context.Background(), guestOrder())

	if len(repo.rows) != 1 {
		t.Fatalf("expected one audit row, got %d", len(repo.rows))
	}
	row := repo.rows[0]
	if row.Status != enums.NotificationStatusFailed {
		t.Fatalf("expected failed status, got %s", row.Status)
	}
	if row.Error == nil {
		t.Fatal("expected error message to be recorded")
	}
}

func TestSendSkipsOrdersWithoutRecipient(t *testing.T) {
	t.Parallel()

	sender := &stubSender{}
	repo := &stubNotificationsRepo{}
	svc, err := NewService(repo, sender, zerolog.Nop())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	userID := uuid.New()
	svc.SendOrderConfirmation(context.Background(), &models.Order{
		ID:          uuid.New(),
		OrderNumber: "CH-20250815-0043",
		UserID:      &userID,
	})

	if len(sender.sent) != 0 {
		t.Fatal("no send expected without a recipient")
	}
	if len(repo.rows) != 0 {
		t.Fatal("no audit row expected without a recipient")
	}
}
