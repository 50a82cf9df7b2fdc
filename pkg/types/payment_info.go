package types

import (
	"time"

	"github.com/countryharvest/storefront-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// PaymentInfo records how an order was (or will be) paid. The gateway itself
// lives outside this service; we only snapshot what the caller supplies.
type PaymentInfo struct {
	Method        enums.PaymentMethod `json:"method"`
	TransactionID string              `json:"transaction_id,omitempty"`
	Status        enums.PaymentStatus `json:"status"`
	Amount        decimal.Decimal     `json:"amount"`
	Currency      string              `json:"currency"`
	PaymentDate   *time.Time          `json:"payment_date,omitempty"`
}
