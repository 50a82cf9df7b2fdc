package types

import (
	"time"

	"github.com/countryharvest/storefront-backend/pkg/enums"
)

// StatusChange is one append-only entry in an order's status history.
type StatusChange struct {
	Status    enums.OrderStatus `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Note      string            `json:"note,omitempty"`
}

// StatusHistory is the audit trail stored on the order as jsonb.
type StatusHistory []StatusChange
