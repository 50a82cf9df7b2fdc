package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/countryharvest/storefront-backend/pkg/enums"
)

// Notification is the audit row written for every outbound customer email,
// including failed sends.
type Notification struct {
	ID        uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Kind      enums.NotificationKind   `gorm:"column:kind;not null" json:"kind"`
	Recipient string                   `gorm:"column:recipient;not null" json:"recipient"`
	OrderID   *uuid.UUID               `gorm:"column:order_id;type:uuid;index" json:"order_id,omitempty"`
	Status    enums.NotificationStatus `gorm:"column:status;not null" json:"status"`
	Error     *string                  `gorm:"column:error" json:"error,omitempty"`
	CreatedAt time.Time                `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
