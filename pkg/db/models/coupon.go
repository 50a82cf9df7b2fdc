package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/countryharvest/storefront-backend/pkg/enums"
)

// Coupon is a named discount rule. Codes are stored uppercase and compared
// case-insensitively. UsageCount never exceeds UsageLimit; the increment is
// a conditional UPDATE executed on checkout success.
type Coupon struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code           string           `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Kind           enums.CouponKind `gorm:"column:kind;not null" json:"kind"`
	Value          decimal.Decimal  `gorm:"column:value;type:numeric(12,2);not null" json:"value"`
	MinOrderAmount decimal.Decimal  `gorm:"column:min_order_amount;type:numeric(12,2);not null;default:0" json:"min_order_amount"`
	MaxDiscount    *decimal.Decimal `gorm:"column:max_discount;type:numeric(12,2)" json:"max_discount,omitempty"`
	ExpiresAt      time.Time        `gorm:"column:expires_at;not null" json:"expires_at"`
	UsageLimit     int              `gorm:"column:usage_limit;not null" json:"usage_limit"`
	UsageCount     int              `gorm:"column:usage_count;not null;default:0" json:"usage_count"`
	Active         bool             `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
