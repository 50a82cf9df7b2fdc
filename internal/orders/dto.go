package orders

import (
	"github.com/countryharvest/storefront-backend/pkg/db/models"
	"github.com/countryharvest/storefront-backend/pkg/enums"
)

// OrderList is one page of orders plus the next cursor.
type OrderList struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// ListFilters narrows the admin order listing.
type ListFilters struct {
	Status *enums.OrderStatus
}

// UpdateStatusInput carries an admin status change with optional tracking data.
type UpdateStatusInput struct {
	Status         string  `json:"status" validate:"required"`
	TrackingNumber *string `json:"tracking_number,omitempty"`
	Carrier        *string `json:"carrier,omitempty"`
	Note           string  `json:"note,omitempty"`
}
