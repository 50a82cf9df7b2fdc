package cart

import (
	"github.com/google/uuid"

	pkgerrors "github.com/countryharvest/storefront-backend/pkg/errors"
)

// Owner identifies who a cart belongs to. Exactly one of UserID and
// SessionID must be set.
type Owner struct {
	UserID    *uuid.UUID
	SessionID *string
}

// UserOwner builds an owner for an authenticated user.
func UserOwner(userID uuid.UUID) Owner {
	return Owner{UserID: &userID}
}

// SessionOwner builds an owner for an anonymous browser session.
func SessionOwner(sessionID string) Owner {
	return Owner{SessionID: &sessionID}
}

func (o Owner) validate() error {
	hasUser := o.UserID != nil && *o.UserID != uuid.Nil
	hasSession := o.SessionID != nil && *o.SessionID != ""
	if hasUser == hasSession {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart owner requires exactly one of user or session identity")
	}
	return nil
}

// AddItemInput carries the payload for adding a product to a cart.
type AddItemInput struct {
	ProductID uuid.UUID  `json:"product_id" validate:"required"`
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
	Quantity  int        `json:"quantity" validate:"required"`
}

// UpdateItemInput carries partial updates for an existing cart line.
type UpdateItemInput struct {
	Quantity      *int  `json:"quantity,omitempty"`
	SavedForLater *bool `json:"saved_for_later,omitempty"`
}
