package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/countryharvest/storefront-backend/pkg/db/models"
)

// ErrVersionConflict is returned by Save when the cart row changed under us.
var ErrVersionConflict = errors.New("cart version conflict")

// Repository defines persistence operations for cart aggregates. Save is an
// optimistic write: it only succeeds when the stored version still matches
// the version the cart was loaded with.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, cart *models.Cart) (*models.Cart, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindBySession(ctx context.Context, sessionID string) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	Delete(ctx context.Context, id uuid.UUID) error
}
