package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/boxport/boxport-backend/pkg/db/models"
)

// ErrAlreadyFinalized is returned when a second finalize attempt loses the
// at-most-once guard.
var ErrAlreadyFinalized = errors.New("checkout already finalized")

// Store defines persistence operations for checkouts.
type Store interface {
	WithTx(tx *gorm.DB) Store
	Create(ctx context.Context, checkout *models.Checkout) (*models.Checkout, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Checkout, error)
	RecordPayment(ctx context.Context, id uuid.UUID, updates map[string]any) error
	MarkFinalized(ctx context.Context, id uuid.UUID, orderID uuid.UUID) error
}

// Repository implements Store over GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) Store {
	return &Repository{db: tx}
}

// Create inserts the checkout draft.
func (r *Repository) Create(ctx context.Context, checkout *models.Checkout) (*models.Checkout, error) {
	if err := r.db.WithContext(ctx).Create(checkout).Error; err != nil {
		return nil, err
	}
	return checkout, nil
}

// FindByID loads one checkout.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Checkout, error) {
	var checkout models.Checkout
	if err := r.db.WithContext(ctx).First(&checkout, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &checkout, nil
}

// RecordPayment writes the processor references onto the checkout.
func (r *Repository) RecordPayment(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if updates == nil {
		updates = map[string]any{}
	}
	updates["updated_at"] = time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&models.Checkout{}).
		Where("id = ?", id).
		UpdateColumns(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkFinalized flips is_finalized exactly once. The WHERE clause on the
// previous value is the at-most-once guard; losing it means another request
// already finalized this checkout.
func (r *Repository) MarkFinalized(ctx context.Context, id uuid.UUID, orderID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.Checkout{}).
		Where("id = ? AND is_finalized = ?", id, false).
		UpdateColumns(map[string]any{
			"is_finalized": true,
			"order_id":     orderID,
			"updated_at":   time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAlreadyFinalized
	}
	return nil
}
