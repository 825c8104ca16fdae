package pricing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/boxport/boxport-backend/pkg/db/models"
	"github.com/boxport/boxport-backend/pkg/enums"
)

// Repository exposes persistence for per-country product prices.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindPrice loads the price row for a product in the given destination country.
func (r *Repository) FindPrice(ctx context.Context, productID uuid.UUID, country enums.Country) (*models.ProductPrice, error) {
	var price models.ProductPrice
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND country = ?", productID, country).
		First(&price).Error; err != nil {
		return nil, err
	}
	return &price, nil
}

// ListPricesByProduct returns every configured price row for the product.
func (r *Repository) ListPricesByProduct(ctx context.Context, productID uuid.UUID) ([]models.ProductPrice, error) {
	var prices []models.ProductPrice
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("country asc").
		Find(&prices).Error; err != nil {
		return nil, err
	}
	return prices, nil
}

// UpsertPrice inserts or overwrites the price for (product, country).
func (r *Repository) UpsertPrice(ctx context.Context, price *models.ProductPrice) (*models.ProductPrice, error) {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "country"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
		}).
		Create(price).Error; err != nil {
		return nil, err
	}
	return price, nil
}

// DeletePrice removes one price row.
func (r *Repository) DeletePrice(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ProductPrice{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
