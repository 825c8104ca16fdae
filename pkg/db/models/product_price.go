package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/boxport/boxport-backend/pkg/enums"
)

// ProductPrice is one row of a product's per-destination price map.
type ProductPrice struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_product_prices_product_country"`
	Country   enums.Country   `gorm:"column:country;not null;uniqueIndex:idx_product_prices_product_country"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(10,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
