package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a shippable catalog item. The destination-dependent price lives
// in the Prices association, keyed by a closed country set.
type Product struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string         `gorm:"column:name;not null"`
	Description *string        `gorm:"column:description"`
	Size        string         `gorm:"column:size;not null"`
	CategoryID  uuid.UUID      `gorm:"column:category_id;type:uuid;not null"`
	Category    *Category      `gorm:"foreignKey:CategoryID"`
	ImageURL    *string        `gorm:"column:image_url"`
	IsActive    bool           `gorm:"column:is_active;not null;default:true"`
	Prices      []ProductPrice `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
