package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is the server-persisted cart for one owner. OwnerID is either a user
// id or a client-generated guest id; mutations are last-write-wins per owner.
type Cart struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID    string          `gorm:"column:owner_id;not null;uniqueIndex"`
	TotalPrice decimal.Decimal `gorm:"column:total_price;type:numeric(10,2);not null;default:0"`
	Items      []CartItem      `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
