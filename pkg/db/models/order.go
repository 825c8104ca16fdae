package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/boxport/boxport-backend/pkg/enums"
	"github.com/boxport/boxport-backend/pkg/types"
)

// Order is the durable record materialized from exactly one paid checkout.
// Immutable after creation except for Status, which administrators advance.
type Order struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CheckoutID      uuid.UUID            `gorm:"column:checkout_id;type:uuid;not null;uniqueIndex"`
	OwnerID         string               `gorm:"column:owner_id;not null;index"`
	Status          enums.OrderStatus    `gorm:"column:status;not null;default:'processing'"`
	ShippingAddress types.Address        `gorm:"column:shipping_address;type:jsonb;serializer:json;not null"`
	Destination     enums.Country        `gorm:"column:destination;not null"`
	ShippingMethod  enums.ShippingMethod `gorm:"column:shipping_method;not null"`
	TotalPrice      decimal.Decimal      `gorm:"column:total_price;type:numeric(10,2);not null"`
	Currency        enums.Currency       `gorm:"column:currency;not null;default:'usd'"`
	ChargeID        *string              `gorm:"column:charge_id"`
	Items           []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
