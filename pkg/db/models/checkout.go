package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/boxport/boxport-backend/pkg/enums"
	"github.com/boxport/boxport-backend/pkg/types"
)

// Checkout is the server-side draft of one purchase attempt, created from a
// cart snapshot plus shipping details. Identity is immutable once created;
// the pay and finalize steps mutate it in place.
type Checkout struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID         string               `gorm:"column:owner_id;not null;index"`
	Items           types.LineItems      `gorm:"column:items;type:jsonb;serializer:json;not null"`
	ShippingAddress types.Address        `gorm:"column:shipping_address;type:jsonb;serializer:json;not null"`
	Destination     enums.Country        `gorm:"column:destination;not null"`
	ShippingMethod  enums.ShippingMethod `gorm:"column:shipping_method;not null;default:'standard'"`
	Subtotal        decimal.Decimal      `gorm:"column:subtotal;type:numeric(10,2);not null"`
	ShippingCost    decimal.Decimal      `gorm:"column:shipping_cost;type:numeric(10,2);not null"`
	ProcessingFee   decimal.Decimal      `gorm:"column:processing_fee;type:numeric(10,2);not null"`
	TotalPrice      decimal.Decimal      `gorm:"column:total_price;type:numeric(10,2);not null"`
	Currency        enums.Currency       `gorm:"column:currency;not null;default:'usd'"`
	PaymentStatus   enums.PaymentStatus  `gorm:"column:payment_status;not null;default:'unpaid'"`

	// Processor identifiers recorded at the pay step. Card data never lands here.
	PaymentIntentID *string          `gorm:"column:payment_intent_id"`
	PaymentMethodID *string          `gorm:"column:payment_method_id"`
	ChargeID        *string          `gorm:"column:charge_id"`
	PaidAmount      *decimal.Decimal `gorm:"column:paid_amount;type:numeric(10,2)"`
	PaidCurrency    *enums.Currency  `gorm:"column:paid_currency"`
	ContactEmail    *string          `gorm:"column:contact_email"`
	PaidAt          *time.Time       `gorm:"column:paid_at"`

	IsFinalized bool       `gorm:"column:is_finalized;not null;default:false"`
	OrderID     *uuid.UUID `gorm:"column:order_id;type:uuid"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
