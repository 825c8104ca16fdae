package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/boxport/boxport-backend/pkg/db/models"
	"github.com/boxport/boxport-backend/pkg/enums"
	"github.com/boxport/boxport-backend/pkg/types"
)

// CreateInput captures the payload for opening a checkout from the owner's
// cart.
type CreateInput struct {
	ShippingAddress types.Address `json:"shipping_address" validate:"required"`
	ShippingMethod  string        `json:"shipping_method" validate:"required"`
	ContactEmail    string        `json:"contact_email,omitempty"`
}

// PayInput records the processor outcome against the checkout. Only
// processor references land here, never card data.
type PayInput struct {
	PaymentIntentID string          `json:"payment_intent_id" validate:"required"`
	PaymentMethodID string          `json:"payment_method_id" validate:"required"`
	ChargeID        *string         `json:"charge_id,omitempty"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	PaidCurrency    string          `json:"paid_currency" validate:"required"`
	ContactEmail    string          `json:"contact_email,omitempty"`
}

// CheckoutDTO is the transport shape for one checkout.
type CheckoutDTO struct {
	ID              uuid.UUID            `json:"id"`
	Items           []types.LineItem     `json:"items"`
	ShippingAddress types.Address        `json:"shipping_address"`
	Destination     enums.Country        `json:"destination"`
	ShippingMethod  enums.ShippingMethod `json:"shipping_method"`
	Subtotal        decimal.Decimal      `json:"subtotal"`
	ShippingCost    decimal.Decimal      `json:"shipping_cost"`
	ProcessingFee   decimal.Decimal      `json:"processing_fee"`
	TotalPrice      decimal.Decimal      `json:"total_price"`
	Currency        enums.Currency       `json:"currency"`
	PaymentStatus   enums.PaymentStatus  `json:"payment_status"`
	PaymentIntentID *string              `json:"payment_intent_id,omitempty"`
	ContactEmail    *string              `json:"contact_email,omitempty"`
	IsFinalized     bool                 `json:"is_finalized"`
	OrderID         *uuid.UUID           `json:"order_id,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// FromModel maps the persistence model to its DTO.
func FromModel(c *models.Checkout) *CheckoutDTO {
	if c == nil {
		return nil
	}
	return &CheckoutDTO{
		ID:              c.ID,
		Items:           append([]types.LineItem(nil), c.Items...),
		ShippingAddress: c.ShippingAddress,
		Destination:     c.Destination,
		ShippingMethod:  c.ShippingMethod,
		Subtotal:        c.Subtotal,
		ShippingCost:    c.ShippingCost,
		ProcessingFee:   c.ProcessingFee,
		TotalPrice:      c.TotalPrice,
		Currency:        c.Currency,
		PaymentStatus:   c.PaymentStatus,
		PaymentIntentID: c.PaymentIntentID,
		ContactEmail:    c.ContactEmail,
		IsFinalized:     c.IsFinalized,
		OrderID:         c.OrderID,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
