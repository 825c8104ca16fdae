package payments

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/boxport/boxport-backend/pkg/enums"
)

// IntentDTO is the transport shape for one payment intent.
type IntentDTO struct {
	ID           string          `json:"id"`
	ClientSecret string          `json:"client_secret,omitempty"`
	Status       string          `json:"status"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     enums.Currency  `json:"currency"`
	ChargeID     *string         `json:"charge_id,omitempty"`
}

// CardInput carries raw card details for tokenization. The values are passed
// straight to the processor and never persisted.
type CardInput struct {
	Number   string `json:"number" validate:"required"`
	ExpMonth int64  `json:"exp_month" validate:"required,min=1,max=12"`
	ExpYear  int64  `json:"exp_year" validate:"required"`
	CVC      string `json:"cvc" validate:"required"`
}

// CreateIntentInput captures what the processor needs to open an intent.
type CreateIntentInput struct {
	Amount       decimal.Decimal `json:"amount"`
	Currency     enums.Currency  `json:"currency"`
	CheckoutID   uuid.UUID       `json:"checkout_id"`
	ContactEmail string          `json:"contact_email,omitempty"`
}

// ConfirmInput binds a payment method to an intent for confirmation.
type ConfirmInput struct {
	IntentID        string `json:"intent_id" validate:"required"`
	PaymentMethodID string `json:"payment_method_id" validate:"required"`
}
