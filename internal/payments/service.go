package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"

	"github.com/boxport/boxport-backend/pkg/enums"
	pkgerrors "github.com/boxport/boxport-backend/pkg/errors"
	"github.com/boxport/boxport-backend/pkg/logger"
)

// Service brokers payment intents with the processor. It owns the mapping
// from processor failures to typed errors; card declines become
// CodePayment so controllers answer 402 instead of 502.
type Service struct {
	client StripePaymentClient
	logg   *logger.Logger
}

// NewService builds a payment service around the Stripe client wrapper.
func NewService(client StripePaymentClient, logg *logger.Logger) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("stripe payment client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{client: client, logg: logg}, nil
}

// CreatePaymentMethod tokenizes raw card details and returns the processor's
// payment method id. Card data is passed through, never stored.
func (s *Service) CreatePaymentMethod(ctx context.Context, input CardInput) (string, error) {
	params := &stripe.PaymentMethodCreateParams{
		Type: stripe.String(string(stripe.PaymentMethodTypeCard)),
		Card: &stripe.PaymentMethodCreateCardParams{
			Number:   stripe.String(input.Number),
			ExpMonth: stripe.Int64(input.ExpMonth),
			ExpYear:  stripe.Int64(input.ExpYear),
			CVC:      stripe.String(input.CVC),
		},
	}

	method, err := s.client.CreatePaymentMethod(ctx, params)
	if err != nil {
		return "", mapStripeError(err, "create payment method")
	}
	return method.ID, nil
}

// CreateIntent opens a manual-confirmation intent for the checkout total.
func (s *Service) CreateIntent(ctx context.Context, input CreateIntentInput) (*IntentDTO, error) {
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if !input.Currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency")
	}

	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(toMinorUnits(input.Amount)),
		Currency: stripe.String(input.Currency.String()),
	}
	if input.CheckoutID != uuid.Nil {
		params.Metadata = map[string]string{"checkout_id": input.CheckoutID.String()}
	}
	if input.ContactEmail != "" {
		params.ReceiptEmail = stripe.String(input.ContactEmail)
	}

	intent, err := s.client.CreateIntent(ctx, params)
	if err != nil {
		return nil, mapStripeError(err, "create payment intent")
	}
	return fromStripeIntent(intent), nil
}

// Confirm attaches the payment method and confirms the intent.
func (s *Service) Confirm(ctx context.Context, input ConfirmInput) (*IntentDTO, error) {
	if input.IntentID == "" || input.PaymentMethodID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "intent id and payment method id required")
	}

	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(input.PaymentMethodID),
	}
	params.AddExpand("latest_charge")

	intent, err := s.client.ConfirmIntent(ctx, input.IntentID, params)
	if err != nil {
		return nil, mapStripeError(err, "confirm payment intent")
	}
	if intent.Status == stripe.PaymentIntentStatusRequiresPaymentMethod {
		s.logg.Warn(s.logg.WithField(ctx, "intent_id", intent.ID), "payment declined on confirm")
		return nil, pkgerrors.New(pkgerrors.CodePayment, "payment was declined")
	}
	return fromStripeIntent(intent), nil
}

// Status fetches the current state of the intent.
func (s *Service) Status(ctx context.Context, intentID string) (*IntentDTO, error) {
	if intentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "intent id required")
	}

	params := &stripe.PaymentIntentRetrieveParams{}
	params.AddExpand("latest_charge")

	intent, err := s.client.GetIntent(ctx, intentID, params)
	if err != nil {
		return nil, mapStripeError(err, "get payment intent")
	}
	return fromStripeIntent(intent), nil
}

// Cancel voids an unfinished intent.
func (s *Service) Cancel(ctx context.Context, intentID string) (*IntentDTO, error) {
	if intentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "intent id required")
	}

	intent, err := s.client.CancelIntent(ctx, intentID, &stripe.PaymentIntentCancelParams{})
	if err != nil {
		return nil, mapStripeError(err, "cancel payment intent")
	}
	return fromStripeIntent(intent), nil
}

func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func fromStripeIntent(intent *stripe.PaymentIntent) *IntentDTO {
	dto := &IntentDTO{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       string(intent.Status),
		Amount:       decimal.New(intent.Amount, -2),
		Currency:     enums.Currency(intent.Currency),
	}
	if intent.LatestCharge != nil && intent.LatestCharge.ID != "" {
		chargeID := intent.LatestCharge.ID
		dto.ChargeID = &chargeID
	}
	return dto
}

func mapStripeError(err error, op string) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch stripeErr.Type {
		case stripe.ErrorTypeCard:
			return pkgerrors.Wrap(pkgerrors.CodePayment, err, op)
		case stripe.ErrorTypeInvalidRequest:
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, op)
		}
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
