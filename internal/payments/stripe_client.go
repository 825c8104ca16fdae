package payments

import (
	"context"

	"github.com/stripe/stripe-go/v84"

	pkgstripe "github.com/boxport/boxport-backend/pkg/stripe"
)

// StripePaymentClient exposes the subset of Stripe operations required by the payment service.
type StripePaymentClient interface {
	CreatePaymentMethod(ctx context.Context, params *stripe.PaymentMethodCreateParams) (*stripe.PaymentMethod, error)
	CreateIntent(ctx context.Context, params *stripe.PaymentIntentCreateParams) (*stripe.PaymentIntent, error)
	ConfirmIntent(ctx context.Context, id string, params *stripe.PaymentIntentConfirmParams) (*stripe.PaymentIntent, error)
	GetIntent(ctx context.Context, id string, params *stripe.PaymentIntentRetrieveParams) (*stripe.PaymentIntent, error)
	CancelIntent(ctx context.Context, id string, params *stripe.PaymentIntentCancelParams) (*stripe.PaymentIntent, error)
}

type stripeClientWrapper struct {
	api *stripe.Client
}

// NewStripeClient wraps the provided Stripe client so the payment service can
// be tested. All calls go through the wrapped client, which carries the
// configured request timeout.
func NewStripeClient(api *pkgstripe.Client) StripePaymentClient {
	if api == nil || api.API() == nil {
		return nil
	}
	return &stripeClientWrapper{api: api.API()}
}

func (w *stripeClientWrapper) CreatePaymentMethod(ctx context.Context, params *stripe.PaymentMethodCreateParams) (*stripe.PaymentMethod, error) {
	return w.api.V1PaymentMethods.Create(ctx, params)
}

func (w *stripeClientWrapper) CreateIntent(ctx context.Context, params *stripe.PaymentIntentCreateParams) (*stripe.PaymentIntent, error) {
	return w.api.V1PaymentIntents.Create(ctx, params)
}

func (w *stripeClientWrapper) ConfirmIntent(ctx context.Context, id string, params *stripe.PaymentIntentConfirmParams) (*stripe.PaymentIntent, error) {
	return w.api.V1PaymentIntents.Confirm(ctx, id, params)
}

func (w *stripeClientWrapper) GetIntent(ctx context.Context, id string, params *stripe.PaymentIntentRetrieveParams) (*stripe.PaymentIntent, error) {
	return w.api.V1PaymentIntents.Retrieve(ctx, id, params)
}

func (w *stripeClientWrapper) CancelIntent(ctx context.Context, id string, params *stripe.PaymentIntentCancelParams) (*stripe.PaymentIntent, error) {
	return w.api.V1PaymentIntents.Cancel(ctx, id, params)
}
