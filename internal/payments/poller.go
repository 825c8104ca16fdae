package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/boxport/boxport-backend/pkg/errors"
	"github.com/boxport/boxport-backend/pkg/logger"
)

// StatusFetcher is the read surface the poller needs.
type StatusFetcher interface {
	Status(ctx context.Context, intentID string) (*IntentDTO, error)
}

// Poller watches a payment intent until it reaches a terminal status.
// Polling stops on success, cancellation, or context expiry; it never
// retries a failed fetch beyond the next tick.
type Poller struct {
	payments StatusFetcher
	interval time.Duration
	logg     *logger.Logger
}

// NewPoller builds a poller that checks the intent on a fixed interval.
func NewPoller(payments StatusFetcher, interval time.Duration, logg *logger.Logger) (*Poller, error) {
	if payments == nil {
		return nil, fmt.Errorf("status fetcher required")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Poller{payments: payments, interval: interval, logg: logg}, nil
}

// WaitForTerminal polls the intent until it is succeeded or canceled.
func (p *Poller) WaitForTerminal(ctx context.Context, intentID string) (*IntentDTO, error) {
	if intentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "intent id required")
	}

	ctx = p.logg.WithField(ctx, "intent_id", intentID)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		dto, err := p.payments.Status(ctx, intentID)
		if err != nil {
			return nil, err
		}
		if isTerminal(dto.Status) {
			p.logg.Info(ctx, "payment intent reached terminal status "+dto.Status)
			return dto, nil
		}

		select {
		case <-ctx.Done():
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, ctx.Err(), "payment status polling aborted")
		case <-ticker.C:
		}
	}
}

func isTerminal(status string) bool {
	switch stripe.PaymentIntentStatus(status) {
	case stripe.PaymentIntentStatusSucceeded, stripe.PaymentIntentStatusCanceled:
		return true
	}
	return false
}
