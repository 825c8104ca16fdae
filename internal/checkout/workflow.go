package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/boxport/boxport-backend/internal/orders"
	"github.com/boxport/boxport-backend/internal/payments"
	pkgerrors "github.com/boxport/boxport-backend/pkg/errors"
	"github.com/boxport/boxport-backend/pkg/logger"
	"github.com/boxport/boxport-backend/pkg/metrics"
)

// Step identifies one stage of the checkout submission workflow.
type Step string

const (
	StepCreatePaymentMethod Step = "create_payment_method"
	StepCreateCheckout      Step = "create_checkout"
	StepCreateIntent        Step = "create_intent"
	StepConfirmPayment      Step = "confirm_payment"
	StepRecordPayment       Step = "record_payment"
	StepFinalize            Step = "finalize"
)

// steps is the fixed execution order. Submit never reorders or skips ahead.
var steps = []Step{
	StepCreatePaymentMethod,
	StepCreateCheckout,
	StepCreateIntent,
	StepConfirmPayment,
	StepRecordPayment,
	StepFinalize,
}

// Phase tags the workflow state union.
type Phase string

const (
	PhaseRunning   Phase = "running"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
)

// WorkflowState is a tagged union over Phase. While running it accumulates
// the identifiers produced so far; a terminal phase freezes them. Only
// transition mutates it.
type WorkflowState struct {
	Phase           Phase
	Current         Step
	PaymentMethodID string
	Checkout        *CheckoutDTO
	Intent          *payments.IntentDTO
	Order           *orders.OrderDTO
	FailedStep      Step
	FailureReason   string
}

type stepOutcome struct {
	step            Step
	err             error
	paymentMethodID string
	checkout        *CheckoutDTO
	intent          *payments.IntentDTO
	order           *orders.OrderDTO
}

// transition folds one step outcome into the state. A step error is terminal
// for the whole workflow; there are no retries inside a submission.
func transition(state WorkflowState, outcome stepOutcome) WorkflowState {
	if outcome.err != nil {
		state.Phase = PhaseFailed
		state.FailedStep = outcome.step
		state.FailureReason = failureReason(outcome.err)
		return state
	}

	switch outcome.step {
	case StepCreatePaymentMethod:
		state.PaymentMethodID = outcome.paymentMethodID
	case StepCreateCheckout:
		state.Checkout = outcome.checkout
	case StepCreateIntent:
		state.Intent = outcome.intent
	case StepConfirmPayment:
		state.Intent = outcome.intent
	case StepRecordPayment:
		state.Checkout = outcome.checkout
	case StepFinalize:
		state.Order = outcome.order
		state.Phase = PhaseSucceeded
	}
	state.Current = outcome.step
	return state
}

func failureReason(err error) string {
	if appErr := pkgerrors.As(err); appErr != nil {
		return appErr.Message()
	}
	return err.Error()
}

type checkoutOps interface {
	Create(ctx context.Context, ownerID string, input CreateInput) (*CheckoutDTO, error)
	Pay(ctx context.Context, ownerID string, id uuid.UUID, input PayInput) (*CheckoutDTO, error)
	Finalize(ctx context.Context, ownerID string, id uuid.UUID) (*orders.OrderDTO, error)
}

type paymentBroker interface {
	CreatePaymentMethod(ctx context.Context, card payments.CardInput) (string, error)
	CreateIntent(ctx context.Context, input payments.CreateIntentInput) (*payments.IntentDTO, error)
	Confirm(ctx context.Context, input payments.ConfirmInput) (*payments.IntentDTO, error)
}

// Workflow drives a full checkout submission from raw card details to a
// created order in one call.
type Workflow struct {
	checkouts checkoutOps
	payments  paymentBroker
	metrics   *metrics.WorkflowMetrics
	logg      *logger.Logger
	now       func() time.Time
}

// WorkflowParams bundles the dependencies required to build a workflow.
type WorkflowParams struct {
	Checkouts checkoutOps
	Payments  paymentBroker
	Metrics   *metrics.WorkflowMetrics
	Logger    *logger.Logger
	Now       func() time.Time
}

// NewWorkflow constructs the submission orchestrator.
func NewWorkflow(params WorkflowParams) (*Workflow, error) {
	if params.Checkouts == nil {
		return nil, fmt.Errorf("checkout service required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payment service required")
	}
	if params.Metrics == nil {
		return nil, fmt.Errorf("workflow metrics required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Workflow{
		checkouts: params.Checkouts,
		payments:  params.Payments,
		metrics:   params.Metrics,
		logg:      params.Logger,
		now:       now,
	}, nil
}

// SubmitInput carries everything one submission needs. Card details pass
// through to the processor and are never persisted.
type SubmitInput struct {
	Card     payments.CardInput `json:"card" validate:"required"`
	Checkout CreateInput        `json:"checkout" validate:"required"`
}

// SubmitResult is the terminal workflow state shaped for the API. A declined
// card is a failed result, not a transport error.
type SubmitResult struct {
	Status        string           `json:"status"`
	CheckoutID    *uuid.UUID       `json:"checkout_id,omitempty"`
	Order         *orders.OrderDTO `json:"order,omitempty"`
	FailedStep    string           `json:"failed_step,omitempty"`
	FailureReason string           `json:"failure_reason,omitempty"`
}

// Submit runs the six workflow steps in order, stopping at the first
// failure. The returned result reports either the created order or which
// step failed and why.
func (w *Workflow) Submit(ctx context.Context, ownerID string, input SubmitInput) (*SubmitResult, error) {
	if ownerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout owner required")
	}

	state := WorkflowState{Phase: PhaseRunning}
	for _, step := range steps {
		state = w.runStep(ctx, step, state, ownerID, input)
		if state.Phase == PhaseFailed {
			break
		}
	}

	switch state.Phase {
	case PhaseSucceeded:
		s := state
		return &SubmitResult{
			Status:     "succeeded",
			CheckoutID: &s.Checkout.ID,
			Order:      s.Order,
		}, nil
	case PhaseFailed:
		result := &SubmitResult{
			Status:        "failed",
			FailedStep:    string(state.FailedStep),
			FailureReason: state.FailureReason,
		}
		if state.Checkout != nil {
			result.CheckoutID = &state.Checkout.ID
		}
		return result, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout workflow ended in a non-terminal phase")
	}
}

func (w *Workflow) runStep(ctx context.Context, step Step, state WorkflowState, ownerID string, input SubmitInput) WorkflowState {
	stepCtx := w.logg.WithStep(w.logg.WithOwnerID(ctx, ownerID), string(step))
	started := w.now()

	outcome := w.execute(stepCtx, step, state, ownerID, input)

	w.metrics.ObserveDuration(string(step), w.now().Sub(started))
	if outcome.err != nil {
		w.metrics.IncFailure(string(step))
		w.logg.Error(stepCtx, "checkout step failed", outcome.err)
	} else {
		w.metrics.IncSuccess(string(step))
		w.logg.Info(stepCtx, "checkout step completed")
	}
	return transition(state, outcome)
}

func (w *Workflow) execute(ctx context.Context, step Step, state WorkflowState, ownerID string, input SubmitInput) stepOutcome {
	outcome := stepOutcome{step: step}

	switch step {
	case StepCreatePaymentMethod:
		outcome.paymentMethodID, outcome.err = w.payments.CreatePaymentMethod(ctx, input.Card)

	case StepCreateCheckout:
		outcome.checkout, outcome.err = w.checkouts.Create(ctx, ownerID, input.Checkout)

	case StepCreateIntent:
		outcome.intent, outcome.err = w.payments.CreateIntent(ctx, payments.CreateIntentInput{
			Amount:       state.Checkout.TotalPrice,
			Currency:     state.Checkout.Currency,
			CheckoutID:   state.Checkout.ID,
			ContactEmail: contactEmail(state.Checkout),
		})

	case StepConfirmPayment:
		outcome.intent, outcome.err = w.payments.Confirm(ctx, payments.ConfirmInput{
			IntentID:        state.Intent.ID,
			PaymentMethodID: state.PaymentMethodID,
		})

	case StepRecordPayment:
		outcome.checkout, outcome.err = w.checkouts.Pay(ctx, ownerID, state.Checkout.ID, PayInput{
			PaymentIntentID: state.Intent.ID,
			PaymentMethodID: state.PaymentMethodID,
			ChargeID:        state.Intent.ChargeID,
			PaidAmount:      state.Intent.Amount,
			PaidCurrency:    string(state.Intent.Currency),
		})

	case StepFinalize:
		outcome.order, outcome.err = w.checkouts.Finalize(ctx, ownerID, state.Checkout.ID)

	default:
		outcome.err = pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("unknown checkout step %q", step))
	}
	return outcome
}

func contactEmail(c *CheckoutDTO) string {
	if c.ContactEmail != nil {
		return *c.ContactEmail
	}
	return c.ShippingAddress.Email
}
