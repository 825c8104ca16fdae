package checkout

import (
	"context"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/boxport/boxport-backend/internal/orders"
	"github.com/boxport/boxport-backend/internal/payments"
	"github.com/boxport/boxport-backend/pkg/enums"
	pkgerrors "github.com/boxport/boxport-backend/pkg/errors"
	"github.com/boxport/boxport-backend/pkg/metrics"
)

type scriptedCheckouts struct {
	calls       *[]string
	checkout    *CheckoutDTO
	order       *orders.OrderDTO
	createErr   error
	payErr      error
	finalizeErr error

	payCheckoutID      uuid.UUID
	finalizeCheckoutID uuid.UUID
	payInput           PayInput
}

func (s *scriptedCheckouts) Create(ctx context.Context, ownerID string, input CreateInput) (*CheckoutDTO, error) {
	*s.calls = append(*s.calls, "create_checkout")
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.checkout, nil
}

func (s *scriptedCheckouts) Pay(ctx context.Context, ownerID string, id uuid.UUID, input PayInput) (*CheckoutDTO, error) {
	*s.calls = append(*s.calls, "record_payment")
	s.payCheckoutID = id
	s.payInput = input
	if s.payErr != nil {
		return nil, s.payErr
	}
	return s.checkout, nil
}

func (s *scriptedCheckouts) Finalize(ctx context.Context, ownerID string, id uuid.UUID) (*orders.OrderDTO, error) {
	*s.calls = append(*s.calls, "finalize")
	s.finalizeCheckoutID = id
	if s.finalizeErr != nil {
		return nil, s.finalizeErr
	}
	return s.order, nil
}

type scriptedPayments struct {
	calls      *[]string
	intent     *payments.IntentDTO
	confirmErr error

	intentCheckoutID uuid.UUID
	confirmedMethod  string
}

func (s *scriptedPayments) CreatePaymentMethod(ctx context.Context, card payments.CardInput) (string, error) {
	*s.calls = append(*s.calls, "create_payment_method")
	return "pm_1", nil
}

func (s *scriptedPayments) CreateIntent(ctx context.Context, input payments.CreateIntentInput) (*payments.IntentDTO, error) {
	*s.calls = append(*s.calls, "create_intent")
	s.intentCheckoutID = input.CheckoutID
	return s.intent, nil
}

func (s *scriptedPayments) Confirm(ctx context.Context, input payments.ConfirmInput) (*payments.IntentDTO, error) {
	*s.calls = append(*s.calls, "confirm_payment")
	s.confirmedMethod = input.PaymentMethodID
	if s.confirmErr != nil {
		return nil, s.confirmErr
	}
	confirmed := *s.intent
	confirmed.Status = "succeeded"
	return &confirmed, nil
}

func submitInput() SubmitInput {
	return SubmitInput{
		Card: payments.CardInput{
			Number:   "4242424242424242",
			ExpMonth: 12,
			ExpYear:  2030,
			CVC:      "314",
		},
		Checkout: CreateInput{
			ShippingAddress: ukAddress(),
			ShippingMethod:  "express",
		},
	}
}

func newWorkflowFixture(t *testing.T, checkouts *scriptedCheckouts, broker *scriptedPayments) *Workflow {
	t.Helper()
	wf, err := NewWorkflow(WorkflowParams{
		Checkouts: checkouts,
		Payments:  broker,
		Metrics:   metrics.NewWorkflowMetrics(nil),
		Logger:    testLogger(),
	})
	if err != nil {
		t.Fatalf("NewWorkflow failed: %v", err)
	}
	return wf
}

func happyCheckout() *CheckoutDTO {
	email := "dana@example.com"
	return &CheckoutDTO{
		ID:           uuid.New(),
		TotalPrice:   decimal.RequireFromString("92.49"),
		Currency:     enums.CurrencyUSD,
		ContactEmail: &email,
	}
}

func TestSubmitRunsStepsInOrder(t *testing.T) {
	calls := []string{}
	checkoutDTO := happyCheckout()
	chargeID := "ch_1"
	checkouts := &scriptedCheckouts{
		calls:    &calls,
		checkout: checkoutDTO,
		order:    &orders.OrderDTO{ID: uuid.New(), Status: enums.OrderStatusProcessing},
	}
	broker := &scriptedPayments{
		calls: &calls,
		intent: &payments.IntentDTO{
			ID:       "pi_1",
			Status:   "requires_confirmation",
			Amount:   decimal.RequireFromString("92.49"),
			Currency: "usd",
			ChargeID: &chargeID,
		},
	}
	wf := newWorkflowFixture(t, checkouts, broker)

	result, err := wf.Submit(context.Background(), "owner-1", submitInput())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	want := []string{
		"create_payment_method",
		"create_checkout",
		"create_intent",
		"confirm_payment",
		"record_payment",
		"finalize",
	}
	if !reflect.DeepEqual(calls, want) {
		t.Fatalf("expected steps %v, got %v", want, calls)
	}
	if result.Status != "succeeded" {
		t.Fatalf("expected succeeded, got %q", result.Status)
	}
	if result.Order == nil {
		t.Fatal("expected the created order in the result")
	}
	if result.CheckoutID == nil || *result.CheckoutID != checkoutDTO.ID {
		t.Fatalf("expected checkout id %s, got %v", checkoutDTO.ID, result.CheckoutID)
	}
}

func TestSubmitThreadsCheckoutIDThroughSteps(t *testing.T) {
	calls := []string{}
	checkoutDTO := happyCheckout()
	checkouts := &scriptedCheckouts{
		calls:    &calls,
		checkout: checkoutDTO,
		order:    &orders.OrderDTO{ID: uuid.New()},
	}
	broker := &scriptedPayments{
		calls: &calls,
		intent: &payments.IntentDTO{
			ID:       "pi_1",
			Amount:   decimal.RequireFromString("92.49"),
			Currency: "usd",
		},
	}
	wf := newWorkflowFixture(t, checkouts, broker)

	if _, err := wf.Submit(context.Background(), "owner-1", submitInput()); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if broker.intentCheckoutID != checkoutDTO.ID {
		t.Fatalf("intent should carry the checkout id, got %s", broker.intentCheckoutID)
	}
	if broker.confirmedMethod != "pm_1" {
		t.Fatalf("confirm should use the created payment method, got %q", broker.confirmedMethod)
	}
	if checkouts.payCheckoutID != checkoutDTO.ID {
		t.Fatalf("pay should target the checkout, got %s", checkouts.payCheckoutID)
	}
	if checkouts.payInput.PaymentIntentID != "pi_1" || checkouts.payInput.PaymentMethodID != "pm_1" {
		t.Fatalf("pay should carry processor refs, got %+v", checkouts.payInput)
	}
	if checkouts.finalizeCheckoutID != checkoutDTO.ID {
		t.Fatalf("finalize should target the checkout, got %s", checkouts.finalizeCheckoutID)
	}
}

func TestSubmitStopsWhenCheckoutCreationFails(t *testing.T) {
	calls := []string{}
	checkouts := &scriptedCheckouts{
		calls:     &calls,
		createErr: pkgerrors.New(pkgerrors.CodeValidation, "cart is empty"),
	}
	broker := &scriptedPayments{calls: &calls}
	wf := newWorkflowFixture(t, checkouts, broker)

	result, err := wf.Submit(context.Background(), "owner-1", submitInput())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	want := []string{"create_payment_method", "create_checkout"}
	if !reflect.DeepEqual(calls, want) {
		t.Fatalf("later steps must not run, got %v", calls)
	}
	if result.Status != "failed" {
		t.Fatalf("expected failed, got %q", result.Status)
	}
	if result.FailedStep != string(StepCreateCheckout) {
		t.Fatalf("expected failed step create_checkout, got %q", result.FailedStep)
	}
	if result.FailureReason != "cart is empty" {
		t.Fatalf("expected failure reason from the step error, got %q", result.FailureReason)
	}
	if result.CheckoutID != nil {
		t.Fatal("no checkout id when creation never succeeded")
	}
}

func TestSubmitStopsOnDeclinedCard(t *testing.T) {
	calls := []string{}
	checkoutDTO := happyCheckout()
	checkouts := &scriptedCheckouts{
		calls:    &calls,
		checkout: checkoutDTO,
	}
	broker := &scriptedPayments{
		calls: &calls,
		intent: &payments.IntentDTO{
			ID:       "pi_1",
			Amount:   decimal.RequireFromString("92.49"),
			Currency: "usd",
		},
		confirmErr: pkgerrors.New(pkgerrors.CodePayment, "payment was declined"),
	}
	wf := newWorkflowFixture(t, checkouts, broker)

	result, err := wf.Submit(context.Background(), "owner-1", submitInput())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	want := []string{"create_payment_method", "create_checkout", "create_intent", "confirm_payment"}
	if !reflect.DeepEqual(calls, want) {
		t.Fatalf("record and finalize must not run after a decline, got %v", calls)
	}
	if result.Status != "failed" || result.FailedStep != string(StepConfirmPayment) {
		t.Fatalf("expected confirm_payment failure, got %+v", result)
	}
	if result.FailureReason != "payment was declined" {
		t.Fatalf("expected decline reason, got %q", result.FailureReason)
	}
	if result.CheckoutID == nil || *result.CheckoutID != checkoutDTO.ID {
		t.Fatal("the draft checkout id should surface so the client can retry payment")
	}
}

func TestSubmitRecordsStepDurations(t *testing.T) {
	calls := []string{}
	checkouts := &scriptedCheckouts{
		calls:    &calls,
		checkout: happyCheckout(),
		order:    &orders.OrderDTO{ID: uuid.New()},
	}
	broker := &scriptedPayments{
		calls: &calls,
		intent: &payments.IntentDTO{
			ID:       "pi_1",
			Amount:   decimal.RequireFromString("92.49"),
			Currency: "usd",
		},
	}
	reg := prometheus.NewRegistry()
	wf, err := NewWorkflow(WorkflowParams{
		Checkouts: checkouts,
		Payments:  broker,
		Metrics:   metrics.NewWorkflowMetrics(reg),
		Logger:    testLogger(),
	})
	if err != nil {
		t.Fatalf("NewWorkflow failed: %v", err)
	}

	if _, err := wf.Submit(context.Background(), "owner-1", submitInput()); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != "checkout_step_duration_seconds" {
			continue
		}
		if got := len(mf.GetMetric()); got != len(steps) {
			t.Fatalf("expected one duration series per step, got %d", got)
		}
		for _, metric := range mf.GetMetric() {
			if metric.GetHistogram().GetSampleCount() != 1 {
				t.Fatalf("expected one observation per step, got %+v", metric)
			}
		}
		return
	}
	t.Fatal("checkout_step_duration_seconds was not registered")
}

func TestSubmitRequiresOwner(t *testing.T) {
	calls := []string{}
	wf := newWorkflowFixture(t, &scriptedCheckouts{calls: &calls}, &scriptedPayments{calls: &calls})

	_, err := wf.Submit(context.Background(), "", submitInput())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for missing owner, got %v", err)
	}
	if len(calls) != 0 {
		t.Fatalf("no steps should run without an owner, got %v", calls)
	}
}
