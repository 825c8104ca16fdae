package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	checkoutsvc "github.com/boxport/boxport-backend/internal/checkout"
	"github.com/boxport/boxport-backend/internal/orders"
	pkgerrors "github.com/boxport/boxport-backend/pkg/errors"
)

type stubCheckoutService struct {
	dto   *checkoutsvc.CheckoutDTO
	order *orders.OrderDTO
	err   error
}

func (s *stubCheckoutService) Create(ctx context.Context, ownerID string, input checkoutsvc.CreateInput) (*checkoutsvc.CheckoutDTO, error) {
	return s.dto, s.err
}

func (s *stubCheckoutService) Get(ctx context.Context, ownerID string, id uuid.UUID) (*checkoutsvc.CheckoutDTO, error) {
	return s.dto, s.err
}

func (s *stubCheckoutService) Pay(ctx context.Context, ownerID string, id uuid.UUID, input checkoutsvc.PayInput) (*checkoutsvc.CheckoutDTO, error) {
	return s.dto, s.err
}

func (s *stubCheckoutService) Finalize(ctx context.Context, ownerID string, id uuid.UUID) (*orders.OrderDTO, error) {
	return s.order, s.err
}

type stubSubmitter struct {
	result *checkoutsvc.SubmitResult
	err    error
}

func (s *stubSubmitter) Submit(ctx context.Context, ownerID string, input checkoutsvc.SubmitInput) (*checkoutsvc.SubmitResult, error) {
	return s.result, s.err
}

const createCheckoutBody = `{
	"shipping_address": {
		"full_name": "Ada Smith",
		"line1": "1 Beacon Row",
		"city": "London",
		"postal_code": "N1 7AA",
		"country": "uk",
		"email": "ada@example.com"
	},
	"shipping_method": "express"
}`

func TestCheckoutCreateRequiresOwner(t *testing.T) {
	handler := CheckoutCreate(&stubCheckoutService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(createCheckoutBody))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCheckoutCreateSuccess(t *testing.T) {
	id := uuid.New()
	stub := &stubCheckoutService{dto: &checkoutsvc.CheckoutDTO{ID: id}}
	handler := CheckoutCreate(stub, nil)

	req := withOwner(httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(createCheckoutBody)), "guest-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data checkoutsvc.CheckoutDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != id {
		t.Fatalf("unexpected checkout id %s", envelope.Data.ID)
	}
}

func TestCheckoutFinalizeWrapsOrder(t *testing.T) {
	orderID := uuid.New()
	stub := &stubCheckoutService{order: &orders.OrderDTO{ID: orderID}}
	handler := CheckoutFinalize(stub, nil)

	req := requestWithURLParam(t, http.MethodPost, "/api/checkout/"+uuid.NewString()+"/finalize", "id", uuid.NewString())
	req = withOwner(req, "guest-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data struct {
			Order *orders.OrderDTO `json:"order"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Order == nil || envelope.Data.Order.ID != orderID {
		t.Fatalf("unexpected order payload: %+v", envelope.Data.Order)
	}
}

func TestCheckoutFinalizeReplayConflict(t *testing.T) {
	stub := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "checkout already finalized")}
	handler := CheckoutFinalize(stub, nil)

	req := requestWithURLParam(t, http.MethodPost, "/api/checkout/"+uuid.NewString()+"/finalize", "id", uuid.NewString())
	req = withOwner(req, "guest-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestCheckoutSubmitReportsFailedStepAsBodyNotError(t *testing.T) {
	checkoutID := uuid.New()
	stub := &stubSubmitter{result: &checkoutsvc.SubmitResult{
		Status:        "failed",
		CheckoutID:    &checkoutID,
		FailedStep:    "confirm_payment",
		FailureReason: "payment was declined",
	}}
	handler := CheckoutSubmit(stub, nil)

	body := `{
		"card": {"number": "4000000000000002", "exp_month": 12, "exp_year": 2030, "cvc": "123"},
		"checkout": ` + createCheckoutBody + `
	}`
	req := withOwner(httptest.NewRequest(http.MethodPost, "/api/checkout/submit", strings.NewReader(body)), "guest-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data checkoutsvc.SubmitResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Status != "failed" {
		t.Fatalf("unexpected status %q", envelope.Data.Status)
	}
	if envelope.Data.FailedStep != "confirm_payment" {
		t.Fatalf("unexpected failed step %q", envelope.Data.FailedStep)
	}
	if envelope.Data.CheckoutID == nil || *envelope.Data.CheckoutID != checkoutID {
		t.Fatal("expected the surviving checkout id so the client can retry payment")
	}
}
