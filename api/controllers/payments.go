package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/boxport/boxport-backend/api/responses"
	"github.com/boxport/boxport-backend/api/validators"
	"github.com/boxport/boxport-backend/internal/payments"
	pkgerrors "github.com/boxport/boxport-backend/pkg/errors"
	"github.com/boxport/boxport-backend/pkg/logger"
)

type paymentService interface {
	CreatePaymentMethod(ctx context.Context, input payments.CardInput) (string, error)
	CreateIntent(ctx context.Context, input payments.CreateIntentInput) (*payments.IntentDTO, error)
	Confirm(ctx context.Context, input payments.ConfirmInput) (*payments.IntentDTO, error)
	Status(ctx context.Context, intentID string) (*payments.IntentDTO, error)
	Cancel(ctx context.Context, intentID string) (*payments.IntentDTO, error)
}

type intentWaiter interface {
	WaitForTerminal(ctx context.Context, intentID string) (*payments.IntentDTO, error)
}

func CreatePaymentIntent(svc paymentService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		var body payments.CreateIntentInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intent, err := svc.CreateIntent(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, intent)
	}
}

func ConfirmPayment(svc paymentService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		var body payments.ConfirmInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intent, err := svc.Confirm(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, intent)
	}
}

// PaymentStatus reports the current intent state. With ?wait=true it blocks
// until the intent reaches a terminal state or the request context expires.
func PaymentStatus(svc paymentService, poller intentWaiter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		intentID := validators.SanitizeString(chi.URLParam(r, "id"), 255)
		if intentID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "intent id required"))
			return
		}

		var (
			intent *payments.IntentDTO
			err    error
		)
		if r.URL.Query().Get("wait") == "true" && poller != nil {
			intent, err = poller.WaitForTerminal(r.Context(), intentID)
		} else {
			intent, err = svc.Status(r.Context(), intentID)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, intent)
	}
}

// CancelPayment voids an intent. The intent id travels in the body so the
// route stays a fixed path.
func CancelPayment(svc paymentService, logg *logger.Logger) http.HandlerFunc {
	type cancelRequest struct {
		IntentID string `json:"intent_id" validate:"required"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		var body cancelRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intentID := validators.SanitizeString(body.IntentID, 255)
		if intentID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "intent id required"))
			return
		}

		intent, err := svc.Cancel(r.Context(), intentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, intent)
	}
}
