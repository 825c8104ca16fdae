package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/boxport/boxport-backend/api/responses"
	"github.com/boxport/boxport-backend/api/validators"
	"github.com/boxport/boxport-backend/internal/pricing"
	pkgerrors "github.com/boxport/boxport-backend/pkg/errors"
	"github.com/boxport/boxport-backend/pkg/logger"
)

type priceAdmin interface {
	ListForProduct(ctx context.Context, productID uuid.UUID) ([]pricing.PriceDTO, error)
	Upsert(ctx context.Context, productID uuid.UUID, input pricing.UpsertPriceInput) (*pricing.PriceDTO, error)
	Delete(ctx context.Context, productID uuid.UUID, rawCountry string) error
}

func AdminListPrices(svc priceAdmin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		productID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		prices, err := svc.ListForProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string][]pricing.PriceDTO{
			"prices": prices,
		})
	}
}

// AdminUpsertPrice sets one destination price. Repeated calls for the same
// country replace the amount rather than stacking rows.
func AdminUpsertPrice(svc priceAdmin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		productID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body pricing.UpsertPriceInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price, err := svc.Upsert(r.Context(), productID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, price)
	}
}

func AdminDeletePrice(svc priceAdmin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		productID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		country := validators.SanitizeString(chi.URLParam(r, "country"), 32)
		if country == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "country required"))
			return
		}

		if err := svc.Delete(r.Context(), productID, country); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
