package controllers

import (
	"context"
	"net/http"

	"github.com/boxport/boxport-backend/api/responses"
	"github.com/boxport/boxport-backend/internal/catalog"
	pkgerrors "github.com/boxport/boxport-backend/pkg/errors"
	"github.com/boxport/boxport-backend/pkg/logger"
)

type categoryReader interface {
	ListCategories(ctx context.Context) ([]catalog.CategoryDTO, error)
}

func ListCategories(svc categoryReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string][]catalog.CategoryDTO{
			"categories": categories,
		})
	}
}
