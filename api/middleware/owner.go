package middleware

import (
	"net/http"
	"strings"

	"github.com/boxport/boxport-backend/api/responses"
	pkgerrors "github.com/boxport/boxport-backend/pkg/errors"
	"github.com/boxport/boxport-backend/pkg/logger"
)

const guestIDHeader = "X-Guest-Id"

// ResolveOwner picks the cart owner for the request: the authenticated user
// id when present, the X-Guest-Id header otherwise. Requests with neither
// identity are rejected.
func ResolveOwner(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			owner := UserIDFromContext(ctx)
			if owner == "" {
				owner = strings.TrimSpace(r.Header.Get(guestIDHeader))
			}
			if owner == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in or supply a guest id"))
				return
			}

			ctx = WithOwnerID(ctx, owner)
			if logg != nil {
				ctx = logg.WithOwnerID(ctx, owner)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
