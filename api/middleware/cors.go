package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"

	"github.com/boxport/boxport-backend/pkg/config"
)

// CORS returns middleware that applies the API's allowed origin policy.
// Origins come from config as a comma-separated list; "*" opens the API up
// for local development.
func CORS(cfg config.AppConfig) func(http.Handler) http.Handler {
	origins := []string{"*"}
	if raw := strings.TrimSpace(cfg.AllowOrigins); raw != "" && raw != "*" {
		origins = origins[:0]
		for _, part := range strings.Split(raw, ",") {
			if origin := strings.TrimSpace(part); origin != "" {
				origins = append(origins, origin)
			}
		}
	}

	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Guest-Id", "Idempotency-Key", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
