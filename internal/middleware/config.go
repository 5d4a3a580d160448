package middleware

import (
	"net/http"

	"github.com/templui/storyloom/internal/config"
	"github.com/templui/storyloom/internal/ctxkeys"
)

// Config middleware adds the sanitized app configuration to the request context.
// Secrets such as JWTSecret and the database connection are excluded.
func Config(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := ctxkeys.WithConfig(r.Context(), cfg.Sanitized())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
func configFrom(r *http.Request) *config.Config {
	return ctxkeys.Config(r.Context())
}
