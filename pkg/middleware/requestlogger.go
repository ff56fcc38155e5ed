package middleware

import (
	"log/slog"
	"net/http"

	"github.com/limosnd/Marketplace-go-grahpql/pkg/logger"
)

// UserEmailHeader lets a fronting proxy name the user when no identity
// function is configured.
const UserEmailHeader = "X-User-Email"

// IdentityFunc returns the email of the signed-in user, or "".
type IdentityFunc func(r *http.Request) string

// RequestLogger returns middleware that builds a request-scoped logger enriched
// with correlation_id, user_email, trace_id, and span_id, then stores it in
// context via logger.NewContext.
//
// Mount it after RequestLogging (which sets correlation_id) and Tracing
// (which sets the span context).
func RequestLogger(base *slog.Logger, identity IdentityFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var email string
			if identity != nil {
				email = identity(r)
			}
			if email == "" {
				email = r.Header.Get(UserEmailHeader)
			}
			if email != "" {
				ctx = logger.WithUserEmail(ctx, email)
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
