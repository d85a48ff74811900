package middleware

import (
	"log/slog"
	"net/http"

	"github.com/sugat009/ecommerce-site-with-graphql/pkg/logger"
)

// RequestLogger stores a request-scoped logger in the context. It carries the
// correlation id, trace and span ids, method and path, so anything logged
// through logger.FromContext can be tied back to the request.
//
// Mount it after RequestLogging and Tracing.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.WithContext(ctx, base).With(
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
			next.ServeHTTP(w, r.WithContext(logger.NewContext(ctx, l)))
		})
	}
}
