package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"paracord-hq/gateway/pkg/proxy/types"
)

// RecoveryMiddleware turns a handler panic into a 500 with the standard
// error body and logs the stack. http.ErrAbortHandler is re-raised so the
// server aborts the connection as intended.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			slog.ErrorContext(r.Context(), "panic in handler",
				"error", rec,
				"request_id", w.Header().Get(RequestIDHeader),
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)
			_ = types.WriteError(w, types.ErrInternal)
		}()

		next.ServeHTTP(w, r)
	})
}
