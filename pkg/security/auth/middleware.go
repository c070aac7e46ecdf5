package auth

import (
	"context"
	"log/slog"
	"net/http"

	"paracord-hq/gateway/pkg/proxy/types"
)

type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the caller stored by RequireAdmin.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok
}

// RequireAdmin rejects requests that are not from an administrator session.
func RequireAdmin(e *Extractor) func(http.Handler) http.Handler {
	return require(e.ResolveAdmin)
}

func require(resolve func(*http.Request) (*Principal, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := resolve(r)
			if err != nil {
				if types.KindOf(err) == types.KindInternal {
					slog.ErrorContext(r.Context(), "authentication failed", "error", err, "path", r.URL.Path)
				} else {
					slog.DebugContext(r.Context(), "request not authenticated", "error", err, "path", r.URL.Path)
				}
				_ = types.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}
