package middleware

import (
	"net/http"
	"strings"
)

// DesktopOrigins are the origins used by the desktop client's webview.
var DesktopOrigins = []string{"tauri://localhost", "http://tauri.localhost"}

var (
	corsMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE"}
	corsHeaders = []string{"Authorization", "Content-Type", "Accept"}
)

// CORSPolicy is the resolved cross-origin policy.
type CORSPolicy struct {
	// Permissive accepts any origin without credentials.
	Permissive bool

	// AllowedOrigins is the exact-match allow-list in restrictive mode.
	AllowedOrigins []string

	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
}

// ResolveCORS decides the policy from configuration. A non-empty allow-list
// wins; otherwise a public URL (trailing '/' removed) is the single allowed
// origin. In both cases the desktop origins are appended. With neither the
// policy is permissive.
func ResolveCORS(allowed []string, publicURL string) *CORSPolicy {
	var origins []string
	for _, o := range allowed {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		if u := strings.TrimRight(strings.TrimSpace(publicURL), "/"); u != "" {
			origins = []string{u}
		}
	}

	if len(origins) == 0 {
		return &CORSPolicy{Permissive: true, AllowedMethods: corsMethods}
	}

	for _, d := range DesktopOrigins {
		if !contains(origins, d) {
			origins = append(origins, d)
		}
	}

	return &CORSPolicy{
		AllowedOrigins:   origins,
		AllowedMethods:   corsMethods,
		AllowedHeaders:   corsHeaders,
		AllowCredentials: true,
	}
}

// Allows reports whether origin may read responses.
func (p *CORSPolicy) Allows(origin string) bool {
	if origin == "" {
		return false
	}
	return p.Permissive || contains(p.AllowedOrigins, origin)
}

// CORSMiddleware applies the policy. Preflight requests (OPTIONS carrying
// Access-Control-Request-Method) are answered here with 204; disallowed
// origins get no CORS headers at all.
func CORSMiddleware(policy *CORSPolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			preflight := r.Method == http.MethodOptions &&
				r.Header.Get("Access-Control-Request-Method") != ""

			h := w.Header()
			if !policy.Permissive {
				h.Add("Vary", "Origin")
				if preflight {
					h.Add("Vary", "Access-Control-Request-Method")
					h.Add("Vary", "Access-Control-Request-Headers")
				}
			}

			if policy.Allows(origin) {
				if policy.Permissive {
					h.Set("Access-Control-Allow-Origin", "*")
				} else {
					h.Set("Access-Control-Allow-Origin", origin)
				}
				if policy.AllowCredentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
				if preflight {
					policy.writePreflight(h, r)
				}
			}

			if preflight {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writePreflight answers with the fixed method list in both modes. Only the
// permissive policy echoes the requested headers.
func (p *CORSPolicy) writePreflight(h http.Header, r *http.Request) {
	h.Set("Access-Control-Allow-Methods", strings.Join(p.AllowedMethods, ", "))
	if p.Permissive {
		if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
			h.Set("Access-Control-Allow-Headers", reqHeaders)
		} else {
			h.Set("Access-Control-Allow-Headers", "*")
		}
		return
	}
	h.Set("Access-Control-Allow-Headers", strings.Join(p.AllowedHeaders, ", "))
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
