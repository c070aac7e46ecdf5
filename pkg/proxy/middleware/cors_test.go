package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

func TestResolveCORS(t *testing.T) {
	tests := []struct {
		name       string
		allowed    []string
		publicURL  string
		permissive bool
		want       []string
	}{
		{
			name:       "nothing configured",
			permissive: true,
		},
		{
			name:      "public url trailing slash trimmed",
			publicURL: "https://chat.example.com/",
			want:      []string{"https://chat.example.com", "tauri://localhost", "http://tauri.localhost"},
		},
		{
			name:      "explicit list wins over public url",
			allowed:   []string{"https://a.example", " ", "https://b.example"},
			publicURL: "https://chat.example.com",
			want:      []string{"https://a.example", "https://b.example", "tauri://localhost", "http://tauri.localhost"},
		},
		{
			name:    "desktop origin not duplicated",
			allowed: []string{"tauri://localhost"},
			want:    []string{"tauri://localhost", "http://tauri.localhost"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ResolveCORS(tt.allowed, tt.publicURL)
			if p.Permissive != tt.permissive {
				t.Fatalf("Expected permissive=%v, got %v", tt.permissive, p.Permissive)
			}
			if tt.permissive {
				if p.AllowCredentials {
					t.Error("permissive policy must not allow credentials")
				}
				return
			}
			if strings.Join(p.AllowedOrigins, "|") != strings.Join(tt.want, "|") {
				t.Errorf("Expected origins %v, got %v", tt.want, p.AllowedOrigins)
			}
			if !p.AllowCredentials {
				t.Error("restrictive policy must allow credentials")
			}
		})
	}
}

func TestCORSMiddleware_Restrictive(t *testing.T) {
	policy := ResolveCORS(nil, "https://chat.example.com")
	wrapped := CORSMiddleware(policy)(okHandler())

	t.Run("allowed origin echoed with credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		req.Header.Set("Origin", "https://chat.example.com")
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://chat.example.com" {
			t.Errorf("Expected origin echoed, got %q", got)
		}
		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
			t.Errorf("Expected credentials allowed, got %q", got)
		}
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
	})

	t.Run("desktop origin allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "tauri://localhost")
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "tauri://localhost" {
			t.Errorf("Expected desktop origin echoed, got %q", got)
		}
	})

	t.Run("other origin gets no CORS headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)

		for _, h := range []string{"Access-Control-Allow-Origin", "Access-Control-Allow-Credentials"} {
			if got := w.Header().Get(h); got != "" {
				t.Errorf("Expected no %s, got %q", h, got)
			}
		}
		if w.Code != http.StatusOK {
			t.Errorf("request itself must still be served, got %d", w.Code)
		}
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/guilds", nil)
		req.Header.Set("Origin", "http://tauri.localhost")
		req.Header.Set("Access-Control-Request-Method", "PATCH")
		req.Header.Set("Access-Control-Request-Headers", "authorization")
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("Preflight should return 204, got %d", w.Code)
		}
		if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, PUT, PATCH, DELETE" {
			t.Errorf("unexpected methods %q", got)
		}
		if got := w.Header().Get("Access-Control-Allow-Headers"); got != "Authorization, Content-Type, Accept" {
			t.Errorf("unexpected headers %q", got)
		}
		if w.Body.Len() != 0 {
			t.Errorf("preflight must not reach the handler, body %q", w.Body.String())
		}
	})
}

func TestCORSMiddleware_Permissive(t *testing.T) {
	wrapped := CORSMiddleware(ResolveCORS(nil, ""))(okHandler())

	t.Run("any origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://anything.example")
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Expected '*', got %q", got)
		}
		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "" {
			t.Errorf("Expected no credentials header, got %q", got)
		}
	})

	t.Run("preflight echoes request headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", "https://anything.example")
		req.Header.Set("Access-Control-Request-Method", "PUT")
		req.Header.Set("Access-Control-Request-Headers", "x-custom, content-type")
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("Expected 204, got %d", w.Code)
		}
		if got := w.Header().Get("Access-Control-Allow-Headers"); got != "x-custom, content-type" {
			t.Errorf("Expected echoed headers, got %q", got)
		}
		if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, PUT, PATCH, DELETE" {
			t.Errorf("Expected fixed method list, got %q", got)
		}
	})

	for _, method := range []string{"TRACE", "CONNECT"} {
		t.Run("preflight does not grant "+method, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/", nil)
			req.Header.Set("Origin", "https://anything.example")
			req.Header.Set("Access-Control-Request-Method", method)
			w := httptest.NewRecorder()
			wrapped.ServeHTTP(w, req)

			if got := w.Header().Get("Access-Control-Allow-Methods"); strings.Contains(got, method) {
				t.Errorf("Expected %s not to be allowed, got %q", method, got)
			}
		})
	}

	t.Run("plain OPTIONS passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("Expected handler response, got %d", w.Code)
		}
	})
}
