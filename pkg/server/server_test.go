package server

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"paracord-hq/gateway/pkg/config"
	"paracord-hq/gateway/pkg/netinfo"
	"paracord-hq/gateway/pkg/proxy/handlers"
	"paracord-hq/gateway/pkg/security/auth"
	ptls "paracord-hq/gateway/pkg/security/tls"
)

const testSecret = "test-jwt-secret"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Server.ListenAddress = "127.0.0.1:0"
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Server.RateLimit.TrustedProxy = true
	cfg.Auth.JWTSecret = testSecret
	cfg.Signaling.Managed = false
	cfg.Network.DetectExternalIP = false
	cfg.Store.Path = filepath.Join(dir, "paracord.db")
	cfg.TLS.CertPath = filepath.Join(dir, "certs", "cert.pem")
	cfg.TLS.KeyPath = filepath.Join(dir, "certs", "key.pem")
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	s, err := NewServer(cfg, "test")
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	s.detector = &netinfo.Detector{LocalIP: func() (string, error) { return "192.0.2.10", nil }}
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

// startServer runs Start in the background and waits for the listener.
func startServer(t *testing.T, s *Server) <-chan error {
	t.Helper()
	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(context.Background()) }()

	select {
	case <-s.Ready():
	case err := <-errCh:
		t.Fatalf("Start failed: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for listener")
	}
	return errCh
}

func stopServer(t *testing.T, s *Server, errCh <-chan error) {
	t.Helper()
	s.Stop()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Expected clean shutdown, got %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Timed out waiting for shutdown")
	}
}

func TestServer_Routes(t *testing.T) {
	s := newTestServer(t, testConfig(t))
	h := s.Handler()

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "health", path: "/health", wantStatus: http.StatusOK, wantBody: `"service":"paracord"`},
		{name: "api health", path: "/api/v1/health", wantStatus: http.StatusOK, wantBody: `"status":"ok"`},
		{name: "ready", path: "/ready", wantStatus: http.StatusOK, wantBody: `"status":"ready"`},
		{name: "metrics", path: "/metrics", wantStatus: http.StatusOK, wantBody: "http_requests_total"},
		{name: "api metrics", path: "/api/v1/metrics", wantStatus: http.StatusOK, wantBody: "signaling_tunnels_active"},
		{name: "admin without credentials", path: "/api/v1/admin/rate-limits", wantStatus: http.StatusUnauthorized, wantBody: `"error"`},
		{name: "unknown route", path: "/api/v1/channels", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantBody != "" && !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("Expected body to contain %q, got %s", tt.wantBody, w.Body.String())
			}
			if w.Header().Get("X-Request-ID") == "" {
				t.Error("Expected X-Request-ID header")
			}
		})
	}
}

func TestServer_MetricsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Telemetry.Metrics.Enabled = false
	h := newTestServer(t, cfg).Handler()

	for _, path := range []string{"/metrics", "/api/v1/metrics"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected %s to be unmounted, got %d", path, w.Code)
		}
	}
}

func TestServer_RateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.RateLimit.RequestsPerSecond = 2
	s := newTestServer(t, cfg)
	h := s.Handler()

	send := func(client string) int {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Forwarded-For", client)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	limited := 0
	for i := 0; i < 10; i++ {
		if send("198.51.100.1") == http.StatusTooManyRequests {
			limited++
		}
	}
	if limited == 0 {
		t.Fatal("Expected some requests to be rate limited")
	}
	if code := send("198.51.100.2"); code != http.StatusOK {
		t.Errorf("Expected another client to be admitted, got %d", code)
	}

	snap := s.collector.Snapshot()
	if snap.Requests != 11 {
		t.Errorf("Expected 11 requests counted, got %d", snap.Requests)
	}
	if snap.RateLimited != uint64(limited) {
		t.Errorf("Expected %d rate limited, got %d", limited, snap.RateLimited)
	}
}

func TestServer_CORSPreflight(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.PublicURL = "https://chat.example.com"
	h := newTestServer(t, cfg).Handler()

	tests := []struct {
		name       string
		origin     string
		wantOrigin string
	}{
		{name: "public origin", origin: "https://chat.example.com", wantOrigin: "https://chat.example.com"},
		{name: "foreign origin", origin: "https://evil.example.net", wantOrigin: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/livekit/rtc", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", "GET")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != http.StatusNoContent {
				t.Errorf("Expected status 204, got %d", w.Code)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Expected Access-Control-Allow-Origin %q, got %q", tt.wantOrigin, got)
			}
		})
	}
}

func TestServer_AdminRateLimits(t *testing.T) {
	s := newTestServer(t, testConfig(t))
	now := time.Now()

	seed := []string{
		fmt.Sprintf(`INSERT INTO users (id, flags) VALUES (1, %d), (2, 0)`, auth.FlagAdmin),
		fmt.Sprintf(`INSERT INTO sessions (id, user_id, access_token_id, expires_at) VALUES
			('admin-session', 1, 'jti-admin', %d),
			('member-session', 2, 'jti-member', %d)`, now.Add(time.Hour).Unix(), now.Add(time.Hour).Unix()),
	}
	for _, q := range seed {
		if _, err := s.store.DB().Exec(q); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	issue := func(userID int64, sid, jti string) string {
		token, err := auth.IssueAccessToken([]byte(testSecret), userID, sid, jti, now, time.Hour)
		if err != nil {
			t.Fatalf("IssueAccessToken failed: %v", err)
		}
		return token
	}

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{name: "administrator", token: issue(1, "admin-session", "jti-admin"), wantStatus: http.StatusOK},
		{name: "member", token: issue(2, "member-session", "jti-member"), wantStatus: http.StatusForbidden},
		{name: "revoked token id", token: issue(1, "admin-session", "jti-stale"), wantStatus: http.StatusUnauthorized},
	}

	h := s.Handler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/rate-limits", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var body handlers.RateLimitStatus
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if body.Limit != config.DefaultRequestsPerSecond {
				t.Errorf("Expected limit %d, got %d", config.DefaultRequestsPerSecond, body.Limit)
			}
			if body.Viewer != 1 {
				t.Errorf("Expected viewer 1, got %d", body.Viewer)
			}
			if body.Store == nil || body.Store.Users != 2 || body.Store.ActiveSessions != 2 {
				t.Errorf("Expected store stats for 2 users and 2 sessions, got %+v", body.Store)
			}
		})
	}
}

func TestServer_TLSOffersOnlyHTTP11(t *testing.T) {
	cfg := testConfig(t)
	cfg.TLS.Enabled = true
	s := newTestServer(t, cfg)
	errCh := startServer(t, s)
	defer stopServer(t, s, errCh)

	conn, err := tls.Dial("tcp", s.Addr().String(), &tls.Config{
		InsecureSkipVerify: true,
		NextProtos:         []string{"h2", "http/1.1"},
	})
	if err != nil {
		t.Fatalf("TLS dial failed: %v", err)
	}
	state := conn.ConnectionState()
	conn.Close()

	if state.NegotiatedProtocol != "http/1.1" {
		t.Errorf("Expected ALPN http/1.1, got %q", state.NegotiatedProtocol)
	}

	leaf := state.PeerCertificates[0]
	var found bool
	for _, ip := range leaf.IPAddresses {
		if ip.String() == "192.0.2.10" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected detected LAN address in certificate, got %v", leaf.IPAddresses)
	}

	client := &http.Client{Transport: &http.Transport{
		TLSClientConfig:   &tls.Config{InsecureSkipVerify: true},
		ForceAttemptHTTP2: true,
	}}
	resp, err := client.Get("https://" + s.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if resp.ProtoMajor != 1 {
		t.Errorf("Expected HTTP/1.x, got %s", resp.Proto)
	}
}

func TestServer_TLSMissingWithoutAutoGenerate(t *testing.T) {
	cfg := testConfig(t)
	cfg.TLS.Enabled = true
	cfg.TLS.AutoGenerate = false
	s := newTestServer(t, cfg)

	err := s.Start(context.Background())

	var cfgErr *ptls.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigError, got %v", err)
	}
	if s.IsRunning() {
		t.Error("Expected server to be stopped after a failed start")
	}
}

func TestServer_ShutdownEndsTunnels(t *testing.T) {
	upgrader := websocket.Upgrader{}
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(mt, data); err != nil {
				return
			}
		}
	}))
	defer backend.Close()

	cfg := testConfig(t)
	cfg.Signaling.HTTPURL = backend.URL
	s := newTestServer(t, cfg)
	errCh := startServer(t, s)

	client, _, err := websocket.DefaultDialer.Dial("ws://"+s.Addr().String()+"/livekit/rtc?access_token=x", nil)
	if err != nil {
		t.Fatalf("Dial through gateway failed: %v", err)
	}
	defer client.Close()

	if err := client.WriteMessage(websocket.TextMessage, []byte("join")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, data, err := client.ReadMessage(); err != nil || string(data) != "join" {
		t.Fatalf("Expected echo of join, got %q (%v)", data, err)
	}

	stopServer(t, s, errCh)

	client.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err = client.ReadMessage()
	if err == nil {
		t.Fatal("Expected tunnel to be closed by shutdown")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		t.Error("Expected tunnel to close, but the read timed out")
	}
}

func TestServer_StartTwice(t *testing.T) {
	s := newTestServer(t, testConfig(t))
	errCh := startServer(t, s)
	defer stopServer(t, s, errCh)

	if err := s.Start(context.Background()); err == nil {
		t.Error("Expected second Start to fail")
	}
	if err := s.Health(context.Background()); err != nil {
		t.Errorf("Expected healthy server, got %v", err)
	}
}
