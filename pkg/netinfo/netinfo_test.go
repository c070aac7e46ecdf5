package netinfo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"paracord-hq/gateway/pkg/config"
)

func TestExternalIP(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr bool
	}{
		{name: "ipv4", status: http.StatusOK, body: "203.0.113.7\n", want: "203.0.113.7"},
		{name: "ipv6", status: http.StatusOK, body: "  2001:db8::1 ", want: "2001:db8::1"},
		{name: "not an ip", status: http.StatusOK, body: "<html>", wantErr: true},
		{name: "server error", status: http.StatusServiceUnavailable, body: "203.0.113.7", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			d := &Detector{}
			got, err := d.ExternalIP(context.Background(), server.URL)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExternalIP failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	echo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "198.51.100.4")
	}))
	defer echo.Close()

	lan := func() (string, error) { return "192.168.1.20", nil }
	noLAN := func() (string, error) { return "", errors.New("offline") }

	tests := []struct {
		name   string
		local  func() (string, error)
		mutate func(*config.Config)
		want   []string
	}{
		{
			name:  "lookup",
			local: lan,
			want:  []string{"192.168.1.20", "198.51.100.4"},
		},
		{
			name:   "configured external wins",
			local:  lan,
			mutate: func(c *config.Config) { c.Signaling.ExternalIP = "203.0.113.9" },
			want:   []string{"192.168.1.20", "203.0.113.9"},
		},
		{
			name:   "lookup disabled",
			local:  lan,
			mutate: func(c *config.Config) { c.Network.DetectExternalIP = false },
			want:   []string{"192.168.1.20"},
		},
		{
			name:  "no lan",
			local: noLAN,
			want:  []string{"198.51.100.4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Network.ExternalIPURL = echo.URL
			if tt.mutate != nil {
				tt.mutate(cfg)
			}

			d := &Detector{LocalIP: tt.local}
			got := d.Detect(context.Background(), cfg).List()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDetect_LookupTimeout(t *testing.T) {
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()
	defer close(release)

	cfg := config.Default()
	cfg.Network.ExternalIPURL = slow.URL
	cfg.Network.DetectTimeout = 50 * time.Millisecond

	d := &Detector{LocalIP: func() (string, error) { return "", errors.New("offline") }}

	start := time.Now()
	addrs := d.Detect(context.Background(), cfg)
	if addrs.External != "" {
		t.Errorf("Expected no external address, got %q", addrs.External)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Detect took %v, expected it to honor the timeout", elapsed)
	}
}
