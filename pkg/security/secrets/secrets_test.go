package secrets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"paracord-hq/gateway/pkg/config"
)

func writeSecret(t *testing.T, dir, name, value string, mode os.FileMode) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(value), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(path, mode); err != nil {
		t.Fatal(err)
	}
}

func TestEnvSource(t *testing.T) {
	t.Setenv("PARACORD_SECRET_JWT_SECRET", "env-value")
	src := EnvSource{Prefix: "PARACORD_SECRET_"}

	value, err := src.Lookup(context.Background(), "jwt-secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "env-value" {
		t.Errorf("expected 'env-value', got %q", value)
	}

	if _, err := src.Lookup(context.Background(), "not-set"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	writeSecret(t, dir, "api-secret", "file-value\n", 0400)
	writeSecret(t, dir, "shared", "x", 0666)
	writeSecret(t, dir, "blank", "\n", 0400)

	tests := []struct {
		name     string
		secret   string
		want     string
		notFound bool
		wantErr  bool
	}{
		{name: "trailing newline stripped", secret: "api-secret", want: "file-value"},
		{name: "missing file", secret: "nope", notFound: true},
		{name: "world writable", secret: "shared", wantErr: true},
		{name: "empty", secret: "blank", wantErr: true},
		{name: "traversal", secret: "../api-secret", wantErr: true},
	}

	src := DirSource{Dir: dir}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := src.Lookup(context.Background(), tt.secret)
			switch {
			case tt.notFound:
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("expected ErrNotFound, got %v", err)
				}
			case tt.wantErr:
				if err == nil || errors.Is(err, ErrNotFound) {
					t.Errorf("expected a hard error, got %v", err)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if value != tt.want {
					t.Errorf("expected %q, got %q", tt.want, value)
				}
			}
		})
	}

	if _, err := (DirSource{}).Lookup(context.Background(), "api-secret"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound without a directory, got %v", err)
	}
}

func TestResolver_Resolve(t *testing.T) {
	dir := t.TempDir()
	writeSecret(t, dir, "jwt-secret", "from-file", 0400)
	writeSecret(t, dir, "key", "file-key", 0400)
	t.Setenv("TEST_SECRET_KEY", "env-key")

	r := NewResolver(EnvSource{Prefix: "TEST_SECRET_"}, DirSource{Dir: dir})

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain value", input: "literal", want: "literal"},
		{name: "file reference", input: "${secret:jwt-secret}", want: "from-file"},
		{name: "environment wins", input: "${secret:key}", want: "env-key"},
		{name: "embedded", input: "prefix-${secret:key}-suffix", want: "prefix-env-key-suffix"},
		{name: "unresolved", input: "${secret:missing}", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(context.Background(), tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolver_ResolveConfig(t *testing.T) {
	t.Setenv("TEST_SECRET_JWT", "signing-key")

	cfg := config.Default()
	cfg.Auth.JWTSecret = "${secret:jwt}"
	cfg.Signaling.APIKey = "devkey"
	cfg.Signaling.APISecret = "${secret:livekit}"

	r := FromConfig(config.SecretsConfig{EnvPrefix: "TEST_SECRET_", Dir: t.TempDir()})
	err := r.ResolveConfig(context.Background(), cfg)

	if err == nil || !strings.Contains(err.Error(), "signaling.api_secret") {
		t.Fatalf("expected api_secret failure, got %v", err)
	}
	if strings.Contains(err.Error(), "auth.jwt_secret") {
		t.Errorf("jwt_secret should have resolved: %v", err)
	}
	if cfg.Auth.JWTSecret != "signing-key" {
		t.Errorf("expected jwt_secret resolved in place, got %q", cfg.Auth.JWTSecret)
	}
	if cfg.Signaling.APIKey != "devkey" {
		t.Errorf("expected literal api_key kept, got %q", cfg.Signaling.APIKey)
	}
}
