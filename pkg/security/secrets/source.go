package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by a Source that does not hold the secret.
var ErrNotFound = errors.New("secret not found")

// Source looks secrets up by name.
type Source interface {
	Lookup(ctx context.Context, name string) (string, error)

	// Kind names the source in logs: "env" or "file".
	Kind() string
}

// EnvSource reads secrets from environment variables.
//
// The secret "jwt-secret" with prefix "PARACORD_SECRET_" is read from
// PARACORD_SECRET_JWT_SECRET.
type EnvSource struct {
	Prefix string
}

// Lookup implements Source.
func (s EnvSource) Lookup(_ context.Context, name string) (string, error) {
	value, ok := os.LookupEnv(s.envVar(name))
	if !ok || value == "" {
		return "", ErrNotFound
	}
	return value, nil
}

// Kind implements Source.
func (s EnvSource) Kind() string { return "env" }

func (s EnvSource) envVar(name string) string {
	return s.Prefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// DirSource reads each secret from a file named after it. One trailing
// newline is stripped. World-writable files are refused.
type DirSource struct {
	Dir string
}

// Lookup implements Source.
func (s DirSource) Lookup(_ context.Context, name string) (string, error) {
	if s.Dir == "" {
		return "", ErrNotFound
	}
	if name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid secret name %q", name)
	}

	path := filepath.Join(s.Dir, name)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to stat secret file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("secret %q is not a regular file", name)
	}
	if info.Mode().Perm()&0002 != 0 {
		return "", fmt.Errorf("secret file %s is world-writable (mode %o)", path, info.Mode().Perm())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file: %w", err)
	}

	value := strings.TrimSuffix(strings.TrimSuffix(string(data), "\n"), "\r")
	if value == "" {
		return "", fmt.Errorf("secret file %s is empty", path)
	}
	return value, nil
}

// Kind implements Source.
func (s DirSource) Kind() string { return "file" }
