package secrets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"paracord-hq/gateway/pkg/config"
)

// refPattern matches ${secret:name}.
var refPattern = regexp.MustCompile(`\$\{secret:([^}]+)\}`)

// Resolver substitutes secret references using its sources in order.
type Resolver struct {
	sources []Source
}

// NewResolver creates a resolver over sources, tried in order.
func NewResolver(sources ...Source) *Resolver {
	return &Resolver{sources: sources}
}

// FromConfig builds the environment-then-directory resolver.
func FromConfig(cfg config.SecretsConfig) *Resolver {
	return NewResolver(EnvSource{Prefix: cfg.EnvPrefix}, DirSource{Dir: cfg.Dir})
}

// Lookup returns the first value any source holds for name.
func (r *Resolver) Lookup(ctx context.Context, name string) (string, error) {
	for _, src := range r.sources {
		value, err := src.Lookup(ctx, name)
		if err == nil {
			slog.Debug("resolved secret", "name", redactName(name), "source", src.Kind())
			return value, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", fmt.Errorf("%s source: %w", src.Kind(), err)
		}
	}
	return "", fmt.Errorf("secret %q: %w", name, ErrNotFound)
}

// Resolve replaces every reference in value. All failing references are
// reported together.
func (r *Resolver) Resolve(ctx context.Context, value string) (string, error) {
	if !strings.Contains(value, "${secret:") {
		return value, nil
	}

	var failures []string
	out := refPattern.ReplaceAllStringFunc(value, func(match string) string {
		name := strings.TrimSpace(refPattern.FindStringSubmatch(match)[1])
		secret, err := r.Lookup(ctx, name)
		if err != nil {
			failures = append(failures, err.Error())
			return match
		}
		return secret
	})

	if len(failures) > 0 {
		return "", fmt.Errorf("unresolved secret references: %s", strings.Join(failures, "; "))
	}
	return out, nil
}

// ResolveConfig resolves the credential fields of cfg in place.
func (r *Resolver) ResolveConfig(ctx context.Context, cfg *config.Config) error {
	fields := []struct {
		name  string
		value *string
	}{
		{"auth.jwt_secret", &cfg.Auth.JWTSecret},
		{"signaling.api_key", &cfg.Signaling.APIKey},
		{"signaling.api_secret", &cfg.Signaling.APISecret},
	}

	var errs []error
	for _, f := range fields {
		resolved, err := r.Resolve(ctx, *f.value)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.name, err))
			continue
		}
		*f.value = resolved
	}
	return errors.Join(errs...)
}

// redactName keeps enough of a secret name to debug with.
func redactName(name string) string {
	if len(name) <= 4 {
		return "***"
	}
	return name[:2] + "..." + name[len(name)-2:]
}
