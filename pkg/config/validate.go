package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Has reports whether a field failed validation.
func (e ValidationError) Has(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateTLS(&cfg.TLS)...)
	errs = append(errs, validateAuth(&cfg.Auth)...)
	errs = append(errs, validateSignaling(&cfg.Signaling)...)
	errs = append(errs, validateStore(&cfg.Store)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	} else if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("invalid listen address %q: %v", cfg.ListenAddress, err),
		})
	}

	if cfg.PublicURL != "" {
		if u, err := url.Parse(cfg.PublicURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, FieldError{
				Field:   "server.public_url",
				Message: fmt.Sprintf("invalid public URL %q: must be absolute", cfg.PublicURL),
			})
		}
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.read_timeout", Message: "read timeout must be positive"})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.write_timeout", Message: "write timeout must be positive"})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.idle_timeout", Message: "idle timeout must be positive"})
	}
	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{Field: "server.max_header_bytes", Message: "max header bytes must be non-negative"})
	}

	if cfg.RateLimit.RequestsPerSecond <= 0 {
		errs = append(errs, FieldError{
			Field:   "server.rate_limit.requests_per_second",
			Message: "requests per second must be positive",
		})
	}

	for i, origin := range cfg.CORS.AllowedOrigins {
		if strings.TrimSpace(origin) == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("server.cors.allowed_origins[%d]", i),
				Message: "origin must not be empty",
			})
		}
	}

	return errs
}

func validateTLS(cfg *TLSConfig) []FieldError {
	var errs []FieldError
	if !cfg.Enabled {
		return errs
	}
	if cfg.CertPath == "" {
		errs = append(errs, FieldError{Field: "tls.cert_path", Message: "certificate path is required when TLS is enabled"})
	}
	if cfg.KeyPath == "" {
		errs = append(errs, FieldError{Field: "tls.key_path", Message: "key path is required when TLS is enabled"})
	}
	if cfg.CertPath != "" && cfg.CertPath == cfg.KeyPath {
		errs = append(errs, FieldError{Field: "tls.key_path", Message: "key path must differ from certificate path"})
	}
	return errs
}

func validateAuth(cfg *AuthConfig) []FieldError {
	var errs []FieldError
	if cfg.JWTSecret == "" {
		errs = append(errs, FieldError{Field: "auth.jwt_secret", Message: "JWT secret is required"})
	}
	if cfg.CookieName == "" {
		errs = append(errs, FieldError{Field: "auth.cookie_name", Message: "cookie name is required"})
	}
	return errs
}

func validateSignaling(cfg *SignalingConfig) []FieldError {
	var errs []FieldError

	if u, err := url.Parse(cfg.HTTPURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, FieldError{
			Field:   "signaling.http_url",
			Message: fmt.Sprintf("invalid signaling URL %q: must be an http or https URL", cfg.HTTPURL),
		})
	}

	if !strings.HasPrefix(cfg.Prefix, "/") || strings.HasSuffix(cfg.Prefix, "/") {
		errs = append(errs, FieldError{
			Field:   "signaling.prefix",
			Message: fmt.Sprintf("invalid prefix %q: must start with '/' and not end with '/'", cfg.Prefix),
		})
	}

	// The managed process also binds port+1 (TCP/TURN) and port+2..port+12 (RTC).
	if cfg.Port < 1 || cfg.Port > 65535-12 {
		errs = append(errs, FieldError{
			Field:   "signaling.port",
			Message: fmt.Sprintf("port %d out of range", cfg.Port),
		})
	}

	if cfg.Managed {
		if cfg.APIKey == "" {
			errs = append(errs, FieldError{Field: "signaling.api_key", Message: "API key is required when the signaling process is managed"})
		}
		if cfg.APISecret == "" {
			errs = append(errs, FieldError{Field: "signaling.api_secret", Message: "API secret is required when the signaling process is managed"})
		}
	}

	if cfg.ExternalIP != "" && net.ParseIP(cfg.ExternalIP) == nil {
		errs = append(errs, FieldError{
			Field:   "signaling.external_ip",
			Message: fmt.Sprintf("invalid IP address %q", cfg.ExternalIP),
		})
	}

	if cfg.MaxMessageBytes <= 0 {
		errs = append(errs, FieldError{Field: "signaling.max_message_bytes", Message: "max message bytes must be positive"})
	}
	if cfg.MaxBodyBytes <= 0 {
		errs = append(errs, FieldError{Field: "signaling.max_body_bytes", Message: "max body bytes must be positive"})
	}
	if cfg.PingInterval <= 0 {
		errs = append(errs, FieldError{Field: "signaling.ping_interval", Message: "ping interval must be positive"})
	}

	return errs
}

func validateStore(cfg *StoreConfig) []FieldError {
	var errs []FieldError
	switch cfg.Driver {
	case "sqlite", "sqlite3":
	default:
		errs = append(errs, FieldError{
			Field:   "store.driver",
			Message: fmt.Sprintf("invalid driver %q: must be 'sqlite' or 'sqlite3'", cfg.Driver),
		})
	}
	if cfg.Path == "" {
		errs = append(errs, FieldError{Field: "store.path", Message: "database path is required"})
	}
	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	return errs
}
