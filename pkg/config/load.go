package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "PARACORD_"

// LoadConfig loads configuration from a YAML file at the specified path.
// Keys absent from the file keep their defaults. The result is validated.
// Environment variables are not consulted; use LoadConfigWithEnvOverrides
// for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML over the defaults without validating.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention PARACORD_SECTION_FIELD (e.g., PARACORD_SERVER_LISTEN_ADDRESS).
// An empty path skips the file and starts from the defaults.
//
// The loading sequence is:
// 1. Defaults
// 2. YAML file, if any
// 3. Environment variable overrides
// 4. Validation
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadUnvalidated(path)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadUnvalidated performs steps 1 to 3 of LoadConfigWithEnvOverrides. Tools
// that read a single section use it so unrelated required fields, such as
// auth.jwt_secret, do not block them.
func LoadUnvalidated(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		cfg, err = Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	envString("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	envString("SERVER_PUBLIC_URL", &cfg.Server.PublicURL)
	envDuration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	envDuration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	envInt("SERVER_RATE_LIMIT_REQUESTS_PER_SECOND", &cfg.Server.RateLimit.RequestsPerSecond)
	envBool("SERVER_RATE_LIMIT_TRUSTED_PROXY", &cfg.Server.RateLimit.TrustedProxy)
	if val := os.Getenv(EnvPrefix + "SERVER_CORS_ALLOWED_ORIGINS"); val != "" {
		cfg.Server.CORS.AllowedOrigins = splitList(val)
	}

	// TLS overrides
	envBool("TLS_ENABLED", &cfg.TLS.Enabled)
	envString("TLS_CERT_PATH", &cfg.TLS.CertPath)
	envString("TLS_KEY_PATH", &cfg.TLS.KeyPath)
	envBool("TLS_AUTO_GENERATE", &cfg.TLS.AutoGenerate)
	envBool("TLS_WATCH", &cfg.TLS.Watch)

	// Auth overrides
	envString("AUTH_JWT_SECRET", &cfg.Auth.JWTSecret)
	envString("AUTH_COOKIE_NAME", &cfg.Auth.CookieName)

	// Signaling overrides
	envString("SIGNALING_HTTP_URL", &cfg.Signaling.HTTPURL)
	envString("SIGNALING_PREFIX", &cfg.Signaling.Prefix)
	envBool("SIGNALING_MANAGED", &cfg.Signaling.Managed)
	envString("SIGNALING_BINARY_NAME", &cfg.Signaling.BinaryName)
	envInt("SIGNALING_PORT", &cfg.Signaling.Port)
	envString("SIGNALING_API_KEY", &cfg.Signaling.APIKey)
	envString("SIGNALING_API_SECRET", &cfg.Signaling.APISecret)
	envString("SIGNALING_EXTERNAL_IP", &cfg.Signaling.ExternalIP)
	envDuration("SIGNALING_WARM_UP", &cfg.Signaling.WarmUp)
	envDuration("SIGNALING_PING_INTERVAL", &cfg.Signaling.PingInterval)

	// Network overrides
	envBool("NETWORK_DETECT_EXTERNAL_IP", &cfg.Network.DetectExternalIP)
	envString("NETWORK_EXTERNAL_IP_URL", &cfg.Network.ExternalIPURL)

	// Store overrides
	envString("STORE_DRIVER", &cfg.Store.Driver)
	envString("STORE_PATH", &cfg.Store.Path)

	// Secrets overrides
	envString("SECRETS_DIR", &cfg.Secrets.Dir)

	// Telemetry overrides
	envString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envBool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	if val := os.Getenv(EnvPrefix + "TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}

func envString(key string, dst *string) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		*dst = val
	}
}

func envBool(key string, dst *bool) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envInt(key string, dst *int) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

// splitList splits a comma separated value, dropping empty entries.
func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
