package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress     = "0.0.0.0:8080"
	DefaultReadTimeout       = 30 * time.Second
	DefaultWriteTimeout      = 60 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
	DefaultShutdownTimeout   = 15 * time.Second
	DefaultMaxHeaderBytes    = 1048576 // 1MB
	DefaultRequestsPerSecond = 300
	DefaultSweepSchedule     = "@every 1m"

	// TLS defaults
	DefaultTLSCertPath     = "data/certs/cert.pem"
	DefaultTLSKeyPath      = "data/certs/key.pem"
	DefaultTLSAutoGenerate = true

	// Auth defaults
	DefaultCookieName = "paracord_access"

	// Signaling defaults
	DefaultSignalingURL          = "http://127.0.0.1:7880"
	DefaultSignalingPrefix       = "/livekit"
	DefaultSignalingManaged      = true
	DefaultSignalingBinary       = "livekit-server"
	DefaultSignalingPort         = 7880
	DefaultSignalingWarmUp       = 4 * time.Second
	DefaultSignalingMaxMessage   = int64(16 << 20)
	DefaultSignalingMaxBody      = int64(10 << 20)
	DefaultSignalingPingInterval = 15 * time.Second

	// Network defaults
	DefaultDetectExternalIP = true
	DefaultExternalIPURL    = "https://api.ipify.org"
	DefaultDetectTimeout    = 3 * time.Second

	// Store defaults
	DefaultStoreDriver      = "sqlite"
	DefaultStorePath        = "data/paracord.db"
	DefaultStoreBusyTimeout = 5 * time.Second

	// Secrets defaults
	DefaultSecretsEnvPrefix = "PARACORD_SECRET_"
	DefaultSecretsDir       = "/run/secrets"

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultMetricsEnabled     = true
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingServiceName = "paracord-gateway"
)

// Default returns a configuration with every default applied, including the
// boolean fields whose default is true. LoadConfig decodes YAML on top of it
// so that keys absent from the file keep their defaults.
func Default() *Config {
	cfg := &Config{}
	cfg.TLS.AutoGenerate = DefaultTLSAutoGenerate
	cfg.Signaling.Managed = DefaultSignalingManaged
	cfg.Network.DetectExternalIP = DefaultDetectExternalIP
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.RateLimit.RequestsPerSecond == 0 {
		cfg.Server.RateLimit.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Server.RateLimit.SweepSchedule == "" {
		cfg.Server.RateLimit.SweepSchedule = DefaultSweepSchedule
	}

	// TLS defaults
	if cfg.TLS.CertPath == "" {
		cfg.TLS.CertPath = DefaultTLSCertPath
	}
	if cfg.TLS.KeyPath == "" {
		cfg.TLS.KeyPath = DefaultTLSKeyPath
	}

	if cfg.Auth.CookieName == "" {
		cfg.Auth.CookieName = DefaultCookieName
	}

	applySignalingDefaults(&cfg.Signaling)

	// Network defaults
	if cfg.Network.ExternalIPURL == "" {
		cfg.Network.ExternalIPURL = DefaultExternalIPURL
	}
	if cfg.Network.DetectTimeout == 0 {
		cfg.Network.DetectTimeout = DefaultDetectTimeout
	}

	// Store defaults
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = DefaultStoreDriver
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = DefaultStorePath
	}
	if cfg.Store.BusyTimeout == 0 {
		cfg.Store.BusyTimeout = DefaultStoreBusyTimeout
	}

	// Secrets defaults
	if cfg.Secrets.EnvPrefix == "" {
		cfg.Secrets.EnvPrefix = DefaultSecretsEnvPrefix
	}
	if cfg.Secrets.Dir == "" {
		cfg.Secrets.Dir = DefaultSecretsDir
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
}

func applySignalingDefaults(sig *SignalingConfig) {
	if sig.HTTPURL == "" {
		sig.HTTPURL = DefaultSignalingURL
	}
	if sig.Prefix == "" {
		sig.Prefix = DefaultSignalingPrefix
	}
	if sig.BinaryName == "" {
		sig.BinaryName = DefaultSignalingBinary
	}
	if sig.Port == 0 {
		sig.Port = DefaultSignalingPort
	}
	if sig.WarmUp == 0 {
		sig.WarmUp = DefaultSignalingWarmUp
	}
	if sig.MaxMessageBytes == 0 {
		sig.MaxMessageBytes = DefaultSignalingMaxMessage
	}
	if sig.MaxBodyBytes == 0 {
		sig.MaxBodyBytes = DefaultSignalingMaxBody
	}
	if sig.PingInterval == 0 {
		sig.PingInterval = DefaultSignalingPingInterval
	}
}
