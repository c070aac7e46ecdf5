package config

import "time"

// Config is the root configuration structure for the Paracord gateway.
// It contains the listener, TLS, authentication, signaling, network
// detection, credential store and telemetry sections.
type Config struct {
	// Server contains the HTTP listener configuration including timeouts,
	// the public URL, CORS and rate limiting.
	Server ServerConfig `yaml:"server"`

	// TLS contains certificate locations and self-signed generation settings.
	TLS TLSConfig `yaml:"tls"`

	// Auth contains the session token secret and cookie settings.
	Auth AuthConfig `yaml:"auth"`

	// Signaling contains the media signaling backend and the managed
	// signaling process settings.
	Signaling SignalingConfig `yaml:"signaling"`

	// Network contains LAN and public address detection settings.
	Network NetworkConfig `yaml:"network"`

	// Store contains the credential database the gateway reads sessions,
	// bot applications and user flags from.
	Store StoreConfig `yaml:"store"`

	// Secrets locates the values of ${secret:name} references.
	Secrets SecretsConfig `yaml:"secrets"`

	// Telemetry contains logging, metrics and tracing configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the public HTTP listener.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "0.0.0.0:8080"
	ListenAddress string `yaml:"listen_address"`

	// PublicURL is the externally visible origin of the server. It is used
	// as the CORS allow-list when no explicit origins are configured.
	PublicURL string `yaml:"public_url"`

	// ReadTimeout is the maximum duration for reading the request headers
	// and body. Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout bounds writes of non-upgraded responses. Upgraded
	// WebSocket connections are hijacked and not subject to it.
	// Default: 60s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout. Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for in-flight requests
	// during graceful shutdown. Default: 15s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size. Default: 1MB
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`

	// RateLimit contains per-client admission limits.
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// CORSConfig contains Cross-Origin Resource Sharing configuration.
type CORSConfig struct {
	// AllowedOrigins is an explicit allow-list. When empty the public URL is
	// used; when both are empty any origin is accepted without credentials.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// RateLimitConfig contains per-client admission limits.
type RateLimitConfig struct {
	// RequestsPerSecond is the per-client ceiling within one wall-clock second.
	// Default: 300
	RequestsPerSecond int `yaml:"requests_per_second"`

	// SweepSchedule is the cron schedule for dropping stale client buckets.
	// Default: "@every 1m"
	SweepSchedule string `yaml:"sweep_schedule"`

	// TrustedProxy declares that a reverse proxy in front of the gateway
	// sets X-Forwarded-For. Without it the header is client-controlled and a
	// warning is logged at startup.
	TrustedProxy bool `yaml:"trusted_proxy"`
}

// TLSConfig contains certificate locations and generation settings.
type TLSConfig struct {
	// Enabled serves HTTPS instead of plain HTTP. Default: false
	Enabled bool `yaml:"enabled"`

	// CertPath is the PEM certificate location. Default: "data/certs/cert.pem"
	CertPath string `yaml:"cert_path"`

	// KeyPath is the PEM private key location. Default: "data/certs/key.pem"
	KeyPath string `yaml:"key_path"`

	// AutoGenerate creates a self-signed certificate when either file is
	// missing. Default: true
	AutoGenerate bool `yaml:"auto_generate"`

	// Watch reloads the certificate when the files change on disk.
	// Default: false
	Watch bool `yaml:"watch"`
}

// AuthConfig contains session token settings.
type AuthConfig struct {
	// JWTSecret is the HMAC secret session access tokens are signed with.
	JWTSecret string `yaml:"jwt_secret"`

	// CookieName is the cookie carrying the access token.
	// Default: "paracord_access"
	CookieName string `yaml:"cookie_name"`
}

// SignalingConfig contains the media signaling backend settings.
type SignalingConfig struct {
	// HTTPURL is the base URL of the signaling server.
	// Default: "http://127.0.0.1:7880"
	HTTPURL string `yaml:"http_url"`

	// Prefix is the public path prefix stripped before forwarding.
	// Default: "/livekit"
	Prefix string `yaml:"prefix"`

	// Managed starts and supervises a local signaling process. Default: true
	Managed bool `yaml:"managed"`

	// BinaryName is the executable searched for when Managed is set.
	// Default: "livekit-server"
	BinaryName string `yaml:"binary_name"`

	// Port is the signaling server's listen port. Default: 7880
	Port int `yaml:"port"`

	// APIKey and APISecret are written into the managed process config.
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`

	// ExternalIP overrides detection of the public address advertised to
	// media clients.
	ExternalIP string `yaml:"external_ip"`

	// WarmUp is how long to wait after spawning before serving.
	// Default: 4s
	WarmUp time.Duration `yaml:"warm_up"`

	// MaxMessageBytes caps WebSocket messages and frames. Default: 16MiB
	MaxMessageBytes int64 `yaml:"max_message_bytes"`

	// MaxBodyBytes caps forwarded HTTP request bodies. Default: 10MiB
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// PingInterval is the client keepalive period. Default: 15s
	PingInterval time.Duration `yaml:"ping_interval"`

	// RequestTimeout bounds forwarded HTTP requests. Zero, the default,
	// imposes no limit; backend failures still surface immediately.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// NetworkConfig contains address detection settings.
type NetworkConfig struct {
	// DetectExternalIP queries ExternalIPURL for the public address.
	// Default: true
	DetectExternalIP bool `yaml:"detect_external_ip"`

	// ExternalIPURL returns the caller's address as plain text.
	// Default: "https://api.ipify.org"
	ExternalIPURL string `yaml:"external_ip_url"`

	// DetectTimeout bounds the external lookup. Default: 3s
	DetectTimeout time.Duration `yaml:"detect_timeout"`
}

// StoreConfig contains credential database settings.
type StoreConfig struct {
	// Driver is "sqlite" (pure Go) or "sqlite3" (cgo). Default: "sqlite"
	Driver string `yaml:"driver"`

	// Path is the database file. Default: "data/paracord.db"
	Path string `yaml:"path"`

	// BusyTimeout is how long a reader waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// SecretsConfig locates secret values. auth.jwt_secret, signaling.api_key
// and signaling.api_secret may contain ${secret:name} references.
type SecretsConfig struct {
	// EnvPrefix is prepended to the upper-cased secret name.
	// Default: "PARACORD_SECRET_"
	EnvPrefix string `yaml:"env_prefix"`

	// Dir holds one file per secret. Default: "/run/secrets"
	Dir string `yaml:"dir"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics exposition configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics exposition configuration.
type MetricsConfig struct {
	// Enabled controls whether the metrics endpoints are mounted.
	// Default: true
	Enabled bool `yaml:"enabled"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported. Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector endpoint. Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// ServiceName is the service name in traces. Default: "paracord-gateway"
	ServiceName string `yaml:"service_name"`

	// Insecure disables TLS to the collector.
	Insecure bool `yaml:"insecure"`
}
