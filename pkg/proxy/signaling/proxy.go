package signaling

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"paracord-hq/gateway/pkg/config"
	"paracord-hq/gateway/pkg/telemetry/tracing"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/trace"
)

// Defaults for signaling traffic.
const (
	DefaultPrefix         = "/livekit"
	DefaultMaxMessageSize = int64(16 << 20)
	DefaultMaxBodyBytes   = int64(10 << 20)
	DefaultPingInterval   = 15 * time.Second
	DefaultWriteWait      = 10 * time.Second
)

// TunnelObserver is notified as tunnels open and close.
type TunnelObserver interface {
	TunnelOpened()
	TunnelClosed()
}

// Proxy forwards signaling traffic under Prefix to the backend. WebSocket
// upgrades are tunneled frame by frame; other requests are forwarded as
// buffered HTTP exchanges.
type Proxy struct {
	// BackendURL is the http or https base URL of the signaling server.
	BackendURL string

	// Prefix is stripped from inbound paths before forwarding.
	Prefix string

	// MaxMessageSize caps WebSocket messages read from either side.
	MaxMessageSize int64

	// MaxBodyBytes caps buffered HTTP request bodies. A body of exactly
	// MaxBodyBytes is accepted.
	MaxBodyBytes int64

	// PingInterval is the keepalive period towards the client.
	PingInterval time.Duration

	// WriteWait bounds each frame write.
	WriteWait time.Duration

	Client   *http.Client
	Dialer   *websocket.Dialer
	Upgrader *websocket.Upgrader
	Tracer   *tracing.Tracer
	Observer TunnelObserver
}

// New builds a Proxy from configuration.
func New(cfg *config.SignalingConfig, tracer *tracing.Tracer, observer TunnelObserver) *Proxy {
	p := &Proxy{
		BackendURL:     cfg.HTTPURL,
		Prefix:         cfg.Prefix,
		MaxMessageSize: cfg.MaxMessageBytes,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		PingInterval:   cfg.PingInterval,
		Client:         &http.Client{Timeout: cfg.RequestTimeout},
		Tracer:         tracer,
		Observer:       observer,
	}
	p.applyDefaults()
	return p
}

func (p *Proxy) applyDefaults() {
	if p.Prefix == "" {
		p.Prefix = DefaultPrefix
	}
	if p.MaxMessageSize <= 0 {
		p.MaxMessageSize = DefaultMaxMessageSize
	}
	if p.MaxBodyBytes <= 0 {
		p.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if p.PingInterval <= 0 {
		p.PingInterval = DefaultPingInterval
	}
	if p.WriteWait <= 0 {
		p.WriteWait = DefaultWriteWait
	}
	if p.Client == nil {
		p.Client = &http.Client{}
	}
	if p.Dialer == nil {
		p.Dialer = &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
			ReadBufferSize:   4096,
			WriteBufferSize:  4096,
		}
	}
	if p.Upgrader == nil {
		p.Upgrader = &websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Media clients include desktop shells with non-http origins.
			// Admission is decided by the access token the backend checks.
			CheckOrigin: func(*http.Request) bool { return true },
		}
	}
	if p.Tracer == nil {
		p.Tracer = tracing.NewNoop()
	}
}

// ServeHTTP implements http.Handler.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if websocket.IsWebSocketUpgrade(r) {
		p.serveWebSocket(w, r)
		return
	}
	p.forward(w, r)
}

// BuildTarget rewrites r onto base: the prefix is stripped from the path and
// the raw query is carried over unchanged. For WebSocket targets the scheme
// becomes ws or wss.
func BuildTarget(base, prefix string, r *http.Request, ws bool) string {
	path := r.URL.EscapedPath()
	if stripped, ok := strings.CutPrefix(path, prefix); ok {
		path = stripped
	}

	target := strings.TrimSuffix(base, "/") + path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	if ws {
		switch {
		case strings.HasPrefix(target, "https://"):
			target = "wss://" + strings.TrimPrefix(target, "https://")
		case strings.HasPrefix(target, "http://"):
			target = "ws://" + strings.TrimPrefix(target, "http://")
		}
	}
	return target
}

// redactTarget drops the query string, which carries access tokens.
func redactTarget(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return "<invalid>"
	}
	u.RawQuery = ""
	u.User = nil
	return u.String()
}

func (p *Proxy) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	target := BuildTarget(p.BackendURL, p.Prefix, r, true)
	logTarget := redactTarget(target)

	ctx, span := p.Tracer.Start(r.Context(), "signaling.tunnel",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			tracing.AttrTarget.String(logTarget),
			tracing.AttrTransport.String("websocket"),
		),
	)
	defer span.End()

	inbound, err := p.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written an HTTP error.
		slog.Debug("signaling upgrade failed", "error", err)
		tracing.SetError(span, err)
		return
	}

	// Deadlines set by the HTTP server outlive the hijack.
	_ = inbound.NetConn().SetDeadline(time.Time{})
	inbound.SetReadLimit(p.MaxMessageSize)

	header := http.Header{}
	p.Tracer.Inject(ctx, header)

	backend, resp, err := p.Dialer.DialContext(ctx, target, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		slog.Error("failed to connect to signaling backend",
			"target", logTarget,
			"error", err,
		)
		tracing.SetError(span, err)
		inbound.Close()
		return
	}
	backend.SetReadLimit(p.MaxMessageSize)

	if p.Observer != nil {
		p.Observer.TunnelOpened()
		defer p.Observer.TunnelClosed()
	}

	slog.Debug("signaling tunnel connected", "target", logTarget)

	t := &tunnel{
		inbound:      inbound,
		backend:      backend,
		pingInterval: p.PingInterval,
		writeWait:    p.WriteWait,
	}
	first := t.run(ctx)

	slog.Debug("signaling tunnel closed", "target", logTarget, "first", string(first))
}
