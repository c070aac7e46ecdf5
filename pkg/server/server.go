package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"paracord-hq/gateway/pkg/config"
	"paracord-hq/gateway/pkg/netinfo"
	"paracord-hq/gateway/pkg/proxy/handlers"
	"paracord-hq/gateway/pkg/proxy/middleware"
	"paracord-hq/gateway/pkg/proxy/signaling"
	"paracord-hq/gateway/pkg/security/auth"
	ptls "paracord-hq/gateway/pkg/security/tls"
	"paracord-hq/gateway/pkg/store"
	"paracord-hq/gateway/pkg/supervisor"
	"paracord-hq/gateway/pkg/telemetry/health"
	"paracord-hq/gateway/pkg/telemetry/metrics"
	"paracord-hq/gateway/pkg/telemetry/tracing"
)

// ServiceName is reported by the health endpoints.
const ServiceName = "paracord"

// Server is the public edge of a Paracord deployment.
type Server struct {
	config  *config.Config
	version string

	store     *store.Store
	tracer    *tracing.Tracer
	collector *metrics.Collector
	limiter   *middleware.RateLimiter
	extractor *auth.Extractor
	signaling *signaling.Proxy
	detector  *netinfo.Detector

	httpServer  *http.Server
	listener    net.Listener
	janitor     *cron.Cron
	reloader    *ptls.Reloader
	process     *supervisor.Process
	serveCancel context.CancelFunc

	ready        chan struct{}
	shutdownChan chan struct{}
	stopOnce     sync.Once
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer opens the credential store and tracer and builds the request
// pipeline. Nothing listens until Start.
func NewServer(cfg *config.Config, version string) (*Server, error) {
	st, err := store.Open(context.Background(), cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	collector := metrics.NewCollector()

	return &Server{
		config:       cfg,
		version:      version,
		store:        st,
		tracer:       tracer,
		collector:    collector,
		limiter:      middleware.NewRateLimiter(cfg.Server.RateLimit.RequestsPerSecond),
		extractor:    auth.NewExtractor(cfg.Auth.JWTSecret, cfg.Auth.CookieName, st, st, st),
		signaling:    signaling.New(&cfg.Signaling, tracer, collector),
		detector:     &netinfo.Detector{},
		ready:        make(chan struct{}),
		shutdownChan: make(chan struct{}),
	}, nil
}

// Start brings the edge up and blocks until shutdown. The order is address
// detection, the managed signaling process, TLS material, then the listener.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	if err := s.boot(ctx); err != nil {
		_ = s.Shutdown(context.Background())
		return err
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting gateway",
			"address", s.listener.Addr().String(),
			"tls_enabled", s.config.TLS.Enabled,
			"version", s.version,
		)

		if err := s.httpServer.Serve(s.listener); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()
	close(s.ready)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		_ = s.Shutdown(context.Background())
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

func (s *Server) boot(ctx context.Context) error {
	addrs := s.detector.Detect(ctx, s.config)

	if s.config.Signaling.Managed {
		proc, err := supervisor.Start(ctx, supervisor.OptionsFromConfig(&s.config.Signaling, addrs.External))
		if err != nil {
			return fmt.Errorf("failed to start signaling server: %w", err)
		}
		s.process = proc
	}

	listener, err := net.Listen("tcp", s.config.Server.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Server.ListenAddress, err)
	}

	if s.config.TLS.Enabled {
		tlsConfig, err := s.configureTLS(addrs)
		if err != nil {
			listener.Close()
			return fmt.Errorf("failed to configure TLS: %w", err)
		}
		listener = tls.NewListener(listener, tlsConfig)
	}
	s.listener = listener

	if !s.config.Server.RateLimit.TrustedProxy {
		slog.Warn("rate limiting keys on X-Forwarded-For, which clients can set; enable server.rate_limit.trusted_proxy behind a proxy that overwrites it")
	}

	if err := s.startJanitor(); err != nil {
		return err
	}

	serveCtx, cancel := context.WithCancel(context.Background())
	s.serveCancel = cancel
	s.httpServer = &http.Server{
		Handler:        s.setupRoutes(),
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
		// Non-nil and empty: HTTP/2 is never negotiated.
		TLSNextProto: map[string]func(*http.Server, *tls.Conn, http.Handler){},
		BaseContext: func(net.Listener) context.Context {
			return serveCtx
		},
	}
	return nil
}

// configureTLS provisions certificate material and, when watching is
// enabled, serves it through a reloader.
func (s *Server) configureTLS(addrs netinfo.Addresses) (*tls.Config, error) {
	material, err := ptls.EnsureTransport(ptls.TransportConfig{
		CertPath:     s.config.TLS.CertPath,
		KeyPath:      s.config.TLS.KeyPath,
		AutoGenerate: s.config.TLS.AutoGenerate,
	}, addrs.List())
	if err != nil {
		return nil, err
	}

	tlsConfig, err := material.TLSConfig()
	if err != nil {
		return nil, err
	}

	if s.config.TLS.Watch {
		reloader, err := ptls.NewReloader(s.config.TLS.CertPath, s.config.TLS.KeyPath)
		if err != nil {
			return nil, err
		}
		reloader.Apply(tlsConfig)
		s.reloader = reloader
	}
	return tlsConfig, nil
}

// startJanitor schedules the rate limiter sweep.
func (s *Server) startJanitor() error {
	janitor := cron.New()
	_, err := janitor.AddFunc(s.config.Server.RateLimit.SweepSchedule, func() {
		if n := s.limiter.Sweep(time.Now()); n > 0 {
			slog.Debug("swept rate limit buckets", "removed", n, "remaining", s.limiter.Buckets())
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.config.Server.RateLimit.SweepSchedule, err)
	}
	janitor.Start()
	s.janitor = janitor
	return nil
}

// Shutdown stops the listener, ends open tunnels and releases every
// resource the server holds. It is safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		slog.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		} else if s.listener != nil {
			s.listener.Close()
		}

		// Upgraded connections are hijacked and invisible to http.Server.
		if s.serveCancel != nil {
			s.serveCancel()
		}

		if s.janitor != nil {
			<-s.janitor.Stop().Done()
		}
		if s.reloader != nil {
			if err := s.reloader.Close(); err != nil {
				slog.Warn("failed to stop certificate watcher", "error", err)
			}
		}
		if s.process != nil {
			s.process.Stop()
		}
		if err := s.store.Close(); err != nil {
			slog.Warn("failed to close credential store", "error", err)
		}
		if err := s.tracer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("gateway stopped")
	})

	return shutdownErr
}

// Stop asks a running Start to shut down.
func (s *Server) Stop() {
	s.stopOnce.Do(func() { close(s.shutdownChan) })
}

// setupRoutes configures HTTP routes and the admission chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	liveness := health.Handler(ServiceName)
	mux.Handle("/health", liveness)
	mux.Handle("/api/v1/health", liveness)
	mux.Handle("/ready", handlers.NewReadyHandler(map[string]handlers.Pinger{"store": s.store}))

	if s.config.Telemetry.Metrics.Enabled {
		exposition := s.collector.Handler()
		mux.Handle("/metrics", exposition)
		mux.Handle("/api/v1/metrics", exposition)
	}

	prefix := s.signaling.Prefix
	mux.Handle(prefix, s.signaling)
	mux.Handle(prefix+"/", s.signaling)

	admin := handlers.NewRateLimitHandler(s.limiter, s.collector, s.store)
	mux.Handle("/api/v1/admin/rate-limits", auth.RequireAdmin(s.extractor)(admin))

	return middleware.Chain(mux,
		middleware.RecoveryMiddleware,
		middleware.LoggingMiddleware,
		middleware.RequestIDMiddleware,
		middleware.RateLimitMiddleware(s.limiter, s.collector),
		middleware.CORSMiddleware(middleware.ResolveCORS(s.config.Server.CORS.AllowedOrigins, s.config.Server.PublicURL)),
	)
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Ready is closed once the listener accepts connections.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// Health reports whether the server is serving and its store answers.
func (s *Server) Health(ctx context.Context) error {
	if !s.IsRunning() {
		return fmt.Errorf("server is not running")
	}
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("credential store unavailable: %w", err)
	}
	return nil
}
