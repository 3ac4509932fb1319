package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	hashicorplru "github.com/hashicorp/golang-lru/v2"

	"github.com/agbru/fibdrv/internal/config"
	"github.com/agbru/fibdrv/internal/device"
	apperrors "github.com/agbru/fibdrv/internal/errors"
	"github.com/agbru/fibdrv/internal/logging"
	"github.com/agbru/fibdrv/internal/service"
)

// Server is the HTTP front-end of a device. Every request that reaches the
// device opens its own session, so concurrent requests see ErrBusy exactly
// like concurrent processes would.
type Server struct {
	service        service.Service
	maxOffset      int64
	cfg            config.AppConfig
	httpServer     *http.Server
	logger         logging.Logger
	rateLimiter    *RateLimiter
	securityConfig SecurityConfig
	metrics        *Metrics
	timeouts       Timeouts
	cache          *hashicorplru.Cache[int64, ReadResponse]
}

// NewServer creates a Server for dev. cfg supplies the port and the cache
// size.
func NewServer(dev *device.Device, cfg config.AppConfig, opts ...Option) *Server {
	s := &Server{
		maxOffset:      dev.MaxOffset(),
		cfg:            cfg,
		logger:         logging.NewDefaultLogger().With(logging.String("component", "server")),
		securityConfig: DefaultSecurityConfig(),
		metrics:        NewMetrics(),
		timeouts:       DefaultServerTimeouts(),
	}
	WithCacheSize(cfg.CacheSize)(s)

	for _, opt := range opts {
		opt(s)
	}

	if s.service == nil {
		s.service = service.NewDeviceService(dev)
	}
	if s.rateLimiter == nil {
		s.rateLimiter = NewRateLimiter(DefaultRateLimiterConfig())
	}

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      s.Handler(),
		ReadTimeout:  s.timeouts.ReadTimeout,
		WriteTimeout: s.timeouts.WriteTimeout,
		IdleTimeout:  s.timeouts.IdleTimeout,
	}
	return s
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/read", s.wrapWithMiddleware(s.handleRead))
	mux.HandleFunc("/measure", s.wrapWithMiddleware(s.handleMeasure))
	mux.HandleFunc("/health", s.wrapWithMiddleware(s.handleHealth))
	mux.HandleFunc("/metrics", s.wrapWithMiddleware(s.handleMetrics))
	return mux
}

// wrapWithMiddleware applies Security -> RateLimit -> Logging -> Metrics.
func (s *Server) wrapWithMiddleware(handler http.HandlerFunc) http.HandlerFunc {
	wrapped := s.metricsMiddleware(handler)
	wrapped = s.loggingMiddleware(wrapped)
	wrapped = RateLimitMiddleware(s.rateLimiter, wrapped)
	wrapped = SecurityMiddleware(s.securityConfig, wrapped)
	return wrapped
}

// Start listens on the configured port and serves until ctx is done, then
// shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return apperrors.NewServerError("server failed to start", err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.rateLimiter.Stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening",
			logging.String("addr", ln.Addr().String()),
			logging.Int64("max_offset", s.maxOffset),
			logging.Int("cache", s.cfg.CacheSize),
		)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown requested")
	case err, ok := <-errCh:
		if ok {
			return apperrors.NewServerError("server failed", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeouts.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return apperrors.NewServerError("failed to gracefully shutdown server", err)
	}
	s.logger.Info("server stopped")
	return nil
}
