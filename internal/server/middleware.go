package server

import (
	"net/http"
	"time"

	hashicorplru "github.com/hashicorp/golang-lru/v2"

	"github.com/agbru/fibdrv/internal/logging"
	"github.com/agbru/fibdrv/internal/service"
)

// Option defines a functional option for configuring a Server.
type Option func(*Server)

// WithLogger sets the server logger. A nil logger keeps the default.
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithService replaces the device-backed service, typically with a mock.
func WithService(svc service.Service) Option {
	return func(s *Server) {
		if svc != nil {
			s.service = svc
		}
	}
}

// WithTimeouts sets custom timeout configuration for the server.
func WithTimeouts(timeouts Timeouts) Option {
	return func(s *Server) { s.timeouts = timeouts }
}

// WithRateLimiter sets a custom rate limiter for the server.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(s *Server) { s.rateLimiter = rl }
}

// WithSecurityConfig sets a custom security configuration for the server.
func WithSecurityConfig(config SecurityConfig) Option {
	return func(s *Server) { s.securityConfig = config }
}

// WithCacheSize keeps the last size read responses. 0 disables the cache.
func WithCacheSize(size int) Option {
	return func(s *Server) {
		s.cache = nil
		if size > 0 {
			// New only fails for a non-positive size.
			s.cache, _ = hashicorplru.New[int64, ReadResponse](size)
		}
	}
}

// Timeouts holds timeout configuration for the HTTP server.
type Timeouts struct {
	// RequestTimeout bounds the trace span of a read. Computations are
	// never interrupted.
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
}

// DefaultServerTimeouts returns the timeouts used unless WithTimeouts is given.
func DefaultServerTimeouts() Timeouts {
	return Timeouts{
		RequestTimeout:  time.Minute,
		ShutdownTimeout: 30 * time.Second,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    2 * time.Minute,
		IdleTimeout:     2 * time.Minute,
	}
}

// loggingMiddleware logs each request with its status and duration.
func (s *Server) loggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		s.logger.Info("request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.String("remote", r.RemoteAddr),
			logging.Int("status", rec.status),
			logging.Duration("duration", time.Since(start)),
		)
	}
}
