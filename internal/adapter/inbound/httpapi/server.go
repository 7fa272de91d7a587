package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonny/pdm-service/internal/adapter/inbound/httpapi/middleware"
	"github.com/jonny/pdm-service/pkg/version"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// APIToken, when set, is required as a Bearer token on API routes.
	APIToken          string
	RateLimitPerMin   int
	TrustProxyHeaders bool
	BodyLimitBytes    int64
}

// Server wraps an HTTP server with graceful shutdown support.
type Server struct {
	cfg     ServerConfig
	handler *Handler
	logger  *slog.Logger
	srv     *http.Server
}

// NewServer creates a new Server with the given config and API handler.
func NewServer(cfg ServerConfig, handler *Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return &Server{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
	}
}

// SetupRoutes builds and returns an http.Handler with all middleware applied.
// Route layout:
//
//	GET  /health           - Liveness
//	GET  /version          - Build metadata
//	GET  /model            - Loaded classifier
//	POST /predict          - Score a reading
//	GET  /history          - Paginated history, or CSV with ?export=csv
//	POST /download-report  - PDF summary of a prediction
//
// The eviction goroutine of the rate limiter stops when ctx is cancelled.
func (s *Server) SetupRoutes(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	protect := middleware.BearerAuth(s.cfg.APIToken)

	mux.HandleFunc("GET /health", HealthHandler())
	mux.HandleFunc("GET /version", version.Handler())
	mux.Handle("GET /model", protect(http.HandlerFunc(s.handler.ModelInfo)))
	mux.Handle("POST /predict", protect(http.HandlerFunc(s.handler.Predict)))
	mux.Handle("GET /history", protect(http.HandlerFunc(s.handler.History)))
	mux.Handle("POST /download-report", protect(http.HandlerFunc(s.handler.DownloadReport)))

	// Apply middleware stack (outermost = first to execute):
	//   BodyReader -> RequestID -> Logging -> RateLimit -> SecurityHeaders
	var h http.Handler = mux
	h = middleware.SecurityHeaders(h)
	h = middleware.RateLimit(ctx, s.cfg.RateLimitPerMin, s.cfg.TrustProxyHeaders)(h)
	h = middleware.Logging(s.logger)(h)
	h = middleware.RequestID(h)
	h = middleware.BodyReader(s.cfg.BodyLimitBytes)(h)

	return h
}

// Start starts the HTTP server and blocks until ctx is cancelled, then performs
// a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.SetupRoutes(ctx),
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api server listening", "port", s.cfg.Port)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("api server shutdown error: %w", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}
