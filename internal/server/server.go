package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/config"
	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/errors"
	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/exceptions"
	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/health"
	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/history"
	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/logger"
)

const healthCheckInterval = 30 * time.Second

// Server serves the timecode API over HTTP.
type Server struct {
	config       *config.ServerConfig
	engine       config.EngineConfig
	router       *mux.Router
	httpServer   *http.Server
	logger       *logrus.Logger
	history      history.Store
	backend      string
	healthMgr    *health.Manager
	errorHandler *errors.ErrorHandler
	limiter      *rate.Limiter

	defaultSampleRate int64
}

// Options carries the collaborators a Server needs.
type Options struct {
	Config   *config.Config
	Logger   *logrus.Logger
	History  history.Store
	Reporter exceptions.Reporter
	// BWFTool is checked by the health endpoint. Nil reports it missing.
	BWFTool health.Versioner
}

// New creates a server with its routes and health checkers registered.
func New(opts Options) *Server {
	cfg := opts.Config

	s := &Server{
		config:       &cfg.Server,
		engine:       cfg.Engine,
		router:       mux.NewRouter(),
		logger:       opts.Logger,
		history:      opts.History,
		backend:      cfg.History.Backend,
		healthMgr:    health.NewManager(opts.Logger),
		errorHandler: errors.NewErrorHandler(opts.Logger, opts.Reporter),

		defaultSampleRate: cfg.Batch.SampleRate,
	}
	if cfg.Server.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst)
	}

	s.registerHealthCheckers(opts.BWFTool)
	s.setupRoutes()

	return s
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.config.HTTPPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	go s.healthMgr.StartPeriodicChecks(ctx, healthCheckInterval)

	s.logger.WithField("addr", ln.Addr().String()).Info("Starting HTTP server")

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		return s.Shutdown()
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("Shutting down HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("HTTP server shutdown complete")
	return nil
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(logger.RequestLoggerMiddleware(s.logger))
	s.router.Use(s.errorHandler.Middleware)
	s.router.Use(s.metricsMiddleware)
	s.router.Use(s.corsMiddleware)

	healthHandler := health.NewHandler(s.healthMgr)
	s.router.HandleFunc("/health", healthHandler.HandleHealth).Methods("GET")
	s.router.HandleFunc("/ready", healthHandler.HandleReady).Methods("GET")
	s.router.HandleFunc("/live", healthHandler.HandleLive).Methods("GET")
	s.router.HandleFunc("/version", s.handleVersion).Methods("GET")

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.Use(s.rateLimitMiddleware)

	api.HandleFunc("/rates", s.handleRates).Methods("GET")
	api.HandleFunc("/formats", s.handleFormats).Methods("GET")
	api.HandleFunc("/convert", s.handleConvert).Methods("POST", "OPTIONS")
	api.HandleFunc("/calculate", s.handleCalculate).Methods("POST", "OPTIONS")
	api.HandleFunc("/history", s.handleListHistory).Methods("GET")
	api.HandleFunc("/history", s.handleClearHistory).Methods("DELETE", "OPTIONS")
	api.HandleFunc("/samples/timecode", s.handleSamplesToTimecode).Methods("POST", "OPTIONS")
	api.HandleFunc("/samples/offset", s.handleOffsetSamples).Methods("POST", "OPTIONS")
	api.HandleFunc("/mask", s.handleMask).Methods("POST", "OPTIONS")

	// Subrouters resolve their own misses, so both need the JSON handlers.
	for _, r := range []*mux.Router{s.router, api} {
		r.NotFoundHandler = http.HandlerFunc(s.errorHandler.HandleNotFound)
		r.MethodNotAllowedHandler = http.HandlerFunc(s.errorHandler.HandleMethodNotAllowed)
	}
}

// registerHealthCheckers registers all health checkers
func (s *Server) registerHealthCheckers(tool health.Versioner) {
	s.healthMgr.Register(health.NewHistoryChecker(s.history, s.backend))

	if rs, ok := s.history.(*history.RedisStore); ok {
		s.healthMgr.Register(health.NewRedisChecker(rs.Client(), rs.Key()))
	}

	// The API works without bwfmetaedit; only batch offsets need it.
	s.healthMgr.RegisterOptional(health.NewBWFChecker(tool))
}

// GetRouter returns the router for testing.
func (s *Server) GetRouter() *mux.Router {
	return s.router
}
