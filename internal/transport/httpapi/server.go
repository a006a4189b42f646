// Package httpapi exposes the reaction service over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/lueurxax/shruggbot/internal/core/reaction"
	"github.com/lueurxax/shruggbot/internal/platform/config"
	"github.com/lueurxax/shruggbot/internal/platform/ratelimit"
	"github.com/lueurxax/shruggbot/internal/platform/staticfiles"
)

const (
	defaultShutdownTimeout = 10 * time.Second
	readHeaderTimeout      = 10 * time.Second
	corsMaxAge             = 12 * time.Hour
	defaultMaxBodyBytes    = 64 << 10
)

// Reactor generates reactions.
type Reactor interface {
	Generate(ctx context.Context, req reaction.Request) (reaction.Result, error)
}

// Server is the HTTP front end of the reaction service.
type Server struct {
	cfg     *config.Config
	reactor Reactor
	limiter ratelimit.Limiter
	bundle  *staticfiles.Bundle
	logger  *zerolog.Logger
	engine  *gin.Engine
}

// NewServer builds the gin engine. A nil bundle serves the API only.
func NewServer(cfg *config.Config, reactor Reactor, limiter ratelimit.Limiter, bundle *staticfiles.Bundle, logger *zerolog.Logger) *Server {
	if cfg.AppEnv != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:     cfg,
		reactor: reactor,
		limiter: limiter,
		bundle:  bundle,
		logger:  logger,
		engine:  gin.New(),
	}

	// Forwarding headers are honored only from the configured proxies;
	// everyone else is keyed by the peer address.
	if err := s.engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.Warn().Err(err).Strs("trusted_proxies", cfg.TrustedProxies).Msg("invalid TRUSTED_PROXIES, trusting none")

		_ = s.engine.SetTrustedProxies(nil) //nolint:errcheck // nil never fails
	}

	s.setupRoutes()

	return s
}

func (s *Server) maxBodyBytes() int64 {
	if s.cfg.MaxBodyBytes <= 0 {
		return defaultMaxBodyBytes
	}

	return s.cfg.MaxBodyBytes
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) setupRoutes() {
	s.engine.Use(gin.Recovery())
	s.engine.Use(requestID())
	s.engine.Use(requestLogger(s.logger))
	s.engine.Use(cors.New(s.corsConfig()))

	s.engine.GET("/health", handleHealth)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api")
	api.POST("/shrugg", rateLimit(s.limiter, s.logger), s.handleShrugg)

	s.engine.NoRoute(s.handleNoRoute)
}

func (s *Server) corsConfig() cors.Config {
	corsConfig := cors.DefaultConfig()

	if len(s.cfg.CORSAllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = s.cfg.CORSAllowedOrigins
	}

	corsConfig.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", headerRequestID}
	corsConfig.ExposeHeaders = []string{headerRequestID}
	corsConfig.MaxAge = corsMaxAge

	return corsConfig
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	shutdownTimeout := s.cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	shutdownDone := make(chan struct{})

	go func() {
		defer close(shutdownDone)

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.logger.Info().Msg("HTTP server shutting down")

		//nolint:contextcheck // shutdown must outlive the canceled parent context
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn().Err(err).Msg("HTTP server shutdown incomplete")
		}
	}()

	staticRoot := ""
	if s.bundle != nil {
		staticRoot = s.bundle.Root()
	}

	s.logger.Info().Str("addr", srv.Addr).Str("static_dir", staticRoot).Msg("ShruggBot HTTP server starting")

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	<-shutdownDone

	return nil
}
