package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/pageza/kaintayo/backend/config"
	"github.com/pageza/kaintayo/backend/internal/api"
	"github.com/pageza/kaintayo/backend/internal/logging"
	"github.com/pageza/kaintayo/backend/internal/middleware"
	"github.com/pageza/kaintayo/backend/internal/service"
)

const readHeaderTimeout = 10 * time.Second

// Server represents the HTTP server
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	http   *http.Server
	logger *slog.Logger
}

// New wires the upstream client, normalizer and recipe service from cfg
// and returns a server ready to Run.
func New(cfg *config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	upstream := service.NewUpstreamClient(cfg.UpstreamBaseURL, cfg.APIKey)
	recipeService := service.NewRecipeService(upstream, service.NewNormalizer(logger))

	return newServer(cfg, recipeService, logger)
}

func newServer(cfg *config.Config, recipeService service.IRecipeService, logger *slog.Logger) *Server {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.Metrics(),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)
	if config.IsDevelopment() {
		router.Use(gin.Logger())
	}

	// A nil interface leaves recipe routes open
	var authService service.IAuthService
	if cfg.AuthEnabled() {
		authService = service.NewAuthService(cfg.AuthJWTSecret)
	}

	api.RegisterRoutes(router, recipeService, authService, logger)

	return &Server{
		cfg:    cfg,
		router: router,
		logger: logger,
		http: &http.Server{
			Addr:              cfg.Address(),
			Handler:           router,
			ReadHeaderTimeout: readHeaderTimeout,
			ErrorLog:          logging.NewLogLogger(slog.LevelError),
		},
	}
}

// Handler returns the configured router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address and serves until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("starting HTTP server",
			slog.String("address", ln.Addr().String()),
			slog.String("upstream", s.cfg.UpstreamBaseURL),
			slog.Bool("auth", s.cfg.AuthEnabled()))
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		s.logger.Info("shutting down server")
		return s.Stop(context.Background())
	})

	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = config.DefaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
