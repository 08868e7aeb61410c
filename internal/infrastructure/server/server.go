// Package server wires configuration, logging, metrics, storage and the
// workspace into an HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/webide/backend/internal/api/http"
	"github.com/GriffinCanCode/webide/backend/internal/api/middleware"
	"github.com/GriffinCanCode/webide/backend/internal/api/ws"
	"github.com/GriffinCanCode/webide/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/webide/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/webide/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webide/backend/internal/infrastructure/storage"
	"github.com/GriffinCanCode/webide/backend/internal/workspace"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router    *gin.Engine
	http      *http.Server
	workspace *workspace.Workspace
	store     storage.SlotStore
	logger    *logging.Logger
	config    *config.Config
	metrics   *monitoring.Metrics
}

// NewServer creates a new server instance and restores the persisted
// workspace.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	logger := logging.NewFromSettings(cfg.Logging.Level, cfg.Logging.Development)

	logger.Info("Initializing workspace server",
		zap.String("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Backend),
		zap.Bool("compress", cfg.Storage.Compress),
	)

	metrics := monitoring.NewMetrics()

	store, err := storage.Open(ctx, storage.Options{
		Backend:  storage.Backend(cfg.Storage.Backend),
		Path:     cfg.Storage.Path,
		Compress: cfg.Storage.Compress,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
	}

	space := workspace.New(store,
		workspace.WithLogger(logger.Component("workspace")),
		workspace.WithMetrics(metrics),
		workspace.WithHistoryCapacity(cfg.History.Capacity),
	)
	if err := space.Init(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize workspace: %w", err)
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(logger.Component("http")))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	apihttp.NewHandlers(space, metrics, logger.Component("api")).Register(router)
	router.GET("/stream", ws.NewHandler(space, metrics, logger.Component("ws")).HandleConnection)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/log/level", gin.WrapH(logger.Level()))
	router.PUT("/log/level", gin.WrapH(logger.Level()))

	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		workspace: space,
		store:     store,
		logger:    logger,
		config:    cfg,
		metrics:   metrics,
	}, nil
}

// Router exposes the gin engine
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Workspace exposes the workspace service
func (s *Server) Workspace() *workspace.Workspace {
	return s.workspace
}

// Run serves HTTP until Shutdown is called
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains HTTP requests, closes the workspace and the slot store
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	var errs []error
	if err := s.http.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := s.workspace.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close workspace: %w", err))
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}
	err := errors.Join(errs...)
	if err != nil {
		s.logger.Error("Shutdown incomplete", zap.Error(err))
	}

	_ = s.logger.Sync()
	return err
}
