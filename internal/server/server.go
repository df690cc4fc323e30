package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/username/worktime/internal/calendar"
	"github.com/username/worktime/internal/config"
	"github.com/username/worktime/internal/worktime"
)

const shutdownTimeout = 5 * time.Second

// DayClassifier classifies calendar dates
type DayClassifier interface {
	DayInfo(date string) *calendar.DayInfo
}

// Server serves the work-time JSON API and, optionally, the static preview build
type Server struct {
	cfg      config.ServerConfig
	service  *worktime.Service
	calendar DayClassifier
	logger   *zap.Logger
	engine   *gin.Engine
}

// New creates a new Server and registers its routes
func New(cfg config.ServerConfig, service *worktime.Service, cal DayClassifier, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:      cfg,
		service:  service,
		calendar: cal,
		logger:   logger,
		engine:   gin.New(),
	}

	// without trusted proxies ClientIP is the peer address and forwarding headers are ignored
	if err := s.engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.Warn("Invalid trusted proxies, forwarding headers ignored",
			zap.Strings("trusted_proxies", cfg.TrustedProxies),
			zap.Error(err))
		_ = s.engine.SetTrustedProxies(nil)
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(requestLogger(logger))
	s.engine.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.AllowOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))
	if cfg.RateLimit > 0 {
		s.engine.Use(rateLimitMiddleware(newRateLimiterStore(cfg.RateLimit, cfg.RateBurst), logger))
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/weeks", s.listWeeks)
		api.DELETE("/weeks", s.clearWeeks)
		api.GET("/weeks/:weekKey", s.getWeek)
		api.DELETE("/weeks/:weekKey", s.deleteWeek)
		api.POST("/weeks/:weekKey/items", s.addItem)
		api.PUT("/weeks/:weekKey/items/:id", s.updateItem)
		api.DELETE("/weeks/:weekKey/items/:id", s.removeItem)
		api.POST("/cleanup", s.cleanup)
		api.GET("/holidays/:date", s.getHoliday)
		api.GET("/links", s.parseLink)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}

	if s.cfg.StaticDir != "" {
		s.engine.NoRoute(staticHandler(s.cfg.StaticDir, s.logger))
	} else {
		s.engine.NoRoute(func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		})
	}
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server",
			zap.String("addr", srv.Addr),
			zap.String("static_dir", s.cfg.StaticDir))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Server is shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	s.logger.Info("Server stopped gracefully")
	return nil
}
