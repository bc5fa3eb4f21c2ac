// Package server exposes a Gateway over JSON HTTP so several terminals can
// share one set of provider credentials.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/pathwise/internal/gateway"
	"github.com/abhisek/pathwise/internal/logger"
)

// Config configures the HTTP service.
type Config struct {
	Addr    string
	Gateway gateway.Gateway
	Log     *logger.Logger
	// CallTimeout bounds one gateway call. Zero means gateway.DefaultTimeout.
	CallTimeout time.Duration
}

// Server is the gateway HTTP service.
type Server struct {
	cfg  Config
	http *http.Server
}

func New(cfg Config) *Server {
	if cfg.Log == nil {
		cfg.Log = logger.Nop()
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = gateway.DefaultTimeout
	}
	return &Server{
		cfg: cfg,
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           NewRouter(cfg),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler returns the router, for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.cfg.Log.Info("gateway service listening", "addr", s.cfg.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	s.cfg.Log.Info("gateway service shutting down")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// NewRouter builds the gin engine with every gateway route.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.Log == nil {
		cfg.Log = logger.Nop()
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = gateway.DefaultTimeout
	}
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(cfg.Log))

	h := &handler{gw: cfg.Gateway, timeout: cfg.CallTimeout, log: cfg.Log}

	router.GET(gateway.PathHealth, h.health)
	router.POST(gateway.PathReflectionQuestion, h.reflectionQuestion)
	router.POST(gateway.PathReflectionAnalyze, h.analyzeReflection)
	router.POST(gateway.PathFinalTest, h.finalTest)
	router.POST(gateway.PathEntryGrade, h.gradeEntry)
	router.POST(gateway.PathEntryAnalyze, h.analyzeEntry)
	router.POST(gateway.PathPracticeQuestion, h.practiceQuestion)

	router.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "not_found", fmt.Errorf("no route %s %s", c.Request.Method, c.Request.URL.Path))
	})
	return router
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}
