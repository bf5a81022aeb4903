package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kapu/influencer-insight-go/internal/constants"
	"github.com/kapu/influencer-insight-go/internal/domain"
	"github.com/kapu/influencer-insight-go/internal/service/report"
	"github.com/kapu/influencer-insight-go/internal/session"
	"github.com/kapu/influencer-insight-go/internal/util"
	"go.uber.org/zap"
)

type Analyzer interface {
	Analyze(ctx context.Context, url string, lang domain.Language) (*domain.AnalysisReport, error)
}

type Translator interface {
	Translate(ctx context.Context, src *domain.AnalysisReport, lang domain.Language) (*domain.AnalysisReport, report.Outcome)
}

// StatusProvider exposes the model backend health for /api/status.
type StatusProvider interface {
	HasCredential() bool
	ProviderName() string
	CircuitStatus() util.CircuitBreakerStatus
}

type Dependencies struct {
	Analyzer   Analyzer
	Translator Translator
	Sessions   *session.Controller
	Status     StatusProvider
}

type Server struct {
	deps        Dependencies
	defaultLang domain.Language
	engine      *gin.Engine
	httpServer  *http.Server
	logger      *zap.Logger
}

func New(addr string, defaultLang domain.Language, deps Dependencies, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		deps:        deps,
		defaultLang: domain.ParseLanguage(string(defaultLang), domain.DefaultLanguage),
		logger:      logger,
	}
	s.engine = s.routes()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.Timeouts.Shutdown)
	defer cancel()

	s.logger.Info("Shutting down HTTP server...")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown failed", zap.Error(err))
		return err
	}
	return <-errCh
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	api := r.Group("/api")
	api.GET("/status", s.handleStatus)
	api.GET("/languages", s.handleLanguages)
	api.POST("/analyze", s.handleAnalyze)
	api.POST("/translate", s.handleTranslate)

	sessions := api.Group("/sessions")
	sessions.POST("", s.handleCreateSession)
	sessions.GET("/:id", s.handleGetSession)
	sessions.POST("/:id/analyze", s.handleSessionAnalyze)
	sessions.PUT("/:id/language", s.handleSessionLanguage)
	sessions.POST("/:id/reset", s.handleSessionReset)
	sessions.GET("/:id/events", s.handleSessionEvents)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			s.logger.Warn("HTTP request", fields...)
			return
		}
		s.logger.Debug("HTTP request", fields...)
	}
}
