package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/raushan1140/invoice-po-matcher/internal/async"
	"github.com/raushan1140/invoice-po-matcher/internal/config"
	"github.com/raushan1140/invoice-po-matcher/internal/query"
	"github.com/raushan1140/invoice-po-matcher/internal/reconcile"
	"github.com/raushan1140/invoice-po-matcher/internal/repository"
)

// Server is the HTTP API over the invoice pipeline, storage, query engine
// and leaderboard.
type Server struct {
	cfg       *config.Config
	store     *repository.Store
	pool      *async.ExtractionPool
	validator *reconcile.Validator
	engine    *query.Engine
	logger    *slog.Logger

	http *http.Server
}

// New builds the server and registers all routes.
func New(cfg *config.Config, store *repository.Store, pool *async.ExtractionPool,
	validator *reconcile.Validator, engine *query.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:       cfg,
		store:     store,
		pool:      pool,
		validator: validator,
		engine:    engine,
		logger:    logger,
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	router.MaxMultipartMemory = cfg.Upload.MaxSizeBytes

	s.registerRoutes(router)

	s.http = &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}
	return s
}

func (s *Server) registerRoutes(r *gin.Engine) {
	r.GET("/", s.listRoutes(r))
	r.GET("/api/health", s.health)

	invoices := r.Group("/api/invoices")
	{
		invoices.POST("/upload", s.uploadInvoice)
		invoices.GET("/list", s.listInvoices)
		invoices.GET("/stats", s.invoiceStats)
		invoices.POST("/validate", s.validateInvoice)
		invoices.GET("/:invoice_id", s.getInvoice)
	}

	queries := r.Group("/api/queries")
	{
		queries.POST("/execute", s.executeQuery)
		queries.POST("/translate", s.translateQuery)
		queries.POST("/execute-sql", s.executeSQL)
		queries.GET("/suggestions", s.querySuggestions)
		queries.GET("/samples", s.querySamples)
		queries.GET("/history", s.queryHistory)
	}

	leaderboard := r.Group("/api/leaderboard")
	{
		leaderboard.GET("/", s.getLeaderboard)
		leaderboard.GET("/stats", s.leaderboardStats)
		leaderboard.GET("/team/:team_id", s.teamStats)
		leaderboard.POST("/update", s.updateTeamScore)
		leaderboard.POST("/create-team", s.createTeam)
	}
}

// Run serves until ctx is cancelled, then drains with the configured
// shutdown grace period.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	s.logger.Info("http server draining")
	return s.http.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http.request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed_ms", time.Since(start).Milliseconds())
	}
}

func (s *Server) health(c *gin.Context) {
	if err := s.store.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Invoice-PO Matching API is running",
	})
}

// listRoutes reports every registered route so the root URL doubles as a
// quick API index.
func (s *Server) listRoutes(r *gin.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		type routeInfo struct {
			Method string `json:"method"`
			URL    string `json:"url"`
		}
		var routes []routeInfo
		for _, ri := range r.Routes() {
			routes = append(routes, routeInfo{Method: ri.Method, URL: ri.Path})
		}
		c.JSON(http.StatusOK, gin.H{"available_routes": routes})
	}
}
