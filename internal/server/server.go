package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rickgao/pricesync/internal/model"
	"github.com/rickgao/pricesync/internal/scheduler"
)

// PriceReader is the read side of the store.
type PriceReader interface {
	ResolveInstrument(ctx context.Context, ident string) (model.Instrument, error)
	DailyPrices(ctx context.Context, code string, r model.DateRange) ([]model.DailyPrice, error)
	Ping(ctx context.Context) error
}

// Catalog exposes the current instrument snapshot.
type Catalog interface {
	Instruments() []model.Instrument
	LastRefresh() time.Time
}

// StatusSource reports scheduler status.
type StatusSource interface {
	Status() scheduler.Status
}

// Server routes the read endpoints.
type Server struct {
	store   PriceReader
	catalog Catalog
	status  StatusSource
	logger  *slog.Logger
	engine  *gin.Engine
}

// New creates a Server. catalog and status may be nil when the process
// does not run a scheduler.
func New(store PriceReader, catalog Catalog, status StatusSource, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		store:   store,
		catalog: catalog,
		status:  status,
		logger:  logger,
		engine:  gin.New(),
	}

	s.engine.Use(gin.Recovery(), requestLogger(logger))
	s.engine.GET("/price", s.getPrices)
	s.engine.GET("/instruments", s.getInstruments)
	s.engine.GET("/health", s.getHealth)

	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// requestLogger logs one line per request at a level chosen by status.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"status", status,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"latency", time.Since(start),
		}

		switch {
		case status >= 500:
			logger.Error("request failed", attrs...)
		case status >= 400:
			logger.Warn("request rejected", attrs...)
		default:
			logger.Debug("request completed", attrs...)
		}
	}
}

func sendError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
