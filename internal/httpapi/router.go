package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rickgao/gas-market-data/internal/ingest"
	"github.com/rickgao/gas-market-data/internal/metrics"
	"github.com/rickgao/gas-market-data/internal/model"
)

// Querier answers windowed reads. Implemented by *query.Resolver.
type Querier interface {
	Prices(ctx context.Context, series, token string) ([]model.PricePoint, error)
	News(ctx context.Context, series, token string) ([]model.NewsEvent, error)
}

// Ingester runs one ingestion. Implemented by *ingest.Runner.
type Ingester interface {
	Run(ctx context.Context) (*ingest.Report, error)
}

// Pinger reports store health. Implemented by store.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators served by the router.
type Deps struct {
	Query       Querier
	Ingest      Ingester // nil disables POST /api/ingest
	Health      Pinger
	Metrics     *metrics.Metrics // nil disables /metrics
	MetricsPath string
	Logger      *slog.Logger
}

// NewRouter builds the gin engine.
func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(d.Logger, d.Metrics))
	r.Use(cors())

	h := &handler{query: d.Query, ingest: d.Ingest, health: d.Health, logger: d.Logger}

	r.GET("/health", h.handleHealth)

	api := r.Group("/api")
	api.GET("/prices", h.handlePrices)
	api.GET("/news", h.handleNews)
	if d.Ingest != nil {
		api.POST("/ingest", h.handleIngest)
	}

	if d.Metrics != nil && d.MetricsPath != "" {
		r.GET(d.MetricsPath, gin.WrapH(d.Metrics.Handler()))
	}

	return r
}

// NewServer wraps handler in an http.Server listening on addr.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// requestLogger logs each request and counts it by route.
func requestLogger(logger *slog.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		m.ObserveAPI(route, status)

		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		} else if route == "/health" {
			level = slog.LevelDebug
		}
		logger.Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", route,
			"status", status,
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

// cors allows any origin.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "*")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
