package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rickgao/gas-market-data/internal/ingest"
	"github.com/rickgao/gas-market-data/internal/model"
	"github.com/rickgao/gas-market-data/internal/query"
)

// healthTimeout bounds the store ping.
const healthTimeout = 2 * time.Second

type handler struct {
	query  Querier
	ingest Ingester
	health Pinger
	logger *slog.Logger
}

type pricePoint struct {
	T int64   `json:"t"`
	P float64 `json:"p"`
}

type newsItem struct {
	ID       string         `json:"id"`
	T        int64          `json:"t"`
	Category model.Category `json:"category"`
	Source   string         `json:"source"`
	Title    string         `json:"title"`
	URL      string         `json:"url"`
}

// readParams returns the validated series and range query parameters.
func readParams(c *gin.Context, defaultSeries string) (series, token string, err error) {
	series = c.DefaultQuery("series", defaultSeries)
	token = c.DefaultQuery("range", query.DefaultRange)

	if !model.IsKnownSeries(series) {
		return "", "", fmt.Errorf("unknown series %q", series)
	}
	if !query.ValidToken(token) {
		return "", "", fmt.Errorf("unknown range %q, want one of %v", token, query.Tokens)
	}
	return series, token, nil
}

func (h *handler) handlePrices(c *gin.Context) {
	series, token, err := readParams(c, model.SeriesHenryHubSpot)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	points, err := h.query.Prices(c.Request.Context(), series, token)
	if err != nil {
		h.logger.Error("query prices failed", "series", series, "range", token, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	out := make([]pricePoint, len(points))
	for i, p := range points {
		out[i] = pricePoint{T: p.TimestampMs, P: p.Price}
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) handleNews(c *gin.Context) {
	series, token, err := readParams(c, model.SeriesNGFutures)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	events, err := h.query.News(c.Request.Context(), series, token)
	if err != nil {
		h.logger.Error("query news failed", "series", series, "range", token, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	out := make([]newsItem, len(events))
	for i, e := range events {
		out[i] = newsItem{
			ID:       e.ID,
			T:        e.TimestampMs,
			Category: e.Category,
			Source:   e.Source,
			Title:    e.Title,
			URL:      e.URL,
		}
	}
	c.JSON(http.StatusOK, out)
}

// ingestResponse is the report plus the error, if any.
type ingestResponse struct {
	*ingest.Report
	Error string `json:"error,omitempty"`
}

func (h *handler) handleIngest(c *gin.Context) {
	// The run outlives a disconnected client; the runner applies its own deadline.
	report, err := h.ingest.Run(context.WithoutCancel(c.Request.Context()))

	switch {
	case errors.Is(err, ingest.ErrRunInProgress):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": err.Error()})
	case err != nil && report == nil:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
	case err != nil:
		report.OK = false
		c.JSON(http.StatusInternalServerError, ingestResponse{Report: report, Error: err.Error()})
	default:
		c.JSON(http.StatusOK, ingestResponse{Report: report})
	}
}

func (h *handler) handleHealth(c *gin.Context) {
	if h.health == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := h.health.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
