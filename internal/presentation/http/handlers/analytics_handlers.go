package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bleonardo0/cobi-sub002/internal/application/services"
	"github.com/bleonardo0/cobi-sub002/internal/domain/analytics"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/observability/logging"
)

// AnalyticsHandlers contains the read-side query HTTP handlers
type AnalyticsHandlers struct {
	analyticsService  *services.AnalyticsService
	trendService      *services.TrendService
	conversionService *services.ConversionService
	logger            *logging.ChanneledLogger
}

// NewAnalyticsHandlers creates analytics handlers with injected dependencies
func NewAnalyticsHandlers(
	analyticsService *services.AnalyticsService,
	trendService *services.TrendService,
	conversionService *services.ConversionService,
	logger *logging.ChanneledLogger,
) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		analyticsService:  analyticsService,
		trendService:      trendService,
		conversionService: conversionService,
		logger:            logger,
	}
}

// parseRange reads the optional range query param, accepting "7d" style
// tokens or a bare day count. Absent or unparseable means all time.
func parseRange(c *gin.Context) *analytics.TimeRange {
	raw := strings.TrimSpace(c.Query("range"))
	if raw == "" {
		return nil
	}
	days, err := strconv.Atoi(strings.TrimSuffix(raw, "d"))
	if err != nil || days <= 0 {
		return nil
	}
	rng := analytics.LastDays(days, time.Now())
	return &rng
}

// HandleGeneralStats handles GET /api/v1/analytics/stats
func (h *AnalyticsHandlers) HandleGeneralStats(c *gin.Context) {
	restaurantID := c.Query("restaurantId")

	stats, err := h.analyticsService.GetGeneralStats(restaurantID, parseRange(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, stats)
}

// HandleTrends handles GET /api/v1/analytics/trends
func (h *AnalyticsHandlers) HandleTrends(c *gin.Context) {
	restaurantID := c.Query("restaurantId")
	if restaurantID == "" {
		respondError(c, http.StatusBadRequest, "restaurantId is required")
		return
	}

	trends, err := h.trendService.GetTrends(restaurantID, c.Query("timeRange"), c.Query("granularity"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, trends)
}

// HandleConversion handles GET /api/v1/analytics/conversion
func (h *AnalyticsHandlers) HandleConversion(c *gin.Context) {
	metrics, err := h.conversionService.GetConversionMetrics(c.Query("restaurantId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, metrics)
}
