package services

import (
	"math"
	"sort"
	"time"

	"github.com/bleonardo0/cobi-sub002/internal/domain/analytics"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/observability/logging"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/observability/performance"
)

// AnalyticsService recomputes aggregate statistics from raw model view
// events on every query. Nothing is cached or pre-rolled, so results
// can never drift from the event store.
type AnalyticsService struct {
	modelViews  analytics.ModelViewRepository
	catalog     analytics.ModelCatalog
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(
	modelViews analytics.ModelViewRepository,
	catalog analytics.ModelCatalog,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *AnalyticsService {
	return &AnalyticsService{
		modelViews:  modelViews,
		catalog:     catalog,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// GetGeneralStats aggregates view events for a restaurant, or globally
// when restaurantID is empty. A nil range means all time; a range also
// turns on zero-filled daily buckets.
func (s *AnalyticsService) GetGeneralStats(restaurantID string, rng *analytics.TimeRange) (*analytics.GeneralStats, error) {
	marker := s.perfTracker.StartOperation("analytics:general_stats", restaurantID)
	defer marker.Complete()

	start := time.Now()
	views, err := s.modelViews.FindInRange(restaurantID, rng)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	stats := s.computeStats(views, rng)

	s.logger.Analytics().Debug("General stats computed",
		"restaurantId", restaurantID,
		"totalViews", stats.TotalViews,
		"models", len(stats.PerModel),
		"duration", time.Since(start))
	marker.AddMetadata("totalViews", stats.TotalViews)
	marker.SetSuccess(true)
	return stats, nil
}

type modelAccumulator struct {
	views          int
	sessions       map[string]struct{}
	closedDuration int
	closedCount    int
}

func (s *AnalyticsService) computeStats(views []*analytics.ModelView, rng *analytics.TimeRange) *analytics.GeneralStats {
	stats := &analytics.GeneralStats{
		DeviceBreakdown: make(map[analytics.DeviceType]int),
	}

	perModel := make(map[string]*modelAccumulator)
	sessions := make(map[string]struct{})
	perDay := make(map[string]int)

	for _, view := range views {
		if view.ModelID == "" {
			continue
		}

		stats.TotalViews++
		sessions[view.SessionID] = struct{}{}
		stats.DeviceBreakdown[view.DeviceType]++
		perDay[view.Timestamp.UTC().Format("2006-01-02")]++

		acc, ok := perModel[view.ModelID]
		if !ok {
			acc = &modelAccumulator{sessions: make(map[string]struct{})}
			perModel[view.ModelID] = acc
		}
		acc.views++
		acc.sessions[view.SessionID] = struct{}{}
		if view.ViewDuration != nil && !view.Open() {
			acc.closedDuration += *view.ViewDuration
			acc.closedCount++
		}
	}

	stats.UniqueSessions = len(sessions)
	stats.PerModel = s.rankModels(perModel, stats.TotalViews)
	stats.ViewsByDay = buildDaySeries(perDay, rng)

	return stats
}

// rankModels orders by view count descending with modelID ascending as
// the tiebreaker, and assigns popularity as each model's rounded
// percentage share of window views.
func (s *AnalyticsService) rankModels(perModel map[string]*modelAccumulator, totalViews int) []analytics.ModelAnalytics {
	result := make([]analytics.ModelAnalytics, 0, len(perModel))
	for modelID, acc := range perModel {
		entry := analytics.ModelAnalytics{
			ModelID:        modelID,
			TotalViews:     acc.views,
			UniqueSessions: len(acc.sessions),
		}
		if acc.closedCount > 0 {
			entry.AvgViewDuration = float64(acc.closedDuration) / float64(acc.closedCount)
		}
		if totalViews > 0 {
			entry.PopularityScore = int(math.Round(float64(acc.views) / float64(totalViews) * 100))
		}
		s.decorate(&entry)
		result = append(result, entry)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalViews != result[j].TotalViews {
			return result[i].TotalViews > result[j].TotalViews
		}
		return result[i].ModelID < result[j].ModelID
	})

	return result
}

// decorate attaches catalog metadata when available. Catalog misses and
// failures never affect the computed numbers.
func (s *AnalyticsService) decorate(entry *analytics.ModelAnalytics) {
	if s.catalog == nil {
		return
	}
	info, err := s.catalog.Lookup(entry.ModelID)
	if err != nil {
		s.logger.Analytics().Warn("Catalog lookup failed, serving bare model id",
			"modelId", entry.ModelID, "error", err.Error())
		return
	}
	if info == nil {
		return
	}
	entry.Name = info.Name
	entry.Thumbnail = info.Thumbnail
	entry.Category = info.Category
}

// buildDaySeries turns per-day counts into an ordered series. With a
// query range the series covers every calendar day in the range, zero
// views included; without one only days that saw views appear.
func buildDaySeries(perDay map[string]int, rng *analytics.TimeRange) []analytics.DayCount {
	var series []analytics.DayCount

	if rng != nil {
		day := rng.Start.UTC().Truncate(24 * time.Hour)
		end := rng.End.UTC()
		for day.Before(end) {
			date := day.Format("2006-01-02")
			series = append(series, analytics.DayCount{Date: date, Views: perDay[date]})
			day = day.AddDate(0, 0, 1)
		}
		return series
	}

	dates := make([]string, 0, len(perDay))
	for date := range perDay {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	for _, date := range dates {
		series = append(series, analytics.DayCount{Date: date, Views: perDay[date]})
	}
	return series
}
