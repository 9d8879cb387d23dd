package services

import (
	"sort"
	"time"

	"github.com/bleonardo0/cobi-sub002/internal/domain/analytics"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/observability/logging"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/observability/performance"
	"github.com/bleonardo0/cobi-sub002/pkg/config"
)

// Trend horizons and granularities accepted by GetTrends.
var trendHorizonDays = map[string]int{
	"7d":  7,
	"30d": 30,
	"90d": 90,
}

// TrendService buckets per-model view series over a horizon and
// classifies each model's trajectory.
type TrendService struct {
	modelViews  analytics.ModelViewRepository
	catalog     analytics.ModelCatalog
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker

	now func() time.Time
}

// NewTrendService creates a new trend service
func NewTrendService(
	modelViews analytics.ModelViewRepository,
	catalog analytics.ModelCatalog,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *TrendService {
	return &TrendService{
		modelViews:  modelViews,
		catalog:     catalog,
		logger:      logger,
		perfTracker: perfTracker,
		now:         time.Now,
	}
}

// GetTrends computes per-model trend analytics over the requested
// horizon. timeRange defaults to 30d, granularity to daily. Models with
// zero views in the horizon are excluded entirely.
func (s *TrendService) GetTrends(restaurantID, timeRange, granularity string) ([]analytics.ModelTrendAnalytics, error) {
	marker := s.perfTracker.StartOperation("analytics:trends", restaurantID)
	defer marker.Complete()

	if timeRange == "" {
		timeRange = "30d"
	}
	days, ok := trendHorizonDays[timeRange]
	if !ok {
		err := &analytics.InvalidArgumentError{Field: "timeRange"}
		marker.SetError(err)
		return nil, err
	}

	if granularity == "" {
		granularity = "daily"
	}
	switch granularity {
	case "daily", "weekly", "monthly":
	default:
		err := &analytics.InvalidArgumentError{Field: "granularity"}
		marker.SetError(err)
		return nil, err
	}

	rng := analytics.LastDays(days, s.now())
	views, err := s.modelViews.FindInRange(restaurantID, &rng)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	perModel := make(map[string]map[string]int)
	for _, view := range views {
		if view.ModelID == "" {
			continue
		}
		daily, ok := perModel[view.ModelID]
		if !ok {
			daily = make(map[string]int)
			perModel[view.ModelID] = daily
		}
		daily[view.Timestamp.UTC().Format("2006-01-02")]++
	}

	dates := horizonDates(rng.Start, days)

	result := make([]analytics.ModelTrendAnalytics, 0, len(perModel))
	for modelID, counts := range perModel {
		entry := analytics.ModelTrendAnalytics{ModelID: modelID}

		entry.DailyViews = dailyBuckets(dates, counts)
		entry.WeeklyViews = weeklyBuckets(entry.DailyViews)
		entry.MonthlyViews = monthlyBuckets(entry.DailyViews)

		for _, b := range entry.DailyViews {
			entry.TotalViews += b.Views
		}

		var series []analytics.TrendBucket
		switch granularity {
		case "weekly":
			series = entry.WeeklyViews
		case "monthly":
			series = entry.MonthlyViews
		default:
			series = entry.DailyViews
		}
		entry.GrowthRate = growthRate(series)
		entry.Trend = classify(entry.GrowthRate)

		if info, err := s.catalog.Lookup(modelID); err == nil && info != nil {
			entry.Name = info.Name
		}

		result = append(result, entry)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalViews != result[j].TotalViews {
			return result[i].TotalViews > result[j].TotalViews
		}
		return result[i].ModelID < result[j].ModelID
	})

	s.logger.Analytics().Debug("Trends computed",
		"restaurantId", restaurantID,
		"timeRange", timeRange,
		"granularity", granularity,
		"models", len(result))
	marker.SetSuccess(true)
	return result, nil
}

// horizonDates lists every UTC calendar date of the horizon, oldest first.
func horizonDates(start time.Time, days int) []string {
	dates := make([]string, days)
	day := start.UTC().Truncate(24 * time.Hour)
	for i := 0; i < days; i++ {
		dates[i] = day.Format("2006-01-02")
		day = day.AddDate(0, 0, 1)
	}
	return dates
}

func dailyBuckets(dates []string, counts map[string]int) []analytics.TrendBucket {
	buckets := make([]analytics.TrendBucket, len(dates))
	for i, date := range dates {
		buckets[i] = analytics.TrendBucket{Label: date, Views: counts[date]}
	}
	return buckets
}

// weeklyBuckets folds the daily series into non-overlapping 7-day
// windows ending on the last day. The oldest window may be partial.
// Labels carry the first date of each window.
func weeklyBuckets(daily []analytics.TrendBucket) []analytics.TrendBucket {
	var weeks []analytics.TrendBucket
	end := len(daily)
	for end > 0 {
		start := end - 7
		if start < 0 {
			start = 0
		}
		week := analytics.TrendBucket{Label: daily[start].Label}
		for _, b := range daily[start:end] {
			week.Views += b.Views
		}
		weeks = append([]analytics.TrendBucket{week}, weeks...)
		end = start
	}
	return weeks
}

// monthlyBuckets folds the daily series into calendar months, labelled
// "YYYY-MM", oldest first.
func monthlyBuckets(daily []analytics.TrendBucket) []analytics.TrendBucket {
	var months []analytics.TrendBucket
	for _, b := range daily {
		label := b.Label[:7]
		if n := len(months); n > 0 && months[n-1].Label == label {
			months[n-1].Views += b.Views
			continue
		}
		months = append(months, analytics.TrendBucket{Label: label, Views: b.Views})
	}
	return months
}

// growthRate compares the earlier half of the series with the later
// half. The earlier half takes the first floor(n/2) buckets.
func growthRate(series []analytics.TrendBucket) float64 {
	if len(series) == 0 {
		return 0
	}
	mid := len(series) / 2
	var earlier, later int
	for _, b := range series[:mid] {
		earlier += b.Views
	}
	for _, b := range series[mid:] {
		later += b.Views
	}
	denom := earlier
	if denom < 1 {
		denom = 1
	}
	return float64(later-earlier) / float64(denom) * 100
}

func classify(rate float64) analytics.TrendClassification {
	threshold := config.TrendGrowthThreshold
	switch {
	case rate > threshold:
		return analytics.TrendAscending
	case rate < -threshold:
		return analytics.TrendDescending
	default:
		return analytics.TrendStable
	}
}
