package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bleonardo0/cobi-sub002/internal/domain/analytics"
)

func seedDailyViews(t *testing.T, env *testEnv, modelID string, now time.Time, viewsPerDayAgo map[int]int) {
	t.Helper()
	for daysAgo, count := range viewsPerDayAgo {
		at := now.AddDate(0, 0, -daysAgo)
		for i := 0; i < count; i++ {
			storeView(t, env, modelID, "resto-1", "sess-1", analytics.DeviceMobile, at, intPtr(10))
		}
	}
}

func TestGetTrendsDoubledViewsAscending(t *testing.T) {
	env := newTestEnv(t)
	svc := env.trendService()
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	svc.now = fixedClock(now)

	// 30-day horizon: 5 views/day in the earlier half, 10 in the later.
	perDay := map[int]int{}
	for d := 15; d < 30; d++ {
		perDay[d] = 5
	}
	for d := 0; d < 15; d++ {
		perDay[d] = 10
	}
	seedDailyViews(t, env, "model-a", now, perDay)

	trends, err := svc.GetTrends("resto-1", "30d", "daily")
	require.NoError(t, err)
	require.Len(t, trends, 1)

	assert.InDelta(t, 100.0, trends[0].GrowthRate, 0.001)
	assert.Equal(t, analytics.TrendAscending, trends[0].Trend)
}

func TestGetTrendsEqualHalvesStable(t *testing.T) {
	env := newTestEnv(t)
	svc := env.trendService()
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	svc.now = fixedClock(now)

	perDay := map[int]int{}
	for d := 0; d < 30; d++ {
		perDay[d] = 3
	}
	seedDailyViews(t, env, "model-a", now, perDay)

	trends, err := svc.GetTrends("resto-1", "30d", "daily")
	require.NoError(t, err)
	require.Len(t, trends, 1)

	assert.InDelta(t, 0.0, trends[0].GrowthRate, 0.001)
	assert.Equal(t, analytics.TrendStable, trends[0].Trend)
}

func TestGetTrendsCollapseDescending(t *testing.T) {
	env := newTestEnv(t)
	svc := env.trendService()
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	svc.now = fixedClock(now)

	// 100 views in the earlier half of a 30-day window, 10 in the later.
	seedDailyViews(t, env, "model-x", now, map[int]int{20: 100, 5: 10})

	trends, err := svc.GetTrends("resto-1", "30d", "daily")
	require.NoError(t, err)
	require.Len(t, trends, 1)

	assert.InDelta(t, -90.0, trends[0].GrowthRate, 0.001)
	assert.Equal(t, analytics.TrendDescending, trends[0].Trend)
}

func TestGetTrendsExcludesZeroViewModels(t *testing.T) {
	env := newTestEnv(t)
	svc := env.trendService()
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	svc.now = fixedClock(now)

	env.seedModel(t, "model-quiet", "resto-1", "Quiet Dish")
	seedDailyViews(t, env, "model-a", now, map[int]int{1: 2})
	// Views outside the 7-day horizon must not resurrect a model.
	seedDailyViews(t, env, "model-old", now, map[int]int{20: 50})

	trends, err := svc.GetTrends("resto-1", "7d", "daily")
	require.NoError(t, err)
	require.Len(t, trends, 1)
	assert.Equal(t, "model-a", trends[0].ModelID)
}

func TestGetTrendsBucketSeries(t *testing.T) {
	env := newTestEnv(t)
	svc := env.trendService()
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	svc.now = fixedClock(now)

	perDay := map[int]int{}
	for d := 0; d < 30; d++ {
		perDay[d] = 1
	}
	seedDailyViews(t, env, "model-a", now, perDay)

	trends, err := svc.GetTrends("resto-1", "30d", "weekly")
	require.NoError(t, err)
	require.Len(t, trends, 1)

	entry := trends[0]
	assert.Len(t, entry.DailyViews, 30)
	assert.Equal(t, 30, entry.TotalViews)

	// 30 days fold into 5 weekly windows ending today, oldest partial.
	require.Len(t, entry.WeeklyViews, 5)
	assert.Equal(t, 2, entry.WeeklyViews[0].Views)
	for _, w := range entry.WeeklyViews[1:] {
		assert.Equal(t, 7, w.Views)
	}

	// Horizon spans July into August.
	require.Len(t, entry.MonthlyViews, 2)
	assert.Equal(t, "2026-07", entry.MonthlyViews[0].Label)
	assert.Equal(t, "2026-08", entry.MonthlyViews[1].Label)
	assert.Equal(t, 30, entry.MonthlyViews[0].Views+entry.MonthlyViews[1].Views)
}

func TestGetTrendsRejectsUnknownParams(t *testing.T) {
	env := newTestEnv(t)
	svc := env.trendService()

	_, err := svc.GetTrends("resto-1", "14d", "daily")
	assert.True(t, errors.Is(err, analytics.ErrInvalidArgument))

	_, err = svc.GetTrends("resto-1", "30d", "hourly")
	assert.True(t, errors.Is(err, analytics.ErrInvalidArgument))
}
