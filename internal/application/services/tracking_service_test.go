package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bleonardo0/cobi-sub002/internal/domain/analytics"
)

func TestStartSessionGeneratesIDWhenBlank(t *testing.T) {
	env := newTestEnv(t)
	svc := env.trackingService()

	session, err := svc.StartSession("resto-1", "", "", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0)")
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, analytics.DeviceMobile, session.DeviceType)

	stored, err := env.sessions.FindByID(session.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "resto-1", stored.RestaurantID)
}

func TestStartSessionRequiresRestaurant(t *testing.T) {
	env := newTestEnv(t)
	svc := env.trackingService()

	_, err := svc.StartSession("", "sess-1", analytics.DeviceDesktop, "")
	assert.True(t, errors.Is(err, analytics.ErrInvalidArgument))
}

func TestStartSessionIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	svc := env.trackingService()

	first, err := svc.StartSession("resto-1", "sess-1", analytics.DeviceTablet, "")
	require.NoError(t, err)

	_, err = svc.StartSession("resto-1", "sess-1", analytics.DeviceDesktop, "")
	require.NoError(t, err)

	stored, err := env.sessions.FindByID("sess-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, first.DeviceType, stored.DeviceType)
}

func TestRecordMenuViewToleratesUnknownSession(t *testing.T) {
	env := newTestEnv(t)
	svc := env.trackingService()

	view, err := svc.RecordMenuView("resto-1", "never-started", analytics.DeviceDesktop, "", "/menu", "")
	require.NoError(t, err)
	assert.NotEmpty(t, view.ID)
}

func TestStartModelViewReconcilesOpenView(t *testing.T) {
	env := newTestEnv(t)
	svc := env.trackingService()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.now = fixedClock(base)

	first, err := svc.StartModelView("model-a", "resto-1", "sess-1", analytics.InteractionView, analytics.DeviceMobile)
	require.NoError(t, err)

	svc.now = fixedClock(base.Add(25 * time.Second))
	second, err := svc.StartModelView("model-a", "resto-1", "sess-1", analytics.InteractionView, analytics.DeviceMobile)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	views, err := env.modelViews.FindInRange("resto-1", nil)
	require.NoError(t, err)
	require.Len(t, views, 2)

	var open, closed int
	for _, v := range views {
		if v.Open() {
			open++
		} else {
			closed++
			require.NotNil(t, v.ViewDuration)
			assert.Equal(t, 25, *v.ViewDuration)
		}
	}
	assert.Equal(t, 1, open)
	assert.Equal(t, 1, closed)
}

func TestStartModelViewAppendsToSession(t *testing.T) {
	env := newTestEnv(t)
	svc := env.trackingService()

	_, err := svc.StartSession("resto-1", "sess-1", analytics.DeviceDesktop, "")
	require.NoError(t, err)
	_, err = svc.StartModelView("model-a", "resto-1", "sess-1", "", "")
	require.NoError(t, err)
	_, err = svc.StartModelView("model-b", "resto-1", "sess-1", "", "")
	require.NoError(t, err)
	_, err = svc.StartModelView("model-a", "resto-1", "sess-1", "", "")
	require.NoError(t, err)

	session, err := env.sessions.FindByID("sess-1")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, []string{"model-a", "model-b"}, session.ModelsViewed)
}

func TestEndModelViewPatchesMostRecent(t *testing.T) {
	env := newTestEnv(t)
	svc := env.trackingService()

	_, err := svc.StartModelView("model-a", "resto-1", "sess-1", analytics.InteractionView, analytics.DeviceMobile)
	require.NoError(t, err)

	ended, err := svc.EndModelView("model-a", "resto-1", "sess-1", 30)
	require.NoError(t, err)
	require.NotNil(t, ended.ViewDuration)
	assert.Equal(t, 30, *ended.ViewDuration)
	assert.False(t, ended.Open())

	// A repeat patches the same record instead of creating another.
	again, err := svc.EndModelView("model-a", "resto-1", "sess-1", 45)
	require.NoError(t, err)
	assert.Equal(t, ended.ID, again.ID)

	views, err := env.modelViews.FindInRange("resto-1", nil)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 45, *views[0].ViewDuration)
	assert.Equal(t, int64(0), svc.OrphanedEndCount())
}

func TestEndModelViewWithoutStartCreatesClosedRecord(t *testing.T) {
	env := newTestEnv(t)
	svc := env.trackingService()

	view, err := svc.EndModelView("model-a", "resto-1", "sess-1", 12)
	require.NoError(t, err)
	assert.False(t, view.Open())
	require.NotNil(t, view.ViewDuration)
	assert.Equal(t, 12, *view.ViewDuration)
	assert.Equal(t, int64(1), svc.OrphanedEndCount())

	views, err := env.modelViews.FindInRange("resto-1", nil)
	require.NoError(t, err)
	assert.Len(t, views, 1)
}

func TestConcurrentEndModelViewSingleRecord(t *testing.T) {
	env := newTestEnv(t)
	svc := env.trackingService()

	_, err := svc.StartModelView("model-a", "resto-1", "sess-1", analytics.InteractionView, analytics.DeviceMobile)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(duration int) {
			defer wg.Done()
			_, err := svc.EndModelView("model-a", "resto-1", "sess-1", duration)
			assert.NoError(t, err)
		}(10 + i)
	}
	wg.Wait()

	views, err := env.modelViews.FindInRange("resto-1", nil)
	require.NoError(t, err)
	assert.Len(t, views, 1)
	assert.Equal(t, int64(0), svc.OrphanedEndCount())
}

func TestEndSessionIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	svc := env.trackingService()

	_, err := svc.StartSession("resto-1", "sess-1", analytics.DeviceDesktop, "")
	require.NoError(t, err)

	first, err := svc.EndSession("sess-1", "resto-1", 120)
	require.NoError(t, err)
	require.NotNil(t, first.TotalDuration)
	assert.Equal(t, 120, *first.TotalDuration)

	second, err := svc.EndSession("sess-1", "resto-1", 150)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 150, *second.TotalDuration)
}

func TestEndSessionWithoutStartCreatesClosedRow(t *testing.T) {
	env := newTestEnv(t)
	svc := env.trackingService()

	session, err := svc.EndSession("ghost", "resto-1", 60)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.NotNil(t, session.EndTime)
	require.NotNil(t, session.TotalDuration)
	assert.Equal(t, 60, *session.TotalDuration)
}
