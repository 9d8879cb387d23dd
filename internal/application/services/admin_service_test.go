package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bleonardo0/cobi-sub002/internal/domain/analytics"
	"github.com/bleonardo0/cobi-sub002/pkg/config"
)

func newAdminEnv(t *testing.T) (*testEnv, *TrackingService, *AdminService) {
	env := newTestEnv(t)
	tracking := env.trackingService()
	admin := NewAdminService(env.sessions, env.menuViews, env.modelViews, tracking, env.logger, env.perfTracker)
	return env, tracking, admin
}

func TestResetScopedToRestaurant(t *testing.T) {
	env, tracking, admin := newAdminEnv(t)

	_, err := tracking.StartSession("resto-1", "sess-1", analytics.DeviceMobile, "")
	require.NoError(t, err)
	_, err = tracking.StartSession("resto-2", "sess-2", analytics.DeviceMobile, "")
	require.NoError(t, err)
	_, err = tracking.StartModelView("model-a", "resto-1", "sess-1", "", "")
	require.NoError(t, err)
	_, err = tracking.StartModelView("model-b", "resto-2", "sess-2", "", "")
	require.NoError(t, err)

	require.NoError(t, admin.Reset("resto-1"))

	gone, err := env.sessions.FindByID("sess-1")
	require.NoError(t, err)
	assert.Nil(t, gone)

	kept, err := env.sessions.FindByID("sess-2")
	require.NoError(t, err)
	assert.NotNil(t, kept)

	views, err := env.modelViews.FindInRange("", nil)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "resto-2", views[0].RestaurantID)
}

func TestResetGlobal(t *testing.T) {
	env, tracking, admin := newAdminEnv(t)

	_, err := tracking.StartSession("resto-1", "sess-1", analytics.DeviceMobile, "")
	require.NoError(t, err)
	_, err = tracking.RecordMenuView("resto-1", "sess-1", analytics.DeviceMobile, "", "/menu", "")
	require.NoError(t, err)
	_, err = tracking.StartModelView("model-a", "resto-1", "sess-1", "", "")
	require.NoError(t, err)

	require.NoError(t, admin.Reset(""))

	views, err := env.modelViews.FindInRange("", nil)
	require.NoError(t, err)
	assert.Empty(t, views)

	session, err := env.sessions.FindByID("sess-1")
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestMetricsReportsOrphanedEnds(t *testing.T) {
	_, tracking, admin := newAdminEnv(t)

	_, err := tracking.EndModelView("model-a", "resto-1", "sess-1", 10)
	require.NoError(t, err)

	report := admin.Metrics()
	assert.Equal(t, int64(1), report.OrphanedEnds)
	assert.NotEmpty(t, report.Operations)
}

func TestOperatorAuthentication(t *testing.T) {
	env := newTestEnv(t)
	auth := NewAuthService(env.logger, env.perfTracker)

	prevSecret, prevPassword := config.JWTSecret, config.OperatorPassword
	config.JWTSecret = "test-secret"
	config.OperatorPassword = "hunter2"
	t.Cleanup(func() {
		config.JWTSecret = prevSecret
		config.OperatorPassword = prevPassword
	})

	rejected := auth.AuthenticateOperator("wrong")
	assert.False(t, rejected.Success)

	granted := auth.AuthenticateOperator("hunter2")
	require.True(t, granted.Success)
	assert.NotEmpty(t, granted.Token)

	assert.True(t, auth.ValidateOperatorToken(granted.Token))
	assert.False(t, auth.ValidateOperatorToken("not-a-token"))
}
