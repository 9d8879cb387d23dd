package analytics

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bleonardo0/cobi-sub002/internal/domain/analytics"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/observability/logging"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/persistence/database"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/security"
)

func newTestDB(t *testing.T) (*database.DB, *logging.ChanneledLogger) {
	t.Helper()

	db, err := database.NewConnection("sqlite3", filepath.Join(t.TempDir(), "analytics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, EnsureSchema(db))

	loggerConfig := logging.DefaultLoggerConfig()
	loggerConfig.DefaultLevel = slog.LevelError
	logger, err := logging.NewChanneledLogger(loggerConfig)
	require.NoError(t, err)

	return db, logger
}

func newModelView(modelID, sessionID string, at time.Time) *domain.ModelView {
	return &domain.ModelView{
		ID:              security.GenerateULID(),
		ModelID:         modelID,
		RestaurantID:    "resto-1",
		SessionID:       sessionID,
		InteractionType: domain.InteractionView,
		DeviceType:      domain.DeviceMobile,
		Timestamp:       at,
	}
}

func TestModelViewFindOpenIgnoresClosed(t *testing.T) {
	db, logger := newTestDB(t)
	repo := NewSQLModelViewRepository(db, logger)

	at := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	view := newModelView("model-a", "sess-1", at)
	require.NoError(t, repo.Store(view))

	open, err := repo.FindOpen("model-a", "sess-1")
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, view.ID, open.ID)

	require.NoError(t, repo.Close(view.ID, 30, at.Add(30*time.Second)))

	open, err = repo.FindOpen("model-a", "sess-1")
	require.NoError(t, err)
	assert.Nil(t, open)
}

func TestModelViewFindMostRecentOrdering(t *testing.T) {
	db, logger := newTestDB(t)
	repo := NewSQLModelViewRepository(db, logger)

	at := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	older := newModelView("model-a", "sess-1", at)
	newer := newModelView("model-a", "sess-1", at.Add(time.Minute))
	require.NoError(t, repo.Store(older))
	require.NoError(t, repo.Store(newer))

	recent, err := repo.FindMostRecent("model-a", "resto-1", "sess-1")
	require.NoError(t, err)
	require.NotNil(t, recent)
	assert.Equal(t, newer.ID, recent.ID)

	missing, err := repo.FindMostRecent("model-a", "resto-1", "other-session")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestModelViewFindInRangeFilters(t *testing.T) {
	db, logger := newTestDB(t)
	repo := NewSQLModelViewRepository(db, logger)

	inRange := newModelView("model-a", "sess-1", time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC))
	before := newModelView("model-a", "sess-1", time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	other := newModelView("model-b", "sess-2", time.Date(2026, 8, 10, 13, 0, 0, 0, time.UTC))
	other.RestaurantID = "resto-2"
	require.NoError(t, repo.Store(inRange))
	require.NoError(t, repo.Store(before))
	require.NoError(t, repo.Store(other))

	rng := &domain.TimeRange{
		Start: time.Date(2026, 8, 9, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 11, 0, 0, 0, 0, time.UTC),
	}
	views, err := repo.FindInRange("resto-1", rng)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, inRange.ID, views[0].ID)

	all, err := repo.FindInRange("", nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// Ascending by timestamp.
	assert.True(t, all[0].Timestamp.Before(all[1].Timestamp) || all[0].Timestamp.Equal(all[1].Timestamp))
}

func TestSessionEndWithoutStartInsertsClosedRow(t *testing.T) {
	db, logger := newTestDB(t)
	repo := NewSQLSessionRepository(db, logger)

	endedAt := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	session, err := repo.End("ghost", "resto-1", 90, endedAt)
	require.NoError(t, err)
	require.NotNil(t, session)
	require.NotNil(t, session.EndTime)
	assert.True(t, endedAt.Equal(*session.EndTime))
	require.NotNil(t, session.TotalDuration)
	assert.Equal(t, 90, *session.TotalDuration)
	assert.True(t, endedAt.Add(-90*time.Second).Equal(session.StartTime))
}

func TestDeleteByRestaurantScopes(t *testing.T) {
	db, logger := newTestDB(t)
	sessions := NewSQLSessionRepository(db, logger)
	modelViews := NewSQLModelViewRepository(db, logger)

	at := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, sessions.Create(&domain.Session{
		ID: "sess-1", RestaurantID: "resto-1", DeviceType: domain.DeviceMobile, StartTime: at,
	}))
	require.NoError(t, sessions.Create(&domain.Session{
		ID: "sess-2", RestaurantID: "resto-2", DeviceType: domain.DeviceMobile, StartTime: at,
	}))
	require.NoError(t, sessions.AppendModelViewed("sess-1", "model-a"))

	kept := newModelView("model-b", "sess-2", at)
	kept.RestaurantID = "resto-2"
	require.NoError(t, modelViews.Store(newModelView("model-a", "sess-1", at)))
	require.NoError(t, modelViews.Store(kept))

	require.NoError(t, modelViews.DeleteByRestaurant("resto-1"))
	require.NoError(t, sessions.DeleteByRestaurant("resto-1"))

	gone, err := sessions.FindByID("sess-1")
	require.NoError(t, err)
	assert.Nil(t, gone)

	survivor, err := sessions.FindByID("sess-2")
	require.NoError(t, err)
	assert.NotNil(t, survivor)

	remaining, err := modelViews.FindInRange("", nil)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "resto-2", remaining[0].RestaurantID)
}

func TestCatalogLookupMissingIsNil(t *testing.T) {
	db, logger := newTestDB(t)
	catalog := NewSQLModelCatalog(db, logger)

	info, err := catalog.Lookup("unknown")
	require.NoError(t, err)
	assert.Nil(t, info)

	_, err = db.Exec(`INSERT INTO models (id, restaurant_id, name, thumbnail, category) VALUES ('m1', 'r1', 'Tiramisu', 't.png', 'dessert')`)
	require.NoError(t, err)

	info, err = catalog.Lookup("m1")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "Tiramisu", info.Name)
	assert.Equal(t, "dessert", info.Category)
}

func TestOrderSourceMissingReportsNotOK(t *testing.T) {
	db, logger := newTestDB(t)
	orders := NewSQLOrderSource(db, logger)

	_, ok, err := orders.OrderCount("r1", "m1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = db.Exec(`INSERT INTO model_orders (restaurant_id, model_id, order_count) VALUES ('r1', 'm1', 7)`)
	require.NoError(t, err)

	count, ok, err := orders.OrderCount("r1", "m1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 7, count)
}

func TestTimestampRoundTrip(t *testing.T) {
	at := time.Date(2026, 8, 10, 12, 34, 56, 0, time.UTC)
	parsed, err := database.ParseTimestamp(database.FormatTimestamp(at))
	require.NoError(t, err)
	assert.True(t, at.Equal(parsed))

	legacy, err := database.ParseTimestamp("2026-08-10T12:34:56.000Z")
	require.NoError(t, err)
	assert.True(t, at.Equal(legacy))
}
