package services

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/observability/logging"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/observability/performance"
	persistence "github.com/bleonardo0/cobi-sub002/internal/infrastructure/persistence/analytics"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/persistence/database"
)

// testEnv wires real SQLite repositories against a throwaway database
// file so service behavior is exercised end to end.
type testEnv struct {
	db          *database.DB
	sessions    *persistence.SQLSessionRepository
	menuViews   *persistence.SQLMenuViewRepository
	modelViews  *persistence.SQLModelViewRepository
	catalog     *persistence.SQLModelCatalog
	orders      *persistence.SQLOrderSource
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.NewConnection("sqlite3", filepath.Join(t.TempDir(), "analytics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, persistence.EnsureSchema(db))

	loggerConfig := logging.DefaultLoggerConfig()
	loggerConfig.DefaultLevel = slog.LevelError
	logger, err := logging.NewChanneledLogger(loggerConfig)
	require.NoError(t, err)

	return &testEnv{
		db:          db,
		sessions:    persistence.NewSQLSessionRepository(db, logger),
		menuViews:   persistence.NewSQLMenuViewRepository(db, logger),
		modelViews:  persistence.NewSQLModelViewRepository(db, logger),
		catalog:     persistence.NewSQLModelCatalog(db, logger),
		orders:      persistence.NewSQLOrderSource(db, logger),
		logger:      logger,
		perfTracker: performance.NewTracker(nil),
	}
}

func (e *testEnv) trackingService() *TrackingService {
	return NewTrackingService(e.sessions, e.menuViews, e.modelViews, e.logger, e.perfTracker)
}

func (e *testEnv) analyticsService() *AnalyticsService {
	return NewAnalyticsService(e.modelViews, e.catalog, e.logger, e.perfTracker)
}

func (e *testEnv) trendService() *TrendService {
	return NewTrendService(e.modelViews, e.catalog, e.logger, e.perfTracker)
}

func (e *testEnv) conversionService() *ConversionService {
	return NewConversionService(e.modelViews, e.orders, e.catalog, e.logger, e.perfTracker)
}

func (e *testEnv) seedModel(t *testing.T, id, restaurantID, name string) {
	t.Helper()
	_, err := e.db.Exec(
		`INSERT INTO models (id, restaurant_id, name, thumbnail, category) VALUES (?, ?, ?, '', '')`,
		id, restaurantID, name)
	require.NoError(t, err)
}

func (e *testEnv) seedOrders(t *testing.T, restaurantID, modelID string, count int) {
	t.Helper()
	_, err := e.db.Exec(
		`INSERT INTO model_orders (restaurant_id, model_id, order_count) VALUES (?, ?, ?)`,
		restaurantID, modelID, count)
	require.NoError(t, err)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
