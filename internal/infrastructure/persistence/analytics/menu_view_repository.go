package analytics

import (
	"time"

	"github.com/bleonardo0/cobi-sub002/internal/domain/analytics"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/observability/logging"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/persistence/database"
)

// SQLMenuViewRepository handles menu page open event persistence.
type SQLMenuViewRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLMenuViewRepository creates a new instance of the repository.
func NewSQLMenuViewRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLMenuViewRepository {
	return &SQLMenuViewRepository{
		db:     db,
		logger: logger,
	}
}

// Store saves a menu view event. Menu views are immutable once created.
func (r *SQLMenuViewRepository) Store(view *analytics.MenuView) error {
	const query = `
		INSERT INTO menu_views (id, restaurant_id, session_id, device_type, page_url, referrer, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing menu view insert",
		"menuViewId", view.ID,
		"restaurantId", view.RestaurantID,
		"sessionId", view.SessionID)

	_, err := r.db.Exec(
		query,
		view.ID,
		view.RestaurantID,
		view.SessionID,
		view.DeviceType,
		view.PageURL,
		view.Referrer,
		database.FormatTimestamp(view.Timestamp),
	)
	if err != nil {
		r.logger.Database().Error("Menu view insert failed",
			"error", err.Error(),
			"menuViewId", view.ID,
			"restaurantId", view.RestaurantID,
			"sessionId", view.SessionID)
		return analytics.NewStorageError("store menu view", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), view.RestaurantID)
	return nil
}

// DeleteByRestaurant removes all menu views for a restaurant.
func (r *SQLMenuViewRepository) DeleteByRestaurant(restaurantID string) error {
	if _, err := r.db.Exec(`DELETE FROM menu_views WHERE restaurant_id = ?`, restaurantID); err != nil {
		return analytics.NewStorageError("delete menu views", err)
	}
	return nil
}

// DeleteAll removes every menu view.
func (r *SQLMenuViewRepository) DeleteAll() error {
	if _, err := r.db.Exec(`DELETE FROM menu_views`); err != nil {
		return analytics.NewStorageError("delete menu views", err)
	}
	return nil
}
