package analytics

import (
	"database/sql"
	"strings"
	"time"

	"github.com/bleonardo0/cobi-sub002/internal/domain/analytics"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/observability/logging"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/persistence/database"
)

// SQLModelViewRepository handles model view event persistence and serves
// the read side of the aggregation queries.
type SQLModelViewRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLModelViewRepository creates a new instance of the repository.
func NewSQLModelViewRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLModelViewRepository {
	return &SQLModelViewRepository{
		db:     db,
		logger: logger,
	}
}

const modelViewColumns = `id, model_id, restaurant_id, session_id, interaction_type, device_type, created_at, view_duration, ended_at`

// Store saves a model view event.
func (r *SQLModelViewRepository) Store(view *analytics.ModelView) error {
	const query = `
		INSERT INTO model_views (id, model_id, restaurant_id, session_id, interaction_type, device_type, created_at, view_duration, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing model view insert",
		"modelViewId", view.ID,
		"modelId", view.ModelID,
		"restaurantId", view.RestaurantID,
		"sessionId", view.SessionID)

	var duration interface{}
	if view.ViewDuration != nil {
		duration = *view.ViewDuration
	}
	var endedAt interface{}
	if view.EndedAt != nil {
		endedAt = database.FormatTimestamp(*view.EndedAt)
	}

	_, err := r.db.Exec(
		query,
		view.ID,
		view.ModelID,
		view.RestaurantID,
		view.SessionID,
		view.InteractionType,
		view.DeviceType,
		database.FormatTimestamp(view.Timestamp),
		duration,
		endedAt,
	)
	if err != nil {
		r.logger.Database().Error("Model view insert failed",
			"error", err.Error(),
			"modelViewId", view.ID,
			"modelId", view.ModelID,
			"restaurantId", view.RestaurantID)
		return analytics.NewStorageError("store model view", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), view.RestaurantID)
	return nil
}

// FindOpen returns the open view for (modelID, sessionID), or nil.
// Newest first so the latest start wins if duplicates ever exist.
func (r *SQLModelViewRepository) FindOpen(modelID, sessionID string) (*analytics.ModelView, error) {
	const query = `
		SELECT ` + modelViewColumns + `
		FROM model_views
		WHERE model_id = ? AND session_id = ? AND ended_at IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	return r.queryOne(query, modelID, sessionID)
}

// FindMostRecent returns the newest view for the key regardless of open
// state, or nil when none exists.
func (r *SQLModelViewRepository) FindMostRecent(modelID, restaurantID, sessionID string) (*analytics.ModelView, error) {
	const query = `
		SELECT ` + modelViewColumns + `
		FROM model_views
		WHERE model_id = ? AND restaurant_id = ? AND session_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	return r.queryOne(query, modelID, restaurantID, sessionID)
}

func (r *SQLModelViewRepository) queryOne(query string, args ...interface{}) (*analytics.ModelView, error) {
	row := r.db.QueryRow(query, args...)
	view, err := scanModelView(row, r.logger)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, analytics.NewStorageError("find model view", err)
	}
	return view, nil
}

// Close patches viewDuration and endedAt on an existing record. Closing
// an already closed record overwrites with the newer values.
func (r *SQLModelViewRepository) Close(id string, duration int, endedAt time.Time) error {
	const query = `UPDATE model_views SET view_duration = ?, ended_at = ? WHERE id = ?`

	start := time.Now()
	_, err := r.db.Exec(query, duration, database.FormatTimestamp(endedAt), id)
	if err != nil {
		r.logger.Database().Error("Model view close failed",
			"error", err.Error(),
			"modelViewId", id)
		return analytics.NewStorageError("close model view", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), "")
	return nil
}

// FindInRange returns views ordered by timestamp ascending. Empty
// restaurantID means all restaurants; a nil range means all time.
func (r *SQLModelViewRepository) FindInRange(restaurantID string, rng *analytics.TimeRange) ([]*analytics.ModelView, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + modelViewColumns + ` FROM model_views`)

	var conditions []string
	var args []interface{}
	if restaurantID != "" {
		conditions = append(conditions, "restaurant_id = ?")
		args = append(args, restaurantID)
	}
	if rng != nil {
		conditions = append(conditions, "created_at >= ?", "created_at < ?")
		args = append(args, database.FormatTimestamp(rng.Start), database.FormatTimestamp(rng.End))
	}
	if len(conditions) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	sb.WriteString(" ORDER BY created_at ASC, id ASC")
	query := sb.String()

	start := time.Now()
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Database().Error("Model view range query failed",
			"error", err.Error(),
			"restaurantId", restaurantID)
		return nil, analytics.NewStorageError("query model views", err)
	}
	defer rows.Close()

	var views []*analytics.ModelView
	for rows.Next() {
		view, err := scanModelView(rows, r.logger)
		if err != nil {
			r.logger.Database().Error("Failed to scan model view row", "error", err.Error())
			continue
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, analytics.NewStorageError("query model views", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), restaurantID)
	return views, nil
}

// DeleteByRestaurant removes all model views for a restaurant.
func (r *SQLModelViewRepository) DeleteByRestaurant(restaurantID string) error {
	if _, err := r.db.Exec(`DELETE FROM model_views WHERE restaurant_id = ?`, restaurantID); err != nil {
		return analytics.NewStorageError("delete model views", err)
	}
	return nil
}

// DeleteAll removes every model view.
func (r *SQLModelViewRepository) DeleteAll() error {
	if _, err := r.db.Exec(`DELETE FROM model_views`); err != nil {
		return analytics.NewStorageError("delete model views", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanModelView(row rowScanner, logger *logging.ChanneledLogger) (*analytics.ModelView, error) {
	var view analytics.ModelView
	var createdAtStr string
	var duration sql.NullInt64
	var endedAtStr sql.NullString

	err := row.Scan(
		&view.ID,
		&view.ModelID,
		&view.RestaurantID,
		&view.SessionID,
		&view.InteractionType,
		&view.DeviceType,
		&createdAtStr,
		&duration,
		&endedAtStr,
	)
	if err != nil {
		return nil, err
	}

	view.Timestamp, err = database.ParseTimestamp(createdAtStr)
	if err != nil {
		logger.Database().Error("Failed to parse model view timestamp",
			"error", err.Error(), "modelViewId", view.ID, "timestamp", createdAtStr)
	}
	if duration.Valid {
		d := int(duration.Int64)
		view.ViewDuration = &d
	}
	if endedAtStr.Valid {
		if t, err := database.ParseTimestamp(endedAtStr.String); err == nil {
			view.EndedAt = &t
		}
	}

	return &view, nil
}
