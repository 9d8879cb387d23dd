package analytics

import (
	"database/sql"
	"time"

	"github.com/bleonardo0/cobi-sub002/internal/domain/analytics"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/observability/logging"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/persistence/database"
)

// SQLSessionRepository handles session persistence.
type SQLSessionRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLSessionRepository creates a new instance of the repository.
func NewSQLSessionRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLSessionRepository {
	return &SQLSessionRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new session. INSERT OR IGNORE keeps creation idempotent
// on id: the first tracking call of a page load wins, resends are no-ops.
func (r *SQLSessionRepository) Create(session *analytics.Session) error {
	const query = `
		INSERT OR IGNORE INTO sessions (id, restaurant_id, device_type, user_agent, started_at)
		VALUES (?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing session insert",
		"sessionId", session.ID,
		"restaurantId", session.RestaurantID,
		"deviceType", session.DeviceType)

	_, err := r.db.Exec(
		query,
		session.ID,
		session.RestaurantID,
		session.DeviceType,
		session.UserAgent,
		database.FormatTimestamp(session.StartTime),
	)
	if err != nil {
		r.logger.Database().Error("Session insert failed",
			"error", err.Error(),
			"sessionId", session.ID,
			"restaurantId", session.RestaurantID)
		return analytics.NewStorageError("store session", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), session.RestaurantID)
	return nil
}

// End closes the session. The UPDATE is idempotent; when no row matches,
// a closed session row is created so the end signal is not lost.
func (r *SQLSessionRepository) End(sessionID, restaurantID string, duration int, endedAt time.Time) (*analytics.Session, error) {
	const query = `
		UPDATE sessions SET ended_at = ?, total_duration = ?
		WHERE id = ?`

	start := time.Now()
	res, err := r.db.Exec(query, database.FormatTimestamp(endedAt), duration, sessionID)
	if err != nil {
		r.logger.Database().Error("Session end update failed",
			"error", err.Error(),
			"sessionId", sessionID,
			"restaurantId", restaurantID)
		return nil, analytics.NewStorageError("end session", err)
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		// End arrived without a start; record a closed session directly.
		startedAt := endedAt.Add(-time.Duration(duration) * time.Second)
		const insert = `
			INSERT OR IGNORE INTO sessions (id, restaurant_id, device_type, user_agent, started_at, ended_at, total_duration)
			VALUES (?, ?, ?, ?, ?, ?, ?)`
		_, err := r.db.Exec(insert, sessionID, restaurantID, analytics.DeviceDesktop, "",
			database.FormatTimestamp(startedAt), database.FormatTimestamp(endedAt), duration)
		if err != nil {
			return nil, analytics.NewStorageError("end session", err)
		}
		r.logger.Database().Info("Session end recorded without matching start",
			"sessionId", sessionID,
			"restaurantId", restaurantID)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), restaurantID)
	return r.FindByID(sessionID)
}

// AppendModelViewed adds a model to the session's viewed set.
func (r *SQLSessionRepository) AppendModelViewed(sessionID, modelID string) error {
	const query = `INSERT OR IGNORE INTO session_models (session_id, model_id) VALUES (?, ?)`

	if _, err := r.db.Exec(query, sessionID, modelID); err != nil {
		r.logger.Database().Error("Session model append failed",
			"error", err.Error(),
			"sessionId", sessionID,
			"modelId", modelID)
		return analytics.NewStorageError("append model viewed", err)
	}
	return nil
}

// FindByID returns the session with its viewed-model set, or nil.
func (r *SQLSessionRepository) FindByID(sessionID string) (*analytics.Session, error) {
	const query = `
		SELECT id, restaurant_id, device_type, user_agent, started_at, ended_at, total_duration
		FROM sessions WHERE id = ?`

	var session analytics.Session
	var userAgent sql.NullString
	var startedAtStr string
	var endedAtStr sql.NullString
	var totalDuration sql.NullInt64

	err := r.db.QueryRow(query, sessionID).Scan(
		&session.ID,
		&session.RestaurantID,
		&session.DeviceType,
		&userAgent,
		&startedAtStr,
		&endedAtStr,
		&totalDuration,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Session lookup failed", "error", err.Error(), "sessionId", sessionID)
		return nil, analytics.NewStorageError("find session", err)
	}

	session.UserAgent = userAgent.String
	session.StartTime, err = database.ParseTimestamp(startedAtStr)
	if err != nil {
		r.logger.Database().Error("Failed to parse session start timestamp",
			"error", err.Error(), "sessionId", sessionID, "timestamp", startedAtStr)
	}
	if endedAtStr.Valid {
		if t, err := database.ParseTimestamp(endedAtStr.String); err == nil {
			session.EndTime = &t
		}
	}
	if totalDuration.Valid {
		d := int(totalDuration.Int64)
		session.TotalDuration = &d
	}

	models, err := r.loadModelsViewed(sessionID)
	if err != nil {
		return nil, err
	}
	session.ModelsViewed = models

	return &session, nil
}

func (r *SQLSessionRepository) loadModelsViewed(sessionID string) ([]string, error) {
	const query = `SELECT model_id FROM session_models WHERE session_id = ? ORDER BY model_id`

	rows, err := r.db.Query(query, sessionID)
	if err != nil {
		return nil, analytics.NewStorageError("load models viewed", err)
	}
	defer rows.Close()

	var models []string
	for rows.Next() {
		var modelID string
		if err := rows.Scan(&modelID); err != nil {
			r.logger.Database().Error("Failed to scan session model row", "error", err.Error())
			continue
		}
		models = append(models, modelID)
	}
	if err := rows.Err(); err != nil {
		return nil, analytics.NewStorageError("load models viewed", err)
	}

	return models, nil
}

// DeleteByRestaurant removes all sessions and their viewed-model sets
// for a restaurant.
func (r *SQLSessionRepository) DeleteByRestaurant(restaurantID string) error {
	if _, err := r.db.Exec(
		`DELETE FROM session_models WHERE session_id IN (SELECT id FROM sessions WHERE restaurant_id = ?)`,
		restaurantID); err != nil {
		return analytics.NewStorageError("delete session models", err)
	}
	if _, err := r.db.Exec(`DELETE FROM sessions WHERE restaurant_id = ?`, restaurantID); err != nil {
		return analytics.NewStorageError("delete sessions", err)
	}
	return nil
}

// DeleteAll removes every session.
func (r *SQLSessionRepository) DeleteAll() error {
	if _, err := r.db.Exec(`DELETE FROM session_models`); err != nil {
		return analytics.NewStorageError("delete session models", err)
	}
	if _, err := r.db.Exec(`DELETE FROM sessions`); err != nil {
		return analytics.NewStorageError("delete sessions", err)
	}
	return nil
}
