package analytics

import "time"

// SessionRepository stores and mutates browsing sessions.
type SessionRepository interface {
	// Create stores a new session. Creation is idempotent on id: a
	// session that already exists is left untouched.
	Create(session *Session) error

	// End closes the session, setting endTime and totalDuration. Calling
	// it again updates the same record. When no session exists for the
	// id, a closed session row is created so the signal is not lost.
	End(sessionID, restaurantID string, duration int, endedAt time.Time) (*Session, error)

	// AppendModelViewed adds a model id to the session's viewed set.
	// Duplicates are ignored; a missing session is tolerated.
	AppendModelViewed(sessionID, modelID string) error

	// FindByID returns the session or nil when none exists.
	FindByID(sessionID string) (*Session, error)

	// DeleteByRestaurant removes all sessions for a restaurant.
	DeleteByRestaurant(restaurantID string) error

	// DeleteAll removes every session.
	DeleteAll() error
}

// MenuViewRepository stores menu page open events.
type MenuViewRepository interface {
	Store(view *MenuView) error
	DeleteByRestaurant(restaurantID string) error
	DeleteAll() error
}

// ModelViewRepository stores 3D model presentation events and serves
// the read side of every aggregation query.
type ModelViewRepository interface {
	Store(view *ModelView) error

	// FindOpen returns the open view for (modelID, sessionID), or nil.
	FindOpen(modelID, sessionID string) (*ModelView, error)

	// FindMostRecent returns the newest view for the key regardless of
	// open state, or nil when none exists.
	FindMostRecent(modelID, restaurantID, sessionID string) (*ModelView, error)

	// Close patches viewDuration and endedAt on an existing record.
	Close(id string, duration int, endedAt time.Time) error

	// FindInRange returns views ordered by timestamp ascending.
	// Empty restaurantID means all restaurants; a nil range means all time.
	FindInRange(restaurantID string, rng *TimeRange) ([]*ModelView, error)

	DeleteByRestaurant(restaurantID string) error
	DeleteAll() error
}

// ModelCatalog looks up display metadata for models. It only decorates
// aggregator output; computation never depends on catalog contents.
type ModelCatalog interface {
	// Lookup returns model info, or nil when the catalog has no entry.
	Lookup(modelID string) (*ModelInfo, error)
}

// OrderSource reports real order counts per model. ok is false when the
// collaborator has no data for the model, in which case the conversion
// estimator synthesizes a simulated rate instead.
type OrderSource interface {
	OrderCount(restaurantID, modelID string) (count int, ok bool, err error)
}
