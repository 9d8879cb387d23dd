// Package analytics provides the concrete SQL-based implementations
// for view analytics event persistence.
//
// PURPOSE: Store raw interaction events as they arrive from client viewers
// - Session events → sessions table (+ session_models for the viewed set)
// - Menu page opens → menu_views table
// - 3D model presentations → model_views table
//
// Derived metrics are recomputed from these tables on every query; no
// rollups are stored, so aggregates can never drift from raw events.
package analytics

import (
	"fmt"

	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/persistence/database"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		restaurant_id TEXT NOT NULL,
		device_type TEXT NOT NULL,
		user_agent TEXT,
		started_at TEXT NOT NULL,
		ended_at TEXT,
		total_duration INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_restaurant ON sessions(restaurant_id, started_at)`,
	`CREATE TABLE IF NOT EXISTS session_models (
		session_id TEXT NOT NULL,
		model_id TEXT NOT NULL,
		PRIMARY KEY (session_id, model_id)
	)`,
	`CREATE TABLE IF NOT EXISTS menu_views (
		id TEXT PRIMARY KEY,
		restaurant_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		device_type TEXT NOT NULL,
		page_url TEXT,
		referrer TEXT,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_menu_views_restaurant ON menu_views(restaurant_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS model_views (
		id TEXT PRIMARY KEY,
		model_id TEXT NOT NULL,
		restaurant_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		interaction_type TEXT NOT NULL,
		device_type TEXT NOT NULL,
		created_at TEXT NOT NULL,
		view_duration INTEGER,
		ended_at TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_model_views_restaurant ON model_views(restaurant_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_model_views_key ON model_views(model_id, session_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS models (
		id TEXT PRIMARY KEY,
		restaurant_id TEXT NOT NULL,
		name TEXT NOT NULL,
		thumbnail TEXT,
		category TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS model_orders (
		restaurant_id TEXT NOT NULL,
		model_id TEXT NOT NULL,
		order_count INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (restaurant_id, model_id)
	)`,
}

// EnsureSchema creates the event store tables and indexes when missing.
// Safe to run on every startup.
func EnsureSchema(db *database.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
