package analytics

import (
	"database/sql"

	"github.com/bleonardo0/cobi-sub002/internal/domain/analytics"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/observability/logging"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/persistence/database"
)

// SQLModelCatalog serves model display metadata from the models table.
// A missing entry is not an error; aggregates fall back to the model id.
type SQLModelCatalog struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLModelCatalog creates a new instance of the catalog.
func NewSQLModelCatalog(db *database.DB, logger *logging.ChanneledLogger) *SQLModelCatalog {
	return &SQLModelCatalog{
		db:     db,
		logger: logger,
	}
}

// Lookup returns model info, or nil when the catalog has no entry.
func (c *SQLModelCatalog) Lookup(modelID string) (*analytics.ModelInfo, error) {
	const query = `SELECT id, name, thumbnail, category FROM models WHERE id = ?`

	var info analytics.ModelInfo
	var thumbnail, category sql.NullString
	err := c.db.QueryRow(query, modelID).Scan(&info.ID, &info.Name, &thumbnail, &category)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		c.logger.Database().Error("Model catalog lookup failed", "error", err.Error(), "modelId", modelID)
		return nil, analytics.NewStorageError("lookup model", err)
	}

	info.Thumbnail = thumbnail.String
	info.Category = category.String
	return &info, nil
}

// SQLOrderSource serves real order counts from the model_orders table.
type SQLOrderSource struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLOrderSource creates a new instance of the order source.
func NewSQLOrderSource(db *database.DB, logger *logging.ChanneledLogger) *SQLOrderSource {
	return &SQLOrderSource{
		db:     db,
		logger: logger,
	}
}

// OrderCount returns the recorded order count for a model. ok is false
// when no row exists, which signals the caller to simulate instead.
func (s *SQLOrderSource) OrderCount(restaurantID, modelID string) (int, bool, error) {
	const query = `SELECT order_count FROM model_orders WHERE restaurant_id = ? AND model_id = ?`

	var count int
	err := s.db.QueryRow(query, restaurantID, modelID).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		s.logger.Database().Error("Order count lookup failed",
			"error", err.Error(), "restaurantId", restaurantID, "modelId", modelID)
		return 0, false, analytics.NewStorageError("lookup order count", err)
	}

	return count, true, nil
}
