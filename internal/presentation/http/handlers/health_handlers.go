package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/persistence/database"
)

// HealthHandlers contains the liveness HTTP handlers
type HealthHandlers struct {
	db *database.DB
}

// NewHealthHandlers creates health handlers with injected dependencies
func NewHealthHandlers(db *database.DB) *HealthHandlers {
	return &HealthHandlers{db: db}
}

// HandleHealth handles GET /api/v1/health
func (h *HealthHandlers) HandleHealth(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
