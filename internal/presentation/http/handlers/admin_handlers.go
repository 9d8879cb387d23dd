package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bleonardo0/cobi-sub002/internal/application/services"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/observability/logging"
)

// AdminHandlers contains the operator surface HTTP handlers
type AdminHandlers struct {
	authService  *services.AuthService
	adminService *services.AdminService
	logger       *logging.ChanneledLogger
}

// NewAdminHandlers creates admin handlers with injected dependencies
func NewAdminHandlers(
	authService *services.AuthService,
	adminService *services.AdminService,
	logger *logging.ChanneledLogger,
) *AdminHandlers {
	return &AdminHandlers{
		authService:  authService,
		adminService: adminService,
		logger:       logger,
	}
}

type loginRequest struct {
	Password string `json:"password"`
}

// HandleLogin handles POST /api/v1/admin/login
func (h *AdminHandlers) HandleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result := h.authService.AuthenticateOperator(req.Password)
	if !result.Success {
		respondError(c, http.StatusUnauthorized, result.Error)
		return
	}
	respondOK(c, gin.H{"token": result.Token, "role": result.Role})
}

type resetRequest struct {
	RestaurantID string `json:"restaurantId"`
}

// HandleReset handles POST /api/v1/admin/reset. An empty restaurantId
// wipes everything.
func (h *AdminHandlers) HandleReset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.adminService.Reset(req.RestaurantID); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"reset": true, "restaurantId": req.RestaurantID})
}

// HandleMetrics handles GET /api/v1/admin/metrics
func (h *AdminHandlers) HandleMetrics(c *gin.Context) {
	respondOK(c, h.adminService.Metrics())
}
