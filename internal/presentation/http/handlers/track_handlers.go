package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bleonardo0/cobi-sub002/internal/application/services"
	"github.com/bleonardo0/cobi-sub002/internal/domain/analytics"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/observability/logging"
)

// TrackHandlers contains the event ingestion HTTP handlers
type TrackHandlers struct {
	trackingService *services.TrackingService
	logger          *logging.ChanneledLogger
}

// NewTrackHandlers creates track handlers with injected dependencies
func NewTrackHandlers(trackingService *services.TrackingService, logger *logging.ChanneledLogger) *TrackHandlers {
	return &TrackHandlers{
		trackingService: trackingService,
		logger:          logger,
	}
}

type sessionStartRequest struct {
	RestaurantID string `json:"restaurantId"`
	SessionID    string `json:"sessionId"`
	DeviceType   string `json:"deviceType"`
	UserAgent    string `json:"userAgent"`
}

// HandleSessionStart handles POST /api/v1/track/session-start
func (h *TrackHandlers) HandleSessionStart(c *gin.Context) {
	var req sessionStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = c.Request.UserAgent()
	}

	session, err := h.trackingService.StartSession(req.RestaurantID, req.SessionID, analytics.DeviceType(req.DeviceType), userAgent)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, session)
}

type menuViewRequest struct {
	RestaurantID string `json:"restaurantId"`
	SessionID    string `json:"sessionId"`
	DeviceType   string `json:"deviceType"`
	UserAgent    string `json:"userAgent"`
	PageURL      string `json:"pageUrl"`
	Referrer     string `json:"referrer"`
}

// HandleMenuView handles POST /api/v1/track/menu-view
func (h *TrackHandlers) HandleMenuView(c *gin.Context) {
	var req menuViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = c.Request.UserAgent()
	}

	view, err := h.trackingService.RecordMenuView(req.RestaurantID, req.SessionID, analytics.DeviceType(req.DeviceType), userAgent, req.PageURL, req.Referrer)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, view)
}

type modelViewStartRequest struct {
	ModelID         string `json:"modelId"`
	RestaurantID    string `json:"restaurantId"`
	SessionID       string `json:"sessionId"`
	InteractionType string `json:"interactionType"`
	DeviceType      string `json:"deviceType"`
}

// HandleModelViewStart handles POST /api/v1/track/model-view-start
func (h *TrackHandlers) HandleModelViewStart(c *gin.Context) {
	var req modelViewStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.trackingService.StartModelView(
		req.ModelID,
		req.RestaurantID,
		req.SessionID,
		analytics.InteractionType(req.InteractionType),
		analytics.DeviceType(req.DeviceType),
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, view)
}

type modelViewEndRequest struct {
	ModelID      string `json:"modelId"`
	RestaurantID string `json:"restaurantId"`
	SessionID    string `json:"sessionId"`
	ViewDuration int    `json:"viewDuration"`
}

// HandleModelViewEnd handles POST /api/v1/track/model-view-end
func (h *TrackHandlers) HandleModelViewEnd(c *gin.Context) {
	var req modelViewEndRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.trackingService.EndModelView(req.ModelID, req.RestaurantID, req.SessionID, req.ViewDuration)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, view)
}

type sessionEndRequest struct {
	SessionID    string `json:"sessionId"`
	RestaurantID string `json:"restaurantId"`
	Duration     int    `json:"duration"`
}

// HandleSessionEnd handles POST /api/v1/track/session-end
func (h *TrackHandlers) HandleSessionEnd(c *gin.Context) {
	var req sessionEndRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.trackingService.EndSession(req.SessionID, req.RestaurantID, req.Duration)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, session)
}
