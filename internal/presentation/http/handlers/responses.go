// Package handlers provides HTTP handlers for the view analytics API
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bleonardo0/cobi-sub002/internal/domain/analytics"
)

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

// respondServiceError maps the domain error taxonomy onto HTTP statuses:
// invalid argument is the caller's fault, storage unavailability is ours.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, analytics.ErrInvalidArgument):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, analytics.ErrStorageUnavailable):
		respondError(c, http.StatusServiceUnavailable, "analytics storage unavailable")
	default:
		respondError(c, http.StatusInternalServerError, "internal error")
	}
}
