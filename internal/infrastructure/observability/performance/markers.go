// Package performance provides performance monitoring data structures and
// utilities for tracking operation timings across the analytics engine.
package performance

import (
	"time"
)

// Marker represents a single performance measurement for an operation
type Marker struct {
	Operation    string         `json:"operation"`       // e.g., "track:model_view_start", "analytics:general_stats"
	RestaurantID string         `json:"restaurantId"`    // Restaurant scope, empty for global operations
	StartTime    time.Time      `json:"startTime"`       // When the operation started
	EndTime      time.Time      `json:"endTime"`         // When the operation completed
	Duration     time.Duration  `json:"duration"`        // Total operation duration
	Success      bool           `json:"success"`         // Whether the operation completed successfully
	Error        string         `json:"error,omitempty"` // Error message if operation failed
	Metadata     map[string]any `json:"metadata"`        // Additional operation-specific data
	Completed    bool           `json:"completed"`       // Whether Complete() has been called
}

// Complete marks the operation as finished and calculates final metrics
func (m *Marker) Complete() {
	if m.Completed {
		return // Prevent double completion
	}

	m.EndTime = time.Now()
	m.Duration = m.EndTime.Sub(m.StartTime)
	m.Completed = true
}

// SetSuccess marks the operation as successful or failed
func (m *Marker) SetSuccess(success bool) {
	m.Success = success
}

// SetError sets an error message and marks the operation as failed
func (m *Marker) SetError(err error) {
	if err != nil {
		m.Error = err.Error()
		m.Success = false
	}
}

// AddMetadata adds key-value metadata to the marker
func (m *Marker) AddMetadata(key string, value any) {
	if m.Metadata == nil {
		m.Metadata = make(map[string]any)
	}
	m.Metadata[key] = value
}
