// Package performance provides performance tracking and monitoring
// capabilities for analytics engine operations.
package performance

import (
	"fmt"
	"sync"
	"time"
)

// Tracker manages performance markers and provides metrics aggregation
type Tracker struct {
	markers map[string]*Marker // Active and completed markers by unique ID
	mu      sync.RWMutex       // Protects concurrent access
	started time.Time          // When tracking started
	config  *TrackerConfig     // Tracker configuration
}

// TrackerConfig contains configuration options for the performance tracker
type TrackerConfig struct {
	MaxMarkers int `json:"maxMarkers"` // Maximum number of markers to retain
}

// DefaultTrackerConfig returns a sensible default configuration
func DefaultTrackerConfig() *TrackerConfig {
	return &TrackerConfig{
		MaxMarkers: 10000,
	}
}

// NewTracker creates a new performance tracker with the given configuration
func NewTracker(config *TrackerConfig) *Tracker {
	if config == nil {
		config = DefaultTrackerConfig()
	}

	return &Tracker{
		markers: make(map[string]*Marker),
		started: time.Now(),
		config:  config,
	}
}

// StartOperation creates and tracks a new performance marker for an operation
func (t *Tracker) StartOperation(operation, restaurantID string) *Marker {
	marker := &Marker{
		Operation:    operation,
		RestaurantID: restaurantID,
		StartTime:    time.Now(),
		Metadata:     make(map[string]any),
		Success:      true, // Assume success until proven otherwise
	}

	markerID := fmt.Sprintf("%s_%s_%d", restaurantID, operation, time.Now().UnixNano())

	t.mu.Lock()
	if len(t.markers) >= t.config.MaxMarkers {
		t.evictOldestLocked()
	}
	t.markers[markerID] = marker
	t.mu.Unlock()

	return marker
}

// OperationSummary aggregates completed markers per operation name
type OperationSummary struct {
	Operation     string        `json:"operation"`
	Count         int           `json:"count"`
	Failures      int           `json:"failures"`
	TotalDuration time.Duration `json:"totalDuration"`
	AvgDuration   time.Duration `json:"avgDuration"`
	MaxDuration   time.Duration `json:"maxDuration"`
}

// Summary returns per-operation aggregates for all completed markers
func (t *Tracker) Summary() []OperationSummary {
	t.mu.RLock()
	defer t.mu.RUnlock()

	byOp := make(map[string]*OperationSummary)
	for _, m := range t.markers {
		if !m.Completed {
			continue
		}
		s, ok := byOp[m.Operation]
		if !ok {
			s = &OperationSummary{Operation: m.Operation}
			byOp[m.Operation] = s
		}
		s.Count++
		if !m.Success {
			s.Failures++
		}
		s.TotalDuration += m.Duration
		if m.Duration > s.MaxDuration {
			s.MaxDuration = m.Duration
		}
	}

	summaries := make([]OperationSummary, 0, len(byOp))
	for _, s := range byOp {
		if s.Count > 0 {
			s.AvgDuration = s.TotalDuration / time.Duration(s.Count)
		}
		summaries = append(summaries, *s)
	}
	return summaries
}

// Uptime returns how long the tracker has been running
func (t *Tracker) Uptime() time.Duration {
	return time.Since(t.started)
}

// evictOldestLocked removes the oldest completed marker; caller holds t.mu.
func (t *Tracker) evictOldestLocked() {
	var oldestID string
	var oldestTime time.Time
	for id, m := range t.markers {
		if !m.Completed {
			continue
		}
		if oldestID == "" || m.StartTime.Before(oldestTime) {
			oldestID = id
			oldestTime = m.StartTime
		}
	}
	if oldestID != "" {
		delete(t.markers, oldestID)
	}
}
