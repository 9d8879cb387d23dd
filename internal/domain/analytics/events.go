// Package analytics defines the event entities, derived metrics, and
// repository contracts for the view analytics engine.
package analytics

import (
	"strings"
	"time"
)

// DeviceType classifies the client device that produced an event.
type DeviceType string

const (
	DeviceMobile  DeviceType = "mobile"
	DeviceTablet  DeviceType = "tablet"
	DeviceDesktop DeviceType = "desktop"
)

// IsValid reports whether d is one of the known device types.
func (d DeviceType) IsValid() bool {
	switch d {
	case DeviceMobile, DeviceTablet, DeviceDesktop:
		return true
	}
	return false
}

// InferDeviceType derives a device type from a browser user agent string.
// Tablets are checked before mobile because tablet agents also carry
// mobile markers.
func InferDeviceType(userAgent string) DeviceType {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "ipad"), strings.Contains(ua, "tablet"),
		strings.Contains(ua, "kindle"), strings.Contains(ua, "silk"):
		return DeviceTablet
	case strings.Contains(ua, "mobi"), strings.Contains(ua, "iphone"),
		strings.Contains(ua, "android"):
		return DeviceMobile
	default:
		return DeviceDesktop
	}
}

// InteractionType classifies how a visitor engaged with a 3D model.
type InteractionType string

const (
	InteractionView   InteractionType = "view"
	InteractionARView InteractionType = "ar_view"
	InteractionZoom   InteractionType = "zoom"
	InteractionRotate InteractionType = "rotate"
)

// IsValid reports whether i is one of the known interaction types.
func (i InteractionType) IsValid() bool {
	switch i {
	case InteractionView, InteractionARView, InteractionZoom, InteractionRotate:
		return true
	}
	return false
}

// Session represents one browsing session of one visitor on one
// restaurant's menu. The id is caller-generated, unique per page load.
type Session struct {
	ID            string     `json:"id"`
	RestaurantID  string     `json:"restaurantId"`
	DeviceType    DeviceType `json:"deviceType"`
	UserAgent     string     `json:"userAgent,omitempty"`
	StartTime     time.Time  `json:"startTime"`
	EndTime       *time.Time `json:"endTime,omitempty"`
	TotalDuration *int       `json:"totalDuration,omitempty"` // seconds, set on session-end
	ModelsViewed  []string   `json:"modelsViewed,omitempty"`
}

// MenuView represents one instance of a restaurant's menu page being
// opened. Immutable once created.
type MenuView struct {
	ID           string     `json:"id"`
	RestaurantID string     `json:"restaurantId"`
	SessionID    string     `json:"sessionId"`
	DeviceType   DeviceType `json:"deviceType"`
	PageURL      string     `json:"pageUrl,omitempty"`
	Referrer     string     `json:"referrer,omitempty"`
	Timestamp    time.Time  `json:"timestamp"`
}

// ModelView represents one presentation of a 3D model to a visitor.
// A view is "open" until EndedAt is set; at most one open view exists
// per (modelId, sessionId) pair at a time.
type ModelView struct {
	ID              string          `json:"id"`
	ModelID         string          `json:"modelId"`
	RestaurantID    string          `json:"restaurantId"`
	SessionID       string          `json:"sessionId"`
	InteractionType InteractionType `json:"interactionType"`
	DeviceType      DeviceType      `json:"deviceType"`
	Timestamp       time.Time       `json:"timestamp"`              // view start
	ViewDuration    *int            `json:"viewDuration,omitempty"` // seconds
	EndedAt         *time.Time      `json:"endedAt,omitempty"`
}

// Open reports whether the view has not yet been closed.
func (v *ModelView) Open() bool {
	return v.EndedAt == nil
}

// TimeRange bounds a query window. Both ends are inclusive of the
// instant; End is exclusive of later events.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within the range.
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// LastDays returns a range covering the past n calendar days up to now,
// anchored at UTC midnight so daily buckets align with calendar dates.
func LastDays(n int, now time.Time) TimeRange {
	now = now.UTC()
	day := now.Truncate(24 * time.Hour)
	return TimeRange{
		Start: day.AddDate(0, 0, -(n - 1)),
		End:   now.Add(time.Second),
	}
}
