// Package database provides database helper functions
package database

import (
	"fmt"
	"time"

	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/observability/logging"
	"github.com/bleonardo0/cobi-sub002/pkg/config"
)

// TimestampFormat is the SQLite storage format for timestamps, always UTC.
const TimestampFormat = "2006-01-02 15:04:05"

// FormatTimestamp renders a time for storage.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

// ParseTimestamp handles the storage format plus formats seen in data
// written by earlier client versions.
func ParseTimestamp(timestampStr string) (time.Time, error) {
	if t, err := time.Parse(TimestampFormat, timestampStr); err == nil {
		return t.UTC(), nil
	}

	if t, err := time.Parse(time.RFC3339, timestampStr); err == nil {
		return t.UTC(), nil
	}

	if t, err := time.Parse("2006-01-02T15:04:05.000Z", timestampStr); err == nil {
		return t.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("unable to parse timestamp format: %s", timestampStr)
}

// GetSlowQueryThreshold returns the configured slow query threshold.
func GetSlowQueryThreshold() time.Duration {
	return config.SlowQueryThreshold
}

// CheckAndLogSlowQuery checks if a query duration exceeds the threshold
// and logs it using the slow query channel if it does.
func CheckAndLogSlowQuery(logger *logging.ChanneledLogger, query string, duration time.Duration, scope string) {
	if duration > GetSlowQueryThreshold() {
		logger.LogSlowQuery(query, duration, scope)
	}
}
