package analytics

// ModelAnalytics is the per-model slice of a stats query window.
// Derived on every query, never persisted.
type ModelAnalytics struct {
	ModelID         string  `json:"modelId"`
	Name            string  `json:"name,omitempty"`
	Thumbnail       string  `json:"thumbnail,omitempty"`
	Category        string  `json:"category,omitempty"`
	TotalViews      int     `json:"totalViews"`
	UniqueSessions  int     `json:"uniqueSessions"`
	AvgViewDuration float64 `json:"avgViewDuration"` // seconds, over closed views only
	PopularityScore int     `json:"popularityScore"` // percentage share of window views
}

// DayCount is one point of a views-by-day series.
type DayCount struct {
	Date  string `json:"date"` // UTC calendar date, YYYY-MM-DD
	Views int    `json:"views"`
}

// GeneralStats is the full aggregation result for a restaurant (or
// global) query window.
type GeneralStats struct {
	TotalViews      int                `json:"totalViews"`
	UniqueSessions  int                `json:"uniqueSessions"`
	PerModel        []ModelAnalytics   `json:"perModel"`
	DeviceBreakdown map[DeviceType]int `json:"deviceBreakdown"`
	ViewsByDay      []DayCount         `json:"viewsByDay"`
}

// TrendBucket is one point of a re-bucketed view series.
type TrendBucket struct {
	Label string `json:"label"` // day date, week start date, or YYYY-MM
	Views int    `json:"views"`
}

// TrendClassification labels a model's trajectory over a horizon.
type TrendClassification string

const (
	TrendAscending  TrendClassification = "ascending"
	TrendDescending TrendClassification = "descending"
	TrendStable     TrendClassification = "stable"
)

// ModelTrendAnalytics carries a model's bucketed series and growth
// classification for an analysis horizon.
type ModelTrendAnalytics struct {
	ModelID      string              `json:"modelId"`
	Name         string              `json:"name,omitempty"`
	TotalViews   int                 `json:"totalViews"`
	DailyViews   []TrendBucket       `json:"dailyViews"`
	WeeklyViews  []TrendBucket       `json:"weeklyViews"`
	MonthlyViews []TrendBucket       `json:"monthlyViews"`
	GrowthRate   float64             `json:"growthRate"` // percent change, earlier half to later half
	Trend        TrendClassification `json:"trend"`
}

// ConversionMetrics joins a model's view volume with its order count.
// Simulated marks rates synthesized from view volume when no real order
// data exists; consumers must never conflate those with measured rates.
type ConversionMetrics struct {
	ModelID        string  `json:"modelId"`
	Name           string  `json:"name,omitempty"`
	TotalViews     int     `json:"totalViews"`
	OrderCount     int     `json:"orderCount"`
	ConversionRate float64 `json:"conversionRate"` // percent
	Simulated      bool    `json:"simulated"`
}

// ModelInfo is the catalog collaborator's decoration payload.
type ModelInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Category  string `json:"category,omitempty"`
}
