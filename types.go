package main

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Severity classifies how urgent an alert is.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// AlertType is the fixed taxonomy of alert categories. Custom rules always
// produce AlertTypeCustom; the built-in thresholds produce the rest.
type AlertType string

const (
	AlertTypeHighTemp       AlertType = "HIGH_TEMP"
	AlertTypeLowTemp        AlertType = "LOW_TEMP"
	AlertTypeHighHumidity   AlertType = "HIGH_HUMIDITY"
	AlertTypeLowHumidity    AlertType = "LOW_HUMIDITY"
	AlertTypeExtremeWeather AlertType = "EXTREME_WEATHER"
	AlertTypeHighWind       AlertType = "HIGH_WIND"
	AlertTypeCustom         AlertType = "CUSTOM"
)

// LogicOperator combines the results of a rule's conditions.
type LogicOperator string

const (
	LogicAnd LogicOperator = "AND"
	LogicOr  LogicOperator = "OR"
)

// RawReading is one ingested weather sample. Readings are append-only: after
// creation the only mutation is the cleanup job's soft delete. FeelsLikeC and
// WindDirectionDeg keep their reported/not-reported flag because 0 is a
// legitimate value for both.
type RawReading struct {
	ID                 uuid.UUID
	City               string
	Timestamp          time.Time
	Longitude          float64
	Latitude           float64
	WeatherID          int32
	WeatherMain        string
	WeatherDescription string
	WeatherIcon        string
	TemperatureC       float64
	FeelsLikeC         sql.NullFloat64
	TempMinC           float64
	TempMaxC           float64
	PressureHpa        int32
	Humidity           int32
	SeaLevelHpa        int32
	GroundLevelHpa     int32
	WindSpeedKmh       float64
	WindDirectionDeg   sql.NullInt32
	WindGustKmh        float64
	Cloudiness         int32
	VisibilityM        int32
	Country            string
	Sunrise            time.Time
	Sunset             time.Time
	SourceUnix         int64
	TimezoneOffsetSec  int32
	IsDeleted          bool
	DeletedAt          time.Time
	CreatedAt          time.Time
}

// CurrentConditions is the latest-reading snapshot embedded in a summary.
type CurrentConditions struct {
	Temperature float64   `json:"temperature_c"`
	FeelsLike   float64   `json:"feels_like_c"`
	Humidity    int32     `json:"humidity"`
	Pressure    int32     `json:"pressure_hpa"`
	WindSpeed   float64   `json:"wind_speed_kmh"`
	Condition   string    `json:"condition"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	ObservedAt  time.Time `json:"observed_at"`
}

// DayAggregates holds the metrics computed over one calendar day's readings.
// A day with no readings yields the zero-value aggregates with
// DominantWeather "N/A" and DataPointsCount 0.
type DayAggregates struct {
	AvgTemperature  float64 `json:"avg_temperature_c"`
	MinTemperature  float64 `json:"min_temperature_c"`
	MaxTemperature  float64 `json:"max_temperature_c"`
	AvgHumidity     int32   `json:"avg_humidity"`
	AvgPressure     int32   `json:"avg_pressure_hpa"`
	AvgWindSpeed    float64 `json:"avg_wind_speed_kmh"`
	MaxWindSpeed    float64 `json:"max_wind_speed_kmh"`
	DominantWeather string  `json:"dominant_weather"`
	DataPointsCount int     `json:"data_points_count"`
}

// YesterdayAggregates is the reduced aggregate set kept for the previous day.
type YesterdayAggregates struct {
	AvgTemperature float64 `json:"avg_temperature_c"`
	MinTemperature float64 `json:"min_temperature_c"`
	MaxTemperature float64 `json:"max_temperature_c"`
}

// HourlyBucket is one hour of the trend window. Hour is the bucket key: the
// reading timestamps truncated to the hour.
type HourlyBucket struct {
	Hour              time.Time `json:"hour"`
	AvgTemperature    float64   `json:"avg_temperature_c"`
	AvgHumidity       int32     `json:"avg_humidity"`
	AvgPressure       int32     `json:"avg_pressure_hpa"`
	DominantCondition string    `json:"dominant_condition"`
	DataPointsCount   int       `json:"data_points_count"`
}

// SummaryStats carries the statistical extras computed over today's readings.
type SummaryStats struct {
	TemperatureVariance float64 `json:"temperature_variance"`
	HumidityRange       int32   `json:"humidity_range"`
	WeatherChangeCount  int     `json:"weather_change_count"`
}

// DashboardSummary is the pre-computed aggregate for one (city, day) pair.
// Yesterday holds zero values when no data existed for the previous day.
type DashboardSummary struct {
	ID           uuid.UUID           `json:"id"`
	City         string              `json:"city"`
	SummaryDate  time.Time           `json:"summary_date"`
	ComputedAt   time.Time           `json:"computed_at"`
	Current      CurrentConditions   `json:"current"`
	Today        DayAggregates       `json:"today"`
	HourlyTrends []HourlyBucket      `json:"hourly_trends"`
	Yesterday    YesterdayAggregates `json:"yesterday"`
	Stats        SummaryStats        `json:"stats"`
}

// RuleCondition is one condition of a custom alert rule as configured.
// Value is numeric for comparison operators and a string for the substring
// operators; compileRule resolves which at load time.
type RuleCondition struct {
	Parameter string `json:"parameter"`
	Operator  string `json:"operator"`
	Value     any    `json:"value"`
	Unit      string `json:"unit,omitempty"`
}

// AlertRule is a user or ops defined condition set evaluated by the alert
// check job. An empty UserID means the rule is global.
type AlertRule struct {
	ID                   uuid.UUID       `json:"id"`
	UserID               string          `json:"user_id,omitempty"`
	City                 string          `json:"city"`
	RuleName             string          `json:"rule_name"`
	Conditions           []RuleCondition `json:"conditions"`
	LogicOperator        LogicOperator   `json:"logic_operator"`
	Severity             Severity        `json:"severity"`
	MessageTemplate      string          `json:"message_template"`
	NotificationChannels []string        `json:"notification_channels"`
	CooldownMinutes      int32           `json:"cooldown_minutes"`
	IsEnabled            bool            `json:"is_enabled"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// ThresholdSnapshot records which limit an alert was raised against. For
// custom rules only the first condition is snapshotted.
type ThresholdSnapshot struct {
	Parameter string `json:"parameter"`
	Operator  string `json:"operator"`
	Value     any    `json:"value"`
	Unit      string `json:"unit,omitempty"`
}

// ReadingSnapshot freezes the reading values that triggered an alert.
type ReadingSnapshot struct {
	Temperature float64   `json:"temperature_c"`
	Humidity    int32     `json:"humidity"`
	Pressure    int32     `json:"pressure_hpa"`
	WindSpeed   float64   `json:"wind_speed_kmh"`
	Condition   string    `json:"condition"`
	ObservedAt  time.Time `json:"observed_at"`
}

// AlertEvent is one raised alert instance. RuleID is the nil UUID for alerts
// raised by the built-in thresholds.
type AlertEvent struct {
	ID                   uuid.UUID         `json:"id"`
	City                 string            `json:"city"`
	AlertType            AlertType         `json:"alert_type"`
	Severity             Severity          `json:"severity"`
	Message              string            `json:"message"`
	Threshold            ThresholdSnapshot `json:"threshold"`
	ActualValue          ReadingSnapshot   `json:"actual_value"`
	IsActive             bool              `json:"is_active"`
	ResolvedAt           *time.Time        `json:"resolved_at,omitempty"`
	NotificationSent     bool              `json:"notification_sent"`
	NotificationChannels []string          `json:"notification_channels"`
	UserID               string            `json:"user_id,omitempty"`
	RuleID               uuid.UUID         `json:"rule_id,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
}

// JobResult is the structured outcome of one scheduler job run.
type JobResult struct {
	Job      string        `json:"job"`
	Success  bool          `json:"success"`
	Message  string        `json:"message"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"-"`
	Elapsed  string        `json:"elapsed"`
	RanAt    time.Time     `json:"ran_at"`
}

// JobStatus is the scheduler's view of one registered job.
type JobStatus struct {
	Job     string     `json:"job"`
	Spec    string     `json:"spec"`
	Running bool       `json:"running"`
	NextRun time.Time  `json:"next_run"`
	LastRun *JobResult `json:"last_run,omitempty"`
}

// AlertHistoryResponse is the paginated alert history payload.
type AlertHistoryResponse struct {
	Alerts     []AlertEvent `json:"alerts"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalCount int64        `json:"total_count"`
	TotalPages int64        `json:"total_pages"`
}
