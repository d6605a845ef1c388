package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type RawReading struct {
	ID                 uuid.UUID
	City               string
	Timestamp          time.Time
	Longitude          float64
	Latitude           float64
	WeatherID          sql.NullInt32
	WeatherMain        string
	WeatherDescription sql.NullString
	WeatherIcon        sql.NullString
	TemperatureC       float64
	FeelsLikeC         sql.NullFloat64
	TempMinC           sql.NullFloat64
	TempMaxC           sql.NullFloat64
	PressureHpa        int32
	Humidity           int32
	SeaLevelHpa        sql.NullInt32
	GroundLevelHpa     sql.NullInt32
	WindSpeedKmh       float64
	WindDirectionDeg   sql.NullInt32
	WindGustKmh        sql.NullFloat64
	Cloudiness         sql.NullInt32
	VisibilityM        sql.NullInt32
	Country            sql.NullString
	Sunrise            sql.NullTime
	Sunset             sql.NullTime
	SourceUnix         int64
	TimezoneOffsetSec  int32
	IsDeleted          bool
	DeletedAt          sql.NullTime
	CreatedAt          time.Time
}

type DashboardSummary struct {
	ID           uuid.UUID
	City         string
	SummaryDate  time.Time
	ComputedAt   time.Time
	Current      []byte
	Today        []byte
	HourlyTrends []byte
	Yesterday    []byte
	Stats        []byte
}

type AlertRule struct {
	ID                   uuid.UUID
	UserID               sql.NullString
	City                 string
	RuleName             string
	Conditions           []byte
	LogicOperator        string
	Severity             string
	MessageTemplate      string
	NotificationChannels pq.StringArray
	CooldownMinutes      int32
	IsEnabled            bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type AlertEvent struct {
	ID                   uuid.UUID
	City                 string
	AlertType            string
	Severity             string
	Message              string
	Threshold            []byte
	ActualValue          []byte
	IsActive             bool
	ResolvedAt           sql.NullTime
	NotificationSent     bool
	NotificationChannels pq.StringArray
	UserID               sql.NullString
	RuleID               uuid.NullUUID
	CreatedAt            time.Time
}
