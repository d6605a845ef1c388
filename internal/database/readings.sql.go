package database

import (
	"context"
	"database/sql"
	"time"
)

const createRawReading = `
INSERT INTO raw_readings (
	city, timestamp, longitude, latitude,
	weather_id, weather_main, weather_description, weather_icon,
	temperature_c, feels_like_c, temp_min_c, temp_max_c,
	pressure_hpa, humidity, sea_level_hpa, ground_level_hpa,
	wind_speed_kmh, wind_direction_deg, wind_gust_kmh,
	cloudiness, visibility_m, country, sunrise, sunset,
	source_unix, timezone_offset_sec
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
	$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26
)
RETURNING id, city, timestamp, longitude, latitude, weather_id, weather_main,
	weather_description, weather_icon, temperature_c, feels_like_c, temp_min_c,
	temp_max_c, pressure_hpa, humidity, sea_level_hpa, ground_level_hpa,
	wind_speed_kmh, wind_direction_deg, wind_gust_kmh, cloudiness, visibility_m,
	country, sunrise, sunset, source_unix, timezone_offset_sec,
	is_deleted, deleted_at, created_at
`

type CreateRawReadingParams struct {
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
}

func (q *Queries) CreateRawReading(ctx context.Context, arg CreateRawReadingParams) (RawReading, error) {
	row := q.db.QueryRowContext(ctx, createRawReading,
		arg.City,
		arg.Timestamp,
		arg.Longitude,
		arg.Latitude,
		arg.WeatherID,
		arg.WeatherMain,
		arg.WeatherDescription,
		arg.WeatherIcon,
		arg.TemperatureC,
		arg.FeelsLikeC,
		arg.TempMinC,
		arg.TempMaxC,
		arg.PressureHpa,
		arg.Humidity,
		arg.SeaLevelHpa,
		arg.GroundLevelHpa,
		arg.WindSpeedKmh,
		arg.WindDirectionDeg,
		arg.WindGustKmh,
		arg.Cloudiness,
		arg.VisibilityM,
		arg.Country,
		arg.Sunrise,
		arg.Sunset,
		arg.SourceUnix,
		arg.TimezoneOffsetSec,
	)
	var i RawReading
	err := scanRawReading(row, &i)
	return i, err
}

const getLatestRawReading = `
SELECT id, city, timestamp, longitude, latitude, weather_id, weather_main,
	weather_description, weather_icon, temperature_c, feels_like_c, temp_min_c,
	temp_max_c, pressure_hpa, humidity, sea_level_hpa, ground_level_hpa,
	wind_speed_kmh, wind_direction_deg, wind_gust_kmh, cloudiness, visibility_m,
	country, sunrise, sunset, source_unix, timezone_offset_sec,
	is_deleted, deleted_at, created_at
FROM raw_readings
WHERE city = $1 AND is_deleted = FALSE
ORDER BY timestamp DESC
LIMIT 1
`

func (q *Queries) GetLatestRawReading(ctx context.Context, city string) (RawReading, error) {
	row := q.db.QueryRowContext(ctx, getLatestRawReading, city)
	var i RawReading
	err := scanRawReading(row, &i)
	return i, err
}

const listActiveReadingsInRange = `
SELECT id, city, timestamp, longitude, latitude, weather_id, weather_main,
	weather_description, weather_icon, temperature_c, feels_like_c, temp_min_c,
	temp_max_c, pressure_hpa, humidity, sea_level_hpa, ground_level_hpa,
	wind_speed_kmh, wind_direction_deg, wind_gust_kmh, cloudiness, visibility_m,
	country, sunrise, sunset, source_unix, timezone_offset_sec,
	is_deleted, deleted_at, created_at
FROM raw_readings
WHERE city = $1 AND is_deleted = FALSE AND timestamp >= $2 AND timestamp < $3
ORDER BY timestamp ASC
`

type ListActiveReadingsInRangeParams struct {
	City      string
	StartTime time.Time
	EndTime   time.Time
}

func (q *Queries) ListActiveReadingsInRange(ctx context.Context, arg ListActiveReadingsInRangeParams) ([]RawReading, error) {
	rows, err := q.db.QueryContext(ctx, listActiveReadingsInRange, arg.City, arg.StartTime, arg.EndTime)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RawReading
	for rows.Next() {
		var i RawReading
		if err := scanRawReading(rows, &i); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const softDeleteReadingsBefore = `
UPDATE raw_readings
SET is_deleted = TRUE, deleted_at = $2
WHERE timestamp < $1 AND is_deleted = FALSE
`

type SoftDeleteReadingsBeforeParams struct {
	Cutoff    time.Time
	DeletedAt time.Time
}

func (q *Queries) SoftDeleteReadingsBefore(ctx context.Context, arg SoftDeleteReadingsBeforeParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, softDeleteReadingsBefore, arg.Cutoff, arg.DeletedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const hardDeleteReadingsBefore = `
DELETE FROM raw_readings
WHERE is_deleted = TRUE AND deleted_at < $1
`

func (q *Queries) HardDeleteReadingsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, hardDeleteReadingsBefore, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFields(i *RawReading) []any {
	return []any{
		&i.ID,
		&i.City,
		&i.Timestamp,
		&i.Longitude,
		&i.Latitude,
		&i.WeatherID,
		&i.WeatherMain,
		&i.WeatherDescription,
		&i.WeatherIcon,
		&i.TemperatureC,
		&i.FeelsLikeC,
		&i.TempMinC,
		&i.TempMaxC,
		&i.PressureHpa,
		&i.Humidity,
		&i.SeaLevelHpa,
		&i.GroundLevelHpa,
		&i.WindSpeedKmh,
		&i.WindDirectionDeg,
		&i.WindGustKmh,
		&i.Cloudiness,
		&i.VisibilityM,
		&i.Country,
		&i.Sunrise,
		&i.Sunset,
		&i.SourceUnix,
		&i.TimezoneOffsetSec,
		&i.IsDeleted,
		&i.DeletedAt,
		&i.CreatedAt,
	}
}

func scanRawReading(row rowScanner, i *RawReading) error {
	return row.Scan(scanFields(i)...)
}
