package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Aditya-Takawale/Weather-App/internal/database"
)

// This file implements the aggregation engine: a pure read-and-compute pass
// over the raw readings that assembles a DashboardSummary for one city and
// day. Persisting the result is the summary cache's job.

const hourlyTrendWindow = 48 * time.Hour
const maxHourlyBuckets = 48

// noDataWeather is reported as the dominant condition of an empty day.
const noDataWeather = "N/A"

// computeSummary builds the dashboard summary for a city as of the given
// instant. Day boundaries are derived from asOf in the configured timezone.
// It returns (nil, nil) when the city has no active readings at all, which
// callers treat as "no data yet" rather than an error.
func (cfg *apiConfig) computeSummary(ctx context.Context, city string, asOf time.Time) (*DashboardSummary, error) {
	latest, err := cfg.dbQueries.GetLatestRawReading(ctx, city)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not fetch latest reading: %w", err)
	}

	local := asOf.In(cfg.timezone)
	startOfToday := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, cfg.timezone)
	startOfYesterday := startOfToday.AddDate(0, 0, -1)

	todayReadings, err := cfg.dbQueries.ListActiveReadingsInRange(ctx, database.ListActiveReadingsInRangeParams{
		City:      city,
		StartTime: startOfToday,
		EndTime:   asOf,
	})
	if err != nil {
		return nil, fmt.Errorf("could not fetch today's readings: %w", err)
	}

	yesterdayReadings, err := cfg.dbQueries.ListActiveReadingsInRange(ctx, database.ListActiveReadingsInRangeParams{
		City:      city,
		StartTime: startOfYesterday,
		EndTime:   startOfToday,
	})
	if err != nil {
		return nil, fmt.Errorf("could not fetch yesterday's readings: %w", err)
	}

	trendReadings, err := cfg.dbQueries.ListActiveReadingsInRange(ctx, database.ListActiveReadingsInRangeParams{
		City:      city,
		StartTime: asOf.Add(-hourlyTrendWindow),
		EndTime:   asOf,
	})
	if err != nil {
		return nil, fmt.Errorf("could not fetch trend window readings: %w", err)
	}

	today := make([]RawReading, len(todayReadings))
	for i, r := range todayReadings {
		today[i] = databaseRawReadingToRawReading(r)
	}
	yesterday := make([]RawReading, len(yesterdayReadings))
	for i, r := range yesterdayReadings {
		yesterday[i] = databaseRawReadingToRawReading(r)
	}
	trend := make([]RawReading, len(trendReadings))
	for i, r := range trendReadings {
		trend[i] = databaseRawReadingToRawReading(r)
	}

	summary := DashboardSummary{
		City:         city,
		SummaryDate:  startOfToday,
		ComputedAt:   asOf,
		Current:      currentConditions(databaseRawReadingToRawReading(latest)),
		Today:        aggregateDay(today),
		HourlyTrends: hourlyTrends(trend, cfg.timezone),
		Yesterday:    aggregateYesterday(yesterday),
		Stats:        summaryStats(today),
	}
	return &summary, nil
}

func currentConditions(reading RawReading) CurrentConditions {
	return CurrentConditions{
		Temperature: Round(reading.TemperatureC, 1),
		FeelsLike:   Round(reading.FeelsLikeC.Float64, 1),
		Humidity:    reading.Humidity,
		Pressure:    reading.PressureHpa,
		WindSpeed:   Round(reading.WindSpeedKmh, 1),
		Condition:   reading.WeatherMain,
		Description: reading.WeatherDescription,
		Icon:        reading.WeatherIcon,
		ObservedAt:  reading.Timestamp,
	}
}

// aggregateDay computes the full-day metrics. An empty slice yields the
// documented zero defaults instead of an error.
func aggregateDay(readings []RawReading) DayAggregates {
	if len(readings) == 0 {
		return DayAggregates{DominantWeather: noDataWeather}
	}

	agg := DayAggregates{
		MinTemperature:  readings[0].TemperatureC,
		MaxTemperature:  readings[0].TemperatureC,
		DataPointsCount: len(readings),
	}
	var tempSum, humiditySum, pressureSum, windSum float64
	for _, r := range readings {
		tempSum += r.TemperatureC
		humiditySum += float64(r.Humidity)
		pressureSum += float64(r.PressureHpa)
		windSum += r.WindSpeedKmh
		if r.TemperatureC < agg.MinTemperature {
			agg.MinTemperature = r.TemperatureC
		}
		if r.TemperatureC > agg.MaxTemperature {
			agg.MaxTemperature = r.TemperatureC
		}
		if r.WindSpeedKmh > agg.MaxWindSpeed {
			agg.MaxWindSpeed = r.WindSpeedKmh
		}
	}

	n := float64(len(readings))
	agg.AvgTemperature = Round(tempSum/n, 1)
	agg.MinTemperature = Round(agg.MinTemperature, 1)
	agg.MaxTemperature = Round(agg.MaxTemperature, 1)
	agg.AvgHumidity = int32(Round(humiditySum/n, 0))
	agg.AvgPressure = int32(Round(pressureSum/n, 0))
	agg.AvgWindSpeed = Round(windSum/n, 1)
	agg.MaxWindSpeed = Round(agg.MaxWindSpeed, 1)
	agg.DominantWeather = dominantWeather(readings)
	return agg
}

// aggregateYesterday reduces the previous day's readings to the retained
// metric set, zero values when the day had no data.
func aggregateYesterday(readings []RawReading) YesterdayAggregates {
	if len(readings) == 0 {
		return YesterdayAggregates{}
	}
	day := aggregateDay(readings)
	return YesterdayAggregates{
		AvgTemperature: day.AvgTemperature,
		MinTemperature: day.MinTemperature,
		MaxTemperature: day.MaxTemperature,
	}
}

// dominantWeather returns the most frequent weatherMain value. Ties go to the
// value that reached the maximum count first in input order, which keeps the
// result stable for chronologically sorted readings.
func dominantWeather(readings []RawReading) string {
	if len(readings) == 0 {
		return noDataWeather
	}
	counts := make(map[string]int, len(readings))
	dominant := readings[0].WeatherMain
	best := 0
	for _, r := range readings {
		counts[r.WeatherMain]++
		if counts[r.WeatherMain] > best {
			best = counts[r.WeatherMain]
			dominant = r.WeatherMain
		}
	}
	return dominant
}

// hourlyTrends buckets readings by their timestamp truncated to the hour in
// the given timezone and aggregates each bucket. Buckets are sorted
// ascending; if more than maxHourlyBuckets distinct hours are present the
// oldest are dropped.
func hourlyTrends(readings []RawReading, tz *time.Location) []HourlyBucket {
	if len(readings) == 0 {
		return []HourlyBucket{}
	}

	grouped := make(map[time.Time][]RawReading)
	var hours []time.Time
	for _, r := range readings {
		local := r.Timestamp.In(tz)
		hour := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), 0, 0, 0, tz)
		if _, seen := grouped[hour]; !seen {
			hours = append(hours, hour)
		}
		grouped[hour] = append(grouped[hour], r)
	}

	sort.Slice(hours, func(i, j int) bool { return hours[i].Before(hours[j]) })
	if len(hours) > maxHourlyBuckets {
		hours = hours[len(hours)-maxHourlyBuckets:]
	}

	buckets := make([]HourlyBucket, 0, len(hours))
	for _, hour := range hours {
		group := grouped[hour]
		var tempSum, humiditySum, pressureSum float64
		for _, r := range group {
			tempSum += r.TemperatureC
			humiditySum += float64(r.Humidity)
			pressureSum += float64(r.PressureHpa)
		}
		n := float64(len(group))
		buckets = append(buckets, HourlyBucket{
			Hour:              hour,
			AvgTemperature:    Round(tempSum/n, 1),
			AvgHumidity:       int32(Round(humiditySum/n, 0)),
			AvgPressure:       int32(Round(pressureSum/n, 0)),
			DominantCondition: dominantWeather(group),
			DataPointsCount:   len(group),
		})
	}
	return buckets
}

// summaryStats computes the statistical extras over today's readings:
// population variance of temperature, humidity range, and the number of
// adjacent weather transitions in chronological order.
func summaryStats(readings []RawReading) SummaryStats {
	if len(readings) == 0 {
		return SummaryStats{}
	}

	var tempSum float64
	minHumidity, maxHumidity := readings[0].Humidity, readings[0].Humidity
	for _, r := range readings {
		tempSum += r.TemperatureC
		if r.Humidity < minHumidity {
			minHumidity = r.Humidity
		}
		if r.Humidity > maxHumidity {
			maxHumidity = r.Humidity
		}
	}
	mean := tempSum / float64(len(readings))

	var squaredSum float64
	changes := 0
	for i, r := range readings {
		d := r.TemperatureC - mean
		squaredSum += d * d
		if i > 0 && r.WeatherMain != readings[i-1].WeatherMain {
			changes++
		}
	}

	return SummaryStats{
		TemperatureVariance: Round(squaredSum/float64(len(readings)), 2),
		HumidityRange:       maxHumidity - minHumidity,
		WeatherChangeCount:  changes,
	}
}
