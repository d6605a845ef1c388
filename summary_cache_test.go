package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Aditya-Takawale/Weather-App/internal/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSummary(city string) DashboardSummary {
	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	return DashboardSummary{
		ID:          uuid.New(),
		City:        city,
		SummaryDate: day,
		ComputedAt:  day.Add(10 * time.Hour),
		Current: CurrentConditions{
			Temperature: 31.4,
			Humidity:    62,
			Pressure:    1008,
			Condition:   "Clouds",
			ObservedAt:  day.Add(10 * time.Hour),
		},
		Today: DayAggregates{
			AvgTemperature:  30.2,
			MinTemperature:  28.1,
			MaxTemperature:  31.4,
			AvgHumidity:     60,
			DominantWeather: "Clouds",
			DataPointsCount: 5,
		},
		HourlyTrends: []HourlyBucket{
			{Hour: day.Add(9 * time.Hour), AvgTemperature: 30.0, DominantCondition: "Clouds", DataPointsCount: 2},
		},
		Stats: SummaryStats{TemperatureVariance: 1.21, HumidityRange: 8},
	}
}

func dbSummary(t *testing.T, summary DashboardSummary) database.DashboardSummary {
	t.Helper()
	current, today, trends, yesterday, stats, err := summarySections(summary)
	require.NoError(t, err)
	return database.DashboardSummary{
		ID:           summary.ID,
		City:         summary.City,
		SummaryDate:  summary.SummaryDate,
		ComputedAt:   summary.ComputedAt,
		Current:      current,
		Today:        today,
		HourlyTrends: trends,
		Yesterday:    yesterday,
		Stats:        stats,
	}
}

func TestSummaryCacheKey(t *testing.T) {
	assert.Equal(t, "summary:pune", summaryCacheKey("Pune"))
	assert.Equal(t, "summary:sao paulo", summaryCacheKey("São Paulo"))
}

func TestUpsertSummary(t *testing.T) {
	t.Run("Creates when no summary exists for the day", func(t *testing.T) {
		cfg, querier := testConfig(t)
		summary := testSummary("Pune")

		querier.GetSummaryByDayFunc = func(ctx context.Context, arg database.GetSummaryByDayParams) (database.DashboardSummary, error) {
			assert.Equal(t, "Pune", arg.City)
			assert.Equal(t, summary.SummaryDate, arg.SummaryDate)
			return database.DashboardSummary{}, sql.ErrNoRows
		}
		querier.CreateDashboardSummaryFunc = func(ctx context.Context, arg database.CreateDashboardSummaryParams) (database.DashboardSummary, error) {
			created := summary
			created.ID = uuid.New()
			return dbSummary(t, created), nil
		}

		cached := false
		cfg.cache = &mockCache{
			setFunc: func(ctx context.Context, key string, value any, expiration time.Duration) error {
				assert.Equal(t, "summary:pune", key)
				assert.Equal(t, redisSummaryCacheTTL, expiration)
				cached = true
				return nil
			},
		}

		stored, err := cfg.upsertSummary(context.Background(), summary)
		require.NoError(t, err)
		assert.Equal(t, summary.City, stored.City)
		assert.Equal(t, summary.Today, stored.Today)
		assert.True(t, cached)
	})

	t.Run("Updates the existing record in place", func(t *testing.T) {
		cfg, querier := testConfig(t)
		summary := testSummary("Pune")
		existingID := uuid.New()

		querier.GetSummaryByDayFunc = func(ctx context.Context, arg database.GetSummaryByDayParams) (database.DashboardSummary, error) {
			return database.DashboardSummary{ID: existingID}, nil
		}
		querier.UpdateDashboardSummaryFunc = func(ctx context.Context, arg database.UpdateDashboardSummaryParams) (database.DashboardSummary, error) {
			assert.Equal(t, existingID, arg.ID)
			updated := summary
			updated.ID = existingID
			return dbSummary(t, updated), nil
		}

		stored, err := cfg.upsertSummary(context.Background(), summary)
		require.NoError(t, err)
		assert.Equal(t, existingID, stored.ID)
		assert.Equal(t, summary.Stats, stored.Stats)
	})

	t.Run("Cache failure does not fail the upsert", func(t *testing.T) {
		cfg, querier := testConfig(t)
		summary := testSummary("Pune")

		querier.GetSummaryByDayFunc = func(ctx context.Context, arg database.GetSummaryByDayParams) (database.DashboardSummary, error) {
			return database.DashboardSummary{}, sql.ErrNoRows
		}
		querier.CreateDashboardSummaryFunc = func(ctx context.Context, arg database.CreateDashboardSummaryParams) (database.DashboardSummary, error) {
			return dbSummary(t, summary), nil
		}
		cfg.cache = &mockCache{
			setFunc: func(ctx context.Context, key string, value any, expiration time.Duration) error {
				return errors.New("redis down")
			},
		}

		_, err := cfg.upsertSummary(context.Background(), summary)
		assert.NoError(t, err)
	})
}

func TestGetDashboardSummary(t *testing.T) {
	t.Run("Serves from cache on a hit", func(t *testing.T) {
		cfg, _ := testConfig(t)
		summary := testSummary("Pune")
		payload, err := json.Marshal(summary)
		require.NoError(t, err)

		cfg.cache = &mockCache{
			getFunc: func(ctx context.Context, key string) (string, error) {
				assert.Equal(t, "summary:pune", key)
				return string(payload), nil
			},
		}

		// The querier has no functions set, so any store call fails the test.
		got, err := cfg.getDashboardSummary(context.Background(), "Pune", false)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, summary.City, got.City)
		assert.Equal(t, summary.Today, got.Today)
	})

	t.Run("Falls back to the latest stored summary on a miss", func(t *testing.T) {
		cfg, querier := testConfig(t)
		summary := testSummary("Pune")

		querier.GetLatestSummaryFunc = func(ctx context.Context, city string) (database.DashboardSummary, error) {
			assert.Equal(t, "Pune", city)
			return dbSummary(t, summary), nil
		}

		cached := false
		cfg.cache = &mockCache{
			setFunc: func(ctx context.Context, key string, value any, expiration time.Duration) error {
				cached = true
				return nil
			},
		}

		got, err := cfg.getDashboardSummary(context.Background(), "Pune", false)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, summary.ID, got.ID)
		assert.True(t, cached)
	})

	t.Run("Computes lazily when nothing is stored yet", func(t *testing.T) {
		cfg, querier := testConfig(t)
		reading := testReading("Pune", time.Now().UTC().Add(-time.Hour), 30, 50, "Clear")

		querier.GetLatestSummaryFunc = func(ctx context.Context, city string) (database.DashboardSummary, error) {
			return database.DashboardSummary{}, sql.ErrNoRows
		}
		querier.GetLatestRawReadingFunc = func(ctx context.Context, city string) (database.RawReading, error) {
			return dbReadings([]RawReading{reading})[0], nil
		}
		querier.ListActiveReadingsInRangeFunc = func(ctx context.Context, arg database.ListActiveReadingsInRangeParams) ([]database.RawReading, error) {
			return dbReadings([]RawReading{reading}), nil
		}
		querier.GetSummaryByDayFunc = func(ctx context.Context, arg database.GetSummaryByDayParams) (database.DashboardSummary, error) {
			return database.DashboardSummary{}, sql.ErrNoRows
		}
		querier.CreateDashboardSummaryFunc = func(ctx context.Context, arg database.CreateDashboardSummaryParams) (database.DashboardSummary, error) {
			return database.DashboardSummary{
				ID:           uuid.New(),
				City:         arg.City,
				SummaryDate:  arg.SummaryDate,
				ComputedAt:   arg.ComputedAt,
				Current:      arg.Current,
				Today:        arg.Today,
				HourlyTrends: arg.HourlyTrends,
				Yesterday:    arg.Yesterday,
				Stats:        arg.Stats,
			}, nil
		}

		got, err := cfg.getDashboardSummary(context.Background(), "Pune", false)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Pune", got.City)
	})

	t.Run("No readings at all yields nil without error", func(t *testing.T) {
		cfg, querier := testConfig(t)
		querier.GetLatestSummaryFunc = func(ctx context.Context, city string) (database.DashboardSummary, error) {
			return database.DashboardSummary{}, sql.ErrNoRows
		}
		querier.GetLatestRawReadingFunc = func(ctx context.Context, city string) (database.RawReading, error) {
			return database.RawReading{}, sql.ErrNoRows
		}

		got, err := cfg.getDashboardSummary(context.Background(), "Pune", false)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Refresh bypasses the cache and recomputes", func(t *testing.T) {
		cfg, querier := testConfig(t)
		reading := testReading("Pune", time.Now().UTC().Add(-time.Hour), 30, 50, "Clear")

		querier.GetLatestRawReadingFunc = func(ctx context.Context, city string) (database.RawReading, error) {
			return dbReadings([]RawReading{reading})[0], nil
		}
		querier.ListActiveReadingsInRangeFunc = func(ctx context.Context, arg database.ListActiveReadingsInRangeParams) ([]database.RawReading, error) {
			return dbReadings([]RawReading{reading}), nil
		}
		querier.GetSummaryByDayFunc = func(ctx context.Context, arg database.GetSummaryByDayParams) (database.DashboardSummary, error) {
			return database.DashboardSummary{}, sql.ErrNoRows
		}
		created := false
		querier.CreateDashboardSummaryFunc = func(ctx context.Context, arg database.CreateDashboardSummaryParams) (database.DashboardSummary, error) {
			created = true
			return database.DashboardSummary{
				ID:           uuid.New(),
				City:         arg.City,
				SummaryDate:  arg.SummaryDate,
				ComputedAt:   arg.ComputedAt,
				Current:      arg.Current,
				Today:        arg.Today,
				HourlyTrends: arg.HourlyTrends,
				Yesterday:    arg.Yesterday,
				Stats:        arg.Stats,
			}, nil
		}
		cfg.cache = &mockCache{
			getFunc: func(ctx context.Context, key string) (string, error) {
				t.Fatal("refresh must not read the cache")
				return "", nil
			},
		}

		got, err := cfg.getDashboardSummary(context.Background(), "Pune", true)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, created)
	})
}
