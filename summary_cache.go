package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Aditya-Takawale/Weather-App/internal/database"
)

// This file implements the summary cache: the (city, day) upsert into the
// summary store plus the Redis layer the serving path reads through.

const redisSummaryCacheTTL = 9 * time.Minute

func summaryCacheKey(city string) string {
	key, err := normalizeCityName(city)
	if err != nil {
		return "summary:" + city
	}
	return "summary:" + key
}

// upsertSummary stores a computed summary for its (city, summaryDate) pair,
// replacing all payload sections of an existing record or creating a new one.
// Re-running with identical input leaves the stored state unchanged except
// for computedAt. The Redis entry is refreshed on success; a cache failure is
// logged but never fails the upsert.
func (cfg *apiConfig) upsertSummary(ctx context.Context, summary DashboardSummary) (DashboardSummary, error) {
	current, today, trends, yesterday, stats, err := summarySections(summary)
	if err != nil {
		return DashboardSummary{}, err
	}

	var stored database.DashboardSummary
	existing, err := cfg.dbQueries.GetSummaryByDay(ctx, database.GetSummaryByDayParams{
		City:        summary.City,
		SummaryDate: summary.SummaryDate,
	})
	switch {
	case err == nil:
		stored, err = cfg.dbQueries.UpdateDashboardSummary(ctx, database.UpdateDashboardSummaryParams{
			ID:           existing.ID,
			ComputedAt:   summary.ComputedAt,
			Current:      current,
			Today:        today,
			HourlyTrends: trends,
			Yesterday:    yesterday,
			Stats:        stats,
		})
		if err != nil {
			return DashboardSummary{}, fmt.Errorf("could not update summary: %w", err)
		}
	case errors.Is(err, sql.ErrNoRows):
		stored, err = cfg.dbQueries.CreateDashboardSummary(ctx, database.CreateDashboardSummaryParams{
			City:         summary.City,
			SummaryDate:  summary.SummaryDate,
			ComputedAt:   summary.ComputedAt,
			Current:      current,
			Today:        today,
			HourlyTrends: trends,
			Yesterday:    yesterday,
			Stats:        stats,
		})
		if err != nil {
			return DashboardSummary{}, fmt.Errorf("could not create summary: %w", err)
		}
	default:
		return DashboardSummary{}, fmt.Errorf("could not look up summary for day: %w", err)
	}

	result, err := databaseSummaryToDashboardSummary(stored)
	if err != nil {
		return DashboardSummary{}, err
	}

	if cacheErr := cfg.cache.Set(ctx, summaryCacheKey(result.City), result, redisSummaryCacheTTL); cacheErr != nil {
		cfg.logger.Warn("could not cache summary", "city", result.City, "error", cacheErr)
	}
	return result, nil
}

// getDashboardSummary is the serving-path read. With refresh set it always
// recomputes and upserts. Otherwise it serves from Redis, falls back to the
// latest stored summary, and finally computes fresh when no summary exists
// yet (lazy population on cold start). A nil result with a nil error means
// the city has no readings yet.
func (cfg *apiConfig) getDashboardSummary(ctx context.Context, city string, refresh bool) (*DashboardSummary, error) {
	if refresh {
		return cfg.refreshSummary(ctx, city)
	}

	cached, err := cfg.cache.Get(ctx, summaryCacheKey(city))
	if err == nil {
		var summary DashboardSummary
		if err := json.Unmarshal([]byte(cached), &summary); err == nil {
			cfg.logger.Debug("summary served from cache", "city", city)
			return &summary, nil
		}
		cfg.logger.Warn("could not decode cached summary, falling back to store", "city", city, "error", err)
	}

	stored, err := cfg.dbQueries.GetLatestSummary(ctx, city)
	if err == nil {
		summary, convErr := databaseSummaryToDashboardSummary(stored)
		if convErr != nil {
			return nil, convErr
		}
		if cacheErr := cfg.cache.Set(ctx, summaryCacheKey(city), summary, redisSummaryCacheTTL); cacheErr != nil {
			cfg.logger.Warn("could not cache summary", "city", city, "error", cacheErr)
		}
		return &summary, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("could not fetch latest summary: %w", err)
	}

	cfg.logger.Debug("no stored summary, computing fresh", "city", city)
	return cfg.refreshSummary(ctx, city)
}

// refreshSummary recomputes the summary as of now and persists it.
func (cfg *apiConfig) refreshSummary(ctx context.Context, city string) (*DashboardSummary, error) {
	computed, err := cfg.computeSummary(ctx, city, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if computed == nil {
		return nil, nil
	}
	stored, err := cfg.upsertSummary(ctx, *computed)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}
