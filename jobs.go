package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Aditya-Takawale/Weather-App/internal/database"
)

// This file contains the four job bodies the scheduler runs. Each returns a
// human-readable message for the job result; the scheduler handles timing,
// guarding and panic recovery.

// runFetchJob polls the weather provider and appends one raw reading. A
// provider failure aborts the cycle; the next tick tries again.
func (cfg *apiConfig) runFetchJob(ctx context.Context) (string, error) {
	reading, err := cfg.requestCurrentReading(ctx)
	if err != nil {
		return "", err
	}

	created, err := cfg.dbQueries.CreateRawReading(ctx, rawReadingToCreateRawReadingParams(reading))
	if err != nil {
		return "", fmt.Errorf("could not persist reading: %w", err)
	}

	return fmt.Sprintf("stored reading for %s: %.1f°C, %s at %s",
		created.City, created.TemperatureC, created.WeatherMain,
		created.Timestamp.Format(time.RFC3339)), nil
}

// runAggregateJob recomputes and upserts the dashboard summary for the
// configured city. Having no data yet is a skip, not a failure.
func (cfg *apiConfig) runAggregateJob(ctx context.Context) (string, error) {
	summary, err := cfg.computeSummary(ctx, cfg.city, time.Now().UTC())
	if err != nil {
		return "", err
	}
	if summary == nil {
		return fmt.Sprintf("no readings for %s yet, skipping aggregation", cfg.city), nil
	}

	stored, err := cfg.upsertSummary(ctx, *summary)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("summary for %s on %s recomputed from %d readings",
		stored.City, stored.SummaryDate.Format("2006-01-02"),
		stored.Today.DataPointsCount), nil
}

// runAlertCheckJob evaluates the built-in thresholds and every enabled custom
// rule against the latest reading, then pushes each match through the dedup
// path and dispatches notifications for the alerts that survive it.
func (cfg *apiConfig) runAlertCheckJob(ctx context.Context) (string, error) {
	dbReading, err := cfg.dbQueries.GetLatestRawReading(ctx, cfg.city)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Sprintf("no readings for %s yet, skipping alert check", cfg.city), nil
	}
	if err != nil {
		return "", fmt.Errorf("could not fetch latest reading: %w", err)
	}
	reading := databaseRawReadingToRawReading(dbReading)

	candidates := cfg.evaluateBuiltinRules(reading)

	dbRules, err := cfg.dbQueries.ListEnabledAlertRules(ctx, database.ListEnabledAlertRulesParams{
		City: cfg.city,
	})
	if err != nil {
		return "", fmt.Errorf("could not list alert rules: %w", err)
	}
	rules := make([]AlertRule, 0, len(dbRules))
	for _, dbRule := range dbRules {
		rule, convErr := databaseAlertRuleToAlertRule(dbRule)
		if convErr != nil {
			cfg.logger.Warn("skipping undecodable alert rule", "rule_id", dbRule.ID, "error", convErr)
			continue
		}
		rules = append(rules, rule)
	}
	candidates = append(candidates, cfg.evaluateCustomRules(rules, reading)...)

	var raised, suppressed, failed int
	for _, candidate := range candidates {
		alert, createErr := cfg.createIfNotDuplicate(ctx, candidate)
		if createErr != nil {
			cfg.logger.Error("could not record alert", "type", candidate.event.AlertType, "error", createErr)
			failed++
			continue
		}
		if alert == nil {
			suppressed++
			continue
		}
		raised++
		cfg.dispatchNotifications(ctx, *alert)
	}

	message := fmt.Sprintf("evaluated %d candidates: %d raised, %d suppressed", len(candidates), raised, suppressed)
	if failed > 0 {
		return "", fmt.Errorf("%s, %d failed to record", message, failed)
	}
	return message, nil
}

// runCleanupJob drives both retention transitions: readings older than the
// retention window are soft-deleted, and readings that have been
// soft-deleted for more than a further week are purged for good.
func (cfg *apiConfig) runCleanupJob(ctx context.Context) (string, error) {
	now := time.Now().UTC()

	softCutoff := now.AddDate(0, 0, -cfg.retentionDays)
	softDeleted, err := cfg.dbQueries.SoftDeleteReadingsBefore(ctx, database.SoftDeleteReadingsBeforeParams{
		Cutoff:    softCutoff,
		DeletedAt: now,
	})
	if err != nil {
		return "", fmt.Errorf("could not soft-delete expired readings: %w", err)
	}

	hardCutoff := now.AddDate(0, 0, -(cfg.retentionDays + hardDeleteGraceDays))
	hardDeleted, err := cfg.dbQueries.HardDeleteReadingsBefore(ctx, hardCutoff)
	if err != nil {
		return "", fmt.Errorf("could not purge soft-deleted readings: %w", err)
	}

	return fmt.Sprintf("soft-deleted %d readings, purged %d", softDeleted, hardDeleted), nil
}

// hardDeleteGraceDays is how long a soft-deleted reading stays queryable
// before the cleanup job purges it.
const hardDeleteGraceDays = 7
