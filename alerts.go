package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Aditya-Takawale/Weather-App/internal/database"
	"github.com/google/uuid"
)

// This file implements the alert log and its cooldown deduplication. The
// dedup probe at creation time is the only rate limit: two evaluations racing
// inside the same cooldown window can both pass the check, which is accepted.

// createIfNotDuplicate inserts the candidate alert unless an active alert of
// the same (city, alertType) exists within the cooldown window. Candidates
// carrying a ruleId only match against alerts from the same rule. A nil
// result with a nil error means the candidate was suppressed.
func (cfg *apiConfig) createIfNotDuplicate(ctx context.Context, candidate alertCandidate) (*AlertEvent, error) {
	since := time.Now().UTC().Add(-time.Duration(candidate.cooldownMinutes) * time.Minute)
	_, err := cfg.dbQueries.GetRecentActiveAlert(ctx, database.GetRecentActiveAlertParams{
		City:         candidate.event.City,
		AlertType:    string(candidate.event.AlertType),
		CreatedAfter: since,
		RuleID:       nullUUID(candidate.event.RuleID),
	})
	if err == nil {
		cfg.logger.Debug("suppressing duplicate alert",
			"city", candidate.event.City,
			"type", candidate.event.AlertType,
			"cooldown_minutes", candidate.cooldownMinutes,
		)
		return nil, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("could not check for duplicate alert: %w", err)
	}

	event := candidate.event
	event.IsActive = true
	event.NotificationSent = false

	params, err := alertEventToCreateAlertEventParams(event)
	if err != nil {
		return nil, err
	}
	created, err := cfg.dbQueries.CreateAlertEvent(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("could not create alert event: %w", err)
	}

	alert, err := databaseAlertEventToAlertEvent(created)
	if err != nil {
		return nil, err
	}
	cfg.logger.Info("alert raised",
		"city", alert.City,
		"type", alert.AlertType,
		"severity", alert.Severity,
		"message", alert.Message,
	)
	return &alert, nil
}

// resolveAlert marks an alert inactive. Alerts never expire on their own, so
// this is the only way an alert leaves the active set.
func (cfg *apiConfig) resolveAlert(ctx context.Context, id uuid.UUID) (AlertEvent, error) {
	resolved, err := cfg.dbQueries.ResolveAlertEvent(ctx, database.ResolveAlertEventParams{
		ID:         id,
		ResolvedAt: time.Now().UTC(),
	})
	if err != nil {
		return AlertEvent{}, fmt.Errorf("could not resolve alert: %w", err)
	}
	return databaseAlertEventToAlertEvent(resolved)
}

// dispatchNotifications sends a freshly created alert to each of its
// configured channels and marks it sent when at least one channel accepts.
// Unknown channels are logged and skipped. Delivery is at most once; a
// failure after the alert is stored is not retried on later cycles.
func (cfg *apiConfig) dispatchNotifications(ctx context.Context, alert AlertEvent) {
	delivered := false
	for _, channel := range alert.NotificationChannels {
		notifier, ok := cfg.notifiers[channel]
		if !ok {
			cfg.logger.Warn("no notifier configured for channel", "channel", channel, "alert", alert.ID)
			continue
		}
		if err := notifier.Notify(ctx, alert); err != nil {
			cfg.logger.Warn("notification failed", "channel", channel, "alert", alert.ID, "error", err)
			continue
		}
		delivered = true
	}
	if !delivered {
		return
	}
	if err := cfg.dbQueries.MarkAlertNotificationSent(ctx, alert.ID); err != nil {
		cfg.logger.Warn("could not mark alert notification sent", "alert", alert.ID, "error", err)
	}
}
