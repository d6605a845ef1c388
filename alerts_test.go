package main

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/Aditya-Takawale/Weather-App/internal/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCandidate(city string, cooldownMinutes int32) alertCandidate {
	return alertCandidate{
		event: AlertEvent{
			City:      city,
			AlertType: AlertTypeHighTemp,
			Severity:  SeverityWarning,
			Message:   "High temperature in " + city,
			Threshold: ThresholdSnapshot{
				Parameter: "temperature",
				Operator:  ">",
				Value:     35.0,
				Unit:      "°C",
			},
			NotificationChannels: []string{"console"},
		},
		cooldownMinutes: cooldownMinutes,
	}
}

func TestCreateIfNotDuplicate(t *testing.T) {
	t.Run("Suppressed when an active alert sits inside the cooldown window", func(t *testing.T) {
		cfg, querier := testConfig(t)
		querier.GetRecentActiveAlertFunc = func(ctx context.Context, arg database.GetRecentActiveAlertParams) (database.AlertEvent, error) {
			return database.AlertEvent{ID: uuid.New()}, nil
		}

		alert, err := cfg.createIfNotDuplicate(context.Background(), testCandidate("Pune", 60))
		require.NoError(t, err)
		assert.Nil(t, alert)
	})

	t.Run("Created when no recent active alert exists", func(t *testing.T) {
		cfg, querier := testConfig(t)
		candidate := testCandidate("Pune", 60)
		before := time.Now().UTC()

		var probe database.GetRecentActiveAlertParams
		querier.GetRecentActiveAlertFunc = func(ctx context.Context, arg database.GetRecentActiveAlertParams) (database.AlertEvent, error) {
			probe = arg
			return database.AlertEvent{}, sql.ErrNoRows
		}
		querier.CreateAlertEventFunc = func(ctx context.Context, arg database.CreateAlertEventParams) (database.AlertEvent, error) {
			assert.True(t, arg.IsActive)
			assert.False(t, arg.NotificationSent)
			return database.AlertEvent{
				ID:                   uuid.New(),
				City:                 arg.City,
				AlertType:            arg.AlertType,
				Severity:             arg.Severity,
				Message:              arg.Message,
				Threshold:            arg.Threshold,
				ActualValue:          arg.ActualValue,
				IsActive:             arg.IsActive,
				NotificationChannels: arg.NotificationChannels,
				UserID:               arg.UserID,
				RuleID:               arg.RuleID,
				CreatedAt:            time.Now().UTC(),
			}, nil
		}

		alert, err := cfg.createIfNotDuplicate(context.Background(), candidate)
		require.NoError(t, err)
		require.NotNil(t, alert)
		assert.Equal(t, "Pune", alert.City)
		assert.Equal(t, AlertTypeHighTemp, alert.AlertType)
		assert.True(t, alert.IsActive)

		assert.Equal(t, "Pune", probe.City)
		assert.Equal(t, "HIGH_TEMP", probe.AlertType)
		assert.False(t, probe.RuleID.Valid)
		// The probe window starts cooldownMinutes before now.
		expectedSince := before.Add(-60 * time.Minute)
		assert.WithinDuration(t, expectedSince, probe.CreatedAfter, 2*time.Second)
	})

	t.Run("Rule-scoped candidates probe with their rule id", func(t *testing.T) {
		cfg, querier := testConfig(t)
		candidate := testCandidate("Pune", 30)
		candidate.event.AlertType = AlertTypeCustom
		candidate.event.RuleID = uuid.New()

		querier.GetRecentActiveAlertFunc = func(ctx context.Context, arg database.GetRecentActiveAlertParams) (database.AlertEvent, error) {
			assert.True(t, arg.RuleID.Valid)
			assert.Equal(t, candidate.event.RuleID, arg.RuleID.UUID)
			return database.AlertEvent{ID: uuid.New()}, nil
		}

		alert, err := cfg.createIfNotDuplicate(context.Background(), candidate)
		require.NoError(t, err)
		assert.Nil(t, alert)
	})

	t.Run("Probe error is surfaced", func(t *testing.T) {
		cfg, querier := testConfig(t)
		querier.GetRecentActiveAlertFunc = func(ctx context.Context, arg database.GetRecentActiveAlertParams) (database.AlertEvent, error) {
			return database.AlertEvent{}, errors.New("connection reset")
		}

		alert, err := cfg.createIfNotDuplicate(context.Background(), testCandidate("Pune", 60))
		require.Error(t, err)
		assert.Nil(t, alert)
		assert.Contains(t, err.Error(), "could not check for duplicate alert")
	})
}

func TestResolveAlert(t *testing.T) {
	cfg, querier := testConfig(t)
	id := uuid.New()

	querier.ResolveAlertEventFunc = func(ctx context.Context, arg database.ResolveAlertEventParams) (database.AlertEvent, error) {
		assert.Equal(t, id, arg.ID)
		assert.False(t, arg.ResolvedAt.IsZero())
		return database.AlertEvent{
			ID:         id,
			City:       "Pune",
			AlertType:  "HIGH_TEMP",
			Severity:   "WARNING",
			IsActive:   false,
			ResolvedAt: sql.NullTime{Time: arg.ResolvedAt, Valid: true},
		}, nil
	}

	alert, err := cfg.resolveAlert(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, alert.IsActive)
	require.NotNil(t, alert.ResolvedAt)
}

func TestDispatchNotifications(t *testing.T) {
	alert := AlertEvent{
		ID:                   uuid.New(),
		City:                 "Pune",
		AlertType:            AlertTypeHighTemp,
		Severity:             SeverityWarning,
		NotificationChannels: []string{"console"},
	}

	t.Run("Marks sent after a successful delivery", func(t *testing.T) {
		cfg, querier := testConfig(t)
		console := &mockNotifier{}
		cfg.notifiers["console"] = console

		marked := false
		querier.MarkAlertNotificationSentFunc = func(ctx context.Context, id uuid.UUID) error {
			assert.Equal(t, alert.ID, id)
			marked = true
			return nil
		}

		cfg.dispatchNotifications(context.Background(), alert)
		assert.True(t, marked)
		require.Len(t, console.delivered, 1)
		assert.Equal(t, alert.ID, console.delivered[0].ID)
	})

	t.Run("Does not mark sent when every channel fails", func(t *testing.T) {
		cfg, _ := testConfig(t)
		cfg.notifiers["console"] = &mockNotifier{
			notifyFunc: func(ctx context.Context, alert AlertEvent) error {
				return errors.New("broker unavailable")
			},
		}

		// MarkAlertNotificationSentFunc is unset, so a call would fail the test.
		cfg.dispatchNotifications(context.Background(), alert)
	})

	t.Run("Unknown channels are skipped", func(t *testing.T) {
		cfg, _ := testConfig(t)
		unknownOnly := alert
		unknownOnly.NotificationChannels = []string{"sms"}

		cfg.dispatchNotifications(context.Background(), unknownOnly)
	})

	t.Run("One failing channel does not block the others", func(t *testing.T) {
		cfg, querier := testConfig(t)
		cfg.notifiers["kafka"] = &mockNotifier{
			notifyFunc: func(ctx context.Context, alert AlertEvent) error {
				return errors.New("broker unavailable")
			},
		}
		console := &mockNotifier{}
		cfg.notifiers["console"] = console

		marked := false
		querier.MarkAlertNotificationSentFunc = func(ctx context.Context, id uuid.UUID) error {
			marked = true
			return nil
		}

		both := alert
		both.NotificationChannels = []string{"kafka", "console"}
		cfg.dispatchNotifications(context.Background(), both)
		assert.True(t, marked)
		assert.Len(t, console.delivered, 1)
	})
}
