package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const alertColumns = `id, city, alert_type, severity, message, threshold, actual_value,
	is_active, resolved_at, notification_sent, notification_channels, user_id, rule_id, created_at`

const createAlertEvent = `
INSERT INTO alert_events (
	city, alert_type, severity, message, threshold, actual_value,
	is_active, notification_sent, notification_channels, user_id, rule_id
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + alertColumns

type CreateAlertEventParams struct {
	City                 string
	AlertType            string
	Severity             string
	Message              string
	Threshold            []byte
	ActualValue          []byte
	IsActive             bool
	NotificationSent     bool
	NotificationChannels []string
	UserID               sql.NullString
	RuleID               uuid.NullUUID
}

func (q *Queries) CreateAlertEvent(ctx context.Context, arg CreateAlertEventParams) (AlertEvent, error) {
	row := q.db.QueryRowContext(ctx, createAlertEvent,
		arg.City,
		arg.AlertType,
		arg.Severity,
		arg.Message,
		arg.Threshold,
		arg.ActualValue,
		arg.IsActive,
		arg.NotificationSent,
		pq.Array(arg.NotificationChannels),
		arg.UserID,
		arg.RuleID,
	)
	var i AlertEvent
	err := scanAlertEvent(row, &i)
	return i, err
}

const getRecentActiveAlert = `
SELECT ` + alertColumns + `
FROM alert_events
WHERE city = $1 AND alert_type = $2 AND is_active = TRUE AND created_at >= $3
	AND ($4::uuid IS NULL OR rule_id = $4)
ORDER BY created_at DESC
LIMIT 1
`

type GetRecentActiveAlertParams struct {
	City         string
	AlertType    string
	CreatedAfter time.Time
	RuleID       uuid.NullUUID
}

func (q *Queries) GetRecentActiveAlert(ctx context.Context, arg GetRecentActiveAlertParams) (AlertEvent, error) {
	row := q.db.QueryRowContext(ctx, getRecentActiveAlert, arg.City, arg.AlertType, arg.CreatedAfter, arg.RuleID)
	var i AlertEvent
	err := scanAlertEvent(row, &i)
	return i, err
}

const listActiveAlerts = `
SELECT ` + alertColumns + `
FROM alert_events
WHERE city = $1 AND is_active = TRUE
ORDER BY created_at DESC
LIMIT $2
`

type ListActiveAlertsParams struct {
	City  string
	Limit int32
}

func (q *Queries) ListActiveAlerts(ctx context.Context, arg ListActiveAlertsParams) ([]AlertEvent, error) {
	return q.queryAlertEvents(ctx, listActiveAlerts, arg.City, arg.Limit)
}

const listRecentAlerts = `
SELECT ` + alertColumns + `
FROM alert_events
WHERE city = $1
	AND ($2::text IS NULL OR severity = $2)
	AND ($3::text IS NULL OR alert_type = $3)
ORDER BY created_at DESC
LIMIT $4 OFFSET $5
`

type ListRecentAlertsParams struct {
	City      string
	Severity  sql.NullString
	AlertType sql.NullString
	Limit     int32
	Offset    int32
}

func (q *Queries) ListRecentAlerts(ctx context.Context, arg ListRecentAlertsParams) ([]AlertEvent, error) {
	return q.queryAlertEvents(ctx, listRecentAlerts, arg.City, arg.Severity, arg.AlertType, arg.Limit, arg.Offset)
}

const countAlerts = `
SELECT COUNT(*) FROM alert_events
WHERE city = $1
	AND ($2::text IS NULL OR severity = $2)
	AND ($3::text IS NULL OR alert_type = $3)
`

type CountAlertsParams struct {
	City      string
	Severity  sql.NullString
	AlertType sql.NullString
}

func (q *Queries) CountAlerts(ctx context.Context, arg CountAlertsParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countAlerts, arg.City, arg.Severity, arg.AlertType)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const resolveAlertEvent = `
UPDATE alert_events
SET is_active = FALSE, resolved_at = $2
WHERE id = $1
RETURNING ` + alertColumns

type ResolveAlertEventParams struct {
	ID         uuid.UUID
	ResolvedAt time.Time
}

func (q *Queries) ResolveAlertEvent(ctx context.Context, arg ResolveAlertEventParams) (AlertEvent, error) {
	row := q.db.QueryRowContext(ctx, resolveAlertEvent, arg.ID, arg.ResolvedAt)
	var i AlertEvent
	err := scanAlertEvent(row, &i)
	return i, err
}

const markAlertNotificationSent = `
UPDATE alert_events
SET notification_sent = TRUE
WHERE id = $1
`

func (q *Queries) MarkAlertNotificationSent(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, markAlertNotificationSent, id)
	return err
}

func (q *Queries) queryAlertEvents(ctx context.Context, query string, args ...any) ([]AlertEvent, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AlertEvent
	for rows.Next() {
		var i AlertEvent
		if err := scanAlertEvent(rows, &i); err != nil {
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

func scanAlertEvent(row rowScanner, i *AlertEvent) error {
	return row.Scan(
		&i.ID,
		&i.City,
		&i.AlertType,
		&i.Severity,
		&i.Message,
		&i.Threshold,
		&i.ActualValue,
		&i.IsActive,
		&i.ResolvedAt,
		&i.NotificationSent,
		&i.NotificationChannels,
		&i.UserID,
		&i.RuleID,
		&i.CreatedAt,
	)
}
