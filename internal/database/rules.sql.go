package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const ruleColumns = `id, user_id, city, rule_name, conditions, logic_operator, severity,
	message_template, notification_channels, cooldown_minutes, is_enabled, created_at, updated_at`

const createAlertRule = `
INSERT INTO alert_rules (
	user_id, city, rule_name, conditions, logic_operator, severity,
	message_template, notification_channels, cooldown_minutes, is_enabled
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + ruleColumns

type CreateAlertRuleParams struct {
	UserID               sql.NullString
	City                 string
	RuleName             string
	Conditions           []byte
	LogicOperator        string
	Severity             string
	MessageTemplate      string
	NotificationChannels []string
	CooldownMinutes      int32
	IsEnabled            bool
}

func (q *Queries) CreateAlertRule(ctx context.Context, arg CreateAlertRuleParams) (AlertRule, error) {
	row := q.db.QueryRowContext(ctx, createAlertRule,
		arg.UserID,
		arg.City,
		arg.RuleName,
		arg.Conditions,
		arg.LogicOperator,
		arg.Severity,
		arg.MessageTemplate,
		pq.Array(arg.NotificationChannels),
		arg.CooldownMinutes,
		arg.IsEnabled,
	)
	var i AlertRule
	err := scanAlertRule(row, &i)
	return i, err
}

const getAlertRule = `
SELECT ` + ruleColumns + `
FROM alert_rules
WHERE id = $1
`

func (q *Queries) GetAlertRule(ctx context.Context, id uuid.UUID) (AlertRule, error) {
	row := q.db.QueryRowContext(ctx, getAlertRule, id)
	var i AlertRule
	err := scanAlertRule(row, &i)
	return i, err
}

const listEnabledAlertRules = `
SELECT ` + ruleColumns + `
FROM alert_rules
WHERE city = $1 AND is_enabled = TRUE
	AND ($2::text IS NULL OR user_id IS NULL OR user_id = $2)
ORDER BY created_at ASC
`

type ListEnabledAlertRulesParams struct {
	City   string
	UserID sql.NullString
}

func (q *Queries) ListEnabledAlertRules(ctx context.Context, arg ListEnabledAlertRulesParams) ([]AlertRule, error) {
	rows, err := q.db.QueryContext(ctx, listEnabledAlertRules, arg.City, arg.UserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AlertRule
	for rows.Next() {
		var i AlertRule
		if err := scanAlertRule(rows, &i); err != nil {
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

const updateAlertRule = `
UPDATE alert_rules
SET rule_name = $2, conditions = $3, logic_operator = $4, severity = $5,
	message_template = $6, notification_channels = $7, cooldown_minutes = $8,
	is_enabled = $9, updated_at = NOW()
WHERE id = $1
RETURNING ` + ruleColumns

type UpdateAlertRuleParams struct {
	ID                   uuid.UUID
	RuleName             string
	Conditions           []byte
	LogicOperator        string
	Severity             string
	MessageTemplate      string
	NotificationChannels []string
	CooldownMinutes      int32
	IsEnabled            bool
}

func (q *Queries) UpdateAlertRule(ctx context.Context, arg UpdateAlertRuleParams) (AlertRule, error) {
	row := q.db.QueryRowContext(ctx, updateAlertRule,
		arg.ID,
		arg.RuleName,
		arg.Conditions,
		arg.LogicOperator,
		arg.Severity,
		arg.MessageTemplate,
		pq.Array(arg.NotificationChannels),
		arg.CooldownMinutes,
		arg.IsEnabled,
	)
	var i AlertRule
	err := scanAlertRule(row, &i)
	return i, err
}

const disableAlertRule = `
UPDATE alert_rules
SET is_enabled = FALSE, updated_at = NOW()
WHERE id = $1
`

func (q *Queries) DisableAlertRule(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, disableAlertRule, id)
	return err
}

func scanAlertRule(row rowScanner, i *AlertRule) error {
	return row.Scan(
		&i.ID,
		&i.UserID,
		&i.City,
		&i.RuleName,
		&i.Conditions,
		&i.LogicOperator,
		&i.Severity,
		&i.MessageTemplate,
		&i.NotificationChannels,
		&i.CooldownMinutes,
		&i.IsEnabled,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
}
