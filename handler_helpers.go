package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Aditya-Takawale/Weather-App/internal/database"
)

// This file contains the request-parsing and validation plumbing shared by
// the HTTP handlers.

const defaultPageSize = 20
const maxPageSize = 100

// cityFromRequest returns the requested city, falling back to the configured
// one when the query parameter is absent.
func (cfg *apiConfig) cityFromRequest(r *http.Request) string {
	if city := r.URL.Query().Get("city"); city != "" {
		return city
	}
	return cfg.city
}

func parseLimit(r *http.Request, fallback int32) int32 {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return fallback
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		return fallback
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return int32(limit)
}

// parsePagination reads page and page_size, clamping both to sane bounds.
func parsePagination(r *http.Request) (page, pageSize int) {
	page = 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	pageSize = defaultPageSize
	if ps, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && ps > 0 {
		pageSize = ps
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// parseAlertFilters validates the optional severity and type filters against
// the known values. Invalid filters are rejected, not silently ignored.
func parseAlertFilters(r *http.Request) (severity, alertType sql.NullString, err error) {
	if s := r.URL.Query().Get("severity"); s != "" {
		switch Severity(s) {
		case SeverityInfo, SeverityWarning, SeverityCritical:
			severity = sql.NullString{String: s, Valid: true}
		default:
			return severity, alertType, fmt.Errorf("unknown severity %q", s)
		}
	}
	if t := r.URL.Query().Get("type"); t != "" {
		switch AlertType(t) {
		case AlertTypeHighTemp, AlertTypeLowTemp, AlertTypeHighHumidity, AlertTypeLowHumidity,
			AlertTypeExtremeWeather, AlertTypeHighWind, AlertTypeCustom:
			alertType = sql.NullString{String: t, Valid: true}
		default:
			return severity, alertType, fmt.Errorf("unknown alert type %q", t)
		}
	}
	return severity, alertType, nil
}

func convertAlertEvents(dbAlerts []database.AlertEvent) ([]AlertEvent, error) {
	alerts := make([]AlertEvent, 0, len(dbAlerts))
	for _, dbAlert := range dbAlerts {
		alert, err := databaseAlertEventToAlertEvent(dbAlert)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, nil
}

// createRulePayload is the request body for creating or updating a rule.
type createRulePayload struct {
	UserID               string          `json:"user_id"`
	City                 string          `json:"city"`
	RuleName             string          `json:"rule_name"`
	Conditions           []RuleCondition `json:"conditions"`
	LogicOperator        string          `json:"logic_operator"`
	Severity             string          `json:"severity"`
	MessageTemplate      string          `json:"message_template"`
	NotificationChannels []string        `json:"notification_channels"`
	CooldownMinutes      int32           `json:"cooldown_minutes"`
}

// ruleFromRequest decodes and validates a rule payload. Validation compiles
// the rule, so anything the engine would reject at evaluation time is
// rejected here at write time instead.
func (cfg *apiConfig) ruleFromRequest(r *http.Request) (AlertRule, error) {
	var payload createRulePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return AlertRule{}, fmt.Errorf("invalid rule payload: %v", err)
	}

	rule := AlertRule{
		UserID:               payload.UserID,
		City:                 payload.City,
		RuleName:             payload.RuleName,
		Conditions:           payload.Conditions,
		LogicOperator:        LogicOperator(payload.LogicOperator),
		Severity:             Severity(payload.Severity),
		MessageTemplate:      payload.MessageTemplate,
		NotificationChannels: payload.NotificationChannels,
		CooldownMinutes:      payload.CooldownMinutes,
		IsEnabled:            true,
	}
	if rule.City == "" {
		rule.City = cfg.city
	}
	if rule.RuleName == "" {
		return AlertRule{}, fmt.Errorf("rule_name is required")
	}
	if rule.LogicOperator == "" {
		rule.LogicOperator = LogicAnd
	}
	if rule.Severity == "" {
		rule.Severity = SeverityWarning
	}
	if len(rule.NotificationChannels) == 0 {
		rule.NotificationChannels = []string{"console"}
	}
	if rule.CooldownMinutes == 0 {
		rule.CooldownMinutes = defaultAlertCooldownMinutes
	}

	if _, err := compileRule(rule); err != nil {
		return AlertRule{}, err
	}
	return rule, nil
}

// computeTrends computes the hourly trend buckets for the last 48 hours of a
// city's readings, without touching the stored summary.
func (cfg *apiConfig) computeTrends(ctx context.Context, city string) ([]HourlyBucket, error) {
	now := time.Now().UTC()
	dbReadings, err := cfg.dbQueries.ListActiveReadingsInRange(ctx, database.ListActiveReadingsInRangeParams{
		City:      city,
		StartTime: now.Add(-hourlyTrendWindow),
		EndTime:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("could not fetch trend window readings: %w", err)
	}
	readings := make([]RawReading, len(dbReadings))
	for i, r := range dbReadings {
		readings[i] = databaseRawReadingToRawReading(r)
	}
	return hourlyTrends(readings, cfg.timezone), nil
}
