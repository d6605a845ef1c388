package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Aditya-Takawale/Weather-App/internal/database"
	"github.com/google/uuid"
)

// This file contains the conversion functions between the database models in
// internal/database and the domain types used by the rest of the package.
// Most nullable columns map to plain fields on the domain side, where a zero
// value means the source did not report the field. FeelsLikeC and
// WindDirectionDeg stay nullable end to end because 0 is a real measurement
// for both.

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt32(i int32) sql.NullInt32 {
	return sql.NullInt32{Int32: i, Valid: i != 0}
}

func nullFloat64(f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: f != 0}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func nullUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}

// databaseRawReadingToRawReading converts a database.RawReading to a RawReading.
func databaseRawReadingToRawReading(dbReading database.RawReading) RawReading {
	return RawReading{
		ID:                 dbReading.ID,
		City:               dbReading.City,
		Timestamp:          dbReading.Timestamp,
		Longitude:          dbReading.Longitude,
		Latitude:           dbReading.Latitude,
		WeatherID:          dbReading.WeatherID.Int32,
		WeatherMain:        dbReading.WeatherMain,
		WeatherDescription: dbReading.WeatherDescription.String,
		WeatherIcon:        dbReading.WeatherIcon.String,
		TemperatureC:       dbReading.TemperatureC,
		FeelsLikeC:         dbReading.FeelsLikeC,
		TempMinC:           dbReading.TempMinC.Float64,
		TempMaxC:           dbReading.TempMaxC.Float64,
		PressureHpa:        dbReading.PressureHpa,
		Humidity:           dbReading.Humidity,
		SeaLevelHpa:        dbReading.SeaLevelHpa.Int32,
		GroundLevelHpa:     dbReading.GroundLevelHpa.Int32,
		WindSpeedKmh:       dbReading.WindSpeedKmh,
		WindDirectionDeg:   dbReading.WindDirectionDeg,
		WindGustKmh:        dbReading.WindGustKmh.Float64,
		Cloudiness:         dbReading.Cloudiness.Int32,
		VisibilityM:        dbReading.VisibilityM.Int32,
		Country:            dbReading.Country.String,
		Sunrise:            dbReading.Sunrise.Time,
		Sunset:             dbReading.Sunset.Time,
		SourceUnix:         dbReading.SourceUnix,
		TimezoneOffsetSec:  dbReading.TimezoneOffsetSec,
		IsDeleted:          dbReading.IsDeleted,
		DeletedAt:          dbReading.DeletedAt.Time,
		CreatedAt:          dbReading.CreatedAt,
	}
}

// rawReadingToCreateRawReadingParams converts a RawReading to database.CreateRawReadingParams.
func rawReadingToCreateRawReadingParams(reading RawReading) database.CreateRawReadingParams {
	return database.CreateRawReadingParams{
		City:               reading.City,
		Timestamp:          reading.Timestamp,
		Longitude:          reading.Longitude,
		Latitude:           reading.Latitude,
		WeatherID:          nullInt32(reading.WeatherID),
		WeatherMain:        reading.WeatherMain,
		WeatherDescription: nullString(reading.WeatherDescription),
		WeatherIcon:        nullString(reading.WeatherIcon),
		TemperatureC:       reading.TemperatureC,
		FeelsLikeC:         reading.FeelsLikeC,
		TempMinC:           nullFloat64(reading.TempMinC),
		TempMaxC:           nullFloat64(reading.TempMaxC),
		PressureHpa:        reading.PressureHpa,
		Humidity:           reading.Humidity,
		SeaLevelHpa:        nullInt32(reading.SeaLevelHpa),
		GroundLevelHpa:     nullInt32(reading.GroundLevelHpa),
		WindSpeedKmh:       reading.WindSpeedKmh,
		WindDirectionDeg:   reading.WindDirectionDeg,
		WindGustKmh:        nullFloat64(reading.WindGustKmh),
		Cloudiness:         nullInt32(reading.Cloudiness),
		VisibilityM:        nullInt32(reading.VisibilityM),
		Country:            nullString(reading.Country),
		Sunrise:            nullTime(reading.Sunrise),
		Sunset:             nullTime(reading.Sunset),
		SourceUnix:         reading.SourceUnix,
		TimezoneOffsetSec:  reading.TimezoneOffsetSec,
	}
}

// databaseSummaryToDashboardSummary converts a database.DashboardSummary,
// decoding the JSONB payload columns into their typed sections.
func databaseSummaryToDashboardSummary(dbSummary database.DashboardSummary) (DashboardSummary, error) {
	summary := DashboardSummary{
		ID:          dbSummary.ID,
		City:        dbSummary.City,
		SummaryDate: dbSummary.SummaryDate,
		ComputedAt:  dbSummary.ComputedAt,
	}
	if err := json.Unmarshal(dbSummary.Current, &summary.Current); err != nil {
		return DashboardSummary{}, fmt.Errorf("could not decode current section: %w", err)
	}
	if err := json.Unmarshal(dbSummary.Today, &summary.Today); err != nil {
		return DashboardSummary{}, fmt.Errorf("could not decode today section: %w", err)
	}
	if err := json.Unmarshal(dbSummary.HourlyTrends, &summary.HourlyTrends); err != nil {
		return DashboardSummary{}, fmt.Errorf("could not decode hourly trends section: %w", err)
	}
	if len(dbSummary.Yesterday) > 0 {
		if err := json.Unmarshal(dbSummary.Yesterday, &summary.Yesterday); err != nil {
			return DashboardSummary{}, fmt.Errorf("could not decode yesterday section: %w", err)
		}
	}
	if err := json.Unmarshal(dbSummary.Stats, &summary.Stats); err != nil {
		return DashboardSummary{}, fmt.Errorf("could not decode stats section: %w", err)
	}
	return summary, nil
}

// summarySections encodes a summary's payload sections to the JSONB columns.
func summarySections(summary DashboardSummary) (current, today, trends, yesterday, stats []byte, err error) {
	if current, err = json.Marshal(summary.Current); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("could not encode current section: %w", err)
	}
	if today, err = json.Marshal(summary.Today); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("could not encode today section: %w", err)
	}
	if trends, err = json.Marshal(summary.HourlyTrends); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("could not encode hourly trends section: %w", err)
	}
	if yesterday, err = json.Marshal(summary.Yesterday); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("could not encode yesterday section: %w", err)
	}
	if stats, err = json.Marshal(summary.Stats); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("could not encode stats section: %w", err)
	}
	return current, today, trends, yesterday, stats, nil
}

// databaseAlertRuleToAlertRule converts a database.AlertRule, decoding the
// conditions JSONB column.
func databaseAlertRuleToAlertRule(dbRule database.AlertRule) (AlertRule, error) {
	var conditions []RuleCondition
	if err := json.Unmarshal(dbRule.Conditions, &conditions); err != nil {
		return AlertRule{}, fmt.Errorf("could not decode rule conditions: %w", err)
	}
	return AlertRule{
		ID:                   dbRule.ID,
		UserID:               dbRule.UserID.String,
		City:                 dbRule.City,
		RuleName:             dbRule.RuleName,
		Conditions:           conditions,
		LogicOperator:        LogicOperator(dbRule.LogicOperator),
		Severity:             Severity(dbRule.Severity),
		MessageTemplate:      dbRule.MessageTemplate,
		NotificationChannels: dbRule.NotificationChannels,
		CooldownMinutes:      dbRule.CooldownMinutes,
		IsEnabled:            dbRule.IsEnabled,
		CreatedAt:            dbRule.CreatedAt,
		UpdatedAt:            dbRule.UpdatedAt,
	}, nil
}

// alertRuleToCreateAlertRuleParams converts an AlertRule to database.CreateAlertRuleParams.
func alertRuleToCreateAlertRuleParams(rule AlertRule) (database.CreateAlertRuleParams, error) {
	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return database.CreateAlertRuleParams{}, fmt.Errorf("could not encode rule conditions: %w", err)
	}
	return database.CreateAlertRuleParams{
		UserID:               nullString(rule.UserID),
		City:                 rule.City,
		RuleName:             rule.RuleName,
		Conditions:           conditions,
		LogicOperator:        string(rule.LogicOperator),
		Severity:             string(rule.Severity),
		MessageTemplate:      rule.MessageTemplate,
		NotificationChannels: rule.NotificationChannels,
		CooldownMinutes:      rule.CooldownMinutes,
		IsEnabled:            rule.IsEnabled,
	}, nil
}

// alertRuleToUpdateAlertRuleParams converts an AlertRule to database.UpdateAlertRuleParams.
func alertRuleToUpdateAlertRuleParams(rule AlertRule, id uuid.UUID) (database.UpdateAlertRuleParams, error) {
	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return database.UpdateAlertRuleParams{}, fmt.Errorf("could not encode rule conditions: %w", err)
	}
	return database.UpdateAlertRuleParams{
		ID:                   id,
		RuleName:             rule.RuleName,
		Conditions:           conditions,
		LogicOperator:        string(rule.LogicOperator),
		Severity:             string(rule.Severity),
		MessageTemplate:      rule.MessageTemplate,
		NotificationChannels: rule.NotificationChannels,
		CooldownMinutes:      rule.CooldownMinutes,
		IsEnabled:            rule.IsEnabled,
	}, nil
}

// databaseAlertEventToAlertEvent converts a database.AlertEvent, decoding the
// threshold and actual-value snapshots.
func databaseAlertEventToAlertEvent(dbAlert database.AlertEvent) (AlertEvent, error) {
	alert := AlertEvent{
		ID:                   dbAlert.ID,
		City:                 dbAlert.City,
		AlertType:            AlertType(dbAlert.AlertType),
		Severity:             Severity(dbAlert.Severity),
		Message:              dbAlert.Message,
		IsActive:             dbAlert.IsActive,
		NotificationSent:     dbAlert.NotificationSent,
		NotificationChannels: dbAlert.NotificationChannels,
		UserID:               dbAlert.UserID.String,
		RuleID:               dbAlert.RuleID.UUID,
		CreatedAt:            dbAlert.CreatedAt,
	}
	if dbAlert.ResolvedAt.Valid {
		t := dbAlert.ResolvedAt.Time
		alert.ResolvedAt = &t
	}
	if len(dbAlert.Threshold) > 0 {
		if err := json.Unmarshal(dbAlert.Threshold, &alert.Threshold); err != nil {
			return AlertEvent{}, fmt.Errorf("could not decode threshold snapshot: %w", err)
		}
	}
	if len(dbAlert.ActualValue) > 0 {
		if err := json.Unmarshal(dbAlert.ActualValue, &alert.ActualValue); err != nil {
			return AlertEvent{}, fmt.Errorf("could not decode actual-value snapshot: %w", err)
		}
	}
	return alert, nil
}

// alertEventToCreateAlertEventParams converts an AlertEvent to database.CreateAlertEventParams.
func alertEventToCreateAlertEventParams(alert AlertEvent) (database.CreateAlertEventParams, error) {
	threshold, err := json.Marshal(alert.Threshold)
	if err != nil {
		return database.CreateAlertEventParams{}, fmt.Errorf("could not encode threshold snapshot: %w", err)
	}
	actual, err := json.Marshal(alert.ActualValue)
	if err != nil {
		return database.CreateAlertEventParams{}, fmt.Errorf("could not encode actual-value snapshot: %w", err)
	}
	return database.CreateAlertEventParams{
		City:                 alert.City,
		AlertType:            string(alert.AlertType),
		Severity:             string(alert.Severity),
		Message:              alert.Message,
		Threshold:            threshold,
		ActualValue:          actual,
		IsActive:             alert.IsActive,
		NotificationSent:     alert.NotificationSent,
		NotificationChannels: alert.NotificationChannels,
		UserID:               nullString(alert.UserID),
		RuleID:               nullUUID(alert.RuleID),
	}, nil
}
