package main

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRule() AlertRule {
	return AlertRule{
		ID:       uuid.New(),
		RuleName: "heat-watch",
		City:     "Pune",
		Conditions: []RuleCondition{
			{Parameter: "temperature", Operator: ">", Value: 38.0, Unit: "°C"},
		},
		LogicOperator:   LogicAnd,
		Severity:        SeverityWarning,
		MessageTemplate: "Temperature is {temperature} in {city}",
		CooldownMinutes: 60,
		IsEnabled:       true,
	}
}

func TestCompileRuleValidation(t *testing.T) {
	testCases := []struct {
		name        string
		mutate      func(*AlertRule)
		expectedErr string
	}{
		{
			name:   "Valid rule",
			mutate: func(r *AlertRule) {},
		},
		{
			name:        "No conditions",
			mutate:      func(r *AlertRule) { r.Conditions = nil },
			expectedErr: "has no conditions",
		},
		{
			name:        "Unknown parameter",
			mutate:      func(r *AlertRule) { r.Conditions[0].Parameter = "dewPoint" },
			expectedErr: `unknown rule parameter "dewPoint"`,
		},
		{
			name:        "Unknown operator",
			mutate:      func(r *AlertRule) { r.Conditions[0].Operator = "~=" },
			expectedErr: `unknown rule operator "~="`,
		},
		{
			name:        "Non-numeric threshold for numeric operator",
			mutate:      func(r *AlertRule) { r.Conditions[0].Value = "hot" },
			expectedErr: "is not numeric",
		},
		{
			name: "Numeric operator on text-only field",
			mutate: func(r *AlertRule) {
				r.Conditions[0] = RuleCondition{Parameter: "weatherCondition", Operator: ">", Value: 5.0}
			},
			expectedErr: "does not support numeric operator",
		},
		{
			name: "Non-string threshold for contains",
			mutate: func(r *AlertRule) {
				r.Conditions[0] = RuleCondition{Parameter: "weatherCondition", Operator: "contains", Value: 7.0}
			},
			expectedErr: "requires a string threshold",
		},
		{
			name:        "Invalid logic operator",
			mutate:      func(r *AlertRule) { r.LogicOperator = "XOR" },
			expectedErr: "invalid logic operator",
		},
		{
			name:        "Cooldown below minimum",
			mutate:      func(r *AlertRule) { r.CooldownMinutes = 0 },
			expectedErr: "cooldown must be between 1 and 1440",
		},
		{
			name:        "Cooldown above maximum",
			mutate:      func(r *AlertRule) { r.CooldownMinutes = 1441 },
			expectedErr: "cooldown must be between 1 and 1440",
		},
		{
			name:        "Invalid severity",
			mutate:      func(r *AlertRule) { r.Severity = "FATAL" },
			expectedErr: "invalid severity",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rule := validRule()
			tc.mutate(&rule)
			_, err := compileRule(rule)
			if tc.expectedErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErr)
			}
		})
	}
}

func TestCompiledRuleMatches(t *testing.T) {
	reading := testReading("Pune", time.Now(), 36.5, 85, "Thunderstorm")

	testCases := []struct {
		name       string
		conditions []RuleCondition
		logic      LogicOperator
		expected   bool
	}{
		{
			name:       "Greater than matches",
			conditions: []RuleCondition{{Parameter: "temperature", Operator: ">", Value: 35.0}},
			logic:      LogicAnd,
			expected:   true,
		},
		{
			name:       "Greater than misses",
			conditions: []RuleCondition{{Parameter: "temperature", Operator: ">", Value: 40.0}},
			logic:      LogicAnd,
			expected:   false,
		},
		{
			name:       "Threshold as numeric string",
			conditions: []RuleCondition{{Parameter: "humidity", Operator: ">=", Value: "85"}},
			logic:      LogicAnd,
			expected:   true,
		},
		{
			name: "AND requires all conditions",
			conditions: []RuleCondition{
				{Parameter: "temperature", Operator: ">", Value: 35.0},
				{Parameter: "humidity", Operator: ">", Value: 90.0},
			},
			logic:    LogicAnd,
			expected: false,
		},
		{
			name: "OR requires one condition",
			conditions: []RuleCondition{
				{Parameter: "temperature", Operator: ">", Value: 40.0},
				{Parameter: "humidity", Operator: ">", Value: 80.0},
			},
			logic:    LogicOr,
			expected: true,
		},
		{
			name:       "Contains is case-insensitive",
			conditions: []RuleCondition{{Parameter: "weatherCondition", Operator: "contains", Value: "thunder"}},
			logic:      LogicAnd,
			expected:   true,
		},
		{
			name:       "Not contains",
			conditions: []RuleCondition{{Parameter: "weatherCondition", Operator: "not_contains", Value: "rain"}},
			logic:      LogicAnd,
			expected:   true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rule := validRule()
			rule.Conditions = tc.conditions
			rule.LogicOperator = tc.logic
			compiled, err := compileRule(rule)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, compiled.matches(reading))
		})
	}
}

func TestRenderMessage(t *testing.T) {
	reading := testReading("Pune", time.Now(), 36.5, 85, "Clear")

	testCases := []struct {
		name     string
		template string
		expected string
	}{
		{
			name:     "Known placeholders replaced",
			template: "Temp {temperature}°C, humidity {humidity}% in {city}",
			expected: "Temp 36.5°C, humidity 85% in Pune",
		},
		{
			name:     "Unknown placeholder left verbatim",
			template: "Dew point is {dewPoint}",
			expected: "Dew point is {dewPoint}",
		},
		{
			name:     "No placeholders",
			template: "Weather alert",
			expected: "Weather alert",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, renderMessage(tc.template, reading))
		})
	}
}

func TestEvaluateBuiltinRules(t *testing.T) {
	now := time.Now()

	testCases := []struct {
		name     string
		reading  RawReading
		expected map[AlertType]Severity
	}{
		{
			name:     "Nothing exceeded",
			reading:  testReading("Pune", now, 30, 60, "Clear"),
			expected: map[AlertType]Severity{},
		},
		{
			name:    "High temperature warning",
			reading: testReading("Pune", now, 36, 60, "Clear"),
			expected: map[AlertType]Severity{
				AlertTypeHighTemp: SeverityWarning,
			},
		},
		{
			name:    "High temperature critical past escalation margin",
			reading: testReading("Pune", now, 40.5, 60, "Clear"),
			expected: map[AlertType]Severity{
				AlertTypeHighTemp: SeverityCritical,
			},
		},
		{
			name:    "Exactly at threshold does not fire",
			reading: testReading("Pune", now, 35, 80, "Clear"),
			expected: map[AlertType]Severity{},
		},
		{
			name:    "High humidity warning",
			reading: testReading("Pune", now, 30, 85, "Clear"),
			expected: map[AlertType]Severity{
				AlertTypeHighHumidity: SeverityWarning,
			},
		},
		{
			name:    "High humidity critical past escalation margin",
			reading: testReading("Pune", now, 30, 95, "Clear"),
			expected: map[AlertType]Severity{
				AlertTypeHighHumidity: SeverityCritical,
			},
		},
		{
			name:    "Extreme weather is always critical",
			reading: testReading("Pune", now, 25, 60, "Tornado"),
			expected: map[AlertType]Severity{
				AlertTypeExtremeWeather: SeverityCritical,
			},
		},
		{
			name:    "Extreme weather matches case-insensitively",
			reading: testReading("Pune", now, 25, 60, "thunderstorm"),
			expected: map[AlertType]Severity{
				AlertTypeExtremeWeather: SeverityCritical,
			},
		},
		{
			name:    "Multiple thresholds exceeded at once",
			reading: testReading("Pune", now, 41, 95, "Storm"),
			expected: map[AlertType]Severity{
				AlertTypeHighTemp:       SeverityCritical,
				AlertTypeHighHumidity:   SeverityCritical,
				AlertTypeExtremeWeather: SeverityCritical,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, _ := testConfig(t)
			candidates := cfg.evaluateBuiltinRules(tc.reading)

			got := map[AlertType]Severity{}
			for _, c := range candidates {
				got[c.event.AlertType] = c.event.Severity
				assert.Equal(t, int32(defaultAlertCooldownMinutes), c.cooldownMinutes)
				assert.Equal(t, tc.reading.City, c.event.City)
			}
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestEvaluateCustomRules(t *testing.T) {
	cfg, _ := testConfig(t)
	reading := testReading("Pune", time.Now(), 39, 85, "Clear")

	matching := validRule()
	matching.CooldownMinutes = 30
	matching.Severity = SeverityCritical
	matching.NotificationChannels = []string{"console", "kafka"}
	matching.UserID = "user-1"

	nonMatching := validRule()
	nonMatching.RuleName = "cold-watch"
	nonMatching.Conditions = []RuleCondition{{Parameter: "temperature", Operator: "<", Value: 5.0}}

	malformed := validRule()
	malformed.RuleName = "broken"
	malformed.Conditions = []RuleCondition{{Parameter: "dewPoint", Operator: ">", Value: 1.0}}

	candidates := cfg.evaluateCustomRules([]AlertRule{matching, nonMatching, malformed}, reading)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Equal(t, AlertTypeCustom, c.event.AlertType)
	assert.Equal(t, SeverityCritical, c.event.Severity)
	assert.Equal(t, matching.ID, c.event.RuleID)
	assert.Equal(t, "user-1", c.event.UserID)
	assert.Equal(t, int32(30), c.cooldownMinutes)
	assert.Equal(t, []string{"console", "kafka"}, c.event.NotificationChannels)
	assert.Equal(t, "Temperature is 39 in Pune", c.event.Message)
	// Threshold snapshot comes from the rule's first condition.
	assert.Equal(t, "temperature", c.event.Threshold.Parameter)
	assert.Equal(t, ">", c.event.Threshold.Operator)
	assert.Equal(t, 38.0, c.event.Threshold.Value)
}

func TestEvaluateCustomRulesDefaultChannels(t *testing.T) {
	cfg, _ := testConfig(t)
	rule := validRule()
	rule.NotificationChannels = nil

	candidates := cfg.evaluateCustomRules([]AlertRule{rule}, testReading("Pune", time.Now(), 39, 60, "Clear"))
	require.Len(t, candidates, 1)
	assert.Equal(t, []string{"console"}, candidates[0].event.NotificationChannels)
}
