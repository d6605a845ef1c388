package main

import (
	"fmt"
	"strconv"
	"strings"
)

// This file implements the rule engine. Built-in thresholds and custom rules
// are evaluated independently against the latest reading; every match is
// collected as an alert candidate and handed to the dedup path.

// alertCandidate is a fully-formed alert plus the cooldown the dedup check
// should apply to it.
type alertCandidate struct {
	event           AlertEvent
	cooldownMinutes int32
}

// ruleField is one entry of the closed set of reading fields a rule condition
// may reference. Numeric is nil for text-only fields.
type ruleField struct {
	numeric func(RawReading) float64
	text    func(RawReading) string
}

// ruleFields enumerates the fields custom rules may evaluate. A condition
// naming anything else is rejected when the rule is compiled.
var ruleFields = map[string]ruleField{
	"temperature": {
		numeric: func(r RawReading) float64 { return r.TemperatureC },
		text:    func(r RawReading) string { return strconv.FormatFloat(r.TemperatureC, 'f', -1, 64) },
	},
	"humidity": {
		numeric: func(r RawReading) float64 { return float64(r.Humidity) },
		text:    func(r RawReading) string { return strconv.Itoa(int(r.Humidity)) },
	},
	"pressure": {
		numeric: func(r RawReading) float64 { return float64(r.PressureHpa) },
		text:    func(r RawReading) string { return strconv.Itoa(int(r.PressureHpa)) },
	},
	"windSpeed": {
		numeric: func(r RawReading) float64 { return r.WindSpeedKmh },
		text:    func(r RawReading) string { return strconv.FormatFloat(r.WindSpeedKmh, 'f', -1, 64) },
	},
	"visibility": {
		numeric: func(r RawReading) float64 { return float64(r.VisibilityM) },
		text:    func(r RawReading) string { return strconv.Itoa(int(r.VisibilityM)) },
	},
	"weatherCondition": {
		text: func(r RawReading) string { return r.WeatherMain },
	},
}

var numericOperators = map[string]func(a, b float64) bool{
	">":  func(a, b float64) bool { return a > b },
	"<":  func(a, b float64) bool { return a < b },
	">=": func(a, b float64) bool { return a >= b },
	"<=": func(a, b float64) bool { return a <= b },
	"==": func(a, b float64) bool { return a == b },
	"!=": func(a, b float64) bool { return a != b },
}

// compiledCondition is a RuleCondition with its field accessor and threshold
// type resolved. Exactly one of numericValue/textValue is meaningful,
// selected by isText.
type compiledCondition struct {
	parameter    string
	operator     string
	field        ruleField
	numericValue float64
	textValue    string
	isText       bool
	negate       bool
}

type compiledRule struct {
	rule       AlertRule
	conditions []compiledCondition
}

// compileCondition resolves one condition's field accessor and threshold
// type, rejecting unknown fields, unknown operators, and threshold values of
// the wrong type.
func compileCondition(cond RuleCondition) (compiledCondition, error) {
	field, ok := ruleFields[cond.Parameter]
	if !ok {
		return compiledCondition{}, fmt.Errorf("unknown rule parameter %q", cond.Parameter)
	}

	if fn := numericOperators[cond.Operator]; fn != nil {
		if field.numeric == nil {
			return compiledCondition{}, fmt.Errorf("parameter %q does not support numeric operator %q", cond.Parameter, cond.Operator)
		}
		value, err := numericThreshold(cond.Value)
		if err != nil {
			return compiledCondition{}, fmt.Errorf("condition on %q: %w", cond.Parameter, err)
		}
		return compiledCondition{
			parameter:    cond.Parameter,
			operator:     cond.Operator,
			field:        field,
			numericValue: value,
		}, nil
	}

	switch cond.Operator {
	case "contains", "not_contains":
		text, ok := cond.Value.(string)
		if !ok {
			return compiledCondition{}, fmt.Errorf("condition on %q: operator %q requires a string threshold", cond.Parameter, cond.Operator)
		}
		return compiledCondition{
			parameter: cond.Parameter,
			operator:  cond.Operator,
			field:     field,
			textValue: text,
			isText:    true,
			negate:    cond.Operator == "not_contains",
		}, nil
	}

	return compiledCondition{}, fmt.Errorf("unknown rule operator %q", cond.Operator)
}

// compileRule validates a rule and resolves all of its conditions. Rules are
// compiled when loaded, so malformed configuration fails fast instead of
// misbehaving at evaluation time.
func compileRule(rule AlertRule) (compiledRule, error) {
	if len(rule.Conditions) == 0 {
		return compiledRule{}, fmt.Errorf("rule %q has no conditions", rule.RuleName)
	}
	if rule.LogicOperator != LogicAnd && rule.LogicOperator != LogicOr {
		return compiledRule{}, fmt.Errorf("rule %q has invalid logic operator %q", rule.RuleName, rule.LogicOperator)
	}
	if rule.CooldownMinutes < 1 || rule.CooldownMinutes > 1440 {
		return compiledRule{}, fmt.Errorf("rule %q cooldown must be between 1 and 1440 minutes", rule.RuleName)
	}
	switch rule.Severity {
	case SeverityInfo, SeverityWarning, SeverityCritical:
	default:
		return compiledRule{}, fmt.Errorf("rule %q has invalid severity %q", rule.RuleName, rule.Severity)
	}

	compiled := compiledRule{rule: rule}
	for _, cond := range rule.Conditions {
		cc, err := compileCondition(cond)
		if err != nil {
			return compiledRule{}, fmt.Errorf("rule %q: %w", rule.RuleName, err)
		}
		compiled.conditions = append(compiled.conditions, cc)
	}
	return compiled, nil
}

func numericThreshold(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("threshold %q is not numeric", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("threshold %v is not numeric", value)
	}
}

func (c compiledCondition) matches(reading RawReading) bool {
	if c.isText {
		haystack := strings.ToLower(c.field.text(reading))
		needle := strings.ToLower(c.textValue)
		found := strings.Contains(haystack, needle)
		if c.negate {
			return !found
		}
		return found
	}
	return numericOperators[c.operator](c.field.numeric(reading), c.numericValue)
}

// matches combines the per-condition results with the rule's logic operator:
// AND requires all conditions true, OR requires at least one.
func (r compiledRule) matches(reading RawReading) bool {
	for _, cond := range r.conditions {
		ok := cond.matches(reading)
		if r.rule.LogicOperator == LogicAnd && !ok {
			return false
		}
		if r.rule.LogicOperator == LogicOr && ok {
			return true
		}
	}
	return r.rule.LogicOperator == LogicAnd
}

// renderMessage replaces every {fieldName} placeholder in the template with
// the corresponding reading value. Placeholders naming unknown fields are
// left verbatim.
func renderMessage(template string, reading RawReading) string {
	message := template
	for name, field := range ruleFields {
		message = strings.ReplaceAll(message, "{"+name+"}", field.text(reading))
	}
	message = strings.ReplaceAll(message, "{city}", reading.City)
	return message
}

func readingSnapshot(reading RawReading) ReadingSnapshot {
	return ReadingSnapshot{
		Temperature: reading.TemperatureC,
		Humidity:    reading.Humidity,
		Pressure:    reading.PressureHpa,
		WindSpeed:   reading.WindSpeedKmh,
		Condition:   reading.WeatherMain,
		ObservedAt:  reading.Timestamp,
	}
}

const defaultAlertCooldownMinutes = 60

// evaluateBuiltinRules applies the fixed configuration-driven thresholds to a
// reading. Severity escalates the further the reading is past the threshold;
// extreme weather is always critical.
func (cfg *apiConfig) evaluateBuiltinRules(reading RawReading) []alertCandidate {
	var candidates []alertCandidate
	snapshot := readingSnapshot(reading)

	if reading.TemperatureC > cfg.highTempThreshold {
		severity := SeverityWarning
		if reading.TemperatureC > cfg.highTempThreshold+5 {
			severity = SeverityCritical
		}
		candidates = append(candidates, alertCandidate{
			event: AlertEvent{
				City:      reading.City,
				AlertType: AlertTypeHighTemp,
				Severity:  severity,
				Message:   fmt.Sprintf("High temperature in %s: %.1f°C exceeds threshold of %.1f°C", reading.City, reading.TemperatureC, cfg.highTempThreshold),
				Threshold: ThresholdSnapshot{
					Parameter: "temperature",
					Operator:  ">",
					Value:     cfg.highTempThreshold,
					Unit:      "°C",
				},
				ActualValue:          snapshot,
				NotificationChannels: []string{"console"},
			},
			cooldownMinutes: defaultAlertCooldownMinutes,
		})
	}

	if float64(reading.Humidity) > cfg.highHumidityThreshold {
		severity := SeverityWarning
		if float64(reading.Humidity) > cfg.highHumidityThreshold+10 {
			severity = SeverityCritical
		}
		candidates = append(candidates, alertCandidate{
			event: AlertEvent{
				City:      reading.City,
				AlertType: AlertTypeHighHumidity,
				Severity:  severity,
				Message:   fmt.Sprintf("High humidity in %s: %d%% exceeds threshold of %.0f%%", reading.City, reading.Humidity, cfg.highHumidityThreshold),
				Threshold: ThresholdSnapshot{
					Parameter: "humidity",
					Operator:  ">",
					Value:     cfg.highHumidityThreshold,
					Unit:      "%",
				},
				ActualValue:          snapshot,
				NotificationChannels: []string{"console"},
			},
			cooldownMinutes: defaultAlertCooldownMinutes,
		})
	}

	for _, condition := range cfg.extremeConditions {
		if strings.EqualFold(reading.WeatherMain, condition) {
			candidates = append(candidates, alertCandidate{
				event: AlertEvent{
					City:      reading.City,
					AlertType: AlertTypeExtremeWeather,
					Severity:  SeverityCritical,
					Message:   fmt.Sprintf("Extreme weather in %s: %s", reading.City, reading.WeatherMain),
					Threshold: ThresholdSnapshot{
						Parameter: "weatherCondition",
						Operator:  "contains",
						Value:     condition,
					},
					ActualValue:          snapshot,
					NotificationChannels: []string{"console"},
				},
				cooldownMinutes: defaultAlertCooldownMinutes,
			})
			break
		}
	}

	return candidates
}

// evaluateCustomRules compiles and evaluates the given rules against a
// reading. Rules that fail to compile are logged and skipped so one bad
// configuration cannot block the rest.
func (cfg *apiConfig) evaluateCustomRules(rules []AlertRule, reading RawReading) []alertCandidate {
	var candidates []alertCandidate
	for _, rule := range rules {
		compiled, err := compileRule(rule)
		if err != nil {
			cfg.logger.Warn("skipping malformed alert rule", "rule", rule.RuleName, "error", err)
			continue
		}
		if !compiled.matches(reading) {
			continue
		}

		first := rule.Conditions[0]
		channels := rule.NotificationChannels
		if len(channels) == 0 {
			channels = []string{"console"}
		}
		candidates = append(candidates, alertCandidate{
			event: AlertEvent{
				City:      reading.City,
				AlertType: AlertTypeCustom,
				Severity:  rule.Severity,
				Message:   renderMessage(rule.MessageTemplate, reading),
				Threshold: ThresholdSnapshot{
					Parameter: first.Parameter,
					Operator:  first.Operator,
					Value:     first.Value,
					Unit:      first.Unit,
				},
				ActualValue:          readingSnapshot(reading),
				NotificationChannels: channels,
				UserID:               rule.UserID,
				RuleID:               rule.ID,
			},
			cooldownMinutes: rule.CooldownMinutes,
		})
	}
	return candidates
}
