package main

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Aditya-Takawale/Weather-App/internal/database"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// --- Mocks ---

// mockCache is a mock for the Cache interface.
type mockCache struct {
	getFunc func(ctx context.Context, key string) (string, error)
	setFunc func(ctx context.Context, key string, value any, expiration time.Duration) error
}

func (m *mockCache) Get(ctx context.Context, key string) (string, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, key)
	}
	return "", redis.Nil
}

func (m *mockCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if m.setFunc != nil {
		return m.setFunc(ctx, key, value, expiration)
	}
	return nil
}

// mockNotifier records the alerts it is asked to deliver.
type mockNotifier struct {
	notifyFunc func(ctx context.Context, alert AlertEvent) error
	delivered  []AlertEvent
}

func (m *mockNotifier) Notify(ctx context.Context, alert AlertEvent) error {
	if m.notifyFunc != nil {
		return m.notifyFunc(ctx, alert)
	}
	m.delivered = append(m.delivered, alert)
	return nil
}

// mockQuerier is a comprehensive, safe mock for the dbQuerier interface.
// It fails the test if any unexpected method is called.
type mockQuerier struct {
	t *testing.T

	CountAlertsFunc               func(ctx context.Context, arg database.CountAlertsParams) (int64, error)
	CreateAlertEventFunc          func(ctx context.Context, arg database.CreateAlertEventParams) (database.AlertEvent, error)
	CreateAlertRuleFunc           func(ctx context.Context, arg database.CreateAlertRuleParams) (database.AlertRule, error)
	CreateDashboardSummaryFunc    func(ctx context.Context, arg database.CreateDashboardSummaryParams) (database.DashboardSummary, error)
	CreateRawReadingFunc          func(ctx context.Context, arg database.CreateRawReadingParams) (database.RawReading, error)
	DisableAlertRuleFunc          func(ctx context.Context, id uuid.UUID) error
	GetAlertRuleFunc              func(ctx context.Context, id uuid.UUID) (database.AlertRule, error)
	GetLatestRawReadingFunc       func(ctx context.Context, city string) (database.RawReading, error)
	GetLatestSummaryFunc          func(ctx context.Context, city string) (database.DashboardSummary, error)
	GetRecentActiveAlertFunc      func(ctx context.Context, arg database.GetRecentActiveAlertParams) (database.AlertEvent, error)
	GetSummaryByDayFunc           func(ctx context.Context, arg database.GetSummaryByDayParams) (database.DashboardSummary, error)
	HardDeleteReadingsBeforeFunc  func(ctx context.Context, cutoff time.Time) (int64, error)
	ListActiveAlertsFunc          func(ctx context.Context, arg database.ListActiveAlertsParams) ([]database.AlertEvent, error)
	ListActiveReadingsInRangeFunc func(ctx context.Context, arg database.ListActiveReadingsInRangeParams) ([]database.RawReading, error)
	ListEnabledAlertRulesFunc     func(ctx context.Context, arg database.ListEnabledAlertRulesParams) ([]database.AlertRule, error)
	ListRecentAlertsFunc          func(ctx context.Context, arg database.ListRecentAlertsParams) ([]database.AlertEvent, error)
	MarkAlertNotificationSentFunc func(ctx context.Context, id uuid.UUID) error
	ResolveAlertEventFunc         func(ctx context.Context, arg database.ResolveAlertEventParams) (database.AlertEvent, error)
	SoftDeleteReadingsBeforeFunc  func(ctx context.Context, arg database.SoftDeleteReadingsBeforeParams) (int64, error)
	UpdateAlertRuleFunc           func(ctx context.Context, arg database.UpdateAlertRuleParams) (database.AlertRule, error)
	UpdateDashboardSummaryFunc    func(ctx context.Context, arg database.UpdateDashboardSummaryParams) (database.DashboardSummary, error)
}

func (m *mockQuerier) CountAlerts(ctx context.Context, arg database.CountAlertsParams) (int64, error) {
	if m.CountAlertsFunc == nil {
		m.t.Fatal("unexpected call to CountAlerts")
	}
	return m.CountAlertsFunc(ctx, arg)
}

func (m *mockQuerier) CreateAlertEvent(ctx context.Context, arg database.CreateAlertEventParams) (database.AlertEvent, error) {
	if m.CreateAlertEventFunc == nil {
		m.t.Fatal("unexpected call to CreateAlertEvent")
	}
	return m.CreateAlertEventFunc(ctx, arg)
}

func (m *mockQuerier) CreateAlertRule(ctx context.Context, arg database.CreateAlertRuleParams) (database.AlertRule, error) {
	if m.CreateAlertRuleFunc == nil {
		m.t.Fatal("unexpected call to CreateAlertRule")
	}
	return m.CreateAlertRuleFunc(ctx, arg)
}

func (m *mockQuerier) CreateDashboardSummary(ctx context.Context, arg database.CreateDashboardSummaryParams) (database.DashboardSummary, error) {
	if m.CreateDashboardSummaryFunc == nil {
		m.t.Fatal("unexpected call to CreateDashboardSummary")
	}
	return m.CreateDashboardSummaryFunc(ctx, arg)
}

func (m *mockQuerier) CreateRawReading(ctx context.Context, arg database.CreateRawReadingParams) (database.RawReading, error) {
	if m.CreateRawReadingFunc == nil {
		m.t.Fatal("unexpected call to CreateRawReading")
	}
	return m.CreateRawReadingFunc(ctx, arg)
}

func (m *mockQuerier) DisableAlertRule(ctx context.Context, id uuid.UUID) error {
	if m.DisableAlertRuleFunc == nil {
		m.t.Fatal("unexpected call to DisableAlertRule")
	}
	return m.DisableAlertRuleFunc(ctx, id)
}

func (m *mockQuerier) GetAlertRule(ctx context.Context, id uuid.UUID) (database.AlertRule, error) {
	if m.GetAlertRuleFunc == nil {
		m.t.Fatal("unexpected call to GetAlertRule")
	}
	return m.GetAlertRuleFunc(ctx, id)
}

func (m *mockQuerier) GetLatestRawReading(ctx context.Context, city string) (database.RawReading, error) {
	if m.GetLatestRawReadingFunc == nil {
		m.t.Fatal("unexpected call to GetLatestRawReading")
	}
	return m.GetLatestRawReadingFunc(ctx, city)
}

func (m *mockQuerier) GetLatestSummary(ctx context.Context, city string) (database.DashboardSummary, error) {
	if m.GetLatestSummaryFunc == nil {
		m.t.Fatal("unexpected call to GetLatestSummary")
	}
	return m.GetLatestSummaryFunc(ctx, city)
}

func (m *mockQuerier) GetRecentActiveAlert(ctx context.Context, arg database.GetRecentActiveAlertParams) (database.AlertEvent, error) {
	if m.GetRecentActiveAlertFunc == nil {
		m.t.Fatal("unexpected call to GetRecentActiveAlert")
	}
	return m.GetRecentActiveAlertFunc(ctx, arg)
}

func (m *mockQuerier) GetSummaryByDay(ctx context.Context, arg database.GetSummaryByDayParams) (database.DashboardSummary, error) {
	if m.GetSummaryByDayFunc == nil {
		m.t.Fatal("unexpected call to GetSummaryByDay")
	}
	return m.GetSummaryByDayFunc(ctx, arg)
}

func (m *mockQuerier) HardDeleteReadingsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.HardDeleteReadingsBeforeFunc == nil {
		m.t.Fatal("unexpected call to HardDeleteReadingsBefore")
	}
	return m.HardDeleteReadingsBeforeFunc(ctx, cutoff)
}

func (m *mockQuerier) ListActiveAlerts(ctx context.Context, arg database.ListActiveAlertsParams) ([]database.AlertEvent, error) {
	if m.ListActiveAlertsFunc == nil {
		m.t.Fatal("unexpected call to ListActiveAlerts")
	}
	return m.ListActiveAlertsFunc(ctx, arg)
}

func (m *mockQuerier) ListActiveReadingsInRange(ctx context.Context, arg database.ListActiveReadingsInRangeParams) ([]database.RawReading, error) {
	if m.ListActiveReadingsInRangeFunc == nil {
		m.t.Fatal("unexpected call to ListActiveReadingsInRange")
	}
	return m.ListActiveReadingsInRangeFunc(ctx, arg)
}

func (m *mockQuerier) ListEnabledAlertRules(ctx context.Context, arg database.ListEnabledAlertRulesParams) ([]database.AlertRule, error) {
	if m.ListEnabledAlertRulesFunc == nil {
		m.t.Fatal("unexpected call to ListEnabledAlertRules")
	}
	return m.ListEnabledAlertRulesFunc(ctx, arg)
}

func (m *mockQuerier) ListRecentAlerts(ctx context.Context, arg database.ListRecentAlertsParams) ([]database.AlertEvent, error) {
	if m.ListRecentAlertsFunc == nil {
		m.t.Fatal("unexpected call to ListRecentAlerts")
	}
	return m.ListRecentAlertsFunc(ctx, arg)
}

func (m *mockQuerier) MarkAlertNotificationSent(ctx context.Context, id uuid.UUID) error {
	if m.MarkAlertNotificationSentFunc == nil {
		m.t.Fatal("unexpected call to MarkAlertNotificationSent")
	}
	return m.MarkAlertNotificationSentFunc(ctx, id)
}

func (m *mockQuerier) ResolveAlertEvent(ctx context.Context, arg database.ResolveAlertEventParams) (database.AlertEvent, error) {
	if m.ResolveAlertEventFunc == nil {
		m.t.Fatal("unexpected call to ResolveAlertEvent")
	}
	return m.ResolveAlertEventFunc(ctx, arg)
}

func (m *mockQuerier) SoftDeleteReadingsBefore(ctx context.Context, arg database.SoftDeleteReadingsBeforeParams) (int64, error) {
	if m.SoftDeleteReadingsBeforeFunc == nil {
		m.t.Fatal("unexpected call to SoftDeleteReadingsBefore")
	}
	return m.SoftDeleteReadingsBeforeFunc(ctx, arg)
}

func (m *mockQuerier) UpdateAlertRule(ctx context.Context, arg database.UpdateAlertRuleParams) (database.AlertRule, error) {
	if m.UpdateAlertRuleFunc == nil {
		m.t.Fatal("unexpected call to UpdateAlertRule")
	}
	return m.UpdateAlertRuleFunc(ctx, arg)
}

func (m *mockQuerier) UpdateDashboardSummary(ctx context.Context, arg database.UpdateDashboardSummaryParams) (database.DashboardSummary, error) {
	if m.UpdateDashboardSummaryFunc == nil {
		m.t.Fatal("unexpected call to UpdateDashboardSummary")
	}
	return m.UpdateDashboardSummaryFunc(ctx, arg)
}

// --- Test fixtures ---

// testConfig returns an apiConfig with quiet logging, UTC day boundaries and
// the default alert thresholds.
func testConfig(t *testing.T) (*apiConfig, *mockQuerier) {
	t.Helper()
	querier := &mockQuerier{t: t}
	cfg := &apiConfig{
		dbQueries:             querier,
		cache:                 &mockCache{},
		notifiers:             map[string]Notifier{},
		city:                  "Pune",
		countryCode:           "IN",
		highTempThreshold:     35,
		highHumidityThreshold: 80,
		extremeConditions:     []string{"Storm", "Thunderstorm", "Hurricane", "Tornado"},
		retentionDays:         2,
		timezone:              time.UTC,
		logger:                slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return cfg, querier
}

// testReading builds a reading with sensible defaults for the given instant.
func testReading(city string, ts time.Time, tempC float64, humidity int32, condition string) RawReading {
	return RawReading{
		ID:           uuid.New(),
		City:         city,
		Timestamp:    ts,
		WeatherMain:  condition,
		TemperatureC: tempC,
		Humidity:     humidity,
		PressureHpa:  1010,
		WindSpeedKmh: 12,
		CreatedAt:    ts,
	}
}

func dbReadings(readings []RawReading) []database.RawReading {
	out := make([]database.RawReading, len(readings))
	for i, r := range readings {
		params := rawReadingToCreateRawReadingParams(r)
		out[i] = database.RawReading{
			ID:           r.ID,
			City:         params.City,
			Timestamp:    params.Timestamp,
			WeatherID:    params.WeatherID,
			WeatherMain:  params.WeatherMain,
			TemperatureC: params.TemperatureC,
			PressureHpa:  params.PressureHpa,
			Humidity:     params.Humidity,
			WindSpeedKmh: params.WindSpeedKmh,
			CreatedAt:    r.CreatedAt,
		}
	}
	return out
}
