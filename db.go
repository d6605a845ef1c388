package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/Aditya-Takawale/Weather-App/internal/database"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

// dbClientFactory abstracts sql.Open so tests can substitute a mock database.
type dbClientFactory func(driverName, dataSourceName string) (*sql.DB, error)

func openSQLDB(driverName, dataSourceName string) (*sql.DB, error) {
	return sql.Open(driverName, dataSourceName)
}

// ConnectDB establishes a connection to the PostgreSQL database using the
// connection string in the apiConfig struct. It initializes the dbQueries
// field with the Queries struct from internal/database, which provides
// type-safe methods for all database operations. This method should be called
// during application startup to ensure that the database is reachable before
// handling any requests.
func (cfg *apiConfig) ConnectDB() error {
	db, err := cfg.newDBClientFunc("postgres", cfg.dbURL)
	if err != nil {
		cfg.logger.Error("couldn't prepare connection to database", "error", err)
		return err
	}
	if err := db.Ping(); err != nil {
		cfg.logger.Error("couldn't connect to database", "error", err)
		return err
	}
	cfg.dbQueries = database.New(db)
	cfg.logger.Info("connected to database")
	return nil
}

// ConnectCache connects to Redis and wires the cache used by the summary
// serve path.
func (cfg *apiConfig) ConnectCache(ctx context.Context) error {
	opt, err := redis.ParseURL(cfg.redisURL)
	if err != nil {
		cfg.logger.Error("could not parse Redis URL", "error", err)
		return err
	}
	client := redis.NewClient(opt)
	if _, err := client.Ping(ctx).Result(); err != nil {
		cfg.logger.Error("could not connect to Redis", "error", err)
		return err
	}
	cfg.cache = NewRedisCache(client)
	cfg.logger.Info("connected to Redis")
	return nil
}

// dbQuerier is an interface that abstracts all database operations.
// It is implemented by the Queries struct in internal/database, allowing for
// dependency injection and easy mocking in tests. This decouples business
// logic from the data layer.
type dbQuerier interface {
	CountAlerts(ctx context.Context, arg database.CountAlertsParams) (int64, error)
	CreateAlertEvent(ctx context.Context, arg database.CreateAlertEventParams) (database.AlertEvent, error)
	CreateAlertRule(ctx context.Context, arg database.CreateAlertRuleParams) (database.AlertRule, error)
	CreateDashboardSummary(ctx context.Context, arg database.CreateDashboardSummaryParams) (database.DashboardSummary, error)
	CreateRawReading(ctx context.Context, arg database.CreateRawReadingParams) (database.RawReading, error)
	DisableAlertRule(ctx context.Context, id uuid.UUID) error
	GetAlertRule(ctx context.Context, id uuid.UUID) (database.AlertRule, error)
	GetLatestRawReading(ctx context.Context, city string) (database.RawReading, error)
	GetLatestSummary(ctx context.Context, city string) (database.DashboardSummary, error)
	GetRecentActiveAlert(ctx context.Context, arg database.GetRecentActiveAlertParams) (database.AlertEvent, error)
	GetSummaryByDay(ctx context.Context, arg database.GetSummaryByDayParams) (database.DashboardSummary, error)
	HardDeleteReadingsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	ListActiveAlerts(ctx context.Context, arg database.ListActiveAlertsParams) ([]database.AlertEvent, error)
	ListActiveReadingsInRange(ctx context.Context, arg database.ListActiveReadingsInRangeParams) ([]database.RawReading, error)
	ListEnabledAlertRules(ctx context.Context, arg database.ListEnabledAlertRulesParams) ([]database.AlertRule, error)
	ListRecentAlerts(ctx context.Context, arg database.ListRecentAlertsParams) ([]database.AlertEvent, error)
	MarkAlertNotificationSent(ctx context.Context, id uuid.UUID) error
	ResolveAlertEvent(ctx context.Context, arg database.ResolveAlertEventParams) (database.AlertEvent, error)
	SoftDeleteReadingsBefore(ctx context.Context, arg database.SoftDeleteReadingsBeforeParams) (int64, error)
	UpdateAlertRule(ctx context.Context, arg database.UpdateAlertRuleParams) (database.AlertRule, error)
	UpdateDashboardSummary(ctx context.Context, arg database.UpdateDashboardSummaryParams) (database.DashboardSummary, error)
}
