package main

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type apiConfig struct {
	dbQueries             dbQuerier
	cache                 Cache
	notifiers             map[string]Notifier
	scheduler             *Scheduler
	dbURL                 string
	redisURL              string
	owmWeatherURL         string
	owmKey                string
	city                  string
	countryCode           string
	httpClient            *http.Client
	cronFetch             string
	cronAggregate         string
	cronAlertCheck        string
	cronCleanup           string
	highTempThreshold     float64
	highHumidityThreshold float64
	extremeConditions     []string
	retentionDays         int
	timezone              *time.Location
	kafkaBrokers          []string
	kafkaAlertTopic       string
	port                  string
	devMode               bool
	logger                *slog.Logger
	newDBClientFunc       dbClientFactory
}

// getRequiredEnv retrieves an environment variable by key, and fatals if it's not set.
func getRequiredEnv(key string, logger *slog.Logger) string {
	val, ok := os.LookupEnv(key)
	if !ok {
		logger.Error("environment variable must be set", "key", key)
		os.Exit(1)
	}
	return val
}

// getEnv retrieves an environment variable by key, with a fallback value.
func getEnv(key, fallback string, logger *slog.Logger) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	logger.Info("environment variable not set, using fallback", "key", key, "fallback", fallback)
	return fallback
}

// getEnvAsInt retrieves an environment variable as an integer, with a fallback value.
func getEnvAsInt(key string, fallback int, logger *slog.Logger) int {
	valStr, ok := os.LookupEnv(key)
	if !ok {
		logger.Info("environment variable not set, using fallback", "key", key, "fallback", fallback)
		return fallback
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		logger.Warn("invalid integer value for environment variable, using fallback", "key", key, "value", valStr, "error", err)
		return fallback
	}
	return val
}

// getEnvAsFloat retrieves an environment variable as a float, with a fallback value.
func getEnvAsFloat(key string, fallback float64, logger *slog.Logger) float64 {
	valStr, ok := os.LookupEnv(key)
	if !ok {
		logger.Info("environment variable not set, using fallback", "key", key, "fallback", fallback)
		return fallback
	}
	val, err := strconv.ParseFloat(valStr, 64)
	if err != nil {
		logger.Warn("invalid float value for environment variable, using fallback", "key", key, "value", valStr, "error", err)
		return fallback
	}
	return val
}

// getEnvAsList retrieves a comma-separated environment variable as a slice,
// with a fallback value. Entries are trimmed; empty entries are dropped.
func getEnvAsList(key string, fallback []string, logger *slog.Logger) []string {
	valStr, ok := os.LookupEnv(key)
	if !ok {
		logger.Info("environment variable not set, using fallback", "key", key, "fallback", strings.Join(fallback, ","))
		return fallback
	}
	var vals []string
	for _, v := range strings.Split(valStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			vals = append(vals, v)
		}
	}
	return vals
}

func config() *apiConfig {
	devModeStr := os.Getenv("DEV_MODE")
	devMode, err := strconv.ParseBool(devModeStr)
	if err != nil {
		devMode = false
	}

	var logger *slog.Logger
	if devMode {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	} else {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, relying on environment variables")
	}

	tzName := getEnv("SCHEDULE_TZ", "Asia/Kolkata", logger)
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		logger.Error("could not load schedule timezone", "timezone", tzName, "error", err)
		os.Exit(1)
	}

	retentionDays := getEnvAsInt("DATA_RETENTION_DAYS", 2, logger)
	if retentionDays < 1 {
		logger.Warn("retention must be at least one day, using 1", "value", retentionDays)
		retentionDays = 1
	}

	cfg := apiConfig{
		dbURL:                 getRequiredEnv("DB_URL", logger),
		redisURL:              getRequiredEnv("REDIS_URL", logger),
		owmWeatherURL:         getRequiredEnv("OWM_WEATHER_URL", logger),
		owmKey:                getRequiredEnv("OWM_KEY", logger),
		city:                  getEnv("WEATHER_CITY", "Pune", logger),
		countryCode:           getEnv("WEATHER_COUNTRY_CODE", "IN", logger),
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: &metricsTransport{wrapped: http.DefaultTransport},
		},
		cronFetch:             getEnv("CRON_DATA_FETCH", "*/30 * * * *", logger),
		cronAggregate:         getEnv("CRON_AGGREGATE", "0 * * * *", logger),
		cronAlertCheck:        getEnv("CRON_ALERT_CHECK", "*/15 * * * *", logger),
		cronCleanup:           getEnv("CRON_DATA_CLEANUP", "0 2 * * *", logger),
		highTempThreshold:     getEnvAsFloat("ALERT_HIGH_TEMP_THRESHOLD", 35, logger),
		highHumidityThreshold: getEnvAsFloat("ALERT_HIGH_HUMIDITY_THRESHOLD", 80, logger),
		extremeConditions:     getEnvAsList("ALERT_EXTREME_WEATHER", []string{"Storm", "Thunderstorm", "Hurricane", "Tornado"}, logger),
		retentionDays:         retentionDays,
		timezone:              tz,
		kafkaBrokers:          getEnvAsList("KAFKA_BROKERS", nil, logger),
		kafkaAlertTopic:       getEnv("KAFKA_ALERT_TOPIC", "weather-alerts", logger),
		port:                  getEnv("PORT", "8080", logger),
		devMode:               devMode,
		logger:                logger,
		newDBClientFunc:       openSQLDB,
	}

	cfg.notifiers = map[string]Notifier{
		"console": NewConsoleNotifier(logger),
	}
	if len(cfg.kafkaBrokers) > 0 {
		cfg.notifiers["kafka"] = NewKafkaNotifier(cfg.kafkaBrokers, cfg.kafkaAlertTopic, logger)
	}

	return &cfg
}
