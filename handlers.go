package main

import (
	"net/http"

	"github.com/Aditya-Takawale/Weather-App/internal/database"
	"github.com/google/uuid"
)

// This file contains the main HTTP handlers for the application. Each handler
// is responsible for validating the request, calling into the pipeline
// (summary cache, alert log, rule store, scheduler), and writing the final
// JSON response. "No data yet" conditions respond with 404 and an
// explanatory message rather than a generic failure.

// @Summary      Get dashboard summary
// @Description  Retrieves the latest pre-computed dashboard summary for a city.
// @Description  With refresh=true the summary is recomputed before returning.
// @Tags         dashboard
// @Produce      json
// @Param        city    query  string  false  "City name (defaults to the configured city)"
// @Param        refresh query  bool    false  "Force recomputation"
// @Success      200  {object}  DashboardSummary
// @Failure      404  {object}  ErrorResponse "No weather data recorded yet"
// @Router       /api/dashboard/summary [get]
func (cfg *apiConfig) handlerDashboardSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	city := cfg.cityFromRequest(r)
	refresh := r.URL.Query().Get("refresh") == "true"
	cfg.logger.Debug("dashboard summary request", "city", city, "refresh", refresh)

	summary, err := cfg.getDashboardSummary(ctx, city, refresh)
	if err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Error getting dashboard summary", err)
		return
	}
	if summary == nil {
		cfg.respondWithError(w, http.StatusNotFound, "No weather data recorded yet for "+city, nil)
		return
	}

	cfg.respondWithJSON(w, http.StatusOK, summary)
}

// @Summary      Get hourly trends
// @Description  Computes the hourly trend buckets for the last 48 hours of readings.
// @Tags         dashboard
// @Produce      json
// @Param        city query  string  false  "City name (defaults to the configured city)"
// @Success      200  {array}   HourlyBucket
// @Router       /api/dashboard/trends [get]
func (cfg *apiConfig) handlerDashboardTrends(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	city := cfg.cityFromRequest(r)

	trends, err := cfg.computeTrends(ctx, city)
	if err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Error computing hourly trends", err)
		return
	}

	cfg.respondWithJSON(w, http.StatusOK, trends)
}

// @Summary      List active alerts
// @Tags         alerts
// @Produce      json
// @Param        city  query  string  false  "City name (defaults to the configured city)"
// @Param        limit query  int     false  "Maximum number of alerts to return"
// @Success      200  {array}  AlertEvent
// @Router       /api/alerts/active [get]
func (cfg *apiConfig) handlerActiveAlerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	city := cfg.cityFromRequest(r)
	limit := parseLimit(r, 50)

	dbAlerts, err := cfg.dbQueries.ListActiveAlerts(ctx, database.ListActiveAlertsParams{
		City:  city,
		Limit: limit,
	})
	if err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Error listing active alerts", err)
		return
	}

	alerts, err := convertAlertEvents(dbAlerts)
	if err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Error decoding alerts", err)
		return
	}
	cfg.respondWithJSON(w, http.StatusOK, alerts)
}

// @Summary      Get alert history
// @Description  Paginated alert history, filterable by severity and alert type.
// @Tags         alerts
// @Produce      json
// @Param        city      query  string  false  "City name (defaults to the configured city)"
// @Param        page      query  int     false  "Page number, starting at 1"
// @Param        page_size query  int     false  "Page size (max 100)"
// @Param        severity  query  string  false  "Filter by severity"
// @Param        type      query  string  false  "Filter by alert type"
// @Success      200  {object}  AlertHistoryResponse
// @Router       /api/alerts/history [get]
func (cfg *apiConfig) handlerAlertHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	city := cfg.cityFromRequest(r)

	page, pageSize := parsePagination(r)
	severity, alertType, err := parseAlertFilters(r)
	if err != nil {
		cfg.respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	dbAlerts, err := cfg.dbQueries.ListRecentAlerts(ctx, database.ListRecentAlertsParams{
		City:      city,
		Severity:  severity,
		AlertType: alertType,
		Limit:     int32(pageSize),
		Offset:    int32((page - 1) * pageSize),
	})
	if err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Error listing alert history", err)
		return
	}
	total, err := cfg.dbQueries.CountAlerts(ctx, database.CountAlertsParams{
		City:      city,
		Severity:  severity,
		AlertType: alertType,
	})
	if err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Error counting alerts", err)
		return
	}

	alerts, err := convertAlertEvents(dbAlerts)
	if err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Error decoding alerts", err)
		return
	}

	totalPages := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		totalPages++
	}
	cfg.respondWithJSON(w, http.StatusOK, AlertHistoryResponse{
		Alerts:     alerts,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: totalPages,
	})
}

// @Summary      Resolve an alert
// @Description  Marks an alert inactive. Alerts never expire on their own.
// @Tags         alerts
// @Produce      json
// @Param        id path  string  true  "Alert ID"
// @Success      200  {object}  AlertEvent
// @Router       /api/alerts/{id}/resolve [post]
func (cfg *apiConfig) handlerResolveAlert(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		cfg.respondWithError(w, http.StatusBadRequest, "Invalid alert ID", err)
		return
	}

	alert, err := cfg.resolveAlert(r.Context(), id)
	if err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Error resolving alert", err)
		return
	}
	cfg.respondWithJSON(w, http.StatusOK, alert)
}

// @Summary      List alert rules
// @Tags         rules
// @Produce      json
// @Param        city query  string  false  "City name (defaults to the configured city)"
// @Success      200  {array}  AlertRule
// @Router       /api/rules [get]
func (cfg *apiConfig) handlerListRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	city := cfg.cityFromRequest(r)

	dbRules, err := cfg.dbQueries.ListEnabledAlertRules(ctx, database.ListEnabledAlertRulesParams{City: city})
	if err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Error listing alert rules", err)
		return
	}

	rules := make([]AlertRule, 0, len(dbRules))
	for _, dbRule := range dbRules {
		rule, convErr := databaseAlertRuleToAlertRule(dbRule)
		if convErr != nil {
			cfg.respondWithError(w, http.StatusInternalServerError, "Error decoding alert rules", convErr)
			return
		}
		rules = append(rules, rule)
	}
	cfg.respondWithJSON(w, http.StatusOK, rules)
}

// @Summary      Create an alert rule
// @Description  Validates and stores a custom alert rule. Malformed conditions
// @Description  are rejected with a descriptive reason.
// @Tags         rules
// @Accept       json
// @Produce      json
// @Success      201  {object}  AlertRule
// @Failure      400  {object}  ErrorResponse "Invalid rule configuration"
// @Router       /api/rules [post]
func (cfg *apiConfig) handlerCreateRule(w http.ResponseWriter, r *http.Request) {
	rule, err := cfg.ruleFromRequest(r)
	if err != nil {
		cfg.respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	params, err := alertRuleToCreateAlertRuleParams(rule)
	if err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Error encoding rule", err)
		return
	}
	created, err := cfg.dbQueries.CreateAlertRule(r.Context(), params)
	if err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Error creating rule", err)
		return
	}

	result, err := databaseAlertRuleToAlertRule(created)
	if err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Error decoding created rule", err)
		return
	}
	cfg.respondWithJSON(w, http.StatusCreated, result)
}

// @Summary      Update an alert rule
// @Tags         rules
// @Accept       json
// @Produce      json
// @Param        id path  string  true  "Rule ID"
// @Success      200  {object}  AlertRule
// @Router       /api/rules/{id} [put]
func (cfg *apiConfig) handlerUpdateRule(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		cfg.respondWithError(w, http.StatusBadRequest, "Invalid rule ID", err)
		return
	}

	rule, err := cfg.ruleFromRequest(r)
	if err != nil {
		cfg.respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	params, err := alertRuleToUpdateAlertRuleParams(rule, id)
	if err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Error encoding rule", err)
		return
	}
	updated, err := cfg.dbQueries.UpdateAlertRule(r.Context(), params)
	if err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Error updating rule", err)
		return
	}

	result, err := databaseAlertRuleToAlertRule(updated)
	if err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Error decoding updated rule", err)
		return
	}
	cfg.respondWithJSON(w, http.StatusOK, result)
}

// @Summary      Disable an alert rule
// @Description  Rules are soft-disabled rather than deleted, so their history
// @Description  stays attributable.
// @Tags         rules
// @Param        id path  string  true  "Rule ID"
// @Success      204  "Rule disabled"
// @Router       /api/rules/{id} [delete]
func (cfg *apiConfig) handlerDisableRule(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		cfg.respondWithError(w, http.StatusBadRequest, "Invalid rule ID", err)
		return
	}

	if err := cfg.dbQueries.DisableAlertRule(r.Context(), id); err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Error disabling rule", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary      Run a scheduler job
// @Description  Runs one of the four pipeline jobs immediately and returns its
// @Description  structured result. The per-job run guard still applies.
// @Tags         jobs
// @Produce      json
// @Param        name path  string  true  "Job name (fetch, aggregate, alert-check, cleanup)"
// @Success      200  {object}  JobResult
// @Router       /api/jobs/{name}/run [post]
func (cfg *apiConfig) handlerRunJob(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	result, err := cfg.scheduler.RunJob(r.Context(), name)
	if err != nil {
		cfg.respondWithError(w, http.StatusNotFound, err.Error(), nil)
		return
	}
	cfg.respondWithJSON(w, http.StatusOK, result)
}

// @Summary      Get scheduler status
// @Tags         jobs
// @Produce      json
// @Success      200  {array}  JobStatus
// @Router       /api/jobs/status [get]
func (cfg *apiConfig) handlerJobStatus(w http.ResponseWriter, r *http.Request) {
	cfg.respondWithJSON(w, http.StatusOK, cfg.scheduler.Status())
}
