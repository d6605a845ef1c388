package database

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const summaryColumns = `id, city, summary_date, computed_at, current, today, hourly_trends, yesterday, stats`

const createDashboardSummary = `
INSERT INTO dashboard_summaries (
	city, summary_date, computed_at, current, today, hourly_trends, yesterday, stats
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + summaryColumns

type CreateDashboardSummaryParams struct {
	City         string
	SummaryDate  time.Time
	ComputedAt   time.Time
	Current      []byte
	Today        []byte
	HourlyTrends []byte
	Yesterday    []byte
	Stats        []byte
}

func (q *Queries) CreateDashboardSummary(ctx context.Context, arg CreateDashboardSummaryParams) (DashboardSummary, error) {
	row := q.db.QueryRowContext(ctx, createDashboardSummary,
		arg.City,
		arg.SummaryDate,
		arg.ComputedAt,
		arg.Current,
		arg.Today,
		arg.HourlyTrends,
		arg.Yesterday,
		arg.Stats,
	)
	var i DashboardSummary
	err := scanDashboardSummary(row, &i)
	return i, err
}

const updateDashboardSummary = `
UPDATE dashboard_summaries
SET computed_at = $2, current = $3, today = $4, hourly_trends = $5, yesterday = $6, stats = $7
WHERE id = $1
RETURNING ` + summaryColumns

type UpdateDashboardSummaryParams struct {
	ID           uuid.UUID
	ComputedAt   time.Time
	Current      []byte
	Today        []byte
	HourlyTrends []byte
	Yesterday    []byte
	Stats        []byte
}

func (q *Queries) UpdateDashboardSummary(ctx context.Context, arg UpdateDashboardSummaryParams) (DashboardSummary, error) {
	row := q.db.QueryRowContext(ctx, updateDashboardSummary,
		arg.ID,
		arg.ComputedAt,
		arg.Current,
		arg.Today,
		arg.HourlyTrends,
		arg.Yesterday,
		arg.Stats,
	)
	var i DashboardSummary
	err := scanDashboardSummary(row, &i)
	return i, err
}

const getSummaryByDay = `
SELECT ` + summaryColumns + `
FROM dashboard_summaries
WHERE city = $1 AND summary_date = $2
LIMIT 1
`

type GetSummaryByDayParams struct {
	City        string
	SummaryDate time.Time
}

func (q *Queries) GetSummaryByDay(ctx context.Context, arg GetSummaryByDayParams) (DashboardSummary, error) {
	row := q.db.QueryRowContext(ctx, getSummaryByDay, arg.City, arg.SummaryDate)
	var i DashboardSummary
	err := scanDashboardSummary(row, &i)
	return i, err
}

const getLatestSummary = `
SELECT ` + summaryColumns + `
FROM dashboard_summaries
WHERE city = $1
ORDER BY computed_at DESC
LIMIT 1
`

func (q *Queries) GetLatestSummary(ctx context.Context, city string) (DashboardSummary, error) {
	row := q.db.QueryRowContext(ctx, getLatestSummary, city)
	var i DashboardSummary
	err := scanDashboardSummary(row, &i)
	return i, err
}

func scanDashboardSummary(row rowScanner, i *DashboardSummary) error {
	return row.Scan(
		&i.ID,
		&i.City,
		&i.SummaryDate,
		&i.ComputedAt,
		&i.Current,
		&i.Today,
		&i.HourlyTrends,
		&i.Yesterday,
		&i.Stats,
	)
}
