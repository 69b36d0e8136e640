// Package repository reads relational workplace telemetry.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	apperrors "burnout-workers/internal/common/errors"
	"burnout-workers/internal/common/logger"
	"burnout-workers/internal/models"
)

const latestWorkMetricsQuery = `
	SELECT overtime_hours, workload_score, sleep_score, weekly_meetings,
	       focus_time, absence_days, nps_score, intervention_acceptance_rate
	FROM daily_employee_metrics
	WHERE id_employee = $1
	ORDER BY id_snapshot DESC
	LIMIT 1`

// WorkMetricsRepository implements the work-metrics source port.
type WorkMetricsRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewWorkMetricsRepository(db *sql.DB, log logger.Logger) *WorkMetricsRepository {
	return &WorkMetricsRepository{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "work-metrics-repository"}),
	}
}

// LatestWorkMetrics returns the newest snapshot for the subject, or nil when none
// exists. NULL columns stay nil.
func (r *WorkMetricsRepository) LatestWorkMetrics(ctx context.Context, subjectID string) (*models.WorkMetrics, error) {
	start := time.Now()

	var overtime, workload, sleep, meetings, focus, absence, nps, acceptance sql.NullFloat64
	err := r.db.QueryRowContext(ctx, latestWorkMetricsQuery, subjectID).Scan(
		&overtime, &workload, &sleep, &meetings,
		&focus, &absence, &nps, &acceptance,
	)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Debug("No work metrics snapshot", map[string]interface{}{"subjectId": subjectID})
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewTransientQueryFailureError("postgres", err)
	}

	r.logger.Debug("Loaded work metrics", map[string]interface{}{
		"subjectId":       subjectID,
		"queryDurationMs": time.Since(start).Milliseconds(),
	})

	return &models.WorkMetrics{
		OvertimeHours:              nullable(overtime),
		WorkloadScore:              nullable(workload),
		SleepScore:                 nullable(sleep),
		WeeklyMeetings:             nullable(meetings),
		FocusTime:                  nullable(focus),
		AbsenceDays:                nullable(absence),
		NPSScore:                   nullable(nps),
		InterventionAcceptanceRate: nullable(acceptance),
	}, nil
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
