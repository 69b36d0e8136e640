// internal/workers/alerts/evaluate-metric-alert/models.go
package evaluatemetricalert

import "burnout-workers/internal/models"

type Input struct {
	SubjectID string   `json:"subjectId"`
	Metric    string   `json:"metric"`
	Value     *float64 `json:"value"`
}

type Output struct {
	AlertRaised  bool                   `json:"alertRaised"`
	Alert        *models.ThresholdAlert `json:"alert,omitempty"`
	ActiveAlerts int                    `json:"activeAlerts"`
}
