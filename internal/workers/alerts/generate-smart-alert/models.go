// internal/workers/alerts/generate-smart-alert/models.go
package generatesmartalert

import (
	"burnout-workers/internal/alerts"
	"burnout-workers/internal/models"
)

type Input struct {
	SubjectID string `json:"subjectId"`
	AuthToken string `json:"authToken,omitempty"`
}

type Output struct {
	AlertRaised bool                 `json:"alertRaised"`
	Severity    models.AlertSeverity `json:"severity,omitempty"`
	SmartAlert  *alerts.SmartAlert   `json:"smartAlert"`
}
