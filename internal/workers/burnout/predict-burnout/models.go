// internal/workers/burnout/predict-burnout/models.go
package predictburnout

import "burnout-workers/internal/models"

type Input struct {
	SubjectID     string `json:"subjectId"`
	LookbackHours int    `json:"lookbackHours,omitempty"`
	AuthToken     string `json:"authToken,omitempty"`
}

// Output is flattened for gateway conditions; Prediction carries the full payload.
type Output struct {
	RiskLevel          models.RiskLevel         `json:"riskLevel"`
	BurnoutProbability float64                  `json:"burnoutProbability"`
	Source             string                   `json:"source"`
	RequiresAction     bool                     `json:"requiresAction"`
	Prediction         models.PredictionPayload `json:"prediction"`
}
