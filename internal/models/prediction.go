// internal/models/prediction.go
package models

import "time"

// PredictionRequest identifies one pipeline run. A zero Lookback means the
// full-prediction window. AuthToken is passed through to the remote model and may
// be empty.
type PredictionRequest struct {
	SubjectID string
	Lookback  time.Duration
	AuthToken string
}

// Data quality labels reported in the prediction summary.
const (
	DataQualityComplete     = "complete"
	DataQualityPartial      = "partial"
	DataQualityInsufficient = "insufficient_biometrics"
	DataQualityUnavailable  = "unavailable"
)

// PredictionResult is everything one pipeline run produced for a subject.
type PredictionResult struct {
	SubjectID     string
	Merged        MergedRiskAssessment
	Summary       *BiometricAnalysisSummary
	WorkMetrics   *WorkMetrics
	Local         *LocalRiskAssessment
	AI            *ExternalRiskAssessment
	Alert         *Alert
	Interventions []Intervention
	// UsedDefaults lists the ML payload fields that were filled with placeholder values.
	UsedDefaults []string
	GeneratedAt  time.Time
}

type PredictionView struct {
	BurnoutProbability float64   `json:"burnout_probability" xml:"burnout_probability"`
	RiskLevel          RiskLevel `json:"risk_level" xml:"risk_level"`
	Confidence         float64   `json:"confidence" xml:"confidence"`
	Source             string    `json:"source" xml:"source"`
	LastUpdated        time.Time `json:"last_updated" xml:"last_updated"`
}

type PredictionSummary struct {
	RiskLevel         RiskLevel `json:"risk_level" xml:"risk_level"`
	RequiresAction    bool      `json:"requires_action" xml:"requires_action"`
	InterventionCount int       `json:"intervention_count" xml:"intervention_count"`
	DataQuality       string    `json:"data_quality" xml:"data_quality"`
	UsedDefaults      []string  `json:"used_defaults" xml:"used_defaults>field"`
}

// PredictionPayload is the caller-facing shape of a prediction.
type PredictionPayload struct {
	Prediction        PredictionView            `json:"prediction" xml:"prediction"`
	BiometricAnalysis *BiometricAnalysisSummary `json:"biometric_analysis" xml:"biometric_analysis,omitempty"`
	WorkMetrics       *WorkMetrics              `json:"work_metrics" xml:"work_metrics,omitempty"`
	LocalRisk         *LocalRiskAssessment      `json:"local_risk" xml:"local_risk,omitempty"`
	AIAnalysis        *ExternalRiskAssessment   `json:"ai_analysis,omitempty" xml:"ai_analysis,omitempty"`
	Alert             *Alert                    `json:"alert,omitempty" xml:"alert,omitempty"`
	Interventions     []Intervention            `json:"interventions" xml:"interventions>intervention"`
	Summary           PredictionSummary         `json:"summary" xml:"summary"`
}

// Payload flattens the result into the caller-facing shape.
func (r *PredictionResult) Payload() PredictionPayload {
	interventions := r.Interventions
	if interventions == nil {
		interventions = []Intervention{}
	}
	usedDefaults := r.UsedDefaults
	if usedDefaults == nil {
		usedDefaults = []string{}
	}

	return PredictionPayload{
		Prediction: PredictionView{
			BurnoutProbability: r.Merged.Score,
			RiskLevel:          r.Merged.Level,
			Confidence:         r.Merged.Confidence,
			Source:             r.Merged.Source,
			LastUpdated:        r.GeneratedAt,
		},
		BiometricAnalysis: r.Summary,
		WorkMetrics:       r.WorkMetrics,
		LocalRisk:         r.Local,
		AIAnalysis:        r.AI,
		Alert:             r.Alert,
		Interventions:     interventions,
		Summary: PredictionSummary{
			RiskLevel:         r.Merged.Level,
			RequiresAction:    r.Alert != nil && r.Alert.RequiresAction,
			InterventionCount: len(interventions),
			DataQuality:       r.dataQuality(),
			UsedDefaults:      usedDefaults,
		},
	}
}

func (r *PredictionResult) dataQuality() string {
	switch {
	case r.Merged.Source == SourceFallback:
		return DataQualityUnavailable
	case r.Summary == nil:
		return DataQualityInsufficient
	case len(r.UsedDefaults) > 0 || r.WorkMetrics == nil:
		return DataQualityPartial
	default:
		return DataQualityComplete
	}
}
