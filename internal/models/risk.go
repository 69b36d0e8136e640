// internal/models/risk.go
package models

import "encoding/json"

type RiskLevel string

const (
	RiskLevelLow     RiskLevel = "low"
	RiskLevelMedium  RiskLevel = "medium"
	RiskLevelHigh    RiskLevel = "high"
	RiskLevelUnknown RiskLevel = "unknown"
)

// Prediction sources. The source is the only caller-visible signal of degraded operation.
const (
	SourceLocalAnalysis = "local_analysis"
	SourceHybridAI      = "hybrid_ai"
	SourceFallback      = "fallback"
)

type LocalRiskAssessment struct {
	Score               float64   `json:"score" xml:"score"`
	Level               RiskLevel `json:"level" xml:"level"`
	Confidence          float64   `json:"confidence" xml:"confidence"`
	ContributingFactors []string  `json:"contributing_factors" xml:"contributing_factors>factor"`
}

// ExternalRiskAssessment is what the remote burnout model returned. Interventions is
// passed through untouched.
type ExternalRiskAssessment struct {
	BurnoutProbability float64         `json:"burnout_probability" xml:"burnout_probability"`
	BurnoutLevel       string          `json:"burnout_level" xml:"burnout_level"`
	RiskCategory       string          `json:"risk_category" xml:"risk_category"`
	Interventions      json.RawMessage `json:"interventions,omitempty" xml:"interventions,omitempty"`
	// UsedDefaults names the request fields that were sent as placeholders because
	// the subject had no measurement for them.
	UsedDefaults []string `json:"used_defaults,omitempty" xml:"used_defaults>field,omitempty"`
}

type MergedRiskAssessment struct {
	Score               float64   `json:"score" xml:"score"`
	Level               RiskLevel `json:"level" xml:"level"`
	Confidence          float64   `json:"confidence" xml:"confidence"`
	ContributingFactors []string  `json:"contributing_factors" xml:"contributing_factors>factor"`
	LocalScore          float64   `json:"local_score" xml:"local_score"`
	AIScore             *float64  `json:"ai_score" xml:"ai_score,omitempty"`
	Source              string    `json:"source" xml:"source"`
}
