package prediction

import (
	"fmt"

	"burnout-workers/internal/models"
)

const (
	aiWeight         = 0.7
	localWeight      = 0.3
	hybridConfidence = 0.92

	fallbackScore = 0.3
)

// Merge blends the local assessment with the remote model's probability. Without
// an AI result the merged assessment is the local one.
func Merge(local models.LocalRiskAssessment, ai *models.ExternalRiskAssessment) models.MergedRiskAssessment {
	factors := append([]string{}, local.ContributingFactors...)

	if ai == nil {
		return models.MergedRiskAssessment{
			Score:               local.Score,
			Level:               local.Level,
			Confidence:          local.Confidence,
			ContributingFactors: factors,
			LocalScore:          local.Score,
			Source:              models.SourceLocalAnalysis,
		}
	}

	raw := ai.BurnoutProbability*aiWeight + local.Score*localWeight
	// The band is picked before display rounding; the 9-place round only drops
	// float noise such as 0.39999999999999997.
	level := LevelFor(roundTo(raw, 9))
	aiScore := ai.BurnoutProbability
	factors = append(factors, fmt.Sprintf("AI model reports %s burnout risk", ai.BurnoutLevel))

	return models.MergedRiskAssessment{
		Score:               roundTo(raw, 2),
		Level:               level,
		Confidence:          hybridConfidence,
		ContributingFactors: factors,
		LocalScore:          local.Score,
		AIScore:             &aiScore,
		Source:              models.SourceHybridAI,
	}
}

// Fallback is returned whenever the pipeline cannot complete. Callers read it as
// "not enough information yet".
func Fallback() models.MergedRiskAssessment {
	return models.MergedRiskAssessment{
		Score:               fallbackScore,
		Level:               models.RiskLevelUnknown,
		Confidence:          0,
		ContributingFactors: []string{},
		Source:              models.SourceFallback,
	}
}
