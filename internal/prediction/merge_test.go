package prediction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"burnout-workers/internal/models"
)

func TestMerge_WithoutAIKeepsLocal(t *testing.T) {
	local := models.LocalRiskAssessment{
		Score:               0.55,
		Level:               models.RiskLevelMedium,
		Confidence:          0.85,
		ContributingFactors: []string{"elevated heart rate"},
	}

	merged := Merge(local, nil)

	assert.Equal(t, 0.55, merged.Score)
	assert.Equal(t, models.RiskLevelMedium, merged.Level)
	assert.Equal(t, 0.85, merged.Confidence)
	assert.Equal(t, []string{"elevated heart rate"}, merged.ContributingFactors)
	assert.Equal(t, 0.55, merged.LocalScore)
	assert.Nil(t, merged.AIScore)
	assert.Equal(t, models.SourceLocalAnalysis, merged.Source)
}

func TestMerge_Hybrid(t *testing.T) {
	local := models.LocalRiskAssessment{
		Score:               0.4,
		Level:               models.RiskLevelMedium,
		Confidence:          0.85,
		ContributingFactors: []string{"moderate overtime: 12h"},
	}
	ai := &models.ExternalRiskAssessment{BurnoutProbability: 0.9, BurnoutLevel: "high"}

	merged := Merge(local, ai)

	assert.Equal(t, 0.75, merged.Score)
	assert.Equal(t, models.RiskLevelHigh, merged.Level)
	assert.Equal(t, 0.92, merged.Confidence)
	assert.Equal(t, 0.4, merged.LocalScore)
	require.NotNil(t, merged.AIScore)
	assert.Equal(t, 0.9, *merged.AIScore)
	assert.Equal(t, models.SourceHybridAI, merged.Source)
	assert.Equal(t, []string{"moderate overtime: 12h", "AI model reports high burnout risk"}, merged.ContributingFactors)
	assert.Equal(t, []string{"moderate overtime: 12h"}, local.ContributingFactors, "local factors must not be mutated")
}

func TestMerge_LevelUsesUnroundedScore(t *testing.T) {
	tests := []struct {
		name      string
		local     float64
		ai        float64
		wantScore float64
		wantLevel models.RiskLevel
	}{
		{name: "just under high stays medium", local: 0.6, ai: 0.7421, wantScore: 0.7, wantLevel: models.RiskLevelMedium},
		{name: "exactly high", local: 0.7, ai: 0.7, wantScore: 0.7, wantLevel: models.RiskLevelHigh},
		{name: "exactly medium despite float noise", local: 0.4, ai: 0.4, wantScore: 0.4, wantLevel: models.RiskLevelMedium},
		{name: "just under medium stays low", local: 0.3, ai: 0.4421, wantScore: 0.4, wantLevel: models.RiskLevelLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := Merge(
				models.LocalRiskAssessment{Score: tt.local, Level: LevelFor(tt.local)},
				&models.ExternalRiskAssessment{BurnoutProbability: tt.ai, BurnoutLevel: "moderate"},
			)

			assert.Equal(t, tt.wantScore, merged.Score)
			assert.Equal(t, tt.wantLevel, merged.Level)
		})
	}
}

func TestFallback(t *testing.T) {
	fb := Fallback()

	assert.Equal(t, 0.3, fb.Score)
	assert.Equal(t, models.RiskLevelUnknown, fb.Level)
	assert.Equal(t, 0.0, fb.Confidence)
	assert.Empty(t, fb.ContributingFactors)
	assert.NotNil(t, fb.ContributingFactors)
	assert.Equal(t, models.SourceFallback, fb.Source)
}
