package alerts

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"burnout-workers/internal/models"
)

var alertTime = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func merged(level models.RiskLevel, score float64) models.MergedRiskAssessment {
	return models.MergedRiskAssessment{Score: score, Level: level, Source: models.SourceLocalAnalysis}
}

func TestGenerate_LowAndUnknownNeverAlert(t *testing.T) {
	summaries := []*models.BiometricAnalysisSummary{
		nil,
		{AvgHeartRate: 120, StressPeakCount: 40, MedianHRV: models.Float(12)},
	}
	ais := []*models.ExternalRiskAssessment{
		nil,
		{BurnoutProbability: 0.99, BurnoutLevel: "high", RiskCategory: "critical"},
	}

	for _, level := range []models.RiskLevel{models.RiskLevelLow, models.RiskLevelUnknown} {
		for _, s := range summaries {
			for _, ai := range ais {
				assert.Nil(t, generateAt(merged(level, 0.1), s, ai, alertTime), "level %s", level)
			}
		}
	}
}

func TestGenerate_Medium(t *testing.T) {
	alert := generateAt(merged(models.RiskLevelMedium, 0.5), nil, nil, alertTime)

	require.NotNil(t, alert)
	assert.Equal(t, "BURNOUT_RISK_MEDIUM", alert.Type)
	assert.Equal(t, models.SeverityWarning, alert.Severity)
	assert.Equal(t, alertTime, alert.Timestamp)
	assert.Len(t, alert.Recommendations, 3)
	assert.False(t, alert.RequiresAction)
	assert.Empty(t, alert.AIInsights)
}

func TestGenerate_High(t *testing.T) {
	tests := []struct {
		name         string
		summary      *models.BiometricAnalysisSummary
		ai           *models.ExternalRiskAssessment
		wantMessage  string
		wantInsights string
	}{
		{
			name: "interpolates biometrics",
			summary: &models.BiometricAnalysisSummary{
				AvgHeartRate:    96.4,
				MedianHRV:       models.Float(22.5),
				StressPeakCount: 14,
			},
			wantMessage: "High burnout risk detected: average heart rate 96.4 bpm, median HRV 22.5 ms, 14 stress peaks in the analysed window.",
		},
		{
			name:        "missing hrv",
			summary:     &models.BiometricAnalysisSummary{AvgHeartRate: 91, StressPeakCount: 3},
			wantMessage: "High burnout risk detected: average heart rate 91.0 bpm, median HRV n/a, 3 stress peaks in the analysed window.",
		},
		{
			name:         "generic message with ai insights",
			ai:           &models.ExternalRiskAssessment{BurnoutProbability: 0.87, BurnoutLevel: "high", RiskCategory: "critical"},
			wantMessage:  "High burnout risk detected. Immediate attention is recommended.",
			wantInsights: "AI model estimates a 87% burnout probability (high, critical)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert := generateAt(merged(models.RiskLevelHigh, 0.8), tt.summary, tt.ai, alertTime)

			require.NotNil(t, alert)
			assert.Equal(t, "BURNOUT_RISK_HIGH", alert.Type)
			assert.Equal(t, models.SeverityCritical, alert.Severity)
			assert.Equal(t, "High burnout risk", alert.Title)
			assert.Equal(t, tt.wantMessage, alert.Message)
			assert.Equal(t, tt.wantInsights, alert.AIInsights)
			assert.Len(t, alert.Recommendations, 3)
			assert.True(t, alert.RequiresAction)
		})
	}
}

func TestGenerate_RecommendationsAreCopies(t *testing.T) {
	alert := generateAt(merged(models.RiskLevelHigh, 0.9), nil, nil, alertTime)
	alert.Recommendations[0] = "changed"

	again := generateAt(merged(models.RiskLevelHigh, 0.9), nil, nil, alertTime)
	assert.NotEqual(t, "changed", again.Recommendations[0])
}

func TestRecommendInterventions(t *testing.T) {
	ids := func(list []models.Intervention) []string {
		out := make([]string, 0, len(list))
		for _, iv := range list {
			out = append(out, iv.ID)
		}
		return out
	}

	high := RecommendInterventions(merged(models.RiskLevelHigh, 0.8), nil)
	assert.Equal(t, []string{"workload_reduction", "medical_consultation", "mindfulness_session", "psychological_evaluation"}, ids(high))
	assert.Equal(t, models.PriorityUrgent, high[0].Priority)
	assert.Equal(t, models.PriorityUrgent, high[1].Priority)

	medium := RecommendInterventions(merged(models.RiskLevelMedium, 0.5), nil)
	assert.Equal(t, []string{"stress_workshop", "schedule_optimization", "mindfulness_session", "psychological_evaluation"}, ids(medium))
	assert.Equal(t, models.PriorityHigh, medium[0].Priority)
	assert.Equal(t, models.PriorityMedium, medium[1].Priority)

	low := RecommendInterventions(merged(models.RiskLevelLow, 0.2), nil)
	assert.Equal(t, []string{"mindfulness_session", "psychological_evaluation"}, ids(low))
	assert.Equal(t, "daily", low[0].Frequency)
	assert.Equal(t, models.PriorityLow, low[1].Priority)
	assert.Equal(t, "monthly", low[1].Frequency)
}

func TestRecommendInterventions_AppendsAIDetails(t *testing.T) {
	details := json.RawMessage(`[{"type":"rest","days":2}]`)
	ai := &models.ExternalRiskAssessment{BurnoutProbability: 0.6, Interventions: details}

	list := RecommendInterventions(merged(models.RiskLevelMedium, 0.5), ai)

	require.Len(t, list, 5)
	last := list[4]
	assert.Equal(t, AIRecommendationsID, last.ID)
	assert.Equal(t, models.PriorityHigh, last.Priority)
	assert.JSONEq(t, string(details), string(last.Details))

	withoutPayload := RecommendInterventions(merged(models.RiskLevelMedium, 0.5), &models.ExternalRiskAssessment{})
	assert.Len(t, withoutPayload, 4)
}
