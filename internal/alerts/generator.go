// Package alerts turns risk assessments into user-facing alerts and intervention
// plans, and keeps the short-lived alert lists in the cache.
package alerts

import (
	"fmt"
	"strings"
	"time"

	"burnout-workers/internal/models"
)

var (
	mediumRecommendations = []string{
		"Schedule regular breaks during the workday",
		"Review upcoming deadlines with your manager",
		"Keep tracking sleep and activity for the next week",
	}
	highRecommendations = []string{
		"Reduce workload immediately and postpone non-critical tasks",
		"Book a consultation with occupational health",
		"Take at least one full day of rest this week",
	}
)

// Generate maps a merged assessment to an alert. Low and unknown levels produce no
// alert regardless of the other inputs.
func Generate(merged models.MergedRiskAssessment, summary *models.BiometricAnalysisSummary, ai *models.ExternalRiskAssessment) *models.Alert {
	return generateAt(merged, summary, ai, time.Now().UTC())
}

func generateAt(merged models.MergedRiskAssessment, summary *models.BiometricAnalysisSummary, ai *models.ExternalRiskAssessment, now time.Time) *models.Alert {
	switch merged.Level {
	case models.RiskLevelMedium:
		return &models.Alert{
			Type:            alertType(merged.Level),
			Severity:        models.SeverityWarning,
			Timestamp:       now,
			Title:           "Moderate burnout risk",
			Message:         "Some stress indicators are elevated. Keep monitoring and adjust your routine where possible.",
			Recommendations: append([]string{}, mediumRecommendations...),
			RequiresAction:  false,
		}

	case models.RiskLevelHigh:
		alert := &models.Alert{
			Type:            alertType(merged.Level),
			Severity:        models.SeverityCritical,
			Timestamp:       now,
			Title:           "High burnout risk",
			Message:         highRiskMessage(summary),
			Recommendations: append([]string{}, highRecommendations...),
			RequiresAction:  true,
		}
		if ai != nil {
			alert.AIInsights = fmt.Sprintf("AI model estimates a %.0f%% burnout probability (%s, %s)",
				ai.BurnoutProbability*100, ai.BurnoutLevel, ai.RiskCategory)
		}
		return alert

	default:
		return nil
	}
}

func alertType(level models.RiskLevel) string {
	return "BURNOUT_RISK_" + strings.ToUpper(string(level))
}

func highRiskMessage(summary *models.BiometricAnalysisSummary) string {
	if summary == nil {
		return "High burnout risk detected. Immediate attention is recommended."
	}
	hrv := "n/a"
	if summary.MedianHRV != nil {
		hrv = fmt.Sprintf("%.1f ms", *summary.MedianHRV)
	}
	return fmt.Sprintf(
		"High burnout risk detected: average heart rate %.1f bpm, median HRV %s, %d stress peaks in the analysed window.",
		summary.AvgHeartRate, hrv, summary.StressPeakCount,
	)
}
