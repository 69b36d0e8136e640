package prediction

import (
	"fmt"
	"strconv"

	"burnout-workers/internal/models"
)

const (
	baseRiskScore       = 0.20
	localConfidence     = 0.85
	highRiskThreshold   = 0.7
	mediumRiskThreshold = 0.4
)

// ScoreLocalRisk applies the additive rule table. It never fails: biometric rules
// are skipped when summary is nil and each work rule is skipped when its field is
// missing.
func ScoreLocalRisk(summary *models.BiometricAnalysisSummary, wm *models.WorkMetrics) models.LocalRiskAssessment {
	score := baseRiskScore
	factors := []string{}

	if summary != nil {
		switch {
		case summary.AvgHeartRate > 90:
			score += 0.25
			factors = append(factors, "elevated heart rate")
		case summary.AvgHeartRate > 85:
			score += 0.15
			factors = append(factors, "moderately high heart rate")
		}

		switch {
		case summary.StressPeakCount > 10:
			score += 0.25
			factors = append(factors, fmt.Sprintf("%d stress peaks detected", summary.StressPeakCount))
		case summary.StressPeakCount > 5:
			score += 0.15
			factors = append(factors, fmt.Sprintf("%d moderate stress peaks", summary.StressPeakCount))
		}

		if summary.StdDeviation < 10 {
			score += 0.10
			factors = append(factors, "low heart-rate variability")
		}
	}

	if wm != nil {
		if wm.OvertimeHours != nil {
			switch h := *wm.OvertimeHours; {
			case h > 15:
				score += 0.20
				factors = append(factors, "excessive overtime: "+formatNumber(h)+"h")
			case h > 10:
				score += 0.10
				factors = append(factors, "moderate overtime: "+formatNumber(h)+"h")
			}
		}
		if wm.WorkloadScore != nil {
			switch w := *wm.WorkloadScore; {
			case w > 8:
				score += 0.20
				factors = append(factors, "high workload: "+formatNumber(w)+"/10")
			case w > 6:
				score += 0.10
				factors = append(factors, "moderate workload: "+formatNumber(w)+"/10")
			}
		}
	}

	score = roundTo(clamp(score, 0, 1), 2)
	return models.LocalRiskAssessment{
		Score:               score,
		Level:               LevelFor(score),
		Confidence:          localConfidence,
		ContributingFactors: factors,
	}
}

// LevelFor maps a score onto the three risk bands.
func LevelFor(score float64) models.RiskLevel {
	switch {
	case score >= highRiskThreshold:
		return models.RiskLevelHigh
	case score >= mediumRiskThreshold:
		return models.RiskLevelMedium
	default:
		return models.RiskLevelLow
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
