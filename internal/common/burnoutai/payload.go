package burnoutai

import (
	"math"

	"burnout-workers/internal/models"
)

// Placeholder values sent when a measurement is missing.
const (
	defaultAvgHeartRate   = 72.0
	defaultMedianHRV      = 45.0
	defaultSleepScore     = 75.0
	defaultWeeklyMeetings = 15.0
	defaultFocusTime      = 5.0
	defaultAbsenceDays    = 0.0
	defaultNPSScore       = 7.0
	defaultAcceptanceRate = 0.5
)

// AnalysisRequest is the body of POST /api/burnout/analyze-custom. Field names
// (including their spelling) are fixed by the remote service.
type AnalysisRequest struct {
	TimeToRecover              float64 `json:"time_to_recover"`
	HighStressPrevalencePerc   float64 `json:"high_stress_prevalence_perc"`
	MedianHRV                  float64 `json:"median_hrv"`
	AvgPulse                   float64 `json:"avg_pulse"`
	SleepScore                 float64 `json:"sleep_score"`
	MediaHRV                   float64 `json:"media_hrv"`
	EDAPeaks                   int     `json:"eda_peaks"`
	TimeToRecoverHRV           float64 `json:"time_to_recover_hrv"`
	WeeklyHoursInMeetings      float64 `json:"weekly_hours_in_meetings"`
	TimeOnFocusBlocks          float64 `json:"time_on_focus_blocks"`
	AbsenteeismDays            float64 `json:"absenteesim_days"`
	HighStressPrevalence       float64 `json:"high_stress_prevalence"`
	NPSScore                   float64 `json:"nps_score"`
	InterventionAcceptanceRate float64 `json:"intervention_acceptance_rate"`
}

// BuildRequest maps a summary and work metrics onto the model's feature vector.
// It also returns the names of the fields that were filled with placeholders, in
// request field order.
func BuildRequest(summary *models.BiometricAnalysisSummary, wm *models.WorkMetrics) (AnalysisRequest, []string) {
	var used []string
	pick := func(field string, v *float64, def float64) float64 {
		if v != nil {
			return *v
		}
		used = append(used, field)
		return def
	}

	var avgHR, medianHRV *float64
	var stressPeaks, edaPeaks, dataPoints int
	if summary != nil {
		avgHR = models.Float(summary.AvgHeartRate)
		medianHRV = summary.MedianHRV
		if medianHRV == nil {
			medianHRV = summary.AvgHRV
		}
		stressPeaks = summary.StressPeakCount
		edaPeaks = summary.EDAPeakCount
		dataPoints = summary.DataPointCount
	}
	if wm == nil {
		wm = &models.WorkMetrics{}
	}

	hr := pick("avg_pulse", avgHR, defaultAvgHeartRate)
	hrv := pick("median_hrv", medianHRV, defaultMedianHRV)

	recovery := RecoveryTime(hr, hrv)
	prevalence := 0.0
	if dataPoints > 0 {
		prevalence = float64(stressPeaks) / float64(dataPoints) * 100
	}

	req := AnalysisRequest{
		TimeToRecover:            round2(recovery),
		HighStressPrevalencePerc: round2(prevalence),
		MedianHRV:                round2(hrv),
		AvgPulse:                 round2(hr),
		MediaHRV:                 round2(hrv),
		EDAPeaks:                 edaPeaks,
		TimeToRecoverHRV:         round2(recovery),
		HighStressPrevalence:     math.Round(prevalence) / 100,
	}
	req.SleepScore = pick("sleep_score", wm.SleepScore, defaultSleepScore)
	req.WeeklyHoursInMeetings = pick("weekly_hours_in_meetings", wm.WeeklyMeetings, defaultWeeklyMeetings)
	req.TimeOnFocusBlocks = pick("time_on_focus_blocks", wm.FocusTime, defaultFocusTime)
	req.AbsenteeismDays = pick("absenteesim_days", wm.AbsenceDays, defaultAbsenceDays)
	req.NPSScore = pick("nps_score", wm.NPSScore, defaultNPSScore)
	req.InterventionAcceptanceRate = pick("intervention_acceptance_rate", wm.InterventionAcceptanceRate, defaultAcceptanceRate)

	return req, used
}

// RecoveryTime estimates minutes to recover from a stress episode.
func RecoveryTime(avgHR, hrv float64) float64 {
	hrFactor := math.Max(0, (avgHR-60)/10)
	hrvFactor := math.Max(0, (50-hrv)/10)
	return 20 + hrFactor*5 + hrvFactor*3
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
