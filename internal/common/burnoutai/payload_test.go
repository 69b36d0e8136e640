package burnoutai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"burnout-workers/internal/models"
)

func TestBuildRequest_AllDefaults(t *testing.T) {
	req, used := BuildRequest(nil, nil)

	assert.Equal(t, 72.0, req.AvgPulse)
	assert.Equal(t, 45.0, req.MedianHRV)
	assert.Equal(t, 45.0, req.MediaHRV)
	assert.Equal(t, 75.0, req.SleepScore)
	assert.Equal(t, 15.0, req.WeeklyHoursInMeetings)
	assert.Equal(t, 5.0, req.TimeOnFocusBlocks)
	assert.Equal(t, 0.0, req.AbsenteeismDays)
	assert.Equal(t, 7.0, req.NPSScore)
	assert.Equal(t, 0.5, req.InterventionAcceptanceRate)
	assert.Equal(t, 0.0, req.HighStressPrevalencePerc)
	// 20 + (72-60)/10*5 + (50-45)/10*3
	assert.InDelta(t, 27.5, req.TimeToRecover, 1e-9)
	assert.Equal(t, req.TimeToRecover, req.TimeToRecoverHRV)

	assert.Equal(t, []string{
		"avg_pulse", "median_hrv", "sleep_score", "weekly_hours_in_meetings",
		"time_on_focus_blocks", "absenteesim_days", "nps_score", "intervention_acceptance_rate",
	}, used)
}

func TestBuildRequest_MeasuredValues(t *testing.T) {
	summary := &models.BiometricAnalysisSummary{
		AvgHeartRate:    90,
		StressPeakCount: 3,
		DataPointCount:  9,
		AvgHRV:          models.Float(30),
		EDAPeakCount:    4,
	}
	wm := &models.WorkMetrics{
		SleepScore:                 models.Float(60),
		WeeklyMeetings:             models.Float(20),
		FocusTime:                  models.Float(0),
		AbsenceDays:                models.Float(2),
		NPSScore:                   models.Float(0),
		InterventionAcceptanceRate: models.Float(0.8),
	}

	req, used := BuildRequest(summary, wm)

	assert.Empty(t, used)
	assert.Equal(t, 90.0, req.AvgPulse)
	assert.Equal(t, 30.0, req.MedianHRV, "avg HRV stands in for a missing median")
	assert.Equal(t, 4, req.EDAPeaks)
	assert.Equal(t, 0.0, req.TimeOnFocusBlocks, "measured zero is sent as zero")
	assert.Equal(t, 0.0, req.NPSScore)
	// 3/9*100 = 33.333...
	assert.Equal(t, 33.33, req.HighStressPrevalencePerc)
	assert.Equal(t, 0.33, req.HighStressPrevalence)
	// 20 + 3*5 + 2*3
	assert.InDelta(t, 41.0, req.TimeToRecover, 1e-9)
}

func TestBuildRequest_WireFieldNames(t *testing.T) {
	req, _ := BuildRequest(nil, nil)
	data, err := json.Marshal(req)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))

	want := []string{
		"time_to_recover", "high_stress_prevalence_perc", "median_hrv", "avg_pulse",
		"sleep_score", "media_hrv", "eda_peaks", "time_to_recover_hrv",
		"weekly_hours_in_meetings", "time_on_focus_blocks", "absenteesim_days",
		"high_stress_prevalence", "nps_score", "intervention_acceptance_rate",
	}
	assert.Len(t, fields, len(want))
	for _, name := range want {
		assert.Contains(t, fields, name)
	}
	assert.NotContains(t, fields, "user_id")
}

func TestRecoveryTime_NoNegativeFactors(t *testing.T) {
	assert.Equal(t, 20.0, RecoveryTime(55, 70))
}
