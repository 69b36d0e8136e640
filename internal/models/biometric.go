// internal/models/biometric.go
package models

import "time"

// BiometricSample is one pivoted time-series record for a subject. Each channel is
// optional: a wearable may report heart rate without HRV or EDA.
type BiometricSample struct {
	Timestamp       time.Time `json:"timestamp"`
	SubjectID       string    `json:"subjectId"`
	HeartRateBPM    *float64  `json:"hr_bpm,omitempty"`
	HRVRMSSDMs      *float64  `json:"hrv_rmssd_ms,omitempty"`
	EDAMicrosiemens *float64  `json:"eda_microsiemens,omitempty"`
}

// BiometricAnalysisSummary holds the statistics derived from a sample window.
// A nil *BiometricAnalysisSummary means the window had no usable heart-rate data.
type BiometricAnalysisSummary struct {
	AvgHeartRate    float64  `json:"avg_heart_rate" xml:"avg_heart_rate"`
	MaxHeartRate    float64  `json:"max_heart_rate" xml:"max_heart_rate"`
	MinHeartRate    float64  `json:"min_heart_rate" xml:"min_heart_rate"`
	StdDeviation    float64  `json:"std_deviation" xml:"std_deviation"`
	StressPeakCount int      `json:"stress_peaks" xml:"stress_peaks"`
	DataPointCount  int      `json:"data_points" xml:"data_points"`
	AvgHRV          *float64 `json:"avg_hrv" xml:"avg_hrv,omitempty"`
	MedianHRV       *float64 `json:"median_hrv" xml:"median_hrv,omitempty"`
	AvgEDA          *float64 `json:"avg_eda" xml:"avg_eda,omitempty"`
	EDAPeakCount    int      `json:"eda_peaks" xml:"eda_peaks"`
	TimeRangeHours  float64  `json:"time_range_hours" xml:"time_range_hours"`
}

// Float returns a pointer to v. Handy for building optional fields.
func Float(v float64) *float64 {
	return &v
}
