package prediction

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"burnout-workers/internal/models"
)

const (
	stressPeakBPM     = 100.0
	edaPeakMicrosiems = 2.5
)

// AnalyzeBiometrics summarizes a sample window. Each channel is filtered for
// missing and NaN readings independently. It returns nil when no heart-rate
// reading survives, since heart rate is the mandatory channel.
func AnalyzeBiometrics(samples []models.BiometricSample) *models.BiometricAnalysisSummary {
	var hr, hrv, eda []float64
	for _, s := range samples {
		if v, ok := valid(s.HeartRateBPM); ok {
			hr = append(hr, v)
		}
		if v, ok := valid(s.HRVRMSSDMs); ok {
			hrv = append(hrv, v)
		}
		if v, ok := valid(s.EDAMicrosiemens); ok {
			eda = append(eda, v)
		}
	}
	if len(hr) == 0 {
		return nil
	}

	mean, std := stat.PopMeanStdDev(hr, nil)

	summary := &models.BiometricAnalysisSummary{
		AvgHeartRate:    roundTo(mean, 1),
		MaxHeartRate:    roundTo(floats.Max(hr), 1),
		MinHeartRate:    roundTo(floats.Min(hr), 1),
		StdDeviation:    roundTo(std, 1),
		StressPeakCount: countAbove(hr, stressPeakBPM),
		DataPointCount:  len(hr),
		EDAPeakCount:    countAbove(eda, edaPeakMicrosiems),
		TimeRangeHours:  roundTo(timeRangeHours(samples), 2),
	}
	if len(hrv) > 0 {
		summary.AvgHRV = models.Float(roundTo(stat.Mean(hrv, nil), 1))
		summary.MedianHRV = models.Float(roundTo(Median(hrv), 1))
	}
	if len(eda) > 0 {
		summary.AvgEDA = models.Float(roundTo(stat.Mean(eda, nil), 2))
	}
	return summary
}

// Median returns the middle of values, averaging the two middle elements for an
// even count. values is not modified. Median of an empty slice is NaN.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// timeRangeHours spans first to last sample as received, not min to max.
func timeRangeHours(samples []models.BiometricSample) float64 {
	if len(samples) < 2 {
		return 0
	}
	return samples[len(samples)-1].Timestamp.Sub(samples[0].Timestamp).Hours()
}

func valid(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) {
		return 0, false
	}
	return *v, true
}

func countAbove(values []float64, threshold float64) int {
	n := 0
	for _, v := range values {
		if v > threshold {
			n++
		}
	}
	return n
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
