package models

// WorkMetrics is the most recent workplace telemetry snapshot for a subject.
// Every field is nil when the source did not measure it; zero means measured as zero.
type WorkMetrics struct {
	OvertimeHours              *float64 `json:"overtime_hours" xml:"overtime_hours,omitempty"`
	WorkloadScore              *float64 `json:"workload_score" xml:"workload_score,omitempty"`
	SleepScore                 *float64 `json:"sleep_score" xml:"sleep_score,omitempty"`
	WeeklyMeetings             *float64 `json:"weekly_meetings" xml:"weekly_meetings,omitempty"`
	FocusTime                  *float64 `json:"focus_time" xml:"focus_time,omitempty"`
	AbsenceDays                *float64 `json:"absence_days" xml:"absence_days,omitempty"`
	NPSScore                   *float64 `json:"nps_score" xml:"nps_score,omitempty"`
	InterventionAcceptanceRate *float64 `json:"acceptance_rate" xml:"acceptance_rate,omitempty"`
}
