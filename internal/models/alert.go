package models

import (
	"encoding/json"
	"time"
)

type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "INFO"
	SeverityWarning  AlertSeverity = "WARNING"
	SeverityCritical AlertSeverity = "CRITICAL"
)

// Alert is ephemeral: it only ever lives in the response or in the cache.
type Alert struct {
	Type            string        `json:"type" xml:"type"`
	Severity        AlertSeverity `json:"severity" xml:"severity"`
	Timestamp       time.Time     `json:"timestamp" xml:"timestamp"`
	Title           string        `json:"title,omitempty" xml:"title,omitempty"`
	Message         string        `json:"message,omitempty" xml:"message,omitempty"`
	Recommendations []string      `json:"recommendations" xml:"recommendations>recommendation"`
	AIInsights      string        `json:"ai_insights,omitempty" xml:"ai_insights,omitempty"`
	RequiresAction  bool          `json:"requires_action" xml:"requires_action"`
}

// ThresholdAlert is raised when a single realtime metric crosses its threshold.
type ThresholdAlert struct {
	Metric    string    `json:"metric" xml:"metric"`
	Value     float64   `json:"value" xml:"value"`
	Timestamp time.Time `json:"timestamp" xml:"timestamp"`
}

type InterventionPriority string

const (
	PriorityLow    InterventionPriority = "LOW"
	PriorityMedium InterventionPriority = "MEDIUM"
	PriorityHigh   InterventionPriority = "HIGH"
	PriorityUrgent InterventionPriority = "URGENT"
)

type Intervention struct {
	ID                string               `json:"id" xml:"id"`
	Name              string               `json:"name" xml:"name"`
	Priority          InterventionPriority `json:"priority" xml:"priority"`
	Description       string               `json:"description,omitempty" xml:"description,omitempty"`
	EstimatedDuration string               `json:"estimated_duration,omitempty" xml:"estimated_duration,omitempty"`
	Frequency         string               `json:"frequency,omitempty" xml:"frequency,omitempty"`
	Duration          string               `json:"duration,omitempty" xml:"duration,omitempty"`
	Details           json.RawMessage      `json:"details,omitempty" xml:"details,omitempty"`
}
