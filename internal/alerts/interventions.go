package alerts

import "burnout-workers/internal/models"

const AIRecommendationsID = "ai_recommendations"

// RecommendInterventions builds the prioritized plan for a merged assessment.
// Level-specific entries come first and the base entries last; remote-model
// recommendations, when present, are appended as one opaque entry.
func RecommendInterventions(merged models.MergedRiskAssessment, ai *models.ExternalRiskAssessment) []models.Intervention {
	var out []models.Intervention

	switch merged.Level {
	case models.RiskLevelHigh:
		out = append(out,
			models.Intervention{
				ID:                "workload_reduction",
				Name:              "Immediate workload reduction",
				Priority:          models.PriorityUrgent,
				Description:       "Redistribute tasks and pause non-essential commitments",
				EstimatedDuration: "1-2 weeks",
			},
			models.Intervention{
				ID:                "medical_consultation",
				Name:              "Urgent medical consultation",
				Priority:          models.PriorityUrgent,
				Description:       "Assessment by occupational health or a general practitioner",
				EstimatedDuration: "1 hour",
			},
		)
	case models.RiskLevelMedium:
		out = append(out,
			models.Intervention{
				ID:                "stress_workshop",
				Name:              "Stress management workshop",
				Priority:          models.PriorityHigh,
				Description:       "Group session on coping techniques and boundaries",
				EstimatedDuration: "2 hours",
			},
			models.Intervention{
				ID:          "schedule_optimization",
				Name:        "Schedule optimization",
				Priority:    models.PriorityMedium,
				Description: "Consolidate meetings and protect focus blocks",
				Frequency:   "weekly",
			},
		)
	}

	out = append(out,
		models.Intervention{
			ID:        "mindfulness_session",
			Name:      "Mindfulness session",
			Priority:  models.PriorityMedium,
			Frequency: "daily",
			Duration:  "15 minutes",
		},
		models.Intervention{
			ID:          "psychological_evaluation",
			Name:        "Psychological evaluation",
			Priority:    models.PriorityLow,
			Description: "Routine check-in with a wellbeing professional",
			Frequency:   "monthly",
		},
	)

	if ai != nil && len(ai.Interventions) > 0 {
		out = append(out, models.Intervention{
			ID:       AIRecommendationsID,
			Name:     "AI model recommendations",
			Priority: models.PriorityHigh,
			Details:  ai.Interventions,
		})
	}
	return out
}
