package prompts

type PromptName string

const (
	// Inspection intelligence
	PromptInspectionAnalysis PromptName = "inspection_analysis"
	PromptAnomalyDetection   PromptName = "anomaly_detection"

	// Operations
	PromptMissionReadiness PromptName = "mission_readiness"
	PromptDailySummary     PromptName = "daily_summary"
)

// All lists every prompt the pipeline governs. Seeding and admin listing
// iterate this, so the order is stable.
func All() []PromptName {
	return []PromptName{
		PromptInspectionAnalysis,
		PromptAnomalyDetection,
		PromptMissionReadiness,
		PromptDailySummary,
	}
}
