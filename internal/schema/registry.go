package schema

// Schema names, one per governed output shape.
const (
	InspectionAnalysis = "inspection_analysis"
	AnomalyDetection   = "anomaly_detection"
	MissionReadiness   = "mission_readiness"
	DailySummary       = "daily_summary"
)

var severityEnum = Enum("LOW", "MEDIUM", "HIGH", "CRITICAL")

var registry = map[string]*Node{
	InspectionAnalysis: Object(map[string]*Node{
		"findings": Array(Object(map[string]*Node{
			"id":          NonEmptyString(),
			"type":        NonEmptyString(),
			"severity":    severityEnum,
			"description": String(),
			"confidence":  Number(0, 1),
		}, "id", "type", "severity", "confidence")),
		"severity":  severityEnum,
		"riskScore": Number(0, 100),
		"recommendations": Array(Object(map[string]*Node{
			"priority":  severityEnum,
			"action":    NonEmptyString(),
			"rationale": String(),
		}, "priority", "action")),
	}, "findings", "severity", "riskScore", "recommendations"),

	AnomalyDetection: Object(map[string]*Node{
		"anomalies": Array(Object(map[string]*Node{
			"id":          NonEmptyString(),
			"type":        NonEmptyString(),
			"severity":    severityEnum,
			"description": String(),
			"confidence":  Number(0, 1),
		}, "id", "type", "severity", "confidence")),
		"severity":  severityEnum,
		"riskScore": Number(0, 100),
		"summary":   NonEmptyString(),
	}, "anomalies", "severity", "riskScore", "summary"),

	MissionReadiness: Object(map[string]*Node{
		"ready": Boolean(),
		"score": Number(0, 100),
		"riskFlags": Array(Object(map[string]*Node{
			"severity": severityEnum,
			"flag":     NonEmptyString(),
			"detail":   String(),
		}, "severity", "flag")),
		"recommendation": NonEmptyString(),
	}, "ready", "score", "riskFlags", "recommendation"),

	DailySummary: Object(map[string]*Node{
		"summary":    NonEmptyString(),
		"highlights": Array(String()),
		"incidents": Array(Object(map[string]*Node{
			"severity":    severityEnum,
			"description": NonEmptyString(),
		}, "severity", "description")),
		"completedMissions": Integer(0),
		"openIssues":        Integer(0),
	}, "summary", "highlights", "completedMissions", "openIssues"),
}

// Names returns the registered schema names.
func Names() []string {
	return []string{InspectionAnalysis, AnomalyDetection, MissionReadiness, DailySummary}
}
