package confidence

import (
	"fmt"
	"time"
)

// Processing-time plausibility bounds. A response faster than the lower
// bound smells like a stub or cached answer; slower than the upper bound is
// timeout-adjacent instability. Both reduce trust in the output.
const (
	minPlausibleProcessing = 1 * time.Second
	maxPlausibleProcessing = 30 * time.Second
)

// ScoreInspectionAnalysis scores an inspection analysis payload that already
// passed structural validation.
func ScoreInspectionAnalysis(data map[string]any, elapsed time.Duration) Score {
	var factors []Factor

	findings := getArray(data, "findings")
	if len(findings) > 0 {
		var sum float64
		var counted int
		for _, f := range findings {
			obj, ok := f.(map[string]any)
			if !ok {
				continue
			}
			if c, ok := getFloat(obj, "confidence"); ok {
				sum += c
				counted++
			}
		}
		if counted > 0 {
			factors = append(factors, Factor{
				Name:        "finding_confidence",
				Score:       sum / float64(counted),
				Weight:      0.4,
				Description: fmt.Sprintf("average confidence across %d finding(s)", counted),
			})
		}
	}

	factors = append(factors, completenessFactor(data, 0.2, "findings", "severity", "riskScore", "recommendations"))
	factors = append(factors, dataQualityFactor(data, 0.2))
	factors = append(factors, processingTimeFactor(elapsed, 0.2))

	return FromFactors(factors)
}

// ScoreAnomalyDetection scores an anomaly detection payload. A clean scan is
// a legitimate outcome: the clean_scan factor replaces the per-anomaly
// confidence factor instead of dragging the average down.
func ScoreAnomalyDetection(data map[string]any, elapsed time.Duration) Score {
	var factors []Factor

	anomalies := getArray(data, "anomalies")
	if len(anomalies) > 0 {
		var sum float64
		var counted int
		for _, a := range anomalies {
			obj, ok := a.(map[string]any)
			if !ok {
				continue
			}
			if c, ok := getFloat(obj, "confidence"); ok {
				sum += c
				counted++
			}
		}
		if counted > 0 {
			factors = append(factors, Factor{
				Name:        "anomaly_confidence",
				Score:       sum / float64(counted),
				Weight:      0.4,
				Description: fmt.Sprintf("average confidence across %d anomaly(ies)", counted),
			})
		}
	} else {
		cleanScore := 1.0
		if risk, ok := getFloat(data, "riskScore"); ok && risk > 25 {
			// No anomalies but elevated risk reads as an incoherent answer.
			cleanScore = 0.5
		}
		factors = append(factors, Factor{
			Name:        "clean_scan",
			Score:       cleanScore,
			Weight:      0.4,
			Description: "no anomalies reported",
		})
	}

	factors = append(factors, completenessFactor(data, 0.2, "anomalies", "severity", "riskScore", "summary"))
	factors = append(factors, dataQualityFactor(data, 0.2))
	factors = append(factors, processingTimeFactor(elapsed, 0.2))

	return FromFactors(factors)
}

// ScoreMissionReadiness scores a go/no-go readiness payload. Risk flags
// reduce the score additively, and a ready call that contradicts the numeric
// score is penalized.
func ScoreMissionReadiness(data map[string]any, elapsed time.Duration) Score {
	var factors []Factor

	flagScore := 1.0
	var criticals, highs int
	for _, f := range getArray(data, "riskFlags") {
		obj, ok := f.(map[string]any)
		if !ok {
			continue
		}
		switch getString(obj, "severity") {
		case "CRITICAL":
			criticals++
			flagScore -= 0.3
		case "HIGH":
			highs++
			flagScore -= 0.15
		}
	}
	if flagScore < 0 {
		flagScore = 0
	}
	factors = append(factors, Factor{
		Name:        "risk_flags",
		Score:       flagScore,
		Weight:      0.4,
		Description: fmt.Sprintf("%d critical, %d high risk flag(s)", criticals, highs),
	})

	consistency := 1.0
	ready, readyOK := data["ready"].(bool)
	score, scoreOK := getFloat(data, "score")
	if readyOK && scoreOK {
		if (ready && score < 70) || (!ready && score > 70) {
			consistency *= 0.7
		}
	}
	factors = append(factors, Factor{
		Name:        "readiness_consistency",
		Score:       consistency,
		Weight:      0.3,
		Description: "agreement between ready flag and readiness score",
	})

	factors = append(factors, completenessFactor(data, 0.3, "ready", "score", "riskFlags", "recommendation"))

	return FromFactors(factors)
}

// ScoreDailySummary scores a daily operations summary payload.
func ScoreDailySummary(data map[string]any, elapsed time.Duration) Score {
	var factors []Factor

	factors = append(factors, completenessFactor(data, 0.4, "summary", "highlights", "completedMissions", "openIssues"))

	depth := 0.0
	if summary := getString(data, "summary"); summary != "" {
		depth = float64(len(summary)) / 80.0
		if depth > 1 {
			depth = 1
		}
	}
	factors = append(factors, Factor{
		Name:        "content_depth",
		Score:       depth,
		Weight:      0.3,
		Description: "summary substance heuristic",
	})

	counts := 1.0
	for _, key := range []string{"completedMissions", "openIssues"} {
		if v, ok := getFloat(data, key); !ok || v < 0 {
			counts = 0.5
		}
	}
	factors = append(factors, Factor{
		Name:        "counts_sanity",
		Score:       counts,
		Weight:      0.3,
		Description: "mission and issue counters are well formed",
	})

	factors = append(factors, processingTimeFactor(elapsed, 0.2))

	return FromFactors(factors)
}

func completenessFactor(data map[string]any, weight float64, fields ...string) Factor {
	present := 0
	for _, f := range fields {
		if _, ok := data[f]; ok {
			present++
		}
	}
	return Factor{
		Name:        "completeness",
		Score:       float64(present) / float64(len(fields)),
		Weight:      weight,
		Description: fmt.Sprintf("%d of %d expected fields present", present, len(fields)),
	}
}

func dataQualityFactor(data map[string]any, weight float64) Factor {
	severity := getString(data, "severity")
	risk, riskOK := getFloat(data, "riskScore")
	score := severityRiskConsistency(severity, risk, severity != "", riskOK)
	return Factor{
		Name:        "data_quality",
		Score:       score,
		Weight:      weight,
		Description: "risk score agrees with declared severity",
	}
}

func processingTimeFactor(elapsed time.Duration, weight float64) Factor {
	score := 1.0
	if elapsed < minPlausibleProcessing || elapsed > maxPlausibleProcessing {
		score = 0.3
	}
	return Factor{
		Name:        "processing_time",
		Score:       score,
		Weight:      weight,
		Description: fmt.Sprintf("response took %s", elapsed),
	}
}

func getArray(data map[string]any, key string) []any {
	arr, _ := data[key].([]any)
	return arr
}

func getString(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

func getFloat(data map[string]any, key string) (float64, bool) {
	switch v := data[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
