// Package confidence computes the multi-factor confidence score that gates
// every pipeline decision between auto-approval and human review.
package confidence

// Level is the discrete confidence band derived from the overall score.
type Level string

const (
	LevelVeryLow Level = "VERY_LOW"
	LevelLow     Level = "LOW"
	LevelMedium  Level = "MEDIUM"
	LevelHigh    Level = "HIGH"
)

// Global thresholds, shared across all decision categories.
const (
	ThresholdHigh    = 0.85
	ThresholdMedium  = 0.70
	ThresholdLow     = 0.50
	ThresholdMinimum = 0.30
)

// Factor is one weighted component of a score. Score is 0-1, Weight is the
// fixed importance assigned by the category scorer.
type Factor struct {
	Name        string  `json:"name"`
	Score       float64 `json:"score"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description"`
}

// Score is the computed confidence for one decision.
type Score struct {
	Overall      float64  `json:"overall"`
	Level        Level    `json:"level"`
	Factors      []Factor `json:"factors"`
	MeetsMinimum bool     `json:"meets_minimum"`
}

// FromFactors combines factors as the weight-normalized sum of their scores.
// Factors are conditionally included by the category scorers, so the
// denominator is the weight actually applied, not a fixed constant. A
// legitimate "nothing to report" outcome is not punished for the factors
// that never fired.
func FromFactors(factors []Factor) Score {
	var weighted, totalWeight float64
	for _, f := range factors {
		weighted += clamp01(f.Score) * f.Weight
		totalWeight += f.Weight
	}
	overall := 0.0
	if totalWeight > 0 {
		overall = clamp01(weighted / totalWeight)
	}
	return Score{
		Overall:      overall,
		Level:        levelFor(overall),
		Factors:      factors,
		MeetsMinimum: overall >= ThresholdMinimum,
	}
}

func levelFor(overall float64) Level {
	switch {
	case overall >= ThresholdHigh:
		return LevelHigh
	case overall >= ThresholdMedium:
		return LevelMedium
	case overall >= ThresholdLow:
		return LevelLow
	default:
		return LevelVeryLow
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// severityRiskRanges maps a declared severity to the numeric risk range it
// should fall in. A risk score outside its severity's range is an internal
// inconsistency in the model's answer.
var severityRiskRanges = map[string][2]float64{
	"LOW":      {0, 25},
	"MEDIUM":   {25, 60},
	"HIGH":     {60, 85},
	"CRITICAL": {85, 100},
}

// severityRiskConsistency returns 1.0 when the risk score sits inside its
// declared severity's range, otherwise applies the 30% penalty.
func severityRiskConsistency(severity string, riskScore float64, severityPresent, riskPresent bool) float64 {
	score := 1.0
	if !severityPresent || !riskPresent {
		return score
	}
	r, ok := severityRiskRanges[severity]
	if !ok {
		return score
	}
	if riskScore < r[0] || riskScore > r[1] {
		score *= 0.7
	}
	return score
}
