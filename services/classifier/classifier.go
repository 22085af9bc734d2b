package classifier

import "algoritmia/models"

// Improvement tiers for a completed reinforcement session
const (
	TierTotal       = "MEJORA_TOTAL"
	TierSignificant = "MEJORA_SIGNIFICATIVA"
	TierSlight      = "MEJORA_LEVE"
	TierNone        = "SIN_MEJORA"
)

// Classify maps a session's percentage-correct score to an improvement tier.
func Classify(percentage float64) string {
	switch {
	case percentage >= 85:
		return TierTotal
	case percentage >= 60:
		return TierSignificant
	case percentage >= 40:
		return TierSlight
	default:
		return TierNone
	}
}

// ResultingGrade returns the tier for a completed session's score together
// with the difficulty grade the student ends up with. SIN_MEJORA keeps the
// current grade; every other tier maps to a fixed grade regardless of where
// the student started.
func ResultingGrade(percentage float64, currentGrade string) (string, string) {
	tier := Classify(percentage)
	switch tier {
	case TierTotal:
		return tier, models.GradeNone
	case TierSignificant:
		return tier, models.GradeLow
	case TierSlight:
		return tier, models.GradeMedium
	default:
		return tier, currentGrade
	}
}
