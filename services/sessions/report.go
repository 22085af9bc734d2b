package sessions

import (
	"time"

	"algoritmia/models"
)

// TierShare is the share of completed sessions that reached one tier.
type TierShare struct {
	Tier       string  `json:"tier"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// OriginEffectiveness groups tier shares for one session origin.
type OriginEffectiveness struct {
	Origin    string      `json:"origin"`
	Completed int         `json:"completed"`
	Tiers     []TierShare `json:"tiers"`
}

// EffectivenessReport aggregates the improvement tiers of completed sessions
// in a date range, split by origin (system vs teacher assigned). This is the
// reporting collaborator's view of program effectiveness; the tier itself was
// fixed at completion time by the classifier.
func (m *Manager) EffectivenessReport(from, to *time.Time) ([]OriginEffectiveness, error) {
	query := m.db.Model(&models.ReinforcementSession{}).Where("status = ?", models.SessionCompleted)
	if from != nil {
		query = query.Where("completed_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("completed_at <= ?", *to)
	}

	var completed []models.ReinforcementSession
	if err := query.Find(&completed).Error; err != nil {
		return nil, err
	}

	byOrigin := map[string]map[string]int{
		models.OriginSystem:  {},
		models.OriginTeacher: {},
	}
	totals := map[string]int{}
	for _, s := range completed {
		byOrigin[s.Origin][s.ImprovementTier]++
		totals[s.Origin]++
	}

	report := make([]OriginEffectiveness, 0, len(byOrigin))
	for _, origin := range []string{models.OriginSystem, models.OriginTeacher} {
		entry := OriginEffectiveness{Origin: origin, Completed: totals[origin]}
		for tier, count := range byOrigin[origin] {
			percentage := 0.0
			if totals[origin] > 0 {
				percentage = float64(count) / float64(totals[origin]) * 100
			}
			entry.Tiers = append(entry.Tiers, TierShare{Tier: tier, Count: count, Percentage: percentage})
		}
		report = append(report, entry)
	}
	return report, nil
}
