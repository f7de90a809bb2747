package variance

import (
	"time"

	"github.com/planlane/project_delivery_app/internal/core/domain"
)

// DaysBetween returns the whole calendar days from a to b, positive when b is
// later. Times are truncated to their UTC date first so partial days never
// count.
func DaysBetween(a, b time.Time) int {
	au := time.Date(a.UTC().Year(), a.UTC().Month(), a.UTC().Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.UTC().Year(), b.UTC().Month(), b.UTC().Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}

// ScheduleDeltaDays returns the day slip between a baselined date and the
// current one. Zero when either side is unset.
func ScheduleDeltaDays(baseline, current *time.Time) int {
	if baseline == nil || current == nil {
		return 0
	}
	return DaysBetween(*baseline, *current)
}

// IsBreach reports whether a current date has slipped past a frozen baseline
// date. Landing exactly on the baseline date is not a breach; one day over is.
func IsBreach(baselineEnd time.Time, currentDue time.Time) bool {
	return DaysBetween(baselineEnd, currentDue) > 0
}

// MilestoneVariance computes current-vs-baseline variance for a milestone.
// Returns nil when the milestone was never baselined.
func MilestoneVariance(m domain.Milestone) *domain.Variance {
	if m.Baseline == nil {
		return nil
	}
	v := domain.Variance{
		EntityType:        domain.EntityMilestone,
		EntityID:          m.MilestoneID,
		ScheduleDeltaDays: ScheduleDeltaDays(m.Baseline.EndDate, m.EndDate),
		EffortDeltaHours:  m.EffortHours.Sub(m.Baseline.EffortHours),
		CostDelta:         m.Value.Sub(m.Baseline.Value),
	}
	if m.Baseline.EndDate != nil && m.EndDate != nil {
		v.Breach = IsBreach(*m.Baseline.EndDate, *m.EndDate)
	}
	return &v
}

// DeliverableVariance computes current-vs-baseline variance for a
// deliverable. Returns nil when the deliverable was never baselined.
func DeliverableVariance(d domain.Deliverable) *domain.Variance {
	if d.Baseline == nil {
		return nil
	}
	v := domain.Variance{
		EntityType:        domain.EntityDeliverable,
		EntityID:          d.DeliverableID,
		ScheduleDeltaDays: ScheduleDeltaDays(d.Baseline.DueDate, d.DueDate),
		EffortDeltaHours:  d.EffortHours.Sub(d.Baseline.EffortHours),
		CostDelta:         d.Value.Sub(d.Baseline.Value),
	}
	if d.Baseline.DueDate != nil && d.DueDate != nil {
		v.Breach = IsBreach(*d.Baseline.DueDate, *d.DueDate)
	}
	return &v
}

// SnapshotOfMilestone freezes a milestone's current planned values.
func SnapshotOfMilestone(m domain.Milestone, baselineID, takenBy string, takenAt time.Time) domain.BaselineSnapshot {
	return domain.BaselineSnapshot{
		BaselineID:  baselineID,
		StartDate:   m.StartDate,
		EndDate:     m.EndDate,
		EffortHours: m.EffortHours,
		Value:       m.Value,
		TakenAt:     takenAt,
		TakenBy:     takenBy,
	}
}

// SnapshotOfDeliverable freezes a deliverable's current planned values.
func SnapshotOfDeliverable(d domain.Deliverable, baselineID, takenBy string, takenAt time.Time) domain.BaselineSnapshot {
	return domain.BaselineSnapshot{
		BaselineID:  baselineID,
		DueDate:     d.DueDate,
		EffortHours: d.EffortHours,
		Value:       d.Value,
		TakenAt:     takenAt,
		TakenBy:     takenBy,
	}
}
