package variance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/planlane/project_delivery_app/internal/core/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDaysBetween(t *testing.T) {
	a := date(2025, 3, 10)
	assert.Equal(t, 0, DaysBetween(a, a))
	assert.Equal(t, 5, DaysBetween(a, date(2025, 3, 15)))
	assert.Equal(t, -3, DaysBetween(a, date(2025, 3, 7)))

	// Partial days never count: same calendar day, different wall times.
	late := time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, 0, DaysBetween(a, late))
}

func TestIsBreach(t *testing.T) {
	baselineEnd := date(2025, 6, 30)

	// Landing exactly on the baseline date is not a breach.
	assert.False(t, IsBreach(baselineEnd, baselineEnd))
	assert.False(t, IsBreach(baselineEnd, date(2025, 6, 29)))

	// One day over is.
	assert.True(t, IsBreach(baselineEnd, date(2025, 7, 1)))
}

func TestMilestoneVariance(t *testing.T) {
	end := date(2025, 6, 30)
	slipped := date(2025, 7, 5)

	m := domain.Milestone{
		MilestoneID: "m-1",
		EndDate:     &slipped,
		EffortHours: decimal.NewFromInt(120),
		Value:       decimal.NewFromInt(10000),
		Baseline: &domain.BaselineSnapshot{
			BaselineID:  "b-1",
			EndDate:     &end,
			EffortHours: decimal.NewFromInt(100),
			Value:       decimal.NewFromInt(9000),
		},
	}

	v := MilestoneVariance(m)
	assert.NotNil(t, v)
	assert.Equal(t, domain.EntityMilestone, v.EntityType)
	assert.Equal(t, "m-1", v.EntityID)
	assert.Equal(t, 5, v.ScheduleDeltaDays)
	assert.True(t, v.EffortDeltaHours.Equal(decimal.NewFromInt(20)))
	assert.True(t, v.CostDelta.Equal(decimal.NewFromInt(1000)))
	assert.True(t, v.Breach)
}

func TestMilestoneVariance_NotBaselined(t *testing.T) {
	assert.Nil(t, MilestoneVariance(domain.Milestone{MilestoneID: "m-1"}))
}

func TestDeliverableVariance(t *testing.T) {
	due := date(2025, 4, 1)

	d := domain.Deliverable{
		DeliverableID: "d-1",
		DueDate:       &due,
		EffortHours:   decimal.NewFromInt(40),
		Value:         decimal.NewFromInt(2000),
		Baseline: &domain.BaselineSnapshot{
			BaselineID:  "b-1",
			DueDate:     &due,
			EffortHours: decimal.NewFromInt(40),
			Value:       decimal.NewFromInt(2500),
		},
	}

	v := DeliverableVariance(d)
	assert.NotNil(t, v)
	assert.Equal(t, 0, v.ScheduleDeltaDays)
	assert.True(t, v.EffortDeltaHours.IsZero())
	assert.True(t, v.CostDelta.Equal(decimal.NewFromInt(-500)))
	assert.False(t, v.Breach, "Hitting the baseline date exactly is not a breach")
}

func TestSnapshots(t *testing.T) {
	start := date(2025, 1, 1)
	end := date(2025, 2, 1)
	takenAt := date(2025, 1, 15)

	m := domain.Milestone{
		MilestoneID: "m-1",
		StartDate:   &start,
		EndDate:     &end,
		EffortHours: decimal.NewFromInt(80),
		Value:       decimal.NewFromInt(5000),
	}
	snap := SnapshotOfMilestone(m, "b-1", "user-1", takenAt)
	assert.Equal(t, "b-1", snap.BaselineID)
	assert.Equal(t, &start, snap.StartDate)
	assert.Equal(t, &end, snap.EndDate)
	assert.True(t, snap.EffortHours.Equal(m.EffortHours))
	assert.True(t, snap.Value.Equal(m.Value))
	assert.Equal(t, "user-1", snap.TakenBy)

	d := domain.Deliverable{DeliverableID: "d-1", DueDate: &end, Value: decimal.NewFromInt(100)}
	dsnap := SnapshotOfDeliverable(d, "b-1", "user-1", takenAt)
	assert.Equal(t, &end, dsnap.DueDate)
	assert.Nil(t, dsnap.StartDate)
}
