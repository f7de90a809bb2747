package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BaselineSnapshot freezes an entity's planned dates, effort and value at
// commit time. Set once per lifecycle, replaced only by an implemented
// variation.
type BaselineSnapshot struct {
	BaselineID  string          `json:"baselineID"`
	StartDate   *time.Time      `json:"startDate,omitempty"`
	EndDate     *time.Time      `json:"endDate,omitempty"`
	DueDate     *time.Time      `json:"dueDate,omitempty"`
	EffortHours decimal.Decimal `json:"effortHours"`
	Value       decimal.Decimal `json:"value"`
	TakenAt     time.Time       `json:"takenAt"`
	TakenBy     string          `json:"takenBy"`
}

// Baseline is the project-level record of a baseline commit.
type Baseline struct {
	BaselineID  string    `json:"baselineID"` // Primary Key (UUID)
	ProjectID   string    `json:"projectID"`  // FK -> projects.project_id
	CommittedAt time.Time `json:"committedAt"`
	CommittedBy string    `json:"committedBy"`
}

// Variance is the difference between an entity's current values and its
// baseline snapshot.
type Variance struct {
	EntityType        EntityType      `json:"entityType"`
	EntityID          string          `json:"entityID"`
	ScheduleDeltaDays int             `json:"scheduleDeltaDays"`
	EffortDeltaHours  decimal.Decimal `json:"effortDeltaHours"`
	CostDelta         decimal.Decimal `json:"costDelta"`
	Breach            bool            `json:"breach"`
}

// BreachInfo describes a milestone whose children have slipped past the
// milestone's frozen baseline end date. The flag cascades upward to the
// containing components.
type BreachInfo struct {
	MilestoneID      string    `json:"milestoneID"`
	BaselineEnd      time.Time `json:"baselineEnd"`
	WorstDueDate     time.Time `json:"worstDueDate"`
	DaysOver         int       `json:"daysOver"`
	BreachedChildren []string  `json:"breachedChildren"`
	AtRiskComponents []string  `json:"atRiskComponents"`
}
