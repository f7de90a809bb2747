package domain

// TransitionGraph maps each status to its legal successor statuses. One
// explicit graph per entity type; no derived or implicit states.
type TransitionGraph map[WorkflowStatus][]WorkflowStatus

var milestoneGraph = TransitionGraph{
	StatusNotStarted: {StatusInProgress},
	StatusInProgress: {StatusComplete},
	StatusComplete:   {StatusSignedOff}, // only when dual sign-off is configured
	StatusSignedOff:  {},                // terminal
}

var deliverableGraph = TransitionGraph{
	StatusDraft:          {StatusInProgress},
	StatusInProgress:     {StatusReadyForReview},
	StatusReadyForReview: {StatusDelivered, StatusInProgress},
	StatusDelivered:      {StatusAccepted, StatusInProgress}, // rejection reverts to in_progress, not draft
	StatusAccepted:       {},
}

var approvalGraph = TransitionGraph{
	StatusDraft:     {StatusSubmitted},
	StatusSubmitted: {StatusApproved, StatusRejected},
	StatusRejected:  {StatusDraft}, // editable again, then resubmit
	StatusApproved:  {},            // reversal is an administrative action, not a transition
}

var variationGraph = TransitionGraph{
	StatusDraft:       {StatusSubmitted},
	StatusSubmitted:   {StatusApproved, StatusRejected},
	StatusApproved:    {StatusImplemented},
	StatusRejected:    {},
	StatusImplemented: {},
}

// GraphFor returns the transition graph for an entity type.
func GraphFor(t EntityType) (TransitionGraph, bool) {
	switch t {
	case EntityMilestone:
		return milestoneGraph, true
	case EntityDeliverable:
		return deliverableGraph, true
	case EntityTimesheet, EntityExpense:
		return approvalGraph, true
	case EntityVariation:
		return variationGraph, true
	}
	return nil, false
}

// CanTransition reports whether to is a legal successor of from.
func (g TransitionGraph) CanTransition(from, to WorkflowStatus) bool {
	for _, next := range g[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status has no outgoing edges.
func (g TransitionGraph) IsTerminal(s WorkflowStatus) bool {
	return len(g[s]) == 0
}

// InitialStatus returns the status a freshly created entity starts in.
func InitialStatus(t EntityType) WorkflowStatus {
	if t == EntityMilestone {
		return StatusNotStarted
	}
	return StatusDraft
}

// ApprovalKeyFor maps a transition to the settings key that gates it.
// Transitions without a key are only gated by write capability.
func ApprovalKeyFor(t EntityType, to WorkflowStatus) (ApprovalKey, bool) {
	switch t {
	case EntityMilestone:
		switch to {
		case StatusComplete:
			return KeyMilestoneComplete, true
		case StatusSignedOff:
			return KeyMilestoneSignoff, true
		}
	case EntityDeliverable:
		if to == StatusAccepted {
			return KeyDeliverableSignoff, true
		}
	case EntityTimesheet:
		if to == StatusApproved || to == StatusRejected {
			return KeyTimesheetApproval, true
		}
	case EntityExpense:
		if to == StatusApproved || to == StatusRejected {
			return KeyExpenseApproval, true
		}
	case EntityVariation:
		if to == StatusApproved || to == StatusRejected {
			return KeyVariationApproval, true
		}
	}
	return "", false
}
