package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/planlane/project_delivery_app/internal/core/domain"
)

func TestGraphFor(t *testing.T) {
	for _, et := range []domain.EntityType{
		domain.EntityMilestone,
		domain.EntityDeliverable,
		domain.EntityTimesheet,
		domain.EntityExpense,
		domain.EntityVariation,
	} {
		g, ok := domain.GraphFor(et)
		assert.True(t, ok, "graph should exist for %s", et)
		assert.NotNil(t, g)
	}

	_, ok := domain.GraphFor(domain.EntityType("WIDGET"))
	assert.False(t, ok)
}

func TestMilestoneTransitions(t *testing.T) {
	g, _ := domain.GraphFor(domain.EntityMilestone)

	assert.True(t, g.CanTransition(domain.StatusNotStarted, domain.StatusInProgress))
	assert.True(t, g.CanTransition(domain.StatusInProgress, domain.StatusComplete))
	assert.True(t, g.CanTransition(domain.StatusComplete, domain.StatusSignedOff))

	// No skipping and no going back.
	assert.False(t, g.CanTransition(domain.StatusNotStarted, domain.StatusComplete))
	assert.False(t, g.CanTransition(domain.StatusComplete, domain.StatusInProgress))
	assert.True(t, g.IsTerminal(domain.StatusSignedOff))
}

func TestDeliverableTransitions(t *testing.T) {
	g, _ := domain.GraphFor(domain.EntityDeliverable)

	assert.True(t, g.CanTransition(domain.StatusReadyForReview, domain.StatusDelivered))
	assert.True(t, g.CanTransition(domain.StatusReadyForReview, domain.StatusInProgress))

	// Rejection after delivery reverts to in_progress, never to draft.
	assert.True(t, g.CanTransition(domain.StatusDelivered, domain.StatusInProgress))
	assert.False(t, g.CanTransition(domain.StatusDelivered, domain.StatusDraft))

	assert.True(t, g.IsTerminal(domain.StatusAccepted))
}

func TestApprovalTransitions(t *testing.T) {
	for _, et := range []domain.EntityType{domain.EntityTimesheet, domain.EntityExpense} {
		g, _ := domain.GraphFor(et)

		assert.True(t, g.CanTransition(domain.StatusDraft, domain.StatusSubmitted))
		assert.True(t, g.CanTransition(domain.StatusSubmitted, domain.StatusApproved))
		assert.True(t, g.CanTransition(domain.StatusSubmitted, domain.StatusRejected))
		assert.True(t, g.CanTransition(domain.StatusRejected, domain.StatusDraft))

		// Approved is terminal for regular actors; reversal is administrative.
		assert.True(t, g.IsTerminal(domain.StatusApproved))
	}
}

func TestVariationTransitions(t *testing.T) {
	g, _ := domain.GraphFor(domain.EntityVariation)

	assert.True(t, g.CanTransition(domain.StatusApproved, domain.StatusImplemented))
	assert.True(t, g.IsTerminal(domain.StatusRejected))
	assert.True(t, g.IsTerminal(domain.StatusImplemented))
	assert.False(t, g.CanTransition(domain.StatusRejected, domain.StatusDraft))
}

func TestInitialStatus(t *testing.T) {
	assert.Equal(t, domain.StatusNotStarted, domain.InitialStatus(domain.EntityMilestone))
	assert.Equal(t, domain.StatusDraft, domain.InitialStatus(domain.EntityDeliverable))
	assert.Equal(t, domain.StatusDraft, domain.InitialStatus(domain.EntityTimesheet))
	assert.Equal(t, domain.StatusDraft, domain.InitialStatus(domain.EntityVariation))
}

func TestApprovalKeyFor(t *testing.T) {
	key, gated := domain.ApprovalKeyFor(domain.EntityMilestone, domain.StatusSignedOff)
	assert.True(t, gated)
	assert.Equal(t, domain.KeyMilestoneSignoff, key)

	key, gated = domain.ApprovalKeyFor(domain.EntityExpense, domain.StatusApproved)
	assert.True(t, gated)
	assert.Equal(t, domain.KeyExpenseApproval, key)

	// Ungated moves carry no key.
	_, gated = domain.ApprovalKeyFor(domain.EntityMilestone, domain.StatusInProgress)
	assert.False(t, gated)
	_, gated = domain.ApprovalKeyFor(domain.EntityTimesheet, domain.StatusSubmitted)
	assert.False(t, gated)
}

func TestWorkflowSettingsRuleFallback(t *testing.T) {
	settings := domain.WorkflowSettings{
		ProjectID: "p-1",
		Rules: map[domain.ApprovalKey]domain.ApprovalRule{
			domain.KeyTimesheetApproval: {Required: true, Authority: domain.AuthorityEither},
		},
	}

	assert.Equal(t, domain.AuthorityEither, settings.Rule(domain.KeyTimesheetApproval).Authority)

	// Unset keys fall back to the defaults.
	signoff := settings.Rule(domain.KeyMilestoneSignoff)
	assert.True(t, signoff.Required)
	assert.Equal(t, domain.AuthorityBoth, signoff.Authority)
}

func TestDefaultWorkflowRulesCoverAllKeys(t *testing.T) {
	defaults := domain.DefaultWorkflowRules()
	for _, key := range domain.KnownApprovalKeys {
		_, ok := defaults[key]
		assert.True(t, ok, "default rule missing for %s", key)
	}
}

func TestApprovedRolesFor(t *testing.T) {
	item := domain.WorkflowItem{
		Approvals: []domain.ApprovalDecision{
			{Role: domain.RoleSupplierPM, Decision: domain.DecisionApproved, ToState: domain.StatusSignedOff},
			{Role: domain.RoleCustomerPM, Decision: domain.DecisionRejected, ToState: domain.StatusSignedOff},
			{Role: domain.RoleCustomerPM, Decision: domain.DecisionApproved, ToState: domain.StatusComplete},
		},
	}

	roles := item.ApprovedRolesFor(domain.StatusSignedOff)
	assert.True(t, roles[domain.RoleSupplierPM])
	assert.False(t, roles[domain.RoleCustomerPM], "rejections and other target states do not count")
}
