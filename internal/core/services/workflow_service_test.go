package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/planlane/project_delivery_app/internal/apperrors"
	"github.com/planlane/project_delivery_app/internal/core/domain"
	portssvc "github.com/planlane/project_delivery_app/internal/core/ports/services"
	"github.com/planlane/project_delivery_app/internal/core/services"
)

type WorkflowServiceTestSuite struct {
	suite.Suite
	mockWorkflowRepo *MockWorkflowRepository
	mockAuditRepo    *MockAuditRepository
	mockProjectRepo  *MockProjectRepository
	mockPlanRepo     *MockPlanRepository
	mockTenancy      *MockTenancyService
	service          portssvc.WorkflowSvcFacade

	projectID string
	actorID   string
}

func (suite *WorkflowServiceTestSuite) SetupTest() {
	suite.mockWorkflowRepo = new(MockWorkflowRepository)
	suite.mockAuditRepo = new(MockAuditRepository)
	suite.mockProjectRepo = new(MockProjectRepository)
	suite.mockPlanRepo = new(MockPlanRepository)
	suite.mockTenancy = new(MockTenancyService)
	suite.service = services.NewWorkflowService(
		suite.mockWorkflowRepo,
		suite.mockAuditRepo,
		suite.mockProjectRepo,
		suite.mockPlanRepo,
		suite.mockTenancy,
		services.NewPolicyService(),
		nil,
	)

	suite.projectID = uuid.NewString()
	suite.actorID = uuid.NewString()
}

func (suite *WorkflowServiceTestSuite) milestoneItem(status domain.WorkflowStatus, approvals ...domain.ApprovalDecision) *domain.WorkflowItem {
	return &domain.WorkflowItem{
		EntityType: domain.EntityMilestone,
		EntityID:   uuid.NewString(),
		ProjectID:  suite.projectID,
		Status:     status,
		Version:    3,
		Approvals:  approvals,
	}
}

func (suite *WorkflowServiceTestSuite) expectAccess(role domain.ProjectRole, source domain.AccessSource) {
	suite.mockTenancy.On("ResolveAccess", mock.Anything, suite.actorID, suite.projectID).
		Return(domain.EffectiveAccess{Role: role, Source: source}, nil).Once()
}

func (suite *WorkflowServiceTestSuite) expectDefaultSettings() {
	suite.mockProjectRepo.On("FindWorkflowSettings", mock.Anything, suite.projectID).
		Return(nil, apperrors.ErrNotFound).Once()
}

func (suite *WorkflowServiceTestSuite) TestTransition_IllegalEdgeIsRejectedAndAudited() {
	ctx := context.Background()
	item := suite.milestoneItem(domain.StatusNotStarted)

	suite.mockWorkflowRepo.On("FindWorkflowItem", ctx, domain.EntityMilestone, item.EntityID).Return(item, nil).Once()
	suite.mockAuditRepo.On("SaveAuditEntry", ctx, mock.MatchedBy(func(e domain.AuditEntry) bool {
		return !e.Authorized && e.FromState == domain.StatusNotStarted && e.ToState == domain.StatusComplete
	})).Return(nil).Once()

	res, err := suite.service.Transition(ctx, portssvc.TransitionRequest{
		EntityType: domain.EntityMilestone,
		EntityID:   item.EntityID,
		ToState:    domain.StatusComplete,
		ActorID:    suite.actorID,
		Version:    item.Version,
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
	suite.Nil(res)
	// The role is never resolved for a move the graph does not allow.
	suite.mockTenancy.AssertNotCalled(suite.T(), "ResolveAccess", mock.Anything, mock.Anything, mock.Anything)
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func (suite *WorkflowServiceTestSuite) TestTransition_ViewerCannotWrite() {
	ctx := context.Background()
	item := suite.milestoneItem(domain.StatusNotStarted)

	suite.mockWorkflowRepo.On("FindWorkflowItem", ctx, domain.EntityMilestone, item.EntityID).Return(item, nil).Once()
	suite.expectAccess(domain.RoleViewer, domain.SourceExplicitMembership)
	suite.mockAuditRepo.On("SaveAuditEntry", ctx, mock.MatchedBy(func(e domain.AuditEntry) bool {
		return !e.Authorized && e.ActorID == suite.actorID
	})).Return(nil).Once()

	_, err := suite.service.Transition(ctx, portssvc.TransitionRequest{
		EntityType: domain.EntityMilestone,
		EntityID:   item.EntityID,
		ToState:    domain.StatusInProgress,
		ActorID:    suite.actorID,
		Version:    item.Version,
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockWorkflowRepo.AssertNotCalled(suite.T(), "ApplyTransition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func (suite *WorkflowServiceTestSuite) TestTransition_DualSignoffFirstApprovalDoesNotAdvance() {
	ctx := context.Background()
	item := suite.milestoneItem(domain.StatusComplete)

	suite.mockWorkflowRepo.On("FindWorkflowItem", ctx, domain.EntityMilestone, item.EntityID).Return(item, nil).Once()
	suite.expectAccess(domain.RoleSupplierPM, domain.SourceExplicitMembership)
	suite.expectDefaultSettings()
	suite.mockWorkflowRepo.On("RecordDecision", ctx, mock.Anything, mock.MatchedBy(func(d domain.ApprovalDecision) bool {
		return d.Role == domain.RoleSupplierPM && d.Decision == domain.DecisionApproved && d.ToState == domain.StatusSignedOff
	}), mock.Anything).Return(nil).Once()

	res, err := suite.service.Transition(ctx, portssvc.TransitionRequest{
		EntityType: domain.EntityMilestone,
		EntityID:   item.EntityID,
		ToState:    domain.StatusSignedOff,
		ActorID:    suite.actorID,
		Version:    item.Version,
	})

	suite.Require().NoError(err)
	suite.False(res.Advanced)
	suite.Equal(domain.StatusComplete, res.Item.Status)
	suite.Len(res.Item.Approvals, 1)
	suite.mockWorkflowRepo.AssertNotCalled(suite.T(), "ApplyTransition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockWorkflowRepo.AssertExpectations(suite.T())
}

func (suite *WorkflowServiceTestSuite) TestTransition_CounterpartyApprovalAdvances() {
	ctx := context.Background()
	existing := domain.ApprovalDecision{
		DecisionID: uuid.NewString(),
		Role:       domain.RoleSupplierPM,
		Decision:   domain.DecisionApproved,
		ToState:    domain.StatusSignedOff,
	}
	item := suite.milestoneItem(domain.StatusComplete, existing)

	suite.mockWorkflowRepo.On("FindWorkflowItem", ctx, domain.EntityMilestone, item.EntityID).Return(item, nil).Once()
	suite.expectAccess(domain.RoleCustomerPM, domain.SourceExplicitMembership)
	suite.expectDefaultSettings()
	suite.mockWorkflowRepo.On("ApplyTransition", ctx, mock.Anything, domain.StatusSignedOff, mock.MatchedBy(func(d *domain.ApprovalDecision) bool {
		return d != nil && d.Role == domain.RoleCustomerPM
	}), mock.Anything).Return(nil).Once()

	res, err := suite.service.Transition(ctx, portssvc.TransitionRequest{
		EntityType: domain.EntityMilestone,
		EntityID:   item.EntityID,
		ToState:    domain.StatusSignedOff,
		ActorID:    suite.actorID,
		Version:    item.Version,
	})

	suite.Require().NoError(err)
	suite.True(res.Advanced)
	suite.Equal(domain.StatusSignedOff, res.Item.Status)
	suite.Equal(int64(4), res.Item.Version)
	suite.mockWorkflowRepo.AssertExpectations(suite.T())
}

func (suite *WorkflowServiceTestSuite) TestTransition_DuplicateRoleApprovalConflicts() {
	ctx := context.Background()
	existing := domain.ApprovalDecision{
		DecisionID: uuid.NewString(),
		Role:       domain.RoleSupplierPM,
		Decision:   domain.DecisionApproved,
		ToState:    domain.StatusSignedOff,
	}
	item := suite.milestoneItem(domain.StatusComplete, existing)

	suite.mockWorkflowRepo.On("FindWorkflowItem", ctx, domain.EntityMilestone, item.EntityID).Return(item, nil).Once()
	suite.expectAccess(domain.RoleSupplierPM, domain.SourceExplicitMembership)
	suite.expectDefaultSettings()

	_, err := suite.service.Transition(ctx, portssvc.TransitionRequest{
		EntityType: domain.EntityMilestone,
		EntityID:   item.EntityID,
		ToState:    domain.StatusSignedOff,
		ActorID:    suite.actorID,
		Version:    item.Version,
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockWorkflowRepo.AssertNotCalled(suite.T(), "RecordDecision", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *WorkflowServiceTestSuite) TestTransition_AdminSubstitutesForOneCounterparty() {
	ctx := context.Background()
	existing := domain.ApprovalDecision{
		DecisionID: uuid.NewString(),
		Role:       domain.RoleSupplierPM,
		Decision:   domain.DecisionApproved,
		ToState:    domain.StatusSignedOff,
	}
	item := suite.milestoneItem(domain.StatusComplete, existing)

	suite.mockWorkflowRepo.On("FindWorkflowItem", ctx, domain.EntityMilestone, item.EntityID).Return(item, nil).Once()
	suite.expectAccess(domain.RoleAdmin, domain.SourceSystemOverride)
	suite.expectDefaultSettings()
	suite.mockWorkflowRepo.On("ApplyTransition", ctx, mock.Anything, domain.StatusSignedOff, mock.MatchedBy(func(d *domain.ApprovalDecision) bool {
		return d != nil && d.Role == domain.RoleAdmin
	}), mock.Anything).Return(nil).Once()

	res, err := suite.service.Transition(ctx, portssvc.TransitionRequest{
		EntityType: domain.EntityMilestone,
		EntityID:   item.EntityID,
		ToState:    domain.StatusSignedOff,
		ActorID:    suite.actorID,
		Version:    item.Version,
	})

	suite.Require().NoError(err)
	suite.True(res.Advanced)
	suite.mockWorkflowRepo.AssertExpectations(suite.T())
}

func (suite *WorkflowServiceTestSuite) TestTransition_AdminAloneCannotSatisfyDualSignoff() {
	ctx := context.Background()
	item := suite.milestoneItem(domain.StatusComplete)

	suite.mockWorkflowRepo.On("FindWorkflowItem", ctx, domain.EntityMilestone, item.EntityID).Return(item, nil).Once()
	suite.expectAccess(domain.RoleAdmin, domain.SourceSystemOverride)
	suite.expectDefaultSettings()
	suite.mockWorkflowRepo.On("RecordDecision", ctx, mock.Anything, mock.MatchedBy(func(d domain.ApprovalDecision) bool {
		return d.Role == domain.RoleAdmin
	}), mock.Anything).Return(nil).Once()

	res, err := suite.service.Transition(ctx, portssvc.TransitionRequest{
		EntityType: domain.EntityMilestone,
		EntityID:   item.EntityID,
		ToState:    domain.StatusSignedOff,
		ActorID:    suite.actorID,
		Version:    item.Version,
	})

	suite.Require().NoError(err)
	suite.False(res.Advanced, "an administrator substitutes for one missing side, never both")
	suite.Equal(domain.StatusComplete, res.Item.Status)
}

func (suite *WorkflowServiceTestSuite) TestTransition_SignoffNotConfigured() {
	ctx := context.Background()
	item := suite.milestoneItem(domain.StatusComplete)
	settings := &domain.WorkflowSettings{
		ProjectID: suite.projectID,
		Rules: map[domain.ApprovalKey]domain.ApprovalRule{
			domain.KeyMilestoneSignoff: {Required: false, Authority: domain.AuthorityNone},
		},
	}

	suite.mockWorkflowRepo.On("FindWorkflowItem", ctx, domain.EntityMilestone, item.EntityID).Return(item, nil).Once()
	suite.expectAccess(domain.RoleSupplierPM, domain.SourceExplicitMembership)
	suite.mockProjectRepo.On("FindWorkflowSettings", ctx, suite.projectID).Return(settings, nil).Once()
	suite.mockAuditRepo.On("SaveAuditEntry", ctx, mock.MatchedBy(func(e domain.AuditEntry) bool {
		return !e.Authorized
	})).Return(nil).Once()

	_, err := suite.service.Transition(ctx, portssvc.TransitionRequest{
		EntityType: domain.EntityMilestone,
		EntityID:   item.EntityID,
		ToState:    domain.StatusSignedOff,
		ActorID:    suite.actorID,
		Version:    item.Version,
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
}

func (suite *WorkflowServiceTestSuite) TestTransition_TimesheetApprovalSingleParty() {
	ctx := context.Background()
	item := &domain.WorkflowItem{
		EntityType: domain.EntityTimesheet,
		EntityID:   uuid.NewString(),
		ProjectID:  suite.projectID,
		Status:     domain.StatusSubmitted,
		Version:    1,
	}

	suite.mockWorkflowRepo.On("FindWorkflowItem", ctx, domain.EntityTimesheet, item.EntityID).Return(item, nil).Once()
	suite.expectAccess(domain.RoleSupplierPM, domain.SourceExplicitMembership)
	suite.expectDefaultSettings()
	suite.mockWorkflowRepo.On("ApplyTransition", ctx, mock.Anything, domain.StatusApproved, mock.MatchedBy(func(d *domain.ApprovalDecision) bool {
		return d != nil && d.Role == domain.RoleSupplierPM && d.Decision == domain.DecisionApproved
	}), mock.Anything).Return(nil).Once()

	res, err := suite.service.Transition(ctx, portssvc.TransitionRequest{
		EntityType: domain.EntityTimesheet,
		EntityID:   item.EntityID,
		ToState:    domain.StatusApproved,
		ActorID:    suite.actorID,
		Version:    item.Version,
	})

	suite.Require().NoError(err)
	suite.True(res.Advanced)
	suite.Equal(domain.StatusApproved, res.Item.Status)
	suite.Len(res.Item.Approvals, 1)
}

func (suite *WorkflowServiceTestSuite) TestTransition_ContributorCannotApproveTimesheet() {
	ctx := context.Background()
	item := &domain.WorkflowItem{
		EntityType: domain.EntityTimesheet,
		EntityID:   uuid.NewString(),
		ProjectID:  suite.projectID,
		Status:     domain.StatusSubmitted,
		Version:    1,
	}

	suite.mockWorkflowRepo.On("FindWorkflowItem", ctx, domain.EntityTimesheet, item.EntityID).Return(item, nil).Once()
	suite.expectAccess(domain.RoleContributor, domain.SourceExplicitMembership)
	suite.expectDefaultSettings()
	suite.mockAuditRepo.On("SaveAuditEntry", ctx, mock.MatchedBy(func(e domain.AuditEntry) bool {
		return !e.Authorized
	})).Return(nil).Once()

	_, err := suite.service.Transition(ctx, portssvc.TransitionRequest{
		EntityType: domain.EntityTimesheet,
		EntityID:   item.EntityID,
		ToState:    domain.StatusApproved,
		ActorID:    suite.actorID,
		Version:    item.Version,
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *WorkflowServiceTestSuite) TestTransition_StaleVersionPassesThrough() {
	ctx := context.Background()
	item := &domain.WorkflowItem{
		EntityType: domain.EntityTimesheet,
		EntityID:   uuid.NewString(),
		ProjectID:  suite.projectID,
		Status:     domain.StatusSubmitted,
		Version:    1,
	}

	suite.mockWorkflowRepo.On("FindWorkflowItem", ctx, domain.EntityTimesheet, item.EntityID).Return(item, nil).Once()
	suite.expectAccess(domain.RoleSupplierPM, domain.SourceExplicitMembership)
	suite.expectDefaultSettings()
	suite.mockWorkflowRepo.On("ApplyTransition", ctx, mock.Anything, domain.StatusApproved, mock.Anything, mock.Anything).
		Return(apperrors.ErrStaleVersion).Once()
	// The in-tx entry rolled back with the write; the attempt is re-audited.
	suite.mockAuditRepo.On("SaveAuditEntry", ctx, mock.MatchedBy(func(e domain.AuditEntry) bool {
		return !e.Authorized && e.ActorID == suite.actorID
	})).Return(nil).Once()

	_, err := suite.service.Transition(ctx, portssvc.TransitionRequest{
		EntityType: domain.EntityTimesheet,
		EntityID:   item.EntityID,
		ToState:    domain.StatusApproved,
		ActorID:    suite.actorID,
		Version:    item.Version,
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrStaleVersion)
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func (suite *WorkflowServiceTestSuite) TestTransition_OutdatedObservationRejected() {
	ctx := context.Background()
	item := &domain.WorkflowItem{
		EntityType: domain.EntityTimesheet,
		EntityID:   uuid.NewString(),
		ProjectID:  suite.projectID,
		Status:     domain.StatusSubmitted,
		Version:    7,
	}

	suite.mockWorkflowRepo.On("FindWorkflowItem", ctx, domain.EntityTimesheet, item.EntityID).Return(item, nil).Once()
	suite.mockAuditRepo.On("SaveAuditEntry", ctx, mock.MatchedBy(func(e domain.AuditEntry) bool {
		return !e.Authorized && e.ActorID == suite.actorID
	})).Return(nil).Once()

	res, err := suite.service.Transition(ctx, portssvc.TransitionRequest{
		EntityType: domain.EntityTimesheet,
		EntityID:   item.EntityID,
		ToState:    domain.StatusApproved,
		ActorID:    suite.actorID,
		Version:    3,
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrStaleVersion)
	suite.Nil(res)
	// An outdated read fails before roles or rules are even consulted.
	suite.mockTenancy.AssertNotCalled(suite.T(), "ResolveAccess", mock.Anything, mock.Anything, mock.Anything)
	suite.mockWorkflowRepo.AssertNotCalled(suite.T(), "ApplyTransition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func (suite *WorkflowServiceTestSuite) TestTransition_CompletionWarnsAboutUnfinishedDeliverables() {
	ctx := context.Background()
	item := suite.milestoneItem(domain.StatusInProgress)
	deliverables := []domain.Deliverable{
		{DeliverableID: "d-1", Name: "API docs", Status: domain.StatusInProgress},
		{DeliverableID: "d-2", Name: "Handover pack", Status: domain.StatusAccepted},
		{DeliverableID: "d-3", Name: "Old scope", Status: domain.StatusDraft, SoftClosed: true},
	}

	suite.mockWorkflowRepo.On("FindWorkflowItem", ctx, domain.EntityMilestone, item.EntityID).Return(item, nil).Once()
	suite.expectAccess(domain.RoleSupplierPM, domain.SourceExplicitMembership)
	suite.expectDefaultSettings()
	suite.mockWorkflowRepo.On("ApplyTransition", ctx, mock.Anything, domain.StatusComplete, mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockPlanRepo.On("ListDeliverablesByMilestone", ctx, item.EntityID).Return(deliverables, nil).Once()

	res, err := suite.service.Transition(ctx, portssvc.TransitionRequest{
		EntityType: domain.EntityMilestone,
		EntityID:   item.EntityID,
		ToState:    domain.StatusComplete,
		ActorID:    suite.actorID,
		Version:    item.Version,
	})

	suite.Require().NoError(err)
	suite.True(res.Advanced)
	// Accepted and soft-closed deliverables are not worth warning about.
	suite.Require().Len(res.Warnings, 1)
	suite.Contains(res.Warnings[0], "d-1")
}

func (suite *WorkflowServiceTestSuite) TestReverseApproval_AdminReturnsItemToDraft() {
	ctx := context.Background()
	item := &domain.WorkflowItem{
		EntityType: domain.EntityExpense,
		EntityID:   uuid.NewString(),
		ProjectID:  suite.projectID,
		Status:     domain.StatusApproved,
		Version:    2,
	}

	suite.mockWorkflowRepo.On("FindWorkflowItem", ctx, domain.EntityExpense, item.EntityID).Return(item, nil).Once()
	suite.expectAccess(domain.RoleAdmin, domain.SourceOrgOverride)
	suite.mockWorkflowRepo.On("ApplyTransition", ctx, mock.Anything, domain.StatusDraft, (*domain.ApprovalDecision)(nil), mock.MatchedBy(func(e domain.AuditEntry) bool {
		return e.Authorized && e.Reason == "administrative reversal: duplicate receipt"
	})).Return(nil).Once()

	res, err := suite.service.ReverseApproval(ctx, domain.EntityExpense, item.EntityID, suite.actorID, "duplicate receipt")

	suite.Require().NoError(err)
	suite.True(res.Advanced)
	suite.Equal(domain.StatusDraft, res.Item.Status)
	suite.Equal(int64(3), res.Item.Version)
	suite.mockWorkflowRepo.AssertExpectations(suite.T())
}

func (suite *WorkflowServiceTestSuite) TestReverseApproval_NonAdminForbidden() {
	ctx := context.Background()
	item := &domain.WorkflowItem{
		EntityType: domain.EntityTimesheet,
		EntityID:   uuid.NewString(),
		ProjectID:  suite.projectID,
		Status:     domain.StatusApproved,
	}

	suite.mockWorkflowRepo.On("FindWorkflowItem", ctx, domain.EntityTimesheet, item.EntityID).Return(item, nil).Once()
	suite.expectAccess(domain.RoleSupplierPM, domain.SourceExplicitMembership)
	suite.mockAuditRepo.On("SaveAuditEntry", ctx, mock.MatchedBy(func(e domain.AuditEntry) bool {
		return !e.Authorized && e.ToState == domain.StatusDraft
	})).Return(nil).Once()

	_, err := suite.service.ReverseApproval(ctx, domain.EntityTimesheet, item.EntityID, suite.actorID, "typo")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockWorkflowRepo.AssertNotCalled(suite.T(), "ApplyTransition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *WorkflowServiceTestSuite) TestReverseApproval_OnlyApprovedItems() {
	ctx := context.Background()
	item := &domain.WorkflowItem{
		EntityType: domain.EntityTimesheet,
		EntityID:   uuid.NewString(),
		ProjectID:  suite.projectID,
		Status:     domain.StatusSubmitted,
	}

	suite.mockWorkflowRepo.On("FindWorkflowItem", ctx, domain.EntityTimesheet, item.EntityID).Return(item, nil).Once()

	_, err := suite.service.ReverseApproval(ctx, domain.EntityTimesheet, item.EntityID, suite.actorID, "oops")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
}

func (suite *WorkflowServiceTestSuite) TestReverseApproval_RejectsUnsupportedEntityType() {
	ctx := context.Background()

	_, err := suite.service.ReverseApproval(ctx, domain.EntityMilestone, uuid.NewString(), suite.actorID, "nope")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockWorkflowRepo.AssertNotCalled(suite.T(), "FindWorkflowItem", mock.Anything, mock.Anything, mock.Anything)
}

func TestWorkflowServiceTestSuite(t *testing.T) {
	suite.Run(t, new(WorkflowServiceTestSuite))
}
