package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/planlane/project_delivery_app/internal/apperrors"
	"github.com/planlane/project_delivery_app/internal/core/domain"
	portssvc "github.com/planlane/project_delivery_app/internal/core/ports/services"
	"github.com/planlane/project_delivery_app/internal/core/services"
)

type BaselineServiceTestSuite struct {
	suite.Suite
	mockBaselineRepo *MockBaselineRepository
	mockPlanRepo     *MockPlanRepository
	mockProjectRepo  *MockProjectRepository
	mockTenancy      *MockTenancyService
	service          portssvc.BaselineSvcFacade

	projectID string
	actorID   string
}

func (suite *BaselineServiceTestSuite) SetupTest() {
	suite.mockBaselineRepo = new(MockBaselineRepository)
	suite.mockPlanRepo = new(MockPlanRepository)
	suite.mockProjectRepo = new(MockProjectRepository)
	suite.mockTenancy = new(MockTenancyService)
	suite.service = services.NewBaselineService(
		suite.mockBaselineRepo,
		suite.mockPlanRepo,
		suite.mockProjectRepo,
		suite.mockTenancy,
		services.NewPolicyService(),
	)

	suite.projectID = uuid.NewString()
	suite.actorID = uuid.NewString()
}

func (suite *BaselineServiceTestSuite) expectPMAccess(role domain.ProjectRole) {
	suite.mockTenancy.On("RequireRole", mock.Anything, suite.actorID, suite.projectID,
		[]domain.ProjectRole{domain.RoleSupplierPM, domain.RoleCustomerPM}).
		Return(domain.EffectiveAccess{Role: role, Source: domain.SourceExplicitMembership}, nil).Once()
}

func (suite *BaselineServiceTestSuite) TestCommitBaseline_Success() {
	ctx := context.Background()
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	due := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	milestones := []domain.Milestone{
		{MilestoneID: "m-1", ProjectID: suite.projectID, EndDate: &end, EffortHours: decimal.NewFromInt(100), Value: decimal.NewFromInt(9000)},
	}
	deliverables := []domain.Deliverable{
		{DeliverableID: "d-1", ProjectID: suite.projectID, MilestoneID: "m-1", DueDate: &due, Value: decimal.NewFromInt(2000)},
	}

	suite.expectPMAccess(domain.RoleSupplierPM)
	suite.mockProjectRepo.On("FindWorkflowSettings", ctx, suite.projectID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockBaselineRepo.On("FindBaselineByProject", ctx, suite.projectID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockPlanRepo.On("ListMilestonesByProject", ctx, suite.projectID).Return(milestones, nil).Once()
	suite.mockPlanRepo.On("ListDeliverablesByProject", ctx, suite.projectID).Return(deliverables, nil).Once()
	suite.mockBaselineRepo.On("CommitBaseline", ctx,
		mock.MatchedBy(func(b domain.Baseline) bool {
			return b.ProjectID == suite.projectID && b.CommittedBy == suite.actorID && b.BaselineID != ""
		}),
		mock.MatchedBy(func(ms []domain.Milestone) bool {
			return len(ms) == 1 && ms[0].Baseline != nil && ms[0].Baseline.EndDate.Equal(end)
		}),
		mock.MatchedBy(func(ds []domain.Deliverable) bool {
			return len(ds) == 1 && ds[0].Baseline != nil && ds[0].Baseline.DueDate.Equal(due)
		}),
	).Return(nil).Once()

	baselineID, err := suite.service.CommitBaseline(ctx, suite.projectID, suite.actorID)

	suite.Require().NoError(err)
	suite.NotEmpty(baselineID)
	suite.mockBaselineRepo.AssertExpectations(suite.T())
}

func (suite *BaselineServiceTestSuite) TestCommitBaseline_AlreadyBaselined() {
	ctx := context.Background()
	existing := &domain.Baseline{BaselineID: "b-1", ProjectID: suite.projectID}

	suite.expectPMAccess(domain.RoleCustomerPM)
	suite.mockProjectRepo.On("FindWorkflowSettings", ctx, suite.projectID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockBaselineRepo.On("FindBaselineByProject", ctx, suite.projectID).Return(existing, nil).Once()

	_, err := suite.service.CommitBaseline(ctx, suite.projectID, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAlreadyBaselined)
	suite.mockBaselineRepo.AssertNotCalled(suite.T(), "CommitBaseline", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BaselineServiceTestSuite) TestCommitBaseline_EmptyPlanRejected() {
	ctx := context.Background()

	suite.expectPMAccess(domain.RoleSupplierPM)
	suite.mockProjectRepo.On("FindWorkflowSettings", ctx, suite.projectID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockBaselineRepo.On("FindBaselineByProject", ctx, suite.projectID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockPlanRepo.On("ListMilestonesByProject", ctx, suite.projectID).Return([]domain.Milestone{}, nil).Once()
	suite.mockPlanRepo.On("ListDeliverablesByProject", ctx, suite.projectID).Return([]domain.Deliverable{}, nil).Once()

	_, err := suite.service.CommitBaseline(ctx, suite.projectID, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *BaselineServiceTestSuite) TestCommitBaseline_RuleCanForbidARole() {
	ctx := context.Background()
	settings := &domain.WorkflowSettings{
		ProjectID: suite.projectID,
		Rules: map[domain.ApprovalKey]domain.ApprovalRule{
			domain.KeyMilestoneBaseline: {Required: true, Authority: domain.AuthoritySupplierOnly},
		},
	}

	suite.expectPMAccess(domain.RoleCustomerPM)
	suite.mockProjectRepo.On("FindWorkflowSettings", ctx, suite.projectID).Return(settings, nil).Once()

	_, err := suite.service.CommitBaseline(ctx, suite.projectID, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *BaselineServiceTestSuite) TestVarianceReport_OnlyBaselinedEntities() {
	ctx := context.Background()
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	slipped := time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC)
	milestones := []domain.Milestone{
		{MilestoneID: "m-1", EndDate: &slipped, EffortHours: decimal.NewFromInt(100), Value: decimal.NewFromInt(9000),
			Baseline: &domain.BaselineSnapshot{BaselineID: "b-1", EndDate: &end, EffortHours: decimal.NewFromInt(90), Value: decimal.NewFromInt(9000)}},
		{MilestoneID: "m-2"},
	}

	suite.mockTenancy.On("ResolveAccess", ctx, suite.actorID, suite.projectID).
		Return(domain.EffectiveAccess{Role: domain.RoleViewer, Source: domain.SourceExplicitMembership}, nil).Once()
	suite.mockPlanRepo.On("ListMilestonesByProject", ctx, suite.projectID).Return(milestones, nil).Once()
	suite.mockPlanRepo.On("ListDeliverablesByProject", ctx, suite.projectID).Return([]domain.Deliverable{}, nil).Once()

	report, err := suite.service.VarianceReport(ctx, suite.projectID, suite.actorID)

	suite.Require().NoError(err)
	suite.Require().Len(report, 1)
	suite.Equal("m-1", report[0].EntityID)
	suite.Equal(2, report[0].ScheduleDeltaDays)
	suite.True(report[0].Breach)
}

func (suite *BaselineServiceTestSuite) TestVarianceReport_OutsiderGetsNotFound() {
	ctx := context.Background()

	suite.mockTenancy.On("ResolveAccess", ctx, suite.actorID, suite.projectID).
		Return(domain.EffectiveAccess{Role: domain.RoleNone, Source: domain.SourceDenied}, nil).Once()

	_, err := suite.service.VarianceReport(ctx, suite.projectID, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockPlanRepo.AssertNotCalled(suite.T(), "ListMilestonesByProject", mock.Anything, mock.Anything)
}

func (suite *BaselineServiceTestSuite) TestDetectBreach_DueOnBaselineEndIsNoBreach() {
	ctx := context.Background()
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	milestone := &domain.Milestone{
		MilestoneID: "m-1", ProjectID: suite.projectID,
		Baseline: &domain.BaselineSnapshot{BaselineID: "b-1", EndDate: &end},
	}
	deliverables := []domain.Deliverable{
		{DeliverableID: "d-1", DueDate: &end},
	}

	suite.mockPlanRepo.On("FindMilestoneByID", ctx, "m-1").Return(milestone, nil).Once()
	suite.mockPlanRepo.On("ListDeliverablesByMilestone", ctx, "m-1").Return(deliverables, nil).Once()

	breach, err := suite.service.DetectBreach(ctx, "m-1")

	suite.Require().NoError(err)
	suite.Nil(breach)
}

func (suite *BaselineServiceTestSuite) TestDetectBreach_OneDayOver() {
	ctx := context.Background()
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	over := end.AddDate(0, 0, 1)
	componentID := "c-2"
	parentID := "c-1"
	milestone := &domain.Milestone{
		MilestoneID: "m-1", ProjectID: suite.projectID, ComponentID: &componentID,
		Baseline: &domain.BaselineSnapshot{BaselineID: "b-1", EndDate: &end},
	}
	deliverables := []domain.Deliverable{
		{DeliverableID: "d-1", DueDate: &over},
		{DeliverableID: "d-2", DueDate: &end},
		{DeliverableID: "d-3", DueDate: &over, SoftClosed: true},
		{DeliverableID: "d-4"},
	}
	components := []domain.Component{
		{ComponentID: parentID, ProjectID: suite.projectID},
		{ComponentID: componentID, ProjectID: suite.projectID, ParentComponentID: &parentID},
	}

	suite.mockPlanRepo.On("FindMilestoneByID", ctx, "m-1").Return(milestone, nil).Once()
	suite.mockPlanRepo.On("ListDeliverablesByMilestone", ctx, "m-1").Return(deliverables, nil).Once()
	suite.mockPlanRepo.On("ListComponentsByProject", ctx, suite.projectID).Return(components, nil).Once()

	breach, err := suite.service.DetectBreach(ctx, "m-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(breach)
	suite.Equal(1, breach.DaysOver)
	suite.Equal([]string{"d-1"}, breach.BreachedChildren)
	suite.True(breach.WorstDueDate.Equal(over))
	// Innermost component first, then its ancestors.
	suite.Equal([]string{"c-2", "c-1"}, breach.AtRiskComponents)
}

func (suite *BaselineServiceTestSuite) TestDetectBreach_UnbaselinedMilestone() {
	ctx := context.Background()
	milestone := &domain.Milestone{MilestoneID: "m-1", ProjectID: suite.projectID}

	suite.mockPlanRepo.On("FindMilestoneByID", ctx, "m-1").Return(milestone, nil).Once()

	breach, err := suite.service.DetectBreach(ctx, "m-1")

	suite.Require().NoError(err)
	suite.Nil(breach)
	suite.mockPlanRepo.AssertNotCalled(suite.T(), "ListDeliverablesByMilestone", mock.Anything, mock.Anything)
}

func TestBaselineServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BaselineServiceTestSuite))
}
