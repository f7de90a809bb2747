package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/planlane/project_delivery_app/internal/apperrors"
	"github.com/planlane/project_delivery_app/internal/core/domain"
	portssvc "github.com/planlane/project_delivery_app/internal/core/ports/services"
	"github.com/planlane/project_delivery_app/internal/core/services"
	"github.com/planlane/project_delivery_app/internal/dto"
)

type VariationServiceTestSuite struct {
	suite.Suite
	mockVariationRepo *MockVariationRepository
	mockPlanRepo      *MockPlanRepository
	mockWorkflow      *MockWorkflowService
	mockTenancy       *MockTenancyService
	service           portssvc.VariationSvcFacade

	projectID string
	actorID   string
}

func (suite *VariationServiceTestSuite) SetupTest() {
	suite.mockVariationRepo = new(MockVariationRepository)
	suite.mockPlanRepo = new(MockPlanRepository)
	suite.mockWorkflow = new(MockWorkflowService)
	suite.mockTenancy = new(MockTenancyService)
	suite.service = services.NewVariationService(
		suite.mockVariationRepo,
		suite.mockPlanRepo,
		suite.mockWorkflow,
		suite.mockTenancy,
	)

	suite.projectID = uuid.NewString()
	suite.actorID = uuid.NewString()
}

func (suite *VariationServiceTestSuite) expectPMOnProject(projectID string) {
	suite.mockTenancy.On("RequireRole", mock.Anything, suite.actorID, projectID, mock.Anything).
		Return(domain.EffectiveAccess{Role: domain.RoleSupplierPM, Source: domain.SourceExplicitMembership}, nil).Once()
}

func strPtr(s string) *string { return &s }

func (suite *VariationServiceTestSuite) TestCreateVariation_Success() {
	ctx := context.Background()
	req := dto.CreateVariationRequest{
		Title:     "Extend testing phase",
		Rationale: "Customer requested an extra UAT cycle",
		Diff: []dto.DiffOpDTO{
			{Op: domain.DiffModify, EntityType: domain.EntityMilestone, EntityID: "m-1", Values: &dto.EntityValuesDTO{Name: strPtr("UAT extended")}},
		},
	}

	suite.expectPMOnProject(suite.projectID)
	suite.mockVariationRepo.On("SaveVariation", ctx, mock.MatchedBy(func(v domain.Variation) bool {
		return v.ProjectID == suite.projectID && v.Status == domain.StatusDraft && len(v.Diff) == 1 && v.Version == 1
	})).Return(nil).Once()

	variation, err := suite.service.CreateVariation(ctx, suite.projectID, req, suite.actorID)

	suite.Require().NoError(err)
	suite.NotEmpty(variation.VariationID)
	suite.Equal(domain.StatusDraft, variation.Status)
	suite.mockVariationRepo.AssertExpectations(suite.T())
}

func (suite *VariationServiceTestSuite) TestCreateVariation_InvalidDiff() {
	ctx := context.Background()

	cases := []dto.CreateVariationRequest{
		// Add without a name.
		{Title: "t", Diff: []dto.DiffOpDTO{{Op: domain.DiffAdd, EntityType: domain.EntityMilestone, Values: &dto.EntityValuesDTO{}}}},
		// Deliverable add without a parent milestone.
		{Title: "t", Diff: []dto.DiffOpDTO{{Op: domain.DiffAdd, EntityType: domain.EntityDeliverable, Values: &dto.EntityValuesDTO{Name: strPtr("x")}}}},
		// Modify without a target.
		{Title: "t", Diff: []dto.DiffOpDTO{{Op: domain.DiffModify, EntityType: domain.EntityMilestone, Values: &dto.EntityValuesDTO{Name: strPtr("x")}}}},
		// Remove without a target.
		{Title: "t", Diff: []dto.DiffOpDTO{{Op: domain.DiffRemove, EntityType: domain.EntityDeliverable}}},
		// Timesheets are not plan entities.
		{Title: "t", Diff: []dto.DiffOpDTO{{Op: domain.DiffRemove, EntityType: domain.EntityTimesheet, EntityID: "t-1"}}},
	}

	for _, req := range cases {
		suite.expectPMOnProject(suite.projectID)
		_, err := suite.service.CreateVariation(ctx, suite.projectID, req, suite.actorID)
		suite.Require().Error(err)
		suite.ErrorIs(err, apperrors.ErrValidation)
	}
	suite.mockVariationRepo.AssertNotCalled(suite.T(), "SaveVariation", mock.Anything, mock.Anything)
}

func (suite *VariationServiceTestSuite) TestUpdateVariation_OnlyDrafts() {
	ctx := context.Background()
	variation := &domain.Variation{
		VariationID: uuid.NewString(),
		ProjectID:   suite.projectID,
		Status:      domain.StatusSubmitted,
		Version:     2,
	}

	suite.mockVariationRepo.On("FindVariationByID", ctx, variation.VariationID).Return(variation, nil).Once()
	suite.expectPMOnProject(suite.projectID)

	_, err := suite.service.UpdateVariation(ctx, variation.VariationID, dto.UpdateVariationRequest{Title: strPtr("new"), Version: 2}, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockVariationRepo.AssertNotCalled(suite.T(), "UpdateVariation", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *VariationServiceTestSuite) TestApprove_DelegatesToWorkflow() {
	ctx := context.Background()
	variationID := uuid.NewString()
	submitted := &domain.Variation{VariationID: variationID, ProjectID: suite.projectID, Status: domain.StatusSubmitted, Version: 2}
	approved := &domain.Variation{VariationID: variationID, ProjectID: suite.projectID, Status: domain.StatusApproved, Version: 3}

	// The freshest read supplies the version the workflow guards against.
	suite.mockVariationRepo.On("FindVariationByID", ctx, variationID).Return(submitted, nil).Once()
	suite.mockWorkflow.On("Transition", ctx, portssvc.TransitionRequest{
		EntityType: domain.EntityVariation,
		EntityID:   variationID,
		ToState:    domain.StatusApproved,
		ActorID:    suite.actorID,
		Version:    2,
	}).Return(&portssvc.TransitionResult{Advanced: true}, nil).Once()
	suite.mockVariationRepo.On("FindVariationByID", ctx, variationID).Return(approved, nil).Once()

	variation, err := suite.service.Approve(ctx, variationID, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusApproved, variation.Status)
	suite.mockWorkflow.AssertExpectations(suite.T())
}

func (suite *VariationServiceTestSuite) TestImplement_RequiresApprovedStatus() {
	ctx := context.Background()
	variation := &domain.Variation{
		VariationID: uuid.NewString(),
		ProjectID:   suite.projectID,
		Status:      domain.StatusSubmitted,
	}

	suite.mockVariationRepo.On("FindVariationByID", ctx, variation.VariationID).Return(variation, nil).Once()
	suite.expectPMOnProject(suite.projectID)

	_, err := suite.service.Implement(ctx, variation.VariationID, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrVariationNotApproved)
	suite.mockVariationRepo.AssertNotCalled(suite.T(), "ImplementVariation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *VariationServiceTestSuite) TestImplement_RepoFailureIsPartialApply() {
	ctx := context.Background()
	milestone := &domain.Milestone{MilestoneID: "m-1", ProjectID: suite.projectID, Name: "Build"}
	variation := &domain.Variation{
		VariationID: uuid.NewString(),
		ProjectID:   suite.projectID,
		Status:      domain.StatusApproved,
		Diff: []domain.DiffOp{
			{Op: domain.DiffModify, EntityType: domain.EntityMilestone, EntityID: "m-1", Values: &domain.EntityValues{Name: strPtr("Build v2")}},
		},
	}

	suite.mockVariationRepo.On("FindVariationByID", ctx, variation.VariationID).Return(variation, nil).Once()
	suite.expectPMOnProject(suite.projectID)
	suite.mockPlanRepo.On("FindMilestoneByID", ctx, "m-1").Return(milestone, nil).Once()
	suite.mockVariationRepo.On("ImplementVariation", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(assert.AnError).Once()

	_, err := suite.service.Implement(ctx, variation.VariationID, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrPartialApply)
}

func (suite *VariationServiceTestSuite) TestImplement_Success() {
	ctx := context.Background()
	milestone := &domain.Milestone{MilestoneID: "m-1", ProjectID: suite.projectID, Name: "Build"}
	variation := &domain.Variation{
		VariationID: uuid.NewString(),
		ProjectID:   suite.projectID,
		Status:      domain.StatusApproved,
		Diff: []domain.DiffOp{
			{Op: domain.DiffModify, EntityType: domain.EntityMilestone, EntityID: "m-1", Values: &domain.EntityValues{Name: strPtr("Build v2")}},
		},
	}
	implemented := &domain.Variation{VariationID: variation.VariationID, ProjectID: suite.projectID, Status: domain.StatusImplemented}

	suite.mockVariationRepo.On("FindVariationByID", ctx, variation.VariationID).Return(variation, nil).Once()
	suite.expectPMOnProject(suite.projectID)
	suite.mockPlanRepo.On("FindMilestoneByID", ctx, "m-1").Return(milestone, nil).Once()
	suite.mockVariationRepo.On("ImplementVariation", ctx, mock.Anything, mock.MatchedBy(func(m domain.PlanMutation) bool {
		return len(m.UpdateMilestones) == 1 &&
			m.UpdateMilestones[0].Name == "Build v2" &&
			m.UpdateMilestones[0].Baseline != nil
	}), mock.Anything).Return(nil).Once()
	suite.mockVariationRepo.On("FindVariationByID", ctx, variation.VariationID).Return(implemented, nil).Once()

	result, err := suite.service.Implement(ctx, variation.VariationID, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusImplemented, result.Status)
	suite.mockVariationRepo.AssertExpectations(suite.T())
}

func (suite *VariationServiceTestSuite) TestImplement_RemovalOfBaselinedMilestoneSoftCloses() {
	ctx := context.Background()
	milestone := &domain.Milestone{
		MilestoneID: "m-1",
		ProjectID:   suite.projectID,
		Name:        "Legacy scope",
		Baseline:    &domain.BaselineSnapshot{BaselineID: "b-1"},
	}
	variation := &domain.Variation{
		VariationID: uuid.NewString(),
		ProjectID:   suite.projectID,
		Status:      domain.StatusApproved,
		Diff: []domain.DiffOp{
			{Op: domain.DiffRemove, EntityType: domain.EntityMilestone, EntityID: "m-1"},
		},
	}
	implemented := &domain.Variation{VariationID: variation.VariationID, Status: domain.StatusImplemented}

	suite.mockVariationRepo.On("FindVariationByID", ctx, variation.VariationID).Return(variation, nil).Once()
	suite.expectPMOnProject(suite.projectID)
	suite.mockPlanRepo.On("FindMilestoneByID", ctx, "m-1").Return(milestone, nil).Once()
	suite.mockVariationRepo.On("ImplementVariation", ctx, mock.Anything, mock.MatchedBy(func(m domain.PlanMutation) bool {
		return len(m.RemoveMilestoneIDs) == 0 &&
			len(m.UpdateMilestones) == 1 &&
			m.UpdateMilestones[0].SoftClosed
	}), mock.Anything).Return(nil).Once()
	suite.mockVariationRepo.On("FindVariationByID", ctx, variation.VariationID).Return(implemented, nil).Once()

	_, err := suite.service.Implement(ctx, variation.VariationID, suite.actorID)

	suite.Require().NoError(err)
	suite.mockVariationRepo.AssertExpectations(suite.T())
}

func (suite *VariationServiceTestSuite) TestImplement_RemovalOfUnbaselinedMilestoneDeletes() {
	ctx := context.Background()
	milestone := &domain.Milestone{MilestoneID: "m-1", ProjectID: suite.projectID, Name: "Never frozen"}
	variation := &domain.Variation{
		VariationID: uuid.NewString(),
		ProjectID:   suite.projectID,
		Status:      domain.StatusApproved,
		Diff: []domain.DiffOp{
			{Op: domain.DiffRemove, EntityType: domain.EntityMilestone, EntityID: "m-1"},
		},
	}
	implemented := &domain.Variation{VariationID: variation.VariationID, Status: domain.StatusImplemented}

	suite.mockVariationRepo.On("FindVariationByID", ctx, variation.VariationID).Return(variation, nil).Once()
	suite.expectPMOnProject(suite.projectID)
	suite.mockPlanRepo.On("FindMilestoneByID", ctx, "m-1").Return(milestone, nil).Once()
	suite.mockVariationRepo.On("ImplementVariation", ctx, mock.Anything, mock.MatchedBy(func(m domain.PlanMutation) bool {
		return len(m.UpdateMilestones) == 0 && len(m.RemoveMilestoneIDs) == 1 && m.RemoveMilestoneIDs[0] == "m-1"
	}), mock.Anything).Return(nil).Once()
	suite.mockVariationRepo.On("FindVariationByID", ctx, variation.VariationID).Return(implemented, nil).Once()

	_, err := suite.service.Implement(ctx, variation.VariationID, suite.actorID)

	suite.Require().NoError(err)
}

func (suite *VariationServiceTestSuite) TestGetVariationByID_OutsiderGetsNotFound() {
	ctx := context.Background()
	variation := &domain.Variation{VariationID: uuid.NewString(), ProjectID: suite.projectID}

	suite.mockVariationRepo.On("FindVariationByID", ctx, variation.VariationID).Return(variation, nil).Once()
	suite.mockTenancy.On("ResolveAccess", ctx, suite.actorID, suite.projectID).
		Return(domain.EffectiveAccess{Role: domain.RoleNone, Source: domain.SourceDenied}, nil).Once()

	_, err := suite.service.GetVariationByID(ctx, variation.VariationID, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestVariationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(VariationServiceTestSuite))
}
