package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/planlane/project_delivery_app/internal/core/domain"
	portssvc "github.com/planlane/project_delivery_app/internal/core/ports/services"
)

// Shared hand-written mocks for the service test suites in this package.

// --- MockUserRepository ---

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	var users []domain.User
	if args.Get(0) != nil {
		users = args.Get(0).([]domain.User)
	}
	return users, args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) UpdateRefreshToken(ctx context.Context, userID string, tokenHash *string, expiry *time.Time) error {
	return m.Called(ctx, userID, tokenHash, expiry).Error(0)
}

func (m *MockUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time, deletedBy string) error {
	return m.Called(ctx, userID, deletedAt, deletedBy).Error(0)
}

// --- MockOrgRepository ---

type MockOrgRepository struct {
	mock.Mock
}

func (m *MockOrgRepository) FindOrganisationByID(ctx context.Context, organisationID string) (*domain.Organisation, error) {
	args := m.Called(ctx, organisationID)
	var org *domain.Organisation
	if args.Get(0) != nil {
		org = args.Get(0).(*domain.Organisation)
	}
	return org, args.Error(1)
}

func (m *MockOrgRepository) ListOrganisationsByUserID(ctx context.Context, userID string) ([]domain.Organisation, error) {
	args := m.Called(ctx, userID)
	var orgs []domain.Organisation
	if args.Get(0) != nil {
		orgs = args.Get(0).([]domain.Organisation)
	}
	return orgs, args.Error(1)
}

func (m *MockOrgRepository) SaveOrganisation(ctx context.Context, org domain.Organisation) error {
	return m.Called(ctx, org).Error(0)
}

func (m *MockOrgRepository) UpsertOrgMembership(ctx context.Context, membership domain.OrgMembership) error {
	return m.Called(ctx, membership).Error(0)
}

func (m *MockOrgRepository) FindOrgMembership(ctx context.Context, userID, organisationID string) (*domain.OrgMembership, error) {
	args := m.Called(ctx, userID, organisationID)
	var membership *domain.OrgMembership
	if args.Get(0) != nil {
		membership = args.Get(0).(*domain.OrgMembership)
	}
	return membership, args.Error(1)
}

func (m *MockOrgRepository) ListOrgMembers(ctx context.Context, organisationID string) ([]domain.OrgMembership, error) {
	args := m.Called(ctx, organisationID)
	var members []domain.OrgMembership
	if args.Get(0) != nil {
		members = args.Get(0).([]domain.OrgMembership)
	}
	return members, args.Error(1)
}

func (m *MockOrgRepository) RemoveOrgMembership(ctx context.Context, userID, organisationID string) error {
	return m.Called(ctx, userID, organisationID).Error(0)
}

// --- MockProjectRepository ---

type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) FindProjectByID(ctx context.Context, projectID string) (*domain.Project, error) {
	args := m.Called(ctx, projectID)
	var project *domain.Project
	if args.Get(0) != nil {
		project = args.Get(0).(*domain.Project)
	}
	return project, args.Error(1)
}

func (m *MockProjectRepository) ListProjectsByOrganisation(ctx context.Context, organisationID string) ([]domain.Project, error) {
	args := m.Called(ctx, organisationID)
	var projects []domain.Project
	if args.Get(0) != nil {
		projects = args.Get(0).([]domain.Project)
	}
	return projects, args.Error(1)
}

func (m *MockProjectRepository) ListProjectsByUserID(ctx context.Context, userID string) ([]domain.Project, error) {
	args := m.Called(ctx, userID)
	var projects []domain.Project
	if args.Get(0) != nil {
		projects = args.Get(0).([]domain.Project)
	}
	return projects, args.Error(1)
}

func (m *MockProjectRepository) SaveProject(ctx context.Context, project domain.Project) error {
	return m.Called(ctx, project).Error(0)
}

func (m *MockProjectRepository) UpdateProjectStatus(ctx context.Context, projectID string, status domain.ProjectStatus, updatedBy string, expectedVersion int64) error {
	return m.Called(ctx, projectID, status, updatedBy, expectedVersion).Error(0)
}

func (m *MockProjectRepository) UpsertProjectMembership(ctx context.Context, membership domain.ProjectMembership) error {
	return m.Called(ctx, membership).Error(0)
}

func (m *MockProjectRepository) FindProjectMembership(ctx context.Context, userID, projectID string) (*domain.ProjectMembership, error) {
	args := m.Called(ctx, userID, projectID)
	var membership *domain.ProjectMembership
	if args.Get(0) != nil {
		membership = args.Get(0).(*domain.ProjectMembership)
	}
	return membership, args.Error(1)
}

func (m *MockProjectRepository) ListProjectMembers(ctx context.Context, projectID string) ([]domain.ProjectMembership, error) {
	args := m.Called(ctx, projectID)
	var members []domain.ProjectMembership
	if args.Get(0) != nil {
		members = args.Get(0).([]domain.ProjectMembership)
	}
	return members, args.Error(1)
}

func (m *MockProjectRepository) RemoveProjectMembership(ctx context.Context, userID, projectID string) error {
	return m.Called(ctx, userID, projectID).Error(0)
}

func (m *MockProjectRepository) FindWorkflowSettings(ctx context.Context, projectID string) (*domain.WorkflowSettings, error) {
	args := m.Called(ctx, projectID)
	var settings *domain.WorkflowSettings
	if args.Get(0) != nil {
		settings = args.Get(0).(*domain.WorkflowSettings)
	}
	return settings, args.Error(1)
}

func (m *MockProjectRepository) SaveWorkflowSettings(ctx context.Context, settings domain.WorkflowSettings) error {
	return m.Called(ctx, settings).Error(0)
}

// --- MockPlanRepository ---

type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) FindComponentByID(ctx context.Context, componentID string) (*domain.Component, error) {
	args := m.Called(ctx, componentID)
	var component *domain.Component
	if args.Get(0) != nil {
		component = args.Get(0).(*domain.Component)
	}
	return component, args.Error(1)
}

func (m *MockPlanRepository) ListComponentsByProject(ctx context.Context, projectID string) ([]domain.Component, error) {
	args := m.Called(ctx, projectID)
	var components []domain.Component
	if args.Get(0) != nil {
		components = args.Get(0).([]domain.Component)
	}
	return components, args.Error(1)
}

func (m *MockPlanRepository) FindMilestoneByID(ctx context.Context, milestoneID string) (*domain.Milestone, error) {
	args := m.Called(ctx, milestoneID)
	var milestone *domain.Milestone
	if args.Get(0) != nil {
		milestone = args.Get(0).(*domain.Milestone)
	}
	return milestone, args.Error(1)
}

func (m *MockPlanRepository) ListMilestonesByProject(ctx context.Context, projectID string) ([]domain.Milestone, error) {
	args := m.Called(ctx, projectID)
	var milestones []domain.Milestone
	if args.Get(0) != nil {
		milestones = args.Get(0).([]domain.Milestone)
	}
	return milestones, args.Error(1)
}

func (m *MockPlanRepository) FindDeliverableByID(ctx context.Context, deliverableID string) (*domain.Deliverable, error) {
	args := m.Called(ctx, deliverableID)
	var deliverable *domain.Deliverable
	if args.Get(0) != nil {
		deliverable = args.Get(0).(*domain.Deliverable)
	}
	return deliverable, args.Error(1)
}

func (m *MockPlanRepository) ListDeliverablesByProject(ctx context.Context, projectID string) ([]domain.Deliverable, error) {
	args := m.Called(ctx, projectID)
	var deliverables []domain.Deliverable
	if args.Get(0) != nil {
		deliverables = args.Get(0).([]domain.Deliverable)
	}
	return deliverables, args.Error(1)
}

func (m *MockPlanRepository) ListDeliverablesByMilestone(ctx context.Context, milestoneID string) ([]domain.Deliverable, error) {
	args := m.Called(ctx, milestoneID)
	var deliverables []domain.Deliverable
	if args.Get(0) != nil {
		deliverables = args.Get(0).([]domain.Deliverable)
	}
	return deliverables, args.Error(1)
}

func (m *MockPlanRepository) SaveComponent(ctx context.Context, component domain.Component) error {
	return m.Called(ctx, component).Error(0)
}

func (m *MockPlanRepository) SaveMilestone(ctx context.Context, milestone domain.Milestone) error {
	return m.Called(ctx, milestone).Error(0)
}

func (m *MockPlanRepository) UpdateMilestone(ctx context.Context, milestone domain.Milestone, expectedVersion int64) error {
	return m.Called(ctx, milestone, expectedVersion).Error(0)
}

func (m *MockPlanRepository) DeleteMilestone(ctx context.Context, milestoneID string) error {
	return m.Called(ctx, milestoneID).Error(0)
}

func (m *MockPlanRepository) SaveDeliverable(ctx context.Context, deliverable domain.Deliverable) error {
	return m.Called(ctx, deliverable).Error(0)
}

func (m *MockPlanRepository) UpdateDeliverable(ctx context.Context, deliverable domain.Deliverable, expectedVersion int64) error {
	return m.Called(ctx, deliverable, expectedVersion).Error(0)
}

func (m *MockPlanRepository) DeleteDeliverable(ctx context.Context, deliverableID string) error {
	return m.Called(ctx, deliverableID).Error(0)
}

// --- MockWorkflowRepository ---

type MockWorkflowRepository struct {
	mock.Mock
}

func (m *MockWorkflowRepository) FindWorkflowItem(ctx context.Context, entityType domain.EntityType, entityID string) (*domain.WorkflowItem, error) {
	args := m.Called(ctx, entityType, entityID)
	var item *domain.WorkflowItem
	if args.Get(0) != nil {
		item = args.Get(0).(*domain.WorkflowItem)
	}
	return item, args.Error(1)
}

func (m *MockWorkflowRepository) ApplyTransition(ctx context.Context, item domain.WorkflowItem, toState domain.WorkflowStatus, decision *domain.ApprovalDecision, entry domain.AuditEntry) error {
	return m.Called(ctx, item, toState, decision, entry).Error(0)
}

func (m *MockWorkflowRepository) RecordDecision(ctx context.Context, item domain.WorkflowItem, decision domain.ApprovalDecision, entry domain.AuditEntry) error {
	return m.Called(ctx, item, decision, entry).Error(0)
}

// --- MockAuditRepository ---

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) SaveAuditEntry(ctx context.Context, entry domain.AuditEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockAuditRepository) ListAuditByProject(ctx context.Context, projectID string, limit int, nextToken *string) ([]domain.AuditEntry, *string, error) {
	args := m.Called(ctx, projectID, limit, nextToken)
	var entries []domain.AuditEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]domain.AuditEntry)
	}
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	return entries, next, args.Error(2)
}

func (m *MockAuditRepository) ListAuditByEntity(ctx context.Context, entityType domain.EntityType, entityID string) ([]domain.AuditEntry, error) {
	args := m.Called(ctx, entityType, entityID)
	var entries []domain.AuditEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]domain.AuditEntry)
	}
	return entries, args.Error(1)
}

// --- MockBaselineRepository ---

type MockBaselineRepository struct {
	mock.Mock
}

func (m *MockBaselineRepository) FindBaselineByProject(ctx context.Context, projectID string) (*domain.Baseline, error) {
	args := m.Called(ctx, projectID)
	var baseline *domain.Baseline
	if args.Get(0) != nil {
		baseline = args.Get(0).(*domain.Baseline)
	}
	return baseline, args.Error(1)
}

func (m *MockBaselineRepository) CommitBaseline(ctx context.Context, baseline domain.Baseline, milestones []domain.Milestone, deliverables []domain.Deliverable) error {
	return m.Called(ctx, baseline, milestones, deliverables).Error(0)
}

// --- MockVariationRepository ---

type MockVariationRepository struct {
	mock.Mock
}

func (m *MockVariationRepository) FindVariationByID(ctx context.Context, variationID string) (*domain.Variation, error) {
	args := m.Called(ctx, variationID)
	var variation *domain.Variation
	if args.Get(0) != nil {
		variation = args.Get(0).(*domain.Variation)
	}
	return variation, args.Error(1)
}

func (m *MockVariationRepository) ListVariationsByProject(ctx context.Context, projectID string) ([]domain.Variation, error) {
	args := m.Called(ctx, projectID)
	var variations []domain.Variation
	if args.Get(0) != nil {
		variations = args.Get(0).([]domain.Variation)
	}
	return variations, args.Error(1)
}

func (m *MockVariationRepository) SaveVariation(ctx context.Context, variation domain.Variation) error {
	return m.Called(ctx, variation).Error(0)
}

func (m *MockVariationRepository) UpdateVariation(ctx context.Context, variation domain.Variation, expectedVersion int64) error {
	return m.Called(ctx, variation, expectedVersion).Error(0)
}

func (m *MockVariationRepository) ImplementVariation(ctx context.Context, variation domain.Variation, mutation domain.PlanMutation, entry domain.AuditEntry) error {
	return m.Called(ctx, variation, mutation, entry).Error(0)
}

// --- MockTenancyService ---

type MockTenancyService struct {
	mock.Mock
}

func (m *MockTenancyService) ResolveAccess(ctx context.Context, userID, projectID string) (domain.EffectiveAccess, error) {
	args := m.Called(ctx, userID, projectID)
	return args.Get(0).(domain.EffectiveAccess), args.Error(1)
}

func (m *MockTenancyService) RequireRole(ctx context.Context, userID, projectID string, allowed ...domain.ProjectRole) (domain.EffectiveAccess, error) {
	args := m.Called(ctx, userID, projectID, allowed)
	return args.Get(0).(domain.EffectiveAccess), args.Error(1)
}

// --- MockWorkflowService ---

type MockWorkflowService struct {
	mock.Mock
}

func (m *MockWorkflowService) Transition(ctx context.Context, req portssvc.TransitionRequest) (*portssvc.TransitionResult, error) {
	args := m.Called(ctx, req)
	var res *portssvc.TransitionResult
	if args.Get(0) != nil {
		res = args.Get(0).(*portssvc.TransitionResult)
	}
	return res, args.Error(1)
}

func (m *MockWorkflowService) ReverseApproval(ctx context.Context, entityType domain.EntityType, entityID, actorID, reason string) (*portssvc.TransitionResult, error) {
	args := m.Called(ctx, entityType, entityID, actorID, reason)
	var res *portssvc.TransitionResult
	if args.Get(0) != nil {
		res = args.Get(0).(*portssvc.TransitionResult)
	}
	return res, args.Error(1)
}
