package services

import (
	portsrepo "github.com/planlane/project_delivery_app/internal/core/ports/repositories"
	portssvc "github.com/planlane/project_delivery_app/internal/core/ports/services"
	"github.com/planlane/project_delivery_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly
// initialized dependencies.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Tenancy and policy come first since nearly every other service
	// authorizes through them.
	container.Tenancy = NewTenancyService(repos.UserRepo, repos.OrgRepo, repos.ProjectRepo)
	container.Policy = NewPolicyService()

	container.User = NewUserService(repos.UserRepo)
	container.Org = NewOrgService(repos.OrgRepo, repos.UserRepo)
	container.Project = NewProjectService(repos.ProjectRepo, repos.OrgRepo, repos.UserRepo, container.Tenancy)
	container.Plan = NewPlanService(repos.PlanRepo, repos.BaselineRepo, container.Tenancy)
	container.Worklog = NewWorklogService(repos.WorklogRepo, container.Tenancy)

	notifier := NewLogNotifier()
	container.Workflow = NewWorkflowService(
		repos.WorkflowRepo,
		repos.AuditRepo,
		repos.ProjectRepo,
		repos.PlanRepo,
		container.Tenancy,
		container.Policy,
		notifier,
	)

	container.Audit = NewAuditService(repos.AuditRepo, repos.WorkflowRepo, container.Tenancy)
	container.Baseline = NewBaselineService(repos.BaselineRepo, repos.PlanRepo, repos.ProjectRepo, container.Tenancy, container.Policy)
	container.Variation = NewVariationService(repos.VariationRepo, repos.PlanRepo, container.Workflow, container.Tenancy)

	container.TokenService = NewTokenService(cfg, container.User)
	container.GoogleOAuthHandler = NewGoogleOAuthHandlerService(cfg)

	return container
}
