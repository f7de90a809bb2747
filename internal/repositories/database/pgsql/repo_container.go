package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/planlane/project_delivery_app/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		UserRepo:      newPgxUserRepository(dbPool),
		OrgRepo:       newPgxOrgRepository(dbPool),
		ProjectRepo:   newPgxProjectRepository(dbPool),
		PlanRepo:      newPgxPlanRepository(dbPool),
		WorklogRepo:   newPgxWorklogRepository(dbPool),
		WorkflowRepo:  newPgxWorkflowRepository(dbPool),
		BaselineRepo:  newPgxBaselineRepository(dbPool),
		VariationRepo: newPgxVariationRepository(dbPool),
		AuditRepo:     newPgxAuditRepository(dbPool),
	}
}
