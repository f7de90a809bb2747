package dto

import (
	"time"

	"github.com/planlane/project_delivery_app/internal/core/domain"
)

// --- Project DTOs ---

// CreateProjectRequest defines data for creating a new project.
type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=128"`
	Description string `json:"description"`
}

// UpdateProjectStatusRequest moves a project through its lifecycle.
type UpdateProjectStatusRequest struct {
	Status  domain.ProjectStatus `json:"status" binding:"required,oneof=ACTIVE ON_HOLD COMPLETED ARCHIVED"`
	Version int64                `json:"version" binding:"required"`
}

// ProjectResponse defines data returned for a project.
type ProjectResponse struct {
	ProjectID      string               `json:"projectID"`
	OrganisationID string               `json:"organisationID"`
	Name           string               `json:"name"`
	Description    string               `json:"description"`
	Status         domain.ProjectStatus `json:"status"`
	Version        int64                `json:"version"`
	CreatedAt      time.Time            `json:"createdAt"`
	CreatedBy      string               `json:"createdBy"`
}

// ToProjectResponse converts domain.Project to DTO.
func ToProjectResponse(p *domain.Project) ProjectResponse {
	return ProjectResponse{
		ProjectID:      p.ProjectID,
		OrganisationID: p.OrganisationID,
		Name:           p.Name,
		Description:    p.Description,
		Status:         p.Status,
		Version:        p.Version,
		CreatedAt:      p.CreatedAt,
		CreatedBy:      p.CreatedBy,
	}
}

// ListProjectsResponse wraps a list of projects.
type ListProjectsResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

// ToListProjectsResponse converts a slice of domain.Project to DTO.
func ToListProjectsResponse(ps []domain.Project) ListProjectsResponse {
	list := make([]ProjectResponse, len(ps))
	for i, p := range ps {
		list[i] = ToProjectResponse(&p)
	}
	return ListProjectsResponse{Projects: list}
}

// --- Membership DTOs ---

// AddProjectMemberRequest defines data for adding a user to a project.
type AddProjectMemberRequest struct {
	UserID string             `json:"userID" binding:"required"`
	Role   domain.ProjectRole `json:"role" binding:"required,oneof=SUPPLIER_PM CUSTOMER_PM SUPPLIER_FINANCE CUSTOMER_FINANCE CONTRIBUTOR VIEWER"`
}

// ProjectMemberResponse defines data returned about a project membership.
type ProjectMemberResponse struct {
	UserID    string             `json:"userID"`
	ProjectID string             `json:"projectID"`
	Role      domain.ProjectRole `json:"role"`
	JoinedAt  time.Time          `json:"joinedAt"`
}

// ToProjectMemberResponse converts domain.ProjectMembership to DTO.
func ToProjectMemberResponse(m *domain.ProjectMembership) ProjectMemberResponse {
	return ProjectMemberResponse{
		UserID:    m.UserID,
		ProjectID: m.ProjectID,
		Role:      m.Role,
		JoinedAt:  m.JoinedAt,
	}
}

// EffectiveAccessResponse reports a resolved effective role.
type EffectiveAccessResponse struct {
	UserID    string              `json:"userID"`
	ProjectID string              `json:"projectID"`
	Role      domain.ProjectRole  `json:"role"`
	Source    domain.AccessSource `json:"source"`
}

// --- Workflow settings DTOs ---

// ApprovalRuleDTO is one entity-action rule.
type ApprovalRuleDTO struct {
	Required  bool                 `json:"required"`
	Authority domain.AuthorityMode `json:"authority" binding:"required"`
}

// UpdateWorkflowSettingsRequest replaces a project's approval configuration.
type UpdateWorkflowSettingsRequest struct {
	Rules   map[string]ApprovalRuleDTO `json:"rules" binding:"required"`
	Version int64                      `json:"version"`
}

// WorkflowSettingsResponse returns the effective configuration, defaults
// filled in.
type WorkflowSettingsResponse struct {
	ProjectID string                     `json:"projectID"`
	Rules     map[string]ApprovalRuleDTO `json:"rules"`
	Version   int64                      `json:"version"`
}

// ToWorkflowSettingsResponse converts domain.WorkflowSettings to DTO.
func ToWorkflowSettingsResponse(s *domain.WorkflowSettings) WorkflowSettingsResponse {
	rules := make(map[string]ApprovalRuleDTO, len(s.Rules))
	for k, r := range s.Rules {
		rules[string(k)] = ApprovalRuleDTO{Required: r.Required, Authority: r.Authority}
	}
	return WorkflowSettingsResponse{
		ProjectID: s.ProjectID,
		Rules:     rules,
		Version:   s.Version,
	}
}
