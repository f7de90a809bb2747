package dto

import (
	"time"

	"github.com/planlane/project_delivery_app/internal/core/domain"
)

// CreateOrganisationRequest defines data for creating a new organisation.
type CreateOrganisationRequest struct {
	Name string `json:"name" binding:"required,min=2,max=128"`
}

// OrganisationResponse defines data returned for an organisation.
type OrganisationResponse struct {
	OrganisationID string    `json:"organisationID"`
	Name           string    `json:"name"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	CreatedBy      string    `json:"createdBy"`
}

// ToOrganisationResponse converts domain.Organisation to DTO.
func ToOrganisationResponse(o *domain.Organisation) OrganisationResponse {
	return OrganisationResponse{
		OrganisationID: o.OrganisationID,
		Name:           o.Name,
		IsActive:       o.IsActive,
		CreatedAt:      o.CreatedAt,
		CreatedBy:      o.CreatedBy,
	}
}

// ListOrganisationsResponse wraps a list of organisations.
type ListOrganisationsResponse struct {
	Organisations []OrganisationResponse `json:"organisations"`
}

// ToListOrganisationsResponse converts a slice of domain.Organisation to DTO.
func ToListOrganisationsResponse(orgs []domain.Organisation) ListOrganisationsResponse {
	list := make([]OrganisationResponse, len(orgs))
	for i, o := range orgs {
		list[i] = ToOrganisationResponse(&o)
	}
	return ListOrganisationsResponse{Organisations: list}
}

// AddOrgMemberRequest defines data for adding a user to an organisation.
type AddOrgMemberRequest struct {
	UserID string         `json:"userID" binding:"required"`
	Role   domain.OrgRole `json:"role" binding:"required,oneof=OWNER ADMIN MEMBER"`
}

// OrgMemberResponse defines data returned about an org membership.
type OrgMemberResponse struct {
	UserID         string         `json:"userID"`
	OrganisationID string         `json:"organisationID"`
	Role           domain.OrgRole `json:"role"`
	JoinedAt       time.Time      `json:"joinedAt"`
}

// ToOrgMemberResponse converts domain.OrgMembership to DTO.
func ToOrgMemberResponse(m *domain.OrgMembership) OrgMemberResponse {
	return OrgMemberResponse{
		UserID:         m.UserID,
		OrganisationID: m.OrganisationID,
		Role:           m.Role,
		JoinedAt:       m.JoinedAt,
	}
}
