package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/planlane/project_delivery_app/internal/core/ports/services"
	"github.com/planlane/project_delivery_app/internal/dto"
	"github.com/planlane/project_delivery_app/internal/middleware"
)

// orgHandler handles HTTP requests related to organisations.
type orgHandler struct {
	orgService     portssvc.OrgSvcFacade
	projectService portssvc.ProjectSvcFacade
}

func newOrgHandler(os portssvc.OrgSvcFacade, ps portssvc.ProjectSvcFacade) *orgHandler {
	return &orgHandler{orgService: os, projectService: ps}
}

// registerOrgRoutes registers organisation and org-membership routes.
func registerOrgRoutes(rg *gin.RouterGroup, orgService portssvc.OrgSvcFacade, projectService portssvc.ProjectSvcFacade) {
	h := newOrgHandler(orgService, projectService)

	orgs := rg.Group("/organisations")
	{
		orgs.POST("", h.createOrganisation)
		orgs.GET("", h.listMyOrganisations)
		orgs.GET("/:org_id", h.getOrganisation)
		orgs.GET("/:org_id/members", h.listMembers)
		orgs.POST("/:org_id/members", h.addMember)
		orgs.DELETE("/:org_id/members/:user_id", h.removeMember)
		orgs.POST("/:org_id/projects", h.createProject)
		orgs.GET("/:org_id/projects", h.listProjects)
	}
}

// createOrganisation godoc
// @Summary Create an organisation
// @Description Creates an organisation; the creator becomes its owner.
// @Tags organisations
// @Accept json
// @Produce json
// @Param organisation body dto.CreateOrganisationRequest true "Organisation details"
// @Success 201 {object} dto.OrganisationResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /organisations [post]
func (h *orgHandler) createOrganisation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CreateOrganisationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	org, err := h.orgService.CreateOrganisation(c.Request.Context(), req.Name, userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToOrganisationResponse(org))
}

// listMyOrganisations godoc
// @Summary List my organisations
// @Tags organisations
// @Produce json
// @Success 200 {object} dto.ListOrganisationsResponse
// @Security BearerAuth
// @Router /organisations [get]
func (h *orgHandler) listMyOrganisations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	orgs, err := h.orgService.ListUserOrganisations(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListOrganisationsResponse(orgs))
}

// getOrganisation godoc
// @Summary Get an organisation
// @Tags organisations
// @Produce json
// @Param org_id path string true "Organisation ID"
// @Success 200 {object} dto.OrganisationResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /organisations/{org_id} [get]
func (h *orgHandler) getOrganisation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	org, err := h.orgService.GetOrganisationByID(c.Request.Context(), c.Param("org_id"), userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrganisationResponse(org))
}

// listMembers godoc
// @Summary List organisation members
// @Tags organisations
// @Produce json
// @Param org_id path string true "Organisation ID"
// @Success 200 {array} dto.OrgMemberResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /organisations/{org_id}/members [get]
func (h *orgHandler) listMembers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	members, err := h.orgService.ListOrgMembers(c.Request.Context(), c.Param("org_id"), userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	resp := make([]dto.OrgMemberResponse, len(members))
	for i, m := range members {
		resp[i] = dto.ToOrgMemberResponse(&m)
	}
	c.JSON(http.StatusOK, resp)
}

// addMember godoc
// @Summary Add or re-role an organisation member
// @Description Requester must be an owner or admin; only an owner may grant owner.
// @Tags organisations
// @Accept json
// @Param org_id path string true "Organisation ID"
// @Param member body dto.AddOrgMemberRequest true "Member details"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /organisations/{org_id}/members [post]
func (h *orgHandler) addMember(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.AddOrgMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	if err := h.orgService.AddUserToOrganisation(c.Request.Context(), userID, req.UserID, c.Param("org_id"), req.Role); err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// removeMember godoc
// @Summary Remove an organisation member
// @Description Historical audit entries and approval decisions stay intact.
// @Tags organisations
// @Param org_id path string true "Organisation ID"
// @Param user_id path string true "User ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /organisations/{org_id}/members/{user_id} [delete]
func (h *orgHandler) removeMember(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.orgService.RemoveUserFromOrganisation(c.Request.Context(), userID, c.Param("user_id"), c.Param("org_id")); err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// createProject godoc
// @Summary Create a project
// @Description Creates a project under the organisation; the creator becomes its supplier PM.
// @Tags projects
// @Accept json
// @Produce json
// @Param org_id path string true "Organisation ID"
// @Param project body dto.CreateProjectRequest true "Project details"
// @Success 201 {object} dto.ProjectResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /organisations/{org_id}/projects [post]
func (h *orgHandler) createProject(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), c.Param("org_id"), req, userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToProjectResponse(project))
}

// listProjects godoc
// @Summary List an organisation's projects
// @Tags projects
// @Produce json
// @Param org_id path string true "Organisation ID"
// @Success 200 {object} dto.ListProjectsResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /organisations/{org_id}/projects [get]
func (h *orgHandler) listProjects(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	projects, err := h.projectService.ListOrganisationProjects(c.Request.Context(), c.Param("org_id"), userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListProjectsResponse(projects))
}
