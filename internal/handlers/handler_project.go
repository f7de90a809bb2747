package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/planlane/project_delivery_app/internal/core/ports/services"
	"github.com/planlane/project_delivery_app/internal/dto"
	"github.com/planlane/project_delivery_app/internal/middleware"
)

// projectHandler handles HTTP requests for projects, memberships, effective
// access and workflow settings.
type projectHandler struct {
	projectService portssvc.ProjectSvcFacade
	tenancyService portssvc.TenancySvcFacade
}

func newProjectHandler(ps portssvc.ProjectSvcFacade, ts portssvc.TenancySvcFacade) *projectHandler {
	return &projectHandler{projectService: ps, tenancyService: ts}
}

// registerProjectRoutes registers project-scoped routes.
func registerProjectRoutes(rg *gin.RouterGroup, projectService portssvc.ProjectSvcFacade, tenancyService portssvc.TenancySvcFacade) {
	h := newProjectHandler(projectService, tenancyService)

	projects := rg.Group("/projects")
	{
		projects.GET("", h.listMyProjects)
		projects.GET("/:project_id", h.getProject)
		projects.PATCH("/:project_id/status", h.updateStatus)
		projects.GET("/:project_id/members", h.listMembers)
		projects.POST("/:project_id/members", h.addMember)
		projects.DELETE("/:project_id/members/:user_id", h.removeMember)
		projects.GET("/:project_id/access", h.getEffectiveAccess)
		projects.GET("/:project_id/workflow-settings", h.getWorkflowSettings)
		projects.PUT("/:project_id/workflow-settings", h.updateWorkflowSettings)
	}
}

// listMyProjects godoc
// @Summary List projects I belong to
// @Tags projects
// @Produce json
// @Success 200 {object} dto.ListProjectsResponse
// @Security BearerAuth
// @Router /projects [get]
func (h *projectHandler) listMyProjects(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	projects, err := h.projectService.ListUserProjects(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListProjectsResponse(projects))
}

// getProject godoc
// @Summary Get a project
// @Tags projects
// @Produce json
// @Param project_id path string true "Project ID"
// @Success 200 {object} dto.ProjectResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /projects/{project_id} [get]
func (h *projectHandler) getProject(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	project, err := h.projectService.GetProjectByID(c.Request.Context(), c.Param("project_id"), userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProjectResponse(project))
}

// updateStatus godoc
// @Summary Update project lifecycle status
// @Tags projects
// @Accept json
// @Produce json
// @Param project_id path string true "Project ID"
// @Param status body dto.UpdateProjectStatusRequest true "New status and expected version"
// @Success 200 {object} dto.ProjectResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Stale version"
// @Security BearerAuth
// @Router /projects/{project_id}/status [patch]
func (h *projectHandler) updateStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.UpdateProjectStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	project, err := h.projectService.UpdateProjectStatus(c.Request.Context(), c.Param("project_id"), req.Status, userID, req.Version)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProjectResponse(project))
}

// listMembers godoc
// @Summary List project members
// @Tags projects
// @Produce json
// @Param project_id path string true "Project ID"
// @Success 200 {array} dto.ProjectMemberResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /projects/{project_id}/members [get]
func (h *projectHandler) listMembers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	members, err := h.projectService.ListProjectMembers(c.Request.Context(), c.Param("project_id"), userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	resp := make([]dto.ProjectMemberResponse, len(members))
	for i, m := range members {
		resp[i] = dto.ToProjectMemberResponse(&m)
	}
	c.JSON(http.StatusOK, resp)
}

// addMember godoc
// @Summary Add or re-role a project member
// @Description One role per user per project; adding an existing member replaces their role.
// @Tags projects
// @Accept json
// @Param project_id path string true "Project ID"
// @Param member body dto.AddProjectMemberRequest true "Member details"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse "Unknown role"
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /projects/{project_id}/members [post]
func (h *projectHandler) addMember(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.AddProjectMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	if err := h.projectService.AddUserToProject(c.Request.Context(), userID, req.UserID, c.Param("project_id"), req.Role); err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// removeMember godoc
// @Summary Remove a project member
// @Description Revokes the membership; recorded approval decisions and audit entries survive.
// @Tags projects
// @Param project_id path string true "Project ID"
// @Param user_id path string true "User ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /projects/{project_id}/members/{user_id} [delete]
func (h *projectHandler) removeMember(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.projectService.RemoveUserFromProject(c.Request.Context(), userID, c.Param("user_id"), c.Param("project_id")); err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// getEffectiveAccess godoc
// @Summary Resolve my effective access to a project
// @Description Returns the effective role and which rule produced it. No access is a normal result, not an error.
// @Tags projects
// @Produce json
// @Param project_id path string true "Project ID"
// @Success 200 {object} dto.EffectiveAccessResponse
// @Security BearerAuth
// @Router /projects/{project_id}/access [get]
func (h *projectHandler) getEffectiveAccess(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	projectID := c.Param("project_id")
	access, err := h.tenancyService.ResolveAccess(c.Request.Context(), userID, projectID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.EffectiveAccessResponse{
		UserID:    userID,
		ProjectID: projectID,
		Role:      access.Role,
		Source:    access.Source,
	})
}

// getWorkflowSettings godoc
// @Summary Get workflow approval settings
// @Description Returns the project's approval configuration with defaults filled in for unset keys.
// @Tags projects
// @Produce json
// @Param project_id path string true "Project ID"
// @Success 200 {object} dto.WorkflowSettingsResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /projects/{project_id}/workflow-settings [get]
func (h *projectHandler) getWorkflowSettings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	settings, err := h.projectService.GetWorkflowSettings(c.Request.Context(), c.Param("project_id"), userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToWorkflowSettingsResponse(settings))
}

// updateWorkflowSettings godoc
// @Summary Replace workflow approval settings
// @Description Keys and authority modes outside the closed enums are rejected.
// @Tags projects
// @Accept json
// @Produce json
// @Param project_id path string true "Project ID"
// @Param settings body dto.UpdateWorkflowSettingsRequest true "Rule set"
// @Success 200 {object} dto.WorkflowSettingsResponse
// @Failure 400 {object} ErrorResponse "Unknown key or authority mode"
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /projects/{project_id}/workflow-settings [put]
func (h *projectHandler) updateWorkflowSettings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.UpdateWorkflowSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	settings, err := h.projectService.UpdateWorkflowSettings(c.Request.Context(), c.Param("project_id"), req, userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToWorkflowSettingsResponse(settings))
}
