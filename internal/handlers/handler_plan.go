package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/planlane/project_delivery_app/internal/core/ports/services"
	"github.com/planlane/project_delivery_app/internal/dto"
	"github.com/planlane/project_delivery_app/internal/middleware"
)

// planHandler handles HTTP requests for the plan hierarchy: components,
// milestones and deliverables.
type planHandler struct {
	planService portssvc.PlanSvcFacade
}

func newPlanHandler(ps portssvc.PlanSvcFacade) *planHandler {
	return &planHandler{planService: ps}
}

// registerPlanRoutes registers plan hierarchy routes. Creation is
// project-scoped; item reads and edits address the item directly.
func registerPlanRoutes(rg *gin.RouterGroup, planService portssvc.PlanSvcFacade) {
	h := newPlanHandler(planService)

	projects := rg.Group("/projects/:project_id")
	{
		projects.POST("/components", h.createComponent)
		projects.GET("/components", h.listComponents)
		projects.POST("/milestones", h.createMilestone)
		projects.GET("/milestones", h.listMilestones)
		projects.POST("/deliverables", h.createDeliverable)
		projects.GET("/deliverables", h.listDeliverables)
	}

	milestones := rg.Group("/milestones")
	{
		milestones.GET("/:milestone_id", h.getMilestone)
		milestones.PUT("/:milestone_id", h.updateMilestone)
		milestones.DELETE("/:milestone_id", h.deleteMilestone)
	}

	deliverables := rg.Group("/deliverables")
	{
		deliverables.GET("/:deliverable_id", h.getDeliverable)
		deliverables.PUT("/:deliverable_id", h.updateDeliverable)
		deliverables.DELETE("/:deliverable_id", h.deleteDeliverable)
	}
}

func (h *planHandler) actor(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
	}
	return userID, ok
}

// createComponent godoc
// @Summary Create a plan component
// @Tags plan
// @Accept json
// @Produce json
// @Param project_id path string true "Project ID"
// @Param component body dto.CreateComponentRequest true "Component details"
// @Success 201 {object} dto.ComponentResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Plan is baselined"
// @Security BearerAuth
// @Router /projects/{project_id}/components [post]
func (h *planHandler) createComponent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := h.actor(c)
	if !ok {
		return
	}

	var req dto.CreateComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	component, err := h.planService.CreateComponent(c.Request.Context(), c.Param("project_id"), req, userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToComponentResponse(component))
}

// listComponents godoc
// @Summary List a project's components
// @Tags plan
// @Produce json
// @Param project_id path string true "Project ID"
// @Success 200 {array} dto.ComponentResponse
// @Security BearerAuth
// @Router /projects/{project_id}/components [get]
func (h *planHandler) listComponents(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := h.actor(c)
	if !ok {
		return
	}

	components, err := h.planService.ListProjectComponents(c.Request.Context(), c.Param("project_id"), userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	resp := make([]dto.ComponentResponse, len(components))
	for i, comp := range components {
		resp[i] = dto.ToComponentResponse(&comp)
	}
	c.JSON(http.StatusOK, resp)
}

// createMilestone godoc
// @Summary Create a milestone
// @Tags plan
// @Accept json
// @Produce json
// @Param project_id path string true "Project ID"
// @Param milestone body dto.CreateMilestoneRequest true "Milestone details"
// @Success 201 {object} dto.MilestoneResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Plan is baselined"
// @Security BearerAuth
// @Router /projects/{project_id}/milestones [post]
func (h *planHandler) createMilestone(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := h.actor(c)
	if !ok {
		return
	}

	var req dto.CreateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	milestone, err := h.planService.CreateMilestone(c.Request.Context(), c.Param("project_id"), req, userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToMilestoneResponse(milestone))
}

// listMilestones godoc
// @Summary List a project's milestones
// @Tags plan
// @Produce json
// @Param project_id path string true "Project ID"
// @Success 200 {array} dto.MilestoneResponse
// @Security BearerAuth
// @Router /projects/{project_id}/milestones [get]
func (h *planHandler) listMilestones(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := h.actor(c)
	if !ok {
		return
	}

	milestones, err := h.planService.ListProjectMilestones(c.Request.Context(), c.Param("project_id"), userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	resp := make([]dto.MilestoneResponse, len(milestones))
	for i, m := range milestones {
		resp[i] = dto.ToMilestoneResponse(&m)
	}
	c.JSON(http.StatusOK, resp)
}

// getMilestone godoc
// @Summary Get a milestone
// @Tags plan
// @Produce json
// @Param milestone_id path string true "Milestone ID"
// @Success 200 {object} dto.MilestoneResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /milestones/{milestone_id} [get]
func (h *planHandler) getMilestone(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := h.actor(c)
	if !ok {
		return
	}

	milestone, err := h.planService.GetMilestoneByID(c.Request.Context(), c.Param("milestone_id"), userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToMilestoneResponse(milestone))
}

// updateMilestone godoc
// @Summary Update milestone content
// @Description Dates and values stay editable after baselining; drift shows as variance. Soft-closed milestones reject edits.
// @Tags plan
// @Accept json
// @Produce json
// @Param milestone_id path string true "Milestone ID"
// @Param milestone body dto.UpdateMilestoneRequest true "Fields to update with expected version"
// @Success 200 {object} dto.MilestoneResponse
// @Failure 409 {object} ErrorResponse "Stale version"
// @Security BearerAuth
// @Router /milestones/{milestone_id} [put]
func (h *planHandler) updateMilestone(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := h.actor(c)
	if !ok {
		return
	}

	var req dto.UpdateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	milestone, err := h.planService.UpdateMilestone(c.Request.Context(), c.Param("milestone_id"), req, userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToMilestoneResponse(milestone))
}

// deleteMilestone godoc
// @Summary Delete a milestone
// @Description Hard delete, only before baselining and only when it has no deliverables.
// @Tags plan
// @Param milestone_id path string true "Milestone ID"
// @Success 204 "No Content"
// @Failure 409 {object} ErrorResponse "Plan is baselined or children exist"
// @Security BearerAuth
// @Router /milestones/{milestone_id} [delete]
func (h *planHandler) deleteMilestone(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := h.actor(c)
	if !ok {
		return
	}

	if err := h.planService.DeleteMilestone(c.Request.Context(), c.Param("milestone_id"), userID); err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// createDeliverable godoc
// @Summary Create a deliverable
// @Tags plan
// @Accept json
// @Produce json
// @Param project_id path string true "Project ID"
// @Param deliverable body dto.CreateDeliverableRequest true "Deliverable details"
// @Success 201 {object} dto.DeliverableResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Plan is baselined"
// @Security BearerAuth
// @Router /projects/{project_id}/deliverables [post]
func (h *planHandler) createDeliverable(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := h.actor(c)
	if !ok {
		return
	}

	var req dto.CreateDeliverableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	deliverable, err := h.planService.CreateDeliverable(c.Request.Context(), c.Param("project_id"), req, userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToDeliverableResponse(deliverable))
}

// listDeliverables godoc
// @Summary List a project's deliverables
// @Tags plan
// @Produce json
// @Param project_id path string true "Project ID"
// @Success 200 {array} dto.DeliverableResponse
// @Security BearerAuth
// @Router /projects/{project_id}/deliverables [get]
func (h *planHandler) listDeliverables(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := h.actor(c)
	if !ok {
		return
	}

	deliverables, err := h.planService.ListProjectDeliverables(c.Request.Context(), c.Param("project_id"), userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	resp := make([]dto.DeliverableResponse, len(deliverables))
	for i, d := range deliverables {
		resp[i] = dto.ToDeliverableResponse(&d)
	}
	c.JSON(http.StatusOK, resp)
}

// getDeliverable godoc
// @Summary Get a deliverable
// @Tags plan
// @Produce json
// @Param deliverable_id path string true "Deliverable ID"
// @Success 200 {object} dto.DeliverableResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /deliverables/{deliverable_id} [get]
func (h *planHandler) getDeliverable(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := h.actor(c)
	if !ok {
		return
	}

	deliverable, err := h.planService.GetDeliverableByID(c.Request.Context(), c.Param("deliverable_id"), userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToDeliverableResponse(deliverable))
}

// updateDeliverable godoc
// @Summary Update deliverable content
// @Tags plan
// @Accept json
// @Produce json
// @Param deliverable_id path string true "Deliverable ID"
// @Param deliverable body dto.UpdateDeliverableRequest true "Fields to update with expected version"
// @Success 200 {object} dto.DeliverableResponse
// @Failure 409 {object} ErrorResponse "Stale version"
// @Security BearerAuth
// @Router /deliverables/{deliverable_id} [put]
func (h *planHandler) updateDeliverable(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := h.actor(c)
	if !ok {
		return
	}

	var req dto.UpdateDeliverableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	deliverable, err := h.planService.UpdateDeliverable(c.Request.Context(), c.Param("deliverable_id"), req, userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToDeliverableResponse(deliverable))
}

// deleteDeliverable godoc
// @Summary Delete a deliverable
// @Description Hard delete, only before baselining.
// @Tags plan
// @Param deliverable_id path string true "Deliverable ID"
// @Success 204 "No Content"
// @Failure 409 {object} ErrorResponse "Plan is baselined"
// @Security BearerAuth
// @Router /deliverables/{deliverable_id} [delete]
func (h *planHandler) deleteDeliverable(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := h.actor(c)
	if !ok {
		return
	}

	if err := h.planService.DeleteDeliverable(c.Request.Context(), c.Param("deliverable_id"), userID); err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
