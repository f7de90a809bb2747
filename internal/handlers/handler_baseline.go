package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/planlane/project_delivery_app/internal/core/ports/services"
	"github.com/planlane/project_delivery_app/internal/dto"
	"github.com/planlane/project_delivery_app/internal/middleware"
)

// baselineHandler handles baseline commits, variance reports and breach
// checks.
type baselineHandler struct {
	baselineService portssvc.BaselineSvcFacade
}

func newBaselineHandler(bs portssvc.BaselineSvcFacade) *baselineHandler {
	return &baselineHandler{baselineService: bs}
}

// registerBaselineRoutes registers baseline and variance routes.
func registerBaselineRoutes(rg *gin.RouterGroup, baselineService portssvc.BaselineSvcFacade) {
	h := newBaselineHandler(baselineService)

	rg.POST("/projects/:project_id/baseline", h.commitBaseline)
	rg.GET("/projects/:project_id/variance", h.varianceReport)
	rg.GET("/milestones/:milestone_id/breach", h.detectBreach)
}

// commitBaseline godoc
// @Summary Commit a project baseline
// @Description Freezes every milestone's and deliverable's planned dates, effort and value in one atomic snapshot. A project may be baselined directly at most once.
// @Tags baselines
// @Produce json
// @Param project_id path string true "Project ID"
// @Success 201 {object} dto.CommitBaselineResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Already baselined"
// @Security BearerAuth
// @Router /projects/{project_id}/baseline [post]
func (h *baselineHandler) commitBaseline(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	baselineID, err := h.baselineService.CommitBaseline(c.Request.Context(), c.Param("project_id"), userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CommitBaselineResponse{BaselineID: baselineID})
}

// varianceReport godoc
// @Summary Report variance against the baseline
// @Description Computes schedule, effort and cost deltas for every baselined entity in the project. Entities without a baseline are omitted.
// @Tags baselines
// @Produce json
// @Param project_id path string true "Project ID"
// @Success 200 {object} dto.VarianceReportResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /projects/{project_id}/variance [get]
func (h *baselineHandler) varianceReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	projectID := c.Param("project_id")
	variances, err := h.baselineService.VarianceReport(c.Request.Context(), projectID, userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToVarianceReportResponse(projectID, variances))
}

// detectBreach godoc
// @Summary Check a milestone for baseline breach
// @Description Reports whether any child deliverable's due date has slipped past the milestone's frozen baseline end date. Returns 204 when there is no breach or no baseline.
// @Tags baselines
// @Produce json
// @Param milestone_id path string true "Milestone ID"
// @Success 200 {object} domain.BreachInfo
// @Success 204 "No breach"
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /milestones/{milestone_id}/breach [get]
func (h *baselineHandler) detectBreach(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	breach, err := h.baselineService.DetectBreach(c.Request.Context(), c.Param("milestone_id"))
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	if breach == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, breach)
}
