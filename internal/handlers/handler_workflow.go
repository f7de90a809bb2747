package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/planlane/project_delivery_app/internal/core/domain"
	portssvc "github.com/planlane/project_delivery_app/internal/core/ports/services"
	"github.com/planlane/project_delivery_app/internal/dto"
	"github.com/planlane/project_delivery_app/internal/middleware"
)

// workflowHandler handles status transitions and administrative reversals.
type workflowHandler struct {
	workflowService portssvc.WorkflowSvcFacade
}

func newWorkflowHandler(ws portssvc.WorkflowSvcFacade) *workflowHandler {
	return &workflowHandler{workflowService: ws}
}

// RegisterWorkflowRoutes registers transition routes per entity type. Param
// names must match the ones used by the plan and worklog handlers on the same
// prefixes.
func RegisterWorkflowRoutes(rg *gin.RouterGroup, workflowService portssvc.WorkflowSvcFacade) {
	h := newWorkflowHandler(workflowService)

	rg.POST("/milestones/:milestone_id/transition", h.transitionFor(domain.EntityMilestone, "milestone_id"))
	rg.POST("/deliverables/:deliverable_id/transition", h.transitionFor(domain.EntityDeliverable, "deliverable_id"))
	rg.POST("/timesheets/:timesheet_id/transition", h.transitionFor(domain.EntityTimesheet, "timesheet_id"))
	rg.POST("/expenses/:expense_id/transition", h.transitionFor(domain.EntityExpense, "expense_id"))

	rg.POST("/timesheets/:timesheet_id/reverse-approval", h.reverseApprovalFor(domain.EntityTimesheet, "timesheet_id"))
	rg.POST("/expenses/:expense_id/reverse-approval", h.reverseApprovalFor(domain.EntityExpense, "expense_id"))
}

func toTransitionResponse(res *portssvc.TransitionResult) dto.TransitionResponse {
	return dto.TransitionResponse{
		EntityType: res.Item.EntityType,
		EntityID:   res.Item.EntityID,
		Status:     res.Item.Status,
		Advanced:   res.Advanced,
		Version:    res.Item.Version,
		Warnings:   res.Warnings,
	}
}

// transitionFor godoc
// @Summary Transition a tracked entity
// @Description Moves a milestone, deliverable, timesheet or expense along its workflow graph. Under dual sign-off the first approval is recorded without advancing the status.
// @Tags workflow
// @Accept json
// @Produce json
// @Param transition body dto.TransitionRequest true "Target state"
// @Success 200 {object} dto.TransitionResponse
// @Failure 403 {object} ErrorResponse "Role lacks authority"
// @Failure 409 {object} ErrorResponse "Invalid transition, duplicate approval or stale version"
// @Security BearerAuth
// @Router /milestones/{milestone_id}/transition [post]
func (h *workflowHandler) transitionFor(entityType domain.EntityType, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		userID, ok := middleware.GetUserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
			return
		}

		var req dto.TransitionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
			return
		}

		res, err := h.workflowService.Transition(c.Request.Context(), portssvc.TransitionRequest{
			EntityType: entityType,
			EntityID:   c.Param(param),
			ToState:    domain.WorkflowStatus(strings.ToUpper(string(req.ToState))),
			ActorID:    userID,
			Version:    req.Version,
		})
		if err != nil {
			respondWithError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, toTransitionResponse(res))
	}
}

// reverseApprovalFor godoc
// @Summary Reverse an approved timesheet or expense
// @Description Administrative reversal back to draft, outside the normal graph. Requires admin authority and a reason; the reversal is audited.
// @Tags workflow
// @Accept json
// @Produce json
// @Param reversal body dto.ReverseApprovalRequest true "Reason for the reversal"
// @Success 200 {object} dto.TransitionResponse
// @Failure 403 {object} ErrorResponse "Not an admin"
// @Failure 409 {object} ErrorResponse "Entity is not approved"
// @Security BearerAuth
// @Router /timesheets/{timesheet_id}/reverse-approval [post]
func (h *workflowHandler) reverseApprovalFor(entityType domain.EntityType, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		userID, ok := middleware.GetUserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
			return
		}

		var req dto.ReverseApprovalRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
			return
		}

		res, err := h.workflowService.ReverseApproval(c.Request.Context(), entityType, c.Param(param), userID, req.Reason)
		if err != nil {
			respondWithError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, toTransitionResponse(res))
	}
}
