package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/planlane/project_delivery_app/internal/core/domain"
	portssvc "github.com/planlane/project_delivery_app/internal/core/ports/services"
	"github.com/planlane/project_delivery_app/internal/dto"
	"github.com/planlane/project_delivery_app/internal/middleware"
)

// auditHandler exposes the read-only audit log.
type auditHandler struct {
	auditService portssvc.AuditSvcFacade
}

func newAuditHandler(as portssvc.AuditSvcFacade) *auditHandler {
	return &auditHandler{auditService: as}
}

// registerAuditRoutes registers audit query routes.
func registerAuditRoutes(rg *gin.RouterGroup, auditService portssvc.AuditSvcFacade) {
	h := newAuditHandler(auditService)

	rg.GET("/projects/:project_id/audit", h.listProjectAudit)
	rg.GET("/audit/:entity_type/:entity_id", h.listEntityAudit)
}

var knownEntityTypes = map[domain.EntityType]bool{
	domain.EntityMilestone:   true,
	domain.EntityDeliverable: true,
	domain.EntityTimesheet:   true,
	domain.EntityExpense:     true,
	domain.EntityVariation:   true,
}

// listProjectAudit godoc
// @Summary List a project's audit trail
// @Description Returns entries newest-first with cursor pagination. Denied attempts are recorded alongside successful transitions.
// @Tags audit
// @Produce json
// @Param project_id path string true "Project ID"
// @Param limit query int false "Page size" default(50)
// @Param nextToken query string false "Cursor from a previous page"
// @Success 200 {object} dto.ListAuditResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /projects/{project_id}/audit [get]
func (h *auditHandler) listProjectAudit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	var nextToken *string
	if t := c.Query("nextToken"); t != "" {
		nextToken = &t
	}

	entries, next, err := h.auditService.ListProjectAudit(c.Request.Context(), c.Param("project_id"), userID, limit, nextToken)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListAuditResponse(entries, next))
}

// listEntityAudit godoc
// @Summary List one entity's audit trail
// @Tags audit
// @Produce json
// @Param entity_type path string true "Entity type" Enums(MILESTONE, DELIVERABLE, TIMESHEET, EXPENSE, VARIATION)
// @Param entity_id path string true "Entity ID"
// @Success 200 {array} dto.AuditEntryResponse
// @Failure 400 {object} ErrorResponse "Unknown entity type"
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /audit/{entity_type}/{entity_id} [get]
func (h *auditHandler) listEntityAudit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	entityType := domain.EntityType(strings.ToUpper(c.Param("entity_type")))
	if !knownEntityTypes[entityType] {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Unknown entity type"})
		return
	}

	entries, err := h.auditService.ListEntityAudit(c.Request.Context(), entityType, c.Param("entity_id"), userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	resp := make([]dto.AuditEntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = dto.ToAuditEntryResponse(&e)
	}
	c.JSON(http.StatusOK, resp)
}
