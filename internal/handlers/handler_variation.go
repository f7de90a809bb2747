package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/planlane/project_delivery_app/internal/core/domain"
	portssvc "github.com/planlane/project_delivery_app/internal/core/ports/services"
	"github.com/planlane/project_delivery_app/internal/dto"
	"github.com/planlane/project_delivery_app/internal/middleware"
)

// variationHandler handles formal change requests against a baselined plan.
type variationHandler struct {
	variationService portssvc.VariationSvcFacade
}

func newVariationHandler(vs portssvc.VariationSvcFacade) *variationHandler {
	return &variationHandler{variationService: vs}
}

// registerVariationRoutes registers variation CRUD and lifecycle routes.
func registerVariationRoutes(rg *gin.RouterGroup, variationService portssvc.VariationSvcFacade) {
	h := newVariationHandler(variationService)

	projects := rg.Group("/projects/:project_id")
	{
		projects.POST("/variations", h.createVariation)
		projects.GET("/variations", h.listVariations)
	}

	variations := rg.Group("/variations")
	{
		variations.GET("/:variation_id", h.getVariation)
		variations.PUT("/:variation_id", h.updateVariation)
		variations.POST("/:variation_id/submit", h.lifecycle(h.variationService.Submit))
		variations.POST("/:variation_id/approve", h.lifecycle(h.variationService.Approve))
		variations.POST("/:variation_id/reject", h.lifecycle(h.variationService.Reject))
		variations.POST("/:variation_id/implement", h.lifecycle(h.variationService.Implement))
	}
}

// createVariation godoc
// @Summary Raise a variation
// @Description Creates a draft change request carrying a diff of proposed plan changes.
// @Tags variations
// @Accept json
// @Produce json
// @Param project_id path string true "Project ID"
// @Param variation body dto.CreateVariationRequest true "Variation details"
// @Success 201 {object} dto.VariationResponse
// @Failure 400 {object} ErrorResponse "Malformed diff"
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /projects/{project_id}/variations [post]
func (h *variationHandler) createVariation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CreateVariationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	variation, err := h.variationService.CreateVariation(c.Request.Context(), c.Param("project_id"), req, userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToVariationResponse(variation))
}

// listVariations godoc
// @Summary List a project's variations
// @Tags variations
// @Produce json
// @Param project_id path string true "Project ID"
// @Success 200 {object} dto.ListVariationsResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /projects/{project_id}/variations [get]
func (h *variationHandler) listVariations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	variations, err := h.variationService.ListProjectVariations(c.Request.Context(), c.Param("project_id"), userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListVariationsResponse(variations))
}

// getVariation godoc
// @Summary Get a variation
// @Tags variations
// @Produce json
// @Param variation_id path string true "Variation ID"
// @Success 200 {object} dto.VariationResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /variations/{variation_id} [get]
func (h *variationHandler) getVariation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	variation, err := h.variationService.GetVariationByID(c.Request.Context(), c.Param("variation_id"), userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToVariationResponse(variation))
}

// updateVariation godoc
// @Summary Edit a draft variation
// @Description Only draft variations may be edited.
// @Tags variations
// @Accept json
// @Produce json
// @Param variation_id path string true "Variation ID"
// @Param variation body dto.UpdateVariationRequest true "Fields to update with expected version"
// @Success 200 {object} dto.VariationResponse
// @Failure 409 {object} ErrorResponse "Stale version or not draft"
// @Security BearerAuth
// @Router /variations/{variation_id} [put]
func (h *variationHandler) updateVariation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.UpdateVariationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	variation, err := h.variationService.UpdateVariation(c.Request.Context(), c.Param("variation_id"), req, userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToVariationResponse(variation))
}

type variationLifecycleFn func(ctx context.Context, variationID, actorID string) (*domain.Variation, error)

// lifecycle adapts the submit/approve/reject/implement service calls to a
// shared handler shape.
//
// Implement in particular applies the whole diff atomically and re-baselines
// the touched entities; on any conflict the variation stays approved.
func (h *variationHandler) lifecycle(fn variationLifecycleFn) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		userID, ok := middleware.GetUserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
			return
		}

		variation, err := fn(c.Request.Context(), c.Param("variation_id"), userID)
		if err != nil {
			respondWithError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, dto.ToVariationResponse(variation))
	}
}
