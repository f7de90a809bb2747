package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/planlane/project_delivery_app/internal/core/ports/services"
	"github.com/planlane/project_delivery_app/internal/dto"
	"github.com/planlane/project_delivery_app/internal/middleware"
)

// worklogHandler handles HTTP requests for timesheets and expenses.
type worklogHandler struct {
	worklogService portssvc.WorklogSvcFacade
}

func newWorklogHandler(ws portssvc.WorklogSvcFacade) *worklogHandler {
	return &worklogHandler{worklogService: ws}
}

// registerWorklogRoutes registers timesheet and expense routes.
func registerWorklogRoutes(rg *gin.RouterGroup, worklogService portssvc.WorklogSvcFacade) {
	h := newWorklogHandler(worklogService)

	projects := rg.Group("/projects/:project_id")
	{
		projects.POST("/timesheets", h.createTimesheet)
		projects.GET("/timesheets", h.listTimesheets)
		projects.POST("/expenses", h.createExpense)
		projects.GET("/expenses", h.listExpenses)
	}

	timesheets := rg.Group("/timesheets")
	{
		timesheets.GET("/:timesheet_id", h.getTimesheet)
		timesheets.PUT("/:timesheet_id", h.updateTimesheet)
	}

	expenses := rg.Group("/expenses")
	{
		expenses.GET("/:expense_id", h.getExpense)
		expenses.PUT("/:expense_id", h.updateExpense)
	}
}

func pageParams(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	return limit, offset
}

// createTimesheet godoc
// @Summary Submit a weekly timesheet
// @Tags worklogs
// @Accept json
// @Produce json
// @Param project_id path string true "Project ID"
// @Param timesheet body dto.CreateTimesheetRequest true "Timesheet details"
// @Success 201 {object} dto.TimesheetResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /projects/{project_id}/timesheets [post]
func (h *worklogHandler) createTimesheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CreateTimesheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	timesheet, err := h.worklogService.CreateTimesheet(c.Request.Context(), c.Param("project_id"), req, userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToTimesheetResponse(timesheet))
}

// listTimesheets godoc
// @Summary List a project's timesheets
// @Tags worklogs
// @Produce json
// @Param project_id path string true "Project ID"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} dto.TimesheetResponse
// @Security BearerAuth
// @Router /projects/{project_id}/timesheets [get]
func (h *worklogHandler) listTimesheets(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	limit, offset := pageParams(c)
	timesheets, err := h.worklogService.ListProjectTimesheets(c.Request.Context(), c.Param("project_id"), userID, limit, offset)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	resp := make([]dto.TimesheetResponse, len(timesheets))
	for i, t := range timesheets {
		resp[i] = dto.ToTimesheetResponse(&t)
	}
	c.JSON(http.StatusOK, resp)
}

// getTimesheet godoc
// @Summary Get a timesheet
// @Tags worklogs
// @Produce json
// @Param timesheet_id path string true "Timesheet ID"
// @Success 200 {object} dto.TimesheetResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /timesheets/{timesheet_id} [get]
func (h *worklogHandler) getTimesheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	timesheet, err := h.worklogService.GetTimesheetByID(c.Request.Context(), c.Param("timesheet_id"), userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTimesheetResponse(timesheet))
}

// updateTimesheet godoc
// @Summary Edit a draft timesheet
// @Description Only the owner (or an admin) may edit, and only while the timesheet is in draft.
// @Tags worklogs
// @Accept json
// @Produce json
// @Param timesheet_id path string true "Timesheet ID"
// @Param timesheet body dto.UpdateTimesheetRequest true "Fields to update with expected version"
// @Success 200 {object} dto.TimesheetResponse
// @Failure 409 {object} ErrorResponse "Stale version or not draft"
// @Security BearerAuth
// @Router /timesheets/{timesheet_id} [put]
func (h *worklogHandler) updateTimesheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.UpdateTimesheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	timesheet, err := h.worklogService.UpdateTimesheet(c.Request.Context(), c.Param("timesheet_id"), req, userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTimesheetResponse(timesheet))
}

// createExpense godoc
// @Summary Record an expense
// @Tags worklogs
// @Accept json
// @Produce json
// @Param project_id path string true "Project ID"
// @Param expense body dto.CreateExpenseRequest true "Expense details"
// @Success 201 {object} dto.ExpenseResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /projects/{project_id}/expenses [post]
func (h *worklogHandler) createExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	expense, err := h.worklogService.CreateExpense(c.Request.Context(), c.Param("project_id"), req, userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToExpenseResponse(expense))
}

// listExpenses godoc
// @Summary List a project's expenses
// @Tags worklogs
// @Produce json
// @Param project_id path string true "Project ID"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} dto.ExpenseResponse
// @Security BearerAuth
// @Router /projects/{project_id}/expenses [get]
func (h *worklogHandler) listExpenses(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	limit, offset := pageParams(c)
	expenses, err := h.worklogService.ListProjectExpenses(c.Request.Context(), c.Param("project_id"), userID, limit, offset)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	resp := make([]dto.ExpenseResponse, len(expenses))
	for i, e := range expenses {
		resp[i] = dto.ToExpenseResponse(&e)
	}
	c.JSON(http.StatusOK, resp)
}

// getExpense godoc
// @Summary Get an expense
// @Tags worklogs
// @Produce json
// @Param expense_id path string true "Expense ID"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /expenses/{expense_id} [get]
func (h *worklogHandler) getExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	expense, err := h.worklogService.GetExpenseByID(c.Request.Context(), c.Param("expense_id"), userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

// updateExpense godoc
// @Summary Edit a draft expense
// @Tags worklogs
// @Accept json
// @Produce json
// @Param expense_id path string true "Expense ID"
// @Param expense body dto.UpdateExpenseRequest true "Fields to update with expected version"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 409 {object} ErrorResponse "Stale version or not draft"
// @Security BearerAuth
// @Router /expenses/{expense_id} [put]
func (h *worklogHandler) updateExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	expense, err := h.worklogService.UpdateExpense(c.Request.Context(), c.Param("expense_id"), req, userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}
