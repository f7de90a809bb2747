package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/planlane/project_delivery_app/internal/apperrors"
	"github.com/planlane/project_delivery_app/internal/core/domain"
	portssvc "github.com/planlane/project_delivery_app/internal/core/ports/services"
	"github.com/planlane/project_delivery_app/internal/dto"
	"github.com/planlane/project_delivery_app/internal/handlers"
	"github.com/planlane/project_delivery_app/internal/middleware"
	"github.com/planlane/project_delivery_app/internal/utils"
)

// --- Mock WorkflowService ---
type MockWorkflowService struct {
	mock.Mock
}

func (m *MockWorkflowService) Transition(ctx context.Context, req portssvc.TransitionRequest) (*portssvc.TransitionResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portssvc.TransitionResult), args.Error(1)
}

func (m *MockWorkflowService) ReverseApproval(ctx context.Context, entityType domain.EntityType, entityID, actorID, reason string) (*portssvc.TransitionResult, error) {
	args := m.Called(ctx, entityType, entityID, actorID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portssvc.TransitionResult), args.Error(1)
}

var _ portssvc.WorkflowSvcFacade = (*MockWorkflowService)(nil)

// --- Test Suite ---
type WorkflowHandlerTestSuite struct {
	suite.Suite
	router              *gin.Engine
	mockWorkflowService *MockWorkflowService
	jwtSecret           string
}

func (suite *WorkflowHandlerTestSuite) generateTestToken(userID string) string {
	token, err := utils.GenerateJWT(userID, false, suite.jwtSecret, time.Hour, "pdt-test")
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return token
}

func (suite *WorkflowHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockWorkflowService = new(MockWorkflowService)

	v1 := suite.router.Group("/api/v1")
	handlers.RegisterWorkflowRoutes(v1, suite.mockWorkflowService)
}

func (suite *WorkflowHandlerTestSuite) postJSON(url, userID string, body any) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	suite.Require().NoError(err)

	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *WorkflowHandlerTestSuite) TestTransitionMilestone_Success() {
	milestoneID := uuid.NewString()
	userID := uuid.NewString()

	result := &portssvc.TransitionResult{
		Item: domain.WorkflowItem{
			EntityType: domain.EntityMilestone,
			EntityID:   milestoneID,
			Status:     domain.StatusInProgress,
			Version:    2,
		},
		Advanced: true,
	}

	suite.mockWorkflowService.On("Transition",
		mock.Anything,
		portssvc.TransitionRequest{
			EntityType: domain.EntityMilestone,
			EntityID:   milestoneID,
			ToState:    domain.StatusInProgress,
			ActorID:    userID,
			Version:    1,
		},
	).Return(result, nil).Once()

	// The handler uppercases the requested state before calling the service.
	w := suite.postJSON(fmt.Sprintf("/api/v1/milestones/%s/transition", milestoneID), userID,
		dto.TransitionRequest{ToState: "in_progress", Version: 1})

	suite.Equal(http.StatusOK, w.Code)

	var body dto.TransitionResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(milestoneID, body.EntityID)
	suite.Equal(domain.StatusInProgress, body.Status)
	suite.True(body.Advanced)
	suite.Equal(int64(2), body.Version)

	suite.mockWorkflowService.AssertExpectations(suite.T())
}

func (suite *WorkflowHandlerTestSuite) TestTransition_InvalidTransitionMapsToConflict() {
	milestoneID := uuid.NewString()
	userID := uuid.NewString()

	suite.mockWorkflowService.On("Transition", mock.Anything, mock.AnythingOfType("services.TransitionRequest")).
		Return(nil, fmt.Errorf("%w: MILESTONE cannot move from NOT_STARTED to COMPLETE", apperrors.ErrInvalidTransition)).Once()

	w := suite.postJSON(fmt.Sprintf("/api/v1/milestones/%s/transition", milestoneID), userID,
		dto.TransitionRequest{ToState: domain.StatusComplete, Version: 3})

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *WorkflowHandlerTestSuite) TestTransition_ForbiddenMapsTo403() {
	timesheetID := uuid.NewString()
	userID := uuid.NewString()

	suite.mockWorkflowService.On("Transition", mock.Anything, mock.AnythingOfType("services.TransitionRequest")).
		Return(nil, apperrors.NewForbiddenError("role CONTRIBUTOR may not approve timesheet.approval")).Once()

	w := suite.postJSON(fmt.Sprintf("/api/v1/timesheets/%s/transition", timesheetID), userID,
		dto.TransitionRequest{ToState: domain.StatusApproved, Version: 1})

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *WorkflowHandlerTestSuite) TestTransition_VersionRequired() {
	milestoneID := uuid.NewString()
	userID := uuid.NewString()

	w := suite.postJSON(fmt.Sprintf("/api/v1/milestones/%s/transition", milestoneID), userID,
		map[string]string{"toState": "IN_PROGRESS"})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockWorkflowService.AssertNotCalled(suite.T(), "Transition", mock.Anything, mock.Anything)
}

func (suite *WorkflowHandlerTestSuite) TestTransition_MissingTokenIsUnauthorized() {
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/milestones/m-1/transition", bytes.NewReader([]byte(`{"toState":"IN_PROGRESS"}`)))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockWorkflowService.AssertNotCalled(suite.T(), "Transition", mock.Anything, mock.Anything)
}

func (suite *WorkflowHandlerTestSuite) TestReverseApproval_Success() {
	expenseID := uuid.NewString()
	userID := uuid.NewString()

	result := &portssvc.TransitionResult{
		Item: domain.WorkflowItem{
			EntityType: domain.EntityExpense,
			EntityID:   expenseID,
			Status:     domain.StatusDraft,
			Version:    3,
		},
		Advanced: true,
	}

	suite.mockWorkflowService.On("ReverseApproval", mock.Anything, domain.EntityExpense, expenseID, userID, "duplicate receipt").
		Return(result, nil).Once()

	w := suite.postJSON(fmt.Sprintf("/api/v1/expenses/%s/reverse-approval", expenseID), userID,
		dto.ReverseApprovalRequest{Reason: "duplicate receipt"})

	suite.Equal(http.StatusOK, w.Code)

	var body dto.TransitionResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(domain.StatusDraft, body.Status)
	suite.mockWorkflowService.AssertExpectations(suite.T())
}

func (suite *WorkflowHandlerTestSuite) TestReverseApproval_ReasonRequired() {
	expenseID := uuid.NewString()
	userID := uuid.NewString()

	w := suite.postJSON(fmt.Sprintf("/api/v1/expenses/%s/reverse-approval", expenseID), userID,
		map[string]string{})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockWorkflowService.AssertNotCalled(suite.T(), "ReverseApproval", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWorkflowHandler(t *testing.T) {
	suite.Run(t, new(WorkflowHandlerTestSuite))
}
