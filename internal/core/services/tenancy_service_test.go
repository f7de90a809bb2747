package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/planlane/project_delivery_app/internal/apperrors"
	"github.com/planlane/project_delivery_app/internal/core/domain"
	portssvc "github.com/planlane/project_delivery_app/internal/core/ports/services"
	"github.com/planlane/project_delivery_app/internal/core/services"
)

type TenancyServiceTestSuite struct {
	suite.Suite
	mockUserRepo    *MockUserRepository
	mockOrgRepo     *MockOrgRepository
	mockProjectRepo *MockProjectRepository
	service         portssvc.TenancySvcFacade

	userID    string
	projectID string
	orgID     string
	project   *domain.Project
}

func (suite *TenancyServiceTestSuite) SetupTest() {
	suite.mockUserRepo = new(MockUserRepository)
	suite.mockOrgRepo = new(MockOrgRepository)
	suite.mockProjectRepo = new(MockProjectRepository)
	suite.service = services.NewTenancyService(suite.mockUserRepo, suite.mockOrgRepo, suite.mockProjectRepo)

	suite.userID = uuid.NewString()
	suite.projectID = uuid.NewString()
	suite.orgID = uuid.NewString()
	suite.project = &domain.Project{ProjectID: suite.projectID, OrganisationID: suite.orgID}
}

func (suite *TenancyServiceTestSuite) TestResolveAccess_SystemAdmin() {
	ctx := context.Background()
	admin := &domain.User{UserID: suite.userID, IsSystemAdmin: true}

	suite.mockUserRepo.On("FindUserByID", ctx, suite.userID).Return(admin, nil).Once()

	access, err := suite.service.ResolveAccess(ctx, suite.userID, suite.projectID)

	suite.Require().NoError(err)
	suite.Equal(domain.RoleAdmin, access.Role)
	suite.Equal(domain.SourceSystemOverride, access.Source)
	// The project and memberships are never consulted for a system admin.
	suite.mockProjectRepo.AssertNotCalled(suite.T(), "FindProjectByID", ctx, suite.projectID)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *TenancyServiceTestSuite) TestResolveAccess_OrgOverride() {
	ctx := context.Background()
	user := &domain.User{UserID: suite.userID}
	orgMembership := &domain.OrgMembership{UserID: suite.userID, OrganisationID: suite.orgID, Role: domain.OrgRoleAdmin}

	suite.mockUserRepo.On("FindUserByID", ctx, suite.userID).Return(user, nil).Once()
	suite.mockProjectRepo.On("FindProjectByID", ctx, suite.projectID).Return(suite.project, nil).Once()
	suite.mockOrgRepo.On("FindOrgMembership", ctx, suite.userID, suite.orgID).Return(orgMembership, nil).Once()

	access, err := suite.service.ResolveAccess(ctx, suite.userID, suite.projectID)

	suite.Require().NoError(err)
	suite.Equal(domain.RoleAdmin, access.Role)
	suite.Equal(domain.SourceOrgOverride, access.Source)
	suite.mockProjectRepo.AssertNotCalled(suite.T(), "FindProjectMembership", ctx, suite.userID, suite.projectID)
}

func (suite *TenancyServiceTestSuite) TestResolveAccess_OrgMemberDoesNotOverride() {
	ctx := context.Background()
	user := &domain.User{UserID: suite.userID}
	orgMembership := &domain.OrgMembership{UserID: suite.userID, OrganisationID: suite.orgID, Role: domain.OrgRoleMember}
	projectMembership := &domain.ProjectMembership{UserID: suite.userID, ProjectID: suite.projectID, Role: domain.RoleContributor}

	suite.mockUserRepo.On("FindUserByID", ctx, suite.userID).Return(user, nil).Once()
	suite.mockProjectRepo.On("FindProjectByID", ctx, suite.projectID).Return(suite.project, nil).Once()
	suite.mockOrgRepo.On("FindOrgMembership", ctx, suite.userID, suite.orgID).Return(orgMembership, nil).Once()
	suite.mockProjectRepo.On("FindProjectMembership", ctx, suite.userID, suite.projectID).Return(projectMembership, nil).Once()

	access, err := suite.service.ResolveAccess(ctx, suite.userID, suite.projectID)

	suite.Require().NoError(err)
	suite.Equal(domain.RoleContributor, access.Role)
	suite.Equal(domain.SourceExplicitMembership, access.Source)
}

func (suite *TenancyServiceTestSuite) TestResolveAccess_ExplicitMembership() {
	ctx := context.Background()
	user := &domain.User{UserID: suite.userID}
	projectMembership := &domain.ProjectMembership{UserID: suite.userID, ProjectID: suite.projectID, Role: domain.RoleSupplierPM}

	suite.mockUserRepo.On("FindUserByID", ctx, suite.userID).Return(user, nil).Once()
	suite.mockProjectRepo.On("FindProjectByID", ctx, suite.projectID).Return(suite.project, nil).Once()
	suite.mockOrgRepo.On("FindOrgMembership", ctx, suite.userID, suite.orgID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockProjectRepo.On("FindProjectMembership", ctx, suite.userID, suite.projectID).Return(projectMembership, nil).Once()

	access, err := suite.service.ResolveAccess(ctx, suite.userID, suite.projectID)

	suite.Require().NoError(err)
	suite.Equal(domain.RoleSupplierPM, access.Role)
	suite.Equal(domain.SourceExplicitMembership, access.Source)
}

func (suite *TenancyServiceTestSuite) TestResolveAccess_NoMembershipIsDeniedNotError() {
	ctx := context.Background()
	user := &domain.User{UserID: suite.userID}

	suite.mockUserRepo.On("FindUserByID", ctx, suite.userID).Return(user, nil).Once()
	suite.mockProjectRepo.On("FindProjectByID", ctx, suite.projectID).Return(suite.project, nil).Once()
	suite.mockOrgRepo.On("FindOrgMembership", ctx, suite.userID, suite.orgID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockProjectRepo.On("FindProjectMembership", ctx, suite.userID, suite.projectID).Return(nil, apperrors.ErrNotFound).Once()

	access, err := suite.service.ResolveAccess(ctx, suite.userID, suite.projectID)

	suite.Require().NoError(err)
	suite.Equal(domain.RoleNone, access.Role)
	suite.Equal(domain.SourceDenied, access.Source)
	suite.False(access.CanWrite())
}

func (suite *TenancyServiceTestSuite) TestResolveAccess_UnknownProjectDenied() {
	ctx := context.Background()
	user := &domain.User{UserID: suite.userID}

	suite.mockUserRepo.On("FindUserByID", ctx, suite.userID).Return(user, nil).Once()
	suite.mockProjectRepo.On("FindProjectByID", ctx, suite.projectID).Return(nil, apperrors.ErrNotFound).Once()

	access, err := suite.service.ResolveAccess(ctx, suite.userID, suite.projectID)

	suite.Require().NoError(err)
	suite.Equal(domain.RoleNone, access.Role)
	suite.Equal(domain.SourceDenied, access.Source)
}

func (suite *TenancyServiceTestSuite) TestResolveAccess_UnknownUserDenied() {
	ctx := context.Background()

	suite.mockUserRepo.On("FindUserByID", ctx, suite.userID).Return(nil, apperrors.ErrNotFound).Once()

	access, err := suite.service.ResolveAccess(ctx, suite.userID, suite.projectID)

	suite.Require().NoError(err)
	suite.Equal(domain.SourceDenied, access.Source)
}

func (suite *TenancyServiceTestSuite) TestRequireRole_UnknownProjectIsNotFound() {
	ctx := context.Background()

	suite.mockProjectRepo.On("FindProjectByID", ctx, suite.projectID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.RequireRole(ctx, suite.userID, suite.projectID, domain.RoleSupplierPM)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *TenancyServiceTestSuite) TestRequireRole_ViewerForbidden() {
	ctx := context.Background()
	user := &domain.User{UserID: suite.userID}
	viewer := &domain.ProjectMembership{UserID: suite.userID, ProjectID: suite.projectID, Role: domain.RoleViewer}

	// RequireRole checks project existence first and resolution loads it again.
	suite.mockProjectRepo.On("FindProjectByID", ctx, suite.projectID).Return(suite.project, nil)
	suite.mockUserRepo.On("FindUserByID", ctx, suite.userID).Return(user, nil).Once()
	suite.mockOrgRepo.On("FindOrgMembership", ctx, suite.userID, suite.orgID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockProjectRepo.On("FindProjectMembership", ctx, suite.userID, suite.projectID).Return(viewer, nil).Once()

	_, err := suite.service.RequireRole(ctx, suite.userID, suite.projectID, domain.RoleSupplierPM, domain.RoleCustomerPM)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *TenancyServiceTestSuite) TestRequireRole_AllowedRolePasses() {
	ctx := context.Background()
	user := &domain.User{UserID: suite.userID}
	pm := &domain.ProjectMembership{UserID: suite.userID, ProjectID: suite.projectID, Role: domain.RoleCustomerPM}

	suite.mockProjectRepo.On("FindProjectByID", ctx, suite.projectID).Return(suite.project, nil)
	suite.mockUserRepo.On("FindUserByID", ctx, suite.userID).Return(user, nil).Once()
	suite.mockOrgRepo.On("FindOrgMembership", ctx, suite.userID, suite.orgID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockProjectRepo.On("FindProjectMembership", ctx, suite.userID, suite.projectID).Return(pm, nil).Once()

	access, err := suite.service.RequireRole(ctx, suite.userID, suite.projectID, domain.RoleSupplierPM, domain.RoleCustomerPM)

	suite.Require().NoError(err)
	suite.Equal(domain.RoleCustomerPM, access.Role)
}

func (suite *TenancyServiceTestSuite) TestRequireRole_AdminAlwaysPasses() {
	ctx := context.Background()
	admin := &domain.User{UserID: suite.userID, IsSystemAdmin: true}

	suite.mockProjectRepo.On("FindProjectByID", ctx, suite.projectID).Return(suite.project, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.userID).Return(admin, nil).Once()

	access, err := suite.service.RequireRole(ctx, suite.userID, suite.projectID, domain.RoleSupplierFinance)

	suite.Require().NoError(err)
	suite.Equal(domain.RoleAdmin, access.Role)
}

func TestTenancyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TenancyServiceTestSuite))
}
