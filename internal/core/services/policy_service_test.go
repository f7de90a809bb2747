package services_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/planlane/project_delivery_app/internal/core/domain"
	portssvc "github.com/planlane/project_delivery_app/internal/core/ports/services"
	"github.com/planlane/project_delivery_app/internal/core/services"
)

type PolicyServiceTestSuite struct {
	suite.Suite
	service portssvc.PolicySvcFacade
}

func (suite *PolicyServiceTestSuite) SetupTest() {
	suite.service = services.NewPolicyService()
}

func (suite *PolicyServiceTestSuite) TestRequirement_DefaultsApply() {
	settings := domain.WorkflowSettings{ProjectID: "p-1"}

	rule := suite.service.Requirement(domain.KeyMilestoneSignoff, settings)
	suite.True(rule.Required)
	suite.Equal(domain.AuthorityBoth, rule.Authority)

	rule = suite.service.Requirement(domain.KeyMilestoneComplete, settings)
	suite.False(rule.Required)
}

func (suite *PolicyServiceTestSuite) TestCanAct_NotRequiredAllowsAnyone() {
	rule := domain.ApprovalRule{Required: false, Authority: domain.AuthorityBoth}

	suite.True(suite.service.CanAct(rule, domain.EntityMilestone, domain.RoleViewer, domain.ApprovalContext{}))
	suite.True(suite.service.CanAct(rule, domain.EntityMilestone, domain.RoleContributor, domain.ApprovalContext{}))
}

func (suite *PolicyServiceTestSuite) TestCanAct_AdminAlwaysPasses() {
	rule := domain.ApprovalRule{Required: true, Authority: domain.AuthorityCustomerOnly}

	suite.True(suite.service.CanAct(rule, domain.EntityDeliverable, domain.RoleAdmin, domain.ApprovalContext{}))
}

func (suite *PolicyServiceTestSuite) TestCanAct_AuthorityNoneAcceptsAnyRole() {
	rule := domain.ApprovalRule{Required: true, Authority: domain.AuthorityNone}

	suite.True(suite.service.CanAct(rule, domain.EntityMilestone, domain.RoleContributor, domain.ApprovalContext{}))
}

func (suite *PolicyServiceTestSuite) TestCanAct_CustomerOnlyRejectsSupplier() {
	rule := domain.ApprovalRule{Required: true, Authority: domain.AuthorityCustomerOnly}

	suite.False(suite.service.CanAct(rule, domain.EntityDeliverable, domain.RoleSupplierPM, domain.ApprovalContext{}))
	suite.True(suite.service.CanAct(rule, domain.EntityDeliverable, domain.RoleCustomerPM, domain.ApprovalContext{}))
}

func (suite *PolicyServiceTestSuite) TestAllowedRoles_PartyModes() {
	both := suite.service.AllowedRoles(domain.ApprovalRule{Authority: domain.AuthorityBoth}, domain.EntityMilestone, domain.ApprovalContext{})
	suite.ElementsMatch([]domain.ProjectRole{domain.RoleSupplierPM, domain.RoleCustomerPM}, both)

	either := suite.service.AllowedRoles(domain.ApprovalRule{Authority: domain.AuthorityEither}, domain.EntityMilestone, domain.ApprovalContext{})
	suite.ElementsMatch(both, either)

	supplier := suite.service.AllowedRoles(domain.ApprovalRule{Authority: domain.AuthoritySupplierOnly}, domain.EntityTimesheet, domain.ApprovalContext{})
	suite.Equal([]domain.ProjectRole{domain.RoleSupplierPM}, supplier)

	// The role-scoped aliases resolve to the same PM as the party modes.
	supplierRole := suite.service.AllowedRoles(domain.ApprovalRule{Authority: domain.AuthoritySupplierRole}, domain.EntityTimesheet, domain.ApprovalContext{})
	suite.Equal(supplier, supplierRole)

	none := suite.service.AllowedRoles(domain.ApprovalRule{Authority: domain.AuthorityNone}, domain.EntityMilestone, domain.ApprovalContext{})
	suite.Empty(none)
}

func (suite *PolicyServiceTestSuite) TestAllowedRoles_ConditionalExpense() {
	rule := domain.ApprovalRule{Required: true, Authority: domain.AuthorityConditional}

	chargeable := suite.service.AllowedRoles(rule, domain.EntityExpense, domain.ApprovalContext{ChargeableToCustomer: true})
	suite.ElementsMatch([]domain.ProjectRole{domain.RoleSupplierPM, domain.RoleCustomerPM}, chargeable)

	internal := suite.service.AllowedRoles(rule, domain.EntityExpense, domain.ApprovalContext{ChargeableToCustomer: false})
	suite.Equal([]domain.ProjectRole{domain.RoleSupplierPM}, internal)

	suite.True(suite.service.CanAct(rule, domain.EntityExpense, domain.RoleCustomerPM, domain.ApprovalContext{ChargeableToCustomer: true}))
	suite.False(suite.service.CanAct(rule, domain.EntityExpense, domain.RoleCustomerPM, domain.ApprovalContext{ChargeableToCustomer: false}))
}

// TestCanAct_FullAuthorityCrossProduct sweeps every authority mode against
// every entity type, role and chargeability flag, checking CanAct against an
// independently stated expectation for each combination.
func (suite *PolicyServiceTestSuite) TestCanAct_FullAuthorityCrossProduct() {
	modes := []domain.AuthorityMode{
		domain.AuthorityBoth,
		domain.AuthorityEither,
		domain.AuthoritySupplierOnly,
		domain.AuthorityCustomerOnly,
		domain.AuthoritySupplierRole,
		domain.AuthorityCustomerRole,
		domain.AuthorityNone,
		domain.AuthorityConditional,
	}
	entityTypes := []domain.EntityType{
		domain.EntityMilestone,
		domain.EntityDeliverable,
		domain.EntityTimesheet,
		domain.EntityExpense,
		domain.EntityVariation,
	}
	roles := []domain.ProjectRole{
		domain.RoleSupplierPM,
		domain.RoleCustomerPM,
		domain.RoleSupplierFinance,
		domain.RoleCustomerFinance,
		domain.RoleContributor,
		domain.RoleViewer,
		domain.RoleAdmin,
	}

	grantsTo := func(mode domain.AuthorityMode, entityType domain.EntityType, chargeable bool) map[domain.ProjectRole]bool {
		switch mode {
		case domain.AuthorityBoth, domain.AuthorityEither:
			return map[domain.ProjectRole]bool{domain.RoleSupplierPM: true, domain.RoleCustomerPM: true}
		case domain.AuthoritySupplierOnly, domain.AuthoritySupplierRole:
			return map[domain.ProjectRole]bool{domain.RoleSupplierPM: true}
		case domain.AuthorityCustomerOnly, domain.AuthorityCustomerRole:
			return map[domain.ProjectRole]bool{domain.RoleCustomerPM: true}
		case domain.AuthorityConditional:
			if entityType == domain.EntityExpense && chargeable {
				return map[domain.ProjectRole]bool{domain.RoleSupplierPM: true, domain.RoleCustomerPM: true}
			}
			return map[domain.ProjectRole]bool{domain.RoleSupplierPM: true}
		}
		return nil
	}

	for _, mode := range modes {
		rule := domain.ApprovalRule{Required: true, Authority: mode}
		for _, entityType := range entityTypes {
			for _, chargeable := range []bool{false, true} {
				apctx := domain.ApprovalContext{ChargeableToCustomer: chargeable}
				for _, role := range roles {
					want := role == domain.RoleAdmin ||
						mode == domain.AuthorityNone ||
						grantsTo(mode, entityType, chargeable)[role]

					got := suite.service.CanAct(rule, entityType, role, apctx)
					suite.Equalf(want, got, "mode=%s entity=%s role=%s chargeable=%t", mode, entityType, role, chargeable)
				}
			}
		}
	}
}

func (suite *PolicyServiceTestSuite) TestCanAct_UnknownAuthorityAllowsNobody() {
	rule := domain.ApprovalRule{Required: true, Authority: domain.AuthorityMode("MYSTERY")}

	suite.Empty(suite.service.AllowedRoles(rule, domain.EntityMilestone, domain.ApprovalContext{}))
	suite.False(suite.service.CanAct(rule, domain.EntityMilestone, domain.RoleSupplierPM, domain.ApprovalContext{}))
	suite.False(suite.service.CanAct(rule, domain.EntityMilestone, domain.RoleCustomerPM, domain.ApprovalContext{}))
}

func TestPolicyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PolicyServiceTestSuite))
}
