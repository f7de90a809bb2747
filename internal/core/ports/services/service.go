package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	User      UserSvcFacade
	Org       OrgSvcFacade
	Project   ProjectSvcFacade
	Tenancy   TenancySvcFacade
	Policy    PolicySvcFacade
	Plan      PlanSvcFacade
	Worklog   WorklogSvcFacade
	Workflow  WorkflowSvcFacade
	Baseline  BaselineSvcFacade
	Variation VariationSvcFacade
	Audit     AuditSvcFacade

	TokenService       TokenSvcFacade
	GoogleOAuthHandler GoogleOAuthHandlerSvcFacade
}
