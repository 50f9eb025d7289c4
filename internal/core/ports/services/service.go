package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	ChartOfAccounts ChartOfAccountsSvcFacade
	Allocation      AllocationSvcFacade
	Prepayment      PrepaymentSvcFacade
	Posting         PostingSvcFacade
	Settlement      SettlementSvcFacade
	Outstanding     OutstandingSvcFacade
}
