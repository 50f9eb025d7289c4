package services

import (
	portsrepo "github.com/settleforge/sle_backend/internal/core/ports/repositories"
	portssvc "github.com/settleforge/sle_backend/internal/core/ports/services"
	"github.com/settleforge/sle_backend/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Chart of accounts first since the posting engine resolves accounts
	// through it.
	container.ChartOfAccounts = NewChartOfAccountsService(repos.AccountRepo)

	container.Allocation = NewAllocationService()
	container.Prepayment = NewPrepaymentService(repos.PrepaymentRepo)
	container.Posting = NewPostingService(repos.JournalRepo, container.ChartOfAccounts)
	container.Outstanding = NewOutstandingService(repos.OutstandingRepo)

	container.Settlement = NewSettlementService(
		repos.SettlementRepo,
		repos.OutstandingRepo,
		repos.PrepaymentRepo,
		container.Allocation,
		container.Prepayment,
		container.Posting,
		EngineConfigFromApp(cfg),
	)

	return container
}

// EngineConfigFromApp maps application configuration onto the settlement
// engine's explicit config.
func EngineConfigFromApp(cfg *config.Config) EngineConfig {
	return EngineConfig{
		MaxSubmitRetries: cfg.SettlementMaxRetries,
		Accounts: AccountMap{
			ReceivableControl: cfg.ReceivableControlAccount,
			PayableControl:    cfg.PayableControlAccount,
			AllowanceExpense:  cfg.AllowanceExpenseAccount,
			AllowanceIncome:   cfg.AllowanceIncomeAccount,
			CustomerAdvances:  cfg.CustomerAdvancesAccount,
			SupplierAdvances:  cfg.SupplierAdvancesAccount,
			DefaultCash:       cfg.DefaultCashAccount,
			MethodAccounts:    cfg.MethodCashAccounts,
		},
	}
}

// Compile-time checks that the implementations satisfy their facades.
var (
	_ portssvc.ChartOfAccountsSvcFacade = (*chartOfAccountsService)(nil)
	_ portssvc.AllocationSvcFacade      = (*allocationService)(nil)
	_ portssvc.PrepaymentSvcFacade      = (*prepaymentService)(nil)
	_ portssvc.PostingSvcFacade         = (*postingService)(nil)
	_ portssvc.SettlementSvcFacade      = (*settlementService)(nil)
	_ portssvc.OutstandingSvcFacade     = (*outstandingService)(nil)
)
