package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/settleforge/sle_backend/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	outstandingRepo := newPgxOutstandingRepository(dbPool)
	prepaymentRepo := newPgxPrepaymentRepository(dbPool)
	settlementRepo := newPgxSettlementRepository(dbPool)
	journalRepo := newPgxJournalRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:     accountRepo,
		OutstandingRepo: outstandingRepo,
		PrepaymentRepo:  prepaymentRepo,
		SettlementRepo:  settlementRepo,
		JournalRepo:     journalRepo,
	}
}
