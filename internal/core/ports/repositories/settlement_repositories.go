package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/settleforge/sle_backend/internal/core/domain"
)

// SettlementReader defines read operations for settlement documents.
type SettlementReader interface {
	// FindSettlementByID retrieves a settlement with its line allocations
	// and payment splits.
	FindSettlementByID(ctx context.Context, settlementID string) (*domain.SettlementDocument, error)

	// ListSettlementsByCounterparty retrieves settlement headers for a
	// counterparty, newest first.
	ListSettlementsByCounterparty(ctx context.Context, counterpartyID string, limit int) ([]domain.SettlementDocument, error)
}

// SettlementWriter defines write operations for settlement documents.
type SettlementWriter interface {
	// SaveSettlement persists the document and all its children inside tx.
	// Documents are immutable once written; there is no update method.
	SaveSettlement(ctx context.Context, tx pgx.Tx, doc domain.SettlementDocument, allocations []domain.LineAllocation, splits []domain.PaymentSplit) error
}

// SettlementRepositoryFacade combines settlement repository interfaces with
// transaction control; the orchestrator owns the transaction boundary.
type SettlementRepositoryFacade interface {
	SettlementReader
	SettlementWriter
	TransactionManager
}
