package services

import (
	"context"

	"github.com/settleforge/sle_backend/internal/core/domain"
	"github.com/settleforge/sle_backend/internal/dto"
)

// SettlementReaderSvc defines read operations for settlements.
type SettlementReaderSvc interface {
	// GetSettlement retrieves a settlement with its children.
	GetSettlement(ctx context.Context, settlementID string) (*domain.SettlementDocument, error)

	// ListSettlements retrieves a counterparty's settlements, newest first.
	ListSettlements(ctx context.Context, counterpartyID string, limit int) ([]domain.SettlementDocument, error)
}

// SettlementWriterSvc is the transaction boundary of the engine.
type SettlementWriterSvc interface {
	// SubmitSettlement runs the full settlement sequence atomically:
	// lock lines, allocate, persist document and children, update the
	// prepayment ledger, build and post the journal entry, increment the
	// lines' settled amounts. Any failure rolls everything back.
	SubmitSettlement(ctx context.Context, req dto.CreateSettlementRequest, userID string) (*domain.SettlementDocument, error)
}

// SettlementSvcFacade combines all settlement orchestrator interfaces.
type SettlementSvcFacade interface {
	SettlementReaderSvc
	SettlementWriterSvc
}
