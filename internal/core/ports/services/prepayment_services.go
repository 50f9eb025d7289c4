package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/settleforge/sle_backend/internal/core/domain"
	"github.com/settleforge/sle_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// PrepaymentReaderSvc defines read operations over the prepayment ledger.
type PrepaymentReaderSvc interface {
	// GetBalance aggregates a counterparty's advances and open balance.
	GetBalance(ctx context.Context, counterpartyID string, kind domain.CounterpartyKind) (*dto.PrepaymentBalanceResponse, error)

	// ListUsages returns the draw history of one prepayment record.
	ListUsages(ctx context.Context, prepaymentID string) ([]domain.PrepaymentUsage, error)
}

// PrepaymentWriterSvc defines the two mutators of the prepayment ledger. Both
// run inside the caller's settlement transaction.
type PrepaymentWriterSvc interface {
	// CreateAdvance records a new advance for the counterparty.
	CreateAdvance(ctx context.Context, tx pgx.Tx, counterpartyID string, kind domain.CounterpartyKind, amount decimal.Decimal, originatingSettlementID string, userID string) (*domain.PrepaymentRecord, error)

	// Draw consumes part of a locked prepayment record. The record must have
	// been fetched with FindPrepaymentsByIDsForUpdate inside tx; Draw is the
	// only mutator of UsedAmount.
	Draw(ctx context.Context, tx pgx.Tx, record domain.PrepaymentRecord, amount decimal.Decimal, settlementID string, date time.Time, userID string) (*domain.PrepaymentUsage, error)
}

// PrepaymentSvcFacade combines all prepayment ledger service interfaces.
type PrepaymentSvcFacade interface {
	PrepaymentReaderSvc
	PrepaymentWriterSvc
}
