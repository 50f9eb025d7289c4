package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/settleforge/sle_backend/internal/core/domain"
	"github.com/settleforge/sle_backend/internal/dto"
)

// PostingReaderSvc defines read operations for journal entries.
type PostingReaderSvc interface {
	// GetEntry retrieves an entry with its lines.
	GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// GetAccountBalance computes an account's net posted movement, signed by
	// the account's normal direction.
	GetAccountBalance(ctx context.Context, accountID string) (*domain.AccountBalance, error)
}

// PostingWriterSvc defines the posting lifecycle operations.
type PostingWriterSvc interface {
	// BuildEntry validates the input against the chart of accounts and
	// persists a DRAFT entry with dense line numbers.
	BuildEntry(ctx context.Context, input dto.BuildEntryInput, userID string) (*domain.JournalEntry, error)

	// BuildAndPost builds the entry and immediately posts it inside the
	// caller's transaction. Used by the settlement orchestrator.
	BuildAndPost(ctx context.Context, tx pgx.Tx, input dto.BuildEntryInput, userID string) (*domain.JournalEntry, error)

	// Post transitions a DRAFT entry to POSTED, recomputing totals from the
	// lines and rejecting unbalanced entries or non-detail accounts.
	Post(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error)

	// Cancel transitions a DRAFT entry to CANCELLED. Terminal, no effect.
	Cancel(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error)

	// Reverse creates and posts a mirror entry with every line's direction
	// flipped, links it via ReversalOfID, and marks the original REVERSED.
	Reverse(ctx context.Context, entryID string, reason string, userID string) (*domain.JournalEntry, error)
}

// PostingSvcFacade combines all posting engine service interfaces.
type PostingSvcFacade interface {
	PostingReaderSvc
	PostingWriterSvc
}
