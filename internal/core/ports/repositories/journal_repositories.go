package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/settleforge/sle_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalEntryReader defines read operations for journal data.
type JournalEntryReader interface {
	// FindEntryByID retrieves a journal entry header.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindLinesByEntryID retrieves an entry's lines ordered by line number.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error)

	// ListEntriesBySource retrieves entries created for a given source
	// document (e.g. all entries of one settlement).
	ListEntriesBySource(ctx context.Context, sourceKind, sourceID string) ([]domain.JournalEntry, error)

	// SumPostedAmountsByAccount totals the debit and credit lines of POSTED
	// entries against one account.
	SumPostedAmountsByAccount(ctx context.Context, accountID string) (totalDebit, totalCredit decimal.Decimal, err error)
}

// JournalEntryWriter defines write operations for journal data. A nil tx runs
// the write on the pool; the orchestrator passes its settlement transaction.
type JournalEntryWriter interface {
	// SaveEntry persists an entry header and its lines.
	SaveEntry(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, lines []domain.JournalLine) error

	// UpdateEntryStatus transitions an entry's status, rewriting the stored
	// totals and, for reversals, the back-link to the mirror entry. The row is
	// only touched while it still holds expectedStatus; a concurrent writer
	// that moved it first surfaces as apperrors.ErrConflict.
	UpdateEntryStatus(ctx context.Context, tx pgx.Tx, entryID string, expectedStatus, status domain.EntryStatus, totalDebit, totalCredit decimal.Decimal, reversedByID string, updatedBy string, updatedAt time.Time) error
}

// JournalRepositoryFacade combines journal repository interfaces with
// transaction control for the standalone post/reverse operations.
type JournalRepositoryFacade interface {
	JournalEntryReader
	JournalEntryWriter
	TransactionManager
}
