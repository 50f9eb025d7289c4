package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/settleforge/sle_backend/internal/core/domain"
)

// PrepaymentReader defines read operations for prepayment data.
type PrepaymentReader interface {
	// FindPrepaymentByID retrieves a single prepayment record.
	FindPrepaymentByID(ctx context.Context, prepaymentID string) (*domain.PrepaymentRecord, error)

	// ListPrepaymentsByCounterparty retrieves all prepayment records for a
	// counterparty, oldest first.
	ListPrepaymentsByCounterparty(ctx context.Context, counterpartyID string, kind domain.CounterpartyKind) ([]domain.PrepaymentRecord, error)

	// FindUsagesByPrepaymentID retrieves the draw history of a prepayment.
	FindUsagesByPrepaymentID(ctx context.Context, prepaymentID string) ([]domain.PrepaymentUsage, error)
}

// PrepaymentWriter defines write operations for prepayment data. All writers
// run inside the settlement transaction, hence the explicit tx parameter.
type PrepaymentWriter interface {
	// SavePrepayment persists a new prepayment record.
	SavePrepayment(ctx context.Context, tx pgx.Tx, record domain.PrepaymentRecord) error

	// FindPrepaymentsByIDsForUpdate retrieves the given prepayments with
	// row-level locks held for the duration of tx. IDs must be passed in
	// ascending order to keep the global lock order deterministic.
	FindPrepaymentsByIDsForUpdate(ctx context.Context, tx pgx.Tx, prepaymentIDs []string) (map[string]domain.PrepaymentRecord, error)

	// ApplyDraw inserts the usage row and increments the record's used
	// amount. Returns apperrors.ErrVersionConflict if the record's version
	// no longer matches expectedVersion.
	ApplyDraw(ctx context.Context, tx pgx.Tx, usage domain.PrepaymentUsage, expectedVersion int64) error
}

// PrepaymentRepositoryFacade combines all prepayment repository interfaces.
type PrepaymentRepositoryFacade interface {
	PrepaymentReader
	PrepaymentWriter
}
