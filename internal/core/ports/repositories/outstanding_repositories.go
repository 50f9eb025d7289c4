package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/settleforge/sle_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// OutstandingLineRepository is the collaborator port onto receivable/payable
// lines owned by the sales/purchase subsystems. The engine reads lines and
// atomically increments the settled amount under a version check.
type OutstandingLineRepository interface {
	// FindByRefs retrieves the given lines keyed by their tagged reference.
	FindByRefs(ctx context.Context, refs []domain.LineRef) (map[domain.LineRef]domain.OutstandingLine, error)

	// FindByRefsForUpdate retrieves the given lines with row-level locks held
	// for the duration of tx. Callers must pass refs in ascending order so
	// concurrent settlements lock rows in the same global order.
	FindByRefsForUpdate(ctx context.Context, tx pgx.Tx, refs []domain.LineRef) (map[domain.LineRef]domain.OutstandingLine, error)

	// IncrementSettled adds amount to the line's previously settled amount.
	// Returns apperrors.ErrVersionConflict if the row's version no longer
	// matches expectedVersion.
	IncrementSettled(ctx context.Context, tx pgx.Tx, ref domain.LineRef, amount decimal.Decimal, expectedVersion int64, updatedBy string, updatedAt time.Time) error

	// SaveLine persists a new outstanding line. Exposed for the seeding
	// surface used while the originating subsystems live elsewhere.
	SaveLine(ctx context.Context, line domain.OutstandingLine) error
}
