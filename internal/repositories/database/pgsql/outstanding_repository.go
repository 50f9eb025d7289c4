package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/settleforge/sle_backend/internal/apperrors"
	"github.com/settleforge/sle_backend/internal/core/domain"
	portsrepo "github.com/settleforge/sle_backend/internal/core/ports/repositories"
	"github.com/settleforge/sle_backend/internal/models"
	"github.com/settleforge/sle_backend/internal/utils/mapping"
	"github.com/shopspring/decimal"
)

type PgxOutstandingRepository struct {
	BaseRepository
}

// newPgxOutstandingRepository creates a new repository for outstanding lines.
func newPgxOutstandingRepository(pool *pgxpool.Pool) portsrepo.OutstandingLineRepository {
	return &PgxOutstandingRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.OutstandingLineRepository = (*PgxOutstandingRepository)(nil)

const outstandingColumns = `
	line_kind, line_id, counterparty_id, counterparty_kind,
	gross_amount, previously_settled_amount, version,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanOutstandingRow(row pgx.Row) (models.OutstandingLine, error) {
	var m models.OutstandingLine
	err := row.Scan(
		&m.LineKind,
		&m.LineID,
		&m.CounterpartyID,
		&m.CounterpartyKind,
		&m.GrossAmount,
		&m.PreviouslySettledAmount,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// findByRefs is the shared lookup; forUpdate appends the row lock clause.
// Refs are matched pairwise on the (line_kind, line_id) composite key.
func (r *PgxOutstandingRepository) findByRefs(ctx context.Context, q querier, refs []domain.LineRef, forUpdate bool) (map[domain.LineRef]domain.OutstandingLine, error) {
	result := make(map[domain.LineRef]domain.OutstandingLine, len(refs))
	if len(refs) == 0 {
		return result, nil
	}

	kinds := make([]string, len(refs))
	ids := make([]string, len(refs))
	for i, ref := range refs {
		kinds[i] = string(ref.Kind)
		ids[i] = ref.ID
	}

	query := `
		SELECT ` + outstandingColumns + `
		FROM outstanding_lines
		WHERE (line_kind, line_id) IN (
			SELECT unnest($1::text[]), unnest($2::text[])
		)
		ORDER BY line_kind, line_id
	`
	if forUpdate {
		query += " FOR UPDATE"
	}
	query += ";"

	rows, err := q.Query(ctx, query, kinds, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query outstanding lines: %w", err)
	}
	defer rows.Close()

	modelLines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.OutstandingLine, error) {
		return scanOutstandingRow(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan outstanding lines: %w", err)
	}

	for _, m := range modelLines {
		line := mapping.ToDomainOutstandingLine(m)
		result[line.Ref] = line
	}
	return result, nil
}

// FindByRefs retrieves the given lines keyed by their tagged reference.
func (r *PgxOutstandingRepository) FindByRefs(ctx context.Context, refs []domain.LineRef) (map[domain.LineRef]domain.OutstandingLine, error) {
	return r.findByRefs(ctx, r.Pool, refs, false)
}

// FindByRefsForUpdate retrieves the given lines with row-level locks held for
// the duration of tx.
func (r *PgxOutstandingRepository) FindByRefsForUpdate(ctx context.Context, tx pgx.Tx, refs []domain.LineRef) (map[domain.LineRef]domain.OutstandingLine, error) {
	return r.findByRefs(ctx, tx, refs, true)
}

// IncrementSettled adds amount to the line's previously settled amount under
// an optimistic version check.
func (r *PgxOutstandingRepository) IncrementSettled(ctx context.Context, tx pgx.Tx, ref domain.LineRef, amount decimal.Decimal, expectedVersion int64, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE outstanding_lines
		SET previously_settled_amount = previously_settled_amount + $4,
			version = version + 1,
			last_updated_at = $5,
			last_updated_by = $6
		WHERE line_kind = $1 AND line_id = $2 AND version = $3;
	`
	tag, err := r.q(tx).Exec(ctx, query, string(ref.Kind), ref.ID, expectedVersion, amount, updatedAt, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to update settled amount on %s/%s: %w", ref.Kind, ref.ID, err)
	}
	if tag.RowsAffected() == 0 {
		// Row vanished or its version moved; both surface as a conflict so
		// the orchestrator re-reads and retries.
		return fmt.Errorf("%w: line %s/%s changed concurrently", apperrors.ErrVersionConflict, ref.Kind, ref.ID)
	}
	return nil
}

// SaveLine persists a new outstanding line.
func (r *PgxOutstandingRepository) SaveLine(ctx context.Context, line domain.OutstandingLine) error {
	m := mapping.ToModelOutstandingLine(line)

	query := `
		INSERT INTO outstanding_lines (
			line_kind, line_id, counterparty_id, counterparty_kind,
			gross_amount, previously_settled_amount, version,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.LineKind,
		m.LineID,
		m.CounterpartyID,
		m.CounterpartyKind,
		m.GrossAmount,
		m.PreviouslySettledAmount,
		m.Version,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: line %s/%s already exists", apperrors.ErrDuplicate, m.LineKind, m.LineID)
		}
		return fmt.Errorf("failed to save outstanding line %s/%s: %w", m.LineKind, m.LineID, err)
	}
	return nil
}
