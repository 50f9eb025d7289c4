package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/settleforge/sle_backend/internal/apperrors"
	"github.com/settleforge/sle_backend/internal/core/domain"
	portsrepo "github.com/settleforge/sle_backend/internal/core/ports/repositories"
	"github.com/settleforge/sle_backend/internal/models"
	"github.com/settleforge/sle_backend/internal/utils/mapping"
)

type PgxPrepaymentRepository struct {
	BaseRepository
}

// newPgxPrepaymentRepository creates a new repository for prepayment data.
func newPgxPrepaymentRepository(pool *pgxpool.Pool) portsrepo.PrepaymentRepositoryFacade {
	return &PgxPrepaymentRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.PrepaymentRepositoryFacade = (*PgxPrepaymentRepository)(nil)

const prepaymentColumns = `
	prepayment_id, counterparty_id, counterparty_kind, amount, used_amount,
	COALESCE(originating_settlement_id, ''), COALESCE(source_prepayment_id, ''), version,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanPrepaymentRow(row pgx.Row) (models.PrepaymentRecord, error) {
	var m models.PrepaymentRecord
	err := row.Scan(
		&m.PrepaymentID,
		&m.CounterpartyID,
		&m.CounterpartyKind,
		&m.Amount,
		&m.UsedAmount,
		&m.OriginatingSettlementID,
		&m.SourcePrepaymentID,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindPrepaymentByID retrieves a single prepayment record.
func (r *PgxPrepaymentRepository) FindPrepaymentByID(ctx context.Context, prepaymentID string) (*domain.PrepaymentRecord, error) {
	query := `SELECT ` + prepaymentColumns + ` FROM prepayment_records WHERE prepayment_id = $1;`

	m, err := scanPrepaymentRow(r.Pool.QueryRow(ctx, query, prepaymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find prepayment %s: %w", prepaymentID, err)
	}

	record := mapping.ToDomainPrepaymentRecord(m)
	return &record, nil
}

// ListPrepaymentsByCounterparty retrieves all prepayment records for a
// counterparty, oldest first.
func (r *PgxPrepaymentRepository) ListPrepaymentsByCounterparty(ctx context.Context, counterpartyID string, kind domain.CounterpartyKind) ([]domain.PrepaymentRecord, error) {
	query := `
		SELECT ` + prepaymentColumns + `
		FROM prepayment_records
		WHERE counterparty_id = $1 AND counterparty_kind = $2
		ORDER BY created_at, prepayment_id;
	`
	rows, err := r.Pool.Query(ctx, query, counterpartyID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to query prepayments for counterparty %s: %w", counterpartyID, err)
	}
	defer rows.Close()

	modelRecords, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.PrepaymentRecord, error) {
		return scanPrepaymentRow(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan prepayments: %w", err)
	}

	records := make([]domain.PrepaymentRecord, len(modelRecords))
	for i, m := range modelRecords {
		records[i] = mapping.ToDomainPrepaymentRecord(m)
	}
	return records, nil
}

// FindUsagesByPrepaymentID retrieves the draw history of a prepayment.
func (r *PgxPrepaymentRepository) FindUsagesByPrepaymentID(ctx context.Context, prepaymentID string) ([]domain.PrepaymentUsage, error) {
	query := `
		SELECT usage_id, prepayment_id, settlement_id, amount, usage_date,
			created_at, created_by, last_updated_at, last_updated_by
		FROM prepayment_usages
		WHERE prepayment_id = $1
		ORDER BY usage_date, usage_id;
	`
	rows, err := r.Pool.Query(ctx, query, prepaymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query usages for prepayment %s: %w", prepaymentID, err)
	}
	defer rows.Close()

	modelUsages, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.PrepaymentUsage, error) {
		var m models.PrepaymentUsage
		err := row.Scan(
			&m.UsageID,
			&m.PrepaymentID,
			&m.SettlementID,
			&m.Amount,
			&m.UsageDate,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan usages: %w", err)
	}

	usages := make([]domain.PrepaymentUsage, len(modelUsages))
	for i, m := range modelUsages {
		usages[i] = mapping.ToDomainPrepaymentUsage(m)
	}
	return usages, nil
}

// SavePrepayment persists a new prepayment record.
func (r *PgxPrepaymentRepository) SavePrepayment(ctx context.Context, tx pgx.Tx, record domain.PrepaymentRecord) error {
	m := mapping.ToModelPrepaymentRecord(record)

	query := `
		INSERT INTO prepayment_records (
			prepayment_id, counterparty_id, counterparty_kind, amount, used_amount,
			originating_settlement_id, source_prepayment_id, version,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, $9, $10, $11, $12);
	`
	_, err := r.q(tx).Exec(ctx, query,
		m.PrepaymentID,
		m.CounterpartyID,
		m.CounterpartyKind,
		m.Amount,
		m.UsedAmount,
		m.OriginatingSettlementID,
		m.SourcePrepaymentID,
		m.Version,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: prepayment %s already exists", apperrors.ErrDuplicate, m.PrepaymentID)
		}
		return fmt.Errorf("failed to save prepayment %s: %w", m.PrepaymentID, err)
	}
	return nil
}

// FindPrepaymentsByIDsForUpdate retrieves the given prepayments with row-level
// locks held for the duration of tx.
func (r *PgxPrepaymentRepository) FindPrepaymentsByIDsForUpdate(ctx context.Context, tx pgx.Tx, prepaymentIDs []string) (map[string]domain.PrepaymentRecord, error) {
	result := make(map[string]domain.PrepaymentRecord, len(prepaymentIDs))
	if len(prepaymentIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT ` + prepaymentColumns + `
		FROM prepayment_records
		WHERE prepayment_id = ANY($1)
		ORDER BY prepayment_id
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, prepaymentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock prepayments: %w", err)
	}
	defer rows.Close()

	modelRecords, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.PrepaymentRecord, error) {
		return scanPrepaymentRow(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan locked prepayments: %w", err)
	}

	for _, m := range modelRecords {
		record := mapping.ToDomainPrepaymentRecord(m)
		result[record.PrepaymentID] = record
	}
	return result, nil
}

// ApplyDraw inserts the usage row and increments the record's used amount
// under an optimistic version check.
func (r *PgxPrepaymentRepository) ApplyDraw(ctx context.Context, tx pgx.Tx, usage domain.PrepaymentUsage, expectedVersion int64) error {
	m := mapping.ToModelPrepaymentUsage(usage)

	updateQuery := `
		UPDATE prepayment_records
		SET used_amount = used_amount + $3,
			version = version + 1,
			last_updated_at = $4,
			last_updated_by = $5
		WHERE prepayment_id = $1 AND version = $2;
	`
	tag, err := tx.Exec(ctx, updateQuery,
		m.PrepaymentID,
		expectedVersion,
		m.Amount,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update used amount on prepayment %s: %w", m.PrepaymentID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: prepayment %s changed concurrently", apperrors.ErrVersionConflict, m.PrepaymentID)
	}

	insertQuery := `
		INSERT INTO prepayment_usages (
			usage_id, prepayment_id, settlement_id, amount, usage_date,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = tx.Exec(ctx, insertQuery,
		m.UsageID,
		m.PrepaymentID,
		m.SettlementID,
		m.Amount,
		m.UsageDate,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save usage %s: %w", m.UsageID, err)
	}
	return nil
}
