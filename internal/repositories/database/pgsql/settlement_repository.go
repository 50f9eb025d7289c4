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

type PgxSettlementRepository struct {
	BaseRepository
}

// newPgxSettlementRepository creates a new repository for settlement documents.
func newPgxSettlementRepository(pool *pgxpool.Pool) portsrepo.SettlementRepositoryFacade {
	return &PgxSettlementRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.SettlementRepositoryFacade = (*PgxSettlementRepository)(nil)

const settlementColumns = `
	settlement_id, direction, counterparty_id, counterparty_kind, settlement_date,
	total_amount, collected_amount, allowance_amount,
	prepayment_applied_amount, prepayment_created_amount, journal_entry_id,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanSettlementRow(row pgx.Row) (models.SettlementDocument, error) {
	var m models.SettlementDocument
	err := row.Scan(
		&m.SettlementID,
		&m.Direction,
		&m.CounterpartyID,
		&m.CounterpartyKind,
		&m.SettlementDate,
		&m.TotalAmount,
		&m.CollectedAmount,
		&m.AllowanceAmount,
		&m.PrepaymentAppliedAmount,
		&m.PrepaymentCreatedAmount,
		&m.JournalEntryID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindSettlementByID retrieves a settlement with its line allocations and
// payment splits.
func (r *PgxSettlementRepository) FindSettlementByID(ctx context.Context, settlementID string) (*domain.SettlementDocument, error) {
	headerQuery := `SELECT ` + settlementColumns + ` FROM settlement_documents WHERE settlement_id = $1;`

	m, err := scanSettlementRow(r.Pool.QueryRow(ctx, headerQuery, settlementID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find settlement %s: %w", settlementID, err)
	}
	doc := mapping.ToDomainSettlementDocument(m)

	allocations, err := r.findAllocations(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	doc.Allocations = allocations

	splits, err := r.findSplits(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	doc.PaymentSplits = splits

	return &doc, nil
}

func (r *PgxSettlementRepository) findAllocations(ctx context.Context, settlementID string) ([]domain.LineAllocation, error) {
	query := `
		SELECT allocation_id, settlement_id, line_number, line_kind, line_id,
			allocated_amount, allowance_amount, balance_after,
			created_at, created_by, last_updated_at, last_updated_by
		FROM line_allocations
		WHERE settlement_id = $1
		ORDER BY line_number;
	`
	rows, err := r.Pool.Query(ctx, query, settlementID)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations for settlement %s: %w", settlementID, err)
	}
	defer rows.Close()

	modelAllocations, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.LineAllocation, error) {
		var m models.LineAllocation
		err := row.Scan(
			&m.AllocationID,
			&m.SettlementID,
			&m.LineNumber,
			&m.LineKind,
			&m.LineID,
			&m.AllocatedAmount,
			&m.AllowanceAmount,
			&m.BalanceAfter,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan allocations: %w", err)
	}

	allocations := make([]domain.LineAllocation, len(modelAllocations))
	for i, m := range modelAllocations {
		allocations[i] = mapping.ToDomainLineAllocation(m)
	}
	return allocations, nil
}

func (r *PgxSettlementRepository) findSplits(ctx context.Context, settlementID string) ([]domain.PaymentSplit, error) {
	query := `
		SELECT split_id, settlement_id, method_id, COALESCE(bank_id, ''),
			amount, COALESCE(reference_number, ''), due_date,
			created_at, created_by, last_updated_at, last_updated_by
		FROM payment_splits
		WHERE settlement_id = $1
		ORDER BY created_at, split_id;
	`
	rows, err := r.Pool.Query(ctx, query, settlementID)
	if err != nil {
		return nil, fmt.Errorf("failed to query splits for settlement %s: %w", settlementID, err)
	}
	defer rows.Close()

	modelSplits, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.PaymentSplit, error) {
		var m models.PaymentSplit
		err := row.Scan(
			&m.SplitID,
			&m.SettlementID,
			&m.MethodID,
			&m.BankID,
			&m.Amount,
			&m.ReferenceNumber,
			&m.DueDate,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan splits: %w", err)
	}

	splits := make([]domain.PaymentSplit, len(modelSplits))
	for i, m := range modelSplits {
		splits[i] = mapping.ToDomainPaymentSplit(m)
	}
	return splits, nil
}

// ListSettlementsByCounterparty retrieves settlement headers for a
// counterparty, newest first.
func (r *PgxSettlementRepository) ListSettlementsByCounterparty(ctx context.Context, counterpartyID string, limit int) ([]domain.SettlementDocument, error) {
	query := `
		SELECT ` + settlementColumns + `
		FROM settlement_documents
		WHERE counterparty_id = $1
		ORDER BY settlement_date DESC, created_at DESC
		LIMIT $2;
	`
	rows, err := r.Pool.Query(ctx, query, counterpartyID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlements for counterparty %s: %w", counterpartyID, err)
	}
	defer rows.Close()

	modelDocs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.SettlementDocument, error) {
		return scanSettlementRow(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan settlements: %w", err)
	}

	docs := make([]domain.SettlementDocument, len(modelDocs))
	for i, m := range modelDocs {
		docs[i] = mapping.ToDomainSettlementDocument(m)
	}
	return docs, nil
}

// SaveSettlement persists the document and all its children inside tx.
func (r *PgxSettlementRepository) SaveSettlement(ctx context.Context, tx pgx.Tx, doc domain.SettlementDocument, allocations []domain.LineAllocation, splits []domain.PaymentSplit) error {
	m := mapping.ToModelSettlementDocument(doc)

	headerQuery := `
		INSERT INTO settlement_documents (
			settlement_id, direction, counterparty_id, counterparty_kind, settlement_date,
			total_amount, collected_amount, allowance_amount,
			prepayment_applied_amount, prepayment_created_amount, journal_entry_id,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := tx.Exec(ctx, headerQuery,
		m.SettlementID,
		m.Direction,
		m.CounterpartyID,
		m.CounterpartyKind,
		m.SettlementDate,
		m.TotalAmount,
		m.CollectedAmount,
		m.AllowanceAmount,
		m.PrepaymentAppliedAmount,
		m.PrepaymentCreatedAmount,
		m.JournalEntryID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: settlement %s already exists", apperrors.ErrDuplicate, m.SettlementID)
		}
		return fmt.Errorf("failed to save settlement %s: %w", m.SettlementID, err)
	}

	allocationQuery := `
		INSERT INTO line_allocations (
			allocation_id, settlement_id, line_number, line_kind, line_id,
			allocated_amount, allowance_amount, balance_after,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	splitQuery := `
		INSERT INTO payment_splits (
			split_id, settlement_id, method_id, bank_id,
			amount, reference_number, due_date,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), $7, $8, $9, $10, $11);
	`
	batch := &pgx.Batch{}
	for _, a := range allocations {
		ma := mapping.ToModelLineAllocation(a)
		batch.Queue(allocationQuery,
			ma.AllocationID, ma.SettlementID, ma.LineNumber, ma.LineKind, ma.LineID,
			ma.AllocatedAmount, ma.AllowanceAmount, ma.BalanceAfter,
			ma.CreatedAt, ma.CreatedBy, ma.LastUpdatedAt, ma.LastUpdatedBy,
		)
	}
	for _, s := range splits {
		ms := mapping.ToModelPaymentSplit(s)
		batch.Queue(splitQuery,
			ms.SplitID, ms.SettlementID, ms.MethodID, ms.BankID,
			ms.Amount, ms.ReferenceNumber, ms.DueDate,
			ms.CreatedAt, ms.CreatedBy, ms.LastUpdatedAt, ms.LastUpdatedBy,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < len(allocations)+len(splits); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to save settlement %s children: %w", m.SettlementID, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close settlement %s child batch: %w", m.SettlementID, err)
	}

	return nil
}
