package pgsql

import (
	"context"
	"errors"
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

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal data.
func newPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

const entryColumns = `
	entry_id, entry_date, kind, status, description, fiscal_year, fiscal_period,
	COALESCE(source_kind, ''), COALESCE(source_id, ''), total_debit, total_credit,
	COALESCE(reversal_of_id, ''), COALESCE(reversed_by_id, ''),
	created_at, created_by, last_updated_at, last_updated_by
`

func scanEntryRow(row pgx.Row) (models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID,
		&m.EntryDate,
		&m.Kind,
		&m.Status,
		&m.Description,
		&m.FiscalYear,
		&m.FiscalPeriod,
		&m.SourceKind,
		&m.SourceID,
		&m.TotalDebit,
		&m.TotalCredit,
		&m.ReversalOfID,
		&m.ReversedByID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindEntryByID retrieves a journal entry header.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1;`

	m, err := scanEntryRow(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find journal entry %s: %w", entryID, err)
	}

	entry := mapping.ToDomainJournalEntry(m)
	return &entry, nil
}

// FindLinesByEntryID retrieves an entry's lines ordered by line number.
func (r *PgxJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	query := `
		SELECT line_id, entry_id, line_number, account_id, direction, amount, COALESCE(memo, ''),
			created_at, created_by, last_updated_at, last_updated_by
		FROM journal_lines
		WHERE entry_id = $1
		ORDER BY line_number;
	`
	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for entry %s: %w", entryID, err)
	}
	defer rows.Close()

	modelLines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.JournalLine, error) {
		var m models.JournalLine
		err := row.Scan(
			&m.LineID,
			&m.EntryID,
			&m.LineNumber,
			&m.AccountID,
			&m.Direction,
			&m.Amount,
			&m.Memo,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan lines: %w", err)
	}

	return mapping.ToDomainJournalLineSlice(modelLines), nil
}

// ListEntriesBySource retrieves entries created for a given source document.
func (r *PgxJournalRepository) ListEntriesBySource(ctx context.Context, sourceKind, sourceID string) ([]domain.JournalEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		WHERE source_kind = $1 AND source_id = $2
		ORDER BY created_at, entry_id;
	`
	rows, err := r.Pool.Query(ctx, query, sourceKind, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries for source %s/%s: %w", sourceKind, sourceID, err)
	}
	defer rows.Close()

	modelEntries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.JournalEntry, error) {
		return scanEntryRow(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan entries: %w", err)
	}

	entries := make([]domain.JournalEntry, len(modelEntries))
	for i, m := range modelEntries {
		entries[i] = mapping.ToDomainJournalEntry(m)
	}
	return entries, nil
}

// SumPostedAmountsByAccount totals the debit and credit lines of POSTED
// entries against one account.
func (r *PgxJournalRepository) SumPostedAmountsByAccount(ctx context.Context, accountID string) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT
			COALESCE(SUM(jl.amount) FILTER (WHERE jl.direction = 'DEBIT'), 0),
			COALESCE(SUM(jl.amount) FILTER (WHERE jl.direction = 'CREDIT'), 0)
		FROM journal_lines jl
		JOIN journal_entries je ON je.entry_id = jl.entry_id
		WHERE jl.account_id = $1 AND je.status = 'POSTED';
	`
	var totalDebit, totalCredit decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, accountID).Scan(&totalDebit, &totalCredit); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum posted lines for account %s: %w", accountID, err)
	}
	return totalDebit, totalCredit, nil
}

// SaveEntry persists an entry header and its lines. A nil tx runs on the pool.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, lines []domain.JournalLine) error {
	m := mapping.ToModelJournalEntry(entry)
	q := r.q(tx)

	headerQuery := `
		INSERT INTO journal_entries (
			entry_id, entry_date, kind, status, description, fiscal_year, fiscal_period,
			source_kind, source_id, total_debit, total_credit,
			reversal_of_id, reversed_by_id,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), $10, $11,
			NULLIF($12, ''), NULLIF($13, ''), $14, $15, $16, $17);
	`
	_, err := q.Exec(ctx, headerQuery,
		m.EntryID,
		m.EntryDate,
		m.Kind,
		m.Status,
		m.Description,
		m.FiscalYear,
		m.FiscalPeriod,
		m.SourceKind,
		m.SourceID,
		m.TotalDebit,
		m.TotalCredit,
		m.ReversalOfID,
		m.ReversedByID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: journal entry %s already exists", apperrors.ErrDuplicate, m.EntryID)
		}
		return fmt.Errorf("failed to save journal entry %s: %w", m.EntryID, err)
	}

	lineQuery := `
		INSERT INTO journal_lines (
			line_id, entry_id, line_number, account_id, direction, amount, memo,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10, $11);
	`
	batch := &pgx.Batch{}
	for _, line := range lines {
		ml := mapping.ToModelJournalLine(line)
		batch.Queue(lineQuery,
			ml.LineID, ml.EntryID, ml.LineNumber, ml.AccountID, ml.Direction,
			ml.Amount, ml.Memo,
			ml.CreatedAt, ml.CreatedBy, ml.LastUpdatedAt, ml.LastUpdatedBy,
		)
	}
	br := q.SendBatch(ctx, batch)
	for range lines {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to save lines of entry %s: %w", m.EntryID, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close line batch of entry %s: %w", m.EntryID, err)
	}

	return nil
}

// UpdateEntryStatus transitions an entry's status, rewriting the stored totals
// and, for reversals, the back-link to the mirror entry. The status predicate
// makes the transition safe against a concurrent writer that read the same row.
func (r *PgxJournalRepository) UpdateEntryStatus(ctx context.Context, tx pgx.Tx, entryID string, expectedStatus, status domain.EntryStatus, totalDebit, totalCredit decimal.Decimal, reversedByID string, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE journal_entries
		SET status = $3,
			total_debit = $4,
			total_credit = $5,
			reversed_by_id = COALESCE(NULLIF($6, ''), reversed_by_id),
			last_updated_at = $7,
			last_updated_by = $8
		WHERE entry_id = $1 AND status = $2;
	`
	tag, err := r.q(tx).Exec(ctx, query,
		entryID,
		string(expectedStatus),
		string(status),
		totalDebit,
		totalCredit,
		reversedByID,
		updatedAt,
		updatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update status of entry %s: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s is no longer %s", apperrors.ErrConflict, entryID, expectedStatus)
	}
	return nil
}
