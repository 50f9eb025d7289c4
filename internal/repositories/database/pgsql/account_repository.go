package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/settleforge/sle_backend/internal/apperrors"
	"github.com/settleforge/sle_backend/internal/core/domain"
	portsrepo "github.com/settleforge/sle_backend/internal/core/ports/repositories"
	"github.com/settleforge/sle_backend/internal/models"
	"github.com/settleforge/sle_backend/internal/utils/mapping"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for chart-of-accounts data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `
	account_id, name, level, COALESCE(parent_account_id, ''), account_type,
	normal_direction, is_detail, sort_order,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanAccountRow(row pgx.Row) (models.AccountNode, error) {
	var m models.AccountNode
	err := row.Scan(
		&m.AccountID,
		&m.Name,
		&m.Level,
		&m.ParentAccountID,
		&m.AccountType,
		&m.NormalDirection,
		&m.IsDetail,
		&m.SortOrder,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindAccountByID retrieves a single account node by its identifier.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.AccountNode, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`

	m, err := scanAccountRow(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}

	node := mapping.ToDomainAccountNode(m)
	return &node, nil
}

// ListAllAccounts retrieves every node of the chart of accounts.
func (r *PgxAccountRepository) ListAllAccounts(ctx context.Context) ([]domain.AccountNode, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY level, sort_order, account_id;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	modelNodes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.AccountNode, error) {
		return scanAccountRow(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan accounts: %w", err)
	}

	return mapping.ToDomainAccountNodeSlice(modelNodes), nil
}

// SaveAccount persists a new account node.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.AccountNode) error {
	m := mapping.ToModelAccountNode(account)

	query := `
		INSERT INTO accounts (
			account_id, name, level, parent_account_id, account_type,
			normal_direction, is_detail, sort_order,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.Name,
		m.Level,
		m.ParentAccountID,
		m.AccountType,
		m.NormalDirection,
		m.IsDetail,
		m.SortOrder,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: account %s already exists", apperrors.ErrDuplicate, m.AccountID)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

// ReparentAccount moves an account under a new parent and rewrites the levels
// of the moved subtree in one transaction.
func (r *PgxAccountRepository) ReparentAccount(ctx context.Context, accountID string, newParentID string, subtreeLevels map[string]int, updatedBy string, updatedAt time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	parentQuery := `
		UPDATE accounts
		SET parent_account_id = NULLIF($2, ''), last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`
	tag, err := tx.Exec(ctx, parentQuery, accountID, newParentID, updatedAt, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to reparent account %s: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	levelQuery := `
		UPDATE accounts
		SET level = $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`
	batch := &pgx.Batch{}
	for id, level := range subtreeLevels {
		batch.Queue(levelQuery, id, level, updatedAt, updatedBy)
	}
	br := tx.SendBatch(ctx, batch)
	for range subtreeLevels {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to rewrite subtree levels under %s: %w", accountID, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close level batch for %s: %w", accountID, err)
	}

	return r.Commit(ctx, tx)
}

// isUniqueViolation reports whether err is a Postgres unique constraint error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
