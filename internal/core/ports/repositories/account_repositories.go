package repositories

import (
	"context"
	"time"

	"github.com/settleforge/sle_backend/internal/core/domain"
)

// AccountReader defines read operations for chart-of-accounts data.
type AccountReader interface {
	// FindAccountByID retrieves a single account node by its identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.AccountNode, error)

	// ListAllAccounts retrieves every node of the chart of accounts,
	// ordered by level then sort order. Used to rebuild the in-memory index.
	ListAllAccounts(ctx context.Context) ([]domain.AccountNode, error)
}

// AccountWriter defines write operations for chart-of-accounts data.
type AccountWriter interface {
	// SaveAccount persists a new account node.
	SaveAccount(ctx context.Context, account domain.AccountNode) error

	// ReparentAccount moves an account under a new parent and rewrites the
	// levels of the moved subtree in one statement batch.
	ReparentAccount(ctx context.Context, accountID string, newParentID string, subtreeLevels map[string]int, updatedBy string, updatedAt time.Time) error
}

// AccountRepositoryFacade combines all chart-of-accounts repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
