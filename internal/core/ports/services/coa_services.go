package services

import (
	"context"

	"github.com/settleforge/sle_backend/internal/core/domain"
	"github.com/settleforge/sle_backend/internal/dto"
)

// ChartOfAccountsReaderSvc defines non-blocking reads over the cached tree.
type ChartOfAccountsReaderSvc interface {
	// ResolveDetailAccount returns the node if it exists and accepts
	// postings; apperrors.ErrNotFound or apperrors.ErrInvalidAccount otherwise.
	ResolveDetailAccount(accountID string) (*domain.AccountNode, error)

	// GetAccount returns any node by ID.
	GetAccount(accountID string) (*domain.AccountNode, error)

	// ListChildren returns the direct children of a node, in sort order.
	// An empty accountID lists the root nodes.
	ListChildren(accountID string) ([]domain.AccountNode, error)
}

// ChartOfAccountsWriterSvc defines tree mutations. Mutations re-validate the
// level invariant and rebuild the cached index under a write lock.
type ChartOfAccountsWriterSvc interface {
	// Reload rebuilds the in-memory index from the repository.
	Reload(ctx context.Context) error

	// CreateAccount inserts a new node under the given parent.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.AccountNode, error)

	// ReparentAccount moves a node (with its subtree) under a new parent.
	ReparentAccount(ctx context.Context, accountID string, newParentID *string, userID string) (*domain.AccountNode, error)
}

// ChartOfAccountsSvcFacade combines all chart-of-accounts service interfaces.
type ChartOfAccountsSvcFacade interface {
	ChartOfAccountsReaderSvc
	ChartOfAccountsWriterSvc
}
