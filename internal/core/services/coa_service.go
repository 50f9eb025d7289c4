package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/settleforge/sle_backend/internal/apperrors"
	"github.com/settleforge/sle_backend/internal/core/domain"
	portsrepo "github.com/settleforge/sle_backend/internal/core/ports/repositories"
	portssvc "github.com/settleforge/sle_backend/internal/core/ports/services"
	"github.com/settleforge/sle_backend/internal/dto"
	"github.com/settleforge/sle_backend/internal/middleware"
)

// chartOfAccountsService caches the account tree in memory for lock-free-ish
// reads. Nodes hold parent back-references only; the children index is derived
// on every rebuild, never stored on the nodes themselves.
type chartOfAccountsService struct {
	accountRepo portsrepo.AccountRepositoryFacade

	mu       sync.RWMutex
	nodes    map[string]domain.AccountNode
	children map[string][]string // parent ID -> child IDs in sort order; "" keys the roots
}

// NewChartOfAccountsService creates the chart-of-accounts index service.
// Call Reload before serving reads.
func NewChartOfAccountsService(accountRepo portsrepo.AccountRepositoryFacade) portssvc.ChartOfAccountsSvcFacade {
	return &chartOfAccountsService{
		accountRepo: accountRepo,
		nodes:       make(map[string]domain.AccountNode),
		children:    make(map[string][]string),
	}
}

var _ portssvc.ChartOfAccountsSvcFacade = (*chartOfAccountsService)(nil)

// Reload rebuilds the cached index from the persisted tree.
func (s *chartOfAccountsService) Reload(ctx context.Context) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	all, err := s.accountRepo.ListAllAccounts(ctx)
	if err != nil {
		logger.Error("Failed to load chart of accounts", slog.String("error", err.Error()))
		return fmt.Errorf("failed to load chart of accounts: %w", err)
	}

	nodes := make(map[string]domain.AccountNode, len(all))
	for _, n := range all {
		nodes[n.AccountID] = n
	}

	s.mu.Lock()
	s.nodes = nodes
	s.children = buildChildrenIndex(nodes)
	s.mu.Unlock()

	logger.Info("Chart of accounts index rebuilt", slog.Int("account_count", len(all)))
	return nil
}

// buildChildrenIndex derives the parent->children map from the node arena.
func buildChildrenIndex(nodes map[string]domain.AccountNode) map[string][]string {
	children := make(map[string][]string)
	for id, n := range nodes {
		children[n.ParentAccountID] = append(children[n.ParentAccountID], id)
	}
	for parent, ids := range children {
		sort.Slice(ids, func(i, j int) bool {
			a, b := nodes[ids[i]], nodes[ids[j]]
			if a.SortOrder != b.SortOrder {
				return a.SortOrder < b.SortOrder
			}
			return a.AccountID < b.AccountID
		})
		children[parent] = ids
	}
	return children
}

// ResolveDetailAccount returns the node if it exists and may receive postings.
func (s *chartOfAccountsService) ResolveDetailAccount(accountID string) (*domain.AccountNode, error) {
	s.mu.RLock()
	node, ok := s.nodes[accountID]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	if !node.IsDetail {
		return nil, fmt.Errorf("%w: account %s is not a detail account", apperrors.ErrInvalidAccount, accountID)
	}
	return &node, nil
}

// GetAccount returns any node by ID.
func (s *chartOfAccountsService) GetAccount(accountID string) (*domain.AccountNode, error) {
	s.mu.RLock()
	node, ok := s.nodes[accountID]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return &node, nil
}

// ListChildren returns the direct children of a node in sort order.
func (s *chartOfAccountsService) ListChildren(accountID string) ([]domain.AccountNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if accountID != "" {
		if _, ok := s.nodes[accountID]; !ok {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
	}
	ids := s.children[accountID]
	out := make([]domain.AccountNode, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.nodes[id])
	}
	return out, nil
}

// CreateAccount inserts a new node and refreshes the cached index.
func (s *chartOfAccountsService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.AccountNode, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	level := 1
	parentID := ""
	if req.ParentAccountID != nil && *req.ParentAccountID != "" {
		parent, ok := s.nodes[*req.ParentAccountID]
		if !ok {
			return nil, fmt.Errorf("%w: parent account %s", apperrors.ErrNotFound, *req.ParentAccountID)
		}
		if parent.IsDetail {
			return nil, fmt.Errorf("%w: detail account %s cannot have children", apperrors.ErrInvalidHierarchy, parent.AccountID)
		}
		level = parent.Level + 1
		parentID = parent.AccountID
	}
	if level > domain.MaxAccountLevel {
		return nil, fmt.Errorf("%w: level %d exceeds maximum %d", apperrors.ErrInvalidHierarchy, level, domain.MaxAccountLevel)
	}

	now := time.Now().UTC()
	node := domain.AccountNode{
		AccountID:       uuid.NewString(),
		Name:            req.Name,
		Level:           level,
		ParentAccountID: parentID,
		AccountType:     domain.AccountType(req.AccountType),
		NormalDirection: domain.EntryDirection(req.NormalDirection),
		IsDetail:        req.IsDetail,
		SortOrder:       req.SortOrder,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, node); err != nil {
		logger.Error("Failed to save account", slog.String("error", err.Error()), slog.String("account_id", node.AccountID))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.nodes[node.AccountID] = node
	s.children = buildChildrenIndex(s.nodes)

	logger.Info("Account created", slog.String("account_id", node.AccountID), slog.Int("level", node.Level))
	return &node, nil
}

// ReparentAccount moves a node under a new parent, rewriting the levels of the
// moved subtree. Fails if the move would create a cycle or push any descendant
// past the maximum depth.
func (s *chartOfAccountsService) ReparentAccount(ctx context.Context, accountID string, newParentID *string, userID string) (*domain.AccountNode, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}

	newLevel := 1
	parentID := ""
	if newParentID != nil && *newParentID != "" {
		parent, ok := s.nodes[*newParentID]
		if !ok {
			return nil, fmt.Errorf("%w: parent account %s", apperrors.ErrNotFound, *newParentID)
		}
		if parent.AccountID == accountID {
			return nil, fmt.Errorf("%w: account %s cannot be its own parent", apperrors.ErrInvalidHierarchy, accountID)
		}
		if parent.IsDetail {
			return nil, fmt.Errorf("%w: detail account %s cannot have children", apperrors.ErrInvalidHierarchy, parent.AccountID)
		}
		if s.isDescendant(parent.AccountID, accountID) {
			return nil, fmt.Errorf("%w: account %s is a descendant of %s", apperrors.ErrInvalidHierarchy, parent.AccountID, accountID)
		}
		newLevel = parent.Level + 1
		parentID = parent.AccountID
	}

	// Recompute the level of every node in the moved subtree and check depth.
	subtreeLevels := make(map[string]int)
	var walk func(id string, level int) error
	walk = func(id string, level int) error {
		if level > domain.MaxAccountLevel {
			return fmt.Errorf("%w: moving %s would push %s to level %d (max %d)", apperrors.ErrInvalidHierarchy, accountID, id, level, domain.MaxAccountLevel)
		}
		subtreeLevels[id] = level
		for _, childID := range s.children[id] {
			if err := walk(childID, level+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(accountID, newLevel); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.accountRepo.ReparentAccount(ctx, accountID, parentID, subtreeLevels, userID, now); err != nil {
		logger.Error("Failed to reparent account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to reparent account: %w", err)
	}

	// Apply the same rewrite to the cache.
	node.ParentAccountID = parentID
	node.Level = newLevel
	node.LastUpdatedAt = now
	node.LastUpdatedBy = userID
	s.nodes[accountID] = node
	for id, level := range subtreeLevels {
		if id == accountID {
			continue
		}
		n := s.nodes[id]
		n.Level = level
		n.LastUpdatedAt = now
		n.LastUpdatedBy = userID
		s.nodes[id] = n
	}
	s.children = buildChildrenIndex(s.nodes)

	logger.Info("Account reparented", slog.String("account_id", accountID), slog.String("new_parent_id", parentID), slog.Int("subtree_size", len(subtreeLevels)))
	return &node, nil
}

// isDescendant reports whether candidate sits in the subtree rooted at rootID.
// Walks parent links, so a corrupted cycle cannot loop forever past the arena size.
func (s *chartOfAccountsService) isDescendant(candidate, rootID string) bool {
	cur := candidate
	for range s.nodes {
		n, ok := s.nodes[cur]
		if !ok || n.ParentAccountID == "" {
			return false
		}
		if n.ParentAccountID == rootID {
			return true
		}
		cur = n.ParentAccountID
	}
	return false
}
