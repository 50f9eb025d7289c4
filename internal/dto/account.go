package dto

import (
	"github.com/settleforge/sle_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the payload for creating a chart-of-accounts node.
type CreateAccountRequest struct {
	Name            string  `json:"name" binding:"required"`
	ParentAccountID *string `json:"parentAccountID"` // Nil for a root node
	AccountType     string  `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE COST EXPENSE"`
	NormalDirection string  `json:"normalDirection" binding:"required,oneof=DEBIT CREDIT"`
	IsDetail        bool    `json:"isDetail"`
	SortOrder       int     `json:"sortOrder"`
}

// ReparentAccountRequest moves an account (and its subtree) under a new parent.
type ReparentAccountRequest struct {
	NewParentAccountID *string `json:"newParentAccountID"` // Nil promotes to root
}

// AccountResponse defines the data returned for an account node.
type AccountResponse struct {
	AccountID       string `json:"accountID"`
	Name            string `json:"name"`
	Level           int    `json:"level"`
	ParentAccountID string `json:"parentAccountID,omitempty"`
	AccountType     string `json:"accountType"`
	NormalDirection string `json:"normalDirection"`
	IsDetail        bool   `json:"isDetail"`
	SortOrder       int    `json:"sortOrder"`
}

// ToAccountResponse converts a domain.AccountNode to AccountResponse DTO.
func ToAccountResponse(a *domain.AccountNode) AccountResponse {
	return AccountResponse{
		AccountID:       a.AccountID,
		Name:            a.Name,
		Level:           a.Level,
		ParentAccountID: a.ParentAccountID,
		AccountType:     string(a.AccountType),
		NormalDirection: string(a.NormalDirection),
		IsDetail:        a.IsDetail,
		SortOrder:       a.SortOrder,
	}
}

// AccountBalanceResponse defines the data returned for an account's posted balance.
type AccountBalanceResponse struct {
	AccountID       string          `json:"accountID"`
	NormalDirection string          `json:"normalDirection"`
	TotalDebit      decimal.Decimal `json:"totalDebit"`
	TotalCredit     decimal.Decimal `json:"totalCredit"`
	Balance         decimal.Decimal `json:"balance"`
}

// ToAccountBalanceResponse converts a domain.AccountBalance to its response DTO.
func ToAccountBalanceResponse(b *domain.AccountBalance) AccountBalanceResponse {
	return AccountBalanceResponse{
		AccountID:       b.AccountID,
		NormalDirection: string(b.NormalDirection),
		TotalDebit:      b.TotalDebit,
		TotalCredit:     b.TotalCredit,
		Balance:         b.Balance,
	}
}

// ToAccountResponses converts a slice of domain.AccountNode.
func ToAccountResponses(nodes []domain.AccountNode) []AccountResponse {
	out := make([]AccountResponse, len(nodes))
	for i := range nodes {
		out[i] = ToAccountResponse(&nodes[i])
	}
	return out
}
