package mapping

import (
	"github.com/settleforge/sle_backend/internal/core/domain"
	"github.com/settleforge/sle_backend/internal/models"
)

// ToModelAccountNode converts a domain account node to its persistence model.
func ToModelAccountNode(a domain.AccountNode) models.AccountNode {
	return models.AccountNode{
		AccountID:       a.AccountID,
		Name:            a.Name,
		Level:           a.Level,
		ParentAccountID: a.ParentAccountID,
		AccountType:     string(a.AccountType),
		NormalDirection: string(a.NormalDirection),
		IsDetail:        a.IsDetail,
		SortOrder:       a.SortOrder,
		AuditFields:     ToModelAuditFields(a.AuditFields),
	}
}

// ToDomainAccountNode converts a persistence account node to the domain form.
func ToDomainAccountNode(a models.AccountNode) domain.AccountNode {
	return domain.AccountNode{
		AccountID:       a.AccountID,
		Name:            a.Name,
		Level:           a.Level,
		ParentAccountID: a.ParentAccountID,
		AccountType:     domain.AccountType(a.AccountType),
		NormalDirection: domain.EntryDirection(a.NormalDirection),
		IsDetail:        a.IsDetail,
		SortOrder:       a.SortOrder,
		AuditFields:     ToDomainAuditFields(a.AuditFields),
	}
}

// ToDomainAccountNodeSlice converts a slice of persistence nodes.
func ToDomainAccountNodeSlice(nodes []models.AccountNode) []domain.AccountNode {
	out := make([]domain.AccountNode, len(nodes))
	for i, n := range nodes {
		out[i] = ToDomainAccountNode(n)
	}
	return out
}
