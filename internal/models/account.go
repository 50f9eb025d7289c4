package models

// AccountNode is the persistence model for a chart-of-accounts node.
// parent_account_id is NULL for root nodes; handled via pointer on scan.
type AccountNode struct {
	AccountID       string `db:"account_id"`
	Name            string `db:"name"`
	Level           int    `db:"level"`
	ParentAccountID string `db:"parent_account_id"` // Nullable
	AccountType     string `db:"account_type"`
	NormalDirection string `db:"normal_direction"`
	IsDetail        bool   `db:"is_detail"`
	SortOrder       int    `db:"sort_order"`
	AuditFields
}
