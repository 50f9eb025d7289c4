package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Cost      AccountType = "COST"
	Expense   AccountType = "EXPENSE"
)

// EntryDirection indicates which side of an entry a line sits on.
type EntryDirection string

const (
	Debit  EntryDirection = "DEBIT"
	Credit EntryDirection = "CREDIT"
)

// MaxAccountLevel caps the depth of the chart of accounts.
const MaxAccountLevel = 4

// AccountNode is a node in the chart of accounts. Only parent back-references
// are stored; children are derived by the index when the tree is rebuilt.
type AccountNode struct {
	AccountID       string         `json:"accountID"`       // Primary Key (UUID)
	Name            string         `json:"name"`            // User-defined name
	Level           int            `json:"level"`           // 1..MaxAccountLevel; root nodes are level 1
	ParentAccountID string         `json:"parentAccountID"` // Empty for root nodes
	AccountType     AccountType    `json:"accountType"`     // ASSET, LIABILITY, etc.
	NormalDirection EntryDirection `json:"normalDirection"` // DEBIT or CREDIT balance convention
	IsDetail        bool           `json:"isDetail"`        // Only detail (leaf) accounts accept postings
	SortOrder       int            `json:"sortOrder"`       // Sibling display order
	AuditFields
}

// IsRoot reports whether the node has no parent.
func (a AccountNode) IsRoot() bool {
	return a.ParentAccountID == ""
}
