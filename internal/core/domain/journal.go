package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the lifecycle state of a journal entry.
type EntryStatus string

const (
	Draft     EntryStatus = "DRAFT"
	Posted    EntryStatus = "POSTED"
	Cancelled EntryStatus = "CANCELLED"
	Reversed  EntryStatus = "REVERSED"
)

// EntryKind classifies the origin of a journal entry.
type EntryKind string

const (
	EntryAuto       EntryKind = "AUTO"
	EntryManual     EntryKind = "MANUAL"
	EntryAdjustment EntryKind = "ADJUSTMENT"
	EntryClosing    EntryKind = "CLOSING"
	EntryReversal   EntryKind = "REVERSAL"
)

// JournalEntry represents a single, balanced financial event composed of
// multiple journal lines. Only POSTED entries affect account balances.
type JournalEntry struct {
	EntryID      string      `json:"entryID"` // Primary Key (UUID)
	EntryDate    time.Time   `json:"entryDate"`
	Kind         EntryKind   `json:"kind"`
	Status       EntryStatus `json:"status"`
	Description  string      `json:"description"`
	FiscalYear   int         `json:"fiscalYear"`
	FiscalPeriod int         `json:"fiscalPeriod"` // 1..12
	SourceKind   string      `json:"sourceKind,omitempty"` // e.g. "SETTLEMENT"
	SourceID     string      `json:"sourceID,omitempty"`
	TotalDebit   decimal.Decimal `json:"totalDebit"`
	TotalCredit  decimal.Decimal `json:"totalCredit"`
	ReversalOfID string          `json:"reversalOfID,omitempty"` // Set on the mirror entry
	ReversedByID string          `json:"reversedByID,omitempty"` // Set on the original after reversal
	AuditFields

	// Lines, loaded with the entry when requested.
	Lines []JournalLine `json:"lines,omitempty"`
}

// AccountBalance is the net posted movement of one account, signed by its
// normal direction. Only POSTED entries contribute.
type AccountBalance struct {
	AccountID       string          `json:"accountID"`
	NormalDirection EntryDirection  `json:"normalDirection"`
	TotalDebit      decimal.Decimal `json:"totalDebit"`
	TotalCredit     decimal.Decimal `json:"totalCredit"`
	Balance         decimal.Decimal `json:"balance"`
}

// JournalLine is a single debit or credit against one detail account.
// Amount is always positive; Direction encodes the sign.
type JournalLine struct {
	LineID     string          `json:"lineID"`     // Primary Key (UUID)
	EntryID    string          `json:"entryID"`    // FK -> JournalEntry
	LineNumber int             `json:"lineNumber"` // 1..n, dense and unique per entry
	AccountID  string          `json:"accountID"`  // Must reference a detail account
	Direction  EntryDirection  `json:"direction"`
	Amount     decimal.Decimal `json:"amount"`
	Memo       string          `json:"memo,omitempty"`
	AuditFields
}
