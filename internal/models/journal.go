package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is the persistence model for a journal entry header.
type JournalEntry struct {
	EntryID      string          `db:"entry_id"`
	EntryDate    time.Time       `db:"entry_date"`
	Kind         string          `db:"kind"`
	Status       string          `db:"status"`
	Description  string          `db:"description"`
	FiscalYear   int             `db:"fiscal_year"`
	FiscalPeriod int             `db:"fiscal_period"`
	SourceKind   string          `db:"source_kind"` // Nullable
	SourceID     string          `db:"source_id"`   // Nullable
	TotalDebit   decimal.Decimal `db:"total_debit"`
	TotalCredit  decimal.Decimal `db:"total_credit"`
	ReversalOfID string          `db:"reversal_of_id"` // Nullable
	ReversedByID string          `db:"reversed_by_id"` // Nullable
	AuditFields
}

// JournalLine is the persistence model for one debit/credit line.
type JournalLine struct {
	LineID     string          `db:"line_id"`
	EntryID    string          `db:"entry_id"`
	LineNumber int             `db:"line_number"`
	AccountID  string          `db:"account_id"`
	Direction  string          `db:"direction"`
	Amount     decimal.Decimal `db:"amount"`
	Memo       string          `db:"memo"` // Nullable
	AuditFields
}
