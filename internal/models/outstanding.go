package models

import "github.com/shopspring/decimal"

// OutstandingLine is the persistence model for an outstanding receivable or
// payable line. (line_kind, line_id) is the composite identity.
type OutstandingLine struct {
	LineKind                string          `db:"line_kind"` // ORDER or RETURN
	LineID                  string          `db:"line_id"`
	CounterpartyID          string          `db:"counterparty_id"`
	CounterpartyKind        string          `db:"counterparty_kind"`
	GrossAmount             decimal.Decimal `db:"gross_amount"`
	PreviouslySettledAmount decimal.Decimal `db:"previously_settled_amount"`
	Version                 int64           `db:"version"`
	AuditFields
}
