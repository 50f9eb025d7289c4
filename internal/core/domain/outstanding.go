package domain

import "github.com/shopspring/decimal"

// LineKind tags which document family an outstanding line originates from.
// Modelled as a tagged reference so a line allocation can never point at
// both an order line and a return line, or at neither.
type LineKind string

const (
	OrderLine  LineKind = "ORDER"
	ReturnLine LineKind = "RETURN"
)

// LineRef identifies exactly one outstanding line.
type LineRef struct {
	Kind LineKind `json:"kind"`
	ID   string   `json:"id"`
}

// OutstandingLine is a receivable/payable line owned by the originating
// sales/purchase subsystem. The engine only reads it and atomically
// increments PreviouslySettledAmount under a version check.
type OutstandingLine struct {
	Ref                     LineRef          `json:"ref"`
	CounterpartyID          string           `json:"counterpartyID"`
	CounterpartyKind        CounterpartyKind `json:"counterpartyKind"`
	GrossAmount             decimal.Decimal  `json:"grossAmount"`
	PreviouslySettledAmount decimal.Decimal  `json:"previouslySettledAmount"`
	Version                 int64            `json:"version"` // Optimistic concurrency token
	AuditFields
}

// Remaining derives the unsettled balance. Never stored.
func (l OutstandingLine) Remaining() decimal.Decimal {
	return l.GrossAmount.Sub(l.PreviouslySettledAmount)
}
