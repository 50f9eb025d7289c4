package domain

import "github.com/shopspring/decimal"

// AllocationTarget names one outstanding line and the amounts the caller wants
// applied to it. Target order is authoritative: the engine never re-sorts.
type AllocationTarget struct {
	Line            LineRef
	RequestedAmount decimal.Decimal
	AllowanceAmount decimal.Decimal
}

// PrepaymentDrawRequest consumes part of an existing advance as funding.
type PrepaymentDrawRequest struct {
	PrepaymentID string
	Amount       decimal.Decimal
}

// AllocationRequest is the input to the allocation engine. TotalAmount is the
// full funding of the settlement: collected cash (the payment splits) plus any
// prepayment draws.
type AllocationRequest struct {
	Direction               SettlementDirection
	CounterpartyID          string
	CounterpartyKind        CounterpartyKind
	TotalAmount             decimal.Decimal
	Targets                 []AllocationTarget
	AllowPrepaymentOverflow bool
	Draws                   []PrepaymentDrawRequest
	Splits                  []PlannedSplit
}
