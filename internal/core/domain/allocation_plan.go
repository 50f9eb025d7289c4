package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlannedAllocation is one line of an AllocationPlan, in caller-supplied order.
type PlannedAllocation struct {
	Line            LineRef
	AllocatedAmount decimal.Decimal
	AllowanceAmount decimal.Decimal
	BalanceAfter    decimal.Decimal
}

// PlannedDraw consumes part of an existing prepayment.
type PlannedDraw struct {
	PrepaymentID string
	Amount       decimal.Decimal
}

// PlannedSplit is a payment-method split carried through to persistence.
type PlannedSplit struct {
	MethodID        string
	BankID          string
	Amount          decimal.Decimal
	ReferenceNumber string
	DueDate         *time.Time
}

// AllocationPlan is the immutable output of the allocation engine. Downstream
// components persist it verbatim; the engine itself never touches storage.
type AllocationPlan struct {
	Direction               SettlementDirection
	CounterpartyID          string
	CounterpartyKind        CounterpartyKind
	TotalAmount             decimal.Decimal
	CollectedAmount         decimal.Decimal
	AllowanceAmount         decimal.Decimal
	PrepaymentAppliedAmount decimal.Decimal
	PrepaymentCreatedAmount decimal.Decimal // Overflow that becomes a new advance

	Allocations []PlannedAllocation
	Draws       []PlannedDraw
	Splits      []PlannedSplit
}
