package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementDirection indicates whether a settlement collects a receivable
// or pays a payable.
type SettlementDirection string

const (
	Receivable SettlementDirection = "RECEIVABLE"
	Payable    SettlementDirection = "PAYABLE"
)

// SettlementDocument records one collection/payment event allocated across
// outstanding lines. Immutable once created; corrections go through a new
// reversing document.
type SettlementDocument struct {
	SettlementID            string              `json:"settlementID"` // Primary Key (UUID)
	Direction               SettlementDirection `json:"direction"`
	CounterpartyID          string              `json:"counterpartyID"`
	CounterpartyKind        CounterpartyKind    `json:"counterpartyKind"`
	SettlementDate          time.Time           `json:"settlementDate"`
	TotalAmount             decimal.Decimal     `json:"totalAmount"`
	CollectedAmount         decimal.Decimal     `json:"collectedAmount"`
	AllowanceAmount         decimal.Decimal     `json:"allowanceAmount"`
	PrepaymentAppliedAmount decimal.Decimal     `json:"prepaymentAppliedAmount"`
	PrepaymentCreatedAmount decimal.Decimal     `json:"prepaymentCreatedAmount"`
	JournalEntryID          string              `json:"journalEntryID"` // Entry posted for this settlement
	AuditFields

	// Children, loaded with the document.
	Allocations   []LineAllocation `json:"allocations,omitempty"`
	PaymentSplits []PaymentSplit   `json:"paymentSplits,omitempty"`
}

// LineAllocation applies part of a settlement to exactly one outstanding line.
type LineAllocation struct {
	AllocationID    string          `json:"allocationID"` // Primary Key (UUID)
	SettlementID    string          `json:"settlementID"` // FK -> SettlementDocument
	LineNumber      int             `json:"lineNumber"`   // 1-based position in the caller's target order
	Line            LineRef         `json:"line"`         // Exactly one outstanding line
	AllocatedAmount decimal.Decimal `json:"allocatedAmount"`
	AllowanceAmount decimal.Decimal `json:"allowanceAmount"`
	BalanceAfter    decimal.Decimal `json:"balanceAfter"` // Remaining on the line after this document
	AuditFields
}

// PaymentSplit breaks the collected amount down by payment method.
type PaymentSplit struct {
	SplitID         string          `json:"splitID"`      // Primary Key (UUID)
	SettlementID    string          `json:"settlementID"` // FK -> SettlementDocument
	MethodID        string          `json:"methodID"`
	BankID          string          `json:"bankID,omitempty"` // Optional bank account reference
	Amount          decimal.Decimal `json:"amount"`
	ReferenceNumber string          `json:"referenceNumber,omitempty"`
	DueDate         *time.Time      `json:"dueDate,omitempty"` // For deferred instruments like checks
	AuditFields
}
