package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementDocument is the persistence model for a settlement header.
type SettlementDocument struct {
	SettlementID            string          `db:"settlement_id"`
	Direction               string          `db:"direction"`
	CounterpartyID          string          `db:"counterparty_id"`
	CounterpartyKind        string          `db:"counterparty_kind"`
	SettlementDate          time.Time       `db:"settlement_date"`
	TotalAmount             decimal.Decimal `db:"total_amount"`
	CollectedAmount         decimal.Decimal `db:"collected_amount"`
	AllowanceAmount         decimal.Decimal `db:"allowance_amount"`
	PrepaymentAppliedAmount decimal.Decimal `db:"prepayment_applied_amount"`
	PrepaymentCreatedAmount decimal.Decimal `db:"prepayment_created_amount"`
	JournalEntryID          string          `db:"journal_entry_id"`
	AuditFields
}

// LineAllocation is the persistence model for one settlement-to-line application.
type LineAllocation struct {
	AllocationID    string          `db:"allocation_id"`
	SettlementID    string          `db:"settlement_id"`
	LineNumber      int             `db:"line_number"`
	LineKind        string          `db:"line_kind"`
	LineID          string          `db:"line_id"`
	AllocatedAmount decimal.Decimal `db:"allocated_amount"`
	AllowanceAmount decimal.Decimal `db:"allowance_amount"`
	BalanceAfter    decimal.Decimal `db:"balance_after"`
	AuditFields
}

// PaymentSplit is the persistence model for a payment-method split.
type PaymentSplit struct {
	SplitID         string          `db:"split_id"`
	SettlementID    string          `db:"settlement_id"`
	MethodID        string          `db:"method_id"`
	BankID          string          `db:"bank_id"` // Nullable
	Amount          decimal.Decimal `db:"amount"`
	ReferenceNumber string          `db:"reference_number"` // Nullable
	DueDate         *time.Time      `db:"due_date"`         // Nullable
	AuditFields
}
