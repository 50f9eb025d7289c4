package dto

import (
	"time"

	"github.com/settleforge/sle_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SettlementTargetRequest names one outstanding line and the amounts to apply.
// Order in the request is the allocation order; the engine never re-sorts.
type SettlementTargetRequest struct {
	LineKind        string          `json:"lineKind" binding:"required,oneof=ORDER RETURN"`
	LineID          string          `json:"lineID" binding:"required"`
	RequestedAmount decimal.Decimal `json:"requestedAmount" binding:"required"`
	AllowanceAmount decimal.Decimal `json:"allowanceAmount"`
}

// PaymentSplitRequest breaks the collected cash down by payment method.
type PaymentSplitRequest struct {
	MethodID        string          `json:"methodID" binding:"required"`
	BankID          string          `json:"bankID"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	ReferenceNumber string          `json:"referenceNumber"`
	DueDate         *time.Time      `json:"dueDate"`
}

// PrepaymentDrawRequest funds part of the settlement from an existing advance.
type PrepaymentDrawRequest struct {
	PrepaymentID string          `json:"prepaymentID" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
}

// CreateSettlementRequest defines the payload for submitting a settlement.
type CreateSettlementRequest struct {
	Direction               string                    `json:"direction" binding:"required,oneof=RECEIVABLE PAYABLE"`
	CounterpartyID          string                    `json:"counterpartyID" binding:"required"`
	CounterpartyKind        string                    `json:"counterpartyKind" binding:"required,oneof=CUSTOMER SUPPLIER"`
	SettlementDate          time.Time                 `json:"settlementDate" binding:"required"`
	TotalAmount             decimal.Decimal           `json:"totalAmount" binding:"required"`
	Targets                 []SettlementTargetRequest `json:"targets" binding:"required,min=1,dive"`
	PaymentSplits           []PaymentSplitRequest     `json:"paymentSplits" binding:"dive"`
	PrepaymentDraws         []PrepaymentDrawRequest   `json:"prepaymentDraws" binding:"dive"`
	AllowPrepaymentOverflow bool                      `json:"allowPrepaymentOverflow"`
}

// LineAllocationResponse defines the data returned for one allocation.
type LineAllocationResponse struct {
	AllocationID    string          `json:"allocationID"`
	LineNumber      int             `json:"lineNumber"`
	LineKind        string          `json:"lineKind"`
	LineID          string          `json:"lineID"`
	AllocatedAmount decimal.Decimal `json:"allocatedAmount"`
	AllowanceAmount decimal.Decimal `json:"allowanceAmount"`
	BalanceAfter    decimal.Decimal `json:"balanceAfter"`
}

// PaymentSplitResponse defines the data returned for one payment split.
type PaymentSplitResponse struct {
	SplitID         string          `json:"splitID"`
	MethodID        string          `json:"methodID"`
	BankID          string          `json:"bankID,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	ReferenceNumber string          `json:"referenceNumber,omitempty"`
	DueDate         *time.Time      `json:"dueDate,omitempty"`
}

// SettlementResponse defines the data returned for a settlement document.
type SettlementResponse struct {
	SettlementID            string                   `json:"settlementID"`
	Direction               string                   `json:"direction"`
	CounterpartyID          string                   `json:"counterpartyID"`
	CounterpartyKind        string                   `json:"counterpartyKind"`
	SettlementDate          time.Time                `json:"settlementDate"`
	TotalAmount             decimal.Decimal          `json:"totalAmount"`
	CollectedAmount         decimal.Decimal          `json:"collectedAmount"`
	AllowanceAmount         decimal.Decimal          `json:"allowanceAmount"`
	PrepaymentAppliedAmount decimal.Decimal          `json:"prepaymentAppliedAmount"`
	PrepaymentCreatedAmount decimal.Decimal          `json:"prepaymentCreatedAmount"`
	JournalEntryID          string                   `json:"journalEntryID"`
	CreatedAt               time.Time                `json:"createdAt"`
	CreatedBy               string                   `json:"createdBy"`
	Allocations             []LineAllocationResponse `json:"allocations,omitempty"`
	PaymentSplits           []PaymentSplitResponse   `json:"paymentSplits,omitempty"`
}

// ToSettlementResponse converts a domain.SettlementDocument to its response DTO.
func ToSettlementResponse(d *domain.SettlementDocument) SettlementResponse {
	resp := SettlementResponse{
		SettlementID:            d.SettlementID,
		Direction:               string(d.Direction),
		CounterpartyID:          d.CounterpartyID,
		CounterpartyKind:        string(d.CounterpartyKind),
		SettlementDate:          d.SettlementDate,
		TotalAmount:             d.TotalAmount,
		CollectedAmount:         d.CollectedAmount,
		AllowanceAmount:         d.AllowanceAmount,
		PrepaymentAppliedAmount: d.PrepaymentAppliedAmount,
		PrepaymentCreatedAmount: d.PrepaymentCreatedAmount,
		JournalEntryID:          d.JournalEntryID,
		CreatedAt:               d.CreatedAt,
		CreatedBy:               d.CreatedBy,
	}
	for _, a := range d.Allocations {
		resp.Allocations = append(resp.Allocations, LineAllocationResponse{
			AllocationID:    a.AllocationID,
			LineNumber:      a.LineNumber,
			LineKind:        string(a.Line.Kind),
			LineID:          a.Line.ID,
			AllocatedAmount: a.AllocatedAmount,
			AllowanceAmount: a.AllowanceAmount,
			BalanceAfter:    a.BalanceAfter,
		})
	}
	for _, s := range d.PaymentSplits {
		resp.PaymentSplits = append(resp.PaymentSplits, PaymentSplitResponse{
			SplitID:         s.SplitID,
			MethodID:        s.MethodID,
			BankID:          s.BankID,
			Amount:          s.Amount,
			ReferenceNumber: s.ReferenceNumber,
			DueDate:         s.DueDate,
		})
	}
	return resp
}
