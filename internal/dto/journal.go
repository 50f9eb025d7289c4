package dto

import (
	"time"

	"github.com/settleforge/sle_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PostingLineInput is one debit/credit line of a journal entry to build.
type PostingLineInput struct {
	AccountID string          `json:"accountID" binding:"required"`
	Direction string          `json:"direction" binding:"required,oneof=DEBIT CREDIT"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Memo      string          `json:"memo"`
}

// BuildEntryInput defines the payload for building a draft journal entry.
// FiscalYear/FiscalPeriod default from EntryDate when zero.
type BuildEntryInput struct {
	Kind         string             `json:"kind" binding:"required,oneof=AUTO MANUAL ADJUSTMENT CLOSING REVERSAL"`
	EntryDate    time.Time          `json:"entryDate" binding:"required"`
	Description  string             `json:"description"`
	FiscalYear   int                `json:"fiscalYear"`
	FiscalPeriod int                `json:"fiscalPeriod"`
	SourceKind   string             `json:"sourceKind"`
	SourceID     string             `json:"sourceID"`
	Lines        []PostingLineInput `json:"lines" binding:"required,min=2,dive"`
}

// ReverseEntryRequest carries the reason recorded on the mirror entry.
type ReverseEntryRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// JournalLineResponse defines the data returned for one journal line.
type JournalLineResponse struct {
	LineID     string          `json:"lineID"`
	LineNumber int             `json:"lineNumber"`
	AccountID  string          `json:"accountID"`
	Direction  string          `json:"direction"`
	Amount     decimal.Decimal `json:"amount"`
	Memo       string          `json:"memo,omitempty"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID      string                `json:"entryID"`
	EntryDate    time.Time             `json:"entryDate"`
	Kind         string                `json:"kind"`
	Status       string                `json:"status"`
	Description  string                `json:"description,omitempty"`
	FiscalYear   int                   `json:"fiscalYear"`
	FiscalPeriod int                   `json:"fiscalPeriod"`
	SourceKind   string                `json:"sourceKind,omitempty"`
	SourceID     string                `json:"sourceID,omitempty"`
	TotalDebit   decimal.Decimal       `json:"totalDebit"`
	TotalCredit  decimal.Decimal       `json:"totalCredit"`
	ReversalOfID string                `json:"reversalOfID,omitempty"`
	ReversedByID string                `json:"reversedByID,omitempty"`
	CreatedAt    time.Time             `json:"createdAt"`
	CreatedBy    string                `json:"createdBy"`
	Lines        []JournalLineResponse `json:"lines,omitempty"`
}

// ToJournalEntryResponse converts a domain.JournalEntry to its response DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	resp := JournalEntryResponse{
		EntryID:      e.EntryID,
		EntryDate:    e.EntryDate,
		Kind:         string(e.Kind),
		Status:       string(e.Status),
		Description:  e.Description,
		FiscalYear:   e.FiscalYear,
		FiscalPeriod: e.FiscalPeriod,
		SourceKind:   e.SourceKind,
		SourceID:     e.SourceID,
		TotalDebit:   e.TotalDebit,
		TotalCredit:  e.TotalCredit,
		ReversalOfID: e.ReversalOfID,
		ReversedByID: e.ReversedByID,
		CreatedAt:    e.CreatedAt,
		CreatedBy:    e.CreatedBy,
	}
	for _, l := range e.Lines {
		resp.Lines = append(resp.Lines, JournalLineResponse{
			LineID:     l.LineID,
			LineNumber: l.LineNumber,
			AccountID:  l.AccountID,
			Direction:  string(l.Direction),
			Amount:     l.Amount,
			Memo:       l.Memo,
		})
	}
	return resp
}
