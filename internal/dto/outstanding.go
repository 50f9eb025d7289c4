package dto

import (
	"github.com/settleforge/sle_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SeedOutstandingLineRequest registers an outstanding line with the engine.
// The originating sales/purchase subsystems own these rows; this surface
// exists for integration tooling and tests.
type SeedOutstandingLineRequest struct {
	LineKind         string          `json:"lineKind" binding:"required,oneof=ORDER RETURN"`
	LineID           string          `json:"lineID" binding:"required"`
	CounterpartyID   string          `json:"counterpartyID" binding:"required"`
	CounterpartyKind string          `json:"counterpartyKind" binding:"required,oneof=CUSTOMER SUPPLIER"`
	GrossAmount      decimal.Decimal `json:"grossAmount" binding:"required"`
}

// OutstandingLineResponse defines the data returned for an outstanding line.
type OutstandingLineResponse struct {
	LineKind                string          `json:"lineKind"`
	LineID                  string          `json:"lineID"`
	CounterpartyID          string          `json:"counterpartyID"`
	CounterpartyKind        string          `json:"counterpartyKind"`
	GrossAmount             decimal.Decimal `json:"grossAmount"`
	PreviouslySettledAmount decimal.Decimal `json:"previouslySettledAmount"`
	Remaining               decimal.Decimal `json:"remaining"`
	Version                 int64           `json:"version"`
}

// ToOutstandingLineResponse converts a domain.OutstandingLine to its response DTO.
func ToOutstandingLineResponse(l *domain.OutstandingLine) OutstandingLineResponse {
	return OutstandingLineResponse{
		LineKind:                string(l.Ref.Kind),
		LineID:                  l.Ref.ID,
		CounterpartyID:          l.CounterpartyID,
		CounterpartyKind:        string(l.CounterpartyKind),
		GrossAmount:             l.GrossAmount,
		PreviouslySettledAmount: l.PreviouslySettledAmount,
		Remaining:               l.Remaining(),
		Version:                 l.Version,
	}
}
