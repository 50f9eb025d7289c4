package dto

import (
	"time"

	"github.com/settleforge/sle_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PrepaymentRecordResponse defines the data returned for one advance.
type PrepaymentRecordResponse struct {
	PrepaymentID            string          `json:"prepaymentID"`
	Amount                  decimal.Decimal `json:"amount"`
	UsedAmount              decimal.Decimal `json:"usedAmount"`
	AvailableBalance        decimal.Decimal `json:"availableBalance"`
	OriginatingSettlementID string          `json:"originatingSettlementID,omitempty"`
	SourcePrepaymentID      string          `json:"sourcePrepaymentID,omitempty"`
	CreatedAt               time.Time       `json:"createdAt"`
}

// PrepaymentBalanceResponse aggregates a counterparty's open advances.
type PrepaymentBalanceResponse struct {
	CounterpartyID   string                     `json:"counterpartyID"`
	CounterpartyKind string                     `json:"counterpartyKind"`
	TotalAvailable   decimal.Decimal            `json:"totalAvailable"`
	Records          []PrepaymentRecordResponse `json:"records"`
}

// PrepaymentUsageResponse defines the data returned for one draw.
type PrepaymentUsageResponse struct {
	UsageID      string          `json:"usageID"`
	PrepaymentID string          `json:"prepaymentID"`
	SettlementID string          `json:"settlementID"`
	Amount       decimal.Decimal `json:"amount"`
	UsageDate    time.Time       `json:"usageDate"`
}

// ToPrepaymentRecordResponse converts a domain.PrepaymentRecord to its response DTO.
func ToPrepaymentRecordResponse(p *domain.PrepaymentRecord) PrepaymentRecordResponse {
	return PrepaymentRecordResponse{
		PrepaymentID:            p.PrepaymentID,
		Amount:                  p.Amount,
		UsedAmount:              p.UsedAmount,
		AvailableBalance:        p.AvailableBalance(),
		OriginatingSettlementID: p.OriginatingSettlementID,
		SourcePrepaymentID:      p.SourcePrepaymentID,
		CreatedAt:               p.CreatedAt,
	}
}

// ToPrepaymentUsageResponses converts a slice of domain.PrepaymentUsage.
func ToPrepaymentUsageResponses(usages []domain.PrepaymentUsage) []PrepaymentUsageResponse {
	out := make([]PrepaymentUsageResponse, len(usages))
	for i, u := range usages {
		out[i] = PrepaymentUsageResponse{
			UsageID:      u.UsageID,
			PrepaymentID: u.PrepaymentID,
			SettlementID: u.SettlementID,
			Amount:       u.Amount,
			UsageDate:    u.UsageDate,
		}
	}
	return out
}
