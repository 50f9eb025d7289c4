package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PrepaymentRecord tracks an advance payment/receipt not yet matched to a
// line. UsedAmount only ever grows, via draws executed under the settlement
// transaction's lock.
type PrepaymentRecord struct {
	PrepaymentID            string           `json:"prepaymentID"` // Primary Key (UUID)
	CounterpartyID          string           `json:"counterpartyID"`
	CounterpartyKind        CounterpartyKind `json:"counterpartyKind"`
	Amount                  decimal.Decimal  `json:"amount"`
	UsedAmount              decimal.Decimal  `json:"usedAmount"`
	OriginatingSettlementID string           `json:"originatingSettlementID,omitempty"` // Settlement whose overflow created this advance
	SourcePrepaymentID      string           `json:"sourcePrepaymentID,omitempty"`      // Set when re-applying an existing advance
	Version                 int64            `json:"version"` // Optimistic concurrency token
	AuditFields
}

// AvailableBalance derives the undrawn portion. Never stored.
func (p PrepaymentRecord) AvailableBalance() decimal.Decimal {
	return p.Amount.Sub(p.UsedAmount)
}

// PrepaymentUsage records one draw against a PrepaymentRecord.
type PrepaymentUsage struct {
	UsageID      string          `json:"usageID"`      // Primary Key (UUID)
	PrepaymentID string          `json:"prepaymentID"` // FK -> PrepaymentRecord
	SettlementID string          `json:"settlementID"` // FK -> SettlementDocument consuming the draw
	Amount       decimal.Decimal `json:"amount"`
	UsageDate    time.Time       `json:"usageDate"`
	AuditFields
}
