package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PrepaymentRecord is the persistence model for an advance.
type PrepaymentRecord struct {
	PrepaymentID            string          `db:"prepayment_id"`
	CounterpartyID          string          `db:"counterparty_id"`
	CounterpartyKind        string          `db:"counterparty_kind"`
	Amount                  decimal.Decimal `db:"amount"`
	UsedAmount              decimal.Decimal `db:"used_amount"`
	OriginatingSettlementID string          `db:"originating_settlement_id"` // Nullable
	SourcePrepaymentID      string          `db:"source_prepayment_id"`      // Nullable
	Version                 int64           `db:"version"`
	AuditFields
}

// PrepaymentUsage is the persistence model for a draw against an advance.
type PrepaymentUsage struct {
	UsageID      string          `db:"usage_id"`
	PrepaymentID string          `db:"prepayment_id"`
	SettlementID string          `db:"settlement_id"`
	Amount       decimal.Decimal `db:"amount"`
	UsageDate    time.Time       `db:"usage_date"`
	AuditFields
}
