package mapping

import (
	"github.com/settleforge/sle_backend/internal/core/domain"
	"github.com/settleforge/sle_backend/internal/models"
)

// ToModelPrepaymentRecord converts a prepayment record to its persistence model.
func ToModelPrepaymentRecord(p domain.PrepaymentRecord) models.PrepaymentRecord {
	return models.PrepaymentRecord{
		PrepaymentID:            p.PrepaymentID,
		CounterpartyID:          p.CounterpartyID,
		CounterpartyKind:        string(p.CounterpartyKind),
		Amount:                  p.Amount,
		UsedAmount:              p.UsedAmount,
		OriginatingSettlementID: p.OriginatingSettlementID,
		SourcePrepaymentID:      p.SourcePrepaymentID,
		Version:                 p.Version,
		AuditFields:             ToModelAuditFields(p.AuditFields),
	}
}

// ToDomainPrepaymentRecord converts a persistence prepayment record to the domain form.
func ToDomainPrepaymentRecord(m models.PrepaymentRecord) domain.PrepaymentRecord {
	return domain.PrepaymentRecord{
		PrepaymentID:            m.PrepaymentID,
		CounterpartyID:          m.CounterpartyID,
		CounterpartyKind:        domain.CounterpartyKind(m.CounterpartyKind),
		Amount:                  m.Amount,
		UsedAmount:              m.UsedAmount,
		OriginatingSettlementID: m.OriginatingSettlementID,
		SourcePrepaymentID:      m.SourcePrepaymentID,
		Version:                 m.Version,
		AuditFields:             ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelPrepaymentUsage converts a usage row to its persistence model.
func ToModelPrepaymentUsage(u domain.PrepaymentUsage) models.PrepaymentUsage {
	return models.PrepaymentUsage{
		UsageID:      u.UsageID,
		PrepaymentID: u.PrepaymentID,
		SettlementID: u.SettlementID,
		Amount:       u.Amount,
		UsageDate:    u.UsageDate,
		AuditFields:  ToModelAuditFields(u.AuditFields),
	}
}

// ToDomainPrepaymentUsage converts a persistence usage row to the domain form.
func ToDomainPrepaymentUsage(m models.PrepaymentUsage) domain.PrepaymentUsage {
	return domain.PrepaymentUsage{
		UsageID:      m.UsageID,
		PrepaymentID: m.PrepaymentID,
		SettlementID: m.SettlementID,
		Amount:       m.Amount,
		UsageDate:    m.UsageDate,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}
