package mapping

import (
	"github.com/settleforge/sle_backend/internal/core/domain"
	"github.com/settleforge/sle_backend/internal/models"
)

// ToModelOutstandingLine converts an outstanding line to its persistence model.
func ToModelOutstandingLine(l domain.OutstandingLine) models.OutstandingLine {
	return models.OutstandingLine{
		LineKind:                string(l.Ref.Kind),
		LineID:                  l.Ref.ID,
		CounterpartyID:          l.CounterpartyID,
		CounterpartyKind:        string(l.CounterpartyKind),
		GrossAmount:             l.GrossAmount,
		PreviouslySettledAmount: l.PreviouslySettledAmount,
		Version:                 l.Version,
		AuditFields:             ToModelAuditFields(l.AuditFields),
	}
}

// ToDomainOutstandingLine converts a persistence outstanding line to the domain form.
func ToDomainOutstandingLine(m models.OutstandingLine) domain.OutstandingLine {
	return domain.OutstandingLine{
		Ref:                     domain.LineRef{Kind: domain.LineKind(m.LineKind), ID: m.LineID},
		CounterpartyID:          m.CounterpartyID,
		CounterpartyKind:        domain.CounterpartyKind(m.CounterpartyKind),
		GrossAmount:             m.GrossAmount,
		PreviouslySettledAmount: m.PreviouslySettledAmount,
		Version:                 m.Version,
		AuditFields:             ToDomainAuditFields(m.AuditFields),
	}
}
