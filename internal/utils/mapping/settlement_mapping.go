package mapping

import (
	"github.com/settleforge/sle_backend/internal/core/domain"
	"github.com/settleforge/sle_backend/internal/models"
)

// ToModelSettlementDocument converts a settlement header to its persistence model.
func ToModelSettlementDocument(d domain.SettlementDocument) models.SettlementDocument {
	return models.SettlementDocument{
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
		AuditFields:             ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainSettlementDocument converts a persistence settlement header to the domain form.
func ToDomainSettlementDocument(m models.SettlementDocument) domain.SettlementDocument {
	return domain.SettlementDocument{
		SettlementID:            m.SettlementID,
		Direction:               domain.SettlementDirection(m.Direction),
		CounterpartyID:          m.CounterpartyID,
		CounterpartyKind:        domain.CounterpartyKind(m.CounterpartyKind),
		SettlementDate:          m.SettlementDate,
		TotalAmount:             m.TotalAmount,
		CollectedAmount:         m.CollectedAmount,
		AllowanceAmount:         m.AllowanceAmount,
		PrepaymentAppliedAmount: m.PrepaymentAppliedAmount,
		PrepaymentCreatedAmount: m.PrepaymentCreatedAmount,
		JournalEntryID:          m.JournalEntryID,
		AuditFields:             ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelLineAllocation converts a line allocation to its persistence model.
func ToModelLineAllocation(a domain.LineAllocation) models.LineAllocation {
	return models.LineAllocation{
		AllocationID:    a.AllocationID,
		SettlementID:    a.SettlementID,
		LineNumber:      a.LineNumber,
		LineKind:        string(a.Line.Kind),
		LineID:          a.Line.ID,
		AllocatedAmount: a.AllocatedAmount,
		AllowanceAmount: a.AllowanceAmount,
		BalanceAfter:    a.BalanceAfter,
		AuditFields:     ToModelAuditFields(a.AuditFields),
	}
}

// ToDomainLineAllocation converts a persistence line allocation to the domain form.
func ToDomainLineAllocation(m models.LineAllocation) domain.LineAllocation {
	return domain.LineAllocation{
		AllocationID:    m.AllocationID,
		SettlementID:    m.SettlementID,
		LineNumber:      m.LineNumber,
		Line:            domain.LineRef{Kind: domain.LineKind(m.LineKind), ID: m.LineID},
		AllocatedAmount: m.AllocatedAmount,
		AllowanceAmount: m.AllowanceAmount,
		BalanceAfter:    m.BalanceAfter,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelPaymentSplit converts a payment split to its persistence model.
func ToModelPaymentSplit(s domain.PaymentSplit) models.PaymentSplit {
	return models.PaymentSplit{
		SplitID:         s.SplitID,
		SettlementID:    s.SettlementID,
		MethodID:        s.MethodID,
		BankID:          s.BankID,
		Amount:          s.Amount,
		ReferenceNumber: s.ReferenceNumber,
		DueDate:         s.DueDate,
		AuditFields:     ToModelAuditFields(s.AuditFields),
	}
}

// ToDomainPaymentSplit converts a persistence payment split to the domain form.
func ToDomainPaymentSplit(m models.PaymentSplit) domain.PaymentSplit {
	return domain.PaymentSplit{
		SplitID:         m.SplitID,
		SettlementID:    m.SettlementID,
		MethodID:        m.MethodID,
		BankID:          m.BankID,
		Amount:          m.Amount,
		ReferenceNumber: m.ReferenceNumber,
		DueDate:         m.DueDate,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}
