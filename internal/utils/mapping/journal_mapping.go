package mapping

import (
	"github.com/settleforge/sle_backend/internal/core/domain"
	"github.com/settleforge/sle_backend/internal/models"
)

// ToModelJournalEntry converts a journal entry header to its persistence model.
func ToModelJournalEntry(e domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
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
		AuditFields:  ToModelAuditFields(e.AuditFields),
	}
}

// ToDomainJournalEntry converts a persistence journal entry to the domain form.
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:      m.EntryID,
		EntryDate:    m.EntryDate,
		Kind:         domain.EntryKind(m.Kind),
		Status:       domain.EntryStatus(m.Status),
		Description:  m.Description,
		FiscalYear:   m.FiscalYear,
		FiscalPeriod: m.FiscalPeriod,
		SourceKind:   m.SourceKind,
		SourceID:     m.SourceID,
		TotalDebit:   m.TotalDebit,
		TotalCredit:  m.TotalCredit,
		ReversalOfID: m.ReversalOfID,
		ReversedByID: m.ReversedByID,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelJournalLine converts a journal line to its persistence model.
func ToModelJournalLine(l domain.JournalLine) models.JournalLine {
	return models.JournalLine{
		LineID:      l.LineID,
		EntryID:     l.EntryID,
		LineNumber:  l.LineNumber,
		AccountID:   l.AccountID,
		Direction:   string(l.Direction),
		Amount:      l.Amount,
		Memo:        l.Memo,
		AuditFields: ToModelAuditFields(l.AuditFields),
	}
}

// ToDomainJournalLine converts a persistence journal line to the domain form.
func ToDomainJournalLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		LineID:      m.LineID,
		EntryID:     m.EntryID,
		LineNumber:  m.LineNumber,
		AccountID:   m.AccountID,
		Direction:   domain.EntryDirection(m.Direction),
		Amount:      m.Amount,
		Memo:        m.Memo,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainJournalLineSlice converts a slice of persistence journal lines.
func ToDomainJournalLineSlice(lines []models.JournalLine) []domain.JournalLine {
	out := make([]domain.JournalLine, len(lines))
	for i, l := range lines {
		out[i] = ToDomainJournalLine(l)
	}
	return out
}
