package accounting

import (
	"fmt"

	"github.com/settleforge/sle_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the fixed-point precision for every monetary amount.
const MoneyPlaces = 2

// Round normalizes an amount to the fixed-point precision.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// SignedAmount applies the correct sign to a line amount based on the account's
// normal direction. A line on the account's normal side increases its balance.
func SignedAmount(direction, normalDirection domain.EntryDirection, amount decimal.Decimal) decimal.Decimal {
	if direction == normalDirection {
		return amount
	}
	return amount.Neg()
}

// EntryTotals sums the debit and credit sides of a set of journal lines.
func EntryTotals(lines []domain.JournalLine) (totalDebit, totalCredit decimal.Decimal) {
	totalDebit = decimal.Zero
	totalCredit = decimal.Zero
	for _, l := range lines {
		if l.Direction == domain.Debit {
			totalDebit = totalDebit.Add(l.Amount)
		} else {
			totalCredit = totalCredit.Add(l.Amount)
		}
	}
	return totalDebit, totalCredit
}

// ValidateEntryLines checks the structural invariants of a set of journal
// lines: at least two lines, positive amounts, dense 1..n line numbers.
func ValidateEntryLines(lines []domain.JournalLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("entry must have at least two lines, got %d", len(lines))
	}
	seen := make(map[int]struct{}, len(lines))
	for _, l := range lines {
		if l.Amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("line %d amount must be positive, got %s", l.LineNumber, l.Amount.String())
		}
		if l.Direction != domain.Debit && l.Direction != domain.Credit {
			return fmt.Errorf("line %d has unknown direction %q", l.LineNumber, l.Direction)
		}
		if l.LineNumber < 1 || l.LineNumber > len(lines) {
			return fmt.Errorf("line number %d out of range 1..%d", l.LineNumber, len(lines))
		}
		if _, dup := seen[l.LineNumber]; dup {
			return fmt.Errorf("duplicate line number %d", l.LineNumber)
		}
		seen[l.LineNumber] = struct{}{}
	}
	return nil
}
