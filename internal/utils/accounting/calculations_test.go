package accounting_test

import (
	"testing"

	"github.com/settleforge/sle_backend/internal/core/domain"
	"github.com/settleforge/sle_backend/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already two places", "10.25", "10.25"},
		{"integer", "10", "10"},
		{"rounds half up", "10.255", "10.26"},
		{"rounds down", "10.254", "10.25"},
		{"negative rounds away from zero", "-10.255", "-10.26"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := accounting.Round(decimal.RequireFromString(tt.in))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestSignedAmount(t *testing.T) {
	amount := decimal.NewFromInt(100)

	// A debit on a debit-normal account increases the balance.
	got := accounting.SignedAmount(domain.Debit, domain.Debit, amount)
	assert.True(t, got.Equal(amount))

	// A credit on a debit-normal account decreases it.
	got = accounting.SignedAmount(domain.Credit, domain.Debit, amount)
	assert.True(t, got.Equal(amount.Neg()))

	got = accounting.SignedAmount(domain.Credit, domain.Credit, amount)
	assert.True(t, got.Equal(amount))
}

func TestEntryTotals(t *testing.T) {
	lines := []domain.JournalLine{
		{Direction: domain.Debit, Amount: decimal.NewFromInt(70)},
		{Direction: domain.Debit, Amount: decimal.NewFromInt(30)},
		{Direction: domain.Credit, Amount: decimal.NewFromInt(100)},
	}

	debit, credit := accounting.EntryTotals(lines)
	assert.True(t, debit.Equal(decimal.NewFromInt(100)))
	assert.True(t, credit.Equal(decimal.NewFromInt(100)))
}

func TestValidateEntryLines(t *testing.T) {
	valid := []domain.JournalLine{
		{LineNumber: 1, Direction: domain.Debit, Amount: decimal.NewFromInt(100)},
		{LineNumber: 2, Direction: domain.Credit, Amount: decimal.NewFromInt(100)},
	}

	tests := []struct {
		name    string
		mutate  func([]domain.JournalLine) []domain.JournalLine
		wantErr bool
	}{
		{"valid pair", func(l []domain.JournalLine) []domain.JournalLine { return l }, false},
		{"single line", func(l []domain.JournalLine) []domain.JournalLine { return l[:1] }, true},
		{"zero amount", func(l []domain.JournalLine) []domain.JournalLine {
			l[0].Amount = decimal.Zero
			return l
		}, true},
		{"negative amount", func(l []domain.JournalLine) []domain.JournalLine {
			l[0].Amount = decimal.NewFromInt(-5)
			return l
		}, true},
		{"unknown direction", func(l []domain.JournalLine) []domain.JournalLine {
			l[0].Direction = "SIDEWAYS"
			return l
		}, true},
		{"duplicate line number", func(l []domain.JournalLine) []domain.JournalLine {
			l[1].LineNumber = 1
			return l
		}, true},
		{"line number out of range", func(l []domain.JournalLine) []domain.JournalLine {
			l[1].LineNumber = 3
			return l
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := make([]domain.JournalLine, len(valid))
			copy(lines, valid)
			lines = tt.mutate(lines)
			err := accounting.ValidateEntryLines(lines)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
