package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/settleforge/sle_backend/internal/apperrors"
	"github.com/settleforge/sle_backend/internal/core/domain"
	portsrepo "github.com/settleforge/sle_backend/internal/core/ports/repositories"
	portssvc "github.com/settleforge/sle_backend/internal/core/ports/services"
	"github.com/settleforge/sle_backend/internal/dto"
	"github.com/settleforge/sle_backend/internal/middleware"
	"github.com/settleforge/sle_backend/internal/utils/accounting"
)

// postingService turns accounting events into balanced journal entries and
// manages the draft -> posted -> reversed lifecycle.
type postingService struct {
	journalRepo portsrepo.JournalRepositoryFacade
	coaSvc      portssvc.ChartOfAccountsReaderSvc
}

// NewPostingService creates the posting engine.
func NewPostingService(journalRepo portsrepo.JournalRepositoryFacade, coaSvc portssvc.ChartOfAccountsReaderSvc) portssvc.PostingSvcFacade {
	return &postingService{journalRepo: journalRepo, coaSvc: coaSvc}
}

var _ portssvc.PostingSvcFacade = (*postingService)(nil)

// buildDomainEntry validates the input against the chart of accounts and
// assembles the entry with dense line numbers in input order.
func (s *postingService) buildDomainEntry(input dto.BuildEntryInput, userID string) (domain.JournalEntry, []domain.JournalLine, error) {
	now := time.Now().UTC()
	entryID := uuid.NewString()

	fiscalYear := input.FiscalYear
	if fiscalYear == 0 {
		fiscalYear = input.EntryDate.Year()
	}
	fiscalPeriod := input.FiscalPeriod
	if fiscalPeriod == 0 {
		fiscalPeriod = int(input.EntryDate.Month())
	}
	if fiscalPeriod < 1 || fiscalPeriod > 12 {
		return domain.JournalEntry{}, nil, fmt.Errorf("%w: fiscal period %d out of range 1..12", apperrors.ErrValidation, fiscalPeriod)
	}

	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}

	lines := make([]domain.JournalLine, len(input.Lines))
	for i, ln := range input.Lines {
		if _, err := s.coaSvc.ResolveDetailAccount(ln.AccountID); err != nil {
			return domain.JournalEntry{}, nil, err
		}
		amount := accounting.Round(ln.Amount)
		lines[i] = domain.JournalLine{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			LineNumber:  i + 1,
			AccountID:   ln.AccountID,
			Direction:   domain.EntryDirection(ln.Direction),
			Amount:      amount,
			Memo:        ln.Memo,
			AuditFields: audit,
		}
	}
	if err := accounting.ValidateEntryLines(lines); err != nil {
		return domain.JournalEntry{}, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	totalDebit, totalCredit := accounting.EntryTotals(lines)
	entry := domain.JournalEntry{
		EntryID:      entryID,
		EntryDate:    input.EntryDate,
		Kind:         domain.EntryKind(input.Kind),
		Status:       domain.Draft,
		Description:  input.Description,
		FiscalYear:   fiscalYear,
		FiscalPeriod: fiscalPeriod,
		SourceKind:   input.SourceKind,
		SourceID:     input.SourceID,
		TotalDebit:   totalDebit,
		TotalCredit:  totalCredit,
		AuditFields:  audit,
	}
	return entry, lines, nil
}

// checkBalanced enforces the posting invariant: debits equal credits, both positive.
func checkBalanced(entryID string, totalDebit, totalCredit decimal.Decimal) error {
	if !totalDebit.Equal(totalCredit) {
		return fmt.Errorf("%w: entry %s has debits %s and credits %s",
			apperrors.ErrUnbalancedEntry, entryID, totalDebit.String(), totalCredit.String())
	}
	if totalDebit.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: entry %s totals must be positive, got %s",
			apperrors.ErrUnbalancedEntry, entryID, totalDebit.String())
	}
	return nil
}

// BuildEntry validates and persists a DRAFT entry.
func (s *postingService) BuildEntry(ctx context.Context, input dto.BuildEntryInput, userID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, lines, err := s.buildDomainEntry(input, userID)
	if err != nil {
		return nil, err
	}
	if err := s.journalRepo.SaveEntry(ctx, nil, entry, lines); err != nil {
		logger.Error("Failed to save draft entry", slog.String("error", err.Error()), slog.String("entry_id", entry.EntryID))
		return nil, fmt.Errorf("failed to save draft entry: %w", err)
	}

	logger.Info("Draft journal entry built", slog.String("entry_id", entry.EntryID), slog.Int("line_count", len(lines)))
	entry.Lines = lines
	return &entry, nil
}

// BuildAndPost builds and immediately posts an entry inside the caller's
// transaction. The balance invariant is enforced before anything is written.
func (s *postingService) BuildAndPost(ctx context.Context, tx pgx.Tx, input dto.BuildEntryInput, userID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, lines, err := s.buildDomainEntry(input, userID)
	if err != nil {
		return nil, err
	}
	if err := checkBalanced(entry.EntryID, entry.TotalDebit, entry.TotalCredit); err != nil {
		return nil, err
	}

	entry.Status = domain.Posted
	if err := s.journalRepo.SaveEntry(ctx, tx, entry, lines); err != nil {
		logger.Error("Failed to save posted entry", slog.String("error", err.Error()), slog.String("entry_id", entry.EntryID))
		return nil, fmt.Errorf("failed to save posted entry: %w", err)
	}

	logger.Info("Journal entry built and posted", slog.String("entry_id", entry.EntryID), slog.String("total", entry.TotalDebit.String()))
	entry.Lines = lines
	return &entry, nil
}

// Post transitions a DRAFT entry to POSTED. Totals are recomputed from the
// lines and every account is re-resolved against the chart of accounts.
func (s *postingService) Post(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.Draft {
		return nil, fmt.Errorf("%w: entry %s is %s, only DRAFT entries can be posted", apperrors.ErrConflict, entryID, entry.Status)
	}

	lines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	for _, ln := range lines {
		if _, err := s.coaSvc.ResolveDetailAccount(ln.AccountID); err != nil {
			return nil, err
		}
	}

	totalDebit, totalCredit := accounting.EntryTotals(lines)
	if err := checkBalanced(entryID, totalDebit, totalCredit); err != nil {
		return nil, err
	}

	tx, err := s.journalRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.journalRepo.Rollback(ctx, tx)

	now := time.Now().UTC()
	if err := s.journalRepo.UpdateEntryStatus(ctx, tx, entryID, domain.Draft, domain.Posted, totalDebit, totalCredit, "", userID, now); err != nil {
		logger.Error("Failed to post entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, err
	}
	if err := s.journalRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	entry.Status = domain.Posted
	entry.TotalDebit = totalDebit
	entry.TotalCredit = totalCredit
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = userID
	entry.Lines = lines

	logger.Info("Journal entry posted", slog.String("entry_id", entryID), slog.String("total", totalDebit.String()))
	return entry, nil
}

// Cancel transitions a DRAFT entry to CANCELLED. Cancelled entries never
// affect balances and cannot leave that state.
func (s *postingService) Cancel(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.Draft {
		return nil, fmt.Errorf("%w: entry %s is %s, only DRAFT entries can be cancelled", apperrors.ErrConflict, entryID, entry.Status)
	}

	tx, err := s.journalRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.journalRepo.Rollback(ctx, tx)

	now := time.Now().UTC()
	if err := s.journalRepo.UpdateEntryStatus(ctx, tx, entryID, domain.Draft, domain.Cancelled, entry.TotalDebit, entry.TotalCredit, "", userID, now); err != nil {
		logger.Error("Failed to cancel entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, err
	}
	if err := s.journalRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	entry.Status = domain.Cancelled
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = userID

	logger.Info("Journal entry cancelled", slog.String("entry_id", entryID))
	return entry, nil
}

// Reverse creates and posts a mirror entry with every line's direction
// flipped and marks the original REVERSED. The original's lines are never
// touched; its effect is cancelled purely by the mirror.
func (s *postingService) Reverse(ctx context.Context, entryID string, reason string, userID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	original, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if original.Status == domain.Reversed {
		return nil, fmt.Errorf("%w: entry %s is already reversed", apperrors.ErrConflict, entryID)
	}
	if original.Status != domain.Posted {
		return nil, fmt.Errorf("%w: entry %s is %s, only POSTED entries can be reversed", apperrors.ErrConflict, entryID, original.Status)
	}

	originalLines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	mirrorID := uuid.NewString()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}

	mirrorLines := make([]domain.JournalLine, len(originalLines))
	for i, ln := range originalLines {
		direction := domain.Credit
		if ln.Direction == domain.Credit {
			direction = domain.Debit
		}
		mirrorLines[i] = domain.JournalLine{
			LineID:      uuid.NewString(),
			EntryID:     mirrorID,
			LineNumber:  ln.LineNumber,
			AccountID:   ln.AccountID,
			Direction:   direction,
			Amount:      ln.Amount,
			Memo:        ln.Memo,
			AuditFields: audit,
		}
	}

	totalDebit, totalCredit := accounting.EntryTotals(mirrorLines)
	mirror := domain.JournalEntry{
		EntryID:      mirrorID,
		EntryDate:    original.EntryDate,
		Kind:         domain.EntryReversal,
		Status:       domain.Posted,
		Description:  fmt.Sprintf("Reversal of %s: %s", entryID, reason),
		FiscalYear:   original.FiscalYear,
		FiscalPeriod: original.FiscalPeriod,
		SourceKind:   original.SourceKind,
		SourceID:     original.SourceID,
		TotalDebit:   totalDebit,
		TotalCredit:  totalCredit,
		ReversalOfID: entryID,
		AuditFields:  audit,
	}

	tx, err := s.journalRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.journalRepo.Rollback(ctx, tx)

	if err := s.journalRepo.SaveEntry(ctx, tx, mirror, mirrorLines); err != nil {
		logger.Error("Failed to save reversal entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to save reversal entry: %w", err)
	}
	// The status predicate closes the race with a concurrent reversal: only
	// the writer that still sees POSTED gets to attach a mirror.
	if err := s.journalRepo.UpdateEntryStatus(ctx, tx, entryID, domain.Posted, domain.Reversed, original.TotalDebit, original.TotalCredit, mirrorID, userID, now); err != nil {
		logger.Error("Failed to mark entry reversed", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, err
	}
	if err := s.journalRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info("Journal entry reversed", slog.String("entry_id", entryID), slog.String("reversal_entry_id", mirrorID))
	mirror.Lines = mirrorLines
	return &mirror, nil
}

// GetAccountBalance computes an account's net posted movement. Lines on the
// account's normal side count positive, the opposite side negative.
func (s *postingService) GetAccountBalance(ctx context.Context, accountID string) (*domain.AccountBalance, error) {
	node, err := s.coaSvc.GetAccount(accountID)
	if err != nil {
		return nil, err
	}

	totalDebit, totalCredit, err := s.journalRepo.SumPostedAmountsByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute balance of account %s: %w", accountID, err)
	}

	balance := accounting.SignedAmount(domain.Debit, node.NormalDirection, totalDebit).
		Add(accounting.SignedAmount(domain.Credit, node.NormalDirection, totalCredit))
	return &domain.AccountBalance{
		AccountID:       accountID,
		NormalDirection: node.NormalDirection,
		TotalDebit:      totalDebit,
		TotalCredit:     totalCredit,
		Balance:         balance,
	}, nil
}

// GetEntry retrieves an entry with its lines.
func (s *postingService) GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	lines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve lines for entry %s: %w", entryID, err)
	}
	entry.Lines = lines
	return entry, nil
}
