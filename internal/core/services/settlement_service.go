package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/settleforge/sle_backend/internal/apperrors"
	"github.com/settleforge/sle_backend/internal/core/domain"
	portsrepo "github.com/settleforge/sle_backend/internal/core/ports/repositories"
	portssvc "github.com/settleforge/sle_backend/internal/core/ports/services"
	"github.com/settleforge/sle_backend/internal/dto"
	"github.com/settleforge/sle_backend/internal/middleware"
)

// AccountMap names the detail accounts the engine posts settlements against.
// Populated from configuration; every ID must resolve to a detail account.
type AccountMap struct {
	ReceivableControl string // AR sub-account credited when receivable lines settle
	PayableControl    string // AP sub-account debited when payable lines settle
	AllowanceExpense  string // write-offs granted to customers
	AllowanceIncome   string // write-offs received from suppliers
	CustomerAdvances  string // liability account for customer prepayments
	SupplierAdvances  string // asset account for supplier prepayments
	DefaultCash       string // fallback cash account

	// MethodAccounts maps a payment method to its cash/bank account.
	MethodAccounts map[string]string
}

// CashAccountFor resolves the cash/bank account for a payment method.
func (m AccountMap) CashAccountFor(methodID string) string {
	if acc, ok := m.MethodAccounts[methodID]; ok {
		return acc
	}
	return m.DefaultCash
}

// EngineConfig carries the engine-level knobs, passed in explicitly rather
// than read from ambient state.
type EngineConfig struct {
	MaxSubmitRetries int // bounded retries on version conflicts
	Accounts         AccountMap
}

// settlementService is the transaction boundary tying the allocation engine,
// prepayment ledger and posting engine together per settlement request.
type settlementService struct {
	settlementRepo  portsrepo.SettlementRepositoryFacade
	outstandingRepo portsrepo.OutstandingLineRepository
	prepaymentRepo  portsrepo.PrepaymentRepositoryFacade
	allocationSvc   portssvc.AllocationSvcFacade
	prepaymentSvc   portssvc.PrepaymentSvcFacade
	postingSvc      portssvc.PostingSvcFacade
	cfg             EngineConfig
}

// NewSettlementService creates the settlement orchestrator.
func NewSettlementService(
	settlementRepo portsrepo.SettlementRepositoryFacade,
	outstandingRepo portsrepo.OutstandingLineRepository,
	prepaymentRepo portsrepo.PrepaymentRepositoryFacade,
	allocationSvc portssvc.AllocationSvcFacade,
	prepaymentSvc portssvc.PrepaymentSvcFacade,
	postingSvc portssvc.PostingSvcFacade,
	cfg EngineConfig,
) portssvc.SettlementSvcFacade {
	return &settlementService{
		settlementRepo:  settlementRepo,
		outstandingRepo: outstandingRepo,
		prepaymentRepo:  prepaymentRepo,
		allocationSvc:   allocationSvc,
		prepaymentSvc:   prepaymentSvc,
		postingSvc:      postingSvc,
		cfg:             cfg,
	}
}

var _ portssvc.SettlementSvcFacade = (*settlementService)(nil)

// SubmitSettlement runs the settlement sequence atomically, retrying a
// bounded number of times when a concurrent settlement wins a version race.
func (s *settlementService) SubmitSettlement(ctx context.Context, req dto.CreateSettlementRequest, userID string) (*domain.SettlementDocument, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	allocReq, err := toAllocationRequest(req)
	if err != nil {
		return nil, err
	}

	var doc *domain.SettlementDocument
	attempts := s.cfg.MaxSubmitRetries + 1
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		doc, err = s.submitOnce(ctx, allocReq, req.SettlementDate, userID)
		if err == nil {
			return doc, nil
		}
		if !errors.Is(err, apperrors.ErrVersionConflict) || attempt == attempts {
			return nil, err
		}
		logger.Warn("Settlement hit a version conflict, retrying",
			slog.Int("attempt", attempt), slog.String("counterparty_id", req.CounterpartyID))
	}
	return nil, err
}

// toAllocationRequest validates the transport request and converts it to the
// allocation engine's input, preserving the caller's target order.
func toAllocationRequest(req dto.CreateSettlementRequest) (domain.AllocationRequest, error) {
	if len(req.Targets) == 0 {
		return domain.AllocationRequest{}, fmt.Errorf("%w: at least one target line is required", apperrors.ErrValidation)
	}

	out := domain.AllocationRequest{
		Direction:               domain.SettlementDirection(req.Direction),
		CounterpartyID:          req.CounterpartyID,
		CounterpartyKind:        domain.CounterpartyKind(req.CounterpartyKind),
		TotalAmount:             req.TotalAmount,
		AllowPrepaymentOverflow: req.AllowPrepaymentOverflow,
	}
	seen := make(map[domain.LineRef]struct{}, len(req.Targets))
	for _, t := range req.Targets {
		ref := domain.LineRef{Kind: domain.LineKind(t.LineKind), ID: t.LineID}
		if _, dup := seen[ref]; dup {
			return domain.AllocationRequest{}, fmt.Errorf("%w: line %s/%s targeted twice", apperrors.ErrValidation, ref.Kind, ref.ID)
		}
		seen[ref] = struct{}{}
		out.Targets = append(out.Targets, domain.AllocationTarget{
			Line:            ref,
			RequestedAmount: t.RequestedAmount,
			AllowanceAmount: t.AllowanceAmount,
		})
	}
	for _, sp := range req.PaymentSplits {
		out.Splits = append(out.Splits, domain.PlannedSplit{
			MethodID:        sp.MethodID,
			BankID:          sp.BankID,
			Amount:          sp.Amount,
			ReferenceNumber: sp.ReferenceNumber,
			DueDate:         sp.DueDate,
		})
	}
	seenDraws := make(map[string]struct{}, len(req.PrepaymentDraws))
	for _, d := range req.PrepaymentDraws {
		if _, dup := seenDraws[d.PrepaymentID]; dup {
			return domain.AllocationRequest{}, fmt.Errorf("%w: prepayment %s drawn twice", apperrors.ErrValidation, d.PrepaymentID)
		}
		seenDraws[d.PrepaymentID] = struct{}{}
		out.Draws = append(out.Draws, domain.PrepaymentDrawRequest{
			PrepaymentID: d.PrepaymentID,
			Amount:       d.Amount,
		})
	}
	return out, nil
}

// submitOnce is one attempt at the full transactional sequence of a settlement.
func (s *settlementService) submitOnce(ctx context.Context, allocReq domain.AllocationRequest, settlementDate time.Time, userID string) (*domain.SettlementDocument, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := s.settlementRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	// No-op once committed.
	defer s.settlementRepo.Rollback(ctx, tx)

	// Lock every touched row in deterministic global order (ascending id)
	// so concurrent settlements cannot deadlock against each other.
	refs := make([]domain.LineRef, len(allocReq.Targets))
	for i, t := range allocReq.Targets {
		refs[i] = t.Line
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Kind != refs[j].Kind {
			return refs[i].Kind < refs[j].Kind
		}
		return refs[i].ID < refs[j].ID
	})
	lockedLines, err := s.outstandingRepo.FindByRefsForUpdate(ctx, tx, refs)
	if err != nil {
		return nil, err
	}

	prepIDs := make([]string, 0, len(allocReq.Draws))
	for _, d := range allocReq.Draws {
		prepIDs = append(prepIDs, d.PrepaymentID)
	}
	sort.Strings(prepIDs)
	lockedPreps := map[string]domain.PrepaymentRecord{}
	if len(prepIDs) > 0 {
		lockedPreps, err = s.prepaymentRepo.FindPrepaymentsByIDsForUpdate(ctx, tx, prepIDs)
		if err != nil {
			return nil, err
		}
	}

	// Compute the plan against the freshly locked balances. A concurrent
	// settlement that already consumed a line surfaces here as over-allocation.
	plan, err := s.allocationSvc.Allocate(allocReq, lockedLines, lockedPreps)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	settlementID := uuid.NewString()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}

	// Build and post the journal entry first; the document references it.
	entryInput, err := s.buildEntryInput(plan, settlementID, settlementDate)
	if err != nil {
		return nil, err
	}
	entry, err := s.postingSvc.BuildAndPost(ctx, tx, entryInput, userID)
	if err != nil {
		return nil, err
	}

	doc := domain.SettlementDocument{
		SettlementID:            settlementID,
		Direction:               plan.Direction,
		CounterpartyID:          plan.CounterpartyID,
		CounterpartyKind:        plan.CounterpartyKind,
		SettlementDate:          settlementDate,
		TotalAmount:             plan.TotalAmount,
		CollectedAmount:         plan.CollectedAmount,
		AllowanceAmount:         plan.AllowanceAmount,
		PrepaymentAppliedAmount: plan.PrepaymentAppliedAmount,
		PrepaymentCreatedAmount: plan.PrepaymentCreatedAmount,
		JournalEntryID:          entry.EntryID,
		AuditFields:             audit,
	}

	allocations := make([]domain.LineAllocation, len(plan.Allocations))
	for i, a := range plan.Allocations {
		allocations[i] = domain.LineAllocation{
			AllocationID:    uuid.NewString(),
			SettlementID:    settlementID,
			LineNumber:      i + 1,
			Line:            a.Line,
			AllocatedAmount: a.AllocatedAmount,
			AllowanceAmount: a.AllowanceAmount,
			BalanceAfter:    a.BalanceAfter,
			AuditFields:     audit,
		}
	}
	splits := make([]domain.PaymentSplit, len(plan.Splits))
	for i, sp := range plan.Splits {
		splits[i] = domain.PaymentSplit{
			SplitID:         uuid.NewString(),
			SettlementID:    settlementID,
			MethodID:        sp.MethodID,
			BankID:          sp.BankID,
			Amount:          sp.Amount,
			ReferenceNumber: sp.ReferenceNumber,
			DueDate:         sp.DueDate,
			AuditFields:     audit,
		}
	}

	if err := s.settlementRepo.SaveSettlement(ctx, tx, doc, allocations, splits); err != nil {
		return nil, err
	}

	// Prepayment ledger: overflow becomes a new advance, draws consume
	// the locked records.
	if plan.PrepaymentCreatedAmount.GreaterThan(decimal.Zero) {
		if _, err := s.prepaymentSvc.CreateAdvance(ctx, tx, plan.CounterpartyID, plan.CounterpartyKind, plan.PrepaymentCreatedAmount, settlementID, userID); err != nil {
			return nil, err
		}
	}
	for _, d := range plan.Draws {
		record, ok := lockedPreps[d.PrepaymentID]
		if !ok {
			return nil, fmt.Errorf("%w: prepayment %s missing from locked set", apperrors.ErrInternal, d.PrepaymentID)
		}
		if _, err := s.prepaymentSvc.Draw(ctx, tx, record, d.Amount, settlementID, settlementDate, userID); err != nil {
			return nil, err
		}
	}

	// Finally bump every line's settled amount under its version check.
	for _, a := range allocations {
		line, ok := lockedLines[a.Line]
		if !ok {
			return nil, fmt.Errorf("%w: line %s/%s missing from locked set", apperrors.ErrInternal, a.Line.Kind, a.Line.ID)
		}
		settled := a.AllocatedAmount.Add(a.AllowanceAmount)
		if err := s.outstandingRepo.IncrementSettled(ctx, tx, a.Line, settled, line.Version, userID, now); err != nil {
			return nil, err
		}
	}

	if err := s.settlementRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info("Settlement committed",
		slog.String("settlement_id", settlementID),
		slog.String("journal_entry_id", entry.EntryID),
		slog.String("total", plan.TotalAmount.String()),
		slog.Int("line_count", len(allocations)))

	doc.Allocations = allocations
	doc.PaymentSplits = splits
	return &doc, nil
}

// buildEntryInput maps an allocation plan to balanced posting lines.
// Receivables debit the incoming value and credit the AR control account;
// payables are the mirror image against AP.
func (s *settlementService) buildEntryInput(plan *domain.AllocationPlan, settlementID string, settlementDate time.Time) (dto.BuildEntryInput, error) {
	accounts := s.cfg.Accounts
	settledToLines := decimal.Zero
	for _, a := range plan.Allocations {
		settledToLines = settledToLines.Add(a.AllocatedAmount).Add(a.AllowanceAmount)
	}

	var lines []dto.PostingLineInput
	addLine := func(accountID, direction string, amount decimal.Decimal, memo string) error {
		if amount.LessThanOrEqual(decimal.Zero) {
			return nil
		}
		if accountID == "" {
			return fmt.Errorf("%w: no account configured for %s", apperrors.ErrInvalidAccount, memo)
		}
		lines = append(lines, dto.PostingLineInput{
			AccountID: accountID,
			Direction: direction,
			Amount:    amount,
			Memo:      memo,
		})
		return nil
	}

	var err error
	appendErr := func(e error) {
		if err == nil {
			err = e
		}
	}

	if plan.Direction == domain.Receivable {
		for _, sp := range plan.Splits {
			appendErr(addLine(accounts.CashAccountFor(sp.MethodID), string(domain.Debit), sp.Amount, "collection via "+sp.MethodID))
		}
		appendErr(addLine(accounts.AllowanceExpense, string(domain.Debit), plan.AllowanceAmount, "allowance granted"))
		appendErr(addLine(accounts.CustomerAdvances, string(domain.Debit), plan.PrepaymentAppliedAmount, "advance applied"))
		appendErr(addLine(accounts.ReceivableControl, string(domain.Credit), settledToLines, "receivables settled"))
		appendErr(addLine(accounts.CustomerAdvances, string(domain.Credit), plan.PrepaymentCreatedAmount, "advance received"))
	} else {
		appendErr(addLine(accounts.PayableControl, string(domain.Debit), settledToLines, "payables settled"))
		appendErr(addLine(accounts.SupplierAdvances, string(domain.Debit), plan.PrepaymentCreatedAmount, "advance paid"))
		for _, sp := range plan.Splits {
			appendErr(addLine(accounts.CashAccountFor(sp.MethodID), string(domain.Credit), sp.Amount, "payment via "+sp.MethodID))
		}
		appendErr(addLine(accounts.AllowanceIncome, string(domain.Credit), plan.AllowanceAmount, "allowance received"))
		appendErr(addLine(accounts.SupplierAdvances, string(domain.Credit), plan.PrepaymentAppliedAmount, "advance applied"))
	}
	if err != nil {
		return dto.BuildEntryInput{}, err
	}

	return dto.BuildEntryInput{
		Kind:        string(domain.EntryAuto),
		EntryDate:   settlementDate,
		Description: fmt.Sprintf("Settlement %s", settlementID),
		SourceKind:  "SETTLEMENT",
		SourceID:    settlementID,
		Lines:       lines,
	}, nil
}

// GetSettlement retrieves a settlement with its children.
func (s *settlementService) GetSettlement(ctx context.Context, settlementID string) (*domain.SettlementDocument, error) {
	return s.settlementRepo.FindSettlementByID(ctx, settlementID)
}

// ListSettlements retrieves a counterparty's settlements, newest first.
func (s *settlementService) ListSettlements(ctx context.Context, counterpartyID string, limit int) ([]domain.SettlementDocument, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.settlementRepo.ListSettlementsByCounterparty(ctx, counterpartyID, limit)
}
