package services

import (
	"fmt"

	"github.com/settleforge/sle_backend/internal/apperrors"
	"github.com/settleforge/sle_backend/internal/core/domain"
	portssvc "github.com/settleforge/sle_backend/internal/core/ports/services"
	"github.com/settleforge/sle_backend/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// allocationService distributes a settlement total across outstanding lines.
// It is a pure computation over pre-fetched data; the orchestrator persists
// the returned plan verbatim.
type allocationService struct{}

// NewAllocationService creates the allocation engine.
func NewAllocationService() portssvc.AllocationSvcFacade {
	return &allocationService{}
}

var _ portssvc.AllocationSvcFacade = (*allocationService)(nil)

// Allocate validates the request against the given lines and prepayments and
// produces an immutable AllocationPlan. Target order is the caller's order;
// any rounding remainder lands on the last target.
func (s *allocationService) Allocate(req domain.AllocationRequest, lines map[domain.LineRef]domain.OutstandingLine, prepayments map[string]domain.PrepaymentRecord) (*domain.AllocationPlan, error) {
	if req.CounterpartyID == "" {
		return nil, fmt.Errorf("%w: counterparty is required", apperrors.ErrValidation)
	}
	if req.CounterpartyKind != domain.CounterpartyCustomer && req.CounterpartyKind != domain.CounterpartySupplier {
		return nil, fmt.Errorf("%w: unknown counterparty kind %q", apperrors.ErrValidation, req.CounterpartyKind)
	}
	if req.Direction != domain.Receivable && req.Direction != domain.Payable {
		return nil, fmt.Errorf("%w: unknown settlement direction %q", apperrors.ErrValidation, req.Direction)
	}
	if len(req.Targets) == 0 {
		return nil, fmt.Errorf("%w: at least one target line is required", apperrors.ErrValidation)
	}

	total := accounting.Round(req.TotalAmount)
	if total.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: total amount must be positive, got %s", apperrors.ErrValidation, req.TotalAmount.String())
	}

	// Funding side: collected cash (splits) plus prepayment draws must
	// reconcile exactly with the requested total.
	collected := decimal.Zero
	splits := make([]domain.PlannedSplit, 0, len(req.Splits))
	for _, sp := range req.Splits {
		amt := accounting.Round(sp.Amount)
		if amt.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: payment split amount must be positive for method %s", apperrors.ErrValidation, sp.MethodID)
		}
		collected = collected.Add(amt)
		sp.Amount = amt
		splits = append(splits, sp)
	}

	drawn := decimal.Zero
	draws := make([]domain.PlannedDraw, 0, len(req.Draws))
	seenDraws := make(map[string]struct{}, len(req.Draws))
	for _, d := range req.Draws {
		// One draw per prepayment; a second entry would be checked against a
		// balance the first already consumed.
		if _, dup := seenDraws[d.PrepaymentID]; dup {
			return nil, fmt.Errorf("%w: prepayment %s drawn twice", apperrors.ErrValidation, d.PrepaymentID)
		}
		seenDraws[d.PrepaymentID] = struct{}{}
		amt := accounting.Round(d.Amount)
		if amt.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: draw amount must be positive for prepayment %s", apperrors.ErrValidation, d.PrepaymentID)
		}
		rec, ok := prepayments[d.PrepaymentID]
		if !ok {
			return nil, fmt.Errorf("%w: prepayment %s", apperrors.ErrNotFound, d.PrepaymentID)
		}
		if rec.CounterpartyID != req.CounterpartyID || rec.CounterpartyKind != req.CounterpartyKind {
			return nil, fmt.Errorf("%w: prepayment %s belongs to a different counterparty", apperrors.ErrValidation, d.PrepaymentID)
		}
		if amt.GreaterThan(rec.AvailableBalance()) {
			return nil, fmt.Errorf("%w: prepayment %s has %s available, draw requested %s",
				apperrors.ErrInsufficientPrepayment, d.PrepaymentID, rec.AvailableBalance().String(), amt.String())
		}
		drawn = drawn.Add(amt)
		draws = append(draws, domain.PlannedDraw{PrepaymentID: d.PrepaymentID, Amount: amt})
	}

	if !collected.Add(drawn).Equal(total) {
		return nil, fmt.Errorf("%w: splits (%s) plus draws (%s) do not equal total %s",
			apperrors.ErrAllocationMismatch, collected.String(), drawn.String(), total.String())
	}

	// Consumption side: walk the targets in the caller's order.
	allocations := make([]domain.PlannedAllocation, 0, len(req.Targets))
	sumRequestedRaw := decimal.Zero
	sumRequested := decimal.Zero
	allowanceTotal := decimal.Zero
	for _, t := range req.Targets {
		line, ok := lines[t.Line]
		if !ok {
			return nil, fmt.Errorf("%w: outstanding line %s/%s", apperrors.ErrNotFound, t.Line.Kind, t.Line.ID)
		}
		if line.CounterpartyID != req.CounterpartyID {
			return nil, fmt.Errorf("%w: line %s/%s belongs to a different counterparty", apperrors.ErrValidation, t.Line.Kind, t.Line.ID)
		}

		requested := accounting.Round(t.RequestedAmount)
		allowance := accounting.Round(t.AllowanceAmount)
		if requested.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: requested amount must be positive for line %s/%s", apperrors.ErrValidation, t.Line.Kind, t.Line.ID)
		}
		if allowance.IsNegative() {
			return nil, fmt.Errorf("%w: allowance must not be negative for line %s/%s", apperrors.ErrValidation, t.Line.Kind, t.Line.ID)
		}

		remaining := line.Remaining()
		if requested.Add(allowance).GreaterThan(remaining) {
			return nil, fmt.Errorf("%w: line %s/%s has %s remaining, requested %s plus allowance %s",
				apperrors.ErrOverAllocation, t.Line.Kind, t.Line.ID, remaining.String(), requested.String(), allowance.String())
		}

		sumRequestedRaw = sumRequestedRaw.Add(t.RequestedAmount)
		sumRequested = sumRequested.Add(requested)
		allowanceTotal = allowanceTotal.Add(allowance)
		allocations = append(allocations, domain.PlannedAllocation{
			Line:            t.Line,
			AllocatedAmount: requested,
			AllowanceAmount: allowance,
			BalanceAfter:    remaining.Sub(requested).Sub(allowance),
		})
	}

	// Residual-penny rule: rounding the targets individually may shift the
	// sum by a cent; the last target absorbs the difference.
	residual := accounting.Round(sumRequestedRaw).Sub(sumRequested)
	if !residual.IsZero() {
		last := &allocations[len(allocations)-1]
		lastLine := lines[last.Line]
		adjusted := last.AllocatedAmount.Add(residual)
		if adjusted.LessThanOrEqual(decimal.Zero) || adjusted.Add(last.AllowanceAmount).GreaterThan(lastLine.Remaining()) {
			return nil, fmt.Errorf("%w: rounding remainder %s does not fit on line %s/%s",
				apperrors.ErrOverAllocation, residual.String(), last.Line.Kind, last.Line.ID)
		}
		last.AllocatedAmount = adjusted
		last.BalanceAfter = lastLine.Remaining().Sub(adjusted).Sub(last.AllowanceAmount)
		sumRequested = sumRequested.Add(residual)
	}

	if sumRequested.GreaterThan(total) {
		return nil, fmt.Errorf("%w: targets sum to %s, exceeding total %s",
			apperrors.ErrAllocationMismatch, sumRequested.String(), total.String())
	}

	// Unapplied funding becomes a new advance only when the caller opted in.
	created := total.Sub(sumRequested)
	if created.GreaterThan(decimal.Zero) && !req.AllowPrepaymentOverflow {
		return nil, fmt.Errorf("%w: targets sum to %s, leaving %s unapplied",
			apperrors.ErrAllocationMismatch, sumRequested.String(), created.String())
	}

	return &domain.AllocationPlan{
		Direction:               req.Direction,
		CounterpartyID:          req.CounterpartyID,
		CounterpartyKind:        req.CounterpartyKind,
		TotalAmount:             collected.Add(allowanceTotal).Add(drawn),
		CollectedAmount:         collected,
		AllowanceAmount:         allowanceTotal,
		PrepaymentAppliedAmount: drawn,
		PrepaymentCreatedAmount: created,
		Allocations:             allocations,
		Draws:                   draws,
		Splits:                  splits,
	}, nil
}
