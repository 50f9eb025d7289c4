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

// prepaymentService tracks advances and their draws. Writers run inside the
// settlement transaction owned by the orchestrator.
type prepaymentService struct {
	prepaymentRepo portsrepo.PrepaymentRepositoryFacade
}

// NewPrepaymentService creates the prepayment ledger service.
func NewPrepaymentService(prepaymentRepo portsrepo.PrepaymentRepositoryFacade) portssvc.PrepaymentSvcFacade {
	return &prepaymentService{prepaymentRepo: prepaymentRepo}
}

var _ portssvc.PrepaymentSvcFacade = (*prepaymentService)(nil)

// CreateAdvance records a new advance for the counterparty.
func (s *prepaymentService) CreateAdvance(ctx context.Context, tx pgx.Tx, counterpartyID string, kind domain.CounterpartyKind, amount decimal.Decimal, originatingSettlementID string, userID string) (*domain.PrepaymentRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	amount = accounting.Round(amount)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: advance amount must be positive, got %s", apperrors.ErrValidation, amount.String())
	}
	if counterpartyID == "" {
		return nil, fmt.Errorf("%w: counterparty is required", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	record := domain.PrepaymentRecord{
		PrepaymentID:            uuid.NewString(),
		CounterpartyID:          counterpartyID,
		CounterpartyKind:        kind,
		Amount:                  amount,
		UsedAmount:              decimal.Zero,
		OriginatingSettlementID: originatingSettlementID,
		Version:                 1,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.prepaymentRepo.SavePrepayment(ctx, tx, record); err != nil {
		logger.Error("Failed to save advance", slog.String("error", err.Error()), slog.String("counterparty_id", counterpartyID))
		return nil, fmt.Errorf("failed to save advance: %w", err)
	}

	logger.Info("Advance created", slog.String("prepayment_id", record.PrepaymentID), slog.String("amount", amount.String()))
	return &record, nil
}

// Draw consumes part of a locked prepayment record. The caller must hold the
// row lock obtained by FindPrepaymentsByIDsForUpdate within the same tx; this
// is the only code path that mutates UsedAmount.
func (s *prepaymentService) Draw(ctx context.Context, tx pgx.Tx, record domain.PrepaymentRecord, amount decimal.Decimal, settlementID string, date time.Time, userID string) (*domain.PrepaymentUsage, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	amount = accounting.Round(amount)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: draw amount must be positive, got %s", apperrors.ErrValidation, amount.String())
	}
	if amount.GreaterThan(record.AvailableBalance()) {
		return nil, fmt.Errorf("%w: prepayment %s has %s available, draw requested %s",
			apperrors.ErrInsufficientPrepayment, record.PrepaymentID, record.AvailableBalance().String(), amount.String())
	}

	now := time.Now().UTC()
	usage := domain.PrepaymentUsage{
		UsageID:      uuid.NewString(),
		PrepaymentID: record.PrepaymentID,
		SettlementID: settlementID,
		Amount:       amount,
		UsageDate:    date,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.prepaymentRepo.ApplyDraw(ctx, tx, usage, record.Version); err != nil {
		logger.Error("Failed to apply draw", slog.String("error", err.Error()), slog.String("prepayment_id", record.PrepaymentID))
		return nil, err
	}

	logger.Info("Prepayment drawn", slog.String("prepayment_id", record.PrepaymentID), slog.String("settlement_id", settlementID), slog.String("amount", amount.String()))
	return &usage, nil
}

// GetBalance aggregates a counterparty's advances and open balance.
func (s *prepaymentService) GetBalance(ctx context.Context, counterpartyID string, kind domain.CounterpartyKind) (*dto.PrepaymentBalanceResponse, error) {
	records, err := s.prepaymentRepo.ListPrepaymentsByCounterparty(ctx, counterpartyID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list prepayments for counterparty %s: %w", counterpartyID, err)
	}

	resp := &dto.PrepaymentBalanceResponse{
		CounterpartyID:   counterpartyID,
		CounterpartyKind: string(kind),
		TotalAvailable:   decimal.Zero,
		Records:          make([]dto.PrepaymentRecordResponse, 0, len(records)),
	}
	for i := range records {
		resp.TotalAvailable = resp.TotalAvailable.Add(records[i].AvailableBalance())
		resp.Records = append(resp.Records, dto.ToPrepaymentRecordResponse(&records[i]))
	}
	return resp, nil
}

// ListUsages returns the draw history of one prepayment record.
func (s *prepaymentService) ListUsages(ctx context.Context, prepaymentID string) ([]domain.PrepaymentUsage, error) {
	if _, err := s.prepaymentRepo.FindPrepaymentByID(ctx, prepaymentID); err != nil {
		return nil, err
	}
	usages, err := s.prepaymentRepo.FindUsagesByPrepaymentID(ctx, prepaymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list usages for prepayment %s: %w", prepaymentID, err)
	}
	return usages, nil
}
