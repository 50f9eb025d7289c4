package services

import (
	"context"
	"fmt"
	"time"

	"github.com/settleforge/sle_backend/internal/apperrors"
	"github.com/settleforge/sle_backend/internal/core/domain"
	portsrepo "github.com/settleforge/sle_backend/internal/core/ports/repositories"
	portssvc "github.com/settleforge/sle_backend/internal/core/ports/services"
	"github.com/settleforge/sle_backend/internal/dto"
	"github.com/settleforge/sle_backend/internal/utils/accounting"
)

type outstandingService struct {
	outstandingRepo portsrepo.OutstandingLineRepository
}

// NewOutstandingService creates the outstanding line integration service.
func NewOutstandingService(outstandingRepo portsrepo.OutstandingLineRepository) portssvc.OutstandingSvcFacade {
	return &outstandingService{outstandingRepo: outstandingRepo}
}

// SeedLine registers a new outstanding line with the engine.
func (s *outstandingService) SeedLine(ctx context.Context, req dto.SeedOutstandingLineRequest, userID string) (*domain.OutstandingLine, error) {
	gross := accounting.Round(req.GrossAmount)
	if gross.Sign() <= 0 {
		return nil, fmt.Errorf("%w: gross amount must be positive", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	line := domain.OutstandingLine{
		Ref:              domain.LineRef{Kind: domain.LineKind(req.LineKind), ID: req.LineID},
		CounterpartyID:   req.CounterpartyID,
		CounterpartyKind: domain.CounterpartyKind(req.CounterpartyKind),
		GrossAmount:      gross,
		Version:          1,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.outstandingRepo.SaveLine(ctx, line); err != nil {
		return nil, err
	}
	return &line, nil
}

// GetLine retrieves one outstanding line by its tagged reference.
func (s *outstandingService) GetLine(ctx context.Context, ref domain.LineRef) (*domain.OutstandingLine, error) {
	lines, err := s.outstandingRepo.FindByRefs(ctx, []domain.LineRef{ref})
	if err != nil {
		return nil, err
	}
	line, ok := lines[ref]
	if !ok {
		return nil, fmt.Errorf("%w: line %s/%s", apperrors.ErrNotFound, ref.Kind, ref.ID)
	}
	return &line, nil
}
