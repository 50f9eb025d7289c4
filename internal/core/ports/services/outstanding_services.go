package services

import (
	"context"

	"github.com/settleforge/sle_backend/internal/core/domain"
	"github.com/settleforge/sle_backend/internal/dto"
)

// OutstandingSvcFacade exposes the integration surface over outstanding
// lines. The originating sales/purchase subsystems own these rows; the
// engine only registers and reads them.
type OutstandingSvcFacade interface {
	// SeedLine registers a new outstanding line with the engine.
	SeedLine(ctx context.Context, req dto.SeedOutstandingLineRequest, userID string) (*domain.OutstandingLine, error)

	// GetLine retrieves one outstanding line by its tagged reference.
	GetLine(ctx context.Context, ref domain.LineRef) (*domain.OutstandingLine, error)
}
