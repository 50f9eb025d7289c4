package services

import (
	"github.com/settleforge/sle_backend/internal/core/domain"
)

// AllocationSvcFacade is the pure allocation engine. It never touches storage:
// the orchestrator pre-fetches the referenced lines and prepayments and
// persists the returned plan verbatim.
type AllocationSvcFacade interface {
	// Allocate distributes the request total across the targets, producing
	// an immutable plan with per-line allocations, prepayment creations and
	// draws, and payment splits.
	Allocate(req domain.AllocationRequest, lines map[domain.LineRef]domain.OutstandingLine, prepayments map[string]domain.PrepaymentRecord) (*domain.AllocationPlan, error)
}
