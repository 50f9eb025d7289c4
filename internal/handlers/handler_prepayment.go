package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/settleforge/sle_backend/internal/apperrors"
	"github.com/settleforge/sle_backend/internal/core/domain"
	portssvc "github.com/settleforge/sle_backend/internal/core/ports/services"
	"github.com/settleforge/sle_backend/internal/dto"
	"github.com/settleforge/sle_backend/internal/middleware"
)

// prepaymentHandler handles HTTP requests for the prepayment ledger.
// The ledger is read-only over HTTP; advances and draws only happen inside
// settlement submission.
type prepaymentHandler struct {
	prepaymentService portssvc.PrepaymentSvcFacade
}

func newPrepaymentHandler(ps portssvc.PrepaymentSvcFacade) *prepaymentHandler {
	return &prepaymentHandler{
		prepaymentService: ps,
	}
}

// registerPrepaymentRoutes registers routes related to the prepayment ledger.
func registerPrepaymentRoutes(rg *gin.RouterGroup, prepaymentService portssvc.PrepaymentSvcFacade) {
	h := newPrepaymentHandler(prepaymentService)

	prepayments := rg.Group("/prepayments")
	{
		prepayments.GET("/balance", h.getBalance) // ?counterpartyID=&kind=
		prepayments.GET("/:id/usages", h.listUsages)
	}
}

func (h *prepaymentHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	counterpartyID := c.Query("counterpartyID")
	if counterpartyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "counterpartyID query parameter is required"})
		return
	}
	kind := strings.ToUpper(c.Query("kind"))
	if kind != string(domain.CounterpartyCustomer) && kind != string(domain.CounterpartySupplier) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be CUSTOMER or SUPPLIER"})
		return
	}

	balance, err := h.prepaymentService.GetBalance(c.Request.Context(), counterpartyID, domain.CounterpartyKind(kind))
	if err != nil {
		logger.Error("Failed to get prepayment balance", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve balance"})
		return
	}

	c.JSON(http.StatusOK, balance)
}

func (h *prepaymentHandler) listUsages(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	prepaymentID := c.Param("id")

	usages, err := h.prepaymentService.ListUsages(c.Request.Context(), prepaymentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Prepayment not found"})
		} else {
			logger.Error("Failed to list prepayment usages", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve usages"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToPrepaymentUsageResponses(usages))
}
