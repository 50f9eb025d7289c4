package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/settleforge/sle_backend/internal/apperrors"
	portssvc "github.com/settleforge/sle_backend/internal/core/ports/services"
	"github.com/settleforge/sle_backend/internal/dto"
	"github.com/settleforge/sle_backend/internal/middleware"
)

// settlementHandler handles HTTP requests for settlement submission and lookup.
type settlementHandler struct {
	settlementService portssvc.SettlementSvcFacade
}

func newSettlementHandler(ss portssvc.SettlementSvcFacade) *settlementHandler {
	return &settlementHandler{
		settlementService: ss,
	}
}

// registerSettlementRoutes registers routes related to settlements.
func registerSettlementRoutes(rg *gin.RouterGroup, settlementService portssvc.SettlementSvcFacade) {
	h := newSettlementHandler(settlementService)

	settlements := rg.Group("/settlements")
	{
		settlements.POST("", h.submitSettlement)
		settlements.GET("", h.listSettlements) // ?counterpartyID=&limit=
		settlements.GET("/:id", h.getSettlement)
	}
}

func (h *settlementHandler) submitSettlement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SubmitSettlement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Actor not found in context"})
		return
	}

	doc, err := h.settlementService.SubmitSettlement(c.Request.Context(), req, actorID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrOverAllocation),
			errors.Is(err, apperrors.ErrAllocationMismatch),
			errors.Is(err, apperrors.ErrInsufficientPrepayment):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrVersionConflict):
			// Retries exhausted; the caller should re-read balances and resubmit.
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrValidation),
			errors.Is(err, apperrors.ErrInvalidAccount),
			errors.Is(err, apperrors.ErrUnbalancedEntry):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to submit settlement", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit settlement"})
		}
		return
	}

	logger.Info("Settlement submitted", slog.String("settlement_id", doc.SettlementID))
	c.JSON(http.StatusCreated, dto.ToSettlementResponse(doc))
}

func (h *settlementHandler) getSettlement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	settlementID := c.Param("id")

	doc, err := h.settlementService.GetSettlement(c.Request.Context(), settlementID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Settlement not found"})
		} else {
			logger.Error("Failed to get settlement", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve settlement"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToSettlementResponse(doc))
}

func (h *settlementHandler) listSettlements(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	counterpartyID := c.Query("counterpartyID")
	if counterpartyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "counterpartyID query parameter is required"})
		return
	}
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer between 1 and 100"})
			return
		}
		limit = parsed
	}

	docs, err := h.settlementService.ListSettlements(c.Request.Context(), counterpartyID, limit)
	if err != nil {
		logger.Error("Failed to list settlements", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list settlements"})
		return
	}

	out := make([]dto.SettlementResponse, len(docs))
	for i := range docs {
		out[i] = dto.ToSettlementResponse(&docs[i])
	}
	c.JSON(http.StatusOK, out)
}
