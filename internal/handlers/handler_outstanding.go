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

// outstandingHandler handles HTTP requests for outstanding line registration.
type outstandingHandler struct {
	outstandingService portssvc.OutstandingSvcFacade
}

func newOutstandingHandler(os portssvc.OutstandingSvcFacade) *outstandingHandler {
	return &outstandingHandler{
		outstandingService: os,
	}
}

// registerOutstandingRoutes registers the integration surface for outstanding lines.
func registerOutstandingRoutes(rg *gin.RouterGroup, outstandingService portssvc.OutstandingSvcFacade) {
	h := newOutstandingHandler(outstandingService)

	lines := rg.Group("/outstanding-lines")
	{
		lines.POST("", h.seedLine)
		lines.GET("/:kind/:id", h.getLine)
	}
}

func (h *outstandingHandler) seedLine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SeedOutstandingLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SeedLine", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Actor not found in context"})
		return
	}

	line, err := h.outstandingService.SeedLine(c.Request.Context(), req, actorID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to seed outstanding line", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register line"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToOutstandingLineResponse(line))
}

func (h *outstandingHandler) getLine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	kind := strings.ToUpper(c.Param("kind"))
	if kind != string(domain.OrderLine) && kind != string(domain.ReturnLine) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Line kind must be ORDER or RETURN"})
		return
	}
	ref := domain.LineRef{Kind: domain.LineKind(kind), ID: c.Param("id")}

	line, err := h.outstandingService.GetLine(c.Request.Context(), ref)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Line not found"})
		} else {
			logger.Error("Failed to get outstanding line", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve line"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToOutstandingLineResponse(line))
}
