package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/settleforge/sle_backend/internal/apperrors"
	portssvc "github.com/settleforge/sle_backend/internal/core/ports/services"
	"github.com/settleforge/sle_backend/internal/dto"
	"github.com/settleforge/sle_backend/internal/middleware"
)

// journalHandler handles HTTP requests for the posting engine.
type journalHandler struct {
	postingService portssvc.PostingSvcFacade
}

func newJournalHandler(ps portssvc.PostingSvcFacade) *journalHandler {
	return &journalHandler{
		postingService: ps,
	}
}

// registerJournalRoutes registers routes related to journal entries.
func registerJournalRoutes(rg *gin.RouterGroup, postingService portssvc.PostingSvcFacade) {
	h := newJournalHandler(postingService)

	entries := rg.Group("/journal-entries")
	{
		entries.POST("", h.buildEntry)
		entries.GET("/:id", h.getEntry)
		entries.POST("/:id/post", h.postEntry)
		entries.POST("/:id/cancel", h.cancelEntry)
		entries.POST("/:id/reverse", h.reverseEntry)
	}
}

// respondJournalError maps posting engine errors onto HTTP statuses.
func respondJournalError(c *gin.Context, logger *slog.Logger, action string, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Journal entry not found"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnbalancedEntry),
		errors.Is(err, apperrors.ErrInvalidAccount),
		errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error("Failed to "+action+" journal entry", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action + " journal entry"})
	}
}

func (h *journalHandler) buildEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var input dto.BuildEntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		logger.Warn("Failed to bind JSON for BuildEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Actor not found in context"})
		return
	}

	entry, err := h.postingService.BuildEntry(c.Request.Context(), input, actorID)
	if err != nil {
		respondJournalError(c, logger, "build", err)
		return
	}

	logger.Info("Journal entry built", slog.String("entry_id", entry.EntryID))
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(entry))
}

func (h *journalHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("id")

	entry, err := h.postingService.GetEntry(c.Request.Context(), entryID)
	if err != nil {
		respondJournalError(c, logger, "retrieve", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

func (h *journalHandler) postEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("id")

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Actor not found in context"})
		return
	}

	entry, err := h.postingService.Post(c.Request.Context(), entryID, actorID)
	if err != nil {
		respondJournalError(c, logger, "post", err)
		return
	}

	logger.Info("Journal entry posted", slog.String("entry_id", entryID))
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

func (h *journalHandler) cancelEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("id")

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Actor not found in context"})
		return
	}

	entry, err := h.postingService.Cancel(c.Request.Context(), entryID, actorID)
	if err != nil {
		respondJournalError(c, logger, "cancel", err)
		return
	}

	logger.Info("Journal entry cancelled", slog.String("entry_id", entryID))
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

func (h *journalHandler) reverseEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("id")

	var req dto.ReverseEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ReverseEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Actor not found in context"})
		return
	}

	mirror, err := h.postingService.Reverse(c.Request.Context(), entryID, req.Reason, actorID)
	if err != nil {
		respondJournalError(c, logger, "reverse", err)
		return
	}

	logger.Info("Journal entry reversed",
		slog.String("entry_id", entryID), slog.String("mirror_entry_id", mirror.EntryID))
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(mirror))
}
