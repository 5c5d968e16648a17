package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"fictrack/internal/api/dto"
	"fictrack/internal/history"
	"fictrack/internal/repository"
)

type HistoryHandler struct {
	coalescer *history.Coalescer
	entries   repository.HistoryRepository
}

func NewHistoryHandler(coalescer *history.Coalescer, entries repository.HistoryRepository) *HistoryHandler {
	return &HistoryHandler{coalescer: coalescer, entries: entries}
}

// RegisterRoutes registers the history routes
func (h *HistoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListHistory)
	rg.POST("/events", h.RecordEvent)
}

func (h *HistoryHandler) ListHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	entries, err := h.entries.List(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, entries)
}

func (h *HistoryHandler) RecordEvent(c *gin.Context) {
	var req dto.ReadEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ts := time.Now()
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	entry, err := h.coalescer.Record(ctx, history.ReadEvent{
		WorkID:        req.WorkID,
		ChapterNumber: req.ChapterNumber,
		Timestamp:     ts,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, entry)
}
