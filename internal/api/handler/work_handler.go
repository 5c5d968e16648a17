package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"fictrack/internal/api/dto"
	"fictrack/internal/fetcher"
	"fictrack/internal/repository"
	"fictrack/internal/sync"
)

type WorkHandler struct {
	works   repository.WorkRepository
	tracker *sync.Tracker
}

func NewWorkHandler(works repository.WorkRepository, tracker *sync.Tracker) *WorkHandler {
	return &WorkHandler{works: works, tracker: tracker}
}

// RegisterRoutes registers the work-tracking routes
func (h *WorkHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListWorks)
	rg.POST("", h.TrackWork)
	rg.GET("/:work_id", h.GetWork)
	rg.GET("/:work_id/chapters", h.ListChapters)
	rg.DELETE("/:work_id", h.UntrackWork)
}

func (h *WorkHandler) ListWorks(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	works, err := h.works.ListTracked(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, works)
}

func (h *WorkHandler) TrackWork(c *gin.Context) {
	var req dto.TrackWorkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Tracking performs the initial archive fetch, so give it more room
	// than the local-only endpoints.
	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	work, err := h.tracker.Track(ctx, req.WorkID)
	if err != nil {
		if fetcher.IsPermanent(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "work not found on archive"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "archive fetch failed"})
		return
	}

	c.JSON(http.StatusCreated, work)
}

func (h *WorkHandler) GetWork(c *gin.Context) {
	var uri dto.WorkURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	work, err := h.works.GetByID(ctx, uri.WorkID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "work not tracked"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, work)
}

func (h *WorkHandler) ListChapters(c *gin.Context) {
	var uri dto.WorkURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	chapters, err := h.works.ListChapters(ctx, uri.WorkID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, chapters)
}

func (h *WorkHandler) UntrackWork(c *gin.Context) {
	var uri dto.WorkURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.tracker.Untrack(ctx, uri.WorkID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
