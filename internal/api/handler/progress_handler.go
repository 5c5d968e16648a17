package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fictrack/internal/api/dto"
	"fictrack/internal/progress"
)

type ProgressHandler struct {
	progressService progress.Service
	committer       *progress.Committer
}

func NewProgressHandler(progressService progress.Service, committer *progress.Committer) *ProgressHandler {
	return &ProgressHandler{progressService: progressService, committer: committer}
}

// RegisterRoutes registers the progress-related routes
func (h *ProgressHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:work_id", h.GetOverallProgress)
	rg.GET("/:work_id/:chapter_id", h.GetProgress)
	rg.PUT("/:work_id/:chapter_id", h.CommitProgress)
	rg.DELETE("/:work_id", h.ResetProgress)
}

func (h *ProgressHandler) GetOverallProgress(c *gin.Context) {
	var uri dto.WorkURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	overall, err := h.progressService.OverallProgress(ctx, uri.WorkID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.OverallProgressResponse{WorkID: uri.WorkID, Progress: overall})
}

func (h *ProgressHandler) GetProgress(c *gin.Context) {
	var uri dto.ChapterProgressURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	p, err := h.progressService.Get(ctx, uri.WorkID, uri.ChapterID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.ProgressResponse{WorkID: uri.WorkID, ChapterID: uri.ChapterID, Progress: p})
}

func (h *ProgressHandler) CommitProgress(c *gin.Context) {
	var uri dto.ChapterProgressURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req dto.CommitProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var err error
	if req.Final {
		err = h.committer.Flush(ctx, uri.WorkID, uri.ChapterID, req.Progress)
	} else {
		err = h.committer.Observe(ctx, uri.WorkID, uri.ChapterID, req.Progress)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ProgressHandler) ResetProgress(c *gin.Context) {
	var uri dto.WorkURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.progressService.Reset(ctx, uri.WorkID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
