package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"fictrack/internal/api/dto"
	"fictrack/internal/repository"
)

type UpdateHandler struct {
	ledger repository.LedgerRepository
}

func NewUpdateHandler(ledger repository.LedgerRepository) *UpdateHandler {
	return &UpdateHandler{ledger: ledger}
}

// RegisterRoutes registers the update-ledger routes
func (h *UpdateHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListUpdates)
	rg.GET("/:work_id", h.ListUpdatesForWork)
}

func (h *UpdateHandler) ListUpdates(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	records, err := h.ledger.ListAll(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, records)
}

func (h *UpdateHandler) ListUpdatesForWork(c *gin.Context) {
	var uri dto.WorkURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	records, err := h.ledger.ListForWork(ctx, uri.WorkID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, records)
}
