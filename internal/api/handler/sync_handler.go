package handler

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"fictrack/internal/notify"
	enginesync "fictrack/internal/sync"
)

type SyncHandler struct {
	engine *enginesync.Engine

	mu      sync.Mutex
	running bool
	last    *notify.Summary
}

func NewSyncHandler(engine *enginesync.Engine) *SyncHandler {
	return &SyncHandler{engine: engine}
}

// RegisterRoutes registers the sync routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/run", h.RunPass)
	rg.GET("/last", h.LastSummary)
}

// RunPass triggers a manual sync pass. Only one pass runs at a time; a
// request during a running pass gets 409.
func (h *SyncHandler) RunPass(c *gin.Context) {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"error": "sync pass already running"})
		return
	}
	h.running = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		h.running = false
		h.mu.Unlock()
	}()

	summary, err := h.engine.RunPass(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.mu.Lock()
	h.last = summary
	h.mu.Unlock()

	c.JSON(http.StatusOK, summary)
}

func (h *SyncHandler) LastSummary(c *gin.Context) {
	h.mu.Lock()
	last := h.last
	h.mu.Unlock()

	if last == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no sync pass has completed yet"})
		return
	}

	c.JSON(http.StatusOK, last)
}
