// Package api exposes the local HTTP surface the reading UI talks to.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fictrack/internal/api/handler"
	"fictrack/internal/fetcher"
	"fictrack/internal/history"
	"fictrack/internal/progress"
	"fictrack/internal/repository"
	"fictrack/internal/sync"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Works     repository.WorkRepository
	Ledger    repository.LedgerRepository
	History   repository.HistoryRepository
	Progress  progress.Service
	Committer *progress.Committer
	Coalescer *history.Coalescer
	Tracker   *sync.Tracker
	Engine    *sync.Engine
	Fetcher   *fetcher.Client
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(deps Deps) *gin.Engine {
	r := gin.Default()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	workHandler := handler.NewWorkHandler(deps.Works, deps.Tracker)
	workHandler.RegisterRoutes(api.Group("/works"))

	progressHandler := handler.NewProgressHandler(deps.Progress, deps.Committer)
	progressHandler.RegisterRoutes(api.Group("/progress"))

	historyHandler := handler.NewHistoryHandler(deps.Coalescer, deps.History)
	historyHandler.RegisterRoutes(api.Group("/history"))

	updateHandler := handler.NewUpdateHandler(deps.Ledger)
	updateHandler.RegisterRoutes(api.Group("/updates"))

	syncHandler := handler.NewSyncHandler(deps.Engine)
	syncHandler.RegisterRoutes(api.Group("/sync"))

	archiveHandler := handler.NewArchiveHandler(deps.Fetcher)
	archiveHandler.RegisterRoutes(api.Group("/archive"))

	return r
}
