package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fictrack/internal/api/dto"
	"fictrack/internal/extractor"
	"fictrack/internal/fetcher"
)

// ArchiveFetcher is the slice of the fetcher the archive routes need.
type ArchiveFetcher interface {
	FetchListing(ctx context.Context, path string) (*fetcher.RawDocument, error)
	FetchChapterPage(ctx context.Context, workID, contentID string) (*fetcher.RawDocument, error)
}

// ArchiveHandler serves pass-through reads against the remote archive:
// browsing listings and opening chapter bodies. Nothing here touches the
// local store.
type ArchiveHandler struct {
	client ArchiveFetcher
}

func NewArchiveHandler(client ArchiveFetcher) *ArchiveHandler {
	return &ArchiveHandler{client: client}
}

// RegisterRoutes registers the archive pass-through routes
func (h *ArchiveHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/listing", h.BrowseListing)
	rg.GET("/works/:work_id/chapters/:content_id", h.GetChapterBody)
}

func (h *ArchiveHandler) BrowseListing(c *gin.Context) {
	path := c.DefaultQuery("path", "/works")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	doc, err := h.client.FetchListing(ctx, path)
	if err != nil {
		if fetcher.IsPermanent(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "listing not found on archive"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "archive fetch failed"})
		return
	}

	works, err := extractor.ExtractListing(doc.Body)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, works)
}

func (h *ArchiveHandler) GetChapterBody(c *gin.Context) {
	var uri dto.ChapterBodyURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	doc, err := h.client.FetchChapterPage(ctx, uri.WorkID, uri.ContentID)
	if err != nil {
		if fetcher.IsPermanent(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chapter not found on archive"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "archive fetch failed"})
		return
	}

	body, err := extractor.ExtractChapterBody(doc.Body)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.ChapterBodyResponse{
		WorkID:    uri.WorkID,
		ContentID: uri.ContentID,
		HTML:      body.HTML,
		Styles:    body.Styles,
	})
}
