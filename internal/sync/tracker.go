package sync

import (
	"context"
	"fmt"
	"log/slog"

	"fictrack/internal/extractor"
	"fictrack/internal/models"
	"fictrack/internal/repository"
)

// Tracker manages which works are followed. Tracking a work performs the
// initial fetch so the stored snapshot starts from live state; later
// passes diff against it.
type Tracker struct {
	fetcher WorkFetcher
	works   repository.WorkRepository
	logger  *slog.Logger
}

func NewTracker(f WorkFetcher, works repository.WorkRepository, logger *slog.Logger) *Tracker {
	return &Tracker{fetcher: f, works: works, logger: logger}
}

// Track fetches a work by archive id and stores its snapshot and
// chapters. Tracking an already tracked work refreshes the snapshot.
func (t *Tracker) Track(ctx context.Context, workID string) (*models.Work, error) {
	doc, err := t.fetcher.FetchWorkPage(ctx, workID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch work %s: %w", workID, err)
	}

	page, err := extractor.ExtractWorkPage(doc.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to extract work %s: %w", workID, err)
	}

	if err := t.works.Upsert(ctx, &page.Work); err != nil {
		return nil, err
	}
	if err := t.works.UpsertChapters(ctx, page.Chapters); err != nil {
		return nil, err
	}

	t.logger.Info("work tracked", "work", page.Work.ID, "title", page.Work.Title, "chapters", len(page.Chapters))
	return &page.Work, nil
}

// Untrack removes a work and everything that hangs off it except
// history, which keeps its denormalized copies.
func (t *Tracker) Untrack(ctx context.Context, workID string) error {
	if err := t.works.Delete(ctx, workID); err != nil {
		return err
	}
	t.logger.Info("work untracked", "work", workID)
	return nil
}
