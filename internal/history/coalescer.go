// Package history coalesces raw chapter-read events into reading
// sessions. Temporally adjacent reads of the same work collapse into one
// entry; anything else starts a new one.
package history

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"fictrack/internal/models"
	"fictrack/internal/repository"
)

// mergeWindow is how long a reading session stays open for extension.
const mergeWindow = time.Hour

// ReadEvent is one raw "chapter read" signal from the reading surface.
type ReadEvent struct {
	WorkID        string    `json:"work_id"`
	ChapterNumber int       `json:"chapter_number"`
	Timestamp     time.Time `json:"timestamp"`
}

type Coalescer struct {
	entries repository.HistoryRepository
	works   repository.WorkRepository
}

func NewCoalescer(entries repository.HistoryRepository, works repository.WorkRepository) *Coalescer {
	return &Coalescer{entries: entries, works: works}
}

// Record folds one event into history. The merge candidate is the single
// most recent entry across all works: an event extends it only when it
// belongs to the same work and lands inside the window, so interleaved
// reading of two works always splits sessions, even when returning to a
// work within the hour. Replaying an event that merged once merges again
// against the updated entry instead of duplicating it.
func (c *Coalescer) Record(ctx context.Context, event ReadEvent) (*models.HistoryEntry, error) {
	recent, err := c.entries.MostRecent(ctx)
	if err != nil {
		return nil, err
	}

	if recent != nil && recent.WorkID == event.WorkID &&
		event.Timestamp.Sub(recent.OccurredAt) < mergeWindow &&
		!event.Timestamp.Before(recent.OccurredAt) {
		recent.EndChapter = event.ChapterNumber
		recent.OccurredAt = event.Timestamp
		if err := c.entries.Update(ctx, recent); err != nil {
			return nil, err
		}
		return recent, nil
	}

	entry := &models.HistoryEntry{
		WorkID:       event.WorkID,
		StartChapter: event.ChapterNumber,
		EndChapter:   event.ChapterNumber,
		OccurredAt:   event.Timestamp,
	}

	// Title and author are captured at write time so the entry stays
	// legible after the work leaves tracking.
	work, err := c.works.GetByID(ctx, event.WorkID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if work != nil {
		entry.WorkTitle = work.Title
		entry.WorkAuthor = work.Author
	}

	if err := c.entries.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}
