// Package progress stores fractional per-chapter reading progress and
// aggregates it per work.
package progress

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"fictrack/internal/models"
	"fictrack/internal/repository"
)

type service struct {
	repo repository.ProgressRepository
}

type Service interface {
	// Set clamps progress to [0, 1] and upserts the entry. Out-of-range
	// input is never an error.
	Set(ctx context.Context, workID string, chapterID int64, progress float64) error
	// Get returns 0.0 for chapters never written. Absence is "not
	// started", not a failure.
	Get(ctx context.Context, workID string, chapterID int64) (float64, error)
	// OverallProgress is the mean over chapters with a stored entry.
	// Chapters without an entry are excluded, not counted as zero.
	OverallProgress(ctx context.Context, workID string) (float64, error)
	ListForWork(ctx context.Context, workID string) ([]models.ProgressEntry, error)
	Reset(ctx context.Context, workID string) error
}

func NewService(repo repository.ProgressRepository) Service {
	return &service{repo: repo}
}

func (s *service) Set(ctx context.Context, workID string, chapterID int64, progress float64) error {
	return s.repo.Upsert(ctx, &models.ProgressEntry{
		WorkID:    workID,
		ChapterID: chapterID,
		Progress:  clamp(progress),
	})
}

func (s *service) Get(ctx context.Context, workID string, chapterID int64) (float64, error) {
	entry, err := s.repo.Get(ctx, workID, chapterID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return entry.Progress, nil
}

func (s *service) OverallProgress(ctx context.Context, workID string) (float64, error) {
	entries, err := s.repo.ListForWork(ctx, workID)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	var sum float64
	for _, e := range entries {
		sum += e.Progress
	}
	return sum / float64(len(entries)), nil
}

func (s *service) ListForWork(ctx context.Context, workID string) ([]models.ProgressEntry, error) {
	return s.repo.ListForWork(ctx, workID)
}

func (s *service) Reset(ctx context.Context, workID string) error {
	return s.repo.DeleteForWork(ctx, workID)
}

func clamp(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
