package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"fictrack/internal/models"
)

type progressRepository struct {
	db *gorm.DB
}

// ProgressRepository is a plain upsert store for per-chapter progress.
// Clamping, the absent-means-zero rule and aggregation live in the
// progress service; this layer stays cheap enough to call on every
// commit.
type ProgressRepository interface {
	Get(ctx context.Context, workID string, chapterID int64) (*models.ProgressEntry, error)
	Upsert(ctx context.Context, entry *models.ProgressEntry) error
	ListForWork(ctx context.Context, workID string) ([]models.ProgressEntry, error)
	DeleteForWork(ctx context.Context, workID string) error
}

func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Get(ctx context.Context, workID string, chapterID int64) (*models.ProgressEntry, error) {
	var entry models.ProgressEntry
	err := r.db.WithContext(ctx).
		Where("work_id = ? AND chapter_id = ?", workID, chapterID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *progressRepository) Upsert(ctx context.Context, entry *models.ProgressEntry) error {
	var existing models.ProgressEntry
	err := r.db.WithContext(ctx).
		Where("work_id = ? AND chapter_id = ?", entry.WorkID, entry.ChapterID).
		First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		entry.UpdatedAt = time.Now()
		return r.db.WithContext(ctx).Create(entry).Error
	} else if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Model(&existing).Updates(map[string]any{
		"progress":   entry.Progress,
		"updated_at": time.Now(),
	}).Error
}

func (r *progressRepository) ListForWork(ctx context.Context, workID string) ([]models.ProgressEntry, error) {
	var entries []models.ProgressEntry
	if err := r.db.WithContext(ctx).
		Where("work_id = ?", workID).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *progressRepository) DeleteForWork(ctx context.Context, workID string) error {
	return r.db.WithContext(ctx).
		Where("work_id = ?", workID).
		Delete(&models.ProgressEntry{}).Error
}
