package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"fictrack/internal/models"
)

type historyRepository struct {
	db *gorm.DB
}

type HistoryRepository interface {
	// MostRecent returns the single newest entry across all works, or
	// (nil, nil) when history is empty. The coalescer's merge candidate
	// is deliberately not scoped per work.
	MostRecent(ctx context.Context) (*models.HistoryEntry, error)
	Create(ctx context.Context, entry *models.HistoryEntry) error
	Update(ctx context.Context, entry *models.HistoryEntry) error
	List(ctx context.Context, limit int) ([]models.HistoryEntry, error)
	ListForWork(ctx context.Context, workID string) ([]models.HistoryEntry, error)
}

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) MostRecent(ctx context.Context) (*models.HistoryEntry, error) {
	var entry models.HistoryEntry
	err := r.db.WithContext(ctx).Order("occurred_at DESC, id DESC").First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *historyRepository) Create(ctx context.Context, entry *models.HistoryEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *historyRepository) Update(ctx context.Context, entry *models.HistoryEntry) error {
	return r.db.WithContext(ctx).Model(entry).Updates(map[string]any{
		"end_chapter": entry.EndChapter,
		"occurred_at": entry.OccurredAt,
	}).Error
}

func (r *historyRepository) List(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	q := r.db.WithContext(ctx).Order("occurred_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var entries []models.HistoryEntry
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *historyRepository) ListForWork(ctx context.Context, workID string) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	if err := r.db.WithContext(ctx).
		Where("work_id = ?", workID).
		Order("occurred_at DESC, id DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
