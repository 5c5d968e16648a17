package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"fictrack/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = gorm.ErrRecordNotFound

type workRepository struct {
	db *gorm.DB
}

type WorkRepository interface {
	GetByID(ctx context.Context, id string) (*models.Work, error)
	ListTracked(ctx context.Context) ([]models.Work, error)
	Upsert(ctx context.Context, work *models.Work) error
	UpsertChapters(ctx context.Context, chapters []models.Chapter) error
	ListChapters(ctx context.Context, workID string) ([]models.Chapter, error)
	Delete(ctx context.Context, id string) error
}

func NewWorkRepository(db *gorm.DB) WorkRepository {
	return &workRepository{db: db}
}

func (r *workRepository) GetByID(ctx context.Context, id string) (*models.Work, error) {
	var work models.Work
	if err := r.db.WithContext(ctx).First(&work, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &work, nil
}

func (r *workRepository) ListTracked(ctx context.Context) ([]models.Work, error) {
	var works []models.Work
	if err := r.db.WithContext(ctx).Order("title").Find(&works).Error; err != nil {
		return nil, err
	}
	return works, nil
}

// Upsert writes a work snapshot, creating it on first fetch and replacing
// the stored snapshot on every later sync pass.
func (r *workRepository) Upsert(ctx context.Context, work *models.Work) error {
	var existing models.Work
	err := r.db.WithContext(ctx).First(&existing, "id = ?", work.ID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(work).Error
	} else if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Model(&existing).Updates(map[string]any{
		"title":           work.Title,
		"author":          work.Author,
		"language":        work.Language,
		"tags":            work.Tags,
		"warnings":        work.Warnings,
		"warning_status":  work.WarningStatus,
		"rating":          work.Rating,
		"category":        work.Category,
		"complete":        work.Complete,
		"current_chapter": work.CurrentChapter,
		"chapter_count":   work.ChapterCount,
		"likes":           work.Likes,
		"bookmarks":       work.Bookmarks,
		"views":           work.Views,
		"remote_updated":  work.RemoteUpdated,
		"updated_at":      time.Now(),
	}).Error
}

// UpsertChapters stores chapter rows keyed by (work, number), updating
// name, content id and date on re-observation.
func (r *workRepository) UpsertChapters(ctx context.Context, chapters []models.Chapter) error {
	for i := range chapters {
		ch := &chapters[i]

		var existing models.Chapter
		err := r.db.WithContext(ctx).
			Where("work_id = ? AND number = ?", ch.WorkID, ch.Number).
			First(&existing).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := r.db.WithContext(ctx).Create(ch).Error; err != nil {
				return err
			}
			continue
		} else if err != nil {
			return err
		}

		if err := r.db.WithContext(ctx).Model(&existing).Updates(map[string]any{
			"name":         ch.Name,
			"content_id":   ch.ContentID,
			"published_at": ch.PublishedAt,
		}).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *workRepository) ListChapters(ctx context.Context, workID string) ([]models.Chapter, error) {
	var chapters []models.Chapter
	if err := r.db.WithContext(ctx).
		Where("work_id = ?", workID).
		Order("number").
		Find(&chapters).Error; err != nil {
		return nil, err
	}
	return chapters, nil
}

// Delete removes a work from tracking, cascading to its chapters,
// progress and ledger entries. History keeps its denormalized rows.
func (r *workRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("work_id = ?", id).Delete(&models.Chapter{}).Error; err != nil {
			return err
		}
		if err := tx.Where("work_id = ?", id).Delete(&models.ProgressEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("work_id = ?", id).Delete(&models.UpdateRecord{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Work{}, "id = ?", id).Error
	})
}
