package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"fictrack/internal/models"
)

type ledgerRepository struct {
	db *gorm.DB
}

// LedgerRepository is the append-only record of emitted updates. The
// (work, chapter number) uniqueness invariant lives here, not in the
// caller, so repeated or resumed sync passes are naturally idempotent.
type LedgerRepository interface {
	HasRecord(ctx context.Context, workID string, chapterNumber int) (bool, error)
	// Append stores a record unless one already exists for the same
	// (work, chapter number). It reports whether a row was written.
	Append(ctx context.Context, record *models.UpdateRecord) (bool, error)
	ListForWork(ctx context.Context, workID string) ([]models.UpdateRecord, error)
	ListAll(ctx context.Context, limit int) ([]models.UpdateRecord, error)
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) HasRecord(ctx context.Context, workID string, chapterNumber int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UpdateRecord{}).
		Where("work_id = ? AND chapter_number = ?", workID, chapterNumber).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ledgerRepository) Append(ctx context.Context, record *models.UpdateRecord) (bool, error) {
	appended := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.UpdateRecord
		err := tx.Where("work_id = ? AND chapter_number = ?", record.WorkID, record.ChapterNumber).
			First(&existing).Error
		if err == nil {
			return nil // already recorded, replay is a no-op
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		appended = true
		return nil
	})
	return appended, err
}

func (r *ledgerRepository) ListForWork(ctx context.Context, workID string) ([]models.UpdateRecord, error) {
	var records []models.UpdateRecord
	if err := r.db.WithContext(ctx).
		Where("work_id = ?", workID).
		Order("chapter_number").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *ledgerRepository) ListAll(ctx context.Context, limit int) ([]models.UpdateRecord, error) {
	q := r.db.WithContext(ctx).Order("detected_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var records []models.UpdateRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
