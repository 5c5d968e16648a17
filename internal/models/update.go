package models

import "time"

// UpdateRecord is a durable marker that a new chapter was surfaced to the
// user. At most one record ever exists per (work, chapter number); the
// unique index backs the ledger's idempotence guarantee.
type UpdateRecord struct {
	ID            int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	WorkID        string    `json:"work_id" gorm:"not null;index;uniqueIndex:idx_ledger_work_chapter"`
	ChapterNumber int       `json:"chapter_number" gorm:"not null;uniqueIndex:idx_ledger_work_chapter"`
	ContentID     string    `json:"content_id" gorm:"not null"`
	DetectedAt    time.Time `json:"detected_at" gorm:"not null;index"`
}

func (UpdateRecord) TableName() string {
	return "update_ledger"
}
