package models

import "time"

// ProgressEntry stores fractional reading progress for one chapter of a
// work, clamped to [0, 1] at write time. Absence of a row means 0.0.
type ProgressEntry struct {
	WorkID    string    `json:"work_id" gorm:"primaryKey"`
	ChapterID int64     `json:"chapter_id" gorm:"primaryKey"`
	Progress  float64   `json:"progress" gorm:"not null;default:0"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (ProgressEntry) TableName() string {
	return "reading_progress"
}
