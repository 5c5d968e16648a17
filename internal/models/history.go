package models

import "time"

// HistoryEntry is one coalesced reading session. Title and author are
// denormalized at write time so history stays legible after a work is
// removed from tracking. EndChapter equals StartChapter until the session
// window extends it.
type HistoryEntry struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	WorkID       string    `json:"work_id" gorm:"not null;index"`
	WorkTitle    string    `json:"work_title"`
	WorkAuthor   string    `json:"work_author"`
	StartChapter int       `json:"start_chapter" gorm:"not null"`
	EndChapter   int       `json:"end_chapter" gorm:"not null"`
	OccurredAt   time.Time `json:"occurred_at" gorm:"not null;index"`
}

func (HistoryEntry) TableName() string {
	return "history"
}
