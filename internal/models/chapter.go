package models

import "time"

// Chapter is one numbered sub-unit of a work. Number 1 exists even for
// one-shots; the extractor synthesizes it when the source page has no
// chapter list.
type Chapter struct {
	ID          int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	WorkID      string     `json:"work_id" gorm:"not null;index;uniqueIndex:idx_work_chapter_number"`
	Number      int        `json:"number" gorm:"not null;uniqueIndex:idx_work_chapter_number"`
	Name        string     `json:"name"`
	ContentID   string     `json:"content_id" gorm:"not null"` // opaque handle for fetching the body
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Chapter) TableName() string {
	return "chapters"
}
