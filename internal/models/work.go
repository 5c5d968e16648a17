package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList stores an order-preserving list of strings as a JSON text
// column. Order matters for display only, not semantically.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		return json.Unmarshal([]byte(v), l)
	case []byte:
		return json.Unmarshal(v, l)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
}

// Work is the locally stored snapshot of a tracked work.
type Work struct {
	ID             string        `json:"id" gorm:"primaryKey"` // stable archive id
	Title          string        `json:"title" gorm:"not null"`
	Author         string        `json:"author"`
	Language       string        `json:"language"`
	Tags           StringList    `json:"tags" gorm:"type:text"`
	Warnings       StringList    `json:"warnings" gorm:"type:text"`
	WarningStatus  WarningStatus `json:"warning_status" gorm:"type:text;default:unspecified"`
	Rating         Rating        `json:"rating" gorm:"type:text;default:not_rated"`
	Category       Category      `json:"category" gorm:"type:text;default:none"`
	Complete       TriState      `json:"complete" gorm:"type:text;default:unknown"`
	CurrentChapter int           `json:"current_chapter" gorm:"default:0"`
	ChapterCount   *int          `json:"chapter_count,omitempty"` // nil while the total is unknown
	Likes          int           `json:"likes" gorm:"default:0"`
	Bookmarks      int           `json:"bookmarks" gorm:"default:0"`
	Views          int           `json:"views" gorm:"default:0"`
	RemoteUpdated  *time.Time    `json:"remote_updated,omitempty"`
	CreatedAt      time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time     `json:"updated_at" gorm:"autoUpdateTime"`

	// association
	Chapters []Chapter `json:"chapters,omitempty" gorm:"foreignKey:WorkID;constraint:OnDelete:CASCADE;"`
}

func (Work) TableName() string {
	return "works"
}

// CompletionKnown reports completion once the total chapter count has
// been observed; until then the work reads as in progress.
func (w *Work) CompletionKnown() bool {
	return w.ChapterCount != nil
}
