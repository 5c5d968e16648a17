package dto

// DTOs for the local reading-surface API

import "time"

type TrackWorkRequest struct {
	WorkID string `json:"work_id" binding:"required"`
}

type WorkURI struct {
	WorkID string `uri:"work_id" binding:"required"`
}

type ChapterProgressURI struct {
	WorkID    string `uri:"work_id" binding:"required"`
	ChapterID int64  `uri:"chapter_id" binding:"required,gt=0"`
}

type CommitProgressRequest struct {
	Progress float64 `json:"progress"`
	// Final marks an explicit commit-now action (leaving the chapter);
	// non-final samples are threshold-gated.
	Final bool `json:"final"`
}

type ProgressResponse struct {
	WorkID    string  `json:"work_id"`
	ChapterID int64   `json:"chapter_id"`
	Progress  float64 `json:"progress"`
}

type OverallProgressResponse struct {
	WorkID   string  `json:"work_id"`
	Progress float64 `json:"progress"`
}

type ChapterBodyURI struct {
	WorkID    string `uri:"work_id" binding:"required"`
	ContentID string `uri:"content_id" binding:"required"`
}

type ChapterBodyResponse struct {
	WorkID    string   `json:"work_id"`
	ContentID string   `json:"content_id"`
	HTML      string   `json:"html"`
	Styles    []string `json:"styles,omitempty"`
}

type ReadEventRequest struct {
	WorkID        string     `json:"work_id" binding:"required"`
	ChapterNumber int        `json:"chapter_number" binding:"required,min=1"`
	Timestamp     *time.Time `json:"timestamp,omitempty"` // defaults to now
}
