// Package notify carries the end-of-pass summary to whatever presents
// notifications. The presenter is a pure sink; the sync engine never
// reads anything back from it.
package notify

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// UpdatedWork names one work that gained chapters during a pass.
type UpdatedWork struct {
	WorkID            string `json:"work_id"`
	Title             string `json:"title"`
	NewChapterNumbers []int  `json:"new_chapter_numbers"`
}

// Summary is the result of one sync pass. It is assembled purely from
// the pass's accumulated state, never by re-contacting the archive.
type Summary struct {
	Mode         string        `json:"mode"` // compact or per-item
	UpdatedWorks []UpdatedWork `json:"updated_works"`
	FailedWorks  []string      `json:"failed_works"` // titles only, no raw errors
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at"`
}

// Presenter receives the pass summary.
type Presenter interface {
	Present(summary Summary)
}

// LogPresenter writes notifications to the log. The default sink when no
// platform presenter is wired in.
type LogPresenter struct {
	logger *slog.Logger
}

func NewLogPresenter(logger *slog.Logger) *LogPresenter {
	return &LogPresenter{logger: logger}
}

func (p *LogPresenter) Present(s Summary) {
	switch {
	case len(s.UpdatedWorks) == 0:
		p.logger.Info("sync pass finished, no updates")
	case s.Mode == "per-item":
		for _, w := range s.UpdatedWorks {
			p.logger.Info("new chapters",
				"title", w.Title,
				"chapters", formatChapterNumbers(w.NewChapterNumbers))
		}
	default:
		titles := make([]string, len(s.UpdatedWorks))
		for i, w := range s.UpdatedWorks {
			titles[i] = w.Title
		}
		p.logger.Info(fmt.Sprintf("%d works updated", len(titles)), "titles", strings.Join(titles, ", "))
	}

	if len(s.FailedWorks) > 0 {
		p.logger.Warn(fmt.Sprintf("%d works failed to update", len(s.FailedWorks)),
			"titles", strings.Join(s.FailedWorks, ", "))
	}
}

func formatChapterNumbers(numbers []int) string {
	parts := make([]string, len(numbers))
	for i, n := range numbers {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ", ")
}
