package extractor

import (
	"strconv"
	"strings"
	"time"

	"fictrack/internal/models"
)

// unknownTotalSentinel is the placeholder the archive shows while a work's
// final chapter count is undecided.
const unknownTotalSentinel = "?"

// parseCount parses a counter embedded in free text, stripping thousands
// separators. Unparseable or negative input yields 0, matching the
// default for counters absent from the source.
func parseCount(raw string) int {
	cleaned := strings.Map(func(r rune) rune {
		if r == ',' || r == ' ' {
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
	if cleaned == "" {
		return 0
	}
	n, err := strconv.Atoi(cleaned)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// parseChapterFraction parses "a/b" chapter text. The total is nil when b
// is the unresolved-total sentinel. Malformed input yields (0, nil, false).
func parseChapterFraction(raw string) (current int, total *int, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(raw), "/", 2)
	if len(parts) != 2 {
		return 0, nil, false
	}

	current = parseCount(parts[0])
	if strings.TrimSpace(parts[0]) == "" {
		return 0, nil, false
	}

	totalText := strings.TrimSpace(parts[1])
	if totalText == unknownTotalSentinel {
		return current, nil, true
	}
	n, err := strconv.Atoi(strings.ReplaceAll(totalText, ",", ""))
	if err != nil {
		return current, nil, true
	}
	return current, &n, true
}

// parseCompletion maps completion text to a tri-state flag.
func parseCompletion(raw string) models.TriState {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "complete", "completed":
		return models.TriTrue
	case "work in progress", "in progress", "incomplete":
		return models.TriFalse
	default:
		return models.TriUnknown
	}
}

// parseWarningStatus derives the acknowledgment flag from the warning tag
// list. An explicit "no warnings apply" tag and an empty list both mean
// none apply; a "chose not to specify" tag means unspecified; any other
// tag means warnings were given.
func parseWarningStatus(warnings []string) models.WarningStatus {
	if len(warnings) == 0 {
		return models.WarningNoneApply
	}
	status := models.WarningGiven
	for _, w := range warnings {
		switch strings.ToLower(strings.TrimSpace(w)) {
		case "no archive warnings apply", "no warnings apply":
			status = models.WarningNoneApply
		case "creator chose not to use archive warnings", "author chose not to warn":
			return models.WarningUnspecified
		}
	}
	return status
}

// archive dates appear as bare ISO days
const dateLayout = "2006-01-02"

// parseDate returns nil for anything that is not a well-formed date.
func parseDate(raw string) *time.Time {
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &t
}
