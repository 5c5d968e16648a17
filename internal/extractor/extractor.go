// Package extractor turns the archive's semi-structured pages into
// canonical work and chapter records. It performs no I/O and holds no
// state; every lookup is defensive so a markup drift degrades a field
// instead of failing a page.
package extractor

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"fictrack/internal/models"
)

// OneShotName is the synthesized display name for works without an
// enumerable chapter list.
const OneShotName = "One-shot"

// WorkPage is the extraction result for a single work's page.
type WorkPage struct {
	Work     models.Work
	Chapters []models.Chapter
}

// ChapterBody is a chapter's normalized content plus any document-scoped
// style rules co-located with it. Styles are pass-through for the
// renderer, never parsed here.
type ChapterBody struct {
	HTML   string
	Styles []string
}

// ExtractListing extracts all works from an archive listing page. Items
// whose identity cannot be resolved are dropped; the page fails only when
// the work index itself is missing.
func ExtractListing(raw []byte) ([]models.Work, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, anchorMissing(KindListing, "parseable document")
	}

	index := doc.Find("ol.work-index")
	if index.Length() == 0 {
		return nil, anchorMissing(KindListing, "work index")
	}

	works := make([]models.Work, 0, index.Find("li.work-item").Length())
	index.Find("li.work-item").Each(func(_ int, item *goquery.Selection) {
		work, ok := extractListedWork(item)
		if !ok {
			return // identity unresolvable, drop this item only
		}
		works = append(works, work)
	})

	return works, nil
}

// ExtractWorkPage extracts the work snapshot and chapter list from a work
// page. Works lacking an enumerable chapter list get exactly one
// synthesized one-shot chapter.
func ExtractWorkPage(raw []byte) (*WorkPage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, anchorMissing(KindWorkPage, "parseable document")
	}

	meta := doc.Find("#work-meta")
	if meta.Length() == 0 {
		return nil, anchorMissing(KindWorkPage, "metadata block")
	}

	workID := strings.TrimSpace(meta.AttrOr("data-work-id", ""))
	if workID == "" {
		return nil, anchorMissing(KindWorkPage, "work id")
	}

	work := models.Work{ID: workID}
	work.Title = strings.TrimSpace(meta.Find(".work-title").First().Text())
	work.Author = strings.TrimSpace(meta.Find("a[rel=author]").First().Text())
	fillWorkMeta(&work, meta)

	chapters := extractChapterList(doc, &work)
	if len(chapters) == 0 {
		chapters = []models.Chapter{synthesizeOneShot(&work)}
	}

	// The list itself is authoritative when the chapter fraction was
	// missing from the stats block.
	if work.CurrentChapter == 0 {
		work.CurrentChapter = len(chapters)
	}

	return &WorkPage{Work: work, Chapters: chapters}, nil
}

// ExtractChapterBody extracts a chapter's content and the style rules
// shipped alongside it.
func ExtractChapterBody(raw []byte) (*ChapterBody, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, anchorMissing(KindChapterPage, "parseable document")
	}

	content := doc.Find("#chapter-content")
	if content.Length() == 0 {
		return nil, anchorMissing(KindChapterPage, "chapter content")
	}

	html, err := content.Html()
	if err != nil {
		return nil, anchorMissing(KindChapterPage, "chapter content")
	}

	var styles []string
	doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		if rule := strings.TrimSpace(s.Text()); rule != "" {
			styles = append(styles, rule)
		}
	})

	return &ChapterBody{HTML: html, Styles: styles}, nil
}

// extractListedWork extracts one listing item. ok is false when the item's
// identity cannot be resolved.
func extractListedWork(item *goquery.Selection) (models.Work, bool) {
	id := strings.TrimSpace(item.AttrOr("data-work-id", ""))
	if id == "" {
		// Older listing markup carries the id only in the work link.
		href := item.Find("a.work-link").First().AttrOr("href", "")
		id = lastPathSegment(href)
	}
	if id == "" {
		return models.Work{}, false
	}

	work := models.Work{ID: id}
	work.Title = strings.TrimSpace(item.Find("a.work-link").First().Text())
	if work.Title == "" {
		return models.Work{}, false
	}
	work.Author = strings.TrimSpace(item.Find("a[rel=author]").First().Text())
	fillWorkMeta(&work, item)

	return work, true
}

// fillWorkMeta populates the shared tag and stat fields from a container
// holding the archive's standard metadata markup. Absent fields keep
// their defaults rather than failing the record.
func fillWorkMeta(work *models.Work, s *goquery.Selection) {
	work.Rating = models.ParseRating(s.Find(".rating").First().Text())
	work.Category = models.NormalizeCategory(s.Find(".category").First().Text())
	work.Complete = parseCompletion(s.Find(".completion").First().Text())
	work.Language = strings.TrimSpace(s.Find("dd.language").First().Text())

	s.Find(".warnings a.tag").Each(func(_ int, t *goquery.Selection) {
		if tag := strings.TrimSpace(t.Text()); tag != "" {
			work.Warnings = append(work.Warnings, tag)
		}
	})
	work.WarningStatus = parseWarningStatus(work.Warnings)

	s.Find("ul.tags a.tag").Each(func(_ int, t *goquery.Selection) {
		if tag := strings.TrimSpace(t.Text()); tag != "" {
			work.Tags = append(work.Tags, tag)
		}
	})

	if current, total, ok := parseChapterFraction(s.Find("dd.chapters").First().Text()); ok {
		work.CurrentChapter = current
		work.ChapterCount = total
		// Observed chapters never exceed a known total.
		if total != nil && current > *total {
			work.CurrentChapter = *total
		}
	}

	work.Likes = parseCount(s.Find("dd.likes").First().Text())
	work.Bookmarks = parseCount(s.Find("dd.bookmarks").First().Text())
	work.Views = parseCount(s.Find("dd.views").First().Text())
	work.RemoteUpdated = parseDate(s.Find("dd.updated").First().Text())
}

// extractChapterList reads the enumerated chapter index of a work page.
// Chapter numbers follow list position; an unresolvable content id leaves
// the field empty for the sync engine to derive a degraded handle.
func extractChapterList(doc *goquery.Document, work *models.Work) []models.Chapter {
	var chapters []models.Chapter
	doc.Find("#chapter-index li").Each(func(i int, li *goquery.Selection) {
		link := li.Find("a").First()
		contentID := strings.TrimSpace(link.AttrOr("data-chapter-id", ""))
		if contentID == "" {
			contentID = lastPathSegment(link.AttrOr("href", ""))
		}

		name := strings.TrimSpace(link.Text())
		chapters = append(chapters, models.Chapter{
			WorkID:      work.ID,
			Number:      i + 1,
			Name:        name,
			ContentID:   contentID,
			PublishedAt: parseDate(li.Find("span.date").First().Text()),
		})
	})
	return chapters
}

// synthesizeOneShot builds the single chapter record for a work without a
// chapter list, reusing the work's own content id and date.
func synthesizeOneShot(work *models.Work) models.Chapter {
	return models.Chapter{
		WorkID:      work.ID,
		Number:      1,
		Name:        OneShotName,
		ContentID:   work.ID,
		PublishedAt: work.RemoteUpdated,
	}
}

func lastPathSegment(href string) string {
	href = strings.TrimRight(strings.TrimSpace(href), "/")
	if href == "" {
		return ""
	}
	if i := strings.LastIndex(href, "/"); i >= 0 {
		return href[i+1:]
	}
	return href
}
