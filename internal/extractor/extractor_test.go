package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fictrack/internal/models"
)

const listingFixture = `
<html><body>
<ol class="work-index">
  <li class="work-item" data-work-id="101">
    <h4 class="heading"><a class="work-link" href="/works/101">The Long Road</a></h4>
    <a rel="author" href="/users/wanderer">wanderer</a>
    <span class="rating">Teen</span>
    <span class="category">F/M M/M</span>
    <span class="warnings"><a class="tag">Graphic Violence</a></span>
    <span class="completion">Work in Progress</span>
    <ul class="tags"><li><a class="tag">Slow Burn</a></li><li><a class="tag">Road Trip</a></li></ul>
    <dl class="stats">
      <dd class="language">English</dd>
      <dd class="chapters">3/?</dd>
      <dd class="likes">1,204</dd>
      <dd class="bookmarks">87</dd>
      <dd class="views">12,345</dd>
      <dd class="updated">2026-01-15</dd>
    </dl>
  </li>
  <li class="work-item" data-work-id="102">
    <h4 class="heading"><a class="work-link" href="/works/102">Quiet Evenings</a></h4>
    <a rel="author">stillwater</a>
    <span class="rating">General</span>
    <span class="category">Gen</span>
    <span class="completion">Complete</span>
    <dl class="stats">
      <dd class="chapters">1/1</dd>
    </dl>
  </li>
  <li class="work-item">
    <h4 class="heading"><span>Broken item without a link</span></h4>
  </li>
</ol>
</body></html>`

func TestExtractListing(t *testing.T) {
	works, err := ExtractListing([]byte(listingFixture))
	require.NoError(t, err)

	// The third item has no resolvable identity and is dropped.
	require.Len(t, works, 2)

	first := works[0]
	assert.Equal(t, "101", first.ID)
	assert.Equal(t, "The Long Road", first.Title)
	assert.Equal(t, "wanderer", first.Author)
	assert.Equal(t, models.RatingTeen, first.Rating)
	assert.Equal(t, models.CategoryMulti, first.Category, "two category tokens normalize to Multi")
	assert.Equal(t, models.TriFalse, first.Complete)
	assert.Equal(t, models.WarningGiven, first.WarningStatus)
	assert.Equal(t, models.StringList{"Slow Burn", "Road Trip"}, first.Tags)
	assert.Equal(t, "English", first.Language)
	assert.Equal(t, 3, first.CurrentChapter)
	assert.Nil(t, first.ChapterCount, "unresolved total maps to nil")
	assert.Equal(t, 1204, first.Likes)
	assert.Equal(t, 87, first.Bookmarks)
	assert.Equal(t, 12345, first.Views)
	require.NotNil(t, first.RemoteUpdated)
	assert.Equal(t, "2026-01-15", first.RemoteUpdated.Format("2006-01-02"))

	second := works[1]
	assert.Equal(t, "102", second.ID)
	assert.Equal(t, models.CategoryGen, second.Category)
	assert.Equal(t, models.TriTrue, second.Complete)
	require.NotNil(t, second.ChapterCount)
	assert.Equal(t, 1, *second.ChapterCount)
	assert.Equal(t, models.RatingGeneral, second.Rating)
	assert.Equal(t, models.WarningNoneApply, second.WarningStatus, "no warning tags degrade to none-apply")
	assert.Equal(t, 0, second.Likes, "absent counters default to zero")
}

func TestExtractListingMissingIndex(t *testing.T) {
	_, err := ExtractListing([]byte(`<html><body><p>maintenance</p></body></html>`))
	require.Error(t, err)

	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, KindListing, extErr.Kind)
	assert.Equal(t, "work index", extErr.Anchor)
}

const workPageFixture = `
<html><body>
<div id="work-meta" data-work-id="101">
  <h2 class="work-title">The Long Road</h2>
  <a rel="author">wanderer</a>
  <span class="rating">Explicit</span>
  <span class="category">F/F</span>
  <span class="completion">Work in Progress</span>
  <dl class="stats"><dd class="chapters">3/7</dd><dd class="views">900</dd></dl>
</div>
<ol id="chapter-index">
  <li><a href="/works/101/chapters/9001" data-chapter-id="9001">Chapter 1: Setting Out</a> <span class="date">2025-11-01</span></li>
  <li><a href="/works/101/chapters/9002">Chapter 2: Detour</a></li>
  <li><a>Chapter 3: Night Driving</a></li>
</ol>
</body></html>`

func TestExtractWorkPage(t *testing.T) {
	page, err := ExtractWorkPage([]byte(workPageFixture))
	require.NoError(t, err)

	assert.Equal(t, "101", page.Work.ID)
	assert.Equal(t, "The Long Road", page.Work.Title)
	assert.Equal(t, models.RatingExplicit, page.Work.Rating)
	assert.Equal(t, models.CategoryFF, page.Work.Category)
	assert.Equal(t, 3, page.Work.CurrentChapter)
	require.NotNil(t, page.Work.ChapterCount)
	assert.Equal(t, 7, *page.Work.ChapterCount)

	require.Len(t, page.Chapters, 3)
	assert.Equal(t, 1, page.Chapters[0].Number)
	assert.Equal(t, "9001", page.Chapters[0].ContentID)
	require.NotNil(t, page.Chapters[0].PublishedAt)

	// Falls back to the href when the id attribute is missing.
	assert.Equal(t, "9002", page.Chapters[1].ContentID)

	// No id resolvable at all: left empty for the sync engine to derive.
	assert.Equal(t, 3, page.Chapters[2].Number)
	assert.Empty(t, page.Chapters[2].ContentID)
}

func TestExtractWorkPageOneShot(t *testing.T) {
	oneShot := `
<html><body>
<div id="work-meta" data-work-id="205">
  <h2 class="work-title">Single Evening</h2>
  <a rel="author">stillwater</a>
  <dl class="stats"><dd class="updated">2026-02-01</dd></dl>
</div>
<div id="chapter-content"><p>text</p></div>
</body></html>`

	page, err := ExtractWorkPage([]byte(oneShot))
	require.NoError(t, err)

	require.Len(t, page.Chapters, 1)
	ch := page.Chapters[0]
	assert.Equal(t, 1, ch.Number)
	assert.Equal(t, OneShotName, ch.Name)
	assert.Equal(t, "205", ch.ContentID, "one-shot reuses the work's own content id")
	require.NotNil(t, ch.PublishedAt)

	assert.Equal(t, 1, page.Work.CurrentChapter, "chapter list is authoritative when the fraction is absent")
	assert.Equal(t, models.TriUnknown, page.Work.Complete)
	assert.Equal(t, models.RatingNotRated, page.Work.Rating)
	assert.Equal(t, models.CategoryNone, page.Work.Category)
}

func TestExtractWorkPageMissingMeta(t *testing.T) {
	_, err := ExtractWorkPage([]byte(`<html><body><div>nothing here</div></body></html>`))

	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, "metadata block", extErr.Anchor)
}

func TestExtractChapterBody(t *testing.T) {
	doc := `
<html><head><style>.userstuff { font-family: serif; }</style></head><body>
<div id="chapter-content"><p>It was a <em>long</em> road.</p></div>
<style></style>
</body></html>`

	body, err := ExtractChapterBody([]byte(doc))
	require.NoError(t, err)

	assert.Contains(t, body.HTML, "<em>long</em>")
	require.Len(t, body.Styles, 1, "empty style blocks are dropped")
	assert.Contains(t, body.Styles[0], "font-family: serif")
}

func TestExtractChapterBodyMissingContent(t *testing.T) {
	_, err := ExtractChapterBody([]byte(`<html><body><p>gone</p></body></html>`))

	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, KindChapterPage, extErr.Kind)
}

func TestParseChapterFraction(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		current int
		total   *int
		ok      bool
	}{
		{"known total", "3/7", 3, intPtr(7), true},
		{"unknown total", "3/?", 3, nil, true},
		{"thousands separators", "1,204/1,500", 1204, intPtr(1500), true},
		{"no slash", "12", 0, nil, false},
		{"empty", "", 0, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, total, ok := parseChapterFraction(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.current, current)
			if tt.total == nil {
				assert.Nil(t, total)
			} else {
				require.NotNil(t, total)
				assert.Equal(t, *tt.total, *total)
			}
		})
	}
}

func TestParseCount(t *testing.T) {
	assert.Equal(t, 12345, parseCount("12,345"))
	assert.Equal(t, 7, parseCount("  7 "))
	assert.Equal(t, 0, parseCount(""))
	assert.Equal(t, 0, parseCount("n/a"))
}

func intPtr(n int) *int { return &n }
