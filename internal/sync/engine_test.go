package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"fictrack/internal/fetcher"
	"fictrack/internal/models"
	"fictrack/internal/notify"
	"fictrack/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Work{},
		&models.Chapter{},
		&models.UpdateRecord{},
		&models.HistoryEntry{},
		&models.ProgressEntry{},
	))
	return db
}

type fakeFetcher struct {
	pages map[string][]byte
	errs  map[string]error
	calls int
}

func (f *fakeFetcher) FetchWorkPage(_ context.Context, workID string) (*fetcher.RawDocument, error) {
	f.calls++
	if err, ok := f.errs[workID]; ok {
		return nil, err
	}
	page, ok := f.pages[workID]
	if !ok {
		return nil, &fetcher.FetchError{URL: workID, Permanent: true, Err: errors.New("no fixture")}
	}
	return &fetcher.RawDocument{URL: "/works/" + workID, Body: page}, nil
}

type capturePresenter struct {
	summaries []notify.Summary
}

func (p *capturePresenter) Present(s notify.Summary) {
	p.summaries = append(p.summaries, s)
}

// workPage builds a work page with chapters 1..listed enumerated and the
// stats block claiming current chapters.
func workPage(id, title string, current, listed int) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, `<html><body><div id="work-meta" data-work-id="%s">`, id)
	fmt.Fprintf(&b, `<h2 class="work-title">%s</h2><a rel="author">author</a>`, title)
	fmt.Fprintf(&b, `<dl class="stats"><dd class="chapters">%d/?</dd></dl></div>`, current)
	b.WriteString(`<ol id="chapter-index">`)
	for i := 1; i <= listed; i++ {
		fmt.Fprintf(&b, `<li><a data-chapter-id="c%d">Chapter %d</a></li>`, i, i)
	}
	b.WriteString(`</ol></body></html>`)
	return []byte(b.String())
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestEngine(t *testing.T, db *gorm.DB, f *fakeFetcher, presenter notify.Presenter) *Engine {
	t.Helper()
	return NewEngine(
		f,
		repository.NewWorkRepository(db),
		repository.NewLedgerRepository(db),
		presenter,
		testLogger(),
		Options{Mode: "compact"}, // zero delays: pacing disabled in tests
	)
}

func seedWork(t *testing.T, db *gorm.DB, id, title string, current int) {
	t.Helper()
	require.NoError(t, repository.NewWorkRepository(db).Upsert(context.Background(), &models.Work{
		ID:             id,
		Title:          title,
		CurrentChapter: current,
	}))
}

func TestRunPassEmitsUpdatesForNewChapters(t *testing.T) {
	db := newTestDB(t)
	seedWork(t, db, "101", "The Long Road", 5)

	f := &fakeFetcher{pages: map[string][]byte{
		"101": workPage("101", "The Long Road", 8, 8),
	}}
	presenter := &capturePresenter{}
	engine := newTestEngine(t, db, f, presenter)

	summary, err := engine.RunPass(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.UpdatedWorks, 1)
	assert.Equal(t, []int{6, 7, 8}, summary.UpdatedWorks[0].NewChapterNumbers)
	assert.Empty(t, summary.FailedWorks)
	require.Len(t, presenter.summaries, 1)

	ledger := repository.NewLedgerRepository(db)
	records, err := ledger.ListForWork(context.Background(), "101")
	require.NoError(t, err)
	require.Len(t, records, 3, "exactly one record per new chapter")
	for i, record := range records {
		assert.Equal(t, 6+i, record.ChapterNumber)
		assert.Equal(t, fmt.Sprintf("c%d", 6+i), record.ContentID)
	}

	stored, err := repository.NewWorkRepository(db).GetByID(context.Background(), "101")
	require.NoError(t, err)
	assert.Equal(t, 8, stored.CurrentChapter)
}

func TestRunPassIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	seedWork(t, db, "101", "The Long Road", 5)

	f := &fakeFetcher{pages: map[string][]byte{
		"101": workPage("101", "The Long Road", 8, 8),
	}}
	engine := newTestEngine(t, db, f, &capturePresenter{})

	_, err := engine.RunPass(context.Background())
	require.NoError(t, err)

	// Same remote state again: diff yields nothing new.
	summary, err := engine.RunPass(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summary.UpdatedWorks)

	records, err := repository.NewLedgerRepository(db).ListForWork(context.Background(), "101")
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestRunPassReplayAfterPartialPersist(t *testing.T) {
	db := newTestDB(t)
	seedWork(t, db, "101", "The Long Road", 5)

	// Simulate a crash after the ledger append but before the snapshot
	// write: chapter 6 is already recorded while the stored snapshot
	// still says 5.
	ledger := repository.NewLedgerRepository(db)
	_, err := ledger.Append(context.Background(), &models.UpdateRecord{
		WorkID: "101", ChapterNumber: 6, ContentID: "c6",
	})
	require.NoError(t, err)

	f := &fakeFetcher{pages: map[string][]byte{
		"101": workPage("101", "The Long Road", 8, 8),
	}}
	engine := newTestEngine(t, db, f, &capturePresenter{})

	summary, err := engine.RunPass(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.UpdatedWorks, 1)
	assert.Equal(t, []int{7, 8}, summary.UpdatedWorks[0].NewChapterNumbers, "already-recorded chapter is skipped")

	records, err := ledger.ListForWork(context.Background(), "101")
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestRunPassIsolatesFailures(t *testing.T) {
	db := newTestDB(t)
	seedWork(t, db, "101", "The Long Road", 5)
	seedWork(t, db, "102", "Quiet Evenings", 1)

	f := &fakeFetcher{
		pages: map[string][]byte{
			"102": workPage("102", "Quiet Evenings", 2, 2),
		},
		errs: map[string]error{
			"101": &fetcher.FetchError{URL: "/works/101", StatusCode: 503},
		},
	}
	engine := newTestEngine(t, db, f, &capturePresenter{})

	summary, err := engine.RunPass(context.Background())
	require.NoError(t, err, "one work's failure must not abort the pass")

	assert.Equal(t, []string{"The Long Road"}, summary.FailedWorks)
	require.Len(t, summary.UpdatedWorks, 1)
	assert.Equal(t, "102", summary.UpdatedWorks[0].WorkID)
}

func TestRunPassDerivesMissingContentIDs(t *testing.T) {
	db := newTestDB(t)
	seedWork(t, db, "101", "The Long Road", 5)

	// Remote claims 8 chapters but only enumerates 5: the candidates
	// have no explicit id.
	f := &fakeFetcher{pages: map[string][]byte{
		"101": workPage("101", "The Long Road", 8, 5),
	}}
	engine := newTestEngine(t, db, f, &capturePresenter{})

	_, err := engine.RunPass(context.Background())
	require.NoError(t, err)

	records, err := repository.NewLedgerRepository(db).ListForWork(context.Background(), "101")
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, record := range records {
		n := 6 + i
		assert.Equal(t, derivedContentID("101", n), record.ContentID)
		assert.NotEmpty(t, record.ContentID)
	}

	// Derivation is deterministic across processes.
	assert.Equal(t, derivedContentID("101", 6), derivedContentID("101", 6))
	assert.NotEqual(t, derivedContentID("101", 6), derivedContentID("101", 7))
	assert.NotEqual(t, derivedContentID("101", 6), derivedContentID("102", 6))
}

func TestPaceHonorsCancellation(t *testing.T) {
	engine := NewEngine(nil, nil, nil, nil, testLogger(), Options{
		DelayMin: time.Hour,
		DelayMax: time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A cancelled context aborts the inter-work delay immediately, which
	// is what lets a pass stop between works instead of sleeping out the
	// full delay.
	err := engine.pace(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	// With pacing disabled the live-context case is a no-op.
	engine = NewEngine(nil, nil, nil, nil, testLogger(), Options{})
	assert.NoError(t, engine.pace(context.Background()))
}
