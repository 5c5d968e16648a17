package extractor

import "fmt"

// Kind identifies what sort of archive page a raw document is.
type Kind string

const (
	KindListing     Kind = "listing"
	KindWorkPage    Kind = "work_page"
	KindChapterPage Kind = "chapter_page"
)

// ExtractionError reports a missing structural anchor. It is returned only
// when a page's root container or an item's identity cannot be resolved;
// anything less degrades field by field instead of failing the page.
type ExtractionError struct {
	Kind   Kind
	Anchor string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s: %s not found", e.Kind, e.Anchor)
}

func anchorMissing(kind Kind, anchor string) *ExtractionError {
	return &ExtractionError{Kind: kind, Anchor: anchor}
}
