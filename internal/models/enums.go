package models

import "strings"

// Rating is the archive's audience rating for a work.
type Rating string

const (
	RatingNotRated Rating = "not_rated"
	RatingGeneral  Rating = "general"
	RatingTeen     Rating = "teen"
	RatingMature   Rating = "mature"
	RatingExplicit Rating = "explicit"
)

// ParseRating maps raw rating text to a Rating, defaulting to NotRated
// for anything unrecognized.
func ParseRating(raw string) Rating {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "general", "general audiences":
		return RatingGeneral
	case "teen", "teen and up", "teen and up audiences":
		return RatingTeen
	case "mature":
		return RatingMature
	case "explicit":
		return RatingExplicit
	default:
		return RatingNotRated
	}
}

// Category is the relationship category of a work.
type Category string

const (
	CategoryNone  Category = "none"
	CategoryFF    Category = "f_f"
	CategoryFM    Category = "f_m"
	CategoryMM    Category = "m_m"
	CategoryGen   Category = "gen"
	CategoryMulti Category = "multi"
	CategoryOther Category = "other"
)

// noCategorySentinel is the literal the archive uses for uncategorized works.
const noCategorySentinel = "no category"

// NormalizeCategory maps raw category text to a Category. Any input with
// more than one space-separated token that is not the "no category"
// sentinel normalizes to Multi, regardless of which tokens appear.
func NormalizeCategory(raw string) Category {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.EqualFold(trimmed, noCategorySentinel) {
		return CategoryNone
	}
	if len(strings.Fields(trimmed)) > 1 {
		return CategoryMulti
	}
	switch strings.ToLower(trimmed) {
	case "f/f":
		return CategoryFF
	case "f/m":
		return CategoryFM
	case "m/m":
		return CategoryMM
	case "gen":
		return CategoryGen
	case "multi":
		return CategoryMulti
	case "other":
		return CategoryOther
	default:
		return CategoryNone
	}
}

// TriState is an explicit three-valued flag. Unknown is distinct from
// false: a work whose total chapter count has not been observed yet is
// Unknown-complete, not incomplete.
type TriState string

const (
	TriTrue    TriState = "true"
	TriFalse   TriState = "false"
	TriUnknown TriState = "unknown"
)

// TriFromBool lifts a known boolean into a TriState.
func TriFromBool(v bool) TriState {
	if v {
		return TriTrue
	}
	return TriFalse
}

// Bool reports the concrete value and whether one is known.
func (t TriState) Bool() (value, known bool) {
	switch t {
	case TriTrue:
		return true, true
	case TriFalse:
		return false, true
	default:
		return false, false
	}
}

// WarningStatus records how the author acknowledged content warnings.
type WarningStatus string

const (
	WarningGiven       WarningStatus = "given"
	WarningNoneApply   WarningStatus = "none_apply"
	WarningUnspecified WarningStatus = "unspecified"
)
