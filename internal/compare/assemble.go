package compare

import (
	"math"
	"sort"
	"strings"
)

// FilterKeywords keeps the comparisons matching filter. FilterAll returns the input.
func FilterKeywords(comparisons []KeywordComparison, filter StatusFilter) []KeywordComparison {
	if filter == FilterAll || filter == "" {
		return comparisons
	}
	out := make([]KeywordComparison, 0, len(comparisons))
	for _, c := range comparisons {
		if StatusFilter(c.Status) == filter {
			out = append(out, c)
		}
	}
	return out
}

// SortKeywords orders comparisons in place. Numeric keys sort by absolute delta,
// largest first; keyword sorts ascending. Keywords carry no similarity, so that key
// falls back to clicks.
func SortKeywords(comparisons []KeywordComparison, by SortBy) {
	var less func(i, j int) bool
	switch by {
	case SortByKeyword:
		less = func(i, j int) bool { return comparisons[i].Keyword < comparisons[j].Keyword }
	case SortByImpressions:
		less = func(i, j int) bool {
			return absInt(comparisons[i].ImpressionsDiff) > absInt(comparisons[j].ImpressionsDiff)
		}
	case SortByPosition:
		less = func(i, j int) bool {
			return math.Abs(comparisons[i].PositionDiff) > math.Abs(comparisons[j].PositionDiff)
		}
	default:
		less = func(i, j int) bool {
			return absInt(comparisons[i].ClicksDiff) > absInt(comparisons[j].ClicksDiff)
		}
	}
	sort.SliceStable(comparisons, less)
}

// FilterDirectories drops comparisons scoring below minSimilarity.
func FilterDirectories(comparisons []DirectoryComparison, minSimilarity float64) []DirectoryComparison {
	out := make([]DirectoryComparison, 0, len(comparisons))
	for _, c := range comparisons {
		if c.SimilarityScore >= minSimilarity {
			out = append(out, c)
		}
	}
	return out
}

// SortDirectories orders comparisons in place. Similarity sorts by raw score, numeric
// keys by absolute delta, both descending; keyword sorts by path A ascending.
func SortDirectories(comparisons []DirectoryComparison, by SortBy) {
	var less func(i, j int) bool
	switch by {
	case SortByClicks:
		less = func(i, j int) bool {
			return absInt(comparisons[i].ClicksDiff) > absInt(comparisons[j].ClicksDiff)
		}
	case SortByImpressions:
		less = func(i, j int) bool {
			return absInt(comparisons[i].ImpressionsDiff) > absInt(comparisons[j].ImpressionsDiff)
		}
	case SortByPosition:
		less = func(i, j int) bool {
			return math.Abs(comparisons[i].PositionDiff) > math.Abs(comparisons[j].PositionDiff)
		}
	case SortByKeyword:
		less = func(i, j int) bool {
			return strings.Compare(comparisons[i].PathA, comparisons[j].PathA) < 0
		}
	default:
		less = func(i, j int) bool {
			return comparisons[i].SimilarityScore > comparisons[j].SimilarityScore
		}
	}
	sort.SliceStable(comparisons, less)
}

func absInt(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
