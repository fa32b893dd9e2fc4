// Package compare diffs two search-performance snapshots. Keywords are aligned by
// exact key; directories are matched by the Jaccard similarity of their top keyword
// sets because paths tend to move between snapshots while topics stay put.
//
// Everything in this package is pure computation over already fetched rows.
package compare

import (
	"errors"
	"fmt"
)

var ErrInvalidParameter = errors.New("invalid comparison parameter")

type Status string

const (
	StatusCommon     Status = "common"
	StatusMissingInA Status = "missing_in_A"
	StatusMissingInB Status = "missing_in_B"
)

// StatusFilter restricts keyword output to one status class.
type StatusFilter string

const (
	FilterAll        StatusFilter = "all"
	FilterCommon     StatusFilter = StatusFilter(StatusCommon)
	FilterMissingInA StatusFilter = StatusFilter(StatusMissingInA)
	FilterMissingInB StatusFilter = StatusFilter(StatusMissingInB)
)

func ParseStatusFilter(s string) (StatusFilter, error) {
	switch f := StatusFilter(s); f {
	case FilterAll, FilterCommon, FilterMissingInA, FilterMissingInB:
		return f, nil
	case "":
		return FilterAll, nil
	}
	return "", fmt.Errorf("%w: statusFilter %q", ErrInvalidParameter, s)
}

type SortBy string

const (
	SortBySimilarity  SortBy = "similarity"
	SortByClicks      SortBy = "clicks"
	SortByImpressions SortBy = "impressions"
	SortByPosition    SortBy = "position"
	SortByKeyword     SortBy = "keyword"
)

func ParseSortBy(s string) (SortBy, error) {
	switch b := SortBy(s); b {
	case SortBySimilarity, SortByClicks, SortByImpressions, SortByPosition, SortByKeyword:
		return b, nil
	case "path":
		return SortByKeyword, nil
	case "":
		return SortBySimilarity, nil
	}
	return "", fmt.Errorf("%w: sortBy %q", ErrInvalidParameter, s)
}

type KeywordStat struct {
	Keyword     string `json:"keyword"`
	Clicks      int64  `json:"clicks"`
	Impressions int64  `json:"impressions"`
}

// DirectoryProfile describes one truncated path within one snapshot.
type DirectoryProfile struct {
	Path        string        `json:"path"`
	Clicks      int64         `json:"clicks"`
	Impressions int64         `json:"impressions"`
	CTR         float64       `json:"ctr"`
	Position    float64       `json:"position"`
	PageCount   int           `json:"pageCount"`
	TopKeywords []KeywordStat `json:"topKeywords"`
}

// KeywordComparison is one keyword present in either snapshot. The side a keyword
// is missing from reports zero stats.
type KeywordComparison struct {
	Keyword         string  `json:"keyword"`
	Status          Status  `json:"status"`
	ClicksA         int64   `json:"clicksA"`
	ClicksB         int64   `json:"clicksB"`
	ImpressionsA    int64   `json:"impressionsA"`
	ImpressionsB    int64   `json:"impressionsB"`
	CTRA            float64 `json:"ctrA"`
	CTRB            float64 `json:"ctrB"`
	PositionA       float64 `json:"positionA"`
	PositionB       float64 `json:"positionB"`
	ClicksDiff      int64   `json:"clicksDiff"`
	ImpressionsDiff int64   `json:"impressionsDiff"`
	PositionDiff    float64 `json:"positionDiff"`
}

func (k KeywordComparison) InA() bool { return k.Status != StatusMissingInA }

func (k KeywordComparison) InB() bool { return k.Status != StatusMissingInB }

// DirectoryComparison is one matched directory pair.
type DirectoryComparison struct {
	PathA           string   `json:"pathA"`
	PathB           string   `json:"pathB"`
	SimilarityScore float64  `json:"similarityScore"`
	CommonKeywords  []string `json:"commonKeywords"`
	ClicksA         int64    `json:"clicksA"`
	ClicksB         int64    `json:"clicksB"`
	ImpressionsA    int64    `json:"impressionsA"`
	ImpressionsB    int64    `json:"impressionsB"`
	CTRA            float64  `json:"ctrA"`
	CTRB            float64  `json:"ctrB"`
	PositionA       float64  `json:"positionA"`
	PositionB       float64  `json:"positionB"`
	PageCountA      int      `json:"pageCountA"`
	PageCountB      int      `json:"pageCountB"`
	ClicksDiff      int64    `json:"clicksDiff"`
	ImpressionsDiff int64    `json:"impressionsDiff"`
	CTRDiff         float64  `json:"ctrDiff"`
	PositionDiff    float64  `json:"positionDiff"`
	PageCountDiff   int      `json:"pageCountDiff"`
}

type Metric string

const (
	MetricClicks      Metric = "clicks"
	MetricImpressions Metric = "impressions"
	MetricCTR         Metric = "ctr"
	MetricPosition    Metric = "position"
)

type Direction string

const (
	Better    Direction = "better"
	Worse     Direction = "worse"
	Unchanged Direction = "unchanged"
)

// Trend labels an A-minus-B delta from A's point of view. Position is lower-is-better,
// so a negative position delta means A ranks better.
func Trend(metric Metric, diff float64) Direction {
	if diff == 0 {
		return Unchanged
	}
	improved := diff > 0
	if metric == MetricPosition {
		improved = diff < 0
	}
	if improved {
		return Better
	}
	return Worse
}
