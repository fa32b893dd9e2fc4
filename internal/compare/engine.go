package compare

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/seo-compare/backend/internal/metrics"
	"github.com/seo-compare/backend/internal/storage/models"
	"github.com/seo-compare/backend/pkg/logger"
	"github.com/seo-compare/backend/pkg/utils"
)

const (
	DefaultDirectoryDepth = 4
	DefaultMinSimilarity  = 0.3
)

// Memo stores finished results. Implementations must treat results as read-only.
type Memo interface {
	Get(ctx context.Context, key string) (*Result, bool)
	Set(ctx context.Context, key string, result *Result)
}

type Params struct {
	DirectoryDepth   int          `json:"directoryDepth"`
	MinSimilarity    float64      `json:"minSimilarity"`
	TopKeywordsCount int          `json:"topKeywordsCount"`
	SortBy           SortBy       `json:"sortBy"`
	StatusFilter     StatusFilter `json:"statusFilter"`
}

func DefaultParams() Params {
	return Params{
		DirectoryDepth:   DefaultDirectoryDepth,
		MinSimilarity:    DefaultMinSimilarity,
		TopKeywordsCount: DefaultTopKeywordsCount,
		SortBy:           SortBySimilarity,
		StatusFilter:     FilterAll,
	}
}

func (p Params) Validate() error {
	if p.DirectoryDepth < MinDirectoryDepth || p.DirectoryDepth > MaxDirectoryDepth {
		return fmt.Errorf("%w: directoryDepth must be within %d..%d, got %d",
			ErrInvalidParameter, MinDirectoryDepth, MaxDirectoryDepth, p.DirectoryDepth)
	}
	if p.MinSimilarity < 0 || p.MinSimilarity > 1 || math.IsNaN(p.MinSimilarity) {
		return fmt.Errorf("%w: minSimilarity must be within [0,1], got %v", ErrInvalidParameter, p.MinSimilarity)
	}
	switch p.TopKeywordsCount {
	case 10, 20, 30, 50:
	default:
		return fmt.Errorf("%w: topKeywordsCount must be one of 10, 20, 30, 50, got %d",
			ErrInvalidParameter, p.TopKeywordsCount)
	}
	if _, err := ParseSortBy(string(p.SortBy)); err != nil {
		return err
	}
	if _, err := ParseStatusFilter(string(p.StatusFilter)); err != nil {
		return err
	}
	return nil
}

// Input carries the two row collections. Fingerprints identify the collections for
// memoization; snapshot ids work because snapshots are immutable. Empty fingerprints
// are derived from the rows.
type Input struct {
	RowsA        []models.SnapshotRow
	RowsB        []models.SnapshotRow
	FingerprintA string
	FingerprintB string
}

type Summary struct {
	TotalsA      models.Stats `json:"totalsA"`
	TotalsB      models.Stats `json:"totalsB"`
	Keywords     int          `json:"keywords"`
	Common       int          `json:"common"`
	MissingInA   int          `json:"missingInA"`
	MissingInB   int          `json:"missingInB"`
	DirectoriesA int          `json:"directoriesA"`
	DirectoriesB int          `json:"directoriesB"`
	Matched      int          `json:"matched"`
	UnmatchedA   int          `json:"unmatchedA"`
	UnclaimedB   []string     `json:"unclaimedB"`
}

type Result struct {
	Key         string                `json:"key"`
	Params      Params                `json:"params"`
	Keywords    []KeywordComparison   `json:"keywords"`
	Directories []DirectoryComparison `json:"directories"`
	Summary     Summary               `json:"summary"`
}

type Engine struct {
	memo Memo
}

// NewEngine returns an engine. A nil memo disables memoization.
func NewEngine(memo Memo) *Engine {
	return &Engine{memo: memo}
}

// Compare diffs keywords and matches directories of the two row collections. Missing
// data is not an error: empty collections produce empty results.
func (e *Engine) Compare(ctx context.Context, in Input, params Params) (*Result, error) {
	if params.SortBy == "" {
		params.SortBy = SortBySimilarity
	}
	if params.StatusFilter == "" {
		params.StatusFilter = FilterAll
	}
	if err := params.Validate(); err != nil {
		metrics.ComparisonTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	startTime := time.Now()
	key := MemoKey(in, params)

	if e.memo != nil {
		if cached, ok := e.memo.Get(ctx, key); ok {
			metrics.ComparisonTotal.WithLabelValues("cached").Inc()
			metrics.ComparisonDuration.WithLabelValues("cache").Observe(time.Since(startTime).Seconds())
			return cached, nil
		}
	}

	result := Run(in.RowsA, in.RowsB, params)
	result.Key = key

	if e.memo != nil {
		e.memo.Set(ctx, key, result)
	}

	metrics.ComparisonTotal.WithLabelValues("computed").Inc()
	metrics.ComparisonDuration.WithLabelValues("engine").Observe(time.Since(startTime).Seconds())
	metrics.KeywordStatusCount.WithLabelValues(string(StatusCommon)).Observe(float64(result.Summary.Common))
	metrics.KeywordStatusCount.WithLabelValues(string(StatusMissingInA)).Observe(float64(result.Summary.MissingInA))
	metrics.KeywordStatusCount.WithLabelValues(string(StatusMissingInB)).Observe(float64(result.Summary.MissingInB))
	metrics.DirectoriesMatched.Observe(float64(result.Summary.Matched))
	for _, d := range result.Directories {
		metrics.SimilarityScore.Observe(d.SimilarityScore)
	}

	logger.Debug("Comparison computed",
		zap.String("key", key),
		zap.Int("rows_a", len(in.RowsA)),
		zap.Int("rows_b", len(in.RowsB)),
		zap.Int("keywords", len(result.Keywords)),
		zap.Int("directories", len(result.Directories)),
		zap.Duration("elapsed", time.Since(startTime)),
	)

	return result, nil
}

// Run is the uncached pipeline.
func Run(rowsA, rowsB []models.SnapshotRow, params Params) *Result {
	keywords := DiffKeywords(rowsA, rowsB)
	counts := CountByStatus(keywords)
	keywords = FilterKeywords(keywords, params.StatusFilter)
	SortKeywords(keywords, params.SortBy)

	profilesA := BuildProfiles(rowsA, params.DirectoryDepth, params.TopKeywordsCount)
	profilesB := BuildProfiles(rowsB, params.DirectoryDepth, params.TopKeywordsCount)
	directories := MatchDirectories(profilesA.List, profilesB.List, params.MinSimilarity)
	unclaimed := Unclaimed(profilesB.List, directories)
	SortDirectories(directories, params.SortBy)

	return &Result{
		Params:      params,
		Keywords:    keywords,
		Directories: directories,
		Summary: Summary{
			TotalsA:      Totals(rowsA),
			TotalsB:      Totals(rowsB),
			Keywords:     counts[StatusCommon] + counts[StatusMissingInA] + counts[StatusMissingInB],
			Common:       counts[StatusCommon],
			MissingInA:   counts[StatusMissingInA],
			MissingInB:   counts[StatusMissingInB],
			DirectoriesA: len(profilesA.List),
			DirectoriesB: len(profilesB.List),
			Matched:      len(directories),
			UnmatchedA:   len(profilesA.List) - len(directories),
			UnclaimedB:   unclaimed,
		},
	}
}

// MemoKey identifies a comparison by its inputs and every parameter.
func MemoKey(in Input, params Params) string {
	fpA := in.FingerprintA
	if fpA == "" {
		fpA = FingerprintRows(in.RowsA)
	}
	fpB := in.FingerprintB
	if fpB == "" {
		fpB = FingerprintRows(in.RowsB)
	}
	return utils.HashParts(
		fpA,
		fpB,
		strconv.Itoa(params.DirectoryDepth),
		strconv.FormatFloat(params.MinSimilarity, 'g', -1, 64),
		strconv.Itoa(params.TopKeywordsCount),
		string(params.SortBy),
		string(params.StatusFilter),
	)
}

// FingerprintRows hashes the content of a row collection.
func FingerprintRows(rows []models.SnapshotRow) string {
	buf := make([]byte, 0, len(rows)*48)
	for _, r := range rows {
		buf = append(buf, string(r.Dimension)...)
		buf = append(buf, 0x1f)
		buf = append(buf, r.Key...)
		buf = append(buf, 0x1f)
		buf = append(buf, r.PageURL...)
		buf = append(buf, 0x1f)
		buf = strconv.AppendInt(buf, r.Clicks, 10)
		buf = append(buf, 0x1f)
		buf = strconv.AppendInt(buf, r.Impressions, 10)
		buf = append(buf, 0x1f)
		buf = strconv.AppendFloat(buf, r.Position, 'g', -1, 64)
		buf = append(buf, 0x1e)
	}
	return utils.HashString(string(buf))
}
