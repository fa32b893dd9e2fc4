package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-compare/backend/internal/compare"
	"github.com/seo-compare/backend/internal/storage/models"
)

func init() {
	color.NoColor = true
}

func TestDeltaFormatting(t *testing.T) {
	assert.Equal(t, "+10", Delta(compare.MetricClicks, 10))
	assert.Equal(t, "-3", Delta(compare.MetricImpressions, -3))
	assert.Equal(t, "-2.00", Delta(compare.MetricPosition, -2))
	assert.Equal(t, "+1.50pp", Delta(compare.MetricCTR, 0.015))
	assert.Equal(t, "0", Delta(compare.MetricClicks, 0))
}

func TestKeywordsTable(t *testing.T) {
	keywords := []compare.KeywordComparison{
		{Keyword: "hypothek", Status: compare.StatusCommon, ClicksA: 50, ClicksB: 40, ClicksDiff: 10, PositionA: 3, PositionB: 5, PositionDiff: -2},
		{Keyword: "kredit", Status: compare.StatusMissingInA, ClicksB: 5, ClicksDiff: -5, PositionB: 7, PositionDiff: -7},
		{Keyword: "zins", Status: compare.StatusMissingInB, ClicksA: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, Keywords(&buf, keywords, 2))
	out := buf.String()

	assert.Contains(t, out, "hypothek")
	assert.Contains(t, out, "only B")
	assert.NotContains(t, out, "zins")
	assert.Contains(t, out, "-2.00")
}

func TestDirectoriesTable(t *testing.T) {
	dirs := []compare.DirectoryComparison{
		{PathA: "/hypotheken", PathB: "/finanzieren", SimilarityScore: 0.5, CommonKeywords: []string{"a", "b"}, ClicksDiff: 3},
	}

	var buf bytes.Buffer
	require.NoError(t, Directories(&buf, dirs, 0))
	out := buf.String()

	assert.Contains(t, out, "/hypotheken")
	assert.Contains(t, out, "/finanzieren")
	assert.Contains(t, out, "50.0%")
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	Summary(&buf, compare.Summary{
		TotalsA:    models.Stats{Clicks: 10, Impressions: 100, Position: 3},
		TotalsB:    models.Stats{Clicks: 8, Impressions: 120, Position: 4},
		Keywords:   3,
		Common:     1,
		MissingInA: 1,
		MissingInB: 1,
		Matched:    2,
		UnclaimedB: []string{"/old"},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "clicks 10 vs 8 (+2)")
	assert.Contains(t, lines[0], "position 3.0 vs 4.0 (-1.00)")
	assert.Contains(t, lines[2], "1 unclaimed in B")
}
