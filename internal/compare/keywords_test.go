package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-compare/backend/internal/storage/models"
)

func TestDiffKeywordsMissingInB(t *testing.T) {
	rowsA := []models.SnapshotRow{queryRow("hypothek", 50, 500, 3)}

	got := DiffKeywords(rowsA, nil)

	require.Len(t, got, 1)
	assert.Equal(t, StatusMissingInB, got[0].Status)
	assert.Equal(t, int64(50), got[0].ClicksDiff)
	assert.True(t, got[0].InA())
	assert.False(t, got[0].InB())
}

func TestDiffKeywordsClassification(t *testing.T) {
	rowsA := []models.SnapshotRow{
		queryRow("common", 10, 100, 5),
		queryRow("only-a", 4, 40, 2),
		pageRow("https://x.ch/a", 1, 1, 1),
	}
	rowsB := []models.SnapshotRow{
		queryRow("only-b", 7, 70, 8),
		queryRow("common", 6, 200, 3),
	}

	got := DiffKeywords(rowsA, rowsB)

	require.Len(t, got, 3)
	assert.Equal(t, "common", got[0].Keyword)
	assert.Equal(t, StatusCommon, got[0].Status)
	assert.Equal(t, int64(4), got[0].ClicksDiff)
	assert.Equal(t, int64(-100), got[0].ImpressionsDiff)
	assert.InDelta(t, 2.0, got[0].PositionDiff, 1e-12)

	assert.Equal(t, "only-a", got[1].Keyword)
	assert.Equal(t, StatusMissingInB, got[1].Status)

	assert.Equal(t, "only-b", got[2].Keyword)
	assert.Equal(t, StatusMissingInA, got[2].Status)
	assert.Equal(t, int64(-7), got[2].ClicksDiff)
}

func TestDiffKeywordsIsCaseSensitive(t *testing.T) {
	got := DiffKeywords(
		[]models.SnapshotRow{queryRow("Hypothek", 1, 10, 1)},
		[]models.SnapshotRow{queryRow("hypothek", 1, 10, 1)},
	)
	assert.Len(t, got, 2)
}

func TestDiffKeywordsPartitionIsComplete(t *testing.T) {
	rowsA := []models.SnapshotRow{
		queryRow("a", 1, 1, 1), queryRow("b", 1, 1, 1), queryRow("c", 1, 1, 1),
	}
	rowsB := []models.SnapshotRow{
		queryRow("c", 1, 1, 1), queryRow("d", 1, 1, 1), queryRow("a", 2, 2, 2),
	}

	got := DiffKeywords(rowsA, rowsB)

	seen := make(map[string]Status)
	for _, c := range got {
		_, dup := seen[c.Keyword]
		assert.False(t, dup, "keyword %s appears twice", c.Keyword)
		seen[c.Keyword] = c.Status
	}
	assert.Equal(t, map[string]Status{
		"a": StatusCommon,
		"b": StatusMissingInB,
		"c": StatusCommon,
		"d": StatusMissingInA,
	}, seen)

	counts := CountByStatus(got)
	assert.Equal(t, len(got), counts[StatusCommon]+counts[StatusMissingInA]+counts[StatusMissingInB])
}

func TestDiffKeywordsSignConvention(t *testing.T) {
	rowsA := []models.SnapshotRow{queryRow("x", 30, 300, 2), queryRow("y", 5, 50, 7)}
	rowsB := []models.SnapshotRow{queryRow("x", 12, 100, 4), queryRow("z", 9, 90, 1)}

	ab := DiffKeywords(rowsA, rowsB)
	ba := DiffKeywords(rowsB, rowsA)

	byKeyword := make(map[string]KeywordComparison)
	for _, c := range ba {
		byKeyword[c.Keyword] = c
	}
	for _, c := range ab {
		other := byKeyword[c.Keyword]
		assert.Equal(t, c.ClicksDiff, -other.ClicksDiff, c.Keyword)
		assert.Equal(t, c.ImpressionsDiff, -other.ImpressionsDiff, c.Keyword)
		assert.InDelta(t, c.PositionDiff, -other.PositionDiff, 1e-12, c.Keyword)
	}
}

func TestTrendInvertsPosition(t *testing.T) {
	assert.Equal(t, Better, Trend(MetricClicks, 5))
	assert.Equal(t, Worse, Trend(MetricImpressions, -5))
	assert.Equal(t, Better, Trend(MetricPosition, -1.5))
	assert.Equal(t, Worse, Trend(MetricPosition, 0.5))
	assert.Equal(t, Unchanged, Trend(MetricPosition, 0))
}
