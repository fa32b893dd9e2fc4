package compare

import (
	"github.com/seo-compare/backend/internal/storage/models"
)

// DiffKeywords aligns the query rows of two snapshots by exact key. Output order is
// A's keys in first-seen order followed by keys only present in B.
func DiffKeywords(rowsA, rowsB []models.SnapshotRow) []KeywordComparison {
	a := AggregateBy(rowsA, models.DimensionQuery, nil)
	b := AggregateBy(rowsB, models.DimensionQuery, nil)

	out := make([]KeywordComparison, 0, a.Len()+b.Len())
	for _, key := range a.Keys {
		statsA := a.Stats[key]
		statsB, inB := b.Stats[key]
		status := StatusCommon
		if !inB {
			status = StatusMissingInB
		}
		out = append(out, keywordComparison(key, status, statsA, statsB))
	}
	for _, key := range b.Keys {
		if _, inA := a.Stats[key]; inA {
			continue
		}
		out = append(out, keywordComparison(key, StatusMissingInA, models.Stats{}, b.Stats[key]))
	}
	return out
}

func keywordComparison(keyword string, status Status, a, b models.Stats) KeywordComparison {
	return KeywordComparison{
		Keyword:         keyword,
		Status:          status,
		ClicksA:         a.Clicks,
		ClicksB:         b.Clicks,
		ImpressionsA:    a.Impressions,
		ImpressionsB:    b.Impressions,
		CTRA:            a.CTR,
		CTRB:            b.CTR,
		PositionA:       a.Position,
		PositionB:       b.Position,
		ClicksDiff:      a.Clicks - b.Clicks,
		ImpressionsDiff: a.Impressions - b.Impressions,
		PositionDiff:    a.Position - b.Position,
	}
}

// CountByStatus tallies comparisons per status.
func CountByStatus(comparisons []KeywordComparison) map[Status]int {
	counts := map[Status]int{
		StatusCommon:     0,
		StatusMissingInA: 0,
		StatusMissingInB: 0,
	}
	for _, c := range comparisons {
		counts[c.Status]++
	}
	return counts
}
