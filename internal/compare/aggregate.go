package compare

import (
	"github.com/seo-compare/backend/internal/storage/models"
)

// Aggregate reduces rows to totals. Position is the plain mean of the row positions,
// not weighted by clicks or impressions.
func Aggregate(rows []models.SnapshotRow) models.Stats {
	var stats models.Stats
	if len(rows) == 0 {
		return stats
	}

	var positionSum float64
	for _, row := range rows {
		stats.Clicks += row.Clicks
		stats.Impressions += row.Impressions
		positionSum += row.Position
	}

	stats.CTR = models.CTR(stats.Clicks, stats.Impressions)
	stats.Position = positionSum / float64(len(rows))
	return stats
}

// Grouped is the output of AggregateBy. Keys keeps first-seen order.
type Grouped struct {
	Keys  []string
	Stats map[string]models.Stats
}

func (g Grouped) Len() int { return len(g.Keys) }

// AggregateBy filters rows to one dimension and aggregates them per key. A nil keyFn
// groups by the row key.
func AggregateBy(rows []models.SnapshotRow, dim models.Dimension, keyFn func(models.SnapshotRow) string) Grouped {
	if keyFn == nil {
		keyFn = func(r models.SnapshotRow) string { return r.Key }
	}

	buckets := make(map[string][]models.SnapshotRow)
	var keys []string
	for _, row := range rows {
		if row.Dimension != dim {
			continue
		}
		key := keyFn(row)
		if _, ok := buckets[key]; !ok {
			keys = append(keys, key)
		}
		buckets[key] = append(buckets[key], row)
	}

	grouped := Grouped{Keys: keys, Stats: make(map[string]models.Stats, len(keys))}
	for _, key := range keys {
		grouped.Stats[key] = Aggregate(buckets[key])
	}
	return grouped
}

// Filter returns the rows of one dimension.
func Filter(rows []models.SnapshotRow, dim models.Dimension) []models.SnapshotRow {
	var out []models.SnapshotRow
	for _, row := range rows {
		if row.Dimension == dim {
			out = append(out, row)
		}
	}
	return out
}

// Totals aggregates the date dimension, which is how snapshot totals are defined.
func Totals(rows []models.SnapshotRow) models.Stats {
	return Aggregate(Filter(rows, models.DimensionDate))
}
