package compare

import (
	"fmt"

	"github.com/seo-compare/backend/internal/storage/models"
)

func queryRow(key string, clicks, impressions int64, position float64) models.SnapshotRow {
	return models.NewRow(models.DimensionQuery, key, clicks, impressions, position)
}

func pageRow(url string, clicks, impressions int64, position float64) models.SnapshotRow {
	return models.NewRow(models.DimensionPage, url, clicks, impressions, position)
}

func qpRow(query, page string, clicks int64) models.SnapshotRow {
	return models.NewQueryPageRow(query, page, clicks, clicks*10, 3)
}

func profile(path string, keywords map[string]int64, order ...string) DirectoryProfile {
	p := DirectoryProfile{Path: path}
	for _, kw := range order {
		p.TopKeywords = append(p.TopKeywords, KeywordStat{Keyword: kw, Clicks: keywords[kw]})
	}
	return p
}

// directoryRows builds one page under path plus query_page rows for it.
func directoryRows(host, path string, keywords ...string) []models.SnapshotRow {
	page := fmt.Sprintf("https://%s%s/index", host, path)
	rows := []models.SnapshotRow{pageRow(page, 100, 1000, 4)}
	for i, kw := range keywords {
		rows = append(rows, qpRow(kw, page, int64(len(keywords)-i)))
	}
	return rows
}
