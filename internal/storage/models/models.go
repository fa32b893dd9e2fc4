package models

import (
	"fmt"
	"time"
)

// Dimension tags which Search Console breakdown a row belongs to.
type Dimension string

const (
	DimensionQuery     Dimension = "query"
	DimensionPage      Dimension = "page"
	DimensionCountry   Dimension = "country"
	DimensionDevice    Dimension = "device"
	DimensionDate      Dimension = "date"
	DimensionQueryPage Dimension = "query_page"
)

func (d Dimension) Valid() bool {
	switch d {
	case DimensionQuery, DimensionPage, DimensionCountry, DimensionDevice, DimensionDate, DimensionQueryPage:
		return true
	}
	return false
}

func ParseDimension(s string) (Dimension, error) {
	d := Dimension(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown dimension %q", s)
	}
	return d, nil
}

// SnapshotRow is one aggregated metric observation. For query_page rows Key holds
// the query and PageURL the page.
type SnapshotRow struct {
	Dimension   Dimension `json:"dimension"`
	Key         string    `json:"key"`
	PageURL     string    `json:"pageUrl,omitempty"`
	Clicks      int64     `json:"clicks"`
	Impressions int64     `json:"impressions"`
	CTR         float64   `json:"ctr"`
	Position    float64   `json:"position"`
}

func NewRow(dim Dimension, key string, clicks, impressions int64, position float64) SnapshotRow {
	return SnapshotRow{
		Dimension:   dim,
		Key:         key,
		Clicks:      clicks,
		Impressions: impressions,
		CTR:         CTR(clicks, impressions),
		Position:    position,
	}
}

func NewQueryPageRow(query, pageURL string, clicks, impressions int64, position float64) SnapshotRow {
	row := NewRow(DimensionQueryPage, query, clicks, impressions, position)
	row.PageURL = pageURL
	return row
}

// Normalize recomputes CTR from clicks and impressions.
func (r *SnapshotRow) Normalize() {
	r.CTR = CTR(r.Clicks, r.Impressions)
}

func CTR(clicks, impressions int64) float64 {
	if impressions <= 0 {
		return 0
	}
	return float64(clicks) / float64(impressions)
}

// Stats is the reduced form of a group of rows.
type Stats struct {
	Clicks      int64   `json:"clicks"`
	Impressions int64   `json:"impressions"`
	CTR         float64 `json:"ctr"`
	Position    float64 `json:"position"`
}

type Snapshot struct {
	ID          string        `json:"id"`
	PropertyURL string        `json:"propertyUrl"`
	Name        string        `json:"name"`
	StartDate   string        `json:"startDate"`
	EndDate     string        `json:"endDate"`
	Totals      Stats         `json:"totals"`
	Rows        []SnapshotRow `json:"rows,omitempty"`
	RowCount    int           `json:"rowCount"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// ComparisonRecord is one entry of the comparison history.
type ComparisonRecord struct {
	ID               string    `json:"id"`
	Kind             string    `json:"kind"`
	SnapshotA        string    `json:"snapshotA"`
	SnapshotB        string    `json:"snapshotB"`
	ParamsHash       string    `json:"paramsHash"`
	DirectoryDepth   int       `json:"directoryDepth,omitempty"`
	MinSimilarity    float64   `json:"minSimilarity,omitempty"`
	TopKeywordsCount int       `json:"topKeywordsCount,omitempty"`
	ResultCount      int       `json:"resultCount"`
	LatencyMS        int       `json:"latencyMs"`
	CreatedAt        time.Time `json:"createdAt"`
}
