package comparison

import (
	"github.com/seo-compare/backend/internal/compare"
)

// Overrides carries the parameters a client chose to set. Nil fields keep the
// value they are applied to.
type Overrides struct {
	DirectoryDepth   *int     `json:"directoryDepth,omitempty"`
	MinSimilarity    *float64 `json:"minSimilarity,omitempty"`
	TopKeywordsCount *int     `json:"topKeywordsCount,omitempty"`
	SortBy           *string  `json:"sortBy,omitempty"`
	StatusFilter     *string  `json:"statusFilter,omitempty"`
}

func (o Overrides) Apply(p compare.Params) compare.Params {
	if o.DirectoryDepth != nil {
		p.DirectoryDepth = *o.DirectoryDepth
	}
	if o.MinSimilarity != nil {
		p.MinSimilarity = *o.MinSimilarity
	}
	if o.TopKeywordsCount != nil {
		p.TopKeywordsCount = *o.TopKeywordsCount
	}
	if o.SortBy != nil {
		p.SortBy = compare.SortBy(*o.SortBy)
	}
	if o.StatusFilter != nil {
		p.StatusFilter = compare.StatusFilter(*o.StatusFilter)
	}
	return p
}
