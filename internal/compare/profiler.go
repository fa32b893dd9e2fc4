package compare

import (
	"sort"

	"github.com/seo-compare/backend/internal/storage/models"
)

const DefaultTopKeywordsCount = 20

type pageTally struct {
	positionSum float64
	rows        int
}

type directoryTally struct {
	profile  DirectoryProfile
	pages    map[string]*pageTally
	order    []string
	keywords map[string]*KeywordStat
	kwOrder  []string
}

// Profiles is the per-snapshot output of BuildProfiles. List keeps first-seen path
// order, which is the order the matcher walks.
type Profiles struct {
	List   []DirectoryProfile
	ByPath map[string]int
}

func (p Profiles) Get(path string) (DirectoryProfile, bool) {
	i, ok := p.ByPath[path]
	if !ok {
		return DirectoryProfile{}, false
	}
	return p.List[i], true
}

// BuildProfiles groups page rows into directories truncated to depth and attaches
// each directory's top keywords from the query_page rows of its member pages.
// Page URLs that fail to parse belong to no directory.
func BuildProfiles(rows []models.SnapshotRow, depth, topKeywordsCount int) Profiles {
	if topKeywordsCount <= 0 {
		topKeywordsCount = DefaultTopKeywordsCount
	}

	tallies := make(map[string]*directoryTally)
	var paths []string
	pageDirectory := make(map[string]string)

	for _, row := range rows {
		if row.Dimension != models.DimensionPage {
			continue
		}
		path, ok := directoryPath(row.Key, depth)
		if !ok {
			continue
		}

		t, exists := tallies[path]
		if !exists {
			t = &directoryTally{
				profile:  DirectoryProfile{Path: path},
				pages:    make(map[string]*pageTally),
				keywords: make(map[string]*KeywordStat),
			}
			tallies[path] = t
			paths = append(paths, path)
		}

		t.profile.Clicks += row.Clicks
		t.profile.Impressions += row.Impressions

		page, seen := t.pages[row.Key]
		if !seen {
			page = &pageTally{}
			t.pages[row.Key] = page
			t.order = append(t.order, row.Key)
		}
		page.positionSum += row.Position
		page.rows++
		pageDirectory[row.Key] = path
	}

	for _, path := range paths {
		t := tallies[path]
		t.profile.PageCount = len(t.order)
		t.profile.CTR = models.CTR(t.profile.Clicks, t.profile.Impressions)

		var positionSum float64
		for _, pageURL := range t.order {
			page := t.pages[pageURL]
			positionSum += page.positionSum / float64(page.rows)
		}
		if t.profile.PageCount > 0 {
			t.profile.Position = positionSum / float64(t.profile.PageCount)
		}
	}

	for _, row := range rows {
		if row.Dimension != models.DimensionQueryPage {
			continue
		}
		path, ok := pageDirectory[row.PageURL]
		if !ok {
			continue
		}
		t := tallies[path]

		kw, seen := t.keywords[row.Key]
		if !seen {
			kw = &KeywordStat{Keyword: row.Key}
			t.keywords[row.Key] = kw
			t.kwOrder = append(t.kwOrder, row.Key)
		}
		kw.Clicks += row.Clicks
		kw.Impressions += row.Impressions
	}

	profiles := Profiles{
		List:   make([]DirectoryProfile, 0, len(paths)),
		ByPath: make(map[string]int, len(paths)),
	}
	for _, path := range paths {
		t := tallies[path]
		t.profile.TopKeywords = topKeywords(t, topKeywordsCount)
		profiles.ByPath[path] = len(profiles.List)
		profiles.List = append(profiles.List, t.profile)
	}
	return profiles
}

func topKeywords(t *directoryTally, limit int) []KeywordStat {
	out := make([]KeywordStat, 0, len(t.kwOrder))
	for _, key := range t.kwOrder {
		out = append(out, *t.keywords[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Clicks > out[j].Clicks
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
