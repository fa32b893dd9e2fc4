package compare

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-compare/backend/internal/storage/models"
)

func TestBuildProfilesMergesPagesUnderOnePath(t *testing.T) {
	rows := []models.SnapshotRow{
		pageRow("https://x.ch/a/b/c?x=1", 10, 100, 2),
		pageRow("https://x.ch/a/b/d", 30, 100, 6),
	}

	profiles := BuildProfiles(rows, 2, 10)

	require.Len(t, profiles.List, 1)
	p := profiles.List[0]
	assert.Equal(t, "/a/b", p.Path)
	assert.Equal(t, int64(40), p.Clicks)
	assert.Equal(t, int64(200), p.Impressions)
	assert.InDelta(t, 0.2, p.CTR, 1e-12)
	assert.InDelta(t, 4.0, p.Position, 1e-12)
	assert.Equal(t, 2, p.PageCount)
	assert.Empty(t, p.TopKeywords)
}

func TestBuildProfilesTruncatesTopKeywords(t *testing.T) {
	page := "https://x.ch/hypotheken/zins"
	rows := []models.SnapshotRow{pageRow(page, 1, 1, 1)}
	for i := 1; i <= 15; i++ {
		rows = append(rows, qpRow(fmt.Sprintf("kw%02d", i), page, int64(i)))
	}

	profiles := BuildProfiles(rows, 1, 10)

	require.Len(t, profiles.List, 1)
	top := profiles.List[0].TopKeywords
	require.Len(t, top, 10)
	for i, kw := range top {
		assert.Equal(t, fmt.Sprintf("kw%02d", 15-i), kw.Keyword)
		assert.Equal(t, int64(15-i), kw.Clicks)
	}
}

func TestBuildProfilesKeywordsOnlyFromMemberPages(t *testing.T) {
	rows := []models.SnapshotRow{
		pageRow("https://x.ch/a/1", 1, 10, 1),
		pageRow("https://x.ch/b/1", 1, 10, 1),
		qpRow("alpha", "https://x.ch/a/1", 5),
		qpRow("beta", "https://x.ch/b/1", 5),
		qpRow("orphan", "https://x.ch/c/1", 50),
	}

	profiles := BuildProfiles(rows, 1, 10)

	a, ok := profiles.Get("/a")
	require.True(t, ok)
	assert.Equal(t, []KeywordStat{{Keyword: "alpha", Clicks: 5, Impressions: 50}}, a.TopKeywords)

	b, ok := profiles.Get("/b")
	require.True(t, ok)
	assert.Equal(t, "beta", b.TopKeywords[0].Keyword)

	_, ok = profiles.Get("/c")
	assert.False(t, ok)
}

func TestBuildProfilesKeepsKeywordCaseVariantsApart(t *testing.T) {
	page := "https://x.ch/a/1"
	rows := []models.SnapshotRow{
		pageRow(page, 1, 10, 1),
		qpRow("Foo", page, 6),
		qpRow("foo", page, 6),
		qpRow("bar", page, 10),
		qpRow("Foo", page, 1),
	}

	profiles := BuildProfiles(rows, 1, 10)

	assert.Equal(t, []KeywordStat{
		{Keyword: "bar", Clicks: 10, Impressions: 100},
		{Keyword: "Foo", Clicks: 7, Impressions: 70},
		{Keyword: "foo", Clicks: 6, Impressions: 60},
	}, profiles.List[0].TopKeywords)
}

func TestBuildProfilesCaseVariantsCompeteForTopSlots(t *testing.T) {
	page := "https://x.ch/a/1"
	rows := []models.SnapshotRow{pageRow(page, 1, 10, 1)}
	for i := 0; i < 9; i++ {
		rows = append(rows, qpRow(fmt.Sprintf("kw%d", i), page, 8))
	}
	rows = append(rows,
		qpRow("Foo", page, 6),
		qpRow("foo", page, 6),
		qpRow("bar", page, 7),
	)

	top := BuildProfiles(rows, 1, 10).List[0].TopKeywords

	require.Len(t, top, 10)
	assert.Equal(t, "bar", top[9].Keyword)
	for _, kw := range top {
		assert.NotEqual(t, "Foo", kw.Keyword)
		assert.NotEqual(t, "foo", kw.Keyword)
	}
}

func TestBuildProfilesSkipsUnparseablePages(t *testing.T) {
	rows := []models.SnapshotRow{
		pageRow("https://[::1", 99, 99, 1),
		pageRow("https://x.ch/a/1", 1, 10, 1),
		qpRow("lost", "https://[::1", 10),
	}

	profiles := BuildProfiles(rows, 2, 10)

	require.Len(t, profiles.List, 1)
	assert.Equal(t, "/a/1", profiles.List[0].Path)
	assert.Equal(t, int64(1), profiles.List[0].Clicks)
}

func TestBuildProfilesEmitsFirstSeenOrder(t *testing.T) {
	rows := []models.SnapshotRow{
		pageRow("https://x.ch/z/1", 1, 1, 1),
		pageRow("https://x.ch/a/1", 1, 1, 1),
		pageRow("https://x.ch/z/2", 1, 1, 1),
	}

	profiles := BuildProfiles(rows, 1, 10)

	require.Len(t, profiles.List, 2)
	assert.Equal(t, "/z", profiles.List[0].Path)
	assert.Equal(t, "/a", profiles.List[1].Path)
	assert.Equal(t, 2, profiles.List[0].PageCount)
}

func TestBuildProfilesEmpty(t *testing.T) {
	profiles := BuildProfiles(nil, 4, 20)
	assert.Empty(t, profiles.List)
}

func TestTopKeywordsInvariant(t *testing.T) {
	rows := []models.SnapshotRow{
		pageRow("https://x.ch/a/1", 1, 1, 1),
		pageRow("https://x.ch/a/2", 1, 1, 1),
		qpRow("one", "https://x.ch/a/1", 2),
		qpRow("two", "https://x.ch/a/2", 1),
		qpRow("three", "https://x.ch/b/1", 9),
	}

	profiles := BuildProfiles(rows, 1, 10)

	members := map[string]bool{"https://x.ch/a/1": true, "https://x.ch/a/2": true}
	for _, kw := range profiles.List[0].TopKeywords {
		found := false
		for _, row := range rows {
			if row.Dimension == models.DimensionQueryPage && row.Key == kw.Keyword && members[row.PageURL] {
				found = true
			}
		}
		assert.True(t, found, "keyword %s has no member query_page row", kw.Keyword)
	}
}
