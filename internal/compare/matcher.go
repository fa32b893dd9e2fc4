package compare

import "strings"

// keywordSet is the lower-cased keyword set of a directory.
type keywordSet map[string]struct{}

func newKeywordSet(keywords []KeywordStat) keywordSet {
	set := make(keywordSet, len(keywords))
	for _, kw := range keywords {
		set[normalizeKeyword(kw.Keyword)] = struct{}{}
	}
	return set
}

func normalizeKeyword(keyword string) string {
	return strings.ToLower(keyword)
}

func (s keywordSet) jaccard(other keywordSet) float64 {
	if len(s) == 0 || len(other) == 0 {
		return 0
	}
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	intersection := 0
	for kw := range small {
		if _, ok := large[kw]; ok {
			intersection++
		}
	}
	union := len(s) + len(other) - intersection
	return float64(intersection) / float64(union)
}

// Similarity is the Jaccard coefficient of the two directories' top keyword sets,
// compared case-insensitively. It is 0 when either set is empty.
func Similarity(a, b DirectoryProfile) float64 {
	return newKeywordSet(a.TopKeywords).jaccard(newKeywordSet(b.TopKeywords))
}

// MatchDirectories assigns every A directory its most similar B directory. The search
// is greedy and many-to-one: several A directories may pick the same B directory, ties
// keep the first B seen, and A directories whose best score is below minSimilarity
// (or zero) are dropped.
func MatchDirectories(profilesA, profilesB []DirectoryProfile, minSimilarity float64) []DirectoryComparison {
	setsB := make([]keywordSet, len(profilesB))
	for i, dB := range profilesB {
		setsB[i] = newKeywordSet(dB.TopKeywords)
	}

	var out []DirectoryComparison
	for _, dA := range profilesA {
		setA := newKeywordSet(dA.TopKeywords)

		best := -1
		bestScore := 0.0
		for i := range profilesB {
			score := setA.jaccard(setsB[i])
			if score > bestScore {
				best = i
				bestScore = score
			}
		}

		if best < 0 || bestScore < minSimilarity {
			continue
		}
		out = append(out, directoryComparison(dA, profilesB[best], bestScore, setsB[best]))
	}
	return out
}

func directoryComparison(dA, dB DirectoryProfile, score float64, setB keywordSet) DirectoryComparison {
	common := make([]string, 0)
	for _, kw := range dA.TopKeywords {
		if _, ok := setB[normalizeKeyword(kw.Keyword)]; ok {
			common = append(common, kw.Keyword)
		}
	}

	return DirectoryComparison{
		PathA:           dA.Path,
		PathB:           dB.Path,
		SimilarityScore: score,
		CommonKeywords:  common,
		ClicksA:         dA.Clicks,
		ClicksB:         dB.Clicks,
		ImpressionsA:    dA.Impressions,
		ImpressionsB:    dB.Impressions,
		CTRA:            dA.CTR,
		CTRB:            dB.CTR,
		PositionA:       dA.Position,
		PositionB:       dB.Position,
		PageCountA:      dA.PageCount,
		PageCountB:      dB.PageCount,
		ClicksDiff:      dA.Clicks - dB.Clicks,
		ImpressionsDiff: dA.Impressions - dB.Impressions,
		CTRDiff:         dA.CTR - dB.CTR,
		PositionDiff:    dA.Position - dB.Position,
		PageCountDiff:   dA.PageCount - dB.PageCount,
	}
}

// Unclaimed lists the B directories no comparison picked, in B's order.
func Unclaimed(profilesB []DirectoryProfile, comparisons []DirectoryComparison) []string {
	claimed := make(map[string]struct{}, len(comparisons))
	for _, c := range comparisons {
		claimed[c.PathB] = struct{}{}
	}
	var out []string
	for _, dB := range profilesB {
		if _, ok := claimed[dB.Path]; !ok {
			out = append(out, dB.Path)
		}
	}
	return out
}
