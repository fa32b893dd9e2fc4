// Package report renders comparison results as terminal tables.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/seo-compare/backend/internal/compare"
)

var (
	better = color.New(color.FgGreen).SprintFunc()
	worse  = color.New(color.FgRed).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// Delta formats an A-minus-B difference, colored by whether A did better.
func Delta(metric compare.Metric, diff float64) string {
	var s string
	switch metric {
	case compare.MetricClicks, compare.MetricImpressions:
		s = strconv.FormatFloat(diff, 'f', 0, 64)
	case compare.MetricCTR:
		s = strconv.FormatFloat(diff*100, 'f', 2, 64) + "pp"
	default:
		s = strconv.FormatFloat(diff, 'f', 2, 64)
	}
	if diff > 0 {
		s = "+" + s
	}

	switch compare.Trend(metric, diff) {
	case compare.Better:
		return better(s)
	case compare.Worse:
		return worse(s)
	}
	return dim(s)
}

func statusLabel(s compare.Status) string {
	switch s {
	case compare.StatusMissingInA:
		return worse("only B")
	case compare.StatusMissingInB:
		return better("only A")
	}
	return "both"
}

func position(p float64, present bool) string {
	if !present {
		return dim("-")
	}
	return strconv.FormatFloat(p, 'f', 1, 64)
}

// Keywords writes at most limit rows; limit <= 0 writes all.
func Keywords(w io.Writer, keywords []compare.KeywordComparison, limit int) error {
	table := tablewriter.NewWriter(w)
	table.Header("Keyword", "Status", "Clicks A", "Clicks B", "Δ Clicks", "Impr. A", "Impr. B", "Δ Impr.", "Pos. A", "Pos. B", "Δ Pos.")

	for i, kw := range keywords {
		if limit > 0 && i >= limit {
			break
		}
		err := table.Append([]string{
			kw.Keyword,
			statusLabel(kw.Status),
			strconv.FormatInt(kw.ClicksA, 10),
			strconv.FormatInt(kw.ClicksB, 10),
			Delta(compare.MetricClicks, float64(kw.ClicksDiff)),
			strconv.FormatInt(kw.ImpressionsA, 10),
			strconv.FormatInt(kw.ImpressionsB, 10),
			Delta(compare.MetricImpressions, float64(kw.ImpressionsDiff)),
			position(kw.PositionA, kw.InA()),
			position(kw.PositionB, kw.InB()),
			Delta(compare.MetricPosition, kw.PositionDiff),
		})
		if err != nil {
			return fmt.Errorf("failed to append keyword row: %w", err)
		}
	}

	return table.Render()
}

// Directories writes at most limit rows; limit <= 0 writes all.
func Directories(w io.Writer, directories []compare.DirectoryComparison, limit int) error {
	table := tablewriter.NewWriter(w)
	table.Header("Path A", "Path B", "Similarity", "Common", "Δ Clicks", "Δ Impr.", "Δ CTR", "Δ Pos.", "Δ Pages")

	for i, d := range directories {
		if limit > 0 && i >= limit {
			break
		}
		err := table.Append([]string{
			d.PathA,
			d.PathB,
			strconv.FormatFloat(d.SimilarityScore*100, 'f', 1, 64) + "%",
			strconv.Itoa(len(d.CommonKeywords)),
			Delta(compare.MetricClicks, float64(d.ClicksDiff)),
			Delta(compare.MetricImpressions, float64(d.ImpressionsDiff)),
			Delta(compare.MetricCTR, d.CTRDiff),
			Delta(compare.MetricPosition, d.PositionDiff),
			strconv.Itoa(d.PageCountDiff),
		})
		if err != nil {
			return fmt.Errorf("failed to append directory row: %w", err)
		}
	}

	return table.Render()
}

func Summary(w io.Writer, s compare.Summary) {
	fmt.Fprintf(w, "%s  clicks %d vs %d (%s), impressions %d vs %d (%s), position %.1f vs %.1f (%s)\n",
		bold("Totals"),
		s.TotalsA.Clicks, s.TotalsB.Clicks, Delta(compare.MetricClicks, float64(s.TotalsA.Clicks-s.TotalsB.Clicks)),
		s.TotalsA.Impressions, s.TotalsB.Impressions, Delta(compare.MetricImpressions, float64(s.TotalsA.Impressions-s.TotalsB.Impressions)),
		s.TotalsA.Position, s.TotalsB.Position, Delta(compare.MetricPosition, s.TotalsA.Position-s.TotalsB.Position),
	)
	fmt.Fprintf(w, "%s  %d total, %d common, %d only in A, %d only in B\n",
		bold("Keywords"), s.Keywords, s.Common, s.MissingInB, s.MissingInA)
	fmt.Fprintf(w, "%s  %d in A, %d in B, %d matched, %d unmatched in A, %d unclaimed in B\n",
		bold("Directories"), s.DirectoriesA, s.DirectoriesB, s.Matched, s.UnmatchedA, len(s.UnclaimedB))
}
