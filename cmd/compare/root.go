package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seo-compare/backend/internal/compare"
	"github.com/seo-compare/backend/internal/comparison"
	"github.com/seo-compare/backend/internal/report"
	"github.com/seo-compare/backend/internal/snapshot"
	"github.com/seo-compare/backend/internal/storage/sqlite"
	"github.com/seo-compare/backend/pkg/config"
	"github.com/seo-compare/backend/pkg/logger"
)

var rootExamples = `
  Compare two exported snapshot files:
	compare keywords --a week10.json --b week11.json --filter missing_in_B

  Compare stored snapshots by id:
	compare directories --db ./data/seo.db --a <snapshot-id> --b <snapshot-id> --depth 2 --min-similarity 0.4
`

type options struct {
	snapshotA     string
	snapshotB     string
	dbPath        string
	configPath    string
	depth         int
	minSimilarity float64
	top           int
	sortBy        string
	filter        string
	limit         int
	asJSON        bool
	logLevel      string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	defaults := compare.DefaultParams()

	root := &cobra.Command{
		Use:          "compare",
		Short:        "Compare two search performance snapshots",
		Example:      rootExamples,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init(opts.logLevel, "console", "stderr")
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.snapshotA, "a", "", "Snapshot A: a JSON file, or a snapshot id with --db")
	flags.StringVar(&opts.snapshotB, "b", "", "Snapshot B: a JSON file, or a snapshot id with --db")
	flags.StringVar(&opts.dbPath, "db", "", "Path to the sqlite database holding stored snapshots")
	flags.StringVar(&opts.configPath, "config", "", "Config file supplying comparison defaults")
	flags.IntVar(&opts.depth, "depth", defaults.DirectoryDepth, "Directory depth (1-5)")
	flags.Float64Var(&opts.minSimilarity, "min-similarity", defaults.MinSimilarity, "Minimum directory similarity (0-1, steps of 0.05)")
	flags.IntVar(&opts.top, "top", defaults.TopKeywordsCount, "Top keywords per directory (10, 20, 30, 50)")
	flags.StringVar(&opts.sortBy, "sort", string(defaults.SortBy), "Sort by similarity, clicks, impressions, position or keyword")
	flags.StringVar(&opts.filter, "filter", string(defaults.StatusFilter), "Keyword status filter: all, common, missing_in_A, missing_in_B")
	flags.IntVar(&opts.limit, "limit", 50, "Rows to print, 0 for all")
	flags.BoolVar(&opts.asJSON, "json", false, "Print the raw result as JSON")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level")

	root.AddCommand(
		&cobra.Command{
			Use:   "keywords",
			Short: "Diff keywords between two snapshots",
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, opts, comparison.KindKeywords)
			},
		},
		&cobra.Command{
			Use:   "directories",
			Short: "Match directories between two snapshots by keyword similarity",
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, opts, comparison.KindDirectories)
			},
		},
	)

	return root
}

func run(cmd *cobra.Command, opts *options, kind comparison.Kind) error {
	if opts.snapshotA == "" || opts.snapshotB == "" {
		return errors.New("both --a and --b are required")
	}

	params, err := resolveParams(cmd, opts)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	in, err := loadInput(ctx, cmd.ErrOrStderr(), opts)
	if err != nil {
		return err
	}

	result, err := compare.NewEngine(nil).Compare(ctx, in, params)
	if err != nil {
		return err
	}

	logger.Debug("Comparison finished",
		zap.String("kind", string(kind)),
		zap.Int("keywords", len(result.Keywords)),
		zap.Int("directories", len(result.Directories)),
	)

	return render(cmd.OutOrStdout(), opts, kind, result)
}

// resolveParams layers explicitly set flags over the config file over built-in defaults.
func resolveParams(cmd *cobra.Command, opts *options) (compare.Params, error) {
	params := compare.DefaultParams()

	if opts.configPath != "" {
		cfg, err := config.LoadFile(opts.configPath)
		if err != nil {
			return params, err
		}
		params.DirectoryDepth = cfg.Comparison.DirectoryDepth
		params.MinSimilarity = cfg.Comparison.MinSimilarity
		params.TopKeywordsCount = cfg.Comparison.TopKeywordsCount
		params.SortBy = compare.SortBy(cfg.Comparison.SortBy)
		params.StatusFilter = compare.StatusFilter(cfg.Comparison.StatusFilter)
	}

	flags := cmd.Flags()
	if flags.Changed("depth") {
		params.DirectoryDepth = opts.depth
	}
	if flags.Changed("min-similarity") {
		if err := config.ValidateMinSimilarity(opts.minSimilarity); err != nil {
			return params, err
		}
		params.MinSimilarity = opts.minSimilarity
	}
	if flags.Changed("top") {
		params.TopKeywordsCount = opts.top
	}

	sortBy := string(params.SortBy)
	if flags.Changed("sort") {
		sortBy = opts.sortBy
	}
	parsedSort, err := compare.ParseSortBy(sortBy)
	if err != nil {
		return params, err
	}
	params.SortBy = parsedSort

	filter := string(params.StatusFilter)
	if flags.Changed("filter") {
		filter = opts.filter
	}
	parsedFilter, err := compare.ParseStatusFilter(filter)
	if err != nil {
		return params, err
	}
	params.StatusFilter = parsedFilter

	return params, params.Validate()
}

func loadInput(ctx context.Context, stderr io.Writer, opts *options) (compare.Input, error) {
	if opts.dbPath == "" {
		snapA, err := snapshot.ReadFile(opts.snapshotA)
		if err != nil {
			return compare.Input{}, err
		}
		snapB, err := snapshot.ReadFile(opts.snapshotB)
		if err != nil {
			return compare.Input{}, err
		}
		return compare.Input{RowsA: snapA.Rows, RowsB: snapB.Rows}, nil
	}

	db, err := sqlite.NewClient(opts.dbPath)
	if err != nil {
		return compare.Input{}, err
	}
	defer db.Close()

	pair := snapshot.NewSource(db, snapshot.Config{}).FetchPair(ctx, opts.snapshotA, opts.snapshotB)

	warn := color.New(color.FgYellow).FprintfFunc()
	for i, side := range []snapshot.Fetched{pair.A, pair.B} {
		if side.Err != nil {
			warn(stderr, "warning: snapshot %c (%s) unavailable: %v\n", 'A'+i, side.ID, side.Err)
		}
	}

	return compare.Input{RowsA: pair.A.Rows, RowsB: pair.B.Rows}, nil
}

func render(w io.Writer, opts *options, kind comparison.Kind, result *compare.Result) error {
	if opts.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if kind == comparison.KindKeywords {
			return enc.Encode(struct {
				Keywords []compare.KeywordComparison `json:"keywords"`
				Summary  compare.Summary             `json:"summary"`
			}{result.Keywords, result.Summary})
		}
		return enc.Encode(struct {
			Directories []compare.DirectoryComparison `json:"directories"`
			Summary     compare.Summary               `json:"summary"`
		}{result.Directories, result.Summary})
	}

	report.Summary(w, result.Summary)
	fmt.Fprintln(w)

	if kind == comparison.KindKeywords {
		return report.Keywords(w, result.Keywords, opts.limit)
	}
	return report.Directories(w, result.Directories, opts.limit)
}
