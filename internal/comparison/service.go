// Package comparison wires the snapshot source, the engine and the history log
// behind the operations the API and CLI expose.
package comparison

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seo-compare/backend/internal/compare"
	"github.com/seo-compare/backend/internal/metrics"
	"github.com/seo-compare/backend/internal/snapshot"
	"github.com/seo-compare/backend/internal/storage/models"
	"github.com/seo-compare/backend/pkg/logger"
)

var ErrInvalidSnapshot = errors.New("invalid snapshot")

type Kind string

const (
	KindKeywords    Kind = "keywords"
	KindDirectories Kind = "directories"
)

// Store is the persistence the service needs. *sqlite.Client satisfies it.
type Store interface {
	snapshot.Store
	InsertSnapshot(ctx context.Context, snap *models.Snapshot) error
	ListSnapshots(ctx context.Context, propertyURL string, limit int) ([]models.Snapshot, error)
	DeleteSnapshot(ctx context.Context, id string) error
	InsertComparisonRecord(ctx context.Context, record *models.ComparisonRecord) error
	GetComparisonHistory(ctx context.Context, limit int) ([]models.ComparisonRecord, error)
}

// Purger drops memoized results. *cache.Memo satisfies it.
type Purger interface {
	Purge(ctx context.Context)
}

type Service struct {
	store    Store
	source   *snapshot.Source
	engine   *compare.Engine
	purger   Purger
	defaults compare.Params
}

type Request struct {
	SnapshotA string
	SnapshotB string
	Kind      Kind
	Params    compare.Params
}

type Response struct {
	ID          string                        `json:"id"`
	Kind        Kind                          `json:"kind"`
	SnapshotA   string                        `json:"snapshotA"`
	SnapshotB   string                        `json:"snapshotB"`
	Params      compare.Params                `json:"params"`
	Keywords    []compare.KeywordComparison   `json:"keywords,omitempty"`
	Directories []compare.DirectoryComparison `json:"directories,omitempty"`
	Summary     compare.Summary               `json:"summary"`
	Warnings    []string                      `json:"warnings,omitempty"`
	LatencyMS   int                           `json:"latencyMs"`
}

func NewService(store Store, source *snapshot.Source, engine *compare.Engine, purger Purger, defaults compare.Params) *Service {
	return &Service{
		store:    store,
		source:   source,
		engine:   engine,
		purger:   purger,
		defaults: defaults,
	}
}

func (s *Service) Defaults() compare.Params {
	return s.defaults
}

// Compare loads both snapshots in parallel and runs the engine. Missing snapshot
// data produces warnings and empty results, never an error.
func (s *Service) Compare(ctx context.Context, req Request) (*Response, error) {
	startTime := time.Now()
	comparisonID := uuid.New().String()

	if req.Kind != KindKeywords && req.Kind != KindDirectories {
		return nil, fmt.Errorf("%w: kind %q", compare.ErrInvalidParameter, req.Kind)
	}

	logger.Info("Processing comparison",
		zap.String("comparison_id", comparisonID),
		zap.String("kind", string(req.Kind)),
		zap.String("snapshot_a", req.SnapshotA),
		zap.String("snapshot_b", req.SnapshotB),
	)

	pair := s.source.FetchPair(ctx, req.SnapshotA, req.SnapshotB)

	in := compare.Input{RowsA: pair.A.Rows, RowsB: pair.B.Rows}
	if pair.A.Err == nil {
		in.FingerprintA = "snapshot:" + pair.A.ID
	}
	if pair.B.Err == nil {
		in.FingerprintB = "snapshot:" + pair.B.ID
	}

	result, err := s.engine.Compare(ctx, in, req.Params)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		ID:        comparisonID,
		Kind:      req.Kind,
		SnapshotA: req.SnapshotA,
		SnapshotB: req.SnapshotB,
		Params:    result.Params,
		Summary:   result.Summary,
		Warnings:  warnings(pair),
	}

	resultCount := 0
	switch req.Kind {
	case KindKeywords:
		resp.Keywords = result.Keywords
		resultCount = len(result.Keywords)
	case KindDirectories:
		resp.Directories = result.Directories
		resultCount = len(result.Directories)
	}

	resp.LatencyMS = int(time.Since(startTime).Milliseconds())

	record := &models.ComparisonRecord{
		ID:               comparisonID,
		Kind:             string(req.Kind),
		SnapshotA:        req.SnapshotA,
		SnapshotB:        req.SnapshotB,
		ParamsHash:       result.Key,
		DirectoryDepth:   result.Params.DirectoryDepth,
		MinSimilarity:    result.Params.MinSimilarity,
		TopKeywordsCount: result.Params.TopKeywordsCount,
		ResultCount:      resultCount,
		LatencyMS:        resp.LatencyMS,
		CreatedAt:        time.Now(),
	}
	if err := s.store.InsertComparisonRecord(ctx, record); err != nil {
		logger.Warn("Failed to record comparison", zap.String("comparison_id", comparisonID), zap.Error(err))
	}

	logger.Info("Comparison processed successfully",
		zap.String("comparison_id", comparisonID),
		zap.Int("results", resultCount),
		zap.Int("latency_ms", resp.LatencyMS),
	)

	return resp, nil
}

func warnings(pair snapshot.Pair) []string {
	var out []string
	for _, side := range []struct {
		label string
		f     snapshot.Fetched
	}{{"A", pair.A}, {"B", pair.B}} {
		switch {
		case side.f.Err != nil:
			out = append(out, fmt.Sprintf("snapshot %s (%s) unavailable: %v", side.label, side.f.ID, side.f.Err))
		case len(side.f.Rows) == 0:
			out = append(out, fmt.Sprintf("snapshot %s (%s) has no rows", side.label, side.f.ID))
		}
	}
	return out
}

type IngestRequest struct {
	PropertyURL string               `json:"propertyUrl"`
	Name        string               `json:"name"`
	StartDate   string               `json:"startDate"`
	EndDate     string               `json:"endDate"`
	Rows        []models.SnapshotRow `json:"rows"`
}

// Ingest validates and stores a snapshot. Row CTR and snapshot totals are derived
// here; caller-supplied values are ignored.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (*models.Snapshot, error) {
	if err := validateIngest(req); err != nil {
		return nil, err
	}

	rows := make([]models.SnapshotRow, len(req.Rows))
	for i, row := range req.Rows {
		row.Key = strings.TrimSpace(row.Key)
		row.Normalize()
		rows[i] = row
	}

	snap := &models.Snapshot{
		ID:          uuid.New().String(),
		PropertyURL: req.PropertyURL,
		Name:        req.Name,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Totals:      compare.Totals(rows),
		Rows:        rows,
		RowCount:    len(rows),
		CreatedAt:   time.Now(),
	}

	if err := s.store.InsertSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("failed to store snapshot: %w", err)
	}

	metrics.SnapshotsStored.Inc()
	return snap, nil
}

func validateIngest(req IngestRequest) error {
	if req.PropertyURL == "" {
		return fmt.Errorf("%w: propertyUrl is required", ErrInvalidSnapshot)
	}
	start, err := time.Parse(time.DateOnly, req.StartDate)
	if err != nil {
		return fmt.Errorf("%w: startDate: %v", ErrInvalidSnapshot, err)
	}
	end, err := time.Parse(time.DateOnly, req.EndDate)
	if err != nil {
		return fmt.Errorf("%w: endDate: %v", ErrInvalidSnapshot, err)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: endDate before startDate", ErrInvalidSnapshot)
	}

	for i, row := range req.Rows {
		if !row.Dimension.Valid() {
			return fmt.Errorf("%w: row %d: unknown dimension %q", ErrInvalidSnapshot, i, row.Dimension)
		}
		if row.Clicks < 0 || row.Impressions < 0 {
			return fmt.Errorf("%w: row %d: negative clicks or impressions", ErrInvalidSnapshot, i)
		}
		if row.Position < 0 || (row.Impressions > 0 && row.Position < 1) {
			return fmt.Errorf("%w: row %d: position must be at least 1, got %v", ErrInvalidSnapshot, i, row.Position)
		}
		if row.Dimension == models.DimensionQueryPage && row.PageURL == "" {
			return fmt.Errorf("%w: row %d: query_page row without pageUrl", ErrInvalidSnapshot, i)
		}
	}
	return nil
}

func (s *Service) GetSnapshot(ctx context.Context, id string) (*models.Snapshot, error) {
	return s.store.GetSnapshot(ctx, id)
}

func (s *Service) ListSnapshots(ctx context.Context, propertyURL string, limit int) ([]models.Snapshot, error) {
	return s.store.ListSnapshots(ctx, propertyURL, limit)
}

// DeleteSnapshot removes a snapshot and purges memoized results.
func (s *Service) DeleteSnapshot(ctx context.Context, id string) error {
	if err := s.store.DeleteSnapshot(ctx, id); err != nil {
		return err
	}
	if s.purger != nil {
		s.purger.Purge(ctx)
	}
	return nil
}

func (s *Service) History(ctx context.Context, limit int) ([]models.ComparisonRecord, error) {
	return s.store.GetComparisonHistory(ctx, limit)
}
