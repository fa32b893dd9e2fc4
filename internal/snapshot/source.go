// Package snapshot loads the two sides of a comparison.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seo-compare/backend/internal/metrics"
	"github.com/seo-compare/backend/internal/storage/models"
	"github.com/seo-compare/backend/internal/storage/sqlite"
	"github.com/seo-compare/backend/pkg/circuitbreaker"
	"github.com/seo-compare/backend/pkg/logger"
	"github.com/seo-compare/backend/pkg/retry"
)

// Store is the read side of snapshot persistence. *sqlite.Client satisfies it.
type Store interface {
	GetSnapshot(ctx context.Context, id string) (*models.Snapshot, error)
	GetSnapshotRows(ctx context.Context, id string) ([]models.SnapshotRow, error)
}

type Config struct {
	Timeout          time.Duration
	MaxAttempts      int
	FailureThreshold uint32
	// FailureWindow is how long closed-state failure counts live before they reset.
	FailureWindow time.Duration
}

type Source struct {
	store       Store
	timeout     time.Duration
	retryConfig retry.Config
	cb          *circuitbreaker.CircuitBreaker
}

// Fetched is one side of a pair. Err records why Rows is empty, if it is.
type Fetched struct {
	ID       string
	Snapshot *models.Snapshot
	Rows     []models.SnapshotRow
	Err      error
}

func (f Fetched) OK() bool { return f.Err == nil && len(f.Rows) > 0 }

type Pair struct {
	A Fetched
	B Fetched
}

func NewSource(store Store, cfg Config) *Source {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}

	if cfg.FailureWindow == 0 {
		cfg.FailureWindow = time.Minute
	}

	countsAsFailure := func(err error) bool {
		return err != nil && !errors.Is(err, sqlite.ErrSnapshotNotFound)
	}

	retryConfig := retry.DefaultConfig()
	retryConfig.MaxAttempts = cfg.MaxAttempts
	retryConfig.InitialDelay = 50 * time.Millisecond
	retryConfig.MaxDelay = time.Second
	retryConfig.Logger = logger.GetLogger()

	return &Source{
		store:       store,
		timeout:     cfg.Timeout,
		retryConfig: retryConfig,
		cb: circuitbreaker.NewCircuitBreaker("snapshot-store", circuitbreaker.Config{
			MaxRequests:      2,
			Interval:         cfg.FailureWindow,
			Timeout:          10 * time.Second,
			FailureThreshold: cfg.FailureThreshold,
			SuccessThreshold: 1,
			IsFailure:        countsAsFailure,
			Logger:           logger.GetLogger(),
		}),
	}
}

// FetchPair loads both snapshots concurrently. It never fails: a side that cannot be
// loaded comes back with empty rows and its error recorded, so the comparison still
// runs on whatever data exists.
func (s *Source) FetchPair(ctx context.Context, idA, idB string) Pair {
	pair := Pair{A: Fetched{ID: idA}, B: Fetched{ID: idB}}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pair.A = s.fetch(gctx, idA)
		return nil
	})
	g.Go(func() error {
		pair.B = s.fetch(gctx, idB)
		return nil
	})
	_ = g.Wait()

	return pair
}

func (s *Source) fetch(ctx context.Context, id string) Fetched {
	out := Fetched{ID: id}
	if id == "" {
		out.Err = fmt.Errorf("%w: empty id", sqlite.ErrSnapshotNotFound)
		metrics.SnapshotFetches.WithLabelValues("missing").Inc()
		return out
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	loaded, err := retry.DoWithResult(ctx, s.retryConfig, func() (Fetched, error) {
		var got Fetched
		err := s.cb.Execute(ctx, func() error {
			snap, err := s.store.GetSnapshot(ctx, id)
			if err != nil {
				return classify(err)
			}
			rows, err := s.store.GetSnapshotRows(ctx, id)
			if err != nil {
				return classify(err)
			}
			got.Snapshot = snap
			got.Rows = rows
			return nil
		})
		return got, err
	})
	if err == nil {
		out.Snapshot = loaded.Snapshot
		out.Rows = loaded.Rows
	}

	switch {
	case err != nil:
		out.Err = err
		metrics.SnapshotFetches.WithLabelValues("failed").Inc()
		logger.Warn("Snapshot fetch failed, comparing against empty data",
			zap.String("snapshot_id", id),
			zap.Error(err),
		)
	case len(out.Rows) == 0:
		metrics.SnapshotFetches.WithLabelValues("empty").Inc()
		logger.Warn("Snapshot has no rows", zap.String("snapshot_id", id))
	default:
		metrics.SnapshotFetches.WithLabelValues("ok").Inc()
	}

	return out
}

func classify(err error) error {
	if errors.Is(err, sqlite.ErrSnapshotNotFound) {
		return retry.Permanent(err)
	}
	return err
}

func (s *Source) BreakerState() circuitbreaker.State {
	return s.cb.State()
}
