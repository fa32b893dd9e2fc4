// Package cache memoizes comparison results in process and, when configured, in redis.
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/seo-compare/backend/internal/compare"
	"github.com/seo-compare/backend/internal/metrics"
	"github.com/seo-compare/backend/pkg/circuitbreaker"
	"github.com/seo-compare/backend/pkg/logger"
)

// Remote is the shared cache tier. *redis.Client satisfies it.
type Remote interface {
	GetComparison(ctx context.Context, key string, result interface{}) (bool, error)
	SetComparison(ctx context.Context, key string, result interface{}, ttl time.Duration) error
	InvalidateComparisons(ctx context.Context) error
}

type Memo struct {
	local   *expirable.LRU[string, *compare.Result]
	remote  Remote
	ttl     time.Duration
	breaker *circuitbreaker.CircuitBreaker
}

// NewMemo builds a two-tier memo. remote may be nil.
func NewMemo(size int, ttl time.Duration, remote Remote) *Memo {
	if size <= 0 {
		size = 256
	}

	return &Memo{
		local:  expirable.NewLRU[string, *compare.Result](size, nil, ttl),
		remote: remote,
		ttl:    ttl,
		breaker: circuitbreaker.NewCircuitBreaker("redis", circuitbreaker.Config{
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
			FailureThreshold: 3,
			SuccessThreshold: 1,
			Logger:           logger.GetLogger(),
		}),
	}
}

func (m *Memo) Get(ctx context.Context, key string) (*compare.Result, bool) {
	if result, ok := m.local.Get(key); ok {
		metrics.CacheHits.WithLabelValues("lru").Inc()
		return result, true
	}
	metrics.CacheMisses.WithLabelValues("lru").Inc()

	if m.remote == nil {
		return nil, false
	}

	var result compare.Result
	var found bool
	err := m.breaker.Execute(ctx, func() error {
		var err error
		found, err = m.remote.GetComparison(ctx, key, &result)
		return err
	})
	if err != nil {
		logger.Warn("Remote cache lookup failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !found {
		metrics.CacheMisses.WithLabelValues("redis").Inc()
		return nil, false
	}

	metrics.CacheHits.WithLabelValues("redis").Inc()
	m.local.Add(key, &result)
	return &result, true
}

func (m *Memo) Set(ctx context.Context, key string, result *compare.Result) {
	m.local.Add(key, result)

	if m.remote == nil {
		return
	}

	err := m.breaker.Execute(ctx, func() error {
		return m.remote.SetComparison(ctx, key, result, m.ttl)
	})
	if err != nil {
		logger.Warn("Remote cache store failed", zap.String("key", key), zap.Error(err))
	}
}

// Purge drops every memoized result in both tiers.
func (m *Memo) Purge(ctx context.Context) {
	m.local.Purge()
	if m.remote == nil {
		return
	}
	if err := m.remote.InvalidateComparisons(ctx); err != nil {
		logger.Warn("Remote cache purge failed", zap.Error(err))
	}
}

func (m *Memo) Len() int {
	return m.local.Len()
}

func (m *Memo) BreakerState() circuitbreaker.State {
	return m.breaker.State()
}
