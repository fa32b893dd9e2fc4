package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-compare/backend/internal/compare"
	"github.com/seo-compare/backend/pkg/circuitbreaker"
)

type fakeRemote struct {
	data        map[string][]byte
	err         error
	gets        int
	invalidated bool
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{data: make(map[string][]byte)}
}

func (f *fakeRemote) GetComparison(_ context.Context, key string, result interface{}) (bool, error) {
	f.gets++
	if f.err != nil {
		return false, f.err
	}
	data, ok := f.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, result)
}

func (f *fakeRemote) SetComparison(_ context.Context, key string, result interface{}, _ time.Duration) error {
	if f.err != nil {
		return f.err
	}
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	f.data[key] = data
	return nil
}

func (f *fakeRemote) InvalidateComparisons(context.Context) error {
	f.invalidated = true
	f.data = make(map[string][]byte)
	return nil
}

func sampleResult(key string) *compare.Result {
	return &compare.Result{
		Key: key,
		Keywords: []compare.KeywordComparison{
			{Keyword: "hypothek", Status: compare.StatusMissingInB, ClicksA: 50, ClicksDiff: 50},
		},
		Directories: []compare.DirectoryComparison{
			{PathA: "/mortgages", PathB: "/hypotheken", SimilarityScore: 0.5, CommonKeywords: []string{"b", "c"}},
		},
	}
}

func TestMemoLocalOnly(t *testing.T) {
	memo := NewMemo(4, time.Minute, nil)
	ctx := context.Background()

	_, ok := memo.Get(ctx, "k")
	assert.False(t, ok)

	result := sampleResult("k")
	memo.Set(ctx, "k", result)

	got, ok := memo.Get(ctx, "k")
	require.True(t, ok)
	assert.Same(t, result, got)
	assert.Equal(t, 1, memo.Len())

	memo.Purge(ctx)
	assert.Zero(t, memo.Len())
}

func TestMemoFallsBackToRemote(t *testing.T) {
	remote := newFakeRemote()
	ctx := context.Background()

	writer := NewMemo(4, time.Minute, remote)
	writer.Set(ctx, "k", sampleResult("k"))

	reader := NewMemo(4, time.Minute, remote)
	got, ok := reader.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, sampleResult("k"), got)

	_, ok = reader.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, 1, remote.gets, "second lookup should be served locally")

	reader.Purge(ctx)
	assert.True(t, remote.invalidated)
}

func TestMemoDegradesWhenRemoteFails(t *testing.T) {
	remote := newFakeRemote()
	remote.err = errors.New("connection refused")
	memo := NewMemo(4, time.Minute, remote)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, ok := memo.Get(ctx, "missing")
		assert.False(t, ok)
	}
	assert.Equal(t, circuitbreaker.StateOpen, memo.BreakerState())
	assert.Equal(t, 3, remote.gets)

	memo.Set(ctx, "k", sampleResult("k"))
	got, ok := memo.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "k", got.Key)
}
