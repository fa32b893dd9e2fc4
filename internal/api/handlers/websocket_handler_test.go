package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-compare/backend/internal/compare"
	"github.com/seo-compare/backend/internal/comparison"
)

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestSessionAccumulatesState(t *testing.T) {
	s := &wsSession{kind: comparison.KindDirectories, params: compare.DefaultParams()}

	require.NoError(t, s.apply(wsMessage{Type: "compare", SnapshotA: "a", SnapshotB: "b"}))
	assert.Equal(t, "a", s.snapshotA)
	assert.Equal(t, comparison.KindDirectories, s.kind)

	msg := wsMessage{Type: "params"}
	msg.DirectoryDepth = intPtr(2)
	msg.MinSimilarity = floatPtr(0.5)
	require.NoError(t, s.apply(msg))

	assert.Equal(t, 2, s.params.DirectoryDepth)
	assert.Equal(t, 0.5, s.params.MinSimilarity)
	assert.Equal(t, "b", s.snapshotB)
}

func TestSessionRejectsInvalidMessages(t *testing.T) {
	s := &wsSession{kind: comparison.KindDirectories, params: compare.DefaultParams(), snapshotA: "a"}

	assert.Error(t, s.apply(wsMessage{Type: "subscribe"}))
	assert.Error(t, s.apply(wsMessage{Type: "compare", Kind: "pages"}))

	bad := wsMessage{Type: "compare", SnapshotA: "z"}
	bad.MinSimilarity = floatPtr(0.33)
	assert.Error(t, s.apply(bad))
	assert.Equal(t, "a", s.snapshotA, "state unchanged after a rejected message")

	bad = wsMessage{Type: "params"}
	bad.DirectoryDepth = intPtr(0)
	assert.ErrorIs(t, s.apply(bad), compare.ErrInvalidParameter)
	assert.Equal(t, compare.DefaultDirectoryDepth, s.params.DirectoryDepth)
}
