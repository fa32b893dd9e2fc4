package redis

import (
	"context"
	"net"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient connects to SEO_COMPARE_TEST_REDIS (host:port) or skips.
func newTestClient(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("SEO_COMPARE_TEST_REDIS")
	if addr == "" {
		t.Skip("SEO_COMPARE_TEST_REDIS not set")
	}

	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	client, err := NewClient(host, port, "", 15)
	require.NoError(t, err)
	t.Cleanup(func() {
		client.InvalidateComparisons(context.Background())
		client.Close()
	})
	return client
}

type payload struct {
	Key   string  `json:"key"`
	Score float64 `json:"score"`
}

func TestComparisonRoundTrip(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Ping(ctx))

	var got payload
	found, err := client.GetComparison(ctx, "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, client.SetComparison(ctx, "k1", payload{Key: "k1", Score: 0.5}, time.Minute))

	found, err = client.GetComparison(ctx, "k1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{Key: "k1", Score: 0.5}, got)

	require.NoError(t, client.InvalidateComparisons(ctx))
	found, err = client.GetComparison(ctx, "k1", &got)
	require.NoError(t, err)
	assert.False(t, found)
}
