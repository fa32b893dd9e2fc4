package validation

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(Middleware(Config{MaxSnapshotRows: 2}))
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }
	app.Post("/api/v1/comparisons/keywords", ok)
	app.Post("/api/v1/comparisons/directories", ok)
	app.Post("/api/v1/snapshots", ok)
	app.Get("/api/v1/comparisons/history", ok)
	return app
}

func post(t *testing.T, app *fiber.App, path, body string) int {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestComparisonParameters(t *testing.T) {
	app := newApp()
	path := "/api/v1/comparisons/directories"

	tests := []struct {
		name string
		body string
		want int
	}{
		{"defaults", `{"snapshotA":"a","snapshotB":"b"}`, fiber.StatusOK},
		{"full", `{"snapshotA":"a","snapshotB":"b","directoryDepth":2,"minSimilarity":0.45,"topKeywordsCount":30,"sortBy":"clicks"}`, fiber.StatusOK},
		{"path sort alias", `{"snapshotA":"a","snapshotB":"b","sortBy":"path"}`, fiber.StatusOK},
		{"missing snapshot", `{"snapshotA":"a"}`, fiber.StatusBadRequest},
		{"depth zero", `{"snapshotA":"a","snapshotB":"b","directoryDepth":0}`, fiber.StatusBadRequest},
		{"depth six", `{"snapshotA":"a","snapshotB":"b","directoryDepth":6}`, fiber.StatusBadRequest},
		{"fractional depth", `{"snapshotA":"a","snapshotB":"b","directoryDepth":2.5}`, fiber.StatusBadRequest},
		{"off grid similarity", `{"snapshotA":"a","snapshotB":"b","minSimilarity":0.33}`, fiber.StatusBadRequest},
		{"similarity above one", `{"snapshotA":"a","snapshotB":"b","minSimilarity":1.05}`, fiber.StatusBadRequest},
		{"top count", `{"snapshotA":"a","snapshotB":"b","topKeywordsCount":25}`, fiber.StatusBadRequest},
		{"unknown sort", `{"snapshotA":"a","snapshotB":"b","sortBy":"ctr"}`, fiber.StatusBadRequest},
		{"unknown filter", `{"snapshotA":"a","snapshotB":"b","statusFilter":"gone"}`, fiber.StatusBadRequest},
		{"bad json", `{`, fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, post(t, app, path, tt.body))
		})
	}
}

func TestSnapshotIngest(t *testing.T) {
	app := newApp()
	path := "/api/v1/snapshots"

	assert.Equal(t, fiber.StatusOK, post(t, app, path, `{"propertyUrl":"https://example.com/","rows":[]}`))
	assert.Equal(t, fiber.StatusOK, post(t, app, path, `{"propertyUrl":"sc-domain:example.com","rows":[]}`))
	assert.Equal(t, fiber.StatusBadRequest, post(t, app, path, `{"propertyUrl":"ftp://example.com","rows":[]}`))
	assert.Equal(t, fiber.StatusBadRequest, post(t, app, path, `{"rows":[]}`))
	assert.Equal(t, fiber.StatusBadRequest, post(t, app, path, `{"propertyUrl":"https://example.com/"}`))
	assert.Equal(t, fiber.StatusBadRequest, post(t, app, path, `{"propertyUrl":"https://example.com/","name":"<script>x</script>","rows":[]}`))
	assert.Equal(t, fiber.StatusRequestEntityTooLarge, post(t, app, path, `{"propertyUrl":"https://example.com/","rows":[{},{},{}]}`))
}

func TestContentType(t *testing.T) {
	app := newApp()
	req := httptest.NewRequest("POST", "/api/v1/snapshots", strings.NewReader("x"))
	req.Header.Set("Content-Type", "text/plain")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestHistoryLimit(t *testing.T) {
	app := newApp()
	for limit, want := range map[string]int{
		"10":   fiber.StatusOK,
		"0":    fiber.StatusBadRequest,
		"abc":  fiber.StatusBadRequest,
		"5000": fiber.StatusBadRequest,
	} {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/comparisons/history?limit="+limit, nil))
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, limit)
	}
}
