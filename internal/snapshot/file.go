package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/seo-compare/backend/internal/storage/models"
)

// ReadFile loads rows from a JSON file holding either a bare row array or a
// snapshot object with a "rows" field. CTR is recomputed on every row.
func ReadFile(path string) (*models.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	snap := &models.Snapshot{ID: path}
	trimmed := bytes.TrimSpace(data)

	switch {
	case len(trimmed) == 0:
	case trimmed[0] == '[':
		if err := json.Unmarshal(trimmed, &snap.Rows); err != nil {
			return nil, fmt.Errorf("failed to decode rows in %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(trimmed, snap); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot in %s: %w", path, err)
		}
		if snap.ID == "" {
			snap.ID = path
		}
	}

	for i := range snap.Rows {
		if !snap.Rows[i].Dimension.Valid() {
			return nil, fmt.Errorf("%s: row %d: unknown dimension %q", path, i, snap.Rows[i].Dimension)
		}
		snap.Rows[i].Normalize()
	}
	snap.RowCount = len(snap.Rows)

	return snap, nil
}
