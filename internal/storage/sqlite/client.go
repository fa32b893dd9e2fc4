package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/seo-compare/backend/internal/storage/models"
	"github.com/seo-compare/backend/pkg/logger"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

type Client struct {
	db *sql.DB
}

// NewClient opens the database. Pragmas go through the DSN so every pooled
// connection gets them.
func NewClient(dbPath string) (*Client, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		property_url TEXT NOT NULL,
		name TEXT,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		total_clicks INTEGER NOT NULL DEFAULT 0,
		total_impressions INTEGER NOT NULL DEFAULT 0,
		total_ctr REAL NOT NULL DEFAULT 0,
		total_position REAL NOT NULL DEFAULT 0,
		row_count INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_property ON snapshots(property_url);
	CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at);

	CREATE TABLE IF NOT EXISTS snapshot_rows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		snapshot_id TEXT NOT NULL,
		dimension TEXT NOT NULL,
		key TEXT NOT NULL,
		page_url TEXT,
		clicks INTEGER NOT NULL,
		impressions INTEGER NOT NULL,
		position REAL NOT NULL,
		FOREIGN KEY (snapshot_id) REFERENCES snapshots(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_rows_snapshot ON snapshot_rows(snapshot_id, dimension);

	CREATE TABLE IF NOT EXISTS comparison_history (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		snapshot_a TEXT NOT NULL,
		snapshot_b TEXT NOT NULL,
		params_hash TEXT NOT NULL,
		directory_depth INTEGER,
		min_similarity REAL,
		top_keywords_count INTEGER,
		result_count INTEGER NOT NULL,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_history_created ON comparison_history(created_at);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

// InsertSnapshot stores a snapshot and its rows in one transaction. Row CTR is not
// stored; it is recomputed on load.
func (c *Client) InsertSnapshot(ctx context.Context, snap *models.Snapshot) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, property_url, name, start_date, end_date, total_clicks,
			total_impressions, total_ctr, total_position, row_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		snap.ID,
		snap.PropertyURL,
		snap.Name,
		snap.StartDate,
		snap.EndDate,
		snap.Totals.Clicks,
		snap.Totals.Impressions,
		snap.Totals.CTR,
		snap.Totals.Position,
		len(snap.Rows),
		snap.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_rows (snapshot_id, dimension, key, page_url, clicks, impressions, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range snap.Rows {
		_, err = stmt.ExecContext(ctx, snap.ID, string(row.Dimension), row.Key, row.PageURL,
			row.Clicks, row.Impressions, row.Position)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	logger.Info("Snapshot stored",
		zap.String("snapshot_id", snap.ID),
		zap.String("property", snap.PropertyURL),
		zap.Int("rows", len(snap.Rows)),
	)
	return nil
}

const snapshotColumns = `id, property_url, name, start_date, end_date, total_clicks,
	total_impressions, total_ctr, total_position, row_count, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(s scanner) (*models.Snapshot, error) {
	var snap models.Snapshot
	var name sql.NullString
	var createdAt int64

	err := s.Scan(
		&snap.ID,
		&snap.PropertyURL,
		&name,
		&snap.StartDate,
		&snap.EndDate,
		&snap.Totals.Clicks,
		&snap.Totals.Impressions,
		&snap.Totals.CTR,
		&snap.Totals.Position,
		&snap.RowCount,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	snap.Name = name.String
	snap.CreatedAt = time.Unix(createdAt, 0)
	return &snap, nil
}

// GetSnapshot returns snapshot metadata without rows.
func (c *Client) GetSnapshot(ctx context.Context, id string) (*models.Snapshot, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+snapshotColumns+` FROM snapshots WHERE id = ?`, id)

	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return snap, nil
}

// ListSnapshots returns snapshots newest first. An empty property lists all.
func (c *Client) ListSnapshots(ctx context.Context, propertyURL string, limit int) ([]models.Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM snapshots`
	args := []any{}
	if propertyURL != "" {
		query += ` WHERE property_url = ?`
		args = append(args, propertyURL)
	}
	query += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, limit)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []models.Snapshot{}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		snapshots = append(snapshots, *snap)
	}

	return snapshots, rows.Err()
}

// GetSnapshotRows returns the rows of a snapshot in insertion order.
func (c *Client) GetSnapshotRows(ctx context.Context, id string) ([]models.SnapshotRow, error) {
	if _, err := c.GetSnapshot(ctx, id); err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT dimension, key, page_url, clicks, impressions, position
		FROM snapshot_rows
		WHERE snapshot_id = ?
		ORDER BY id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot rows: %w", err)
	}
	defer rows.Close()

	var out []models.SnapshotRow
	for rows.Next() {
		var r models.SnapshotRow
		var dimension string
		var pageURL sql.NullString

		err := rows.Scan(&dimension, &r.Key, &pageURL, &r.Clicks, &r.Impressions, &r.Position)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		r.Dimension = models.Dimension(dimension)
		r.PageURL = pageURL.String
		r.Normalize()
		out = append(out, r)
	}

	return out, rows.Err()
}

func (c *Client) DeleteSnapshot(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}

	logger.Info("Snapshot deleted", zap.String("snapshot_id", id))
	return nil
}

func (c *Client) InsertComparisonRecord(ctx context.Context, record *models.ComparisonRecord) error {
	query := `
		INSERT INTO comparison_history (id, kind, snapshot_a, snapshot_b, params_hash, directory_depth,
			min_similarity, top_keywords_count, result_count, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.ExecContext(ctx,
		query,
		record.ID,
		record.Kind,
		record.SnapshotA,
		record.SnapshotB,
		record.ParamsHash,
		record.DirectoryDepth,
		record.MinSimilarity,
		record.TopKeywordsCount,
		record.ResultCount,
		record.LatencyMS,
		record.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert comparison record: %w", err)
	}

	logger.Debug("Comparison recorded",
		zap.String("comparison_id", record.ID),
		zap.String("kind", record.Kind),
	)
	return nil
}

func (c *Client) GetComparisonHistory(ctx context.Context, limit int) ([]models.ComparisonRecord, error) {
	query := `
		SELECT id, kind, snapshot_a, snapshot_b, params_hash, directory_depth, min_similarity,
			top_keywords_count, result_count, latency_ms, created_at
		FROM comparison_history
		ORDER BY created_at DESC, id
		LIMIT ?
	`

	rows, err := c.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get comparison history: %w", err)
	}
	defer rows.Close()

	records := []models.ComparisonRecord{}
	for rows.Next() {
		var r models.ComparisonRecord
		var createdAt int64

		err := rows.Scan(&r.ID, &r.Kind, &r.SnapshotA, &r.SnapshotB, &r.ParamsHash, &r.DirectoryDepth,
			&r.MinSimilarity, &r.TopKeywordsCount, &r.ResultCount, &r.LatencyMS, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		r.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, r)
	}

	return records, rows.Err()
}
