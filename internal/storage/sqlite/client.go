package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/steamhw/pipeline/internal/storage/models"
	"github.com/steamhw/pipeline/pkg/logger"
)

const dateLayout = "2006-01-02"

// Client stores the consolidated dataset in a queryable form alongside
// the CSV exports.
type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("sqlite store opened", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS observations (
		date TEXT NOT NULL,
		platform TEXT NOT NULL,
		category TEXT NOT NULL,
		label TEXT NOT NULL,
		value REAL NOT NULL,
		PRIMARY KEY (date, platform, category, label)
	);
	CREATE INDEX IF NOT EXISTS idx_observations_platform ON observations(platform);
	CREATE INDEX IF NOT EXISTS idx_observations_category ON observations(category);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// UpsertObservations writes rows in one transaction; re-running on the
// same table leaves the store unchanged.
func (c *Client) UpsertObservations(observations []models.Observation) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO observations (date, platform, category, label, value)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, obs := range observations {
		_, err := stmt.Exec(obs.Date.Format(dateLayout), obs.Platform, obs.Category, obs.Label, obs.Value)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert observation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	logger.Info("sqlite store updated", zap.Int("rows", len(observations)))
	return nil
}

// Observations returns rows for one platform, or all rows when platform
// is empty, in key order.
func (c *Client) Observations(platform string) ([]models.Observation, error) {
	query := `
		SELECT date, platform, category, label, value FROM observations
		ORDER BY date, platform, category, label
	`
	args := []any{}
	if platform != "" {
		query = `
			SELECT date, platform, category, label, value FROM observations
			WHERE platform = ?
			ORDER BY date, platform, category, label
		`
		args = append(args, platform)
	}

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer rows.Close()

	var out []models.Observation
	for rows.Next() {
		var obs models.Observation
		var date string
		if err := rows.Scan(&date, &obs.Platform, &obs.Category, &obs.Label, &obs.Value); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		obs.Date, err = parseDate(date)
		if err != nil {
			return nil, err
		}
		out = append(out, obs)
	}
	return out, rows.Err()
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q in store: %w", s, err)
	}
	return t, nil
}
