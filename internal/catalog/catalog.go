package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/steamhw/pipeline/internal/storage/models"
)

var header = []string{"date_code", "archive_url", "file_name"}

// Path returns the catalog file location for a platform subset.
func Path(outputDir, subset string) string {
	return filepath.Join(outputDir, fmt.Sprintf("metadata_%s.csv", subset))
}

// Catalog is the append-only, per-platform snapshot index. One row per
// month; rows are never rewritten.
type Catalog struct {
	path string
	rows []models.SnapshotRecord
	seen map[string]struct{}
}

// Open reads an existing catalog, failing when the file is missing.
// Later stages use it so a skipped metadata stage aborts with a clear
// message instead of an empty run.
func Open(path string) (*Catalog, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s not found, run the metadata stage for this subset first", path)
	}
	return Load(path)
}

// Load reads an existing catalog, creating an empty one (header only)
// when the file does not exist.
func Load(path string) (*Catalog, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("catalog: create dir: %w", err)
		}
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("catalog: create %q: %w", path, err)
		}
		w := csv.NewWriter(f)
		if err := w.Write(header); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("catalog: write header: %w", err)
		}
		w.Flush()
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("catalog: close %q: %w", path, err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("catalog: read %q: %w", path, err)
	}

	c := &Catalog{
		path: path,
		seen: make(map[string]struct{}),
	}
	for i, rec := range records {
		if i == 0 {
			continue // header
		}
		row := models.SnapshotRecord{
			DateCode:   rec[0],
			ArchiveURL: rec[1],
			FileName:   rec[2],
		}
		c.rows = append(c.rows, row)
		c.seen[row.DateCode] = struct{}{}
	}

	return c, nil
}

func (c *Catalog) Has(dateCode string) bool {
	_, ok := c.seen[dateCode]
	return ok
}

// Rows returns the catalog in file order.
func (c *Catalog) Rows() []models.SnapshotRecord {
	return c.rows
}

// Append writes a record to the catalog file and the in-memory index.
func (c *Catalog) Append(rec models.SnapshotRecord) error {
	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("catalog: open for append: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{rec.DateCode, rec.ArchiveURL, rec.FileName}); err != nil {
		return fmt.Errorf("catalog: append row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("catalog: flush: %w", err)
	}

	c.rows = append(c.rows, rec)
	c.seen[rec.DateCode] = struct{}{}
	return nil
}
