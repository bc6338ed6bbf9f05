package models

import "time"

// SnapshotRecord is one row of a per-platform catalog. A record with an
// empty ArchiveURL marks a month for which the archive holds no capture
// inside the month; keeping the miss lets re-runs skip the query.
type SnapshotRecord struct {
	DateCode   string // YYYYMM
	ArchiveURL string
	FileName   string // <14-digit timestamp>.txt in the HTML cache
}

// Snapshot is a capture reported by the availability API.
type Snapshot struct {
	URL       string
	Timestamp string // 14-digit format: YYYYMMDDhhmmss
}

// Extraction is the parsed content of a single snapshot: category name
// to label to value.
type Extraction struct {
	DateCode   string                        `json:"date_code"`
	Categories map[string]map[string]float64 `json:"categories"`
}

// Observation is one row of the final long-form dataset, unique on
// (Date, Platform, Category, Label).
type Observation struct {
	Date     time.Time
	Platform string
	Category string
	Label    string
	Value    float64
}
