package archive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/steamhw/pipeline/internal/storage/models"
	"github.com/steamhw/pipeline/pkg/config"
	"github.com/steamhw/pipeline/pkg/logger"
)

// ErrNoSnapshot means the availability API answered but holds no capture
// for the queried URL and timestamp.
var ErrNoSnapshot = errors.New("no archived snapshot")

type Client struct {
	http            *resty.Client
	availabilityURL string
}

type availabilityResponse struct {
	ArchivedSnapshots struct {
		Closest *struct {
			Available bool   `json:"available"`
			URL       string `json:"url"`
			Timestamp string `json:"timestamp"`
			Status    string `json:"status"`
		} `json:"closest"`
	} `json:"archived_snapshots"`
}

func NewClient(cfg config.ArchiveConfig) *Client {
	http := resty.New().
		SetTimeout(time.Duration(cfg.TimeoutSec) * time.Second).
		SetHeader("User-Agent", cfg.UserAgent)

	return &Client{
		http:            http,
		availabilityURL: cfg.AvailabilityURL,
	}
}

// ClosestSnapshot asks the availability API for the capture closest to
// the given 8-digit timestamp (YYYYMMDD).
func (c *Client) ClosestSnapshot(ctx context.Context, pageURL, timestamp string) (models.Snapshot, error) {
	var body availabilityResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"url":       pageURL,
			"timestamp": timestamp,
		}).
		SetResult(&body).
		ForceContentType("application/json").
		Get(c.availabilityURL)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("availability query: %w", err)
	}
	if resp.IsError() {
		return models.Snapshot{}, fmt.Errorf("availability query: status %d", resp.StatusCode())
	}

	closest := body.ArchivedSnapshots.Closest
	if closest == nil || closest.URL == "" {
		return models.Snapshot{}, ErrNoSnapshot
	}

	logger.Debug("availability answered",
		zap.String("query", timestamp),
		zap.String("snapshot", closest.Timestamp),
	)

	return models.Snapshot{
		URL:       closest.URL,
		Timestamp: closest.Timestamp,
	}, nil
}

// FetchPage downloads a page body as-is. Used for archived captures and
// for the live survey page.
func (c *Client) FetchPage(ctx context.Context, pageURL string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(pageURL)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode())
	}

	return resp.String(), nil
}
