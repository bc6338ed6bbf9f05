package archive

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/steamhw/pipeline/pkg/config"
)

func newTestClient(availabilityURL string) *Client {
	return NewClient(config.ArchiveConfig{
		AvailabilityURL: availabilityURL,
		UserAgent:       "steamhw-test",
		TimeoutSec:      5,
	})
}

func TestClosestSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "https://store.steampowered.com/hwsurvey", r.URL.Query().Get("url"))
		require.Equal(t, "20120515", r.URL.Query().Get("timestamp"))
		_, _ = io.WriteString(w, `{"archived_snapshots":{"closest":{"available":true,"url":"http://web.archive.org/web/20120514221100/hwsurvey","timestamp":"20120514221100","status":"200"}}}`)
	}))
	defer srv.Close()

	snap, err := newTestClient(srv.URL).ClosestSnapshot(
		context.Background(), "https://store.steampowered.com/hwsurvey", "20120515")
	require.NoError(t, err)
	require.Equal(t, "20120514221100", snap.Timestamp)
	require.Equal(t, "http://web.archive.org/web/20120514221100/hwsurvey", snap.URL)
}

func TestClosestSnapshotMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"archived_snapshots":{}}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).ClosestSnapshot(context.Background(), "http://example.org", "20040115")
	require.True(t, errors.Is(err, ErrNoSnapshot))
}

func TestClosestSnapshotServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).ClosestSnapshot(context.Background(), "http://example.org", "20040115")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrNoSnapshot))
}

func TestFetchPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>survey</html>")
	}))
	defer srv.Close()

	body, err := newTestClient("http://unused").FetchPage(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "<html>survey</html>", body)
}
