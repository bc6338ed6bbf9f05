package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/steamhw/pipeline/internal/storage/models"
)

func TestLoadCreatesEmptyCatalog(t *testing.T) {
	path := Path(t.TempDir(), "pc")

	cat, err := Load(path)
	require.NoError(t, err)
	require.Empty(t, cat.Rows())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "date_code,archive_url,file_name\n", string(data))
}

func TestAppendAndReload(t *testing.T) {
	path := Path(t.TempDir(), "mac")

	cat, err := Load(path)
	require.NoError(t, err)

	hit := models.SnapshotRecord{
		DateCode:   "201003",
		ArchiveURL: "http://web.archive.org/web/20100315120000/https://store.steampowered.com/hwsurvey?platform=mac",
		FileName:   "20100315120000.txt",
	}
	miss := models.SnapshotRecord{DateCode: "201004"}

	require.NoError(t, cat.Append(hit))
	require.NoError(t, cat.Append(miss))
	require.True(t, cat.Has("201003"))
	require.True(t, cat.Has("201004"))
	require.False(t, cat.Has("201005"))

	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []models.SnapshotRecord{hit, miss}, reloaded.Rows())
	require.True(t, reloaded.Has("201004"))
}

func TestOpenMissingCatalog(t *testing.T) {
	_, err := Open(Path(t.TempDir(), "pc"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "run the metadata stage")
}

func TestPath(t *testing.T) {
	require.Equal(t, filepath.Join("out", "metadata_linux.csv"), Path("out", "linux"))
}
