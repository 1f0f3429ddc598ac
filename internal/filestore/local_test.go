package filestore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sumayyafazalhussain/humanoid-book/internal/config"
)

func TestLocalStoreListAndOpen(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ch1.md"), []byte("# one"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ch2.markdown"), []byte("# two"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	store, err := createLocalStore(map[string]interface{}{"dir": dir})
	require.NoError(t, err)

	keys, err := store.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"ch1.md", "ch2.markdown"}, keys)

	reader, err := store.Open(context.Background(), "ch1.md")
	require.NoError(t, err)
	defer reader.Close()
	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.Equal(t, "# one", string(content))
}

func TestLocalStoreRejectsPathTraversal(t *testing.T) {
	store, err := createLocalStore(map[string]interface{}{"dir": t.TempDir()})
	require.NoError(t, err)

	_, err = store.Open(context.Background(), "../etc/passwd")
	require.Error(t, err)
}

func TestLocalStoreRequiresDir(t *testing.T) {
	_, err := createLocalStore(map[string]interface{}{})
	require.Error(t, err)
}

func TestNewUnsupportedType(t *testing.T) {
	_, err := New(config.CorpusStoreConfig{Type: "ftp"})
	require.Error(t, err)
}
