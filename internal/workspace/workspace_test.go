package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBlobs is an in-memory BlobGetter for reconcile tests.
type fakeBlobs map[string][]byte

func (f fakeBlobs) GetBlob(hash string) ([]byte, error) {
	return f[hash], nil
}

func TestFindRootWalksUpward(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".store"), 0755))

	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0755))

	found, err := FindRoot(nested, ".store")
	require.NoError(t, err)
	resolvedRoot, _ := filepath.EvalSymlinks(root)
	resolvedFound, _ := filepath.EvalSymlinks(found)
	assert.Equal(t, resolvedRoot, resolvedFound)
}

func TestFindRootNotInitialized(t *testing.T) {
	root := t.TempDir()
	_, err := FindRoot(root, ".store")
	assert.Error(t, err)
}

func TestListFilesExcludesStoreDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".store", "objects"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".store", "objects", "deadbeef"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.txt"), []byte("world"), 0644))

	w := New(root, nil)
	files, err := w.ListFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", filepath.Join("sub", "b.txt")}, files)
}

func TestReconcileRefusesToClobberUntrackedFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".store"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "untracked.txt"), []byte("mine"), 0644))

	w := New(root, nil)
	oldFiles := map[string]string{}
	newFiles := map[string]string{"untracked.txt": "somehash"}

	err := Reconcile(w, oldFiles, newFiles, fakeBlobs{})
	assert.Error(t, err)

	got, readErr := os.ReadFile(filepath.Join(root, "untracked.txt"))
	require.NoError(t, readErr)
	assert.Equal(t, "mine", string(got), "the untracked file must be left untouched")
}

func TestReconcileDeletesDeTrackedAndRestoresNewFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".store"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "old.txt"), []byte("old content"), 0644))

	w := New(root, nil)
	oldFiles := map[string]string{"old.txt": "oldhash"}
	newFiles := map[string]string{"new.txt": "newhash"}
	blobs := fakeBlobs{"newhash": []byte("new content")}

	require.NoError(t, Reconcile(w, oldFiles, newFiles, blobs))

	assert.False(t, w.Exists("old.txt"), "de-tracked file must be removed")
	got, err := os.ReadFile(filepath.Join(root, "new.txt"))
	require.NoError(t, err)
	assert.Equal(t, "new content", string(got))
}
