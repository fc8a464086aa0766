// Package workspace is the working-directory reconciler: it safely projects
// a target commit's blob map onto the working directory, refusing to
// destroy untracked files, and exposes the small set of plain file-I/O
// helpers the rest of the repository needs against the same root.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"gitshelf/internal/vcserr"
)

// Workspace is the working directory rooted at Root (the directory
// containing .store).
type Workspace struct {
	Root   string
	Logger *zap.Logger
}

// New returns a Workspace rooted at root.
func New(root string, logger *zap.Logger) *Workspace {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workspace{Root: root, Logger: logger}
}

// FindRoot searches upward from startDir for a directory containing
// storeName (".store"), the way git walks up for ".git".
func FindRoot(startDir, storeName string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, storeName)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", vcserr.ErrNotInitialized
		}
		dir = parent
	}
}

func (w *Workspace) abs(filename string) string {
	return filepath.Join(w.Root, filename)
}

// Exists reports whether filename is present in the working directory as a
// plain file.
func (w *Workspace) Exists(filename string) bool {
	info, err := os.Stat(w.abs(filename))
	return err == nil && !info.IsDir()
}

// Read returns filename's contents.
func (w *Workspace) Read(filename string) ([]byte, error) {
	return os.ReadFile(w.abs(filename))
}

// Write overwrites filename with content, creating it if necessary.
func (w *Workspace) Write(filename string, content []byte) error {
	return os.WriteFile(w.abs(filename), content, 0644)
}

// Delete removes filename if it is a plain file; deleting an absent file is
// not an error.
func (w *Workspace) Delete(filename string) error {
	if !w.Exists(filename) {
		return nil
	}
	return os.Remove(w.abs(filename))
}

// storePrefix is compared against every top-level entry so the reconciler
// and untracked-file scan never touch the repository's own metadata
// directory.
const storePrefix = ".store"

// ListFiles returns every plain file in the working directory, relative to
// Root, excluding the .store directory itself. Ordering is lexicographic.
func (w *Workspace) ListFiles() ([]string, error) {
	var files []string

	err := filepath.WalkDir(w.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(w.Root, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		if rel == storePrefix || strings.HasPrefix(rel, storePrefix+string(filepath.Separator)) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing working directory: %w", err)
	}

	sort.Strings(files)
	return files, nil
}

// BlobGetter reads blob content by hash, backing Reconcile's restore step.
type BlobGetter interface {
	GetBlob(hash string) ([]byte, error)
}

// Reconcile safely transitions the working directory from oldFiles (the
// blob map of the commit currently checked out) to newFiles (the blob map
// of the target commit). It refuses to clobber any untracked file that
// would be overwritten, deletes files no longer tracked, and restores every
// file the target tracks. The safety check runs before any mutation.
func Reconcile(w *Workspace, oldFiles, newFiles map[string]string, blobs BlobGetter) error {
	working, err := w.ListFiles()
	if err != nil {
		return err
	}

	for _, f := range working {
		if _, tracked := oldFiles[f]; tracked {
			continue
		}
		if _, willBeTracked := newFiles[f]; willBeTracked {
			return vcserr.ErrUntrackedWouldBeOverwritten
		}
	}

	for f := range oldFiles {
		if _, stillTracked := newFiles[f]; stillTracked {
			continue
		}
		if err := w.Delete(f); err != nil {
			w.Logger.Warn("failed to delete de-tracked file", zap.String("file", f), zap.Error(err))
			return fmt.Errorf("deleting %s: %w", f, err)
		}
	}

	for f, hash := range newFiles {
		content, err := blobs.GetBlob(hash)
		if err != nil {
			return fmt.Errorf("reading blob for %s: %w", f, err)
		}
		if err := w.Write(f, content); err != nil {
			return fmt.Errorf("restoring %s: %w", f, err)
		}
	}

	return nil
}
