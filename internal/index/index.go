// Package index is the staging area: two ordered maps (additions, removals)
// persisted as a single object, plus the stage/remove operations that
// mutate them against the working directory and head snapshot.
package index

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"gitshelf/internal/vcserr"
)

// Entry is one deterministic iteration step over a staged index: either an
// addition or a removal.
type Entry struct {
	Filename string
	Hash     string
	Kind     Kind
}

// Kind distinguishes an addition entry from a removal entry.
type Kind string

const (
	KindAdd Kind = "add"
	KindRm  Kind = "rm"
)

// Index is the two-set staging area. Additions maps filename to the blob
// hash to record at the next commit; Removals maps filename to the blob
// hash it carried when staged for removal.
type Index struct {
	Additions map[string]string `json:"additions"`
	Removals  map[string]string `json:"removals"`
}

// New returns an empty index.
func New() *Index {
	return &Index{Additions: map[string]string{}, Removals: map[string]string{}}
}

// Deps is what the index needs from the surrounding repository to stage and
// unstage files: head-commit lookups, working-directory I/O, and blob
// storage. internal/repo supplies the concrete implementation.
type Deps interface {
	HeadBlobHash(filename string) (string, bool)
	WorkingFileExists(filename string) bool
	ReadWorkingFile(filename string) ([]byte, error)
	DeleteWorkingFile(filename string) error
	PutBlob(content []byte) (string, error)
}

// Load reads the index object from path. A missing file yields an empty
// index, matching the spec's "created on first staging action" lifecycle.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("reading index: %w", err)
	}

	idx := New()
	if err := json.Unmarshal(data, idx); err != nil {
		return nil, fmt.Errorf("parsing index: %w", err)
	}
	if idx.Additions == nil {
		idx.Additions = map[string]string{}
	}
	if idx.Removals == nil {
		idx.Removals = map[string]string{}
	}
	return idx, nil
}

// Save persists the index object to path.
func (idx *Index) Save(path string) error {
	data, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("serializing index: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Clear empties both sets, as happens after every successful
// commit/merge/switch/reset.
func (idx *Index) Clear() {
	idx.Additions = map[string]string{}
	idx.Removals = map[string]string{}
}

// HasChanges reports whether there is anything staged.
func (idx *Index) HasChanges() bool {
	return len(idx.Additions) > 0 || len(idx.Removals) > 0
}

// Iterate yields every staged entry, additions first (lexicographic), then
// removals (lexicographic).
func (idx *Index) Iterate() []Entry {
	entries := make([]Entry, 0, len(idx.Additions)+len(idx.Removals))

	addNames := make([]string, 0, len(idx.Additions))
	for f := range idx.Additions {
		addNames = append(addNames, f)
	}
	sort.Strings(addNames)
	for _, f := range addNames {
		entries = append(entries, Entry{Filename: f, Hash: idx.Additions[f], Kind: KindAdd})
	}

	rmNames := make([]string, 0, len(idx.Removals))
	for f := range idx.Removals {
		rmNames = append(rmNames, f)
	}
	sort.Strings(rmNames)
	for _, f := range rmNames {
		entries = append(entries, Entry{Filename: f, Hash: idx.Removals[f], Kind: KindRm})
	}

	return entries
}

// Stage implements the `add` command's core logic.
func (idx *Index) Stage(filename string, deps Deps) error {
	if _, removed := idx.Removals[filename]; removed {
		delete(idx.Removals, filename)
		return nil
	}

	if !deps.WorkingFileExists(filename) {
		return vcserr.ErrFileDoesNotExist
	}

	content, err := deps.ReadWorkingFile(filename)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filename, err)
	}

	hash, err := deps.PutBlob(content)
	if err != nil {
		return fmt.Errorf("storing blob for %s: %w", filename, err)
	}

	if tracked, ok := deps.HeadBlobHash(filename); ok && tracked == hash {
		delete(idx.Additions, filename)
		return nil
	}

	idx.Additions[filename] = hash
	return nil
}

// UnstageOrMarkRemoved implements the `rm` command's core logic.
func (idx *Index) UnstageOrMarkRemoved(filename string, deps Deps) error {
	tracked, isTracked := deps.HeadBlobHash(filename)
	_, isStaged := idx.Additions[filename]
	_, isRemoved := idx.Removals[filename]

	if (!isTracked || isRemoved) && !isStaged {
		return vcserr.ErrNoReasonToRemove
	}

	delete(idx.Additions, filename)

	if isTracked {
		if deps.WorkingFileExists(filename) {
			if err := deps.DeleteWorkingFile(filename); err != nil {
				return fmt.Errorf("deleting %s: %w", filename, err)
			}
		}
		idx.Removals[filename] = tracked
	}

	return nil
}
