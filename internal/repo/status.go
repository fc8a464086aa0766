package repo

import (
	"fmt"
	"sort"
	"strings"

	"gitshelf/internal/content"
)

// Status renders the five-section status report: branches, staged files,
// removed files, unstaged modifications, and untracked files.
func (r *Repository) Status() (string, error) {
	var buf strings.Builder

	branch, err := r.headBranch()
	if err != nil {
		return "", err
	}

	branches, err := r.refStore.ListBranches()
	if err != nil {
		return "", err
	}

	buf.WriteString("=== Branches ===\n")
	for _, b := range branches {
		if b == branch {
			buf.WriteString("*" + b + "\n")
		} else {
			buf.WriteString(b + "\n")
		}
	}
	buf.WriteString("\n")

	staged := sortedKeys(r.idx.Additions)
	buf.WriteString("=== Staged Files ===\n")
	for _, f := range staged {
		buf.WriteString(f + "\n")
	}
	buf.WriteString("\n")

	removed := sortedKeys(r.idx.Removals)
	buf.WriteString("=== Removed Files ===\n")
	for _, f := range removed {
		buf.WriteString(f + "\n")
	}
	buf.WriteString("\n")

	modified, err := r.unstagedModifications()
	if err != nil {
		return "", err
	}
	names := make([]string, 0, len(modified))
	for f := range modified {
		names = append(names, f)
	}
	sort.Strings(names)

	buf.WriteString("=== Modifications Not Staged For Commit ===\n")
	for _, f := range names {
		fmt.Fprintf(&buf, "%s (%s)\n", f, modified[f])
	}
	buf.WriteString("\n")

	untracked, err := r.untrackedFiles()
	if err != nil {
		return "", err
	}

	buf.WriteString("=== Untracked Files ===\n")
	for _, f := range untracked {
		buf.WriteString(f + "\n")
	}
	buf.WriteString("\n")

	return buf.String(), nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// unstagedModifications computes the "modified"/"deleted" section: a file
// is modified if it is tracked at a different hash (and not restaged at its
// current hash) or staged for addition at a different hash than its
// working-tree content; it is deleted if tracked and absent from the
// working directory and not staged for removal.
func (r *Repository) unstagedModifications() (map[string]string, error) {
	head, _, err := r.headCommit()
	if err != nil {
		return nil, err
	}

	working, err := r.ws.ListFiles()
	if err != nil {
		return nil, err
	}

	result := make(map[string]string)

	for _, f := range working {
		data, err := r.ws.Read(f)
		if err != nil {
			return nil, err
		}
		currentHash := content.Hash(data)

		if tracked, ok := head.BlobHash(f); ok {
			if _, staged := r.idx.Additions[f]; tracked != currentHash && !staged {
				result[f] = "modified"
			}
		}

		if stagedHash, ok := r.idx.Additions[f]; ok {
			if stagedHash != currentHash {
				result[f] = "modified"
			}
		}
	}

	for f := range head.BlobMap {
		if !r.ws.Exists(f) {
			if _, removed := r.idx.Removals[f]; !removed {
				result[f] = "deleted"
			}
		}
	}

	return result, nil
}

// untrackedFiles returns every working-directory file neither staged for
// addition nor tracked by head, in lexicographic order.
func (r *Repository) untrackedFiles() ([]string, error) {
	head, _, err := r.headCommit()
	if err != nil {
		return nil, err
	}

	working, err := r.ws.ListFiles()
	if err != nil {
		return nil, err
	}

	var result []string
	for _, f := range working {
		if _, staged := r.idx.Additions[f]; staged {
			continue
		}
		if head.Tracks(f) {
			continue
		}
		result = append(result, f)
	}
	sort.Strings(result)
	return result, nil
}
