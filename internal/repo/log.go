package repo

import (
	"sort"
	"strings"

	"gitshelf/internal/commit"
	"gitshelf/internal/diff"
	"gitshelf/internal/vcserr"
)

// Log walks the first-parent chain from head, returning each commit's
// display form in order.
func (r *Repository) Log() (string, error) {
	head, hash, err := r.headCommit()
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	current, currentHash := head, hash
	for {
		buf.WriteString(commit.Display(currentHash, current))
		if current.Parent == "" {
			break
		}
		parent, err := r.GetCommit(current.Parent)
		if err != nil {
			return "", err
		}
		currentHash = current.Parent
		current = parent
	}
	return buf.String(), nil
}

// GlobalLog prints every commit in the store in filesystem-listing order.
func (r *Repository) GlobalLog() (string, error) {
	hashes, err := r.commits.List()
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	for _, hash := range hashes {
		c, err := r.GetCommit(hash)
		if err != nil {
			return "", err
		}
		buf.WriteString(commit.Display(hash, c))
	}
	return buf.String(), nil
}

// Find prints every commit hash whose message equals message.
func (r *Repository) Find(message string) (string, error) {
	hashes, err := r.commitIdx.Find(message)
	if err != nil {
		return "", err
	}
	if len(hashes) == 0 {
		return "", vcserr.ErrNoCommitWithMessage
	}

	sort.Strings(hashes)

	var buf strings.Builder
	for _, h := range hashes {
		buf.WriteString(h)
		buf.WriteString("\n")
	}
	return buf.String(), nil
}

// Diff shows a unified, line-level diff between the working copy of each
// named file (or every changed file, if none are named) and the version
// tracked by HEAD. Supplemental to the spec's required command surface.
func (r *Repository) Diff(paths []string) (string, error) {
	head, _, err := r.headCommit()
	if err != nil {
		return "", err
	}

	targets := paths
	if len(targets) == 0 {
		working, err := r.ws.ListFiles()
		if err != nil {
			return "", err
		}
		seen := make(map[string]struct{})
		for _, f := range working {
			seen[f] = struct{}{}
		}
		for f := range head.BlobMap {
			seen[f] = struct{}{}
		}
		for f := range seen {
			targets = append(targets, f)
		}
		sort.Strings(targets)
	}

	engine := diff.NewEngine(3)
	var buf strings.Builder

	for _, filename := range targets {
		oldContent, err := r.headFileContent(head, filename)
		if err != nil {
			return "", err
		}

		var newContent []byte
		if r.ws.Exists(filename) {
			newContent, err = r.ws.Read(filename)
			if err != nil {
				return "", err
			}
		}

		if string(oldContent) == string(newContent) {
			continue
		}

		result, err := engine.Diff(oldContent, newContent)
		if err != nil {
			return "", err
		}

		buf.WriteString(result.Format(filename))
	}

	return buf.String(), nil
}

func (r *Repository) headFileContent(head *commit.Commit, filename string) ([]byte, error) {
	hash, ok := head.BlobHash(filename)
	if !ok {
		return nil, nil
	}
	return r.blobs.Get(hash)
}
