// Package commit models the commit object (and its merge-commit variant),
// its deterministic on-disk serialization, its display form, and the
// commit-DAG graph queries (pathToRoot, lca) used by the reconciler and
// merge engine.
package commit

import (
	"encoding/json"
	"fmt"
	"time"
)

// InitialMessage is the message of the single commit created by init.
const InitialMessage = "initial commit"

// dateFormat reproduces the original "EEE MMM d HH:mm:ss yyyy Z" layout in
// Go's reference-time syntax.
const dateFormat = "Mon Jan 2 15:04:05 2006 -0700"

// Commit is a single, immutable commit object. Parent is empty for the
// initial commit. SecondParent is non-empty only for merge commits, and its
// presence is what makes a merge commit's serialization (and therefore its
// hash) disjoint from a plain commit carrying the same fields otherwise.
type Commit struct {
	Message      string            `json:"message"`
	Timestamp    time.Time         `json:"timestamp"`
	Parent       string            `json:"parent,omitempty"`
	SecondParent string            `json:"second_parent,omitempty"`
	BlobMap      map[string]string `json:"blob_map"`
}

// IsMerge reports whether c carries a second parent.
func (c *Commit) IsMerge() bool {
	return c.SecondParent != ""
}

// Tracks reports whether filename is present in c's blob map.
func (c *Commit) Tracks(filename string) bool {
	_, ok := c.BlobMap[filename]
	return ok
}

// BlobHash returns the blob hash tracked at filename, and whether it exists.
func (c *Commit) BlobHash(filename string) (string, bool) {
	h, ok := c.BlobMap[filename]
	return h, ok
}

// kind tags a commit's serialized form so that a plain commit and a merge
// commit with otherwise-identical fields never collide on hash.
type kind string

const (
	kindPlain kind = "commit"
	kindMerge kind = "merge"
)

type serialForm struct {
	Kind         kind              `json:"kind"`
	Message      string            `json:"message"`
	Timestamp    time.Time         `json:"timestamp"`
	Parent       string            `json:"parent,omitempty"`
	SecondParent string            `json:"second_parent,omitempty"`
	BlobMap      map[string]string `json:"blob_map"`
}

// Serialize produces the deterministic byte form hashed to produce a
// commit's identity. encoding/json sorts map keys, so two commits with the
// same fields always serialize identically within a process.
func Serialize(c *Commit) ([]byte, error) {
	k := kindPlain
	if c.IsMerge() {
		k = kindMerge
	}

	form := serialForm{
		Kind:         k,
		Message:      c.Message,
		Timestamp:    c.Timestamp,
		Parent:       c.Parent,
		SecondParent: c.SecondParent,
		BlobMap:      c.BlobMap,
	}

	data, err := json.Marshal(form)
	if err != nil {
		return nil, fmt.Errorf("serializing commit: %w", err)
	}
	return data, nil
}

// Deserialize reverses Serialize.
func Deserialize(data []byte) (*Commit, error) {
	var form serialForm
	if err := json.Unmarshal(data, &form); err != nil {
		return nil, fmt.Errorf("deserializing commit: %w", err)
	}

	return &Commit{
		Message:      form.Message,
		Timestamp:    form.Timestamp,
		Parent:       form.Parent,
		SecondParent: form.SecondParent,
		BlobMap:      form.BlobMap,
	}, nil
}

// Display renders a commit's log entry. Merge commits carry an extra
// "Merge:" line and a trailing space before the final newline, matching the
// format this project's display form was modeled on exactly.
func Display(hash string, c *Commit) string {
	date := c.Timestamp.Format(dateFormat)

	if c.IsMerge() {
		return fmt.Sprintf("===\ncommit %s\nMerge: %s %s\nDate: %s\n%s \n",
			hash, shortHash(c.Parent), shortHash(c.SecondParent), date, c.Message)
	}

	return fmt.Sprintf("===\ncommit %s\nDate: %s\n%s\n", hash, date, c.Message)
}

func shortHash(hash string) string {
	if len(hash) < 7 {
		return hash
	}
	return hash[:7]
}
