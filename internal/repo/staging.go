package repo

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"gitshelf/internal/commit"
	"gitshelf/internal/vcserr"
)

// Add stages filename for addition (or unstages a pending removal),
// implementing the `add` command.
func (r *Repository) Add(filename string) error {
	if err := r.idx.Stage(filename, r); err != nil {
		return err
	}
	r.logger.Debug("staged file", zap.String("file", filename))
	return r.saveIndex()
}

// Rm stages filename for removal, or unstages a pending addition,
// implementing the `rm` command.
func (r *Repository) Rm(filename string) error {
	if err := r.idx.UnstageOrMarkRemoved(filename, r); err != nil {
		return err
	}
	r.logger.Debug("removed file", zap.String("file", filename))
	return r.saveIndex()
}

// Commit creates a new commit from the head snapshot plus every staged
// change, advances the current branch, and clears the index.
func (r *Repository) Commit(message string) error {
	if !r.idx.HasChanges() {
		return vcserr.ErrNoChangesAdded
	}
	if strings.TrimSpace(message) == "" {
		return vcserr.ErrEmptyMessage
	}

	head, headHash, err := r.headCommit()
	if err != nil {
		return err
	}

	blobMap := r.applyIndex(head.BlobMap)

	newCommit := &commit.Commit{
		Message:   message,
		Timestamp: time.Now(),
		Parent:    headHash,
		BlobMap:   blobMap,
	}

	hash, err := r.putCommit(newCommit)
	if err != nil {
		return err
	}

	branch, err := r.headBranch()
	if err != nil {
		return err
	}
	if err := r.refStore.SetBranch(branch, hash); err != nil {
		return err
	}

	r.idx.Clear()
	r.logger.Info("created commit", zap.String("hash", hash), zap.String("branch", branch))
	return r.saveIndex()
}

// applyIndex derives a new blob map by taking head's map and applying the
// index's additions (overwrite) and removals (delete).
func (r *Repository) applyIndex(head map[string]string) map[string]string {
	out := make(map[string]string, len(head))
	for f, h := range head {
		out[f] = h
	}
	for f, h := range r.idx.Additions {
		out[f] = h
	}
	for f := range r.idx.Removals {
		delete(out, f)
	}
	return out
}
