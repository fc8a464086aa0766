package repo

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"gitshelf/internal/commit"
	"gitshelf/internal/merge"
	"gitshelf/internal/vcserr"
	"gitshelf/internal/workspace"
)

// Merge merges givenBranch into the current branch via a three-way
// per-file resolution, writing a merge commit with both branch heads as
// parents.
func (r *Repository) Merge(givenBranch string) error {
	if r.idx.HasChanges() {
		return vcserr.ErrUncommittedChanges
	}

	branch, err := r.headBranch()
	if err != nil {
		return err
	}
	if givenBranch == branch {
		return vcserr.ErrMergeWithSelf
	}
	if !r.refStore.BranchExists(givenBranch) {
		return vcserr.ErrNoSuchBranch
	}

	curCommit, curHash, err := r.headCommit()
	if err != nil {
		return err
	}

	givenHash, err := r.refStore.ReadBranch(givenBranch)
	if err != nil {
		return err
	}
	givenCommit, err := r.GetCommit(givenHash)
	if err != nil {
		return err
	}

	if err := untrackedSafety(r.ws, curCommit.BlobMap, givenCommit.BlobMap); err != nil {
		return err
	}

	split, err := commit.LCA(r, curHash, givenHash)
	if err != nil {
		return err
	}

	if split == givenHash {
		return vcserr.Info(vcserr.ErrGivenIsAncestor)
	}

	if split == curHash {
		if err := workspace.Reconcile(r.ws, curCommit.BlobMap, givenCommit.BlobMap, r); err != nil {
			return err
		}
		if err := r.refStore.SetBranch(branch, givenHash); err != nil {
			return err
		}
		r.idx.Clear()
		if err := r.saveIndex(); err != nil {
			return err
		}
		return vcserr.Info(vcserr.ErrFastForwarded)
	}

	splitCommit, err := r.GetCommit(split)
	if err != nil {
		return err
	}

	plan := merge.Resolve(splitCommit.BlobMap, curCommit.BlobMap, givenCommit.BlobMap)

	for _, res := range plan.Resolutions {
		switch res.Action {
		case merge.RestoreFromGiven:
			if err := r.RestoreAndStage(res.Filename, givenCommit); err != nil {
				return err
			}
		case merge.MarkRemoved:
			if err := r.idx.UnstageOrMarkRemoved(res.Filename, r); err != nil {
				return err
			}
		case merge.Conflict:
			if err := r.writeConflict(res.Filename, curCommit, givenCommit); err != nil {
				return err
			}
		}
	}

	newBlobMap := r.applyIndex(curCommit.BlobMap)
	mergeCommit := &commit.Commit{
		Message:      fmt.Sprintf("Merged %s into %s.", givenBranch, branch),
		Timestamp:    time.Now(),
		Parent:       curHash,
		SecondParent: givenHash,
		BlobMap:      newBlobMap,
	}

	hash, err := r.putCommit(mergeCommit)
	if err != nil {
		return err
	}
	if err := r.refStore.SetBranch(branch, hash); err != nil {
		return err
	}

	r.idx.Clear()
	if err := r.saveIndex(); err != nil {
		return err
	}

	r.logger.Info("merged branch", zap.String("given", givenBranch), zap.String("commit", hash), zap.Bool("conflict", plan.Conflict))

	if plan.Conflict {
		return vcserr.Info(vcserr.ErrMergeConflict)
	}
	return nil
}

// writeConflict writes the conflict-marker envelope into the working
// directory for filename and stages it for addition.
func (r *Repository) writeConflict(filename string, curCommit, givenCommit *commit.Commit) error {
	var current, given []byte

	if hash, ok := curCommit.BlobHash(filename); ok {
		data, err := r.blobs.Get(hash)
		if err != nil {
			return err
		}
		current = data
	}
	if hash, ok := givenCommit.BlobHash(filename); ok {
		data, err := r.blobs.Get(hash)
		if err != nil {
			return err
		}
		given = data
	}

	content := merge.ConflictMarkers(current, given)

	if err := r.ws.Write(filename, content); err != nil {
		return err
	}

	hash, err := r.blobs.Put(content)
	if err != nil {
		return err
	}
	r.idx.Additions[filename] = hash
	delete(r.idx.Removals, filename)

	return nil
}

// untrackedSafety runs the reconciler's untracked-file safety check between
// two blob maps without performing any mutation, for merge's pre-condition
// check.
func untrackedSafety(ws *workspace.Workspace, oldFiles, newFiles map[string]string) error {
	working, err := ws.ListFiles()
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
	return nil
}
