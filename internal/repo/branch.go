package repo

import (
	"gitshelf/internal/commit"
	"gitshelf/internal/vcserr"
	"gitshelf/internal/workspace"
)

// Branch creates a new branch pointing at the current head commit.
func (r *Repository) Branch(name string) error {
	_, headHash, err := r.headCommit()
	if err != nil {
		return err
	}
	return r.refStore.CreateBranch(name, headHash)
}

// Switch reconciles the working directory from head to the named branch's
// head, sets HEAD to that branch, and clears the index.
func (r *Repository) Switch(name string) error {
	if !r.refStore.BranchExists(name) {
		return vcserr.ErrNoSuchBranchToSwitchTo
	}

	branch, err := r.headBranch()
	if err != nil {
		return err
	}
	if name == branch {
		return vcserr.ErrAlreadyOnBranch
	}

	curCommit, _, err := r.headCommit()
	if err != nil {
		return err
	}

	newHash, err := r.refStore.ReadBranch(name)
	if err != nil {
		return err
	}
	newCommit, err := r.GetCommit(newHash)
	if err != nil {
		return err
	}

	if err := workspace.Reconcile(r.ws, curCommit.BlobMap, newCommit.BlobMap, r); err != nil {
		return err
	}

	if err := r.refStore.SetHead(name); err != nil {
		return err
	}

	r.idx.Clear()
	return r.saveIndex()
}

// RmBranch deletes a branch; the current branch cannot be removed.
func (r *Repository) RmBranch(name string) error {
	branch, err := r.headBranch()
	if err != nil {
		return err
	}
	if name == branch {
		return vcserr.ErrCannotRemoveCurrent
	}
	return r.refStore.DeleteBranch(name)
}

// Reset resolves id, reconciles the working directory to it, advances the
// current branch to that commit, and clears the index.
func (r *Repository) Reset(id string) error {
	curCommit, _, err := r.headCommit()
	if err != nil {
		return err
	}

	fullHash, err := r.resolveID(id)
	if err != nil {
		return err
	}
	target, err := r.GetCommit(fullHash)
	if err != nil {
		return err
	}

	if err := workspace.Reconcile(r.ws, curCommit.BlobMap, target.BlobMap, r); err != nil {
		return err
	}

	branch, err := r.headBranch()
	if err != nil {
		return err
	}
	if err := r.refStore.SetBranch(branch, fullHash); err != nil {
		return err
	}

	r.idx.Clear()
	return r.saveIndex()
}

// Restore restores filename from head, without staging it.
func (r *Repository) Restore(filename string) error {
	head, _, err := r.headCommit()
	if err != nil {
		return err
	}
	return r.restoreFrom(filename, head, false)
}

// RestoreFromID resolves id and restores filename from that commit, without
// staging it.
func (r *Repository) RestoreFromID(id, filename string) error {
	hash, err := r.resolveID(id)
	if err != nil {
		return err
	}
	c, err := r.GetCommit(hash)
	if err != nil {
		return err
	}
	return r.restoreFrom(filename, c, false)
}

// RestoreAndStage restores filename from c and stages it for addition. Used
// internally by the merge engine.
func (r *Repository) RestoreAndStage(filename string, c *commit.Commit) error {
	return r.restoreFrom(filename, c, true)
}

func (r *Repository) restoreFrom(filename string, c *commit.Commit, stage bool) error {
	hash, ok := c.BlobHash(filename)
	if !ok {
		return vcserr.ErrFileNotInCommit
	}

	data, err := r.blobs.Get(hash)
	if err != nil {
		return err
	}

	if err := r.ws.Write(filename, data); err != nil {
		return err
	}

	if stage {
		r.idx.Additions[filename] = hash
		delete(r.idx.Removals, filename)
	} else {
		delete(r.idx.Additions, filename)
		delete(r.idx.Removals, filename)
	}

	return r.saveIndex()
}
