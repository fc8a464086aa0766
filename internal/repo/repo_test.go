package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitshelf/internal/vcserr"
)

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0644))
}

func readFile(t *testing.T, root, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, name))
	require.NoError(t, err)
	return string(data)
}

func fileExists(root, name string) bool {
	_, err := os.Stat(filepath.Join(root, name))
	return err == nil
}

// TestS1BasicCommit exercises scenario S1: init, add, commit.
func TestS1BasicCommit(t *testing.T) {
	root := t.TempDir()

	r, err := Init(root)
	require.NoError(t, err)
	defer r.Close()

	writeFile(t, root, "a.txt", "hello\n")
	require.NoError(t, r.Add("a.txt"))
	require.NoError(t, r.Commit("add a"))

	log, err := r.Log()
	require.NoError(t, err)
	assert.Equal(t, 2, countOccurrences(log, "===\ncommit"))

	branch, err := r.headBranch()
	require.NoError(t, err)
	assert.Equal(t, "main", branch)

	head, _, err := r.headCommit()
	require.NoError(t, err)
	assert.Equal(t, "add a", head.Message)
	assert.Contains(t, head.BlobMap, "a.txt")

	assert.False(t, r.idx.HasChanges())
}

// TestS2RmFlow exercises scenario S2: rm after a committed file.
func TestS2RmFlow(t *testing.T) {
	root := t.TempDir()
	r, err := Init(root)
	require.NoError(t, err)
	defer r.Close()

	writeFile(t, root, "a.txt", "hello\n")
	require.NoError(t, r.Add("a.txt"))
	require.NoError(t, r.Commit("add a"))

	require.NoError(t, r.Rm("a.txt"))
	assert.False(t, fileExists(root, "a.txt"))

	status, err := r.Status()
	require.NoError(t, err)
	assert.Contains(t, status, "=== Removed Files ===\na.txt\n")

	require.NoError(t, r.Commit("drop a"))
	head, _, err := r.headCommit()
	require.NoError(t, err)
	assert.NotContains(t, head.BlobMap, "a.txt")
}

// TestS3BranchAndSwitch exercises scenario S3.
func TestS3BranchAndSwitch(t *testing.T) {
	root := t.TempDir()
	r, err := Init(root)
	require.NoError(t, err)
	defer r.Close()

	writeFile(t, root, "a.txt", "hello\n")
	require.NoError(t, r.Add("a.txt"))
	require.NoError(t, r.Commit("add a"))

	require.NoError(t, r.Branch("dev"))

	writeFile(t, root, "a.txt", "hello2\n")
	require.NoError(t, r.Add("a.txt"))
	require.NoError(t, r.Commit("edit on main"))

	require.NoError(t, r.Switch("dev"))

	assert.Equal(t, "hello\n", readFile(t, root, "a.txt"))
	assert.False(t, r.idx.HasChanges())

	branch, err := r.headBranch()
	require.NoError(t, err)
	assert.Equal(t, "dev", branch)
}

// TestS4FastForwardMerge exercises scenario S4.
func TestS4FastForwardMerge(t *testing.T) {
	root := t.TempDir()
	r, err := Init(root)
	require.NoError(t, err)
	defer r.Close()

	writeFile(t, root, "a.txt", "hello\n")
	require.NoError(t, r.Add("a.txt"))
	require.NoError(t, r.Commit("add a"))

	require.NoError(t, r.Branch("dev"))

	writeFile(t, root, "a.txt", "hello2\n")
	require.NoError(t, r.Add("a.txt"))
	require.NoError(t, r.Commit("edit on main"))

	require.NoError(t, r.Switch("dev"))
	require.NoError(t, r.Switch("main"))
	require.NoError(t, r.Switch("dev"))

	err = r.Merge("main")
	require.Error(t, err)
	assert.True(t, vcserr.IsInformational(err))
	assert.ErrorIs(t, err, vcserr.ErrFastForwarded)

	devHash, err := r.refStore.ReadBranch("dev")
	require.NoError(t, err)
	mainHash, err := r.refStore.ReadBranch("main")
	require.NoError(t, err)
	assert.Equal(t, mainHash, devHash, "dev fast-forwards to main's head commit")

	branch, err := r.headBranch()
	require.NoError(t, err)
	assert.Equal(t, "dev", branch, "HEAD stays on dev; fast-forward advances the branch pointer, not HEAD")

	assert.Equal(t, "hello2\n", readFile(t, root, "a.txt"))
}

// TestS5ThreeWayMergeNoConflict exercises scenario S5.
func TestS5ThreeWayMergeNoConflict(t *testing.T) {
	root := t.TempDir()
	r, err := Init(root)
	require.NoError(t, err)
	defer r.Close()

	writeFile(t, root, "a.txt", "hello\n")
	require.NoError(t, r.Add("a.txt"))
	require.NoError(t, r.Commit("add a"))

	require.NoError(t, r.Branch("dev"))

	writeFile(t, root, "b.txt", "B\n")
	require.NoError(t, r.Add("b.txt"))
	require.NoError(t, r.Commit("add b"))

	require.NoError(t, r.Switch("dev"))

	writeFile(t, root, "c.txt", "C\n")
	require.NoError(t, r.Add("c.txt"))
	require.NoError(t, r.Commit("add c"))

	err = r.Merge("main")
	require.NoError(t, err)

	assert.Equal(t, "hello\n", readFile(t, root, "a.txt"))
	assert.Equal(t, "B\n", readFile(t, root, "b.txt"))
	assert.Equal(t, "C\n", readFile(t, root, "c.txt"))

	head, _, err := r.headCommit()
	require.NoError(t, err)
	assert.True(t, head.IsMerge())
}

// TestS6MergeConflict exercises scenario S6.
func TestS6MergeConflict(t *testing.T) {
	root := t.TempDir()
	r, err := Init(root)
	require.NoError(t, err)
	defer r.Close()

	writeFile(t, root, "a.txt", "base\n")
	require.NoError(t, r.Add("a.txt"))
	require.NoError(t, r.Commit("add a"))

	require.NoError(t, r.Branch("dev"))

	writeFile(t, root, "a.txt", "main version\n")
	require.NoError(t, r.Add("a.txt"))
	require.NoError(t, r.Commit("edit on main"))

	require.NoError(t, r.Switch("dev"))
	writeFile(t, root, "a.txt", "dev version\n")
	require.NoError(t, r.Add("a.txt"))
	require.NoError(t, r.Commit("edit on dev"))

	err = r.Merge("main")
	require.Error(t, err)
	assert.True(t, vcserr.IsInformational(err))
	assert.ErrorIs(t, err, vcserr.ErrMergeConflict)

	want := "<<<<<<< HEAD\ndev version\n=======\nmain version\n>>>>>>>\n"
	assert.Equal(t, want, readFile(t, root, "a.txt"))

	head, _, err := r.headCommit()
	require.NoError(t, err)
	assert.True(t, head.IsMerge())
	assert.Contains(t, head.BlobMap, "a.txt")
}

func TestInitTwiceFails(t *testing.T) {
	root := t.TempDir()
	r, err := Init(root)
	require.NoError(t, err)
	r.Close()

	_, err = Init(root)
	assert.ErrorIs(t, err, vcserr.ErrAlreadyInitialized)
}

func TestCommitWithNoChangesFails(t *testing.T) {
	root := t.TempDir()
	r, err := Init(root)
	require.NoError(t, err)
	defer r.Close()

	err = r.Commit("nothing staged")
	assert.ErrorIs(t, err, vcserr.ErrNoChangesAdded)
}

func TestCommitWithEmptyMessageFails(t *testing.T) {
	root := t.TempDir()
	r, err := Init(root)
	require.NoError(t, err)
	defer r.Close()

	writeFile(t, root, "a.txt", "hi\n")
	require.NoError(t, r.Add("a.txt"))

	err = r.Commit("   ")
	assert.ErrorIs(t, err, vcserr.ErrEmptyMessage)
}

func TestMergeWithSelfFails(t *testing.T) {
	root := t.TempDir()
	r, err := Init(root)
	require.NoError(t, err)
	defer r.Close()

	err = r.Merge("main")
	assert.ErrorIs(t, err, vcserr.ErrMergeWithSelf)
}

func TestSwitchToUnknownBranchFails(t *testing.T) {
	root := t.TempDir()
	r, err := Init(root)
	require.NoError(t, err)
	defer r.Close()

	err = r.Switch("ghost")
	assert.ErrorIs(t, err, vcserr.ErrNoSuchBranchToSwitchTo)
}

// TestDiffShowsModificationAgainstHead exercises the supplemental diff
// command against a file modified since head.
func TestDiffShowsModificationAgainstHead(t *testing.T) {
	root := t.TempDir()
	r, err := Init(root)
	require.NoError(t, err)
	defer r.Close()

	writeFile(t, root, "a.txt", "line one\nline two\n")
	require.NoError(t, r.Add("a.txt"))
	require.NoError(t, r.Commit("add a"))

	writeFile(t, root, "a.txt", "line one\nchanged\n")

	out, err := r.Diff([]string{"a.txt"})
	require.NoError(t, err)
	assert.Contains(t, out, "diff -- a.txt\n")
	assert.Contains(t, out, "-line two\n")
	assert.Contains(t, out, "+changed\n")
}

// TestDiffWithNoPathsCoversEveryChangedFile exercises diff with no explicit
// paths, which must discover every modified, new, or deleted file itself.
func TestDiffWithNoPathsCoversEveryChangedFile(t *testing.T) {
	root := t.TempDir()
	r, err := Init(root)
	require.NoError(t, err)
	defer r.Close()

	writeFile(t, root, "a.txt", "unchanged\n")
	writeFile(t, root, "b.txt", "will be deleted\n")
	require.NoError(t, r.Add("a.txt"))
	require.NoError(t, r.Add("b.txt"))
	require.NoError(t, r.Commit("add a and b"))

	require.NoError(t, os.Remove(filepath.Join(root, "b.txt")))
	writeFile(t, root, "c.txt", "brand new\n")

	out, err := r.Diff(nil)
	require.NoError(t, err)
	assert.NotContains(t, out, "a.txt", "unchanged file must not appear")
	assert.Contains(t, out, "diff -- b.txt\n")
	assert.Contains(t, out, "diff -- c.txt\n")
}

func TestResolveIDBySubstring(t *testing.T) {
	root := t.TempDir()
	r, err := Init(root)
	require.NoError(t, err)
	defer r.Close()

	_, hash, err := r.headCommit()
	require.NoError(t, err)

	resolved, err := r.resolveID(hash[3:10])
	require.NoError(t, err)
	assert.Equal(t, hash, resolved)
}

func countOccurrences(haystack, needle string) int {
	count := 0
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			count++
		}
	}
	return count
}
