package commit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

var errCommitNotFound = errors.New("commit not found")

// fakeGetter is an in-memory commit.Getter for graph tests.
type fakeGetter map[string]*Commit

func (f fakeGetter) GetCommit(hash string) (*Commit, error) {
	c, ok := f[hash]
	if !ok {
		return nil, errCommitNotFound
	}
	return c, nil
}

// linear: init -> c1 -> c2
func linearGraph() fakeGetter {
	return fakeGetter{
		"init": {BlobMap: map[string]string{}},
		"c1":   {Parent: "init", BlobMap: map[string]string{}},
		"c2":   {Parent: "c1", BlobMap: map[string]string{}},
	}
}

func TestPathToRootLinear(t *testing.T) {
	g := linearGraph()

	ancestors, err := PathToRoot(g, "c2")
	require.NoError(t, err)
	require.Contains(t, ancestors, "c2")
	require.Contains(t, ancestors, "c1")
	require.Contains(t, ancestors, "init")
	require.Len(t, ancestors, 3)
}

// branching:
//
//	init -> a -> b (main)
//	     -> a -> c -> merge(b, c) (dev merged main back in)
func branchingGraph() fakeGetter {
	return fakeGetter{
		"init":  {BlobMap: map[string]string{}},
		"a":     {Parent: "init", BlobMap: map[string]string{}},
		"b":     {Parent: "a", BlobMap: map[string]string{}},
		"c":     {Parent: "a", BlobMap: map[string]string{}},
		"merge": {Parent: "c", SecondParent: "b", BlobMap: map[string]string{}},
	}
}

func TestPathToRootFollowsMergeSecondParent(t *testing.T) {
	g := branchingGraph()

	ancestors, err := PathToRoot(g, "merge")
	require.NoError(t, err)
	for _, want := range []string{"merge", "c", "b", "a", "init"} {
		require.Containsf(t, ancestors, want, "expected %s among ancestors of merge", want)
	}
}

func TestLCASimpleBranch(t *testing.T) {
	g := branchingGraph()

	split, err := LCA(g, "b", "c")
	require.NoError(t, err)
	require.Equal(t, "a", split)
}

func TestLCAAncestorSelf(t *testing.T) {
	g := linearGraph()

	split, err := LCA(g, "c2", "c1")
	require.NoError(t, err)
	require.Equal(t, "c1", split)
}

func TestLCAWithMergeCommit(t *testing.T) {
	g := branchingGraph()

	// merge's ancestors already include b, so lca(merge, b) == b.
	split, err := LCA(g, "merge", "b")
	require.NoError(t, err)
	require.Equal(t, "b", split)
}
