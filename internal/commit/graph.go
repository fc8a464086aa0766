package commit

// Getter resolves a commit hash to its Commit object. internal/repo supplies
// one backed by the object store.
type Getter interface {
	GetCommit(hash string) (*Commit, error)
}

// PathToRoot returns the set of all ancestors of hash, including itself,
// following both parents of merge commits.
func PathToRoot(g Getter, hash string) (map[string]struct{}, error) {
	ancestors := make(map[string]struct{})

	var walk func(h string) error
	walk = func(h string) error {
		for h != "" {
			if _, seen := ancestors[h]; seen {
				return nil
			}
			ancestors[h] = struct{}{}

			c, err := g.GetCommit(h)
			if err != nil {
				return err
			}

			if c.IsMerge() {
				if err := walk(c.SecondParent); err != nil {
					return err
				}
			}
			h = c.Parent
		}
		return nil
	}

	if err := walk(hash); err != nil {
		return nil, err
	}
	return ancestors, nil
}

// LCA finds the lowest common ancestor of a and b: a breadth-first
// traversal from b, enqueueing both parents for merge commits, returning the
// first hash found in pathToRoot(a). The initial commit is a universal
// ancestor, so a result always exists for two commits in the same
// repository.
func LCA(g Getter, a, b string) (string, error) {
	ancestorsOfA, err := PathToRoot(g, a)
	if err != nil {
		return "", err
	}

	queue := []string{b}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]

		if _, ok := ancestorsOfA[h]; ok {
			return h, nil
		}

		c, err := g.GetCommit(h)
		if err != nil {
			return "", err
		}

		if c.Parent != "" {
			queue = append(queue, c.Parent)
		}
		if c.IsMerge() {
			queue = append(queue, c.SecondParent)
		}
	}

	return "", nil
}
