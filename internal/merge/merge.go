// Package merge computes the per-file three-way resolution between a split
// point, the current branch, and the given branch, and produces the exact
// conflict-marker byte layout. It is pure: no filesystem or store access, so
// its rules are trivially unit-testable in isolation.
package merge

// Action is what a single file's resolution requires of the caller.
type Action int

const (
	// NoChange means the file needs no staging action.
	NoChange Action = iota
	// RestoreFromGiven means the file's working copy and staged addition
	// should be taken from the given branch's blob hash.
	RestoreFromGiven
	// MarkRemoved means the file should be deleted from the working
	// directory and staged for removal.
	MarkRemoved
	// Conflict means the file's contents differ in a way that cannot be
	// resolved automatically; the caller must write conflict markers and
	// stage the result.
	Conflict
)

// FileResolution is one file's resolution outcome.
type FileResolution struct {
	Filename string
	Action   Action
	// BlobHash is populated only for RestoreFromGiven: the hash to restore
	// and stage.
	BlobHash string
}

// Plan is the outcome of resolving every file across the three trees.
type Plan struct {
	Resolutions []FileResolution
	Conflict    bool
}

// Resolve applies the five-rule table (in order) to each file present in
// split, cur, or given, where each map is filename -> blob hash.
func Resolve(split, cur, given map[string]string) Plan {
	files := make(map[string]struct{})
	for f := range split {
		files[f] = struct{}{}
	}
	for f := range cur {
		files[f] = struct{}{}
	}
	for f := range given {
		files[f] = struct{}{}
	}

	var plan Plan
	for f := range files {
		s, sOK := split[f]
		c, cOK := cur[f]
		g, gOK := given[f]

		res := resolveOne(f, s, sOK, c, cOK, g, gOK)
		if res.Action == Conflict {
			plan.Conflict = true
		}
		if res.Action != NoChange {
			plan.Resolutions = append(plan.Resolutions, res)
		}
	}

	return plan
}

func resolveOne(filename string, s string, sOK bool, c string, cOK bool, g string, gOK bool) FileResolution {
	// Rule 1: s, c, g all present, s == c, s != g -> restore from given.
	if sOK && cOK && gOK && s == c && s != g {
		return FileResolution{Filename: filename, Action: RestoreFromGiven, BlobHash: g}
	}

	// Rule 2: s != c && s != g && c != g, treating absence as a distinct
	// value -> conflict.
	if !tripleEqual(s, sOK, c, cOK) && !tripleEqual(s, sOK, g, gOK) && !tripleEqual(c, cOK, g, gOK) {
		return FileResolution{Filename: filename, Action: Conflict}
	}

	// Rule 3: s absent, g absent -> no change.
	if !sOK && !gOK {
		return FileResolution{Filename: filename, Action: NoChange}
	}

	// Rule 4: s absent, g present -> restore from given.
	if !sOK && gOK {
		return FileResolution{Filename: filename, Action: RestoreFromGiven, BlobHash: g}
	}

	// Rule 5: s == c, g absent -> mark removed.
	if sOK && cOK && s == c && !gOK {
		return FileResolution{Filename: filename, Action: MarkRemoved}
	}

	return FileResolution{Filename: filename, Action: NoChange}
}

// tripleEqual compares two (value, present) pairs under null-safe equality:
// absence is a distinct value from any present hash.
func tripleEqual(a string, aOK bool, b string, bOK bool) bool {
	if aOK != bOK {
		return false
	}
	if !aOK {
		return true
	}
	return a == b
}

// ConflictMarkers produces the exact byte layout written into the working
// directory (and staged) for a conflicting file. current/given are the raw
// file contents, or nil if the file is absent from that side.
func ConflictMarkers(current, given []byte) []byte {
	var out []byte
	out = append(out, "<<<<<<< HEAD\n"...)
	out = append(out, current...)
	out = append(out, "=======\n"...)
	out = append(out, given...)
	out = append(out, ">>>>>>>\n"...)
	return out
}
