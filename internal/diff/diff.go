// Package diff renders a unified, line-level diff between two versions of a
// single file's bytes. It is used only by the supplemental `diff` command;
// no other command's required output depends on it.
package diff

import (
	"bytes"
	"fmt"

	"gitshelf/internal/content"
)

// LineType indicates whether a line was added, removed, or is unchanged
// context carried over from both sides.
type LineType int

const (
	Context LineType = iota
	Addition
	Deletion
)

// Line is a single rendered line of a hunk.
type Line struct {
	Type    LineType
	Content string
}

// Stats summarizes how many lines a diff touched.
type Stats struct {
	Additions int
	Deletions int
	Changes   int
}

// Hunk is one contiguous run of changed lines, with surrounding context.
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Lines    []Line
}

// Result is the complete diff between two blobs, identified by their
// content hashes so Format can print a header the way every other
// content-addressed object in this store is identified.
type Result struct {
	OldHash string
	NewHash string
	Hunks   []Hunk
	Stats   Stats
}

// zeroHash stands in for a side of the diff that has no blob at all (a file
// newly created or fully deleted), mirroring the all-zero hash convention
// used for the same case elsewhere.
const zeroHash = "0000000"

// Engine computes diffs with a fixed amount of surrounding context.
type Engine struct {
	contextLines int
}

// NewEngine builds an Engine that keeps contextLines lines of unchanged
// text around each hunk.
func NewEngine(contextLines int) *Engine {
	return &Engine{contextLines: contextLines}
}

// Diff computes the line-level diff between oldContent and newContent,
// tagging the result with the content hash of each side.
func (e *Engine) Diff(oldContent, newContent []byte) (*Result, error) {
	oldLines := splitLines(oldContent)
	newLines := splitLines(newContent)

	lcs := e.computeLCS(oldLines, newLines)
	hunks := e.extractHunks(oldLines, newLines, lcs)
	hunks = e.addContextLines(hunks, oldLines)

	result := &Result{
		OldHash: hashOrZero(oldContent),
		NewHash: hashOrZero(newContent),
		Hunks:   hunks,
	}

	for _, hunk := range result.Hunks {
		for _, line := range hunk.Lines {
			switch line.Type {
			case Addition:
				result.Stats.Additions++
			case Deletion:
				result.Stats.Deletions++
			}
		}
	}
	result.Stats.Changes = result.Stats.Additions + result.Stats.Deletions

	return result, nil
}

func splitLines(content []byte) [][]byte {
	if len(content) == 0 {
		return nil
	}
	return bytes.Split(bytes.TrimSuffix(content, []byte{'\n'}), []byte{'\n'})
}

func hashOrZero(data []byte) string {
	if len(data) == 0 {
		return zeroHash
	}
	return content.Hash(data)[:7]
}

// computeLCS builds the longest-common-subsequence length matrix between
// oldLines and newLines.
func (e *Engine) computeLCS(oldLines, newLines [][]byte) [][]int {
	matrix := make([][]int, len(oldLines)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(newLines)+1)
	}

	for i := 1; i <= len(oldLines); i++ {
		for j := 1; j <= len(newLines); j++ {
			if bytes.Equal(oldLines[i-1], newLines[j-1]) {
				matrix[i][j] = matrix[i-1][j-1] + 1
			} else {
				matrix[i][j] = max(matrix[i-1][j], matrix[i][j-1])
			}
		}
	}

	return matrix
}

// extractHunks walks the LCS matrix backward from the bottom-right corner,
// emitting each run of consecutive deletions and additions as one hunk; an
// unchanged line ends the current hunk. OldStart and NewStart are the
// 0-based offsets of the run in the old and new content.
func (e *Engine) extractHunks(oldLines, newLines [][]byte, lcs [][]int) []Hunk {
	var hunks []Hunk
	var current *Hunk

	i, j := len(oldLines), len(newLines)
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && bytes.Equal(oldLines[i-1], newLines[j-1]):
			if current != nil {
				hunks = append([]Hunk{*current}, hunks...)
				current = nil
			}
			i--
			j--
		case j > 0 && (i == 0 || lcs[i][j-1] >= lcs[i-1][j]):
			if current == nil {
				current = &Hunk{}
			}
			current.Lines = append([]Line{{Type: Addition, Content: string(newLines[j-1])}}, current.Lines...)
			current.OldStart, current.NewStart = i, j-1
			current.NewLines++
			j--
		case i > 0:
			if current == nil {
				current = &Hunk{}
			}
			current.Lines = append([]Line{{Type: Deletion, Content: string(oldLines[i-1])}}, current.Lines...)
			current.OldStart, current.NewStart = i-1, j
			current.OldLines++
			i--
		}
	}
	if current != nil {
		hunks = append([]Hunk{*current}, hunks...)
	}

	return hunks
}

// addContextLines pads each hunk with up to contextLines lines of
// unchanged text on either side, pulled from the old-side content. Hunks
// are not merged, so the padding of two nearby hunks can overlap.
func (e *Engine) addContextLines(hunks []Hunk, oldLines [][]byte) []Hunk {
	if e.contextLines == 0 {
		return hunks
	}

	result := make([]Hunk, 0, len(hunks))
	for _, hunk := range hunks {
		start := max(0, hunk.OldStart-e.contextLines)
		for j := hunk.OldStart - 1; j >= start; j-- {
			hunk.Lines = append([]Line{{Type: Context, Content: string(oldLines[j])}}, hunk.Lines...)
		}

		end := min(len(oldLines), hunk.OldStart+hunk.OldLines+e.contextLines)
		for j := hunk.OldStart + hunk.OldLines; j < end; j++ {
			hunk.Lines = append(hunk.Lines, Line{Type: Context, Content: string(oldLines[j])})
		}

		result = append(result, hunk)
	}

	return result
}

// Format renders the diff as unified text headed by filename and the
// content-hash pair it was computed from.
func (r *Result) Format(filename string) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "diff -- %s\n", filename)
	fmt.Fprintf(&buf, "index %s..%s\n", r.OldHash, r.NewHash)

	for _, hunk := range r.Hunks {
		fmt.Fprintf(&buf, "@@ -%d,%d +%d,%d @@\n", hunk.OldStart, hunk.OldLines, hunk.NewStart, hunk.NewLines)

		for _, line := range hunk.Lines {
			switch line.Type {
			case Addition:
				buf.WriteByte('+')
			case Deletion:
				buf.WriteByte('-')
			case Context:
				buf.WriteByte(' ')
			}
			buf.WriteString(line.Content)
			buf.WriteByte('\n')
		}
	}

	return buf.String()
}
