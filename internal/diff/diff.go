// Package diff computes word-level diffs between two texts.
package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Kind classifies a diff segment.
type Kind string

// Segment kinds.
const (
	Unchanged Kind = "unchanged"
	Added     Kind = "added"
	Removed   Kind = "removed"
)

// Segment is a contiguous run of words tagged relative to the base text.
// Text holds the run's words joined by single spaces.
type Segment struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

// Words compares two texts at word granularity and returns the minimal edit
// script as an ordered segment sequence. Tokens are whitespace-delimited.
// The result is deterministic for a given input pair.
//
// Word mode reuses the library's line-diff machinery: each token becomes one
// synthetic line, the diff runs over the compact encoded form, and the
// encoded runs are mapped back to token runs.
func Words(before, after string) []Segment {
	beforeEncoded := encodeTokens(before)
	afterEncoded := encodeTokens(after)

	// DiffLinesToRunes keeps each token a single rune in the encoded form;
	// the string-based variant encodes tokens as multi-character index
	// strings that the diff can split mid-token.
	dmp := diffmatchpatch.New()
	b, a, tokenLines := dmp.DiffLinesToRunes(beforeEncoded, afterEncoded)
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(b, a, false), tokenLines)

	segments := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		tokens := strings.Fields(d.Text)
		if len(tokens) == 0 {
			continue
		}
		segments = append(segments, Segment{
			Kind: kindOf(d.Type),
			Text: strings.Join(tokens, " "),
		})
	}
	return segments
}

// encodeTokens renders a text as one token per line. The trailing newline
// keeps the final token's encoding identical to a mid-text occurrence.
func encodeTokens(text string) string {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return ""
	}
	return strings.Join(tokens, "\n") + "\n"
}

func kindOf(op diffmatchpatch.Operation) Kind {
	switch op {
	case diffmatchpatch.DiffInsert:
		return Added
	case diffmatchpatch.DiffDelete:
		return Removed
	default:
		return Unchanged
	}
}
