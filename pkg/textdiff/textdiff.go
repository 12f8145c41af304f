// Package textdiff implements the word-level text-diff primitive used by
// report rendering and by the diff engine's text-node representation
// (spec §4.3).
package textdiff

import (
	"regexp"
	"strings"

	"github.com/odvcencio/xmldiffmerge/pkg/lcs"
)

// ChangeType classifies a single token in a text diff.
type ChangeType int

const (
	Unchanged ChangeType = iota
	Added
	Deleted
)

func (c ChangeType) String() string {
	switch c {
	case Unchanged:
		return "Unchanged"
	case Added:
		return "Added"
	case Deleted:
		return "Deleted"
	}
	return "Unknown"
}

// TokenDiff is one token in a flat, linear text diff.
type TokenDiff struct {
	Token string
	Type  ChangeType
}

// tokenPattern matches runs of whitespace or a single punctuation
// character; Tokenize keeps both as separate tokens and discards any
// resulting empty strings (spec §4.3).
var tokenPattern = regexp.MustCompile(`\s+|[.,;!?:]`)

// Tokenize splits s into words, whitespace runs, and single punctuation
// characters, preserving order and dropping empty tokens.
func Tokenize(s string) []string {
	if s == "" {
		return nil
	}
	idx := tokenPattern.FindAllStringIndex(s, -1)
	var tokens []string
	prev := 0
	for _, loc := range idx {
		if loc[0] > prev {
			tokens = append(tokens, s[prev:loc[0]])
		}
		tokens = append(tokens, s[loc[0]:loc[1]])
		prev = loc[1]
	}
	if prev < len(s) {
		tokens = append(tokens, s[prev:])
	}
	return tokens
}

// Diff computes a word-level diff between old and new: it tokenizes
// both, computes an LCS over the token sequences, then walks both lists
// in parallel, emitting tokens preceding the next LCS token as
// Deleted/Added from old/new respectively, and the LCS token itself as
// Unchanged. Remaining tails flush as Deleted/Added.
func Diff(old, new string) []TokenDiff {
	oldTokens := Tokenize(old)
	newTokens := Tokenize(new)

	pairs := lcs.Indices(oldTokens, newTokens)

	var out []TokenDiff
	oi, ni := 0, 0
	for _, p := range pairs {
		oj, nj := p[0], p[1]
		for oi < oj {
			out = append(out, TokenDiff{Token: oldTokens[oi], Type: Deleted})
			oi++
		}
		for ni < nj {
			out = append(out, TokenDiff{Token: newTokens[ni], Type: Added})
			ni++
		}
		out = append(out, TokenDiff{Token: oldTokens[oj], Type: Unchanged})
		oi++
		ni++
	}
	for oi < len(oldTokens) {
		out = append(out, TokenDiff{Token: oldTokens[oi], Type: Deleted})
		oi++
	}
	for ni < len(newTokens) {
		out = append(out, TokenDiff{Token: newTokens[ni], Type: Added})
		ni++
	}
	return out
}

// ReconstructOld concatenates the Unchanged and Deleted tokens of diffs,
// in order, reproducing Tokenize(old) joined back into a string.
func ReconstructOld(diffs []TokenDiff) string {
	var b strings.Builder
	for _, d := range diffs {
		if d.Type == Unchanged || d.Type == Deleted {
			b.WriteString(d.Token)
		}
	}
	return b.String()
}

// ReconstructNew concatenates the Unchanged and Added tokens of diffs,
// in order, reproducing Tokenize(new) joined back into a string.
func ReconstructNew(diffs []TokenDiff) string {
	var b strings.Builder
	for _, d := range diffs {
		if d.Type == Unchanged || d.Type == Added {
			b.WriteString(d.Token)
		}
	}
	return b.String()
}
