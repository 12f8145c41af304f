// Package normalize implements the value-normalization pipeline shared by
// the matching strategy and the diff engine. It is a pure, side-effect
// free transform: normalize(value, config) -> string, applied everywhere
// a textual comparison is made.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalizer is a user-supplied value transform, applied after the
// built-ins in registration order. It must be null-safe: a nil input
// produces a nil output.
type Normalizer func(value *string) *string

// Config carries the built-in normalization flags plus the ordered chain
// of user normalizers (spec §4.1, §3 XmlDiffConfig.value_normalizers).
type Config struct {
	TrimValues      bool
	IgnoreNewlines  bool
	IgnoreWhitespace bool
	IgnoreCase      bool
	UserNormalizers []Normalizer
}

var caseFolder = cases.Fold()

// Value applies the built-in pipeline, in the fixed order trim →
// strip-newlines → collapse-whitespace → fold-case, followed by each
// user normalizer. A nil input always produces a nil output.
func Value(value *string, cfg Config) *string {
	if value == nil {
		return nil
	}

	s := *value
	if cfg.TrimValues {
		s = strings.TrimSpace(s)
	}
	if cfg.IgnoreNewlines {
		s = strings.NewReplacer("\r", "", "\n", "").Replace(s)
	}
	if cfg.IgnoreWhitespace {
		s = collapseWhitespace(s)
	}
	if cfg.IgnoreCase {
		s = caseFolder.String(s)
	}

	out := &s
	for _, n := range cfg.UserNormalizers {
		if n == nil {
			continue
		}
		out = n(out)
		if out == nil {
			return nil
		}
	}
	return out
}

// String is a convenience wrapper over Value for non-nullable inputs.
func String(value string, cfg Config) string {
	out := Value(&value, cfg)
	if out == nil {
		return ""
	}
	return *out
}

// Equal reports whether a and b are equal after normalization under cfg.
func Equal(a, b string, cfg Config) bool {
	return String(a, cfg) == String(b, cfg)
}

// collapseWhitespace replaces every run of Unicode whitespace with a
// single ASCII space, trimming the result's own leading/trailing space
// produced by runs at the boundaries.
func collapseWhitespace(s string) string {
	var b strings.Builder
	inRun := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inRun {
				b.WriteByte(' ')
				inRun = true
			}
			continue
		}
		inRun = false
		b.WriteRune(r)
	}
	return strings.Trim(b.String(), " ")
}

// defaultLocale documents the folding locale used by caseFolder; etree
// documents carry no locale metadata, so the engine always folds
// case-insensitively under a neutral (und) locale rather than guessing
// one from xml:lang.
var defaultLocale = language.Und
