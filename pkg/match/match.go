// Package match implements the element matching strategy used to pair
// elements across two XML documents (spec §4.4). The default strategy
// weighs name equality, key-attribute equality, attribute-set overlap,
// and leaf text equality; any strategy returning a nonnegative score is
// acceptable, and the engine treats anything below MatchThreshold as a
// non-match.
package match

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/odvcencio/xmldiffmerge/pkg/normalize"
	"github.com/odvcencio/xmldiffmerge/pkg/xmlnode"
)

// MatchThreshold is the minimum score the diff and merge engines treat
// as a match; it is shared so that custom strategies and the engine
// agree on "never match" (score 0) vs. "match" (score >= threshold).
const MatchThreshold = 0.5

// Config is the subset of the diff engine's configuration the default
// strategy needs. xmldiff.Config projects its settings onto this type
// (its matchConfig method); it is declared independently here to keep pkg/match
// free of a dependency on pkg/xmldiff (which depends on pkg/match).
type Config struct {
	KeyAttributeNames       []string
	ExcludedAttributeNames  map[string]bool
	IgnoreValues            bool
	NamespaceMode           xmlnode.NamespaceMode
	Normalize               normalize.Config
}

// Strategy scores the similarity of two elements under cfg. A score of
// 0 means "never match"; the engine treats any score >= MatchThreshold
// as a match. nil elements always score 0.
type Strategy func(e1, e2 xmlnode.Element, cfg Config) float64

// Default is the matching strategy specified in spec §4.4.
func Default(e1, e2 xmlnode.Element, cfg Config) float64 {
	if e1 == nil || e2 == nil {
		return 0
	}
	if e1.FullName(cfg.NamespaceMode) != e2.FullName(cfg.NamespaceMode) {
		return 0
	}

	score := 1.0

	for _, key := range cfg.KeyAttributeNames {
		v1, ok1 := attrValue(e1, key)
		v2, ok2 := attrValue(e2, key)
		if ok1 && ok2 && normalize.Equal(v1, v2, cfg.Normalize) {
			score += 10.0
		}
	}

	score += attributeOverlapScore(e1, e2, cfg)

	if !cfg.IgnoreValues && e1.IsLeaf() && e2.IsLeaf() {
		if normalize.Equal(e1.Text(), e2.Text(), cfg.Normalize) {
			score += 1.0
		}
	}

	return score
}

func attrValue(e xmlnode.Element, name string) (string, bool) {
	for _, a := range e.Attributes() {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// comparableAttrs filters out namespace declarations and
// excluded-attribute-names, returning the attributes relevant to
// comparison.
func comparableAttrs(e xmlnode.Element, cfg Config) []xmlnode.Attribute {
	attrs := e.Attributes()
	out := make([]xmlnode.Attribute, 0, len(attrs))
	for _, a := range attrs {
		if a.IsNamespaceDecl() {
			continue
		}
		if cfg.ExcludedAttributeNames[a.Name] {
			continue
		}
		out = append(out, a)
	}
	return out
}

var overlapCache, _ = lru.New[string, float64](4096)

// attributeOverlapScore returns the fraction of e1's comparable
// attributes that also exist on e2 with an equal normalized value
// (spec §4.4 step 5). Results are cached by a cheap signature of both
// attribute sets since pairing scans every (old, new) sibling pair and
// the same element is rescored repeatedly against its neighborhood.
func attributeOverlapScore(e1, e2 xmlnode.Element, cfg Config) float64 {
	a1 := comparableAttrs(e1, cfg)
	a2 := comparableAttrs(e2, cfg)
	if len(a1) == 0 {
		return 0
	}

	// User normalizers are functions and cannot be encoded in the key,
	// so configurations that carry any bypass the cache.
	cacheable := len(cfg.Normalize.UserNormalizers) == 0
	key := overlapCacheKey(a1, a2, cfg)
	if v, ok := overlapCache.Get(key); ok && cacheable {
		return v
	}

	a2Index := make(map[string]string, len(a2))
	for _, a := range a2 {
		a2Index[a.Name] = a.Value
	}

	matched := 0
	for _, a := range a1 {
		if v2, ok := a2Index[a.Name]; ok && normalize.Equal(a.Value, v2, cfg.Normalize) {
			matched++
		}
	}

	score := float64(matched) / float64(len(a1))
	if cacheable {
		overlapCache.Add(key, score)
	}
	return score
}

func overlapCacheKey(a1, a2 []xmlnode.Attribute, cfg Config) string {
	var b []byte
	for _, a := range a1 {
		b = append(b, a.Name...)
		b = append(b, '=')
		b = append(b, a.Value...)
		b = append(b, ';')
	}
	b = append(b, '|')
	for _, a := range a2 {
		b = append(b, a.Name...)
		b = append(b, '=')
		b = append(b, a.Value...)
		b = append(b, ';')
	}
	if cfg.IgnoreValues {
		b = append(b, 'I')
	}
	b = append(b, '|')
	b = append(b, normalizeFlagsByte(cfg.Normalize)...)
	return string(b)
}

// normalizeFlagsByte encodes the normalize.Config flags that affect
// string equality, so that two diff calls with different normalization
// settings never share a cache entry even when the raw attribute bytes
// are identical.
func normalizeFlagsByte(n normalize.Config) []byte {
	flags := []byte{'0', '0', '0', '0'}
	if n.TrimValues {
		flags[0] = '1'
	}
	if n.IgnoreNewlines {
		flags[1] = '1'
	}
	if n.IgnoreWhitespace {
		flags[2] = '1'
	}
	if n.IgnoreCase {
		flags[3] = '1'
	}
	return flags
}
