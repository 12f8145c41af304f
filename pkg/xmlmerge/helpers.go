package xmlmerge

import (
	"fmt"
	"strings"

	"github.com/odvcencio/xmldiffmerge/pkg/xmldiff"
	"github.com/odvcencio/xmldiffmerge/pkg/xmlnode"
)

// indexByBase maps each base-anchored diff entry (Unchanged, Modified,
// or Deleted — anything carrying an Original) by its base element, so a
// sibling base child can be looked up in either diff's child list in
// constant time.
func indexByBase(children []xmldiff.DiffMatch) map[xmlnode.Element]xmldiff.DiffMatch {
	m := make(map[xmlnode.Element]xmldiff.DiffMatch, len(children))
	for _, d := range children {
		if d.Original != nil {
			m[d.Original] = d
		}
	}
	return m
}

// collectAdded buckets Added entries by the base-anchored entry that
// immediately follows them in document order, mirroring the
// Deleted-interleaving convention in pkg/xmldiff. Entries with no
// following base sibling land in tail.
func collectAdded(children []xmldiff.DiffMatch) (before map[xmlnode.Element][]xmldiff.DiffMatch, tail []xmldiff.DiffMatch) {
	before = map[xmlnode.Element][]xmldiff.DiffMatch{}
	var pending []xmldiff.DiffMatch
	for _, d := range children {
		if d.Type == xmldiff.Added {
			pending = append(pending, d)
			continue
		}
		if len(pending) > 0 {
			before[d.Original] = append(before[d.Original], pending...)
			pending = nil
		}
	}
	tail = pending
	return before, tail
}

func attrValueMap(attrs []xmlnode.Attribute) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[a.Name] = a.Value
	}
	return m
}

func attrDiffMap(diffs []xmldiff.AttributeDiff) map[string]xmldiff.AttributeDiff {
	m := make(map[string]xmldiff.AttributeDiff, len(diffs))
	for _, d := range diffs {
		m[d.Name] = d
	}
	return m
}

// unionAttrNames orders names base-first (document order), then any
// names introduced only by ours, then only by theirs.
func unionAttrNames(baseAttrs []xmlnode.Attribute, oDiffs, tDiffs []xmldiff.AttributeDiff) []string {
	var names []string
	seen := map[string]bool{}
	add := func(n string) {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	for _, a := range baseAttrs {
		add(a.Name)
	}
	for _, d := range oDiffs {
		add(d.Name)
	}
	for _, d := range tDiffs {
		add(d.Name)
	}
	return names
}

func newAttrValue(d xmldiff.AttributeDiff) (string, bool) {
	if d.Type == xmldiff.Deleted {
		return "", false
	}
	return *d.NewValue, true
}

// namespaceDivergence reports whether ours and theirs bind the same
// namespace prefix to different URIs (spec §3 NamespaceConflict).
func namespaceDivergence(ours, theirs xmlnode.Element) bool {
	oDecls := nsDecls(ours)
	tDecls := nsDecls(theirs)
	for prefix, uri := range oDecls {
		if other, ok := tDecls[prefix]; ok && other != uri {
			return true
		}
	}
	return false
}

func nsDecls(e xmlnode.Element) map[string]string {
	m := map[string]string{}
	for _, a := range e.Attributes() {
		if a.IsNamespaceDecl() {
			m[a.Name] = a.Value
		}
	}
	return m
}

func identityHint(e xmlnode.Element) string {
	if e == nil {
		return ""
	}
	var keyAttr string
	for _, a := range e.Attributes() {
		if a.Name == "id" || a.Name == "name" || a.Name == "key" {
			keyAttr = a.Name + "=" + a.Value
			break
		}
	}
	if keyAttr != "" {
		return fmt.Sprintf("<%s %s>", e.LocalName(), keyAttr)
	}
	return fmt.Sprintf("<%s>", e.LocalName())
}

func describeConflict(t ConflictType, attrNames []string, valueConflict bool) string {
	var parts []string
	if len(attrNames) > 0 {
		parts = append(parts, "attributes "+strings.Join(attrNames, ", ")+" diverge")
	}
	if valueConflict {
		parts = append(parts, "text content diverges")
	}
	if len(parts) == 0 {
		return t.String()
	}
	return strings.Join(parts, "; ")
}
