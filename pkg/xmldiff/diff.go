// Package xmldiff implements the element-matching tree-diff engine
// (spec §4.5): it recursively pairs elements of two XML documents and
// produces a DiffMatch tree describing attribute, value,
// added/deleted-child, and non-element-node differences. Sibling order
// is not compared: a matched child whose position among its siblings
// changed is not marked as changed for that reason.
package xmldiff

import (
	"github.com/odvcencio/xmldiffmerge/pkg/match"
	"github.com/odvcencio/xmldiffmerge/pkg/normalize"
	"github.com/odvcencio/xmldiffmerge/pkg/xmlnode"
)

// Diff computes the diff tree between original and modified document
// roots under cfg. Both roots are assumed to correspond to each other
// (the caller picked them as the comparison roots); descendant pairing
// is computed by the matching strategy.
func Diff(original, modified xmlnode.Element, cfg Config) DiffMatch {
	var path string
	switch {
	case modified != nil:
		path = rootPath(modified, cfg.namespaceMode)
	case original != nil:
		path = rootPath(original, cfg.namespaceMode)
	default:
		path = "/"
	}
	return diffNode(original, modified, path, cfg)
}

// diffNode computes the DiffMatch for one matched (or added/deleted)
// element pair at path.
func diffNode(original, modified xmlnode.Element, path string, cfg Config) DiffMatch {
	switch {
	case original == nil && modified == nil:
		return DiffMatch{Type: Unchanged, Path: path}
	case original == nil:
		return addedSubtree(modified, path, cfg)
	case modified == nil:
		return deletedSubtree(original, path, cfg)
	}

	attrDiffs := diffAttributes(original, modified, cfg)
	var valueDiff *ValueDiff
	if original.IsLeaf() && modified.IsLeaf() {
		valueDiff = diffValue(original, modified, cfg)
	}
	children := diffChildren(original, modified, path, cfg)
	nonElem := diffNonElements(original, modified, cfg)

	nodeType := Unchanged
	if len(attrDiffs) > 0 || valueDiff != nil || len(nonElem) > 0 {
		nodeType = Modified
	} else {
		for _, c := range children {
			if c.Type != Unchanged {
				nodeType = Modified
				break
			}
		}
	}

	return DiffMatch{
		Type:            nodeType,
		Path:            path,
		Original:        original,
		ModifiedEl:      modified,
		AttributeDiffs:  attrDiffs,
		ValueDiff:       valueDiff,
		Children:        children,
		NonElementDiffs: nonElem,
	}
}

func addedSubtree(modified xmlnode.Element, path string, cfg Config) DiffMatch {
	kids := modified.ChildElements()
	idx := sameNameIndex(kids, cfg.namespaceMode)
	children := make([]DiffMatch, 0, len(kids))
	for i, k := range kids {
		cp := childPath(path, k.FullName(cfg.namespaceMode), idx[i])
		children = append(children, addedSubtree(k, cp, cfg))
	}
	return DiffMatch{
		Type:       Added,
		Path:       path,
		ModifiedEl: modified,
		Children:   children,
	}
}

func deletedSubtree(original xmlnode.Element, path string, cfg Config) DiffMatch {
	kids := original.ChildElements()
	idx := sameNameIndex(kids, cfg.namespaceMode)
	children := make([]DiffMatch, 0, len(kids))
	for i, k := range kids {
		cp := childPath(path, k.FullName(cfg.namespaceMode), idx[i])
		children = append(children, deletedSubtree(k, cp, cfg))
	}
	return DiffMatch{
		Type:     Deleted,
		Path:     path,
		Original: original,
		Children: children,
	}
}

// diffAttributes implements spec §4.5 attribute diffing: compares
// attribute sets by local name (skipping namespace declarations and
// excluded names), and classifies each name as
// Added/Deleted/Unchanged/Modified. Namespace URIs and namespaceMode are
// not consulted, so two attributes that share a local name in different
// namespaces are treated as the same attribute.
func diffAttributes(original, modified xmlnode.Element, cfg Config) []AttributeDiff {
	oldAttrs := filteredAttrs(original, cfg)
	newAttrs := filteredAttrs(modified, cfg)

	var names []string
	seen := map[string]bool{}
	for _, a := range oldAttrs {
		if !seen[a.Name] {
			seen[a.Name] = true
			names = append(names, a.Name)
		}
	}
	for _, a := range newAttrs {
		if !seen[a.Name] {
			seen[a.Name] = true
			names = append(names, a.Name)
		}
	}

	oldIdx := attrIndex(oldAttrs)
	newIdx := attrIndex(newAttrs)

	var diffs []AttributeDiff
	for _, name := range names {
		oldVal, inOld := oldIdx[name]
		newVal, inNew := newIdx[name]
		switch {
		case inOld && !inNew:
			diffs = append(diffs, AttributeDiff{Name: name, OldValue: strPtr(oldVal), Type: Deleted})
		case !inOld && inNew:
			diffs = append(diffs, AttributeDiff{Name: name, NewValue: strPtr(newVal), Type: Added})
		case inOld && inNew:
			if normalize.Equal(oldVal, newVal, cfg.normConfig()) {
				continue // Unchanged attributes are not reported as diffs.
			}
			diffs = append(diffs, AttributeDiff{
				Name: name, OldValue: strPtr(oldVal), NewValue: strPtr(newVal), Type: Modified,
			})
		}
	}
	return diffs
}

func filteredAttrs(e xmlnode.Element, cfg Config) []xmlnode.Attribute {
	attrs := e.Attributes()
	out := make([]xmlnode.Attribute, 0, len(attrs))
	for _, a := range attrs {
		if a.IsNamespaceDecl() {
			continue
		}
		if cfg.excludedAttributeNames[a.Name] {
			continue
		}
		out = append(out, a)
	}
	return out
}

func attrIndex(attrs []xmlnode.Attribute) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[a.Name] = a.Value
	}
	return m
}

func strPtr(s string) *string { return &s }

// diffValue implements spec §4.5 value diffing: only called for
// leaf-like elements. Normalizes both values; returns nil if
// ignore_values is set or the normalized values are equal, otherwise a
// Modified ValueDiff carrying the raw (unnormalized) texts.
func diffValue(original, modified xmlnode.Element, cfg Config) *ValueDiff {
	if cfg.ignoreValues {
		return nil
	}
	oldText := original.Text()
	newText := modified.Text()
	if normalize.Equal(oldText, newText, cfg.normConfig()) {
		return nil
	}
	return &ValueDiff{OldText: oldText, NewText: newText, Type: Modified}
}

// diffChildren implements spec §4.5 child pairing and ordering. It
// greedily matches each new-document child to the best-scoring
// not-yet-matched old-document child (subject to the match threshold,
// ties broken by earliest old position), recurses on matched pairs, and
// interleaves Deleted nodes at the position they held in the original
// document, immediately before the next surviving sibling.
func diffChildren(parentOld, parentNew xmlnode.Element, parentPath string, cfg Config) []DiffMatch {
	oldKids := parentOld.ChildElements()
	newKids := parentNew.ChildElements()

	matchedOld := make([]bool, len(oldKids))
	oldForNew := make([]int, len(newKids)) // -1 if unmatched (Added)
	for i := range oldForNew {
		oldForNew[i] = -1
	}

	for ni, n := range newKids {
		best := -1
		bestScore := 0.0
		for oi, o := range oldKids {
			if matchedOld[oi] {
				continue
			}
			s := cfg.score(o, n)
			if s >= match.MatchThreshold && s > bestScore {
				bestScore = s
				best = oi
			}
		}
		if best >= 0 {
			matchedOld[best] = true
			oldForNew[ni] = best
		}
	}

	newForOld := make([]int, len(oldKids))
	for i := range newForOld {
		newForOld[i] = -1
	}
	for ni, oi := range oldForNew {
		if oi >= 0 {
			newForOld[oi] = ni
		}
	}

	newIdxByName := sameNameIndex(newKids, cfg.namespaceMode)
	oldIdxByName := sameNameIndex(oldKids, cfg.namespaceMode)

	deletedBeforeNew := make([][]DiffMatch, len(newKids)+1) // len(newKids) slot = tail
	var pending []DiffMatch
	for oi, o := range oldKids {
		if newForOld[oi] >= 0 {
			deletedBeforeNew[newForOld[oi]] = append(deletedBeforeNew[newForOld[oi]], pending...)
			pending = nil
			continue
		}
		cp := childPath(parentPath, o.FullName(cfg.namespaceMode), oldIdxByName[oi])
		pending = append(pending, deletedSubtree(o, cp, cfg))
	}
	deletedBeforeNew[len(newKids)] = pending

	var out []DiffMatch
	for ni, n := range newKids {
		out = append(out, deletedBeforeNew[ni]...)
		cp := childPath(parentPath, n.FullName(cfg.namespaceMode), newIdxByName[ni])
		if oi := oldForNew[ni]; oi >= 0 {
			out = append(out, diffNode(oldKids[oi], n, cp, cfg))
		} else {
			out = append(out, addedSubtree(n, cp, cfg))
		}
	}
	out = append(out, deletedBeforeNew[len(newKids)]...)
	return out
}
