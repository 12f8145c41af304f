package xmlmerge

import (
	"bytes"

	"strings"

	"github.com/odvcencio/xmldiffmerge/pkg/linemerge"
	"github.com/odvcencio/xmldiffmerge/pkg/match"
	"github.com/odvcencio/xmldiffmerge/pkg/normalize"
	"github.com/odvcencio/xmldiffmerge/pkg/xmldiff"
	"github.com/odvcencio/xmldiffmerge/pkg/xmlnode"
)

type mergeCtx struct {
	cfg         xmldiff.Config
	resolver    ConflictResolver
	hasResolver bool
	builder     xmlnode.Builder
	conflicts   []MergeConflict
	stats       MergeStats
}

// Merge performs a three-way merge of base/ours/theirs document roots
// under cfg (spec §4.6). A nil resolver defaults to BaseResolver: every
// conflict keeps the base content and is reported as unresolved (spec
// §7: "if resolver=None, conflicted areas retain the base content").
func Merge(base, ours, theirs xmlnode.Element, cfg xmldiff.Config, resolver ConflictResolver) MergeResult {
	if base == nil || ours == nil || theirs == nil {
		return Failure("merge requires non-nil base, ours, and theirs document roots",
			&InvalidInputError{Reason: "nil document root"})
	}

	if fast, ok := fastPathResult(base, ours, theirs); ok {
		return fast
	}

	hasResolver := resolver != nil
	if resolver == nil {
		resolver = BaseResolver
	}

	mc := &mergeCtx{cfg: cfg, resolver: resolver, hasResolver: hasResolver, builder: xmlnode.EtreeBuilder{}}

	do := xmldiff.Diff(base, ours, cfg)
	dt := xmldiff.Diff(base, theirs, cfg)

	merged := mc.mergePair(base, do, dt, do.Path)
	return MergeResult{MergedDocument: merged, Conflicts: mc.conflicts, Statistics: mc.stats}
}

// fastPathResult implements spec_full §5's binary/empty-document fast
// path: whole-document byte equality shortcuts before any tree walk
// (spec Testable Property 6).
func fastPathResult(base, ours, theirs xmlnode.Element) (MergeResult, bool) {
	bb, errB := xmlnode.Serialize(base)
	bo, errO := xmlnode.Serialize(ours)
	bt, errT := xmlnode.Serialize(theirs)
	if errB != nil || errO != nil || errT != nil {
		return MergeResult{}, false
	}

	switch {
	case bytes.Equal(bo, bt):
		return MergeResult{MergedDocument: ours}, true
	case bytes.Equal(bb, bo):
		return MergeResult{MergedDocument: theirs}, true
	case bytes.Equal(bb, bt):
		return MergeResult{MergedDocument: ours}, true
	}
	return MergeResult{}, false
}

// mergePair classifies and merges the pair of base-anchored diff nodes
// (oNode: base vs ours, tNode: base vs theirs) describing the same base
// element, per the disposition table in spec §4.6.
func (mc *mergeCtx) mergePair(base xmlnode.Element, oNode, tNode xmldiff.DiffMatch, path string) xmlnode.Element {
	mc.stats.TotalElements++

	switch {
	case oNode.Type == xmldiff.Unchanged && tNode.Type == xmldiff.Unchanged:
		mc.stats.Unchanged++
		return base

	case oNode.Type == xmldiff.Unchanged && tNode.Type == xmldiff.Deleted:
		mc.stats.TheirsOnly++
		mc.stats.Deleted++
		return nil

	case oNode.Type == xmldiff.Unchanged: // tNode Modified
		mc.stats.TheirsOnly++
		return tNode.ModifiedEl

	case tNode.Type == xmldiff.Unchanged && oNode.Type == xmldiff.Deleted:
		mc.stats.OursOnly++
		mc.stats.Deleted++
		return nil

	case tNode.Type == xmldiff.Unchanged: // oNode Modified
		mc.stats.OursOnly++
		return oNode.ModifiedEl

	case oNode.Type == xmldiff.Deleted && tNode.Type == xmldiff.Deleted:
		// Both sides agree the element is gone. Never surfaced as a
		// DeleteDelete conflict (spec §9b).
		mc.stats.Unchanged++
		mc.stats.Deleted++
		return nil

	case oNode.Type == xmldiff.Deleted || tNode.Type == xmldiff.Deleted:
		return mc.resolveModifyDelete(base, oNode, tNode, path)

	default: // both Modified
		return mc.resolveBothModified(base, oNode, tNode, path)
	}
}

func (mc *mergeCtx) resolveModifyDelete(base xmlnode.Element, oNode, tNode xmldiff.DiffMatch, path string) xmlnode.Element {
	conflict := MergeConflict{Path: path, BaseElement: base, Type: ModifyDelete, IdentityHint: identityHint(base)}
	if oNode.Type == xmldiff.Deleted {
		conflict.TheirsElement = tNode.ModifiedEl
		conflict.Description = "ours deleted the element, theirs modified it"
	} else {
		conflict.OursElement = oNode.ModifiedEl
		conflict.Description = "theirs deleted the element, ours modified it"
	}
	res := mc.recordConflict(&conflict)
	switch res.Decision {
	case DecisionOurs:
		return conflict.OursElement
	case DecisionTheirs:
		return conflict.TheirsElement
	case DecisionCustom:
		return res.Element
	case DecisionRemove:
		return nil
	default: // DecisionBase: the element reverts to its base content.
		return conflict.BaseElement
	}
}

func (mc *mergeCtx) resolveBothModified(base xmlnode.Element, oNode, tNode xmldiff.DiffMatch, path string) xmlnode.Element {
	if xmldiff.Diff(oNode.ModifiedEl, tNode.ModifiedEl, mc.cfg).Type == xmldiff.Unchanged {
		mc.stats.AutoMerged++
		return oNode.ModifiedEl
	}
	return mc.mergeModifiedElement(base, oNode, tNode, path)
}

// mergeModifiedElement implements the element-level three-way
// combination: attributes and leaf text combine per-field, with a
// conflict recorded only when the same field changed incompatibly on
// both sides; children recurse through mergeChildrenLockstep (spec
// §4.6).
func (mc *mergeCtx) mergeModifiedElement(base xmlnode.Element, oNode, tNode xmldiff.DiffMatch, path string) xmlnode.Element {
	ours := oNode.ModifiedEl
	theirs := tNode.ModifiedEl

	attrs, attrConflicts := mc.mergeAttributes(base, oNode.AttributeDiffs, tNode.AttributeDiffs)

	var text string
	var hasText, valueConflict bool
	if ours.IsLeaf() && theirs.IsLeaf() {
		hasText = true
		text, valueConflict = mc.mergeValue(base, oNode.ValueDiff, tNode.ValueDiff)
	}

	var children []xmlnode.Element
	if !ours.IsLeaf() || !theirs.IsLeaf() {
		children = mc.mergeChildrenLockstep(base, oNode.Children, tNode.Children)
	}

	nsConflict := namespaceDivergence(ours, theirs)

	merged := mc.builder.Clone(ours)
	merged = mc.builder.WithAttributes(merged, attrs)
	if hasText {
		merged = mc.builder.WithText(merged, text)
	}
	if !ours.IsLeaf() || !theirs.IsLeaf() {
		merged = mc.builder.WithChildren(merged, children)
	}

	if len(attrConflicts) == 0 && !valueConflict && !nsConflict {
		mc.stats.AutoMerged++
		return merged
	}

	ctype := ModifyModify
	switch {
	case nsConflict:
		ctype = NamespaceConflict
	case len(attrConflicts) > 0 && !valueConflict:
		ctype = AttributeConflict
	}

	conflict := MergeConflict{
		Path: path, BaseElement: base, OursElement: ours, TheirsElement: theirs,
		Type: ctype, AttributeNames: attrConflicts, IdentityHint: identityHint(base),
		Description: describeConflict(ctype, attrConflicts, valueConflict),
	}
	res := mc.recordConflict(&conflict)
	switch res.Decision {
	case DecisionOurs:
		return ours
	case DecisionTheirs:
		return theirs
	case DecisionCustom:
		return res.Element
	case DecisionRemove:
		return nil
	default:
		// DecisionBase: fields that didn't conflict already carry their
		// auto-merged value in merged; only the conflicting fields fall
		// back to base (encoded into attrs/text by mergeAttributes and
		// mergeValue above), so merged is the right default — not the
		// raw base element, which would also discard the clean changes.
		return merged
	}
}

// recordConflict tallies the conflict and asks the resolver (or the
// implicit base fallback) for a verdict. It never decides which element
// to use: each call site knows its own meaning for DecisionBase.
func (mc *mergeCtx) recordConflict(conflict *MergeConflict) Resolution {
	mc.stats.ConflictCount++
	res := mc.resolver.Resolve(*conflict)
	if mc.hasResolver {
		conflict.resolverResolved = true
		mc.stats.ResolverResolved++
	}
	mc.conflicts = append(mc.conflicts, *conflict)
	return res
}

// mergeAttributes combines base/ours/theirs attribute sets name by
// name (spec §4.6 attribute-level three-way merge).
func (mc *mergeCtx) mergeAttributes(base xmlnode.Element, oDiffs, tDiffs []xmldiff.AttributeDiff) ([]xmlnode.Attribute, []string) {
	baseAttrs := attrValueMap(base.Attributes())
	oMap := attrDiffMap(oDiffs)
	tMap := attrDiffMap(tDiffs)
	names := unionAttrNames(base.Attributes(), oDiffs, tDiffs)

	var out []xmlnode.Attribute
	var conflicts []string
	for _, name := range names {
		baseVal, hasBase := baseAttrs[name]
		oDiff, oChanged := oMap[name]
		tDiff, tChanged := tMap[name]

		switch {
		case !oChanged && !tChanged:
			if hasBase {
				out = append(out, xmlnode.Attribute{Name: name, Value: baseVal})
			}
		case oChanged && !tChanged:
			if v, present := newAttrValue(oDiff); present {
				out = append(out, xmlnode.Attribute{Name: name, Value: v})
			}
		case !oChanged && tChanged:
			if v, present := newAttrValue(tDiff); present {
				out = append(out, xmlnode.Attribute{Name: name, Value: v})
			}
		default:
			oVal, oPresent := newAttrValue(oDiff)
			tVal, tPresent := newAttrValue(tDiff)
			switch {
			case oPresent != tPresent:
				conflicts = append(conflicts, name)
				if hasBase {
					out = append(out, xmlnode.Attribute{Name: name, Value: baseVal})
				}
			case !oPresent && !tPresent:
				// both removed the attribute: agree, omit.
			case normalize.Equal(oVal, tVal, mc.cfg.NormalizeConfig()):
				out = append(out, xmlnode.Attribute{Name: name, Value: oVal})
			default:
				conflicts = append(conflicts, name)
				if hasBase {
					out = append(out, xmlnode.Attribute{Name: name, Value: baseVal})
				}
			}
		}
	}
	return out, conflicts
}

func (mc *mergeCtx) mergeValue(base xmlnode.Element, oDiff, tDiff *xmldiff.ValueDiff) (string, bool) {
	baseText := base.Text()
	switch {
	case oDiff == nil && tDiff == nil:
		return baseText, false
	case oDiff != nil && tDiff == nil:
		return oDiff.NewText, false
	case oDiff == nil && tDiff != nil:
		return tDiff.NewText, false
	default:
		if normalize.Equal(oDiff.NewText, tDiff.NewText, mc.cfg.NormalizeConfig()) {
			return oDiff.NewText, false
		}
		// Both sides changed the text differently. If it spans several
		// lines, a whole-value conflict throws away edits that landed on
		// different lines; try a line-level merge first (spec_full §5
		// multi-line leaf text enrichment) and only fall back to the
		// base value when the lines themselves collide.
		if strings.Contains(baseText, "\n") || strings.Contains(oDiff.NewText, "\n") || strings.Contains(tDiff.NewText, "\n") {
			r := linemerge.Merge(baseText, oDiff.NewText, tDiff.NewText)
			if !r.HasConflicts {
				return r.Merged, false
			}
		}
		return baseText, true
	}
}

// mergeChildrenLockstep walks base's children, merging each matched
// pair via mergePair and interleaving elements added by either side at
// the position the diff engine assigned them (spec §4.6).
func (mc *mergeCtx) mergeChildrenLockstep(base xmlnode.Element, oChildren, tChildren []xmldiff.DiffMatch) []xmlnode.Element {
	oByBase := indexByBase(oChildren)
	tByBase := indexByBase(tChildren)
	oBefore, oTail := collectAdded(oChildren)
	tBefore, tTail := collectAdded(tChildren)

	var out []xmlnode.Element
	for _, bc := range base.ChildElements() {
		out = append(out, mc.mergeAddedPair(oBefore[bc], tBefore[bc])...)

		oEntry, hasO := oByBase[bc]
		tEntry, hasT := tByBase[bc]
		if !hasO || !hasT {
			continue
		}
		if merged := mc.mergePair(bc, oEntry, tEntry, oEntry.Path); merged != nil {
			out = append(out, merged)
		}
	}
	out = append(out, mc.mergeAddedPair(oTail, tTail)...)
	return out
}

// mergeAddedPair implements the AddAdd side of spec §4.6: elements
// added by only one side pass through untouched (ours_only/theirs_only);
// elements added by both sides at the same anchor are compared by the
// matching strategy — a high-scoring pair with identical content is
// taken once (auto-merged), a high-scoring pair with different content
// is a genuine AddAdd conflict (same logical insertion), and anything
// else is kept as independent parallel insertions (spec_full §5
// softening rule).
func (mc *mergeCtx) mergeAddedPair(oAdds, tAdds []xmldiff.DiffMatch) []xmlnode.Element {
	if len(oAdds) == 0 && len(tAdds) == 0 {
		return nil
	}
	if len(tAdds) == 0 {
		return mc.takeAdded(oAdds, true)
	}
	if len(oAdds) == 0 {
		return mc.takeAdded(tAdds, false)
	}

	if len(oAdds) == 1 && len(tAdds) == 1 &&
		mc.cfg.Score(oAdds[0].ModifiedEl, tAdds[0].ModifiedEl) >= match.MatchThreshold {
		mc.stats.TotalElements++
		if xmldiff.Diff(oAdds[0].ModifiedEl, tAdds[0].ModifiedEl, mc.cfg).Type == xmldiff.Unchanged {
			mc.stats.AutoMerged++
			return []xmlnode.Element{oAdds[0].ModifiedEl}
		}
		conflict := MergeConflict{
			Path: oAdds[0].Path, OursElement: oAdds[0].ModifiedEl, TheirsElement: tAdds[0].ModifiedEl,
			Type: AddAdd, IdentityHint: identityHint(oAdds[0].ModifiedEl),
			Description: "both sides independently added a matching element with different content",
		}
		res := mc.recordConflict(&conflict)
		var el xmlnode.Element
		switch res.Decision {
		case DecisionOurs:
			el = conflict.OursElement
		case DecisionTheirs:
			el = conflict.TheirsElement
		case DecisionCustom:
			el = res.Element
		default: // DecisionBase or DecisionRemove: no base content to fall back to.
			el = nil
		}
		if el != nil {
			return []xmlnode.Element{el}
		}
		return nil
	}

	out := mc.takeAdded(oAdds, true)
	out = append(out, mc.takeAdded(tAdds, false)...)
	return out
}

func (mc *mergeCtx) takeAdded(adds []xmldiff.DiffMatch, ours bool) []xmlnode.Element {
	out := make([]xmlnode.Element, 0, len(adds))
	for _, d := range adds {
		mc.stats.TotalElements++
		mc.stats.Added++
		if ours {
			mc.stats.OursOnly++
		} else {
			mc.stats.TheirsOnly++
		}
		out = append(out, d.ModifiedEl)
	}
	return out
}
