package xmlmerge

import (
	"github.com/odvcencio/xmldiffmerge/pkg/match"
	"github.com/odvcencio/xmldiffmerge/pkg/xmlnode"
)

// Decision is a resolver's verdict on one MergeConflict.
type Decision int

const (
	// DecisionBase keeps the base revision (or drops the node entirely
	// when base is absent, as for AddAdd).
	DecisionBase Decision = iota
	DecisionOurs
	DecisionTheirs
	// DecisionCustom uses Resolution.Element, built by the resolver.
	DecisionCustom
	// DecisionRemove drops the node from the merged document.
	DecisionRemove
)

// Resolution is a resolver's answer for one conflict (spec §6
// ConflictResolver: "receives (path, base, ours, theirs) and returns the
// node to use in the output, or None to omit it").
type Resolution struct {
	Decision Decision
	Element  xmlnode.Element // only consulted when Decision == DecisionCustom
}

// ConflictResolver decides how to resolve one MergeConflict. It is never
// invoked for non-conflicting changes (spec §6: auto-mergeable changes
// never reach the resolver).
type ConflictResolver interface {
	Resolve(conflict MergeConflict) Resolution
}

// ConflictResolverFunc adapts a plain function to ConflictResolver.
type ConflictResolverFunc func(MergeConflict) Resolution

func (f ConflictResolverFunc) Resolve(c MergeConflict) Resolution { return f(c) }

// OursResolver always keeps the ours revision (spec §6 predefined
// resolvers).
var OursResolver ConflictResolver = ConflictResolverFunc(func(MergeConflict) Resolution {
	return Resolution{Decision: DecisionOurs}
})

// TheirsResolver always keeps the theirs revision.
var TheirsResolver ConflictResolver = ConflictResolverFunc(func(MergeConflict) Resolution {
	return Resolution{Decision: DecisionTheirs}
})

// BaseResolver always keeps the base revision (or drops the node where
// base has none, e.g. AddAdd). This is also the implicit behavior when
// Merge is called with a nil resolver.
var BaseResolver ConflictResolver = ConflictResolverFunc(func(MergeConflict) Resolution {
	return Resolution{Decision: DecisionBase}
})

// AutoMergeSeparator is the default join string AutoMergeResolver uses
// when concatenating two conflicting text or attribute values (spec §6
// AutoMerge strategy).
const AutoMergeSeparator = " | "

// AutoMergeResolver attempts a structural union before giving up: for
// AttributeConflict/ModifyModify it unions attributes and children and
// joins conflicting scalar values with Separator; for ModifyDelete it
// keeps whichever side still has content; for AddAdd with similarly
// identified elements it unions them the same way. This is the resolver
// described in spec §6 and exercised by scenario S5.
type AutoMergeResolver struct {
	Separator string
	Builder   xmlnode.Builder
}

// NewAutoMergeResolver builds an AutoMergeResolver with the default
// separator and the etree-backed builder.
func NewAutoMergeResolver() *AutoMergeResolver {
	return &AutoMergeResolver{Separator: AutoMergeSeparator, Builder: xmlnode.EtreeBuilder{}}
}

func (r *AutoMergeResolver) sep() string {
	if r.Separator == "" {
		return AutoMergeSeparator
	}
	return r.Separator
}

func (r *AutoMergeResolver) Resolve(c MergeConflict) Resolution {
	switch c.Type {
	case ModifyDelete:
		if c.OursElement != nil {
			return Resolution{Decision: DecisionOurs}
		}
		return Resolution{Decision: DecisionTheirs}
	case AddAdd:
		if c.OursElement != nil && c.TheirsElement != nil {
			return Resolution{Decision: DecisionCustom, Element: r.union(nil, c.OursElement, c.TheirsElement)}
		}
		if c.OursElement != nil {
			return Resolution{Decision: DecisionOurs}
		}
		return Resolution{Decision: DecisionTheirs}
	case AttributeConflict, ModifyModify, NamespaceConflict:
		if c.OursElement == nil {
			return Resolution{Decision: DecisionTheirs}
		}
		if c.TheirsElement == nil {
			return Resolution{Decision: DecisionOurs}
		}
		return Resolution{Decision: DecisionCustom, Element: r.union(c.BaseElement, c.OursElement, c.TheirsElement)}
	}
	return Resolution{Decision: DecisionBase}
}

// union builds one element out of base/ours/theirs: each attribute and
// the leaf text (when present) is resolved against base with the same
// three-way logic mergeAttributes/mergeValue use elsewhere — a side
// that left a field unchanged from base never contributes to the
// result, so only fields both sides actually touched, and touched
// differently, get concatenated with the separator. Children from both
// sides are concatenated, skipping a theirs child that scores as the
// same element as one already taken from ours (spec §9 decision: the
// engine itself never silently picks a side on a flagged conflict —
// only this resolver's explicit policy concatenates).
func (r *AutoMergeResolver) union(base, ours, theirs xmlnode.Element) xmlnode.Element {
	merged := r.Builder.Clone(ours)
	merged = r.Builder.WithAttributes(merged, r.unionAttributes(base, ours, theirs))

	if ours.IsLeaf() && theirs.IsLeaf() {
		bv, bOK := "", false
		if base != nil {
			bv, bOK = base.Text(), true
		}
		merged = r.Builder.WithText(merged, r.resolveValue(bv, bOK, ours.Text(), theirs.Text()))
	} else {
		children := append([]xmlnode.Element(nil), ours.ChildElements()...)
		for _, tc := range theirs.ChildElements() {
			dup := false
			for _, oc := range ours.ChildElements() {
				if match.Default(oc, tc, match.Config{}) >= match.MatchThreshold {
					dup = true
					break
				}
			}
			if !dup {
				children = append(children, tc)
			}
		}
		merged = r.Builder.WithChildren(merged, children)
	}

	return merged
}

// resolveValue picks the three-way outcome for one scalar (an
// attribute value or leaf text): unchanged-from-base loses to whatever
// the other side did, agreement on a new value needs no concatenation,
// and only a genuine divergence from base on both sides gets joined.
func (r *AutoMergeResolver) resolveValue(baseVal string, baseOK bool, ourVal, theirVal string) string {
	if ourVal == theirVal {
		return ourVal
	}
	if baseOK && ourVal == baseVal {
		return theirVal
	}
	if baseOK && theirVal == baseVal {
		return ourVal
	}
	if ourVal == "" {
		return theirVal
	}
	if theirVal == "" {
		return ourVal
	}
	return ourVal + r.sep() + theirVal
}

func attrValue(e xmlnode.Element, name string) (string, bool) {
	if e == nil {
		return "", false
	}
	for _, a := range e.Attributes() {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// unionAttributes walks every attribute name present on ours or
// theirs and resolves each independently against base, instead of
// diffing ours against theirs directly (which would wrongly
// concatenate a field only one side ever touched).
func (r *AutoMergeResolver) unionAttributes(base, ours, theirs xmlnode.Element) []xmlnode.Attribute {
	var order []string
	seen := map[string]bool{}
	for _, a := range ours.Attributes() {
		if !seen[a.Name] {
			seen[a.Name] = true
			order = append(order, a.Name)
		}
	}
	for _, a := range theirs.Attributes() {
		if !seen[a.Name] {
			seen[a.Name] = true
			order = append(order, a.Name)
		}
	}

	var result []xmlnode.Attribute
	for _, name := range order {
		ov, oOK := attrValue(ours, name)
		tv, tOK := attrValue(theirs, name)
		bv, bOK := attrValue(base, name)

		switch {
		case oOK && tOK:
			result = append(result, xmlnode.Attribute{Name: name, Value: r.resolveValue(bv, bOK, ov, tv)})
		case oOK && !tOK:
			if bOK && ov == bv {
				// theirs deleted it, ours left it unchanged: honor the deletion.
				continue
			}
			result = append(result, xmlnode.Attribute{Name: name, Value: ov})
		case tOK && !oOK:
			if bOK && tv == bv {
				continue
			}
			result = append(result, xmlnode.Attribute{Name: name, Value: tv})
		}
	}
	return result
}
