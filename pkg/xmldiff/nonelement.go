package xmldiff

import (
	"github.com/odvcencio/xmldiffmerge/pkg/normalize"
	"github.com/odvcencio/xmldiffmerge/pkg/xmlnode"
)

// diffNonElements implements spec §4.5/§6 non-element-node diffing:
// comments, CDATA sections, and processing instructions are compared
// positionally within their parent, according to the active
// preservation mode. Returns nil when preservation is disabled.
func diffNonElements(original, modified xmlnode.Element, cfg Config) []NonElementDiff {
	mode := cfg.preservation.Mode
	if mode == PreserveNone {
		return nil
	}

	var diffs []NonElementDiff
	if mode == PreserveAll || mode == PreserveCommentsOnly {
		diffs = append(diffs, diffComments(original.Comments(), modified.Comments(), cfg)...)
	}
	if mode == PreserveAll || mode == PreserveCDataOnly {
		diffs = append(diffs, diffCData(original.CDataSections(), modified.CDataSections(), cfg)...)
	}
	if mode == PreserveAll || mode == PreserveProcessingInstructionsOnly {
		diffs = append(diffs, diffProcInsts(original.ProcInsts(), modified.ProcInsts(), cfg)...)
	}
	return diffs
}

func diffComments(oldC, newC []xmlnode.Comment, cfg Config) []NonElementDiff {
	if !cfg.preservation.TrackCommentPosition {
		return diffByContent(oldC, newC, func(c xmlnode.Comment) string { return c.Data },
			func(d DiffType, old, new string) NonElementDiff {
				return NonElementDiff{Kind: NonElementComment, Type: d, OldData: old, NewData: new}
			})
	}
	return diffByPosition(oldC, newC, func(c xmlnode.Comment) string { return c.Data },
		func(d DiffType, old, new string) NonElementDiff {
			return NonElementDiff{Kind: NonElementComment, Type: d, OldData: old, NewData: new}
		})
}

func diffCData(oldD, newD []xmlnode.CData, cfg Config) []NonElementDiff {
	norm := func(s string) string {
		if cfg.preservation.NormalizeCDataWhitespace {
			return normalize.String(s, normalize.Config{IgnoreWhitespace: true, TrimValues: true})
		}
		return s
	}
	return diffByPosition(oldD, newD, func(c xmlnode.CData) string { return norm(c.Data) },
		func(d DiffType, old, new string) NonElementDiff {
			return NonElementDiff{Kind: NonElementCData, Type: d, OldData: old, NewData: new}
		})
}

func diffProcInsts(oldP, newP []xmlnode.ProcInst, cfg Config) []NonElementDiff {
	targetMatch := func(target string) bool {
		if cfg.preservation.PreservePITargets == nil {
			return true
		}
		for _, t := range cfg.preservation.PreservePITargets {
			if cfg.preservation.CaseSensitivePITargets {
				if t == target {
					return true
				}
			} else if equalFold(t, target) {
				return true
			}
		}
		return false
	}

	filterOld := filterProcInsts(oldP, targetMatch)
	filterNew := filterProcInsts(newP, targetMatch)

	n := len(filterOld)
	if len(filterNew) > n {
		n = len(filterNew)
	}
	var diffs []NonElementDiff
	for i := 0; i < n; i++ {
		var o, nn *xmlnode.ProcInst
		if i < len(filterOld) {
			o = &filterOld[i]
		}
		if i < len(filterNew) {
			nn = &filterNew[i]
		}
		switch {
		case o == nil:
			diffs = append(diffs, NonElementDiff{Kind: NonElementProcInst, Type: Added, NewTarget: nn.Target, NewData: nn.Inst})
		case nn == nil:
			diffs = append(diffs, NonElementDiff{Kind: NonElementProcInst, Type: Deleted, OldTarget: o.Target, OldData: o.Inst})
		case o.Target != nn.Target || o.Inst != nn.Inst:
			diffs = append(diffs, NonElementDiff{
				Kind: NonElementProcInst, Type: Modified,
				OldTarget: o.Target, OldData: o.Inst, NewTarget: nn.Target, NewData: nn.Inst,
			})
		}
	}
	return diffs
}

func filterProcInsts(pis []xmlnode.ProcInst, keep func(string) bool) []xmlnode.ProcInst {
	var out []xmlnode.ProcInst
	for _, p := range pis {
		if keep(p.Target) {
			out = append(out, p)
		}
	}
	return out
}

func equalFold(a, b string) bool {
	return normalize.Equal(a, b, normalize.Config{IgnoreCase: true})
}

// diffByPosition compares two positional sequences index by index: this
// is used when position itself is significant (CDATA sections always;
// comments when TrackCommentPosition is set).
func diffByPosition[T any](oldItems, newItems []T, text func(T) string, make_ func(DiffType, string, string) NonElementDiff) []NonElementDiff {
	n := len(oldItems)
	if len(newItems) > n {
		n = len(newItems)
	}
	var diffs []NonElementDiff
	for i := 0; i < n; i++ {
		switch {
		case i >= len(oldItems):
			diffs = append(diffs, make_(Added, "", text(newItems[i])))
		case i >= len(newItems):
			diffs = append(diffs, make_(Deleted, text(oldItems[i]), ""))
		case text(oldItems[i]) != text(newItems[i]):
			diffs = append(diffs, make_(Modified, text(oldItems[i]), text(newItems[i])))
		}
	}
	return diffs
}

// diffByContent compares two sequences by multiset-of-content equality,
// ignoring position: used for comments when TrackCommentPosition is
// false, so only presence/content matters (spec §6).
func diffByContent[T any](oldItems, newItems []T, text func(T) string, make_ func(DiffType, string, string) NonElementDiff) []NonElementDiff {
	oldTexts := make([]string, len(oldItems))
	for i, it := range oldItems {
		oldTexts[i] = text(it)
	}
	newTexts := make([]string, len(newItems))
	for i, it := range newItems {
		newTexts[i] = text(it)
	}

	usedOld := make([]bool, len(oldTexts))
	var diffs []NonElementDiff
	for _, nt := range newTexts {
		found := -1
		for i, ot := range oldTexts {
			if !usedOld[i] && ot == nt {
				found = i
				break
			}
		}
		if found >= 0 {
			usedOld[found] = true
		} else {
			diffs = append(diffs, make_(Added, "", nt))
		}
	}
	for i, ot := range oldTexts {
		if !usedOld[i] {
			diffs = append(diffs, make_(Deleted, ot, ""))
		}
	}
	return diffs
}
