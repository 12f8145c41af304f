package xmldiff

import "github.com/odvcencio/xmldiffmerge/pkg/xmlnode"

// DiffType classifies a node in the diff tree (spec §3).
type DiffType int

const (
	Unchanged DiffType = iota
	Added
	Deleted
	Modified
)

func (t DiffType) String() string {
	switch t {
	case Unchanged:
		return "Unchanged"
	case Added:
		return "Added"
	case Deleted:
		return "Deleted"
	case Modified:
		return "Modified"
	}
	return "Unknown"
}

// AttributeDiff records one attribute's comparison result.
type AttributeDiff struct {
	Name     string
	OldValue *string
	NewValue *string
	Type     DiffType
}

// ValueDiff records a leaf element's text-content comparison result.
type ValueDiff struct {
	OldText string
	NewText string
	Type    DiffType
}

// NonElementDiff describes a comment/CDATA/processing-instruction
// difference when node preservation is enabled (spec §6).
type NonElementKind int

const (
	NonElementComment NonElementKind = iota
	NonElementCData
	NonElementProcInst
)

type NonElementDiff struct {
	Kind     NonElementKind
	Type     DiffType
	OldData  string
	NewData  string
	OldTarget string // ProcInst only
	NewTarget string // ProcInst only
}

// DiffMatch is one node of the hierarchical diff tree (spec §3).
type DiffMatch struct {
	Type             DiffType
	Path             string
	Original         xmlnode.Element // nil for Added
	ModifiedEl       xmlnode.Element // nil for Deleted; named ModifiedEl to read distinctly from the Modified DiffType constant
	AttributeDiffs   []AttributeDiff
	ValueDiff        *ValueDiff
	Children         []DiffMatch
	NonElementDiffs  []NonElementDiff
}

// HasChanges reports whether this node or any descendant differs.
func (d DiffMatch) HasChanges() bool {
	return d.Type != Unchanged
}
