package xmlmerge

import (
	"testing"

	"github.com/odvcencio/xmldiffmerge/pkg/xmldiff"
	"github.com/odvcencio/xmldiffmerge/pkg/xmlnode"
)

func parse(t *testing.T, xml string) xmlnode.Element {
	t.Helper()
	el, err := xmlnode.ParseDocument([]byte(xml))
	if err != nil {
		t.Fatalf("parse %q: %v", xml, err)
	}
	return el
}

func attrOf(t *testing.T, e xmlnode.Element, name string) (string, bool) {
	t.Helper()
	for _, a := range e.Attributes() {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// TestS4CleanMerge matches spec.md scenario S4: non-overlapping
// attribute changes merge without conflict.
func TestS4CleanMerge(t *testing.T) {
	base := parse(t, `<r><a v="1"/></r>`)
	ours := parse(t, `<r><a v="2"/></r>`)
	theirs := parse(t, `<r><a w="9" v="1"/></r>`)

	result := Merge(base, ours, theirs, xmldiff.NewConfig(), nil)

	if result.HasConflicts() {
		t.Fatalf("expected no conflicts, got %+v", result.Conflicts)
	}
	child := result.MergedDocument.ChildElements()[0]
	v, _ := attrOf(t, child, "v")
	w, _ := attrOf(t, child, "w")
	if v != "2" || w != "9" {
		t.Fatalf("expected v=2 w=9, got v=%q w=%q", v, w)
	}
	if result.Statistics.AutoMerged == 0 {
		t.Errorf("expected at least one auto_merged element")
	}
}

// TestS5AttributeConflictAutoMerge matches spec.md scenario S5: the
// same attribute changed differently on both sides is an
// AttributeConflict, and AutoMergeResolver concatenates the values.
func TestS5AttributeConflictAutoMerge(t *testing.T) {
	base := parse(t, `<r><a v="1"/></r>`)
	ours := parse(t, `<r><a v="2"/></r>`)
	theirs := parse(t, `<r><a v="3"/></r>`)

	withoutResolver := Merge(base, ours, theirs, xmldiff.NewConfig(), nil)
	if len(withoutResolver.Conflicts) != 1 {
		t.Fatalf("expected exactly one conflict, got %d", len(withoutResolver.Conflicts))
	}
	c := withoutResolver.Conflicts[0]
	if c.Type != AttributeConflict && c.Type != ModifyModify {
		t.Errorf("expected AttributeConflict or ModifyModify, got %v", c.Type)
	}
	if c.WasResolverResolved() {
		t.Errorf("expected unresolved conflict with nil resolver")
	}
	baseChild := withoutResolver.MergedDocument.ChildElements()[0]
	if v, _ := attrOf(t, baseChild, "v"); v != "1" {
		t.Errorf("expected base value retained (v=1) without resolver, got v=%q", v)
	}

	withAutoMerge := Merge(base, ours, theirs, xmldiff.NewConfig(), NewAutoMergeResolver())
	if len(withAutoMerge.Conflicts) != 1 || !withAutoMerge.Conflicts[0].WasResolverResolved() {
		t.Fatalf("expected one resolver-resolved conflict, got %+v", withAutoMerge.Conflicts)
	}
	mergedChild := withAutoMerge.MergedDocument.ChildElements()[0]
	if v, _ := attrOf(t, mergedChild, "v"); v != "2 | 3" {
		t.Errorf("expected AutoMerge to concatenate '2 | 3', got %q", v)
	}
}

// TestS6ModifyDeleteConflict matches spec.md scenario S6.
func TestS6ModifyDeleteConflict(t *testing.T) {
	base := parse(t, `<r><a v="1"/></r>`)
	ours := parse(t, `<r></r>`)
	theirs := parse(t, `<r><a v="2"/></r>`)

	result := Merge(base, ours, theirs, xmldiff.NewConfig(), nil)

	if len(result.Conflicts) != 1 {
		t.Fatalf("expected exactly one conflict, got %d: %+v", len(result.Conflicts), result.Conflicts)
	}
	if result.Conflicts[0].Type != ModifyDelete {
		t.Errorf("expected ModifyDelete, got %v", result.Conflicts[0].Type)
	}
	if !result.Conflicts[0].IsModifyDelete() {
		t.Errorf("IsModifyDelete() should report true")
	}

	// Without a resolver, base content (the element) is retained.
	if len(result.MergedDocument.ChildElements()) != 1 {
		t.Fatalf("expected base element retained under default resolution, got %d children",
			len(result.MergedDocument.ChildElements()))
	}

	withOurs := Merge(base, ours, theirs, xmldiff.NewConfig(), OursResolver)
	if len(withOurs.MergedDocument.ChildElements()) != 0 {
		t.Errorf("expected OursResolver to honor the deletion")
	}
}

// TestMultiLineTextMergesByLine validates the spec_full §5 multi-line
// leaf text enrichment: edits to different lines of the same element
// text merge without a conflict instead of falling back to base.
func TestMultiLineTextMergesByLine(t *testing.T) {
	base := parse(t, "<r><a>line1\nline2\nline3</a></r>")
	ours := parse(t, "<r><a>OURS-line1\nline2\nline3</a></r>")
	theirs := parse(t, "<r><a>line1\nline2\nTHEIRS-line3</a></r>")

	result := Merge(base, ours, theirs, xmldiff.NewConfig(), nil)
	if result.HasConflicts() {
		t.Fatalf("expected non-overlapping line edits to merge cleanly, got %+v", result.Conflicts)
	}
	child := result.MergedDocument.ChildElements()[0]
	want := "OURS-line1\nline2\nTHEIRS-line3"
	if got := child.Text(); got != want {
		t.Errorf("merged text = %q, want %q", got, want)
	}
}

// TestMultiLineTextSameLineConflict validates that edits to the same
// line on both sides still surface as an unresolved value conflict.
func TestMultiLineTextSameLineConflict(t *testing.T) {
	base := parse(t, "<r><a>line1\nline2\nline3</a></r>")
	ours := parse(t, "<r><a>line1\nOURS\nline3</a></r>")
	theirs := parse(t, "<r><a>line1\nTHEIRS\nline3</a></r>")

	result := Merge(base, ours, theirs, xmldiff.NewConfig(), nil)
	if len(result.Conflicts) != 1 {
		t.Fatalf("expected exactly one conflict, got %d: %+v", len(result.Conflicts), result.Conflicts)
	}
	child := result.MergedDocument.ChildElements()[0]
	if got := child.Text(); got != base.ChildElements()[0].Text() {
		t.Errorf("expected base text retained on same-line conflict, got %q", got)
	}
}

// TestMergeIdentitySymmetry validates spec Testable Property 7:
// merge(x, x, x) == x, with no conflicts.
func TestMergeIdentitySymmetry(t *testing.T) {
	doc := parse(t, `<r><a id="1" v="x"><b>hi</b></a></r>`)
	result := Merge(doc, doc, doc, xmldiff.NewConfig(), nil)
	if result.HasConflicts() {
		t.Fatalf("expected no conflicts merging a document with itself, got %+v", result.Conflicts)
	}
	if xmldiff.Diff(doc, result.MergedDocument, xmldiff.NewConfig()).Type != xmldiff.Unchanged {
		t.Errorf("expected merged document to equal the input")
	}
}

// TestMergeOneSidedChangeIsIdentity validates spec Testable Property 7:
// merge(base, x, base) == x and merge(base, base, y) == y.
func TestMergeOneSidedChangeIsIdentity(t *testing.T) {
	base := parse(t, `<r><a v="1"/></r>`)
	ours := parse(t, `<r><a v="9"/></r>`)

	result := Merge(base, ours, base, xmldiff.NewConfig(), nil)
	if result.HasConflicts() {
		t.Fatalf("unexpected conflicts: %+v", result.Conflicts)
	}
	if xmldiff.Diff(ours, result.MergedDocument, xmldiff.NewConfig()).Type != xmldiff.Unchanged {
		t.Errorf("expected merge(base, ours, base) to equal ours")
	}

	theirs := parse(t, `<r><a v="7"/></r>`)
	result = Merge(base, base, theirs, xmldiff.NewConfig(), nil)
	if result.HasConflicts() {
		t.Fatalf("unexpected conflicts: %+v", result.Conflicts)
	}
	if xmldiff.Diff(theirs, result.MergedDocument, xmldiff.NewConfig()).Type != xmldiff.Unchanged {
		t.Errorf("expected merge(base, base, theirs) to equal theirs")
	}
}

// TestAddAddParallelInsertion validates the spec_full §5 softening rule:
// unrelated elements added independently by both sides are both kept.
func TestAddAddParallelInsertion(t *testing.T) {
	base := parse(t, `<r></r>`)
	ours := parse(t, `<r><a/></r>`)
	theirs := parse(t, `<r><b/></r>`)

	result := Merge(base, ours, theirs, xmldiff.NewConfig(), nil)
	if result.HasConflicts() {
		t.Fatalf("expected no conflict for unrelated parallel insertions, got %+v", result.Conflicts)
	}
	if len(result.MergedDocument.ChildElements()) != 2 {
		t.Fatalf("expected both inserted elements kept, got %d", len(result.MergedDocument.ChildElements()))
	}
}

// TestAddAddConflict validates the AddAdd conflict path: both sides add
// a matching element (by key attribute) with different content.
func TestAddAddConflict(t *testing.T) {
	base := parse(t, `<r></r>`)
	ours := parse(t, `<r><a id="1" v="x"/></r>`)
	theirs := parse(t, `<r><a id="1" v="y"/></r>`)

	cfg := xmldiff.NewConfig(xmldiff.WithKeyAttributeNames("id"))
	result := Merge(base, ours, theirs, cfg, nil)

	if len(result.Conflicts) != 1 || result.Conflicts[0].Type != AddAdd {
		t.Fatalf("expected one AddAdd conflict, got %+v", result.Conflicts)
	}
}
