package xmlmerge

import (
	"testing"

	"github.com/odvcencio/xmldiffmerge/pkg/xmldiff"
	"github.com/stretchr/testify/require"
)

// TestAutoMergeResolver_UnionsAttributesAndChildren forces a genuine
// AttributeConflict (v changed differently on both sides) alongside
// disjoint attribute additions and disjoint child additions, so
// AutoMergeResolver.union must concatenate v while carrying the
// non-conflicting attributes and children through untouched.
func TestAutoMergeResolver_UnionsAttributesAndChildren(t *testing.T) {
	base := parse(t, `<r><a v="1"><x/></a></r>`)
	ours := parse(t, `<r><a v="2" extra="ours"><x/><y/></a></r>`)
	theirs := parse(t, `<r><a v="3" other="theirs"><x/><z/></a></r>`)

	result := Merge(base, ours, theirs, xmldiff.NewConfig(), NewAutoMergeResolver())
	require.False(t, result.IsFailed(), "merge should not fail: %s", result.ErrorMessage())
	require.Len(t, result.Conflicts, 1)
	require.True(t, result.Conflicts[0].WasResolverResolved())

	child := result.MergedDocument.ChildElements()[0]

	v, ok := attrOf(t, child, "v")
	require.True(t, ok)
	require.Equal(t, "2 | 3", v)

	extra, ok := attrOf(t, child, "extra")
	require.True(t, ok, "expected ours-only attribute to survive the union")
	require.Equal(t, "ours", extra)

	other, ok := attrOf(t, child, "other")
	require.True(t, ok, "expected theirs-only attribute to survive the union")
	require.Equal(t, "theirs", other)

	require.Len(t, child.ChildElements(), 3, "expected x (shared), y (ours), z (theirs)")
}

// TestAutoMergeResolver_OneSidedAttributeSurvivesAlongsideConflict checks
// that a one-sided attribute change isn't clobbered into a bogus
// concatenation just because a different attribute on the same element
// is in genuine conflict: w only ever changed on theirs, so it should
// come through as plain "9", not "5 | 9".
func TestAutoMergeResolver_OneSidedAttributeSurvivesAlongsideConflict(t *testing.T) {
	base := parse(t, `<a v="1" w="5"/>`)
	ours := parse(t, `<a v="2" w="5"/>`)
	theirs := parse(t, `<a v="3" w="9"/>`)

	result := Merge(base, ours, theirs, xmldiff.NewConfig(), NewAutoMergeResolver())
	require.False(t, result.IsFailed(), "merge should not fail: %s", result.ErrorMessage())

	merged := result.MergedDocument
	v, ok := attrOf(t, merged, "v")
	require.True(t, ok)
	require.Equal(t, "2 | 3", v)

	w, ok := attrOf(t, merged, "w")
	require.True(t, ok)
	require.Equal(t, "9", w)
}

// TestBaseResolver_IsTheDefault checks that an explicit BaseResolver and
// a nil resolver agree on the merged document, but differ in whether the
// conflict is tallied as resolver-resolved.
func TestBaseResolver_IsTheDefault(t *testing.T) {
	base := parse(t, `<r><a v="1"/></r>`)
	ours := parse(t, `<r><a v="2"/></r>`)
	theirs := parse(t, `<r><a v="3"/></r>`)

	withNil := Merge(base, ours, theirs, xmldiff.NewConfig(), nil)
	withBase := Merge(base, ours, theirs, xmldiff.NewConfig(), BaseResolver)

	require.Equal(t, 1, len(withNil.Conflicts))
	require.Equal(t, 1, len(withBase.Conflicts))
	require.False(t, withNil.Conflicts[0].WasResolverResolved())
	require.True(t, withBase.Conflicts[0].WasResolverResolved())

	v1, _ := attrOf(t, withNil.MergedDocument.ChildElements()[0], "v")
	v2, _ := attrOf(t, withBase.MergedDocument.ChildElements()[0], "v")
	require.Equal(t, v1, v2)
}
