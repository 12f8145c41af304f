// Package xmlmerge implements the three-way merge engine (spec §4.6):
// given base, ours, and theirs document roots, it reuses pkg/xmldiff to
// compute base→ours and base→theirs, walks both diffs in lockstep on
// base's structure, applies non-overlapping changes, and reports
// MergeConflict entries for the rest.
package xmlmerge

import (
	"errors"
	"fmt"

	"github.com/odvcencio/xmldiffmerge/pkg/xmlnode"
)

// ConflictType classifies a MergeConflict (spec §3).
type ConflictType int

const (
	AddAdd ConflictType = iota
	ModifyModify
	ModifyDelete
	DeleteDelete // never emitted in practice; kept for taxonomy completeness (spec §9b)
	AttributeConflict
	NamespaceConflict
)

func (c ConflictType) String() string {
	switch c {
	case AddAdd:
		return "AddAdd"
	case ModifyModify:
		return "ModifyModify"
	case ModifyDelete:
		return "ModifyDelete"
	case DeleteDelete:
		return "DeleteDelete"
	case AttributeConflict:
		return "AttributeConflict"
	case NamespaceConflict:
		return "NamespaceConflict"
	}
	return "Unknown"
}

// MergeConflict describes one unresolved (or resolver-resolved)
// disagreement between ours and theirs relative to base (spec §3).
type MergeConflict struct {
	Path          string
	BaseElement   xmlnode.Element
	OursElement   xmlnode.Element
	TheirsElement xmlnode.Element
	Type          ConflictType
	Description   string

	// IdentityHint is a short human label for CLI/log output, in the
	// spirit of the teacher's Entity.IdentityKey() debug string; it is
	// never consulted by matching or resolution logic.
	IdentityHint string

	// AttributeNames lists the attribute names changed differently on
	// both sides, for element-level conflicts (AttributeConflict,
	// ModifyModify, NamespaceConflict). It is empty when only the text or
	// the namespace bindings diverge.
	AttributeNames []string

	resolverResolved bool
}

// WasResolverResolved reports whether a caller-supplied ConflictResolver
// (as opposed to the implicit base fallback) produced this conflict's
// outcome.
func (c MergeConflict) WasResolverResolved() bool {
	return c.resolverResolved
}

// IsAddAdd reports whether this conflict is the base=None, ours/theirs
// both present case (spec §3).
func (c MergeConflict) IsAddAdd() bool {
	return c.BaseElement == nil && c.OursElement != nil && c.TheirsElement != nil
}

// IsModifyDelete reports whether base is present and exactly one of
// ours/theirs is absent (spec §3).
func (c MergeConflict) IsModifyDelete() bool {
	if c.BaseElement == nil {
		return false
	}
	return (c.OursElement == nil) != (c.TheirsElement == nil)
}

// IsModifyModify reports whether all three revisions are present. It
// checks presence only and does not compare the revisions' content.
func (c MergeConflict) IsModifyModify() bool {
	return c.BaseElement != nil && c.OursElement != nil && c.TheirsElement != nil
}

// MergeStats carries the counters spec §3/§6 requires, plus the
// teacher's finer per-disposition breakdown (spec_full §5).
type MergeStats struct {
	TotalElements        int
	Unchanged            int
	OursOnly             int
	TheirsOnly           int
	AutoMerged           int
	ConflictCount        int
	AutoResolvedConflicts int
	ResolverResolved     int

	// Teacher-style breakdown, additive to the counters above.
	Added   int
	Deleted int
}

// Unresolved is conflict_count minus both resolution tallies (spec §6).
func (s MergeStats) Unresolved() int {
	return s.ConflictCount - s.AutoResolvedConflicts - s.ResolverResolved
}

// TotalChanges is ours_only + theirs_only + auto_merged (spec Testable
// Property 2).
func (s MergeStats) TotalChanges() int {
	return s.OursOnly + s.TheirsOnly + s.AutoMerged
}

// MergeResult holds the outcome of a three-way merge (spec §3, §7).
type MergeResult struct {
	MergedDocument xmlnode.Element
	Conflicts      []MergeConflict
	Statistics     MergeStats
	Error          error
}

// IsSuccess reports error=None && conflicts=∅ (spec §3).
func (r MergeResult) IsSuccess() bool {
	return r.Error == nil && len(r.Conflicts) == 0
}

// HasConflicts reports whether any conflicts were recorded.
func (r MergeResult) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

// IsFailed reports whether the merge could not complete at all (spec §7:
// a merge with conflicts is is_failed=false, has_conflicts=true).
func (r MergeResult) IsFailed() bool {
	return r.Error != nil
}

// ErrorMessage returns the failure message, or "" if none.
func (r MergeResult) ErrorMessage() string {
	if r.Error == nil {
		return ""
	}
	return r.Error.Error()
}

// Failure builds a failed MergeResult with no merged document, wrapping
// cause (spec §7 MergeFailure).
func Failure(message string, cause error) MergeResult {
	var err error
	if cause != nil {
		err = fmt.Errorf("%s: %w", message, cause)
	} else {
		err = errors.New(message)
	}
	return MergeResult{Error: err}
}

// Sentinel errors for the taxonomy in spec §7.
var (
	ErrInvalidInput   = errors.New("xmlmerge: invalid input")
	ErrConfiguration  = errors.New("xmlmerge: configuration error")
)

// InvalidInputError wraps ErrInvalidInput with a reason (spec §7).
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string { return "invalid input: " + e.Reason }
func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// ConfigurationError wraps ErrConfiguration, naming the offending
// component (spec §7: "surfaced with the offending normalizer
// identified").
type ConfigurationError struct {
	Component string
	Reason    string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Reason)
}
func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }
