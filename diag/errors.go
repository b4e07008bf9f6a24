// Package diag defines problems the merge engine recognizes in its input and
// collects them into a list of diagnostics. Everything except
// EngineInvariantError is recovered from locally.
package diag

import (
	"fmt"
	"strings"

	"bookmerge/model"
)

//go:generate go tool go-enum --marshal --names

// Severity of a diagnostic.
// ENUM(warning, error, fatal)
type Severity int

// Problem is implemented by all errors of the taxonomy.
type Problem interface {
	error
	Kind() string
	Severity() Severity
	// Subject names the record the problem is about (tag, paragraph, page).
	Subject() string
}

// MalformedTagError - tag record was rejected, the rest of the snapshot is used.
type MalformedTagError struct {
	Book      model.BookID
	Page      int
	Index     int // position of the tag in page record
	LineStart *int
	LineEnd   *int
	Reason    string
}

func (e *MalformedTagError) Error() string {
	return fmt.Sprintf("malformed tag #%d on %s page %d (lines %s-%s): %s",
		e.Index, e.Book, e.Page, intOrDash(e.LineStart), intOrDash(e.LineEnd), e.Reason)
}

func (*MalformedTagError) Kind() string       { return "malformed_tag" }
func (*MalformedTagError) Severity() Severity { return SeverityError }
func (e *MalformedTagError) Subject() string {
	return fmt.Sprintf("%s/%d#%d", e.Book, e.Page, e.Index)
}

// MalformedParagraphError - paragraph record was rejected.
type MalformedParagraphError struct {
	ParagraphID string
	Index       int // position in paragraph snapshot
	Reason      string
}

func (e *MalformedParagraphError) Error() string {
	if e.ParagraphID == "" {
		return fmt.Sprintf("malformed paragraph record #%d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("malformed paragraph %q (record #%d): %s", e.ParagraphID, e.Index, e.Reason)
}

func (*MalformedParagraphError) Kind() string       { return "malformed_paragraph" }
func (*MalformedParagraphError) Severity() Severity { return SeverityError }
func (e *MalformedParagraphError) Subject() string {
	if e.ParagraphID == "" {
		return fmt.Sprintf("#%d", e.Index)
	}
	return e.ParagraphID
}

// OutOfRangeAnchorError - insertion point does not point into primary book.
// Paragraph becomes unanchored.
type OutOfRangeAnchorError struct {
	ParagraphID string
	Book        model.BookID
	Page        int
	Line        int
	Reason      string
	// NoPosition means record did not specify anchor position at all.
	NoPosition bool
}

func (e *OutOfRangeAnchorError) Error() string {
	if e.NoPosition {
		return fmt.Sprintf("paragraph %q has no anchor position: %s", e.ParagraphID, e.Reason)
	}
	return fmt.Sprintf("paragraph %q anchored out of range at %s %d:%d: %s", e.ParagraphID, e.Book, e.Page, e.Line, e.Reason)
}

func (*OutOfRangeAnchorError) Kind() string       { return "out_of_range_anchor" }
func (*OutOfRangeAnchorError) Severity() Severity { return SeverityError }
func (e *OutOfRangeAnchorError) Subject() string  { return e.ParagraphID }

// DuplicateAnchorError - paragraph has more than one insertion point. None of
// them is used.
type DuplicateAnchorError struct {
	ParagraphID string
	Anchors     []model.Anchor
}

func (e *DuplicateAnchorError) Error() string {
	list := make([]string, 0, len(e.Anchors))
	for _, a := range e.Anchors {
		list = append(list, a.String())
	}
	return fmt.Sprintf("paragraph %q has %d insertion points (%s)", e.ParagraphID, len(e.Anchors), strings.Join(list, ", "))
}

func (*DuplicateAnchorError) Kind() string       { return "duplicate_anchor" }
func (*DuplicateAnchorError) Severity() Severity { return SeverityError }
func (e *DuplicateAnchorError) Subject() string  { return e.ParagraphID }

// OrphanAnchorWarning - insertion point cannot be attributed to any paragraph
// of paragraph snapshot and is ignored.
type OrphanAnchorWarning struct {
	ParagraphID string
	Index       int // position in insertion point snapshot
	Anchor      model.Anchor
	Reason      string
}

func (e *OrphanAnchorWarning) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("insertion point #%d ignored: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("insertion point #%d at %s references unknown paragraph %q", e.Index, e.Anchor, e.ParagraphID)
}

func (*OrphanAnchorWarning) Kind() string       { return "orphan_anchor" }
func (*OrphanAnchorWarning) Severity() Severity { return SeverityWarning }
func (e *OrphanAnchorWarning) Subject() string {
	if e.ParagraphID == "" {
		return fmt.Sprintf("#%d", e.Index)
	}
	return e.ParagraphID
}

// UnresolvedParagraphWarning - no tag available for chronological ranking,
// paragraph is ranked last.
type UnresolvedParagraphWarning struct {
	ParagraphID string
	Reason      string
}

func (e *UnresolvedParagraphWarning) Error() string {
	return fmt.Sprintf("paragraph %q cannot be ranked chronologically: %s", e.ParagraphID, e.Reason)
}

func (*UnresolvedParagraphWarning) Kind() string       { return "unresolved_paragraph" }
func (*UnresolvedParagraphWarning) Severity() Severity { return SeverityWarning }
func (e *UnresolvedParagraphWarning) Subject() string  { return e.ParagraphID }

// CoverageGapWarning - non-blank lines of a page are not covered by any tag.
type CoverageGapWarning struct {
	Book  model.BookID
	Page  int
	Lines []int
}

func (e *CoverageGapWarning) Error() string {
	const show = 10
	list := make([]string, 0, show)
	for i, n := range e.Lines {
		if i == show {
			list = append(list, "...")
			break
		}
		list = append(list, fmt.Sprint(n))
	}
	return fmt.Sprintf("%s page %d: %d line(s) not tagged [%s]", e.Book, e.Page, len(e.Lines), strings.Join(list, " "))
}

func (*CoverageGapWarning) Kind() string       { return "coverage_gap" }
func (*CoverageGapWarning) Severity() Severity { return SeverityWarning }
func (e *CoverageGapWarning) Subject() string  { return fmt.Sprintf("%s/%d", e.Book, e.Page) }

// PageConflictWarning - the same page appears more than once, in one snapshot
// or across partial snapshots being united. First occurrence wins.
type PageConflictWarning struct {
	Book   model.BookID
	Page   int
	Reason string
}

func (e *PageConflictWarning) Error() string {
	return fmt.Sprintf("%s page %d: %s", e.Book, e.Page, e.Reason)
}

func (*PageConflictWarning) Kind() string       { return "page_conflict" }
func (*PageConflictWarning) Severity() Severity { return SeverityWarning }
func (e *PageConflictWarning) Subject() string  { return fmt.Sprintf("%s/%d", e.Book, e.Page) }

// EngineInvariantError means paragraph was emitted zero or several times. It
// points to a bug in resolution or merging, not to bad data, and aborts the
// run.
type EngineInvariantError struct {
	ParagraphID string
	Count       int
}

func (e *EngineInvariantError) Error() string {
	return fmt.Sprintf("engine invariant violated: paragraph %q emitted %d time(s)", e.ParagraphID, e.Count)
}

func (*EngineInvariantError) Kind() string       { return "engine_invariant" }
func (*EngineInvariantError) Severity() Severity { return SeverityFatal }
func (e *EngineInvariantError) Subject() string  { return e.ParagraphID }

func intOrDash(v *int) string {
	if v == nil {
		return "?"
	}
	return fmt.Sprint(*v)
}
