package diag

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestList_Report(t *testing.T) {
	l := NewList(zaptest.NewLogger(t))

	l.Report(nil)
	l.Report(&CoverageGapWarning{Book: "b", Page: 3, Lines: []int{1, 2}})
	l.Report(fmt.Errorf("wrapped: %w", &OutOfRangeAnchorError{ParagraphID: "p1", Book: "b", Page: 9, Line: 1, Reason: "no such page"}))
	l.Report(errors.New("something else"))

	items := l.Items()
	if len(items) != 3 || l.Len() != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}

	tests := []struct {
		kind     string
		severity Severity
		subject  string
	}{
		{"coverage_gap", SeverityWarning, "b/3"},
		{"out_of_range_anchor", SeverityError, "p1"},
		{"other", SeverityError, ""},
	}
	for i, tt := range tests {
		d := items[i]
		if d.Kind != tt.kind || d.Severity != tt.severity || d.Subject != tt.subject {
			t.Errorf("item %d = %s/%s/%q, want %s/%s/%q", i, d.Kind, d.Severity, d.Subject, tt.kind, tt.severity, tt.subject)
		}
		if d.Err == nil || d.Message != d.Err.Error() {
			t.Errorf("item %d message %q does not match error", i, d.Message)
		}
	}
	if !strings.HasPrefix(items[1].Message, "wrapped: ") {
		t.Errorf("wrapping context lost: %q", items[1].Message)
	}
}

func TestList_Counts(t *testing.T) {
	l := NewList(nil)
	l.Report(&PageConflictWarning{Book: "b", Page: 1, Reason: "duplicate page"})
	l.Report(&PageConflictWarning{Book: "b", Page: 2, Reason: "duplicate page"})
	l.Report(&DuplicateAnchorError{ParagraphID: "p"})
	l.Report(&EngineInvariantError{ParagraphID: "p", Count: 2})

	if got := l.Count("page_conflict"); got != 2 {
		t.Errorf("Count(page_conflict) = %d, want 2", got)
	}
	if got := l.CountSeverity(SeverityError); got != 2 {
		t.Errorf("CountSeverity(error) = %d, want 2", got)
	}
	if got := l.CountSeverity(SeverityWarning); got != 4 {
		t.Errorf("CountSeverity(warning) = %d, want 4", got)
	}
	summary := l.Summary()
	if summary["page_conflict"] != 2 || summary["duplicate_anchor"] != 1 || summary["engine_invariant"] != 1 {
		t.Errorf("Summary() = %v", summary)
	}
}

func TestList_Items_IsCopy(t *testing.T) {
	l := NewList(nil)
	l.Report(&UnresolvedParagraphWarning{ParagraphID: "p", Reason: "no tags"})
	items := l.Items()
	items[0].Kind = "changed"
	if l.Items()[0].Kind != "unresolved_paragraph" {
		t.Error("Items() exposes internal storage")
	}
}

func TestList_Nil(t *testing.T) {
	var l *List
	l.Report(errors.New("dropped"))
	if l.Len() != 0 || l.Items() != nil || l.Count("other") != 0 || l.CountSeverity(SeverityWarning) != 0 {
		t.Error("nil list should be empty")
	}
	if len(l.Summary()) != 0 {
		t.Error("nil list summary should be empty")
	}
}

func TestDiagnostic_JSON(t *testing.T) {
	l := NewList(nil)
	l.Report(&MalformedParagraphError{Index: 4, Reason: "missing paragraph_id"})

	data, err := json.Marshal(l.Items()[0])
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"severity":"error","kind":"malformed_paragraph","subject":"#4","message":"malformed paragraph record #4: missing paragraph_id"}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestCoverageGapWarning_Truncates(t *testing.T) {
	lines := make([]int, 12)
	for i := range lines {
		lines[i] = i + 1
	}
	msg := (&CoverageGapWarning{Book: "b", Page: 1, Lines: lines}).Error()
	if want := "b page 1: 12 line(s) not tagged [1 2 3 4 5 6 7 8 9 10 ...]"; msg != want {
		t.Errorf("Error() = %q, want %q", msg, want)
	}
}

func TestOutOfRangeAnchorError_NoPosition(t *testing.T) {
	tests := []struct {
		err  *OutOfRangeAnchorError
		want string
	}{
		{&OutOfRangeAnchorError{ParagraphID: "p", Book: "b", Page: 2, Line: 7, Reason: "page has 3 lines"}, `paragraph "p" anchored out of range at b 2:7: page has 3 lines`},
		{&OutOfRangeAnchorError{ParagraphID: "p", Book: "b", Reason: "anchor_page is missing", NoPosition: true}, `paragraph "p" has no anchor position: anchor_page is missing`},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
