package merge

import (
	"iter"
	"maps"
	"slices"
	"strconv"

	"bookmerge/diag"
	"bookmerge/utils/debug"
)

// String returns readable tree of the merged document. It exists solely for
// manual inspection during debugging.
func (d *Document) String() string {
	if d == nil {
		return "<nil Document>"
	}

	tw := debug.NewTreeWriter()
	tw.Line(0, "Document %s: %s + %s", d.ID(), d.Primary, d.Secondary)
	tw.Line(1, "Stats: lines[%d] paragraphs[%d] anchored[%d] fallback[%d] undated[%d]",
		d.Stats.PrimaryLines, d.Stats.Paragraphs, d.Stats.Anchored, d.Stats.Fallback, d.Stats.Undated)
	for _, yc := range d.Stats.Years {
		tw.Line(2, "Year[%d]: %d", yc.Year, yc.Count)
	}

	tw.Line(1, "Segments: %d", len(d.Segments))
	entries := d.Index.Entries()
	for i, s := range d.Segments {
		e := entries[i]
		switch {
		case s.Anchor != nil:
			tw.Line(2, "[%d-%d) %s %q after %s", e.Start, e.End, s.Origin, s.ParagraphID, s.Anchor)
		case s.Fallback:
			tw.Line(2, "[%d-%d) %s %q fallback year[%s]", e.Start, e.End, s.Origin, s.ParagraphID, optional(s.Year))
		default:
			tw.Line(2, "[%d-%d) %s %s", e.Start, e.End, s.Origin, s.Provenance)
		}
		tw.TextBlock(3, "text", s.Text)
	}

	if len(d.Diagnostics) > 0 {
		tw.Line(1, "Diagnostics: %d", len(d.Diagnostics))
		for _, dg := range d.Diagnostics {
			tw.Line(2, "%s %s %q: %s", dg.Severity, dg.Kind, dg.Subject, dg.Message)
		}
	}
	return tw.String()
}

func optional(v *int) string {
	if v == nil {
		return "?"
	}
	return strconv.Itoa(*v)
}

// sortedSummary iterates over diagnostic counts ordered by kind.
func sortedSummary(l *diag.List) iter.Seq2[string, int] {
	summary := l.Summary()
	return func(yield func(string, int) bool) {
		for _, kind := range slices.Sorted(maps.Keys(summary)) {
			if !yield(kind, summary[kind]) {
				return
			}
		}
	}
}
