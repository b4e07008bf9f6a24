package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"bookmerge/diag"
	"bookmerge/model"
)

// Tagged is decoded content of tag snapshot.
type Tagged struct {
	Pages []*model.Page
	Tags  []model.LineTag
}

// Book assembles book out of decoded pages.
func (t *Tagged) Book(id model.BookID) *model.Book {
	return model.NewBook(id, t.Pages)
}

// BookIDs returns sorted list of books present in the snapshot.
func (t *Tagged) BookIDs() []model.BookID {
	var ids []model.BookID
	for _, p := range t.Pages {
		if !slices.Contains(ids, p.Book) {
			ids = append(ids, p.Book)
		}
	}
	slices.Sort(ids)
	return ids
}

type pageKey struct {
	book model.BookID
	page int
}

// Decode validates tag snapshot record by record. Pages and tags which could
// not be used are reported to diags.
func (f *TagFile) Decode(diags *diag.List) *Tagged {
	out := &Tagged{}
	if f == nil {
		return out
	}

	seen := make(map[pageKey]bool, len(f.Pages))
	for i := range f.Pages {
		rec := &f.Pages[i]
		book := model.BookID(strings.TrimSpace(rec.BookID))
		if book == "" {
			diags.Report(&diag.PageConflictWarning{Page: rec.PageNumber, Reason: fmt.Sprintf("page record #%d has no book_id, ignored", i)})
			continue
		}
		key := pageKey{book, rec.PageNumber}
		if seen[key] {
			diags.Report(&diag.PageConflictWarning{Book: book, Page: rec.PageNumber, Reason: "duplicate page record, ignored"})
			continue
		}
		seen[key] = true

		page := decodePage(book, rec, diags)
		out.Pages = append(out.Pages, page)

		for j, raw := range rec.LineTags {
			tag, err := decodeTag(page, j, raw)
			if err != nil {
				diags.Report(err)
				continue
			}
			out.Tags = append(out.Tags, tag)
		}
	}
	return out
}

// maxLineGap bounds how far line numbers may run past the number of line
// records, so a single bogus number cannot inflate the page.
const maxLineGap = 64

func decodePage(book model.BookID, rec *PageRecord, diags *diag.List) *model.Page {
	page := &model.Page{
		Book:     book,
		BookName: rec.BookName,
		Number:   rec.PageNumber,
		Chapter:  rec.Chapter,
	}

	if len(rec.Lines) == 0 {
		if rec.FullText == "" {
			return page
		}
		for n, text := range strings.Split(strings.TrimRight(rec.FullText, "\n"), "\n") {
			page.Lines = append(page.Lines, model.Line{Number: n + 1, Text: strings.TrimRight(text, "\r")})
		}
		return page
	}

	// line numbers are authoritative, missing ones become blank lines
	limit := len(rec.Lines) + maxLineGap
	accepted := make([]LineRecord, 0, len(rec.Lines))
	last := 0
	for _, l := range rec.Lines {
		if l.Number < 1 || l.Number > limit {
			diags.Report(&diag.PageConflictWarning{Book: book, Page: rec.PageNumber, Reason: fmt.Sprintf("line number %d out of sequence, line ignored", l.Number)})
			continue
		}
		accepted = append(accepted, l)
		last = max(last, l.Number)
	}
	page.Lines = make([]model.Line, last)
	filled := make([]bool, last)
	for n := range page.Lines {
		page.Lines[n].Number = n + 1
	}
	for _, l := range accepted {
		if filled[l.Number-1] {
			continue
		}
		filled[l.Number-1] = true
		page.Lines[l.Number-1].Text = l.Text
	}
	return page
}

func decodeTag(page *model.Page, idx int, raw json.RawMessage) (model.LineTag, error) {
	bad := func(rec *TagRecord, format string, args ...any) (model.LineTag, error) {
		e := &diag.MalformedTagError{Book: page.Book, Page: page.Number, Index: idx, Reason: fmt.Sprintf(format, args...)}
		if rec != nil {
			e.LineStart, e.LineEnd = rec.LineStart, rec.LineEnd
		}
		return model.LineTag{}, e
	}

	var rec TagRecord
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&rec); err != nil {
		return bad(nil, "unable to decode: %v", err)
	}

	switch {
	case rec.LineStart == nil && rec.LineEnd == nil:
		return bad(&rec, "line_start and line_end are missing")
	case rec.LineStart == nil:
		return bad(&rec, "line_start is missing")
	case rec.LineEnd == nil:
		return bad(&rec, "line_end is missing")
	}
	start, end := *rec.LineStart, *rec.LineEnd
	if start < 1 || end < 1 {
		return bad(&rec, "line numbers must be >= 1")
	}
	if start > end {
		return bad(&rec, "line_start (%d) > line_end (%d)", start, end)
	}
	if end > page.LineCount() {
		return bad(&rec, "line_end (%d) > max line (%d)", end, page.LineCount())
	}

	year, err := parseYear(rec.Year)
	if err != nil {
		return bad(&rec, "%v", err)
	}
	month, err := parseMonth(rec.Month)
	if err != nil {
		return bad(&rec, "%v", err)
	}
	confidence, err := parseConfidence(rec.Confidence)
	if err != nil {
		return bad(&rec, "%v", err)
	}

	tag := model.LineTag{
		Book:       page.Book,
		Page:       page.Number,
		LineStart:  start,
		LineEnd:    end,
		Year:       year,
		Month:      month,
		Locations:  cleanSet(rec.Locations),
		Characters: cleanSet(rec.Characters),
		Confidence: confidence,
	}
	if rec.Location != nil && !isUnknown(strings.TrimSpace(*rec.Location)) {
		loc := strings.TrimSpace(*rec.Location)
		tag.Location = &loc
	}
	return tag, nil
}

// cleanSet returns sorted list of unique non empty values.
func cleanSet(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Decode validates paragraph snapshot. Paragraphs without book are assigned to
// secondary book, paragraphs without text get text of their source lines
// when secondary book pages are known.
func (f *ParagraphFile) Decode(secondary *model.Book, diags *diag.List) []model.Paragraph {
	if f == nil {
		return nil
	}

	var (
		out = make([]model.Paragraph, 0, len(f.Paragraphs))
		ids = make(map[string]bool, len(f.Paragraphs))
	)
	for i, raw := range f.Paragraphs {
		bad := func(id, format string, args ...any) {
			diags.Report(&diag.MalformedParagraphError{ParagraphID: id, Index: i, Reason: fmt.Sprintf(format, args...)})
		}

		var rec ParagraphRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			bad("", "unable to decode: %v", err)
			continue
		}
		id := strings.TrimSpace(rec.ID)
		if id == "" {
			bad("", "paragraph_id is missing")
			continue
		}
		if ids[id] {
			bad(id, "duplicate paragraph_id")
			continue
		}
		if rec.OrderIndex == nil {
			bad(id, "order_index is missing")
			continue
		}

		book := model.BookID(strings.TrimSpace(rec.BookID))
		switch {
		case book == "":
			book = secondary.ID
		case secondary.ID != "" && book != secondary.ID:
			bad(id, "paragraph belongs to book %q, expected %q", book, secondary.ID)
			continue
		}

		sources, reason := decodeSources(rec.Sources, secondary)
		if reason != "" {
			bad(id, "%s", reason)
			continue
		}

		text := strings.TrimRight(rec.Text, "\n")
		if strings.TrimSpace(text) == "" {
			text = extractText(secondary, sources)
			if text == "" {
				bad(id, "paragraph has no text and its source lines are unknown")
				continue
			}
		}

		ids[id] = true
		out = append(out, model.Paragraph{
			ID:         id,
			Book:       book,
			Sources:    sources,
			Text:       text,
			OrderIndex: *rec.OrderIndex,
		})
	}
	return out
}

func decodeSources(recs []SourceRecord, secondary *model.Book) ([]model.Span, string) {
	if len(recs) == 0 {
		return nil, "source_pages is empty"
	}
	spans := make([]model.Span, 0, len(recs))
	for k, s := range recs {
		if s.Page == nil || s.LineStart == nil || s.LineEnd == nil {
			return nil, fmt.Sprintf("source_pages[%d] is incomplete", k)
		}
		if *s.LineStart < 1 || *s.LineStart > *s.LineEnd {
			return nil, fmt.Sprintf("source_pages[%d] has bad line range %d-%d", k, *s.LineStart, *s.LineEnd)
		}
		if count, ok := secondary.LineCount(*s.Page); ok && *s.LineEnd > count {
			return nil, fmt.Sprintf("source_pages[%d] line_end (%d) > max line (%d)", k, *s.LineEnd, count)
		}
		spans = append(spans, model.Span{Page: *s.Page, LineStart: *s.LineStart, LineEnd: *s.LineEnd})
	}
	return spans, ""
}

// extractText joins source lines of the paragraph, blank lines included.
func extractText(book *model.Book, spans []model.Span) string {
	var lines []string
	for _, s := range spans {
		page, ok := book.Page(s.Page)
		if !ok {
			return ""
		}
		for n := s.LineStart; n <= s.LineEnd; n++ {
			if l, ok := page.Line(n); ok {
				lines = append(lines, l.Text)
			}
		}
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// Decode converts insertion point snapshot. Records which do not name a
// paragraph are reported and dropped. Records without anchor page are kept
// marked as defective, so the resolver sees every point of a paragraph. Anchor
// line defaults to 0 (start of the page). Range checks are left to the
// resolver which knows primary book extents.
func (f *InsertionFile) Decode(diags *diag.List) []model.InsertionPoint {
	if f == nil {
		return nil
	}

	out := make([]model.InsertionPoint, 0, len(f.InsertionPoints))
	for i, raw := range f.InsertionPoints {
		var rec InsertionRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			diags.Report(&diag.OrphanAnchorWarning{Index: i, Reason: fmt.Sprintf("unable to decode: %v", err)})
			continue
		}
		id := strings.TrimSpace(rec.ParagraphID)
		if id == "" {
			diags.Report(&diag.OrphanAnchorWarning{Index: i, Reason: "paragraph_id is missing"})
			continue
		}

		page, line := rec.AnchorPage, rec.AnchorLine
		if page == nil {
			page = rec.InsertAfterPage
		}
		if line == nil {
			line = rec.InsertAfterLine
		}
		ip := model.InsertionPoint{
			ParagraphID: id,
			AnchorBook:  model.BookID(strings.TrimSpace(rec.AnchorBookID)),
			Reason:      rec.Reason,
		}
		if page != nil {
			ip.AnchorPage = *page
		} else {
			ip.Defect = "anchor_page is missing"
		}
		if line != nil {
			ip.AnchorLine = *line
		}
		if ip.Reason == "" {
			ip.Reason = rec.InsertReason
		}
		// confidence of insertion point is informational only
		if c, err := parseConfidence(rec.Confidence); err == nil {
			ip.Confidence = c
		} else {
			ip.Confidence = DefaultConfidence
		}
		out = append(out, ip)
	}
	return out
}
