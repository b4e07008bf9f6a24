package snapshot

import (
	"bytes"
	"cmp"
	"encoding/json"
	"slices"

	"bookmerge/diag"
	"bookmerge/model"
)

// Union combines partial tag snapshots produced by separate batch runs. A
// tagged page wins over untagged copy of the same page, otherwise the first
// occurrence is kept and differing later copies are reported. Result is
// ordered by book and page number.
func Union(files []*TagFile, diags *diag.List) *TagFile {
	var (
		out   = &TagFile{}
		index = make(map[pageKey]int)
		parts = 0
	)
	for _, f := range files {
		if f == nil {
			continue
		}
		parts++
		for _, rec := range f.Pages {
			key := pageKey{model.BookID(rec.BookID), rec.PageNumber}
			i, seen := index[key]
			if !seen {
				index[key] = len(out.Pages)
				out.Pages = append(out.Pages, rec)
				continue
			}
			prev := &out.Pages[i]
			switch {
			case len(rec.LineTags) == 0:
			case len(prev.LineTags) == 0:
				*prev = rec
			case !sameTags(prev.LineTags, rec.LineTags):
				diags.Report(&diag.PageConflictWarning{Book: key.book, Page: key.page, Reason: "page tagged differently in partial snapshots, first tagging kept"})
			}
		}
	}

	slices.SortStableFunc(out.Pages, func(a, b PageRecord) int {
		return cmp.Or(cmp.Compare(a.BookID, b.BookID), cmp.Compare(a.PageNumber, b.PageNumber))
	})
	out.Metadata = map[string]any{"partial_snapshots": parts, "pages": len(out.Pages)}
	return out
}

func sameTags(a, b []json.RawMessage) bool {
	return slices.EqualFunc(a, b, func(x, y json.RawMessage) bool {
		var bx, by bytes.Buffer
		if json.Compact(&bx, x) != nil || json.Compact(&by, y) != nil {
			return bytes.Equal(x, y)
		}
		return bytes.Equal(bx.Bytes(), by.Bytes())
	})
}

// Tagged reports whether page record carries any tags.
func (p *PageRecord) Tagged() bool {
	return len(p.LineTags) > 0
}

// CheckTags validates tags produced for the page record. The first rejected
// tag is returned as *diag.MalformedTagError.
func (p *PageRecord) CheckTags(tags []json.RawMessage) error {
	page := decodePage(model.BookID(p.BookID), p, nil)
	for i, raw := range tags {
		if _, err := decodeTag(page, i, raw); err != nil {
			return err
		}
	}
	return nil
}
