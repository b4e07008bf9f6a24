// Package ranker orders paragraphs which have no usable insertion point.
package ranker

import (
	"cmp"
	"slices"

	"bookmerge/common"
	"bookmerge/diag"
	"bookmerge/model"
)

// TagLookup is satisfied by tagstore.Store.
type TagLookup interface {
	Lookup(book model.BookID, span model.Span, minConfidence float64) (model.LineTag, bool)
}

type Options struct {
	Order         common.FallbackOrder
	MinConfidence float64
	UseMonth      bool
}

// Ranked is a fallback paragraph with the date it was ranked by.
type Ranked struct {
	Paragraph model.Paragraph
	Tag       *model.LineTag // nil when paragraph could not be dated
	Year      *int
	Month     *int
}

// Rank dates every paragraph by the tag covering its first source span and
// sorts them: known years first in ascending order, then known months, then
// order index and paragraph id. Paragraphs without tag are reported and go
// after all dated ones.
func Rank(paragraphs []model.Paragraph, tags TagLookup, opts Options, diags *diag.List) []Ranked {
	out := make([]Ranked, 0, len(paragraphs))
	for _, p := range paragraphs {
		r := Ranked{Paragraph: p}
		span, ok := p.First()
		if !ok {
			diags.Report(&diag.UnresolvedParagraphWarning{ParagraphID: p.ID, Reason: "paragraph has no source lines"})
			out = append(out, r)
			continue
		}
		tag, ok := tags.Lookup(p.Book, span, opts.MinConfidence)
		if !ok {
			diags.Report(&diag.UnresolvedParagraphWarning{ParagraphID: p.ID, Reason: "no tag covers " + span.String()})
			out = append(out, r)
			continue
		}
		r.Tag, r.Year, r.Month = &tag, tag.Year, tag.Month
		if r.Year == nil {
			diags.Report(&diag.UnresolvedParagraphWarning{ParagraphID: p.ID, Reason: "tag of " + span.String() + " has no year"})
		}
		out = append(out, r)
	}

	slices.SortStableFunc(out, func(a, b Ranked) int {
		if opts.Order == common.FallbackOrderSource {
			return model.CompareParagraphs(&a.Paragraph, &b.Paragraph)
		}
		c := compareUnknownLast(a.Year, b.Year)
		if opts.UseMonth {
			c = cmp.Or(c, compareUnknownLast(a.Month, b.Month))
		}
		return cmp.Or(c, model.CompareParagraphs(&a.Paragraph, &b.Paragraph))
	})
	return out
}

func compareUnknownLast(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return cmp.Compare(*a, *b)
	}
}
