// Package tagstore keeps validated line range tags of both books and answers
// which tag describes a given line range.
package tagstore

import (
	"cmp"
	"fmt"
	"slices"
	"sort"

	"bookmerge/diag"
	"bookmerge/model"
)

type pageKey struct {
	book model.BookID
	page int
}

// Store is immutable after New.
type Store struct {
	pages map[pageKey][]model.LineTag
	count int
}

// New indexes tags by page. Tag overlapping previously accepted tag of the
// same page is rejected, so on every page tags are disjoint and ordered by
// their first line.
func New(tags []model.LineTag, diags *diag.List) *Store {
	s := &Store{pages: make(map[pageKey][]model.LineTag)}

	for i, tag := range tags {
		key := pageKey{tag.Book, tag.Page}
		accepted := s.pages[key]
		if j := slices.IndexFunc(accepted, func(t model.LineTag) bool {
			return t.Span().Overlap(tag.Page, tag.LineStart, tag.LineEnd) > 0
		}); j >= 0 {
			start, end := tag.LineStart, tag.LineEnd
			diags.Report(&diag.MalformedTagError{
				Book:      tag.Book,
				Page:      tag.Page,
				Index:     i,
				LineStart: &start,
				LineEnd:   &end,
				Reason:    fmt.Sprintf("overlaps tag on lines %d-%d", accepted[j].LineStart, accepted[j].LineEnd),
			})
			continue
		}
		s.pages[key] = append(accepted, tag)
		s.count++
	}

	for _, list := range s.pages {
		slices.SortFunc(list, func(a, b model.LineTag) int {
			return cmp.Compare(a.LineStart, b.LineStart)
		})
	}
	return s
}

// Len returns number of accepted tags.
func (s *Store) Len() int {
	return s.count
}

// Page returns tags of a page in line order.
func (s *Store) Page(book model.BookID, page int) []model.LineTag {
	return s.pages[pageKey{book, page}]
}

// Lookup finds tag sharing most lines with span. On equal overlap the tag
// starting earlier wins. Tags with confidence below minConfidence are not
// considered.
func (s *Store) Lookup(book model.BookID, span model.Span, minConfidence float64) (model.LineTag, bool) {
	list := s.pages[pageKey{book, span.Page}]

	// tags are disjoint, so their ends are ordered too
	i := sort.Search(len(list), func(i int) bool {
		return list[i].LineEnd >= span.LineStart
	})

	var (
		best    model.LineTag
		overlap int
	)
	for ; i < len(list) && list[i].LineStart <= span.LineEnd; i++ {
		t := list[i]
		if t.Confidence < minConfidence {
			continue
		}
		if n := span.Overlap(t.Page, t.LineStart, t.LineEnd); n > overlap {
			best, overlap = t, n
		}
	}
	return best, overlap > 0
}

// Coverage reports non-blank lines of the book which no tag covers. One
// warning per page lists all such lines.
func (s *Store) Coverage(book *model.Book, diags *diag.List) int {
	total := 0
	for _, page := range book.Pages {
		var (
			list = s.pages[pageKey{book.ID, page.Number}]
			gaps []int
			k    int
		)
		for _, line := range page.Lines {
			for k < len(list) && list[k].LineEnd < line.Number {
				k++
			}
			covered := k < len(list) && list[k].LineStart <= line.Number
			if !covered && !line.IsBlank() {
				gaps = append(gaps, line.Number)
			}
		}
		if len(gaps) > 0 {
			diags.Report(&diag.CoverageGapWarning{Book: book.ID, Page: page.Number, Lines: gaps})
			total += len(gaps)
		}
	}
	return total
}
