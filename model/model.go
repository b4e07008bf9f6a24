// Package model defines the immutable data the merge engine works on: books,
// pages, line range tags, paragraphs of the secondary book and insertion points
// anchoring them in the primary book.
package model

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/maruel/natural"
)

type BookID string

// Line is a single 1-indexed line of a page. Blank lines are kept, they
// participate in line numbering.
type Line struct {
	Number int
	Text   string
}

func (l Line) IsBlank() bool {
	return strings.TrimSpace(l.Text) == ""
}

type Page struct {
	Book     BookID
	BookName string
	Number   int
	Chapter  string
	Lines    []Line
}

// LineCount returns number of lines on the page, which is also the highest
// valid line number.
func (p *Page) LineCount() int {
	return len(p.Lines)
}

// Line returns line by its 1-based number.
func (p *Page) Line(n int) (Line, bool) {
	if n < 1 || n > len(p.Lines) {
		return Line{}, false
	}
	return p.Lines[n-1], true
}

// Book is an ordered collection of pages.
type Book struct {
	ID    BookID
	Name  string
	Pages []*Page
}

// NewBook creates book from pages sorting them by page number. Pages
// belonging to other books are ignored.
func NewBook(id BookID, pages []*Page) *Book {
	b := &Book{ID: id}
	for _, p := range pages {
		if p.Book != id {
			continue
		}
		if b.Name == "" {
			b.Name = p.BookName
		}
		b.Pages = append(b.Pages, p)
	}
	slices.SortStableFunc(b.Pages, func(a, b *Page) int {
		return a.Number - b.Number
	})
	return b
}

// Page finds page by number.
func (b *Book) Page(number int) (*Page, bool) {
	i, found := slices.BinarySearchFunc(b.Pages, number, func(p *Page, n int) int {
		return p.Number - n
	})
	if !found {
		return nil, false
	}
	return b.Pages[i], true
}

// LineCount reports number of lines on the page and whether page exists.
func (b *Book) LineCount(page int) (int, bool) {
	p, ok := b.Page(page)
	if !ok {
		return 0, false
	}
	return p.LineCount(), true
}

// TotalLines returns number of lines in the whole book.
func (b *Book) TotalLines() int {
	n := 0
	for _, p := range b.Pages {
		n += p.LineCount()
	}
	return n
}

// Span is a range of lines on a single page, both ends inclusive.
type Span struct {
	Page      int `json:"page"`
	LineStart int `json:"line_start"`
	LineEnd   int `json:"line_end"`
}

func (s Span) String() string {
	if s.LineStart == s.LineEnd {
		return fmt.Sprintf("p%d:%d", s.Page, s.LineStart)
	}
	return fmt.Sprintf("p%d:%d-%d", s.Page, s.LineStart, s.LineEnd)
}

// Overlap returns number of lines shared by two ranges on the same page.
func (s Span) Overlap(page, start, end int) int {
	if s.Page != page {
		return 0
	}
	lo, hi := max(s.LineStart, start), min(s.LineEnd, end)
	if hi < lo {
		return 0
	}
	return hi - lo + 1
}

// LineTag annotates a line range of a single page. Produced by external
// tagging, never mutated.
type LineTag struct {
	Book       BookID
	Page       int
	LineStart  int
	LineEnd    int
	Year       *int
	Month      *int
	Location   *string
	Locations  []string
	Characters []string
	Confidence float64
}

func (t *LineTag) Span() Span {
	return Span{Page: t.Page, LineStart: t.LineStart, LineEnd: t.LineEnd}
}

// Paragraph is a unit of the secondary book which gets spliced into the
// primary book as a whole.
type Paragraph struct {
	ID         string
	Book       BookID
	Sources    []Span
	Text       string
	OrderIndex int
}

// First returns first source span of the paragraph, it is used to find
// paragraph tags.
func (p *Paragraph) First() (Span, bool) {
	if len(p.Sources) == 0 {
		return Span{}, false
	}
	return p.Sources[0], true
}

// CompareParagraphs gives total order of paragraphs: by OrderIndex, then by
// ID compared naturally ("p2" < "p10").
func CompareParagraphs(a, b *Paragraph) int {
	return cmp.Or(cmp.Compare(a.OrderIndex, b.OrderIndex), CompareIDs(a.ID, b.ID))
}

func CompareIDs(a, b string) int {
	switch {
	case a == b:
		return 0
	case natural.Less(a, b):
		return -1
	default:
		return 1
	}
}

// InsertionPoint means "insert paragraph immediately after primary book
// (AnchorPage, AnchorLine)". Line 0 stands for the very beginning of the
// page.
type InsertionPoint struct {
	ParagraphID string
	AnchorBook  BookID
	AnchorPage  int
	AnchorLine  int
	Reason      string
	Confidence  float64
	// Defect is set when the record has no usable anchor position. Such point
	// still counts against its paragraph, so duplicates are detected.
	Defect string
}

func (ip *InsertionPoint) Anchor() Anchor {
	return Anchor{Page: ip.AnchorPage, Line: ip.AnchorLine}
}

// Anchor is a position in the primary book.
type Anchor struct {
	Page int `json:"page"`
	Line int `json:"line"`
}

func (a Anchor) String() string {
	return fmt.Sprintf("%d:%d", a.Page, a.Line)
}

// Compare orders anchors in book order.
func (a Anchor) Compare(b Anchor) int {
	if a.Page != b.Page {
		return a.Page - b.Page
	}
	return a.Line - b.Line
}

// Provenance identifies where a piece of the merged document came from.
type Provenance struct {
	Book      BookID `json:"book"`
	Page      int    `json:"page"`
	LineStart int    `json:"line_start"`
	LineEnd   int    `json:"line_end"`
}

func (p Provenance) String() string {
	if p.LineStart == p.LineEnd {
		return fmt.Sprintf("%s p%d:%d", p.Book, p.Page, p.LineStart)
	}
	return fmt.Sprintf("%s p%d:%d-%d", p.Book, p.Page, p.LineStart, p.LineEnd)
}
