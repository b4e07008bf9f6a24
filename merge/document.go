package merge

import (
	"cmp"
	"slices"

	"github.com/google/uuid"

	"bookmerge/diag"
	"bookmerge/model"
	"bookmerge/provenance"
)

// documentSpace is namespace of name based document ids.
var documentSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("bookmerge:document"))

// Segment is a unit of merged document: single primary line or whole
// secondary paragraph.
type Segment struct {
	Origin      provenance.Kind  `json:"origin"`
	Text        string           `json:"text"`
	Provenance  model.Provenance `json:"provenance"`
	ParagraphID string           `json:"paragraph_id,omitempty"`
	Spans       []model.Span     `json:"spans,omitempty"`
	Chapter     string           `json:"chapter,omitempty"`
	// Anchor is set for paragraphs spliced at insertion point.
	Anchor *model.Anchor `json:"anchor,omitempty"`
	// Fallback is set for paragraphs of trailing chronological block.
	Fallback   bool    `json:"fallback,omitempty"`
	Year       *int    `json:"year,omitempty"`
	Month      *int    `json:"month,omitempty"`
	Reason     string  `json:"reason,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// YearCount is number of paragraphs dated by the year.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

type Stats struct {
	PrimaryLines int         `json:"primary_lines"`
	Paragraphs   int         `json:"paragraphs"`
	Anchored     int         `json:"anchored"`
	Fallback     int         `json:"fallback"`
	Undated      int         `json:"undated"`
	Years        []YearCount `json:"years,omitempty"`
}

// Document is merged text together with its segments and provenance index.
// Text is concatenation of segment texts, each followed by newline.
type Document struct {
	Primary       model.BookID
	PrimaryName   string
	Secondary     model.BookID
	SecondaryName string
	Segments      []Segment
	Text          string
	Index         *provenance.Index
	Diagnostics   []diag.Diagnostic
	Stats         Stats
}

// ID is derived from document text, identical merges have identical ids.
func (d *Document) ID() uuid.UUID {
	return uuid.NewSHA1(documentSpace, []byte(d.Text))
}

// Problems returns number of diagnostics of error severity or worse.
func (d *Document) Problems() int {
	n := 0
	for _, dg := range d.Diagnostics {
		if dg.Severity >= diag.SeverityError {
			n++
		}
	}
	return n
}

// Paragraphs returns ids of emitted paragraphs in document order.
func (d *Document) Paragraphs() []string {
	var out []string
	for _, s := range d.Segments {
		if s.Origin == provenance.KindParagraph {
			out = append(out, s.ParagraphID)
		}
	}
	return out
}

func countYears(segments []Segment) []YearCount {
	var out []YearCount
	for _, s := range segments {
		if s.Origin != provenance.KindParagraph || s.Year == nil {
			continue
		}
		i, found := slices.BinarySearchFunc(out, *s.Year, func(yc YearCount, y int) int {
			return cmp.Compare(yc.Year, y)
		})
		if !found {
			out = slices.Insert(out, i, YearCount{Year: *s.Year})
		}
		out[i].Count++
	}
	return out
}
