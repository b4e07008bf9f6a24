// Package provenance maps offsets of the merged document back to the book,
// page and lines the text came from.
package provenance

import (
	"sort"
	"strings"

	"bookmerge/content/text"
	"bookmerge/model"
)

//go:generate go tool go-enum --marshal --names

// Kind tells primary book lines from spliced paragraphs.
// ENUM(line, paragraph)
type Kind int

// Entry covers bytes [Start, End) and merged lines FirstLine..LastLine of
// the document. Trailing newline of a segment belongs to its entry.
type Entry struct {
	Start       int              `json:"start"`
	End         int              `json:"end"`
	FirstLine   int              `json:"first_line"`
	LastLine    int              `json:"last_line"`
	Kind        Kind             `json:"kind"`
	ParagraphID string           `json:"paragraph_id,omitempty"`
	Provenance  model.Provenance `json:"provenance"`
	// Spans lists all source ranges of a paragraph, provenance only names
	// the first one.
	Spans []model.Span `json:"spans,omitempty"`
}

func (e *Entry) Contains(offset int) bool {
	return offset >= e.Start && offset < e.End
}

// Builder accumulates entries while document is being emitted.
type Builder struct {
	entries []Entry
	offset  int
	line    int
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Append registers segment text, which is written to the document followed
// by a single newline.
func (b *Builder) Append(segment string, kind Kind, paragraphID string, prov model.Provenance, spans []model.Span) Entry {
	lines := strings.Count(segment, "\n") + 1
	e := Entry{
		Start:       b.offset,
		End:         b.offset + len(segment) + 1,
		FirstLine:   b.line + 1,
		LastLine:    b.line + lines,
		Kind:        kind,
		ParagraphID: paragraphID,
		Provenance:  prov,
		Spans:       spans,
	}
	b.entries = append(b.entries, e)
	b.offset, b.line = e.End, e.LastLine
	return e
}

// Build freezes accumulated entries. Builder is reset and may be reused.
func (b *Builder) Build() *Index {
	ix := &Index{entries: b.entries, size: b.offset, lines: b.line}
	*b = Builder{}
	return ix
}

// Index is immutable and safe for concurrent readers.
type Index struct {
	entries []Entry
	size    int
	lines   int
}

// Lookup returns entry covering byte offset of merged document.
func (ix *Index) Lookup(offset int) (Entry, bool) {
	if offset < 0 || offset >= ix.size {
		return Entry{}, false
	}
	i := sort.Search(len(ix.entries), func(i int) bool {
		return ix.entries[i].End > offset
	})
	return ix.entries[i], true
}

// LookupLine returns entry covering 1-based line of merged document.
func (ix *Index) LookupLine(line int) (Entry, bool) {
	if line < 1 || line > ix.lines {
		return Entry{}, false
	}
	i := sort.Search(len(ix.entries), func(i int) bool {
		return ix.entries[i].LastLine >= line
	})
	return ix.entries[i], true
}

// Entries returns copy of all entries in document order.
func (ix *Index) Entries() []Entry {
	out := make([]Entry, len(ix.entries))
	copy(out, ix.entries)
	return out
}

func (ix *Index) Len() int {
	return len(ix.entries)
}

// Size is length of indexed document in bytes.
func (ix *Index) Size() int {
	return ix.size
}

// Lines is number of lines of indexed document.
func (ix *Index) Lines() int {
	return ix.lines
}

// Sentence is citation of a single sentence of the merged document.
type Sentence struct {
	Start int `json:"start"`
	End   int `json:"end"`
	// Entry is position of covering entry in Entries.
	Entry int `json:"entry"`
}

// Sentences splits text of every entry into sentences. Sentences never cross
// entry boundaries, so each has exactly one provenance. doc must be the text
// the index was built for.
func (ix *Index) Sentences(doc string, splitter *text.Splitter) []Sentence {
	var out []Sentence
	for i, e := range ix.entries {
		if e.End > len(doc) {
			break
		}
		for _, sp := range splitter.Spans(doc[e.Start : e.End-1]) {
			out = append(out, Sentence{Start: e.Start + sp.Start, End: e.Start + sp.End, Entry: i})
		}
	}
	return out
}
