// Package snapshot reads and writes the JSON snapshots produced by external
// annotators: tagged pages, paragraphs of the secondary book and insertion
// points. Snapshots are decoded into model types record by record, so a broken
// record is reported and skipped instead of failing the whole run.
package snapshot

import (
	"encoding/json"
)

// LineRecord is a single page line as produced by OCR.
type LineRecord struct {
	Number int    `json:"line_number"`
	Text   string `json:"text"`
	Empty  bool   `json:"is_empty,omitempty"`
}

// TagRecord is a line range tag. Year, month and confidence are kept raw since
// annotators are not consistent about their types.
type TagRecord struct {
	LineStart  *int            `json:"line_start"`
	LineEnd    *int            `json:"line_end"`
	Year       json.RawMessage `json:"year,omitempty"`
	Month      json.RawMessage `json:"month,omitempty"`
	Location   *string         `json:"location,omitempty"`
	Locations  []string        `json:"locations,omitempty"`
	Characters []string        `json:"characters,omitempty"`
	Confidence json.RawMessage `json:"confidence,omitempty"`
}

type PageRecord struct {
	BookID     string            `json:"book_id"`
	BookName   string            `json:"book_name,omitempty"`
	PageNumber int               `json:"page_number"`
	Chapter    string            `json:"chapter,omitempty"`
	FullText   string            `json:"full_text,omitempty"`
	Lines      []LineRecord      `json:"lines"`
	LineTags   []json.RawMessage `json:"line_tags"`
}

// TagFile is tag snapshot: a record per page, each holding ordered list of
// line range tags.
type TagFile struct {
	Metadata map[string]any `json:"metadata,omitempty"`
	Pages    []PageRecord   `json:"pages"`
}

type SourceRecord struct {
	Page      *int `json:"page"`
	LineStart *int `json:"line_start"`
	LineEnd   *int `json:"line_end"`
}

type ParagraphRecord struct {
	ID         string         `json:"paragraph_id"`
	BookID     string         `json:"book_id"`
	Sources    []SourceRecord `json:"source_pages"`
	Text       string         `json:"text,omitempty"`
	OrderIndex *int           `json:"order_index"`
}

// ParagraphFile is paragraph snapshot of the secondary book.
type ParagraphFile struct {
	Metadata   map[string]any    `json:"metadata,omitempty"`
	Paragraphs []json.RawMessage `json:"paragraphs"`
}

// InsertionRecord anchors paragraph in the primary book. insert_after_* names
// are accepted for snapshots made by older tooling.
type InsertionRecord struct {
	ParagraphID     string          `json:"paragraph_id"`
	AnchorBookID    string          `json:"anchor_book_id,omitempty"`
	AnchorPage      *int            `json:"anchor_page,omitempty"`
	AnchorLine      *int            `json:"anchor_line,omitempty"`
	InsertAfterPage *int            `json:"insert_after_page,omitempty"`
	InsertAfterLine *int            `json:"insert_after_line,omitempty"`
	Reason          string          `json:"reason,omitempty"`
	InsertReason    string          `json:"insert_reason,omitempty"`
	Confidence      json.RawMessage `json:"confidence,omitempty"`
}

// InsertionFile is optional insertion point snapshot.
type InsertionFile struct {
	Metadata        map[string]any    `json:"metadata,omitempty"`
	InsertionPoints []json.RawMessage `json:"insertion_points"`
}
