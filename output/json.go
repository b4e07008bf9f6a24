package output

import (
	"encoding/json"
	"io"

	"bookmerge/diag"
	"bookmerge/merge"
	"bookmerge/model"
	"bookmerge/provenance"
)

type jsonDocument struct {
	ID          string                `json:"id"`
	Primary     model.BookID          `json:"primary_book"`
	Secondary   model.BookID          `json:"secondary_book,omitempty"`
	Text        string                `json:"text"`
	Segments    []merge.Segment       `json:"segments"`
	Entries     []provenance.Entry    `json:"entries"`
	Sentences   []provenance.Sentence `json:"sentences,omitempty"`
	Diagnostics []diag.Diagnostic     `json:"diagnostics"`
	Stats       merge.Stats           `json:"stats"`
}

func writeJSON(w io.Writer, doc *merge.Document, sentences []provenance.Sentence) error {
	out := jsonDocument{
		ID:          doc.ID().String(),
		Primary:     doc.Primary,
		Secondary:   doc.Secondary,
		Text:        doc.Text,
		Segments:    doc.Segments,
		Sentences:   sentences,
		Diagnostics: doc.Diagnostics,
		Stats:       doc.Stats,
	}
	if doc.Index != nil {
		out.Entries = doc.Index.Entries()
	}
	if out.Diagnostics == nil {
		out.Diagnostics = []diag.Diagnostic{}
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
