package output

import (
	"bufio"
	"fmt"
	"io"

	"bookmerge/config"
	"bookmerge/merge"
	"bookmerge/provenance"
)

// writeText writes merged text. Without headers output is byte for byte the
// text provenance index was built for.
func writeText(w io.Writer, doc *merge.Document, opts Options) error {
	if !opts.Headers {
		_, err := io.WriteString(w, doc.Text)
		return err
	}

	tmpl, err := parseTemplate(config.HeaderTemplateFieldName, opts.HeaderTemplate)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	for i := range doc.Segments {
		s := &doc.Segments[i]
		if s.Origin == provenance.KindParagraph {
			if err := tmpl.Execute(bw, headerValues(doc, s)); err != nil {
				return fmt.Errorf("unable to expand header for paragraph %q: %w", s.ParagraphID, err)
			}
			bw.WriteByte('\n')
		}
		bw.WriteString(s.Text)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
