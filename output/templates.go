package output

import (
	"bytes"
	"fmt"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"bookmerge/common"
	"bookmerge/config"
	"bookmerge/merge"
)

// NameValues are available to output name template.
type NameValues struct {
	Context       string
	Primary       string
	PrimaryName   string
	Secondary     string
	SecondaryName string
	ID            string
	Format        string
}

// HeaderValues are available to citation header template. Zero Year or Month
// means unknown.
type HeaderValues struct {
	Context     string
	Book        string
	BookName    string
	Chapter     string
	Page        int
	LineStart   int
	LineEnd     int
	ParagraphID string
	Reason      string
	Year        int
	Month       int
	Fallback    bool
	Confidence  float64
}

func nameValues(doc *merge.Document, format common.OutputFmt) NameValues {
	return NameValues{
		Context:       string(config.OutputNameTemplateFieldName),
		Primary:       string(doc.Primary),
		PrimaryName:   doc.PrimaryName,
		Secondary:     string(doc.Secondary),
		SecondaryName: doc.SecondaryName,
		ID:            doc.ID().String(),
		Format:        format.String(),
	}
}

func headerValues(doc *merge.Document, s *merge.Segment) HeaderValues {
	v := HeaderValues{
		Context:     string(config.HeaderTemplateFieldName),
		Book:        string(s.Provenance.Book),
		Chapter:     s.Chapter,
		Page:        s.Provenance.Page,
		LineStart:   s.Provenance.LineStart,
		LineEnd:     s.Provenance.LineEnd,
		ParagraphID: s.ParagraphID,
		Reason:      s.Reason,
		Fallback:    s.Fallback,
		Confidence:  s.Confidence,
	}
	switch s.Provenance.Book {
	case doc.Secondary:
		v.BookName = doc.SecondaryName
	case doc.Primary:
		v.BookName = doc.PrimaryName
	}
	if s.Year != nil {
		v.Year = *s.Year
	}
	if s.Month != nil {
		v.Month = *s.Month
	}
	return v
}

func parseTemplate(name config.TemplateFieldName, field string) (*template.Template, error) {
	tmpl, err := template.New(string(name)).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return nil, fmt.Errorf("unable to parse template field %s: %w", name, err)
	}
	return tmpl, nil
}

func expandTemplate(name config.TemplateFieldName, field string, values any) (string, error) {
	tmpl, err := parseTemplate(name, field)
	if err != nil {
		return "", err
	}
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
