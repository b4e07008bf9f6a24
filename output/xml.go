package output

import (
	"io"
	"strconv"

	"github.com/beevik/etree"

	"bookmerge/merge"
	"bookmerge/provenance"
)

func writeXML(w io.Writer, doc *merge.Document, sentences []provenance.Sentence) error {
	out := etree.NewDocument()
	out.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := out.CreateElement("merged")
	root.CreateAttr("id", doc.ID().String())
	root.CreateAttr("primary", string(doc.Primary))
	if doc.Secondary != "" {
		root.CreateAttr("secondary", string(doc.Secondary))
	}

	stats := root.CreateElement("stats")
	setInt(stats, "primary-lines", doc.Stats.PrimaryLines)
	setInt(stats, "paragraphs", doc.Stats.Paragraphs)
	setInt(stats, "anchored", doc.Stats.Anchored)
	setInt(stats, "fallback", doc.Stats.Fallback)
	setInt(stats, "undated", doc.Stats.Undated)
	for _, yc := range doc.Stats.Years {
		y := stats.CreateElement("year")
		setInt(y, "value", yc.Year)
		setInt(y, "count", yc.Count)
	}

	var entries []provenance.Entry
	if doc.Index != nil {
		entries = doc.Index.Entries()
	}

	segments := root.CreateElement("segments")
	for i := range doc.Segments {
		s := &doc.Segments[i]
		el := segments.CreateElement("segment")
		el.CreateAttr("origin", s.Origin.String())
		if i < len(entries) {
			e := &entries[i]
			setInt(el, "start", e.Start)
			setInt(el, "end", e.End)
			setInt(el, "first-line", e.FirstLine)
			setInt(el, "last-line", e.LastLine)
		}
		el.CreateAttr("book", string(s.Provenance.Book))
		setInt(el, "page", s.Provenance.Page)
		setInt(el, "line-start", s.Provenance.LineStart)
		setInt(el, "line-end", s.Provenance.LineEnd)
		if s.Chapter != "" {
			el.CreateAttr("chapter", s.Chapter)
		}
		if s.Origin == provenance.KindParagraph {
			el.CreateAttr("paragraph", s.ParagraphID)
			if s.Anchor != nil {
				el.CreateAttr("anchor", s.Anchor.String())
			}
			if s.Fallback {
				el.CreateAttr("fallback", "true")
			}
			if s.Year != nil {
				setInt(el, "year", *s.Year)
			}
			if s.Month != nil {
				setInt(el, "month", *s.Month)
			}
			if s.Reason != "" {
				el.CreateAttr("reason", s.Reason)
			}
			if s.Confidence > 0 {
				el.CreateAttr("confidence", strconv.FormatFloat(s.Confidence, 'f', -1, 64))
			}
			for _, sp := range s.Spans {
				src := el.CreateElement("source")
				setInt(src, "page", sp.Page)
				setInt(src, "line-start", sp.LineStart)
				setInt(src, "line-end", sp.LineEnd)
			}
			el.CreateElement("text").SetText(s.Text)
			continue
		}
		el.SetText(s.Text)
	}

	if len(sentences) > 0 {
		list := root.CreateElement("sentences")
		for _, s := range sentences {
			el := list.CreateElement("sentence")
			setInt(el, "start", s.Start)
			setInt(el, "end", s.End)
			setInt(el, "segment", s.Entry)
		}
	}

	diags := root.CreateElement("diagnostics")
	for _, d := range doc.Diagnostics {
		el := diags.CreateElement("diagnostic")
		el.CreateAttr("severity", d.Severity.String())
		el.CreateAttr("kind", d.Kind)
		if d.Subject != "" {
			el.CreateAttr("subject", d.Subject)
		}
		el.SetText(d.Message)
	}

	out.Indent(2)
	_, err := out.WriteTo(w)
	return err
}

func setInt(el *etree.Element, key string, v int) {
	el.CreateAttr(key, strconv.Itoa(v))
}
