// Package merge splices paragraphs of the secondary book into the primary
// book and records provenance of every piece of the result.
package merge

import (
	"strings"

	"go.uber.org/zap"

	"bookmerge/diag"
	"bookmerge/model"
	"bookmerge/provenance"
	"bookmerge/ranker"
	"bookmerge/resolve"
	"bookmerge/tagstore"
)

// Options of merge policy.
type Options struct {
	Primary   model.BookID
	Secondary model.BookID
	Resolve   resolve.Options
	Rank      ranker.Options
	// CheckCoverage reports untagged lines of both books.
	CheckCoverage bool
}

// Input is fully materialized engine input.
type Input struct {
	Primary         *model.Book
	Secondary       *model.Book
	Paragraphs      []model.Paragraph
	InsertionPoints []model.InsertionPoint
	Tags            *tagstore.Store
}

type Engine struct {
	opts Options
	log  *zap.Logger
}

func New(opts Options, log *zap.Logger) *Engine {
	return &Engine{opts: opts, log: log}
}

// Merge walks primary book line by line splicing anchored paragraphs after
// their anchor lines and appends the rest ranked chronologically. Input
// problems go to diags, returned error is always *diag.EngineInvariantError.
func (e *Engine) Merge(in *Input, diags *diag.List) (*Document, error) {
	tags := in.Tags
	if tags == nil {
		tags = tagstore.New(nil, nil)
	}
	res := resolve.Resolve(in.Primary, in.Paragraphs, in.InsertionPoints, e.opts.Resolve, diags, e.log.Named("resolve"))
	ranked := ranker.Rank(res.Unanchored, tags, e.opts.Rank, diags)

	doc := &Document{Primary: in.Primary.ID, PrimaryName: in.Primary.Name}
	if in.Secondary != nil {
		doc.Secondary, doc.SecondaryName = in.Secondary.ID, in.Secondary.Name
	}

	var (
		text    strings.Builder
		builder = provenance.NewBuilder()
		emitted = make(map[string]int, len(in.Paragraphs))
	)
	emit := func(s Segment) {
		builder.Append(s.Text, s.Origin, s.ParagraphID, s.Provenance, s.Spans)
		text.WriteString(s.Text)
		text.WriteByte('\n')
		doc.Segments = append(doc.Segments, s)
		if s.Origin == provenance.KindParagraph {
			emitted[s.ParagraphID]++
		}
	}
	emitAnchored := func(a model.Anchor) {
		for _, p := range res.At(a) {
			s := paragraphSegment(p, in.Secondary)
			s.Anchor = &a
			if ip, ok := res.Point(p.ID); ok {
				s.Reason, s.Confidence = ip.Reason, ip.Confidence
			}
			if span, ok := p.First(); ok {
				if tag, ok := tags.Lookup(p.Book, span, e.opts.Rank.MinConfidence); ok {
					s.Year, s.Month = tag.Year, tag.Month
				}
			}
			emit(s)
			doc.Stats.Anchored++
		}
	}

	for _, page := range in.Primary.Pages {
		emitAnchored(model.Anchor{Page: page.Number, Line: 0})
		for _, line := range page.Lines {
			emit(Segment{
				Origin:     provenance.KindLine,
				Text:       line.Text,
				Provenance: model.Provenance{Book: page.Book, Page: page.Number, LineStart: line.Number, LineEnd: line.Number},
				Chapter:    page.Chapter,
			})
			doc.Stats.PrimaryLines++
			emitAnchored(model.Anchor{Page: page.Number, Line: line.Number})
		}
	}

	for _, r := range ranked {
		s := paragraphSegment(r.Paragraph, in.Secondary)
		s.Fallback = true
		s.Year, s.Month = r.Year, r.Month
		if r.Tag != nil {
			s.Confidence = r.Tag.Confidence
		}
		emit(s)
		doc.Stats.Fallback++
		if r.Year == nil {
			doc.Stats.Undated++
		}
	}

	// every paragraph must be present exactly once
	known := make(map[string]bool, len(in.Paragraphs))
	for _, p := range in.Paragraphs {
		if n := emitted[p.ID]; n != 1 {
			return nil, &diag.EngineInvariantError{ParagraphID: p.ID, Count: n}
		}
		known[p.ID] = true
	}
	for _, s := range doc.Segments {
		if s.Origin == provenance.KindParagraph && !known[s.ParagraphID] {
			return nil, &diag.EngineInvariantError{ParagraphID: s.ParagraphID, Count: emitted[s.ParagraphID]}
		}
	}

	doc.Text = text.String()
	doc.Index = builder.Build()
	doc.Stats.Paragraphs = len(in.Paragraphs)
	doc.Stats.Years = countYears(doc.Segments)
	doc.Diagnostics = diags.Items()
	return doc, nil
}

// paragraphSegment cites paragraph by its first source span, chapter comes
// from the secondary page of that span.
func paragraphSegment(p model.Paragraph, secondary *model.Book) Segment {
	s := Segment{
		Origin:      provenance.KindParagraph,
		Text:        strings.TrimRight(p.Text, "\n"),
		ParagraphID: p.ID,
		Spans:       p.Sources,
		Provenance:  model.Provenance{Book: p.Book},
	}
	if span, ok := p.First(); ok {
		s.Provenance.Page, s.Provenance.LineStart, s.Provenance.LineEnd = span.Page, span.LineStart, span.LineEnd
		if secondary != nil {
			if page, ok := secondary.Page(span.Page); ok {
				s.Chapter = page.Chapter
			}
		}
	}
	return s
}
