// Package resolve validates insertion points against the primary book and
// groups paragraphs by the anchor they are spliced after.
package resolve

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"bookmerge/diag"
	"bookmerge/model"
)

// Options are resolution policy toggles.
type Options struct {
	// IgnoreInsertionPoints sends every paragraph to chronological fallback.
	IgnoreInsertionPoints bool
}

// Result maps anchors to paragraphs. Every paragraph given to Resolve ends up
// either under exactly one anchor or in Unanchored.
type Result struct {
	// Anchors lists used anchors in book order.
	Anchors    []model.Anchor
	Unanchored []model.Paragraph

	anchored map[model.Anchor][]model.Paragraph
	points   map[string]model.InsertionPoint
}

// At returns paragraphs anchored after the given position, in splice order.
func (r *Result) At(a model.Anchor) []model.Paragraph {
	return r.anchored[a]
}

// Point returns insertion point used for paragraph.
func (r *Result) Point(id string) (model.InsertionPoint, bool) {
	ip, ok := r.points[id]
	return ip, ok
}

// AnchoredCount returns number of paragraphs with valid anchor.
func (r *Result) AnchoredCount() int {
	return len(r.points)
}

// Resolve assigns paragraphs to anchors. Problems with insertion points are
// reported to diags and make affected paragraphs unanchored.
func Resolve(primary *model.Book, paragraphs []model.Paragraph, points []model.InsertionPoint, opts Options, diags *diag.List, log *zap.Logger) *Result {
	res := &Result{
		anchored: make(map[model.Anchor][]model.Paragraph),
		points:   make(map[string]model.InsertionPoint),
	}

	if opts.IgnoreInsertionPoints {
		log.Debug("Insertion points are ignored", zap.Int("points", len(points)))
		res.Unanchored = slices.Clone(paragraphs)
		return res
	}

	known := make(map[string]bool, len(paragraphs))
	for _, p := range paragraphs {
		known[p.ID] = true
	}

	byParagraph := make(map[string][]model.InsertionPoint, len(points))
	for i, ip := range points {
		if !known[ip.ParagraphID] {
			diags.Report(&diag.OrphanAnchorWarning{ParagraphID: ip.ParagraphID, Index: i, Anchor: ip.Anchor()})
			continue
		}
		byParagraph[ip.ParagraphID] = append(byParagraph[ip.ParagraphID], ip)
	}

	for _, p := range paragraphs {
		list := byParagraph[p.ID]
		switch len(list) {
		case 0:
			res.Unanchored = append(res.Unanchored, p)
			continue
		case 1:
		default:
			anchors := make([]model.Anchor, 0, len(list))
			for _, ip := range list {
				anchors = append(anchors, ip.Anchor())
			}
			diags.Report(&diag.DuplicateAnchorError{ParagraphID: p.ID, Anchors: anchors})
			res.Unanchored = append(res.Unanchored, p)
			continue
		}

		ip := list[0]
		if err := validate(primary, ip); err != nil {
			diags.Report(err)
			res.Unanchored = append(res.Unanchored, p)
			continue
		}

		a := ip.Anchor()
		if _, ok := res.anchored[a]; !ok {
			res.Anchors = append(res.Anchors, a)
		}
		res.anchored[a] = append(res.anchored[a], p)
		res.points[p.ID] = ip
	}

	slices.SortFunc(res.Anchors, model.Anchor.Compare)
	for _, a := range res.Anchors {
		slices.SortStableFunc(res.anchored[a], func(x, y model.Paragraph) int {
			return model.CompareParagraphs(&x, &y)
		})
	}

	log.Debug("Insertion points resolved",
		zap.Int("paragraphs", len(paragraphs)),
		zap.Int("anchored", len(res.points)),
		zap.Int("anchors", len(res.Anchors)),
		zap.Int("unanchored", len(res.Unanchored)))
	return res
}

func validate(primary *model.Book, ip model.InsertionPoint) error {
	bad := func(format string, args ...any) error {
		return &diag.OutOfRangeAnchorError{
			ParagraphID: ip.ParagraphID,
			Book:        ip.AnchorBook,
			Page:        ip.AnchorPage,
			Line:        ip.AnchorLine,
			Reason:      fmt.Sprintf(format, args...),
		}
	}

	if ip.Defect != "" {
		return &diag.OutOfRangeAnchorError{ParagraphID: ip.ParagraphID, Book: ip.AnchorBook, Reason: ip.Defect, NoPosition: true}
	}
	if ip.AnchorBook != "" && ip.AnchorBook != primary.ID {
		return bad("anchor book is not the primary book %q", primary.ID)
	}
	count, ok := primary.LineCount(ip.AnchorPage)
	if !ok {
		return bad("page %d does not exist", ip.AnchorPage)
	}
	if ip.AnchorLine < 0 || ip.AnchorLine > count {
		return bad("line %d outside of page lines 0-%d", ip.AnchorLine, count)
	}
	return nil
}
