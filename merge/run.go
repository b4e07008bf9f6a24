package merge

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"bookmerge/diag"
	"bookmerge/model"
	"bookmerge/snapshot"
	"bookmerge/tagstore"
)

// Load reads snapshots from src and turns them into engine input. Only
// failures to obtain required snapshots are returned as errors, problems
// with individual records are reported to diags.
func Load(ctx context.Context, src snapshot.Source, opts *Options, diags *diag.List, log *zap.Logger) (*Input, error) {
	tagFile, err := src.Tags(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load tag snapshot: %w", err)
	}
	tagged := tagFile.Decode(diags)

	if err := pickBooks(tagged, opts); err != nil {
		return nil, err
	}

	in := &Input{
		Primary:   tagged.Book(opts.Primary),
		Secondary: tagged.Book(opts.Secondary),
	}
	if len(in.Primary.Pages) == 0 {
		return nil, fmt.Errorf("primary book %q has no pages in tag snapshot", opts.Primary)
	}

	paraFile, err := src.Paragraphs(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load paragraph snapshot: %w", err)
	}
	in.Paragraphs = paraFile.Decode(in.Secondary, diags)

	ipFile, err := src.InsertionPoints(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load insertion point snapshot: %w", err)
	}
	if ipFile == nil {
		log.Info("No insertion points, all paragraphs will be ranked chronologically")
	} else {
		in.InsertionPoints = ipFile.Decode(diags)
	}

	in.Tags = tagstore.New(tagged.Tags, diags)
	if opts.CheckCoverage {
		gaps := in.Tags.Coverage(in.Primary, diags) + in.Tags.Coverage(in.Secondary, diags)
		if gaps > 0 {
			log.Warn("Some lines are not tagged", zap.Int("lines", gaps))
		}
	}

	log.Debug("Snapshots loaded",
		zap.String("source", src.Name()),
		zap.Stringer("primary", bookInfo{in.Primary}),
		zap.Stringer("secondary", bookInfo{in.Secondary}),
		zap.Int("paragraphs", len(in.Paragraphs)),
		zap.Int("insertion points", len(in.InsertionPoints)),
		zap.Int("tags", in.Tags.Len()))
	return in, ctx.Err()
}

// pickBooks fills in missing book ids when snapshot leaves no doubt.
func pickBooks(tagged *snapshot.Tagged, opts *Options) error {
	ids := tagged.BookIDs()
	others := func(id model.BookID) []model.BookID {
		var out []model.BookID
		for _, b := range ids {
			if b != id {
				out = append(out, b)
			}
		}
		return out
	}

	if opts.Primary == "" {
		if opts.Secondary == "" || len(others(opts.Secondary)) != 1 {
			return fmt.Errorf("primary book is not specified, tag snapshot has books %v", ids)
		}
		opts.Primary = others(opts.Secondary)[0]
	}
	if opts.Secondary == "" {
		rest := others(opts.Primary)
		if len(rest) != 1 {
			return fmt.Errorf("secondary book is not specified, tag snapshot has books %v", ids)
		}
		opts.Secondary = rest[0]
	}
	if opts.Primary == opts.Secondary {
		return fmt.Errorf("primary and secondary book are the same (%s)", opts.Primary)
	}
	return nil
}

// Run loads snapshots and merges them. Diagnostics are available in the
// resulting document.
func Run(ctx context.Context, src snapshot.Source, opts Options, log *zap.Logger) (*Document, error) {
	log = log.Named("merge")

	diags := diag.NewList(log)
	in, err := Load(ctx, src, &opts, diags, log)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	doc, err := New(opts, log).Merge(in, diags)
	if err != nil {
		log.Error("Merge failed", zap.Error(err))
		return nil, err
	}

	log.Info("Merge completed",
		zap.Stringer("id", doc.ID()),
		zap.Int("segments", len(doc.Segments)),
		zap.Int("anchored", doc.Stats.Anchored),
		zap.Int("fallback", doc.Stats.Fallback),
		zap.Int("undated", doc.Stats.Undated),
		zap.Int("diagnostics", len(doc.Diagnostics)),
		zap.Duration("elapsed", time.Since(start)))
	for kind, n := range sortedSummary(diags) {
		log.Info("Diagnostics", zap.String("kind", kind), zap.Int("count", n))
	}
	return doc, nil
}

type bookInfo struct {
	b *model.Book
}

func (i bookInfo) String() string {
	return fmt.Sprintf("%s (%q, %d pages, %d lines)", i.b.ID, i.b.Name, len(i.b.Pages), i.b.TotalLines())
}
