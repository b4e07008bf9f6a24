package annotate

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"bookmerge/config"
	"bookmerge/diag"
	"bookmerge/snapshot"
)

// Failure is a page annotator could not tag.
type Failure struct {
	Book string `json:"book_id"`
	Page int    `json:"page_number"`
	Err  string `json:"error"`
}

// Result of a batch run. File has every input page, pages which failed keep
// whatever tags they had before.
type Result struct {
	File     *snapshot.TagFile
	Tagged   int
	Skipped  int
	Failures []Failure
}

type Batch struct {
	ann     Annotator
	cfg     *config.BatchConfig
	limiter *rate.Limiter
	log     *zap.Logger
}

func NewBatch(ann Annotator, cfg *config.BatchConfig, log *zap.Logger) *Batch {
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(cfg.RequestsPerMinute / 60)
	}
	return &Batch{ann: ann, cfg: cfg, limiter: rate.NewLimiter(limit, 1), log: log}
}

// Run tags pages of in. Pages already tagged are skipped unless retagging was
// requested. Individual page failures do not stop the batch, an error is
// returned only when ctx is done, and even then Result has everything tagged
// so far.
func (b *Batch) Run(ctx context.Context, in *snapshot.TagFile, diags *diag.List) (*Result, error) {
	// union also removes duplicate pages so results could be indexed by page
	src := snapshot.Union([]*snapshot.TagFile{in}, diags)

	var (
		res    = &Result{File: &snapshot.TagFile{Pages: make([]snapshot.PageRecord, len(src.Pages))}}
		tagged = make([][]json.RawMessage, len(src.Pages))
		mu     sync.Mutex
	)
	copy(res.File.Pages, src.Pages)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Concurrency)

	for i := range src.Pages {
		page := &src.Pages[i]
		if (page.Tagged() && !b.cfg.Retag) || blank(page) {
			res.Skipped++
			continue
		}
		g.Go(func() error {
			tags, err := b.page(gctx, page)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				b.log.Warn("Unable to tag page", zap.String("book", page.BookID), zap.Int("page", page.PageNumber), zap.Error(err))
				mu.Lock()
				res.Failures = append(res.Failures, Failure{Book: page.BookID, Page: page.PageNumber, Err: err.Error()})
				mu.Unlock()
				return nil
			}
			tagged[i] = tags
			return nil
		})
	}
	err := g.Wait()

	for i, tags := range tagged {
		if tags == nil {
			continue
		}
		res.File.Pages[i].LineTags = tags
		res.Tagged++
	}
	// goroutines finish in any order
	sortFailures(res.Failures)

	res.File.Metadata = map[string]any{
		"pages":   len(res.File.Pages),
		"tagged":  res.Tagged,
		"skipped": res.Skipped,
		"failed":  len(res.Failures),
	}
	if err != nil {
		return res, fmt.Errorf("batch interrupted: %w", err)
	}
	return res, nil
}

// page tags single page with retries. Every attempt is rate limited and has
// its own timeout.
func (b *Batch) page(ctx context.Context, page *snapshot.PageRecord) ([]json.RawMessage, error) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = b.cfg.InitialInterval
	exp.MaxInterval = b.cfg.MaxInterval

	attempt := 0
	op := func() ([]json.RawMessage, error) {
		attempt++
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}

		actx, cancel := context.WithTimeout(ctx, b.cfg.PageTimeout)
		defer cancel()

		start := time.Now()
		tags, err := b.ann.Annotate(actx, page)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			return nil, err
		}
		if len(tags) == 0 {
			return nil, errors.New("annotator returned no tags")
		}
		if err := page.CheckTags(tags); err != nil {
			return nil, err
		}
		b.log.Debug("Page tagged",
			zap.String("book", page.BookID), zap.Int("page", page.PageNumber),
			zap.Int("tags", len(tags)), zap.Int("attempt", attempt), zap.Duration("elapsed", time.Since(start)))
		return tags, nil
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(exp),
		backoff.WithMaxTries(b.cfg.MaxTries),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			b.log.Debug("Retrying page",
				zap.String("book", page.BookID), zap.Int("page", page.PageNumber),
				zap.Int("attempt", attempt), zap.Duration("next", next), zap.Error(err))
		}))
}

// blank pages have nothing to tag.
func blank(page *snapshot.PageRecord) bool {
	for _, l := range page.Lines {
		if strings.TrimSpace(l.Text) != "" {
			return false
		}
	}
	return strings.TrimSpace(page.FullText) == ""
}

func sortFailures(list []Failure) {
	slices.SortFunc(list, func(a, b Failure) int {
		return cmp.Or(cmp.Compare(a.Book, b.Book), cmp.Compare(a.Page, b.Page))
	})
}
