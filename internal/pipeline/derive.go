// Package pipeline orchestrates the name-extraction, email-synthesis and
// validation stages over batches of raw search records.
package pipeline

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/leadscout/emailscout/internal/model"
	"github.com/leadscout/emailscout/internal/nameparse"
	"github.com/leadscout/emailscout/internal/synth"
	"github.com/leadscout/emailscout/internal/validate"
)

// defaultConcurrency bounds parallel MX lookups so a batch does not
// overwhelm the resolver.
const defaultConcurrency = 8

// ProgressFunc receives a monotonically increasing completion fraction in
// [0,1] as records finish classification.
type ProgressFunc func(fraction float64)

// DeriveResult is the outcome of one derivation batch.
type DeriveResult struct {
	Rows    []model.ResultRow
	Skipped int // records dropped for a missing hyphen
	Deduped int // duplicate (title, link) pairs collapsed
}

// Deriver applies parse, synthesize and classify over a batch. It owns no
// state between batches.
type Deriver struct {
	classifier  *validate.Classifier
	concurrency int
	progress    ProgressFunc
}

// Option configures a Deriver.
type Option func(*Deriver)

// WithConcurrency bounds the number of parallel classifications.
func WithConcurrency(n int) Option {
	return func(d *Deriver) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(d *Deriver) {
		d.progress = fn
	}
}

// NewDeriver creates a Deriver around the given classifier.
func NewDeriver(classifier *validate.Classifier, opts ...Option) *Deriver {
	d := &Deriver{
		classifier:  classifier,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run derives one ResultRow per unique, parseable raw record. Duplicate
// (title, link) pairs collapse to their first occurrence and result
// ordering follows input order. Records whose title has no hyphen are
// dropped and counted, not surfaced as errors. Classification fans out
// over a bounded worker pool; a cancelled context aborts the batch.
func (d *Deriver) Run(ctx context.Context, records []model.RawRecord, conv model.NamingConvention) (*DeriveResult, error) {
	log := zap.L().With(zap.String("component", "deriver"))

	result := &DeriveResult{}

	// Sequential pass: dedupe, parse, synthesize. Row order is fixed here.
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if _, dup := seen[rec.Key()]; dup {
			result.Deduped++
			continue
		}
		seen[rec.Key()] = struct{}{}

		name, err := nameparse.Parse(rec.Title)
		if err != nil {
			result.Skipped++
			log.Debug("dropping unparseable title", zap.String("title", rec.Title))
			continue
		}

		result.Rows = append(result.Rows, model.ResultRow{
			Name:  name,
			Email: synth.Synthesize(name, conv),
			Link:  rec.Link,
		})
	}

	if result.Skipped > 0 {
		log.Info("skipped unparseable records", zap.Int("count", result.Skipped))
	}
	if len(result.Rows) == 0 {
		d.reportProgress(1)
		return result, nil
	}

	// Parallel pass: classify each row independently, writing verdicts by
	// index so input order survives the fan-out.
	var (
		completed int
		mu        sync.Mutex
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	total := len(result.Rows)
	for i := range result.Rows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result.Rows[i].Verdict = d.classifier.Classify(gctx, result.Rows[i].Email.Address)

			// Report under the lock so fractions reach the consumer in
			// non-decreasing order.
			mu.Lock()
			completed++
			d.reportProgress(float64(completed) / float64(total))
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "pipeline: derive batch aborted")
	}

	return result, nil
}

func (d *Deriver) reportProgress(fraction float64) {
	if d.progress != nil {
		d.progress(fraction)
	}
}
