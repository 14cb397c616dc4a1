// Package check decides whether two collations induce the same total order
// over a corpus. It fetches the corpus once, sorted under the reference
// ordering, and verifies every adjacent pair under both orderings: any
// global disagreement between two total orders must surface as an
// inversion or mismatch on some adjacent pair of the reference sort, so a
// linear scan substitutes for quadratic all-pairs comparison.
package check

import (
	"context"
	"fmt"
	"log/slog"

	"collatecheck/internal/collate"
)

// Checker runs equivalence checks against a comparator pool and a corpus
// source.
type Checker struct {
	pool       collate.Pool
	corpus     collate.CorpusSource
	workers    int
	onProgress func(ProgressEvent)
	log        *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithWorkers sets the number of concurrent comparator sessions. Values
// below 2 select the strict sequential scan.
func WithWorkers(n int) Option {
	return func(c *Checker) { c.workers = n }
}

// WithProgress registers a progress callback. It is called from scan
// goroutines and must be safe for concurrent use; it may be nil.
func WithProgress(fn func(ProgressEvent)) Option {
	return func(c *Checker) { c.onProgress = fn }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) { c.log = l }
}

// New creates a Checker over the given comparator pool and corpus source.
func New(pool collate.Pool, corpus collate.CorpusSource, opts ...Option) *Checker {
	c := &Checker{
		pool:    pool,
		corpus:  corpus,
		workers: 1,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run checks whether orderingA and orderingB are equivalent total orders
// over the corpus. The corpus is fetched once, sorted under orderingA;
// each adjacent pair then costs exactly two comparator calls, one per
// ordering.
//
// A NotEquivalent verdict is returned with a nil error: it is a valid
// determination, carrying the first offending pair and both comparator
// results. Errors are reserved for an empty corpus, comparator failures,
// and malformed comparator results.
func (c *Checker) Run(ctx context.Context, orderingA, orderingB string) (*collate.Verdict, error) {
	c.log.Debug("fetching sorted corpus", "ordering", orderingA)
	strings, err := c.corpus.SortedCorpus(ctx, orderingA)
	if err != nil {
		return nil, err
	}
	if len(strings) == 0 {
		return nil, collate.ErrEmptyCorpus
	}
	c.log.Debug("corpus fetched", "size", len(strings))

	verdict := &collate.Verdict{
		OrderingA:  orderingA,
		OrderingB:  orderingB,
		CorpusSize: len(strings),
	}

	// A single string has no adjacent pairs: trivially equivalent, and no
	// comparator calls are issued.
	if len(strings) == 1 {
		verdict.Equivalent = true
		return verdict, nil
	}

	if c.workers > 1 {
		return c.scanConcurrent(ctx, verdict, strings, orderingA, orderingB)
	}
	return c.scanSequential(ctx, verdict, strings, orderingA, orderingB)
}

// scanSequential walks the sorted corpus once over a single comparator
// session, failing fast on the first discrepancy.
func (c *Checker) scanSequential(ctx context.Context, verdict *collate.Verdict, strings []string, orderingA, orderingB string) (*collate.Verdict, error) {
	sess, err := c.pool.Session(ctx)
	if err != nil {
		return nil, fmt.Errorf("check: acquire comparator session: %w", err)
	}
	defer sess.Close()

	total := len(strings) - 1
	for i := 1; i < len(strings); i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		d, err := c.checkPair(ctx, sess, strings[i-1], strings[i], i, orderingA, orderingB)
		if err != nil {
			return nil, err
		}
		verdict.Pairs = i
		c.emit(ProgressEvent{Done: i, Total: total})
		if d != nil {
			c.logDiscrepancy(d, orderingA, orderingB)
			verdict.Discrepancy = d
			return verdict, nil
		}
	}

	verdict.Equivalent = true
	return verdict, nil
}

// checkPair compares one adjacent pair under both orderings and evaluates
// the two results. The reference sort already places s1 <= s2 under
// orderingA, so orderingB must not report strictly-greater (monotonicity),
// and the two results must be identical (agreement). Monotonicity is
// checked first, so an inversion is never reported as a mere mismatch;
// both conditions come out of the same two comparator round-trips.
func (c *Checker) checkPair(ctx context.Context, sess collate.Session, s1, s2 string, index int, orderingA, orderingB string) (*collate.Discrepancy, error) {
	resultA, err := sess.Compare(ctx, s1, s2, orderingA)
	if err != nil {
		return nil, fmt.Errorf("check: compare pair %d under %s: %w", index, orderingA, err)
	}
	if resultA.Malformed() {
		return nil, &collate.MalformedResultError{Ordering: orderingA, S1: s1, S2: s2, Result: resultA}
	}

	resultB, err := sess.Compare(ctx, s1, s2, orderingB)
	if err != nil {
		return nil, fmt.Errorf("check: compare pair %d under %s: %w", index, orderingB, err)
	}
	if resultB.Malformed() {
		return nil, &collate.MalformedResultError{Ordering: orderingB, S1: s1, S2: s2, Result: resultB}
	}

	d := &collate.Discrepancy{
		Index:   index,
		S1:      s1,
		S2:      s2,
		ResultA: resultA,
		ResultB: resultB,
	}
	if !resultB.Equal && !resultB.Less {
		d.Reason = collate.ReasonOrderReversed
		return d, nil
	}
	if resultA != resultB {
		d.Reason = collate.ReasonComparisonMismatch
		return d, nil
	}
	return nil, nil
}

func (c *Checker) logDiscrepancy(d *collate.Discrepancy, orderingA, orderingB string) {
	c.log.Warn("orderings are not equivalent",
		"reason", string(d.Reason),
		"index", d.Index,
		"s1", d.S1, "s1_code_points", collate.CodePoints(d.S1),
		"s2", d.S2, "s2_code_points", collate.CodePoints(d.S2),
		orderingA, d.ResultA.String(),
		orderingB, d.ResultB.String(),
	)
}

func (c *Checker) emit(ev ProgressEvent) {
	if c.onProgress != nil {
		c.onProgress(ev)
	}
}
