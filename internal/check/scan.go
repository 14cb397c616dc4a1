package check

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"collatecheck/internal/collate"
)

// errStop is the cancellation sentinel returned by a worker that found a
// discrepancy. It cancels the errgroup context so in-flight comparator
// calls are abandoned and no further pairs are claimed.
var errStop = errors.New("check: discrepancy found")

// scanConcurrent checks adjacent pairs with a bounded pool of workers.
// Each worker owns its own comparator session — no session is ever shared
// between goroutines — and claims the next unchecked pair from a shared
// counter. The first discrepancy cancels the group; if several workers
// discover discrepancies before the cancellation lands, the one with the
// lowest index wins, so the reported pair is deterministic for a
// deterministic comparator.
func (c *Checker) scanConcurrent(ctx context.Context, verdict *collate.Verdict, strings []string, orderingA, orderingB string) (*collate.Verdict, error) {
	total := len(strings) - 1

	var (
		next  atomic.Int64 // next pair index to claim
		done  atomic.Int64 // pairs fully evaluated
		mu    sync.Mutex
		found *collate.Discrepancy
	)
	next.Store(1)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < c.workers; w++ {
		g.Go(func() error {
			sess, err := c.pool.Session(gctx)
			if err != nil {
				return fmt.Errorf("check: acquire comparator session: %w", err)
			}
			defer sess.Close()

			for {
				i := int(next.Add(1)) - 1
				if i >= len(strings) {
					return nil
				}
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				d, err := c.checkPair(gctx, sess, strings[i-1], strings[i], i, orderingA, orderingB)
				if err != nil {
					return err
				}
				c.emit(ProgressEvent{Done: int(done.Add(1)), Total: total})
				if d != nil {
					mu.Lock()
					if found == nil || d.Index < found.Index {
						found = d
					}
					mu.Unlock()
					return errStop // first failure wins: cancel the group
				}
			}
		})
	}

	err := g.Wait()

	// Cancellation from the caller always surfaces as an error, even if a
	// worker happened to record a discrepancy on the way down.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	verdict.Pairs = int(done.Load())
	if found != nil {
		c.logDiscrepancy(found, orderingA, orderingB)
		verdict.Discrepancy = found
		return verdict, nil
	}
	if err != nil {
		return nil, err
	}

	verdict.Equivalent = true
	return verdict, nil
}
