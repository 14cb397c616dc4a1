package collate

import (
	"context"
	"errors"
	"fmt"
)

// Compile-time assertion: *RoutedPool satisfies Pool.
var _ Pool = (*RoutedPool)(nil)

// RoutedPool dispatches each ordering name to a dedicated underlying Pool.
// This lets one check compare collations that live on different servers,
// e.g. the same collation name across two database builds. Routes must be
// registered before the pool is used; registration is not safe to run
// concurrently with Session.
type RoutedPool struct {
	routes map[string]Pool
}

// NewRoutedPool returns an empty RoutedPool.
func NewRoutedPool() *RoutedPool {
	return &RoutedPool{routes: make(map[string]Pool)}
}

// Route assigns the backend pool that serves the given ordering name.
func (p *RoutedPool) Route(ordering string, pool Pool) {
	p.routes[ordering] = pool
}

// Session returns a session that lazily opens one sub-session per routed
// backend as orderings are first compared, and closes them all on Close.
func (p *RoutedPool) Session(_ context.Context) (Session, error) {
	return &routedSession{pool: p, sessions: make(map[string]Session)}, nil
}

type routedSession struct {
	pool     *RoutedPool
	sessions map[string]Session // keyed by ordering name
}

func (s *routedSession) Compare(ctx context.Context, s1, s2, ordering string) (PairResult, error) {
	sess, ok := s.sessions[ordering]
	if !ok {
		backend, ok := s.pool.routes[ordering]
		if !ok {
			return PairResult{}, fmt.Errorf("%w: %s", ErrUnknownOrdering, ordering)
		}
		var err error
		sess, err = backend.Session(ctx)
		if err != nil {
			return PairResult{}, fmt.Errorf("collate: open session for %s: %w", ordering, err)
		}
		s.sessions[ordering] = sess
	}
	return sess.Compare(ctx, s1, s2, ordering)
}

func (s *routedSession) Close() error {
	var errs []error
	for _, sess := range s.sessions {
		if err := sess.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
