package collate

import (
	"context"
	"sort"
	"sync"
)

// Compile-time assertions: *MemBackend satisfies both capabilities.
var (
	_ Pool         = (*MemBackend)(nil)
	_ CorpusSource = (*MemBackend)(nil)
)

// KeyFunc maps a string to its sort key under a synthetic ordering. Two
// strings compare equal exactly when their keys are byte-equal.
type KeyFunc func(string) string

// MemBackend implements Pool and CorpusSource entirely in memory, with
// orderings defined by registered key functions. It backs tests and
// offline runs that have no database available. Thread-safe via
// sync.RWMutex.
type MemBackend struct {
	mu        sync.RWMutex
	corpus    []string
	orderings map[string]KeyFunc
}

// NewMemBackend returns a MemBackend over the given corpus with no
// orderings registered yet.
func NewMemBackend(corpus []string) *MemBackend {
	return &MemBackend{
		corpus:    append([]string(nil), corpus...),
		orderings: make(map[string]KeyFunc),
	}
}

// Register adds (or replaces) an ordering under the given name.
func (b *MemBackend) Register(name string, key KeyFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orderings[name] = key
}

func (b *MemBackend) key(ordering string) (KeyFunc, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	key, ok := b.orderings[ordering]
	if !ok {
		return nil, ErrUnknownOrdering
	}
	return key, nil
}

// Session returns a comparator session. Sessions share the backend's
// read-only ordering table, so they are cheap handles.
func (b *MemBackend) Session(_ context.Context) (Session, error) {
	return &memSession{backend: b}, nil
}

// SortedCorpus returns a copy of the corpus sorted ascending under the
// named ordering. The sort is stable so that strings comparing equal stay
// adjacent, as the checker requires.
func (b *MemBackend) SortedCorpus(_ context.Context, ordering string) ([]string, error) {
	key, err := b.key(ordering)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	sorted := append([]string(nil), b.corpus...)
	b.mu.RUnlock()

	if len(sorted) == 0 {
		return nil, ErrEmptyCorpus
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return key(sorted[i]) < key(sorted[j])
	})
	return sorted, nil
}

type memSession struct {
	backend *MemBackend
}

func (s *memSession) Compare(_ context.Context, s1, s2, ordering string) (PairResult, error) {
	key, err := s.backend.key(ordering)
	if err != nil {
		return PairResult{}, err
	}
	k1, k2 := key(s1), key(s2)
	return PairResult{Equal: k1 == k2, Less: k1 < k2}, nil
}

func (s *memSession) Close() error { return nil }
