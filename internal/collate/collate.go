// Package collate defines the domain model for collation equivalence
// checking: the pairwise comparator capability, the corpus source
// capability, and the verdict produced by a check.
package collate

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// PairResult is the comparator output for a single (s1, s2, ordering)
// triple. A well-formed result never has both Equal and Less set.
type PairResult struct {
	Equal bool `json:"equal"`
	Less  bool `json:"lessThan"`
}

// Malformed reports whether the result claims s1 is simultaneously equal
// to and strictly less than s2.
func (r PairResult) Malformed() bool {
	return r.Equal && r.Less
}

func (r PairResult) String() string {
	return fmt.Sprintf("equal=%t less_than=%t", r.Equal, r.Less)
}

// Reason classifies why two orderings were found not equivalent.
type Reason string

const (
	// ReasonOrderReversed means ordering B places an adjacent pair in the
	// opposite relative order from the reference sort under ordering A.
	ReasonOrderReversed Reason = "order reversed"

	// ReasonComparisonMismatch means both orderings agree on the relative
	// order of a pair but disagree on the equal-vs-strictly-less
	// distinction.
	ReasonComparisonMismatch Reason = "comparison mismatch"
)

// Discrepancy is the evidence behind a NotEquivalent verdict: the first
// adjacent pair on which the two orderings disagreed, with both comparator
// results. Index is the position of S2 in the corpus sorted under the
// reference ordering.
type Discrepancy struct {
	Index   int        `json:"index"`
	S1      string     `json:"s1"`
	S2      string     `json:"s2"`
	ResultA PairResult `json:"resultA"`
	ResultB PairResult `json:"resultB"`
	Reason  Reason     `json:"reason"`
}

// Verdict is the outcome of one equivalence check. A NotEquivalent verdict
// is a successful determination, not an error; Discrepancy is non-nil
// exactly when Equivalent is false.
type Verdict struct {
	OrderingA   string       `json:"orderingA"`
	OrderingB   string       `json:"orderingB"`
	CorpusSize  int          `json:"corpusSize"`
	Pairs       int          `json:"pairs"` // adjacent pairs actually examined
	Equivalent  bool         `json:"equivalent"`
	Discrepancy *Discrepancy `json:"discrepancy,omitempty"`
}

// ErrEmptyCorpus is returned when the corpus source yields zero strings.
// Comparing an empty sequence is meaningless, so this is a hard
// precondition failure and is never retried.
var ErrEmptyCorpus = errors.New("collate: corpus is empty")

// ErrUnknownOrdering is returned by a routed pool when no backend is
// registered for the requested ordering name.
var ErrUnknownOrdering = errors.New("collate: unknown ordering")

// MalformedResultError reports a comparator that returned equal=true and
// less_than=true for the same pair. This indicates a broken collation
// implementation, not a checker failure, and is reported distinctly from a
// NotEquivalent verdict.
type MalformedResultError struct {
	Ordering string
	S1, S2   string
	Result   PairResult
}

func (e *MalformedResultError) Error() string {
	return fmt.Sprintf("collate: ordering %s returned equal and less_than for %q vs %q",
		e.Ordering, e.S1, e.S2)
}

// Comparator answers pairwise comparison queries for named orderings. It
// must be callable repeatedly and is assumed stateless across calls.
type Comparator interface {
	Compare(ctx context.Context, s1, s2, ordering string) (PairResult, error)
}

// Session is a Comparator bound to an exclusively-owned backend connection.
// A session must not be shared between goroutines; concurrent workers each
// check out their own.
type Session interface {
	Comparator
	io.Closer
}

// Pool hands out comparator sessions. Implementations: Backend in
// internal/colldb (production, one *sql.Conn per session), MemBackend
// (tests and offline runs), HTTPClient in internal/compareapi (remote).
type Pool interface {
	Session(ctx context.Context) (Session, error)
}

// CorpusSource returns the test corpus sorted ascending under the given
// ordering. It is used exactly once per check invocation and must return
// ErrEmptyCorpus when the underlying data yields zero rows.
type CorpusSource interface {
	SortedCorpus(ctx context.Context, ordering string) ([]string, error)
}

// CodePoints renders every rune of s as a hex code point, for discrepancy
// evidence that survives copy-paste of invisible or combining characters.
func CodePoints(s string) []string {
	points := make([]string, 0, len(s))
	for _, r := range s {
		points = append(points, fmt.Sprintf("0x%x", r))
	}
	return points
}
