package check

import (
	"context"
	"fmt"

	"collatecheck/internal/collate"
)

// Difference is one pair on which two orderings disagree, found by the
// brute-force scan.
type Difference struct {
	S1      string             `json:"s1"`
	S2      string             `json:"s2"`
	ResultA collate.PairResult `json:"resultA"`
	ResultB collate.PairResult `json:"resultB"`
}

// FindDifferences compares every pair of corpus strings under both
// orderings and collects the disagreements, up to limit (0 means no
// limit). This is O(n²) in comparator calls and exists purely as a
// diagnostic for use after Checker.Run has already established that the
// orderings differ; the verification path never calls it.
func FindDifferences(ctx context.Context, pool collate.Pool, source collate.CorpusSource, orderingA, orderingB string, limit int) ([]Difference, error) {
	strings, err := source.SortedCorpus(ctx, orderingA)
	if err != nil {
		return nil, err
	}
	if len(strings) == 0 {
		return nil, collate.ErrEmptyCorpus
	}

	sess, err := pool.Session(ctx)
	if err != nil {
		return nil, fmt.Errorf("check: acquire comparator session: %w", err)
	}
	defer sess.Close()

	var differences []Difference
	for i := 0; i < len(strings); i++ {
		for j := i + 1; j < len(strings); j++ {
			select {
			case <-ctx.Done():
				return differences, ctx.Err()
			default:
			}

			s1, s2 := strings[i], strings[j]
			resultA, err := sess.Compare(ctx, s1, s2, orderingA)
			if err != nil {
				return differences, fmt.Errorf("check: compare %q vs %q under %s: %w", s1, s2, orderingA, err)
			}
			resultB, err := sess.Compare(ctx, s1, s2, orderingB)
			if err != nil {
				return differences, fmt.Errorf("check: compare %q vs %q under %s: %w", s1, s2, orderingB, err)
			}

			if resultA != resultB {
				differences = append(differences, Difference{S1: s1, S2: s2, ResultA: resultA, ResultB: resultB})
				if limit > 0 && len(differences) >= limit {
					return differences, nil
				}
			}
		}
	}
	return differences, nil
}
