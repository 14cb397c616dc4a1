// Package export writes machine-readable reports of check verdicts.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"collatecheck/internal/collate"
)

// Report is the top-level JSON report for one check run.
type Report struct {
	OrderingA   string             `json:"orderingA"`
	OrderingB   string             `json:"orderingB"`
	Equivalent  bool               `json:"equivalent"`
	CorpusSize  int                `json:"corpusSize"`
	Pairs       int                `json:"pairs"`
	DurationMS  int64              `json:"durationMs"`
	CheckedAt   string             `json:"checkedAt"`
	Discrepancy *DiscrepancyExport `json:"discrepancy,omitempty"`
}

// DiscrepancyExport renders the offending pair with hex code points, so
// invisible or combining characters survive the trip through a report.
type DiscrepancyExport struct {
	Index        int                `json:"index"`
	Reason       string             `json:"reason"`
	S1           string             `json:"s1"`
	S1CodePoints []string           `json:"s1CodePoints"`
	S2           string             `json:"s2"`
	S2CodePoints []string           `json:"s2CodePoints"`
	ResultA      collate.PairResult `json:"resultA"`
	ResultB      collate.PairResult `json:"resultB"`
}

// NewReport builds a Report from a verdict and its timing.
func NewReport(v *collate.Verdict, elapsed time.Duration) *Report {
	r := &Report{
		OrderingA:  v.OrderingA,
		OrderingB:  v.OrderingB,
		Equivalent: v.Equivalent,
		CorpusSize: v.CorpusSize,
		Pairs:      v.Pairs,
		DurationMS: elapsed.Milliseconds(),
		CheckedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if d := v.Discrepancy; d != nil {
		r.Discrepancy = &DiscrepancyExport{
			Index:        d.Index,
			Reason:       string(d.Reason),
			S1:           d.S1,
			S1CodePoints: collate.CodePoints(d.S1),
			S2:           d.S2,
			S2CodePoints: collate.CodePoints(d.S2),
			ResultA:      d.ResultA,
			ResultB:      d.ResultB,
		}
	}
	return r
}

// WriteReport writes the report as indented JSON to path.
func WriteReport(path string, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("export: marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("export: write report: %w", err)
	}
	return nil
}
