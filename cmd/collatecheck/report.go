package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"collatecheck/internal/config"
	"collatecheck/internal/results"
)

var (
	reportLimit int
	reportReset bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "List recorded check runs",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().IntVar(&reportLimit, "limit", 20, "number of runs to show")
	reportCmd.Flags().BoolVar(&reportReset, "reset", false, "clear the results database instead of listing")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := results.OpenStore(cfg.ResultsPath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if reportReset {
		if err := store.Reset(ctx); err != nil {
			return err
		}
		fmt.Println("results database cleared")
		return nil
	}

	records, err := store.List(ctx, reportLimit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}

	for _, r := range records {
		status := "equivalent"
		if !r.Equivalent {
			status = fmt.Sprintf("NOT equivalent (%s at %d: %q vs %q)", r.Reason, r.Index, r.S1, r.S2)
		}
		fmt.Printf("#%d %s  %s vs %s: %s  (%d strings, %d pairs, %s)\n",
			r.ID, r.CreatedAt, r.OrderingA, r.OrderingB, status, r.CorpusSize, r.Pairs, r.Duration)
	}
	return nil
}
