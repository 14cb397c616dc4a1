package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"collatecheck/internal/check"
	"collatecheck/internal/collate"
	"collatecheck/internal/config"
	"collatecheck/internal/export"
	"collatecheck/internal/results"
)

var (
	validateFirst   string
	validateSecond  string
	validateWorkers int
	validateOutput  string
	validateRecord  bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check whether two collations are equivalent",
	Long: `Check whether two collations produce the same total ordering over the
test corpus. The corpus is fetched once, sorted by the first collation,
and every adjacent pair is compared under both collations. The first
disagreement is reported with full evidence.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateFirst, "first", "1", "", "reference collation (sorts the corpus)")
	validateCmd.Flags().StringVarP(&validateSecond, "second", "2", "", "collation under test")
	validateCmd.Flags().IntVar(&validateWorkers, "workers", 0, "concurrent comparator sessions (0 = from config)")
	validateCmd.Flags().StringVar(&validateOutput, "output", "", "write a JSON report to this path")
	validateCmd.Flags().BoolVar(&validateRecord, "record", false, "record the verdict in the results database")
	_ = validateCmd.MarkFlagRequired("first")
	_ = validateCmd.MarkFlagRequired("second")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	b, err := openBackends(cfg, validateFirst, validateSecond, logger)
	if err != nil {
		return err
	}
	defer b.close()

	workers := validateWorkers
	if workers <= 0 {
		workers = cfg.Workers
	}

	pr := check.NewProgressReporter()
	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		for ev := range pr.Subscribe() {
			if quiet {
				continue
			}
			// Emits arrive per pair; only repaint every so often.
			if ev.Done%10000 == 0 || ev.Done == ev.Total {
				fmt.Fprintf(os.Stderr, "\r%s", check.FormatProgress(ev))
			}
		}
		if !quiet {
			fmt.Fprintln(os.Stderr)
		}
	}()

	checker := check.New(b.pool, b.corpus,
		check.WithWorkers(workers),
		check.WithProgress(pr.Emit),
		check.WithLogger(logger),
	)

	start := time.Now()
	verdict, err := checker.Run(ctx, validateFirst, validateSecond)
	elapsed := time.Since(start)
	pr.Close()
	<-progressDone
	if err != nil {
		return err
	}

	printVerdict(verdict, elapsed)

	if validateRecord {
		store, err := results.OpenStore(cfg.ResultsPath, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Record(ctx, verdict, elapsed); err != nil {
			return err
		}
	}

	if validateOutput != "" {
		if err := export.WriteReport(validateOutput, export.NewReport(verdict, elapsed)); err != nil {
			return err
		}
		logger.Info("report written", "path", validateOutput)
	}
	return nil
}

func printVerdict(v *collate.Verdict, elapsed time.Duration) {
	if v.Equivalent {
		fmt.Printf("Collations %s and %s are equivalent (%d strings, %d pairs, %s)\n",
			v.OrderingA, v.OrderingB, v.CorpusSize, v.Pairs, elapsed.Round(time.Millisecond))
		return
	}

	d := v.Discrepancy
	fmt.Printf("Collations %s and %s are NOT equivalent: %s\n", v.OrderingA, v.OrderingB, d.Reason)
	fmt.Printf("  at index %d of the corpus sorted by %s\n", d.Index, v.OrderingA)
	fmt.Printf("  string 1: %q [%s]\n", d.S1, strings.Join(collate.CodePoints(d.S1), " "))
	fmt.Printf("  string 2: %q [%s]\n", d.S2, strings.Join(collate.CodePoints(d.S2), " "))
	fmt.Printf("  %s: %s\n", v.OrderingA, d.ResultA)
	fmt.Printf("  %s: %s\n", v.OrderingB, d.ResultB)
}
