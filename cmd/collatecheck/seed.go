package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"collatecheck/internal/colldb"
	"collatecheck/internal/config"
	"collatecheck/internal/corpus"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create and fill the corpus tables on the primary database",
	Long: `Create the sample_strings and unicode_characters tables and fill them
with the test corpus: all two-letter Latin permutations, any manifest
extras, and every valid Unicode scalar value. Seeding is idempotent.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	manifest, err := corpus.LoadManifest(cfg.CorpusManifest)
	if err != nil {
		return err
	}
	samples := append(corpus.LatinPairs(), manifest.Strings...)

	backend, err := colldb.Open(cfg.Primary.Driver, cfg.Primary.DSN(), logger)
	if err != nil {
		return err
	}
	defer backend.Close()
	if err := backend.Ping(ctx); err != nil {
		return err
	}

	logger.Info("seeding corpus, this can take a while", "samples", len(samples))
	return backend.SeedCorpus(ctx, samples)
}
