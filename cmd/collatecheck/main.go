package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	// Database drivers for the colldb backend.
	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"collatecheck/internal/collate"
	"collatecheck/internal/colldb"
	"collatecheck/internal/config"
	"collatecheck/internal/logutil"
)

// Persistent CLI flags.
var (
	cfgPath string
	verbose bool
	quiet   bool
)

// version is set by goreleaser at build time.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "collatecheck",
	Short:         "Verify that two collations induce the same total order",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (default: ./collatecheck.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "log errors only")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	return logutil.New(os.Stderr, logutil.Level(verbose, quiet))
}

// backends wires the comparator pool and corpus source from configuration.
// When the secondary database matches the primary, a single backend serves
// both orderings; otherwise each ordering is routed to its own server, with
// the corpus always fetched from the primary.
type backends struct {
	pool   collate.Pool
	corpus collate.CorpusSource
	close  func()
}

func openBackends(cfg *config.Config, first, second string, logger *slog.Logger) (*backends, error) {
	primary, err := colldb.Open(cfg.Primary.Driver, cfg.Primary.DSN(), logger)
	if err != nil {
		return nil, err
	}

	if cfg.Secondary.DSN() == cfg.Primary.DSN() && cfg.Secondary.Driver == cfg.Primary.Driver {
		return &backends{
			pool:   primary,
			corpus: primary,
			close:  func() { primary.Close() },
		}, nil
	}

	secondary, err := colldb.Open(cfg.Secondary.Driver, cfg.Secondary.DSN(), logger)
	if err != nil {
		primary.Close()
		return nil, err
	}

	routed := collate.NewRoutedPool()
	routed.Route(first, primary)
	routed.Route(second, secondary)
	return &backends{
		pool:   routed,
		corpus: primary,
		close: func() {
			primary.Close()
			secondary.Close()
		},
	}, nil
}
