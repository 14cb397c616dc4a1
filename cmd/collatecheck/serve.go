package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"collatecheck/internal/colldb"
	"collatecheck/internal/compareapi"
	"collatecheck/internal/config"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the primary database as an HTTP comparator service",
	Long: `Serve the comparator and corpus endpoints over HTTP, so a checker on
another machine can verify collations hosted by this server's database.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8642", "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	backend, err := colldb.Open(cfg.Primary.Driver, cfg.Primary.DSN(), logger)
	if err != nil {
		return err
	}
	defer backend.Close()
	if err := backend.Ping(ctx); err != nil {
		return err
	}

	server := compareapi.NewServer(backend, backend, logger)
	if err := server.Start(ctx, serveAddr); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Stop(shutdownCtx)
}
