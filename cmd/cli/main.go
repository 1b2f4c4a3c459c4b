// Package main provides the revsearch CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/revsearch/internal/config"
	"github.com/himanishpuri/revsearch/pkg/logger"
	"github.com/himanishpuri/revsearch/pkg/revsearch"
)

// Version is set at build time via ldflags
var Version = "dev"

// Global flags
var (
	humanOutput bool
	configPath  string
	storeKind   string
	corpusDir   string
	workers     int
	logLevel    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "revsearch",
	Short: "Reverse audio search over Chromaprint fingerprints",
	Long: `revsearch identifies short audio clips by comparing their Chromaprint
fingerprints with a corpus of stored fingerprint records.

The corpus lives in a directory of .bin files by default; SQLite, MinIO and S3
stores are selected with --store or revsearch.yaml.
All commands output JSON by default. Use --human for readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	flags.StringVar(&configPath, "config", "", "Path to revsearch.yaml")
	flags.StringVar(&storeKind, "store", "", "Corpus store: dir, sqlite, minio or s3")
	flags.StringVar(&corpusDir, "corpus", "", "Directory of fingerprint records (dir store)")
	flags.IntVar(&workers, "workers", 0, "Scan workers (-1 for every CPU)")
	flags.StringVar(&logLevel, "log-level", "", "Log level written to stderr (default warn)")
	rootCmd.Version = Version
}

// mustLoadConfig loads configuration and applies the global flags, exits on error.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if storeKind != "" {
		cfg.Corpus.Store = storeKind
	}
	if corpusDir != "" {
		cfg.Corpus.Dir = corpusDir
	}
	if workers != 0 {
		cfg.Match.Workers = workers
	}
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "invalid configuration: %v", err)
	}

	level := logger.WARN
	if logLevel != "" {
		if level, err = logger.ParseLevel(logLevel); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
	}
	logger.SetLevel(level)
	return cfg
}

// mustOpenService builds the service for the configured store, exits on error.
// The caller is responsible for calling Close() on the returned service.
func mustOpenService(ctx context.Context) revsearch.Service {
	cfg := mustLoadConfig()
	svc, err := cfg.NewService(ctx, logger.GetLogger())
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}
	return svc
}

// commandContext is canceled on Ctrl-C.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
