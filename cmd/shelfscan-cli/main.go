package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/use-agent/shelfscan/config"
	"github.com/use-agent/shelfscan/scraper"
)

var version = "dev"

var (
	searchFormat   string
	describeFormat string
	outputFile     string
	maxPages       int
	showUI         bool
	verbose        bool
)

// engine is what the subcommands drive; tests swap in a fake.
type engine interface {
	searchEngine
	describeEngine
}

var newEngine = func(cfg *config.Config) engine {
	return scraper.NewScraper(cfg.Browser, cfg.Scraper)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "shelfscan-cli",
		Short:   "Search a store's product listings and read product descriptions",
		Version: version,
		Long: `shelfscan-cli drives a headless Chromium against the configured store
(SHELFSCAN_ORIGIN) and prints products or descriptions to stdout.
Diagnostics go to stderr.`,
		Example: `  # First two result pages as JSON
  shelfscan-cli search "wireless mouse" --pages 2

  # Export a search as CSV
  shelfscan-cli search "usb c hub" -f csv -o hubs.csv

  # Read a product description as markdown
  shelfscan-cli describe https://www.amazon.in/dp/B0EXAMPLE -f markdown`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logCfg := config.Load().Log
			logCfg.Format = "text"
			if verbose {
				logCfg.Level = "debug"
			}
			slog.SetDefault(logCfg.NewLogger(cmd.ErrOrStderr()))
		},
	}

	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "Write output to a file instead of stdout")
	rootCmd.PersistentFlags().BoolVar(&showUI, "showui", false, "Show the browser window (disable headless mode)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log pagination and retry details to stderr")

	rootCmd.AddCommand(newSearchCmd(), newDescribeCmd())
	return rootCmd
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search result pages and print the products found",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOutput(cmd, func(ctx context.Context, eng engine, w io.Writer) error {
				return runSearch(ctx, eng, w, args[0], maxPages, searchFormat)
			})
		},
	}
	cmd.Flags().IntVarP(&maxPages, "pages", "n", 1, "Maximum number of result pages to read")
	cmd.Flags().StringVarP(&searchFormat, "format", "f", "json", "Output format (json, csv, text)")
	return cmd
}

func newDescribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe URL",
		Short: "Print a product page's description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOutput(cmd, func(ctx context.Context, eng engine, w io.Writer) error {
				return runDescribe(ctx, eng, w, args[0], describeFormat)
			})
		},
	}
	cmd.Flags().StringVarP(&describeFormat, "format", "f", "text", "Output format (text, markdown)")
	return cmd
}

// withOutput builds the engine, opens the output destination and runs fn
// with a context canceled on SIGINT/SIGTERM.
func withOutput(cmd *cobra.Command, fn func(ctx context.Context, eng engine, w io.Writer) error) error {
	cfg := config.Load()
	if showUI {
		cfg.Browser.Headless = false
	}

	w := cmd.OutOrStdout()
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return fn(ctx, newEngine(cfg), w)
}
