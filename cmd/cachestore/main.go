package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vango-dev/cachestore/internal/config"
	"github.com/vango-dev/cachestore/internal/errors"
)

// Overridden with -ldflags "-X main.version=..."; see version.go for the
// fallbacks read from the binary's build info.
var (
	version = ""
	commit  = ""
	date    = ""
)

// plainOutput disables ANSI colors and prints errors on a single line.
var plainOutput bool

const banner = `
  ┌─┐┌─┐┌─┐┬ ┬┌─┐┌─┐┌┬┐┌─┐┬─┐┌─┐
  │  ├─┤│  ├─┤├┤ └─┐ │ │ │├┬┘├┤
  └─┘┴ ┴└─┘┴ ┴└─┘└─┘ ┴ └─┘┴└─└─┘
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "cachestore",
		Short: "Observable keyed state for thin screens",
		Long: `cachestore is a keyed, observable value store for Go.

This tool runs the example gallery against the store and serves
a live inspector for the stores it creates:

  • Typed reads and writes under a closed set of keys
  • Scopes that expose a mapped subset of a parent's keys
  • Action stores with a single handler and dispatch middleware
  • Prometheus metrics and OpenTelemetry spans for dispatches`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&plainOutput, "plain", false, "Disable colors and print errors on one line")
	rootCmd.PersistentPreRun = func(*cobra.Command, []string) {
		if plainOutput {
			errors.SetColor(false)
		}
	}
	rootCmd.Version = buildVersion().String()
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	rootCmd.AddCommand(
		codesCmd(),
		galleryCmd(),
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		errors.Print(os.Stderr, err, plainOutput)
		os.Exit(1)
	}
}

// loadConfig reads cachestore.json from the working directory or its
// parents, falling back to defaults. Command-line overrides are applied
// before validation.
func loadConfig(override func(cfg *config.Config)) (*config.Config, error) {
	cfg, err := config.LoadOrDefault()
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// printBanner prints the ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

func paint(sgr, s string) string {
	if plainOutput {
		return s
	}
	return sgr + s + "\033[0m"
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("%s %s\n", paint("\033[32m", "✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", paint("\033[31m", "✗"), fmt.Sprintf(format, args...))
}
