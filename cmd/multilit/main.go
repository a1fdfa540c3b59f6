// Package main provides the multilit CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmallone/multilit/internal/aggregate"
	"github.com/jmallone/multilit/internal/config"
	"github.com/jmallone/multilit/internal/fetch"
	"github.com/jmallone/multilit/internal/sources"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "multilit",
	Short: "Multi-source literature search CLI",
	Long: `multilit queries six scholarly metadata providers and merges the
results into one canonical record list.

Sources: Springer Open Access, Crossref, DOAJ, OpenAlex, arXiv, PubMed.
Cross-source duplicates are resolved by DOI, then by URL.

Springer requires SPRINGER_API_KEY (environment, .env, or the global
config file); the other five sources need no credential.

All commands output JSON by default for AI agent integration.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// newRegistry builds the source registry over a shared HTTP client.
func newRegistry(cfg *config.Config, policy aggregate.Policy) *aggregate.Registry {
	client := fetch.NewClient()
	return aggregate.New(sources.Defaults(client, cfg), policy)
}
