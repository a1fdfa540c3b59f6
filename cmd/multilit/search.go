package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmallone/multilit/internal/aggregate"
	"github.com/jmallone/multilit/internal/config"
	"github.com/jmallone/multilit/internal/fetch"
	"github.com/jmallone/multilit/internal/sources"
)

var (
	searchSource   string
	searchRaw      bool
	searchFailFast bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search literature sources",
	Long: `Search one source, or all of them with cross-source deduplication.

Examples:
  multilit search "tetracycline resistance"
  multilit search "CRISPR" --source crossref
  multilit search "quantum error correction" --source arxiv --raw
  multilit search "machine learning" --human`,
	Args: cobra.ExactArgs(1),
	Run:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchSource, "source", aggregate.SelectorAll, "Source to query, or 'all'")
	searchCmd.Flags().BoolVar(&searchRaw, "raw", false, "Return the provider-native payload instead of canonical records")
	searchCmd.Flags().BoolVar(&searchFailFast, "fail-fast", false, "Abort on the first source failure instead of tolerating it")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	query := args[0]
	cfg := mustLoadConfig()

	policy := aggregate.PolicyTolerate
	if searchFailFast {
		policy = aggregate.PolicyAbort
	}
	reg := newRegistry(cfg, policy)
	ctx := context.Background()

	if searchRaw {
		runSearchRaw(ctx, reg, query)
		return
	}

	if searchSource == aggregate.SelectorAll {
		recs, failed, err := reg.CompactAll(ctx, query)
		if err != nil {
			exitSearchError(err)
		}
		for _, f := range failed {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", f.Error())
		}
		if humanOutput {
			printRecordsHuman(recs)
		} else {
			outputJSON(recs)
		}
		return
	}

	src, ok := reg.Lookup(searchSource)
	if !ok {
		exitWithError(ExitError, "unknown source %q", searchSource)
	}
	recs, err := src.Compact(ctx, query)
	if err != nil {
		exitSearchError(err)
	}
	if humanOutput {
		printRecordsHuman(recs)
	} else {
		outputJSON(recs)
	}
}

func runSearchRaw(ctx context.Context, reg *aggregate.Registry, query string) {
	if searchSource == aggregate.SelectorAll {
		out, err := reg.RawAll(ctx, query)
		if err != nil {
			exitSearchError(err)
		}
		outputJSON(out)
		return
	}

	src, ok := reg.Lookup(searchSource)
	if !ok {
		exitWithError(ExitError, "unknown source %q", searchSource)
	}
	out, err := src.Raw(ctx, query)
	if err != nil {
		exitSearchError(err)
	}
	// XML payloads print as bare text in human mode; JSON otherwise.
	if humanOutput {
		if xp, isXML := out.(sources.XMLPayload); isXML {
			fmt.Println(xp.XML)
			return
		}
	}
	outputJSON(out)
}

// exitSearchError maps a search failure to the right exit code.
func exitSearchError(err error) {
	if errors.Is(err, config.ErrSpringerKeyMissing) {
		exitWithError(ExitConfigError, "%v\n\nSet SPRINGER_API_KEY in the environment, a .env file, or %s.",
			err, config.GlobalConfigPath())
		return
	}
	if se, ok := fetch.AsStatusError(err); ok {
		exitWithError(ExitUpstream, "upstream status %d: %s", se.StatusCode, se.Body)
		return
	}
	if errors.Is(err, fetch.ErrNetwork) {
		exitWithError(ExitUpstream, "%v", err)
		return
	}
	exitWithError(ExitError, "%v", err)
}
