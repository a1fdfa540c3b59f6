package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmallone/multilit/internal/aggregate"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the available source selectors",
	Run:   runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()
	reg := newRegistry(cfg, aggregate.PolicyTolerate)

	names := append(reg.Names(), aggregate.SelectorAll)
	if humanOutput {
		for _, n := range names {
			fmt.Println(n)
		}
		return
	}
	outputJSON(SourcesResponse{Sources: names})
}
