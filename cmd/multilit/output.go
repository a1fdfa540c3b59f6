package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jmallone/multilit/internal/record"
)

// TitleMaxLen caps titles in human-readable listings.
const TitleMaxLen = 70

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SourcesResponse lists the selector tokens a search accepts.
type SourcesResponse struct {
	Sources []string `json:"sources"`
}

// printRecordsHuman prints canonical records in human-readable format.
func printRecordsHuman(recs []record.Record) {
	for i, r := range recs {
		fmt.Printf("%d. %s\n", i+1, truncateString(r.Title, TitleMaxLen))
		if r.Journal != "" || r.Date != "" {
			fmt.Printf("   %s (%s)\n", r.Journal, r.Date)
		}
		if r.DOI != "" {
			fmt.Printf("   doi: %s\n", r.DOI)
		}
		if r.URL != "" {
			fmt.Printf("   %s\n", r.URL)
		}
		fmt.Printf("   [%s]\n\n", r.Source)
	}
	fmt.Printf("%d records\n", len(recs))
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
