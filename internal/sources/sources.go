// Package sources implements the per-provider adapters that translate
// heterogeneous literature-API responses into canonical records.
//
// Each adapter exposes two views of a query: Raw, the provider-native
// payload (JSON passed through untouched, XML wrapped for JSON
// transport), and Compact, the canonical record list of the record
// package.
package sources

import (
	"context"

	"github.com/jmallone/multilit/internal/config"
	"github.com/jmallone/multilit/internal/fetch"
	"github.com/jmallone/multilit/internal/record"
)

// PageSize is the fixed per-provider result cap. PubMed's detail fetch
// covers every ID its search returns, which is itself capped at
// PageSize.
const PageSize = 5

// Selector tokens accepted by the dispatch surface. Springer's token
// differs from its record source tag (springer_openaccess).
const (
	SelectorSpringer = "springer"
	SelectorCrossref = "crossref"
	SelectorDOAJ     = "doaj"
	SelectorOpenAlex = "openalex"
	SelectorArXiv    = "arxiv"
	SelectorPubMed   = "pubmed"
)

// Source is implemented by every provider adapter.
type Source interface {
	// Name returns the source's selector token.
	Name() string

	// Raw returns the provider-native payload for a query. The result
	// is JSON-marshalable: json.RawMessage for JSON providers,
	// XMLPayload or IDPayload for the XML-speaking ones.
	Raw(ctx context.Context, query string) (any, error)

	// Compact returns the canonical records for a query.
	Compact(ctx context.Context, query string) ([]record.Record, error)
}

// XMLPayload wraps a provider's XML body for JSON transport.
type XMLPayload struct {
	XML string `json:"xml"`
}

// IDPayload is the raw-mode short-circuit result for a PubMed ID search
// that matched nothing.
type IDPayload struct {
	IDs []string `json:"ids"`
}

// Defaults returns the six source adapters in canonical fan-out order:
// springer, crossref, doaj, openalex, arxiv, pubmed. The order is part
// of the output contract (it decides which duplicate survives), not an
// accident of construction.
func Defaults(client *fetch.Client, cfg *config.Config) []Source {
	return []Source{
		NewSpringer(client, cfg),
		NewCrossref(client),
		NewDOAJ(client),
		NewOpenAlex(client),
		NewArXiv(client),
		NewPubMed(client),
	}
}
