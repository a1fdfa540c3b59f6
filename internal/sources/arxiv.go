package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jmallone/multilit/internal/fetch"
	"github.com/jmallone/multilit/internal/record"
)

// DefaultArXivURL is the arXiv Atom query endpoint. Requests may be
// redirected; the fetch client follows redirects.
const DefaultArXivURL = "https://export.arxiv.org/api/query"

// arXiv asks API consumers to identify themselves.
const arxivUserAgent = "multi-sg/0.1 (mailto:you@example.com)"

// ArXiv queries the arXiv Atom API. No credential required.
type ArXiv struct {
	client  *fetch.Client
	BaseURL string
}

func NewArXiv(client *fetch.Client) *ArXiv {
	return &ArXiv{client: client, BaseURL: DefaultArXivURL}
}

func (a *ArXiv) Name() string { return SelectorArXiv }

func (a *ArXiv) fetch(ctx context.Context, query string) ([]byte, error) {
	params := url.Values{}
	params.Set("search_query", "all:"+query)
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(PageSize))
	headers := http.Header{}
	headers.Set("User-Agent", arxivUserAgent)
	headers.Set("Accept", "application/atom+xml")
	return a.client.Get(ctx, a.BaseURL, params, headers)
}

// Raw returns the Atom document wrapped for JSON transport.
func (a *ArXiv) Raw(ctx context.Context, query string) (any, error) {
	body, err := a.fetch(ctx, query)
	if err != nil {
		return nil, err
	}
	return XMLPayload{XML: string(body)}, nil
}

// Atom feed structures, namespace-qualified. The arXiv-specific fields
// (doi, journal_ref) live in their own namespace.
type atomFeed struct {
	Entries []atomEntry `xml:"http://www.w3.org/2005/Atom entry"`
}

type atomEntry struct {
	ID         string     `xml:"http://www.w3.org/2005/Atom id"`
	Title      string     `xml:"http://www.w3.org/2005/Atom title"`
	Published  string     `xml:"http://www.w3.org/2005/Atom published"`
	DOI        string     `xml:"http://arxiv.org/schemas/atom doi"`
	JournalRef string     `xml:"http://arxiv.org/schemas/atom journal_ref"`
	Links      []atomLink `xml:"http://www.w3.org/2005/Atom link"`
}

type atomLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

// Loose mirrors of the Atom structures with bare tag names. encoding/xml
// matches bare names in any namespace, so these pick up entries from
// feeds served without the expected namespace declarations.
type looseFeed struct {
	Entries []looseEntry `xml:"entry"`
}

type looseEntry struct {
	ID         string     `xml:"id"`
	Title      string     `xml:"title"`
	Published  string     `xml:"published"`
	DOI        string     `xml:"doi"`
	JournalRef string     `xml:"journal_ref"`
	Links      []atomLink `xml:"link"`
}

// parseEntries is a two-tier lookup: the namespace-qualified decode is
// authoritative; when it finds no entries the document is re-decoded
// with bare tag names as a defense against unprefixed feeds.
func parseEntries(body []byte) ([]atomEntry, error) {
	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parsing atom feed: %w", err)
	}
	if len(feed.Entries) > 0 {
		return feed.Entries, nil
	}

	var loose looseFeed
	if err := xml.Unmarshal(body, &loose); err != nil {
		return nil, fmt.Errorf("parsing atom feed: %w", err)
	}
	entries := make([]atomEntry, len(loose.Entries))
	for i, e := range loose.Entries {
		entries[i] = atomEntry(e)
	}
	return entries, nil
}

// entryURL prefers the link whose rel is "alternate", falling back to
// the entry's Atom id.
func entryURL(e atomEntry) string {
	for _, l := range e.Links {
		if l.Rel == "alternate" {
			return l.Href
		}
	}
	return strings.TrimSpace(e.ID)
}

// Compact maps Atom entries to the canonical shape.
func (a *ArXiv) Compact(ctx context.Context, query string) ([]record.Record, error) {
	body, err := a.fetch(ctx, query)
	if err != nil {
		return nil, err
	}
	entries, err := parseEntries(body)
	if err != nil {
		return nil, err
	}

	out := make([]record.Record, 0, len(entries))
	for _, e := range entries {
		out = append(out, record.Record{
			Title:   strings.TrimSpace(e.Title),
			DOI:     record.NormalizeDOI(e.DOI),
			URL:     entryURL(e),
			Journal: strings.TrimSpace(e.JournalRef),
			Date:    strings.TrimSpace(e.Published),
			Source:  record.SourceArXiv,
		})
	}
	return out, nil
}
