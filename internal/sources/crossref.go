package sources

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/jmallone/multilit/internal/fetch"
	"github.com/jmallone/multilit/internal/record"
)

// DefaultCrossrefURL is the Crossref works endpoint.
const DefaultCrossrefURL = "https://api.crossref.org/works"

// Crossref queries the Crossref works API. No credential required.
type Crossref struct {
	client  *fetch.Client
	BaseURL string
}

func NewCrossref(client *fetch.Client) *Crossref {
	return &Crossref{client: client, BaseURL: DefaultCrossrefURL}
}

func (c *Crossref) Name() string { return SelectorCrossref }

func (c *Crossref) fetch(ctx context.Context, query string) ([]byte, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("rows", strconv.Itoa(PageSize))
	return c.client.Get(ctx, c.BaseURL, params, nil)
}

// Raw returns the provider JSON untouched.
func (c *Crossref) Raw(ctx context.Context, query string) (any, error) {
	body, err := c.fetch(ctx, query)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

type crossrefResponse struct {
	Message struct {
		Items []crossrefItem `json:"items"`
	} `json:"message"`
}

type crossrefItem struct {
	Title          []string `json:"title"`
	DOI            string   `json:"DOI"`
	URL            string   `json:"URL"`
	ContainerTitle []string `json:"container-title"`
	Issued         struct {
		// Entries may hold nulls, hence the pointers.
		DateParts [][]*int `json:"date-parts"`
	} `json:"issued"`
}

// issuedDate joins the non-null components of the first date-parts
// entry with "-": [2020,5] -> "2020-5", [2020] -> "2020", empty -> "".
func issuedDate(it crossrefItem) string {
	if len(it.Issued.DateParts) == 0 {
		return ""
	}
	parts := make([]string, 0, len(it.Issued.DateParts[0]))
	for _, p := range it.Issued.DateParts[0] {
		if p != nil {
			parts = append(parts, strconv.Itoa(*p))
		}
	}
	return strings.Join(parts, "-")
}

// Compact maps Crossref items to the canonical shape. Title and journal
// are the first entries of their respective lists.
func (c *Crossref) Compact(ctx context.Context, query string) ([]record.Record, error) {
	body, err := c.fetch(ctx, query)
	if err != nil {
		return nil, err
	}
	var resp crossrefResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	out := make([]record.Record, 0, len(resp.Message.Items))
	for _, it := range resp.Message.Items {
		var title, journal string
		if len(it.Title) > 0 {
			title = it.Title[0]
		}
		if len(it.ContainerTitle) > 0 {
			journal = it.ContainerTitle[0]
		}
		out = append(out, record.Record{
			Title:   title,
			DOI:     record.NormalizeDOI(it.DOI),
			URL:     it.URL,
			Journal: journal,
			Date:    issuedDate(it),
			Source:  record.SourceCrossref,
		})
	}
	return out, nil
}
