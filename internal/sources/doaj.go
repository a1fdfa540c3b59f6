package sources

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/jmallone/multilit/internal/fetch"
	"github.com/jmallone/multilit/internal/record"
)

// DefaultDOAJURL is the DOAJ article-search endpoint; the query is
// embedded in the path, not passed as a parameter.
const DefaultDOAJURL = "https://doaj.org/api/v2/search/articles"

// DOAJ queries the Directory of Open Access Journals. No credential
// required.
type DOAJ struct {
	client  *fetch.Client
	BaseURL string
}

func NewDOAJ(client *fetch.Client) *DOAJ {
	return &DOAJ{client: client, BaseURL: DefaultDOAJURL}
}

func (d *DOAJ) Name() string { return SelectorDOAJ }

func (d *DOAJ) fetch(ctx context.Context, query string) ([]byte, error) {
	params := url.Values{}
	params.Set("pageSize", strconv.Itoa(PageSize))
	return d.client.Get(ctx, d.BaseURL+"/"+url.PathEscape(query), params, nil)
}

// Raw returns the provider JSON untouched.
func (d *DOAJ) Raw(ctx context.Context, query string) (any, error) {
	body, err := d.fetch(ctx, query)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

type doajResponse struct {
	Results []doajHit `json:"results"`
}

type doajHit struct {
	BibJSON doajBibJSON `json:"bibjson"`
}

type doajBibJSON struct {
	Title   string `json:"title"`
	Year    string `json:"year"`
	Journal struct {
		Title string `json:"title"`
	} `json:"journal"`
	Identifier []doajIdentifier `json:"identifier"`
	Link       []doajLink       `json:"link"`
}

type doajIdentifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type doajLink struct {
	URL string `json:"url"`
}

// Compact maps DOAJ hits to the canonical shape. The DOI scan does not
// break early, so when an identifier list carries several doi-typed
// entries the last one wins; PubMed makes the opposite choice. Both
// follow their provider's observed behavior.
func (d *DOAJ) Compact(ctx context.Context, query string) ([]record.Record, error) {
	body, err := d.fetch(ctx, query)
	if err != nil {
		return nil, err
	}
	var resp doajResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	out := make([]record.Record, 0, len(resp.Results))
	for _, h := range resp.Results {
		bib := h.BibJSON

		var doi string
		for _, idn := range bib.Identifier {
			if idn.Type == "doi" {
				doi = idn.ID
			}
		}

		var landing string
		if len(bib.Link) > 0 {
			landing = bib.Link[0].URL
		}

		out = append(out, record.Record{
			Title:   bib.Title,
			DOI:     record.NormalizeDOI(doi),
			URL:     landing,
			Journal: bib.Journal.Title,
			Date:    bib.Year,
			Source:  record.SourceDOAJ,
		})
	}
	return out, nil
}
