package sources

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/jmallone/multilit/internal/fetch"
	"github.com/jmallone/multilit/internal/record"
)

// DefaultOpenAlexURL is the OpenAlex works endpoint.
const DefaultOpenAlexURL = "https://api.openalex.org/works"

// OpenAlex queries the OpenAlex works API. No credential required.
type OpenAlex struct {
	client  *fetch.Client
	BaseURL string
}

func NewOpenAlex(client *fetch.Client) *OpenAlex {
	return &OpenAlex{client: client, BaseURL: DefaultOpenAlexURL}
}

func (o *OpenAlex) Name() string { return SelectorOpenAlex }

func (o *OpenAlex) fetch(ctx context.Context, query string) ([]byte, error) {
	params := url.Values{}
	params.Set("search", query)
	params.Set("per-page", strconv.Itoa(PageSize))
	return o.client.Get(ctx, o.BaseURL, params, nil)
}

// Raw returns the provider JSON untouched.
func (o *OpenAlex) Raw(ctx context.Context, query string) (any, error) {
	body, err := o.fetch(ctx, query)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

type openAlexResponse struct {
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	Title           string `json:"title"`
	PublicationYear *int   `json:"publication_year"`
	IDs             struct {
		OpenAlex string `json:"openalex"`
		DOI      string `json:"doi"`
	} `json:"ids"`
	PrimaryLocation *struct {
		LandingPageURL string `json:"landing_page_url"`
		PDFURL         string `json:"pdf_url"`
	} `json:"primary_location"`
	HostVenue *struct {
		DisplayName string `json:"display_name"`
	} `json:"host_venue"`
}

// workURL picks the landing URL for a work: primary-location landing
// page, then the OpenAlex self-identifier, then the primary-location
// PDF URL. First non-empty wins.
func workURL(w openAlexWork) string {
	if w.PrimaryLocation != nil && w.PrimaryLocation.LandingPageURL != "" {
		return w.PrimaryLocation.LandingPageURL
	}
	if w.IDs.OpenAlex != "" {
		return w.IDs.OpenAlex
	}
	if w.PrimaryLocation != nil {
		return w.PrimaryLocation.PDFURL
	}
	return ""
}

// Compact maps OpenAlex works to the canonical shape. The integer
// publication year is rendered as text so ordering stays uniform.
func (o *OpenAlex) Compact(ctx context.Context, query string) ([]record.Record, error) {
	body, err := o.fetch(ctx, query)
	if err != nil {
		return nil, err
	}
	var resp openAlexResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	out := make([]record.Record, 0, len(resp.Results))
	for _, w := range resp.Results {
		var journal string
		if w.HostVenue != nil {
			journal = w.HostVenue.DisplayName
		}
		var date string
		if w.PublicationYear != nil {
			date = strconv.Itoa(*w.PublicationYear)
		}
		out = append(out, record.Record{
			Title:   w.Title,
			DOI:     record.NormalizeDOI(w.IDs.DOI),
			URL:     workURL(w),
			Journal: journal,
			Date:    date,
			Source:  record.SourceOpenAlex,
		})
	}
	return out, nil
}
