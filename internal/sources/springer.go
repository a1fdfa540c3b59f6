package sources

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/jmallone/multilit/internal/config"
	"github.com/jmallone/multilit/internal/fetch"
	"github.com/jmallone/multilit/internal/record"
)

// DefaultSpringerURL is the Springer Open Access JSON endpoint.
const DefaultSpringerURL = "https://api.springernature.com/openaccess/json"

// Springer queries the Springer Nature Open Access API. It is the only
// source requiring a credential; a missing key is a configuration
// error raised before any request.
type Springer struct {
	client  *fetch.Client
	cfg     *config.Config
	BaseURL string
}

// NewSpringer creates the Springer adapter. A config without the key is
// allowed at construction; calls will fail with
// config.ErrSpringerKeyMissing.
func NewSpringer(client *fetch.Client, cfg *config.Config) *Springer {
	return &Springer{
		client:  client,
		cfg:     cfg,
		BaseURL: DefaultSpringerURL,
	}
}

func (s *Springer) Name() string { return SelectorSpringer }

func (s *Springer) fetch(ctx context.Context, query string) ([]byte, error) {
	key, err := s.cfg.RequireSpringerKey()
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("p", strconv.Itoa(PageSize))
	params.Set("api_key", key)
	return s.client.Get(ctx, s.BaseURL, params, nil)
}

// Raw returns the provider JSON untouched.
func (s *Springer) Raw(ctx context.Context, query string) (any, error) {
	body, err := s.fetch(ctx, query)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

type springerResponse struct {
	Records []springerRecord `json:"records"`
}

type springerRecord struct {
	Title           string        `json:"title"`
	DOI             string        `json:"doi"`
	PublicationName string        `json:"publicationName"`
	PublicationDate string        `json:"publicationDate"`
	OnlineDate      string        `json:"onlineDate"`
	OpenAccess      string        `json:"openAccess"`
	URL             []springerURL `json:"url"`
}

type springerURL struct {
	Format string `json:"format"`
	Value  string `json:"value"`
}

// Compact maps Springer records to the canonical shape. The landing URL
// is the first entry of the record's url list; the date falls back from
// publicationDate to onlineDate.
func (s *Springer) Compact(ctx context.Context, query string) ([]record.Record, error) {
	body, err := s.fetch(ctx, query)
	if err != nil {
		return nil, err
	}
	var resp springerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	out := make([]record.Record, 0, len(resp.Records))
	for _, r := range resp.Records {
		var landing string
		if len(r.URL) > 0 {
			landing = r.URL[0].Value
		}
		date := r.PublicationDate
		if date == "" {
			date = r.OnlineDate
		}
		out = append(out, record.Record{
			Title:      r.Title,
			DOI:        record.NormalizeDOI(r.DOI),
			URL:        landing,
			Journal:    r.PublicationName,
			Date:       date,
			OpenAccess: r.OpenAccess,
			Source:     record.SourceSpringer,
		})
	}
	return out, nil
}
