package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jmallone/multilit/internal/fetch"
	"github.com/jmallone/multilit/internal/record"
)

// NCBI E-utilities endpoints: esearch resolves a query to PMIDs,
// efetch resolves PMIDs to article XML.
const (
	DefaultPubMedSearchURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	DefaultPubMedFetchURL  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
)

// pubmedArticleURL is the landing-page template keyed by PMID.
const pubmedArticleURL = "https://pubmed.ncbi.nlm.nih.gov/%s/"

// PubMed queries NCBI's E-utilities with the two-step esearch/efetch
// flow. No credential required.
type PubMed struct {
	client    *fetch.Client
	SearchURL string
	FetchURL  string
}

func NewPubMed(client *fetch.Client) *PubMed {
	return &PubMed{
		client:    client,
		SearchURL: DefaultPubMedSearchURL,
		FetchURL:  DefaultPubMedFetchURL,
	}
}

func (p *PubMed) Name() string { return SelectorPubMed }

type esearchResponse struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// searchIDs runs the esearch step and returns the matching PMIDs.
func (p *PubMed) searchIDs(ctx context.Context, query string) ([]string, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", query)
	params.Set("retmax", strconv.Itoa(PageSize))
	params.Set("retmode", "json")

	var resp esearchResponse
	if err := p.client.GetJSON(ctx, p.SearchURL, params, nil, &resp); err != nil {
		return nil, err
	}
	return resp.ESearchResult.IDList, nil
}

// fetchArticles runs the efetch step for a batch of PMIDs and returns
// the raw article XML.
func (p *PubMed) fetchArticles(ctx context.Context, ids []string) ([]byte, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("id", strings.Join(ids, ","))
	params.Set("retmode", "xml")
	return p.client.Get(ctx, p.FetchURL, params, nil)
}

// Raw returns the efetch XML wrapped for JSON transport, or the empty
// ID list when the search matched nothing (no efetch call is made).
func (p *PubMed) Raw(ctx context.Context, query string) (any, error) {
	ids, err := p.searchIDs(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return IDPayload{IDs: []string{}}, nil
	}
	body, err := p.fetchArticles(ctx, ids)
	if err != nil {
		return nil, err
	}
	return XMLPayload{XML: string(body)}, nil
}

type pubmedArticleSet struct {
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	MedlineCitation struct {
		PMID    string `xml:"PMID"`
		Article struct {
			// ArticleTitle may embed markup (italics, sub/sup); the
			// flattened text content is wanted.
			Title   flatText `xml:"ArticleTitle"`
			Journal struct {
				Title        string `xml:"Title"`
				JournalIssue struct {
					PubDate struct {
						Year string `xml:"Year"`
					} `xml:"PubDate"`
				} `xml:"JournalIssue"`
			} `xml:"Journal"`
		} `xml:"Article"`
	} `xml:"MedlineCitation"`
	PubmedData struct {
		ArticleIDs []pubmedArticleID `xml:"ArticleIdList>ArticleId"`
	} `xml:"PubmedData"`
}

type pubmedArticleID struct {
	IDType string `xml:"IdType,attr"`
	Value  string `xml:",chardata"`
}

// flatText collects the text content of an element subtree, dropping
// any embedded element markup.
type flatText struct {
	Text string
}

func (f *flatText) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var sb strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			sb.Write(t)
		}
	}
	f.Text = strings.TrimSpace(sb.String())
	return nil
}

// Compact runs the two-step flow and maps each PubmedArticle to the
// canonical shape. An empty ID search yields an empty list with no
// second call. The DOI scan stops at the first doi-typed ArticleId;
// the year comes only from JournalIssue/PubDate/Year, with no fallback
// to MedlineDate or month/day forms.
func (p *PubMed) Compact(ctx context.Context, query string) ([]record.Record, error) {
	ids, err := p.searchIDs(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []record.Record{}, nil
	}

	body, err := p.fetchArticles(ctx, ids)
	if err != nil {
		return nil, err
	}

	var set pubmedArticleSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("parsing pubmed XML: %w", err)
	}

	out := make([]record.Record, 0, len(set.Articles))
	for _, art := range set.Articles {
		var doi string
		for _, aid := range art.PubmedData.ArticleIDs {
			if aid.IDType == "doi" {
				doi = aid.Value
				break
			}
		}

		var landing string
		if pmid := strings.TrimSpace(art.MedlineCitation.PMID); pmid != "" {
			landing = fmt.Sprintf(pubmedArticleURL, pmid)
		}

		out = append(out, record.Record{
			Title:   art.MedlineCitation.Article.Title.Text,
			DOI:     record.NormalizeDOI(doi),
			URL:     landing,
			Journal: art.MedlineCitation.Article.Journal.Title,
			Date:    art.MedlineCitation.Article.Journal.JournalIssue.PubDate.Year,
			Source:  record.SourcePubMed,
		})
	}
	return out, nil
}
