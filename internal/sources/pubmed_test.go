package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jmallone/multilit/internal/fetch"
	"github.com/jmallone/multilit/internal/record"
)

const pubmedFetchBody = `<?xml version="1.0" ?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation>
      <PMID Version="1">31452104</PMID>
      <Article>
        <Journal>
          <JournalIssue>
            <PubDate>
              <Year>2019</Year>
              <Month>Aug</Month>
            </PubDate>
          </JournalIssue>
          <Title>Antimicrobial Agents and Chemotherapy</Title>
        </Journal>
        <ArticleTitle>Uptake of <i>tetracycline</i> by E. coli under stress</ArticleTitle>
      </Article>
    </MedlineCitation>
    <PubmedData>
      <ArticleIdList>
        <ArticleId IdType="pubmed">31452104</ArticleId>
        <ArticleId IdType="doi">10.1128/AAC.00001-19</ArticleId>
        <ArticleId IdType="doi">10.1128/AAC.should-not-win</ArticleId>
      </ArticleIdList>
    </PubmedData>
  </PubmedArticle>
  <PubmedArticle>
    <MedlineCitation>
      <Article>
        <Journal>
          <JournalIssue>
            <PubDate>
              <MedlineDate>2001 Jan-Feb</MedlineDate>
            </PubDate>
          </JournalIssue>
          <Title>Journal Without Year Element</Title>
        </Journal>
        <ArticleTitle>Plain title</ArticleTitle>
      </Article>
    </MedlineCitation>
    <PubmedData>
      <ArticleIdList>
        <ArticleId IdType="pubmed">123</ArticleId>
      </ArticleIdList>
    </PubmedData>
  </PubmedArticle>
</PubmedArticleSet>`

func newPubMedTestServer(t *testing.T, idlist string, efetchCalls *int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/esearch", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("db") != "pubmed" || r.URL.Query().Get("retmode") != "json" {
			t.Errorf("esearch params = %v", r.URL.Query())
		}
		w.Write([]byte(`{"esearchresult":{"idlist":` + idlist + `}}`))
	})
	mux.HandleFunc("/efetch", func(w http.ResponseWriter, r *http.Request) {
		*efetchCalls++
		if got := r.URL.Query().Get("id"); got != "31452104,123" {
			t.Errorf("efetch id = %q, want comma-joined ids", got)
		}
		w.Write([]byte(pubmedFetchBody))
	})
	return httptest.NewServer(mux)
}

func newPubMedAdapter(srv *httptest.Server) *PubMed {
	p := NewPubMed(fetch.NewClient())
	p.SearchURL = srv.URL + "/esearch"
	p.FetchURL = srv.URL + "/efetch"
	return p
}

func TestPubMed_Compact(t *testing.T) {
	efetchCalls := 0
	srv := newPubMedTestServer(t, `["31452104","123"]`, &efetchCalls)
	defer srv.Close()

	p := newPubMedAdapter(srv)
	recs, err := p.Compact(context.Background(), "tetracycline")
	if err != nil {
		t.Fatalf("Compact: %v", err)
	}
	if efetchCalls != 1 {
		t.Errorf("efetch called %d times, want 1", efetchCalls)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}

	first := recs[0]
	if first.Title != "Uptake of tetracycline by E. coli under stress" {
		t.Errorf("Title = %q, want flattened markup", first.Title)
	}
	// The DOI scan stops at the first doi-typed id.
	if first.DOI != "10.1128/aac.00001-19" {
		t.Errorf("DOI = %q, want first doi-typed identifier (canonical)", first.DOI)
	}
	if first.URL != "https://pubmed.ncbi.nlm.nih.gov/31452104/" {
		t.Errorf("URL = %q, want PMID landing page", first.URL)
	}
	if first.Journal != "Antimicrobial Agents and Chemotherapy" {
		t.Errorf("Journal = %q", first.Journal)
	}
	if first.Date != "2019" {
		t.Errorf("Date = %q, want Year only", first.Date)
	}
	if first.Source != record.SourcePubMed {
		t.Errorf("Source = %q", first.Source)
	}

	second := recs[1]
	if second.Date != "" {
		t.Errorf("Date = %q, want empty (no fallback to MedlineDate)", second.Date)
	}
	if second.URL != "" {
		t.Errorf("URL = %q, want empty without PMID", second.URL)
	}
	if second.DOI != "" {
		t.Errorf("DOI = %q, want empty", second.DOI)
	}
}

func TestPubMed_EmptySearchSkipsEfetch(t *testing.T) {
	efetchCalls := 0
	srv := newPubMedTestServer(t, `[]`, &efetchCalls)
	defer srv.Close()

	p := newPubMedAdapter(srv)

	recs, err := p.Compact(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("Compact: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("got %d records, want 0", len(recs))
	}
	if efetchCalls != 0 {
		t.Errorf("efetch called %d times, want 0", efetchCalls)
	}

	raw, err := p.Raw(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("Raw: %v", err)
	}
	ids, ok := raw.(IDPayload)
	if !ok {
		t.Fatalf("raw is %T, want IDPayload", raw)
	}
	if len(ids.IDs) != 0 {
		t.Errorf("IDs = %v, want empty", ids.IDs)
	}
	if efetchCalls != 0 {
		t.Errorf("efetch called %d times after Raw, want 0", efetchCalls)
	}
}

func TestPubMed_RawWrapsXML(t *testing.T) {
	efetchCalls := 0
	srv := newPubMedTestServer(t, `["31452104","123"]`, &efetchCalls)
	defer srv.Close()

	p := newPubMedAdapter(srv)
	raw, err := p.Raw(context.Background(), "tetracycline")
	if err != nil {
		t.Fatalf("Raw: %v", err)
	}
	payload, ok := raw.(XMLPayload)
	if !ok {
		t.Fatalf("raw is %T, want XMLPayload", raw)
	}
	if !strings.Contains(payload.XML, "<PubmedArticleSet>") {
		t.Error("XML body not preserved")
	}
}
