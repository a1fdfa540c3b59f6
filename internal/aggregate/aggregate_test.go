package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jmallone/multilit/internal/config"
	"github.com/jmallone/multilit/internal/record"
	"github.com/jmallone/multilit/internal/sources"
)

// fakeSource is a canned Source for registry tests.
type fakeSource struct {
	name    string
	raw     any
	recs    []record.Record
	err     error
	rawErr  error
	queries []string
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Raw(ctx context.Context, query string) (any, error) {
	f.queries = append(f.queries, query)
	if f.rawErr != nil {
		return nil, f.rawErr
	}
	return f.raw, nil
}

func (f *fakeSource) Compact(ctx context.Context, query string) ([]record.Record, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.recs, nil
}

func TestRegistry_NamesAndLookup(t *testing.T) {
	reg := New([]sources.Source{
		&fakeSource{name: sources.SelectorSpringer},
		&fakeSource{name: sources.SelectorCrossref},
	}, PolicyTolerate)

	names := reg.Names()
	if len(names) != 2 || names[0] != "springer" || names[1] != "crossref" {
		t.Errorf("Names() = %v, want [springer crossref]", names)
	}

	if _, ok := reg.Lookup("crossref"); !ok {
		t.Error("Lookup(crossref) not found")
	}
	if _, ok := reg.Lookup("scopus"); ok {
		t.Error("Lookup(scopus) unexpectedly found")
	}
}

func TestCompactAll_DedupesAcrossSourcesInOrder(t *testing.T) {
	springer := &fakeSource{name: sources.SelectorSpringer, recs: []record.Record{
		{Title: "Tetracycline resistance in soil", DOI: "10.1/tetra", Date: "2021", Source: record.SourceSpringer},
		{Title: "Efflux pumps", DOI: "10.1/efflux", Date: "2019", Source: record.SourceSpringer},
	}}
	// Crossref returns the same first work; springer's copy must survive.
	crossref := &fakeSource{name: sources.SelectorCrossref, recs: []record.Record{
		{Title: "Tetracycline resistance in soil", DOI: "10.1/tetra", Date: "2021-3-15", Source: record.SourceCrossref},
	}}
	arxiv := &fakeSource{name: sources.SelectorArXiv, recs: []record.Record{
		{Title: "Preprint, no doi", URL: "https://arxiv.org/abs/2101.00001", Date: "2021-01-04T00:00:00Z", Source: record.SourceArXiv},
	}}

	reg := New([]sources.Source{springer, crossref, arxiv}, PolicyTolerate)
	got, failed, err := reg.CompactAll(context.Background(), "tetracycline")
	if err != nil {
		t.Fatalf("CompactAll: %v", err)
	}
	if len(failed) != 0 {
		t.Fatalf("failed = %v, want none", failed)
	}
	if len(got) != 3 {
		t.Fatalf("got %d records, want 3: %+v", len(got), got)
	}

	// DOI-bearing records first, date text ascending.
	if got[0].DOI != "10.1/efflux" || got[1].DOI != "10.1/tetra" {
		t.Errorf("doi group order = [%s %s], want [10.1/efflux 10.1/tetra]", got[0].DOI, got[1].DOI)
	}
	if got[1].Source != record.SourceSpringer {
		t.Errorf("duplicate survivor source = %s, want %s", got[1].Source, record.SourceSpringer)
	}
	if got[2].Source != record.SourceArXiv {
		t.Errorf("last record source = %s, want doi-less arxiv record", got[2].Source)
	}
}

func TestCompactAll_TolerateCollectsFailures(t *testing.T) {
	ok := &fakeSource{name: sources.SelectorCrossref, recs: []record.Record{
		{Title: "kept", DOI: "10.1/x", Source: record.SourceCrossref},
	}}
	down := &fakeSource{name: sources.SelectorDOAJ, err: errors.New("upstream 503")}

	reg := New([]sources.Source{ok, down}, PolicyTolerate)
	got, failed, err := reg.CompactAll(context.Background(), "q")
	if err != nil {
		t.Fatalf("CompactAll: %v", err)
	}
	if len(got) != 1 || got[0].Title != "kept" {
		t.Errorf("got %+v, want the healthy source's record", got)
	}
	if len(failed) != 1 || failed[0].Source != "doaj" {
		t.Fatalf("failed = %v, want one doaj entry", failed)
	}
	if failed[0].Error() != "doaj: upstream 503" {
		t.Errorf("failure message = %q", failed[0].Error())
	}
}

func TestCompactAll_AbortStopsAtFirstFailure(t *testing.T) {
	down := &fakeSource{name: sources.SelectorCrossref, err: errors.New("upstream 503")}
	after := &fakeSource{name: sources.SelectorDOAJ}

	reg := New([]sources.Source{down, after}, PolicyAbort)
	_, _, err := reg.CompactAll(context.Background(), "q")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(after.queries) != 0 {
		t.Error("source after the failure was still queried")
	}
}

func TestCompactAll_MissingSpringerKeyAbortsUnderTolerate(t *testing.T) {
	springer := &fakeSource{name: sources.SelectorSpringer, err: config.ErrSpringerKeyMissing}
	after := &fakeSource{name: sources.SelectorCrossref}

	reg := New([]sources.Source{springer, after}, PolicyTolerate)
	_, _, err := reg.CompactAll(context.Background(), "q")
	if !errors.Is(err, config.ErrSpringerKeyMissing) {
		t.Fatalf("err = %v, want ErrSpringerKeyMissing", err)
	}
	if len(after.queries) != 0 {
		t.Error("source after the config failure was still queried")
	}
}

func TestRawAll_Shape(t *testing.T) {
	reg := New([]sources.Source{
		&fakeSource{name: sources.SelectorSpringer, raw: json.RawMessage(`{"records":[]}`)},
		&fakeSource{name: sources.SelectorArXiv, raw: sources.XMLPayload{XML: "<feed/>"}},
		&fakeSource{name: sources.SelectorPubMed, raw: sources.IDPayload{IDs: []string{}}},
	}, PolicyTolerate)

	got, err := reg.RawAll(context.Background(), "q")
	if err != nil {
		t.Fatalf("RawAll: %v", err)
	}

	if _, ok := got["springer"]; !ok {
		t.Error("missing springer key")
	}
	if got["arxiv_xml"] != "<feed/>" {
		t.Errorf("arxiv_xml = %v, want feed text", got["arxiv_xml"])
	}
	// Empty PubMed search produced no XML.
	if v, ok := got["pubmed_xml"]; !ok || v != nil {
		t.Errorf("pubmed_xml = %v (present=%v), want explicit null", v, ok)
	}
}

func TestRawAll_XMLLegDegradesToNull(t *testing.T) {
	reg := New([]sources.Source{
		&fakeSource{name: sources.SelectorArXiv, rawErr: errors.New("timeout")},
	}, PolicyTolerate)

	got, err := reg.RawAll(context.Background(), "q")
	if err != nil {
		t.Fatalf("RawAll: %v", err)
	}
	if v, ok := got["arxiv_xml"]; !ok || v != nil {
		t.Errorf("arxiv_xml = %v (present=%v), want explicit null", v, ok)
	}
}

func TestRawAll_JSONLegAborts(t *testing.T) {
	down := &fakeSource{name: sources.SelectorCrossref, rawErr: errors.New("upstream 500")}
	reg := New([]sources.Source{down}, PolicyTolerate)

	if _, err := reg.RawAll(context.Background(), "q"); err == nil {
		t.Fatal("expected error from failing JSON source")
	}
}
