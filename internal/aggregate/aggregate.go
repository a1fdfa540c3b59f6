package aggregate

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmallone/multilit/internal/config"
	"github.com/jmallone/multilit/internal/record"
	"github.com/jmallone/multilit/internal/sources"
)

// SelectorAll is the selector token for querying every source.
const SelectorAll = "all"

// Policy decides how the compact fan-out reacts when one source fails.
type Policy int

const (
	// PolicyTolerate lets a failing source contribute zero records; its
	// error is reported alongside the aggregate. This is the default:
	// the service fronts six independently flaky upstreams.
	PolicyTolerate Policy = iota

	// PolicyAbort fails the whole aggregate on the first source error.
	PolicyAbort
)

// SourceError pairs a failed source with its error in tolerant mode.
type SourceError struct {
	Source string
	Err    error
}

func (e SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

// Registry holds the source adapters in canonical fan-out order and
// the partial-failure policy. The order is part of the output contract:
// it is both the concatenation order and the dedupe survivor order.
type Registry struct {
	sources []sources.Source
	byName  map[string]sources.Source
	policy  Policy
}

// New creates a Registry over the given sources, which must already be
// in fan-out order (see sources.Defaults).
func New(srcs []sources.Source, policy Policy) *Registry {
	byName := make(map[string]sources.Source, len(srcs))
	for _, s := range srcs {
		byName[s.Name()] = s
	}
	return &Registry{sources: srcs, byName: byName, policy: policy}
}

// Names returns the selector tokens in fan-out order, without
// SelectorAll.
func (r *Registry) Names() []string {
	names := make([]string, len(r.sources))
	for i, s := range r.sources {
		names[i] = s.Name()
	}
	return names
}

// Lookup resolves a selector token to its source adapter.
func (r *Registry) Lookup(name string) (sources.Source, bool) {
	s, ok := r.byName[name]
	return s, ok
}

// CompactAll queries every source in order, concatenates the results,
// and returns the deduplicated, sorted aggregate. Under PolicyTolerate
// failed sources are reported in the second return value; under
// PolicyAbort the first failure is returned as an error. A missing
// Springer credential aborts under both policies: it is a
// configuration error the caller can fix, and no request was made.
func (r *Registry) CompactAll(ctx context.Context, query string) ([]record.Record, []SourceError, error) {
	var all []record.Record
	var failed []SourceError

	for _, s := range r.sources {
		recs, err := s.Compact(ctx, query)
		if err != nil {
			if errors.Is(err, config.ErrSpringerKeyMissing) {
				return nil, nil, err
			}
			if r.policy == PolicyAbort {
				return nil, nil, fmt.Errorf("%s: %w", s.Name(), err)
			}
			failed = append(failed, SourceError{Source: s.Name(), Err: err})
			continue
		}
		all = append(all, recs...)
	}

	deduped := Dedupe(all)
	Sort(deduped)
	return deduped, failed, nil
}

// RawAll queries every source in order and assembles the raw-mode
// aggregate map: provider JSON under each JSON source's selector token,
// and the XML text (or null on failure) under "arxiv_xml" and
// "pubmed_xml". JSON-source failures abort; the XML legs degrade to
// null, matching the raw surface's long-standing shape.
func (r *Registry) RawAll(ctx context.Context, query string) (map[string]any, error) {
	out := make(map[string]any, len(r.sources))

	for _, s := range r.sources {
		name := s.Name()
		v, err := s.Raw(ctx, query)

		switch name {
		case sources.SelectorArXiv, sources.SelectorPubMed:
			key := name + "_xml"
			if err != nil {
				out[key] = nil
				continue
			}
			if payload, ok := v.(sources.XMLPayload); ok {
				out[key] = payload.XML
			} else {
				// PubMed ID search matched nothing; no XML exists.
				out[key] = nil
			}
		default:
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			out[name] = v
		}
	}

	return out, nil
}
