// Package aggregate fans a query out across the configured sources and
// resolves cross-source identity over the combined results.
package aggregate

import (
	"sort"

	"github.com/jmallone/multilit/internal/record"
)

// Dedupe removes duplicate records in a single pass over the input,
// preserving encounter order. Identity is the canonical DOI; records
// without one fall back to normalized URL equality. Records with
// neither key are always kept. The first-encountered record of each
// identity survives.
func Dedupe(recs []record.Record) []record.Record {
	seenDOI := make(map[string]bool)
	seenURL := make(map[string]bool)

	out := make([]record.Record, 0, len(recs))
	for _, r := range recs {
		doi := record.NormalizeDOI(r.DOI)
		u := record.NormalizeURL(r.URL)

		if doi != "" {
			if seenDOI[doi] {
				continue
			}
			seenDOI[doi] = true
		} else {
			if u != "" && seenURL[u] {
				continue
			}
			if u != "" {
				seenURL[u] = true
			}
		}
		out = append(out, r)
	}
	return out
}

// Sort orders records in place: DOI-bearing records first, then by
// textual date ascending with absent dates sorting first. The sort is
// stable, so equal keys keep their encounter order; ties are common
// since many dates are bare years.
func Sort(recs []record.Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		iNoDOI := recs[i].DOI == ""
		jNoDOI := recs[j].DOI == ""
		if iNoDOI != jNoDOI {
			return jNoDOI
		}
		return recs[i].Date < recs[j].Date
	})
}
