package record

import "strings"

// NormalizeDOI normalizes a DOI to its canonical form, used as the
// primary cross-source identity key: trimmed, lowercased, with a
// leading doi.org URL prefix removed. Empty input stays empty.
// The operation is idempotent.
func NormalizeDOI(doi string) string {
	doi = strings.ToLower(strings.TrimSpace(doi))
	// Prefixes may be stacked (a resolver URL pasted onto another); strip
	// until none remains so one pass reaches the fixpoint.
	for {
		stripped := strings.TrimPrefix(doi, "https://doi.org/")
		stripped = strings.TrimPrefix(stripped, "http://doi.org/")
		if stripped == doi {
			return doi
		}
		doi = stripped
	}
}

// NormalizeURL normalizes a URL for duplicate comparison: trimmed and
// lowercased. Used only as a fallback identity key for records without
// a DOI.
func NormalizeURL(u string) string {
	return strings.ToLower(strings.TrimSpace(u))
}
