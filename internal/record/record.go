// Package record defines the canonical record schema shared by all
// literature sources.
package record

// Source tags identifying record provenance. These are wire values and
// must not change.
const (
	SourceSpringer = "springer_openaccess"
	SourceCrossref = "crossref"
	SourceDOAJ     = "doaj"
	SourceOpenAlex = "openalex"
	SourceArXiv    = "arxiv"
	SourcePubMed   = "pubmed"
)

// Record is the unified compact shape produced by every source adapter.
// All fields except Source are optional; an empty string means the
// provider did not supply the field.
type Record struct {
	Title   string `json:"title,omitempty"`
	DOI     string `json:"doi,omitempty"` // canonical form, see NormalizeDOI
	URL     string `json:"url,omitempty"`
	Journal string `json:"journal,omitempty"`

	// Date is provider-native: Crossref synthesizes "YYYY-M-D" prefixes
	// from date-parts, OpenAlex and DOAJ report a year, arXiv a full
	// RFC3339 timestamp. It is deliberately not normalized.
	Date string `json:"date,omitempty"`

	// OpenAccess carries Springer's openAccess flag. Other sources leave
	// it empty.
	OpenAccess string `json:"oa,omitempty"`

	Source string `json:"source"`
}
