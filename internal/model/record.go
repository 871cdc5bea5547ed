package model

// RawRecord is a single search result as returned by the search engine:
// a profile title plus its link. Immutable once received.
type RawRecord struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// Key returns the deduplication key for a record.
func (r RawRecord) Key() string {
	return r.Title + "\x00" + r.Link
}

// ParsedName is the structured form of a profile title.
// Titles look like "Jane Doe - HR Manager at Acme".
type ParsedName struct {
	FullName  string `json:"full_name"`
	Position  string `json:"position"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// NamingConvention describes how candidate addresses are assembled from
// parsed names. Supplied once per batch, immutable.
type NamingConvention struct {
	Separator    string `json:"separator" yaml:"separator"`
	DomainSuffix string `json:"domain_suffix" yaml:"domain_suffix"`
}

// CandidateEmail is a synthesized address together with the name it was
// derived from. The address is always derivable from Source plus the
// active convention; there are no free-form values.
type CandidateEmail struct {
	Address string     `json:"address"`
	Source  ParsedName `json:"source"`
}

// ValidationStatus classifies a candidate address.
type ValidationStatus string

const (
	StatusInvalidSyntax ValidationStatus = "invalid_syntax"
	StatusValidDomain   ValidationStatus = "valid_domain"
	StatusNoMXRecord    ValidationStatus = "no_mx_record"
	// StatusIndeterminate means the MX lookup itself failed (timeout,
	// resolver error), so domain reachability is unknown.
	StatusIndeterminate ValidationStatus = "indeterminate"
)

// Confidence is the coarse deliverability tier for a candidate.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// ConfidenceFor maps a validation status to its confidence tier.
// The mapping is total and deterministic.
func ConfidenceFor(status ValidationStatus) Confidence {
	switch status {
	case StatusValidDomain:
		return ConfidenceHigh
	case StatusNoMXRecord:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// ValidationVerdict is the outcome of validating one candidate email.
type ValidationVerdict struct {
	Status     ValidationStatus `json:"status"`
	Confidence Confidence       `json:"confidence"`
}

// ResultRow is the unit written to the output table: one parsed name,
// its synthesized address, and the validation verdict. Created once per
// unique raw record, never mutated afterwards.
type ResultRow struct {
	Name    ParsedName        `json:"name"`
	Email   CandidateEmail    `json:"email"`
	Verdict ValidationVerdict `json:"verdict"`
	Link    string            `json:"link"`
}

// ResultColumns is the column order used for tabular export.
var ResultColumns = []string{"first_name", "last_name", "email", "validation_status", "confidence", "position"}

// Columns returns the row's values in ResultColumns order.
func (r ResultRow) Columns() []string {
	return []string{
		r.Name.FirstName,
		r.Name.LastName,
		r.Email.Address,
		string(r.Verdict.Status),
		string(r.Verdict.Confidence),
		r.Name.Position,
	}
}
