package validate

import (
	"context"
	"strings"
	"time"

	"github.com/leadscout/emailscout/internal/model"
)

// defaultMXTimeout bounds a single MX lookup so one slow domain cannot
// stall a batch.
const defaultMXTimeout = 4 * time.Second

// Classifier turns a candidate address into a validation verdict. It is
// stateless between calls and safe for concurrent use.
type Classifier struct {
	resolver Resolver
	timeout  time.Duration
}

// NewClassifier creates a Classifier. A zero timeout uses the default.
func NewClassifier(resolver Resolver, timeout time.Duration) *Classifier {
	if timeout <= 0 {
		timeout = defaultMXTimeout
	}
	return &Classifier{resolver: resolver, timeout: timeout}
}

// Classify runs the decision tree:
//
//  1. Bad syntax: (invalid_syntax, low). The resolver is never queried.
//  2. Domain advertises MX records: (valid_domain, high).
//  3. Lookup succeeded, no MX records: (no_mx_record, medium).
//  4. Lookup failed outright: (indeterminate, low). A resolver outage is
//     not evidence the domain has no mail server, so it is surfaced as its
//     own status rather than collapsed into no_mx_record.
func (c *Classifier) Classify(ctx context.Context, address string) model.ValidationVerdict {
	if !CheckSyntax(address) {
		return verdict(model.StatusInvalidSyntax)
	}

	domain := address[strings.LastIndex(address, "@")+1:]

	switch CheckMX(ctx, c.resolver, domain, c.timeout) {
	case MXFound:
		return verdict(model.StatusValidDomain)
	case MXAbsent:
		return verdict(model.StatusNoMXRecord)
	default:
		return verdict(model.StatusIndeterminate)
	}
}

func verdict(status model.ValidationStatus) model.ValidationVerdict {
	return model.ValidationVerdict{
		Status:     status,
		Confidence: model.ConfidenceFor(status),
	}
}
