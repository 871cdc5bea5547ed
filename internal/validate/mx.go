package validate

import (
	"context"
	"errors"
	"net"
	"time"
)

// MXResult is the three-valued outcome of a mail-exchange lookup. A
// transient resolver failure is kept distinct from a domain that
// affirmatively has no MX records.
type MXResult int

const (
	// MXFound means the domain advertises at least one MX record.
	MXFound MXResult = iota
	// MXAbsent means the lookup succeeded but returned no MX records
	// (including NXDOMAIN).
	MXAbsent
	// MXLookupFailed means the lookup itself failed: timeout, network
	// error, or resolver unavailable. Reachability is unknown.
	MXLookupFailed
)

// Resolver performs MX lookups. The standard library resolver satisfies
// it via NetResolver; tests substitute a stub.
type Resolver interface {
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)
}

// NetResolver adapts net.Resolver to the Resolver interface.
type NetResolver struct {
	resolver *net.Resolver
}

// NewNetResolver returns a Resolver backed by the host's configured
// resolver.
func NewNetResolver() *NetResolver {
	return &NetResolver{resolver: net.DefaultResolver}
}

func (r *NetResolver) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	return r.resolver.LookupMX(ctx, domain)
}

// CheckMX looks up MX records for domain with a bounded timeout. It never
// returns an error: outcomes are folded into the three-valued MXResult so
// the classifier decides the confidence policy.
func CheckMX(ctx context.Context, resolver Resolver, domain string, timeout time.Duration) MXResult {
	lookupCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	records, err := resolver.LookupMX(lookupCtx, domain)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return MXAbsent
		}
		return MXLookupFailed
	}
	if len(records) == 0 {
		return MXAbsent
	}
	return MXFound
}
