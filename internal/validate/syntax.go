// Package validate classifies candidate email addresses via syntactic and
// DNS-based checks.
package validate

import "regexp"

// addressPattern is the RFC-like shape check applied before any DNS work:
// local part of letters, digits and ._%+-, then @, then a domain with a
// top-level label of at least two letters.
var addressPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// CheckSyntax reports whether the address matches the expected shape.
// Pure, no I/O.
func CheckSyntax(address string) bool {
	return addressPattern.MatchString(address)
}
