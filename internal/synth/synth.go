// Package synth assembles candidate email addresses from parsed names
// under a naming convention.
package synth

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/leadscout/emailscout/internal/model"
)

// asciiFold decomposes accented characters and strips combining marks so
// names like "José Muñoz" yield "jose.munoz" rather than a local part the
// syntax check would reject.
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Synthesize builds one candidate address: lowercased first name,
// separator, lowercased last name, domain suffix. Deterministic and total;
// an empty name segment produces a degenerate candidate the validator will
// reject, never an error.
func Synthesize(name model.ParsedName, conv model.NamingConvention) model.CandidateEmail {
	address := normalizeSegment(name.FirstName) +
		conv.Separator +
		normalizeSegment(name.LastName) +
		strings.ToLower(conv.DomainSuffix)

	return model.CandidateEmail{
		Address: address,
		Source:  name,
	}
}

func normalizeSegment(s string) string {
	folded, _, err := transform.String(asciiFold, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}
