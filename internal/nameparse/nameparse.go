// Package nameparse turns raw search-result titles into structured name
// records. Titles follow the "<full name> - <position>" shape used by
// LinkedIn profile results.
package nameparse

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/leadscout/emailscout/internal/model"
)

// ErrNoSeparator is returned when a title lacks the hyphen delimiter
// between name and position. Callers must skip or flag such rows rather
// than emit a malformed name.
var ErrNoSeparator = eris.New("nameparse: title has no hyphen separator")

// Parse splits a title on its first hyphen into a name segment and a
// position segment, then splits the name segment on whitespace: the first
// token becomes the first name, the last token the last name. A
// single-token name uses that token for both.
func Parse(title string) (model.ParsedName, error) {
	idx := strings.Index(title, "-")
	if idx < 0 {
		return model.ParsedName{}, ErrNoSeparator
	}

	full := strings.TrimSpace(title[:idx])
	position := strings.TrimSpace(title[idx+1:])

	tokens := strings.Fields(full)
	var first, last string
	if len(tokens) > 0 {
		first = tokens[0]
		last = tokens[len(tokens)-1]
	}

	return model.ParsedName{
		FullName:  full,
		Position:  position,
		FirstName: first,
		LastName:  last,
	}, nil
}
