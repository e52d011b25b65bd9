package names

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxNameLength bounds both stored names and search queries, in runes.
const MaxNameLength = 50

var (
	msgRequired = "Name is required"
	msgLength   = fmt.Sprintf("Name must be between 1 and %d characters", MaxNameLength)
	msgCharset  = "Name can only contain letters and spaces"

	msgQueryRequired = "Search query is required"
	msgQueryLength   = fmt.Sprintf("Search query must be at most %d characters", MaxNameLength)
)

// Validate trims raw and checks it against the name policy: non-empty, at most
// MaxNameLength runes, letters and spaces only. The letters-only class also
// keeps markup characters (< > & " ') out of stored names.
// It returns the canonical name or a *ValidationError.
func Validate(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", invalid(msgRequired)
	}
	if n := utf8.RuneCountInString(name); n < 1 || n > MaxNameLength {
		return "", invalid(msgLength)
	}
	for _, r := range name {
		if r != ' ' && !unicode.IsLetter(r) {
			return "", invalid(msgCharset)
		}
	}
	return name, nil
}

// SearchPattern trims query and returns a case-insensitive pattern matching it
// as a literal substring. Metacharacters in query are escaped.
func SearchPattern(query string) (string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", invalid(msgQueryRequired)
	}
	if utf8.RuneCountInString(q) > MaxNameLength {
		return "", invalid(msgQueryLength)
	}
	pattern := regexp.QuoteMeta(q)
	if _, err := regexp.Compile("(?i)" + pattern); err != nil {
		return "", invalid("Invalid search query")
	}
	return pattern, nil
}
