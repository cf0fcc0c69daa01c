// Package classify builds the title-to-category classifier. The matching
// pattern is configuration-driven; the analysis core only sees the resulting
// function.
package classify

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Uncategorized is the sentinel label for titles the pattern does not match.
const Uncategorized = "_Uncategorized_"

// DefaultPattern extracts a bracketed tag ("[DEV] standup") or a short
// "TAG - " prefix ("DEV - standup") from the start of a title.
const DefaultPattern = `^(\[[A-Za-z0-9+_\\/|-]*\])|([A-Za-z0-9+_\\/|-]{1,7} - )`

// New compiles pattern into a classifier. The pattern must match the title's
// prefix; the label is the matched text reduced to its alphanumeric runes.
// Titles without a prefix match classify as Uncategorized.
func New(pattern string) (func(title string) string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile category pattern %q: %w", pattern, err)
	}

	return func(title string) string {
		loc := re.FindStringIndex(title)
		if loc == nil || loc[0] != 0 {
			return Uncategorized
		}
		var b strings.Builder
		for _, r := range title[loc[0]:loc[1]] {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(r)
			}
		}
		return b.String()
	}, nil
}
