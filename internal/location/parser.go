// Package location splits a free-text clash location into a building level
// and the remaining location description.
package location

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/blopez6567/Clashsense/internal/model"
)

var levelPattern = regexp.MustCompile(`(?i)(?:level|lvl|floor)[\s[:punct:]]*(\d+)`)

// Parsed is the result of Parse.
type Parsed struct {
	Level    string
	Location string
	// Found is false when no level indicator was present.
	Found bool
}

// Parse extracts a "Level n" token from raw and returns the cleaned rest.
// Location is never empty: it falls back to the level when nothing else
// remains.
func Parse(raw string) Parsed {
	out := Parsed{Level: model.UnspecifiedLevel}
	rest := raw

	if loc := levelPattern.FindStringSubmatchIndex(raw); loc != nil {
		out.Found = true
		out.Level = fmt.Sprintf("Level %s", raw[loc[2]:loc[3]])
		rest = raw[:loc[0]] + " " + raw[loc[1]:]
	}

	out.Location = clean(rest)
	if out.Location == "" {
		out.Location = out.Level
	}
	return out
}

// clean trims surrounding punctuation and whitespace and collapses the
// interior whitespace left behind by removing the level token.
func clean(s string) string {
	s = strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
	return strings.Join(strings.Fields(s), " ")
}
