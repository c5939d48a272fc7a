package opportunity

import (
	"regexp"
	"strings"
)

var (
	teamSuffix  = regexp.MustCompile(`\s+(FC|United|City)$`)
	punctuation = regexp.MustCompile(`[^\w\s]`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// NormalizeRunnerName reduces a selection name to the form used to match
// runners across platforms: "Manchester City" and "manchester" both become
// "manchester"
func NormalizeRunnerName(name string) string {
	name = strings.TrimSpace(name)
	name = teamSuffix.ReplaceAllString(name, "")
	name = punctuation.ReplaceAllString(name, "")
	name = whitespace.ReplaceAllString(name, " ")
	return strings.ToLower(strings.TrimSpace(name))
}
