package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// URLMarker replaces every URL matched by TokenizeURL.
const URLMarker = "__URL__"

var (
	wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	urlPattern  = regexp.MustCompile(`(?i)(https?://|www\.)([a-z0-9-]+\.)+[a-z]{2,6}(/[\p{L}\p{N}_/%?&-]*)?`)
	tagPattern  = regexp.MustCompile(`(\s*)[@#]([\p{L}\p{N}_]+)`)
)

// ToLower case-folds text without regard to the process locale.
func ToLower(text string) string {
	// Casers carry state, so each call gets its own.
	return cases.Lower(language.Und).String(text)
}

// Alphanum keeps the runs of letters, digits and underscores in text and joins
// them with single spaces.
func Alphanum(text string) string {
	return strings.Join(wordPattern.FindAllString(text, -1), " ")
}

// TokenizeURL replaces http(s):// and www. addresses with URLMarker.
func TokenizeURL(text string) string {
	return urlPattern.ReplaceAllLiteralString(text, URLMarker)
}

// RemoveTags drops the @ or # marker in front of mentions and hashtags,
// keeping the tag body and any whitespace before it.
func RemoveTags(text string) string {
	return tagPattern.ReplaceAllString(text, "${1}${2}")
}
