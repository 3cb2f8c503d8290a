package retriever

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Trailer starts the site footer; everything from its last occurrence on is dropped.
const Trailer = "About the Bank"

// DefaultBoilerplate lists navigation labels and banner fragments that appear
// on every page of the source site and carry no answerable content.
// DefaultBoilerplate lists banner fragments and navigation sentences that
// survive DOM-level chrome removal. Short labels such as "Home" are left to the
// parser because they also occur in real content.
var DefaultBoilerplate = []string{
	"Skip to main content",
	"Toggle navigation",
	"Main navigation",
	"Search this site",
	"You are here",
	"Follow us on",
	"Back to top",
	"Print this page",
	"Share this page",
	"Your search yielded no results",
	"සිංහල",
	"தமிழ்",
	"ශ්‍රී ලංකා මහ බැංකුව",
	"இலங்கை மத்திய வங்கி",
	"All rights reserved",
}

// Cleaner strips boilerplate phrases and the footer trailer from page text.
type Cleaner struct {
	phrases *regexp.Regexp
}

// NewCleaner compiles phrases into a single matcher. Phrases beginning or
// ending with an ASCII letter or digit only match on word boundaries, so
// "Menu" does not eat into "Menus".
func NewCleaner(phrases []string) *Cleaner {
	sorted := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = strings.TrimSpace(p); p != "" {
			sorted = append(sorted, p)
		}
	}
	if len(sorted) == 0 {
		return &Cleaner{}
	}
	// longest first so overlapping phrases are removed whole
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	parts := make([]string, len(sorted))
	for i, p := range sorted {
		q := regexp.QuoteMeta(p)
		if r, _ := utf8.DecodeRuneInString(p); isASCIIWord(r) {
			q = `\b` + q
		}
		if r, _ := utf8.DecodeLastRuneInString(p); isASCIIWord(r) {
			q += `\b`
		}
		parts[i] = q
	}
	return &Cleaner{phrases: regexp.MustCompile(strings.Join(parts, "|"))}
}

// Clean removes the trailer, the boilerplate phrases and collapses whitespace.
func (c *Cleaner) Clean(text string) string {
	if i := strings.LastIndex(text, Trailer); i >= 0 {
		text = text[:i]
	}
	if c.phrases != nil {
		text = c.phrases.ReplaceAllString(text, " ")
	}
	return strings.Join(strings.Fields(text), " ")
}

func isASCIIWord(r rune) bool {
	return r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
}
