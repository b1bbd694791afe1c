package htmlutil

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

var innerWhitespace = regexp.MustCompile(`\s+`)

// CleanText collapses runs of whitespace to single spaces and strips
// non-printable characters and surrounding whitespace. County portals pad
// cell text with nbsp entities and stray newlines, this normalizes all of it.
func CleanText(s string) string {
	cleaned := strings.Builder{}
	for _, c := range s {
		if c == '\u00a0' {
			cleaned.WriteByte(' ')
			continue
		}
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			cleaned.WriteRune(c)
		}
	}
	out := innerWhitespace.ReplaceAllString(cleaned.String(), " ")
	return strings.TrimSpace(out)
}

// Text extracts the normalized text content of a selection.
func Text(sel *goquery.Selection) string {
	return CleanText(sel.Text())
}
