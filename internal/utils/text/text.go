// Package text holds the string helpers used to turn feed markup into short
// plain-text excerpts.
package text

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

var lineBreaks = regexp.MustCompile(`\s*[\r\n]+\s*`)

// CountRunes counts characters rather than bytes, so "日本語" is 3.
func CountRunes(s string) int {
	return utf8.RuneCountInString(s)
}

// Truncate cuts s to n characters and appends an ellipsis when anything was
// removed. n <= 0 leaves s unchanged.
//
//	Truncate("日本語のテキスト", 3) // "日本語…"
func Truncate(s string, n int) string {
	if n <= 0 || CountRunes(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n])) + "…"
}

// CollapseLines joins a multi-line string into one line.
func CollapseLines(s string) string {
	return strings.TrimSpace(lineBreaks.ReplaceAllString(s, " "))
}

// HTMLToText strips markup and collapses all whitespace. Input that does not
// parse as HTML is only whitespace-collapsed.
func HTMLToText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
