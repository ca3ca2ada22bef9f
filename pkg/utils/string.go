package utils

import (
	"strings"

	"golang.org/x/net/html"
)

// NormalizeWhitespace replaces multiple whitespace with single space.
func NormalizeWhitespace(str string) string {
	return strings.Join(strings.Fields(str), " ")
}

// StripTags removes markup tags, decodes HTML entities and collapses whitespace.
func StripTags(str string) string {
	z := html.NewTokenizer(strings.NewReader(str))

	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return NormalizeWhitespace(b.String())
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			b.WriteByte(' ')
		}
	}
}

// TruncateRunes cuts str to at most maxRunes characters. No ellipsis is added.
func TruncateRunes(str string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}

	count := 0
	for i := range str {
		if count == maxRunes {
			return str[:i]
		}
		count++
	}

	return str
}
