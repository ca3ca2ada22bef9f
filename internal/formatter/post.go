// Package formatter turns an article into the plain-text body of a post.
package formatter

import (
	"fmt"
	"strings"
	"time"

	"aipost/internal/models"
	"aipost/pkg/utils"

	"github.com/mattn/go-runewidth"
)

const (
	// MaxPostLength is the hard cap on post characters.
	MaxPostLength = 2800
	// Hashtags is appended to every post.
	Hashtags = "#AI #MachineLearning #ArtificialIntelligence"

	dateLayout = "2006-01-02"
)

// FormatPost renders the article as
//
//	title
//
//	description
//
//	Source: name • date
//	url
//
//	hashtags
//
// cut to MaxPostLength characters. Missing fields render as empty segments.
// The date falls back to now in UTC when the article carries none.
func FormatPost(a models.Article, now time.Time) string {
	title := strings.TrimSpace(a.Title)
	desc := strings.TrimSpace(a.Description)

	date := utils.TruncateRunes(a.PublishedAt, len(dateLayout))
	if date == "" {
		date = now.UTC().Format(dateLayout)
	}

	text := fmt.Sprintf("%s\n\n%s\n\nSource: %s • %s\n%s\n\n%s",
		title, desc, a.SourceName, date, a.URL, Hashtags)

	return utils.TruncateRunes(text, MaxPostLength)
}

// Preview wraps text to the given display width for terminal output.
// Wide runes (CJK, emoji) count as two columns.
func Preview(text string, width int) string {
	if width <= 0 {
		return text
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if runewidth.StringWidth(line) > width {
			lines[i] = runewidth.Wrap(line, width)
		}
	}

	return strings.Join(lines, "\n")
}

// Snippet shortens text to width display columns for log attributes.
func Snippet(text string, width int) string {
	return runewidth.Truncate(utils.NormalizeWhitespace(text), width, "...")
}
