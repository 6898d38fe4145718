// Package extract turns raw document text into the pieces the clause matcher
// works on: paragraphs, section references, and visible text from HTML.
package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/lawlens/internal/model"
)

// MinParagraphLength is the rune count a trimmed paragraph must exceed to be kept.
const MinParagraphLength = 50

// Segment splits document text into candidate clause paragraphs.
//
// Blank-line separated blocks are tried first. If none survive the length
// filter, single newlines are used instead. Text that yields nothing returns
// nil; that is not an error.
func Segment(text string) []model.Paragraph {
	text = normalizeNewlines(text)

	parts := filterParagraphs(strings.Split(text, "\n\n"))
	if len(parts) == 0 {
		parts = filterParagraphs(strings.Split(text, "\n"))
	}
	if len(parts) == 0 {
		return nil
	}

	paragraphs := make([]model.Paragraph, len(parts))
	for i, p := range parts {
		paragraphs[i] = model.Paragraph{Index: i, Text: p}
	}
	return paragraphs
}

func filterParagraphs(parts []string) []string {
	var kept []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if utf8.RuneCountInString(p) > MinParagraphLength {
			kept = append(kept, p)
		}
	}
	return kept
}

func normalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
