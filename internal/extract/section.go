package extract

import "regexp"

var (
	// "Section 4.2", "ARTICLE 7", "clause 12" anywhere in the text
	keywordSectionPattern = regexp.MustCompile(`(?i)(?:section|article|clause)\s+(\d+(?:\.\d+)*)`)

	// dotted number at the very start: "4.2 ..."
	dottedSectionPattern = regexp.MustCompile(`^(\d+(?:\.\d+)+)`)

	// numbered heading at the very start: "7. Governing Law"
	numberedHeadingPattern = regexp.MustCompile(`^(\d+)\.\s+[A-Z]`)
)

// ExtractSection infers a section label such as "Section 4.2" from clause text.
// Rules apply in priority order; the first hit wins. It returns "" when nothing matches.
func ExtractSection(text string) string {
	for _, re := range []*regexp.Regexp{keywordSectionPattern, dottedSectionPattern, numberedHeadingPattern} {
		if m := re.FindStringSubmatch(text); m != nil {
			return "Section " + m[1]
		}
	}
	return ""
}
