package adapters

import (
	"strings"

	"golang.org/x/net/html"
)

// LegalAdapter narrows legal pages (statutes, terms of service, policies)
// to their main content.
type LegalAdapter struct {
	legalDomains   map[string]bool
	legalPaths     []string
	contentMarkers []string
}

// NewLegalAdapter creates a new legal document adapter
func NewLegalAdapter() *LegalAdapter {
	return &LegalAdapter{
		legalDomains: map[string]bool{
			"legislation.gov.uk": true,
			"law.cornell.edu":    true,
			"gov.uk":             true,
			"justice.gov":        true,
			"indiacode.nic.in":   true,
			"eur-lex.europa.eu":  true,
		},
		legalPaths: []string{
			"/statute", "/legal", "/law", "/regulation",
			"/terms", "/tos", "/privacy", "/eula", "/agreement", "/contract",
		},
		// ids and classes that commonly wrap the operative text
		contentMarkers: []string{
			"terms", "legal", "agreement", "policy", "content", "main-content",
		},
	}
}

// Name returns the adapter name
func (a *LegalAdapter) Name() string {
	return "legal"
}

// CanHandle checks if this is a legal document URL
func (a *LegalAdapter) CanHandle(rawURL string, contentType string) bool {
	lowerURL := strings.ToLower(rawURL)

	// Check for legal domains
	for domain := range a.legalDomains {
		if strings.Contains(lowerURL, domain) {
			return true
		}
	}

	// Check for legal path patterns
	for _, p := range a.legalPaths {
		if strings.Contains(lowerURL, p) {
			return true
		}
	}

	return false
}

// ContentRoot prefers <main>, then <article> or role="main", then an element
// whose id or class names the legal text, then <body>.
func (a *LegalAdapter) ContentRoot(doc *html.Node) *html.Node {
	if main := findFirst(doc, func(n *html.Node) bool { return isElement(n, "main") }); main != nil {
		return main
	}

	if article := findFirst(doc, func(n *html.Node) bool {
		return isElement(n, "article") || (isElement(n) && attr(n, "role") == "main")
	}); article != nil {
		return article
	}

	for _, marker := range a.contentMarkers {
		if n := findFirst(doc, func(n *html.Node) bool {
			return isElement(n) && (strings.EqualFold(attr(n, "id"), marker) || hasClass(n, marker))
		}); n != nil {
			return n
		}
	}

	return bodyOf(doc)
}
