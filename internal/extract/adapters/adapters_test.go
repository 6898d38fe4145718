package adapters

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tosPage = `<html><body>
<nav><ul><li>Home</li><li>Pricing</li></ul></nav>
<main>
  <h1>Terms of Service</h1>
  <p>The Customer shall pay all fees within thirty days of invoice.</p>
  <p>These Terms are governed by the laws of England and Wales.</p>
</main>
<footer><p>Copyright 2024 Example Ltd</p></footer>
</body></html>`

func TestFindAdapter(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		url  string
		want string
	}{
		{"https://www.legislation.gov.uk/ukpga/2010/15", "legal"},
		{"https://example.com/terms-of-service", "legal"},
		{"https://example.com/legal/privacy", "legal"},
		{"/home/user/contracts/nda.html", "legal"},
		{"https://example.com/blog/post", "generic"},
		{"-", "generic"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, r.FindAdapter(tt.url, "text/html").Name())
		})
	}
}

func TestToText_LegalUsesMain(t *testing.T) {
	text, name, err := NewRegistry().ToText(tosPage, "https://example.com/terms", "text/html")
	require.NoError(t, err)

	assert.Equal(t, "legal", name)
	assert.Contains(t, text, "The Customer shall pay all fees")
	assert.Contains(t, text, "laws of England and Wales")
	assert.NotContains(t, text, "Pricing")
	assert.NotContains(t, text, "Copyright")
}

func TestToText_GenericKeepsBody(t *testing.T) {
	text, name, err := NewRegistry().ToText(tosPage, "https://example.com/page", "text/html")
	require.NoError(t, err)

	assert.Equal(t, "generic", name)
	assert.Contains(t, text, "Pricing")
	assert.Contains(t, text, "Copyright")
}

func TestLegalContentRoot_Markers(t *testing.T) {
	page := `<html><body>
<div class="header">Sign in</div>
<div id="terms"><p>Either party may terminate this Agreement on notice.</p></div>
</body></html>`

	text, _, err := NewRegistry().ToText(page, "https://example.com/tos", "")
	require.NoError(t, err)
	assert.Equal(t, "Either party may terminate this Agreement on notice.", strings.TrimSpace(text))
}

func TestLegalContentRoot_FallsBackToBody(t *testing.T) {
	page := `<html><body><p>Plain clause text.</p></body></html>`

	text, _, err := NewRegistry().ToText(page, "https://example.com/agreement", "")
	require.NoError(t, err)
	assert.Equal(t, "Plain clause text.", text)
}

type statuteAdapter struct{ GenericAdapter }

func (statuteAdapter) Name() string { return "statute" }

func (statuteAdapter) CanHandle(url, _ string) bool { return strings.Contains(url, "statutes.example") }

func TestRegister_TriedBeforeFallback(t *testing.T) {
	r := NewRegistry()
	r.Register(statuteAdapter{})

	assert.Equal(t, "statute", r.FindAdapter("https://statutes.example/act/1", "").Name())
	// earlier registrations still win
	assert.Equal(t, "legal", r.FindAdapter("https://statutes.example/terms", "").Name())
	assert.Equal(t, "generic", r.FindAdapter("https://example.com/", "").Name())
}

func TestToText_RoleMain(t *testing.T) {
	page := `<html><body><div>Menu</div><div role="main"><p>Notices must be in writing.</p></div></body></html>`

	text, _, err := NewRegistry().ToText(page, "https://example.com/legal", "")
	require.NoError(t, err)
	assert.Equal(t, "Notices must be in writing.", strings.TrimSpace(text))
}
