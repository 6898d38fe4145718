package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/lawlens/internal/extract"
	"github.com/ppiankov/lawlens/internal/extract/adapters"
	"github.com/ppiankov/lawlens/internal/model"
)

// StdinSource is the source name that reads the document from standard input.
const StdinSource = "-"

// Document is loaded, plain-text document content.
type Document struct {
	Subject   string
	Source    string
	Text      string
	Adapter   string // HTML adapter used, "" for plain text
	FetchMeta *model.FetchMeta
}

// Loader reads documents from files, URLs or stdin and reduces HTML to text.
type Loader struct {
	fetcher  *Fetcher
	adapters *adapters.Registry
	maxBytes int64
	stdin    io.Reader
}

// NewLoader creates a Loader. fetcher may be nil, which rejects URL sources.
func NewLoader(fetcher *Fetcher, maxBytes int64) *Loader {
	return &Loader{
		fetcher:  fetcher,
		adapters: adapters.NewRegistry(),
		maxBytes: maxBytes,
		stdin:    os.Stdin,
	}
}

// WithStdin replaces standard input.
func (l *Loader) WithStdin(r io.Reader) *Loader {
	l.stdin = r
	return l
}

// IsURL reports whether source should be fetched over HTTP.
func IsURL(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Load reads source.
func (l *Loader) Load(ctx context.Context, source string) (*Document, error) {
	switch {
	case source == StdinSource:
		body, err := readLimited(l.stdin, l.maxBytes)
		if err != nil {
			return nil, fmt.Errorf("stdin: %w", err)
		}
		return l.document("stdin", source, string(body), false, nil)

	case IsURL(source):
		if l.fetcher == nil {
			return nil, fmt.Errorf("%s: URL sources are not enabled", source)
		}
		res, err := l.fetcher.FetchWithRetry(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", source, err)
		}
		meta := res.Meta
		return l.document(res.Subject, res.FinalURL, res.Body, res.IsHTML(), &meta)

	default:
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open document: %w", err)
		}
		defer func() { _ = f.Close() }()

		body, err := readLimited(f, l.maxBytes)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		ext := strings.ToLower(filepath.Ext(source))
		isHTML := ext == ".html" || ext == ".htm" || ext == ".xhtml"
		subject := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
		return l.document(subject, source, string(body), isHTML, nil)
	}
}

func (l *Loader) document(subject, source, body string, isHTML bool, meta *model.FetchMeta) (*Document, error) {
	doc := &Document{
		Subject:   subject,
		Source:    source,
		Text:      body,
		FetchMeta: meta,
	}
	if !isHTML && !extract.LooksLikeHTML(body) {
		return doc, nil
	}

	var contentType string
	if meta != nil {
		contentType = meta.ContentType
	}
	text, adapter, err := l.adapters.ToText(body, source, contentType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	doc.Text = text
	doc.Adapter = adapter
	return doc, nil
}
