package llm

import (
	"context"
	"strings"

	"github.com/ppiankov/lawlens/internal/logging"
)

const (
	// DocumentMaxLength and DocumentMinLength bound whole-document summaries, in words.
	DocumentMaxLength = 150
	DocumentMinLength = 40
)

// Summarizer produces bullet-point summaries of whole documents.
type Summarizer struct {
	provider Provider
	config   Config
	logger   logging.Logger
}

// NewSummarizer creates a Summarizer for config. An empty provider disables it.
func NewSummarizer(ctx context.Context, config Config, logger logging.Logger) (*Summarizer, error) {
	provider, err := NewProvider(ctx, config)
	if err != nil {
		return nil, err
	}
	return NewSummarizerWithProvider(provider, config, logger), nil
}

// NewSummarizerWithProvider wraps an existing provider, which may be nil.
func NewSummarizerWithProvider(provider Provider, config Config, logger logging.Logger) *Summarizer {
	return &Summarizer{
		provider: provider,
		config:   config,
		logger:   logging.OrNop(logger).Named("summarize"),
	}
}

// IsEnabled returns true if a provider is configured
func (s *Summarizer) IsEnabled() bool {
	return s.provider != nil
}

// ProviderName returns the name of the configured provider, or "".
func (s *Summarizer) ProviderName() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

// Provider returns the underlying provider, or nil.
func (s *Summarizer) Provider() Provider {
	return s.provider
}

// SummarizeDocument returns a bullet list with one sentence per line.
// Any failure yields "".
func (s *Summarizer) SummarizeDocument(ctx context.Context, text string) string {
	if s.provider == nil || strings.TrimSpace(text) == "" {
		return ""
	}
	log := logging.FromContext(ctx, s.logger)

	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Text:      TruncateRunes(text, MaxInputRunes),
		MaxLength: DocumentMaxLength,
		MinLength: DocumentMinLength,
		Style:     StyleDocument,
	})
	if err != nil {
		log.Warn("document summarization failed", logging.String("provider", s.provider.Name()), logging.Err(err))
		return ""
	}
	if resp == nil {
		return ""
	}
	return FormatBullets(resp.Summary)
}

// FormatBullets splits s after each ". " and prefixes every non-blank sentence with "• ".
func FormatBullets(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, ". ", ".\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, "• "+line)
	}
	return strings.Join(out, "\n")
}
