package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoAPIKey is returned when a hosted provider is selected without credentials.
var ErrNoAPIKey = errors.New("API key is required")

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize produces an abstractive summary of req.Text.
	// Implementations must be deterministic (temperature 0).
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for LLM summarization
type SummarizeRequest struct {
	// Text is the passage to summarize.
	Text string

	// MaxLength and MinLength bound the summary length in words.
	MaxLength int
	MinLength int

	// Style selects the prompt: StyleClause for one clause, StyleDocument for a whole contract.
	Style Style

	// Model overrides the configured model.
	Model string
}

// Style selects the summarization prompt.
type Style int

const (
	StyleClause Style = iota
	StyleDocument
)

// SummarizeResponse contains the LLM's summary output
type SummarizeResponse struct {
	Summary    string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", "gemini", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic/Gemini
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// Default summary bounds, in words
	MaxLength int
	MinLength int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   30,
		MaxLength: 60,
		MinLength: 10,
	}
}

const clauseSystemPrompt = "You summarize contract clauses for non-lawyers. Reply with the summary only, no preamble."

const documentSystemPrompt = "You summarize legal documents for non-lawyers. Reply with the summary only, no preamble."

// SystemPrompt returns the system instruction for style.
func SystemPrompt(style Style) string {
	if style == StyleDocument {
		return documentSystemPrompt
	}
	return clauseSystemPrompt
}

// BuildPrompt constructs the user prompt for req.
func BuildPrompt(req SummarizeRequest) string {
	subject := "contract clause"
	if req.Style == StyleDocument {
		subject = "legal document"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Summarize the following %s in plain English", subject)
	switch {
	case req.MinLength > 0 && req.MaxLength > 0:
		fmt.Fprintf(&b, " using between %d and %d words", req.MinLength, req.MaxLength)
	case req.MaxLength > 0:
		fmt.Fprintf(&b, " using at most %d words", req.MaxLength)
	}
	b.WriteString(". State obligations and who bears them. Do not add facts that are not in the text.\n\n")
	b.WriteString(req.Text)
	return b.String()
}

// maxTokens leaves headroom over the word budget; ClampWords enforces it afterwards.
func maxTokens(req SummarizeRequest) int {
	if req.MaxLength <= 0 {
		return 512
	}
	return req.MaxLength*2 + 16
}

// ClampWords cuts s to at most max words. max <= 0 leaves s unchanged.
func ClampWords(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) <= max {
		return s
	}
	return strings.Join(words[:max], " ")
}

func withDefaults(req SummarizeRequest, cfg Config) SummarizeRequest {
	if req.MaxLength == 0 {
		req.MaxLength = cfg.MaxLength
	}
	if req.MinLength == 0 {
		req.MinLength = cfg.MinLength
	}
	if req.Model == "" {
		req.Model = cfg.Model
	}
	return req
}

// requestTimeout converts a timeout in seconds, using fallback for 0.
func requestTimeout(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
