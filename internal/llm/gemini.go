package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/ppiankov/lawlens/internal/util"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiProvider implements the Provider interface for the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	config Config
}

// NewGeminiProvider creates a Gemini API client keyed by config.APIKey.
func NewGeminiProvider(ctx context.Context, config Config) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrNoAPIKey)
	}

	timeout := requestTimeout(config.Timeout, 30*time.Second)

	cc := &genai.ClientConfig{
		APIKey:     config.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: util.NewHTTPClient(timeout, config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
	}
	if config.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiProvider{client: client, config: config}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// IsAvailable asks for a one-token completion.
func (p *GeminiProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.generate(ctx, p.model(""), "Hi", &genai.GenerateContentConfig{MaxOutputTokens: 1})
	return err == nil
}

// Summarize generates a summary with GenerateContent.
func (p *GeminiProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	req = withDefaults(req, p.config)
	model := p.model(req.Model)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: SystemPrompt(req.Style)}}},
		Temperature:       genai.Ptr[float32](0),
		MaxOutputTokens:   int32(maxTokens(req)),
	}

	resp, err := p.generate(ctx, model, BuildPrompt(req), cfg)
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("no text in Gemini response")
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &SummarizeResponse{
		Summary:    ClampWords(text.String(), req.MaxLength),
		Model:      model,
		TokensUsed: tokens,
	}, nil
}

func (p *GeminiProvider) generate(ctx context.Context, model, prompt string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	content := genai.NewContentFromText(prompt, genai.RoleUser)
	resp, err := p.client.Models.GenerateContent(ctx, model, []*genai.Content{content}, cfg)
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response candidates from Gemini")
	}
	return resp, nil
}

func (p *GeminiProvider) model(override string) string {
	switch {
	case override != "":
		return override
	case p.config.Model != "":
		return p.config.Model
	default:
		return defaultGeminiModel
	}
}
