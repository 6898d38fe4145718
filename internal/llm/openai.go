package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/lawlens/internal/util"
)

// OpenAIProvider summarizes through the Chat Completions API. Any
// OpenAI-compatible endpoint works when BaseURL is set.
type OpenAIProvider struct {
	client  *openai.Client
	config  Config
	timeout time.Duration
}

// NewOpenAIProvider requires an API key.
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("openai: %w", ErrNoAPIKey)
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	// per-request deadlines come from the context
	clientConfig.HTTPClient = util.NewHTTPClient(0, config.HTTPProxy, config.HTTPSProxy, config.NoProxy)

	return &OpenAIProvider{
		client:  openai.NewClientWithConfig(clientConfig),
		config:  config,
		timeout: requestTimeout(config.Timeout, 30*time.Second),
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable lists models as a lightweight credentials check.
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

func chatMessages(req SummarizeRequest) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt(req.Style)},
		{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(req)},
	}
}

// Summarize asks the chat model for a summary of req.Text.
func (p *OpenAIProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	req = withDefaults(req, p.config)
	if req.Model == "" {
		req.Model = openai.GPT4oMini
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    chatMessages(req),
		MaxTokens:   maxTokens(req),
		Temperature: 0,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("openai %s: %w", req.Model, &StatusError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message})
		}
		return nil, fmt.Errorf("openai %s: %w", req.Model, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai %s: no choices in response", req.Model)
	}

	choice := resp.Choices[0]
	summary := strings.TrimSpace(choice.Message.Content)
	if summary == "" {
		return nil, fmt.Errorf("openai %s: empty reply (finish_reason %q)", req.Model, choice.FinishReason)
	}

	model := resp.Model
	if model == "" {
		model = req.Model
	}
	return &SummarizeResponse{
		Summary:    ClampWords(summary, req.MaxLength),
		Model:      model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}
