package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/lawlens/internal/util"
)

const defaultOllamaBaseURL = "http://localhost:11434"

// OllamaProvider summarizes with a local model through Ollama's chat API.
type OllamaProvider struct {
	api    *jsonAPI
	config Config
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	Seed        int     `json:"seed"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Model      string        `json:"model"`
	Message    ollamaMessage `json:"message"`
	Done       bool          `json:"done"`
	DoneReason string        `json:"done_reason,omitempty"`

	// Token counts, present once done is true
	PromptEvalCount int `json:"prompt_eval_count,omitempty"`
	EvalCount       int `json:"eval_count,omitempty"`
}

type ollamaTags struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

func ollamaErrorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	return e.Error
}

// NewOllamaProvider creates a provider for the Ollama server at config.BaseURL.
func NewOllamaProvider(config Config) (*OllamaProvider, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}

	// local models load slowly on first use
	client := util.NewHTTPClient(requestTimeout(config.Timeout, 60*time.Second),
		config.HTTPProxy, config.HTTPSProxy, config.NoProxy)

	return &OllamaProvider{
		api:    newJSONAPI(baseURL, client, nil, ollamaErrorMessage),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// IsAvailable reports whether the server answers and, when a model is
// configured, whether it has been pulled.
func (p *OllamaProvider) IsAvailable(ctx context.Context) bool {
	var tags ollamaTags
	if err := p.api.get(ctx, "/api/tags", &tags); err != nil {
		return false
	}
	if p.config.Model == "" {
		return true
	}
	for _, m := range tags.Models {
		if m.Name == p.config.Model || strings.TrimSuffix(m.Name, ":latest") == p.config.Model {
			return true
		}
	}
	return false
}

// Summarize asks the local model for a summary of req.Text.
func (p *OllamaProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	req = withDefaults(req, p.config)
	if req.Model == "" {
		return nil, fmt.Errorf("ollama model must be specified (e.g., llama3.1:8b, mistral)")
	}

	prompt := BuildPrompt(req)
	var resp ollamaChatResponse
	err := p.api.post(ctx, "/api/chat", ollamaChatRequest{
		Model: req.Model,
		Messages: []ollamaMessage{
			{Role: "system", Content: SystemPrompt(req.Style)},
			{Role: "user", Content: prompt},
		},
		Options: ollamaOptions{NumPredict: maxTokens(req)},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("ollama %s: %w", req.Model, err)
	}

	summary := ClampWords(resp.Message.Content, req.MaxLength)

	// Some models report zero counts; estimate at ~4 bytes per token.
	tokensUsed := resp.PromptEvalCount + resp.EvalCount
	if tokensUsed == 0 {
		tokensUsed = (len(prompt) + len(summary)) / 4
	}

	model := resp.Model
	if model == "" {
		model = req.Model
	}
	return &SummarizeResponse{
		Summary:    summary,
		Model:      model,
		TokensUsed: tokensUsed,
	}, nil
}
