package embed

import (
	"fmt"
	"strings"

	"github.com/ppiankov/lawlens/internal/model"
	"github.com/ppiankov/lawlens/internal/util"
)

// New builds the embedder selected by cfg.Provider.
func New(cfg model.EmbeddingConfig, proxy model.LLMConfig) (Embedder, error) {
	client := util.NewHTTPClient(cfg.Timeout, proxy.HTTPProxy, proxy.HTTPSProxy, "")

	switch strings.ToLower(cfg.Provider) {
	case "onnx", "":
		return NewONNX(ONNXConfig{
			ModelPath:     cfg.ModelPath,
			TokenizerPath: cfg.TokenizerPath,
			LibraryPath:   cfg.ORTLibraryPath,
			MaxSeqLen:     cfg.MaxSeqLen,
			ModelID:       cfg.Model,
		})
	case "openai":
		return NewOpenAI(cfg.APIKey, cfg.BaseURL, cfg.Model, client)
	case "ollama":
		return NewOllama(cfg.BaseURL, cfg.Model, client), nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: onnx, openai, ollama)", ErrUnknownProvider, cfg.Provider)
	}
}
