package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/lawlens/internal/embed"
)

var (
	embedCompare string
	embedTimeout time.Duration
)

// embedCmd represents the embed command
var embedCmd = &cobra.Command{
	Use:   "embed <text>",
	Short: "Print the embedding vector for a piece of text",
	Long: `Embed encodes text with the configured embedding provider and prints the
model, the dimension and the vector as JSON. With --compare, the cosine
similarity between the two texts is printed as well.

Example:
  lawlens embed "The Contractor shall indemnify the Company."
  lawlens embed "governed by the laws of India" --compare "Governing law is Delaware."`,
	Args: cobra.ExactArgs(1),
	RunE: runEmbed,
}

func init() {
	rootCmd.AddCommand(embedCmd)
	embedCmd.Flags().StringVar(&embedCompare, "compare", "", "second text to compare against")
	embedCmd.Flags().DurationVar(&embedTimeout, "timeout", 30*time.Second, "encode timeout")
}

type embedOutput struct {
	Model      string    `json:"model"`
	Dimension  int       `json:"dimension"`
	Embedding  []float32 `json:"embedding"`
	Similarity *float64  `json:"similarity,omitempty"`
}

func runEmbed(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), embedTimeout)
	defer cancel()

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	embedder, err := embed.New(cfg.Embedding, cfg.LLM)
	if err != nil {
		return fmt.Errorf("embedder: %w", err)
	}
	defer func() { _ = embedder.Close() }()

	out, err := embedText(ctx, embedder, args[0], embedCompare)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func embedText(ctx context.Context, embedder embed.Embedder, text, compare string) (*embedOutput, error) {
	texts := []string{text}
	if compare != "" {
		texts = append(texts, compare)
	}

	vecs, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	out := &embedOutput{
		Model:     embedder.ModelID(),
		Dimension: len(vecs[0]),
		Embedding: vecs[0],
	}
	if compare != "" {
		sim := embed.Cosine(vecs[0], vecs[1])
		out.Similarity = &sim
	}
	return out, nil
}
