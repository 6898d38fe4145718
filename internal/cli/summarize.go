package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/lawlens/internal/llm"
	"github.com/ppiankov/lawlens/internal/pipeline"
)

var summarizeTimeout time.Duration

// summarizeCmd represents the summarize command
var summarizeCmd = &cobra.Command{
	Use:   "summarize <file|url|->",
	Short: "Summarize a whole document as bullet points",
	Long: `Summarize sends the document (truncated to its first 4000 characters) to the
configured summarizer and prints the result as one bullet per sentence.

A summarizer must be configured with --llm-provider or llm.provider.

Example:
  lawlens summarize lease.txt --llm-provider openai
  lawlens summarize https://example.com/terms --llm-provider ollama --llm-model llama3.1`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().DurationVar(&summarizeTimeout, "timeout", time.Minute, "summarization timeout")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), summarizeTimeout)
	defer cancel()

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	summarizer, err := llm.NewSummarizer(ctx, llm.ConfigFromModel(cfg.LLM), logger)
	if err != nil {
		return fmt.Errorf("summarizer: %w", err)
	}
	if !summarizer.IsEnabled() {
		return errors.New("no summarizer configured (set --llm-provider or llm.provider)")
	}

	loader := pipeline.NewLoader(pipeline.NewFetcherFromConfig(cfg.HTTP), cfg.HTTP.MaxBodyBytes)
	doc, err := loader.Load(ctx, args[0])
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}

	summary := summarizer.SummarizeDocument(ctx, doc.Text)
	if summary == "" {
		if !summarizer.Provider().IsAvailable(ctx) {
			return fmt.Errorf("%s is not reachable or the model is unavailable (check credentials, base URL and model)", summarizer.ProviderName())
		}
		return fmt.Errorf("%s returned no summary", summarizer.ProviderName())
	}
	fmt.Fprintln(cmd.OutOrStdout(), summary)
	return nil
}
