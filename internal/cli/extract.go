package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/lawlens/internal/engine"
	"github.com/ppiankov/lawlens/internal/logging"
	"github.com/ppiankov/lawlens/internal/match"
	"github.com/ppiankov/lawlens/internal/metrics"
	"github.com/ppiankov/lawlens/internal/model"
	"github.com/ppiankov/lawlens/internal/pipeline"
)

var (
	showConfidence bool
	outPath        string
	extractTimeout time.Duration
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <file|url|->",
	Short: "Extract clauses from one document",
	Long: `Extract reads a contract from a file, an http(s) URL or stdin ("-"),
finds the clauses it contains and prints them with a description, a risk
level and a section label.

Example:
  lawlens extract nda.txt
  lawlens extract https://example.com/terms --format table
  cat msa.txt | lawlens extract - --threshold 0.5 --show-confidence`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().Float64("threshold", match.DefaultThreshold, "minimum anchor similarity in [0, 1]; 0 keeps every positive score")
	extractCmd.Flags().StringP("format", "f", "", "output format (json, markdown, table)")
	extractCmd.Flags().BoolVar(&showConfidence, "show-confidence", false, "include confidence and source text")
	extractCmd.Flags().StringVarP(&outPath, "out", "o", "", "write output to a file instead of stdout")
	extractCmd.Flags().DurationVar(&extractTimeout, "timeout", 2*time.Minute, "overall extraction timeout")

	_ = viper.BindPFlag("extraction.threshold", extractCmd.Flags().Lookup("threshold"))
	_ = viper.BindPFlag("output.format", extractCmd.Flags().Lookup("format"))
}

// session bundles what every document command needs.
type session struct {
	cfg     *model.Config
	logger  logging.Logger
	metrics *metrics.Metrics
	runtime *engine.Runtime
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	rt, err := engine.Build(ctx, cfg, logger, m)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("start engine: %w", err)
	}
	return &session{cfg: cfg, logger: logger, metrics: m, runtime: rt}, nil
}

func (s *session) pipeline() *pipeline.Pipeline {
	loader := pipeline.NewLoader(pipeline.NewFetcherFromConfig(s.cfg.HTTP), s.cfg.HTTP.MaxBodyBytes)
	return pipeline.NewPipeline(loader, s.runtime.Engine, s.cfg.Extraction.Threshold, s.logger)
}

func (s *session) close() {
	if err := s.metrics.WriteTextfile(s.cfg.Metrics.TextfilePath); err != nil {
		s.logger.Warn("metrics textfile not written", logging.Err(err))
	}
	if err := s.runtime.Close(); err != nil {
		s.logger.Warn("close runtime", logging.Err(err))
	}
	_ = s.logger.Sync()
}

func runExtract(cmd *cobra.Command, args []string) error {
	source := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), extractTimeout)
	defer cancel()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	if s.cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Extracting: %s\n", source)
		fmt.Fprintf(os.Stderr, "Embedding:  %s\n", s.runtime.Embedder.ModelID())
		fmt.Fprintf(os.Stderr, "Summarizer: %s\n", summarizerLabel(s.runtime.Summarizer.ProviderName()))
		fmt.Fprintln(os.Stderr)
	}

	report, err := s.pipeline().ExtractSource(ctx, source)
	if err != nil {
		return fmt.Errorf("extract failed: %w", err)
	}

	if s.cfg.Output.Verbose {
		counts := report.RiskCounts()
		fmt.Fprintf(os.Stderr, "✓ %d paragraphs, %d clauses (%d high risk) in %v\n\n",
			report.Paragraphs, len(report.Clauses), counts[model.RiskHigh], report.Duration.Round(time.Millisecond))
	}

	renderer := pipeline.NewRenderer(showConfidence)
	if outPath != "" {
		if err := renderer.RenderFile(report, outPath, s.cfg.Output.Format); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", outPath)
		return nil
	}
	if err := renderer.Render(cmd.OutOrStdout(), report, s.cfg.Output.Format); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	return nil
}

func summarizerLabel(name string) string {
	if name == "" {
		return "none (truncated descriptions)"
	}
	return name
}
