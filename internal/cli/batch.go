package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/lawlens/internal/model"
	"github.com/ppiankov/lawlens/internal/pipeline"
	"github.com/ppiankov/lawlens/internal/worker"
)

var (
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Extract clauses from many documents in parallel",
	Long: `Batch extracts clauses from every document listed in a file:
- Read sources from the input file (one path or URL per line, # comments)
- Process documents in parallel with a configurable worker count
- Write one report per document into the output directory

Example:
  lawlens batch contracts.txt
  lawlens batch contracts.txt --concurrency 8 --output-dir ./clauses
  lawlens batch contracts.txt --format markdown --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().Int("concurrency", runtime.NumCPU(), "number of concurrent workers (overrides concurrency.workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./lawlens-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&showConfidence, "show-confidence", false, "include confidence and source text")
	batchCmd.Flags().StringP("format", "f", "", "report format (json, markdown, table)")

	_ = viper.BindPFlag("concurrency.workers", batchCmd.Flags().Lookup("concurrency"))
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	format := s.cfg.Output.Format
	if f, _ := cmd.Flags().GetString("format"); f != "" {
		format = f
	}
	workers := s.cfg.Concurrency.Workers
	if workers <= 0 {
		workers = 1
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  LawLens Batch Extraction\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	if s.runtime.Summarizer.IsEnabled() {
		fmt.Fprintf(os.Stderr, "  Summarizer:   %s\n", s.runtime.Summarizer.ProviderName())
	}
	fmt.Fprintf(os.Stderr, "\n")

	// Create output directory
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	processor := worker.NewBatchProcessor(s.pipeline(), workers)

	fmt.Fprintf(os.Stderr, "⚙️  Processing documents with %d workers...\n\n", workers)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	renderer := pipeline.NewRenderer(showConfidence)
	successCount, failureCount := writeBatchReports(results, renderer, format)

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d documents\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// writeBatchReports writes one report per successful result into outputDir.
func writeBatchReports(results []*worker.DocumentResult, renderer *pipeline.Renderer, format string) (success, failure int) {
	used := make(map[string]int)

	for _, result := range results {
		if result.Error != nil {
			failure++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Source, result.Error)
			continue
		}

		name := uniqueName(sanitizeFilename(result.Report.Subject), used)
		path := filepath.Join(outputDir, name+pipeline.Extension(format))
		if err := renderer.RenderFile(result.Report, path, format); err != nil {
			failure++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write report: %v\n", result.Source, err)
			continue
		}

		success++
		counts := result.Report.RiskCounts()
		fmt.Fprintf(os.Stderr, "✓ %s (%d clauses, %d high risk)\n",
			result.Report.Subject, len(result.Report.Clauses), counts[model.RiskHigh])
	}
	return success, failure
}

// uniqueName appends -2, -3, ... when two documents share a subject.
func uniqueName(name string, used map[string]int) string {
	used[name]++
	if n := used[name]; n > 1 {
		return fmt.Sprintf("%s-%d", name, n)
	}
	return name
}

// sanitizeFilename sanitizes a string for use as a filename
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = replacer.Replace(strings.TrimSpace(s))
	s = strings.Trim(s, ".")

	if s == "" {
		s = "document"
	}

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}

	return s
}
