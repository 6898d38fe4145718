package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/lawlens/internal/model"
)

// Extractor turns one document source (path, URL or "-") into a report.
type Extractor interface {
	ExtractSource(ctx context.Context, source string) (*model.Report, error)
}

// DocumentJob extracts one document.
type DocumentJob struct {
	Index     int
	Source    string
	Extractor Extractor
}

// Execute runs the extraction.
func (j *DocumentJob) Execute(ctx context.Context) Result {
	report, err := j.Extractor.ExtractSource(ctx, j.Source)
	return &DocumentResult{
		Index:  j.Index,
		Source: j.Source,
		Report: report,
		Error:  err,
	}
}

// DocumentResult is the outcome for one source.
type DocumentResult struct {
	Index  int
	Source string
	Report *model.Report
	Error  error
}

// Err returns the extraction error, if any.
func (r *DocumentResult) Err() error {
	return r.Error
}

// BatchProcessor extracts many documents concurrently.
type BatchProcessor struct {
	extractor   Extractor
	concurrency int
}

// NewBatchProcessor creates a batch processor running concurrency jobs at a time.
func NewBatchProcessor(extractor Extractor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		extractor:   extractor,
		concurrency: concurrency,
	}
}

// ProcessSources extracts every source and returns results in input order.
// Sources not started before ctx is cancelled carry the context error.
func (b *BatchProcessor) ProcessSources(ctx context.Context, sources []string) []*DocumentResult {
	out := make([]*DocumentResult, len(sources))
	if len(sources) == 0 {
		return out
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	go func() {
		for i, src := range sources {
			if err := pool.Submit(&DocumentJob{Index: i, Source: src, Extractor: b.extractor}); err != nil {
				break
			}
		}
		pool.Close()
	}()

	for r := range pool.Results() {
		res := r.(*DocumentResult)
		out[res.Index] = res
	}

	for i, res := range out {
		if res == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			out[i] = &DocumentResult{Index: i, Source: sources[i], Error: err}
		}
	}
	return out
}

// ProcessFile reads sources from a list file and processes them.
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*DocumentResult, error) {
	sources, err := ReadSourcesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}

	return b.ProcessSources(ctx, sources), nil
}

// ReadSourcesFromFile reads one path or URL per line, skipping blanks,
// "#" comments and duplicates.
func ReadSourcesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var sources []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			sources = append(sources, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return sources, nil
}
