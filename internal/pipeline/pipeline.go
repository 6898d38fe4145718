package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/lawlens/internal/engine"
	"github.com/ppiankov/lawlens/internal/logging"
	"github.com/ppiankov/lawlens/internal/model"
)

// Pipeline loads documents and runs them through the clause engine.
type Pipeline struct {
	loader    *Loader
	engine    *engine.Engine
	threshold float64
	logger    logging.Logger
}

// NewPipeline creates a pipeline. A negative threshold uses the engine default.
func NewPipeline(loader *Loader, eng *engine.Engine, threshold float64, logger logging.Logger) *Pipeline {
	return &Pipeline{
		loader:    loader,
		engine:    eng,
		threshold: threshold,
		logger:    logging.OrNop(logger).Named("pipeline"),
	}
}

// ExtractSource loads source and extracts its clauses into a report.
// Only loading can fail; extraction itself degrades to fewer clauses.
func (p *Pipeline) ExtractSource(ctx context.Context, source string) (*model.Report, error) {
	doc, err := p.loader.Load(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return p.ExtractDocument(ctx, doc), nil
}

// ExtractDocument runs the engine over an already loaded document.
func (p *Pipeline) ExtractDocument(ctx context.Context, doc *Document) *model.Report {
	res := p.engine.Extract(ctx, doc.Text, p.threshold)

	p.logger.Debug("document extracted",
		logging.String("request_id", res.RequestID),
		logging.String("source", doc.Source),
		logging.String("adapter", doc.Adapter),
		logging.Int("clauses", len(res.Clauses)))

	return &model.Report{
		Subject:     doc.Subject,
		Source:      doc.Source,
		ExtractedAt: time.Now().UTC(),
		RequestID:   res.RequestID,
		Threshold:   res.Threshold,
		Paragraphs:  res.Paragraphs,
		Clauses:     res.Clauses,
		FetchMeta:   doc.FetchMeta,
		Duration:    res.Duration,
	}
}
