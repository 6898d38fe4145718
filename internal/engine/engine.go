// Package engine runs the clause-extraction pipeline:
// segmentation, anchor matching, ranking and description.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/lawlens/internal/embed"
	"github.com/ppiankov/lawlens/internal/extract"
	"github.com/ppiankov/lawlens/internal/logging"
	"github.com/ppiankov/lawlens/internal/match"
	"github.com/ppiankov/lawlens/internal/metrics"
	"github.com/ppiankov/lawlens/internal/model"
	"github.com/ppiankov/lawlens/internal/rank"
	"github.com/ppiankov/lawlens/internal/taxonomy"
)

// Engine extracts typed clauses from document text.
// It holds only immutable state and is safe for concurrent use.
type Engine struct {
	matcher   *match.Matcher
	describer rank.Describer
	sectioner rank.SectionFunc
	logger    logging.Logger
	metrics   *metrics.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) { e.logger = logging.OrNop(l) }
}

// WithMetrics records document, clause and failure counts in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithDescriber sets the clause describer. Without one, descriptions are truncated source text.
func WithDescriber(d rank.Describer) Option {
	return func(e *Engine) { e.describer = d }
}

// WithSectioner overrides section-number inference.
func WithSectioner(f rank.SectionFunc) Option {
	return func(e *Engine) { e.sectioner = f }
}

// New creates an Engine over pre-encoded anchors. embedder must be the one
// that encoded anchors.
func New(anchors *taxonomy.AnchorSet, embedder embed.Embedder, opts ...Option) *Engine {
	e := &Engine{
		logger:    logging.NewNopLogger(),
		sectioner: extract.ExtractSection,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.matcher = match.New(anchors, embedder, e.logger, e.metrics)
	return e
}

// Result is the internal view of one extraction.
type Result struct {
	RequestID  string
	Threshold  float64
	Paragraphs int
	Clauses    []model.ExtractedClause
	Duration   time.Duration
}

// Public returns the user-facing clauses.
func (r Result) Public() []model.Clause {
	out := make([]model.Clause, 0, len(r.Clauses))
	for _, c := range r.Clauses {
		out = append(out, c.Public())
	}
	return out
}

// ExtractClauses returns the clauses found in documentText, highest confidence
// first. A negative threshold uses the default of 0.4; 0 keeps every paragraph
// with a positive similarity. The result is never nil and no error is
// returned: failures degrade to fewer clauses.
func (e *Engine) ExtractClauses(ctx context.Context, documentText string, threshold float64) []model.Clause {
	return e.Extract(ctx, documentText, threshold).Public()
}

// Extract runs the pipeline and keeps confidence and source text on each clause.
func (e *Engine) Extract(ctx context.Context, documentText string, threshold float64) Result {
	start := time.Now()
	threshold = match.EffectiveThreshold(threshold)

	requestID := logging.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
		ctx = logging.WithRequestID(ctx, requestID)
	}
	log := logging.FromContext(ctx, e.logger)

	res := Result{
		RequestID: requestID,
		Threshold: threshold,
		Clauses:   []model.ExtractedClause{},
	}

	paragraphs := extract.Segment(documentText)
	res.Paragraphs = len(paragraphs)
	if len(paragraphs) == 0 {
		log.Debug("no paragraphs after segmentation", logging.Int("chars", len(documentText)))
		res.Duration = time.Since(start)
		e.metrics.ObserveDocument(0, res.Duration)
		return res
	}

	candidates := e.matcher.Match(ctx, paragraphs, threshold)
	res.Clauses = rank.Finalize(ctx, candidates, e.describer, e.sectioner)
	res.Duration = time.Since(start)

	e.metrics.ObserveDocument(len(paragraphs), res.Duration)
	for _, c := range res.Clauses {
		e.metrics.ClauseEmitted(c.Title, string(c.Risk))
	}

	log.Info("clauses extracted",
		logging.Int("paragraphs", len(paragraphs)),
		logging.Int("candidates", len(candidates)),
		logging.Int("clauses", len(res.Clauses)),
		logging.Duration("took", res.Duration))
	return res
}
