// Package match scores paragraphs against the anchor catalog.
package match

import (
	"context"
	"math"

	"github.com/ppiankov/lawlens/internal/embed"
	"github.com/ppiankov/lawlens/internal/logging"
	"github.com/ppiankov/lawlens/internal/metrics"
	"github.com/ppiankov/lawlens/internal/model"
	"github.com/ppiankov/lawlens/internal/taxonomy"
)

// DefaultThreshold is the similarity a paragraph must exceed to match a clause type.
const DefaultThreshold = 0.4

// EffectiveThreshold maps a negative threshold to DefaultThreshold.
func EffectiveThreshold(threshold float64) float64 {
	if threshold < 0 {
		return DefaultThreshold
	}
	return threshold
}

// Matcher compares paragraph embeddings with pre-encoded anchors.
// It holds no per-call state and is safe for concurrent use.
type Matcher struct {
	anchors  *taxonomy.AnchorSet
	embedder embed.Embedder
	logger   logging.Logger
	metrics  *metrics.Metrics
}

// New creates a Matcher. logger and m may be nil.
func New(anchors *taxonomy.AnchorSet, embedder embed.Embedder, logger logging.Logger, m *metrics.Metrics) *Matcher {
	return &Matcher{
		anchors:  anchors,
		embedder: embedder,
		logger:   logging.OrNop(logger).Named("match"),
		metrics:  m,
	}
}

// Match returns every (paragraph, clause type) pair scoring above threshold,
// grouped by clause type in catalog order and by paragraph within a type.
// Paragraphs that matched nothing follow as fallback Other candidates.
//
// The comparison is strict, so a threshold of 0 keeps every positive score.
// A negative threshold uses DefaultThreshold. If encoding fails the whole
// stage yields nil.
func (m *Matcher) Match(ctx context.Context, paragraphs []model.Paragraph, threshold float64) []model.CandidateMatch {
	if len(paragraphs) == 0 {
		return nil
	}
	threshold = EffectiveThreshold(threshold)
	log := logging.FromContext(ctx, m.logger)

	texts := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		texts[i] = p.Text
	}

	vectors, err := m.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		m.metrics.EncodeFailure()
		log.Error("paragraph encoding failed", logging.Int("paragraphs", len(texts)), logging.Err(err))
		return nil
	}
	if len(vectors) != len(texts) {
		m.metrics.EncodeFailure()
		log.Error("paragraph encoding returned wrong vector count",
			logging.Int("paragraphs", len(texts)), logging.Int("vectors", len(vectors)))
		return nil
	}

	var candidates []model.CandidateMatch
	matched := make([]bool, len(paragraphs))

	for _, typ := range m.anchors.Types() {
		for i, p := range paragraphs {
			score := m.anchors.BestScore(typ, vectors[i])
			if score > threshold {
				candidates = append(candidates, model.CandidateMatch{
					ParagraphIndex: p.Index,
					Type:           typ,
					Confidence:     roundConfidence(score),
					Source:         p.Text,
				})
				matched[i] = true
			}
		}
	}

	for i, p := range paragraphs {
		if matched[i] {
			continue
		}
		candidates = append(candidates, model.CandidateMatch{
			ParagraphIndex: p.Index,
			Type:           model.ClauseOther,
			Confidence:     model.FallbackConfidence,
			Source:         p.Text,
			Fallback:       true,
		})
	}

	log.Debug("paragraphs matched",
		logging.Int("paragraphs", len(paragraphs)),
		logging.Int("candidates", len(candidates)),
		logging.Float64("threshold", threshold))
	return candidates
}

// roundConfidence rounds to three decimals.
func roundConfidence(score float64) float64 {
	return math.Round(score*1000) / 1000
}
