package taxonomy

import (
	"context"
	"fmt"

	"github.com/ppiankov/lawlens/internal/embed"
	"github.com/ppiankov/lawlens/internal/model"
)

// AnchorSet is the catalog with every anchor already encoded.
// It is read-only after New and safe for concurrent use.
type AnchorSet struct {
	types   []model.ClauseType
	anchors map[model.ClauseType][]string
	vectors map[model.ClauseType][][]float32
}

// New encodes each entry's anchors with one batch call per entry.
// Any failure here is a startup error.
func New(ctx context.Context, catalog []Entry, embedder embed.Embedder) (*AnchorSet, error) {
	if err := Validate(catalog); err != nil {
		return nil, err
	}

	s := &AnchorSet{
		types:   make([]model.ClauseType, 0, len(catalog)),
		anchors: make(map[model.ClauseType][]string, len(catalog)),
		vectors: make(map[model.ClauseType][][]float32, len(catalog)),
	}

	for _, e := range catalog {
		vecs, err := embedder.EmbedBatch(ctx, e.Anchors)
		if err != nil {
			return nil, fmt.Errorf("encode anchors for %s: %w", e.Type, err)
		}
		if len(vecs) != len(e.Anchors) {
			return nil, fmt.Errorf("encode anchors for %s: got %d vectors for %d anchors", e.Type, len(vecs), len(e.Anchors))
		}
		s.types = append(s.types, e.Type)
		s.anchors[e.Type] = append([]string(nil), e.Anchors...)
		s.vectors[e.Type] = vecs
	}
	return s, nil
}

// Types returns the clause types in catalog order.
func (s *AnchorSet) Types() []model.ClauseType {
	return append([]model.ClauseType(nil), s.types...)
}

// Vectors returns the anchor vectors for t. Callers must not modify them.
func (s *AnchorSet) Vectors(t model.ClauseType) [][]float32 {
	return s.vectors[t]
}

// Anchors returns a copy of the anchor sentences for t.
func (s *AnchorSet) Anchors(t model.ClauseType) []string {
	return append([]string(nil), s.anchors[t]...)
}

// Len returns the number of clause types.
func (s *AnchorSet) Len() int {
	return len(s.types)
}

// BestScore returns the highest cosine similarity between vec and any anchor of t.
// A type with no anchors scores -1.
func (s *AnchorSet) BestScore(t model.ClauseType, vec []float32) float64 {
	best := -1.0
	for _, a := range s.vectors[t] {
		if sim := embed.Cosine(vec, a); sim > best {
			best = sim
		}
	}
	return best
}
