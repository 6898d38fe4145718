// Package rank orders candidate matches, removes cross-type duplicates and
// attaches descriptions and section numbers.
package rank

import (
	"context"
	"sort"

	"github.com/ppiankov/lawlens/internal/extract"
	"github.com/ppiankov/lawlens/internal/llm"
	"github.com/ppiankov/lawlens/internal/model"
)

// Describer produces the description of one clause paragraph.
type Describer interface {
	Describe(ctx context.Context, text string) string
}

// SectionFunc infers a section number from paragraph text.
type SectionFunc func(text string) string

// Finalize sorts candidates by confidence (descending, ties keep input order),
// keeps only the first candidate per distinct source paragraph and turns it
// into an ExtractedClause. A nil sectioner uses extract.ExtractSection and
// a nil describer uses llm.Fallback.
// Only emitted clauses are described.
func Finalize(ctx context.Context, candidates []model.CandidateMatch, describer Describer, sectioner SectionFunc) []model.ExtractedClause {
	out := make([]model.ExtractedClause, 0, len(candidates))
	if len(candidates) == 0 {
		return out
	}
	if sectioner == nil {
		sectioner = extract.ExtractSection
	}

	sorted := make([]model.CandidateMatch, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	seen := make(map[string]struct{}, len(sorted))
	for _, c := range sorted {
		if _, dup := seen[c.Source]; dup {
			continue
		}
		seen[c.Source] = struct{}{}

		out = append(out, model.ExtractedClause{
			Title:       c.Type.String(),
			Description: describe(ctx, describer, c.Source),
			Risk:        c.Risk(),
			Section:     sectioner(c.Source),
			Confidence:  c.Confidence,
			Source:      c.Source,
		})
	}
	return out
}

func describe(ctx context.Context, d Describer, text string) string {
	if d == nil {
		return llm.Fallback(text)
	}
	return d.Describe(ctx, text)
}
