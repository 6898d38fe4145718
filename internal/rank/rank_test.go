package rank

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/lawlens/internal/llm"
	"github.com/ppiankov/lawlens/internal/model"
)

type fakeDescriber struct {
	mu    sync.Mutex
	texts []string
}

func (f *fakeDescriber) Describe(_ context.Context, text string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return "desc: " + strings.Fields(text)[0]
}

const (
	indemnity = "12.1 The Supplier shall indemnify and hold harmless the Customer from all claims."
	liability = "Section 9 In no event shall either party be liable for indirect or consequential damages."
	stray     = "The parties acknowledge that headings are for convenience only and have no effect."
)

func TestFinalize_Empty(t *testing.T) {
	got := Finalize(context.Background(), nil, &fakeDescriber{}, nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFinalize_SortsByConfidence(t *testing.T) {
	candidates := []model.CandidateMatch{
		{ParagraphIndex: 0, Type: model.ClauseIndemnification, Confidence: 0.61, Source: indemnity},
		{ParagraphIndex: 1, Type: model.ClauseLiability, Confidence: 0.83, Source: liability},
	}

	got := Finalize(context.Background(), candidates, &fakeDescriber{}, nil)
	require.Len(t, got, 2)
	assert.Equal(t, "Liability", got[0].Title)
	assert.Equal(t, "Section 9", got[0].Section)
	assert.Equal(t, model.RiskHigh, got[0].Risk)
	assert.Equal(t, "Indemnification", got[1].Title)
	assert.Equal(t, "Section 12.1", got[1].Section)
	assert.Equal(t, "desc: 12.1", got[1].Description)
}

func TestFinalize_DedupesBySource(t *testing.T) {
	d := &fakeDescriber{}
	candidates := []model.CandidateMatch{
		{ParagraphIndex: 0, Type: model.ClauseIndemnification, Confidence: 0.55, Source: indemnity},
		{ParagraphIndex: 0, Type: model.ClauseLiability, Confidence: 0.72, Source: indemnity},
		{ParagraphIndex: 1, Type: model.ClauseLiability, Confidence: 0.50, Source: liability},
	}

	got := Finalize(context.Background(), candidates, d, nil)
	require.Len(t, got, 2)
	assert.Equal(t, "Liability", got[0].Title)
	assert.Equal(t, indemnity, got[0].Source)
	assert.Equal(t, 0.72, got[0].Confidence)
	assert.Equal(t, liability, got[1].Source)
	assert.Len(t, d.texts, 2, "only emitted clauses are described")
}

func TestFinalize_TiesKeepInputOrder(t *testing.T) {
	candidates := []model.CandidateMatch{
		{ParagraphIndex: 0, Type: model.ClauseConfidentiality, Confidence: 0.6, Source: indemnity},
		{ParagraphIndex: 0, Type: model.ClauseIndemnification, Confidence: 0.6, Source: indemnity},
	}

	got := Finalize(context.Background(), candidates, &fakeDescriber{}, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "Confidentiality", got[0].Title)
}

func TestFinalize_FallbackIsLowRisk(t *testing.T) {
	candidates := []model.CandidateMatch{
		{ParagraphIndex: 0, Type: model.ClauseIndemnification, Confidence: 0.7, Source: indemnity},
		{ParagraphIndex: 1, Type: model.ClauseOther, Confidence: model.FallbackConfidence, Source: stray, Fallback: true},
	}

	got := Finalize(context.Background(), candidates, &fakeDescriber{}, nil)
	require.Len(t, got, 2)
	assert.Equal(t, "Other", got[1].Title)
	assert.Equal(t, model.RiskLow, got[1].Risk)
	assert.Equal(t, 0.4, got[1].Confidence)
	assert.Equal(t, "", got[1].Section)
}

func TestFinalize_MatchedOtherIsMediumRisk(t *testing.T) {
	candidates := []model.CandidateMatch{
		{ParagraphIndex: 0, Type: model.ClauseOther, Confidence: 0.5, Source: stray},
	}

	got := Finalize(context.Background(), candidates, &fakeDescriber{}, nil)
	require.Len(t, got, 1)
	assert.Equal(t, model.RiskMedium, got[0].Risk)
}

func TestFinalize_CustomSectioner(t *testing.T) {
	candidates := []model.CandidateMatch{
		{Type: model.ClauseLiability, Confidence: 0.5, Source: liability},
	}

	got := Finalize(context.Background(), candidates, &fakeDescriber{}, func(string) string { return "X" })
	require.Len(t, got, 1)
	assert.Equal(t, "X", got[0].Section)
}

func TestFinalize_NilDescriberFallsBack(t *testing.T) {
	candidates := []model.CandidateMatch{
		{Type: model.ClauseLiability, Confidence: 0.5, Source: liability},
	}

	got := Finalize(context.Background(), candidates, nil, nil)
	require.Len(t, got, 1)
	assert.Equal(t, llm.Fallback(liability), got[0].Description)
}

func TestFinalize_DoesNotMutateInput(t *testing.T) {
	candidates := []model.CandidateMatch{
		{Type: model.ClauseIndemnification, Confidence: 0.4, Source: indemnity},
		{Type: model.ClauseLiability, Confidence: 0.9, Source: liability},
	}

	Finalize(context.Background(), candidates, &fakeDescriber{}, nil)
	assert.Equal(t, model.ClauseIndemnification, candidates[0].Type)
}
