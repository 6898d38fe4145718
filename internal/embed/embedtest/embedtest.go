// Package embedtest provides deterministic embedders for tests.
package embedtest

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ClauseKeywords is a vocabulary with one dimension per clause concept.
var ClauseKeywords = [][]string{
	{"confidential", "disclose", "non-disclosure", "proprietary"},
	{"terminat"},
	{"indemnif", "hold harmless"},
	{"governed", "laws of"},
	{"pay", "invoice", "fees"},
	{"liable", "liability", "damages"},
	{"compete", "competing", "solicit"},
	{"severance", "lump sum", "salary"},
	{"intellectual property", "inventions", "work product"},
	{"arbitration", "dispute"},
	{"force majeure", "reasonable control", "acts of god"},
	{"assign"},
	{"notice"},
	{"entire agreement", "supersedes"},
	{"amend"},
	{"waiver"},
	{"miscellaneous", "category", "other terms"},
}

// KeywordEmbedder maps text to keyword-count vectors: dimension i is the
// number of occurrences of any keyword in group i. Text with no keywords
// gets the zero vector.
type KeywordEmbedder struct {
	groups [][]string

	mu     sync.Mutex
	calls  int
	inputs [][]string
}

// NewKeyword returns an embedder over groups, or ClauseKeywords when groups is nil.
func NewKeyword(groups [][]string) *KeywordEmbedder {
	if groups == nil {
		groups = ClauseKeywords
	}
	return &KeywordEmbedder{groups: groups}
}

// Vector returns the vector for text without recording a call.
func (k *KeywordEmbedder) Vector(text string) []float32 {
	lower := strings.ToLower(text)
	vec := make([]float32, len(k.groups))
	for i, group := range k.groups {
		for _, kw := range group {
			vec[i] += float32(strings.Count(lower, kw))
		}
	}
	return vec
}

func (k *KeywordEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := k.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (k *KeywordEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	k.mu.Lock()
	k.calls++
	k.inputs = append(k.inputs, append([]string(nil), texts...))
	k.mu.Unlock()

	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = k.Vector(t)
	}
	return out, nil
}

func (k *KeywordEmbedder) ModelID() string { return "keyword-test" }
func (k *KeywordEmbedder) Close() error    { return nil }

// Calls returns how many EmbedBatch calls were made.
func (k *KeywordEmbedder) Calls() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.calls
}

// Inputs returns the texts passed to each EmbedBatch call.
func (k *KeywordEmbedder) Inputs() [][]string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([][]string(nil), k.inputs...)
}

// ErrEncode is returned by FailingEmbedder.
var ErrEncode = errors.New("encode failed")

// FailingEmbedder fails every call after the first Allow calls.
// It delegates successful calls to a KeywordEmbedder.
type FailingEmbedder struct {
	*KeywordEmbedder
	Allow int

	mu   sync.Mutex
	seen int
}

// NewFailing returns an embedder that succeeds allow times, then fails.
func NewFailing(allow int) *FailingEmbedder {
	return &FailingEmbedder{KeywordEmbedder: NewKeyword(nil), Allow: allow}
}

func (f *FailingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (f *FailingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.seen++
	fail := f.seen > f.Allow
	f.mu.Unlock()
	if fail {
		return nil, ErrEncode
	}
	return f.KeywordEmbedder.EmbedBatch(ctx, texts)
}

// ShortEmbedder returns one vector fewer than requested once Allow calls have passed.
type ShortEmbedder struct {
	*KeywordEmbedder
	Allow int

	mu   sync.Mutex
	seen int
}

// NewShort returns an embedder that answers allow calls correctly, then drops a vector.
func NewShort(allow int) *ShortEmbedder {
	return &ShortEmbedder{KeywordEmbedder: NewKeyword(nil), Allow: allow}
}

func (s *ShortEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.KeywordEmbedder.Embed(ctx, text)
}

func (s *ShortEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	s.mu.Lock()
	s.seen++
	short := s.seen > s.Allow
	s.mu.Unlock()

	vecs, err := s.KeywordEmbedder.EmbedBatch(ctx, texts)
	if err != nil || !short || len(vecs) == 0 {
		return vecs, err
	}
	return vecs[:len(vecs)-1], nil
}
