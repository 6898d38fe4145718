package embed

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/ppiankov/lawlens/internal/cache"
	"github.com/ppiankov/lawlens/internal/logging"
	"github.com/ppiankov/lawlens/internal/metrics"
)

// CachedEmbedder serves vectors from a cache and encodes only the misses.
type CachedEmbedder struct {
	inner   Embedder
	cache   cache.Cache
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  logging.Logger
}

// NewCached wraps inner. A nil cache returns inner unchanged. m and logger
// may be nil.
func NewCached(inner Embedder, c cache.Cache, ttl time.Duration, m *metrics.Metrics, logger logging.Logger) Embedder {
	if c == nil {
		return inner
	}
	return &CachedEmbedder{
		inner:   inner,
		cache:   c,
		ttl:     ttl,
		metrics: m,
		logger:  logging.OrNop(logger).Named("embed"),
	}
}

// ModelID returns the wrapped model id.
func (e *CachedEmbedder) ModelID() string {
	return e.inner.ModelID()
}

// Embed encodes one text.
func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch keeps input order; misses go to the inner embedder in a single call.
func (e *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	keys := make([]string, len(texts))
	var missIdx []int
	var missTexts []string

	for i, t := range texts {
		keys[i] = cache.Key("embed", e.inner.ModelID(), NormalizeText(t))
		if data, ok := e.cache.Get(ctx, keys[i]); ok {
			if vec, err := decodeVector(data); err == nil {
				out[i] = vec
				e.metrics.CacheResult("embed", true)
				continue
			}
		}
		e.metrics.CacheResult("embed", false)
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, t)
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := e.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d inputs", len(vecs), len(missTexts))
	}

	for j, i := range missIdx {
		out[i] = vecs[j]
		if err := e.cache.Set(ctx, keys[i], encodeVector(vecs[j]), e.ttl); err != nil {
			logging.FromContext(ctx, e.logger).Debug("embedding cache write failed",
				logging.String("model", e.inner.ModelID()), logging.Err(err))
		}
	}
	return out, nil
}

// Close closes the wrapped embedder.
func (e *CachedEmbedder) Close() error {
	return e.inner.Close()
}

// encodeVector writes a length prefix followed by little-endian float32 bits.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4+len(vec)*4)
	binary.LittleEndian.PutUint32(buf[:4], uint32(len(vec)))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4+i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(data []byte) ([]float32, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("cached vector too short")
	}
	n := int(binary.LittleEndian.Uint32(data[:4]))
	data = data[4:]
	if len(data) != n*4 {
		return nil, fmt.Errorf("cached vector length mismatch")
	}
	vec := make([]float32, n)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
