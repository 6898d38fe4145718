package engine

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ppiankov/lawlens/internal/cache"
	"github.com/ppiankov/lawlens/internal/embed"
	"github.com/ppiankov/lawlens/internal/llm"
	"github.com/ppiankov/lawlens/internal/logging"
	"github.com/ppiankov/lawlens/internal/metrics"
	"github.com/ppiankov/lawlens/internal/model"
	"github.com/ppiankov/lawlens/internal/taxonomy"
	"github.com/ppiankov/lawlens/internal/worker"
)

// Runtime is an Engine plus the resources built for it from configuration.
type Runtime struct {
	Engine     *Engine
	Embedder   embed.Embedder
	Anchors    *taxonomy.AnchorSet
	Summarizer *llm.Summarizer
	Describer  *llm.Describer
	Cache      cache.Cache
	Limiter    *worker.Limiter
}

// Build wires an Engine from cfg: cache, embedder, anchor encoding and the
// optional summarizer. Startup failures are returned; extraction never fails.
func Build(ctx context.Context, cfg *model.Config, logger logging.Logger, m *metrics.Metrics) (*Runtime, error) {
	logger = logging.OrNop(logger)
	rt := &Runtime{}

	c, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	rt.Cache = c

	base, err := embed.New(cfg.Embedding, cfg.LLM)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("embedder: %w", err)
	}
	rt.Embedder = embed.NewCached(base, c, cfg.Cache.TTL, m, logger)

	catalog := taxonomy.DefaultCatalog()
	if cfg.Extraction.CatalogPath != "" {
		if catalog, err = taxonomy.LoadCatalog(cfg.Extraction.CatalogPath); err != nil {
			_ = rt.Close()
			return nil, err
		}
	}

	rt.Anchors, err = taxonomy.New(ctx, catalog, rt.Embedder)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("encode anchors: %w", err)
	}
	logger.Debug("anchors encoded",
		logging.Int("anchors", rt.Anchors.Len()),
		logging.String("model", rt.Embedder.ModelID()))

	rt.Summarizer, err = llm.NewSummarizer(ctx, llm.ConfigFromModel(cfg.LLM), logger)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("summarizer: %w", err)
	}

	rt.Limiter = worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)

	opts := []llm.DescriberOption{
		llm.WithThrottle(rt.Limiter),
		llm.WithLogger(logger),
		llm.WithMetrics(m),
		llm.WithLengths(cfg.LLM.MaxLength, cfg.LLM.MinLength),
		llm.WithModel(cfg.LLM.Model),
	}
	if c != nil {
		opts = append(opts, llm.WithCache(c, cfg.Cache.TTL))
	}
	rt.Describer = llm.NewDescriber(rt.Summarizer.Provider(), opts...)

	rt.Engine = New(rt.Anchors, rt.Embedder,
		WithLogger(logger),
		WithMetrics(m),
		WithDescriber(rt.Describer),
	)
	return rt, nil
}

// Close releases the embedder and any cache connection.
func (r *Runtime) Close() error {
	var errs []error
	if r.Embedder != nil {
		errs = append(errs, r.Embedder.Close())
	}
	if closer, ok := r.Cache.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	return errors.Join(errs...)
}
