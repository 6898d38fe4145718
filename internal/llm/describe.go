package llm

import (
	"context"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ppiankov/lawlens/internal/cache"
	"github.com/ppiankov/lawlens/internal/logging"
	"github.com/ppiankov/lawlens/internal/metrics"
)

const (
	// DescriptionMaxLength and DescriptionMinLength bound clause descriptions, in words.
	DescriptionMaxLength = 60
	DescriptionMinLength = 10

	// MaxInputRunes caps the text sent to a provider.
	MaxInputRunes = 4000

	fallbackRunes = 100
)

// Throttle delays a call until the key's rate budget allows it.
type Throttle interface {
	Wait(ctx context.Context, key string) error
}

// Describer turns a clause paragraph into a short plain-language description.
// It never fails: any provider problem degrades to Fallback.
type Describer struct {
	provider Provider
	model    string
	cache    cache.Cache
	ttl      time.Duration
	throttle Throttle
	logger   logging.Logger
	metrics  *metrics.Metrics
	group    singleflight.Group

	maxLength int
	minLength int
}

// DescriberOption configures a Describer.
type DescriberOption func(*Describer)

// WithCache stores descriptions in c for ttl.
func WithCache(c cache.Cache, ttl time.Duration) DescriberOption {
	return func(d *Describer) {
		d.cache = c
		d.ttl = ttl
	}
}

// WithModel names the model behind the provider. Descriptions are cached per
// provider and model.
func WithModel(model string) DescriberOption {
	return func(d *Describer) { d.model = model }
}

// WithThrottle rate-limits provider calls, keyed by provider name.
func WithThrottle(t Throttle) DescriberOption {
	return func(d *Describer) { d.throttle = t }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) DescriberOption {
	return func(d *Describer) { d.logger = logging.OrNop(l).Named("describe") }
}

// WithMetrics records fallbacks and cache lookups in m.
func WithMetrics(m *metrics.Metrics) DescriberOption {
	return func(d *Describer) { d.metrics = m }
}

// WithLengths overrides the word bounds. Non-positive values keep the defaults.
func WithLengths(maxLength, minLength int) DescriberOption {
	return func(d *Describer) {
		if maxLength > 0 {
			d.maxLength = maxLength
		}
		if minLength > 0 {
			d.minLength = minLength
		}
	}
}

// NewDescriber creates a Describer. A nil provider makes every description a Fallback.
func NewDescriber(provider Provider, opts ...DescriberOption) *Describer {
	d := &Describer{
		provider:  provider,
		logger:    logging.NewNopLogger(),
		maxLength: DescriptionMaxLength,
		minLength: DescriptionMinLength,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Enabled reports whether a provider is configured.
func (d *Describer) Enabled() bool {
	return d != nil && d.provider != nil
}

// Describe summarizes text. The result is never empty for non-empty input.
func (d *Describer) Describe(ctx context.Context, text string) string {
	if !d.Enabled() {
		if d != nil {
			d.metrics.SummarizerFallback("disabled")
		}
		return Fallback(text)
	}

	key := cache.Key("describe", d.provider.Name(), d.model, strconv.Itoa(d.maxLength), strconv.Itoa(d.minLength), text)
	if d.cache != nil {
		if data, ok := d.cache.Get(ctx, key); ok && len(data) > 0 {
			d.metrics.CacheResult("describe", true)
			return string(data)
		}
		d.metrics.CacheResult("describe", false)
	}

	// Identical paragraphs in concurrent documents share one provider call.
	v, _, _ := d.group.Do(key, func() (interface{}, error) {
		return d.summarize(ctx, text), nil
	})
	summary, _ := v.(string)

	if summary == "" {
		return Fallback(text)
	}
	if d.cache != nil {
		if err := d.cache.Set(ctx, key, []byte(summary), d.ttl); err != nil {
			d.logger.Debug("description cache write failed", logging.Err(err))
		}
	}
	return summary
}

// summarize returns "" when the provider fails or answers blank.
func (d *Describer) summarize(ctx context.Context, text string) string {
	log := logging.FromContext(ctx, d.logger)

	if d.throttle != nil {
		if err := d.throttle.Wait(ctx, d.provider.Name()); err != nil {
			d.metrics.SummarizerFallback("error")
			log.Warn("summarizer throttle wait failed", logging.Err(err))
			return ""
		}
	}

	resp, err := d.provider.Summarize(ctx, SummarizeRequest{
		Text:      TruncateRunes(text, MaxInputRunes),
		MaxLength: d.maxLength,
		MinLength: d.minLength,
		Style:     StyleClause,
	})
	if err != nil {
		d.metrics.SummarizerFallback("error")
		log.Warn("clause summarization failed, using truncated text",
			logging.String("provider", d.provider.Name()), logging.Err(err))
		return ""
	}

	summary := ""
	if resp != nil {
		summary = strings.TrimSpace(resp.Summary)
	}
	if summary == "" {
		d.metrics.SummarizerFallback("empty")
		log.Warn("summarizer returned an empty description", logging.String("provider", d.provider.Name()))
	}
	return summary
}

// Fallback is the description used when no summary is available:
// the first 100 runes of text followed by "...".
func Fallback(text string) string {
	return TruncateRunes(text, fallbackRunes) + "..."
}

// TruncateRunes returns at most n runes of s.
func TruncateRunes(s string, n int) string {
	if n < 0 {
		n = 0
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
