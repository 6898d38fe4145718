package model

import "time"

// Config holds all LawLens configuration.
// Hierarchy (highest to lowest): CLI flags, LAWLENS_* env vars, config file, defaults.
type Config struct {
	Extraction   ExtractionConfig   `yaml:"extraction" mapstructure:"extraction"`
	Embedding    EmbeddingConfig    `yaml:"embedding" mapstructure:"embedding"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
	Metrics      MetricsConfig      `yaml:"metrics" mapstructure:"metrics"`
}

// ExtractionConfig controls clause matching.
type ExtractionConfig struct {
	Threshold   float64 `yaml:"threshold" mapstructure:"threshold"`                 // minimum anchor similarity for a match
	CatalogPath string  `yaml:"catalog_path,omitempty" mapstructure:"catalog_path"` // YAML anchor overrides
}

// EmbeddingConfig selects and configures the encode capability.
type EmbeddingConfig struct {
	Provider       string        `yaml:"provider" mapstructure:"provider"` // onnx, openai, ollama
	Model          string        `yaml:"model" mapstructure:"model"`
	APIKey         string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL        string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	ModelPath      string        `yaml:"model_path" mapstructure:"model_path"`
	TokenizerPath  string        `yaml:"tokenizer_path" mapstructure:"tokenizer_path"`
	ORTLibraryPath string        `yaml:"ort_library_path,omitempty" mapstructure:"ort_library_path"`
	MaxSeqLen      int           `yaml:"max_seq_len" mapstructure:"max_seq_len"`
	Timeout        time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// LLMConfig configures the abstractive summarizer used for clause descriptions.
type LLMConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider"` // "", openai, anthropic, ollama, gemini
	Model      string `yaml:"model" mapstructure:"model"`
	APIKey     string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL    string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout    int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxLength  int    `yaml:"max_length" mapstructure:"max_length"`
	MinLength  int    `yaml:"min_length" mapstructure:"min_length"`
	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// CacheConfig configures the embedding and description caches.
type CacheConfig struct {
	Enabled       bool          `yaml:"enabled" mapstructure:"enabled"`
	Backend       string        `yaml:"backend" mapstructure:"backend"` // memory, disk, layered, redis
	Dir           string        `yaml:"dir" mapstructure:"dir"`
	TTL           time.Duration `yaml:"ttl" mapstructure:"ttl"`
	RedisAddr     string        `yaml:"redis_addr,omitempty" mapstructure:"redis_addr"`
	RedisPassword string        `yaml:"redis_password,omitempty" mapstructure:"redis_password"`
	RedisDB       int           `yaml:"redis_db" mapstructure:"redis_db"`
	Prefix        string        `yaml:"prefix" mapstructure:"prefix"`
}

// HTTPConfig configures fetching of documents given as URLs.
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// ConcurrencyConfig configures batch processing.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig throttles calls to remote model providers.
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// OutputConfig controls rendering.
type OutputConfig struct {
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
	Format  string `yaml:"format" mapstructure:"format"` // json, markdown, table
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json, console
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path,omitempty" mapstructure:"textfile_path"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			Threshold: 0.4,
		},
		Embedding: EmbeddingConfig{
			Provider:      "onnx",
			Model:         "all-MiniLM-L6-v2",
			ModelPath:     "models/all-MiniLM-L6-v2/model.onnx",
			TokenizerPath: "models/all-MiniLM-L6-v2/tokenizer.json",
			MaxSeqLen:     256,
			Timeout:       30 * time.Second,
		},
		LLM: LLMConfig{
			Provider:  "", // descriptions fall back to truncation
			Timeout:   30,
			MaxLength: 60,
			MinLength: 10,
		},
		Cache: CacheConfig{
			Enabled: true,
			Backend: "layered",
			Dir:     defaultCacheDir(),
			TTL:     7 * 24 * time.Hour,
			Prefix:  "lawlens:",
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "LawLens/0.1 (+https://github.com/ppiankov/lawlens)",
			MaxBodyBytes:  5_000_000,
			RespectRobots: true,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 5,
			BurstSize:         5,
		},
		Output: OutputConfig{
			Format: "json",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}
