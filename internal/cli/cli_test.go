package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/lawlens/internal/embed/embedtest"
	"github.com/ppiankov/lawlens/internal/model"
	"github.com/ppiankov/lawlens/internal/pipeline"
	"github.com/ppiankov/lawlens/internal/taxonomy"
	"github.com/ppiankov/lawlens/internal/worker"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	setupEnv(v)
	return v
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(newTestViper())
	require.NoError(t, err)

	def := model.DefaultConfig()
	assert.InDelta(t, 0.4, cfg.Extraction.Threshold, 1e-9)
	assert.Equal(t, def.Embedding.Timeout, cfg.Embedding.Timeout)
	assert.Equal(t, def.Cache.TTL, cfg.Cache.TTL)
	assert.Equal(t, def.HTTP.MaxBodyBytes, cfg.HTTP.MaxBodyBytes)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.True(t, cfg.Cache.Enabled)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("LAWLENS_EXTRACTION_THRESHOLD", "0.55")
	t.Setenv("LAWLENS_LLM_PROVIDER", "ollama")
	t.Setenv("LAWLENS_LLM_MODEL", "llama3.1")
	t.Setenv("LAWLENS_CACHE_TTL", "1h")
	t.Setenv("LAWLENS_CACHE_REDIS_ADDR", "localhost:6379")
	t.Setenv("OLLAMA_BASE_URL", "http://ollama:11434")

	cfg, err := loadConfig(newTestViper())
	require.NoError(t, err)

	assert.InDelta(t, 0.55, cfg.Extraction.Threshold, 1e-9)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "llama3.1", cfg.LLM.Model)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "localhost:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, "http://ollama:11434", cfg.LLM.BaseURL)
}

func TestLoadConfig_NoCache(t *testing.T) {
	v := newTestViper()
	v.Set("no_cache", true)

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.False(t, cfg.Cache.Enabled)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("extraction:\n  threshold: 0.6\noutput:\n  format: table\n"), 0o600))

	v := newTestViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, cfg.Extraction.Threshold, 1e-9)
	assert.Equal(t, "table", cfg.Output.Format)
	assert.Equal(t, 4, cfg.Concurrency.Workers)
}

func TestLoadConfig_Threshold(t *testing.T) {
	for _, tc := range []struct {
		value   string
		want    float64
		wantErr bool
	}{
		{value: "0", want: 0},
		{value: "1", want: 1},
		{value: "-0.1", wantErr: true},
		{value: "1.5", wantErr: true},
	} {
		t.Run(tc.value, func(t *testing.T) {
			t.Setenv("LAWLENS_EXTRACTION_THRESHOLD", tc.value)

			cfg, err := loadConfig(newTestViper())
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "extraction.threshold")
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tc.want, cfg.Extraction.Threshold, 1e-9)
		})
	}
}

func TestApplyProviderEnv(t *testing.T) {
	env := map[string]string{
		"OPENAI_API_KEY":    "sk-openai",
		"ANTHROPIC_API_KEY": "sk-ant",
		"GEMINI_API_KEY":    "gm-key",
	}
	getenv := func(k string) string { return env[k] }

	tests := []struct {
		provider string
		want     string
	}{
		{"openai", "sk-openai"},
		{"anthropic", "sk-ant"},
		{"claude", "sk-ant"},
		{"gemini", "gm-key"},
		{"ollama", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := model.DefaultConfig()
			cfg.LLM.Provider = tt.provider
			applyProviderEnv(cfg, getenv)
			assert.Equal(t, tt.want, cfg.LLM.APIKey)
		})
	}

	cfg := model.DefaultConfig()
	cfg.LLM.Provider = "openai"
	cfg.LLM.APIKey = "from-config"
	cfg.Embedding.Provider = "openai"
	applyProviderEnv(cfg, getenv)
	assert.Equal(t, "from-config", cfg.LLM.APIKey)
	assert.Equal(t, "sk-openai", cfg.Embedding.APIKey)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lawlens", "config.yaml")
	require.NoError(t, writeDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# LawLens Configuration File"))

	v := newTestViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig().Cache.TTL, cfg.Cache.TTL)

	err = writeDefaultConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestRedact(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.LLM.APIKey = "sk-secret"
	cfg.Cache.RedisPassword = "hunter2"

	out := redact(cfg)
	assert.Equal(t, "****", out.LLM.APIKey)
	assert.Equal(t, "****", out.Cache.RedisPassword)
	assert.Equal(t, "", out.Embedding.APIKey)
	assert.Equal(t, "sk-secret", cfg.LLM.APIKey, "original left intact")
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"master services agreement": "master-services-agreement",
		"a/b:c":                     "a_b_c",
		"..":                        "document",
		"":                          "document",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeFilename(in), in)
	}
	assert.Len(t, sanitizeFilename(strings.Repeat("x", 300)), 100)
}

func TestUniqueName(t *testing.T) {
	used := map[string]int{}
	assert.Equal(t, "nda", uniqueName("nda", used))
	assert.Equal(t, "nda-2", uniqueName("nda", used))
	assert.Equal(t, "msa", uniqueName("msa", used))
	assert.Equal(t, "nda-3", uniqueName("nda", used))
}

func TestWriteBatchReports(t *testing.T) {
	orig := outputDir
	outputDir = t.TempDir()
	defer func() { outputDir = orig }()

	report := &model.Report{Subject: "lease", Clauses: []model.ExtractedClause{{Title: "Termination", Risk: model.RiskLow}}}
	results := []*worker.DocumentResult{
		{Index: 0, Source: "a/lease.txt", Report: report},
		{Index: 1, Source: "b/lease.txt", Report: report},
		{Index: 2, Source: "missing.txt", Error: os.ErrNotExist},
	}

	ok, failed := writeBatchReports(results, pipeline.NewRenderer(false), "json")
	assert.Equal(t, 2, ok)
	assert.Equal(t, 1, failed)
	assert.FileExists(t, filepath.Join(outputDir, "lease.json"))
	assert.FileExists(t, filepath.Join(outputDir, "lease-2.json"))
}

func TestCatalogYAMLRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCatalogYAML(&buf, taxonomy.DefaultCatalog()))

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	loaded, err := taxonomy.LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, taxonomy.DefaultCatalog(), loaded)
}

func TestCatalogTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCatalogTable(&buf, taxonomy.DefaultCatalog()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "TYPE"))
	assert.Contains(t, out, "Indemnification")
	assert.Contains(t, out, "high")
	assert.Contains(t, out, "Governing Law")
}

func TestEmbedText(t *testing.T) {
	enc := embedtest.NewKeyword(nil)

	out, err := embedText(context.Background(), enc, "The parties shall indemnify each other.", "")
	require.NoError(t, err)
	assert.Equal(t, "keyword-test", out.Model)
	assert.Equal(t, len(embedtest.ClauseKeywords), out.Dimension)
	assert.Nil(t, out.Similarity)

	out, err = embedText(context.Background(), enc, "governed by the laws of India", "governed by the laws of Delaware")
	require.NoError(t, err)
	require.NotNil(t, out.Similarity)
	assert.InDelta(t, 1.0, *out.Similarity, 1e-6)
}

func TestEmbedText_Error(t *testing.T) {
	_, err := embedText(context.Background(), embedtest.NewFailing(0), "text", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encode:")
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	defer versionCmd.SetOut(nil)

	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "lawlens v"+Version+"\n", buf.String())
}
