package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/lawlens/internal/logging"
	"github.com/ppiankov/lawlens/internal/model"
)

// Version is set at build time with -ldflags.
var Version = "0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "lawlens",
	Short: "LawLens - clause extraction for legal documents",
	Long: `LawLens splits a legal document into paragraphs, matches each paragraph
against a catalog of clause types by semantic similarity, and reports the
clauses it finds with a short description, a risk level and a section label.

It is a reading aid, not legal advice.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx, which commands use as their parent.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for LawLens.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "lawlens v%s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.lawlens/config.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-format", "", "log format (json, console)")
	pf.String("llm-provider", "", "summarizer provider (openai, anthropic, ollama, gemini, none)")
	pf.String("llm-model", "", "summarizer model name")
	pf.String("embedding-provider", "", "embedding provider (onnx, openai, ollama)")
	pf.String("catalog", "", "YAML file overriding clause anchors")
	pf.Bool("no-cache", false, "disable embedding and description caches")
	pf.String("metrics-file", "", "write Prometheus metrics to this textfile after the run")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", pf.Lookup("verbose"))
	_ = viper.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("log.format", pf.Lookup("log-format"))
	_ = viper.BindPFlag("llm.provider", pf.Lookup("llm-provider"))
	_ = viper.BindPFlag("llm.model", pf.Lookup("llm-model"))
	_ = viper.BindPFlag("embedding.provider", pf.Lookup("embedding-provider"))
	_ = viper.BindPFlag("extraction.catalog_path", pf.Lookup("catalog"))
	_ = viper.BindPFlag("metrics.textfile_path", pf.Lookup("metrics-file"))
	_ = viper.BindPFlag("no_cache", pf.Lookup("no-cache"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".lawlens"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match LAWLENS_*
	setupEnv(viper.GetViper())

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setupEnv maps LAWLENS_SECTION_KEY to section.key and registers every
// default so environment overrides reach Unmarshal.
func setupEnv(v *viper.Viper) {
	v.SetEnvPrefix("LAWLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	registerDefaults(v, model.DefaultConfig())
}

// optionalKeys are omitempty fields, missing from the marshalled defaults.
var optionalKeys = []string{
	"embedding.api_key", "embedding.base_url", "embedding.ort_library_path",
	"llm.api_key", "llm.base_url", "llm.http_proxy", "llm.https_proxy",
	"cache.redis_addr", "cache.redis_password",
	"http.http_proxy", "http.https_proxy",
	"extraction.catalog_path", "metrics.textfile_path",
}

func registerDefaults(v *viper.Viper, cfg *model.Config) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return
	}
	flatten("", tree, func(key string, val any) { v.SetDefault(key, val) })
	for _, key := range optionalKeys {
		v.SetDefault(key, "")
	}
}

func flatten(prefix string, tree map[string]any, set func(string, any)) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			flatten(key, sub, set)
			continue
		}
		set(key, val)
	}
}

// loadConfig resolves the effective configuration from v.
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if v.GetBool("no_cache") {
		cfg.Cache.Enabled = false
	}
	if t := cfg.Extraction.Threshold; t < 0 || t > 1 {
		return nil, fmt.Errorf("extraction.threshold must be between 0 and 1, got %v", t)
	}
	applyProviderEnv(cfg, os.Getenv)
	return cfg, nil
}

// applyProviderEnv fills API keys and endpoints from the providers' own
// environment variables when the config leaves them empty.
func applyProviderEnv(cfg *model.Config, getenv func(string) string) {
	if cfg.LLM.APIKey == "" {
		switch strings.ToLower(cfg.LLM.Provider) {
		case "openai":
			cfg.LLM.APIKey = getenv("OPENAI_API_KEY")
		case "anthropic", "claude":
			cfg.LLM.APIKey = getenv("ANTHROPIC_API_KEY")
		case "gemini", "google":
			cfg.LLM.APIKey = getenv("GEMINI_API_KEY")
		}
	}
	if cfg.LLM.BaseURL == "" && strings.EqualFold(cfg.LLM.Provider, "ollama") {
		cfg.LLM.BaseURL = getenv("OLLAMA_BASE_URL")
	}

	if cfg.Embedding.APIKey == "" && strings.EqualFold(cfg.Embedding.Provider, "openai") {
		cfg.Embedding.APIKey = getenv("OPENAI_API_KEY")
	}
	if cfg.Embedding.BaseURL == "" && strings.EqualFold(cfg.Embedding.Provider, "ollama") {
		cfg.Embedding.BaseURL = getenv("OLLAMA_BASE_URL")
	}
}

// newLogger builds the process logger from the log section.
func newLogger(cfg *model.Config) (logging.Logger, error) {
	level := cfg.Log.Level
	if cfg.Output.Verbose && strings.EqualFold(level, "warn") {
		level = "info"
	}
	logger, err := logging.NewLogger(logging.Config{Level: level, Format: cfg.Log.Format})
	if err != nil {
		return nil, err
	}
	logging.SetDefault(logger)
	return logger, nil
}
