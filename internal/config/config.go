package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Search     SearchConfig     `yaml:"search" mapstructure:"search"`
	Google     GoogleConfig     `yaml:"google" mapstructure:"google"`
	Jina       JinaConfig       `yaml:"jina" mapstructure:"jina"`
	Extract    ExtractConfig    `yaml:"extract" mapstructure:"extract"`
	Enrich     EnrichConfig     `yaml:"enrich" mapstructure:"enrich"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai" mapstructure:"openai"`
	Trace      TraceConfig      `yaml:"trace" mapstructure:"trace"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// SearchConfig configures the people search step.
type SearchConfig struct {
	Provider    string `yaml:"provider" mapstructure:"provider"`
	MaxResults  int    `yaml:"max_results" mapstructure:"max_results"`
	DelayMs     int    `yaml:"delay_ms" mapstructure:"delay_ms"`
	Retries     int    `yaml:"retries" mapstructure:"retries"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// GoogleConfig holds Google Custom Search credentials.
type GoogleConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	CseID   string `yaml:"cse_id" mapstructure:"cse_id"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// JinaConfig holds Jina search settings.
type JinaConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// ExtractConfig configures profile extraction and validation.
type ExtractConfig struct {
	AIEnabled      bool     `yaml:"ai_enabled" mapstructure:"ai_enabled"`
	Provider       string   `yaml:"provider" mapstructure:"provider"`
	RequiredFields []string `yaml:"required_fields" mapstructure:"required_fields"`
	PhoneRegion    string   `yaml:"phone_region" mapstructure:"phone_region"`
}

// EnrichConfig configures company enrichment.
type EnrichConfig struct {
	Provider     string `yaml:"provider" mapstructure:"provider"`
	Concurrency  int    `yaml:"concurrency" mapstructure:"concurrency"`
	Limit        int    `yaml:"limit" mapstructure:"limit"`
	GuessDomains bool   `yaml:"guess_domains" mapstructure:"guess_domains"`
}

// PerplexityConfig holds Perplexity API settings.
type PerplexityConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// OpenAIConfig holds OpenAI-compatible API settings.
type OpenAIConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// TraceConfig configures the JSONL trace of LLM calls.
type TraceConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// Load reads configuration from .env, config.yaml and the environment.
func Load() (*Config, error) {
	// .env is optional; variables already set in the environment win.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "leads.db")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("search.provider", "google")
	v.SetDefault("search.max_results", 10)
	v.SetDefault("search.delay_ms", 1000)
	v.SetDefault("search.retries", 3)
	v.SetDefault("search.timeout_secs", 30)
	v.SetDefault("google.key", "")
	v.SetDefault("google.cse_id", "")
	v.SetDefault("google.base_url", "")
	v.SetDefault("jina.key", "")
	v.SetDefault("jina.search_base_url", "https://s.jina.ai")
	v.SetDefault("extract.ai_enabled", false)
	v.SetDefault("extract.provider", "anthropic")
	v.SetDefault("extract.required_fields", []string{"name", "profile_url"})
	v.SetDefault("extract.phone_region", "DE")
	v.SetDefault("enrich.provider", "stub")
	v.SetDefault("enrich.concurrency", 2)
	v.SetDefault("enrich.limit", 50)
	v.SetDefault("enrich.guess_domains", false)
	v.SetDefault("perplexity.key", "")
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar-pro")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("openai.key", "")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("trace.enabled", false)
	v.SetDefault("trace.path", "logs/llm_calls.jsonl")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Modes are
// "store" (any command touching the database), "ingest" and "enrich".
// All problems are reported together.
func (c *Config) Validate(mode string) error {
	var errs []string
	oneOf := func(key, val string, allowed ...string) {
		if !slices.Contains(allowed, val) {
			errs = append(errs, fmt.Sprintf("%s must be one of %s, got %q", key, strings.Join(allowed, "|"), val))
		}
	}
	required := func(key, val string) {
		if strings.TrimSpace(val) == "" {
			errs = append(errs, key+" is required")
		}
	}

	oneOf("store.driver", c.Store.Driver, "sqlite", "postgres")
	oneOf("log.format", c.Log.Format, "json", "console")
	required("store.database_url", c.Store.DatabaseURL)

	switch mode {
	case "store":
	case "ingest":
		oneOf("search.provider", c.Search.Provider, "google", "jina")
		switch c.Search.Provider {
		case "google":
			required("google.key", c.Google.Key)
			required("google.cse_id", c.Google.CseID)
		case "jina":
			required("jina.key", c.Jina.Key)
		}
		if c.Search.MaxResults <= 0 {
			errs = append(errs, "search.max_results must be > 0")
		}
		if c.Extract.AIEnabled {
			oneOf("extract.provider", c.Extract.Provider, "anthropic", "openai")
			c.requireLLMKey(c.Extract.Provider, required)
		}
	case "enrich":
		oneOf("enrich.provider", c.Enrich.Provider, "stub", "perplexity", "anthropic", "openai")
		c.requireLLMKey(c.Enrich.Provider, required)
		if c.Enrich.Concurrency < 1 || c.Enrich.Concurrency > 16 {
			errs = append(errs, "enrich.concurrency must be between 1 and 16")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) requireLLMKey(provider string, required func(key, val string)) {
	switch provider {
	case "perplexity":
		required("perplexity.key", c.Perplexity.Key)
	case "anthropic":
		required("anthropic.key", c.Anthropic.Key)
	case "openai":
		required("openai.key", c.OpenAI.Key)
	}
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
