package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "leads.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "google", cfg.Search.Provider)
	assert.Equal(t, 10, cfg.Search.MaxResults)
	assert.Equal(t, 1000, cfg.Search.DelayMs)
	assert.Equal(t, 3, cfg.Search.Retries)
	assert.Equal(t, "https://s.jina.ai", cfg.Jina.SearchBaseURL)
	assert.False(t, cfg.Extract.AIEnabled)
	assert.Equal(t, []string{"name", "profile_url"}, cfg.Extract.RequiredFields)
	assert.Equal(t, "DE", cfg.Extract.PhoneRegion)
	assert.Equal(t, "stub", cfg.Enrich.Provider)
	assert.Equal(t, 2, cfg.Enrich.Concurrency)
	assert.Equal(t, 50, cfg.Enrich.Limit)
	assert.Equal(t, "sonar-pro", cfg.Perplexity.Model)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.False(t, cfg.Trace.Enabled)
	assert.Equal(t, "logs/llm_calls.jsonl", cfg.Trace.Path)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/leads
log:
  level: debug
  format: console
search:
  provider: jina
  max_results: 25
enrich:
  provider: perplexity
  concurrency: 4
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/leads", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "jina", cfg.Search.Provider)
	assert.Equal(t, 25, cfg.Search.MaxResults)
	assert.Equal(t, "perplexity", cfg.Enrich.Provider)
	assert.Equal(t, 4, cfg.Enrich.Concurrency)
	// Defaults still apply for unset values
	assert.Equal(t, 1000, cfg.Search.DelayMs)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	t.Setenv("LEADS_STORE_DRIVER", "postgres")
	t.Setenv("LEADS_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("LEADS_ENRICH_CONCURRENCY", "6")
	t.Setenv("LEADS_ANTHROPIC_KEY", "sk-ant-env")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Enrich.Concurrency)
	assert.Equal(t, "sk-ant-env", cfg.Anthropic.Key)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LEADS_PERPLEXITY_KEY=pplx-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("LEADS_PERPLEXITY_KEY") }) //nolint:errcheck

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "pplx-dotenv", cfg.Perplexity.Key)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("store: [unclosed"), 0o644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = "leads.db"
	cfg.Log.Format = "json"
	cfg.Search.Provider = "google"
	cfg.Search.MaxResults = 10
	cfg.Extract.Provider = "anthropic"
	cfg.Enrich.Provider = "stub"
	cfg.Enrich.Concurrency = 2
	return cfg
}

func TestValidateStore(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("store"))

	cfg.Store.Driver = "mysql"
	cfg.Store.DatabaseURL = ""
	err := cfg.Validate("store")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be one of sqlite|postgres")
	assert.Contains(t, err.Error(), "store.database_url is required")
}

func TestValidateIngest_Google(t *testing.T) {
	cfg := validDefaults()

	err := cfg.Validate("ingest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "google.key is required")
	assert.Contains(t, err.Error(), "google.cse_id is required")

	cfg.Google.Key = "g-key"
	cfg.Google.CseID = "cse"
	assert.NoError(t, cfg.Validate("ingest"))
}

func TestValidateIngest_Jina(t *testing.T) {
	cfg := validDefaults()
	cfg.Search.Provider = "jina"

	err := cfg.Validate("ingest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jina.key is required")

	cfg.Jina.Key = "jina-key"
	assert.NoError(t, cfg.Validate("ingest"))
}

func TestValidateIngest_AIAssistant(t *testing.T) {
	cfg := validDefaults()
	cfg.Google.Key = "g-key"
	cfg.Google.CseID = "cse"
	cfg.Extract.AIEnabled = true
	cfg.Extract.Provider = "openai"

	err := cfg.Validate("ingest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai.key is required")

	cfg.OpenAI.Key = "sk-openai"
	assert.NoError(t, cfg.Validate("ingest"))
}

func TestValidateEnrich(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("enrich"))

	cfg.Enrich.Provider = "perplexity"
	err := cfg.Validate("enrich")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "perplexity.key is required")

	cfg.Perplexity.Key = "pplx"
	cfg.Enrich.Concurrency = 0
	err = cfg.Validate("enrich")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enrich.concurrency must be between 1 and 16")

	cfg.Enrich.Concurrency = 16
	assert.NoError(t, cfg.Validate("enrich"))

	cfg.Enrich.Provider = "gemini"
	err = cfg.Validate("enrich")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enrich.provider must be one of")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
