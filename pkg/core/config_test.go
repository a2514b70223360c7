package core_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayflow/dayflow-go/pkg/core"
	"github.com/dayflow/dayflow-go/pkg/intelligence"
)

func TestLoadConfigFromEnv(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		check   func(t *testing.T, cfg *core.Config)
	}{
		{
			name: "ollama with sqlite",
			envVars: map[string]string{
				"LLM_PROVIDER":     "ollama",
				"STORAGE_PROVIDER": "sqlite",
				"SQLITE_PATH":      "./test.db",
			},
			check: func(t *testing.T, cfg *core.Config) {
				assert.Equal(t, "ollama", cfg.LLM.Provider)
				assert.Equal(t, "gemma3:4b", cfg.LLM.Model)
				assert.Equal(t, "http://localhost:11434", cfg.LLM.BaseURL)
				assert.Equal(t, "./test.db", cfg.Storage.SQLitePath)
			},
		},
		{
			name: "deepseek with postgres",
			envVars: map[string]string{
				"LLM_PROVIDER":      "deepseek",
				"LLM_API_KEY":       "test-key",
				"STORAGE_PROVIDER":  "postgres",
				"POSTGRES_HOST":     "db.internal",
				"POSTGRES_PORT":     "6543",
				"POSTGRES_PASSWORD": "secret",
			},
			check: func(t *testing.T, cfg *core.Config) {
				assert.Equal(t, "deepseek-chat", cfg.LLM.Model)
				assert.Equal(t, "https://api.deepseek.com", cfg.LLM.BaseURL)
				assert.Equal(t, "test-key", cfg.LLM.APIKey)
				assert.Equal(t, "db.internal", cfg.Storage.Host)
				assert.Equal(t, 6543, cfg.Storage.Port)
				assert.Equal(t, "postgres", cfg.Storage.User)
				assert.Equal(t, "disable", cfg.Storage.SSLMode)
			},
		},
		{
			name: "lmstudio with mysql and timeline settings",
			envVars: map[string]string{
				"LLM_PROVIDER":                  "lmstudio",
				"LLM_MODEL":                     "qwen2.5-vl-7b",
				"LLM_TIMEOUT_SECONDS":           "60",
				"STORAGE_PROVIDER":              "mysql",
				"MYSQL_DATABASE":                "timeline",
				"TIMELINE_CHUNK_MINUTES":        "10",
				"TIMELINE_CONTEXT_MINUTES":      "20",
				"TIMELINE_USE_CONTEXT":          "false",
				"TIMELINE_MERGE_CARDS":          "false",
				"TIMELINE_CATEGORIES":           "Work, Study ,,Play",
				"TIMELINE_DISTRACTION_KEYWORDS": "tiktok",
				"FRAME_INTERVAL_SECONDS":        "15",
				"TRACE_DIR":                     "/tmp/trace",
			},
			check: func(t *testing.T, cfg *core.Config) {
				assert.Equal(t, "qwen2.5-vl-7b", cfg.LLM.Model)
				assert.Equal(t, "http://localhost:1234/v1", cfg.LLM.BaseURL)
				assert.Equal(t, time.Minute, cfg.LLM.Timeout())
				assert.Equal(t, 3306, cfg.Storage.Port)
				assert.Equal(t, "timeline", cfg.Storage.DBName)
				assert.Equal(t, 10, cfg.Timeline.ChunkMinutes)
				assert.Equal(t, 20, cfg.Timeline.ContextMinutes)
				assert.False(t, cfg.Timeline.UseContext)
				assert.False(t, cfg.Timeline.MergeCards)
				assert.Equal(t, []string{"Work", "Study", "Play"}, cfg.Timeline.Categories)
				assert.Equal(t, []string{"tiktok"}, cfg.Timeline.DistractionKeywords)
				assert.Equal(t, 15, cfg.Frames.IntervalSeconds)
				assert.Equal(t, "/tmp/trace", cfg.Trace.Dir)
			},
		},
		{
			name:    "defaults",
			envVars: map[string]string{},
			check: func(t *testing.T, cfg *core.Config) {
				assert.Equal(t, core.DefaultConfig(), cfg)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			config, err := core.LoadConfigFromEnv()
			require.NoError(t, err)
			require.NoError(t, config.Validate())
			tt.check(t, config)
		})
	}
}

func TestLoadConfigFromEnvRejectsBadNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("TIMELINE_CHUNK_MINUTES", "fifteen")

	_, err := core.LoadConfigFromEnv()
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestLoadConfigFromEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "dayflow.env")
	require.NoError(t, os.WriteFile(path, []byte("LLM_PROVIDER=anthropic\nLLM_API_KEY=sk-ant\nSTORAGE_PROVIDER=file\nFILE_STORAGE_DIR=/data/dayflow\n"), 0o644))
	t.Cleanup(func() {
		for _, key := range []string{"LLM_PROVIDER", "LLM_API_KEY", "STORAGE_PROVIDER", "FILE_STORAGE_DIR"} {
			_ = os.Unsetenv(key)
		}
	})

	config, err := core.LoadConfigFromEnvFile(path)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", config.LLM.Provider)
	assert.Equal(t, "claude-3-5-haiku-latest", config.LLM.Model)
	assert.Equal(t, "/data/dayflow", config.Storage.Dir)

	_, err = core.LoadConfigFromEnvFile(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoadConfigFromJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dayflow.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"llm": {"provider": "openai", "api_key": "sk-test", "model": "gpt-4o-mini"},
		"storage": {"provider": "sqlite", "sqlite_path": "./dayflow.db"},
		"timeline": {"chunk_minutes": 15, "context_minutes": 30, "use_context": true, "merge_cards": false}
	}`), 0o644))

	config, err := core.LoadConfigFromJSON(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", config.LLM.Model)
	assert.Equal(t, "sqlite", config.Storage.Provider)
	assert.False(t, config.Timeline.MergeCards)
	assert.Equal(t, 30, config.Frames.IntervalSeconds)
	assert.NoError(t, config.Validate())
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dayflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  provider: ollama
  model: gemma3:12b
storage:
  provider: postgres
  host: localhost
  port: 5432
  user: dayflow
  db_name: dayflow
timeline:
  chunk_minutes: 20
  categories: [Work, Personal, Distraction, Idle]
frames:
  interval_seconds: 10
`), 0o644))

	config, err := core.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "gemma3:12b", config.LLM.Model)
	assert.Equal(t, "dayflow", config.Storage.User)
	assert.Equal(t, 20, config.Timeline.ChunkMinutes)
	assert.Equal(t, 30, config.Timeline.ContextMinutes)
	assert.True(t, config.Timeline.UseContext)
	assert.Equal(t, []string{"Work", "Personal", "Distraction", "Idle"}, config.Timeline.Categories)
	assert.Equal(t, 10, config.Frames.IntervalSeconds)

	ic := config.IntelligenceConfig()
	assert.Equal(t, 20*time.Minute, ic.ChunkLength)
	assert.Equal(t, 30*time.Minute, ic.ContextLength)
	assert.Equal(t, "gemma3:12b", ic.Model)
	assert.Equal(t, intelligence.DefaultDistractionKeywords, ic.DistractionKeywords)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := core.LoadConfigFromJSON(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("llm: [unterminated"), 0o644))
	_, err = core.LoadConfigFromYAML(bad)
	assert.Error(t, err)

	_, err = core.LoadConfig(filepath.Join(dir, "dayflow.toml"))
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *core.Config)
		wantErr bool
	}{
		{name: "default", mutate: func(*core.Config) {}},
		{name: "missing llm provider", mutate: func(cfg *core.Config) { cfg.LLM.Provider = "" }, wantErr: true},
		{name: "unknown llm provider", mutate: func(cfg *core.Config) { cfg.LLM.Provider = "qwen" }, wantErr: true},
		{name: "missing storage provider", mutate: func(cfg *core.Config) { cfg.Storage.Provider = "" }, wantErr: true},
		{name: "zero chunk", mutate: func(cfg *core.Config) { cfg.Timeline.ChunkMinutes = 0 }, wantErr: true},
		{name: "negative context", mutate: func(cfg *core.Config) { cfg.Timeline.ContextMinutes = -1 }, wantErr: true},
		{name: "zero context", mutate: func(cfg *core.Config) { cfg.Timeline.ContextMinutes = 0 }},
		{name: "blank category", mutate: func(cfg *core.Config) { cfg.Timeline.Categories = []string{"Work", " "} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := core.DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// clearEnv unsets every variable LoadConfigFromEnv reads for the duration of t.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LLM_PROVIDER", "LLM_API_KEY", "LLM_MODEL", "LLM_BASE_URL", "LLM_TIMEOUT_SECONDS",
		"STORAGE_PROVIDER", "STORAGE_TABLE_PREFIX", "FILE_STORAGE_DIR", "SQLITE_PATH",
		"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DATABASE", "POSTGRES_SSLMODE",
		"MYSQL_HOST", "MYSQL_PORT", "MYSQL_USER", "MYSQL_PASSWORD", "MYSQL_DATABASE",
		"TIMELINE_CHUNK_MINUTES", "TIMELINE_CONTEXT_MINUTES", "TIMELINE_USE_CONTEXT", "TIMELINE_MERGE_CARDS",
		"TIMELINE_CATEGORIES", "TIMELINE_DISTRACTION_KEYWORDS",
		"FRAME_INTERVAL_SECONDS", "FFMPEG_PATH", "FFPROBE_PATH", "TRACE_DIR",
	} {
		key := key
		if value, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { _ = os.Setenv(key, value) })
			_ = os.Unsetenv(key)
		}
	}
}
