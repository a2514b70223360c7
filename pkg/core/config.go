// Package core provides the Dayflow pipeline client: it wires an inference
// provider, a store and a frame source into the timeline components.
package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dayflow/dayflow-go/pkg/frames"
	"github.com/dayflow/dayflow-go/pkg/intelligence"
	"github.com/dayflow/dayflow-go/pkg/llm"
	"github.com/dayflow/dayflow-go/pkg/schedule"
)

// Config contains the complete configuration for a Dayflow client.
//
// It includes settings for:
//   - LLM provider (captions, segment merging, cards, merge decisions)
//   - Storage (observation cache, cards, call log)
//   - Timeline construction (chunking, categories, consolidation)
//   - Frame sampling (ffmpeg tools and interval)
//   - Trace output (raw prompts and responses)
//
// Example:
//
//	config := &core.Config{
//	    LLM: core.LLMConfig{
//	        Provider: "lmstudio",
//	        Model:    "google/gemma-3n-e4b",
//	    },
//	    Storage: core.StorageConfig{
//	        Provider: "sqlite",
//	        SQLitePath: "./dayflow.db",
//	    },
//	}
type Config struct {
	// LLM contains inference provider configuration.
	LLM LLMConfig `json:"llm" yaml:"llm"`

	// Storage contains store configuration.
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Timeline contains timeline construction settings.
	Timeline TimelineConfig `json:"timeline" yaml:"timeline"`

	// Frames contains frame sampling settings.
	Frames FramesConfig `json:"frames" yaml:"frames"`

	// Trace contains raw prompt/response tracing settings (optional).
	Trace TraceConfig `json:"trace" yaml:"trace"`
}

// LLMConfig contains configuration for the inference provider.
//
// Supported providers: openai, lmstudio, deepseek, ollama, anthropic
type LLMConfig struct {
	// Provider is the provider name.
	Provider string `json:"provider" yaml:"provider"`

	// APIKey is the API key (optional for local servers).
	APIKey string `json:"api_key" yaml:"api_key"`

	// Model is the model name to use.
	Model string `json:"model" yaml:"model"`

	// BaseURL is the API base URL (optional, uses provider default if empty).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// TimeoutSeconds bounds every inference call. Default: 300
	TimeoutSeconds int `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
}

// Timeout returns the per-call timeout.
func (c LLMConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return llm.DefaultCallTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// StorageConfig contains configuration for the store.
//
// Supported providers: file, sqlite, postgres, mysql
type StorageConfig struct {
	// Provider is the store provider name.
	Provider string `json:"provider" yaml:"provider"`

	// Dir is the output directory of the file store.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// SQLitePath is the SQLite database file.
	SQLitePath string `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty"`

	// Host, Port, User, Password, DBName and SSLMode address a
	// PostgreSQL or MySQL server.
	Host     string `json:"host,omitempty" yaml:"host,omitempty"`
	Port     int    `json:"port,omitempty" yaml:"port,omitempty"`
	User     string `json:"user,omitempty" yaml:"user,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	DBName   string `json:"db_name,omitempty" yaml:"db_name,omitempty"`
	SSLMode  string `json:"ssl_mode,omitempty" yaml:"ssl_mode,omitempty"`

	// TablePrefix is prepended to SQL table names. Default: "dayflow_"
	TablePrefix string `json:"table_prefix,omitempty" yaml:"table_prefix,omitempty"`
}

// TimelineConfig contains timeline construction settings.
type TimelineConfig struct {
	// ChunkMinutes is the window one card is generated for. Default: 15
	ChunkMinutes int `json:"chunk_minutes" yaml:"chunk_minutes"`

	// ContextMinutes is the trailing context window. Default: 30
	ContextMinutes int `json:"context_minutes" yaml:"context_minutes"`

	// UseContext selects the context-aware card generator. Default: true
	UseContext bool `json:"use_context" yaml:"use_context"`

	// MergeCards enables consolidation of adjacent cards. Default: true
	MergeCards bool `json:"merge_cards" yaml:"merge_cards"`

	// Categories is the closed category set (optional).
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`

	// DistractionKeywords veto merges (optional, defaults apply if nil).
	DistractionKeywords []string `json:"distraction_keywords,omitempty" yaml:"distraction_keywords,omitempty"`
}

// FramesConfig contains frame sampling settings.
type FramesConfig struct {
	// IntervalSeconds is the spacing between sampled frames. Default: 30
	IntervalSeconds int `json:"interval_seconds" yaml:"interval_seconds"`

	// FFmpegPath and FFprobePath default to the tools on PATH.
	FFmpegPath  string `json:"ffmpeg_path,omitempty" yaml:"ffmpeg_path,omitempty"`
	FFprobePath string `json:"ffprobe_path,omitempty" yaml:"ffprobe_path,omitempty"`
}

// TraceConfig contains trace output settings.
type TraceConfig struct {
	// Dir receives per-unit raw prompts and responses. Empty disables tracing.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// DefaultConfig returns a configuration for a local LM Studio server and
// a file store under ./debug_output.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:       "lmstudio",
			Model:          "google/gemma-3n-e4b",
			BaseURL:        "http://localhost:1234/v1",
			TimeoutSeconds: int(llm.DefaultCallTimeout / time.Second),
		},
		Storage: StorageConfig{
			Provider: "file",
			Dir:      "./debug_output",
		},
		Timeline: TimelineConfig{
			ChunkMinutes:   int(schedule.DefaultChunkLength / time.Minute),
			ContextMinutes: int(schedule.DefaultContextLength / time.Minute),
			UseContext:     true,
			MergeCards:     true,
		},
		Frames: FramesConfig{
			IntervalSeconds: int(frames.DefaultInterval / time.Second),
		},
	}
}

// IntelligenceConfig converts the timeline settings into the configuration
// of the timeline components.
func (c *Config) IntelligenceConfig() *intelligence.Config {
	cfg := intelligence.DefaultConfig()
	cfg.Model = c.LLM.Model
	if c.Timeline.ChunkMinutes > 0 {
		cfg.ChunkLength = time.Duration(c.Timeline.ChunkMinutes) * time.Minute
	}
	if c.Timeline.ContextMinutes >= 0 {
		cfg.ContextLength = time.Duration(c.Timeline.ContextMinutes) * time.Minute
	}
	cfg.HistoricalContext = c.Timeline.UseContext
	cfg.Merging = c.Timeline.MergeCards
	if len(c.Timeline.Categories) > 0 {
		cfg.Categories = append([]string(nil), c.Timeline.Categories...)
	}
	if c.Timeline.DistractionKeywords != nil {
		cfg.DistractionKeywords = append([]string(nil), c.Timeline.DistractionKeywords...)
	}
	return cfg
}

// LoadConfigFromEnv loads configuration from environment variables.
//
// The function:
//  1. Searches for .env or .env.example files (up to 5 directory levels up)
//  2. Loads environment variables from the found file
//  3. Parses environment variables into a Config struct
//
// Supported environment variables:
//   - LLM_PROVIDER (openai, lmstudio, deepseek, ollama, anthropic)
//   - LLM_API_KEY, LLM_MODEL, LLM_BASE_URL, LLM_TIMEOUT_SECONDS
//   - STORAGE_PROVIDER (file, sqlite, postgres, mysql)
//   - FILE_STORAGE_DIR, SQLITE_PATH, STORAGE_TABLE_PREFIX
//   - POSTGRES_HOST, POSTGRES_PORT, POSTGRES_USER, POSTGRES_PASSWORD, POSTGRES_DATABASE, POSTGRES_SSLMODE
//   - MYSQL_HOST, MYSQL_PORT, MYSQL_USER, MYSQL_PASSWORD, MYSQL_DATABASE
//   - TIMELINE_CHUNK_MINUTES, TIMELINE_CONTEXT_MINUTES, TIMELINE_USE_CONTEXT, TIMELINE_MERGE_CARDS
//   - TIMELINE_CATEGORIES, TIMELINE_DISTRACTION_KEYWORDS (comma separated)
//   - FRAME_INTERVAL_SECONDS, FFMPEG_PATH, FFPROBE_PATH
//   - TRACE_DIR
//
// Returns a Config instance, or an error if a numeric or boolean variable
// cannot be parsed.
//
// Example:
//
//	config, err := core.LoadConfigFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
func LoadConfigFromEnv() (*Config, error) {
	envPath, found := FindEnvFile()
	if found {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	defaults := DefaultConfig()
	env := &envReader{}

	llmProvider := getEnvOrDefault("LLM_PROVIDER", defaults.LLM.Provider)
	var llmBaseURL, defaultModel string
	switch llmProvider {
	case "deepseek":
		llmBaseURL = "https://api.deepseek.com"
		defaultModel = "deepseek-chat"
	case "ollama":
		llmBaseURL = "http://localhost:11434"
		defaultModel = "gemma3:4b"
	case "anthropic":
		llmBaseURL = "https://api.anthropic.com"
		defaultModel = "claude-3-5-haiku-latest"
	case "openai":
		defaultModel = "gpt-4o-mini"
	default:
		llmBaseURL = defaults.LLM.BaseURL
		defaultModel = defaults.LLM.Model
	}

	storageProvider := getEnvOrDefault("STORAGE_PROVIDER", defaults.Storage.Provider)
	storage := StorageConfig{
		Provider:    storageProvider,
		TablePrefix: os.Getenv("STORAGE_TABLE_PREFIX"),
	}
	switch storageProvider {
	case "file":
		storage.Dir = getEnvOrDefault("FILE_STORAGE_DIR", defaults.Storage.Dir)
	case "sqlite":
		storage.SQLitePath = getEnvOrDefault("SQLITE_PATH", "./dayflow.db")
	case "postgres":
		storage.Host = getEnvOrDefault("POSTGRES_HOST", "localhost")
		storage.Port = env.getInt("POSTGRES_PORT", 5432)
		storage.User = getEnvOrDefault("POSTGRES_USER", "postgres")
		storage.Password = os.Getenv("POSTGRES_PASSWORD")
		storage.DBName = getEnvOrDefault("POSTGRES_DATABASE", "dayflow")
		storage.SSLMode = getEnvOrDefault("POSTGRES_SSLMODE", "disable")
	case "mysql":
		storage.Host = getEnvOrDefault("MYSQL_HOST", "127.0.0.1")
		storage.Port = env.getInt("MYSQL_PORT", 3306)
		storage.User = getEnvOrDefault("MYSQL_USER", "root")
		storage.Password = os.Getenv("MYSQL_PASSWORD")
		storage.DBName = getEnvOrDefault("MYSQL_DATABASE", "dayflow")
	}

	config := &Config{
		LLM: LLMConfig{
			Provider:       llmProvider,
			APIKey:         os.Getenv("LLM_API_KEY"),
			Model:          getEnvOrDefault("LLM_MODEL", defaultModel),
			BaseURL:        getEnvOrDefault("LLM_BASE_URL", llmBaseURL),
			TimeoutSeconds: env.getInt("LLM_TIMEOUT_SECONDS", defaults.LLM.TimeoutSeconds),
		},
		Storage: storage,
		Timeline: TimelineConfig{
			ChunkMinutes:        env.getInt("TIMELINE_CHUNK_MINUTES", defaults.Timeline.ChunkMinutes),
			ContextMinutes:      env.getInt("TIMELINE_CONTEXT_MINUTES", defaults.Timeline.ContextMinutes),
			UseContext:          env.getBool("TIMELINE_USE_CONTEXT", defaults.Timeline.UseContext),
			MergeCards:          env.getBool("TIMELINE_MERGE_CARDS", defaults.Timeline.MergeCards),
			Categories:          splitList(os.Getenv("TIMELINE_CATEGORIES")),
			DistractionKeywords: splitList(os.Getenv("TIMELINE_DISTRACTION_KEYWORDS")),
		},
		Frames: FramesConfig{
			IntervalSeconds: env.getInt("FRAME_INTERVAL_SECONDS", defaults.Frames.IntervalSeconds),
			FFmpegPath:      os.Getenv("FFMPEG_PATH"),
			FFprobePath:     os.Getenv("FFPROBE_PATH"),
		},
		Trace: TraceConfig{
			Dir: os.Getenv("TRACE_DIR"),
		},
	}

	if env.err != nil {
		return nil, NewTimelineError("LoadConfigFromEnv", env.err)
	}
	return config, nil
}

// LoadConfigFromEnvFile loads configuration from a specific .env file.
//
// Parameters:
//   - envPath: Path to the .env file
//
// Returns a Config instance, or an error if loading fails.
func LoadConfigFromEnvFile(envPath string) (*Config, error) {
	if err := godotenv.Load(envPath); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return LoadConfigFromEnv()
}

// LoadConfigFromJSON loads configuration from a JSON file.
// Fields absent from the file keep their DefaultConfig values.
//
// Parameters:
//   - path: Path to the JSON configuration file
//
// Returns a Config instance, or an error if loading or parsing fails.
func LoadConfigFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewTimelineError("LoadConfigFromJSON", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, NewTimelineError("LoadConfigFromJSON", err)
	}

	return config, nil
}

// LoadConfigFromYAML loads configuration from a YAML file.
// Fields absent from the file keep their DefaultConfig values.
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns a Config instance, or an error if loading or parsing fails.
func LoadConfigFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewTimelineError("LoadConfigFromYAML", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, NewTimelineError("LoadConfigFromYAML", err)
	}

	return config, nil
}

// LoadConfig loads a JSON or YAML configuration file, chosen by extension.
func LoadConfig(path string) (*Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadConfigFromYAML(path)
	case ".json":
		return LoadConfigFromJSON(path)
	default:
		return nil, NewTimelineError("LoadConfig", fmt.Errorf("%w: unsupported config file %s", ErrInvalidConfig, path))
	}
}

// Validate validates the configuration.
//
// Checks that:
//   - LLM provider is specified and known
//   - Storage provider is specified and known
//   - Timeline windows are positive
//   - Categories, if set, contain no blank names
//
// Returns an error if validation fails, nil otherwise.
func (c *Config) Validate() error {
	return c.validate(true, true)
}

// validate checks the configuration. Provider sections are skipped when
// the caller injects that collaborator itself.
func (c *Config) validate(requireLLM, requireStorage bool) error {
	invalid := func(format string, args ...interface{}) error {
		return NewTimelineError("Validate", fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidConfig}, args...)...))
	}

	if requireLLM {
		switch c.LLM.Provider {
		case "openai", "lmstudio", "deepseek", "ollama", "anthropic":
		case "":
			return invalid("llm provider is required")
		default:
			return invalid("unknown llm provider %q", c.LLM.Provider)
		}
	}

	if requireStorage {
		switch c.Storage.Provider {
		case "file", "sqlite", "postgres", "mysql":
		case "":
			return invalid("storage provider is required")
		default:
			return invalid("unknown storage provider %q", c.Storage.Provider)
		}
	}

	if c.Timeline.ChunkMinutes <= 0 {
		return invalid("chunk minutes must be positive")
	}
	if c.Timeline.ContextMinutes < 0 {
		return invalid("context minutes must not be negative")
	}
	for _, category := range c.Timeline.Categories {
		if strings.TrimSpace(category) == "" {
			return invalid("blank category")
		}
	}
	if c.Frames.IntervalSeconds < 0 {
		return invalid("frame interval must not be negative")
	}
	return nil
}

// getEnvOrDefault gets an environment variable or returns the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envReader parses typed environment variables, keeping the first error.
type envReader struct {
	err error
}

func (r *envReader) getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		if r.err == nil {
			r.err = fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, key, value)
		}
		return defaultValue
	}
	return n
}

func (r *envReader) getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		if r.err == nil {
			r.err = fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidConfig, key, value)
		}
		return defaultValue
	}
	return b
}

// splitList splits a comma separated list, dropping blanks. An unset
// variable yields nil.
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// FindEnvFile searches for .env or .env.example files.
//
// The search:
//  1. Checks the current directory
//  2. Searches up to 5 directory levels up
//  3. Returns the first .env or .env.example file found
//
// Returns:
//   - path: Path to the found file (empty if not found)
//   - found: True if a file was found, false otherwise
func FindEnvFile() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for i := 0; i < 5; i++ {
		for _, name := range []string{".env", ".env.example"} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, true
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", false
}
