package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dayflow/dayflow-go/pkg/frames"
	"github.com/dayflow/dayflow-go/pkg/intelligence"
	"github.com/dayflow/dayflow-go/pkg/llm"
	anthropicLLM "github.com/dayflow/dayflow-go/pkg/llm/anthropic"
	ollamaLLM "github.com/dayflow/dayflow-go/pkg/llm/ollama"
	openaiLLM "github.com/dayflow/dayflow-go/pkg/llm/openai"
	"github.com/dayflow/dayflow-go/pkg/storage"
	fileStore "github.com/dayflow/dayflow-go/pkg/storage/file"
	mysqlStore "github.com/dayflow/dayflow-go/pkg/storage/mysql"
	postgresStore "github.com/dayflow/dayflow-go/pkg/storage/postgres"
	sqliteStore "github.com/dayflow/dayflow-go/pkg/storage/sqlite"
	"github.com/dayflow/dayflow-go/pkg/trace"
)

// Client is the Dayflow pipeline client.
//
// It runs videos through the four pipeline stages (frame extraction,
// captioning, segment merging, timeline construction) and persists each
// stage's output per video. Operations run one at a time because the
// inference call log belongs to a single run.
//
// Example usage:
//
//	config, _ := core.LoadConfigFromEnv()
//	client, _ := core.NewClient(config)
//	defer client.Close()
//
//	result, err := client.ProcessVideo(ctx, "recordings/2024-05-01.mp4")
type Client struct {
	// config contains the client configuration.
	config *Config

	// llm records every inference call of the current run.
	llm *llm.Recorder

	// store persists observations, cards and call logs.
	store storage.Store

	// source turns a video into captions.
	source frames.Source

	// sink receives raw prompts and responses.
	sink trace.Sink

	merger  *intelligence.SegmentMerger
	builder *intelligence.TimelineBuilder

	now func() time.Time

	// mu serializes operations so each call log belongs to one run.
	mu sync.Mutex
}

// NewClient creates a new Dayflow client.
//
// The client is initialized with:
//   - Inference provider (OpenAI, LM Studio, DeepSeek, Ollama, Anthropic)
//   - Store (file, SQLite, PostgreSQL, MySQL)
//   - Frame source (ffmpeg sampling and captioning)
//   - Timeline components configured from cfg.Timeline
//
// Any collaborator passed as an option replaces the one built from cfg.
//
// Parameters:
//   - cfg: Configuration (uses DefaultConfig if nil)
//   - opts: Optional collaborators (provider, store, trace sink, frame source, clock, location)
//
// Returns a new Client instance, or an error if initialization fails.
func NewClient(cfg *Config, opts ...ClientOption) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	options := applyClientOptions(opts)

	if err := cfg.validate(options.Provider == nil, options.Store == nil); err != nil {
		return nil, err
	}

	provider := options.Provider
	if provider == nil {
		var err error
		provider, err = initLLM(cfg.LLM)
		if err != nil {
			return nil, NewTimelineError("NewClient", err)
		}
	}
	recorder, ok := provider.(*llm.Recorder)
	if !ok {
		recorder = llm.NewRecorder(provider, cfg.LLM.Model, cfg.LLM.Timeout())
	}

	store := options.Store
	if store == nil {
		var err error
		store, err = initStorage(cfg.Storage)
		if err != nil {
			_ = recorder.Close()
			return nil, NewTimelineError("NewClient", err)
		}
	}

	sink := options.TraceSink
	if sink == nil {
		if cfg.Trace.Dir != "" {
			sink = trace.NewDir(cfg.Trace.Dir)
		} else {
			sink = trace.Nop{}
		}
	}

	source := options.FrameSource
	if source == nil {
		source = &frames.VideoSource{
			Extractor: &frames.Extractor{
				FFmpegPath:  cfg.Frames.FFmpegPath,
				FFprobePath: cfg.Frames.FFprobePath,
				Interval:    time.Duration(cfg.Frames.IntervalSeconds) * time.Second,
			},
			Captioner: frames.NewCaptioner(recorder, sink),
			Trace:     sink,
		}
	}

	now := options.Clock
	if now == nil {
		now = time.Now
	}

	intelligenceConfig := cfg.IntelligenceConfig()
	intelligenceConfig.Model = recorder.Model()
	intelligenceConfig.Trace = sink
	if options.Location != nil {
		intelligenceConfig.Location = options.Location
	}

	return &Client{
		config:  cfg,
		llm:     recorder,
		store:   store,
		source:  source,
		sink:    sink,
		merger:  intelligence.NewSegmentMerger(recorder, intelligenceConfig),
		builder: intelligence.NewTimelineBuilder(recorder, intelligenceConfig),
		now:     now,
	}, nil
}

// Config returns the client configuration.
func (c *Client) Config() *Config {
	return c.config
}

// Store returns the client's store.
func (c *Client) Store() storage.Store {
	return c.store
}

// Calls returns the inference calls recorded since the log was last
// drained. ProcessVideo drains the log into the stored call log of its
// video, dropping calls left over from direct MergeCaptions or
// GenerateTimeline use.
func (c *Client) Calls() []llm.CallRecord {
	return c.llm.Calls()
}

// Close closes the client and releases all resources.
//
// This method:
//   - Closes the store
//   - Closes the inference provider
//
// Returns the first error encountered during cleanup, or nil if all resources
// were closed successfully.
func (c *Client) Close() error {
	var errs []error

	if c.store != nil {
		if err := c.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if c.llm != nil {
		if err := c.llm.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}

	return nil
}

// initStorage initializes the store.
func initStorage(cfg StorageConfig) (storage.Store, error) {
	switch cfg.Provider {
	case "file":
		return fileStore.NewStore(&fileStore.Config{Dir: cfg.Dir})
	case "sqlite":
		return sqliteStore.NewClient(&sqliteStore.Config{
			DBPath:      cfg.SQLitePath,
			TablePrefix: cfg.TablePrefix,
		})
	case "postgres":
		return postgresStore.NewClient(&postgresStore.Config{
			Host:        cfg.Host,
			Port:        cfg.Port,
			User:        cfg.User,
			Password:    cfg.Password,
			DBName:      cfg.DBName,
			SSLMode:     cfg.SSLMode,
			TablePrefix: cfg.TablePrefix,
		})
	case "mysql":
		return mysqlStore.NewClient(&mysqlStore.Config{
			Host:        cfg.Host,
			Port:        cfg.Port,
			User:        cfg.User,
			Password:    cfg.Password,
			DBName:      cfg.DBName,
			TablePrefix: cfg.TablePrefix,
		})
	default:
		return nil, fmt.Errorf("%w: unknown storage provider %q", ErrInvalidConfig, cfg.Provider)
	}
}

// initLLM initializes the inference provider. LM Studio and DeepSeek speak
// the OpenAI protocol and differ only in their default address.
func initLLM(cfg LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "openai":
		return openaiLLM.NewClient(&openaiLLM.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	case "lmstudio":
		return openaiLLM.NewClient(&openaiLLM.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: orDefault(cfg.BaseURL, "http://localhost:1234/v1"),
		})
	case "deepseek":
		return openaiLLM.NewClient(&openaiLLM.Config{
			APIKey:  cfg.APIKey,
			Model:   orDefault(cfg.Model, "deepseek-chat"),
			BaseURL: orDefault(cfg.BaseURL, "https://api.deepseek.com"),
		})
	case "ollama":
		return ollamaLLM.NewClient(&ollamaLLM.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	case "anthropic":
		return anthropicLLM.NewClient(&anthropicLLM.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	default:
		return nil, fmt.Errorf("%w: unknown llm provider %q", ErrInvalidConfig, cfg.Provider)
	}
}

func orDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

// persistCalls drains the call log and saves it for unit. The save
// outlives cancellation of ctx so a cancelled run still leaves its log.
func (c *Client) persistCalls(ctx context.Context, unit string) ([]llm.CallRecord, error) {
	calls := c.llm.Drain()
	if err := c.store.SaveCalls(context.WithoutCancel(ctx), unit, calls); err != nil {
		return calls, storageError("SaveCalls", err)
	}
	return calls, nil
}

// isNotFound reports whether err means the store has nothing for a unit.
func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
