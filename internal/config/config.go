package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Logging
	LogLevel  string
	LogFormat string

	// LLM provider
	LLMProvider       string
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterBaseURL string
	AnthropicAPIKey   string
	AnthropicModel    string
	GoogleAPIKey      string
	GeminiModel       string
	LLMTemperature    float64
	LLMMaxTokens      int
	LLMTimeout        time.Duration

	// LaTeX compiler
	CompilerURL         string
	CompilerEngine      string
	CompileTimeout      time.Duration
	CompileAfterRewrite bool

	// Workspace persistence
	StoreBackend      string
	StatePath         string
	DatabaseURL       string
	WorkspaceID       string
	KnowledgeSeedPath string

	// Event publishing
	EventsBackend string
	RabbitMQURL   string
	AMQPExchange  string
	KafkaBrokers  []string
	KafkaTopic    string

	// Artifact storage
	ArtifactBackend string
	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	R2AccountID     string
	S3AccessKey     string
	S3SecretKey     string

	// Worker pool
	WorkerCount          int
	MaxQueueSize         int
	MaxConcurrentRewrite int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Agent
	ChatHistoryLimit int
	SearchTopK       int
}

const (
	ProviderNone       = "none"
	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic"
	ProviderGemini     = "gemini"
)

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("RESUMENESS_API_KEY"),

		LogLevel:  envOr("LOG_LEVEL", "info"),
		LogFormat: envOr("LOG_FORMAT", "json"),

		LLMProvider:       strings.ToLower(os.Getenv("LLM_PROVIDER")),
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:   envOr("OPENROUTER_MODEL", "mistral-7b"),
		OpenRouterBaseURL: envOr("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:    envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		GoogleAPIKey:      os.Getenv("GOOGLE_API_KEY"),
		GeminiModel:       envOr("GEMINI_MODEL", "gemini-2.5-flash"),
		LLMTemperature:    envFloat("LLM_TEMPERATURE", 0.7),
		LLMMaxTokens:      envInt("LLM_MAX_TOKENS", 2048),
		LLMTimeout:        envDuration("LLM_TIMEOUT", 120*time.Second),

		CompilerURL:         envOr("COMPILER_URL", "https://latex.ytotech.com/builds/sync"),
		CompilerEngine:      envOr("COMPILER_ENGINE", "pdflatex"),
		CompileTimeout:      envDuration("COMPILE_TIMEOUT", 60*time.Second),
		CompileAfterRewrite: envBool("COMPILE_AFTER_REWRITE", false),

		StoreBackend:      strings.ToLower(envOr("STORE_BACKEND", "file")),
		StatePath:         envOr("STATE_PATH", "resumeness-state.json"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		WorkspaceID:       envOr("WORKSPACE_ID", "default"),
		KnowledgeSeedPath: os.Getenv("KNOWLEDGE_SEED_PATH"),

		EventsBackend: strings.ToLower(envOr("EVENTS_BACKEND", "none")),
		RabbitMQURL:   os.Getenv("RABBITMQ_URL"),
		AMQPExchange:  envOr("AMQP_EXCHANGE", "workspace_updates"),
		KafkaBrokers:  splitAndTrim(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:    envOr("KAFKA_TOPIC", "resumeness.events"),

		ArtifactBackend: strings.ToLower(envOr("ARTIFACT_BACKEND", "none")),
		S3Bucket:        os.Getenv("S3_BUCKET"),
		S3Region:        envOr("S3_REGION", "auto"),
		S3Endpoint:      os.Getenv("S3_ENDPOINT"),
		R2AccountID:     os.Getenv("R2_ACCOUNT_ID"),
		S3AccessKey:     os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:     os.Getenv("S3_SECRET_KEY"),

		WorkerCount:          envInt("WORKER_COUNT", 2),
		MaxQueueSize:         envInt("MAX_QUEUE_SIZE", 50),
		MaxConcurrentRewrite: envInt("MAX_CONCURRENT_REWRITE", 3),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		ChatHistoryLimit: envInt("CHAT_HISTORY_LIMIT", 10),
		SearchTopK:       envInt("SEARCH_TOP_K", 5),
	}

	if cfg.LLMProvider == "" {
		if cfg.OpenRouterAPIKey != "" {
			cfg.LLMProvider = ProviderOpenRouter
		} else {
			cfg.LLMProvider = ProviderNone
		}
	}
	if cfg.LLMMaxTokens <= 0 {
		cfg.LLMMaxTokens = 2048
	}
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = 120 * time.Second
	}
	if cfg.CompileTimeout <= 0 {
		cfg.CompileTimeout = 60 * time.Second
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.MaxConcurrentRewrite <= 0 {
		cfg.MaxConcurrentRewrite = 3
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.ChatHistoryLimit <= 0 {
		cfg.ChatHistoryLimit = 10
	}
	if cfg.SearchTopK <= 0 {
		cfg.SearchTopK = 5
	}

	return cfg
}

func (c Config) Validate() error {
	switch c.LLMProvider {
	case ProviderNone:
	case ProviderOpenRouter:
		if c.OpenRouterAPIKey == "" {
			return fmt.Errorf("OPENROUTER_API_KEY is required for provider %q", c.LLMProvider)
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for provider %q", c.LLMProvider)
		}
	case ProviderGemini:
		if c.GoogleAPIKey == "" {
			return fmt.Errorf("GOOGLE_API_KEY is required for provider %q", c.LLMProvider)
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}

	switch c.StoreBackend {
	case "file":
		if c.StatePath == "" {
			return fmt.Errorf("STATE_PATH is required for file store")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for postgres store")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	switch c.EventsBackend {
	case "none":
	case "amqp":
		if c.RabbitMQURL == "" {
			return fmt.Errorf("RABBITMQ_URL is required for amqp events")
		}
	case "kafka":
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required for kafka events")
		}
	default:
		return fmt.Errorf("unknown EVENTS_BACKEND %q", c.EventsBackend)
	}

	switch c.ArtifactBackend {
	case "none", "memory":
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for s3 artifacts")
		}
		if c.S3AccessKey == "" || c.S3SecretKey == "" {
			return fmt.Errorf("S3_ACCESS_KEY and S3_SECRET_KEY are required for s3 artifacts")
		}
	default:
		return fmt.Errorf("unknown ARTIFACT_BACKEND %q", c.ArtifactBackend)
	}

	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitAndTrim(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
