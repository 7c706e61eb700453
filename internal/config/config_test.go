package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "RESUMENESS_API_KEY", "LOG_LEVEL", "LOG_FORMAT",
		"LLM_PROVIDER", "OPENROUTER_API_KEY", "OPENROUTER_MODEL", "ANTHROPIC_API_KEY", "GOOGLE_API_KEY",
		"LLM_TEMPERATURE", "LLM_MAX_TOKENS", "LLM_TIMEOUT",
		"STORE_BACKEND", "STATE_PATH", "DATABASE_URL",
		"EVENTS_BACKEND", "RABBITMQ_URL", "KAFKA_BROKERS", "KAFKA_TOPIC",
		"ARTIFACT_BACKEND", "S3_BUCKET", "S3_ACCESS_KEY", "S3_SECRET_KEY",
		"WORKER_COUNT", "MAX_QUEUE_SIZE", "MAX_CONCURRENT_REWRITE", "JOB_TTL",
		"CHAT_HISTORY_LIMIT", "SEARCH_TOP_K",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	require.Equal(t, "8090", cfg.Port)
	require.Equal(t, ProviderNone, cfg.LLMProvider)
	require.Equal(t, "mistral-7b", cfg.OpenRouterModel)
	require.Equal(t, 0.7, cfg.LLMTemperature)
	require.Equal(t, 2048, cfg.LLMMaxTokens)
	require.Equal(t, "https://latex.ytotech.com/builds/sync", cfg.CompilerURL)
	require.Equal(t, "file", cfg.StoreBackend)
	require.Equal(t, "none", cfg.EventsBackend)
	require.Equal(t, "none", cfg.ArtifactBackend)
	require.Equal(t, 2, cfg.WorkerCount)
	require.Equal(t, 3, cfg.MaxConcurrentRewrite)
	require.Equal(t, time.Hour, cfg.JobTTL)
	require.Equal(t, 10, cfg.ChatHistoryLimit)
	require.Equal(t, 5, cfg.SearchTopK)
	require.Empty(t, cfg.KafkaBrokers)
	require.NoError(t, cfg.Validate())
}

func TestLoadInfersOpenRouterFromKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENROUTER_API_KEY", "sk-or-test")

	cfg := Load()
	require.Equal(t, ProviderOpenRouter, cfg.LLMProvider)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("LLM_PROVIDER", "Anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("EVENTS_BACKEND", "kafka")
	t.Setenv("KAFKA_BROKERS", "broker-a:9092, broker-b:9093")
	t.Setenv("WORKER_COUNT", "-1")
	t.Setenv("JOB_TTL", "30m")

	cfg := Load()
	require.Equal(t, "9000", cfg.Port)
	require.Equal(t, ProviderAnthropic, cfg.LLMProvider)
	require.Equal(t, 0.2, cfg.LLMTemperature)
	require.Equal(t, []string{"broker-a:9092", "broker-b:9093"}, cfg.KafkaBrokers)
	require.Equal(t, 2, cfg.WorkerCount, "non-positive worker count falls back to default")
	require.Equal(t, 30*time.Minute, cfg.JobTTL)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "anthropic without key",
			mutate:  func(c *Config) { c.LLMProvider = ProviderAnthropic },
			wantErr: "ANTHROPIC_API_KEY",
		},
		{
			name:    "gemini without key",
			mutate:  func(c *Config) { c.LLMProvider = ProviderGemini },
			wantErr: "GOOGLE_API_KEY",
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.LLMProvider = "cohere" },
			wantErr: "unknown LLM_PROVIDER",
		},
		{
			name:    "postgres without url",
			mutate:  func(c *Config) { c.StoreBackend = "postgres" },
			wantErr: "DATABASE_URL",
		},
		{
			name:    "amqp without url",
			mutate:  func(c *Config) { c.EventsBackend = "amqp" },
			wantErr: "RABBITMQ_URL",
		},
		{
			name:    "s3 without bucket",
			mutate:  func(c *Config) { c.ArtifactBackend = "s3" },
			wantErr: "S3_BUCKET",
		},
		{
			name:    "temperature out of range",
			mutate:  func(c *Config) { c.LLMTemperature = 3 },
			wantErr: "LLM_TEMPERATURE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg := Load()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
