package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "temporal:7233", cfg.Temporal.HostPort)
	assert.Equal(t, "default", cfg.Temporal.Namespace)
	assert.Equal(t, "app-postgres", cfg.Postgres.Host)
	assert.Equal(t, "5432", cfg.Postgres.Port)
	assert.Equal(t, "qwen3:8b", cfg.Ollama.Model)
	assert.Equal(t, 0.0, cfg.Ollama.Temperature)
	assert.Equal(t, "redis://redis:6379", cfg.Redis.URL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "retention-case-events", cfg.Kafka.CaseEventsTopic)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TEMPORAL_HOST_PORT", "localhost:7233")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("OLLAMA_MODEL_NAME", "llama3:70b")
	t.Setenv("OLLAMA_TEMPERATURE", "0.7")
	t.Setenv("REDIS_URL", "redis://cache:6380/1")
	t.Setenv("KAFKA_BROKERS", "kafka:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:7233", cfg.Temporal.HostPort)
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, "llama3:70b", cfg.Ollama.Model)
	assert.Equal(t, 0.7, cfg.Ollama.Temperature)
	assert.Equal(t, "redis://cache:6380/1", cfg.Redis.URL)
	assert.Equal(t, []string{"kafka:9092"}, cfg.Kafka.Brokers)
}

func TestLoadBadTemperatureIgnored(t *testing.T) {
	t.Setenv("OLLAMA_TEMPERATURE", "warm")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.Ollama.Temperature)
}

func TestAgentConfig(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	ac := cfg.AgentConfig()
	require.NoError(t, ac.Validate())
	assert.Equal(t, cfg.Postgres.Host, ac.PostgresHost)
	assert.Equal(t, cfg.Postgres.Database, ac.PostgresDB)
	assert.Equal(t, cfg.Ollama.Model, ac.ModelName)
	assert.Equal(t, cfg.Redis.URL, ac.RedisURL)
}
