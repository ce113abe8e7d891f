package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/GethosTheWalrus/langgraph-temporal-workflow/internal/workflow"
)

type Config struct {
	Temporal TemporalConfig `yaml:"temporal"`
	Postgres PostgresConfig `yaml:"postgres"`
	Ollama   OllamaConfig   `yaml:"ollama"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	LogLevel string         `yaml:"log_level"`
}

type TemporalConfig struct {
	HostPort  string `yaml:"host_port"`
	Namespace string `yaml:"namespace"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type OllamaConfig struct {
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

type KafkaConfig struct {
	Brokers         []string `yaml:"brokers"`
	CaseEventsTopic string   `yaml:"case_events_topic"`
}

func Load() (*Config, error) {
	cfg := &Config{
		Temporal: TemporalConfig{
			HostPort:  "temporal:7233",
			Namespace: "default",
		},
		Postgres: PostgresConfig{
			Host:     "app-postgres",
			Port:     "5432",
			Database: "appdb",
			User:     "appuser",
			Password: "apppassword",
		},
		Ollama: OllamaConfig{
			BaseURL:     "http://host.docker.internal:11434",
			Model:       "qwen3:8b",
			Temperature: 0.0,
		},
		Redis: RedisConfig{
			URL: "redis://redis:6379",
		},
		Kafka: KafkaConfig{
			CaseEventsTopic: "retention-case-events",
		},
		LogLevel: "info",
	}

	// Load from YAML if exists
	if data, err := os.ReadFile("config.yaml"); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// Override from environment
	if v := os.Getenv("TEMPORAL_HOST_PORT"); v != "" {
		cfg.Temporal.HostPort = v
	}
	if v := os.Getenv("TEMPORAL_NAMESPACE"); v != "" {
		cfg.Temporal.Namespace = v
	}
	if v := os.Getenv("POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("POSTGRES_PORT"); v != "" {
		cfg.Postgres.Port = v
	}
	if v := os.Getenv("POSTGRES_DB"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		cfg.Ollama.BaseURL = v
	}
	if v := os.Getenv("OLLAMA_MODEL_NAME"); v != "" {
		cfg.Ollama.Model = v
	}
	if v := os.Getenv("OLLAMA_TEMPERATURE"); v != "" {
		if t, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Ollama.Temperature = t
		}
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = []string{v}
	}
	if v := os.Getenv("KAFKA_CASE_EVENTS_TOPIC"); v != "" {
		cfg.Kafka.CaseEventsTopic = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return cfg, nil
}

// AgentConfig flattens the loaded config into the parameter block passed to
// every workflow execution.
func (c *Config) AgentConfig() workflow.AgentConfig {
	return workflow.AgentConfig{
		PostgresHost:     c.Postgres.Host,
		PostgresPort:     c.Postgres.Port,
		PostgresDB:       c.Postgres.Database,
		PostgresUser:     c.Postgres.User,
		PostgresPassword: c.Postgres.Password,
		OllamaBaseURL:    c.Ollama.BaseURL,
		ModelName:        c.Ollama.Model,
		Temperature:      c.Ollama.Temperature,
		RedisURL:         c.Redis.URL,
	}
}
