// Package config builds the process configuration from environment
// variables. Every component receives an explicit config struct through its
// constructor; nothing reads the environment at runtime.
package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config is the full uwgate process configuration.
type Config struct {
	Server   ServerConfig
	Rules    RulesConfig
	Agents   AgentsConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	Kafka    KafkaConfig
	OpenAI   OpenAIConfig
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr          string `env:"UWGATE_ADDR" envDefault:":8080"`
	LogLevel      string `env:"UWGATE_LOG_LEVEL" envDefault:"info"`
	JWTSigningKey string `env:"UWGATE_JWT_SIGNING_KEY"`
	AuthRequired  bool   `env:"UWGATE_AUTH_REQUIRED" envDefault:"false"`
}

// RulesConfig locates the compiled rule registry and the policy corpus.
type RulesConfig struct {
	RegistryPath string `env:"UWGATE_RULES_PATH" envDefault:"./policies/structured_rules.json"`
	PoliciesPath string `env:"UWGATE_POLICIES_PATH" envDefault:"./policies/policies.yaml"`
}

// AgentsConfig tunes verification agent execution.
type AgentsConfig struct {
	DefaultTimeout time.Duration `env:"UWGATE_AGENT_TIMEOUT" envDefault:"60s"`
	MaxRetries     int           `env:"UWGATE_AGENT_MAX_RETRIES" envDefault:"1"`
}

// RedisConfig configures the decision cache. Empty URL disables it.
type RedisConfig struct {
	URL          string        `env:"UWGATE_REDIS_URL"`
	PoolSize     int           `env:"UWGATE_REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"UWGATE_REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"UWGATE_REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"UWGATE_REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"UWGATE_REDIS_WRITE_TIMEOUT" envDefault:"3s"`
	DecisionTTL  time.Duration `env:"UWGATE_REDIS_DECISION_TTL" envDefault:"1h"`
}

// PostgresConfig configures the decision audit store. Empty DSN disables it.
type PostgresConfig struct {
	DSN string `env:"UWGATE_POSTGRES_DSN"`
}

// KafkaConfig configures the decision event publisher. Empty brokers disable it.
type KafkaConfig struct {
	Brokers []string `env:"UWGATE_KAFKA_BROKERS" envSeparator:","`
	Topic   string   `env:"UWGATE_KAFKA_TOPIC" envDefault:"uwgate.decisions"`
}

// OpenAIConfig configures the offline rule extractor.
type OpenAIConfig struct {
	APIKey string `env:"OPENAI_API_KEY"`
	Model  string `env:"UWGATE_OPENAI_MODEL" envDefault:"gpt-4o-mini"`
}

// FromEnv parses the full configuration from the environment.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
