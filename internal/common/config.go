package common

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"

	BackendJSON     = "json"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Telegram TelegramConfig `koanf:",squash"`
	LLM      LLMConfig      `koanf:",squash"`
	Store    StoreConfig    `koanf:",squash"`
	Events   EventsConfig   `koanf:",squash"`
	Server   ServerConfig   `koanf:",squash"`
	Log      LogConfig      `koanf:",squash"`
}

// TelegramConfig holds chat transport configuration
type TelegramConfig struct {
	Token       string `koanf:"TELEGRAM_TOKEN"`
	PollTimeout int    `koanf:"TELEGRAM_POLL_TIMEOUT"`
	Debug       bool   `koanf:"TELEGRAM_DEBUG"`
}

// LLMConfig holds vision model configuration
type LLMConfig struct {
	Provider        string        `koanf:"LLM_PROVIDER"`
	Model           string        `koanf:"LLM_MODEL"`
	BaseURL         string        `koanf:"LLM_BASE_URL"`
	AnthropicAPIKey string        `koanf:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey    string        `koanf:"OPENAI_API_KEY"`
	Temperature     float32       `koanf:"LLM_TEMPERATURE"`
	MaxTokens       int           `koanf:"LLM_MAX_TOKENS"`
	Timeout         time.Duration `koanf:"LLM_TIMEOUT"`
}

// APIKey returns the key for the configured provider.
func (c LLMConfig) APIKey() string {
	if c.Provider == ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.AnthropicAPIKey
}

// StoreConfig holds record store configuration
type StoreConfig struct {
	Backend         string        `koanf:"STORE_BACKEND"`
	Path            string        `koanf:"STORE_PATH"`
	SQLitePath      string        `koanf:"SQLITE_PATH"`
	DSN             string        `koanf:"DB_URL"`
	MaxConns        int32         `koanf:"DB_MAX_CONNS"`
	MinConns        int32         `koanf:"DB_MIN_CONNS"`
	MaxConnLifetime time.Duration `koanf:"DB_MAX_CONN_LIFETIME"`
	DialTimeout     time.Duration `koanf:"DB_DIAL_TIMEOUT"`
}

// EventsConfig holds AMQP publishing configuration. An empty URL disables it.
type EventsConfig struct {
	AMQPURL    string `koanf:"AMQP_URL"`
	Exchange   string `koanf:"AMQP_EXCHANGE"`
	RoutingKey string `koanf:"AMQP_ROUTING_KEY"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HealthAddr string `koanf:"HEALTH_ADDR"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `koanf:"LOG_LEVEL"`
	Format string `koanf:"LOG_FORMAT"`
}

// DefaultConfig returns the configuration used when no environment overrides it.
func DefaultConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			PollTimeout: 60,
		},
		LLM: LLMConfig{
			Provider:  ProviderAnthropic,
			MaxTokens: 1024,
			Timeout:   60 * time.Second,
		},
		Store: StoreConfig{
			Backend:         BackendJSON,
			Path:            "receipts_data.json",
			SQLitePath:      "./data/receipts.db",
			MaxConns:        5,
			MinConns:        1,
			MaxConnLifetime: 30 * time.Minute,
			DialTimeout:     3 * time.Second,
		},
		Events: EventsConfig{
			Exchange:   "fuel",
			RoutingKey: "receipts",
		},
		Server: ServerConfig{
			HealthAddr: ":8081",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig reads an optional .env file, then the process environment, over
// the defaults.
func LoadConfig(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return nil, fmt.Errorf("load %s: %w", f, err)
			}
		}
	}

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return nil, WrapError(err, "load environment")
	}

	cfg := DefaultConfig()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return nil, WrapError(err, "unmarshal config")
	}

	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	return cfg, nil
}

// Validate checks settings shared by every binary.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Backend {
	case BackendJSON:
		errs = appendRequired(errs, "STORE_PATH", c.Store.Path)
	case BackendSQLite:
		errs = appendRequired(errs, "SQLITE_PATH", c.Store.SQLitePath)
	case BackendPostgres:
		errs = appendRequired(errs, "DB_URL", c.Store.DSN)
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend))
	}

	if len(errs) > 0 {
		return NewAppError(CodeConfig, "invalid configuration", errors.Join(errs...))
	}
	return nil
}

// ValidateExtraction checks settings needed to call the vision model.
func (c *Config) ValidateExtraction() error {
	var errs []error
	switch c.LLM.Provider {
	case ProviderAnthropic:
		errs = appendRequired(errs, "ANTHROPIC_API_KEY", c.LLM.AnthropicAPIKey)
	case ProviderOpenAI:
		errs = appendRequired(errs, "OPENAI_API_KEY", c.LLM.OpenAIAPIKey)
	default:
		errs = append(errs, fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Provider))
	}
	if c.LLM.Timeout <= 0 {
		errs = append(errs, errors.New("LLM_TIMEOUT must be positive"))
	}

	if len(errs) > 0 {
		return NewAppError(CodeConfig, "invalid model configuration", errors.Join(errs...))
	}
	return nil
}

// ValidateBot checks settings needed by the chat daemon.
func (c *Config) ValidateBot() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := c.ValidateExtraction(); err != nil {
		return err
	}
	if err := Required("TELEGRAM_TOKEN", c.Telegram.Token); err != nil {
		return NewAppError(CodeConfig, "TELEGRAM_TOKEN is required", *err)
	}
	return nil
}

func appendRequired(errs []error, key, value string) []error {
	if err := Required(key, value); err != nil {
		return append(errs, *err)
	}
	return errs
}
