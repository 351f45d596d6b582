package common

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func noEnvFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(noEnvFile(t))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.LLM.Provider != ProviderAnthropic {
		t.Errorf("provider = %q", cfg.LLM.Provider)
	}
	if cfg.LLM.Timeout != 60*time.Second {
		t.Errorf("timeout = %v", cfg.LLM.Timeout)
	}
	if cfg.Store.Backend != BackendJSON || cfg.Store.Path != "receipts_data.json" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Telegram.PollTimeout != 60 {
		t.Errorf("poll timeout = %d", cfg.Telegram.PollTimeout)
	}
	if cfg.Server.HealthAddr != ":8081" {
		t.Errorf("health addr = %q", cfg.Server.HealthAddr)
	}
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("LLM_PROVIDER", " OpenAI ")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LLM_TIMEOUT", "90s")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("STORE_BACKEND", "SQLITE")
	t.Setenv("SQLITE_PATH", "/tmp/fuel.db")
	t.Setenv("DB_MAX_CONNS", "7")
	t.Setenv("TELEGRAM_DEBUG", "true")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := LoadConfig(noEnvFile(t))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.LLM.Provider != ProviderOpenAI || cfg.LLM.APIKey() != "sk-test" {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if cfg.LLM.Timeout != 90*time.Second {
		t.Errorf("timeout = %v", cfg.LLM.Timeout)
	}
	if cfg.LLM.Temperature < 0.19 || cfg.LLM.Temperature > 0.21 {
		t.Errorf("temperature = %v", cfg.LLM.Temperature)
	}
	if cfg.Store.Backend != BackendSQLite || cfg.Store.SQLitePath != "/tmp/fuel.db" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Store.MaxConns != 7 {
		t.Errorf("max conns = %d", cfg.Store.MaxConns)
	}
	if !cfg.Telegram.Debug {
		t.Errorf("debug not set")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log format = %q", cfg.Log.Format)
	}
	// untouched values keep their defaults
	if cfg.Events.Exchange != "fuel" {
		t.Errorf("exchange = %q", cfg.Events.Exchange)
	}
}

func TestLoadConfig_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "TELEGRAM_TOKEN=123:abc\nSTORE_PATH=/data/fuel.json\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("TELEGRAM_TOKEN")
		os.Unsetenv("STORE_PATH")
	})

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Telegram.Token != "123:abc" {
		t.Errorf("token = %q", cfg.Telegram.Token)
	}
	if cfg.Store.Path != "/data/fuel.json" {
		t.Errorf("store path = %q", cfg.Store.Path)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"unknown backend", func(c *Config) { c.Store.Backend = "redis" }, true},
		{"json without path", func(c *Config) { c.Store.Path = "" }, true},
		{"sqlite without path", func(c *Config) { c.Store.Backend = BackendSQLite; c.Store.SQLitePath = "" }, true},
		{"postgres without dsn", func(c *Config) { c.Store.Backend = BackendPostgres }, true},
		{"postgres with dsn", func(c *Config) {
			c.Store.Backend = BackendPostgres
			c.Store.DSN = "postgres://u:p@localhost:5432/fuel"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var appErr *AppError
				if !errors.As(err, &appErr) || appErr.Code != CodeConfig {
					t.Errorf("error = %v, want %s", err, CodeConfig)
				}
			}
		})
	}
}

func TestConfig_ValidateNamesMissingKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Store.Backend = BackendPostgres

	var ve ValidationError
	if err := cfg.Validate(); !errors.As(err, &ve) {
		t.Fatalf("error = %v, want a ValidationError", err)
	}
	if ve.Field != "DB_URL" || ve.Message != "is required" {
		t.Errorf("validation error = %+v", ve)
	}

	cfg = DefaultConfig()
	cfg.LLM.AnthropicAPIKey = "key"
	if err := cfg.ValidateBot(); !errors.As(err, &ve) || ve.Field != "TELEGRAM_TOKEN" {
		t.Errorf("ValidateBot error = %v, want missing TELEGRAM_TOKEN", err)
	}
}

func TestConfig_ValidateBot(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.ValidateBot(); err == nil {
		t.Fatal("expected missing api key error")
	}

	cfg.LLM.AnthropicAPIKey = "key"
	if err := cfg.ValidateBot(); err == nil {
		t.Fatal("expected missing token error")
	}

	cfg.Telegram.Token = "123:abc"
	if err := cfg.ValidateBot(); err != nil {
		t.Fatalf("ValidateBot: %v", err)
	}

	cfg.LLM.Provider = "mistral"
	if err := cfg.ValidateExtraction(); err == nil {
		t.Error("expected unknown provider error")
	}
}
