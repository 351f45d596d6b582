package provider

import (
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/fuel-tracker/internal/common"
	"github.com/joseph-ayodele/fuel-tracker/internal/llm"
	"github.com/joseph-ayodele/fuel-tracker/internal/llm/anthropic"
	"github.com/joseph-ayodele/fuel-tracker/internal/llm/openai"
)

// NewModelCaller builds the vision model client selected by LLM_PROVIDER.
func NewModelCaller(cfg common.LLMConfig, logger *slog.Logger) (llm.ModelCaller, error) {
	switch cfg.Provider {
	case common.ProviderAnthropic, "":
		return anthropic.NewClient(anthropic.Config{
			APIKey:      cfg.AnthropicAPIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
	case common.ProviderOpenAI:
		return openai.NewClient(openai.Config{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// NewExtractor wires the configured model caller into an extraction engine.
func NewExtractor(cfg common.LLMConfig, logger *slog.Logger) (*llm.Extractor, error) {
	caller, err := NewModelCaller(cfg, logger)
	if err != nil {
		return nil, err
	}
	return llm.NewExtractor(caller, logger)
}
