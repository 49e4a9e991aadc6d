package ai

import (
	"context"
	"fmt"

	"github.com/Soypete/mathy-bot/logging"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	// ProviderOpenAI is any OpenAI compatible endpoint, including a local llama.cpp server.
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	DefaultGeminiModel = "gemini-2.5-flash"
)

// ModelConfig selects and configures the language model backend.
type ModelConfig struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
}

// NewModel builds the langchaingo model for cfg.Provider.
func NewModel(ctx context.Context, cfg ModelConfig, logger *logging.Logger) (llms.Model, error) {
	if logger == nil {
		logger = logging.Default()
	}
	logger.Info("setting up LLM", "provider", cfg.Provider, "model", cfg.Model, "baseURL", cfg.BaseURL)

	switch cfg.Provider {
	case ProviderOpenAI:
		opts := []openai.Option{}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		if cfg.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Model))
		}
		// llama.cpp ignores the token but the client refuses to start without one.
		token := cfg.APIKey
		if token == "" {
			token = "no-key"
		}
		opts = append(opts, openai.WithToken(token))

		llm, err := openai.New(opts...)
		if err != nil {
			logger.Error("failed to create OpenAI LLM", "error", err.Error())
			return nil, fmt.Errorf("failed to create OpenAI LLM: %w", err)
		}
		return llm, nil

	case ProviderGemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		model := cfg.Model
		if model == "" {
			model = DefaultGeminiModel
		}
		llm, err := googleai.New(ctx,
			googleai.WithAPIKey(cfg.APIKey),
			googleai.WithDefaultModel(model))
		if err != nil {
			logger.Error("failed to create Gemini LLM", "error", err.Error())
			return nil, fmt.Errorf("failed to create Gemini LLM: %w", err)
		}
		return llm, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
