package ai

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"voiceforge/internal/config"
)

// NewAIClient создает AI клиент на основе конфигурации.
// Для провайдера mock возвращает nil: сервисы в этом случае отвечают заглушками
func NewAIClient(ctx context.Context, cfg *config.AIConfig, logger *zap.Logger) (AIClient, error) {
	provider := cfg.ResolveProvider()
	model := cfg.ModelFor(provider)

	switch provider {
	case config.ProviderGemini:
		client, err := NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.BaseURL, model, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, model, logger), nil
	case config.ProviderOpenRouter:
		return NewOpenRouterClient(cfg.OpenRouter.APIKey, "", model, cfg.OpenRouter.SiteURL, cfg.OpenRouter.SiteName, logger), nil
	case config.ProviderMock:
		return nil, nil
	default:
		return nil, fmt.Errorf("неподдерживаемый AI провайдер: %s. Поддерживаются: 'gemini', 'openai', 'openrouter', 'mock'", provider)
	}
}
