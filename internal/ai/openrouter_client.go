package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"

	openRouterTimeout = 30 * time.Second
	// тело ошибки в логах обрезаем, OpenRouter иногда возвращает HTML
	maxErrorBody = 512
)

// OpenRouterClient ходит в OpenAI-совместимый /chat/completions OpenRouter
type OpenRouterClient struct {
	baseURL    string
	apiKey     string
	model      string
	siteURL    string
	siteName   string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewOpenRouterClient(apiKey, baseURL, model, siteURL, siteName string, logger *zap.Logger) *OpenRouterClient {
	if baseURL == "" {
		baseURL = OpenRouterBaseURL
	}
	return &OpenRouterClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		siteURL:    siteURL,
		siteName:   siteName,
		httpClient: &http.Client{Timeout: openRouterTimeout},
		logger:     logger,
	}
}

type OpenRouterRequest struct {
	Model          string                    `json:"model"`
	Messages       []OpenRouterMessage       `json:"messages"`
	Temperature    *float64                  `json:"temperature,omitempty"`
	MaxTokens      *int                      `json:"max_tokens,omitempty"`
	ResponseFormat *OpenRouterResponseFormat `json:"response_format,omitempty"`
}

type OpenRouterResponseFormat struct {
	Type       string                `json:"type"`
	JSONSchema *OpenRouterJSONSchema `json:"json_schema,omitempty"`
}

type OpenRouterJSONSchema struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

type OpenRouterMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type OpenRouterResponse struct {
	Model   string             `json:"model"`
	Choices []OpenRouterChoice `json:"choices"`
	Usage   OpenRouterUsage    `json:"usage"`
}

type OpenRouterChoice struct {
	Message      OpenRouterMessage `json:"message"`
	FinishReason string            `json:"finish_reason"`
}

type OpenRouterUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type openRouterError struct {
	Error struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error"`
}

func (c *OpenRouterClient) GenerateResponse(ctx context.Context, messages []Message, options GenerationOptions) (*Response, error) {
	payload, err := json.Marshal(c.buildRequest(messages, options))
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации запроса: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания HTTP запроса: %w", err)
	}
	c.setHeaders(req)

	c.logger.Debug("отправляем запрос к OpenRouter",
		zap.String("model", c.model),
		zap.Int("messages_count", len(messages)),
		zap.Bool("json_schema", options.Schema != nil))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка отправки запроса к OpenRouter: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ответа: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError(resp.StatusCode, body)
	}

	var decoded OpenRouterResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("ошибка десериализации ответа: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return nil, fmt.Errorf("пустой ответ от OpenRouter")
	}

	choice := decoded.Choices[0]
	result := &Response{
		Content: strings.TrimSpace(choice.Message.Content),
		Model:   decoded.Model,
		Usage: Usage{
			PromptTokens:     decoded.Usage.PromptTokens,
			CompletionTokens: decoded.Usage.CompletionTokens,
			TotalTokens:      decoded.Usage.TotalTokens,
		},
		FinishReason: choice.FinishReason,
		Provider:     "OpenRouter",
	}

	c.logger.Info("получен ответ от OpenRouter",
		zap.String("model", result.Model),
		zap.Int("total_tokens", result.Usage.TotalTokens),
		zap.Duration("duration", time.Since(start)),
		zap.Int("content_length", len(result.Content)))

	return result, nil
}

func (c *OpenRouterClient) buildRequest(messages []Message, options GenerationOptions) OpenRouterRequest {
	req := OpenRouterRequest{
		Model:    c.model,
		Messages: make([]OpenRouterMessage, 0, len(messages)),
	}
	for _, msg := range messages {
		req.Messages = append(req.Messages, OpenRouterMessage(msg))
	}

	if options.Temperature > 0 {
		req.Temperature = &options.Temperature
	}
	if options.MaxTokens > 0 {
		req.MaxTokens = &options.MaxTokens
	}
	if options.Schema != nil {
		req.ResponseFormat = &OpenRouterResponseFormat{
			Type: "json_schema",
			JSONSchema: &OpenRouterJSONSchema{
				Name:   options.Schema.Name,
				Strict: true,
				Schema: options.Schema.Schema,
			},
		}
	}
	return req
}

func (c *OpenRouterClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	// HTTP-Referer и X-Title нужны для статистики приложения на openrouter.ai
	if c.siteURL != "" {
		req.Header.Set("HTTP-Referer", c.siteURL)
	}
	if c.siteName != "" {
		req.Header.Set("X-Title", c.siteName)
	}
}

func (c *OpenRouterClient) apiError(status int, body []byte) error {
	snippet := string(body)
	if len(snippet) > maxErrorBody {
		snippet = snippet[:maxErrorBody]
	}
	c.logger.Error("ошибка API OpenRouter",
		zap.Int("status_code", status),
		zap.String("response_body", snippet))

	var apiErr openRouterError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("ошибка OpenRouter API (статус %d): %s", status, apiErr.Error.Message)
	}
	return fmt.Errorf("ошибка OpenRouter API (статус %d): %s", status, snippet)
}

func (c *OpenRouterClient) GetName() string {
	return "OpenRouter"
}
