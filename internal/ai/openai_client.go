package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"go.uber.org/zap"
)

// OpenAIClient работает с OpenAI через Responses API
type OpenAIClient struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAIClient создает клиент OpenAI; пустой baseURL означает официальный API
func NewOpenAIClient(apiKey, baseURL, model string, logger *zap.Logger, opts ...option.RequestOption) *OpenAIClient {
	clientOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(30 * time.Second),
	}
	if baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(baseURL))
	}
	clientOpts = append(clientOpts, opts...)

	client := openai.NewClient(clientOpts...)
	return &OpenAIClient{
		client: &client,
		model:  model,
		logger: logger,
	}
}

func (c *OpenAIClient) GenerateResponse(ctx context.Context, messages []Message, options GenerationOptions) (*Response, error) {
	var instructions []string
	input := make([]responses.ResponseInputItemUnionParam, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			instructions = append(instructions, msg.Content)
		case RoleAssistant:
			input = append(input, responses.ResponseInputItemParamOfMessage(msg.Content, responses.EasyInputMessageRoleAssistant))
		default:
			input = append(input, responses.ResponseInputItemParamOfMessage(msg.Content, responses.EasyInputMessageRoleUser))
		}
	}
	if len(input) == 0 {
		return nil, fmt.Errorf("нет пользовательских сообщений для OpenAI")
	}

	params := responses.ResponseNewParams{
		Model: c.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: input,
		},
	}
	if len(instructions) > 0 {
		params.Instructions = openai.String(strings.Join(instructions, "\n\n"))
	}
	if options.Temperature > 0 {
		params.Temperature = openai.Float(options.Temperature)
	}
	if options.MaxTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(options.MaxTokens))
	}
	if options.Schema != nil {
		params.Text = responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:        options.Schema.Name,
					Schema:      options.Schema.Schema,
					Strict:      openai.Bool(true),
					Description: openai.String(options.Schema.Description),
					Type:        "json_schema",
				},
			},
		}
	}

	c.logger.Debug("отправляем запрос к OpenAI",
		zap.String("model", c.model),
		zap.Int("messages_count", len(messages)),
		zap.Bool("structured", options.Schema != nil))

	start := time.Now()
	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса к OpenAI: %w", err)
	}

	content := strings.TrimSpace(resp.OutputText())
	if content == "" {
		return nil, fmt.Errorf("пустой ответ от OpenAI")
	}

	c.logger.Info("получен ответ от OpenAI",
		zap.String("model", string(resp.Model)),
		zap.Int64("input_tokens", resp.Usage.InputTokens),
		zap.Int64("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("duration", time.Since(start)),
		zap.Int("content_length", len(content)))

	return &Response{
		Content: content,
		Model:   string(resp.Model),
		Usage: Usage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
		FinishReason: string(resp.Status),
		Provider:     "OpenAI",
	}, nil
}

func (c *OpenAIClient) GetName() string {
	return "OpenAI"
}
