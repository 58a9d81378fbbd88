package llm

import (
	"context"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/lexai/backend/config"
)

// openaiProvider implements Provider using the official OpenAI SDK.
type openaiProvider struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int
}

func newOpenAIProvider(cfg config.LLMConfig) *openaiProvider {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &openaiProvider{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxOutputTokens,
	}
}

func (p *openaiProvider) Generate(ctx context.Context, req Request) (string, error) {
	if err := validate(req); err != nil {
		return "", err
	}
	if hasAudio(req.Messages) {
		return "", ErrAudioUnsupported
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: toOpenAIMessages(req.Messages),
	}
	if p.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(p.maxTokens))
	}
	if p.temperature > 0 {
		params.Temperature = openai.Float(p.temperature)
	}
	if req.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai: chat.completions.new: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: response contained no choices")
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("openai: response contained no content")
	}
	return content, nil
}

func (p *openaiProvider) Close() error { return nil }

func toOpenAIMessages(msgs []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, msg := range msgs {
		if msg.Role == RoleModel {
			out = append(out, openai.AssistantMessage(msg.Text))
		} else {
			out = append(out, openai.UserMessage(msg.Text))
		}
	}
	return out
}
