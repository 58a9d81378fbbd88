package llm

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/lexai/backend/config"
)

// compatibleProvider talks to any OpenAI-compatible endpoint (Nebius,
// vLLM, Ollama, ...). Audio is transcribed with the transcription endpoint
// first and the transcript is sent as text.
type compatibleProvider struct {
	api         *goopenai.Client
	model       string
	temperature float32
	maxTokens   int
}

func newCompatibleProvider(cfg config.LLMConfig) *compatibleProvider {
	openaiCfg := goopenai.DefaultConfig(cfg.APIKey)
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		openaiCfg.BaseURL = baseURL
	}
	temp := float32(cfg.Temperature)
	if temp < 0 {
		temp = 0
	}
	return &compatibleProvider{
		api:         goopenai.NewClientWithConfig(openaiCfg),
		model:       cfg.Model,
		temperature: temp,
		maxTokens:   cfg.MaxOutputTokens,
	}
}

func (p *compatibleProvider) Generate(ctx context.Context, req Request) (string, error) {
	if err := validate(req); err != nil {
		return "", err
	}

	messages := make([]goopenai.ChatCompletionMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		content := msg.Text
		if msg.Audio != nil {
			transcript, err := p.transcribe(ctx, msg.Audio)
			if err != nil {
				return "", err
			}
			content = "Transcribed audio question: " + transcript + "\n\n" + msg.Text
		}
		role := goopenai.ChatMessageRoleUser
		if msg.Role == RoleModel {
			role = goopenai.ChatMessageRoleAssistant
		}
		messages = append(messages, goopenai.ChatCompletionMessage{Role: role, Content: content})
	}

	chatReq := goopenai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	}
	if req.JSON {
		chatReq.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.api.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("compatible: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("compatible: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (p *compatibleProvider) transcribe(ctx context.Context, audio *Audio) (string, error) {
	resp, err := p.api.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    goopenai.Whisper1,
		FilePath: "question" + audioExtension(audio.MIMEType),
		Reader:   bytes.NewReader(audio.Data),
	})
	if err != nil {
		return "", fmt.Errorf("compatible: transcription: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

func (p *compatibleProvider) Close() error { return nil }

// audioExtension maps a MIME type to the file extension the transcription
// endpoint uses to pick a decoder.
func audioExtension(mime string) string {
	switch strings.ToLower(strings.TrimSpace(strings.SplitN(mime, ";", 2)[0])) {
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/webm":
		return ".webm"
	case "audio/ogg":
		return ".ogg"
	case "audio/mp4", "audio/m4a", "audio/x-m4a":
		return ".m4a"
	case "audio/flac":
		return ".flac"
	default:
		return ".mp3"
	}
}
