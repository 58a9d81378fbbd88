package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	googleoption "google.golang.org/api/option"

	"github.com/lexai/backend/config"
)

// googleProvider implements Provider on Gemini. The genai.Client is created
// once and shared; a GenerativeModel handle is cheap and built per call so
// per-request settings never leak between requests.
type googleProvider struct {
	client      *genai.Client
	model       string
	temperature float64
	maxTokens   int
}

func newGoogleProvider(ctx context.Context, cfg config.LLMConfig) (*googleProvider, error) {
	client, err := genai.NewClient(ctx, googleoption.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("google: genai client: %w", err)
	}
	return &googleProvider{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxOutputTokens,
	}, nil
}

func (p *googleProvider) Generate(ctx context.Context, req Request) (string, error) {
	if err := validate(req); err != nil {
		return "", err
	}

	m := p.client.GenerativeModel(p.model)
	if p.maxTokens > 0 {
		maxOut := int32(p.maxTokens)
		m.MaxOutputTokens = &maxOut
	}
	if p.temperature > 0 {
		temp32 := float32(p.temperature)
		m.Temperature = &temp32
	}
	if req.JSON {
		m.ResponseMIMEType = "application/json"
	}

	contents := toGenaiContents(req.Messages)
	last := contents[len(contents)-1]

	var (
		resp *genai.GenerateContentResponse
		err  error
	)
	if len(contents) == 1 {
		resp, err = m.GenerateContent(ctx, last.Parts...)
	} else {
		cs := m.StartChat()
		cs.History = contents[:len(contents)-1]
		resp, err = cs.SendMessage(ctx, last.Parts...)
	}
	if err != nil {
		return "", fmt.Errorf("google: generate content: %w", err)
	}

	var parts []string
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				parts = append(parts, string(t))
			}
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("google: response contained no text content")
	}
	return strings.Join(parts, ""), nil
}

func (p *googleProvider) Close() error {
	return p.client.Close()
}

func toGenaiContents(msgs []Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(msgs))
	for _, msg := range msgs {
		role := RoleUser
		if msg.Role == RoleModel {
			role = RoleModel
		}
		var parts []genai.Part
		if msg.Audio != nil {
			parts = append(parts, genai.Blob{MIMEType: msg.Audio.MIMEType, Data: msg.Audio.Data})
		}
		if msg.Text != "" {
			parts = append(parts, genai.Text(msg.Text))
		}
		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}
	return contents
}
