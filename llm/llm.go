// Package llm talks to the remote model providers. A Provider is built once
// at startup and shared by every request; implementations hold no
// per-request state and are safe for concurrent use.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lexai/backend/config"
)

// ErrAudioUnsupported is returned by providers that cannot accept audio input.
var ErrAudioUnsupported = errors.New("llm: provider does not accept audio input")

// Roles used in Message.Role
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Audio is a binary audio attachment tagged with its MIME type.
type Audio struct {
	MIMEType string
	Data     []byte
}

// Message is one turn sent to the model. Audio, when set, is sent as a
// separate part ahead of Text.
type Message struct {
	Role  string
	Text  string
	Audio *Audio
}

// Request is a single generation call.
type Request struct {
	Messages []Message
	// JSON asks the provider for a JSON-only response where supported.
	JSON bool
}

// Provider is the interface for LLM backends.
type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
	Close() error
}

// Factory builds a Provider from configuration.
type Factory func(ctx context.Context, cfg config.LLMConfig) (Provider, error)

var _ Factory = New

// New builds the provider named by cfg.Provider.
func New(ctx context.Context, cfg config.LLMConfig) (Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("llm: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = config.DefaultModel(cfg.Provider)
	}

	switch strings.ToLower(cfg.Provider) {
	case "google", "gemini", "":
		return newGoogleProvider(ctx, cfg)
	case "anthropic":
		return newAnthropicProvider(cfg), nil
	case "openai":
		return newOpenAIProvider(cfg), nil
	case "compatible":
		return newCompatibleProvider(cfg), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}

func hasAudio(msgs []Message) bool {
	for _, m := range msgs {
		if m.Audio != nil {
			return true
		}
	}
	return false
}

func validate(req Request) error {
	if len(req.Messages) == 0 {
		return fmt.Errorf("llm: request has no messages")
	}
	return nil
}
