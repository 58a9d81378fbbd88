package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lexai/backend/config"
	"github.com/lexai/backend/llm"
	"github.com/lexai/backend/model"
	"github.com/lexai/backend/pkg/logger"
)

// AuditorOptions tunes the upstream calls.
type AuditorOptions struct {
	Timeout      time.Duration // per attempt, 0 = no limit
	Retries      int           // extra attempts after an upstream failure
	RetryBackoff time.Duration
	HistoryLimit int
	Debug        bool
}

// OptionsFromConfig derives AuditorOptions from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) AuditorOptions {
	return AuditorOptions{
		Timeout:      cfg.LLM.Timeout,
		Retries:      cfg.LLM.MaxRetries(),
		RetryBackoff: cfg.LLM.RetryBackoff,
		HistoryLimit: cfg.Chat.HistoryLimit,
		Debug:        cfg.Debug,
	}
}

// Auditor runs the audit and chat flows. It holds no per-request state.
type Auditor struct {
	provider  llm.Provider
	extractor Extractor
	opts      AuditorOptions
}

// ChatInput is one follow-up question about previously audited documents.
type ChatInput struct {
	ContextText string
	History     []model.ChatTurn
	Message     string
	Audio       *llm.Audio
}

func NewAuditor(provider llm.Provider, extractor Extractor, opts AuditorOptions) (*Auditor, error) {
	if provider == nil {
		return nil, fmt.Errorf("auditor: llm provider is required")
	}
	if extractor == nil {
		return nil, fmt.Errorf("auditor: extractor is required")
	}
	return &Auditor{provider: provider, extractor: extractor, opts: opts}, nil
}

// Audit extracts both documents, asks the model to compare them and
// validates the answer. Errors are ErrInvalidDocument (wrapped),
// *model.ValidationError, *ParseError or *UpstreamError.
func (a *Auditor) Audit(ctx context.Context, policy, contract []byte) (*model.AuditResponse, error) {
	ctx = logger.WithFlow(ctx, "audit")
	start := time.Now()

	var policyText, contractText string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		text, err := a.extractor.Extract(gctx, policy)
		if err != nil {
			return fmt.Errorf("policy_file: %w", err)
		}
		policyText = text
		return nil
	})
	g.Go(func() error {
		text, err := a.extractor.Extract(gctx, contract)
		if err != nil {
			return fmt.Errorf("contract_file: %w", err)
		}
		contractText = text
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Debug(ctx, "documents extracted",
		"policy_bytes", len(policy),
		"policy_chars", len(policyText),
		"contract_bytes", len(contract),
		"contract_chars", len(contractText),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	prompt := BuildAuditPrompt(policyText, contractText)
	raw, err := a.generate(ctx, "audit", llm.Request{
		JSON:     true,
		Messages: []llm.Message{{Role: llm.RoleUser, Text: prompt}},
	})
	if err != nil {
		return nil, err
	}

	resp, err := ParseAuditOutput(raw)
	if err != nil {
		var parseErr *ParseError
		var rejection *model.ValidationError
		switch {
		case errors.As(err, &parseErr):
			logger.Error(ctx, "model output failed validation",
				"reason", parseErr.Reason,
				"error", parseErr.Err,
				"raw_output", parseErr.Raw,
			)
		case errors.As(err, &rejection):
			logger.Info(ctx, "documents rejected", "error_type", rejection.ErrorType)
		}
		return nil, err
	}

	logger.Info(ctx, "audit completed",
		"risk_score", resp.AuditSummary.RiskScore,
		"critical_violations", resp.AuditSummary.CriticalViolations,
		"clauses", resp.AuditSummary.TotalClausesChecked,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

// Chat answers a follow-up question. The reply is free text.
func (a *Auditor) Chat(ctx context.Context, in ChatInput) (string, error) {
	ctx = logger.WithFlow(ctx, "chat")

	msgs, err := BuildChatMessages(in.ContextText, in.History, in.Message, in.Audio, a.opts.HistoryLimit)
	if err != nil {
		return "", err
	}
	logger.Debug(ctx, "chat composed",
		"messages", len(msgs),
		"history_turns", len(msgs)-2,
		"audio", in.Audio != nil,
	)

	raw, err := a.generate(ctx, "chat", llm.Request{Messages: msgs})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

// generate calls the provider, retrying upstream failures with a linear
// backoff. Caller cancellation and unsupported input are not retried.
func (a *Auditor) generate(ctx context.Context, op string, req llm.Request) (string, error) {
	attempts := a.opts.Retries + 1
	var lastErr error

	for i := 1; i <= attempts; i++ {
		callCtx, cancel := ctx, context.CancelFunc(func() {})
		if a.opts.Timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		}
		start := time.Now()
		out, err := a.provider.Generate(callCtx, req)
		cancel()
		if err == nil {
			logger.Debug(ctx, "upstream call succeeded",
				"op", op,
				"attempt", i,
				"response_chars", len(out),
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return out, nil
		}
		if errors.Is(err, llm.ErrAudioUnsupported) {
			return "", err
		}

		lastErr = err
		if ctx.Err() != nil {
			return "", &UpstreamError{Op: op, Attempts: i, Err: ctx.Err()}
		}
		logger.Warn(ctx, "upstream call failed", "op", op, "attempt", i, "error", err)

		if i < attempts {
			select {
			case <-time.After(a.opts.RetryBackoff * time.Duration(i)):
			case <-ctx.Done():
				return "", &UpstreamError{Op: op, Attempts: i, Err: ctx.Err()}
			}
		}
	}

	return "", &UpstreamError{Op: op, Attempts: attempts, Err: lastErr}
}
