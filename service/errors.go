package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDocument means an upload could not be turned into text.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrNoChatInput means a chat request carried neither text nor audio.
	ErrNoChatInput = errors.New("must provide text or audio")
)

// ParseError means the model answered but the answer is not a usable
// audit. Raw holds the model output for server-side logs only.
type ParseError struct {
	Reason string
	Raw    string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unusable model output: %s: %v", e.Reason, e.Err)
	}
	return "unusable model output: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// UpstreamError means the remote model call itself failed.
type UpstreamError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream call failed after %d attempt(s): %v", e.Op, e.Attempts, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
