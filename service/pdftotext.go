package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

const defaultPDFTimeout = 25 * time.Second

// CommandExtractor converts PDFs to text via the pdftotext CLI.
type CommandExtractor struct {
	binary   string
	timeout  time.Duration
	maxBytes int64
}

// NewCommandExtractor returns an extractor using the pdftotext binary. An
// empty bin falls back to PDFTOTEXT_BIN, then to "pdftotext" on PATH.
func NewCommandExtractor(bin string, timeout time.Duration, maxBytes int64) (*CommandExtractor, error) {
	if bin == "" {
		bin = os.Getenv("PDFTOTEXT_BIN")
	}
	if bin == "" {
		bin = "pdftotext"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("extractor: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultPDFTimeout
	}
	return &CommandExtractor{binary: path, timeout: timeout, maxBytes: maxBytes}, nil
}

// Extract pipes the document to pdftotext on stdin; nothing is written
// to disk. Pages come back separated by form feeds.
func (e *CommandExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	if err := checkDocument(data, e.maxBytes); err != nil {
		return "", err
	}

	cmdCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(cmdCtx, e.binary, "-layout", "-enc", "UTF-8", "-", "-")
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("%w: pdftotext: %s", ErrInvalidDocument, strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}

	return joinPages(strings.Split(stdout.String(), "\f")), nil
}
