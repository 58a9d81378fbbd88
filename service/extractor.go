package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"

	"github.com/lexai/backend/config"
)

// Extractor turns an uploaded document into plain text. Page order is
// preserved and blank pages contribute nothing.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// NewExtractor returns the extractor selected by cfg.Backend.
func NewExtractor(cfg config.ExtractorConfig) (Extractor, error) {
	switch strings.ToLower(cfg.Backend) {
	case "native", "":
		return NewPDFExtractor(cfg.MaxFileBytes), nil
	case "pdftotext":
		return NewCommandExtractor(cfg.PDFToTextBin, cfg.Timeout, cfg.MaxFileBytes)
	default:
		return nil, fmt.Errorf("extractor: unknown backend %q", cfg.Backend)
	}
}

// PDFExtractor parses PDFs in-process.
type PDFExtractor struct {
	maxBytes int64
}

// NewPDFExtractor returns a native extractor. maxBytes <= 0 means no limit.
func NewPDFExtractor(maxBytes int64) *PDFExtractor {
	return &PDFExtractor{maxBytes: maxBytes}
}

// Extract returns the text of every non-blank page joined by newlines.
func (e *PDFExtractor) Extract(ctx context.Context, data []byte) (text string, err error) {
	if err := checkDocument(data, e.maxBytes); err != nil {
		return "", err
	}

	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrInvalidDocument, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", ErrInvalidDocument, i, err)
		}
		pages = append(pages, content)
	}

	return joinPages(pages), nil
}

func checkDocument(data []byte, maxBytes int64) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty file", ErrInvalidDocument)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return fmt.Errorf("%w: file is %d bytes, limit is %d", ErrInvalidDocument, len(data), maxBytes)
	}
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	if !bytes.Contains(head, []byte("%PDF-")) {
		return fmt.Errorf("%w: missing PDF header", ErrInvalidDocument)
	}
	return nil
}

// joinPages drops blank pages, NFC-normalizes and joins with newlines.
func joinPages(pages []string) string {
	kept := make([]string, 0, len(pages))
	for _, p := range pages {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		kept = append(kept, norm.NFC.String(p))
	}
	return strings.Join(kept, "\n")
}
