package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/lexai/backend/llm"
	"github.com/lexai/backend/middleware"
	"github.com/lexai/backend/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type reply struct {
	text string
	err  error
}

// fakeProvider replays scripted replies and records what it was sent.
type fakeProvider struct {
	mu       sync.Mutex
	replies  []reply
	requests []llm.Request
}

func (p *fakeProvider) Generate(ctx context.Context, req llm.Request) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	if len(p.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	r := p.replies[0]
	p.replies = p.replies[1:]
	return r.text, r.err
}

func (p *fakeProvider) Close() error { return nil }

func (p *fakeProvider) lastRequest(t *testing.T) llm.Request {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	require.NotEmpty(t, p.requests)
	return p.requests[len(p.requests)-1]
}

func newRouter(t *testing.T, p llm.Provider, maxUpload int64) *gin.Engine {
	t.Helper()
	auditor, err := service.NewAuditor(p, service.NewPDFExtractor(0), service.AuditorOptions{
		Retries:      1,
		RetryBackoff: time.Millisecond,
	})
	require.NoError(t, err)

	health := NewHealthHandler("gemini-1.5-flash")
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.BodyLimit(maxUpload))
	router.GET("/", health.Root)
	router.GET("/health", health.Health)
	router.POST("/audit-contract", NewAuditHandler(auditor, maxUpload).AuditContract)
	router.POST("/chat", NewChatHandler(auditor, "audio/mp3", maxUpload).Chat)
	return router
}

type filePart struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

func multipartRequest(t *testing.T, path string, fields map[string]string, files ...filePart) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.field, f.filename))
		if f.contentType != "" {
			h.Set("Content-Type", f.contentType)
		}
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}
