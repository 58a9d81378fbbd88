package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func bodyLimitRouter(limit int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(BodyLimit(limit))
	router.POST("/upload", func(c *gin.Context) {
		data, err := io.ReadAll(c.Request.Body)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.String(http.StatusOK, "%d", len(data))
	})
	return router
}

func TestBodyLimit(t *testing.T) {
	tests := []struct {
		name   string
		limit  int64
		body   string
		chunk  bool
		status int
	}{
		{"within limit", 10, "12345", false, http.StatusOK},
		{"declared too large", 10, strings.Repeat("x", 11), false, http.StatusRequestEntityTooLarge},
		{"streamed too large", 10, strings.Repeat("x", 11), true, http.StatusRequestEntityTooLarge},
		{"disabled", 0, strings.Repeat("x", 100), false, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(tt.body))
			if tt.chunk {
				req.ContentLength = -1
			}
			w := httptest.NewRecorder()
			bodyLimitRouter(tt.limit).ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}
		})
	}
}
