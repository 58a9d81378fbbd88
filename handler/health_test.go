package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot(t *testing.T) {
	router := newRouter(t, &fakeProvider{}, 0)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "LexAI Backend is running", body["status"])
	assert.Equal(t, "gemini-1.5-flash", body["model"])
}

func TestHealth(t *testing.T) {
	router := newRouter(t, &fakeProvider{}, 0)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ok", body["status"])
	_, err := time.Parse(time.RFC3339, body["timestamp"].(string))
	assert.NoError(t, err)
}
