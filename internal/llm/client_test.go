package llm

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/blogsmith/internal/config"
	"github.com/jonesrussell/blogsmith/internal/logger"
)

func newTestClient(url string) *Client {
	return NewClient(&config.LLMConfig{
		URL:         url,
		APIKey:      "secret",
		Model:       "test-model",
		Timeout:     2 * time.Second,
		Temperature: 0.7,
	}, logger.NewNopLogger())
}

func TestComplete_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "you are a writer", req.Messages[0].Content)
		assert.Equal(t, "write", req.Messages[1].Content)
		assert.Equal(t, 256, req.MaxTokens)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  generated text \n"}}]}`))
	}))
	defer srv.Close()

	text, err := newTestClient(srv.URL).Complete(t.Context(), "you are a writer", "write", 256, 0.5)
	require.NoError(t, err)
	assert.Equal(t, "generated text", text)
}

func TestComplete_NegativeTemperatureUsesDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.InDelta(t, 0.7, req.Temperature, 0.001)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Complete(t.Context(), "s", "u", 0, -1)
	require.NoError(t, err)
}

func TestComplete_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Complete(t.Context(), "s", "u", 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestComplete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Complete(t.Context(), "s", "u", 0, 0)
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestComplete_EmbeddedErrorObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[],"error":{"message":"model overloaded","type":"overloaded"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Complete(t.Context(), "s", "u", 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}
