package ollama_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayflow/dayflow-go/pkg/llm"
	"github.com/dayflow/dayflow-go/pkg/llm/ollama"
)

type chatRequest struct {
	Model    string `json:"model"`
	Stream   bool   `json:"stream"`
	Format   string `json:"format"`
	Messages []struct {
		Role    string   `json:"role"`
		Content string   `json:"content"`
		Images  []string `json:"images"`
	} `json:"messages"`
}

func TestGenerateWithMessagesJSON(t *testing.T) {
	var seen chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&seen))
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"{\"combine\":false}"}}`))
	}))
	defer srv.Close()

	client, err := ollama.NewClient(&ollama.Config{BaseURL: srv.URL})
	require.NoError(t, err)

	out, err := llm.Infer(context.Background(), client, "compare", []string{"aW1n"}, true)
	require.NoError(t, err)
	assert.Equal(t, `{"combine":false}`, out)

	assert.Equal(t, "gemma3:4b", seen.Model)
	assert.False(t, seen.Stream)
	assert.Equal(t, "json", seen.Format)
	require.Len(t, seen.Messages, 2)
	assert.Equal(t, "system", seen.Messages[0].Role)
	assert.Equal(t, []string{"aW1n"}, seen.Messages[1].Images)
}

func TestGenerateStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := ollama.NewClient(&ollama.Config{BaseURL: srv.URL, Model: "missing"})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "hello")
	var transportErr *llm.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Contains(t, err.Error(), "404")
}

func TestGenerateEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":""}}`))
	}))
	defer srv.Close()

	client, err := ollama.NewClient(&ollama.Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "hello")
	assert.True(t, errors.Is(err, llm.ErrEmptyResponse))
}
