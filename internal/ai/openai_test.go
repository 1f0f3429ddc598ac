package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestOpenAIProvider(t *testing.T, server *httptest.Server) IAIProvider {
	t.Helper()
	provider, err := createOpenAIFactory(map[string]interface{}{
		"api_key":  "test-key",
		"base_url": server.URL,
	})
	require.NoError(t, err)
	return provider
}

func TestOpenAIGenerate(t *testing.T) {
	var gotBody openAIChatRequest
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "  A humanoid robot is a robot shaped like a human.\n"}},
			},
		})
	}))
	defer server.Close()

	provider := newTestOpenAIProvider(t, server)
	out, err := provider.Generate(context.Background(), "gpt-4o-mini", "STUDENT QUESTION: What is a humanoid robot?")
	require.NoError(t, err)
	require.Equal(t, "A humanoid robot is a robot shaped like a human.", out)

	require.Equal(t, "Bearer test-key", gotAuth)
	require.Equal(t, "gpt-4o-mini", gotBody.Model)
	require.Len(t, gotBody.Messages, 1)
	require.Equal(t, "user", gotBody.Messages[0].Role)
	require.Equal(t, "STUDENT QUESTION: What is a humanoid robot?", gotBody.Messages[0].Content)
	require.False(t, gotBody.Stream)
}

func TestOpenAIGenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider := newTestOpenAIProvider(t, server)
	_, err := provider.Generate(context.Background(), "gpt-4o-mini", "q")
	require.Error(t, err)
	require.Contains(t, err.Error(), "quota exceeded")
}

func TestOpenAIGenerateNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	provider := newTestOpenAIProvider(t, server)
	_, err := provider.Generate(context.Background(), "gpt-4o-mini", "q")
	require.Error(t, err)
}

func TestOpenAIGenerateMissingKey(t *testing.T) {
	provider, err := createOpenAIFactory(map[string]interface{}{})
	require.NoError(t, err)

	_, err = provider.Generate(context.Background(), "gpt-4o-mini", "q")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestOpenAIEmbed(t *testing.T) {
	var gotBody openAIEmbedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embeddings", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float32{0.1, 0.2, 0.3}},
			},
		})
	}))
	defer server.Close()

	provider, err := createOpenAIEmbedFactory(map[string]interface{}{
		"api_key":  "test-key",
		"base_url": server.URL,
	})
	require.NoError(t, err)

	vec, err := provider.Embed(context.Background(), "text-embedding-3-small", "Actuators move joints.", "RETRIEVAL_QUERY")
	require.NoError(t, err)
	require.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	require.Equal(t, "text-embedding-3-small", gotBody.Model)
	require.Equal(t, "Actuators move joints.", gotBody.Input)
}

func TestOpenAIEmbedNoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer server.Close()

	provider, err := createOpenAIEmbedFactory(map[string]interface{}{
		"api_key":  "test-key",
		"base_url": server.URL,
	})
	require.NoError(t, err)

	_, err = provider.Embed(context.Background(), "text-embedding-3-small", "t", "")
	require.Error(t, err)
}
