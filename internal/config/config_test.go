package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `{
	"port": 8000,
	"ai": {
		"provider": "gemini",
		"data": {"api_key": "k"},
		"model": "gemini-2.0-flash",
		"embed_model": "text-embedding-004"
	},
	"vector_store": {"type": "qdrant", "data": {"url": "http://localhost:6333"}}
}`

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)
	require.Equal(t, 0.7, cfg.RAG.SimilarityThreshold)
	require.Equal(t, 5, cfg.RAG.MaxResults)
	require.Equal(t, "gemini", cfg.AI.EmbedProvider)
	require.Equal(t, cfg.AI.Data, cfg.AI.EmbedData)
	require.Equal(t, "book_chunks", cfg.VectorStore.Collection)
	require.Equal(t, 768, cfg.VectorStore.Dimension)
	require.Equal(t, "Physical AI & Humanoid Robotics", cfg.Corpus.Topic)
	require.Equal(t, "info", cfg.LogConfig.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SIMILARITY_THRESHOLD", "0.55")
	t.Setenv("MAX_RESULTS", "3")
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)
	require.Equal(t, 0.55, cfg.RAG.SimilarityThreshold)
	require.Equal(t, 3, cfg.RAG.MaxResults)
}

func TestLoadFallbackEndpoints(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{
		"port": 8000,
		"ai": {
			"provider": "gemini",
			"data": {"api_key": "k"},
			"model": "gemini-2.0-flash",
			"embed_model": "text-embedding-004",
			"fallbacks": [
				{"provider": "openrouter", "data": {"api_key": "k2"}, "model": "deepseek/deepseek-chat"}
			],
			"embed_fallbacks": [
				{"provider": "openai", "data": {"api_key": "k3"}, "model": "text-embedding-3-small"}
			]
		},
		"vector_store": {"type": "qdrant", "data": {"url": "http://localhost:6333"}}
	}`))
	require.NoError(t, err)
	require.Len(t, cfg.AI.Fallbacks, 1)
	require.Equal(t, "openrouter", cfg.AI.Fallbacks[0].Provider)
	require.Equal(t, "deepseek/deepseek-chat", cfg.AI.Fallbacks[0].Model)
	require.Len(t, cfg.AI.EmbedFallbacks, 1)
	require.Equal(t, "text-embedding-3-small", cfg.AI.EmbedFallbacks[0].Model)
}

func TestLoadMalformedEnvOverride(t *testing.T) {
	t.Setenv("SIMILARITY_THRESHOLD", "not-a-number")
	_, err := Load(writeConfig(t, minimalConfig))
	require.Error(t, err)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "missing port", content: `{"ai":{"provider":"gemini","model":"m","embed_model":"e"},"vector_store":{"type":"qdrant"}}`},
		{name: "missing provider", content: `{"port":8000,"ai":{"model":"m","embed_model":"e"},"vector_store":{"type":"qdrant"}}`},
		{name: "missing model", content: `{"port":8000,"ai":{"provider":"gemini","embed_model":"e"},"vector_store":{"type":"qdrant"}}`},
		{name: "missing embed model", content: `{"port":8000,"ai":{"provider":"gemini","model":"m"},"vector_store":{"type":"qdrant"}}`},
		{name: "missing vector store", content: `{"port":8000,"ai":{"provider":"gemini","model":"m","embed_model":"e"}}`},
		{name: "fallback missing model", content: `{"port":8000,"ai":{"provider":"gemini","model":"m","embed_model":"e","fallbacks":[{"provider":"openrouter"}]},"vector_store":{"type":"qdrant"}}`},
		{name: "embed fallback missing provider", content: `{"port":8000,"ai":{"provider":"gemini","model":"m","embed_model":"e","embed_fallbacks":[{"model":"e2"}]},"vector_store":{"type":"qdrant"}}`},
		{name: "invalid json", content: `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
