package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Sumayyafazalhussain/humanoid-book/internal/handler"
	"github.com/Sumayyafazalhussain/humanoid-book/internal/ingest"
	"github.com/Sumayyafazalhussain/humanoid-book/internal/model"
	"github.com/Sumayyafazalhussain/humanoid-book/internal/pkg/errcode"
	"github.com/Sumayyafazalhussain/humanoid-book/internal/pkg/jwt"
	"github.com/Sumayyafazalhussain/humanoid-book/internal/service"
)

type stubEmbedder struct {
	calls int
	err   error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []float32{0.1, 0.2}, nil
}

func (s *stubEmbedder) ModelName() string { return "stub-embed" }

type stubIndex struct {
	calls int
	hits  []model.SearchHit
}

func (s *stubIndex) EnsureCollection(ctx context.Context) error { return nil }

func (s *stubIndex) Upsert(ctx context.Context, points []model.ChunkPoint) error { return nil }

func (s *stubIndex) Search(ctx context.Context, vector []float32, limit int, scoreThreshold float64) ([]model.SearchHit, error) {
	s.calls++
	return s.hits, nil
}

func (s *stubIndex) Count(ctx context.Context) (int64, error) { return 0, nil }

func (s *stubIndex) Drop(ctx context.Context) error { return nil }

type stubGenerator struct {
	out string
	err error
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.out, nil
}

func (s *stubGenerator) ModelName() string { return "stub-model" }

type stubCorpus struct {
	docs map[string]string
}

func (s *stubCorpus) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.docs))
	for key := range s.docs {
		keys = append(keys, key)
	}
	return keys, nil
}

func (s *stubCorpus) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(s.docs[key])), nil
}

var testJWTSecret = []byte("test-secret")

func setupRouter(t *testing.T, embedder *stubEmbedder, index *stubIndex, gen *stubGenerator) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ragService := service.NewRAGService(embedder, index, gen, service.RAGOptions{
		SimilarityThreshold: 0.7,
		MaxResults:          5,
		Model:               "gemini-2.0-flash",
		Topic:               "Physical AI & Humanoid Robotics",
	})
	corpus := &stubCorpus{docs: map[string]string{"ch1.md": "# Chapter 1\n\nRobots are machines.\n"}}
	ingestService := service.NewIngestService(corpus, ingest.NewChunker(), embedder, index)

	deps := handler.RouterDeps{
		Status:         handler.NewStatusHandler(),
		RAG:            handler.NewRAGHandler(ragService),
		Ingest:         handler.NewIngestHandler(ingestService),
		AdminJWTSecret: testJWTSecret,
	}

	engine := gin.New()
	handler.RegisterRoutes(engine.Group("/api/v1"), deps)
	return engine
}

type envelope struct {
	Code int                    `json:"code"`
	Msg  string                 `json:"msg"`
	Data map[string]interface{} `json:"data"`
}

func doJSON(t *testing.T, router http.Handler, method, path string, body string, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	var result envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	return resp, result
}

func TestQueryEndpoint(t *testing.T) {
	index := &stubIndex{hits: []model.SearchHit{
		{Content: "A humanoid robot mimics human form.", Filename: "ch1.pdf", Score: 0.85},
	}}
	router := setupRouter(t, &stubEmbedder{}, index, &stubGenerator{out: "An answer."})

	resp, result := doJSON(t, router, http.MethodPost, "/api/v1/query", `{"query":"What is a humanoid robot?"}`, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "An answer.", result.Data["answer"])
	require.Equal(t, []interface{}{"ch1.pdf"}, result.Data["sources"])
	require.Equal(t, float64(1), result.Data["chunks_used"])
	require.Equal(t, "What is a humanoid robot?", result.Data["query"])
	require.Equal(t, "gemini-2.0-flash", result.Data["model"])
}

func TestQueryEndpointInvalidBody(t *testing.T) {
	router := setupRouter(t, &stubEmbedder{}, &stubIndex{}, &stubGenerator{})

	resp, result := doJSON(t, router, http.MethodPost, "/api/v1/query", `{}`, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, errcode.ErrInvalid, result.Code)
}

func TestQueryEndpointProviderFailure(t *testing.T) {
	index := &stubIndex{hits: []model.SearchHit{{Content: "x", Filename: "f", Score: 0.8}}}
	router := setupRouter(t, &stubEmbedder{}, index, &stubGenerator{err: errors.New("quota exceeded")})

	resp, result := doJSON(t, router, http.MethodPost, "/api/v1/query", `{"query":"q"}`, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	answer, _ := result.Data["answer"].(string)
	require.True(t, strings.HasPrefix(answer, "Error processing your query: "))
	require.Equal(t, "quota exceeded", result.Data["error"])
	require.Equal(t, "q", result.Data["query"])
}

func TestSelectedTextEndpoint(t *testing.T) {
	embedder := &stubEmbedder{}
	index := &stubIndex{}
	router := setupRouter(t, embedder, index, &stubGenerator{out: "Blue."})

	resp, result := doJSON(t, router, http.MethodPost, "/api/v1/query_selected_text",
		`{"query":"What color is the sky?","selected_text":"The sky is blue."}`, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "Blue.", result.Data["answer"])
	require.Equal(t, "User-selected text", result.Data["source"])
	require.Equal(t, float64(16), result.Data["selected_text_length"])
	require.Zero(t, embedder.calls)
	require.Zero(t, index.calls)
}

func TestSelectedTextEndpointProviderFailure(t *testing.T) {
	router := setupRouter(t, &stubEmbedder{}, &stubIndex{}, &stubGenerator{err: errors.New("boom")})

	resp, result := doJSON(t, router, http.MethodPost, "/api/v1/query_selected_text",
		`{"query":"q","selected_text":"t"}`, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "Error: boom", result.Data["answer"])
	require.Equal(t, "Error", result.Data["source"])
	require.Equal(t, "boom", result.Data["error"])
}

func TestIngestRequiresAuth(t *testing.T) {
	router := setupRouter(t, &stubEmbedder{}, &stubIndex{}, &stubGenerator{})

	resp, result := doJSON(t, router, http.MethodPost, "/api/v1/ingest", ``, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, errcode.ErrUnauthorized, result.Code)
}

func TestIngestWithToken(t *testing.T) {
	router := setupRouter(t, &stubEmbedder{}, &stubIndex{}, &stubGenerator{})

	token, err := jwt.GenerateToken("admin", testJWTSecret, time.Hour)
	require.NoError(t, err)

	resp, result := doJSON(t, router, http.MethodPost, "/api/v1/ingest", ``, map[string]string{
		"Authorization": "Bearer " + token,
	})
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "Ingestion completed successfully", result.Data["message"])
	data, ok := result.Data["data"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, float64(1), data["documents"])
}

func TestHealthEndpoint(t *testing.T) {
	router := setupRouter(t, &stubEmbedder{}, &stubIndex{}, &stubGenerator{})

	resp, result := doJSON(t, router, http.MethodGet, "/api/v1/health", ``, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "healthy", result.Data["status"])
}
