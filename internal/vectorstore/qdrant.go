package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Sumayyafazalhussain/humanoid-book/internal/config"
	"github.com/Sumayyafazalhussain/humanoid-book/internal/model"
)

type qdrantConfig struct {
	URL            string `json:"url"`
	APIKey         string `json:"api_key"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// qdrantIndex is a minimal REST client to Qdrant assuming cosine distance.
type qdrantIndex struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	client     *http.Client
}

func init() {
	Register("qdrant", createQdrantIndex)
}

func createQdrantIndex(cfg config.VectorStoreConfig) (Index, error) {
	args := &qdrantConfig{}
	if err := DecodeConfig(cfg.Data, args); err != nil {
		return nil, err
	}
	if args.URL == "" {
		return nil, fmt.Errorf("qdrant url is required")
	}
	timeout := time.Duration(args.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &qdrantIndex{
		url:        args.URL,
		apiKey:     args.APIKey,
		collection: cfg.Collection,
		dimension:  cfg.Dimension,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

func (s *qdrantIndex) EnsureCollection(ctx context.Context) error {
	if s.dimension <= 0 {
		return fmt.Errorf("invalid dimension: %d", s.dimension)
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     s.dimension,
			"distance": "Cosine",
		},
	}
	// Qdrant answers 200 when the collection already exists with the same schema.
	return s.putJSON(ctx, fmt.Sprintf("%s/collections/%s", s.url, s.collection), body)
}

func (s *qdrantIndex) Upsert(ctx context.Context, points []model.ChunkPoint) error {
	if len(points) == 0 {
		return nil
	}
	items := make([]map[string]any, 0, len(points))
	for _, p := range points {
		items = append(items, map[string]any{
			"id":     p.ID,
			"vector": p.Vector,
			"payload": map[string]any{
				"content":  p.Content,
				"filename": p.Filename,
				"position": p.Position,
			},
		})
	}
	body := map[string]any{"points": items}
	return s.putJSON(ctx, fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.collection), body)
}

func (s *qdrantIndex) Search(ctx context.Context, vector []float32, limit int, scoreThreshold float64) ([]model.SearchHit, error) {
	if limit <= 0 {
		limit = 5
	}
	req := map[string]any{
		"vector":          vector,
		"limit":           limit,
		"score_threshold": scoreThreshold,
		"with_payload":    true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := s.postJSON(ctx, fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection), req, &resp); err != nil {
		return nil, err
	}
	hits := make([]model.SearchHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hit := model.SearchHit{Score: r.Score}
		if v, ok := r.Payload["content"].(string); ok {
			hit.Content = v
		}
		if v, ok := r.Payload["filename"].(string); ok {
			hit.Filename = v
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func (s *qdrantIndex) Count(ctx context.Context) (int64, error) {
	var resp struct {
		Result struct {
			Count int64 `json:"count"`
		} `json:"result"`
	}
	if err := s.postJSON(ctx, fmt.Sprintf("%s/collections/%s/points/count", s.url, s.collection), map[string]any{"exact": true}, &resp); err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

func (s *qdrantIndex) Drop(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/collections/%s", s.url, s.collection), nil)
	if err != nil {
		return err
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant DELETE collection failed: %s", resp.Status)
	}
	return nil
}

func (s *qdrantIndex) putJSON(ctx context.Context, url string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant PUT %s failed: %s", url, resp.Status)
	}
	return nil
}

func (s *qdrantIndex) postJSON(ctx context.Context, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
