package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/Sumayyafazalhussain/humanoid-book/internal/config"
	"github.com/Sumayyafazalhussain/humanoid-book/internal/model"
)

// Index stores chunk embeddings and answers nearest-neighbor queries.
// Search returns hits in descending score order; entries below scoreThreshold
// are filtered out by the index itself.
type Index interface {
	EnsureCollection(ctx context.Context) error
	Upsert(ctx context.Context, points []model.ChunkPoint) error
	Search(ctx context.Context, vector []float32, limit int, scoreThreshold float64) ([]model.SearchHit, error)
	Count(ctx context.Context) (int64, error)
	Drop(ctx context.Context) error
}

type Factory func(cfg config.VectorStoreConfig) (Index, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func Register(name string, factory Factory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registryMu.Lock()
	registry[key] = factory
	registryMu.Unlock()
}

func New(cfg config.VectorStoreConfig) (Index, error) {
	key := strings.ToLower(strings.TrimSpace(cfg.Type))
	if key == "" {
		return nil, fmt.Errorf("vector_store.type is required")
	}
	registryMu.RLock()
	factory := registry[key]
	registryMu.RUnlock()
	if factory == nil {
		return nil, fmt.Errorf("unsupported vector store type: %s", cfg.Type)
	}
	return factory(cfg)
}

func DecodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("vector store config is required")
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode vector store config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode vector store config: %w", err)
	}
	return nil
}
