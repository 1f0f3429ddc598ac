package service

import (
	"context"
	"fmt"
	"io"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Sumayyafazalhussain/humanoid-book/internal/ai"
	"github.com/Sumayyafazalhussain/humanoid-book/internal/filestore"
	"github.com/Sumayyafazalhussain/humanoid-book/internal/ingest"
	"github.com/Sumayyafazalhussain/humanoid-book/internal/model"
	"github.com/Sumayyafazalhussain/humanoid-book/internal/vectorstore"
)

// IngestService loads the textbook corpus from the document store, chunks
// each markdown file, embeds the chunks and upserts them into the index.
type IngestService struct {
	store    filestore.Store
	chunker  *ingest.Chunker
	embedder ai.IEmbedder
	index    vectorstore.Index
}

func NewIngestService(store filestore.Store, chunker *ingest.Chunker, embedder ai.IEmbedder, index vectorstore.Index) *IngestService {
	return &IngestService{
		store:    store,
		chunker:  chunker,
		embedder: embedder,
		index:    index,
	}
}

func (s *IngestService) Run(ctx context.Context) (*model.IngestResult, error) {
	logger := logutil.GetLogger(ctx)
	if err := s.index.EnsureCollection(ctx); err != nil {
		return nil, fmt.Errorf("ensure collection: %w", err)
	}
	keys, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list corpus documents: %w", err)
	}
	result := &model.IngestResult{}
	for _, key := range keys {
		count, err := s.ingestDocument(ctx, key)
		if err != nil {
			logger.Error("document ingestion failed", zap.String("document", key), zap.Error(err))
			return nil, fmt.Errorf("ingest %s: %w", key, err)
		}
		result.Documents++
		result.Chunks += count
		logger.Info("document ingested", zap.String("document", key), zap.Int("chunks", count))
	}
	logger.Info("ingestion completed", zap.Int("documents", result.Documents), zap.Int("chunks", result.Chunks))
	return result, nil
}

// Reindex drops the collection and ingests the corpus from scratch.
func (s *IngestService) Reindex(ctx context.Context) (*model.IngestResult, error) {
	if err := s.index.Drop(ctx); err != nil {
		return nil, fmt.Errorf("drop collection: %w", err)
	}
	return s.Run(ctx)
}

func (s *IngestService) ingestDocument(ctx context.Context, key string) (int, error) {
	reader, err := s.store.Open(ctx, key)
	if err != nil {
		return 0, err
	}
	defer reader.Close()
	content, err := io.ReadAll(reader)
	if err != nil {
		return 0, err
	}
	chunks, err := s.chunker.Chunk(ctx, string(content))
	if err != nil {
		return 0, err
	}
	points := make([]model.ChunkPoint, 0, len(chunks))
	for _, chunk := range chunks {
		vector, err := s.embedder.Embed(ctx, chunk.Content, "RETRIEVAL_DOCUMENT")
		if err != nil {
			return 0, fmt.Errorf("embed chunk %d: %w", chunk.Position, err)
		}
		points = append(points, model.ChunkPoint{
			ID:       fmt.Sprintf("%s:%d", key, chunk.Position),
			Vector:   vector,
			Content:  chunk.Content,
			Filename: key,
			Position: chunk.Position,
		})
	}
	if err := s.index.Upsert(ctx, points); err != nil {
		return 0, fmt.Errorf("upsert points: %w", err)
	}
	return len(points), nil
}
