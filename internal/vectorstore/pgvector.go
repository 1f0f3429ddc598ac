package vectorstore

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/Sumayyafazalhussain/humanoid-book/internal/config"
	"github.com/Sumayyafazalhussain/humanoid-book/internal/model"
)

type pgvectorConfig struct {
	DSN string `json:"dsn"`
}

// pgvectorIndex keeps chunk embeddings in Postgres with the pgvector
// extension, one table per collection, cosine distance.
type pgvectorIndex struct {
	db        *sqlx.DB
	table     string
	dimension int
}

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func init() {
	Register("pgvector", createPgvectorIndex)
}

func createPgvectorIndex(cfg config.VectorStoreConfig) (Index, error) {
	args := &pgvectorConfig{}
	if err := DecodeConfig(cfg.Data, args); err != nil {
		return nil, err
	}
	if args.DSN == "" {
		return nil, fmt.Errorf("pgvector dsn is required")
	}
	if !tableNamePattern.MatchString(cfg.Collection) {
		return nil, fmt.Errorf("invalid collection name: %s", cfg.Collection)
	}
	db, err := sqlx.Connect("postgres", args.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &pgvectorIndex{
		db:        db,
		table:     cfg.Collection,
		dimension: cfg.Dimension,
	}, nil
}

func (s *pgvectorIndex) EnsureCollection(ctx context.Context) error {
	if s.dimension <= 0 {
		return fmt.Errorf("invalid dimension: %d", s.dimension)
	}
	if _, err := s.db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}
	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id text PRIMARY KEY,
		filename text NOT NULL,
		position int NOT NULL,
		content text NOT NULL,
		embedding vector(%d) NOT NULL
	)`, s.table, s.dimension)
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create collection table: %w", err)
	}
	return nil
}

func (s *pgvectorIndex) Upsert(ctx context.Context, points []model.ChunkPoint) error {
	if len(points) == 0 {
		return nil
	}
	query := fmt.Sprintf(`INSERT INTO %s (id, filename, position, content, embedding)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			filename = EXCLUDED.filename,
			position = EXCLUDED.position,
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding`, s.table)
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, p := range points {
		if _, err := tx.ExecContext(ctx, query, p.ID, p.Filename, p.Position, p.Content, pgvector.NewVector(p.Vector)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *pgvectorIndex) Search(ctx context.Context, vector []float32, limit int, scoreThreshold float64) ([]model.SearchHit, error) {
	if limit <= 0 {
		limit = 5
	}
	query := fmt.Sprintf(`SELECT content, filename, 1 - (embedding <=> $1) AS score
		FROM %s
		WHERE 1 - (embedding <=> $1) >= $2
		ORDER BY embedding <=> $1
		LIMIT $3`, s.table)
	rows, err := s.db.QueryxContext(ctx, query, pgvector.NewVector(vector), scoreThreshold, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var hits []model.SearchHit
	for rows.Next() {
		var hit model.SearchHit
		if err := rows.Scan(&hit.Content, &hit.Filename, &hit.Score); err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

func (s *pgvectorIndex) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.GetContext(ctx, &count, fmt.Sprintf("SELECT COUNT(*) FROM %s", s.table)); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *pgvectorIndex) Drop(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", s.table))
	return err
}
