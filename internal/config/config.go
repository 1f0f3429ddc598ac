package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port           int               `json:"port"`
	AdminJWTSecret string            `json:"admin_jwt_secret"`
	CORSAllowlist  []string          `json:"cors_allowlist"`
	LogConfig      logger.LogConfig  `json:"log_config"`
	RAG            RAGConfig         `json:"rag"`
	AI             AIConfig          `json:"ai"`
	VectorStore    VectorStoreConfig `json:"vector_store"`
	Corpus         CorpusConfig      `json:"corpus"`
	Schedule       ScheduleConfig    `json:"schedule"`
}

// RAGConfig holds the two retrieval tunables. Both can be overridden at
// startup with the SIMILARITY_THRESHOLD and MAX_RESULTS environment variables.
type RAGConfig struct {
	SimilarityThreshold float64 `json:"similarity_threshold"`
	MaxResults          int     `json:"max_results"`
}

// AIEndpointConfig names one provider/model pair. The fallback lists hold
// endpoints tried in order after the primary one fails.
type AIEndpointConfig struct {
	Provider string                 `json:"provider"`
	Data     map[string]interface{} `json:"data"`
	Model    string                 `json:"model"`
}

type AIConfig struct {
	Provider             string                 `json:"provider"`
	Data                 map[string]interface{} `json:"data"`
	Model                string                 `json:"model"`
	Fallbacks            []AIEndpointConfig     `json:"fallbacks"`
	EmbedProvider        string                 `json:"embed_provider"`
	EmbedData            map[string]interface{} `json:"embed_data"`
	EmbedModel           string                 `json:"embed_model"`
	EmbedFallbacks       []AIEndpointConfig     `json:"embed_fallbacks"`
	EmbedCacheSize       int                    `json:"embed_cache_size"`
	EmbedCacheTTLMinutes int                    `json:"embed_cache_ttl_minutes"`
}

type VectorStoreConfig struct {
	Type       string                 `json:"type"`
	Collection string                 `json:"collection"`
	Dimension  int                    `json:"dimension"`
	Data       map[string]interface{} `json:"data"`
}

type CorpusConfig struct {
	Topic string            `json:"topic"`
	Store CorpusStoreConfig `json:"store"`
}

type CorpusStoreConfig struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

type ScheduleConfig struct {
	IndexStatsSpec string `json:"index_stats_spec"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.RAG.SimilarityThreshold == 0 {
		cfg.RAG.SimilarityThreshold = 0.7
	}
	if cfg.RAG.MaxResults == 0 {
		cfg.RAG.MaxResults = 5
	}
	if cfg.AI.Provider == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	if cfg.AI.Model == "" {
		return nil, fmt.Errorf("ai.model is required")
	}
	if cfg.AI.EmbedProvider == "" {
		cfg.AI.EmbedProvider = cfg.AI.Provider
	}
	if cfg.AI.EmbedData == nil {
		cfg.AI.EmbedData = cfg.AI.Data
	}
	if cfg.AI.EmbedModel == "" {
		return nil, fmt.Errorf("ai.embed_model is required")
	}
	for i, fb := range cfg.AI.Fallbacks {
		if fb.Provider == "" || fb.Model == "" {
			return nil, fmt.Errorf("ai.fallbacks[%d]: provider and model are required", i)
		}
	}
	for i, fb := range cfg.AI.EmbedFallbacks {
		if fb.Provider == "" || fb.Model == "" {
			return nil, fmt.Errorf("ai.embed_fallbacks[%d]: provider and model are required", i)
		}
	}
	if cfg.VectorStore.Type == "" {
		return nil, fmt.Errorf("vector_store.type is required")
	}
	if cfg.VectorStore.Collection == "" {
		cfg.VectorStore.Collection = "book_chunks"
	}
	if cfg.VectorStore.Dimension == 0 {
		cfg.VectorStore.Dimension = 768
	}
	if cfg.Corpus.Topic == "" {
		cfg.Corpus.Topic = "Physical AI & Humanoid Robotics"
	}
	if cfg.Schedule.IndexStatsSpec == "" {
		cfg.Schedule.IndexStatsSpec = "0 * * * *"
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if raw := os.Getenv("SIMILARITY_THRESHOLD"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("parse SIMILARITY_THRESHOLD: %w", err)
		}
		cfg.RAG.SimilarityThreshold = value
	}
	if raw := os.Getenv("MAX_RESULTS"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("parse MAX_RESULTS: %w", err)
		}
		cfg.RAG.MaxResults = value
	}
	return nil
}
