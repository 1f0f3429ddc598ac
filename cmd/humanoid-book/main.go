package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/Sumayyafazalhussain/humanoid-book/internal/ai"
	"github.com/Sumayyafazalhussain/humanoid-book/internal/config"
	"github.com/Sumayyafazalhussain/humanoid-book/internal/embedcache"
	"github.com/Sumayyafazalhussain/humanoid-book/internal/filestore"
	"github.com/Sumayyafazalhussain/humanoid-book/internal/handler"
	"github.com/Sumayyafazalhussain/humanoid-book/internal/ingest"
	"github.com/Sumayyafazalhussain/humanoid-book/internal/job"
	"github.com/Sumayyafazalhussain/humanoid-book/internal/middleware"
	"github.com/Sumayyafazalhussain/humanoid-book/internal/schedule"
	"github.com/Sumayyafazalhussain/humanoid-book/internal/service"
	"github.com/Sumayyafazalhussain/humanoid-book/internal/vectorstore"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "humanoid-book",
		Short: "textbook RAG query service",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the RAG server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			_ = godotenv.Load()
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
			return runServer(cfg)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("vector_store", cfg.VectorStore.Type),
		zap.Float64("similarity_threshold", cfg.RAG.SimilarityThreshold),
		zap.Int("max_results", cfg.RAG.MaxResults),
	)

	genEndpoints := append([]config.AIEndpointConfig{
		{Provider: cfg.AI.Provider, Data: cfg.AI.Data, Model: cfg.AI.Model},
	}, cfg.AI.Fallbacks...)
	generator, err := ai.BuildGeneratorChain(genEndpoints)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	embedEndpoints := append([]config.AIEndpointConfig{
		{Provider: cfg.AI.EmbedProvider, Data: cfg.AI.EmbedData, Model: cfg.AI.EmbedModel},
	}, cfg.AI.EmbedFallbacks...)
	embedChain, err := ai.BuildEmbedderChain(embedEndpoints)
	if err != nil {
		return fmt.Errorf("init embed provider: %w", err)
	}
	embedder := embedcache.WrapLruCacheToEmbedder(
		embedChain,
		cfg.AI.EmbedCacheSize,
		time.Duration(cfg.AI.EmbedCacheTTLMinutes)*time.Minute,
	)

	index, err := vectorstore.New(cfg.VectorStore)
	if err != nil {
		return fmt.Errorf("init vector store: %w", err)
	}
	corpusStore, err := filestore.New(cfg.Corpus.Store)
	if err != nil {
		return fmt.Errorf("init corpus store: %w", err)
	}

	ragService := service.NewRAGService(embedder, index, generator, service.RAGOptions{
		SimilarityThreshold: cfg.RAG.SimilarityThreshold,
		MaxResults:          cfg.RAG.MaxResults,
		Model:               cfg.AI.Model,
		Topic:               cfg.Corpus.Topic,
	})
	ingestService := service.NewIngestService(corpusStore, ingest.NewChunker(), embedder, index)

	deps := handler.RouterDeps{
		Status:         handler.NewStatusHandler(),
		RAG:            handler.NewRAGHandler(ragService),
		Ingest:         handler.NewIngestHandler(ingestService),
		AdminJWTSecret: []byte(cfg.AdminJWTSecret),
		QueryWindow:    time.Second,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewIndexStatsJob(index), cfg.Schedule.IndexStatsSpec); err != nil {
		return fmt.Errorf("schedule index stats: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
