package main

import (
	"fmt"
	"os"

	"github.com/google/gops/agent"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nyp-cnc/ragstore/config"
	"github.com/nyp-cnc/ragstore/embeddings"
	"github.com/nyp-cnc/ragstore/embeddings/ollama"
	"github.com/nyp-cnc/ragstore/embeddings/openai"
	"github.com/nyp-cnc/ragstore/ingest"
	"github.com/nyp-cnc/ragstore/ingest/keywords"
	"github.com/nyp-cnc/ragstore/logging"
	"github.com/nyp-cnc/ragstore/matching"
	"github.com/nyp-cnc/ragstore/vectordb"
)

// app wires the composition root: config, logger, embedder, collection
// registry, keyword databank and the ingestion pipeline.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *vectordb.Registry
	databank *keywords.Databank
	pipeline *ingest.Pipeline
}

func newApp(configPath string, development bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.LogLevel, development)
	if err != nil {
		return nil, err
	}
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	registry := vectordb.NewRegistry(cfg.DataRoot, embedder, cfg.EmbeddingModel, logger)
	databank := keywords.NewDatabank(cfg.KeywordBankPath, logger)
	pipeline := ingest.New(ingest.Config{
		BatchSize:        cfg.BatchSize,
		MaxBatchMemoryMB: cfg.MaxBatchMemoryMB,
		MaxWorkers:       cfg.MaxWorkers,
		ChunkSize:        cfg.ChunkSize,
		ChunkOverlap:     cfg.ChunkOverlap,
	}, logger, ingest.WithDatabank(databank))
	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		databank: databank,
		pipeline: pipeline,
	}, nil
}

func (a *app) pipelineConfig() ingest.Config {
	return ingest.Config{
		BatchSize:        a.cfg.BatchSize,
		MaxBatchMemoryMB: a.cfg.MaxBatchMemoryMB,
		MaxWorkers:       a.cfg.MaxWorkers,
		ChunkSize:        a.cfg.ChunkSize,
		ChunkOverlap:     a.cfg.ChunkOverlap,
	}
}

// pipelineWithMatcher rebuilds the pipeline with directory matching rules.
func (a *app) pipelineWithMatcher(m *matching.Matcher) *ingest.Pipeline {
	return ingest.New(a.pipelineConfig(), a.logger,
		ingest.WithDatabank(a.databank),
		ingest.WithMatcher(m))
}

func newEmbedder(cfg *config.Config) (embeddings.Embedder, error) {
	switch cfg.EmbeddingProvider {
	case "openai":
		return &openai.Embedder{C: openai.NewClient("", cfg.EmbeddingModel)}, nil
	case "ollama":
		var opts []ollama.ClientOption
		if cfg.OllamaBaseURL != "" {
			opts = append(opts, ollama.WithBaseURL(cfg.OllamaBaseURL))
		}
		return &ollama.Embedder{C: ollama.NewClient(cfg.EmbeddingModel, opts...)}, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProvider)
	}
}

func (a *app) close() {
	if err := a.registry.Close(); err != nil {
		a.logger.Warn("failed to close collections", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func main() {
	if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
		fmt.Fprintf(os.Stderr, "gops agent: %v\n", err)
	}

	var (
		configPath  string
		development bool
	)
	root := &cobra.Command{
		Use:           "ragstore",
		Short:         "Embedded vector store and document ingestion pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config yaml path (optional)")
	root.PersistentFlags().BoolVar(&development, "dev", false, "development logging")

	root.AddCommand(newIngestCmd(&configPath, &development))
	root.AddCommand(newQueryCmd(&configPath, &development))
	root.AddCommand(newKeywordsCmd(&configPath, &development))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
