package embedding

import (
	"context"
	"fmt"

	"github.com/futig/studyroom-rag/internal/config"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"
)

// OllamaConnector embeds texts with a local Ollama model through langchaingo
type OllamaConnector struct {
	config   config.EmbeddingConfig
	embedder *embeddings.EmbedderImpl
	logger   *zap.Logger
}

func NewOllamaConnector(cfg config.EmbeddingConfig, logger *zap.Logger) (*OllamaConnector, error) {
	opts := []ollama.Option{ollama.WithModel(cfg.Model)}
	if cfg.BaseURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
	}

	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("init ollama client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm, embeddings.WithBatchSize(cfg.BatchSize))
	if err != nil {
		return nil, fmt.Errorf("create ollama embedder: %w", err)
	}

	return &OllamaConnector{
		config:   cfg,
		embedder: embedder,
		logger:   logger,
	}, nil
}

func (c *OllamaConnector) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32
	err := c.config.Retry.Do(ctx, func() error {
		var err error
		vectors, err = c.embedder.EmbedDocuments(ctx, texts)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("ollama embed documents: %w", err)
	}

	ctxzap.Debug(ctx, "embeddings created", zap.String("model", c.config.Model), zap.Int("inputs", len(texts)))
	return vectors, nil
}
