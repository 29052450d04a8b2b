package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/avast/retry-go/v4"
	"github.com/futig/studyroom-rag/internal/config"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIConnector embeds texts with the OpenAI embeddings API (or any compatible endpoint)
type OpenAIConnector struct {
	config config.EmbeddingConfig
	client *openai.Client
	logger *zap.Logger
}

func NewOpenAIConnector(cfg config.EmbeddingConfig, logger *zap.Logger) *OpenAIConnector {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIConnector{
		config: cfg,
		client: openai.NewClientWithConfig(clientCfg),
		logger: logger,
	}
}

func (c *OpenAIConnector) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	req := openai.EmbeddingRequestStrings{
		Input: texts,
		Model: openai.EmbeddingModel(c.config.Model),
	}
	// Older models reject the dimensions parameter
	if strings.HasPrefix(c.config.Model, "text-embedding-3") {
		req.Dimensions = c.config.Dimensions
	}

	var resp openai.EmbeddingResponse
	err := c.config.Retry.Do(ctx, func() error {
		var err error
		resp, err = c.client.CreateEmbeddings(ctx, req)
		return err
	}, retry.RetryIf(isRetryableOpenAIError))
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}

	// The API reports an index per item; order by it rather than trusting response order
	sort.SliceStable(resp.Data, func(i, j int) bool {
		return resp.Data[i].Index < resp.Data[j].Index
	})

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}

	ctxzap.Debug(ctx, "embeddings created",
		zap.String("model", c.config.Model),
		zap.Int("inputs", len(texts)),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
	)
	return vectors, nil
}

func isRetryableOpenAIError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}

	// Transport failures carry neither type
	return true
}
