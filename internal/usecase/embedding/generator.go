package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/futig/studyroom-rag/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const DefaultBatchSize = 100

type Config struct {
	BatchSize int
	// Dimensions is the expected vector length; 0 accepts whatever the model returns
	// as long as every vector in a call agrees.
	Dimensions    int
	QueryCacheTTL time.Duration
}

// Generator turns chunk texts into vectors, issuing batches sequentially
type Generator struct {
	embedder   Embedder
	batchSize  int
	dimensions int
	queries    *cache.Cache
	logger     *zap.Logger
}

func NewGenerator(embedder Embedder, cfg Config, logger *zap.Logger) *Generator {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	var queries *cache.Cache
	if cfg.QueryCacheTTL > 0 {
		queries = cache.New(cfg.QueryCacheTTL, 2*cfg.QueryCacheTTL)
	}

	return &Generator{
		embedder:   embedder,
		batchSize:  batchSize,
		dimensions: cfg.Dimensions,
		queries:    queries,
		logger:     logger,
	}
}

// Generate embeds texts in batches. A count or dimension mismatch fails the whole call.
func (g *Generator) Generate(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += g.batchSize {
		end := min(start+g.batchSize, len(texts))

		batch, err := g.embedder.Embed(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch [%d,%d): %w", start, end, err)
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("%w: batch [%d,%d) returned %d vectors", entity.ErrEmbeddingMismatch, start, end, len(batch))
		}

		vectors = append(vectors, batch...)

		ctxzap.Debug(ctx, "embedding batch done", zap.Int("start", start), zap.Int("end", end))
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", entity.ErrEmbeddingMismatch, len(vectors), len(texts))
	}

	if err := g.checkDimensions(vectors); err != nil {
		return nil, err
	}

	return vectors, nil
}

func (g *Generator) checkDimensions(vectors [][]float32) error {
	want := g.dimensions
	if want == 0 {
		want = len(vectors[0])
	}
	for i, v := range vectors {
		if len(v) != want || len(v) == 0 {
			return fmt.Errorf("%w: vector %d has %d dimensions, want %d", entity.ErrEmbeddingMismatch, i, len(v), want)
		}
	}
	return nil
}

// EmbedQuery embeds a single retrieval query, reusing recent results
func (g *Generator) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	key := queryKey(text)
	if g.queries != nil {
		if v, ok := g.queries.Get(key); ok {
			ctxzap.Debug(ctx, "query embedding cache hit")
			return v.([]float32), nil
		}
	}

	vectors, err := g.Generate(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	if g.queries != nil {
		g.queries.SetDefault(key, vectors[0])
	}
	return vectors[0], nil
}

func queryKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
