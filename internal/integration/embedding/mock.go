package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector produces deterministic bag-of-words vectors: texts sharing words get
// positive cosine similarity, so retrieval behaves sensibly without a model.
type MockConnector struct {
	dimensions int
	logger     *zap.Logger
}

func NewMockConnector(dimensions int, logger *zap.Logger) *MockConnector {
	if dimensions <= 0 {
		dimensions = 1536
	}
	return &MockConnector{
		dimensions: dimensions,
		logger:     logger,
	}
}

func (m *MockConnector) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	ctxzap.Info(ctx, "[MOCK] embedding texts", zap.Int("inputs", len(texts)))

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = m.vector(text)
	}
	return vectors, nil
}

func (m *MockConnector) vector(text string) []float32 {
	v := make([]float32, m.dimensions)

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		v[int(h.Sum32())%m.dimensions]++
	}

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		// Unit vector keeps cosine distance defined for empty input
		v[0] = 1
		return v
	}

	scale := float32(1 / math.Sqrt(norm))
	for i := range v {
		v[i] *= scale
	}
	return v
}
