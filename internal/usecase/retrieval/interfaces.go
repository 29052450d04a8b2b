package retrieval

import (
	"context"

	"github.com/futig/studyroom-rag/internal/entity"
	"github.com/futig/studyroom-rag/internal/pkg/formatter"
)

// TopicClassifier decides which retrieval path a topic takes
type TopicClassifier interface {
	Classify(topic string) entity.TopicScope
}

type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

type ChunkReader interface {
	FetchByFiles(ctx context.Context, fileIDs []string) ([]*entity.Chunk, error)
	SearchSimilar(ctx context.Context, query []float32, fileIDs []string, threshold float64, limit int) ([]*entity.ScoredChunk, error)
}

type FileLister interface {
	ListByRoom(ctx context.Context, roomID string) ([]*entity.SourceFile, error)
}

type FormatterFactory interface {
	Create(format entity.ResultFormat) (formatter.Formatter, error)
}
