package ingest

import (
	"context"

	"github.com/futig/studyroom-rag/internal/entity"
	"github.com/futig/studyroom-rag/internal/usecase/extractor"
)

type TextExtractor interface {
	CheckConfigured(kind entity.FileKind) error
	Extract(ctx context.Context, in extractor.Input) (string, error)
}

type EmbeddingGenerator interface {
	Generate(ctx context.Context, texts []string) ([][]float32, error)
}

type ChunkWriter interface {
	Replace(ctx context.Context, fileID string, chunks []*entity.Chunk) (int64, error)
}

type FileDownloader interface {
	Download(ctx context.Context, path string) ([]byte, error)
}
