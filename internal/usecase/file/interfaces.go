package file

import (
	"context"

	"github.com/futig/studyroom-rag/internal/entity"
)

type FileRepository interface {
	Create(ctx context.Context, file entity.SourceFile) (*entity.SourceFile, error)
	Get(ctx context.Context, id string) (*entity.SourceFile, error)
	ListByRoom(ctx context.Context, roomID string) ([]*entity.SourceFile, error)
	Delete(ctx context.Context, id string) error
}

type ChunkRemover interface {
	DeleteByFile(ctx context.Context, fileID string) error
}

type BlobStorage interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	Delete(ctx context.Context, path string) error
}

type Vectorizer interface {
	VectorizeFile(ctx context.Context, req entity.VectorizeRequest) (*entity.VectorizeResult, error)
}
