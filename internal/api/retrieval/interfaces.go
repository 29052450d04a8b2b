package retrieval

import (
	"context"

	"github.com/futig/studyroom-rag/internal/entity"
)

type RetrievalUsecase interface {
	BuildContext(ctx context.Context, roomID string, req *entity.ContextRequest) (*entity.ContextResponse, error)
	ExportContext(ctx context.Context, roomID string, req *entity.ContextRequest) (*entity.ExportedContext, error)
}
