package file

import (
	"context"

	"github.com/futig/studyroom-rag/internal/entity"
)

type FileUsecase interface {
	UploadFile(ctx context.Context, req *entity.UploadFileRequest) (*entity.UploadFileResult, error)
	SaveFile(ctx context.Context, req *entity.UploadFileRequest) (*entity.SourceFile, []byte, error)
	VectorizeContent(ctx context.Context, file *entity.SourceFile, content []byte) (*entity.VectorizeResult, error)
	RevectorizeFile(ctx context.Context, fileID string) (*entity.VectorizeResult, error)
	GetFile(ctx context.Context, fileID string) (*entity.SourceFile, error)
	ListFiles(ctx context.Context, roomID string) ([]*entity.SourceFile, error)
	DeleteFile(ctx context.Context, fileID string) error
}

type CallbackConnector interface {
	SendError(ctx context.Context, callbackURL string, requestID string, message string, details map[string]any)
	SendFileVectorized(ctx context.Context, callbackURL string, requestID string, data *entity.CallbackFileVectorizedData)
}
