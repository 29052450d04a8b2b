package file

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/futig/studyroom-rag/internal/entity"
	"github.com/futig/studyroom-rag/internal/pkg/logger"
	"github.com/futig/studyroom-rag/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// FileUsecase manages uploaded study documents and keeps their chunks in sync
type FileUsecase struct {
	files       FileRepository
	chunks      ChunkRemover
	storage     BlobStorage
	vectorizer  Vectorizer
	filesPrefix string
	logger      *zap.Logger
}

func NewUsecase(
	files FileRepository,
	chunks ChunkRemover,
	storage BlobStorage,
	vectorizer Vectorizer,
	filesPrefix string,
	logger *zap.Logger,
) *FileUsecase {
	return &FileUsecase{
		files:       files,
		chunks:      chunks,
		storage:     storage,
		vectorizer:  vectorizer,
		filesPrefix: filesPrefix,
		logger:      logger,
	}
}

// UploadFile stores the document and vectorizes it. A vectorization failure is reported
// in the result and never undoes the stored file.
func (uc *FileUsecase) UploadFile(ctx context.Context, req *entity.UploadFileRequest) (*entity.UploadFileResult, error) {
	file, content, err := uc.SaveFile(ctx, req)
	if err != nil {
		return nil, err
	}

	result := &entity.UploadFileResult{File: file}

	vectorized, err := uc.VectorizeContent(ctx, file, content)
	if err != nil {
		ctxzap.Error(ctx, "vectorization failed, keeping uploaded file",
			zap.String("file_id", file.ID),
			zap.Error(err),
		)
		result.VectorizeErr = err
		return result, nil
	}

	result.ChunkCount = vectorized.ChunkCount
	return result, nil
}

// SaveFile writes the blob and its metadata row and returns the file content for vectorization
func (uc *FileUsecase) SaveFile(ctx context.Context, req *entity.UploadFileRequest) (*entity.SourceFile, []byte, error) {
	content, err := readUpload(req)
	if err != nil {
		return nil, nil, err
	}

	file, err := uc.ImportFile(ctx, req.RoomID, req.File.Filename, req.File.Header.Get("Content-Type"), content)
	if err != nil {
		return nil, nil, err
	}

	return file, content, nil
}

// ImportFile stores raw document bytes under the room. The blob is removed again
// when the metadata row cannot be created.
func (uc *FileUsecase) ImportFile(ctx context.Context, roomID, fileName, mimeType string, content []byte) (*entity.SourceFile, error) {
	fileID := uuid.New().String()
	name := validator.SanitizeFilename(fileName)
	storagePath := path.Join(uc.filesPrefix, roomID, fileID, name)

	ctx = logger.AddFields(ctx,
		zap.String("file_id", fileID),
		zap.String("room_id", roomID),
	)

	if err := uc.storage.Upload(ctx, storagePath, content, mimeType); err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}

	file, err := uc.files.Create(ctx, entity.SourceFile{
		ID:          fileID,
		RoomID:      roomID,
		Name:        name,
		StoragePath: storagePath,
		MimeType:    mimeType,
		Size:        int64(len(content)),
	})
	if err != nil {
		if derr := uc.storage.Delete(ctx, storagePath); derr != nil {
			ctxzap.Warn(ctx, "failed to remove orphaned blob", zap.String("path", storagePath), zap.Error(derr))
		}
		return nil, fmt.Errorf("save file metadata: %w", err)
	}

	ctxzap.Info(ctx, "file stored",
		zap.String("name", name),
		zap.Int64("size", file.Size),
		zap.String("mime_type", mimeType),
	)

	return file, nil
}

// VectorizeContent runs ingestion for a stored file using content already in memory
func (uc *FileUsecase) VectorizeContent(ctx context.Context, file *entity.SourceFile, content []byte) (*entity.VectorizeResult, error) {
	return uc.vectorizer.VectorizeFile(ctx, toVectorizeRequest(file, content))
}

// RevectorizeFile re-runs ingestion for a stored file, downloading it from blob storage
func (uc *FileUsecase) RevectorizeFile(ctx context.Context, fileID string) (*entity.VectorizeResult, error) {
	file, err := uc.files.Get(ctx, fileID)
	if err != nil {
		return nil, err
	}

	return uc.vectorizer.VectorizeFile(ctx, toVectorizeRequest(file, nil))
}

func (uc *FileUsecase) GetFile(ctx context.Context, fileID string) (*entity.SourceFile, error) {
	return uc.files.Get(ctx, fileID)
}

func (uc *FileUsecase) ListFiles(ctx context.Context, roomID string) ([]*entity.SourceFile, error) {
	files, err := uc.files.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

// DeleteFile removes chunks first, then the blob, then the metadata row
func (uc *FileUsecase) DeleteFile(ctx context.Context, fileID string) error {
	file, err := uc.files.Get(ctx, fileID)
	if err != nil {
		return err
	}

	ctx = logger.AddFields(ctx, zap.String("file_id", fileID))

	if err := uc.chunks.DeleteByFile(ctx, fileID); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}

	if err := uc.storage.Delete(ctx, file.StoragePath); err != nil {
		return fmt.Errorf("delete blob: %w", err)
	}

	if err := uc.files.Delete(ctx, fileID); err != nil {
		return fmt.Errorf("delete file metadata: %w", err)
	}

	ctxzap.Info(ctx, "file deleted", zap.String("name", file.Name))
	return nil
}

func toVectorizeRequest(file *entity.SourceFile, content []byte) entity.VectorizeRequest {
	return entity.VectorizeRequest{
		FileID:   file.ID,
		RoomID:   file.RoomID,
		FileName: file.Name,
		FilePath: file.StoragePath,
		Content:  content,
		MimeType: file.MimeType,
	}
}

func readUpload(req *entity.UploadFileRequest) ([]byte, error) {
	if req.File == nil {
		return nil, fmt.Errorf("%w: file", entity.ErrMissingField)
	}

	f, err := req.File.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded file: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read uploaded file: %w", err)
	}

	return content, nil
}
