package file

import (
	"time"

	"github.com/futig/studyroom-rag/internal/entity"
)

func toFileDetail(f *entity.SourceFile) *entity.FileDetail {
	return &entity.FileDetail{
		ID:        f.ID,
		RoomID:    f.RoomID,
		Name:      f.Name,
		MimeType:  f.MimeType,
		Size:      f.Size,
		CreatedAt: f.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toFileDetails(files []*entity.SourceFile) []*entity.FileDetail {
	out := make([]*entity.FileDetail, 0, len(files))
	for _, f := range files {
		out = append(out, toFileDetail(f))
	}
	return out
}

func toUploadFileResponse(result *entity.UploadFileResult) *entity.UploadFileResponse {
	resp := &entity.UploadFileResponse{
		File:       toFileDetail(result.File),
		ChunkCount: result.ChunkCount,
	}
	if result.VectorizeErr != nil {
		resp.VectorizeError = result.VectorizeErr.Error()
	}
	return resp
}

func toFileVectorizedData(f *entity.SourceFile, result *entity.VectorizeResult) *entity.CallbackFileVectorizedData {
	return &entity.CallbackFileVectorizedData{
		FileID:     f.ID,
		RoomID:     f.RoomID,
		Name:       f.Name,
		Size:       f.Size,
		ChunkCount: result.ChunkCount,
	}
}
