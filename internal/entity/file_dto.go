package entity

import (
	"mime/multipart"
)

type ResultFormat string

const (
	FormatMarkdown ResultFormat = "markdown"
	FormatDOCX     ResultFormat = "docx"
	FormatPDF      ResultFormat = "pdf"
)

func (f ResultFormat) IsValid() bool {
	switch f {
	case FormatMarkdown, FormatDOCX, FormatPDF:
		return true
	default:
		return false
	}
}

type UploadFileRequest struct {
	RoomID      string
	File        *multipart.FileHeader
	CallbackURL string
}

// UploadFileResult keeps the stored file even when vectorization failed
type UploadFileResult struct {
	File         *SourceFile
	ChunkCount   int
	VectorizeErr error
}

type UploadFileResponse struct {
	File           *FileDetail `json:"file"`
	ChunkCount     int         `json:"chunk_count"`
	VectorizeError string      `json:"vectorize_error,omitempty"`
}

// UploadAcceptedResponse is returned when vectorization continues in the background
type UploadAcceptedResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	File    *FileDetail `json:"file"`
}

type FileDetail struct {
	ID        string `json:"id"`
	RoomID    string `json:"room_id"`
	Name      string `json:"name"`
	MimeType  string `json:"mime_type"`
	Size      int64  `json:"size"`
	CreatedAt string `json:"created_at"`
}

type ListFilesResponse struct {
	Files []*FileDetail `json:"files"`
}

type VectorizeResponse struct {
	FileID     string `json:"file_id"`
	ChunkCount int    `json:"chunk_count"`
}

type ContextRequest struct {
	Topic    string       `json:"topic"`
	FileIDs  []string     `json:"file_ids,omitempty"`
	MaxChars int          `json:"max_chars,omitempty"`
	Format   ResultFormat `json:"format,omitempty"`
}

type ContextResponse struct {
	Context string     `json:"context"`
	Found   bool       `json:"found"`
	Scope   TopicScope `json:"scope"`
	Length  int        `json:"length"`
}

// ExportedContext is an assembled context rendered in a downloadable format
type ExportedContext struct {
	Data        []byte
	ContentType string
	FileName    string
	Found       bool
}
