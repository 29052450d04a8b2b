package entity

import (
	"time"
)

// FileKind is the extraction strategy tag of an uploaded document
type FileKind string

const (
	FileKindPDF    FileKind = "PDF"
	FileKindWord   FileKind = "WORD"
	FileKindHangul FileKind = "HANGUL"
	FileKindText   FileKind = "TEXT"
	FileKindImage  FileKind = "IMAGE"
	FileKindOther  FileKind = "OTHER"
)

// TopicScope is the result of topic classification
type TopicScope string

const (
	TopicScopeBroad    TopicScope = "broad"
	TopicScopeSpecific TopicScope = "specific"
)

// SourceFile is an uploaded study document owned by a room
type SourceFile struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"room_id"`
	Name        string    `json:"name"`
	StoragePath string    `json:"storage_path"`
	MimeType    string    `json:"mime_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

// ChunkMetadata is denormalized from the source file for retrieval convenience
type ChunkMetadata struct {
	RoomID      string `json:"room_id"`
	FileName    string `json:"file_name"`
	StoragePath string `json:"storage_path"`
}

// Chunk is an offset-tagged slice of a document's extracted text paired with its embedding.
// CharStart and CharEnd are rune offsets of the untrimmed window, [start, end).
type Chunk struct {
	FileID     string        `json:"file_id"`
	Index      int           `json:"chunk_index"`
	Content    string        `json:"content"`
	CharStart  int           `json:"char_start"`
	CharEnd    int           `json:"char_end"`
	Metadata   ChunkMetadata `json:"metadata"`
	Embedding  []float32     `json:"-"`
	Generation int64         `json:"generation"`
	CreatedAt  time.Time     `json:"created_at"`
}

// ScoredChunk is a similarity search match
type ScoredChunk struct {
	FileID     string  `json:"file_id"`
	Index      int     `json:"chunk_index"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}
