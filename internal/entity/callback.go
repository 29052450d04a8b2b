package entity

// CallbackEventType represents the type of callback event
type CallbackEventType string

const (
	CallbackEventTypeFileVectorized CallbackEventType = "fileVectorized"
	CallbackEventTypeError          CallbackEventType = "error"
)

// CallbackEvent represents a callback event
type CallbackEvent struct {
	Event     CallbackEventType `json:"event"`
	Timestamp string            `json:"timestamp"` // ISO-8601 UTC
	Data      any               `json:"data"`
}

// CallbackFileVectorizedData represents data for file vectorized event
type CallbackFileVectorizedData struct {
	FileID     string `json:"file_id"`
	RoomID     string `json:"room_id"`
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	ChunkCount int    `json:"chunk_count"`
}

// CallbackErrorData represents data for error event
type CallbackErrorData struct {
	Error CallbackErrorDetails `json:"error"`
}

// CallbackErrorDetails contains error information
type CallbackErrorDetails struct {
	Message string         `json:"message"`
	Details map[string]any `json:"details"` // Context like ids, files
}
