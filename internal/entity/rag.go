package entity

// VectorizeRequest carries everything the ingestion pipeline needs about one file.
// Content may be nil, in which case the bytes are downloaded from FilePath.
type VectorizeRequest struct {
	FileID   string
	RoomID   string
	FileName string
	FilePath string
	Content  []byte
	MimeType string
}

type VectorizeResult struct {
	ChunkCount int   `json:"chunk_count"`
	Generation int64 `json:"generation"`
}

// LadderStep is one similarity search attempt of the degrading search
type LadderStep struct {
	Threshold float64 `yaml:"threshold" json:"threshold"`
	Limit     int     `yaml:"limit" json:"limit"`
}

// DefaultLadder is the threshold ladder used when no policy file overrides it
func DefaultLadder() []LadderStep {
	return []LadderStep{
		{Threshold: 0.7, Limit: 30},
		{Threshold: 0.6, Limit: 30},
		{Threshold: 0.5, Limit: 30},
		{Threshold: 0.4, Limit: 30},
		{Threshold: 0.35, Limit: 30},
		{Threshold: 0.3, Limit: 30},
	}
}

type FileData struct {
	Filename    string
	ContentType string
	Content     []byte
}
