package extractor

import "context"

// ImageOCR recognizes text in a single image synchronously
type ImageOCR interface {
	AnnotateImage(ctx context.Context, data []byte, mimeType string) (string, error)
}

// BatchOCR runs long document OCR jobs that read from and write to blob storage
type BatchOCR interface {
	SubmitBatch(ctx context.Context, sourceURI, mimeType, destinationURI string) (string, error)
	Await(ctx context.Context, operationName string) error
	ParseOutput(data []byte) ([]string, error)
	OrderOutputs(urls []string) []string
}

// BlobStorage holds staged OCR inputs and outputs
type BlobStorage interface {
	URL(path string) string
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	List(ctx context.Context, prefix string) ([]string, error)
	DownloadURL(ctx context.Context, objectURL string) ([]byte, error)
	DeletePrefix(ctx context.Context, prefix string) error
}
