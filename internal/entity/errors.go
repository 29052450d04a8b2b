package entity

import "errors"

// Domain errors
var (
	// Pipeline errors
	ErrConfiguration      = errors.New("service is not configured")
	ErrExtractionFailed   = errors.New("no text could be extracted")
	ErrExtractionTimeout  = errors.New("text extraction timed out")
	ErrEmbeddingMismatch  = errors.New("embedding count or dimension mismatch")
	ErrStorage            = errors.New("storage operation failed")
	ErrSearchFailed       = errors.New("similarity search failed")
	ErrInvalidChunkConfig = errors.New("invalid chunk configuration")

	// File errors
	ErrFileNotFound      = errors.New("file not found")
	ErrInvalidFile       = errors.New("invalid file")
	ErrFileTooLarge      = errors.New("file too large")
	ErrInvalidExtension  = errors.New("invalid file extension")
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidParameter = errors.New("invalid parameter")
)
