package validator

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/futig/studyroom-rag/internal/config"
	"github.com/futig/studyroom-rag/internal/entity"
	"github.com/google/uuid"
)

var AllowedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".hwp":  true,
	".hwpx": true,
	".txt":  true,
	".md":   true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tif":  true,
	".tiff": true,
}

// Validator validates file uploads and retrieval requests
type Validator struct {
	cfg config.FileUploadConfig
}

func NewFileValidator(cfg config.FileUploadConfig) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateUploadFile validates a single study document upload
func (v *Validator) ValidateUploadFile(req *entity.UploadFileRequest) error {
	if err := ValidateID("room_id", req.RoomID); err != nil {
		return err
	}
	if req.File == nil {
		return fmt.Errorf("%w: file", entity.ErrMissingField)
	}

	ext := strings.ToLower(filepath.Ext(req.File.Filename))
	if _, ok := AllowedExtensions[ext]; !ok {
		return fmt.Errorf("%w: %q (allowed: pdf, doc, docx, hwp, hwpx, txt, md, images)", entity.ErrInvalidExtension, ext)
	}

	return v.validateSize(req.File)
}

func (v *Validator) validateSize(fh *multipart.FileHeader) error {
	if fh.Size == 0 {
		return fmt.Errorf("%w: file '%s' is empty", entity.ErrInvalidFile, fh.Filename)
	}
	if fh.Size > v.cfg.MaxFileSize {
		return fmt.Errorf("%w: file '%s' is %d bytes (max %d)", entity.ErrFileTooLarge, fh.Filename, fh.Size, v.cfg.MaxFileSize)
	}
	return nil
}

// ValidateContextRequest validates a retrieval request
func (v *Validator) ValidateContextRequest(req *entity.ContextRequest) error {
	if req.MaxChars < 0 {
		return fmt.Errorf("%w: max_chars must not be negative", entity.ErrInvalidParameter)
	}
	for _, id := range req.FileIDs {
		if err := ValidateID("file_ids", id); err != nil {
			return err
		}
	}
	if req.Format != "" && !req.Format.IsValid() {
		return fmt.Errorf("%w: %s", entity.ErrUnsupportedFormat, req.Format)
	}
	return nil
}

// ValidateID checks that value is a UUID
func ValidateID(field, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s", entity.ErrMissingField, field)
	}
	if _, err := uuid.Parse(value); err != nil {
		return fmt.Errorf("%w: %s must be a UUID", entity.ErrInvalidFormat, field)
	}
	return nil
}

// SanitizeFilename sanitizes a filename for safe storage
func SanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	replacer := strings.NewReplacer(
		" ", "_",
		"(", "",
		")", "",
		"[", "",
		"]", "",
		"{", "",
		"}", "",
		"#", "",
		"?", "",
	)
	return replacer.Replace(filename)
}
