package validator

import (
	"errors"
	"mime/multipart"
	"testing"

	"github.com/futig/studyroom-rag/internal/config"
	"github.com/futig/studyroom-rag/internal/entity"
)

const roomID = "3f1c4b5e-8a9d-4c2e-9b7a-1d2e3f4a5b6c"

func TestValidateUploadFile(t *testing.T) {
	v := NewFileValidator(config.FileUploadConfig{MaxFileSize: 1024})

	tests := []struct {
		name    string
		req     *entity.UploadFileRequest
		wantErr error
	}{
		{"ok pdf", &entity.UploadFileRequest{RoomID: roomID, File: &multipart.FileHeader{Filename: "lecture.PDF", Size: 10}}, nil},
		{"ok hwp", &entity.UploadFileRequest{RoomID: roomID, File: &multipart.FileHeader{Filename: "notes.hwp", Size: 10}}, nil},
		{"missing room", &entity.UploadFileRequest{File: &multipart.FileHeader{Filename: "a.txt", Size: 1}}, entity.ErrMissingField},
		{"bad room", &entity.UploadFileRequest{RoomID: "room-1", File: &multipart.FileHeader{Filename: "a.txt", Size: 1}}, entity.ErrInvalidFormat},
		{"missing file", &entity.UploadFileRequest{RoomID: roomID}, entity.ErrMissingField},
		{"bad extension", &entity.UploadFileRequest{RoomID: roomID, File: &multipart.FileHeader{Filename: "run.exe", Size: 1}}, entity.ErrInvalidExtension},
		{"too large", &entity.UploadFileRequest{RoomID: roomID, File: &multipart.FileHeader{Filename: "a.txt", Size: 2048}}, entity.ErrFileTooLarge},
		{"empty", &entity.UploadFileRequest{RoomID: roomID, File: &multipart.FileHeader{Filename: "a.txt"}}, entity.ErrInvalidFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateUploadFile(tt.req)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateContextRequest(t *testing.T) {
	v := NewFileValidator(config.FileUploadConfig{})

	if err := v.ValidateContextRequest(&entity.ContextRequest{Topic: "x", FileIDs: []string{roomID}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.ValidateContextRequest(&entity.ContextRequest{MaxChars: -1}); !errors.Is(err, entity.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
	if err := v.ValidateContextRequest(&entity.ContextRequest{FileIDs: []string{"nope"}}); !errors.Is(err, entity.ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got %v", err)
	}
	if err := v.ValidateContextRequest(&entity.ContextRequest{Format: "odt"}); !errors.Is(err, entity.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := SanitizeFilename("../../etc/My Notes (final).pdf"); got != "My_Notes_final.pdf" {
		t.Errorf("SanitizeFilename = %q", got)
	}
}
