package extractor

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/futig/studyroom-rag/internal/entity"
)

var kindByExtension = map[string]entity.FileKind{
	".pdf":  entity.FileKindPDF,
	".doc":  entity.FileKindWord,
	".docx": entity.FileKindWord,
	".hwp":  entity.FileKindHangul,
	".hwpx": entity.FileKindHangul,
	".txt":  entity.FileKindText,
	".md":   entity.FileKindText,
	".png":  entity.FileKindImage,
	".jpg":  entity.FileKindImage,
	".jpeg": entity.FileKindImage,
	".gif":  entity.FileKindImage,
	".bmp":  entity.FileKindImage,
	".webp": entity.FileKindImage,
	".tif":  entity.FileKindImage,
	".tiff": entity.FileKindImage,
}

// Classify picks an extraction strategy by file extension, then by declared MIME type
func Classify(fileName, mimeType string) entity.FileKind {
	if kind, ok := kindByExtension[strings.ToLower(filepath.Ext(fileName))]; ok {
		return kind
	}

	return kindFromMime(mimeType)
}

func kindFromMime(mimeType string) entity.FileKind {
	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0]))

	switch {
	case mediaType == "application/pdf":
		return entity.FileKindPDF
	case mediaType == "application/msword",
		mediaType == "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return entity.FileKindWord
	case mediaType == "application/x-hwp",
		mediaType == "application/haansofthwp",
		strings.HasPrefix(mediaType, "application/vnd.hancom."):
		return entity.FileKindHangul
	case mediaType == "text/plain", mediaType == "text/markdown":
		return entity.FileKindText
	case strings.HasPrefix(mediaType, "image/"):
		return entity.FileKindImage
	default:
		return entity.FileKindOther
	}
}

// refine re-examines unclassified content; images uploaded without a usable name or type are common
func refine(kind entity.FileKind, data []byte) (entity.FileKind, string) {
	if kind != entity.FileKindOther || len(data) == 0 {
		return kind, ""
	}

	sniffed := http.DetectContentType(data)
	if strings.HasPrefix(sniffed, "image/") {
		return entity.FileKindImage, sniffed
	}
	return kind, sniffed
}
