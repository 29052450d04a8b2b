package extractor

import (
	"context"
	"fmt"
	"time"

	"github.com/futig/studyroom-rag/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	defaultStagingPrefix = "ocr-staging"
	defaultBatchTimeout  = 5 * time.Minute
	cleanupTimeout       = 30 * time.Second
)

type Config struct {
	StagingPrefix string
	BatchTimeout  time.Duration

	// Opt-in format readers. Off by default: word and hangul containers
	// are decoded as UTF-8 and PDFs rely on OCR alone. The text layer only
	// rescues PDFs that OCR returned nothing for.
	PDFTextLayer bool
	ParseDOCX    bool
}

// Input is one document to extract text from
type Input struct {
	Data     []byte
	FileName string
	MimeType string
}

type strategy func(ctx context.Context, in Input) (string, error)

// Extractor turns uploaded bytes into normalized text
type Extractor struct {
	cfg        Config
	imageOCR   ImageOCR
	batchOCR   BatchOCR
	storage    BlobStorage
	strategies map[entity.FileKind]strategy
	logger     *zap.Logger
}

// New wires the extraction strategies. imageOCR may be nil when no OCR credentials
// are configured; batchOCR and storage may be nil, which makes PDF extraction fail
// with ErrConfiguration.
func New(cfg Config, imageOCR ImageOCR, batchOCR BatchOCR, storage BlobStorage, logger *zap.Logger) *Extractor {
	if cfg.StagingPrefix == "" {
		cfg.StagingPrefix = defaultStagingPrefix
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = defaultBatchTimeout
	}

	e := &Extractor{
		cfg:      cfg,
		imageOCR: imageOCR,
		batchOCR: batchOCR,
		storage:  storage,
		logger:   logger,
	}

	e.strategies = map[entity.FileKind]strategy{
		entity.FileKindPDF:    e.extractPDF,
		entity.FileKindImage:  e.extractImage,
		entity.FileKindWord:   e.extractWord,
		entity.FileKindHangul: decodeUTF8,
		entity.FileKindText:   decodeUTF8,
		entity.FileKindOther:  decodeUTF8,
	}

	return e
}

// CheckConfigured fails fast when a file kind needs collaborators that are missing
func (e *Extractor) CheckConfigured(kind entity.FileKind) error {
	if kind == entity.FileKindPDF && (e.batchOCR == nil || e.storage == nil) {
		return fmt.Errorf("%w: PDF extraction requires blob storage and batch OCR", entity.ErrConfiguration)
	}
	return nil
}

// Extract returns normalized text. Empty input yields empty text.
func (e *Extractor) Extract(ctx context.Context, in Input) (string, error) {
	kind, sniffed := refine(Classify(in.FileName, in.MimeType), in.Data)
	if sniffed != "" && kind == entity.FileKindImage {
		in.MimeType = sniffed
	}

	ctx = ctxzap.ToContext(ctx, ctxzap.Extract(ctx).With(zap.String("file_kind", string(kind))))

	if len(in.Data) == 0 {
		ctxzap.Debug(ctx, "empty input, nothing to extract")
		return "", nil
	}

	if err := e.CheckConfigured(kind); err != nil {
		return "", err
	}

	text, err := e.strategies[kind](ctx, in)
	if err != nil {
		return "", err
	}

	text = Normalize(text)
	ctxzap.Info(ctx, "text extracted",
		zap.String("file_name", in.FileName),
		zap.Int("input_bytes", len(in.Data)),
		zap.Int("text_length", len([]rune(text))),
	)
	return text, nil
}

func decodeUTF8(_ context.Context, in Input) (string, error) {
	return string(in.Data), nil
}

// extractImage never fails: missing credentials or OCR errors degrade to empty text
func (e *Extractor) extractImage(ctx context.Context, in Input) (string, error) {
	if e.imageOCR == nil {
		ctxzap.Warn(ctx, "image OCR is not configured, skipping text recognition")
		return "", nil
	}

	text, err := e.imageOCR.AnnotateImage(ctx, in.Data, in.MimeType)
	if err != nil {
		ctxzap.Warn(ctx, "image OCR failed, continuing without text", zap.Error(err))
		return "", nil
	}
	if text == "" {
		ctxzap.Info(ctx, "image OCR found no text")
	}
	return text, nil
}

func (e *Extractor) extractWord(ctx context.Context, in Input) (string, error) {
	if e.cfg.ParseDOCX && isZip(in.Data) {
		text, err := readDOCX(in.Data)
		if err == nil && text != "" {
			return text, nil
		}
		ctxzap.Warn(ctx, "docx parsing failed, decoding raw bytes", zap.Error(err))
	}
	return decodeUTF8(ctx, in)
}
