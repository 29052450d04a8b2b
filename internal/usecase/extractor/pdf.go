package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/futig/studyroom-rag/internal/entity"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

const pdfMimeType = "application/pdf"

// extractPDF stages the document, runs batch OCR over it and concatenates the recognized pages.
// Staged objects are removed on every exit path. The embedded text layer, when enabled,
// is only consulted after OCR recovered nothing.
func (e *Extractor) extractPDF(ctx context.Context, in Input) (string, error) {
	jobPrefix := path.Join(e.cfg.StagingPrefix, uuid.NewString())
	inputPath := path.Join(jobPrefix, "input.pdf")
	outputPath := path.Join(jobPrefix, "output")

	ctx = ctxzap.ToContext(ctx, ctxzap.Extract(ctx).With(zap.String("staging_prefix", jobPrefix)))
	defer e.cleanupStaging(ctx, jobPrefix)

	if err := e.storage.Upload(ctx, inputPath, in.Data, pdfMimeType); err != nil {
		return "", fmt.Errorf("stage pdf: %w", err)
	}

	operation, err := e.batchOCR.SubmitBatch(ctx, e.storage.URL(inputPath), pdfMimeType, e.storage.URL(outputPath)+"/")
	if err != nil {
		return "", fmt.Errorf("%w: submit batch OCR: %w", entity.ErrExtractionFailed, err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, e.cfg.BatchTimeout)
	defer cancel()

	if err := e.batchOCR.Await(waitCtx, operation); err != nil {
		if errors.Is(waitCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			ctxzap.Error(ctx, "batch OCR timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", e.cfg.BatchTimeout),
			)
			return "", fmt.Errorf("%w: operation %s after %s", entity.ErrExtractionTimeout, operation, e.cfg.BatchTimeout)
		}
		if errors.Is(err, entity.ErrExtractionFailed) {
			return "", err
		}
		return "", fmt.Errorf("%w: await batch OCR: %w", entity.ErrExtractionFailed, err)
	}

	text, err := e.collectOutputs(ctx, outputPath)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		if e.cfg.PDFTextLayer {
			if layer := readTextLayer(in.Data); strings.TrimSpace(layer) != "" {
				ctxzap.Info(ctx, "OCR found no text, using embedded PDF text layer")
				return layer, nil
			}
		}
		return "", fmt.Errorf("%w: OCR produced no text for %s", entity.ErrExtractionFailed, in.FileName)
	}
	return text, nil
}

func (e *Extractor) collectOutputs(ctx context.Context, outputPath string) (string, error) {
	urls, err := e.storage.List(ctx, outputPath)
	if err != nil {
		return "", fmt.Errorf("list OCR output: %w", err)
	}

	var pages []string
	for _, objectURL := range e.batchOCR.OrderOutputs(urls) {
		data, err := e.storage.DownloadURL(ctx, objectURL)
		if err != nil {
			return "", fmt.Errorf("read OCR output: %w", err)
		}

		texts, err := e.batchOCR.ParseOutput(data)
		if err != nil {
			// A single unreadable result file should not discard the rest of the document
			ctxzap.Warn(ctx, "skipping unreadable OCR output", zap.String("url", objectURL), zap.Error(err))
			continue
		}
		pages = append(pages, texts...)
	}

	ctxzap.Debug(ctx, "OCR output collected", zap.Int("objects", len(urls)), zap.Int("pages", len(pages)))
	return strings.Join(pages, "\n"), nil
}

// cleanupStaging runs detached from the request deadline so a timeout still removes staged objects
func (e *Extractor) cleanupStaging(ctx context.Context, prefix string) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	if err := e.storage.DeletePrefix(cleanupCtx, prefix); err != nil {
		ctxzap.Warn(ctx, "failed to clean up OCR staging objects", zap.Error(err))
		return
	}
	ctxzap.Debug(ctx, "OCR staging objects removed")
}

// readTextLayer returns the embedded text of a digital PDF, or "" for scans and unreadable files
func readTextLayer(data []byte) (text string) {
	// The PDF reader panics on some malformed inputs
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	reader, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	out, err := io.ReadAll(reader)
	if err != nil {
		return ""
	}
	return string(out)
}
