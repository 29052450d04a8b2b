package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/futig/studyroom-rag/internal/entity"
	"github.com/futig/studyroom-rag/internal/pkg/chunker"
	"github.com/futig/studyroom-rag/internal/pkg/logger"
	"github.com/futig/studyroom-rag/internal/usecase/extractor"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// IngestUsecase runs the ingestion pipeline: extract, chunk, embed, replace
type IngestUsecase struct {
	extractor TextExtractor
	chunker   *chunker.Chunker
	embedder  EmbeddingGenerator
	chunks    ChunkWriter
	storage   FileDownloader
	logger    *zap.Logger
}

func NewUsecase(
	extractor TextExtractor,
	chunker *chunker.Chunker,
	embedder EmbeddingGenerator,
	chunks ChunkWriter,
	storage FileDownloader,
	logger *zap.Logger,
) *IngestUsecase {
	return &IngestUsecase{
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		chunks:    chunks,
		storage:   storage,
		logger:    logger,
	}
}

// VectorizeFile replaces the stored chunk set of req.FileID with a fresh generation.
// When req.Content is nil the bytes are downloaded from req.FilePath.
// Any extraction, embedding or storage failure aborts before chunks are written.
func (uc *IngestUsecase) VectorizeFile(ctx context.Context, req entity.VectorizeRequest) (*entity.VectorizeResult, error) {
	ctx = logger.AddFields(ctx,
		zap.String("file_id", req.FileID),
		zap.String("room_id", req.RoomID),
	)
	started := time.Now()

	kind := extractor.Classify(req.FileName, req.MimeType)
	if err := uc.extractor.CheckConfigured(kind); err != nil {
		return nil, err
	}

	content := req.Content
	if content == nil {
		if req.FilePath == "" {
			return nil, fmt.Errorf("%w: file path or content", entity.ErrMissingField)
		}

		data, err := uc.storage.Download(ctx, req.FilePath)
		if err != nil {
			return nil, fmt.Errorf("download file: %w", err)
		}
		content = data
	}

	text, err := uc.extractor.Extract(ctx, extractor.Input{
		Data:     content,
		FileName: req.FileName,
		MimeType: req.MimeType,
	})
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}

	chunks := uc.chunker.Chunks(req.FileID, text, entity.ChunkMetadata{
		RoomID:      req.RoomID,
		FileName:    req.FileName,
		StoragePath: req.FilePath,
	})

	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, chunk := range chunks {
			texts[i] = chunk.Content
		}

		vectors, err := uc.embedder.Generate(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("generate embeddings: %w", err)
		}
		if len(vectors) != len(chunks) {
			return nil, fmt.Errorf("%w: %d vectors for %d chunks", entity.ErrEmbeddingMismatch, len(vectors), len(chunks))
		}

		for i, chunk := range chunks {
			chunk.Embedding = vectors[i]
		}
	} else {
		ctxzap.Warn(ctx, "no text recovered, storing an empty chunk set", zap.String("file_kind", string(kind)))
	}

	generation, err := uc.chunks.Replace(ctx, req.FileID, chunks)
	if err != nil {
		return nil, fmt.Errorf("store chunks: %w", err)
	}

	ctxzap.Info(ctx, "file vectorized",
		zap.Int("chunk_count", len(chunks)),
		zap.Int64("generation", generation),
		zap.Int("text_length", len([]rune(text))),
		zap.Duration("took", time.Since(started)),
	)

	return &entity.VectorizeResult{ChunkCount: len(chunks), Generation: generation}, nil
}
