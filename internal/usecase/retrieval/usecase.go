package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/futig/studyroom-rag/internal/entity"
	"github.com/futig/studyroom-rag/internal/pkg/formatter"
	"github.com/futig/studyroom-rag/internal/pkg/logger"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	DefaultMaxChars  = 8000
	DefaultDelimiter = "\n\n"
)

type Config struct {
	// Ladder is tried in order; thresholds are expected to descend
	Ladder          []entity.LadderStep
	DefaultMaxChars int
	Delimiter       string
}

// RetrievalUsecase assembles bounded study context for a topic
type RetrievalUsecase struct {
	classifier TopicClassifier
	embedder   QueryEmbedder
	chunks     ChunkReader
	files      FileLister
	formatters FormatterFactory
	cfg        Config
	logger     *zap.Logger
}

func NewUsecase(
	cfg Config,
	classifier TopicClassifier,
	embedder QueryEmbedder,
	chunks ChunkReader,
	files FileLister,
	formatters FormatterFactory,
	logger *zap.Logger,
) *RetrievalUsecase {
	if len(cfg.Ladder) == 0 {
		cfg.Ladder = entity.DefaultLadder()
	}
	if cfg.DefaultMaxChars <= 0 {
		cfg.DefaultMaxChars = DefaultMaxChars
	}
	if cfg.Delimiter == "" {
		cfg.Delimiter = DefaultDelimiter
	}

	return &RetrievalUsecase{
		classifier: classifier,
		embedder:   embedder,
		chunks:     chunks,
		files:      files,
		formatters: formatters,
		cfg:        cfg,
		logger:     logger,
	}
}

// GetRelevantChunks returns context for topic drawn from fileIDs, at most about maxChars runes long.
// found is false only when the files have no stored chunks at all.
func (uc *RetrievalUsecase) GetRelevantChunks(ctx context.Context, topic string, fileIDs []string, maxChars int) (string, bool, error) {
	result, err := uc.retrieve(ctx, topic, fileIDs, maxChars)
	if err != nil {
		return "", false, err
	}
	return result.Context, result.Found, nil
}

// BuildContext resolves the request's file set (every room file when none are given) and retrieves context
func (uc *RetrievalUsecase) BuildContext(ctx context.Context, roomID string, req *entity.ContextRequest) (*entity.ContextResponse, error) {
	ctx = logger.AddFields(ctx, zap.String("room_id", roomID))

	fileIDs := req.FileIDs
	if len(fileIDs) == 0 {
		files, err := uc.files.ListByRoom(ctx, roomID)
		if err != nil {
			return nil, fmt.Errorf("list room files: %w", err)
		}
		for _, f := range files {
			fileIDs = append(fileIDs, f.ID)
		}
	}

	return uc.retrieve(ctx, req.Topic, fileIDs, req.MaxChars)
}

// ExportContext builds context like BuildContext and renders it in req.Format
func (uc *RetrievalUsecase) ExportContext(ctx context.Context, roomID string, req *entity.ContextRequest) (*entity.ExportedContext, error) {
	f, err := uc.formatters.Create(req.Format)
	if err != nil {
		return nil, err
	}

	result, err := uc.BuildContext(ctx, roomID, req)
	if err != nil {
		return nil, err
	}

	data, err := f.Format(formatter.Document{Title: req.Topic, Body: result.Context})
	if err != nil {
		return nil, fmt.Errorf("format context: %w", err)
	}

	return &entity.ExportedContext{
		Data:        data,
		ContentType: f.ContentType(),
		FileName:    "context" + f.FileExtension(),
		Found:       result.Found,
	}, nil
}

func (uc *RetrievalUsecase) retrieve(ctx context.Context, topic string, fileIDs []string, maxChars int) (*entity.ContextResponse, error) {
	if maxChars <= 0 {
		maxChars = uc.cfg.DefaultMaxChars
	}

	scope := uc.classifier.Classify(topic)
	ctx = logger.AddFields(ctx,
		zap.String("scope", string(scope)),
		zap.Int("file_count", len(fileIDs)),
		zap.Int("max_chars", maxChars),
	)
	started := time.Now()

	var text string
	if scope == entity.TopicScopeSpecific {
		text = uc.searchSpecific(ctx, topic, fileIDs, maxChars)
	}

	if text == "" {
		var err error
		text, err = uc.fullContext(ctx, fileIDs, maxChars)
		if err != nil {
			return nil, err
		}
	}

	ctxzap.Info(ctx, "context assembled",
		zap.Int("length", utf8.RuneCountInString(text)),
		zap.Duration("took", time.Since(started)),
	)

	return &entity.ContextResponse{
		Context: text,
		Found:   text != "",
		Scope:   scope,
		Length:  utf8.RuneCountInString(text),
	}, nil
}

// searchSpecific runs the degrading similarity search. It returns "" when the broad path should take over.
func (uc *RetrievalUsecase) searchSpecific(ctx context.Context, topic string, fileIDs []string, maxChars int) string {
	if len(fileIDs) == 0 {
		return ""
	}

	vector, err := uc.embedder.EmbedQuery(ctx, strings.TrimSpace(topic))
	if err != nil {
		ctxzap.Warn(ctx, "topic embedding failed, falling back to full context", zap.Error(err))
		return ""
	}

	for i, step := range uc.cfg.Ladder {
		matches, err := uc.chunks.SearchSimilar(ctx, vector, fileIDs, step.Threshold, step.Limit)
		if err != nil {
			ctxzap.Warn(ctx, "similarity search failed, trying next threshold",
				zap.Float64("threshold", step.Threshold),
				zap.Error(err),
			)
			continue
		}

		parts := make([]string, 0, len(matches))
		for _, m := range matches {
			parts = append(parts, m.Content)
		}

		if text := assemble(parts, uc.cfg.Delimiter, maxChars); text != "" {
			ctxzap.Info(ctx, "similarity search matched",
				zap.Int("step", i),
				zap.Float64("threshold", step.Threshold),
				zap.Int("matches", len(matches)),
			)
			return text
		}

		ctxzap.Debug(ctx, "no matches at threshold", zap.Float64("threshold", step.Threshold))
	}

	ctxzap.Info(ctx, "threshold ladder exhausted, falling back to full context")
	return ""
}

func (uc *RetrievalUsecase) fullContext(ctx context.Context, fileIDs []string, maxChars int) (string, error) {
	if len(fileIDs) == 0 {
		return "", nil
	}

	chunks, err := uc.chunks.FetchByFiles(ctx, fileIDs)
	if err != nil {
		return "", fmt.Errorf("fetch chunks: %w", err)
	}

	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, c.Content)
	}

	ctxzap.Debug(ctx, "full context path", zap.Int("chunks", len(chunks)))
	return assemble(parts, uc.cfg.Delimiter, maxChars), nil
}
