package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/studyroom-rag/internal/api"
	fileapi "github.com/futig/studyroom-rag/internal/api/file"
	retrievalapi "github.com/futig/studyroom-rag/internal/api/retrieval"
	"github.com/futig/studyroom-rag/internal/config"
	"github.com/futig/studyroom-rag/internal/integration/callback"
	embeddingconn "github.com/futig/studyroom-rag/internal/integration/embedding"
	"github.com/futig/studyroom-rag/internal/integration/storage"
	"github.com/futig/studyroom-rag/internal/integration/vision"
	"github.com/futig/studyroom-rag/internal/pkg/chunker"
	"github.com/futig/studyroom-rag/internal/pkg/formatter"
	"github.com/futig/studyroom-rag/internal/pkg/validator"
	"github.com/futig/studyroom-rag/internal/repository"
	"github.com/futig/studyroom-rag/internal/usecase/embedding"
	"github.com/futig/studyroom-rag/internal/usecase/extractor"
	"github.com/futig/studyroom-rag/internal/usecase/file"
	"github.com/futig/studyroom-rag/internal/usecase/ingest"
	"github.com/futig/studyroom-rag/internal/usecase/retrieval"
	"github.com/futig/studyroom-rag/internal/usecase/topic"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Components are the wired use cases shared by the HTTP server and the CLI
type Components struct {
	Config    *config.Config
	Logger    *zap.Logger
	Files     *file.FileUsecase
	Retrieval *retrieval.RetrievalUsecase

	db *pgxpool.Pool
}

// Close releases the database pool and flushes the logger
func (c *Components) Close() {
	if c.db != nil {
		c.db.Close()
	}
	_ = c.Logger.Sync()
}

// Build loads configuration from the -env flag and assembles the HTTP application
func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	components, err := BuildComponents(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger := components.Logger

	// Initialize validators and connectors
	fileValidator := validator.NewFileValidator(cfg.FileUploadCfg)
	callbackConnector := callback.NewConnector(cfg.CallbackConnectorCfg, logger)

	// Setup API handlers
	fileHandler := fileapi.NewHandler(components.Files, cfg.FileUploadCfg, callbackConnector, fileValidator)
	retrievalHandler := retrievalapi.NewHandler(components.Retrieval, fileValidator)
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(fileHandler, retrievalHandler, cfg.ServerRequestTimeout, logger)
	logger.Info("HTTP router configured")

	// Uploads of large scans wait for batch OCR, so write timeout follows the request timeout
	server := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      cfg.ServerRequestTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	return &App{
		server:     server,
		components: components,
		logger:     logger,
	}, nil
}

// BuildComponents connects to the database and blob storage and wires every use case
func BuildComponents(ctx context.Context, cfg *config.Config) (*Components, error) {
	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building components",
		zap.String("environment", cfg.Environment),
		zap.Bool("mocks", cfg.EnableMocks),
	)

	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	// Initialize repositories
	fileRepo := repository.NewFilePostgres(db)
	chunkRepo := repository.NewChunkPostgres(db)
	logger.Info("Repositories initialized")

	// Initialize external service connectors (with mock support)
	blobStorage := storage.NewConnector(cfg.StorageCfg, logger)

	imageOCR, batchOCR, err := setupOCR(ctx, cfg, blobStorage, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("setup ocr: %w", err)
	}

	embedder, err := setupEmbedder(cfg, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("setup embedder: %w", err)
	}

	generator := embedding.NewGenerator(embedder, embedding.Config{
		BatchSize:     cfg.EmbeddingCfg.BatchSize,
		Dimensions:    cfg.EmbeddingCfg.Dimensions,
		QueryCacheTTL: cfg.EmbeddingCfg.QueryCacheTTL,
	}, logger)

	textChunker, err := chunker.New(cfg.ChunkCfg.Size, cfg.ChunkCfg.Overlap)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("setup chunker: %w", err)
	}

	textExtractor := extractor.New(extractor.Config{
		StagingPrefix: cfg.StorageCfg.StagingPrefix,
		BatchTimeout:  cfg.VisionCfg.BatchTimeout,
		PDFTextLayer:  cfg.ExtractCfg.PDFTextLayer,
		ParseDOCX:     cfg.ExtractCfg.ParseDOCX,
	}, imageOCR, batchOCR, blobStorage, logger)

	// Initialize use cases
	ingestUC := ingest.NewUsecase(
		textExtractor,
		textChunker,
		generator,
		chunkRepo,
		blobStorage,
		logger,
	)

	fileUC := file.NewUsecase(
		fileRepo,
		chunkRepo,
		blobStorage,
		ingestUC,
		cfg.StorageCfg.FilesPrefix,
		logger,
	)

	policy := cfg.RetrievalCfg.Policy
	retrievalUC := retrieval.NewUsecase(
		retrieval.Config{
			Ladder:          policy.Ladder,
			DefaultMaxChars: cfg.RetrievalCfg.DefaultMaxChars,
			Delimiter:       policy.Delimiter,
		},
		topic.NewKeywordClassifier(policy.BroadKeywords, policy.MinSpecificLength),
		generator,
		chunkRepo,
		fileRepo,
		formatter.NewFactory(cfg.RetrievalCfg.PDFFontPath),
		logger,
	)
	logger.Info("Use cases initialized")

	return &Components{
		Config:    cfg,
		Logger:    logger,
		Files:     fileUC,
		Retrieval: retrievalUC,
		db:        db,
	}, nil
}

// setupOCR returns nil collaborators when no credentials are configured.
// Images then degrade to empty text and PDFs fail with a configuration error.
func setupOCR(ctx context.Context, cfg *config.Config, blobStorage *storage.Connector, logger *zap.Logger) (extractor.ImageOCR, extractor.BatchOCR, error) {
	if cfg.EnableMocks {
		logger.Info("Using mock OCR connector")
		mock := vision.NewMockConnector(blobStorage, logger)
		return mock, mock, nil
	}

	if !cfg.VisionCfg.HasCredentials() {
		logger.Warn("OCR credentials are not configured, images and PDFs will not be recognized")
		return nil, nil, nil
	}

	conn, err := vision.NewConnector(ctx, cfg.VisionCfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return conn, conn, nil
}

func setupEmbedder(cfg *config.Config, logger *zap.Logger) (embedding.Embedder, error) {
	if cfg.EnableMocks {
		logger.Info("Using mock embedding connector", zap.Int("dimensions", cfg.EmbeddingCfg.Dimensions))
		return embeddingconn.NewMockConnector(cfg.EmbeddingCfg.Dimensions, logger), nil
	}

	logger.Info("Using embedding provider",
		zap.String("provider", cfg.EmbeddingCfg.Provider),
		zap.String("model", cfg.EmbeddingCfg.Model),
	)

	switch cfg.EmbeddingCfg.Provider {
	case config.EmbeddingProviderOllama:
		return embeddingconn.NewOllamaConnector(cfg.EmbeddingCfg, logger)
	default:
		return embeddingconn.NewOpenAIConnector(cfg.EmbeddingCfg, logger), nil
	}
}
