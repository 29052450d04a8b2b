package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/studyroom-rag/internal/pkg/retry"
	"github.com/joho/godotenv"
)

const (
	defaultVisionURL = "https://vision.googleapis.com"

	defaultOpenAIModel      = "text-embedding-3-small"
	defaultOpenAIDimensions = 1536
	defaultOllamaModel      = "nomic-embed-text"

	EmbeddingProviderOpenAI = "openai"
	EmbeddingProviderOllama = "ollama"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr           string        `env:"SERVER_ADDR,notEmpty"`
	ServerRequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" envDefault:"6m"`

	// Database configuration
	DatabaseURL         string        `env:"DATABASE_URL,notEmpty"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// Pipeline configuration
	StorageCfg   StorageConfig   `envPrefix:"STORAGE_"`
	VisionCfg    VisionConfig    `envPrefix:"VISION_"`
	EmbeddingCfg EmbeddingConfig `envPrefix:"EMBEDDING_"`
	ChunkCfg     ChunkConfig     `envPrefix:"CHUNK_"`
	ExtractCfg   ExtractConfig   `envPrefix:"EXTRACT_"`
	RetrievalCfg RetrievalConfig `envPrefix:"RETRIEVAL_"`

	// External service configurations
	CallbackConnectorCfg CallbackConnectorConfig `envPrefix:"CALLBACK_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// File upload configuration
	FileUploadCfg FileUploadConfig `envPrefix:"FILE_UPLOAD_"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS"`

	// Environment (set from flag, not from env var)
	Environment string
}

// StorageConfig points at the blob storage root, e.g. gs://bucket or mem://localhost/studyroom
type StorageConfig struct {
	BaseURL       string `env:"BASE_URL"`
	StagingPrefix string `env:"STAGING_PREFIX" envDefault:"ocr-staging"`
	FilesPrefix   string `env:"FILES_PREFIX" envDefault:"rooms"`
}

type VisionConfig struct {
	HTTPClientConfig
	APIKey       string               `env:"API_KEY"`
	UseADC       bool                 `env:"USE_ADC"`
	Feature      string               `env:"FEATURE" envDefault:"DOCUMENT_TEXT_DETECTION"`
	PagesPerFile int                  `env:"PAGES_PER_FILE" envDefault:"20"`
	BatchTimeout time.Duration        `env:"BATCH_TIMEOUT" envDefault:"5m"`
	PollInterval time.Duration        `env:"POLL_INTERVAL" envDefault:"2s"`
	Retry        pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// HasCredentials reports whether OCR calls can be authenticated
func (c VisionConfig) HasCredentials() bool {
	return c.APIKey != "" || c.UseADC
}

type EmbeddingConfig struct {
	Provider      string               `env:"PROVIDER" envDefault:"openai"`
	APIKey        string               `env:"API_KEY"`
	BaseURL       string               `env:"BASE_URL"`
	Model         string               `env:"MODEL"`
	Dimensions    int                  `env:"DIMENSIONS"`
	BatchSize     int                  `env:"BATCH_SIZE" envDefault:"100"`
	QueryCacheTTL time.Duration        `env:"QUERY_CACHE_TTL" envDefault:"10m"`
	Retry         pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type ChunkConfig struct {
	Size    int `env:"SIZE" envDefault:"800"`
	Overlap int `env:"OVERLAP" envDefault:"200"`
}

type ExtractConfig struct {
	ParseDOCX    bool `env:"PARSE_DOCX"`
	PDFTextLayer bool `env:"PDF_TEXT_LAYER"`
}

type RetrievalConfig struct {
	DefaultMaxChars int    `env:"DEFAULT_MAX_CHARS" envDefault:"8000"`
	PolicyFile      string `env:"POLICY_FILE" envDefault:"internal/config/retrieval_policy.yaml"`
	PDFFontPath     string `env:"PDF_FONT_PATH"`

	// Loaded from PolicyFile
	Policy RetrievalPolicy `env:"-"`
}

type CallbackConnectorConfig struct {
	HTTPClientConfig
	Retry pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"30s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"30s"`
	MaxIdleConnsPerHost   int           `env:"MAX_IDLE_CONNS_PER_HOST" envDefault:"10"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

// FileUploadConfig holds file upload limits
type FileUploadConfig struct {
	MaxFileSize   int64 `env:"MAX_FILE_SIZE" envDefault:"52428800"`   // 50 MiB
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"67108864"` // 64 MiB
}

// LoadConfig parses the -env flag and loads the matching configuration
func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	return Load(*envFlag)
}

// Load reads .env.<environment> (when present), environment variables and the retrieval policy file
func Load(environment string) (*Config, error) {
	envFile := getEnvFile(environment)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = environment
	applyDefaults(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	policy, err := loadRetrievalPolicy(cfg.RetrievalCfg.PolicyFile)
	if err != nil {
		return nil, fmt.Errorf("load retrieval policy: %w", err)
	}
	cfg.RetrievalCfg.Policy = *policy

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.VisionCfg.Url == "" {
		cfg.VisionCfg.Url = defaultVisionURL
	}
	if cfg.EnableMocks && cfg.StorageCfg.BaseURL == "" {
		cfg.StorageCfg.BaseURL = "mem://localhost/studyroom"
	}
	applyEmbeddingDefaults(cfg)
}

// Ollama models vary in width, so without EMBEDDING_DIMENSIONS the vector length is not checked
func applyEmbeddingDefaults(cfg *Config) {
	emb := &cfg.EmbeddingCfg
	emb.Provider = strings.ToLower(emb.Provider)

	switch emb.Provider {
	case EmbeddingProviderOllama:
		if emb.Model == "" {
			emb.Model = defaultOllamaModel
		}
	default:
		if emb.Model == "" {
			emb.Model = defaultOpenAIModel
		}
		if emb.Dimensions == 0 {
			emb.Dimensions = defaultOpenAIDimensions
		}
	}

	if cfg.EnableMocks && emb.Dimensions == 0 {
		emb.Dimensions = defaultOpenAIDimensions
	}
}

func validateConfig(cfg *Config) error {
	var errors []string

	// Validate Database configuration
	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
	}

	// Validate pipeline configuration
	if cfg.StorageCfg.BaseURL == "" {
		errors = append(errors, "STORAGE_BASE_URL is required")
	}

	if cfg.ChunkCfg.Size < 1 {
		errors = append(errors, fmt.Sprintf("CHUNK_SIZE must be positive, got %d", cfg.ChunkCfg.Size))
	}

	if cfg.ChunkCfg.Overlap < 0 || cfg.ChunkCfg.Overlap >= cfg.ChunkCfg.Size {
		errors = append(errors, fmt.Sprintf("CHUNK_OVERLAP must be between 0 and CHUNK_SIZE(%d) exclusive, got %d", cfg.ChunkCfg.Size, cfg.ChunkCfg.Overlap))
	}

	if cfg.EmbeddingCfg.BatchSize < 1 || cfg.EmbeddingCfg.BatchSize > 2048 {
		errors = append(errors, fmt.Sprintf("EMBEDDING_BATCH_SIZE must be between 1 and 2048, got %d", cfg.EmbeddingCfg.BatchSize))
	}

	if cfg.EmbeddingCfg.Dimensions < 0 {
		errors = append(errors, fmt.Sprintf("EMBEDDING_DIMENSIONS must not be negative, got %d", cfg.EmbeddingCfg.Dimensions))
	}

	switch cfg.EmbeddingCfg.Provider {
	case EmbeddingProviderOpenAI, EmbeddingProviderOllama:
	default:
		errors = append(errors, fmt.Sprintf("EMBEDDING_PROVIDER must be openai or ollama, got %q", cfg.EmbeddingCfg.Provider))
	}

	if !cfg.EnableMocks && cfg.EmbeddingCfg.Provider == EmbeddingProviderOpenAI && cfg.EmbeddingCfg.APIKey == "" {
		errors = append(errors, "EMBEDDING_API_KEY is required for the openai provider")
	}

	if cfg.VisionCfg.BatchTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("VISION_BATCH_TIMEOUT must be positive, got %s", cfg.VisionCfg.BatchTimeout))
	}

	if cfg.VisionCfg.PollInterval <= 0 || cfg.VisionCfg.PollInterval > cfg.VisionCfg.BatchTimeout {
		errors = append(errors, fmt.Sprintf("VISION_POLL_INTERVAL must be between 0 and VISION_BATCH_TIMEOUT, got %s", cfg.VisionCfg.PollInterval))
	}

	if cfg.ServerRequestTimeout < cfg.VisionCfg.BatchTimeout {
		errors = append(errors, fmt.Sprintf("SERVER_REQUEST_TIMEOUT(%s) must not be shorter than VISION_BATCH_TIMEOUT(%s)", cfg.ServerRequestTimeout, cfg.VisionCfg.BatchTimeout))
	}

	if cfg.RetrievalCfg.DefaultMaxChars < 1 {
		errors = append(errors, fmt.Sprintf("RETRIEVAL_DEFAULT_MAX_CHARS must be positive, got %d", cfg.RetrievalCfg.DefaultMaxChars))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
