package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/futig/studyroom-rag/internal/entity"
)

func validConfig() *Config {
	return &Config{
		ServerAddr:           ":8080",
		ServerRequestTimeout: 2 * time.Minute,
		DatabaseURL:          "postgres://localhost/studyroom",
		DBMaxConns:           10,
		DBMinConns:           1,
		StorageCfg:           StorageConfig{BaseURL: "mem://localhost/studyroom"},
		VisionCfg:            VisionConfig{BatchTimeout: time.Minute, PollInterval: time.Second},
		EmbeddingCfg:         EmbeddingConfig{Provider: EmbeddingProviderOpenAI, APIKey: "sk-test", Dimensions: 1536, BatchSize: 100},
		ChunkCfg:             ChunkConfig{Size: 800, Overlap: 200},
		RetrievalCfg:         RetrievalConfig{DefaultMaxChars: 8000},
	}
}

func TestValidateConfig(t *testing.T) {
	if err := validateConfig(validConfig()); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		message string
	}{
		{"overlap equals size", func(c *Config) { c.ChunkCfg.Overlap = 800 }, "CHUNK_OVERLAP"},
		{"zero chunk size", func(c *Config) { c.ChunkCfg.Size = 0 }, "CHUNK_SIZE"},
		{"missing storage", func(c *Config) { c.StorageCfg.BaseURL = "" }, "STORAGE_BASE_URL"},
		{"unknown provider", func(c *Config) { c.EmbeddingCfg.Provider = "cohere" }, "EMBEDDING_PROVIDER"},
		{"batch too large", func(c *Config) { c.EmbeddingCfg.BatchSize = 5000 }, "EMBEDDING_BATCH_SIZE"},
		{"poll longer than timeout", func(c *Config) { c.VisionCfg.PollInterval = time.Hour }, "VISION_POLL_INTERVAL"},
		{"request timeout below OCR timeout", func(c *Config) { c.ServerRequestTimeout = time.Second }, "SERVER_REQUEST_TIMEOUT"},
		{"openai without key", func(c *Config) { c.EmbeddingCfg.APIKey = "" }, "EMBEDDING_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("error %q does not mention %s", err, tt.message)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{EnableMocks: true, EmbeddingCfg: EmbeddingConfig{Provider: "OpenAI"}}
	applyDefaults(cfg)

	if cfg.VisionCfg.Url != defaultVisionURL {
		t.Errorf("vision url = %q", cfg.VisionCfg.Url)
	}
	if cfg.StorageCfg.BaseURL == "" {
		t.Error("mocks should default storage to mem://")
	}
	if cfg.EmbeddingCfg.Provider != EmbeddingProviderOpenAI {
		t.Errorf("provider = %q", cfg.EmbeddingCfg.Provider)
	}
}

func TestApplyDefaults_EmbeddingPerProvider(t *testing.T) {
	tests := []struct {
		name       string
		in         EmbeddingConfig
		mocks      bool
		model      string
		dimensions int
	}{
		{name: "openai", in: EmbeddingConfig{Provider: "openai"}, model: "text-embedding-3-small", dimensions: 1536},
		{name: "ollama accepts model width", in: EmbeddingConfig{Provider: "Ollama"}, model: "nomic-embed-text", dimensions: 0},
		{name: "ollama explicit", in: EmbeddingConfig{Provider: "ollama", Model: "mxbai-embed-large", Dimensions: 1024}, model: "mxbai-embed-large", dimensions: 1024},
		{name: "openai explicit", in: EmbeddingConfig{Provider: "openai", Model: "text-embedding-3-large", Dimensions: 3072}, model: "text-embedding-3-large", dimensions: 3072},
		{name: "ollama with mocks", in: EmbeddingConfig{Provider: "ollama"}, mocks: true, model: "nomic-embed-text", dimensions: 1536},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{EnableMocks: tt.mocks, EmbeddingCfg: tt.in}
			applyDefaults(cfg)
			if cfg.EmbeddingCfg.Model != tt.model {
				t.Errorf("model = %q, want %q", cfg.EmbeddingCfg.Model, tt.model)
			}
			if cfg.EmbeddingCfg.Dimensions != tt.dimensions {
				t.Errorf("dimensions = %d, want %d", cfg.EmbeddingCfg.Dimensions, tt.dimensions)
			}
		})
	}
}

func TestGetEnvFile(t *testing.T) {
	cases := map[string]string{
		"prod":    ".env.prod",
		"dev":     ".env.local",
		"local":   ".env.local",
		"staging": ".env.staging",
	}
	for in, want := range cases {
		if got := getEnvFile(in); got != want {
			t.Errorf("getEnvFile(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadRetrievalPolicy_MissingFileUsesDefaults(t *testing.T) {
	policy, err := loadRetrievalPolicy(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(policy.Ladder) != 6 || policy.Ladder[0].Threshold != 0.7 || policy.Ladder[5].Threshold != 0.3 {
		t.Errorf("unexpected default ladder: %+v", policy.Ladder)
	}
	if policy.MinSpecificLength != 7 || policy.Delimiter != "\n\n" {
		t.Errorf("unexpected defaults: %+v", policy)
	}
}

func TestLoadRetrievalPolicy_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	data := "ladder:\n  - threshold: 0.8\n    limit: 5\n  - threshold: 0.5\n    limit: 10\nbroad_keywords: [review]\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	policy, err := loadRetrievalPolicy(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(policy.Ladder) != 2 || policy.Ladder[1].Limit != 10 {
		t.Errorf("ladder not overridden: %+v", policy.Ladder)
	}
	if len(policy.BroadKeywords) != 1 || policy.BroadKeywords[0] != "review" {
		t.Errorf("keywords not overridden: %v", policy.BroadKeywords)
	}
	if policy.MinSpecificLength != 7 {
		t.Errorf("min length should keep default, got %d", policy.MinSpecificLength)
	}
}

func TestLoadRetrievalPolicy_RejectsAscendingLadder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	data := "ladder:\n  - threshold: 0.3\n    limit: 5\n  - threshold: 0.5\n    limit: 5\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := loadRetrievalPolicy(path)
	if !errors.Is(err, entity.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestLoadRetrievalPolicy_ShippedFile(t *testing.T) {
	policy, err := loadRetrievalPolicy("retrieval_policy.yaml")
	if err != nil {
		t.Fatalf("shipped policy invalid: %v", err)
	}
	if len(policy.BroadKeywords) != len(defaultBroadKeywords) {
		t.Errorf("shipped keywords = %d, want %d", len(policy.BroadKeywords), len(defaultBroadKeywords))
	}
}
