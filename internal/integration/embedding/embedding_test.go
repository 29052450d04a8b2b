package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/futig/studyroom-rag/internal/config"
	pkgRetry "github.com/futig/studyroom-rag/internal/pkg/retry"
	"go.uber.org/zap"
)

func testEmbeddingConfig(baseURL string) config.EmbeddingConfig {
	return config.EmbeddingConfig{
		APIKey:     "sk-test",
		BaseURL:    baseURL,
		Model:      "text-embedding-3-small",
		Dimensions: 3,
		BatchSize:  100,
		Retry:      pkgRetry.RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: time.Millisecond},
	}
}

func TestOpenAIConnector_OrdersByIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Input      []string `json:"input"`
			Model      string   `json:"model"`
			Dimensions int      `json:"dimensions"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Input) != 2 || req.Model != "text-embedding-3-small" || req.Dimensions != 3 {
			t.Errorf("unexpected request %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"list","model":"text-embedding-3-small",
			"data":[
				{"object":"embedding","index":1,"embedding":[0,1,0]},
				{"object":"embedding","index":0,"embedding":[1,0,0]}
			],
			"usage":{"prompt_tokens":4,"total_tokens":4}}`))
	}))
	defer srv.Close()

	c := NewOpenAIConnector(testEmbeddingConfig(srv.URL+"/v1"), zap.NewNop())
	vectors, err := c.Embed(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vectors) != 2 || vectors[0][0] != 1 || vectors[1][1] != 1 {
		t.Errorf("vectors not ordered by index: %v", vectors)
	}
}

func TestOpenAIConnector_OmitsDimensionsForLegacyModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		if _, ok := req["dimensions"]; ok {
			t.Errorf("dimensions sent for %v", req["model"])
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"list","data":[{"object":"embedding","index":0,"embedding":[1,0]}]}`))
	}))
	defer srv.Close()

	cfg := testEmbeddingConfig(srv.URL + "/v1")
	cfg.Model = "text-embedding-ada-002"
	cfg.Dimensions = 1536

	if _, err := NewOpenAIConnector(cfg, zap.NewNop()).Embed(context.Background(), []string{"text"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestOpenAIConnector_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
			return
		}
		w.Write([]byte(`{"object":"list","data":[{"object":"embedding","index":0,"embedding":[1,0,0]}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIConnector(testEmbeddingConfig(srv.URL+"/v1"), zap.NewNop())
	if _, err := c.Embed(context.Background(), []string{"x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestOpenAIConnector_BadRequestNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"input too long","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	c := NewOpenAIConnector(testEmbeddingConfig(srv.URL+"/v1"), zap.NewNop())
	if _, err := c.Embed(context.Background(), []string{"x"}); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func TestMockConnector_Deterministic(t *testing.T) {
	m := NewMockConnector(64, zap.NewNop())
	ctx := context.Background()

	a, _ := m.Embed(ctx, []string{"프로세스 스케줄링 알고리즘"})
	b, _ := m.Embed(ctx, []string{"프로세스 스케줄링 알고리즘"})
	if cosine(a[0], b[0]) < 0.999 {
		t.Error("identical text should embed identically")
	}
	if len(a[0]) != 64 {
		t.Errorf("dimension = %d", len(a[0]))
	}
}

func TestMockConnector_SharedWordsAreSimilar(t *testing.T) {
	m := NewMockConnector(256, zap.NewNop())
	vs, _ := m.Embed(context.Background(), []string{
		"linked list insertion",
		"doubly linked list insertion and deletion",
		"",
	})

	if sim := cosine(vs[0], vs[1]); sim < 0.5 {
		t.Errorf("related texts similarity = %.2f", sim)
	}
	if vs[2][0] != 1 {
		t.Error("empty text should map to a unit vector")
	}
}
