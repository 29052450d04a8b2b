package embedding

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/futig/studyroom-rag/internal/entity"
	"go.uber.org/zap"
)

type fakeEmbedder struct {
	dims    int
	calls   [][]string
	dropOne bool
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls = append(f.calls, texts)
	if f.err != nil {
		return nil, f.err
	}
	n := len(texts)
	if f.dropOne {
		n--
	}
	out := make([][]float32, n)
	for i := range out {
		out[i] = make([]float32, f.dims)
		out[i][0] = float32(len(f.calls)*1000 + i)
	}
	return out, nil
}

func texts(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("chunk %d", i)
	}
	return out
}

func TestGenerate_BatchesSequentially(t *testing.T) {
	emb := &fakeEmbedder{dims: 4}
	g := NewGenerator(emb, Config{BatchSize: 100, Dimensions: 4}, zap.NewNop())

	vectors, err := g.Generate(context.Background(), texts(250))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vectors) != 250 {
		t.Fatalf("got %d vectors", len(vectors))
	}

	sizes := []int{len(emb.calls[0]), len(emb.calls[1]), len(emb.calls[2])}
	if len(emb.calls) != 3 || sizes[0] != 100 || sizes[1] != 100 || sizes[2] != 50 {
		t.Errorf("batch sizes = %v", sizes)
	}
	if emb.calls[1][0] != "chunk 100" {
		t.Errorf("second batch starts with %q", emb.calls[1][0])
	}
	// index correspondence: vector 150 came from batch 2, position 50
	if vectors[150][0] != 2050 {
		t.Errorf("vector 150 marker = %v", vectors[150][0])
	}
}

func TestGenerate_CountMismatch(t *testing.T) {
	g := NewGenerator(&fakeEmbedder{dims: 4, dropOne: true}, Config{Dimensions: 4}, zap.NewNop())

	_, err := g.Generate(context.Background(), texts(3))
	if !errors.Is(err, entity.ErrEmbeddingMismatch) {
		t.Fatalf("expected ErrEmbeddingMismatch, got %v", err)
	}
}

func TestGenerate_DimensionMismatch(t *testing.T) {
	g := NewGenerator(&fakeEmbedder{dims: 3}, Config{Dimensions: 1536}, zap.NewNop())

	_, err := g.Generate(context.Background(), texts(2))
	if !errors.Is(err, entity.ErrEmbeddingMismatch) {
		t.Fatalf("expected ErrEmbeddingMismatch, got %v", err)
	}
}

func TestGenerate_EmbedderError(t *testing.T) {
	want := errors.New("quota exceeded")
	g := NewGenerator(&fakeEmbedder{err: want}, Config{}, zap.NewNop())

	if _, err := g.Generate(context.Background(), texts(1)); !errors.Is(err, want) {
		t.Fatalf("expected wrapped embedder error, got %v", err)
	}
}

func TestGenerate_Empty(t *testing.T) {
	emb := &fakeEmbedder{dims: 2}
	vectors, err := NewGenerator(emb, Config{}, zap.NewNop()).Generate(context.Background(), nil)
	if err != nil || vectors != nil || len(emb.calls) != 0 {
		t.Fatalf("empty input should be a no-op: %v %v %d", vectors, err, len(emb.calls))
	}
}

func TestEmbedQuery_Cached(t *testing.T) {
	emb := &fakeEmbedder{dims: 2}
	g := NewGenerator(emb, Config{QueryCacheTTL: time.Minute}, zap.NewNop())
	ctx := context.Background()

	first, err := g.EmbedQuery(ctx, "이중연결리스트 구현")
	if err != nil {
		t.Fatal(err)
	}
	second, err := g.EmbedQuery(ctx, "이중연결리스트 구현")
	if err != nil {
		t.Fatal(err)
	}
	if len(emb.calls) != 1 {
		t.Errorf("embedder called %d times, want 1", len(emb.calls))
	}
	if first[0] != second[0] {
		t.Error("cached vector differs")
	}
}
