package storage

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/futig/studyroom-rag/internal/config"
	"github.com/futig/studyroom-rag/internal/entity"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newMemConnector(t *testing.T) *Connector {
	t.Helper()
	return NewConnector(config.StorageConfig{BaseURL: "mem://localhost/" + uuid.NewString()}, zap.NewNop())
}

func TestConnector_UploadDownloadDelete(t *testing.T) {
	ctx := context.Background()
	c := newMemConnector(t)

	if err := c.Upload(ctx, "rooms/r1/f1/notes.txt", []byte("hello"), "text/plain"); err != nil {
		t.Fatalf("upload: %v", err)
	}

	data, err := c.Download(ctx, "rooms/r1/f1/notes.txt")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("data = %q", data)
	}

	if err := c.Delete(ctx, "rooms/r1/f1/notes.txt"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := c.Download(ctx, "rooms/r1/f1/notes.txt"); !errors.Is(err, entity.ErrStorage) {
		t.Errorf("expected ErrStorage after delete, got %v", err)
	}

	// Deleting twice is not an error
	if err := c.Delete(ctx, "rooms/r1/f1/notes.txt"); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestConnector_ListAndDeletePrefix(t *testing.T) {
	ctx := context.Background()
	c := newMemConnector(t)

	for _, name := range []string{"output-1-to-2.json", "output-3-to-4.json"} {
		if err := c.Upload(ctx, "staging/job/output/"+name, []byte("{}"), "application/json"); err != nil {
			t.Fatal(err)
		}
	}

	urls, err := c.List(ctx, "staging/job/output")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	sort.Strings(urls)
	if len(urls) != 2 || !strings.HasSuffix(urls[0], "output-1-to-2.json") {
		t.Fatalf("unexpected listing: %v", urls)
	}

	if err := c.DeletePrefix(ctx, "staging/job"); err != nil {
		t.Fatalf("delete prefix: %v", err)
	}
	urls, err = c.List(ctx, "staging/job/output")
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(urls) != 0 {
		t.Errorf("objects left after delete: %v", urls)
	}
}

func TestConnector_ListMissingPrefix(t *testing.T) {
	urls, err := newMemConnector(t).List(context.Background(), "nothing/here")
	if err != nil || len(urls) != 0 {
		t.Fatalf("expected empty listing, got %v %v", urls, err)
	}
}

func TestConnector_URL(t *testing.T) {
	c := NewConnector(config.StorageConfig{BaseURL: "gs://bucket/"}, zap.NewNop())
	if got := c.URL("/ocr/job/input.pdf"); got != "gs://bucket/ocr/job/input.pdf" {
		t.Errorf("URL = %s", got)
	}
}
