package logger

import (
	"context"
	"testing"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDetach_KeepsLoggerDropsCancellation(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := ctxzap.ToContext(context.Background(), zap.New(core))
	ctx = WithAction(ctx, "UploadFile")

	reqCtx, cancel := context.WithTimeout(ctx, time.Millisecond)
	cancel()

	bg := Detach(reqCtx, zap.String("file_id", "f1"))
	if bg.Err() != nil {
		t.Fatalf("detached context inherited cancellation: %v", bg.Err())
	}

	ctxzap.Info(bg, "vectorized")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d log entries", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["action"] != "UploadFile" || fields["file_id"] != "f1" {
		t.Errorf("unexpected fields %v", fields)
	}
}
