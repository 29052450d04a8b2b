package callback

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/futig/studyroom-rag/internal/config"
	"github.com/futig/studyroom-rag/internal/entity"
	pkgRetry "github.com/futig/studyroom-rag/internal/pkg/retry"
	"go.uber.org/zap"
)

func testConnector() *Connector {
	return NewConnector(config.CallbackConnectorConfig{
		HTTPClientConfig: config.HTTPClientConfig{
			RequestTimeout: 5 * time.Second,
			ConnTimeout:    time.Second,
		},
		Retry: pkgRetry.RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: 5 * time.Millisecond},
	}, zap.NewNop())
}

func TestSend_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	var got entity.CallbackEvent

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if r.Header.Get("X-Request-ID") != "req-7" {
			t.Errorf("X-Request-ID = %q", r.Header.Get("X-Request-ID"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := testConnector().Send(context.Background(), srv.URL, "req-7", &entity.CallbackEvent{
		Event: entity.CallbackEventTypeFileVectorized,
		Data:  &entity.CallbackFileVectorizedData{FileID: "f1", ChunkCount: 3},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
	if got.Event != entity.CallbackEventTypeFileVectorized {
		t.Errorf("event = %q", got.Event)
	}
	if _, err := time.Parse(time.RFC3339, got.Timestamp); err != nil {
		t.Errorf("timestamp %q is not RFC3339", got.Timestamp)
	}
}

func TestSend_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := testConnector().Send(context.Background(), srv.URL, "req-8", &entity.CallbackEvent{Event: entity.CallbackEventTypeError})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestSend_EmptyURL(t *testing.T) {
	err := testConnector().Send(context.Background(), "", "req-9", &entity.CallbackEvent{Event: entity.CallbackEventTypeError})
	if !errors.Is(err, entity.ErrMissingField) {
		t.Errorf("error = %v, want ErrMissingField", err)
	}
}

func TestSendError_Payload(t *testing.T) {
	done := make(chan entity.CallbackEvent, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev entity.CallbackEvent
		_ = json.NewDecoder(r.Body).Decode(&ev)
		done <- ev
	}))
	defer srv.Close()

	testConnector().SendError(context.Background(), srv.URL, "req-10", "no text could be extracted", map[string]any{"file_id": "f2"})

	ev := <-done
	data, ok := ev.Data.(map[string]any)
	if ev.Event != entity.CallbackEventTypeError || !ok {
		t.Fatalf("unexpected event %+v", ev)
	}
	detail := data["error"].(map[string]any)
	if detail["message"] != "no text could be extracted" {
		t.Errorf("message = %v", detail["message"])
	}
	if detail["details"].(map[string]any)["file_id"] != "f2" {
		t.Errorf("details = %v", detail["details"])
	}
}
