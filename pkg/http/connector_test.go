package http

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestConnector(baseURL string, opts ...HttpOpts) *Connector {
	return NewConnector(&ConnectorConfig{BaseURL: baseURL, Logger: zap.NewNop()}, opts...)
}

func TestDoRequest_JSONRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/echo" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "secret" {
			t.Errorf("missing query param, got %q", r.URL.RawQuery)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing auth header")
		}
		if r.Header.Get("X-Request-ID") != "req-1" {
			t.Errorf("missing custom header")
		}
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["msg"]})
	}))
	defer srv.Close()

	c := newTestConnector(srv.URL, WithAuthToken("tok"), WithRequestLogging())

	var out map[string]string
	err := c.DoRequest(context.Background(), http.MethodPost, "/v1/echo",
		map[string]string{"msg": "hi"}, &out,
		WithHeader("X-Request-ID", "req-1"),
		WithQueryParam("key", "secret"),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["echo"] != "hi" {
		t.Errorf("echo = %q", out["echo"])
	}
}

func TestDoRequest_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := newTestConnector(srv.URL).DoRequest(context.Background(), http.MethodGet, "/", nil, nil)

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 HTTPError, got %v", err)
	}
	if !IsRetryable(err) {
		t.Error("429 should be retryable")
	}
}

func TestDoRequest_OverrideURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/callback" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestConnector("http://unused.invalid")
	if err := c.DoRequest(context.Background(), http.MethodPost, "", map[string]int{"a": 1}, nil, WithURL(srv.URL+"/callback")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDoMultipartRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if r.FormValue("room") != "r1" {
			t.Errorf("room = %q", r.FormValue("room"))
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var out struct{ OK bool }
	err := newTestConnector(srv.URL).DoMultipartRequest(context.Background(), http.MethodPost, "/upload",
		func(mw *multipart.Writer) error { return mw.WriteField("room", "r1") }, &out)
	if err != nil || !out.OK {
		t.Fatalf("unexpected result: %v %+v", err, out)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{&HTTPError{StatusCode: 400}, false},
		{&HTTPError{StatusCode: 503}, true},
		{&NetworkError{Err: errors.New("reset")}, true},
		{context.Canceled, false},
		{errors.New("decode response"), false},
	}
	for _, tt := range tests {
		if got := IsRetryable(tt.err); got != tt.want {
			t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestRedactURL(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://vision.test/v1/images:annotate?key=abc&alt=json", nil)
	if got := redactURL(req); got != "http://vision.test/v1/images:annotate?alt=json&key=REDACTED" {
		t.Errorf("redactURL = %s", got)
	}
}

func TestWithRequestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	err := newTestConnector(srv.URL, WithRequestTimeout(20*time.Millisecond)).
		DoRequest(context.Background(), http.MethodGet, "/", nil, nil)

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}
