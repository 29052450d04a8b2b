package http

import (
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// maxLoggedPayload caps how much of a request body ends up in debug logs.
// OCR requests carry whole base64 images.
const maxLoggedPayload = 2048

var redactedQueryParams = []string{"key", "access_token"}

// context keys for attaching request metadata
type payloadContextKey struct{}
type bodySizeContextKey struct{}

type logTransport struct {
	transport http.RoundTripper
}

func (t *logTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("url", redactURL(req)),
	}

	if payload, ok := ctx.Value(payloadContextKey{}).([]byte); ok && len(payload) > 0 {
		fields = append(fields, zap.Int("payload_size", len(payload)))
		if len(payload) > maxLoggedPayload {
			payload = payload[:maxLoggedPayload]
			fields = append(fields, zap.Bool("payload_truncated", true))
		}
		fields = append(fields, zap.ByteString("payload", payload))
	}

	if size, ok := ctx.Value(bodySizeContextKey{}).(int); ok {
		fields = append(fields, zap.Int("body_size", size))
	}

	ctxzap.Debug(ctx, "HTTP outbound request", fields...)

	return t.transport.RoundTrip(req)
}

func redactURL(req *http.Request) string {
	u := *req.URL
	q := u.Query()
	changed := false
	for _, name := range redactedQueryParams {
		if q.Has(name) {
			q.Set(name, "REDACTED")
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// WithRequestLogging wraps the HTTP transport with logging of method, URL and payload metadata.
func WithRequestLogging() HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &logTransport{
			transport: rt,
		}
	})
}
