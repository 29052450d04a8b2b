package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// ObjectWriter is the slice of blob storage the mock needs to emit batch output
type ObjectWriter interface {
	UploadURL(ctx context.Context, target string, data []byte, contentType string) error
}

// MockConnector fakes OCR: images yield no text, batch jobs write one output document
type MockConnector struct {
	writer ObjectWriter
	logger *zap.Logger

	mu      sync.Mutex
	pending map[string]string
}

func NewMockConnector(writer ObjectWriter, logger *zap.Logger) *MockConnector {
	return &MockConnector{
		writer:  writer,
		logger:  logger,
		pending: make(map[string]string),
	}
}

func (m *MockConnector) AnnotateImage(ctx context.Context, data []byte, mimeType string) (string, error) {
	ctxzap.Info(ctx, "[MOCK] annotating image", zap.Int("size", len(data)), zap.String("mime_type", mimeType))
	return "", nil
}

func (m *MockConnector) SubmitBatch(ctx context.Context, sourceURI, mimeType, destinationURI string) (string, error) {
	ctxzap.Info(ctx, "[MOCK] submitting batch annotation", zap.String("source", sourceURI))

	name := "operations/mock-" + uuid.NewString()
	m.mu.Lock()
	m.pending[name] = destinationURI
	m.mu.Unlock()

	out := batchOutput{Responses: []annotateImageResponse{{
		FullTextAnnotation: &fullTextAnnotation{
			Text: fmt.Sprintf("[MOCK] recognized text of %s", sourceURI[strings.LastIndex(sourceURI, "/")+1:]),
		},
	}}}
	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}

	target := strings.TrimRight(destinationURI, "/") + "/output-1-to-1.json"
	if err := m.writer.UploadURL(ctx, target, data, "application/json"); err != nil {
		return "", err
	}
	return name, nil
}

func (m *MockConnector) Await(ctx context.Context, operationName string) error {
	m.mu.Lock()
	_, ok := m.pending[operationName]
	delete(m.pending, operationName)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("unknown operation %s", operationName)
	}
	ctxzap.Info(ctx, "[MOCK] batch annotation finished", zap.String("operation", operationName))
	return nil
}

func (m *MockConnector) ParseOutput(data []byte) ([]string, error) {
	return ParseOutput(data)
}

func (m *MockConnector) OrderOutputs(urls []string) []string {
	return OrderOutputs(urls)
}
