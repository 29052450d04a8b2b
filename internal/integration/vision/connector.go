package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/avast/retry-go/v4"
	"github.com/futig/studyroom-rag/internal/config"
	"github.com/futig/studyroom-rag/internal/entity"
	"github.com/futig/studyroom-rag/internal/integration/common"
	pkghttp "github.com/futig/studyroom-rag/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
)

const (
	annotateImagesEndpoint = "/v1/images:annotate"
	annotateFilesEndpoint  = "/v1/files:asyncBatchAnnotate"

	visionScope = "https://www.googleapis.com/auth/cloud-vision"
)

var errOperationPending = errors.New("operation is still running")

type Connector struct {
	config    config.VisionConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

// NewConnector authenticates with an API key when one is configured, otherwise with
// application default credentials if VISION_USE_ADC is set.
func NewConnector(ctx context.Context, cfg config.VisionConfig, logger *zap.Logger) (*Connector, error) {
	var extra []pkghttp.HttpOpts
	if cfg.APIKey == "" && cfg.UseADC {
		ts, err := google.DefaultTokenSource(ctx, visionScope)
		if err != nil {
			return nil, fmt.Errorf("%w: vision token source: %w", entity.ErrConfiguration, err)
		}
		extra = append(extra, pkghttp.WithTokenSource(ts))
	}

	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger, extra...),
		config:    cfg,
		logger:    logger,
	}, nil
}

func (c *Connector) requestOpts() []pkghttp.RequestOpt {
	return []pkghttp.RequestOpt{pkghttp.WithQueryParam("key", c.config.APIKey)}
}

// AnnotateImage runs synchronous text detection on a single image
func (c *Connector) AnnotateImage(ctx context.Context, data []byte, mimeType string) (string, error) {
	req := &batchAnnotateImagesRequest{
		Requests: []annotateImageRequest{{
			Image:    image{Content: base64.StdEncoding.EncodeToString(data)},
			Features: []feature{{Type: c.config.Feature}},
		}},
	}

	ctxzap.Debug(ctx, "annotating image", zap.String("mime_type", mimeType), zap.Int("size", len(data)))

	var resp batchAnnotateImagesResponse
	err := c.config.Retry.Do(ctx, func() error {
		return c.connector.DoRequest(ctx, http.MethodPost, annotateImagesEndpoint, req, &resp, c.requestOpts()...)
	}, retry.RetryIf(pkghttp.IsRetryable))
	if err != nil {
		return "", fmt.Errorf("annotate image: %w", err)
	}

	if len(resp.Responses) == 0 {
		return "", nil
	}
	if e := resp.Responses[0].Error; e != nil {
		return "", fmt.Errorf("annotate image: vision error %d: %s", e.Code, e.Message)
	}

	return resp.Responses[0].text(), nil
}

// SubmitBatch starts an asynchronous OCR job over a staged document and returns the operation name
func (c *Connector) SubmitBatch(ctx context.Context, sourceURI, mimeType, destinationURI string) (string, error) {
	req := &asyncBatchAnnotateFilesRequest{
		Requests: []asyncAnnotateFileRequest{{
			InputConfig: inputConfig{
				GCSSource: gcsSource{URI: sourceURI},
				MimeType:  mimeType,
			},
			Features: []feature{{Type: c.config.Feature}},
			OutputConfig: outputConfig{
				GCSDestination: gcsDestination{URI: destinationURI},
				BatchSize:      c.config.PagesPerFile,
			},
		}},
	}

	var op operation
	err := c.config.Retry.Do(ctx, func() error {
		return c.connector.DoRequest(ctx, http.MethodPost, annotateFilesEndpoint, req, &op, c.requestOpts()...)
	}, retry.RetryIf(pkghttp.IsRetryable))
	if err != nil {
		return "", fmt.Errorf("submit batch annotation: %w", err)
	}
	if op.Name == "" {
		return "", fmt.Errorf("submit batch annotation: empty operation name")
	}

	ctxzap.Info(ctx, "batch annotation submitted",
		zap.String("operation", op.Name),
		zap.String("source", sourceURI),
		zap.String("destination", destinationURI),
	)
	return op.Name, nil
}

// Await polls the operation until it completes, fails, or ctx is done.
// Transient polling errors are retried; a failed operation is returned immediately.
func (c *Connector) Await(ctx context.Context, operationName string) error {
	endpoint := "/v1/" + strings.TrimPrefix(operationName, "/")
	polls := 0

	err := retry.Do(
		func() error {
			polls++
			var op operation
			if err := c.connector.DoRequest(ctx, http.MethodGet, endpoint, nil, &op, c.requestOpts()...); err != nil {
				if pkghttp.IsRetryable(err) {
					return err
				}
				return retry.Unrecoverable(fmt.Errorf("poll operation: %w", err))
			}
			if op.Error != nil {
				return retry.Unrecoverable(fmt.Errorf("%w: operation %s failed: %s", entity.ErrExtractionFailed, operationName, op.Error.Message))
			}
			if !op.Done {
				return errOperationPending
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(0),
		retry.Delay(c.config.PollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("await operation %s: %w", operationName, ctxErr)
		}
		return err
	}

	ctxzap.Info(ctx, "batch annotation finished", zap.String("operation", operationName), zap.Int("polls", polls))
	return nil
}

// ParseOutput extracts page texts from one batch output document
func (c *Connector) ParseOutput(data []byte) ([]string, error) {
	return ParseOutput(data)
}

// OrderOutputs sorts batch output objects into page order
func (c *Connector) OrderOutputs(urls []string) []string {
	return OrderOutputs(urls)
}

// ParseOutput extracts page texts from one batch output document
func ParseOutput(data []byte) ([]string, error) {
	var out batchOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode batch output: %w", err)
	}

	texts := make([]string, 0, len(out.Responses))
	for _, r := range out.Responses {
		if t := r.text(); t != "" {
			texts = append(texts, t)
		}
	}
	return texts, nil
}

var outputPagePattern = regexp.MustCompile(`output-(\d+)-to-\d+\.json$`)

// OrderOutputs sorts batch output objects by their first page number.
// Object listings are lexicographic, which puts output-101 before output-21.
func OrderOutputs(urls []string) []string {
	firstPage := func(u string) int {
		m := outputPagePattern.FindStringSubmatch(u)
		if m == nil {
			return math.MaxInt
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return math.MaxInt
		}
		return n
	}

	ordered := make([]string, len(urls))
	copy(ordered, urls)
	sort.SliceStable(ordered, func(i, j int) bool {
		return firstPage(ordered[i]) < firstPage(ordered[j])
	})
	return ordered
}
