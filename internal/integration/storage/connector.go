package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/futig/studyroom-rag/internal/config"
	"github.com/futig/studyroom-rag/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"go.uber.org/zap"

	// gs:// support
	_ "github.com/viant/afsc/gs"
)

// Connector stores blobs under a base URL (gs://bucket/prefix, mem://localhost/root, file:///tmp/x).
// All paths passed in are relative to that base.
type Connector struct {
	fs      afs.Service
	baseURL string
	logger  *zap.Logger
}

func NewConnector(cfg config.StorageConfig, logger *zap.Logger) *Connector {
	return &Connector{
		fs:      afs.New(),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		logger:  logger,
	}
}

// URL returns the absolute object URL for a relative path
func (c *Connector) URL(path string) string {
	return url.Join(c.baseURL, strings.TrimLeft(path, "/"))
}

func (c *Connector) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	return c.UploadURL(ctx, c.URL(path), data, contentType)
}

// UploadURL writes an object by absolute URL
func (c *Connector) UploadURL(ctx context.Context, target string, data []byte, contentType string) error {
	ctxzap.Debug(ctx, "uploading object",
		zap.String("url", target),
		zap.String("content_type", contentType),
		zap.Int("size", len(data)),
	)

	if err := c.fs.Upload(ctx, target, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: upload %s: %w", entity.ErrStorage, target, err)
	}
	return nil
}

func (c *Connector) Download(ctx context.Context, path string) ([]byte, error) {
	return c.DownloadURL(ctx, c.URL(path))
}

// DownloadURL reads an object by absolute URL, as returned from List
func (c *Connector) DownloadURL(ctx context.Context, objectURL string) ([]byte, error) {
	data, err := c.fs.DownloadWithURL(ctx, objectURL)
	if err != nil {
		return nil, fmt.Errorf("%w: download %s: %w", entity.ErrStorage, objectURL, err)
	}
	return data, nil
}

func (c *Connector) Delete(ctx context.Context, path string) error {
	target := c.URL(path)

	exists, err := c.fs.Exists(ctx, target)
	if err != nil {
		return fmt.Errorf("%w: check %s: %w", entity.ErrStorage, target, err)
	}
	if !exists {
		return nil
	}

	if err := c.fs.Delete(ctx, target); err != nil {
		return fmt.Errorf("%w: delete %s: %w", entity.ErrStorage, target, err)
	}
	return nil
}

// List returns absolute URLs of the objects directly under prefix, skipping directories
func (c *Connector) List(ctx context.Context, prefix string) ([]string, error) {
	location := c.URL(prefix)

	exists, err := c.fs.Exists(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("%w: check %s: %w", entity.ErrStorage, location, err)
	}
	if !exists {
		return nil, nil
	}

	objects, err := c.fs.List(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", entity.ErrStorage, location, err)
	}

	urls := make([]string, 0, len(objects))
	for _, object := range objects {
		if object.IsDir() {
			continue
		}
		urls = append(urls, object.URL())
	}

	ctxzap.Debug(ctx, "listed objects", zap.String("prefix", location), zap.Int("count", len(urls)))
	return urls, nil
}

// DeletePrefix removes every object below prefix, continuing past individual failures
func (c *Connector) DeletePrefix(ctx context.Context, prefix string) error {
	location := c.URL(prefix)

	urls, err := c.walk(ctx, location)
	if err != nil {
		return err
	}

	var firstErr error
	for _, objectURL := range urls {
		if err := c.fs.Delete(ctx, objectURL); err != nil {
			ctxzap.Warn(ctx, "failed to delete object", zap.String("url", objectURL), zap.Error(err))
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: delete %s: %w", entity.ErrStorage, objectURL, err)
			}
		}
	}

	// Folder placeholders on file:// and mem://
	if exists, _ := c.fs.Exists(ctx, location); exists {
		_ = c.fs.Delete(ctx, location)
	}

	return firstErr
}

// walk collects object URLs below location, descending into folders
func (c *Connector) walk(ctx context.Context, location string) ([]string, error) {
	exists, err := c.fs.Exists(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("%w: check %s: %w", entity.ErrStorage, location, err)
	}
	if !exists {
		return nil, nil
	}

	objects, err := c.fs.List(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", entity.ErrStorage, location, err)
	}

	var urls []string
	for _, object := range objects {
		if url.Equals(object.URL(), location) {
			continue
		}
		if !object.IsDir() {
			urls = append(urls, object.URL())
			continue
		}
		nested, err := c.walk(ctx, object.URL())
		if err != nil {
			return nil, err
		}
		urls = append(urls, nested...)
	}
	return urls, nil
}
