package apiclient

import (
	"context"
	"strings"
)

// HTTPBackend uploads recordings to the intake server, building a fresh
// Client for every attempt.
type HTTPBackend struct {
	builder *Builder
	urls    URLSource
}

func NewHTTPBackend(urls URLSource, opts ...Option) *HTTPBackend {
	return &HTTPBackend{builder: NewBuilder(urls, opts...), urls: urls}
}

func (b *HTTPBackend) Name() string { return "http_multipart" }

// IsReady reports whether a server URL is configured. It does not touch the
// network.
func (b *HTTPBackend) IsReady() bool {
	return strings.TrimSpace(b.urls.ServerURL()) != ""
}

func (b *HTTPBackend) SupportedFormats() []string {
	return []string{"m4a", "3gp", "mp3", "wav", "ogg", "webm"}
}

func (b *HTTPBackend) Upload(ctx context.Context, audioPath string) (*Response, error) {
	c, err := b.builder.New()
	if err != nil {
		return nil, err
	}
	return c.ProcessFile(ctx, audioPath, UploadMediaType)
}
