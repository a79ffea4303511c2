// Package apiclient talks to the intake server. A Client is bound to one base
// URL; Builder makes a fresh one from the current settings on every call.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yoockh/scribely/internal/models"
)

const (
	ConnectTimeout  = 30 * time.Second
	ResponseTimeout = 120 * time.Second
	// RequestTimeout bounds connect, write and read together.
	RequestTimeout = ConnectTimeout + 2*ResponseTimeout

	// UploadMediaType is what the server sees for every uploaded recording.
	UploadMediaType = "audio/m4a"

	pathProcess     = "process"
	pathProcessFile = "process-file"
	pathHealth      = "health"

	maxResponseBytes = 4 << 20
)

var ErrNoServerURL = errors.New("server URL is not configured")

// URLSource supplies the current server URL.
type URLSource interface {
	ServerURL() string
}

type Builder struct {
	urls  URLSource
	token func() string
	rt    http.RoundTripper
}

type Option func(*Builder)

// WithToken sends a bearer token read at build time.
func WithToken(fn func() string) Option { return func(b *Builder) { b.token = fn } }

// WithTransport replaces the default transport, mainly for tests.
func WithTransport(rt http.RoundTripper) Option { return func(b *Builder) { b.rt = rt } }

func NewBuilder(urls URLSource, opts ...Option) *Builder {
	b := &Builder{urls: urls}
	for _, o := range opts {
		o(b)
	}
	return b
}

// New builds a client for the server URL as it is right now. Nothing is
// cached between calls.
func (b *Builder) New() (*Client, error) {
	base, err := Normalize(b.urls.ServerURL())
	if err != nil {
		return nil, err
	}

	rt := b.rt
	if rt == nil {
		rt = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: ConnectTimeout, KeepAlive: 30 * time.Second}).DialContext,
			TLSHandshakeTimeout:   ConnectTimeout,
			ResponseHeaderTimeout: ResponseTimeout,
			ExpectContinueTimeout: time.Second,
		}
	}

	c := &Client{
		base: base,
		http: &http.Client{Transport: rt, Timeout: RequestTimeout},
	}
	if b.token != nil {
		c.token = b.token()
	}
	return c, nil
}

// Normalize validates raw and guarantees a trailing slash so endpoint paths
// resolve below it. It is idempotent.
func Normalize(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrNoServerURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q: missing host", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawPath = ""
	u.RawQuery, u.Fragment = "", ""
	return u, nil
}

type Client struct {
	base  *url.URL
	http  *http.Client
	token string
}

func (c *Client) BaseURL() string { return c.base.String() }

// Endpoint resolves a relative endpoint path against the base URL.
func (c *Client) Endpoint(path string) string {
	return c.base.ResolveReference(&url.URL{Path: strings.TrimPrefix(path, "/")}).String()
}

// Response is a decoded intake reply. Body is nil when the server did not
// answer with JSON.
type Response struct {
	StatusCode int
	Body       *models.ProcessResponse
}

func (r *Response) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// ProcessFile uploads the file at path as the single "file" part. A non-2xx
// status is not an error; only transport failures are.
func (c *Client) ProcessFile(ctx context.Context, path, mediaType string) (*Response, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	errCh := make(chan error, 1)
	go func() {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(path)))
		h.Set("Content-Type", mediaType)
		part, err := mw.CreatePart(h)
		if err == nil {
			_, err = io.Copy(part, f)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
		errCh <- err
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(pathProcessFile), pr)
	if err != nil {
		_ = pr.Close()
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.do(req)
	// unblocks the writer when the server answered before reading everything
	_ = pr.Close()
	werr := <-errCh
	if err != nil {
		return nil, err
	}
	if werr != nil && !errors.Is(werr, io.ErrClosedPipe) {
		return nil, fmt.Errorf("multipart write: %w", werr)
	}
	return resp, nil
}

// ProcessText posts a transcript to /process.
func (c *Client) ProcessText(ctx context.Context, transcript string) (*Response, error) {
	body, err := json.Marshal(map[string]string{"transcript": transcript})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(pathProcess), strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// Health returns the server's liveness payload.
func (c *Client) Health(ctx context.Context) (*models.HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint(pathHealth), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.authorize(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("health check: http %d", resp.StatusCode)
	}
	var out models.HealthResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode health response: %w", err)
	}
	return &out, nil
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) do(req *http.Request) (*Response, error) {
	c.authorize(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	out := &Response{StatusCode: resp.StatusCode}
	var body models.ProcessResponse
	if json.Unmarshal(raw, &body) == nil {
		out.Body = &body
	}
	return out, nil
}
