package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticURL struct {
	mu  sync.Mutex
	url string
}

func (s *staticURL) ServerURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

func (s *staticURL) set(u string) {
	s.mu.Lock()
	s.url = u
	s.mu.Unlock()
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"http://10.0.0.5:3000":       "http://10.0.0.5:3000/",
		"http://10.0.0.5:3000/":      "http://10.0.0.5:3000/",
		"  https://notes.local/api ": "https://notes.local/api/",
		"http://h/api/?x=1#frag":     "http://h/api/",
	}
	for in, want := range cases {
		u, err := Normalize(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, u.String(), in)

		again, err := Normalize(u.String())
		require.NoError(t, err)
		assert.Equal(t, u.String(), again.String(), "idempotent")
	}

	_, err := Normalize("   ")
	assert.ErrorIs(t, err, ErrNoServerURL)
	for _, bad := range []string{"10.0.0.5:3000", "ftp://h/", "http://", "http://[::1"} {
		_, err := Normalize(bad)
		assert.Error(t, err, bad)
	}
}

func TestEndpoint_SameTargetWithOrWithoutSlash(t *testing.T) {
	a, err := NewBuilder(&staticURL{url: "http://host:3000"}).New()
	require.NoError(t, err)
	b, err := NewBuilder(&staticURL{url: "http://host:3000/"}).New()
	require.NoError(t, err)

	assert.Equal(t, "http://host:3000/process-file", a.Endpoint(pathProcessFile))
	assert.Equal(t, a.Endpoint(pathProcessFile), b.Endpoint(pathProcessFile))

	sub, err := NewBuilder(&staticURL{url: "http://host/scribely"}).New()
	require.NoError(t, err)
	assert.Equal(t, "http://host/scribely/process-file", sub.Endpoint("/process-file"))
}

func writeRecording(t *testing.T, data string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "recording_1.m4a")
	require.NoError(t, os.WriteFile(p, []byte(data), 0o644))
	return p
}

func TestProcessFile_SendsSingleAudioPart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/process-file", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		files := r.MultipartForm.File["file"]
		if assert.Len(t, files, 1) {
			assert.Equal(t, "recording_1.m4a", files[0].Filename)
			assert.Equal(t, "audio/m4a", files[0].Header.Get("Content-Type"))
			f, _ := files[0].Open()
			b, _ := io.ReadAll(f)
			assert.Equal(t, "AUDIO", string(b))
		}
		assert.Len(t, r.MultipartForm.File, 1)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"processing","message":"File received and processing started","filename":"recording_1.m4a"}`))
	}))
	defer srv.Close()

	c, err := NewBuilder(&staticURL{url: srv.URL}, WithToken(func() string { return "tok" })).New()
	require.NoError(t, err)

	resp, err := c.ProcessFile(context.Background(), writeRecording(t, "AUDIO"), UploadMediaType)
	require.NoError(t, err)
	assert.True(t, resp.OK())
	require.NotNil(t, resp.Body)
	assert.True(t, resp.Body.IsProcessing())
}

func TestProcessFile_NonJSONErrorIsNotTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := NewBuilder(&staticURL{url: srv.URL}).New()
	require.NoError(t, err)

	resp, err := c.ProcessFile(context.Background(), writeRecording(t, "AUDIO"), UploadMediaType)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.False(t, resp.OK())
	assert.Nil(t, resp.Body)
}

func TestProcessFile_Errors(t *testing.T) {
	c, err := NewBuilder(&staticURL{url: "http://127.0.0.1:1"}).New()
	require.NoError(t, err)

	_, err = c.ProcessFile(context.Background(), filepath.Join(t.TempDir(), "missing.m4a"), UploadMediaType)
	assert.ErrorContains(t, err, "open recording")

	_, err = c.ProcessFile(context.Background(), writeRecording(t, "AUDIO"), UploadMediaType)
	assert.ErrorContains(t, err, "http request")
}

func TestProcessText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/process", r.URL.Path)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "buy milk", body["transcript"])
		_, _ = w.Write([]byte(`{"result":"# Milk","saved_to":"processed/daily/tasks/x.md","message":"Idea processed and saved to processed/daily/tasks/x.md"}`))
	}))
	defer srv.Close()

	c, err := NewBuilder(&staticURL{url: srv.URL + "/"}).New()
	require.NoError(t, err)

	resp, err := c.ProcessText(context.Background(), "buy milk")
	require.NoError(t, err)
	assert.True(t, resp.Body.IsSuccess())
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"status":"healthy","service":"scribely","timestamp":"2024-05-01T08:00:00.000Z"}`))
	}))
	defer srv.Close()

	c, err := NewBuilder(&staticURL{url: srv.URL}).New()
	require.NoError(t, err)
	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", h.Status)
	assert.Equal(t, "scribely", h.Service)
}

func TestBuilder_PicksUpURLChanges(t *testing.T) {
	urls := &staticURL{url: "http://first:3000"}
	b := NewBuilder(urls)

	c1, err := b.New()
	require.NoError(t, err)
	urls.set("http://second:3000")
	c2, err := b.New()
	require.NoError(t, err)

	assert.Equal(t, "http://first:3000/", c1.BaseURL())
	assert.Equal(t, "http://second:3000/", c2.BaseURL())

	urls.set("")
	_, err = b.New()
	assert.ErrorIs(t, err, ErrNoServerURL)
}

func TestHTTPBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":"r","saved_to":"s","message":"m"}`))
	}))
	defer srv.Close()

	urls := &staticURL{}
	be := NewHTTPBackend(urls)
	assert.False(t, be.IsReady())

	urls.set(srv.URL)
	assert.True(t, be.IsReady())

	resp, err := be.Upload(context.Background(), writeRecording(t, "AUDIO"))
	require.NoError(t, err)
	assert.True(t, resp.Body.IsSuccess())
}
