package recording

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoockh/scribely/internal/apiclient"
	"github.com/yoockh/scribely/internal/logger"
	"github.com/yoockh/scribely/internal/models"
)

type fakeBackend struct {
	ready bool
	resp  *apiclient.Response
	err   error
	calls int
	ctx   context.Context
}

func (f *fakeBackend) Name() string               { return "fake" }
func (f *fakeBackend) IsReady() bool              { return f.ready }
func (f *fakeBackend) SupportedFormats() []string { return []string{"m4a"} }

func (f *fakeBackend) Upload(ctx context.Context, _ string) (*apiclient.Response, error) {
	f.calls++
	f.ctx = ctx
	return f.resp, f.err
}

type fakeSaver struct {
	calls int
	path  string
}

func (f *fakeSaver) SaveLocally(p string) UploadResult {
	f.calls++
	f.path = p
	return LocalSave{FilePath: "/fallback/" + filepath.Base(p)}
}

func strp(s string) *string { return &s }

func newOrchestrator(b Backend, s Saver) *Orchestrator {
	return NewOrchestrator(b, s, logger.Discard())
}

func TestUploadRecording_NotReadySkipsNetwork(t *testing.T) {
	b := &fakeBackend{ready: false}
	s := &fakeSaver{}

	res := newOrchestrator(b, s).UploadRecording(context.Background(), "/tmp/rec.m4a")

	assert.Equal(t, LocalSave{FilePath: "/fallback/rec.m4a"}, res)
	assert.Zero(t, b.calls)
	assert.Equal(t, 1, s.calls)
}

func TestUploadRecording_Processing(t *testing.T) {
	body := &models.ProcessResponse{Status: strp("processing"), JobID: strp("j1")}
	b := &fakeBackend{ready: true, resp: &apiclient.Response{StatusCode: 200, Body: body}}
	s := &fakeSaver{}

	res := newOrchestrator(b, s).UploadRecording(context.Background(), "/tmp/rec.m4a")

	assert.Equal(t, UploadSuccess{Response: body}, res)
	assert.Zero(t, s.calls)
}

func TestUploadRecording_LegacySuccess(t *testing.T) {
	body := &models.ProcessResponse{Result: strp("# Note"), SavedTo: strp("notes/a.md")}
	b := &fakeBackend{ready: true, resp: &apiclient.Response{StatusCode: 201, Body: body}}
	s := &fakeSaver{}

	res := newOrchestrator(b, s).UploadRecording(context.Background(), "/tmp/rec.m4a")

	assert.Equal(t, UploadSuccess{Response: body}, res)
	assert.Zero(t, s.calls)
}

func TestUploadRecording_FallsBack(t *testing.T) {
	cases := map[string]*fakeBackend{
		"transport error": {ready: true, err: errors.New("connection refused")},
		"nil response":    {ready: true},
		"server error": {ready: true, resp: &apiclient.Response{
			StatusCode: 500, Body: &models.ProcessResponse{Error: strp("boom")},
		}},
		"2xx with error field": {ready: true, resp: &apiclient.Response{
			StatusCode: 200, Body: &models.ProcessResponse{Result: strp("r"), SavedTo: strp("s"), Error: strp("e")},
		}},
		"2xx without body": {ready: true, resp: &apiclient.Response{StatusCode: 200}},
		"2xx missing saved_to": {ready: true, resp: &apiclient.Response{
			StatusCode: 200, Body: &models.ProcessResponse{Result: strp("r")},
		}},
		"processing with 4xx": {ready: true, resp: &apiclient.Response{
			StatusCode: 400, Body: &models.ProcessResponse{Status: strp("processing")},
		}},
	}

	for name, b := range cases {
		t.Run(name, func(t *testing.T) {
			s := &fakeSaver{}
			res := newOrchestrator(b, s).UploadRecording(context.Background(), "/tmp/rec.m4a")

			assert.IsType(t, LocalSave{}, res)
			assert.Equal(t, 1, b.calls)
			assert.Equal(t, 1, s.calls)
			assert.Equal(t, "/tmp/rec.m4a", s.path)
		})
	}
}

func TestUploadRecording_AppliesTimeout(t *testing.T) {
	b := &fakeBackend{ready: true, err: context.DeadlineExceeded}
	o := newOrchestrator(b, &fakeSaver{})
	o.UploadTimeout = time.Minute

	o.UploadRecording(context.Background(), "/tmp/rec.m4a")

	deadline, ok := b.ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}

func TestUploadRecording_CancelledStillSavesLocally(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "rec.m4a")
	require.NoError(t, os.WriteFile(src, []byte("audio"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := &fakeBackend{ready: true, err: context.Canceled}
	store := NewLocalStore(filepath.Join(dir, "out"), logger.Discard())

	res := newOrchestrator(b, store).UploadRecording(ctx, src)

	saved, ok := res.(LocalSave)
	require.True(t, ok, "got %#v", res)
	data, err := os.ReadFile(saved.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "audio", string(data))
}
