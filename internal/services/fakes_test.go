package services

import (
	"context"
	"sync"

	"github.com/yoockh/scribely/internal/models"
	"github.com/yoockh/scribely/internal/providers/stt"
)

type fakeLLM struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeLLM) StreamAnswer(_ context.Context, prompt string) (<-chan string, <-chan error) {
	f.prompt = prompt
	out := make(chan string, 1)
	errs := make(chan error, 1)
	if f.err != nil {
		errs <- f.err
	} else {
		out <- f.reply
	}
	close(out)
	close(errs)
	return out, errs
}

func (*fakeLLM) Close() error { return nil }

type fakeSTT struct {
	ready   bool
	text    string
	err     error
	maxSize int64
	calls   int
}

func (*fakeSTT) Name() string { return "fake" }

func (f *fakeSTT) Transcribe(_ context.Context, _ []byte, _ string) (stt.Result, error) {
	f.calls++
	if f.err != nil {
		return stt.Result{}, f.err
	}
	return stt.Result{Text: f.text, Language: "en"}, nil
}

func (*fakeSTT) SupportedFormats() []string { return []string{"m4a", "wav", "mp3"} }

func (f *fakeSTT) MaxFileSize() int64 {
	if f.maxSize == 0 {
		return 1 << 20
	}
	return f.maxSize
}

func (f *fakeSTT) IsReady() bool { return f.ready }
func (*fakeSTT) Close() error    { return nil }

type memNoteRepo struct {
	mu   sync.Mutex
	rows []models.Note
}

func (r *memNoteRepo) Insert(_ context.Context, n *models.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, *n)
	return nil
}

func (r *memNoteRepo) ListByCategory(_ context.Context, category string, _ int) ([]models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Note
	for _, n := range r.rows {
		if n.Category == category {
			out = append(out, n)
		}
	}
	return out, nil
}
