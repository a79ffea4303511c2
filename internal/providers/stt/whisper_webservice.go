package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// WhisperWebservice talks to an openai-whisper-asr-webservice instance
// (POST /asr with an audio_file part).
type WhisperWebservice struct {
	baseURL     string
	client      *http.Client
	retries     int
	backoffBase time.Duration // tests override to 1ms
}

func NewWhisperWebservice(baseURL string, timeout time.Duration) *WhisperWebservice {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &WhisperWebservice{
		baseURL:     strings.TrimRight(baseURL, "/"),
		client:      &http.Client{Timeout: timeout},
		retries:     2,
		backoffBase: time.Second,
	}
}

func (w *WhisperWebservice) Name() string { return "whisper_webservice" }

func (w *WhisperWebservice) Close() error {
	w.client.CloseIdleConnections()
	return nil
}

func (w *WhisperWebservice) IsReady() bool { return w.baseURL != "" }

func (w *WhisperWebservice) SupportedFormats() []string {
	return []string{"wav", "mp3", "ogg", "flac", "m4a", "mp4", "webm", "aiff"}
}

func (w *WhisperWebservice) MaxFileSize() int64 { return 100 << 20 }

type asrResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// retryableError marks failures worth another attempt (5xx, transport).
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func (w *WhisperWebservice) Transcribe(ctx context.Context, audio []byte, filename string) (Result, error) {
	var lastErr error
	for attempt := 0; attempt <= w.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(w.backoffBase * time.Duration(1<<(attempt-1))):
			case <-ctx.Done():
				return Result{}, ctx.Err()
			}
		}

		res, err := w.transcribeOnce(ctx, audio, filename)
		if err == nil {
			return res, nil
		}
		var re *retryableError
		if !errors.As(err, &re) {
			return Result{}, err
		}
		lastErr = err
	}
	return Result{}, fmt.Errorf("whisper webservice: %d retries exhausted: %w", w.retries, lastErr)
}

func (w *WhisperWebservice) transcribeOnce(ctx context.Context, audio []byte, filename string) (Result, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("audio_file", filename)
	if err != nil {
		return Result{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return Result{}, fmt.Errorf("write audio: %w", err)
	}
	if err := mw.Close(); err != nil {
		return Result{}, fmt.Errorf("close multipart: %w", err)
	}

	q := url.Values{}
	q.Set("task", "transcribe")
	q.Set("output", "json")
	q.Set("encode", "true")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/asr?"+q.Encode(), &body)
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := w.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, &retryableError{err: fmt.Errorf("http request: %w", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return Result{}, &retryableError{err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode >= 500 {
		return Result{}, &retryableError{err: fmt.Errorf("server error %d: %s", resp.StatusCode, truncate(raw, 200))}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("http %d: %s", resp.StatusCode, truncate(raw, 200))
	}

	var parsed asrResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Result{}, fmt.Errorf("decode response: %w", err)
	}
	text := strings.TrimSpace(parsed.Text)
	if text == "" {
		return Result{}, errors.New("empty transcription result from whisper webservice")
	}
	return Result{Text: text, Language: parsed.Language}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
